package http

import (
	"encoding/json"
	"net/http"

	"github.com/listingdeck/listingdeck/internal/domain"
	"github.com/listingdeck/listingdeck/pkg/logger"
)

// maxRequestBody bounds posted settings and block trees
const maxRequestBody = 5 << 20

type BrochureHandler struct {
	service domain.BrochureService
	logger  logger.Logger
}

func NewBrochureHandler(service domain.BrochureService, logger logger.Logger) *BrochureHandler {
	return &BrochureHandler{
		service: service,
		logger:  logger,
	}
}

func (h *BrochureHandler) RegisterRoutes(mux *http.ServeMux) {
	// Register RPC-style endpoints with dot notation
	mux.HandleFunc("/api/brochure.settings", h.handleGetSettings)
	mux.HandleFunc("/api/brochure.saveSettings", h.handleSaveSettings)
	mux.HandleFunc("/api/brochure.generate", h.handleGenerate)
	mux.HandleFunc("/api/brochure.exportHTML", h.handleExportHTML)
	mux.HandleFunc("/api/brochure.editor", h.handleEditor)
	mux.HandleFunc("/api/brochure.fields", h.handleFields)
}

func (h *BrochureHandler) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req domain.GetSettingsRequest
	if err := req.FromURLParams(r.URL.Query()); err != nil {
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	settings, err := h.service.GetSettings(r.Context(), req.AgencyID)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to get brochure settings")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"settings": settings,
	})
}

func (h *BrochureHandler) handleSaveSettings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req domain.SaveSettingsRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.service.SaveSettings(r.Context(), req.AgencyID, &req.Settings); err != nil {
		writeServiceError(w, h.logger, err, "Failed to save brochure settings")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
	})
}

func (h *BrochureHandler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req domain.GenerateRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	artifact, err := h.service.Generate(r.Context(), &req)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to generate brochure")
		return
	}

	writeArtifact(w, artifact)
}

func (h *BrochureHandler) handleExportHTML(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req domain.ExportHTMLRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	artifact, err := h.service.ExportHTML(r.Context(), &req)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to export brochure HTML")
		return
	}

	writeArtifact(w, artifact)
}

func (h *BrochureHandler) handleEditor(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req domain.EditorOperationRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	state, err := h.service.ApplyEditorOperation(r.Context(), &req)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to apply editor operation")
		return
	}

	writeJSON(w, http.StatusOK, state)
}

func (h *BrochureHandler) handleFields(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"fields": h.service.BindableFields(),
	})
}

func (h *BrochureHandler) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(v); err != nil {
		h.logger.WithField("error", err.Error()).Error("Failed to decode request body")
		WriteJSONError(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}
