package http

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/listingdeck/listingdeck/pkg/logger"
)

// Pinger reports whether a dependency is reachable
type Pinger interface {
	PingContext(ctx context.Context) error
}

// SystemHandler serves the health check and the metrics endpoints
type SystemHandler struct {
	db                 Pinger
	version            string
	openCensusExporter http.Handler
	logger             logger.Logger
}

// NewSystemHandler creates the health and metrics handler. db and
// openCensusExporter may be nil.
func NewSystemHandler(db Pinger, version string, openCensusExporter http.Handler, logger logger.Logger) *SystemHandler {
	return &SystemHandler{
		db:                 db,
		version:            version,
		openCensusExporter: openCensusExporter,
		logger:             logger,
	}
}

func (h *SystemHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", h.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())
	if h.openCensusExporter != nil {
		mux.Handle("/metrics/opencensus", h.openCensusExporter)
	}
}

func (h *SystemHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			h.logger.WithField("error", err.Error()).Warn("Health check failed: database unreachable")
			writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
				"status":   "unavailable",
				"database": "unreachable",
				"version":  h.version,
			})
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"version": h.version,
	})
}
