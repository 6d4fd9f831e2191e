package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listingdeck/listingdeck/internal/domain"
	"github.com/listingdeck/listingdeck/internal/domain/mocks"
	"github.com/listingdeck/listingdeck/pkg/blocktree"
)

// Test setup helper
func setupBrochureHandlerTest(t *testing.T) (*mocks.MockBrochureService, *http.ServeMux) {
	ctrl := gomock.NewController(t)

	mockService := mocks.NewMockBrochureService(ctrl)
	mockLogger := mocks.NewMockLogger(ctrl)

	// Setup common logger expectations
	mockLogger.EXPECT().WithField(gomock.Any(), gomock.Any()).Return(mockLogger).AnyTimes()
	mockLogger.EXPECT().WithFields(gomock.Any()).Return(mockLogger).AnyTimes()
	mockLogger.EXPECT().Info(gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Debug(gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Warn(gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Error(gomock.Any()).AnyTimes()

	handler := NewBrochureHandler(mockService, mockLogger)
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	return mockService, mux
}

func postJSON(t *testing.T, mux *http.ServeMux, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var payload []byte
	switch v := body.(type) {
	case string:
		payload = []byte(v)
	default:
		var err error
		payload, err = json.Marshal(v)
		require.NoError(t, err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	return out
}

func TestBrochureHandler_RegisterRoutes(t *testing.T) {
	_, mux := setupBrochureHandlerTest(t)

	endpoints := []string{
		"/api/brochure.settings",
		"/api/brochure.saveSettings",
		"/api/brochure.generate",
		"/api/brochure.exportHTML",
		"/api/brochure.editor",
		"/api/brochure.fields",
	}

	for _, endpoint := range endpoints {
		_, pattern := mux.Handler(&http.Request{Method: http.MethodGet, URL: &url.URL{Path: endpoint}})
		assert.Equal(t, endpoint, pattern)
	}
}

func TestBrochureHandler_HandleGetSettings(t *testing.T) {
	testCases := []struct {
		name           string
		method         string
		query          string
		setupMock      func(*mocks.MockBrochureService)
		expectedStatus int
	}{
		{
			name:   "success",
			method: http.MethodGet,
			query:  "agency_id=agency-1",
			setupMock: func(m *mocks.MockBrochureService) {
				settings := domain.DefaultBrochureSettings()
				m.EXPECT().GetSettings(gomock.Any(), "agency-1").Return(&settings, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "missing agency id",
			method:         http.MethodGet,
			query:          "",
			setupMock:      func(m *mocks.MockBrochureService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "wrong method",
			method:         http.MethodPost,
			query:          "agency_id=agency-1",
			setupMock:      func(m *mocks.MockBrochureService) {},
			expectedStatus: http.StatusMethodNotAllowed,
		},
		{
			name:   "unknown agency",
			method: http.MethodGet,
			query:  "agency_id=missing",
			setupMock: func(m *mocks.MockBrochureService) {
				m.EXPECT().GetSettings(gomock.Any(), "missing").Return(nil, &domain.ErrNotFound{Entity: "agency", ID: "missing"})
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:   "repository failure",
			method: http.MethodGet,
			query:  "agency_id=agency-1",
			setupMock: func(m *mocks.MockBrochureService) {
				m.EXPECT().GetSettings(gomock.Any(), "agency-1").Return(nil, errors.New("connection refused"))
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mockService, mux := setupBrochureHandlerTest(t)
			tc.setupMock(mockService)

			req := httptest.NewRequest(tc.method, "/api/brochure.settings?"+tc.query, nil)
			rr := httptest.NewRecorder()
			mux.ServeHTTP(rr, req)

			assert.Equal(t, tc.expectedStatus, rr.Code)
			if tc.expectedStatus == http.StatusOK {
				body := decodeBody(t, rr)
				settings := body["settings"].(map[string]interface{})
				assert.Len(t, settings["pages"], len(domain.DefaultPages()))
				assert.Contains(t, settings, "theme")
			}
			if tc.expectedStatus == http.StatusInternalServerError {
				// internal details stay in the logs
				assert.NotContains(t, rr.Body.String(), "connection refused")
			}
		})
	}
}

func TestBrochureHandler_HandleSaveSettings(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		mockService, mux := setupBrochureHandlerTest(t)
		mockService.EXPECT().SaveSettings(gomock.Any(), "agency-1", gomock.Any()).DoAndReturn(
			func(_ interface{}, _ string, settings *domain.BrochureSettings) error {
				require.Len(t, settings.Pages, 2)
				assert.Equal(t, domain.PageKindSystem, settings.Pages[0].Kind())
				assert.Equal(t, domain.PageKindCustom, settings.Pages[1].Kind())
				assert.Equal(t, "#112233", settings.Theme.Colors.Primary)
				return nil
			})

		rr := postJSON(t, mux, "/api/brochure.saveSettings", `{
			"agency_id": "agency-1",
			"settings": {
				"theme": {"colors": {"primary": "#112233"}},
				"pages": [
					{"kind": "system", "type": "cover", "enabled": true},
					{"kind": "custom", "id": "intro", "enabled": true, "blocks": []}
				]
			}
		}`)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, true, decodeBody(t, rr)["success"])
	})

	t.Run("invalid body", func(t *testing.T) {
		_, mux := setupBrochureHandlerTest(t)
		rr := postJSON(t, mux, "/api/brochure.saveSettings", `{"agency_id":`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("missing pages", func(t *testing.T) {
		_, mux := setupBrochureHandlerTest(t)
		rr := postJSON(t, mux, "/api/brochure.saveSettings", `{"agency_id": "agency-1", "settings": {}}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "settings.pages is required")
	})

	t.Run("validation failure", func(t *testing.T) {
		mockService, mux := setupBrochureHandlerTest(t)
		mockService.EXPECT().SaveSettings(gomock.Any(), "agency-1", gomock.Any()).
			Return(domain.NewValidationError("theme.colors.primary must be a hex color"))

		rr := postJSON(t, mux, "/api/brochure.saveSettings", `{"agency_id": "agency-1", "settings": {"pages": []}}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, decodeBody(t, rr)["error"], "hex color")
	})

	t.Run("wrong method", func(t *testing.T) {
		_, mux := setupBrochureHandlerTest(t)
		req := httptest.NewRequest(http.MethodGet, "/api/brochure.saveSettings", nil)
		rr := httptest.NewRecorder()
		mux.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	})
}

func TestBrochureHandler_HandleGenerate(t *testing.T) {
	t.Run("streams the PDF", func(t *testing.T) {
		mockService, mux := setupBrochureHandlerTest(t)
		pdf := []byte("%PDF-1.3 test")
		mockService.EXPECT().Generate(gomock.Any(), &domain.GenerateRequest{AgencyID: "agency-1", PropertyID: "prop-1"}).
			Return(&domain.Artifact{
				Filename:    "brochure-2026-03-14.pdf",
				ContentType: "application/pdf",
				Backend:     domain.RenderBackendVector,
				Data:        pdf,
			}, nil)

		rr := postJSON(t, mux, "/api/brochure.generate", domain.GenerateRequest{AgencyID: "agency-1", PropertyID: "prop-1"})

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "application/pdf", rr.Header().Get("Content-Type"))
		assert.Equal(t, `attachment; filename="brochure-2026-03-14.pdf"`, rr.Header().Get("Content-Disposition"))
		assert.Equal(t, fmt.Sprint(len(pdf)), rr.Header().Get("Content-Length"))
		assert.Equal(t, "vector", rr.Header().Get("X-Brochure-Backend"))
		assert.Equal(t, pdf, rr.Body.Bytes())
	})

	errorCases := []struct {
		name           string
		err            error
		expectedStatus int
	}{
		{"property not found", &domain.ErrNotFound{Entity: "property", ID: "prop-1"}, http.StatusNotFound},
		{"missing data", &domain.ErrMissingBrochureData{Field: "agency"}, http.StatusUnprocessableEntity},
		{"no enabled pages", domain.NewValidationError("brochure has no enabled pages"), http.StatusBadRequest},
		{"render failure", &domain.ErrRenderFailed{Backend: "raster", Err: errors.New("chrome crashed")}, http.StatusInternalServerError},
	}
	for _, tc := range errorCases {
		t.Run(tc.name, func(t *testing.T) {
			mockService, mux := setupBrochureHandlerTest(t)
			mockService.EXPECT().Generate(gomock.Any(), gomock.Any()).Return(nil, tc.err)

			rr := postJSON(t, mux, "/api/brochure.generate", domain.GenerateRequest{AgencyID: "agency-1", PropertyID: "prop-1"})
			assert.Equal(t, tc.expectedStatus, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
		})
	}

	t.Run("missing property id", func(t *testing.T) {
		_, mux := setupBrochureHandlerTest(t)
		rr := postJSON(t, mux, "/api/brochure.generate", domain.GenerateRequest{AgencyID: "agency-1"})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestBrochureHandler_HandleExportHTML(t *testing.T) {
	mockService, mux := setupBrochureHandlerTest(t)
	html := "<!DOCTYPE html>\n<html><body><h1>Seaside Villa</h1></body></html>"
	mockService.EXPECT().ExportHTML(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ interface{}, req *domain.ExportHTMLRequest) (*domain.Artifact, error) {
			assert.Equal(t, "agency-1", req.AgencyID)
			require.Len(t, req.Blocks, 1)
			assert.Equal(t, blocktree.BlockTypeTitle, req.Blocks[0].Type)
			return &domain.Artifact{
				Filename:    "brochure-2026-03-14.html",
				ContentType: "text/html; charset=utf-8",
				Backend:     domain.RenderBackendHTML,
				Data:        []byte(html),
			}, nil
		})

	rr := postJSON(t, mux, "/api/brochure.exportHTML", `{
		"agency_id": "agency-1",
		"property_id": "prop-1",
		"blocks": [{"id": "h1", "type": "title", "content": "Title", "dynamicField": "project.title"}]
	}`)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/html; charset=utf-8", rr.Header().Get("Content-Type"))
	assert.True(t, strings.HasSuffix(rr.Header().Get("Content-Disposition"), `.html"`))
	assert.Equal(t, html, rr.Body.String())
}

func TestBrochureHandler_HandleEditor(t *testing.T) {
	t.Run("applies the operation", func(t *testing.T) {
		mockService, mux := setupBrochureHandlerTest(t)
		mockService.EXPECT().ApplyEditorOperation(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ interface{}, req *domain.EditorOperationRequest) (*domain.EditorState, error) {
				assert.Equal(t, domain.EditorOperationAdd, req.Operation)
				assert.Equal(t, blocktree.BlockTypeText, req.BlockType)
				return &domain.EditorState{
					Blocks:     []blocktree.Block{{ID: "b1", Type: blocktree.BlockTypeText, Content: "Text"}},
					SelectedID: "b1",
					AffectedID: "b1",
				}, nil
			})

		rr := postJSON(t, mux, "/api/brochure.editor", `{"blocks": [], "operation": "add", "block_type": "text"}`)

		assert.Equal(t, http.StatusOK, rr.Code)
		body := decodeBody(t, rr)
		assert.Equal(t, "b1", body["selected_id"])
		assert.Len(t, body["blocks"], 1)
	})

	t.Run("unknown operation", func(t *testing.T) {
		_, mux := setupBrochureHandlerTest(t)
		rr := postJSON(t, mux, "/api/brochure.editor", `{"blocks": [], "operation": "explode"}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("structurally invalid edit", func(t *testing.T) {
		mockService, mux := setupBrochureHandlerTest(t)
		mockService.EXPECT().ApplyEditorOperation(gomock.Any(), gomock.Any()).
			Return(nil, fmt.Errorf("editor move: %w", blocktree.ErrCyclicMove))

		rr := postJSON(t, mux, "/api/brochure.editor", `{
			"blocks": [{"id": "c1", "type": "container", "children": []}],
			"operation": "move",
			"block_id": "c1",
			"target": {"blockId": "c1"}
		}`)
		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
		assert.Contains(t, decodeBody(t, rr)["error"], blocktree.ErrCyclicMove.Error())
	})
}

func TestBrochureHandler_HandleFields(t *testing.T) {
	mockService, mux := setupBrochureHandlerTest(t)
	mockService.EXPECT().BindableFields().Return(domain.BindableFields())

	req := httptest.NewRequest(http.MethodGet, "/api/brochure.fields", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	body := decodeBody(t, rr)
	assert.Len(t, body["fields"], len(domain.BindableFields()))
	assert.Contains(t, rr.Body.String(), "project.title")
}
