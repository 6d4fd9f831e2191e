package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opencensus.io/trace"
)

func TestTracingMiddleware(t *testing.T) {
	var sawSpan bool
	handler := TracingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawSpan = trace.FromContext(r.Context()) != nil
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/brochure.settings?agency_id=agency-1", nil)
	req.Header.Set("User-Agent", "test-agent")
	req.Header.Set("X-Request-ID", "test-request-id")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, sawSpan)
}

func TestTracingMiddleware_ErrorStatus(t *testing.T) {
	handler := TracingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/brochure.generate", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "boom")
}

func TestTraceResponseWriter_Flush(t *testing.T) {
	_, span := trace.StartSpan(httptest.NewRequest(http.MethodGet, "/", nil).Context(), "test")
	defer span.End()

	recorder := httptest.NewRecorder()
	trw := &traceResponseWriter{ResponseWriter: recorder, span: span}
	trw.WriteHeader(http.StatusAccepted)
	trw.Flush()

	assert.Equal(t, http.StatusAccepted, trw.statusCode)
	assert.True(t, recorder.Flushed)
}
