package tracing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opencensus.io/trace"
)

// recordingExporter collects finished spans
type recordingExporter struct {
	mu    sync.Mutex
	spans []*trace.SpanData
}

func (r *recordingExporter) ExportSpan(s *trace.SpanData) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.spans = append(r.spans, s)
}

func (r *recordingExporter) byName(name string) *trace.SpanData {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.spans {
		if s.Name == name {
			return s
		}
	}
	return nil
}

func recordSpans(t *testing.T) *recordingExporter {
	t.Helper()
	rec := &recordingExporter{}
	trace.RegisterExporter(rec)
	trace.ApplyConfig(trace.Config{DefaultSampler: trace.AlwaysSample()})
	t.Cleanup(func() { trace.UnregisterExporter(rec) })
	return rec
}

func TestStartServiceSpan(t *testing.T) {
	rec := recordSpans(t)

	ctx, span := StartServiceSpan(context.Background(), "BrochureService", "Generate")
	require.NotNil(t, span)
	assert.Same(t, span, trace.FromContext(ctx))
	span.End()

	assert.NotNil(t, rec.byName("BrochureService.Generate"))
}

func TestEndSpanRecordsError(t *testing.T) {
	rec := recordSpans(t)

	_, ok := trace.StartSpan(context.Background(), "ok")
	EndSpan(ok, nil)
	_, failed := trace.StartSpan(context.Background(), "failed")
	EndSpan(failed, errors.New("render failed"))

	assert.Equal(t, int32(trace.StatusCodeOK), rec.byName("ok").Status.Code)
	assert.Equal(t, int32(trace.StatusCodeUnknown), rec.byName("failed").Status.Code)
	assert.Equal(t, "render failed", rec.byName("failed").Status.Message)
}

func TestTraceMethodWithResult(t *testing.T) {
	recordSpans(t)

	n, err := TraceMethodWithResult(context.Background(), "Svc", "Count", func(ctx context.Context) (int, error) {
		return 6, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 6, n)

	s, err := TraceMethodWithResult(context.Background(), "Svc", "Fail", func(ctx context.Context) (string, error) {
		return "", errors.New("nope")
	})
	assert.Error(t, err)
	assert.Empty(t, s)
}

func TestAddAttribute(t *testing.T) {
	rec := recordSpans(t)

	// no span in context is a no-op
	AddAttribute(context.Background(), "ignored", "x")

	ctx, span := trace.StartSpan(context.Background(), "attrs")
	AddAttribute(ctx, "agency.id", "a1")
	AddAttribute(ctx, "pages", 6)
	AddAttribute(ctx, "bytes", int64(1024))
	AddAttribute(ctx, "ratio", 0.5)
	AddAttribute(ctx, "raster", true)
	AddAttribute(ctx, "elapsed", 2*time.Second)
	span.End()

	attrs := rec.byName("attrs").Attributes
	assert.Equal(t, "a1", attrs["agency.id"])
	assert.Equal(t, int64(6), attrs["pages"])
	assert.Equal(t, int64(1024), attrs["bytes"])
	assert.Equal(t, 0.5, attrs["ratio"])
	assert.Equal(t, true, attrs["raster"])
	assert.Equal(t, "2s", attrs["elapsed"])
}

func TestMarkSpanError(t *testing.T) {
	rec := recordSpans(t)

	MarkSpanError(context.Background(), errors.New("no span"))

	ctx, span := trace.StartSpan(context.Background(), "marked")
	MarkSpanError(ctx, nil)
	MarkSpanError(ctx, errors.New("bad image"))
	span.End()

	assert.Equal(t, "bad image", rec.byName("marked").Status.Message)
}

func TestWrapHTTPClient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	wrapped := WrapHTTPClient(nil)
	assert.Equal(t, 30*time.Second, wrapped.Timeout)

	base := &http.Client{Timeout: 5 * time.Second}
	wrapped = WrapHTTPClient(base)
	assert.Equal(t, 5*time.Second, wrapped.Timeout)
	assert.NotSame(t, base, wrapped)

	resp, err := wrapped.Get(server.URL + "/images/a.jpg")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestWrapHandler(t *testing.T) {
	rec := recordSpans(t)

	h := WrapHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotNil(t, trace.FromContext(r.Context()))
		w.WriteHeader(http.StatusNoContent)
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/brochures.generate", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.NotNil(t, rec.byName("/api/brochures.generate"))
}
