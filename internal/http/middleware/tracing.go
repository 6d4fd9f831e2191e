package middleware

import (
	"net/http"

	"go.opencensus.io/trace"

	"github.com/listingdeck/listingdeck/pkg/tracing"
)

// TracingMiddleware adds OpenCensus tracing to HTTP requests. The span is
// named after the RPC route and annotated with the request metadata.
func TracingMiddleware(next http.Handler) http.Handler {
	annotated := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		span := trace.FromContext(r.Context())
		if span == nil {
			next.ServeHTTP(w, r)
			return
		}

		span.AddAttributes(
			trace.StringAttribute("http.host", r.Host),
			trace.StringAttribute("http.user_agent", r.UserAgent()),
			trace.StringAttribute("http.method", r.Method),
			trace.StringAttribute("http.path", r.URL.Path),
		)
		if requestID := r.Header.Get("X-Request-ID"); requestID != "" {
			span.AddAttributes(trace.StringAttribute("http.request_id", requestID))
		}
		if contentType := r.Header.Get("Content-Type"); contentType != "" {
			span.AddAttributes(trace.StringAttribute("http.content_type", contentType))
		}

		next.ServeHTTP(&traceResponseWriter{ResponseWriter: w, span: span}, r)
	})

	return tracing.WrapHandler(annotated)
}

// traceResponseWriter records the status code on the request span
type traceResponseWriter struct {
	http.ResponseWriter
	span       *trace.Span
	statusCode int
}

// WriteHeader captures the status code for tracing
func (trw *traceResponseWriter) WriteHeader(code int) {
	trw.statusCode = code
	trw.span.AddAttributes(trace.Int64Attribute("http.status_code", int64(code)))

	// Mark error spans for 4xx and 5xx status codes
	if code >= 400 {
		trw.span.SetStatus(trace.Status{
			Code:    trace.StatusCodeUnknown,
			Message: http.StatusText(code),
		})
	}

	trw.ResponseWriter.WriteHeader(code)
}

// Flush implements http.Flusher so streamed artifacts are not buffered
func (trw *traceResponseWriter) Flush() {
	if flusher, ok := trw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

var _ http.ResponseWriter = (*traceResponseWriter)(nil)
var _ http.Flusher = (*traceResponseWriter)(nil)
