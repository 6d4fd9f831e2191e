package tracing

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.opencensus.io/plugin/ochttp"
	"go.opencensus.io/trace"
)

// StartServiceSpan starts a span named "<service>.<method>"
func StartServiceSpan(ctx context.Context, serviceName, methodName string) (context.Context, *trace.Span) {
	return trace.StartSpan(ctx, fmt.Sprintf("%s.%s", serviceName, methodName))
}

// EndSpan ends a span and records err as its status
func EndSpan(span *trace.Span, err error) {
	if err != nil {
		span.SetStatus(errorStatus(err))
	}
	span.End()
}

// TraceMethodWithResult runs f inside a service span and returns its result
func TraceMethodWithResult[T any](
	ctx context.Context,
	serviceName,
	methodName string,
	f func(context.Context) (T, error),
) (T, error) {
	ctx, span := StartServiceSpan(ctx, serviceName, methodName)
	result, err := f(ctx)
	EndSpan(span, err)
	return result, err
}

// AddAttribute adds an attribute to the span carried by ctx, if any
func AddAttribute(ctx context.Context, key string, value interface{}) {
	span := trace.FromContext(ctx)
	if span == nil {
		return
	}

	switch v := value.(type) {
	case string:
		span.AddAttributes(trace.StringAttribute(key, v))
	case int:
		span.AddAttributes(trace.Int64Attribute(key, int64(v)))
	case int32:
		span.AddAttributes(trace.Int64Attribute(key, int64(v)))
	case int64:
		span.AddAttributes(trace.Int64Attribute(key, v))
	case float64:
		span.AddAttributes(trace.Float64Attribute(key, v))
	case bool:
		span.AddAttributes(trace.BoolAttribute(key, v))
	case fmt.Stringer:
		span.AddAttributes(trace.StringAttribute(key, v.String()))
	default:
		span.AddAttributes(trace.StringAttribute(key, fmt.Sprintf("%v", v)))
	}
}

// MarkSpanError marks the span carried by ctx as failed
func MarkSpanError(ctx context.Context, err error) {
	if err == nil {
		return
	}
	if span := trace.FromContext(ctx); span != nil {
		span.SetStatus(errorStatus(err))
	}
}

func errorStatus(err error) trace.Status {
	return trace.Status{
		Code:    trace.StatusCodeUnknown,
		Message: err.Error(),
	}
}

// HTTPTransport returns an ochttp transport that names client spans "<METHOD> <path>"
func HTTPTransport(base http.RoundTripper) *ochttp.Transport {
	return &ochttp.Transport{
		Base: base,
		FormatSpanName: func(req *http.Request) string {
			return fmt.Sprintf("%s %s", req.Method, req.URL.Path)
		},
	}
}

// WrapHTTPClient returns a copy of client whose requests are traced.
// A nil client gets a 30 second timeout.
func WrapHTTPClient(client *http.Client) *http.Client {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	return &http.Client{
		Transport:     HTTPTransport(client.Transport),
		Timeout:       client.Timeout,
		Jar:           client.Jar,
		CheckRedirect: client.CheckRedirect,
	}
}

// WrapHandler traces inbound requests, naming spans after the RPC route
func WrapHandler(h http.Handler) http.Handler {
	return &ochttp.Handler{
		Handler: h,
		FormatSpanName: func(r *http.Request) string {
			return r.URL.Path
		},
	}
}
