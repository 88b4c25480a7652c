package httpclient

import (
	"context"
	"net/http"
)

type ctxHeaderKey struct{}

// ContextWithHeader returns a context carrying an extra header that Do
// applies to the outgoing request. Callers several layers above the
// request builder (e.g. an idempotency key set by a typed API client) use
// this instead of threading header maps through every signature.
func ContextWithHeader(ctx context.Context, key, value string) context.Context {
	h, _ := ctx.Value(ctxHeaderKey{}).(http.Header)
	merged := make(http.Header, len(h)+1)
	for k, v := range h {
		merged[k] = v
	}
	merged.Set(key, value)
	return context.WithValue(ctx, ctxHeaderKey{}, merged)
}

// headersFromContext returns the extra headers carried by ctx, or nil.
func headersFromContext(ctx context.Context) http.Header {
	h, _ := ctx.Value(ctxHeaderKey{}).(http.Header)
	return h
}
