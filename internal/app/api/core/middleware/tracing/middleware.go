package tracing

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type ctxKey struct{}

// Middleware assigns a request id to each request. An id sent by an upstream proxy is re-used.
type Middleware struct {
	o options
}

// New returns a new tracing middleware with the provided options.
func New(opts ...Option) *Middleware {
	return &Middleware{o: newOptions(opts...)}
}

// Handler returns the tracing middleware handler.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var reqId string

		if m.o.upstreamHeader != "" {
			reqId = r.Header.Get(m.o.upstreamHeader)
		}
		if reqId == "" {
			reqId = uuid.NewString()
		}

		if m.o.headerIdentifier != "" {
			w.Header().Set(m.o.headerIdentifier, reqId)
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, reqId)))
	})
}

// RequestId returns the id assigned by the middleware, or an empty string.
func RequestId(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}
