package logging

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/h44z/mariadb-varportal/internal/app/api/core/middleware/tracing"
)

// Middleware logs method, path, status, size and duration of each request.
type Middleware struct {
	o options
}

// New returns a new logging middleware with the provided options.
func New(opts ...Option) *Middleware {
	return &Middleware{o: newOptions(opts...)}
}

// Handler returns the logging middleware handler.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := newWriterWrapper(w)
		start := time.Now()
		defer func() {
			level := m.o.level
			if ww.statusCode >= http.StatusInternalServerError {
				level = slog.LevelError
			}

			logger := m.o.logger
			if logger == nil {
				logger = slog.Default()
			}

			attrs := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.statusCode,
				"size", ww.size,
				"duration", time.Since(start).String(),
				"client", r.RemoteAddr,
			}
			if reqId := tracing.RequestId(r.Context()); reqId != "" {
				attrs = append(attrs, "request_id", reqId)
			}

			logger.Log(r.Context(), level, "http request", attrs...)
		}()

		next.ServeHTTP(ww, r)
	})
}
