package recovery

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"runtime/debug"
	"strings"
)

// Middleware recovers from panics in later handlers and answers with an Internal Server Error.
// It should be the first middleware in the chain.
type Middleware struct {
	o options
}

// New returns a new recovery middleware with the provided options.
func New(opts ...Option) *Middleware {
	return &Middleware{o: newOptions(opts...)}
}

// Handler returns the recovery middleware handler.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec) // let net/http abort the response
			}

			stack := debug.Stack()
			err, ok := rec.(error)
			if !ok {
				err = fmt.Errorf("%v", rec)
			}

			if isBrokenPipeError(err) {
				slog.Debug(m.o.logPrefix+"client connection lost", "path", r.URL.Path, "error", err)
				return
			}

			slog.Error(m.o.logPrefix+"recovered from panic", "path", r.URL.Path, "error", err, "stack", string(stack))
			m.o.errCallback(err, stack, w, r)
		}()

		next.ServeHTTP(w, r)
	})
}

func defaultErrCallback(exposeStackTrace bool) func(error, []byte, http.ResponseWriter, *http.Request) {
	return func(_ error, stack []byte, w http.ResponseWriter, _ *http.Request) {
		body := map[string]any{
			"Code":    http.StatusInternalServerError,
			"Message": "Internal Server Error",
		}
		if exposeStackTrace {
			body["Stack"] = string(stack)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(body)
	}
}

func isBrokenPipeError(err error) bool {
	var syscallErr *os.SyscallError
	if !errors.As(err, &syscallErr) {
		return false
	}

	msg := strings.ToLower(syscallErr.Err.Error())
	return strings.Contains(msg, "broken pipe") || strings.Contains(msg, "connection reset by peer")
}
