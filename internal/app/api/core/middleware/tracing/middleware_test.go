package tracing

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware_GeneratesId(t *testing.T) {
	var ctxId string
	handler := New().Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctxId = RequestId(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	headerId := rec.Header().Get("X-Request-ID")
	_, err := uuid.Parse(headerId)
	require.NoError(t, err)
	assert.Equal(t, headerId, ctxId)
}

func TestMiddleware_ReusesUpstreamId(t *testing.T) {
	handler := New(
		WithUpstreamHeader("X-Request-ID"),
		WithHeaderIdentifier("X-Trace"),
	).Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "upstream-1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "upstream-1", rec.Header().Get("X-Trace"))
	assert.Empty(t, rec.Header().Get("X-Request-ID"))
}
