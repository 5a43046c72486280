package trace

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gastos/internal/log"
)

func TestMiddleware_RequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(log.Config{Format: log.FormatJSON, Output: &buf})

	var (
		seenID     string
		seenRoute  string
		seenStatus int
	)
	m := NewMiddleware(logger, func(*http.Request) string { return "192.0.2.1" },
		func(method, route string, status int, _ time.Duration) {
			seenRoute = route
			seenStatus = status
		})

	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenID = GetRequestID(r.Context())
		SetRoute(r.Context(), "GET /api/people/{id}")
		assert.Equal(t, "192.0.2.1", ClientIP(r.Context()))
		w.WriteHeader(http.StatusNotFound)
		w.WriteHeader(http.StatusInternalServerError)
	}))

	t.Run("generates an id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/people/9", nil))

		_, err := uuid.Parse(seenID)
		require.NoError(t, err)
		assert.Equal(t, seenID, rec.Header().Get(HeaderRequestID))
		assert.Equal(t, "GET /api/people/{id}", seenRoute)
		assert.Equal(t, http.StatusNotFound, seenStatus)

		var line map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
		assert.Equal(t, "WARN", line["level"])
		assert.Equal(t, "GET /api/people/{id}", line[log.FieldRoute])
		assert.Equal(t, "192.0.2.1", line[log.FieldClientIP])
	})

	t.Run("honors a valid incoming id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/people/9", nil)
		req.Header.Set(HeaderRequestID, "client-abc.1")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, "client-abc.1", seenID)
		assert.Equal(t, "client-abc.1", rec.Header().Get(HeaderRequestID))
	})

	t.Run("replaces an unsafe incoming id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/people/9", nil)
		req.Header.Set(HeaderRequestID, "bad id\nforged=1")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.NotEqual(t, "bad id\nforged=1", seenID)
		_, err := uuid.Parse(seenID)
		assert.NoError(t, err)
	})

	assert.Equal(t, int64(3), m.GetMetrics().TotalRequests)
}

func TestContextHelpersWithoutMiddleware(t *testing.T) {
	ctx := httptest.NewRequest(http.MethodGet, "/", nil).Context()
	assert.Empty(t, GetRequestID(ctx))
	assert.Empty(t, ClientIP(ctx))
	SetRoute(ctx, "GET /")
}
