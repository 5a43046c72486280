package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"":      slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	} {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestNewHandlerFormats(t *testing.T) {
	for _, format := range []string{FormatText, FormatJSON, FormatTint} {
		h, err := NewHandler(format, &bytes.Buffer{}, slog.LevelInfo)
		require.NoError(t, err, format)
		assert.NotNil(t, h)
	}
	_, err := NewHandler("xml", &bytes.Buffer{}, slog.LevelInfo)
	assert.Error(t, err)
}

func TestLoggerAddsComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelDebug, Format: FormatJSON, Output: &buf, Component: ComponentLedger})

	l.InfoContext(context.Background(), "hello", FieldPersonID, int64(7))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "hello", rec["msg"])
	assert.Equal(t, ComponentLedger, rec[FieldComponent])
	assert.EqualValues(t, 7, rec[FieldPersonID])
}

func TestMiddlewareStoresLogger(t *testing.T) {
	var buf bytes.Buffer
	base := New(Config{Format: FormatJSON, Output: &buf})

	h := Middleware(base, func(context.Context) string { return "req-1" })(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		FromContext(r.Context()).InfoContext(r.Context(), "inside")
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "req-1", rec[FieldRequestID])
}

func TestLogHTTPEndLevels(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(New(Config{Format: FormatJSON, Output: &buf}))
	r := httptest.NewRequest(http.MethodGet, "/api/people", nil)

	sl.LogHTTPEnd(context.Background(), r, "GET /api/people", http.StatusInternalServerError, 3, "10.0.0.1")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "ERROR", rec["level"])
	assert.EqualValues(t, 500, rec[FieldStatusCode])
	assert.Equal(t, ComponentHTTP, rec[FieldComponent])
	assert.Equal(t, "GET /api/people", rec[FieldRoute])

	buf.Reset()
	sl.LogError(context.Background(), "boom", errors.New("disk"), ComponentStorage, OpCreate, ErrorTypeDatabase)
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, ErrorTypeDatabase, rec[FieldErrorType])
}
