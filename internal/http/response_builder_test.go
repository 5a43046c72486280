package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gastos/internal/core"
)

func TestJSONResponseBuilder(t *testing.T) {
	w := httptest.NewRecorder()

	NewJSONResponse().
		Status(http.StatusCreated).
		Location("/api/people/7").
		Header("X-Custom", "yes").
		Body(core.Person{ID: 7, Name: "Ana", Age: 31}).
		Write(w)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "/api/people/7", w.Header().Get("Location"))
	assert.Equal(t, "yes", w.Header().Get("X-Custom"))
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"id":7,"name":"Ana","age":31}`, w.Body.String())
}

func TestJSONResponseBuilder_NoBody(t *testing.T) {
	w := httptest.NewRecorder()

	NewJSONResponse().Status(http.StatusNoContent).Write(w)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
	assert.Empty(t, w.Header().Get("Content-Type"))
}

func TestJSONResponseBuilder_EncodeFailure(t *testing.T) {
	w := httptest.NewRecorder()

	NewJSONResponse().Body(map[string]any{"bad": make(chan int)}).Write(w)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), CodeInternal)
}

func TestErrorResponses(t *testing.T) {
	tests := []struct {
		name       string
		builder    *JSONResponseBuilder
		wantStatus int
		wantBody   string
	}{
		{
			name:       "validation",
			builder:    BadRequestError(core.NewValidationError("age", core.CodeInvalidAge, "age must not be negative")),
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"invalid_age","message":"age must not be negative","field":"age"}`,
		},
		{
			name:       "not found",
			builder:    NotFoundError("person not found"),
			wantStatus: http.StatusNotFound,
			wantBody:   `{"error":"not_found","message":"person not found"}`,
		},
		{
			name:       "internal",
			builder:    InternalServerError(),
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":"internal_error","message":"internal server error"}`,
		},
		{
			name:       "rate limited",
			builder:    TooManyRequestsError(),
			wantStatus: http.StatusTooManyRequests,
			wantBody:   `{"error":"rate_limited","message":"rate limit exceeded, try again later"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.builder.Write(w)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.JSONEq(t, tt.wantBody, w.Body.String())
		})
	}
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantField  string
	}{
		{
			name:       "rejection",
			err:        core.NewValidationError("name", core.CodeInvalidName, "name is required"),
			wantStatus: http.StatusBadRequest,
			wantCode:   core.CodeInvalidName,
			wantField:  "name",
		},
		{
			name:       "missing reference is a rejection",
			err:        core.NewReferenceError("personId", core.CodePersonNotFound, "person not found", core.ErrPersonNotFound),
			wantStatus: http.StatusBadRequest,
			wantCode:   core.CodePersonNotFound,
			wantField:  "personId",
		},
		{
			name:       "missing target",
			err:        fmt.Errorf("get person 3: %w", core.ErrPersonNotFound),
			wantStatus: http.StatusNotFound,
			wantCode:   CodeNotFound,
		},
		{
			name:       "unexpected",
			err:        errors.New("disk on fire"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   CodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/api/people/3", nil)

			writeError(w, r, "test", tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			body := decodeBody[ErrorBody](t, w)
			assert.Equal(t, tt.wantCode, body.Error)
			assert.Equal(t, tt.wantField, body.Field)
			assert.NotContains(t, w.Body.String(), "disk on fire")
		})
	}
}

func TestNotFoundMessage(t *testing.T) {
	assert.Equal(t, "person not found", notFoundMessage(core.ErrPersonNotFound))
	assert.Equal(t, "category not found", notFoundMessage(fmt.Errorf("x: %w", core.ErrCategoryNotFound)))
	assert.Equal(t, "resource not found", notFoundMessage(core.ErrNotFound))
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), "body: %s", w.Body.String())
	return v
}
