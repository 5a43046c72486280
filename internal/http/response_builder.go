// Package http provides HTTP server and handler implementations.
//
// This file implements the Builder Pattern for JSON responses and the single
// place where errors are mapped to status codes.

package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"gastos/internal/core"
	"gastos/internal/log"
)

// JSONResponseBuilder provides a fluent API for building JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	body       any
	headers    map[string]string
}

// NewJSONResponse creates a new response builder with default 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

// Location sets the Location header of a created resource.
func (b *JSONResponseBuilder) Location(url string) *JSONResponseBuilder {
	return b.Header("Location", url)
}

// Body sets the value encoded as the response body.
func (b *JSONResponseBuilder) Body(v any) *JSONResponseBuilder {
	b.body = v
	return b
}

// Write sends the built response. A nil body writes no content.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	if b.body == nil {
		w.WriteHeader(b.statusCode)
		return
	}

	payload, err := json.Marshal(b.body)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal_error","message":"failed to encode response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(b.statusCode)
	_, _ = w.Write(payload)
	_, _ = w.Write([]byte("\n"))
}

// ErrorBody is the JSON body of every error response.
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

const (
	CodeNotFound         = "not_found"
	CodeInternal         = "internal_error"
	CodeRateLimited      = "rate_limited"
	CodeMethodNotAllowed = "method_not_allowed"
)

// ErrorResponse creates a standard JSON error response.
func ErrorResponse(statusCode int, code, message, field string) *JSONResponseBuilder {
	return NewJSONResponse().
		Status(statusCode).
		Body(ErrorBody{Error: code, Message: message, Field: field})
}

// BadRequestError creates a 400 response for a rejected input.
func BadRequestError(ve *core.ValidationError) *JSONResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, ve.Code, ve.Message, ve.Field)
}

// NotFoundError creates a 404 Not Found error response.
func NotFoundError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusNotFound, CodeNotFound, message, "")
}

// InternalServerError hides the cause from the client.
func InternalServerError() *JSONResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, CodeInternal, "internal server error", "")
}

// TooManyRequestsError creates a 429 response.
func TooManyRequestsError() *JSONResponseBuilder {
	return ErrorResponse(http.StatusTooManyRequests, CodeRateLimited, "rate limit exceeded, try again later", "")
}

// writeError maps err to a response. Rejections of caller input become 400,
// a missing target becomes 404 and everything else is a logged 500.
// Reference rejections also wrap ErrNotFound, so the validation check runs
// first.
func writeError(w http.ResponseWriter, r *http.Request, operation string, err error) {
	ctx := r.Context()
	logger := log.NewStructuredLogger(log.FromContext(ctx))

	var ve *core.ValidationError
	switch {
	case errors.As(err, &ve):
		logger.LogRejected(ctx, operation, ve.Code, ve.Message)
		BadRequestError(ve).Write(w)
	case errors.Is(err, core.ErrNotFound):
		NotFoundError(notFoundMessage(err)).Write(w)
	default:
		logger.LogError(ctx, "Request failed", err, log.ComponentHTTP, operation, log.ErrorTypeDatabase)
		InternalServerError().Write(w)
	}
}

func notFoundMessage(err error) string {
	switch {
	case errors.Is(err, core.ErrPersonNotFound):
		return "person not found"
	case errors.Is(err, core.ErrCategoryNotFound):
		return "category not found"
	default:
		return "resource not found"
	}
}
