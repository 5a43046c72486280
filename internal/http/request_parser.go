// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing and validating HTTP request data:
// JSON bodies, path ids and page parameters.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"

	"gastos/internal/core"
)

const maxBodyBytes = 1 << 20

type (
	personRequest struct {
		Name string `json:"name"`
		Age  *int   `json:"age"`
	}

	categoryRequest struct {
		Description string `json:"description"`
		Purpose     string `json:"purpose"`
	}

	// transactionRequest keeps value raw so an unreadable amount is rejected by
	// the ordered transaction checks rather than by the decoder.
	transactionRequest struct {
		Description string          `json:"description"`
		Value       json.RawMessage `json:"value"`
		Type        string          `json:"type"`
		CategoryID  int64           `json:"categoryId"`
		PersonID    int64           `json:"personId"`
	}
)

// decodeJSON reads a single JSON object into dst. Malformed bodies are
// reported as rejections so they map to 400.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)

	if err := dec.Decode(dst); err != nil {
		return bodyError(err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return core.NewValidationError("", core.CodeMalformedBody, "request body must contain a single JSON object")
	}
	return nil
}

func bodyError(err error) error {
	var (
		typeErr   *json.UnmarshalTypeError
		syntaxErr *json.SyntaxError
		maxErr    *http.MaxBytesError
	)
	switch {
	case errors.Is(err, io.EOF):
		return core.NewValidationError("", core.CodeMalformedBody, "request body is empty")
	case errors.As(err, &typeErr):
		return core.NewValidationError(typeErr.Field, core.CodeMalformedBody,
			fmt.Sprintf("field %q must be of type %s", typeErr.Field, typeErr.Type))
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		return core.NewValidationError("", core.CodeMalformedBody, "request body is not valid JSON")
	case errors.As(err, &maxErr):
		return core.NewValidationError("", core.CodeMalformedBody,
			fmt.Sprintf("request body must not exceed %d bytes", maxErr.Limit))
	default:
		return core.NewValidationError("", core.CodeMalformedBody, "request body could not be decoded")
	}
}

// parseID reads the {id} path value. An id that is not a positive integer
// cannot name any row.
func parseID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}

// parsePageRequest reads page and pageSize. Missing or non-numeric values
// fall through to the clamps of core.NewPageRequest.
func parsePageRequest(r *http.Request) core.PageRequest {
	q := r.URL.Query()
	return core.NewPageRequest(queryInt(q.Get("page")), queryInt(q.Get("pageSize")))
}

// hasPageParams reports whether the caller asked for a window.
func hasPageParams(r *http.Request) bool {
	q := r.URL.Query()
	return q.Has("page") || q.Has("pageSize")
}

func queryInt(s string) int {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 32)
	if err != nil {
		if numErr, ok := err.(*strconv.NumError); ok && errors.Is(numErr.Err, strconv.ErrRange) {
			if strings.HasPrefix(strings.TrimSpace(s), "-") {
				return -1
			}
			return math.MaxInt32
		}
		return 0
	}
	return int(n)
}

func (p personRequest) age() (int, error) {
	if p.Age == nil {
		return 0, core.NewValidationError("age", core.CodeRequired, "age is required")
	}
	return *p.Age, nil
}

// input builds the candidate transaction. A value that is not a decimal
// number or numeric string becomes zero, which the value check rejects.
func (t transactionRequest) input() core.TransactionInput {
	var value core.Money
	if len(t.Value) > 0 {
		if err := value.UnmarshalJSON(t.Value); err != nil {
			value = core.Money{}
		}
	}
	return core.TransactionInput{
		Description: sanitizeInput(t.Description),
		Value:       value,
		Type:        t.Type,
		CategoryID:  t.CategoryID,
		PersonID:    t.PersonID,
	}
}
