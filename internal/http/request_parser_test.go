package http

import (
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gastos/internal/core"
)

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantCode  string
		wantField string
	}{
		{name: "valid", body: `{"description":"Rent","value":"1200,50","type":"expense","categoryId":1,"personId":2}`},
		{name: "numeric value", body: `{"description":"Rent","value":12.345,"type":"expense"}`},
		{name: "empty body", body: ``, wantCode: core.CodeMalformedBody},
		{name: "syntax error", body: `{"description":`, wantCode: core.CodeMalformedBody},
		{name: "trailing data", body: `{"description":"a"} {"x":1}`, wantCode: core.CodeMalformedBody},
		{name: "wrong type", body: `{"personId":"two"}`, wantCode: core.CodeMalformedBody, wantField: "personId"},
		{name: "unreadable amount decodes", body: `{"value":"abc"}`},
		{name: "object amount decodes", body: `{"value":{"x":1}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodPost, "/api/transactions", strings.NewReader(tt.body))

			var req transactionRequest
			err := decodeJSON(w, r, &req)
			if tt.wantCode == "" {
				require.NoError(t, err)
				return
			}
			var ve *core.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.wantCode, ve.Code)
			assert.Equal(t, tt.wantField, ve.Field)
		})
	}
}

func TestTransactionRequestLenientValue(t *testing.T) {
	tests := map[string]string{
		``:                        "0.00",
		`null`:                    "0.00",
		`"abc"`:                   "0.00",
		`true`:                    "0.00",
		`"1e1000000"`:             "0.00",
		`12.345`:                  "12.35",
		`"184467440737095516.17"`: "184467440737095516.17",
	}
	for raw, want := range tests {
		req := transactionRequest{Value: []byte(raw)}
		assert.Equal(t, want, req.input().Value.String(), raw)
	}
}

func TestDecodeJSON_Values(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/transactions",
		strings.NewReader(`{"description":" Rent\u0007 ","value":"1200,505","type":"EXPENSE","categoryId":1,"personId":2}`))

	var req transactionRequest
	require.NoError(t, decodeJSON(w, r, &req))

	in := req.input()
	assert.Equal(t, " Rent ", in.Description)
	assert.Equal(t, "1200.51", in.Value.String())
	assert.Equal(t, "EXPENSE", in.Type)
	assert.Equal(t, int64(1), in.CategoryID)
	assert.Equal(t, int64(2), in.PersonID)
}

func TestDecodeJSON_TooLarge(t *testing.T) {
	w := httptest.NewRecorder()
	body := `{"name":"` + strings.Repeat("a", maxBodyBytes) + `"}`
	r := httptest.NewRequest(http.MethodPost, "/api/people", strings.NewReader(body))

	var req personRequest
	err := decodeJSON(w, r, &req)
	var ve *core.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, core.CodeMalformedBody, ve.Code)
}

func TestPersonRequestAge(t *testing.T) {
	_, err := personRequest{Name: "Ana"}.age()
	var ve *core.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, core.CodeRequired, ve.Code)
	assert.Equal(t, "age", ve.Field)

	zero := 0
	age, err := personRequest{Name: "Baby", Age: &zero}.age()
	require.NoError(t, err)
	assert.Zero(t, age)
}

func TestParseID(t *testing.T) {
	tests := []struct {
		value  string
		wantID int64
		wantOK bool
	}{
		{"1", 1, true},
		{"42", 42, true},
		{"0", 0, false},
		{"-3", 0, false},
		{"abc", 0, false},
		{"1.5", 0, false},
		{"99999999999999999999", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/people/x", nil)
			r.SetPathValue("id", tt.value)
			id, ok := parseID(r)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantID, id)
		})
	}
}

func TestParsePageRequest(t *testing.T) {
	tests := []struct {
		name         string
		query        string
		wantPage     int
		wantPageSize int
		wantParams   bool
	}{
		{name: "defaults", query: "", wantPage: 1, wantPageSize: core.DefaultPageSize},
		{name: "explicit", query: "page=3&pageSize=20", wantPage: 3, wantPageSize: 20, wantParams: true},
		{name: "clamped low", query: "page=0&pageSize=0", wantPage: 1, wantPageSize: core.DefaultPageSize, wantParams: true},
		{name: "clamped high", query: "pageSize=1000", wantPage: 1, wantPageSize: core.MaxPageSize, wantParams: true},
		{name: "non numeric", query: "page=abc&pageSize=xyz", wantPage: 1, wantPageSize: core.DefaultPageSize, wantParams: true},
		{name: "far page", query: "page=30000000", wantPage: 30_000_000, wantPageSize: core.DefaultPageSize, wantParams: true},
		{name: "page past int32", query: "page=99999999999", wantPage: math.MaxInt32, wantPageSize: core.DefaultPageSize, wantParams: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/people?"+tt.query, nil)
			req := parsePageRequest(r)
			assert.Equal(t, tt.wantPage, req.Page)
			assert.Equal(t, tt.wantPageSize, req.PageSize)
			assert.Equal(t, tt.wantParams, hasPageParams(r))
		})
	}
}

func TestSanitizeInput(t *testing.T) {
	assert.Equal(t, "ab\tc\n", sanitizeInput("a\x00b\tc\n\x1b"))
	assert.Equal(t, "Café", sanitizeInput("Café"))
}

func TestResourcePath(t *testing.T) {
	assert.Equal(t, "/api/transactions/12", resourcePath("/api", "transactions", 12))
	assert.Equal(t, "/people/1", resourcePath("", "people", 1))
}
