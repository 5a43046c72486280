package security

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
)

// CORSConfig lists the browser origins allowed to call the API.
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	ExposedHeaders []string
	MaxAgeSeconds  int
}

func DefaultCORSConfig(origins []string) CORSConfig {
	return CORSConfig{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Accept", "X-Request-ID"},
		ExposedHeaders: []string{"Location", "X-Request-ID", "Retry-After"},
		MaxAgeSeconds:  600,
	}
}

type CORSMiddleware struct {
	config    CORSConfig
	anyOrigin bool
}

func NewCORSMiddleware(config CORSConfig) *CORSMiddleware {
	return &CORSMiddleware{
		config:    config,
		anyOrigin: slices.Contains(config.AllowedOrigins, "*"),
	}
}

// Allowed reports whether origin may call the API.
func (c *CORSMiddleware) Allowed(origin string) bool {
	if origin == "" {
		return false
	}
	return c.anyOrigin || slices.Contains(c.config.AllowedOrigins, origin)
}

// Middleware answers preflight requests itself and decorates the responses
// of allowed origins. Requests from other origins pass through without CORS
// headers, leaving the browser to block them.
func (c *CORSMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		headers := w.Header()
		headers.Add("Vary", "Origin")

		preflight := r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != ""
		if !c.Allowed(origin) {
			if preflight {
				w.WriteHeader(http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
			return
		}

		headers.Set("Access-Control-Allow-Origin", origin)
		if preflight {
			headers.Add("Vary", "Access-Control-Request-Method")
			headers.Add("Vary", "Access-Control-Request-Headers")
			headers.Set("Access-Control-Allow-Methods", strings.Join(c.config.AllowedMethods, ", "))
			headers.Set("Access-Control-Allow-Headers", strings.Join(c.config.AllowedHeaders, ", "))
			if c.config.MaxAgeSeconds > 0 {
				headers.Set("Access-Control-Max-Age", strconv.Itoa(c.config.MaxAgeSeconds))
			}
			w.WriteHeader(http.StatusNoContent)
			return
		}
		if len(c.config.ExposedHeaders) > 0 {
			headers.Set("Access-Control-Expose-Headers", strings.Join(c.config.ExposedHeaders, ", "))
		}
		next.ServeHTTP(w, r)
	})
}
