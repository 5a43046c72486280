// Package trace assigns every request an id, records the matched route and
// writes the access log line once the response is done.
package trace

import (
	"context"
	"net/http"
	"regexp"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"gastos/internal/log"
)

// ContextKey type for context keys
type ContextKey string

const (
	// RequestIDKey is the context key for request ID
	RequestIDKey ContextKey = "request_id"
	infoKey      ContextKey = "request_info"

	HeaderRequestID = "X-Request-ID"
)

// Incoming ids are echoed back into logs and headers, so only short plain
// tokens are accepted.
var validRequestID = regexp.MustCompile(`^[A-Za-z0-9._-]{1,64}$`)

// Info is the per-request state shared between the middleware and the
// handlers below it.
type Info struct {
	RequestID string
	ClientIP  string
	Route     string
}

// Observer receives one call per completed request.
type Observer func(method, route string, status int, elapsed time.Duration)

// Middleware handles request tracing and logging
type Middleware struct {
	logger    *log.StructuredLogger
	extractIP func(*http.Request) string
	observe   Observer
	metrics   *Metrics
}

// Metrics tracks request metrics
type Metrics struct {
	TotalRequests       int64
	AverageResponseTime int64 // in microseconds, last request
}

func NewMiddleware(logger *log.Logger, extractIP func(*http.Request) string, observe Observer) *Middleware {
	return &Middleware{
		logger:    log.NewStructuredLogger(logger),
		extractIP: extractIP,
		observe:   observe,
		metrics:   &Metrics{},
	}
}

func (m *Middleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		info := &Info{RequestID: r.Header.Get(HeaderRequestID)}
		if !validRequestID.MatchString(info.RequestID) {
			info.RequestID = GenerateRequestID()
		}
		if m.extractIP != nil {
			info.ClientIP = m.extractIP(r)
		}
		w.Header().Set(HeaderRequestID, info.RequestID)

		ctx := context.WithValue(r.Context(), RequestIDKey, info.RequestID)
		ctx = context.WithValue(ctx, infoKey, info)
		r = r.WithContext(ctx)

		atomic.AddInt64(&m.metrics.TotalRequests, 1)

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		elapsed := time.Since(start)
		atomic.StoreInt64(&m.metrics.AverageResponseTime, elapsed.Microseconds())

		m.logger.LogHTTPEnd(ctx, r, info.Route, rw.statusCode, elapsed.Milliseconds(), info.ClientIP)
		if m.observe != nil {
			m.observe(r.Method, info.Route, rw.statusCode, elapsed)
		}
	})
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	return rw.ResponseWriter.Write(b)
}

func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// GenerateRequestID creates a unique request ID for tracing
func GenerateRequestID() string {
	return uuid.NewString()
}

// GetRequestID extracts the request ID from context
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}

// SetRoute records the mux pattern that matched the request.
func SetRoute(ctx context.Context, route string) {
	if info, ok := ctx.Value(infoKey).(*Info); ok {
		info.Route = route
	}
}

// ClientIP returns the client address resolved for the request.
func ClientIP(ctx context.Context) string {
	if info, ok := ctx.Value(infoKey).(*Info); ok {
		return info.ClientIP
	}
	return ""
}

// GetMetrics returns current metrics
func (m *Middleware) GetMetrics() Metrics {
	return Metrics{
		TotalRequests:       atomic.LoadInt64(&m.metrics.TotalRequests),
		AverageResponseTime: atomic.LoadInt64(&m.metrics.AverageResponseTime),
	}
}
