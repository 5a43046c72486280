package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"gastos/internal/core"
)

const (
	outcomeOK       = "ok"
	outcomeRejected = "rejected"
	outcomeError    = "error"
)

type (
	healthResponse struct {
		Status    string `json:"status"`
		Timestamp string `json:"timestamp"`
		Uptime    string `json:"uptime"`
	}

	readyResponse struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(healthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Uptime:    time.Since(s.started).Round(time.Second).String(),
	}).Write(w)
}

// handleReady reports whether the store answers within a short deadline.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := readyResponse{Status: "ready", Checks: map[string]string{"store": "ok"}}
	status := http.StatusOK
	if err := s.store.Ping(ctx); err != nil {
		s.logger.WarnContext(ctx, "Readiness check failed", "error", err)
		resp.Status = "not_ready"
		resp.Checks["store"] = "unavailable"
		status = http.StatusServiceUnavailable
	}
	NewJSONResponse().Status(status).Body(resp).Write(w)
}

// observeWrite classifies a write result for the ledger_writes_total counter.
func (s *Server) observeWrite(entity, operation string, err error) {
	var ve *core.ValidationError
	outcome := outcomeOK
	switch {
	case err == nil:
	case errors.As(err, &ve), errors.Is(err, core.ErrNotFound):
		outcome = outcomeRejected
	default:
		outcome = outcomeError
	}
	s.metrics.ObserveWrite(entity, operation, outcome)
}
