package http

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"gastos/internal/core"
	"gastos/internal/log"
	"gastos/internal/middleware/ratelimit"
	"gastos/internal/middleware/security"
	"gastos/internal/middleware/trace"
)

type (
	// LedgerService is the write and lookup surface the API exposes.
	LedgerService interface {
		ListPeople(ctx context.Context, req core.PageRequest) (core.Page[core.Person], error)
		GetPerson(ctx context.Context, id int64) (core.Person, error)
		CreatePerson(ctx context.Context, name string, age int) (core.Person, error)
		UpdatePerson(ctx context.Context, id int64, name string, age int) (core.Person, error)
		DeletePerson(ctx context.Context, id int64) (int, error)

		ListCategories(ctx context.Context, req core.PageRequest) (core.Page[core.Category], error)
		GetCategory(ctx context.Context, id int64) (core.Category, error)
		CreateCategory(ctx context.Context, description, purpose string) (core.Category, error)

		ListTransactions(ctx context.Context, req core.PageRequest) (core.Page[core.TransactionDetail], error)
		GetTransaction(ctx context.Context, id int64) (core.TransactionDetail, error)
		CreateTransaction(ctx context.Context, in core.TransactionInput) (core.TransactionDetail, error)
	}

	ReportService interface {
		TotalsByPerson(ctx context.Context) (core.Report[core.PersonTotals], error)
		TotalsByCategory(ctx context.Context) (core.Report[core.CategoryTotals], error)
	}

	// Pinger reports whether the store can serve requests.
	Pinger interface {
		Ping(ctx context.Context) error
	}
)

// ServerConfig holds what NewServer needs besides the services.
type ServerConfig struct {
	Addr               string
	APIPrefix          string
	CORSAllowedOrigins []string
	RateLimitPerMinute int
	Logger             *log.Logger
}

type Server struct {
	http.Server

	ledger  LedgerService
	reports ReportService
	store   Pinger
	prefix  string
	logger  *log.Logger
	metrics *Metrics
	started time.Time

	rateLimiter      *ratelimit.Limiter
	securityDetector *security.Detector
	traceMiddleware  *trace.Middleware

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(cfg ServerConfig, ledger LedgerService, reports ReportService, store Pinger) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	s := &Server{
		Server: http.Server{
			Addr:              cfg.Addr,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		ledger:  ledger,
		reports: reports,
		store:   store,
		prefix:  strings.TrimRight(cfg.APIPrefix, "/"),
		logger:  logger,
		metrics: NewMetrics(),
		started: time.Now(),
	}

	rlCfg := ratelimit.DefaultConfig()
	if cfg.RateLimitPerMinute > 0 {
		rlCfg.RequestsPerMinute = cfg.RateLimitPerMinute
	}
	s.rateLimiter = ratelimit.NewLimiter(rlCfg)
	s.securityDetector = security.NewDetector()
	s.securityDetector.OnSuspicious(s.metrics.suspicious.Inc)
	s.traceMiddleware = trace.NewMiddleware(logger, s.securityDetector.ExtractClientIP, s.metrics.ObserveRequest)
	s.metrics.RegisterGauge("rate_limit_active_clients", "Clients currently tracked by the rate limiter.", func() float64 {
		return float64(s.rateLimiter.ActiveClients())
	})

	mux := http.NewServeMux()
	s.routes(mux)

	var handler http.Handler = mux
	handler = log.Middleware(logger, trace.GetRequestID)(handler)
	handler = s.rateLimiter.Middleware(s.securityDetector.ExtractClientIP, s.onRateLimited)(handler)
	handler = s.securityDetector.Middleware(handler)
	handler = security.NewCORSMiddleware(security.DefaultCORSConfig(cfg.CORSAllowedOrigins)).Middleware(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = s.traceMiddleware.Middleware(handler)

	s.Handler = h2c.NewHandler(handler, &http2.Server{})
	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	p := s.prefix

	mux.HandleFunc("GET "+p+"/people", s.route(s.handleListPeople))
	mux.HandleFunc("GET "+p+"/people/{id}", s.route(s.handleGetPerson))
	mux.HandleFunc("POST "+p+"/people", s.route(s.handleCreatePerson))
	mux.HandleFunc("PUT "+p+"/people/{id}", s.route(s.handleUpdatePerson))
	mux.HandleFunc("DELETE "+p+"/people/{id}", s.route(s.handleDeletePerson))

	mux.HandleFunc("GET "+p+"/categories", s.route(s.handleListCategories))
	mux.HandleFunc("GET "+p+"/categories/{id}", s.route(s.handleGetCategory))
	mux.HandleFunc("POST "+p+"/categories", s.route(s.handleCreateCategory))

	mux.HandleFunc("GET "+p+"/transactions", s.route(s.handleListTransactions))
	mux.HandleFunc("GET "+p+"/transactions/{id}", s.route(s.handleGetTransaction))
	mux.HandleFunc("POST "+p+"/transactions", s.route(s.handleCreateTransaction))

	mux.HandleFunc("GET "+p+"/reports/totals-by-person", s.route(s.handleTotalsByPerson))
	mux.HandleFunc("GET "+p+"/reports/totals-by-category", s.route(s.handleTotalsByCategory))

	mux.HandleFunc("GET /healthz", s.route(s.handleHealth))
	mux.HandleFunc("GET /readyz", s.route(s.handleReady))
	mux.HandleFunc("GET /metrics", s.route(s.metrics.Handler().ServeHTTP))
}

// route records the matched pattern for the access log and metrics.
func (s *Server) route(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		trace.SetRoute(r.Context(), r.Pattern)
		h(w, r)
	}
}

func (s *Server) onRateLimited(w http.ResponseWriter, r *http.Request) {
	s.metrics.rateLimit.Inc()
	s.logger.WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, trace.ClientIP(r.Context()),
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path)
	TooManyRequestsError().Write(w)
}

// Shutdown gracefully shuts down the server and its background routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// Metrics exposes the server's collectors.
func (s *Server) Metrics() *Metrics {
	return s.metrics
}
