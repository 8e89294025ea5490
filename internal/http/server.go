// Package http exposes the account, ledger and report services as a JSON
// API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"financas/internal/auth"
	"financas/internal/log"
	"financas/internal/middleware/ratelimit"
	"financas/internal/middleware/security"
	"financas/internal/middleware/trace"
	"financas/internal/services"

	"github.com/shopspring/decimal"
)

func init() {
	// Amounts travel as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Config holds the transport settings of the API server.
type Config struct {
	Addr               string
	AllowedOrigins     []string
	RateLimitPerMinute int
}

// Deps are the services the handlers call.
type Deps struct {
	Accounts *services.AccountService
	Ledger   *services.LedgerService
	Reports  *services.ReportService
	Issuer   *auth.Issuer
	// Store backs the readiness check.
	Store Pinger
}

type Server struct {
	http.Server
	deps      Deps
	limiter   *ratelimit.Limiter
	detector  *security.Detector
	requests  *trace.Middleware
	logger    *log.Logger
	startedAt time.Time

	shutdownOnce sync.Once
}

// NewServer builds the router and the middleware chain:
// trace, request logging, probe detection, security headers, CORS, rate
// limit. Routes under /api other than the auth endpoints require a bearer
// token.
func NewServer(cfg Config, deps Deps) *Server {
	s := &Server{
		deps:      deps,
		limiter:   ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: cfg.RateLimitPerMinute}),
		detector:  security.NewDetector(),
		requests:  trace.NewMiddleware(),
		logger:    log.ForComponent(log.ComponentHTTP),
		startedAt: time.Now(),
	}

	mux := http.NewServeMux()
	s.routes(mux)

	var h http.Handler = mux
	h = s.limiter.Middleware(s.detector.ExtractClientIP, s.handleRateLimited)(h)
	h = security.NewCORS(cfg.AllowedOrigins).Middleware(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	h = s.detector.Middleware(h)
	h = log.HTTPMiddleware(s.logger, trace.FromRequest, s.detector.ExtractClientIP)(h)
	h = s.requests.Middleware(h)

	s.Server = http.Server{
		Addr:              cfg.Addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("POST /api/auth/registro", s.handleRegister)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	mux.HandleFunc("POST /api/auth/validar-senha", s.handleValidatePassword)
	mux.Handle("GET /api/auth/me", s.requireAuth(s.handleMe))

	mux.Handle("GET /api/categorias", s.requireAuth(s.handleListCategories))
	mux.Handle("POST /api/categorias", s.requireAuth(s.handleCreateCategory))
	mux.Handle("PUT /api/categorias/{id}", s.requireAuth(s.handleUpdateCategory))
	mux.Handle("DELETE /api/categorias/{id}", s.requireAuth(s.handleDeleteCategory))

	for _, ep := range ledgerEndpoints {
		mux.Handle("GET "+ep.path, s.requireAuth(s.handleListTransactions(ep)))
		mux.Handle("POST "+ep.path, s.requireAuth(s.handleCreateTransaction(ep)))
		mux.Handle("PUT "+ep.path+"/{id}", s.requireAuth(s.handleUpdateTransaction(ep)))
		mux.Handle("DELETE "+ep.path+"/{id}", s.requireAuth(s.handleDeleteTransaction(ep)))
	}

	mux.Handle("GET /api/dashboard", s.requireAuth(s.handleDashboard))
	mux.Handle("GET /api/gastos-recorrentes", s.requireAuth(s.handleRecurring))
	mux.Handle("GET /api/resumo-mensal", s.requireAuth(s.handleMonthly))
	mux.Handle("GET /api/projecoes", s.requireAuth(s.handleProjection))

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Recurso não encontrado")
	})
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	s.logger.WarnContext(r.Context(), "Rate limit exceeded",
		log.NewFields().
			WithClientIP(s.detector.ExtractClientIP(r)).
			WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, r.UserAgent()).
			ToSlice()...)
	writeError(w, http.StatusTooManyRequests, "Muitas requisições, tente novamente em instantes")
}

// Shutdown drains in-flight requests and stops the background goroutines.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
