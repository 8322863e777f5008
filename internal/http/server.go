package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"household/internal/cache"
	applog "household/internal/log"
	"household/internal/middleware/ratelimit"
	"household/internal/middleware/security"
	"household/internal/middleware/trace"
	"household/internal/services"
	appweb "household/web"
)

// Options configures the web server beyond its address and service.
type Options struct {
	// Secret signs flash cookies.
	Secret string
	// RateLimit is the number of POSTs allowed per client per minute.
	RateLimit int
	Logger    *applog.Logger
}

// Server serves the household pages over HTTP.
type Server struct {
	http.Server
	templates *template.Template
	household *services.Household
	flash     *flashSigner
	logger    *applog.Logger

	traceMiddleware  *trace.Middleware
	securityDetector *security.Detector
	rateLimiter      *ratelimit.Limiter

	chartCache   *cache.LRUCache[[]byte]
	cacheManager *cache.Manager

	appMetrics   appMetrics
	shutdownOnce sync.Once
}

const (
	chartCacheSize = 16
	chartCacheTTL  = 10 * time.Minute
)

type appMetrics struct {
	created  int64
	toggled  int64
	deleted  int64
	rejected int64
	uptime   time.Time
}

// NewServer configures routes, middleware and templates, returning a
// ready-to-run server.
func NewServer(addr string, household *services.Household, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	logger = logger.WithComponent(applog.ComponentHTTP)

	s := &Server{
		household:        household,
		flash:            newFlashSigner(opts.Secret),
		logger:           logger,
		securityDetector: security.NewDetector(logger),
		rateLimiter:      ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimit}),
		chartCache:       cache.NewLRUCache[[]byte](chartCacheSize, chartCacheTTL),
		cacheManager:     cache.NewManager(logger.WithComponent(applog.ComponentCache)),
		appMetrics:       appMetrics{uptime: time.Now()},
	}
	s.cacheManager.Register(s.chartCache)
	s.cacheManager.StartCleanup(time.Minute)
	s.traceMiddleware = trace.NewMiddleware(logger, s.securityDetector.ExtractClientIP)

	t, err := parseTemplates()
	if err != nil {
		logger.Error("Failed parsing templates", applog.FieldError, err)
	}
	s.templates = t

	mux := http.NewServeMux()
	s.routes(mux)

	var handler http.Handler = mux
	handler = applog.RequestIDMiddleware(trace.RequestIDFromRequest)(handler)
	handler = applog.Middleware(logger)(handler)
	handler = s.rateLimiter.Middleware(s.securityDetector.ExtractClientIP, s.onRateLimited)(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = s.securityDetector.Middleware(handler)
	handler = s.traceMiddleware.Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", applog.FieldError, err)
	}

	mux.HandleFunc("GET /{$}", s.handleDashboard)

	mux.HandleFunc("GET /tasks", s.handleListTasks)
	mux.HandleFunc("POST /tasks", s.handleCreateTask)
	mux.HandleFunc("GET /tasks/{id}/toggle", s.handleToggleTask)
	mux.HandleFunc("GET /tasks/{id}/delete", s.handleDeleteTask)

	mux.HandleFunc("GET /expenses", s.handleListExpenses)
	mux.HandleFunc("POST /expenses", s.handleCreateExpense)
	mux.HandleFunc("GET /expenses/chart.png", s.handleExpenseChart)

	mux.HandleFunc("GET /shopping", s.handleListShopping)
	mux.HandleFunc("POST /shopping", s.handleCreateShopping)
	mux.HandleFunc("GET /shopping/{id}/toggle", s.handleToggleShopping)

	mux.HandleFunc("GET /members", s.handleListMembers)
	mux.HandleFunc("POST /members", s.handleCreateMember)

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)
}

func (s *Server) onRateLimited(w http.ResponseWriter, r *http.Request) {
	s.logger.WithComponent(applog.ComponentRateLimit).WarnContext(r.Context(), "Rate limit exceeded",
		applog.FieldClientIP, s.securityDetector.ExtractClientIP(r),
		applog.FieldMethod, r.Method,
		applog.FieldPath, r.URL.Path)
	http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
}

func (s *Server) count(counter *int64) {
	atomic.AddInt64(counter, 1)
}

// Shutdown stops background routines and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		s.cacheManager.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
