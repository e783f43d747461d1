package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"salesboard/internal/cache"
	"salesboard/internal/core"
	applog "salesboard/internal/log"
	"salesboard/internal/middleware/ratelimit"
	"salesboard/internal/middleware/security"
	"salesboard/internal/middleware/trace"
	"salesboard/internal/seed"
	appweb "salesboard/web"
)

// Queries is the read side the handlers depend on.
type Queries interface {
	List(ctx context.Context, month, page, perPage int, search string) ([]core.Transaction, error)
	Statistics(ctx context.Context, month int) (core.Statistics, error)
	BarChart(ctx context.Context, month int) ([]core.BarBucket, error)
	PieChart(ctx context.Context, month int) ([]core.CategoryCount, error)
	Combined(ctx context.Context, month int) (core.Combined, error)
	Invalidate(ctx context.Context, reason string)
	CacheStats() cache.Stats
	Ready(ctx context.Context) error
	Year() int
}

// Seeder loads the external dataset.
type Seeder interface {
	Seed(ctx context.Context) (seed.Result, error)
}

// Options tunes the server. Zero values pick defaults.
type Options struct {
	Logger       *applog.Logger
	QueryTimeout time.Duration
	SeedTimeout  time.Duration
	SeedLimit    ratelimit.Config

	// TrustedProxies extends the loopback and private proxy networks.
	TrustedProxies []string
}

type Server struct {
	http.Server
	templates *template.Template
	queries   Queries
	seeder    Seeder
	logger    *applog.Logger

	queryTimeout time.Duration
	seedTimeout  time.Duration

	seedLimiter *ratelimit.Limiter
	detector    *security.Detector
	tracer      *trace.Middleware
}

// NewServer configures routes and templates, returning a ready-to-run http.Server.
func NewServer(addr string, q Queries, sd Seeder, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = applog.FromContext(context.Background())
	}
	logger = logger.WithComponent(applog.ComponentHTTP)

	s := &Server{
		queries:      q,
		seeder:       sd,
		logger:       logger,
		queryTimeout: opts.QueryTimeout,
		seedTimeout:  opts.SeedTimeout,
		seedLimiter:  ratelimit.NewLimiter(opts.SeedLimit),
		detector:     security.NewDetector(),
	}
	if s.queryTimeout <= 0 {
		s.queryTimeout = 7 * time.Second
	}
	if s.seedTimeout <= 0 {
		s.seedTimeout = 60 * time.Second
	}
	for _, cidr := range opts.TrustedProxies {
		if err := s.detector.AddTrustedProxy(cidr); err != nil {
			logger.Warn("Ignoring trusted proxy", applog.FieldError, err)
		}
	}
	s.tracer = trace.NewMiddleware(logger, s.detector.ExtractClientIP)

	t, err := template.New("").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		logger.Warn("Failed parsing templates", applog.FieldError, err)
	}
	s.templates = t

	mux := http.NewServeMux()

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		logger.Warn("Failed to mount embedded static FS", applog.FieldError, err)
	}

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	seedLimit := s.seedLimiter.Middleware(s.detector.ExtractClientIP, nil)
	mux.Handle("/seed-database", seedLimit(http.HandlerFunc(s.handleSeed)))
	mux.HandleFunc("/transactions", s.handleTransactions)
	mux.HandleFunc("/statistics", s.handleStatistics)
	mux.HandleFunc("/bar-chart", s.handleBarChart)
	mux.HandleFunc("/pie-chart", s.handlePieChart)
	mux.HandleFunc("/combined", s.handleCombined)

	mux.HandleFunc("/{$}", s.handleIndex)
	mux.HandleFunc("/ui/transactions", s.handleUITransactions)
	mux.HandleFunc("/ui/statistics", s.handleUIStatistics)
	mux.HandleFunc("/ui/bar-chart", s.handleUIBarChart)
	mux.HandleFunc("/ui/pie-chart", s.handleUIPieChart)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	flagged := func(r *http.Request) {
		logger.WarnContext(r.Context(), "Suspicious request rejected",
			applog.FieldClientIP, s.detector.ExtractClientIP(r),
			applog.FieldPath, r.URL.Path)
	}

	var h http.Handler = mux
	h = s.detector.Middleware(flagged)(h)
	h = headers.Middleware(h)
	h = applog.Middleware(logger, trace.RequestIDFromRequest)(h)
	h = s.tracer.Middleware(h)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Shutdown stops background work and drains connections.
func (s *Server) Shutdown(ctx context.Context) error {
	s.seedLimiter.Stop()
	return s.Server.Shutdown(ctx)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.queries.Ready(ctx); err != nil {
		s.logger.WarnContext(ctx, "Readiness check failed", applog.FieldError, err)
		http.Error(w, "not ready", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

var templateFuncs = template.FuncMap{
	"price": formatPrice,
	"date":  formatDate,
}
