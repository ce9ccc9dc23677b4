package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"entsoe-feeder/internal/audit"
	"entsoe-feeder/internal/auth"
	"entsoe-feeder/internal/entsoe"
	"entsoe-feeder/internal/observability/metrics"
	entsoesource "entsoe-feeder/internal/reconcile/adapters/entsoe"
	"entsoe-feeder/internal/reconcile/application"
	reconcile "entsoe-feeder/internal/reconcile/domain"
	"entsoe-feeder/internal/reconcile/infrastructure/memory"
	"entsoe-feeder/internal/reconcile/infrastructure/postgres"
	feederhttp "entsoe-feeder/internal/reconcile/interfaces/http"
)

func main() {
	cfg := loadConfig()
	logger := log.New(os.Stdout, "", log.LstdFlags)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	feederCfg, err := application.LoadConfig()
	if err != nil {
		logger.Fatalf("feeder config error: %v", err)
	}
	if len(feederCfg.Countries) == 0 {
		feederCfg.Countries = entsoe.Countries()
	}
	for _, country := range feederCfg.Countries {
		if _, err := entsoe.Domain(country); err != nil {
			logger.Fatalf("feeder config error: %v", err)
		}
	}
	interval, _ := feederCfg.Interval()
	convention, _ := feederCfg.Convention()

	var (
		repo        reconcile.RecordRepository
		auditLogger audit.Logger
		db          *sql.DB
	)
	if cfg.DatabaseURL != "" {
		db, err = sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			logger.Fatalf("db open error: %v", err)
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			logger.Fatalf("db ping error: %v", err)
		}
		pgRepo, err := postgres.NewRecordRepository(db)
		if err != nil {
			logger.Fatalf("record repository error: %v", err)
		}
		if err := pgRepo.EnsureSchema(ctx); err != nil {
			logger.Fatalf("record schema error: %v", err)
		}
		auditRepo := audit.NewRepository(db)
		if err := auditRepo.EnsureSchema(ctx); err != nil {
			logger.Fatalf("audit schema error: %v", err)
		}
		repo = pgRepo
		auditLogger = auditRepo
	} else {
		logger.Printf("DATABASE_URL not set; records are kept in memory")
		repo = memory.NewRecordRepository()
		auditLogger = audit.NewLogLogger(logger)
	}
	metrics.Init(db, logger)

	client, err := entsoe.NewClient(cfg.Endpoint, cfg.Token,
		entsoe.WithHTTPClient(&http.Client{Timeout: cfg.UpstreamTimeout}),
		entsoe.WithRatePerMinute(cfg.RatePerMinute),
	)
	if err != nil {
		logger.Fatalf("entsoe client error: %v", err)
	}
	source, err := entsoesource.NewSource(client)
	if err != nil {
		logger.Fatalf("entsoe source error: %v", err)
	}
	service, err := application.NewFeederService(source, repo, reconcile.SystemClock{}, convention, logger)
	if err != nil {
		logger.Fatalf("feeder service error: %v", err)
	}

	collector := application.NewCollector(service, feederCfg.Countries, feederCfg.Exchanges, feederCfg.Parallelism, logger)
	if cfg.CollectEnabled {
		scheduler := application.NewScheduler(collector, interval, logger)
		go scheduler.Start(ctx)
		logger.Printf("feeder collecting: countries=%d exchanges=%d every=%s convention=%s", len(feederCfg.Countries), len(feederCfg.Exchanges), interval, convention)
	}

	handler, err := feederhttp.NewHandler(service, repo, auditLogger, reconcile.SystemClock{}, logger)
	if err != nil {
		logger.Fatalf("feeder handler error: %v", err)
	}

	mux := http.NewServeMux()
	handler.Register(mux)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	var root http.Handler = mux
	if cfg.JWTSecret != "" {
		policy := auth.NewDefaultPolicy([]string{"/metrics", "/healthz"}, nil)
		root = auth.NewMiddleware([]byte(cfg.JWTSecret), policy, logger).Wrap(mux)
	} else {
		logger.Printf("AUTH_JWT_SECRET not set; API is unauthenticated")
	}

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           loggingMiddleware(root, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logger.Printf("http listening on %s", cfg.HTTPAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal(err)
	}
}

type config struct {
	DatabaseURL     string
	HTTPAddr        string
	Token           string
	Endpoint        string
	RatePerMinute   int
	UpstreamTimeout time.Duration
	JWTSecret       string
	CollectEnabled  bool
}

func loadConfig() config {
	cfg := config{
		DatabaseURL:     getenvDefault("DATABASE_URL", getenvDefault("PG_DSN", "")),
		HTTPAddr:        getenvDefault("HTTP_ADDR", ":8080"),
		Token:           getenvDefault("ENTSOE_TOKEN", ""),
		Endpoint:        getenvDefault("ENTSOE_ENDPOINT", entsoe.DefaultEndpoint),
		RatePerMinute:   getenvIntDefault("ENTSOE_RATE_PER_MINUTE", 400),
		UpstreamTimeout: getenvDuration("ENTSOE_TIMEOUT", 30*time.Second),
		JWTSecret:       getenvDefault("AUTH_JWT_SECRET", getenvDefault("JWT_SECRET", "")),
		CollectEnabled:  getenvDefault("FEEDER_COLLECT", "true") != "false",
	}
	if cfg.Token == "" {
		log.Fatal("ENTSOE_TOKEN is required")
	}
	return cfg
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvIntDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func loggingMiddleware(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		logger.Printf("http %s %s %d %s", r.Method, r.URL.Path, resp.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
