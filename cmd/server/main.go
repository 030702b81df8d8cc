package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"custodia/internal/accesslog"
	accesslogHandler "custodia/internal/accesslog/handler"
	"custodia/internal/decision"
	"custodia/internal/decision/adapters"
	decisionHandler "custodia/internal/decision/handler"
	decisionMetrics "custodia/internal/decision/metrics"
	"custodia/internal/jwttoken"
	"custodia/internal/ledger"
	"custodia/internal/notify"
	"custodia/internal/platform/config"
	"custodia/internal/platform/httpserver"
	"custodia/internal/platform/logger"
	"custodia/internal/platform/middleware"
	platformredis "custodia/internal/platform/redis"
	"custodia/internal/policygroup"
	policygroupHandler "custodia/internal/policygroup/handler"
	"custodia/internal/verifier"
	verifierHandler "custodia/internal/verifier/handler"
	verifierMetrics "custodia/internal/verifier/metrics"
)

// main wires high-level dependencies and keeps the server lifecycle small.
// Business logic lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	ctx := context.Background()

	// Stores: postgres when a DSN is configured, in-memory otherwise.
	var (
		groupStore policygroup.Store
		logStore   accesslog.Store
	)
	if cfg.PostgresDSN != "" {
		pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
		if err != nil {
			log.Error("postgres pool creation failed", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		db, err := sql.Open("postgres", cfg.PostgresDSN)
		if err != nil {
			log.Error("postgres connection failed", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		groupStore = policygroup.NewPostgresStore(pool)
		logStore = accesslog.NewPostgresStore(db)
	} else {
		log.Warn("no postgres DSN configured, using in-memory stores")
		groupStore = policygroup.NewInMemoryStore()
		logStore = accesslog.NewInMemoryStore()
	}

	// Ledger: external service when configured, embedded otherwise.
	var ledgerClient ledger.Client
	if cfg.LedgerEndpoint != "" {
		ledgerClient = ledger.NewHTTPClient(cfg.LedgerEndpoint)
	} else {
		log.Warn("no ledger endpoint configured, using embedded in-memory ledger")
		ledgerClient = ledger.NewMemoryLedger()
	}

	redisClient, err := platformredis.New(ctx, cfg.RedisURL)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}

	var notifier decision.Notifier
	if len(cfg.KafkaBrokers) > 0 {
		publisher, err := notify.NewPublisher(ctx, cfg.KafkaBrokers, cfg.KafkaTopic, log)
		if err != nil {
			log.Error("kafka publisher creation failed", "error", err)
			os.Exit(1)
		}
		defer publisher.Close()
		notifier = publisher
	}

	groupService := policygroup.NewService(groupStore)
	logService := accesslog.NewService(logStore, ledgerClient, log, cfg.LedgerWriteConcurrency)
	decisionService := decision.NewService(
		groupService,
		adapters.NewAccessLogRecorder(logService),
		notifier,
		log,
		decisionMetrics.New(),
	)
	verifierService := verifier.New(
		ledgerClient,
		verifier.NewCache(redisClient, cfg.VerifyCacheTTL),
		log,
		verifierMetrics.New(),
	)
	tokenService := jwttoken.NewService(cfg.JWTSigningKey, "custodia", "custodia-api")

	router := chi.NewRouter()
	router.Use(chimw.Recoverer)
	router.Use(middleware.RequestMetadata)

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Method(http.MethodGet, "/metrics", promhttp.Handler())

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(tokenService, log))
		decisionHandler.New(decisionService, log).Register(r)
		policygroupHandler.New(groupService, log).Register(r)
		accesslogHandler.New(logService, log).Register(r)
		verifierHandler.New(verifierService, logService, log).Register(r)
	})

	srv := httpserver.New(cfg.Addr, router)

	go func() {
		log.Info("custodia listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	log.Info("custodia stopped")
}
