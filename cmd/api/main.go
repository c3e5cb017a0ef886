package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/angelmondragon/splitwallet-backend/api/routes"
	"github.com/angelmondragon/splitwallet-backend/internal/ledgers"
	"github.com/angelmondragon/splitwallet-backend/internal/settlement"
	"github.com/angelmondragon/splitwallet-backend/pkg/config"
	"github.com/angelmondragon/splitwallet-backend/pkg/db"
	"github.com/angelmondragon/splitwallet-backend/pkg/logger"
	"github.com/angelmondragon/splitwallet-backend/pkg/metrics"
	"github.com/angelmondragon/splitwallet-backend/pkg/migrate"
	"github.com/angelmondragon/splitwallet-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	policy, err := cfg.Engine.Policy()
	if err != nil {
		logg.Error(ctx, "invalid remainder policy", err)
		os.Exit(1)
	}
	tolerance, err := cfg.Engine.Tolerance()
	if err != nil {
		logg.Error(ctx, "invalid settlement tolerance", err)
		os.Exit(1)
	}

	dbClient, err := db.New(ctx, cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	// outside prod the API runs without Redis: no idempotency replay and no result cache
	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		if cfg.App.IsProd() {
			logg.Error(ctx, "failed to bootstrap redis", err)
			os.Exit(1)
		}
		logg.Warn(logg.WithField(ctx, "error", err.Error()), "redis unavailable, continuing without idempotency and result cache")
		redisClient = nil
	}
	if redisClient != nil {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	params := ledgers.ServiceParams{
		Repo:     ledgers.NewRepository(dbClient.DB()),
		Tx:       dbClient,
		Engine:   settlement.NewEngine(policy, tolerance),
		CacheTTL: cfg.Cache.BalanceTTL,
		Metrics:  metrics.NewEngineMetrics(registry),
		Logger:   logg,
	}
	if cfg.FeatureFlags.BalanceCache && redisClient != nil {
		params.Cache = redisClient
	}
	ledgerService, err := ledgers.NewService(params)
	if err != nil {
		logg.Error(ctx, "failed to create ledger service", err)
		os.Exit(1)
	}

	server := &http.Server{
		Addr: ":" + cfg.App.Port,
		Handler: routes.NewRouter(routes.Deps{
			Config:   cfg,
			Logger:   logg,
			DB:       dbClient,
			Redis:    redisClient,
			Gatherer: registry,
			Ledgers:  ledgerService,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(shutdownCtx, "graceful shutdown failed", err)
		}
	}()

	logg.Info(logg.WithFields(ctx, map[string]any{
		"addr":             server.Addr,
		"remainder_policy": string(policy),
		"tolerance":        tolerance.String(),
		"result_cache":     params.Cache != nil,
	}), "starting api server")

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logg.Error(context.Background(), "server failed", err)
		os.Exit(1)
	}
	logg.Info(context.Background(), "api server stopped")
}
