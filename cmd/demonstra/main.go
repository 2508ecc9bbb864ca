package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/demonstra-fin/demonstra/internal/app"
	"github.com/demonstra-fin/demonstra/internal/balancete"
	"github.com/demonstra-fin/demonstra/internal/depara"
	"github.com/demonstra-fin/demonstra/internal/platform/cache"
	"github.com/demonstra-fin/demonstra/internal/platform/db"
	"github.com/demonstra-fin/demonstra/internal/statement"
	"github.com/demonstra-fin/demonstra/jobs"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, statements will be rebuilt per request", slog.Any("error", err))
		redisClient = nil
	}
	defer func() {
		if redisClient == nil {
			return
		}
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	statementCache := statement.NewCache(redisClient, 10*time.Minute)
	if err := statementCache.ListenForInvalidation(ctx, ""); err != nil {
		logger.Warn("cache invalidation listener", slog.Any("error", err))
	}

	registry := depara.NewRepository(pool)
	lines := balancete.NewRepository(pool)

	statementService := statement.NewService(logger, registry, lines, statementCache,
		statement.IndicatorPolicy{EBITDAAddBackDA: cfg.EBITDAAddBackDA})
	statementHandler := statement.NewHandler(logger, statementService)

	deparaService := depara.NewService(registry, statementCache)
	deparaHandler := depara.NewHandler(logger, deparaService)

	warmupClient := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := warmupClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()

	importService := balancete.NewService(registry, lines, statementCache, warmupClient, logger)
	importHandler := balancete.NewHandler(logger, importService)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		DeparaHandler:    deparaHandler,
		ImportHandler:    importHandler,
		StatementHandler: statementHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
