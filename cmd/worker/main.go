package main

import (
	"context"
	"log/slog"
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
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	statementCache := statement.NewCache(redisClient, 10*time.Minute)
	registry := depara.NewRepository(pool)
	lines := balancete.NewRepository(pool)
	statementService := statement.NewService(logger, registry, lines, statementCache,
		statement.IndicatorPolicy{EBITDAAddBackDA: cfg.EBITDAAddBackDA})

	warmupJob := jobs.NewStatementWarmupJob(statementService, logger)

	nightlyTask, err := jobs.NewStatementWarmupTask(jobs.StatementWarmupPayload{Ano: time.Now().Year()})
	if err != nil {
		logger.Error("build warmup task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskStatementWarmup, Handler: warmupJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "15 1 * * *", Task: nightlyTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
