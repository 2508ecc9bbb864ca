package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/demonstra-fin/demonstra/internal/statement"
)

// StatementWarmupJob pre-populates the statement and indicator caches for
// one year so interactive reads after an import are served hot.
type StatementWarmupJob struct {
	Statements *statement.Service
	Logger     *slog.Logger
}

// NewStatementWarmupJob wires dependencies for the warmup handler.
func NewStatementWarmupJob(statements *statement.Service, logger *slog.Logger) *StatementWarmupJob {
	return &StatementWarmupJob{Statements: statements, Logger: logger}
}

// Handle processes statement warmup tasks.
func (j *StatementWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Statements == nil {
		return errors.New("statement warmup: handler not configured")
	}
	var payload StatementWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.Ano == 0 {
		payload.Ano = time.Now().Year()
	}

	logger := j.logger().With(slog.Int("ano", payload.Ano))
	start := time.Now()

	jobCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	for _, kind := range []statement.Kind{statement.KindDRE, statement.KindBP, statement.KindDFC} {
		if _, err := j.Statements.Statement(jobCtx, kind, payload.Ano); err != nil {
			logger.Error("warm statement", slog.String("kind", string(kind)), slog.Any("error", err))
			return err
		}
	}
	if _, err := j.Statements.Indicators(jobCtx, payload.Ano); err != nil {
		logger.Error("warm indicators", slog.Any("error", err))
		return err
	}

	logger.Info("statement warmup complete", slog.Duration("duration", time.Since(start)))
	return nil
}

func (j *StatementWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskStatementWarmup))
	}
	return slog.Default().With(slog.String("job", TaskStatementWarmup))
}
