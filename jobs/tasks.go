// Package jobs runs background work over Asynq: after an import the API
// enqueues a statement warmup so the first dashboard read after new data
// hits a populated cache.
package jobs

import (
	"context"
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskStatementWarmup pre-builds the statements for one year.
	TaskStatementWarmup = "statement:warmup"
)

// StatementWarmupPayload selects the year to warm.
type StatementWarmupPayload struct {
	Ano int `json:"ano"`
}

// NewStatementWarmupTask constructs an Asynq task.
func NewStatementWarmupTask(payload StatementWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskStatementWarmup, data), nil
}

// Client submits jobs to the queue.
type Client struct {
	client *asynq.Client
}

// NewClient constructs an Asynq client.
func NewClient(redisOpts asynq.RedisClientOpt) *Client {
	return &Client{client: asynq.NewClient(redisOpts)}
}

// EnqueueWarmup schedules a statement warmup for the year.
func (c *Client) EnqueueWarmup(ctx context.Context, year int) error {
	task, err := NewStatementWarmupTask(StatementWarmupPayload{Ano: year})
	if err != nil {
		return err
	}
	_, err = c.client.EnqueueContext(ctx, task, asynq.Queue(QueueDefault))
	return err
}

// Close releases client resources.
func (c *Client) Close() error {
	return c.client.Close()
}
