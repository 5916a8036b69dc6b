// Package jobs hosts the asynq task definitions and the background worker.
package jobs

import (
	"context"
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskClassifyScan rebuilds classification suggestions for one company.
	TaskClassifyScan = "classify:scan"
	// TaskClassifyScanAll rebuilds suggestions for every company, cron driven.
	TaskClassifyScanAll = "classify:scan_all"
)

// ClassifyScanPayload selects the company whose catalog gets scanned.
type ClassifyScanPayload struct {
	CompanyID int64 `json:"company_id"`
}

// NewClassifyScanTask constructs an asynq task for a classification scan.
func NewClassifyScanTask(companyID int64) (*asynq.Task, error) {
	data, err := json.Marshal(ClassifyScanPayload{CompanyID: companyID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskClassifyScan, data), nil
}

// NewClassifyScanAllTask constructs the cron task covering all companies.
func NewClassifyScanAllTask() *asynq.Task {
	return asynq.NewTask(TaskClassifyScanAll, nil)
}

// Client submits jobs to the queue.
type Client struct {
	client *asynq.Client
}

// NewClient constructs an asynq client.
func NewClient(redisOpts asynq.RedisClientOpt) *Client {
	return &Client{client: asynq.NewClient(redisOpts)}
}

// EnqueueClassifyScan schedules a classification scan for the company.
func (c *Client) EnqueueClassifyScan(ctx context.Context, companyID int64) error {
	task, err := NewClassifyScanTask(companyID)
	if err != nil {
		return err
	}
	_, err = c.client.EnqueueContext(ctx, task, asynq.Queue(QueueDefault), asynq.MaxRetry(3))
	return err
}

// Close releases client resources.
func (c *Client) Close() error {
	return c.client.Close()
}
