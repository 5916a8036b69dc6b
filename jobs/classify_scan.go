package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/fiscalbook/fiscalbook/internal/classify"
)

// ClassifyScanJob runs catalog scans off the request path.
type ClassifyScanJob struct {
	service *classify.Service
	logger  *slog.Logger
}

// NewClassifyScanJob constructs the job.
func NewClassifyScanJob(service *classify.Service, logger *slog.Logger) *ClassifyScanJob {
	return &ClassifyScanJob{service: service, logger: logger}
}

// Handle processes TaskClassifyScan tasks.
func (j *ClassifyScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload ClassifyScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.CompanyID == 0 {
		return asynq.SkipRetry
	}

	result, err := j.service.Scan(ctx, payload.CompanyID)
	if err != nil {
		j.logger.Error("classify scan",
			slog.Int64("company_id", payload.CompanyID),
			slog.Any("error", err))
		return err
	}

	j.logger.Info("classify scan finished",
		slog.Int64("company_id", result.CompanyID),
		slog.Int("unclassified", result.Unclassified),
		slog.Int("suggestions", result.Suggestions),
		slog.Int("inconsistencies", len(result.Inconsistencies)))
	return nil
}

// HandleAll processes TaskClassifyScanAll tasks.
func (j *ClassifyScanJob) HandleAll(ctx context.Context, t *asynq.Task) error {
	results, err := j.service.ScanAll(ctx)
	if err != nil {
		j.logger.Error("classify scan all", slog.Any("error", err))
		return err
	}
	j.logger.Info("classify scan all finished", slog.Int("companies", len(results)))
	return nil
}
