// internal/workers/analysis/compute-health-score/handler.go
package computehealthscore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	apperrors "startup-insights/internal/common/errors"
	"startup-insights/internal/common/logger"
	"startup-insights/internal/common/metrics"
	"startup-insights/internal/derived"
)

const (
	TaskType = "compute-health-score"
)

type Handler struct {
	config     *Config
	logger     logger.Logger
	errHandler *apperrors.ErrorHandler
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		logger:     log,
		errHandler: apperrors.NewErrorHandler(log),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	status := "failed"
	defer func() {
		elapsed := time.Since(start)
		metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(elapsed.Seconds())
		h.config.Observability.RecordJobDuration(context.Background(), TaskType, elapsed, status)
		h.config.Observability.RecordJobProcessed(context.Background(), TaskType, status)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.fail(ctx, client, job, apperrors.NewInvalidInputError(fmt.Sprintf("parse input: %v", err)))
		return
	}

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.fail(ctx, client, job, err)
		return
	}

	if h.completeJob(ctx, client, job, output) {
		status = "completed"
	}
}

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	if input == nil || input.StartupProfile == nil {
		return nil, apperrors.NewInvalidInputError("startupProfile is required")
	}

	m := derived.Compute(input.StartupProfile, input.PeerComparison)
	return &Output{
		HealthScore:     m.HealthScore,
		Breakdown:       m.Breakdown,
		Recommendations: m.Recommendations,
		NextMilestone:   m.NextMilestone,
	}, nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) bool {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return false
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
		return false
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	return true
}

func (h *Handler) fail(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(apperrors.ToStandardError(err).Code)).Inc()
	h.errHandler.HandleJobError(ctx, client, job, err)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
