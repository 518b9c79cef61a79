// internal/workers/analysis/record-analysis/handler.go
package recordanalysis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"startup-insights/internal/common/aws"
	apperrors "startup-insights/internal/common/errors"
	"startup-insights/internal/common/logger"
	"startup-insights/internal/common/metrics"
	"startup-insights/internal/models"
	"startup-insights/internal/storage"
)

const (
	TaskType = "record-analysis"
)

// Recorder persists a settled analysis.
type Recorder interface {
	Save(ctx context.Context, profile *models.StartupProfile, prediction *models.PredictionResult, healthScore int) (*storage.Submission, error)
}

// Publisher announces a settled analysis.
type Publisher interface {
	PublishAnalysis(ctx context.Context, event aws.AnalysisEvent) (string, error)
}

// Handler stores and announces analyses. Either dependency may be nil, in
// which case that step is skipped.
type Handler struct {
	config     *Config
	recorder   Recorder
	publisher  Publisher
	logger     logger.Logger
	errHandler *apperrors.ErrorHandler
}

func NewHandler(config *Config, recorder Recorder, publisher Publisher, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		recorder:   recorder,
		publisher:  publisher,
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

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

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

// execute saves before publishing so subscribers never hear about an
// analysis that was not stored. A publish failure after a successful save
// fails the job; the upsert makes the retry safe.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil || input.StartupProfile == nil || input.Prediction == nil {
		return nil, apperrors.NewInvalidInputError("startupProfile and prediction are required")
	}

	output := &Output{}

	if h.recorder != nil {
		sub, err := h.recorder.Save(ctx, input.StartupProfile, input.Prediction, input.HealthScore)
		if err != nil {
			return nil, err
		}
		output.SubmissionID = sub.ID
		output.Recorded = true
	}

	if h.publisher != nil {
		event := aws.AnalysisEvent{
			OrganizationName: input.StartupProfile.OrganizationName,
			InvestmentStage:  input.StartupProfile.InvestmentStage,
			PredictionLabel:  input.Prediction.PracticalPrediction.Label,
			HealthScore:      input.HealthScore,
			PeerComparison:   input.PeerComparison != nil,
		}
		if score, ok := input.Prediction.PracticalPrediction.Score(); ok {
			event.Confidence = &score
		}

		messageID, err := h.publisher.PublishAnalysis(ctx, event)
		if err != nil {
			return nil, err
		}
		output.EventMessageID = messageID
		output.Published = true
	}

	return output, nil
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
