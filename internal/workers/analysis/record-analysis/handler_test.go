package recordanalysis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"startup-insights/internal/common/aws"
	apperrors "startup-insights/internal/common/errors"
	"startup-insights/internal/common/logger"
	"startup-insights/internal/models"
	"startup-insights/internal/storage"
)

// ==========================
// Test Helper Functions
// ==========================

type fakeRecorder struct {
	err    error
	health []int
}

func (f *fakeRecorder) Save(ctx context.Context, profile *models.StartupProfile, prediction *models.PredictionResult, healthScore int) (*storage.Submission, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.health = append(f.health, healthScore)
	return &storage.Submission{ID: "sub-1", OrganizationName: profile.OrganizationName}, nil
}

type fakePublisher struct {
	err    error
	events []aws.AnalysisEvent
}

func (f *fakePublisher) PublishAnalysis(ctx context.Context, event aws.AnalysisEvent) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.events = append(f.events, event)
	return "msg-1", nil
}

func createInput() *Input {
	return &Input{
		StartupProfile: &models.StartupProfile{OrganizationName: "Acme Robotics", InvestmentStage: "Series A"},
		Prediction: &models.PredictionResult{
			PracticalPrediction: models.PredictionOutcome{Label: "Success", Confidence: models.Float64(0.9)},
		},
		PeerComparison: &models.PeerComparisonReport{StartupName: "Acme Robotics"},
		HealthScore:    72,
	}
}

func createTestHandler(t *testing.T, r Recorder, p Publisher) *Handler {
	return NewHandler(&Config{Timeout: time.Second}, r, p, logger.NewTestLogger(t))
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_RecordsAndPublishes(t *testing.T) {
	rec := &fakeRecorder{}
	pub := &fakePublisher{}
	h := createTestHandler(t, rec, pub)

	out, err := h.Execute(context.Background(), createInput())
	require.NoError(t, err)

	assert.Equal(t, &Output{SubmissionID: "sub-1", EventMessageID: "msg-1", Recorded: true, Published: true}, out)
	assert.Equal(t, []int{72}, rec.health)

	require.Len(t, pub.events, 1)
	event := pub.events[0]
	assert.Equal(t, "Acme Robotics", event.OrganizationName)
	assert.Equal(t, "Series A", event.InvestmentStage)
	assert.Equal(t, "Success", event.PredictionLabel)
	assert.Equal(t, models.Float64(0.9), event.Confidence)
	assert.Equal(t, 72, event.HealthScore)
	assert.True(t, event.PeerComparison)
}

func TestHandler_Execute_OptionalDependencies(t *testing.T) {
	h := createTestHandler(t, nil, nil)

	out, err := h.Execute(context.Background(), createInput())
	require.NoError(t, err)
	assert.False(t, out.Recorded)
	assert.False(t, out.Published)
}

func TestHandler_Execute_SaveFailureSkipsPublish(t *testing.T) {
	pub := &fakePublisher{}
	h := createTestHandler(t, &fakeRecorder{err: apperrors.NewDatabaseInsertFailedError(errors.New("disk full"))}, pub)

	_, err := h.Execute(context.Background(), createInput())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeDatabaseInsertFailed, apperrors.ToStandardError(err).Code)
	assert.Empty(t, pub.events)
}

func TestHandler_Execute_PublishFailure(t *testing.T) {
	h := createTestHandler(t, &fakeRecorder{}, &fakePublisher{
		err: apperrors.NewNotificationSendFailedError("sns", errors.New("throttled")),
	})

	_, err := h.Execute(context.Background(), createInput())
	require.Error(t, err)

	bpmnErr := apperrors.ConvertToBPMNError(apperrors.ToStandardError(err))
	assert.Equal(t, "NOTIFICATION_SEND_FAILED", bpmnErr.Code)
	assert.Equal(t, 3, bpmnErr.Retries)
}

func TestHandler_Execute_MissingPrediction(t *testing.T) {
	h := createTestHandler(t, &fakeRecorder{}, nil)

	input := createInput()
	input.Prediction = nil
	_, err := h.Execute(context.Background(), input)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeInvalidInput, apperrors.ToStandardError(err).Code)
}
