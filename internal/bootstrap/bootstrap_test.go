package bootstrap

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"startup-insights/internal/common/aws"
	"startup-insights/internal/common/config"
	"startup-insights/internal/common/logger"
	"startup-insights/internal/coordinator"
	"startup-insights/internal/models"
	"startup-insights/internal/report"
)

// ==========================
// Test Helper Functions
// ==========================

type fakePublisher struct {
	err    error
	events []aws.AnalysisEvent
}

func (f *fakePublisher) PublishAnalysis(ctx context.Context, event aws.AnalysisEvent) (string, error) {
	f.events = append(f.events, event)
	return "msg-1", f.err
}

func createOutcome() coordinator.Outcome {
	return coordinator.Outcome{
		Cycle:   4,
		Phase:   report.PhaseReady,
		Profile: &models.StartupProfile{OrganizationName: "Acme Robotics", InvestmentStage: "Seed"},
		Prediction: &models.PredictionResult{
			PracticalPrediction: models.PredictionOutcome{Label: "Success", Probability: models.Float64(0.7)},
		},
		PeerComparison: &models.PeerComparisonReport{StartupName: "Acme Robotics"},
		HealthScore:    64,
	}
}

// ==========================
// Retry Tests
// ==========================

func TestRetryWithBackoff(t *testing.T) {
	tests := []struct {
		name      string
		failFirst int
		wantCalls int
		wantErr   bool
	}{
		{name: "first attempt", failFirst: 0, wantCalls: 1},
		{name: "recovers", failFirst: 2, wantCalls: 3},
		{name: "exhausted", failFirst: 10, wantCalls: 4, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := RetryWithBackoff(context.Background(), func() error {
				calls++
				if calls <= tt.failFirst {
					return errors.New("connection refused")
				}
				return nil
			}, 4, time.Millisecond, logger.NewTestLogger(t), "test op")

			assert.Equal(t, tt.wantCalls, calls)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "test op failed after 4 attempts")
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRetryWithBackoff_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := RetryWithBackoff(ctx, func() error {
		calls++
		return errors.New("down")
	}, 5, time.Hour, logger.NewTestLogger(t), "test op")

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

// ==========================
// Backend Tests
// ==========================

func TestOpen_NothingConfigured(t *testing.T) {
	b, err := Open(context.Background(), &config.Config{}, Options{}, logger.NewTestLogger(t))
	require.NoError(t, err)
	defer b.Close()

	assert.Nil(t, b.Postgres)
	assert.Nil(t, b.Submissions)
	assert.Nil(t, b.Redis)
	assert.Nil(t, b.Elastic)
	assert.Nil(t, b.Publisher)
	assert.Empty(t, b.Checks())
}

func TestOpen_Redis(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := &config.Config{}
	cfg.Database.Redis.Address = mr.Addr()

	b, err := Open(context.Background(), cfg, Options{Attempts: 1, InitialDelay: time.Millisecond}, logger.NewTestLogger(t))
	require.NoError(t, err)
	defer b.Close()

	require.NotNil(t, b.Redis)
	checks := b.Checks()
	require.Contains(t, checks, "redis")
	assert.NoError(t, checks["redis"](context.Background()))
}

func TestOpen_RedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := &config.Config{}
	cfg.Database.Redis.Address = addr

	_, err := Open(context.Background(), cfg, Options{Attempts: 2, InitialDelay: time.Millisecond}, logger.NewTestLogger(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Redis connection failed after 2 attempts")
}

// ==========================
// Event Tests
// ==========================

func TestAnalysisEvent(t *testing.T) {
	event, ok := AnalysisEvent(createOutcome())
	require.True(t, ok)

	assert.Equal(t, "Acme Robotics", event.OrganizationName)
	assert.Equal(t, "Seed", event.InvestmentStage)
	assert.Equal(t, "Success", event.PredictionLabel)
	assert.Equal(t, models.Float64(0.7), event.Confidence)
	assert.Equal(t, 64, event.HealthScore)
	assert.True(t, event.PeerComparison)

	failed := createOutcome()
	failed.Prediction = nil
	failed.Phase = report.PhasePredictFailed
	_, ok = AnalysisEvent(failed)
	assert.False(t, ok)
}

func TestPublishHook(t *testing.T) {
	pub := &fakePublisher{}
	hook := PublishHook(pub, logger.NewTestLogger(t))

	hook(context.Background(), createOutcome())
	noPrediction := createOutcome()
	noPrediction.Prediction = nil
	hook(context.Background(), noPrediction)

	require.Len(t, pub.events, 1)
	assert.Equal(t, "Success", pub.events[0].PredictionLabel)
}

func TestPublishHook_FailureIsSwallowed(t *testing.T) {
	pub := &fakePublisher{err: errors.New("throttled")}
	hook := PublishHook(pub, logger.NewTestLogger(t))

	assert.NotPanics(t, func() { hook(context.Background(), createOutcome()) })
	assert.Len(t, pub.events, 1)
}
