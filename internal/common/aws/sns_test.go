package aws

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	apperrors "startup-insights/internal/common/errors"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

type fakeSNS struct {
	inputs []*sns.PublishInput
	err    error
}

func (f *fakeSNS) Publish(_ context.Context, params *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.inputs = append(f.inputs, params)
	if f.err != nil {
		return nil, f.err
	}
	return &sns.PublishOutput{MessageId: awssdk.String("msg-1")}, nil
}

// ==========================
// Core Functionality Tests
// ==========================

func TestSNSClient_PublishAnalysis(t *testing.T) {
	fake := &fakeSNS{}
	client := newSNSClient(fake, "arn:aws:sns:ap-south-1:123456789012:startup-events")
	fixed := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	client.now = func() time.Time { return fixed }

	id, err := client.PublishAnalysis(context.Background(), AnalysisEvent{
		OrganizationName: "Acme Robotics",
		PredictionLabel:  "Active",
		HealthScore:      72,
	})
	require.NoError(t, err)
	assert.Equal(t, "msg-1", id)

	require.Len(t, fake.inputs, 1)
	in := fake.inputs[0]
	assert.Equal(t, "arn:aws:sns:ap-south-1:123456789012:startup-events", awssdk.ToString(in.TopicArn))
	assert.Equal(t, "Startup analyzed: Acme Robotics", awssdk.ToString(in.Subject))
	assert.Equal(t, "Active", awssdk.ToString(in.MessageAttributes["predictionLabel"].StringValue))

	var event AnalysisEvent
	require.NoError(t, json.Unmarshal([]byte(awssdk.ToString(in.Message)), &event))
	assert.NotEmpty(t, event.EventID)
	assert.Equal(t, EventStartupAnalyzed, event.EventType)
	assert.Equal(t, fixed, event.OccurredAt)
	assert.Equal(t, 72, event.HealthScore)
}

func TestSNSClient_PublishAnalysis_Failure(t *testing.T) {
	client := newSNSClient(&fakeSNS{err: errors.New("throttled")}, "arn")

	_, err := client.PublishAnalysis(context.Background(), AnalysisEvent{OrganizationName: "X"})
	require.Error(t, err)

	var stdErr *apperrors.StandardError
	require.True(t, errors.As(err, &stdErr))
	assert.Equal(t, apperrors.ErrCodeNotificationSendFailed, stdErr.Code)
}
