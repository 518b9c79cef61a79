// internal/common/aws/sns.go
package aws

import (
	"context"
	"encoding/json"
	"time"

	apperrors "startup-insights/internal/common/errors"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/google/uuid"
)

const EventStartupAnalyzed = "startup.analyzed"

// snsAPI is the subset of the SNS client the publisher needs.
type snsAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type SNSClient struct {
	client   snsAPI
	topicARN string
	now      func() time.Time
}

func NewSNSClient(ctx context.Context, region, topicARN string) (*SNSClient, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return newSNSClient(sns.NewFromConfig(cfg), topicARN), nil
}

func newSNSClient(client snsAPI, topicARN string) *SNSClient {
	return &SNSClient{client: client, topicARN: topicARN, now: time.Now}
}

// AnalysisEvent announces a settled submission that produced a prediction.
type AnalysisEvent struct {
	EventID          string    `json:"eventId"`
	EventType        string    `json:"eventType"`
	OccurredAt       time.Time `json:"occurredAt"`
	OrganizationName string    `json:"organizationName"`
	InvestmentStage  string    `json:"investmentStage,omitempty"`
	PredictionLabel  string    `json:"predictionLabel"`
	Confidence       *float64  `json:"confidence,omitempty"`
	HealthScore      int       `json:"healthScore"`
	PeerComparison   bool      `json:"peerComparison"`
}

// PublishAnalysis sends the event with the prediction label as a message
// attribute so subscribers can filter on it. It returns the SNS message ID.
func (s *SNSClient) PublishAnalysis(ctx context.Context, event AnalysisEvent) (string, error) {
	if event.EventID == "" {
		event.EventID = uuid.New().String()
	}
	if event.EventType == "" {
		event.EventType = EventStartupAnalyzed
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = s.now().UTC()
	}

	body, err := json.Marshal(event)
	if err != nil {
		return "", apperrors.NewNotificationSendFailedError("sns", err)
	}

	out, err := s.client.Publish(ctx, &sns.PublishInput{
		TopicArn: awssdk.String(s.topicARN),
		Message:  awssdk.String(string(body)),
		Subject:  awssdk.String("Startup analyzed: " + event.OrganizationName),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"eventType": {
				DataType:    awssdk.String("String"),
				StringValue: awssdk.String(event.EventType),
			},
			"predictionLabel": {
				DataType:    awssdk.String("String"),
				StringValue: awssdk.String(event.PredictionLabel),
			},
		},
	})
	if err != nil {
		return "", apperrors.NewNotificationSendFailedError("sns", err)
	}
	return awssdk.ToString(out.MessageId), nil
}
