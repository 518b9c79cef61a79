package bootstrap

import (
	"context"

	"startup-insights/internal/common/aws"
	"startup-insights/internal/common/logger"
	"startup-insights/internal/coordinator"
)

// Publisher announces analyses.
type Publisher interface {
	PublishAnalysis(ctx context.Context, event aws.AnalysisEvent) (string, error)
}

// AnalysisEvent converts a settled cycle into an event. The second result is
// false when the cycle produced no prediction.
func AnalysisEvent(outcome coordinator.Outcome) (aws.AnalysisEvent, bool) {
	if outcome.Prediction == nil || outcome.Profile == nil {
		return aws.AnalysisEvent{}, false
	}

	event := aws.AnalysisEvent{
		OrganizationName: outcome.Profile.OrganizationName,
		InvestmentStage:  outcome.Profile.InvestmentStage,
		PredictionLabel:  outcome.Prediction.PracticalPrediction.Label,
		HealthScore:      outcome.HealthScore,
		PeerComparison:   outcome.PeerComparison != nil,
	}
	if score, ok := outcome.Prediction.PracticalPrediction.Score(); ok {
		event.Confidence = &score
	}
	return event, true
}

// PublishHook publishes every cycle that produced a prediction. Failures are
// logged only.
func PublishHook(pub Publisher, log logger.Logger) coordinator.SettleHook {
	log = logger.Component(log, "analysis-events")
	return func(ctx context.Context, outcome coordinator.Outcome) {
		event, ok := AnalysisEvent(outcome)
		if !ok {
			return
		}
		messageID, err := pub.PublishAnalysis(ctx, event)
		if err != nil {
			log.Warn("failed to publish analysis event", map[string]interface{}{
				"cycle": outcome.Cycle,
				"error": err.Error(),
			})
			return
		}
		log.Debug("analysis event published", map[string]interface{}{
			"cycle":     outcome.Cycle,
			"messageId": messageID,
		})
	}
}
