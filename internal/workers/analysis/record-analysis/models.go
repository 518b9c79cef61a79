// internal/workers/analysis/record-analysis/models.go
package recordanalysis

import "startup-insights/internal/models"

type Input struct {
	StartupProfile *models.StartupProfile       `json:"startupProfile"`
	Prediction     *models.PredictionResult     `json:"prediction"`
	PeerComparison *models.PeerComparisonReport `json:"peerComparison,omitempty"`
	HealthScore    int                          `json:"healthScore"`
}

type Output struct {
	SubmissionID   string `json:"submissionId,omitempty"`
	EventMessageID string `json:"eventMessageId,omitempty"`
	Recorded       bool   `json:"recorded"`
	Published      bool   `json:"published"`
}
