// internal/workers/analysis/request-prediction/models.go
package requestprediction

import "startup-insights/internal/models"

type Input struct {
	StartupProfile *models.StartupProfile `json:"startupProfile"`
}

type Output struct {
	Prediction      *models.PredictionResult `json:"prediction"`
	PredictionLabel string                   `json:"predictionLabel"`
	Confidence      *float64                 `json:"confidence,omitempty"`
}
