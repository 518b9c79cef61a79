// internal/workers/analysis/compute-health-score/models.go
package computehealthscore

import (
	"startup-insights/internal/derived"
	"startup-insights/internal/models"
)

type Input struct {
	StartupProfile *models.StartupProfile       `json:"startupProfile"`
	PeerComparison *models.PeerComparisonReport `json:"peerComparison,omitempty"`
}

type Output struct {
	HealthScore     int                      `json:"healthScore"`
	Breakdown       []derived.BreakdownItem  `json:"breakdown"`
	Recommendations []derived.Recommendation `json:"recommendations"`
	NextMilestone   *derived.Milestone       `json:"nextMilestone,omitempty"`
}
