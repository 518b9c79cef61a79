// internal/workers/analysis/compare-peers/models.go
package comparepeers

import "startup-insights/internal/models"

type Input struct {
	StartupProfile *models.StartupProfile `json:"startupProfile"`
	SelectedPeer   string                 `json:"selectedPeer,omitempty"`
}

type Output struct {
	PeerComparison *models.PeerComparisonReport    `json:"peerComparison"`
	PeerSelection  *models.PeerSelectionComparison `json:"peerSelection,omitempty"`
}
