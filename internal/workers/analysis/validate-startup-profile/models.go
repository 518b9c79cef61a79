// internal/workers/analysis/validate-startup-profile/models.go
package validateprofile

import (
	"encoding/json"

	"startup-insights/internal/models"
)

type Input struct {
	StartupProfile json.RawMessage `json:"startupProfile"`
}

type Output struct {
	ProfileValid   bool                   `json:"profileValid"`
	StartupProfile *models.StartupProfile `json:"startupProfile"`
}
