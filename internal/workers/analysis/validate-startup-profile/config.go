// internal/workers/analysis/validate-startup-profile/config.go
package validateprofile

import (
	"time"

	"startup-insights/internal/common/observability"
)

type Config struct {
	Timeout time.Duration

	// Observability is optional.
	Observability *observability.Observability
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 5 * time.Second,
	}
}
