// internal/workers/analysis/compute-health-score/config.go
package computehealthscore

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
