// internal/workers/analysis/request-prediction/config.go
package requestprediction

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
		Timeout: 30 * time.Second,
	}
}
