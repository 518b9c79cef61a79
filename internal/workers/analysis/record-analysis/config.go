// internal/workers/analysis/record-analysis/config.go
package recordanalysis

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
		Timeout: 15 * time.Second,
	}
}
