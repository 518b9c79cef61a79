// internal/workers/analysis/compare-peers/config.go
package comparepeers

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
