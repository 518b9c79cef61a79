// Package theme keeps the process-wide light/dark preference.
//
// There is no implicit load: Init reads the persisted value once and falls
// back to the configured default. Set validates and persists.
package theme

import (
	"context"
	"errors"
	"strings"
	"sync"

	apperrors "startup-insights/internal/common/errors"
	"startup-insights/internal/common/logger"

	"github.com/redis/go-redis/v9"
)

type Theme string

const (
	Light Theme = "light"
	Dark  Theme = "dark"
)

const storageKey = "theme"

// Parse accepts "light" or "dark" in any case.
func Parse(raw string) (Theme, error) {
	switch Theme(strings.ToLower(strings.TrimSpace(raw))) {
	case Light:
		return Light, nil
	case Dark:
		return Dark, nil
	}
	return "", apperrors.NewInvalidInputError("theme must be light or dark")
}

// Preference holds the current theme. A nil Redis client keeps it in memory.
type Preference struct {
	mu       sync.RWMutex
	current  Theme
	fallback Theme
	client   *redis.Client
	logger   logger.Logger
}

func NewPreference(client *redis.Client, fallback string, log logger.Logger) *Preference {
	def, err := Parse(fallback)
	if err != nil {
		def = Light
	}
	return &Preference{
		current:  def,
		fallback: def,
		client:   client,
		logger:   logger.Component(log, "theme"),
	}
}

// Init loads the persisted theme. An unreadable or unknown stored value
// leaves the configured default in place.
func (p *Preference) Init(ctx context.Context) Theme {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current = p.fallback
	if p.client == nil {
		return p.current
	}

	raw, err := p.client.Get(ctx, storageKey).Result()
	switch {
	case errors.Is(err, redis.Nil):
	case err != nil:
		p.logger.Warn("failed to read theme, using default", map[string]interface{}{
			"default": string(p.fallback),
			"error":   err.Error(),
		})
	default:
		if t, perr := Parse(raw); perr == nil {
			p.current = t
		} else {
			p.logger.Warn("ignoring unknown stored theme", map[string]interface{}{"value": raw})
		}
	}
	return p.current
}

func (p *Preference) Get() Theme {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current
}

// Set changes the theme. The in-memory value changes even when persisting
// fails; the error is returned so callers can report it.
func (p *Preference) Set(ctx context.Context, raw string) (Theme, error) {
	t, err := Parse(raw)
	if err != nil {
		return p.Get(), err
	}

	p.mu.Lock()
	p.current = t
	p.mu.Unlock()

	if p.client == nil {
		return t, nil
	}
	if err := p.client.Set(ctx, storageKey, string(t), 0).Err(); err != nil {
		return t, apperrors.NewCacheUnavailableError(err)
	}
	return t, nil
}

// Toggle flips between light and dark.
func (p *Preference) Toggle(ctx context.Context) (Theme, error) {
	next := Dark
	if p.Get() == Dark {
		next = Light
	}
	return p.Set(ctx, string(next))
}
