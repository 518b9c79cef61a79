package theme

import (
	"context"
	"testing"

	"startup-insights/internal/common/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

// ==========================
// Core Functionality Tests
// ==========================

func TestParse(t *testing.T) {
	tests := []struct {
		raw     string
		want    Theme
		wantErr bool
	}{
		{raw: "light", want: Light},
		{raw: " DARK ", want: Dark},
		{raw: "sepia", wantErr: true},
		{raw: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := Parse(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPreference_Init(t *testing.T) {
	tests := []struct {
		name     string
		stored   string
		fallback string
		want     Theme
	}{
		{name: "nothing stored uses default", fallback: "dark", want: Dark},
		{name: "stored value wins", stored: "dark", fallback: "light", want: Dark},
		{name: "unknown stored value ignored", stored: "blue", fallback: "light", want: Light},
		{name: "invalid default becomes light", fallback: "blue", want: Light},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mr, client := newTestRedis(t)
			if tt.stored != "" {
				require.NoError(t, mr.Set(storageKey, tt.stored))
			}

			p := NewPreference(client, tt.fallback, logger.NewTestLogger(t))
			assert.Equal(t, tt.want, p.Init(context.Background()))
			assert.Equal(t, tt.want, p.Get())
		})
	}
}

func TestPreference_Init_RedisDown(t *testing.T) {
	mr, client := newTestRedis(t)
	mr.Close()

	p := NewPreference(client, "dark", logger.NewTestLogger(t))
	assert.Equal(t, Dark, p.Init(context.Background()))
}

func TestPreference_SetPersists(t *testing.T) {
	mr, client := newTestRedis(t)
	p := NewPreference(client, "light", logger.NewTestLogger(t))
	p.Init(context.Background())

	got, err := p.Set(context.Background(), "Dark")
	require.NoError(t, err)
	assert.Equal(t, Dark, got)

	stored, err := mr.Get(storageKey)
	require.NoError(t, err)
	assert.Equal(t, "dark", stored)

	// A fresh process sees the persisted value.
	again := NewPreference(client, "light", logger.NewNoOpLogger())
	assert.Equal(t, Dark, again.Init(context.Background()))
}

func TestPreference_SetInvalid(t *testing.T) {
	p := NewPreference(nil, "dark", logger.NewNoOpLogger())

	got, err := p.Set(context.Background(), "neon")
	assert.Error(t, err)
	assert.Equal(t, Dark, got)
	assert.Equal(t, Dark, p.Get())
}

func TestPreference_Toggle_InMemory(t *testing.T) {
	p := NewPreference(nil, "light", logger.NewNoOpLogger())
	p.Init(context.Background())

	got, err := p.Toggle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Dark, got)

	got, err = p.Toggle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Light, got)
}
