package config

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializer(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the configured locations", func(t *testing.T) {
		cfg := &Config{}
		cfg.Manager.InitialLocations = []string{"/a.json", "/b.toml"}

		locs, err := NewInitializer(cfg).InitialLocations(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"/a.json", "/b.toml"}, locs)
	})

	t.Run("callers cannot mutate the configured set", func(t *testing.T) {
		cfg := &Config{}
		cfg.Manager.InitialLocations = []string{"/a.json"}
		init := NewInitializer(cfg)

		locs, err := init.InitialLocations(ctx)
		require.NoError(t, err)
		locs[0] = "/mutated.json"

		again, err := init.InitialLocations(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"/a.json"}, again)
	})

	t.Run("empty configuration yields no locations", func(t *testing.T) {
		locs, err := NewInitializer(&Config{}).InitialLocations(ctx)
		require.NoError(t, err)
		assert.Empty(t, locs)
	})
}
