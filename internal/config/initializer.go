package config

import (
	"context"
	"slices"
)

// Initializer feeds the configured initial locations to the project
// manager. It implements lifecycle.Initializer.
type Initializer struct {
	locations []string
}

// NewInitializer creates an initializer from the loaded configuration.
func NewInitializer(cfg *Config) *Initializer {
	return &Initializer{locations: slices.Clone(cfg.Manager.InitialLocations)}
}

// InitialLocations returns the locations to load at startup.
func (i *Initializer) InitialLocations(ctx context.Context) ([]string, error) {
	return slices.Clone(i.locations), nil
}
