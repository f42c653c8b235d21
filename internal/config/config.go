// Package config provides configuration loading for projectkit.
package config

import (
	"fmt"

	"github.com/fyrsmithlabs/projectkit/internal/logging"
	"github.com/fyrsmithlabs/projectkit/pkg/lifecycle"
)

// Config is the root configuration.
type Config struct {
	Manager ManagerConfig  `koanf:"manager"`
	Refresh RefreshConfig  `koanf:"refresh"`
	Logging logging.Config `koanf:"logging"`
}

// ManagerConfig configures the project manager.
type ManagerConfig struct {
	// Mode is "multiple" or "single".
	Mode string `koanf:"mode"`

	// InitialLocations are loaded at startup, best effort.
	InitialLocations []string `koanf:"initial_locations"`
}

// RefreshConfig configures external-change detection.
type RefreshConfig struct {
	// Enabled turns on filesystem watching of registered locations.
	Enabled bool `koanf:"enabled"`

	// Debounce is the quiet period between the last filesystem event and
	// the refresh.
	Debounce Duration `koanf:"debounce"`
}

// ManagementMode maps the configured mode string onto the lifecycle type.
func (c *Config) ManagementMode() lifecycle.ManagementMode {
	if c.Manager.Mode == "single" {
		return lifecycle.SingleDocument
	}
	return lifecycle.MultipleDocuments
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Manager.Mode != "multiple" && c.Manager.Mode != "single" {
		return fmt.Errorf("manager mode must be 'multiple' or 'single', got %q", c.Manager.Mode)
	}
	for i, loc := range c.Manager.InitialLocations {
		if loc == "" {
			return fmt.Errorf("initial location %d is empty", i)
		}
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	return nil
}
