package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Load loads configuration with priority: defaults < file < flags.
func Load() (*Config, error) {
	// Start with defaults
	cfg := Default()

	// Try to load from file (explicit path takes priority)
	configPath := ConfigPath()
	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
	}

	// Apply CLI flags (highest priority)
	applyFlags(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// findConfigFile looks for config in standard locations.
func findConfigFile() string {
	candidates := []string{
		"./config.yaml",
		filepath.Join(ConfigDir(), "config.yaml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "PlatformerCore")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "PlatformerCore")
	default: // Linux and others
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "platformer-core")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "platformer-core")
	}
}

// loadFromFile overlays a YAML file onto cfg. Keys the file leaves out keep
// their current values; unknown keys are an error so a misspelt tuning
// value does not silently fall back to its default.
func loadFromFile(cfg *Config, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Validate rejects settings the simulation cannot run with.
func (c *Config) Validate() error {
	if c.Simulation.Tick <= 0 {
		return fmt.Errorf("simulation.tick must be positive, got %v", c.Simulation.Tick)
	}
	if c.Actor.MaxHealth <= 0 {
		return fmt.Errorf("actor.max_health must be positive, got %v", c.Actor.MaxHealth)
	}
	if c.Actor.Armor < 0 || c.Actor.Armor > 1 {
		return fmt.Errorf("actor.armor must be within [0, 1], got %v", c.Actor.Armor)
	}
	if c.Simulation.CellSize <= 0 {
		return fmt.Errorf("simulation.cell_size must be positive, got %d", c.Simulation.CellSize)
	}
	if c.Session.RestartDelay < 0 {
		return fmt.Errorf("session.restart_delay must not be negative, got %v", c.Session.RestartDelay)
	}
	if ss := c.Session; ss.ScrollSpeed > ss.MaxScrollSpeed {
		return fmt.Errorf("session.scroll_speed %v exceeds session.max_scroll_speed %v", ss.ScrollSpeed, ss.MaxScrollSpeed)
	}
	if c.Session.PlatformSpawnMin < 0 || c.Session.PlatformSpawnMax < c.Session.PlatformSpawnMin {
		return fmt.Errorf("session.platform_spawn_min..max must be a non-negative range, got %v..%v",
			c.Session.PlatformSpawnMin, c.Session.PlatformSpawnMax)
	}
	if c.Session.FallingPlatformChance < 0 {
		return fmt.Errorf("session.falling_platform_chance must not be negative, got %d", c.Session.FallingPlatformChance)
	}
	for name, lvl := range c.Logging.Components {
		switch lvl {
		case "debug", "info", "warn", "error":
		default:
			return fmt.Errorf("logging.components.%s: unknown level %q", name, lvl)
		}
	}
	if c.Animation.SoundMaxDistance <= c.Animation.SoundMinDistance {
		return fmt.Errorf("animation.sound_max_distance (%v) must exceed sound_min_distance (%v)",
			c.Animation.SoundMaxDistance, c.Animation.SoundMinDistance)
	}
	return nil
}
