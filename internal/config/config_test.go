package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Simulation defaults
	if cfg.Simulation.Tick != 32*time.Millisecond {
		t.Errorf("expected tick 32ms, got %v", cfg.Simulation.Tick)
	}
	if cfg.Simulation.TickSeconds() != 0.032 {
		t.Errorf("expected tick seconds 0.032, got %f", cfg.Simulation.TickSeconds())
	}

	// Actor defaults
	if cfg.Actor.Gravity != 3.5 {
		t.Errorf("expected gravity 3.5, got %f", cfg.Actor.Gravity)
	}
	if cfg.Actor.JumpForce != 50 {
		t.Errorf("expected jump force 50, got %f", cfg.Actor.JumpForce)
	}
	if cfg.Actor.MaxGroundNormalY != -0.1 {
		t.Errorf("expected max ground normal Y -0.1, got %f", cfg.Actor.MaxGroundNormalY)
	}
	if cfg.Actor.SpawnTimeOut != 3*time.Second {
		t.Errorf("expected spawn timeout 3s, got %v", cfg.Actor.SpawnTimeOut)
	}
	if cfg.Actor.Lives != 3 {
		t.Errorf("expected 3 lives, got %d", cfg.Actor.Lives)
	}
	if !cfg.Actor.AllowGlide {
		t.Error("expected gliding to be allowed by default")
	}

	// Session defaults
	if cfg.Session.ScrollSpeed != 10 || cfg.Session.MaxScrollSpeed != 30 || cfg.Session.ScrollSpeedOffset != 2 {
		t.Errorf("unexpected scroll speeds %v/%v/%v", cfg.Session.ScrollSpeed, cfg.Session.MaxScrollSpeed, cfg.Session.ScrollSpeedOffset)
	}
	if cfg.Session.ScrollSpeedInterval != 3500*time.Millisecond {
		t.Errorf("expected scroll speed interval 3.5s, got %v", cfg.Session.ScrollSpeedInterval)
	}
	if cfg.Session.PlatformSpawnMin != time.Second || cfg.Session.PlatformSpawnMax != 2*time.Second {
		t.Errorf("expected spawn range 1s..2s, got %v..%v", cfg.Session.PlatformSpawnMin, cfg.Session.PlatformSpawnMax)
	}
	if cfg.Session.FallingPlatformChance != 4 {
		t.Errorf("expected falling platform chance 4, got %d", cfg.Session.FallingPlatformChance)
	}

	// Animation defaults
	if cfg.Animation.IdleDwell != 1200*time.Millisecond {
		t.Errorf("expected idle dwell 1.2s, got %v", cfg.Animation.IdleDwell)
	}
	if cfg.Animation.SoundMinDistance != 60 || cfg.Animation.SoundMaxDistance != 100 {
		t.Errorf("expected sound distances 60..100, got %f..%f",
			cfg.Animation.SoundMinDistance, cfg.Animation.SoundMaxDistance)
	}

	// Platform defaults
	if cfg.Trampoline.BounceForce != 100 {
		t.Errorf("expected bounce force 100, got %f", cfg.Trampoline.BounceForce)
	}
	if cfg.FallingPlatform.FallTimeOut != 500*time.Millisecond {
		t.Errorf("expected fall timeout 0.5s, got %v", cfg.FallingPlatform.FallTimeOut)
	}

	// Logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
simulation:
  tick: 16ms
  ticks: 120

actor:
  jump_force: 60
  spawn_timeout: 1500ms
  allow_glide: false

animation:
  idle_dwell: 2s

audio:
  enabled: true
  sound_dir: "sounds"
  muted: true

level:
  path: "levels/one.yaml"

logging:
  level: "debug"
  log_file: "sim.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Simulation.Tick != 16*time.Millisecond {
		t.Errorf("expected tick 16ms, got %v", cfg.Simulation.Tick)
	}
	if cfg.Simulation.Ticks != 120 {
		t.Errorf("expected 120 ticks, got %d", cfg.Simulation.Ticks)
	}
	if cfg.Actor.JumpForce != 60 {
		t.Errorf("expected jump force 60, got %f", cfg.Actor.JumpForce)
	}
	if cfg.Actor.SpawnTimeOut != 1500*time.Millisecond {
		t.Errorf("expected spawn timeout 1.5s, got %v", cfg.Actor.SpawnTimeOut)
	}
	if cfg.Actor.AllowGlide {
		t.Error("expected gliding to be disabled")
	}
	// Untouched fields keep their defaults.
	if cfg.Actor.Gravity != 3.5 {
		t.Errorf("expected default gravity 3.5, got %f", cfg.Actor.Gravity)
	}
	if cfg.Animation.IdleDwell != 2*time.Second {
		t.Errorf("expected idle dwell 2s, got %v", cfg.Animation.IdleDwell)
	}
	if !cfg.Audio.Enabled || !cfg.Audio.Muted || cfg.Audio.SoundDir != "sounds" {
		t.Errorf("unexpected audio config %+v", cfg.Audio)
	}
	if cfg.Level.Path != "levels/one.yaml" {
		t.Errorf("expected level path, got %s", cfg.Level.Path)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "sim.log" {
		t.Errorf("expected log file 'sim.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
actor:
  gravity: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	err := loadFromFile(cfg, configPath)
	if err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	err := loadFromFile(cfg, "/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"zero tick", func(c *Config) { c.Simulation.Tick = 0 }, "simulation.tick"},
		{"no health", func(c *Config) { c.Actor.MaxHealth = 0 }, "max_health"},
		{"armor above one", func(c *Config) { c.Actor.Armor = 1.5 }, "armor"},
		{"inverted sound range", func(c *Config) { c.Animation.SoundMaxDistance = 10 }, "sound_max_distance"},
		{"scroll speed above max", func(c *Config) { c.Session.ScrollSpeed = 40 }, "max_scroll_speed"},
		{"inverted spawn range", func(c *Config) { c.Session.PlatformSpawnMax = 500 * time.Millisecond }, "platform_spawn_min"},
		{"negative falling chance", func(c *Config) { c.Session.FallingPlatformChance = -1 }, "falling_platform_chance"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	os.Chdir(tmpDir)
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	path := findConfigFile()
	if path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("simulation:\n  ticks: 10\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	path = findConfigFile()
	if path == "" {
		t.Error("expected to find config.yaml in current directory")
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*testing.T, *Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name:  "level flag",
			setup: func() { *flagLevel = "custom.yaml" },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Level.Path != "custom.yaml" {
					t.Errorf("expected level custom.yaml, got %s", cfg.Level.Path)
				}
			},
			teardown: func() { *flagLevel = "" },
		},
		{
			name:  "ticks flag",
			setup: func() { *flagTicks = 42 },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Simulation.Ticks != 42 {
					t.Errorf("expected 42 ticks, got %d", cfg.Simulation.Ticks)
				}
			},
			teardown: func() { *flagTicks = 0 },
		},
		{
			name:  "mute flag",
			setup: func() { *flagMute = true },
			verify: func(t *testing.T, cfg *Config) {
				if !cfg.Audio.Muted || cfg.Audio.Enabled {
					t.Errorf("expected audio muted and disabled, got %+v", cfg.Audio)
				}
			},
			teardown: func() { *flagMute = false },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)

			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
simulation:
  ticks: 100
level:
  path: "from-file.yaml"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	*flagTicks = 250
	defer func() {
		*flagConfig = ""
		*flagTicks = 0
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Ticks should come from the flag, not the file.
	if cfg.Simulation.Ticks != 250 {
		t.Errorf("expected 250 ticks from flag, got %d", cfg.Simulation.Ticks)
	}
	// Level path comes from the file since no flag overrides it.
	if cfg.Level.Path != "from-file.yaml" {
		t.Errorf("expected level path from file, got %s", cfg.Level.Path)
	}
}

func TestSaveTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.Actor.Lives = 7
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo() error = %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("loadFromFile() error = %v", err)
	}
	if loaded.Actor.Lives != 7 {
		t.Errorf("expected 7 lives after reload, got %d", loaded.Actor.Lives)
	}
}

func TestLoadFromFileUnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("actor:\n  jump_froce: 60\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	err := loadFromFile(Default(), path)
	if err == nil || !strings.Contains(err.Error(), "jump_froce") {
		t.Errorf("expected error naming the unknown key, got %v", err)
	}
}

func TestLoadFromFileEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, path); err != nil {
		t.Fatalf("empty file should keep defaults, got %v", err)
	}
	if cfg.Simulation.Tick != 32*time.Millisecond {
		t.Errorf("expected default tick, got %v", cfg.Simulation.Tick)
	}
}

func TestValidateLogComponents(t *testing.T) {
	cfg := Default()
	cfg.Logging.Components = map[string]string{"ground": "debug"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	cfg.Logging.Components["anim"] = "verbose"
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "logging.components.anim") {
		t.Errorf("expected component level error, got %v", err)
	}
}

func TestSaveToReplacesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("stale"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := Default()
	cfg.Logging.Components = map[string]string{"ground": "debug"}
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), fileHeader) {
		t.Errorf("saved config lacks header:\n%s", data)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("loadFromFile() error = %v", err)
	}
	if loaded.Logging.Components["ground"] != "debug" {
		t.Errorf("component levels lost: %v", loaded.Logging.Components)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %v", entries)
	}
}
