// Package config handles simulation configuration loading and management.
package config

import "time"

// Config holds all simulation settings.
type Config struct {
	Simulation      SimulationConfig      `yaml:"simulation"`
	Actor           ActorConfig           `yaml:"actor"`
	Platform        PlatformConfig        `yaml:"platform"`
	Trampoline      TrampolineConfig      `yaml:"trampoline"`
	FallingPlatform FallingPlatformConfig `yaml:"falling_platform"`
	Animation       AnimationConfig       `yaml:"animation"`
	Spawn           SpawnConfig           `yaml:"spawn"`
	Session         SessionConfig         `yaml:"session"`
	Audio           AudioConfig           `yaml:"audio"`
	Level           LevelConfig           `yaml:"level"`
	Logging         LoggingConfig         `yaml:"logging"`
}

// SimulationConfig holds the fixed-tick loop settings.
type SimulationConfig struct {
	Tick     time.Duration `yaml:"tick"`
	Ticks    int           `yaml:"ticks"` // ticks to run in the CLI
	CellSize int           `yaml:"cell_size"`
}

// TickSeconds returns the tick length in seconds.
func (s SimulationConfig) TickSeconds() float32 {
	return float32(s.Tick.Seconds())
}

// ActorConfig holds the movement, climbing and health tuning of an actor.
// Speeds are world units per second, accelerations are per-tick increments.
type ActorConfig struct {
	Gravity      float32 `yaml:"gravity"`
	MaxMoveSpeed float32 `yaml:"max_move_speed"`
	GroundAccel  float32 `yaml:"ground_accel"`
	GroundDecel  float32 `yaml:"ground_decel"`
	AirAccel     float32 `yaml:"air_accel"`
	AirDecel     float32 `yaml:"air_decel"`

	JumpForce         float32       `yaml:"jump_force"`
	AllowJumpDown     bool          `yaml:"allow_jump_down"`
	AllowBounceJump   bool          `yaml:"allow_bounce_jump"`
	BounceJumpTimeOut time.Duration `yaml:"bounce_jump_timeout"`

	AllowGlide        bool          `yaml:"allow_glide"`
	GlideMaxFallSpeed float32       `yaml:"glide_max_fall_speed"`
	GlideTimeOut      time.Duration `yaml:"glide_timeout"`

	ClimbUpSpeed          float32       `yaml:"climb_up_speed"`
	ClimbDownSpeed        float32       `yaml:"climb_down_speed"`
	ClimbTimeOut          time.Duration `yaml:"climb_timeout"`
	ClimbJumpCoefficient  float32       `yaml:"climb_jump_coefficient"`
	LadderAttachThreshold float32       `yaml:"ladder_attach_threshold"`

	GroundCheckThreshold float32 `yaml:"ground_check_threshold"`
	GroundYBuffer        float32 `yaml:"ground_y_buffer"`
	MaxGroundNormalY     float32 `yaml:"max_ground_normal_y"`

	MaxHealth     float32       `yaml:"max_health"`
	Armor         float32       `yaml:"armor"` // fraction of damage absorbed, 0..1
	Lives         int           `yaml:"lives"`
	AllowRespawn  bool          `yaml:"allow_respawn"`
	HideOnDeath   bool          `yaml:"hide_on_death"`
	SpawnTimeOut  time.Duration `yaml:"spawn_timeout"`
	AttackTimeOut time.Duration `yaml:"attack_timeout"`
	DamageTimeOut time.Duration `yaml:"damage_timeout"`
	MaxItems      int           `yaml:"max_items"`
}

// PlatformConfig holds surface defaults for platforms.
type PlatformConfig struct {
	Friction float32 `yaml:"friction"`
	Force    float32 `yaml:"force"`
}

// TrampolineConfig holds bounce defaults.
type TrampolineConfig struct {
	BounceForce  float32 `yaml:"bounce_force"`
	JumpModifier float32 `yaml:"jump_modifier"`
}

// FallingPlatformConfig holds collapse and recovery defaults.
type FallingPlatformConfig struct {
	Gravity        float32       `yaml:"gravity"`
	FallTimeOut    time.Duration `yaml:"fall_timeout"`
	RecoverTimeOut time.Duration `yaml:"recover_timeout"`
	AutoRecover    bool          `yaml:"auto_recover"`
}

// AnimationConfig holds animation state machine settings.
type AnimationConfig struct {
	AllowTransitions bool          `yaml:"allow_transitions"`
	PlaySounds       bool          `yaml:"play_sounds"`
	ScaleVolume      bool          `yaml:"scale_volume"`
	SoundMinDistance float32       `yaml:"sound_min_distance"`
	SoundMaxDistance float32       `yaml:"sound_max_distance"`
	IdleDwell        time.Duration `yaml:"idle_dwell"`
	AirGrace         time.Duration `yaml:"air_grace"`
}

// SpawnConfig holds spawn point defaults.
type SpawnConfig struct {
	MinSpawnDistance float32       `yaml:"min_spawn_distance"`
	MaxSpawnDistance float32       `yaml:"max_spawn_distance"`
	NumberToSpawn    int           `yaml:"number_to_spawn"`
	SpawnInterval    time.Duration `yaml:"spawn_interval"`
	AutoDespawn      bool          `yaml:"auto_despawn"`
}

// SessionConfig holds game-session rules.
type SessionConfig struct {
	FallScore    int           `yaml:"fall_score"` // points per tick spent falling
	WinScore     int           `yaml:"win_score"`
	RestartDelay time.Duration `yaml:"restart_delay"`

	// Rising platforms, used by levels with a scroller.
	ScrollSpeed         float32       `yaml:"scroll_speed"` // initial rise speed, units per second
	MaxScrollSpeed      float32       `yaml:"max_scroll_speed"`
	ScrollSpeedOffset   float32       `yaml:"scroll_speed_offset"`
	ScrollSpeedInterval time.Duration `yaml:"scroll_speed_interval"`
	PlatformSpawnMin    time.Duration `yaml:"platform_spawn_min"`
	PlatformSpawnMax    time.Duration `yaml:"platform_spawn_max"`
	// FallingPlatformChance makes one spawn in FallingPlatformChance+1 a falling platform.
	FallingPlatformChance int `yaml:"falling_platform_chance"`
}

// AudioConfig holds audio settings.
type AudioConfig struct {
	Enabled      bool    `yaml:"enabled"`
	SoundDir     string  `yaml:"sound_dir"`
	MasterVolume float32 `yaml:"master_volume"`
	SFXVolume    float32 `yaml:"sfx_volume"`
	Muted        bool    `yaml:"muted"`
}

// LevelConfig holds level document settings.
type LevelConfig struct {
	Path string `yaml:"path"` // empty selects the built-in demo level
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
	// JSON writes the log file as JSON lines.
	JSON bool `yaml:"json"`
	// Components sets per-subsystem levels, e.g. ground: debug.
	Components map[string]string `yaml:"components,omitempty"`
}

// DefaultActor returns the stock actor tuning.
func DefaultActor() ActorConfig {
	return ActorConfig{
		Gravity:      3.5,
		MaxMoveSpeed: 35,
		GroundAccel:  3,
		GroundDecel:  5,
		AirAccel:     2,
		AirDecel:     0.5,

		JumpForce:         50,
		AllowJumpDown:     true,
		AllowBounceJump:   true,
		BounceJumpTimeOut: 50 * time.Millisecond,

		AllowGlide:        true,
		GlideMaxFallSpeed: 10,
		GlideTimeOut:      2 * time.Second,

		ClimbUpSpeed:          25,
		ClimbDownSpeed:        45,
		ClimbTimeOut:          time.Second,
		ClimbJumpCoefficient:  0.5,
		LadderAttachThreshold: 1,

		GroundCheckThreshold: 0.3,
		GroundYBuffer:        0.05,
		MaxGroundNormalY:     -0.1,

		MaxHealth:     100,
		Armor:         0,
		Lives:         3,
		AllowRespawn:  true,
		HideOnDeath:   false,
		SpawnTimeOut:  3 * time.Second,
		AttackTimeOut: 400 * time.Millisecond,
		DamageTimeOut: 750 * time.Millisecond,
		MaxItems:      10,
	}
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Simulation: SimulationConfig{
			Tick:     32 * time.Millisecond,
			Ticks:    600,
			CellSize: 16,
		},
		Actor: DefaultActor(),
		Platform: PlatformConfig{
			Friction: 1,
			Force:    0,
		},
		Trampoline: TrampolineConfig{
			BounceForce:  100,
			JumpModifier: 1.5,
		},
		FallingPlatform: FallingPlatformConfig{
			Gravity:        4,
			FallTimeOut:    500 * time.Millisecond,
			RecoverTimeOut: 2 * time.Second,
			AutoRecover:    true,
		},
		Animation: AnimationConfig{
			AllowTransitions: true,
			PlaySounds:       true,
			ScaleVolume:      true,
			SoundMinDistance: 60,
			SoundMaxDistance: 100,
			IdleDwell:        1200 * time.Millisecond,
			AirGrace:         100 * time.Millisecond,
		},
		Spawn: SpawnConfig{
			MinSpawnDistance: 60,
			MaxSpawnDistance: 100,
			NumberToSpawn:    1,
			SpawnInterval:    5 * time.Second,
			AutoDespawn:      true,
		},
		Session: SessionConfig{
			FallScore:    3,
			WinScore:     1000,
			RestartDelay: 2 * time.Second,

			ScrollSpeed:           10,
			MaxScrollSpeed:        30,
			ScrollSpeedOffset:     2,
			ScrollSpeedInterval:   3500 * time.Millisecond,
			PlatformSpawnMin:      1000 * time.Millisecond,
			PlatformSpawnMax:      2000 * time.Millisecond,
			FallingPlatformChance: 4,
		},
		Audio: AudioConfig{
			Enabled:      false,
			MasterVolume: 0.8,
			SFXVolume:    0.8,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
