// Package game implements the headless simulation loop.
package game

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/platformer-core/internal/config"
	"github.com/Faultbox/platformer-core/internal/engine/audio"
	"github.com/Faultbox/platformer-core/internal/engine/input"
	"github.com/Faultbox/platformer-core/internal/game/level"
	"github.com/Faultbox/platformer-core/internal/game/states"
	"github.com/Faultbox/platformer-core/internal/game/world"
	"github.com/Faultbox/platformer-core/internal/logger"
)

// Game is the main game instance.
type Game struct {
	config  *config.Config
	running bool
	audio   *audio.Manager
	input   *input.Input
	world   *world.World
}

// Summary describes the state of the session after a run.
type Summary struct {
	Ticks     int
	SimTime   time.Duration
	Phase     string
	Phases    []states.Transition
	Score     int
	HasPlayer bool
	Position  [2]float32
	Physics   string
	Animation string
	Health    float32
	Lives     int
}

// New creates a new game instance.
func New(cfg *config.Config) (*Game, error) {
	logger.Info("initializing game",
		zap.Duration("tick", cfg.Simulation.Tick),
		zap.Int("ticks", cfg.Simulation.Ticks),
		zap.String("level", cfg.Level.Path),
	)

	g := &Game{
		config:  cfg,
		running: false,
		audio:   audio.New(),
	}

	// Audio is optional: without it sounds are tracked silently.
	if cfg.Audio.Enabled {
		if err := g.audio.Init(); err != nil {
			logger.Warn("audio disabled", zap.Error(err))
		}
	}
	g.audio.SetMasterVolume(float64(cfg.Audio.MasterVolume))
	g.audio.SetSFXVolume(float64(cfg.Audio.SFXVolume))
	g.audio.SetMuted(cfg.Audio.Muted)
	if cfg.Audio.SoundDir != "" {
		n, err := g.audio.LoadDir(cfg.Audio.SoundDir)
		if err != nil {
			logger.Warn("loading sounds", zap.Error(err))
		}
		logger.Debug("sounds loaded", zap.Int("count", n))
	}

	doc, err := level.Load(cfg.Level.Path)
	if err != nil {
		g.audio.Close()
		return nil, fmt.Errorf("failed to load level: %w", err)
	}

	g.world, err = level.NewWorld(cfg, doc, g.audio)
	if err != nil {
		g.audio.Close()
		return nil, fmt.Errorf("failed to build level: %w", err)
	}

	g.input = input.New()
	g.input.LoadScript(doc.Script)

	logger.Info("game initialized successfully")
	return g, nil
}

// World returns the running world.
func (g *Game) World() *world.World {
	return g.world
}

// Input returns the input queue, e.g. to push extra events.
func (g *Game) Input() *input.Input {
	return g.input
}

// Run advances the simulation by ticks fixed steps, or until a quit event.
func (g *Game) Run(ticks int) error {
	g.running = true
	perSecond := int(time.Second / g.config.Simulation.Tick)
	if perSecond < 1 {
		perSecond = 1
	}

	logger.Info("starting game loop", zap.Int("ticks", ticks))

	for i := 0; g.running && i < ticks; i++ {
		// 1. Process input
		if g.input.Update() {
			// Quit event received
			g.running = false
			break
		}
		g.world.HandleInput(g.input.Events())

		// 2. Update game state
		if err := g.world.Tick(); err != nil {
			return fmt.Errorf("update error: %w", err)
		}

		if g.world.Ticks()%perSecond == 0 {
			s := g.Summary()
			logger.Debug("tick",
				zap.Int("tick", s.Ticks),
				zap.String("phase", s.Phase),
				zap.Int("score", s.Score),
				zap.String("animation", s.Animation),
				zap.Float32s("position", s.Position[:]))
		}
	}

	g.running = false
	return nil
}

// Summary reports the session and player state.
func (g *Game) Summary() Summary {
	w := g.world
	s := Summary{
		Ticks:   w.Ticks(),
		SimTime: time.Duration(w.Ticks()) * g.config.Simulation.Tick,
		Phase:   w.Phase(),
		Phases:  w.PhaseHistory(),
		Score:   w.Score(),
	}
	if p, ok := w.Player(); ok {
		a := p.Actor
		s.HasPlayer = true
		s.Position = [2]float32{a.Body.Position.X, a.Body.Position.Y}
		s.Physics = a.State().String()
		s.Animation = p.Anim.Current().String()
		s.Health = a.Health()
		s.Lives = a.Lives()
	}
	return s
}

// Close cleans up game resources.
func (g *Game) Close() {
	logger.Info("closing game")

	if g.world != nil {
		g.world.Clear()
	}
	if g.audio != nil {
		g.audio.Close()
	}
}
