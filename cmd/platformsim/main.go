// Package main is the entry point for the headless platformer simulation.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/platformer-core/internal/config"
	"github.com/Faultbox/platformer-core/internal/game"
	"github.com/Faultbox/platformer-core/internal/logger"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if path := config.WriteConfigPath(); path != "" {
		if err := cfg.SaveTo(path); err != nil {
			fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Config written to %s\n", path)
		return
	}

	// Initialize logger
	opts := logger.Options{
		Level:      cfg.Logging.Level,
		Console:    true,
		Components: cfg.Logging.Components,
	}
	if cfg.Logging.LogFile != "" {
		opts.File = logger.DefaultFileConfig(cfg.Logging.LogFile)
		opts.File.JSON = cfg.Logging.JSON
	}
	if err := logger.InitWithOptions(opts); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== Platformer Simulation ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	// Create and run game
	g, err := game.New(cfg)
	if err != nil {
		logger.Error("failed to create game", zap.Error(err))
		os.Exit(1)
	}
	defer g.Close()

	// Run the simulation
	if err := g.Run(cfg.Simulation.Ticks); err != nil {
		logger.Error("game error", zap.Error(err))
		os.Exit(1)
	}

	s := g.Summary()
	logger.Info("simulation finished",
		zap.Int("ticks", s.Ticks),
		zap.Duration("sim_time", s.SimTime),
		zap.String("phase", s.Phase),
		zap.Int("phase_changes", len(s.Phases)),
		zap.Int("score", s.Score),
		zap.Bool("player", s.HasPlayer),
		zap.Float32s("position", s.Position[:]),
		zap.String("physics", s.Physics),
		zap.String("animation", s.Animation),
		zap.Float32("health", s.Health),
		zap.Int("lives", s.Lives),
	)
}
