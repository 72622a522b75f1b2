package states

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/platformer-core/internal/config"
	"github.com/Faultbox/platformer-core/internal/logger"
)

// Session is the game session the phases drive.
type Session interface {
	Score() int
	// Restart rebuilds the level from the start. Checkpoints only roll the
	// level back when the player respawns inside it.
	Restart() error
	SetMuted(muted bool)
}

// PlayingState runs the level until the score reaches the win score.
type PlayingState struct {
	session Session
	manager *Manager
	cfg     config.SessionConfig
}

// NewPlayingState creates the playing phase.
func NewPlayingState(s Session, m *Manager, cfg config.SessionConfig) *PlayingState {
	return &PlayingState{session: s, manager: m, cfg: cfg}
}

// Name implements State.
func (p *PlayingState) Name() string { return "playing" }

// Enter implements State.
func (p *PlayingState) Enter() error {
	p.session.SetMuted(false)
	return nil
}

// Exit implements State.
func (p *PlayingState) Exit() error { return nil }

// Update implements State.
func (p *PlayingState) Update(dt time.Duration) error {
	if p.cfg.WinScore > 0 && p.session.Score() >= p.cfg.WinScore && !p.manager.Pending() {
		p.manager.Change(NewLevelCompleteState(p.session))
	}
	return nil
}

// GameOverState waits for the restart delay, then reloads the level.
type GameOverState struct {
	session Session
	manager *Manager
	cfg     config.SessionConfig
}

// NewGameOverState creates the game over phase.
func NewGameOverState(s Session, m *Manager, cfg config.SessionConfig) *GameOverState {
	return &GameOverState{session: s, manager: m, cfg: cfg}
}

// Name implements State.
func (g *GameOverState) Name() string { return "gameOver" }

// Enter implements State.
func (g *GameOverState) Enter() error {
	logger.Info("game over", zap.Int("score", g.session.Score()))
	return nil
}

// Exit implements State.
func (g *GameOverState) Exit() error { return nil }

// Update implements State.
func (g *GameOverState) Update(dt time.Duration) error {
	if g.manager.Pending() {
		return nil
	}
	if g.manager.Elapsed() < g.cfg.RestartDelay {
		return nil
	}
	if err := g.session.Restart(); err != nil {
		return fmt.Errorf("restarting level: %w", err)
	}
	g.manager.Change(NewPlayingState(g.session, g.manager, g.cfg))
	return nil
}

// LevelCompleteState silences the level. It is terminal.
type LevelCompleteState struct {
	session Session
}

// NewLevelCompleteState creates the level complete phase.
func NewLevelCompleteState(s Session) *LevelCompleteState {
	return &LevelCompleteState{session: s}
}

// Name implements State.
func (l *LevelCompleteState) Name() string { return "levelComplete" }

// Enter implements State.
func (l *LevelCompleteState) Enter() error {
	l.session.SetMuted(true)
	logger.Info("level complete", zap.Int("score", l.session.Score()))
	return nil
}

// Exit implements State.
func (l *LevelCompleteState) Exit() error {
	l.session.SetMuted(false)
	return nil
}

// Update implements State.
func (l *LevelCompleteState) Update(dt time.Duration) error { return nil }
