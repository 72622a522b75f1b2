// Package states implements the session phases: playing, game over and
// level complete.
package states

import (
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/platformer-core/internal/logger"
)

// State represents a session phase.
type State interface {
	// Name identifies the phase in logs.
	Name() string

	// Enter is called when entering this state.
	Enter() error

	// Exit is called when leaving this state.
	Exit() error

	// Update is called every tick.
	Update(dt time.Duration) error
}

// Transition records one completed phase change.
type Transition struct {
	From, To string
	// At is the session time the new phase was entered.
	At time.Duration
}

// Manager switches between phases. A change requested during a tick takes
// effect at the start of the next Update, so a phase never exits while its
// own Update is running.
type Manager struct {
	current State
	next    State

	now     time.Duration
	entered time.Duration
	history []Transition
}

// NewManager creates a new state manager.
func NewManager() *Manager {
	return &Manager{}
}

// Current returns the current state.
func (m *Manager) Current() State {
	return m.current
}

// Pending reports whether a change is scheduled.
func (m *Manager) Pending() bool {
	return m.next != nil
}

// Change schedules a state change. The last request before Update wins.
func (m *Manager) Change(next State) {
	m.next = next
}

// Elapsed returns the time spent in the current phase, including the tick
// being updated.
func (m *Manager) Elapsed() time.Duration {
	return m.now - m.entered
}

// History returns the completed phase changes, oldest first.
func (m *Manager) History() []Transition {
	return m.history
}

// Update applies a pending change and then updates the current phase.
func (m *Manager) Update(dt time.Duration) error {
	if m.next != nil {
		if m.current != nil {
			if err := m.current.Exit(); err != nil {
				return err
			}
		}
		t := Transition{From: name(m.current), To: m.next.Name(), At: m.now}
		logger.Named("states").Debug("phase change",
			zap.String("from", t.From),
			zap.String("to", t.To),
			zap.Duration("at", t.At))
		m.history = append(m.history, t)
		m.current = m.next
		m.next = nil
		m.entered = m.now
		if err := m.current.Enter(); err != nil {
			return err
		}
	}

	m.now += dt
	if m.current != nil {
		return m.current.Update(dt)
	}
	return nil
}

func name(s State) string {
	if s == nil {
		return "none"
	}
	return s.Name()
}
