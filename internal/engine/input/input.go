// Package input queues key events for the headless simulation. Events come
// from a script keyed by tick or are pushed directly.
package input

import (
	"sort"
)

// Event types for game use
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventKeyDown
	EventKeyUp
)

// Event represents a processed input event.
type Event struct {
	Type EventType
	Key  string
}

// Step is one scripted input at a tick.
type Step struct {
	Tick    int    `yaml:"tick"`
	Press   string `yaml:"press,omitempty"`
	Release string `yaml:"release,omitempty"`
	Quit    bool   `yaml:"quit,omitempty"`
}

type scheduled struct {
	tick  int
	seq   int
	event Event
}

// Input handles all input processing.
type Input struct {
	tick    int
	seq     int
	pending []scheduled
	events  []Event
}

// New creates a new input handler.
func New() *Input {
	return &Input{
		events: make([]Event, 0, 16),
	}
}

// Push queues an event for the next Update.
func (i *Input) Push(e Event) {
	i.At(i.tick, e)
}

// At queues an event for the given tick.
func (i *Input) At(tick int, e Event) {
	i.seq++
	i.pending = append(i.pending, scheduled{tick: tick, seq: i.seq, event: e})
	sort.SliceStable(i.pending, func(a, b int) bool {
		return i.pending[a].tick < i.pending[b].tick
	})
}

// LoadScript queues every step of a script.
func (i *Input) LoadScript(steps []Step) {
	for _, s := range steps {
		if s.Release != "" {
			i.At(s.Tick, Event{Type: EventKeyUp, Key: s.Release})
		}
		if s.Press != "" {
			i.At(s.Tick, Event{Type: EventKeyDown, Key: s.Press})
		}
		if s.Quit {
			i.At(s.Tick, Event{Type: EventQuit})
		}
	}
}

// Update collects the events due this tick and moves to the next one.
// Returns true if the game should quit.
func (i *Input) Update() bool {
	i.events = i.events[:0] // Clear previous events

	quit := false
	n := 0
	for _, s := range i.pending {
		if s.tick > i.tick {
			break
		}
		i.events = append(i.events, s.event)
		if s.event.Type == EventQuit {
			quit = true
		}
		n++
	}
	i.pending = i.pending[n:]
	i.tick++
	return quit
}

// Tick returns the tick the next Update collects.
func (i *Input) Tick() int {
	return i.tick
}

// Pending returns the number of queued events.
func (i *Input) Pending() int {
	return len(i.pending)
}

// Events returns the events from the last Update.
func (i *Input) Events() []Event {
	return i.events
}

// IsKeyPressed checks if a specific key was pressed this tick.
func (i *Input) IsKeyPressed(key string) bool {
	for _, e := range i.events {
		if e.Type == EventKeyDown && e.Key == key {
			return true
		}
	}
	return false
}
