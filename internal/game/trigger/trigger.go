// Package trigger implements areas that react to actors entering and leaving
// them: ladders, damage zones, enemy turn markers and pickups.
package trigger

import (
	"github.com/Faultbox/platformer-core/internal/engine/scene"
	"github.com/Faultbox/platformer-core/internal/game/actor"
	"github.com/Faultbox/platformer-core/internal/game/entity"
)

// EnterListener is implemented by behaviors that react to an actor entering.
type EnterListener interface {
	OnEnter(t *Trigger, a *actor.Actor)
}

// LeaveListener is implemented by behaviors that react to an actor leaving.
type LeaveListener interface {
	OnLeave(t *Trigger, a *actor.Actor)
}

// Trigger is an area with behaviors. It keeps the actors inside in the
// order they entered.
type Trigger struct {
	Body   *scene.Body
	Handle entity.Handle

	behaviors []any
	occupants []*actor.Actor
	removed   bool
}

// New creates a trigger over body. Triggers never take part in collisions.
func New(body *scene.Body) *Trigger {
	body.SetCollisionActive(false, false)
	return &Trigger{Body: body}
}

// AddBehavior attaches a behavior. It participates through whichever of
// EnterListener and LeaveListener it implements.
func (t *Trigger) AddBehavior(b any) {
	t.behaviors = append(t.behaviors, b)
}

// Behaviors returns the attached behaviors.
func (t *Trigger) Behaviors() []any {
	return t.behaviors
}

// IsLadder reports whether the trigger carries a Ladder behavior.
func (t *Trigger) IsLadder() bool {
	for _, b := range t.behaviors {
		switch b.(type) {
		case Ladder, *Ladder:
			return true
		}
	}
	return false
}

// Contains reports whether a is inside.
func (t *Trigger) Contains(a *actor.Actor) bool {
	for _, o := range t.occupants {
		if o == a {
			return true
		}
	}
	return false
}

// Occupants returns the actors inside, in entry order.
func (t *Trigger) Occupants() []*actor.Actor {
	return append([]*actor.Actor(nil), t.occupants...)
}

// Removed reports whether a behavior asked for the trigger to go away.
func (t *Trigger) Removed() bool {
	return t.removed
}

// MarkRemoved flags the trigger for removal by its owner. It stops reacting immediately.
func (t *Trigger) MarkRemoved() {
	t.removed = true
}

// Restore brings a removed trigger back, empty and visible.
func (t *Trigger) Restore() {
	t.removed = false
	t.occupants = nil
	t.Body.Visible = true
}

// Update diffs the actors currently overlapping the trigger against the
// known occupants. Departures are reported before arrivals.
func (t *Trigger) Update(inside []*actor.Actor) {
	if t.removed {
		return
	}

	for _, o := range t.Occupants() {
		if !containsActor(inside, o) {
			t.Leave(o)
		}
	}
	for _, a := range inside {
		if t.removed {
			return
		}
		if !t.Contains(a) {
			t.Enter(a)
		}
	}
}

// Enter adds a to the occupants and notifies behaviors.
func (t *Trigger) Enter(a *actor.Actor) {
	t.occupants = append(t.occupants, a)
	for _, b := range t.behaviors {
		if l, ok := b.(EnterListener); ok {
			l.OnEnter(t, a)
		}
	}
}

// Leave removes a from the occupants and notifies behaviors.
func (t *Trigger) Leave(a *actor.Actor) {
	for i, o := range t.occupants {
		if o == a {
			t.occupants = append(t.occupants[:i], t.occupants[i+1:]...)
			break
		}
	}
	for _, b := range t.behaviors {
		if l, ok := b.(LeaveListener); ok {
			l.OnLeave(t, a)
		}
	}
}

// Clear makes every occupant leave.
func (t *Trigger) Clear() {
	for _, o := range t.Occupants() {
		t.Leave(o)
	}
}

func containsActor(list []*actor.Actor, a *actor.Actor) bool {
	for _, o := range list {
		if o == a {
			return true
		}
	}
	return false
}
