package trigger

import (
	"go.uber.org/zap"

	"github.com/Faultbox/platformer-core/internal/engine/audio"
	"github.com/Faultbox/platformer-core/internal/game/actor"
	"github.com/Faultbox/platformer-core/internal/logger"
)

// Confirmer is a pickup effect. It reports whether the pickup was used up.
type Confirmer interface {
	ConfirmPickup(t *Trigger, a *actor.Actor, inventoryItem bool) bool
}

// Collector is told when a pickup goes into an inventory.
type Collector interface {
	Collected(t *Trigger)
}

// Sounds plays one-shot sounds.
type Sounds interface {
	Play(name string, volume float32) *audio.Voice
}

// Pickup is an item a player actor collects by walking into it.
type Pickup struct {
	// AddToInventory keeps the item in the actor's inventory.
	AddToInventory bool

	collector Collector
}

// NewPickup creates a pickup. collector may be nil.
func NewPickup(addToInventory bool, collector Collector) *Pickup {
	return &Pickup{AddToInventory: addToInventory, collector: collector}
}

func (p *Pickup) OnEnter(t *Trigger, a *actor.Actor) {
	if _, ok := a.Controller.(*actor.PlayerController); !ok {
		return
	}

	if p.AddToInventory {
		if a.Inventory == nil || !a.Inventory.Add(t.Handle.ID()) {
			return
		}
		t.Body.Visible = false
		if p.collector != nil {
			p.collector.Collected(t)
		}
	}

	confirmed := false
	for _, b := range t.behaviors {
		if c, ok := b.(Confirmer); ok && c.ConfirmPickup(t, a, p.AddToInventory) {
			confirmed = true
		}
	}

	if confirmed || p.AddToInventory {
		logger.Named("trigger").Debug("picked up",
			zap.Stringer("pickup", t.Handle),
			zap.Stringer("actor", a.Handle),
			zap.Bool("inventory", p.AddToInventory))
		t.MarkRemoved()
	}
}

// HealPickup restores health.
type HealPickup struct {
	Amount float32
	Sound  string
	Sounds Sounds
}

func (h *HealPickup) ConfirmPickup(t *Trigger, a *actor.Actor, inventoryItem bool) bool {
	a.HealDamage(h.Amount)
	playOnce(h.Sounds, h.Sound)
	return true
}

// CheckpointSaver stores the state a lost life returns to.
type CheckpointSaver interface {
	SaveCheckpoint()
}

// CheckpointPickup moves the actor's respawn position to the pickup and
// saves a checkpoint.
type CheckpointPickup struct {
	Saver  CheckpointSaver
	Sound  string
	Sounds Sounds
}

func (c *CheckpointPickup) ConfirmPickup(t *Trigger, a *actor.Actor, inventoryItem bool) bool {
	a.RespawnPosition = t.Body.Position
	if c.Saver != nil {
		c.Saver.SaveCheckpoint()
	}
	playOnce(c.Sounds, c.Sound)
	return true
}

func playOnce(s Sounds, name string) {
	if s == nil || name == "" {
		return
	}
	s.Play(name, 1)
}
