package spawn

import (
	"go.uber.org/zap"

	"github.com/Faultbox/platformer-core/internal/game/actor"
	"github.com/Faultbox/platformer-core/internal/game/entity"
	"github.com/Faultbox/platformer-core/internal/logger"
)

// Checkpoint is a saved spawn and inventory state.
type Checkpoint struct {
	records     map[*Point]int
	inventories map[*actor.Actor][]entity.ID
}

// NewCheckpoint creates an empty checkpoint. Loading it resets every
// auto-despawning point to zero.
func NewCheckpoint() *Checkpoint {
	return &Checkpoint{
		records:     make(map[*Point]int),
		inventories: make(map[*actor.Actor][]entity.ID),
	}
}

// Save records each point's finished spawns and each actor's inventory.
func (c *Checkpoint) Save(points []*Point, actors []*actor.Actor) {
	for _, p := range points {
		c.records[p] = p.Record()
	}
	for _, a := range actors {
		if a.Inventory != nil {
			c.inventories[a] = a.Inventory.Snapshot()
		}
	}
	logger.Named("spawn").Debug("checkpoint saved", zap.Int("points", len(points)), zap.Int("actors", len(actors)))
}

// Load despawns everything auto-despawning points produced and lets them
// spawn again from the saved count. Inventories go back to their saved items;
// the items picked up since are returned.
func (c *Checkpoint) Load(points []*Point, actors []*actor.Actor) []entity.ID {
	for _, p := range points {
		if !p.AutoDespawn {
			continue
		}
		p.DespawnAll(c.records[p])
	}

	var dropped []entity.ID
	for _, a := range actors {
		if a.Inventory == nil {
			continue
		}
		dropped = append(dropped, a.Inventory.Restore(c.inventories[a])...)
	}
	logger.Named("spawn").Debug("checkpoint loaded", zap.Int("dropped_items", len(dropped)))
	return dropped
}
