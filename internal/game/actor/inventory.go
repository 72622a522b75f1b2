package actor

import (
	"go.uber.org/zap"

	"github.com/Faultbox/platformer-core/internal/game/entity"
	"github.com/Faultbox/platformer-core/internal/logger"
)

// Inventory is an ordered list of picked-up items, identified by entity ID.
type Inventory struct {
	MaxItems int
	items    []entity.ID
}

// NewInventory creates an empty inventory holding at most max items.
// A max of zero or less means unlimited.
func NewInventory(max int) *Inventory {
	return &Inventory{MaxItems: max}
}

// Add appends an item. It refuses when the inventory is full.
func (inv *Inventory) Add(id entity.ID) bool {
	if inv.Full() {
		logger.Named("actor").Warn("inventory full", zap.Int("max_items", inv.MaxItems))
		return false
	}
	inv.items = append(inv.items, id)
	return true
}

// Remove deletes the first occurrence of id.
func (inv *Inventory) Remove(id entity.ID) bool {
	for i, it := range inv.items {
		if it == id {
			inv.items = append(inv.items[:i], inv.items[i+1:]...)
			return true
		}
	}
	return false
}

// Contains reports whether id is held.
func (inv *Inventory) Contains(id entity.ID) bool {
	for _, it := range inv.items {
		if it == id {
			return true
		}
	}
	return false
}

// Full reports whether no more items fit.
func (inv *Inventory) Full() bool {
	return inv.MaxItems > 0 && len(inv.items) >= inv.MaxItems
}

// Len returns the number of items.
func (inv *Inventory) Len() int {
	return len(inv.items)
}

// Snapshot returns a copy of the items in order.
func (inv *Inventory) Snapshot() []entity.ID {
	return append([]entity.ID(nil), inv.items...)
}

// Restore replaces the contents with a snapshot and returns the items that
// were dropped because they were not in it.
func (inv *Inventory) Restore(snapshot []entity.ID) []entity.ID {
	keep := make(map[entity.ID]struct{}, len(snapshot))
	for _, id := range snapshot {
		keep[id] = struct{}{}
	}

	var dropped []entity.ID
	for _, id := range inv.items {
		if _, ok := keep[id]; !ok {
			dropped = append(dropped, id)
		}
	}
	inv.items = append(inv.items[:0:0], snapshot...)
	return dropped
}
