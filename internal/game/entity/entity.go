// Package entity implements generation-checked handles for scene objects.
//
// Actors hold non-owning references to their ground and ladder through handles.
// Once the referenced object is removed its slot generation moves on and every
// outstanding handle resolves to "no object".
package entity

import "fmt"

// Handle is a weak reference into a Registry. The zero Handle is never valid.
type Handle struct {
	index uint32
	gen   uint32
}

// ID is an opaque, packed form of a Handle, used in checkpoint records.
type ID uint64

// Nil is the zero handle.
var Nil Handle

// IsNil reports whether h is the zero handle.
func (h Handle) IsNil() bool {
	return h.gen == 0
}

// ID packs the handle.
func (h Handle) ID() ID {
	return ID(uint64(h.gen)<<32 | uint64(h.index))
}

// FromID unpacks an ID produced by Handle.ID.
func FromID(id ID) Handle {
	return Handle{index: uint32(id), gen: uint32(id >> 32)}
}

func (h Handle) String() string {
	if h.IsNil() {
		return "nil"
	}
	return fmt.Sprintf("%d#%d", h.index, h.gen)
}

type slot[T any] struct {
	value T
	gen   uint32
	live  bool
}

// Registry stores values addressed by generation-checked handles.
type Registry[T any] struct {
	slots []slot[T]
	free  []uint32
	count int
}

// NewRegistry creates an empty registry.
func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{}
}

// Add stores v and returns its handle.
func (r *Registry[T]) Add(v T) Handle {
	var idx uint32
	if n := len(r.free); n > 0 {
		idx = r.free[n-1]
		r.free = r.free[:n-1]
	} else {
		idx = uint32(len(r.slots))
		r.slots = append(r.slots, slot[T]{})
	}
	s := &r.slots[idx]
	s.gen++
	s.value = v
	s.live = true
	r.count++
	return Handle{index: idx, gen: s.gen}
}

// Get resolves a handle. Stale or nil handles return false.
func (r *Registry[T]) Get(h Handle) (T, bool) {
	var zero T
	if !r.Valid(h) {
		return zero, false
	}
	return r.slots[h.index].value, true
}

// Valid reports whether h still refers to a live value.
func (r *Registry[T]) Valid(h Handle) bool {
	if h.IsNil() || int(h.index) >= len(r.slots) {
		return false
	}
	s := r.slots[h.index]
	return s.live && s.gen == h.gen
}

// Remove deletes the value behind h. Removing a stale handle is a no-op.
func (r *Registry[T]) Remove(h Handle) bool {
	if !r.Valid(h) {
		return false
	}
	s := &r.slots[h.index]
	var zero T
	s.value = zero
	s.live = false
	r.free = append(r.free, h.index)
	r.count--
	return true
}

// Each visits live values in slot order. Values added during iteration may be skipped.
func (r *Registry[T]) Each(fn func(Handle, T)) {
	for i := 0; i < len(r.slots); i++ {
		s := r.slots[i]
		if s.live {
			fn(Handle{index: uint32(i), gen: s.gen}, s.value)
		}
	}
}

// Handles returns the handles of all live values in slot order.
func (r *Registry[T]) Handles() []Handle {
	out := make([]Handle, 0, r.count)
	r.Each(func(h Handle, _ T) { out = append(out, h) })
	return out
}

// Count returns the number of live values.
func (r *Registry[T]) Count() int {
	return r.count
}

// Clear removes every value. Outstanding handles become stale.
func (r *Registry[T]) Clear() {
	r.Each(func(h Handle, _ T) { r.Remove(h) })
}
