package entity

import (
	"testing"
)

func TestRegistryAddGet(t *testing.T) {
	r := NewRegistry[string]()
	h := r.Add("platform")
	got, ok := r.Get(h)
	if !ok || got != "platform" {
		t.Errorf("Get() = %q, %v, want platform, true", got, ok)
	}
	if r.Count() != 1 {
		t.Errorf("Count() = %d, want 1", r.Count())
	}
}

func TestRegistryStaleHandle(t *testing.T) {
	r := NewRegistry[int]()
	h := r.Add(1)
	if !r.Remove(h) {
		t.Fatal("Remove() = false, want true")
	}
	if _, ok := r.Get(h); ok {
		t.Error("stale handle resolved after removal")
	}

	// Slot reuse bumps the generation.
	h2 := r.Add(2)
	if h2.index != h.index {
		t.Fatalf("expected slot reuse, got index %d vs %d", h2.index, h.index)
	}
	if r.Valid(h) {
		t.Error("old handle valid after slot reuse")
	}
	if v, ok := r.Get(h2); !ok || v != 2 {
		t.Errorf("Get(h2) = %d, %v, want 2, true", v, ok)
	}
	if r.Remove(h) {
		t.Error("Remove() with stale handle should be a no-op")
	}
}

func TestNilHandle(t *testing.T) {
	r := NewRegistry[int]()
	r.Add(5)
	if r.Valid(Nil) {
		t.Error("Nil handle must never be valid")
	}
	if !Nil.IsNil() {
		t.Error("Nil.IsNil() = false")
	}
	if Nil.String() != "nil" {
		t.Errorf("Nil.String() = %q", Nil.String())
	}
}

func TestIDRoundTrip(t *testing.T) {
	r := NewRegistry[int]()
	r.Add(0)
	h := r.Add(1)
	if FromID(h.ID()) != h {
		t.Errorf("FromID(ID()) = %v, want %v", FromID(h.ID()), h)
	}
}

func TestRegistryEachOrder(t *testing.T) {
	r := NewRegistry[string]()
	a := r.Add("a")
	r.Add("b")
	r.Add("c")
	r.Remove(a)

	var seen []string
	r.Each(func(_ Handle, v string) { seen = append(seen, v) })
	if len(seen) != 2 || seen[0] != "b" || seen[1] != "c" {
		t.Errorf("Each() visited %v, want [b c]", seen)
	}
	if len(r.Handles()) != 2 {
		t.Errorf("Handles() len = %d, want 2", len(r.Handles()))
	}

	r.Clear()
	if r.Count() != 0 {
		t.Errorf("Count() after Clear = %d, want 0", r.Count())
	}
}
