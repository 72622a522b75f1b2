package scene

import (
	"sort"

	"github.com/chewxy/math32"
	"github.com/solarlune/resolv"

	"github.com/Faultbox/platformer-core/pkg/math"
)

// Space is a broad-phase index over bodies, backed by a resolv cell grid.
// Bodies outside the configured bounds are not found by queries.
type Space struct {
	grid    *resolv.Space
	origin  math.Vec2
	proxies map[*Body]*proxy
	seq     uint64
	cursor  *resolv.Object
}

type proxy struct {
	body  *Body
	owner any
	seq   uint64
	obj   *resolv.Object
}

// NewSpace creates a space covering [min, max] with square cells.
func NewSpace(min, max math.Vec2, cellSize int) *Space {
	if cellSize <= 0 {
		cellSize = 16
	}
	w := int(math32.Ceil(max.X-min.X)) + cellSize
	h := int(math32.Ceil(max.Y-min.Y)) + cellSize
	return &Space{
		grid:    resolv.NewSpace(w, h, cellSize, cellSize),
		origin:  min,
		proxies: make(map[*Body]*proxy),
		cursor:  resolv.NewObject(0, 0, 1, 1),
	}
}

// Add registers a body with the owner returned by queries.
func (s *Space) Add(b *Body, owner any) {
	if _, ok := s.proxies[b]; ok {
		return
	}
	s.seq++
	p := &proxy{body: b, owner: owner, seq: s.seq}
	x, y, w, h := s.rect(b.Bounds())
	p.obj = resolv.NewObject(x, y, w, h)
	p.obj.Data = p
	s.proxies[b] = p
	s.grid.Add(p.obj)
}

// Remove unregisters a body.
func (s *Space) Remove(b *Body) {
	p, ok := s.proxies[b]
	if !ok {
		return
	}
	s.grid.Remove(p.obj)
	delete(s.proxies, b)
}

// Contains reports whether the body is registered.
func (s *Space) Contains(b *Body) bool {
	_, ok := s.proxies[b]
	return ok
}

// Sync refreshes the cell placement of a body after it moved or resized.
func (s *Space) Sync(b *Body) {
	p, ok := s.proxies[b]
	if !ok {
		return
	}
	p.obj.X, p.obj.Y, p.obj.W, p.obj.H = s.rect(b.Bounds())
	p.obj.Update()
}

// SyncAll refreshes every registered body.
func (s *Space) SyncAll() {
	for b := range s.proxies {
		s.Sync(b)
	}
}

// Query returns the owners of all bodies overlapping [min, max], skipping exclude.
// Results are in registration order.
func (s *Space) Query(min, max math.Vec2, exclude any) []any {
	s.cursor.X, s.cursor.Y, s.cursor.W, s.cursor.H = s.rect(min, max)
	s.grid.Add(s.cursor)
	col := s.cursor.Check(0, 0)
	s.grid.Remove(s.cursor)
	if col == nil {
		return nil
	}

	hits := make([]*proxy, 0, len(col.Objects))
	seen := make(map[*proxy]struct{}, len(col.Objects))
	for _, o := range col.Objects {
		p, ok := o.Data.(*proxy)
		if !ok || p.owner == exclude {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		bMin, bMax := p.body.Bounds()
		if !Overlaps(min, max, bMin, bMax) {
			continue
		}
		hits = append(hits, p)
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].seq < hits[j].seq })

	owners := make([]any, len(hits))
	for i, p := range hits {
		owners[i] = p.owner
	}
	return owners
}

func (s *Space) rect(min, max math.Vec2) (x, y, w, h float64) {
	w = float64(max.X - min.X)
	h = float64(max.Y - min.Y)
	if w < 1e-3 {
		w = 1e-3
	}
	if h < 1e-3 {
		h = 1e-3
	}
	return float64(min.X - s.origin.X), float64(min.Y - s.origin.Y), w, h
}
