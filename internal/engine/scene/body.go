// Package scene is the headless 2D host the platformer core runs against:
// bodies, a broad-phase spatial index, a simulation clock with timed callbacks,
// and multicast events.
package scene

import (
	"github.com/Faultbox/platformer-core/pkg/math"
)

// Body is a simulated scene object.
type Body struct {
	Position math.Vec2
	Velocity math.Vec2
	Size     math.Vec2
	Rotation float32 // degrees
	FlipX    bool
	FlipY    bool

	// Poly is the collision polygon in [-1,1] local space, wrapping.
	Poly []math.Vec2

	Visible bool

	collisionSend    bool
	collisionReceive bool
}

// NewBody creates a visible, collidable body. A nil poly becomes a box.
func NewBody(pos, size math.Vec2, poly []math.Vec2) *Body {
	if len(poly) == 0 {
		poly = math.BoxPoly()
	}
	return &Body{
		Position:         pos,
		Size:             size,
		Poly:             poly,
		Visible:          true,
		collisionSend:    true,
		collisionReceive: true,
	}
}

// SetCollisionActive toggles the send and receive collision channels.
func (b *Body) SetCollisionActive(send, receive bool) {
	b.collisionSend = send
	b.collisionReceive = receive
}

// CollisionSend reports whether the body initiates collisions.
func (b *Body) CollisionSend() bool { return b.collisionSend }

// CollisionReceive reports whether other bodies can collide with this one.
func (b *Body) CollisionReceive() bool { return b.collisionReceive }

// Mask returns the rotated collision mask of the body.
func (b *Body) Mask() math.Mask {
	return math.CollisionMask(b.Poly, b.Rotation, b.Size)
}

// Bounds returns the world-space axis aligned bounding box.
func (b *Body) Bounds() (min, max math.Vec2) {
	m := b.Mask()
	lo, hi := m.Min, m.Max
	if b.FlipX {
		lo.X, hi.X = -m.Max.X, -m.Min.X
	}
	if b.FlipY {
		lo.Y, hi.Y = -m.Max.Y, -m.Min.Y
	}
	return b.Position.Add(lo), b.Position.Add(hi)
}

// Integrate advances the position by the current velocity.
func (b *Body) Integrate(dt float32) {
	b.Position = b.Position.Add(b.Velocity.Scale(dt))
}

// Overlaps reports whether two axis aligned rectangles intersect.
func Overlaps(aMin, aMax, bMin, bMax math.Vec2) bool {
	return aMin.X <= bMax.X && aMax.X >= bMin.X && aMin.Y <= bMax.Y && aMax.Y >= bMin.Y
}
