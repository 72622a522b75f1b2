// Package camera provides the 2D follow camera the simulation measures spawn
// and sound distances from.
package camera

import (
	"github.com/Faultbox/platformer-core/pkg/math"
)

// FollowCamera trails a target position.
type FollowCamera struct {
	// Center is the point the camera looks at.
	Center math.Vec2

	// Offset is added to the target, e.g. to look ahead.
	Offset math.Vec2

	// Smoothing is the fraction of the remaining distance covered per second.
	// Zero or less snaps to the target.
	Smoothing float32

	// DeadZone is the half size of the box the target can move in without
	// moving the camera.
	DeadZone math.Vec2

	// Constraints
	limited bool
	min     math.Vec2
	max     math.Vec2
}

// NewFollowCamera creates a camera centred on pos that snaps to its target.
func NewFollowCamera(pos math.Vec2) *FollowCamera {
	return &FollowCamera{Center: pos}
}

// Position returns the camera centre.
func (c *FollowCamera) Position() math.Vec2 {
	return c.Center
}

// SetLimits keeps the camera centre inside [min, max].
func (c *FollowCamera) SetLimits(min, max math.Vec2) {
	c.limited = true
	c.min = min
	c.max = max
	c.clamp()
}

// ClearLimits lets the camera move freely.
func (c *FollowCamera) ClearLimits() {
	c.limited = false
}

// Follow moves the camera toward target over dt seconds.
func (c *FollowCamera) Follow(target math.Vec2, dt float32) {
	goal := target.Add(c.Offset)

	// Only move far enough to bring the goal back into the dead zone.
	d := goal.Sub(c.Center)
	d.X = outside(d.X, c.DeadZone.X)
	d.Y = outside(d.Y, c.DeadZone.Y)

	if c.Smoothing > 0 {
		d = d.Scale(math.Clamp(c.Smoothing*dt, 0, 1))
	}
	c.Center = c.Center.Add(d)
	c.clamp()
}

// SnapTo centres the camera on target immediately.
func (c *FollowCamera) SnapTo(target math.Vec2) {
	c.Center = target.Add(c.Offset)
	c.clamp()
}

// Distance returns how far p is from the camera centre.
func (c *FollowCamera) Distance(p math.Vec2) float32 {
	return c.Center.Distance(p)
}

func (c *FollowCamera) clamp() {
	if !c.limited {
		return
	}
	c.Center.X = math.Clamp(c.Center.X, c.min.X, c.max.X)
	c.Center.Y = math.Clamp(c.Center.Y, c.min.Y, c.max.Y)
}

// outside returns how far v lies beyond [-half, half].
func outside(v, half float32) float32 {
	switch {
	case v > half:
		return v - half
	case v < -half:
		return v + half
	}
	return 0
}
