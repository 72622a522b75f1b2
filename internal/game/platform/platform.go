// Package platform implements surfaces actors stand on and the behaviors that
// react to actors landing on and leaving them.
package platform

import (
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/platformer-core/internal/engine/scene"
	"github.com/Faultbox/platformer-core/internal/game/entity"
	"github.com/Faultbox/platformer-core/internal/logger"
	"github.com/Faultbox/platformer-core/pkg/math"
)

// Rider is the part of an actor that platforms and their behaviors act on.
type Rider interface {
	MoveSpeed() math.Vec2
	SetInheritedVelocity(v math.Vec2)
	// Launch throws the rider off its ground with velocity v.
	Launch(v math.Vec2)
	SinceJump() time.Duration
	BounceJumpTimeOut() time.Duration
	AnimationState() string
	SetAnimationState(name string) bool
}

// LandListener is implemented by behaviors that react to a rider landing.
type LandListener interface {
	ActorLanded(p *Platform, r Rider)
}

// LeaveListener is implemented by behaviors that react to a rider leaving.
type LeaveListener interface {
	ActorLeft(p *Platform, r Rider)
}

// Updater is implemented by behaviors that run every tick.
type Updater interface {
	Update(p *Platform)
}

// Canceler is implemented by behaviors holding timers that must stop when the
// platform is removed.
type Canceler interface {
	Cancel()
}

// Bouncer is implemented by behaviors that can launch a rider on demand.
type Bouncer interface {
	Bounce(p *Platform, r Rider, bounceJump bool)
}

// Options configures a new platform.
type Options struct {
	OneWay   bool
	Friction float32
	Force    float32
}

// Platform is a static or kinematic surface.
type Platform struct {
	Body   *scene.Body
	Handle entity.Handle

	OneWay   bool
	Friction float32
	Force    float32

	initialPosition math.Vec2
	initialRotation float32
	images          []SurfaceImage
	rotationStale   bool

	holding   []Rider
	behaviors []any
}

// New creates a platform and derives its surface images from the body's current pose.
func New(body *scene.Body, opts Options) *Platform {
	return &Platform{
		Body:            body,
		OneWay:          opts.OneWay,
		Friction:        opts.Friction,
		Force:           opts.Force,
		initialPosition: body.Position,
		initialRotation: body.Rotation,
		images:          BuildSurfaceImages(body),
	}
}

// AddBehavior attaches a behavior. It participates through whichever of
// LandListener, LeaveListener, Updater and Bouncer it implements.
func (p *Platform) AddBehavior(b any) {
	p.behaviors = append(p.behaviors, b)
}

// Bouncer returns the first behavior able to bounce riders, if any.
func (p *Platform) Bouncer() (Bouncer, bool) {
	for _, b := range p.behaviors {
		if bb, ok := b.(Bouncer); ok {
			return bb, true
		}
	}
	return nil, false
}

// InitialPosition returns the position the surface images were built at.
func (p *Platform) InitialPosition() math.Vec2 {
	return p.initialPosition
}

// SurfaceImages returns the surface images translated to the current position.
// Rotation after creation is not supported: the creation-time normals are kept
// and the platform is flagged through RotationStale.
func (p *Platform) SurfaceImages() []SurfaceImage {
	if p.Body.Rotation != p.initialRotation && !p.rotationStale {
		p.rotationStale = true
		logger.Named("platform").Warn("rotating platform unsupported, surface normals are stale",
			zap.Stringer("platform", p.Handle),
			zap.Float32("initial_rotation", p.initialRotation),
			zap.Float32("rotation", p.Body.Rotation))
	}

	d := p.Body.Position.Sub(p.initialPosition)
	out := make([]SurfaceImage, len(p.images))
	for i, img := range p.images {
		out[i] = img.Offset(d)
	}
	return out
}

// RotationStale reports whether the platform has rotated since creation.
func (p *Platform) RotationStale() bool {
	return p.rotationStale
}

// ActorLanded records r as standing on the platform and notifies behaviors.
func (p *Platform) ActorLanded(r Rider) {
	if !p.Holds(r) {
		p.holding = append(p.holding, r)
	}
	for _, b := range p.behaviors {
		if l, ok := b.(LandListener); ok {
			l.ActorLanded(p, r)
		}
	}
}

// ActorLeft removes r from the platform and notifies behaviors.
func (p *Platform) ActorLeft(r Rider) {
	for i, h := range p.holding {
		if h == r {
			p.holding = append(p.holding[:i], p.holding[i+1:]...)
			break
		}
	}
	for _, b := range p.behaviors {
		if l, ok := b.(LeaveListener); ok {
			l.ActorLeft(p, r)
		}
	}
}

// Holds reports whether r is standing on the platform.
func (p *Platform) Holds(r Rider) bool {
	for _, h := range p.holding {
		if h == r {
			return true
		}
	}
	return false
}

// Holding returns the riders currently standing on the platform.
func (p *Platform) Holding() []Rider {
	return append([]Rider(nil), p.holding...)
}

// OnWorldLimit is called when the platform is pushed back at the world edge.
// Riders keep moving the way they were carried.
func (p *Platform) OnWorldLimit() {
	for _, r := range p.holding {
		r.SetInheritedVelocity(p.Body.Velocity.Neg())
	}
}

// Close cancels the pending timers of every behavior.
func (p *Platform) Close() {
	for _, b := range p.behaviors {
		if c, ok := b.(Canceler); ok {
			c.Cancel()
		}
	}
}

// Update runs per-tick behaviors.
func (p *Platform) Update() {
	for _, b := range p.behaviors {
		if u, ok := b.(Updater); ok {
			u.Update(p)
		}
	}
}
