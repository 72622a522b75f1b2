package platform

import (
	"time"

	"github.com/Faultbox/platformer-core/internal/config"
	"github.com/Faultbox/platformer-core/internal/engine/scene"
	"github.com/Faultbox/platformer-core/pkg/math"
)

// Host is what a falling platform needs from the world.
type Host interface {
	After(d time.Duration, fn func()) *scene.Timer
	RemovePlatform(p *Platform)
}

// Sprite plays the collapse and recovery clips.
type Sprite interface {
	Play(name string, frame int)
	AnimationFinished() bool
}

type fallPhase uint8

const (
	fallIdle fallPhase = iota
	fallPending
	fallFalling
	fallHidden
	fallRemoved
)

// FallingPlatform collapses a while after a rider lands, then recovers or disappears.
type FallingPlatform struct {
	Gravity          float32
	FallTimeOut      time.Duration
	RecoverTimeOut   time.Duration
	AutoRecover      bool
	FallAnimation    string
	RecoverAnimation string

	host   Host
	sprite Sprite
	phase  fallPhase
	timer  *scene.Timer
	target *Platform

	recoverPosition math.Vec2
}

// NewFallingPlatform creates the behavior. sprite may be nil.
func NewFallingPlatform(cfg config.FallingPlatformConfig, host Host, sprite Sprite) *FallingPlatform {
	return &FallingPlatform{
		Gravity:        cfg.Gravity,
		FallTimeOut:    cfg.FallTimeOut,
		RecoverTimeOut: cfg.RecoverTimeOut,
		AutoRecover:    cfg.AutoRecover,
		host:           host,
		sprite:         sprite,
	}
}

// Falling reports whether the platform is collapsing.
func (f *FallingPlatform) Falling() bool {
	return f.phase == fallFalling
}

// Hidden reports whether the platform has collapsed and is waiting to recover.
func (f *FallingPlatform) Hidden() bool {
	return f.phase == fallHidden
}

// ActorLanded starts the collapse countdown.
func (f *FallingPlatform) ActorLanded(p *Platform, _ Rider) {
	if f.phase != fallIdle {
		return
	}
	f.phase = fallPending
	f.target = p
	f.recoverPosition = p.Body.Position
	f.timer = f.host.After(f.FallTimeOut, func() { f.startFall(p) })
}

func (f *FallingPlatform) startFall(p *Platform) {
	f.phase = fallFalling
	p.Body.SetCollisionActive(p.Body.CollisionSend(), false)
	if f.sprite != nil && f.FallAnimation != "" {
		f.sprite.Play(f.FallAnimation, 0)
	}
}

// Update accelerates a collapsing platform and hides it once its clip ends.
func (f *FallingPlatform) Update(p *Platform) {
	if f.phase != fallFalling {
		return
	}
	p.Body.Velocity.Y += f.Gravity
	if f.sprite != nil && !f.sprite.AnimationFinished() {
		return
	}

	f.phase = fallHidden
	p.Body.Visible = false
	p.Body.Velocity = math.Vec2{}
	if !f.AutoRecover {
		f.phase = fallRemoved
		f.host.RemovePlatform(p)
		return
	}
	f.timer = f.host.After(f.RecoverTimeOut, func() { f.recover(p) })
}

func (f *FallingPlatform) recover(p *Platform) {
	f.restore(p)
	if f.sprite != nil && f.RecoverAnimation != "" {
		f.sprite.Play(f.RecoverAnimation, 0)
	}
}

// restore puts a collapsed platform back where it was before the landing.
func (f *FallingPlatform) restore(p *Platform) {
	f.phase = fallIdle
	p.Body.Visible = true
	p.Body.SetCollisionActive(true, true)
	p.Body.Velocity = math.Vec2{}
	p.Body.Position = f.recoverPosition
}

// Cancel stops any pending collapse or recovery. A platform caught falling or
// hidden is put back in place; the next landing starts a new countdown.
func (f *FallingPlatform) Cancel() {
	f.timer.Stop()
	switch f.phase {
	case fallPending:
		f.phase = fallIdle
	case fallFalling, fallHidden:
		f.restore(f.target)
	}
}
