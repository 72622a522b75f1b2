package world

import (
	"math/rand"
	"time"

	"github.com/chewxy/math32"
	"go.uber.org/zap"

	"github.com/Faultbox/platformer-core/internal/engine/scene"
	"github.com/Faultbox/platformer-core/internal/game/platform"
	"github.com/Faultbox/platformer-core/pkg/math"
)

// PlatformFactory adds one spawned platform at pos. falling selects the
// collapsing kind.
type PlatformFactory func(w *World, pos math.Vec2, falling bool) (*platform.Platform, error)

// ScrollerOptions places the platforms the spawner adds. Spawned platforms
// appear at SpawnY with X picked uniformly in [MinX, MaxX].
type ScrollerOptions struct {
	SpawnY     float32
	MinX, MaxX float32
	Spawn      PlatformFactory
}

// scroller raises its platforms at a speed that steps up over time and
// feeds new ones in from below.
type scroller struct {
	opts   ScrollerOptions
	speed  float32
	list   []*platform.Platform
	lowest *platform.Platform

	speedTimer *scene.Timer
	spawnTimer *scene.Timer
}

// StartScroller starts the rising platforms of the level. The speed restarts
// from the session's initial scroll speed; timers stop when the world is cleared.
func (w *World) StartScroller(opts ScrollerOptions) {
	w.StopScroller()
	w.scroll = &scroller{opts: opts, speed: w.cfg.Session.ScrollSpeed}
	w.scheduleSpeedUp()
	w.scheduleSpawn()
	w.log.Info("scroller started",
		zap.Float32("speed", w.scroll.speed),
		zap.Duration("speed_interval", w.cfg.Session.ScrollSpeedInterval))
}

// StopScroller stops speeding up and spawning. Platforms already scrolling
// keep their current speed.
func (w *World) StopScroller() {
	if w.scroll == nil {
		return
	}
	w.scroll.speedTimer.Stop()
	w.scroll.spawnTimer.Stop()
}

// ScrollSpeed returns the rise speed of scrolling platforms, or 0 without a scroller.
func (w *World) ScrollSpeed() float32 {
	if w.scroll == nil {
		return 0
	}
	return w.scroll.speed
}

// Scrolling returns the platforms moved by the scroller, oldest first.
func (w *World) Scrolling() []*platform.Platform {
	if w.scroll == nil {
		return nil
	}
	return w.scroll.list
}

// LowestSafePlatform returns the last spawned platform that does not fall.
func (w *World) LowestSafePlatform() (*platform.Platform, bool) {
	if w.scroll == nil || w.scroll.lowest == nil || !w.platforms.Valid(w.scroll.lowest.Handle) {
		return nil, false
	}
	return w.scroll.lowest, true
}

// Scroll adds p to the scrolling platforms. It does nothing without a scroller.
func (w *World) Scroll(p *platform.Platform) {
	s := w.scroll
	if s == nil {
		return
	}
	s.list = append(s.list, p)
	p.Body.Velocity.Y = -s.speed
}

// nextScrollSpeed steps speed up by offset, never past max.
func nextScrollSpeed(speed, offset, max float32) float32 {
	return math32.Min(speed+offset, max)
}

// spawnDelay picks the time to the next spawn in [min, max].
func spawnDelay(rng *rand.Rand, min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + time.Duration(rng.Int63n(int64(max-min)+1))
}

// rollFalling picks a falling platform one time in chance+1.
func rollFalling(rng *rand.Rand, chance int) bool {
	return rng.Intn(chance+1) == chance
}

func (w *World) scheduleSpeedUp() {
	interval := w.cfg.Session.ScrollSpeedInterval
	if interval <= 0 {
		return
	}
	w.scroll.speedTimer = w.sched.After(interval, w.speedUp)
}

func (w *World) speedUp() {
	s := w.scroll
	ss := w.cfg.Session
	s.speed = nextScrollSpeed(s.speed, ss.ScrollSpeedOffset, ss.MaxScrollSpeed)
	w.log.Debug("scroll speed", zap.Float32("speed", s.speed))
	w.scheduleSpeedUp()
}

func (w *World) scheduleSpawn() {
	ss := w.cfg.Session
	if w.scroll.opts.Spawn == nil || ss.PlatformSpawnMax <= 0 {
		return
	}
	w.scroll.spawnTimer = w.sched.After(spawnDelay(w.rng, ss.PlatformSpawnMin, ss.PlatformSpawnMax), w.spawnPlatform)
}

func (w *World) spawnPlatform() {
	s := w.scroll
	pos := math.Vec2{
		X: s.opts.MinX + w.rng.Float32()*(s.opts.MaxX-s.opts.MinX),
		Y: s.opts.SpawnY,
	}
	falling := rollFalling(w.rng, w.cfg.Session.FallingPlatformChance)
	p, err := s.opts.Spawn(w, pos, falling)
	if err != nil {
		w.log.Error("spawning platform", zap.Error(err))
	} else {
		w.Scroll(p)
		if !falling {
			s.lowest = p
		}
		w.log.Debug("platform spawned",
			zap.Stringer("handle", p.Handle),
			zap.Bool("falling", falling),
			zap.Float32("x", pos.X))
	}
	w.scheduleSpawn()
}

// updateScroller drops scrolling platforms that were removed or rose past
// the top of the world and drives the rest at the current speed. Platforms
// with collision off are collapsing and keep their own velocity.
func (w *World) updateScroller() {
	s := w.scroll
	if s == nil {
		return
	}
	top := w.boundsMin.Y
	kept := s.list[:0]
	for _, p := range s.list {
		if !w.platforms.Valid(p.Handle) {
			continue
		}
		if min, _ := p.Body.Bounds(); min.Y < top {
			w.RemovePlatform(p)
			continue
		}
		if p.Body.CollisionReceive() {
			p.Body.Velocity.Y = -s.speed
		}
		kept = append(kept, p)
	}
	clear(s.list[len(kept):])
	s.list = kept
}
