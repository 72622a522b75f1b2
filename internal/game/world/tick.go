package world

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/platformer-core/internal/engine/scene"
	"github.com/Faultbox/platformer-core/internal/game/actor"
	"github.com/Faultbox/platformer-core/internal/game/entity"
	"github.com/Faultbox/platformer-core/internal/game/platform"
	"github.com/Faultbox/platformer-core/internal/game/trigger"
	"github.com/Faultbox/platformer-core/pkg/math"
)

// stompCos is the cosine of the widest angle from straight down at which
// landing on an enemy counts as a stomp.
var stompCos = math32.Cos(40 * math32.Pi / 180)

// Tick advances the world by one fixed step.
func (w *World) Tick() error {
	dt := w.cfg.Simulation.Tick
	secs := w.TickSeconds()

	w.sched.Advance(dt)

	w.platforms.Each(func(_ entity.Handle, p *platform.Platform) { p.Update() })

	// Ground, physics, then animation: each actor sees the ground of this
	// tick and its animation sees the physics of this tick.
	w.actors.Each(func(_ entity.Handle, c *Character) {
		c.Actor.ResolveGround()
		c.Actor.UpdatePhysics()
		c.Anim.Update()
	})

	w.platforms.Each(func(_ entity.Handle, p *platform.Platform) { p.Body.Integrate(secs) })
	w.updateScroller()
	w.actors.Each(func(_ entity.Handle, c *Character) {
		c.Actor.Body.Integrate(secs)
		c.Sprite.Update(dt)
	})
	for _, sp := range w.platformSprites {
		sp.Update(dt)
	}

	w.space.SyncAll()
	w.resolveWalls()
	w.resolveContacts()
	w.space.SyncAll()

	w.updateTriggers()

	if w.player != nil {
		w.camera.Follow(w.player.Actor.Body.Position, secs)
	}
	for _, p := range w.points {
		p.Update(w.camera.Position())
	}

	w.applyWorldLimits()
	w.flushRemovals()
	w.ticks++

	return w.states.Update(dt)
}

// resolveWalls pushes actors out of the sides and undersides of solid box
// platforms. Tops are left to ground detection.
func (w *World) resolveWalls() {
	w.actors.Each(func(_ entity.Handle, c *Character) {
		a := c.Actor
		if !a.Alive() || !a.Body.CollisionSend() {
			return
		}
		min, max := a.Body.Bounds()
		for _, p := range w.PlatformsIn(min, max, a) {
			if !isWall(p) || p.Handle == a.GroundHandle() {
				continue
			}
			min, max = a.Body.Bounds()
			w.pushOut(a, min, max, p)
		}
	})
}

func isWall(p *platform.Platform) bool {
	return !p.OneWay && p.Body.CollisionReceive() && p.Body.Rotation == 0 && isBox(p.Body.Poly)
}

func isBox(poly []math.Vec2) bool {
	box := math.BoxPoly()
	if len(poly) != len(box) {
		return false
	}
	for i := range box {
		if poly[i] != box[i] {
			return false
		}
	}
	return true
}

func (w *World) pushOut(a *actor.Actor, min, max math.Vec2, p *platform.Platform) {
	pMin, pMax := p.Body.Bounds()
	if !scene.Overlaps(min, max, pMin, pMax) {
		return
	}

	overlapX := math32.Min(max.X-pMin.X, pMax.X-min.X)
	overlapY := math32.Min(max.Y-pMin.Y, pMax.Y-min.Y)
	center := min.Add(max).Scale(0.5)
	pCenter := pMin.Add(pMax).Scale(0.5)

	if overlapX < overlapY {
		normal := math.Vec2{X: 1}
		if center.X < pCenter.X {
			normal.X = -1
		}
		a.Body.Position.X += normal.X * overlapX
		a.ResolvePlatformCollision(normal)
		return
	}

	if center.Y > pCenter.Y {
		// Head hit the underside.
		a.Body.Position.Y += overlapY
		if a.Body.Velocity.Y < 0 {
			a.Body.Velocity.Y = 0
		}
	}
}

// resolveContacts lets the player stomp enemies and be hurt by them.
func (w *World) resolveContacts() {
	p := w.player
	if p == nil || !p.Actor.Alive() || !p.Actor.Body.CollisionSend() {
		return
	}
	min, max := p.Actor.Body.Bounds()
	for _, o := range w.space.Query(min, max, p.Actor) {
		a, ok := o.(*actor.Actor)
		if !ok || !a.Alive() || !a.Body.CollisionSend() {
			continue
		}
		if e, ok := w.actors.Get(a.Handle); ok {
			w.touch(p, e)
		}
	}
}

func (w *World) touch(p, e *Character) {
	pa, ea := p.Actor, e.Actor
	d := ea.Body.Position.Sub(pa.Body.Position)
	falling := pa.Body.Velocity.Y > ea.Body.Velocity.Y

	if e.Stompable && falling && d.Y > 0 && d.Y >= d.Length()*stompCos {
		ea.Kill(pa)
		pa.Body.Velocity.Y = -pa.Config.JumpForce / 2
		return
	}
	if e.ContactDamage > 0 {
		pa.TakeDamage(e.ContactDamage, ea, true, false)
	}
}

// updateTriggers diffs trigger occupancy against the collidable actors
// overlapping each trigger, then drops triggers that asked to go.
func (w *World) updateTriggers() {
	var gone []*trigger.Trigger
	w.triggers.Each(func(_ entity.Handle, t *trigger.Trigger) {
		min, max := t.Body.Bounds()
		var inside []*actor.Actor
		for _, o := range w.space.Query(min, max, t) {
			if a, ok := o.(*actor.Actor); ok && a.Body.CollisionSend() {
				inside = append(inside, a)
			}
		}
		t.Update(inside)
		if t.Removed() {
			gone = append(gone, t)
		}
	})
	for _, t := range gone {
		w.removeTrigger(t)
	}
}

// applyWorldLimits keeps actors and moving platforms inside the world.
// Moving platforms bounce back; actors below the world die.
func (w *World) applyWorldLimits() {
	lo, hi := w.boundsMin, w.boundsMax

	w.platforms.Each(func(_ entity.Handle, p *platform.Platform) {
		b := p.Body
		if b.Velocity.IsZero() || !b.CollisionReceive() {
			return
		}
		min, max := b.Bounds()
		hit := false
		if d := limit(min.X, max.X, lo.X, hi.X); d != 0 {
			b.Position.X += d
			b.Velocity.X = -b.Velocity.X
			hit = true
		}
		if d := limit(min.Y, max.Y, lo.Y, hi.Y); d != 0 {
			b.Position.Y += d
			b.Velocity.Y = -b.Velocity.Y
			hit = true
		}
		if hit {
			p.OnWorldLimit()
			w.space.Sync(b)
		}
	})

	w.actors.Each(func(_ entity.Handle, c *Character) {
		a := c.Actor
		min, max := a.Body.Bounds()
		if d := limit(min.X, max.X, lo.X, hi.X); d != 0 {
			a.Body.Position.X += d
			normal := math.Vec2{X: math.Sign(d)}
			a.ResolvePlatformCollision(normal)
		}
		if min.Y < lo.Y {
			a.Body.Position.Y += lo.Y - min.Y
			if a.Body.Velocity.Y < 0 {
				a.Body.Velocity.Y = 0
			}
		}
		if min.Y > hi.Y && a.Alive() {
			a.Kill(w)
		}
		w.space.Sync(a.Body)
	})
}

// limit returns how far [min, max] must move to fit in [lo, hi].
func limit(min, max, lo, hi float32) float32 {
	switch {
	case min < lo:
		return lo - min
	case max > hi:
		return hi - max
	}
	return 0
}
