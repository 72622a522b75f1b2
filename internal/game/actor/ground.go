package actor

import (
	"github.com/Faultbox/platformer-core/internal/game/entity"
	"github.com/Faultbox/platformer-core/internal/game/platform"
	"github.com/Faultbox/platformer-core/pkg/math"
)

// contact is a narrow-phase hit against one platform.
type contact struct {
	point  math.Vec2
	normal math.Vec2
}

// facing returns 1 when the actor faces right and -1 when it faces left.
func (a *Actor) facing() float32 {
	if a.Body.FlipX {
		return -1
	}
	return 1
}

// footCenterX returns the X of the middle of the foot span. Asymmetric masks
// shift it toward the facing side.
func (a *Actor) footCenterX() float32 {
	return a.Body.Position.X + a.facing()*(math.Abs(a.maskMax.X)-math.Abs(a.maskMin.X))/2
}

// FootRect returns the broad-phase rectangle searched for ground. It covers the
// band below the feet, stretched by this tick's fall distance, and reaches a
// little higher and further ahead while grounded so that slopes are tracked.
func (a *Actor) FootRect() (min, max math.Vec2) {
	gct := a.Config.GroundCheckThreshold
	tick := a.tick()
	vel := a.Body.Velocity
	w := a.maskMax.X - a.maskMin.X

	min = math.Vec2{X: a.footCenterX() - w/2, Y: a.Feet()}
	size := math.Vec2{X: w, Y: 4*gct + math.Abs(vel.Y*tick)}

	if a.OnGround() {
		vx := math.Abs(vel.X) * tick
		if a.Body.FlipX {
			min.X -= vx
		}
		size.X += vx

		min.Y -= gct
		size.Y += gct
	}
	return min, min.Add(size)
}

// testGroundPoly intersects the foot span with the surface images of p and
// returns the highest contact.
func (a *Actor) testGroundPoly(p *platform.Platform) (contact, bool) {
	images := p.SurfaceImages()
	if len(images) == 0 {
		return contact{}, false
	}

	w := a.maskMax.X - a.maskMin.X
	cx := a.footCenterX()
	srcMinX := cx - w/2
	srcMaxX := cx + w/2
	srcMaxY := a.Feet() - 4*a.Config.GroundCheckThreshold

	dstMin := images[0].A.X
	dstMax := images[len(images)-1].B.X

	hits := make([]contact, 0, len(images))
	for _, img := range images {
		pA, pB, n := img.A, img.B, img.Normal

		// Too far above the feet
		if pA.Y < srcMaxY && pB.Y < srcMaxY {
			continue
		}

		if !math.AxisOverlap(srcMinX, pA.X, pB.X) && !math.AxisOverlap(srcMaxX, pA.X, pB.X) &&
			!math.AxisOverlap(pA.X, srcMinX, srcMaxX) && !math.AxisOverlap(pB.X, srcMinX, srcMaxX) {
			continue
		}

		dX := pB.X - pA.X
		dY := pB.Y - pA.Y
		if dX == 0 {
			continue
		}

		pMin := pA.X
		if srcMinX > pMin {
			pMin = srcMinX
		}
		pMax := pB.X
		if srcMaxX < pMax {
			pMax = srcMaxX
		}

		var c math.Vec2
		if n.X > 0 {
			c = math.Vec2{X: pMin, Y: pA.Y + (pMin-pA.X)*(dY/dX)}
		} else {
			c = math.Vec2{X: pMax, Y: pA.Y + (pMax-pA.X)*(dY/dX)}
		}

		// Past the end of a sloped surface the contact is treated as flat.
		if (n.X > 0 && c.X <= dstMin) || (n.X < 0 && c.X >= dstMax) {
			n = math.Up
		}

		hits = append(hits, contact{point: c, normal: n})
	}

	switch len(hits) {
	case 0:
		return contact{}, false
	case 1:
		return hits[0], true
	}

	best := 0
	for i := range hits {
		j := (i + 1) % len(hits)

		// Segments meeting at a peak or a valley are walked over flat.
		if hits[i].normal.X*hits[j].normal.X <= 0 {
			hits[i].normal = math.Up
			hits[j].normal = math.Up
		}

		if hits[i].point.Y < hits[best].point.Y {
			best = i
		}
	}
	return hits[best], true
}

// acceptGround applies the slope, direction and one-way filters to a contact.
func (a *Actor) acceptGround(p *platform.Platform, c contact, current *platform.Platform) bool {
	// Too steep: a wall, not ground.
	if c.normal.Y > a.Config.MaxGroundNormalY {
		return false
	}

	// Ignore platforms the actor is moving away from, unless it already stands on it.
	rel := a.Body.Velocity.Sub(p.Body.Velocity).Normalize()
	if current != p && rel.Dot(c.normal) > 0 {
		return false
	}

	if p.OneWay {
		tick := a.tick()
		var velMod float32
		if current != nil {
			velMod = math.Abs(a.Body.Velocity.X) * tick
		} else {
			velMod = math.Abs(a.Body.Velocity.Y) * tick
		}
		if a.Feet()-2*a.Config.GroundCheckThreshold-velMod > c.point.Y {
			return false
		}
	}
	return true
}

// ResolveGround finds the platform the actor stands on this tick, notifies
// platforms of landings and departures, and computes the correction velocity
// that settles the actor onto the contact height.
func (a *Actor) ResolveGround() {
	if !a.alive {
		return
	}

	current, hadGround := a.Ground()
	if !hadGround {
		current = nil
	}

	var best *platform.Platform
	var bestContact contact

	min, max := a.FootRect()
	for _, p := range a.world.PlatformsIn(min, max, a) {
		if !p.Body.CollisionReceive() {
			continue
		}
		if p.OneWay && (a.climbing || (!a.jumpDown.IsNil() && a.jumpDown == p.Handle)) {
			continue
		}

		c, ok := a.testGroundPoly(p)
		if !ok || !a.acceptGround(p, c, current) {
			continue
		}

		if best == nil || c.point.Y < bestContact.point.Y {
			best = p
			bestContact = c
		}
	}

	if hadGround && current != best {
		current.ActorLeft(a)
	}

	if best == nil {
		a.previouslyOnGround = hadGround
		a.previousGround = a.ground
		a.ground = entity.Nil
		return
	}

	newGround := best != current
	if newGround {
		a.climbing = false
		a.lastLanded = best.Handle
		a.ground = best.Handle
		a.launched = false
		best.ActorLanded(a)
	}

	if !hadGround {
		a.gliding = false
		a.canGlide = a.Config.AllowGlide
		a.glideTime = 0
		a.jumpDown = entity.Nil
		a.Landed.Invoke(a)
	}

	// A landing behavior threw the actor back into the air.
	if a.launched {
		a.launched = false
		return
	}

	if newGround || bestContact.normal != a.groundNormal {
		rest := math.Vec2{X: a.Body.Position.X, Y: bestContact.point.Y - a.maskMax.Y}
		a.correction = rest.Sub(a.Body.Position).Scale(1 / a.tick())
	}

	a.ground = best.Handle
	a.groundNormal = bestContact.normal
	a.groundTime = a.world.Now()
}
