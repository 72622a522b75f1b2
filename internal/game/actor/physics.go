package actor

import (
	"go.uber.org/zap"

	"github.com/Faultbox/platformer-core/pkg/math"
)

// PhysicsState is the top-level movement state of an actor.
type PhysicsState uint8

const (
	OnGround PhysicsState = iota
	InAir
	OnLadder
	IsDead
)

var physicsStateNames = [...]string{
	OnGround: "onGround",
	InAir:    "inAir",
	OnLadder: "onLadder",
	IsDead:   "isDead",
}

func (s PhysicsState) String() string {
	if int(s) < len(physicsStateNames) {
		return physicsStateNames[s]
	}
	return "unknown"
}

// physicsState integrates the velocity of an actor for one tick.
type physicsState interface {
	integrate(a *Actor)
}

var physicsStates = [...]physicsState{
	OnGround: groundPhysics{},
	InAir:    airPhysics{},
	OnLadder: ladderPhysics{},
	IsDead:   deadPhysics{},
}

// UpdatePhysics attaches to ladders, picks the physics state and integrates
// the actor's velocity. The body position is advanced by the world afterwards.
func (a *Actor) UpdatePhysics() {
	a.updateClimbing()
	a.state = a.nextState()
	physicsStates[a.state].integrate(a)

	// Correction is one-shot.
	a.correction = math.Vec2{}
}

// nextState is evaluated first match wins.
func (a *Actor) nextState() PhysicsState {
	if !a.alive {
		return IsDead
	}

	switch a.state {
	case OnGround, InAir:
		if a.climbing {
			return OnLadder
		}
		if a.OnGround() {
			return OnGround
		}
		return InAir
	case OnLadder:
		if a.climbing {
			return OnLadder
		}
		if a.OnGround() {
			return OnGround
		}
		return InAir
	}

	// Back from the dead.
	if a.OnGround() {
		return OnGround
	}
	return InAir
}

// updateClimbing attaches the actor to the ladder it overlaps when it is
// centred on it, pushes toward it and is past the reattach timeout.
func (a *Actor) updateClimbing() {
	ladder, ok := a.world.Ladder(a.ladder)
	if a.climbing && !ok {
		a.climbing = false
	}
	if !ok || a.climbing {
		return
	}

	pos := a.Body.Position
	actorMin := pos.Y + a.maskMin.Y
	actorMax := pos.Y + a.maskMax.Y
	ladderTop := ladder.Position.Y - ladder.Size.Y/2
	dir := a.Direction()

	ground, onGround := a.Ground()
	wantsUp := dir.Y < 0 && actorMax > ladderTop
	wantsDown := dir.Y > 0 && (!onGround || ground.OneWay)

	if math.Abs(ladder.Position.X-pos.X) >= a.Config.LadderAttachThreshold || !(wantsUp || wantsDown) ||
		a.world.Now()-a.climbDetachTime <= a.Config.ClimbTimeOut {
		return
	}

	if actorMin < ladderTop {
		a.Body.Position.Y = ladderTop - a.maskMin.Y
	}
	a.climbing = true
	a.inherited = math.Vec2{}
	a.Body.Position.X = ladder.Position.X
}

// accelerate moves the horizontal input speed toward the controller direction.
func (a *Actor) accelerate(dirX, accel, decel float32) {
	if dirX != 0 {
		a.moveSpeed.X += dirX * accel
	} else {
		dir := float32(-1)
		if a.moveSpeed.X > 0 {
			dir = 1
		}
		if math.Abs(a.moveSpeed.X) > math.Abs(decel) {
			a.moveSpeed.X -= dir * decel
		} else {
			a.moveSpeed.X = 0
		}
	}
	a.moveSpeed.X = math.Clamp(a.moveSpeed.X, -a.Config.MaxMoveSpeed, a.Config.MaxMoveSpeed)
}

type groundPhysics struct{}

func (groundPhysics) integrate(a *Actor) {
	ground, ok := a.Ground()
	if !ok {
		return
	}
	cfg := a.Config
	friction := ground.Friction

	accel := cfg.GroundAccel * math.Pow(friction, 1.5)
	decel := cfg.GroundDecel * math.Pow(friction, 1.5)

	// Blend the inherited velocity toward the ground velocity.
	gv := ground.Body.Velocity
	if a.inherited != gv {
		groundFriction := friction * friction
		dirMod := float32(-1)
		if gv.X > a.inherited.X {
			dirMod = 1
		}

		if a.inherited.X == 0 {
			a.inherited.X = gv.X
		} else {
			a.inherited.X += decel * dirMod * groundFriction
		}
		a.inherited.Y = gv.Y

		if math.Abs(gv.X-a.inherited.X) < cfg.GroundAccel*friction {
			a.inherited.X = gv.X
		}
	}

	a.accelerate(a.Direction().X, accel, decel)

	external := (a.inherited.X - gv.X) + ground.Force

	// Move along the surface tangent.
	n := a.groundNormal
	tangent := math.Vec2{X: -n.Y, Y: n.X}
	var v math.Vec2
	if n.Y > 0 {
		v = tangent.Scale(-a.moveSpeed.X + external)
	} else {
		v = tangent.Scale(a.moveSpeed.X + external)
	}

	a.Body.Velocity = v.Add(gv).Add(a.PopCorrectionVelocity())
}

type airPhysics struct{}

func (airPhysics) integrate(a *Actor) {
	cfg := a.Config
	accel := cfg.AirAccel
	decel := cfg.AirDecel

	// Inherited velocity fades, twice as fast while gliding.
	if !a.inherited.IsZero() {
		dirMod := float32(-1)
		if a.inherited.X > 0 {
			dirMod = 1
		}
		if a.gliding {
			dirMod *= 2
		}
		a.inherited.X -= decel * dirMod
		a.inherited.Y = 0

		if math.Abs(a.inherited.X) < decel {
			a.inherited.X = 0
		}
	}

	a.accelerate(a.Direction().X, accel, decel)

	v := math.Vec2{X: a.moveSpeed.X + a.inherited.X, Y: a.Body.Velocity.Y}
	if !a.DisableGravity {
		v.Y += cfg.Gravity
	}

	jump := a.jumpHeld()
	if a.gliding && !jump {
		a.gliding = false
	}

	if cfg.AllowGlide && a.canGlide && jump && v.Y > 0 {
		now := a.world.Now()
		if !a.gliding {
			a.lastGlideTime = now
		}
		a.glideTime += now - a.lastGlideTime
		a.lastGlideTime = now

		a.gliding = true
		v.Y = math.Clamp(v.Y, 0, cfg.GlideMaxFallSpeed)
	}

	if a.gliding && a.glideTime >= cfg.GlideTimeOut {
		a.gliding = false
		a.canGlide = false
		if a.Controller != nil {
			a.Controller.ReleaseJump()
		}
	}

	a.Body.Velocity = v
}

type ladderPhysics struct{}

func (ladderPhysics) integrate(a *Actor) {
	ladder, ok := a.world.Ladder(a.ladder)
	if !ok {
		return
	}
	cfg := a.Config

	a.moveSpeed = math.Vec2{}
	dir := a.Direction()
	switch {
	case dir.Y > 0:
		a.moveSpeed.Y = cfg.ClimbDownSpeed
	case dir.Y < 0:
		a.leaveGround()
		a.moveSpeed.Y = -cfg.ClimbUpSpeed
	}

	// Stop at the top of the ladder.
	top := a.Body.Position.Y + a.maskMin.Y + a.moveSpeed.Y*a.tick()
	ladderTop := ladder.Position.Y - ladder.Size.Y/2
	if top < ladderTop {
		a.moveSpeed.Y = 0
	}

	a.Body.Velocity = ladder.Velocity.Add(math.Vec2{Y: a.moveSpeed.Y})
}

type deadPhysics struct{}

func (deadPhysics) integrate(a *Actor) {
	if a.spawning {
		a.Body.Velocity = math.Vec2{}
		return
	}

	if !a.respawnTimer.Pending() {
		if a.lives > 0 {
			a.respawnTimer = a.world.After(a.Config.SpawnTimeOut, a.respawn)
		} else if !a.gameOverSent {
			a.gameOverSent = true
			a.log.Info("game over", zap.Stringer("actor", a.Handle))
			a.world.GameOver(a)
			a.GameOver.Invoke(a)
		}
	}

	v := a.Body.Velocity
	v.X = 0
	if !a.DisableGravity {
		v.Y += a.Config.Gravity
	}
	a.Body.Velocity = v
}
