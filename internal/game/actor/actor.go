// Package actor implements characters that walk, jump, climb and take damage
// on platform surfaces.
//
// Every tick the world runs the three phases of an actor in a fixed order:
// ResolveGround, UpdatePhysics, then the animation controller.
package actor

import (
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/platformer-core/internal/config"
	"github.com/Faultbox/platformer-core/internal/engine/scene"
	"github.com/Faultbox/platformer-core/internal/game/entity"
	"github.com/Faultbox/platformer-core/internal/game/platform"
	"github.com/Faultbox/platformer-core/internal/logger"
	"github.com/Faultbox/platformer-core/pkg/math"
)

// never is a timestamp far enough in the past that every timeout has elapsed.
const never = time.Duration(-1 << 62)

// World is the part of the simulation an actor queries and schedules against.
type World interface {
	Now() time.Duration
	TickSeconds() float32
	// PlatformsIn returns the platforms whose bounds overlap [min, max],
	// in stable registration order.
	PlatformsIn(min, max math.Vec2, exclude any) []*platform.Platform
	Platform(h entity.Handle) (*platform.Platform, bool)
	Ladder(h entity.Handle) (*scene.Body, bool)
	After(d time.Duration, fn func()) *scene.Timer
	RemoveActor(a *Actor)
	GameOver(a *Actor)
}

// Animator is the animation controller as seen by the actor.
type Animator interface {
	SetAnimationState(name string) bool
	AnimationState() string
}

// DamageEvent describes a hit or a death.
type DamageEvent struct {
	Actor  *Actor
	Amount float32
	Source any
}

// Actor is a player or enemy character.
type Actor struct {
	Body   *scene.Body
	Handle entity.Handle
	Config config.ActorConfig

	Controller Controller
	Animator   Animator
	Inventory  *Inventory

	// RespawnPosition is where the actor comes back after dying.
	RespawnPosition math.Vec2
	// DisableGravity suspends gravity in the air and while dead.
	DisableGravity bool

	Landed    scene.Event[*Actor]
	Damaged   scene.Event[DamageEvent]
	Healed    scene.Event[float32]
	Died      scene.Event[DamageEvent]
	Respawned scene.Event[*Actor]
	HitWall   scene.Event[math.Vec2]
	GameOver  scene.Event[*Actor]

	world World
	log   *zap.Logger

	state PhysicsState

	moveSpeed  math.Vec2
	inherited  math.Vec2
	correction math.Vec2

	maskMin math.Vec2
	maskMax math.Vec2

	health   float32
	lives    int
	alive    bool
	spawning bool

	ground             entity.Handle
	previousGround     entity.Handle
	previouslyOnGround bool
	lastLanded         entity.Handle
	jumpDown           entity.Handle
	ladder             entity.Handle
	groundNormal       math.Vec2
	groundTime         time.Duration
	launched           bool

	climbing        bool
	climbDetachTime time.Duration

	gliding       bool
	canGlide      bool
	glideTime     time.Duration
	lastGlideTime time.Duration

	jumpTime       time.Duration
	lastDamageTime time.Duration
	lastAttackTime time.Duration

	respawnTimer *scene.Timer
	gameOverSent bool

	warnedNoController bool
}

// New creates a live actor in the air at the body's position.
func New(body *scene.Body, cfg config.ActorConfig, w World) *Actor {
	mask := body.Mask()
	a := &Actor{
		Body:            body,
		Config:          cfg,
		Inventory:       NewInventory(cfg.MaxItems),
		RespawnPosition: body.Position,
		world:           w,
		log:             logger.Named("actor"),
		state:           InAir,
		maskMin:         mask.Min,
		maskMax:         mask.Max,
		health:          cfg.MaxHealth,
		lives:           cfg.Lives,
		alive:           true,
		canGlide:        cfg.AllowGlide,
		climbDetachTime: never,
		jumpTime:        never,
		lastDamageTime:  never,
		lastAttackTime:  never,
	}
	a.maskMax.Y += cfg.GroundYBuffer
	body.SetCollisionActive(true, true)
	return a
}

// State returns the current physics state.
func (a *Actor) State() PhysicsState { return a.state }

// Alive reports whether the actor is alive.
func (a *Actor) Alive() bool { return a.alive }

// Spawning reports whether the actor is playing its spawn sequence.
func (a *Actor) Spawning() bool { return a.spawning }

// Health returns the current health.
func (a *Actor) Health() float32 { return a.health }

// Lives returns the remaining lives.
func (a *Actor) Lives() int { return a.lives }

// Climbing reports whether the actor is attached to a ladder.
func (a *Actor) Climbing() bool { return a.climbing }

// Gliding reports whether the actor is gliding.
func (a *Actor) Gliding() bool { return a.gliding }

// MoveSpeed returns the raw input-driven speed.
func (a *Actor) MoveSpeed() math.Vec2 { return a.moveSpeed }

// InheritedVelocity returns the velocity carried over from platforms.
func (a *Actor) InheritedVelocity() math.Vec2 { return a.inherited }

// SetInheritedVelocity replaces the carried velocity.
func (a *Actor) SetInheritedVelocity(v math.Vec2) { a.inherited = v }

// Mask returns the collision extents used for ground checks, including the
// ground buffer below the feet.
func (a *Actor) Mask() (min, max math.Vec2) { return a.maskMin, a.maskMax }

// Feet returns the world Y of the bottom of the ground mask.
func (a *Actor) Feet() float32 { return a.Body.Position.Y + a.maskMax.Y }

// Ground returns the platform the actor stands on.
func (a *Actor) Ground() (*platform.Platform, bool) {
	if a.ground.IsNil() {
		return nil, false
	}
	return a.world.Platform(a.ground)
}

// OnGround reports whether the actor stands on a live platform.
func (a *Actor) OnGround() bool {
	_, ok := a.Ground()
	return ok
}

// GroundHandle returns the handle of the ground platform, or entity.Nil.
func (a *Actor) GroundHandle() entity.Handle {
	if !a.OnGround() {
		return entity.Nil
	}
	return a.ground
}

// PreviousGround returns the ground the actor last left and whether it was
// grounded before the most recent resolve.
func (a *Actor) PreviousGround() (entity.Handle, bool) {
	return a.previousGround, a.previouslyOnGround
}

// GroundNormal returns the normal of the current ground contact.
func (a *Actor) GroundNormal() math.Vec2 { return a.groundNormal }

// GroundTime returns when the actor last touched the ground.
func (a *Actor) GroundTime() time.Duration { return a.groundTime }

// GroundVelocity returns the velocity of the ground platform, zero in the air.
func (a *Actor) GroundVelocity() math.Vec2 {
	if p, ok := a.Ground(); ok {
		return p.Body.Velocity
	}
	return math.Vec2{}
}

// JumpDownPlatform returns the one-way platform the actor is dropping through.
func (a *Actor) JumpDownPlatform() entity.Handle { return a.jumpDown }

// LastLanded returns the last platform the actor landed on.
func (a *Actor) LastLanded() entity.Handle { return a.lastLanded }

// SetLadder records the ladder trigger the actor overlaps.
func (a *Actor) SetLadder(h entity.Handle) { a.ladder = h }

// Ladder returns the ladder trigger the actor overlaps.
func (a *Actor) Ladder() entity.Handle { return a.ladder }

// MarkJump records the time the jump input was pressed.
func (a *Actor) MarkJump() { a.jumpTime = a.world.Now() }

// SinceJump returns the time since the jump input was last pressed.
func (a *Actor) SinceJump() time.Duration { return a.world.Now() - a.jumpTime }

// BounceJumpTimeOut returns the window for trampoline bounce jumps.
func (a *Actor) BounceJumpTimeOut() time.Duration { return a.Config.BounceJumpTimeOut }

// AnimationState returns the current animation state name, or "" without an animator.
func (a *Actor) AnimationState() string {
	if a.Animator == nil {
		return ""
	}
	return a.Animator.AnimationState()
}

// SetAnimationState forces an animation state.
func (a *Actor) SetAnimationState(name string) bool {
	if a.Animator == nil {
		return false
	}
	return a.Animator.SetAnimationState(name)
}

// Direction returns the controller input, zero without a controller.
func (a *Actor) Direction() math.Vec2 {
	if a.Controller == nil {
		if !a.warnedNoController {
			a.warnedNoController = true
			a.log.Warn("actor has no controller", zap.Stringer("actor", a.Handle))
		}
		return math.Vec2{}
	}
	return a.Controller.Direction()
}

func (a *Actor) jumpHeld() bool {
	return a.Controller != nil && a.Controller.JumpHeld()
}

// Launch throws the actor off its ground with velocity v, carrying v as
// inherited velocity.
func (a *Actor) Launch(v math.Vec2) {
	a.inherited = v
	a.Body.Velocity = v
	a.launched = true
	a.leaveGround()
}

// leaveGround releases the current ground and notifies it.
func (a *Actor) leaveGround() {
	p, ok := a.Ground()
	if ok {
		p.ActorLeft(a)
	}
	a.previouslyOnGround = ok
	a.previousGround = a.ground
	a.ground = entity.Nil
}

// PopCorrectionVelocity returns the pending correction velocity and clears it.
func (a *Actor) PopCorrectionVelocity() math.Vec2 {
	c := a.correction
	a.correction = math.Vec2{}
	return c
}

// ResolvePlatformCollision reacts to a collision with a platform side. Steep
// contacts stop horizontal movement.
func (a *Actor) ResolvePlatformCollision(normal math.Vec2) {
	groundSurface := normal.Y < a.Config.MaxGroundNormalY
	if groundSurface || normal.X == 0 {
		return
	}
	a.moveSpeed.X = 0
	a.inherited = math.Vec2{}
	a.HitWall.Invoke(normal)
}

func (a *Actor) tick() float32 {
	return a.world.TickSeconds()
}
