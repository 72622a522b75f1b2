package actor

import (
	"github.com/Faultbox/platformer-core/pkg/math"
)

// JumpUp jumps off the ground or a ladder. Pressing jump right after touching
// a trampoline bounces higher instead.
func (a *Actor) JumpUp() {
	if a.Config.AllowBounceJump {
		if p, ok := a.world.Platform(a.lastLanded); ok {
			if b, ok := p.Bouncer(); ok && a.jumpTime-a.groundTime < a.Config.BounceJumpTimeOut {
				b.Bounce(p, a, true)
			}
		}
	}

	ground, onGround := a.Ground()
	if !onGround && !a.climbing {
		return
	}

	switch {
	case onGround && a.Body.Velocity.X != 0:
		a.SetAnimationState("runJump")
	case onGround:
		a.SetAnimationState("jump")
	default:
		a.SetAnimationState("climbJump")
	}

	if onGround {
		a.moveSpeed.Y = -a.Config.JumpForce
		// Half the surface push carries into the jump.
		a.inherited.X += ground.Force / 2
	} else {
		coef := a.Config.ClimbJumpCoefficient
		a.moveSpeed.Y = -a.Config.JumpForce * coef
		if dir := a.Direction(); dir.X != 0 {
			a.moveSpeed.X = a.Config.MaxMoveSpeed * coef * dir.X
		}
		a.climbDetachTime = a.world.Now()
	}

	a.Body.Velocity = a.moveSpeed
	a.leaveGround()
	a.climbing = false
}

// JumpDown drops through the one-way platform the actor stands on. On solid
// ground it jumps up instead.
func (a *Actor) JumpDown() {
	ground, ok := a.Ground()
	if !ok {
		return
	}
	if !ground.OneWay || !a.Config.AllowJumpDown {
		a.JumpUp()
		return
	}

	if a.Body.Velocity.X != 0 {
		a.SetAnimationState("runFall")
	} else {
		a.SetAnimationState("fall")
	}

	a.jumpDown = ground.Handle
	a.leaveGround()
}

// Attack plays the attack animation, at most once per AttackTimeOut.
func (a *Actor) Attack() bool {
	if !a.alive || a.spawning {
		return false
	}
	if a.world.Now()-a.lastAttackTime < a.Config.AttackTimeOut {
		return false
	}
	a.lastAttackTime = a.world.Now()
	return a.SetAnimationState("action")
}

// Stop zeroes all movement, including the carried velocity.
func (a *Actor) Stop() {
	a.moveSpeed = math.Vec2{}
	a.inherited = math.Vec2{}
	a.Body.Velocity = math.Vec2{}
}
