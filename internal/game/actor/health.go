package actor

import (
	"go.uber.org/zap"

	"github.com/Faultbox/platformer-core/internal/game/entity"
	"github.com/Faultbox/platformer-core/pkg/math"
)

// TakeDamage deals damage to the actor. Hits are ignored while dead and within
// DamageTimeOut of the previous hit unless ignoreTimeout is set. Armor absorbs
// its share unless ignoreArmor is set. It reports whether the hit landed.
func (a *Actor) TakeDamage(amount float32, src any, ignoreArmor, ignoreTimeout bool) bool {
	if !a.alive {
		return false
	}

	now := a.world.Now()
	if !ignoreTimeout && now-a.lastDamageTime < a.Config.DamageTimeOut {
		return false
	}

	if !ignoreArmor {
		amount *= 1 - math.Clamp(a.Config.Armor, 0, 1)
	}

	start := a.health
	a.health = math.Clamp(a.health-amount, 0, a.Config.MaxHealth)
	dealt := start - a.health

	if a.health == 0 {
		a.die(dealt, src)
	} else {
		a.lastDamageTime = now
		a.SetAnimationState("damage")
	}

	// A hit knocks the actor off its ladder.
	if a.climbing {
		a.climbing = false
		a.climbDetachTime = now
	}

	a.Damaged.Invoke(DamageEvent{Actor: a, Amount: dealt, Source: src})
	return true
}

// Kill takes all remaining health regardless of armor and timeouts.
func (a *Actor) Kill(src any) bool {
	return a.TakeDamage(a.health, src, true, true)
}

// HealDamage restores health up to MaxHealth. Dead actors cannot be healed.
func (a *Actor) HealDamage(amount float32) bool {
	if !a.alive {
		return false
	}
	a.health = math.Clamp(a.health+amount, 0, a.Config.MaxHealth)
	a.Healed.Invoke(amount)
	return true
}

func (a *Actor) die(amount float32, src any) {
	a.alive = false
	a.lives--
	a.Body.SetCollisionActive(false, false)
	a.leaveGround()
	a.climbing = false
	a.SetAnimationState("die")

	a.log.Debug("actor died", zap.Stringer("actor", a.Handle), zap.Int("lives", a.lives))
	a.Died.Invoke(DamageEvent{Actor: a, Amount: amount, Source: src})
}

// respawn brings the actor back at its respawn position. The actor stays
// frozen until the spawn animation calls SpawnFinished.
func (a *Actor) respawn() {
	a.respawnTimer = nil

	if !a.Config.AllowRespawn {
		a.world.RemoveActor(a)
		return
	}

	a.spawning = true
	a.Body.Position = a.RespawnPosition
	a.Body.FlipX = false
	a.Stop()
	a.jumpDown = entity.Nil
	a.health = a.Config.MaxHealth

	entered := a.SetAnimationState("spawn")
	a.log.Debug("actor respawned", zap.Stringer("actor", a.Handle), zap.Int("lives", a.lives))
	a.Respawned.Invoke(a)

	if !entered {
		a.SpawnFinished()
	}
}

// RespawnPending reports whether a respawn is scheduled.
func (a *Actor) RespawnPending() bool {
	return a.respawnTimer.Pending()
}

// BeginSpawn freezes the actor while its first spawn animation plays.
func (a *Actor) BeginSpawn() {
	a.alive = false
	a.spawning = true
	a.state = IsDead
	a.Body.SetCollisionActive(false, false)
}

// SpawnFinished is called by the animation controller once the spawn
// sequence is over.
func (a *Actor) SpawnFinished() {
	a.alive = true
	a.spawning = false
	a.leaveGround()
	a.state = InAir
	a.Body.SetCollisionActive(true, true)
}

// Reset restores full health, lives and the respawn position.
func (a *Actor) Reset() {
	a.respawnTimer.Stop()
	a.respawnTimer = nil
	a.gameOverSent = false
	a.lives = a.Config.Lives
	a.health = a.Config.MaxHealth
	a.alive = true
	a.spawning = false
	a.climbing = false
	a.gliding = false
	a.canGlide = a.Config.AllowGlide
	a.leaveGround()
	a.jumpDown = entity.Nil
	a.state = InAir
	a.Body.Position = a.RespawnPosition
	a.Body.SetCollisionActive(true, true)
	a.Stop()
}
