package platform

import (
	"github.com/Faultbox/platformer-core/internal/config"
	"github.com/Faultbox/platformer-core/pkg/math"
)

// JumpState is the animation state forced on a bounced rider.
const JumpState = "jump"

// Trampoline launches riders that land on it along the platform's up axis.
type Trampoline struct {
	BounceForce  float32
	JumpModifier float32
}

// NewTrampoline creates a trampoline from config defaults.
func NewTrampoline(cfg config.TrampolineConfig) *Trampoline {
	return &Trampoline{BounceForce: cfg.BounceForce, JumpModifier: cfg.JumpModifier}
}

// ActorLanded bounces the rider; a jump pressed just before landing bounces higher.
func (t *Trampoline) ActorLanded(p *Platform, r Rider) {
	t.Bounce(p, r, r.SinceJump() < r.BounceJumpTimeOut())
}

// Bounce launches r. The rider keeps its horizontal input speed.
func (t *Trampoline) Bounce(p *Platform, r Rider, bounceJump bool) {
	mod := float32(1)
	if bounceJump {
		mod = t.JumpModifier
	}
	v := math.Rotation(p.Body.Rotation).MulVec(math.Vec2{X: r.MoveSpeed().X, Y: -t.BounceForce * mod})
	r.Launch(v)
	if r.AnimationState() != JumpState {
		r.SetAnimationState(JumpState)
	}
}
