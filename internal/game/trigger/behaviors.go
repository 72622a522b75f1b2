package trigger

import (
	"time"

	"github.com/Faultbox/platformer-core/internal/engine/scene"
	"github.com/Faultbox/platformer-core/internal/game/actor"
	"github.com/Faultbox/platformer-core/internal/game/entity"
)

// Ladder lets actors inside the trigger climb.
type Ladder struct{}

func (Ladder) OnEnter(t *Trigger, a *actor.Actor) {
	a.SetLadder(t.Handle)
}

func (Ladder) OnLeave(t *Trigger, a *actor.Actor) {
	if a.Ladder() == t.Handle {
		a.SetLadder(entity.Nil)
	}
}

// Scheduler runs delayed callbacks.
type Scheduler interface {
	After(d time.Duration, fn func()) *scene.Timer
}

// AreaDamage hurts actors inside the trigger. With a zero Interval it deals
// one hit on entry; otherwise it keeps hitting every Interval until the actor
// leaves. Armor never applies.
type AreaDamage struct {
	Amount     float32
	Interval   time.Duration
	PlayerOnly bool

	sched   Scheduler
	members map[*actor.Actor]*scene.Timer
}

// NewAreaDamage creates an area damage behavior.
func NewAreaDamage(amount float32, interval time.Duration, playerOnly bool, sched Scheduler) *AreaDamage {
	return &AreaDamage{
		Amount:     amount,
		Interval:   interval,
		PlayerOnly: playerOnly,
		sched:      sched,
		members:    make(map[*actor.Actor]*scene.Timer),
	}
}

func (d *AreaDamage) OnEnter(t *Trigger, a *actor.Actor) {
	if d.PlayerOnly {
		if _, ok := a.Controller.(*actor.PlayerController); !ok {
			return
		}
	}
	if d.Interval <= 0 {
		a.TakeDamage(d.Amount, d, true, false)
		return
	}
	d.members[a] = nil
	d.hit(a)
}

func (d *AreaDamage) OnLeave(t *Trigger, a *actor.Actor) {
	timer, ok := d.members[a]
	if !ok {
		return
	}
	timer.Stop()
	delete(d.members, a)
}

// Members returns the number of actors taking repeated damage.
func (d *AreaDamage) Members() int {
	return len(d.members)
}

func (d *AreaDamage) hit(a *actor.Actor) {
	if _, ok := d.members[a]; !ok {
		return
	}
	a.TakeDamage(d.Amount, d, true, false)
	d.members[a] = d.sched.After(d.Interval, func() { d.hit(a) })
}

// Turner is a controller that can reverse its walking direction.
type Turner interface {
	Turn()
}

// EnemyTurn reverses the direction of AI actors that walk into it.
type EnemyTurn struct{}

func (EnemyTurn) OnEnter(t *Trigger, a *actor.Actor) {
	if c, ok := a.Controller.(Turner); ok {
		c.Turn()
	}
}
