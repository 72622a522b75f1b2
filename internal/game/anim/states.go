package anim

// state is one node of the animation state machine. execute returns the
// next state and true when the state should change.
type state interface {
	enter(c *Controller)
	execute(c *Controller) (State, bool)
}

var states [stateCount]state

func init() {
	states = [stateCount]state{
		Idle:      idleState{},
		Run:       runState{},
		RunJump:   runJumpState{},
		RunFall:   runFallState{},
		Slide:     slideState{},
		Jump:      jumpState{},
		Fall:      fallState{},
		Glide:     glideState{},
		ClimbIdle: climbIdleState{},
		ClimbUp:   climbUpState{},
		ClimbDown: climbDownState{},
		ClimbJump: climbJumpState{},
		Action:    actionState{},
		Damage:    damageState{},
		Spawn:     spawnState{},
		Die:       dieState{},
	}
}

// playState is the enter step shared by every state: play the transition
// if there is one, then the state's own animation.
type playState struct{}

func (playState) enter(c *Controller) {
	c.enter()
	c.transitioningTo = c.resources[c.current]
	if !c.transitioning {
		c.animate(c.transitioningTo, 0)
	}
}

func change(s State) (State, bool) { return s, true }

func stay() (State, bool) { return None, false }

// climbing picks the climb state from the vertical velocity.
func climbing(c *Controller) State {
	vy := c.actor.Body.Velocity.Y
	switch {
	case vy < 0:
		return ClimbUp
	case vy > 0:
		return ClimbDown
	}
	return ClimbIdle
}

// landing picks run or idle once the actor is on the ground.
func landing(c *Controller) State {
	if c.actor.Direction().X != 0 {
		return Run
	}
	return Idle
}

// falling picks fall or glide for a descending actor.
func falling(c *Controller) State {
	if c.actor.Gliding() {
		return Glide
	}
	return Fall
}

// airborne reports whether the actor has been off the ground long enough to
// count as falling.
func airborne(c *Controller) bool {
	return c.now()-c.actor.GroundTime() > c.cfg.AirGrace && c.actor.Body.Velocity.Y > 0
}

type idleState struct{ playState }

func (s idleState) enter(c *Controller) {
	c.idleTime = c.now()
	s.playState.enter(c)
}

func (idleState) execute(c *Controller) (State, bool) {
	c.execute()
	a := c.actor
	if !a.Alive() {
		return change(Die)
	}
	if a.Climbing() {
		return change(climbing(c))
	}
	if airborne(c) {
		return change(falling(c))
	}
	if c.Registered(Slide) && a.MoveSpeed().X == 0 && a.InheritedVelocity().X != a.GroundVelocity().X {
		return change(Slide)
	}
	if a.Direction().X != 0 {
		return change(Run)
	}
	if c.now()-c.idleTime > c.cfg.IdleDwell {
		return change(Action)
	}
	return stay()
}

type runState struct{ playState }

func (runState) execute(c *Controller) (State, bool) {
	c.execute()
	a := c.actor
	if !a.Alive() {
		return change(Die)
	}
	if a.Climbing() {
		return change(climbing(c))
	}
	if airborne(c) {
		return change(falling(c))
	}
	move, dir := a.MoveSpeed().X, a.Direction().X
	if c.Registered(Slide) && ((move > 0 && dir < 0) || (move < 0 && dir > 0)) {
		return change(Slide)
	}
	if dir == 0 {
		return change(Idle)
	}
	return stay()
}

type runJumpState struct{ playState }

func (runJumpState) execute(c *Controller) (State, bool) {
	c.execute()
	a := c.actor
	if !a.Alive() {
		return change(Die)
	}
	if a.Climbing() {
		return change(climbing(c))
	}
	if a.OnGround() {
		return change(landing(c))
	}
	if a.Body.Velocity.Y > 0 {
		return change(RunFall)
	}
	return stay()
}

type runFallState struct{ playState }

func (runFallState) execute(c *Controller) (State, bool) {
	c.execute()
	a := c.actor
	if !a.Alive() {
		return change(Die)
	}
	if a.Climbing() {
		return change(climbing(c))
	}
	if a.OnGround() {
		return change(landing(c))
	}
	if a.Gliding() {
		return change(Glide)
	}
	return stay()
}

// slideTolerance is how close the velocity must be to the ground drift for a
// slide to end.
const slideTolerance = 0.01

type slideState struct{ playState }

func (slideState) execute(c *Controller) (State, bool) {
	c.execute()
	a := c.actor
	if !a.Alive() {
		return change(Die)
	}
	if a.Climbing() {
		return change(climbing(c))
	}
	dir := a.Direction().X
	if (a.MoveSpeed().X >= 0) == (dir >= 0) {
		if dir != 0 {
			return change(Run)
		}
		drift := a.GroundVelocity().X
		if p, ok := a.Ground(); ok {
			drift += p.Force
		}
		if d := a.Body.Velocity.X - drift; d < slideTolerance && d > -slideTolerance {
			return change(Idle)
		}
	}
	if !a.OnGround() && a.Body.Velocity.Y > 0 {
		return change(RunFall)
	}
	return stay()
}

type jumpState struct{ playState }

func (jumpState) execute(c *Controller) (State, bool) {
	c.execute()
	a := c.actor
	if !a.Alive() {
		return change(Die)
	}
	if a.Climbing() {
		return change(climbing(c))
	}
	if a.OnGround() {
		return change(landing(c))
	}
	if a.Body.Velocity.Y > 0 {
		return change(falling(c))
	}
	return stay()
}

type fallState struct{ playState }

func (fallState) execute(c *Controller) (State, bool) {
	c.execute()
	a := c.actor
	if !a.Alive() {
		return change(Die)
	}
	if a.Climbing() {
		return change(climbing(c))
	}
	if a.OnGround() {
		return change(landing(c))
	}
	if c.Falling != nil {
		c.Falling(a)
	}
	if a.Gliding() {
		return change(Glide)
	}
	return stay()
}

type glideState struct{ playState }

func (glideState) execute(c *Controller) (State, bool) {
	c.execute()
	a := c.actor
	if !a.Alive() {
		return change(Die)
	}
	if a.Climbing() {
		return change(climbing(c))
	}
	if a.OnGround() {
		return change(landing(c))
	}
	if !a.Gliding() {
		return change(Fall)
	}
	return stay()
}

// offLadder is where a climb state goes once the actor lets go.
func offLadder(c *Controller) State {
	if !c.actor.OnGround() {
		return falling(c)
	}
	return Idle
}

type climbIdleState struct{ playState }

func (climbIdleState) execute(c *Controller) (State, bool) {
	c.execute()
	a := c.actor
	if !a.Alive() {
		return change(Die)
	}
	if !a.Climbing() {
		return change(offLadder(c))
	}
	if s := climbing(c); s != ClimbIdle {
		return change(s)
	}
	return stay()
}

type climbUpState struct{ playState }

func (climbUpState) execute(c *Controller) (State, bool) {
	c.execute()
	a := c.actor
	if !a.Alive() {
		return change(Die)
	}
	if !a.Climbing() {
		return change(offLadder(c))
	}
	if s := climbing(c); s != ClimbUp {
		return change(s)
	}
	return stay()
}

type climbDownState struct{ playState }

func (climbDownState) execute(c *Controller) (State, bool) {
	c.execute()
	a := c.actor
	if !a.Alive() {
		return change(Die)
	}
	if !a.Climbing() {
		return change(offLadder(c))
	}
	if s := climbing(c); s != ClimbDown {
		return change(s)
	}
	return stay()
}

type climbJumpState struct{ playState }

func (climbJumpState) execute(c *Controller) (State, bool) {
	c.execute()
	a := c.actor
	if !a.Alive() {
		return change(Die)
	}
	if a.Climbing() {
		return change(climbing(c))
	}
	if a.OnGround() {
		return change(landing(c))
	}
	if a.Body.Velocity.Y > 0 {
		switch {
		case a.Gliding():
			return change(Glide)
		case a.Direction().X != 0:
			return change(RunFall)
		}
		return change(Fall)
	}
	return stay()
}

// actionState plays once and returns to idle.
type actionState struct{ playState }

func (actionState) execute(c *Controller) (State, bool) {
	c.execute()
	if !c.actor.Alive() {
		return change(Die)
	}
	if c.player.AnimationFinished() {
		return change(Idle)
	}
	return stay()
}

type damageState struct{ playState }

func (damageState) execute(c *Controller) (State, bool) {
	c.execute()
	if !c.actor.Alive() {
		return change(Die)
	}
	if c.player.AnimationFinished() {
		return change(Idle)
	}
	return stay()
}

// spawnState holds the actor frozen until its animation ends.
type spawnState struct{ playState }

func (spawnState) execute(c *Controller) (State, bool) {
	c.execute()
	if c.player.AnimationFinished() {
		c.actor.SpawnFinished()
		return change(Fall)
	}
	return stay()
}

type dieState struct{ playState }

func (dieState) execute(c *Controller) (State, bool) {
	c.execute()
	a := c.actor
	if c.player.AnimationFinished() && a.Config.HideOnDeath {
		a.Body.Visible = false
	}
	if a.Alive() {
		return change(Idle)
	}
	return stay()
}
