package actor

import (
	"github.com/Faultbox/platformer-core/pkg/math"
)

// Controller is the brain of an actor: it supplies the input direction and
// the held state of the jump button.
type Controller interface {
	Direction() math.Vec2
	JumpHeld() bool
	// ReleaseJump clears the held jump, e.g. when a glide runs out.
	ReleaseJump()
}

// Key is a player input.
type Key uint8

const (
	KeyLeft Key = iota
	KeyRight
	KeyUp
	KeyDown
	KeyJump
	KeyAttack
)

var keyNames = [...]string{
	KeyLeft:   "left",
	KeyRight:  "right",
	KeyUp:     "up",
	KeyDown:   "down",
	KeyJump:   "jump",
	KeyAttack: "attack",
}

func (k Key) String() string {
	if int(k) < len(keyNames) {
		return keyNames[k]
	}
	return "unknown"
}

// ParseKey maps a key name to a Key.
func ParseKey(name string) (Key, bool) {
	for k, n := range keyNames {
		if n == name {
			return Key(k), true
		}
	}
	return 0, false
}

// PlayerController turns key presses into actor input.
type PlayerController struct {
	actor     *Actor
	direction math.Vec2
	jump      bool
	attack    bool
}

// NewPlayerController creates a controller and attaches it to a.
func NewPlayerController(a *Actor) *PlayerController {
	c := &PlayerController{actor: a}
	a.Controller = c
	return c
}

// Direction returns the held direction.
func (c *PlayerController) Direction() math.Vec2 { return c.direction }

// JumpHeld reports whether jump is held.
func (c *PlayerController) JumpHeld() bool { return c.jump }

// ReleaseJump forgets the held jump until it is pressed again.
func (c *PlayerController) ReleaseJump() { c.jump = false }

// AttackHeld reports whether attack is held.
func (c *PlayerController) AttackHeld() bool { return c.attack }

// Press handles a key going down.
func (c *PlayerController) Press(k Key) {
	switch k {
	case KeyLeft:
		c.direction.X = -1
	case KeyRight:
		c.direction.X = 1
	case KeyUp:
		c.direction.Y = -1
	case KeyDown:
		c.direction.Y = 1
	case KeyJump:
		c.jump = true
		c.actor.MarkJump()
		if c.direction.Y > 0 {
			c.actor.JumpDown()
		} else {
			c.actor.JumpUp()
		}
	case KeyAttack:
		c.attack = true
		c.actor.Attack()
	}
}

// Release handles a key going up.
func (c *PlayerController) Release(k Key) {
	switch k {
	case KeyLeft:
		if c.direction.X == -1 {
			c.direction.X = 0
		}
	case KeyRight:
		if c.direction.X == 1 {
			c.direction.X = 0
		}
	case KeyUp, KeyDown:
		c.direction.Y = 0
	case KeyJump:
		c.jump = false
	case KeyAttack:
		c.attack = false
	}
}

// AIController walks in one direction until turned around.
type AIController struct {
	direction math.Vec2
}

// NewAIController creates a controller facing the way a faces and attaches it.
func NewAIController(a *Actor) *AIController {
	c := &AIController{direction: math.Vec2{X: a.facing()}}
	a.Controller = c
	return c
}

// Direction returns the walking direction.
func (c *AIController) Direction() math.Vec2 { return c.direction }

// JumpHeld is always false.
func (c *AIController) JumpHeld() bool { return false }

// ReleaseJump does nothing.
func (c *AIController) ReleaseJump() {}

// Turn reverses the walking direction.
func (c *AIController) Turn() {
	c.direction.X = -c.direction.X
}
