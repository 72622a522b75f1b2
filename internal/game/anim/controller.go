// Package anim drives the animation of an actor from its physics state.
//
// Each state has an enter and an execute step. Execute looks at the actor and
// returns the state to move to, if any. States resolve to animation resources
// by a naming convention:
//
//	<Prefix><State>Animation          e.g. HeroRunJumpAnimation
//	<Prefix><From>_to_<To>Animation   transition played before the target
//	<Prefix><Stem>Sound[0..N]         sound for an animation
package anim

import (
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/platformer-core/internal/config"
	"github.com/Faultbox/platformer-core/internal/engine/audio"
	"github.com/Faultbox/platformer-core/internal/engine/sprite"
	"github.com/Faultbox/platformer-core/internal/game/actor"
	"github.com/Faultbox/platformer-core/internal/logger"
	"github.com/Faultbox/platformer-core/pkg/math"
)

const animationSuffix = "Animation"

// Clock supplies the simulation time.
type Clock interface {
	Now() time.Duration
}

// Listener is the point sounds are heard from, usually the camera.
type Listener interface {
	Position() math.Vec2
}

// SoundBank plays named sounds.
type SoundBank interface {
	Has(name string) bool
	Play(name string, volume float32) *audio.Voice
}

// Options configures a Controller.
type Options struct {
	Config config.AnimationConfig

	// Prefix starts every resource name of the actor.
	Prefix string
	// Overrides maps a state to an explicit resource name.
	Overrides map[State]string

	Library  *sprite.Library
	Player   *sprite.Player
	Clock    Clock
	Sounds   SoundBank
	Listener Listener
	Rand     *rand.Rand
}

// Controller is the animation state machine of one actor.
type Controller struct {
	cfg       config.AnimationConfig
	prefix    string
	overrides map[State]string

	actor    *actor.Actor
	lib      *sprite.Library
	player   *sprite.Player
	clock    Clock
	sounds   SoundBank
	listener Listener
	rng      *rand.Rand
	log      *zap.Logger

	resources [stateCount]string

	current         State
	previous        State
	transitioning   bool
	transitioningTo string
	idleTime        time.Duration

	stepFrames []int
	voice      *audio.Voice

	// Falling is called every tick the actor spends falling in the fall state.
	Falling func(a *actor.Actor)
}

// New creates a controller for a, registers the standard states and attaches
// itself as the actor's animator. Call Start once the actor is in the world.
func New(a *actor.Actor, opts Options) *Controller {
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	c := &Controller{
		cfg:       opts.Config,
		prefix:    opts.Prefix,
		overrides: opts.Overrides,
		actor:     a,
		lib:       opts.Library,
		player:    opts.Player,
		clock:     opts.Clock,
		sounds:    opts.Sounds,
		listener:  opts.Listener,
		rng:       rng,
		log:       logger.Named("anim"),
		current:   Idle,
		previous:  None,
	}
	if c.player == nil {
		c.player = sprite.NewPlayer(c.lib)
	}
	c.player.OnFrameChange = c.onFrameChange

	// Main animations.
	for _, s := range []State{Idle, Jump, Fall, Glide, Run, ClimbIdle, ClimbUp, ClimbDown, Damage, Spawn, Die} {
		c.Register(s, None)
	}
	// Secondary animations.
	c.Register(Slide, None)
	c.Register(Action, None)
	c.Register(ClimbJump, Jump)
	c.Register(RunJump, Jump)
	c.Register(RunFall, Fall)

	a.Animator = c
	return c
}

// Start puts the actor in its first state: spawn when a spawn animation
// exists, idle otherwise.
func (c *Controller) Start() {
	if c.Registered(Spawn) {
		c.actor.BeginSpawn()
		c.SetState(Spawn)
		return
	}
	c.SetState(Idle)
}

// Register resolves the resource for s: an explicit override first, then the
// naming convention, then the resolution of fallback. A state that resolves
// to nothing stays unregistered.
func (c *Controller) Register(s, fallback State) bool {
	if !s.valid() {
		return false
	}
	res := c.resolve(s)
	if res == "" && fallback.valid() {
		res = c.resolve(fallback)
	}
	c.resources[s] = res
	if res == "" {
		c.log.Debug("animation state not registered", zap.Stringer("state", s), zap.String("prefix", c.prefix))
		return false
	}
	return true
}

func (c *Controller) resolve(s State) string {
	if name, ok := c.overrides[s]; ok && c.lib.HasAnimation(name) {
		return name
	}
	if name := c.prefix + s.resourceStem() + animationSuffix; c.lib.HasAnimation(name) {
		return name
	}
	return ""
}

// Unregister clears the resource of s so it can no longer be entered.
func (c *Controller) Unregister(s State) {
	if s.valid() {
		c.resources[s] = ""
	}
}

// Registered reports whether s can be entered.
func (c *Controller) Registered(s State) bool {
	return s.valid() && c.resources[s] != ""
}

// Resource returns the animation resource of s.
func (c *Controller) Resource(s State) string {
	if !s.valid() {
		return ""
	}
	return c.resources[s]
}

// Current returns the current state.
func (c *Controller) Current() State { return c.current }

// Previous returns the state before the current one.
func (c *Controller) Previous() State { return c.previous }

// Transitioning reports whether a transition animation is playing.
func (c *Controller) Transitioning() bool { return c.transitioning }

// Voice returns the last sound started by the controller.
func (c *Controller) Voice() *audio.Voice { return c.voice }

// SetState leaves the current state and enters s. Unregistered states are ignored.
func (c *Controller) SetState(s State) bool {
	if !c.Registered(s) {
		return false
	}
	c.exit()
	c.previous = c.current
	c.current = s
	states[s].enter(c)
	return true
}

// SetAnimationState enters the named state.
func (c *Controller) SetAnimationState(name string) bool {
	s, ok := ParseState(name)
	if !ok {
		return false
	}
	return c.SetState(s)
}

// AnimationState returns the name of the current state.
func (c *Controller) AnimationState() string {
	return c.current.String()
}

// Update runs the current state, then keeps the facing and the volume of a
// looping sound up to date.
func (c *Controller) Update() {
	if next, ok := states[c.current].execute(c); ok {
		c.SetState(next)
	}

	if c.current == Die || c.current == Spawn {
		return
	}

	if v := c.voice; v != nil && v.Looping() && v.Playing() {
		if vol := c.scaledVolume(); vol != v.Volume() {
			v.SetVolume(vol)
		}
	}

	a := c.actor
	if c.current == Slide {
		speed := a.MoveSpeed().X + a.InheritedVelocity().X - a.GroundVelocity().X
		a.Body.FlipX = speed < 0
		return
	}
	dir := a.Direction()
	if dir.X > 0 || a.Climbing() {
		a.Body.FlipX = false
	} else if dir.X < 0 {
		a.Body.FlipX = true
	}
}

// Stop silences the controller's sound. It is called when the actor leaves the world.
func (c *Controller) Stop() {
	if c.voice != nil {
		c.voice.Stop()
		c.voice = nil
	}
}

// transition finds the animation played between two states.
func (c *Controller) transition(from, to State) string {
	if !c.cfg.AllowTransitions || !from.valid() || !to.valid() {
		return ""
	}
	name := c.prefix + from.resourceStem() + "_to_" + to.resourceStem() + animationSuffix
	if !c.lib.HasAnimation(name) {
		return ""
	}
	return name
}

// enter plays a transition into the current state if one exists.
func (c *Controller) enter() {
	if tr := c.transition(c.previous, c.current); tr != "" {
		c.transitioning = true
		c.animate(tr, 0)
	}
	if c.actor.Alive() {
		c.actor.Body.Visible = true
	}
}

// execute moves on from a finished transition to the state's own animation.
func (c *Controller) execute() {
	if c.transitioning && c.player.AnimationFinished() {
		c.transitioning = false
		c.animate(c.transitioningTo, 0)
	}
}

func (c *Controller) exit() {
	if c.voice != nil && c.voice.Looping() {
		c.voice.Stop()
		c.voice = nil
	}
	c.transitioning = false
}

// animate plays a clip and starts its sound unless the clip uses step frames.
func (c *Controller) animate(name string, frame int) {
	if name == "" || !c.lib.HasAnimation(name) {
		return
	}
	c.stepFrames = c.lib.StepFrames(name)
	c.player.Play(name, frame)

	if len(c.stepFrames) == 0 {
		if snd := c.findSound(name); snd != "" {
			c.playSound(snd)
		}
	}
}

func (c *Controller) now() time.Duration {
	if c.clock == nil {
		return 0
	}
	return c.clock.Now()
}
