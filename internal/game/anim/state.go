package anim

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// State is an animation state.
type State int8

const (
	// None marks the absence of a state, e.g. no fallback.
	None State = iota - 1
	Idle
	Run
	RunJump
	RunFall
	Slide
	Jump
	Fall
	Glide
	ClimbIdle
	ClimbUp
	ClimbDown
	ClimbJump
	Action
	Damage
	Spawn
	Die
	stateCount
)

var stateNames = [stateCount]string{
	Idle:      "idle",
	Run:       "run",
	RunJump:   "runJump",
	RunFall:   "runFall",
	Slide:     "slide",
	Jump:      "jump",
	Fall:      "fall",
	Glide:     "glide",
	ClimbIdle: "climbIdle",
	ClimbUp:   "climbUp",
	ClimbDown: "climbDown",
	ClimbJump: "climbJump",
	Action:    "action",
	Damage:    "damage",
	Spawn:     "spawn",
	Die:       "die",
}

func (s State) valid() bool {
	return s >= 0 && s < stateCount
}

func (s State) String() string {
	if s.valid() {
		return stateNames[s]
	}
	return "none"
}

// ParseState maps a state name to a State. Matching ignores case.
func ParseState(name string) (State, bool) {
	for s, n := range stateNames {
		if strings.EqualFold(n, name) {
			return State(s), true
		}
	}
	return None, false
}

// resourceStem is the state name as it appears inside resource names: "runJump" -> "RunJump".
func (s State) resourceStem() string {
	return upperFirst(s.String())
}

func upperFirst(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	if n == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[n:]
}

// waitsForClip reports whether the state leaves only once its clip ends.
func (s State) waitsForClip() bool {
	switch s {
	case Action, Damage, Spawn, Die:
		return true
	}
	return false
}

// OneShot reports whether the controller waits for the clip named by the
// convention to end: transitions and the action, damage, spawn and die
// states. A looping clip never ends, so such clips must not loop.
func OneShot(clip string) bool {
	stem, ok := strings.CutSuffix(clip, animationSuffix)
	if !ok {
		return false
	}
	if strings.Contains(stem, "_to_") {
		return true
	}
	for s := State(0); s < stateCount; s++ {
		if s.waitsForClip() && strings.HasSuffix(stem, s.resourceStem()) {
			return true
		}
	}
	return false
}

// WaitsForClip reports whether a resource overriding s must not loop.
func WaitsForClip(s State) bool {
	return s.waitsForClip()
}
