// Package world owns a running level: its clock, spatial index, objects,
// camera and score. It drives every object through the fixed-tick pipeline.
package world

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/platformer-core/internal/config"
	"github.com/Faultbox/platformer-core/internal/engine/audio"
	"github.com/Faultbox/platformer-core/internal/engine/camera"
	"github.com/Faultbox/platformer-core/internal/engine/scene"
	"github.com/Faultbox/platformer-core/internal/engine/sprite"
	"github.com/Faultbox/platformer-core/internal/game/actor"
	"github.com/Faultbox/platformer-core/internal/game/entity"
	"github.com/Faultbox/platformer-core/internal/game/platform"
	"github.com/Faultbox/platformer-core/internal/game/spawn"
	"github.com/Faultbox/platformer-core/internal/game/states"
	"github.com/Faultbox/platformer-core/internal/game/trigger"
	"github.com/Faultbox/platformer-core/internal/logger"
	"github.com/Faultbox/platformer-core/pkg/math"
)

// ErrNoLoader is returned by Restart when the world was not built from a level.
var ErrNoLoader = errors.New("world has no level loader")

// Loader fills an empty world with a level.
type Loader func(w *World) error

// World is the session context of one level.
type World struct {
	cfg *config.Config
	log *zap.Logger

	sched  *scene.Scheduler
	space  *scene.Space
	camera *camera.FollowCamera
	states *states.Manager
	clips  *sprite.Library
	sounds *audio.Manager
	rng    *rand.Rand

	boundsMin math.Vec2
	boundsMax math.Vec2

	platforms *entity.Registry[*platform.Platform]
	triggers  *entity.Registry[*trigger.Trigger]
	actors    *entity.Registry[*Character]

	platformSprites map[*platform.Platform]*sprite.Player
	points          []*spawn.Point
	templates       map[string]Template
	spawned         map[entity.ID]spawnedObject
	nextSpawnID     entity.ID
	collected       map[entity.ID]*trigger.Trigger
	checkpoint      *spawn.Checkpoint
	scroll          *scroller

	player      *Character
	pendingGone []*actor.Actor

	score  int
	ticks  int
	loader Loader
}

// New creates an empty world covering [min, max]. sounds may be nil.
func New(cfg *config.Config, min, max math.Vec2, clips *sprite.Library, sounds *audio.Manager) *World {
	if clips == nil {
		clips = sprite.NewLibrary()
	}
	if sounds == nil {
		sounds = audio.New()
	}
	w := &World{
		cfg:    cfg,
		log:    logger.Named("world"),
		sched:  scene.NewScheduler(),
		camera: camera.NewFollowCamera(min.Add(max).Scale(0.5)),
		states: states.NewManager(),
		clips:  clips,
		sounds: sounds,
		rng:    rand.New(rand.NewSource(1)),
	}
	w.SetBounds(min, max)
	w.reset()
	w.states.Change(states.NewPlayingState(w, w.states, cfg.Session))
	return w
}

func (w *World) reset() {
	w.space = scene.NewSpace(w.boundsMin, w.boundsMax, w.cfg.Simulation.CellSize)
	w.platforms = entity.NewRegistry[*platform.Platform]()
	w.triggers = entity.NewRegistry[*trigger.Trigger]()
	w.actors = entity.NewRegistry[*Character]()
	w.platformSprites = make(map[*platform.Platform]*sprite.Player)
	w.points = nil
	w.templates = make(map[string]Template)
	w.spawned = make(map[entity.ID]spawnedObject)
	w.nextSpawnID = 0
	w.collected = make(map[entity.ID]*trigger.Trigger)
	w.checkpoint = spawn.NewCheckpoint()
	w.scroll = nil
	w.player = nil
	w.pendingGone = nil
	w.score = 0
}

// SetBounds sets the world limits. Objects already added keep their index
// cells until the level is rebuilt.
func (w *World) SetBounds(min, max math.Vec2) {
	w.boundsMin = min
	w.boundsMax = max
	w.camera.SetLimits(min, max)
}

// Bounds returns the world limits.
func (w *World) Bounds() (min, max math.Vec2) {
	return w.boundsMin, w.boundsMax
}

// SetLoader sets the function Restart rebuilds the level with.
func (w *World) SetLoader(l Loader) {
	w.loader = l
}

// Config returns the configuration the world runs with.
func (w *World) Config() *config.Config { return w.cfg }

// Clips returns the sprite clip library.
func (w *World) Clips() *sprite.Library { return w.clips }

// Sounds returns the sound bank.
func (w *World) Sounds() *audio.Manager { return w.sounds }

// Camera returns the follow camera.
func (w *World) Camera() *camera.FollowCamera { return w.camera }

// Phase returns the name of the current session phase.
func (w *World) Phase() string {
	if s := w.states.Current(); s != nil {
		return s.Name()
	}
	return "none"
}

// PhaseHistory returns every phase change of the session, restarts included.
func (w *World) PhaseHistory() []states.Transition { return w.states.History() }

// Ticks returns the number of ticks run.
func (w *World) Ticks() int { return w.ticks }

// Score returns the session score.
func (w *World) Score() int { return w.score }

// AddScore adds points to the session score. The score never passes a
// positive WinScore.
func (w *World) AddScore(n int) {
	w.score += n
	if win := w.cfg.Session.WinScore; win > 0 && w.score > win {
		w.score = win
	}
}

// Player returns the input-driven actor, if any.
func (w *World) Player() (*Character, bool) {
	return w.player, w.player != nil
}

// Now implements actor.World.
func (w *World) Now() time.Duration { return w.sched.Now() }

// TickSeconds implements actor.World.
func (w *World) TickSeconds() float32 { return w.cfg.Simulation.TickSeconds() }

// After implements actor.World.
func (w *World) After(d time.Duration, fn func()) *scene.Timer {
	return w.sched.After(d, fn)
}

// PlatformsIn implements actor.World.
func (w *World) PlatformsIn(min, max math.Vec2, exclude any) []*platform.Platform {
	var out []*platform.Platform
	for _, o := range w.space.Query(min, max, exclude) {
		if p, ok := o.(*platform.Platform); ok {
			out = append(out, p)
		}
	}
	return out
}

// Platform implements actor.World.
func (w *World) Platform(h entity.Handle) (*platform.Platform, bool) {
	return w.platforms.Get(h)
}

// Ladder implements actor.World.
func (w *World) Ladder(h entity.Handle) (*scene.Body, bool) {
	t, ok := w.triggers.Get(h)
	if !ok || !t.IsLadder() || t.Removed() {
		return nil, false
	}
	return t.Body, true
}

// GameOver implements actor.World. Only the player ends the session; other
// actors out of lives leave the world.
func (w *World) GameOver(a *actor.Actor) {
	if w.player == nil || w.player.Actor != a {
		w.RemoveActor(a)
		return
	}
	w.states.Change(states.NewGameOverState(w, w.states, w.cfg.Session))
}

// SetMuted implements states.Session.
func (w *World) SetMuted(muted bool) {
	w.sounds.SetMuted(muted)
}

// Restart implements states.Session: the level is rebuilt from scratch.
func (w *World) Restart() error {
	if w.loader == nil {
		return ErrNoLoader
	}
	w.Clear()
	if err := w.loader(w); err != nil {
		return fmt.Errorf("reloading level: %w", err)
	}
	w.log.Info("level restarted")
	return nil
}

// Clear removes every object and resets the score. Pending timers are dropped.
func (w *World) Clear() {
	w.actors.Each(func(_ entity.Handle, e *Character) { e.Anim.Stop() })
	w.sched.Reset()
	w.reset()
}
