package world

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/platformer-core/internal/config"
	"github.com/Faultbox/platformer-core/internal/engine/input"
	"github.com/Faultbox/platformer-core/internal/engine/scene"
	"github.com/Faultbox/platformer-core/internal/engine/sprite"
	"github.com/Faultbox/platformer-core/internal/game/actor"
	"github.com/Faultbox/platformer-core/internal/game/anim"
	"github.com/Faultbox/platformer-core/internal/game/entity"
	"github.com/Faultbox/platformer-core/internal/game/platform"
	"github.com/Faultbox/platformer-core/internal/game/spawn"
	"github.com/Faultbox/platformer-core/internal/game/trigger"
	"github.com/Faultbox/platformer-core/pkg/math"
)

// Character is an actor together with its animation.
type Character struct {
	Name   string
	Actor  *actor.Actor
	Anim   *anim.Controller
	Sprite *sprite.Player

	// ContactDamage hurts the player on touch.
	ContactDamage float32
	// Stompable characters die when the player lands on them from above.
	Stompable bool

	prefix string
}

// ActorOptions describes a character to add.
type ActorOptions struct {
	Name      string
	Position  math.Vec2
	Size      math.Vec2
	Poly      []math.Vec2
	Config    config.ActorConfig
	FaceLeft  bool
	Prefix    string
	Overrides map[anim.State]string

	// Player characters are driven by input. Others walk until turned.
	Player        bool
	ContactDamage float32
	Stompable     bool
}

// Template creates a spawned object at pos, facing toward. It returns the
// *Character or *trigger.Trigger it added to the world.
type Template func(w *World, pos, toward math.Vec2) (any, error)

type spawnedObject struct {
	actor   entity.Handle
	trigger entity.Handle
}

// AddActor creates a character and starts its animation.
func (w *World) AddActor(opts ActorOptions) *Character {
	body := scene.NewBody(opts.Position, opts.Size, opts.Poly)
	body.FlipX = opts.FaceLeft
	a := actor.New(body, opts.Config, w)

	c := &Character{
		Name:          opts.Name,
		Actor:         a,
		Sprite:        sprite.NewPlayer(w.clips),
		ContactDamage: opts.ContactDamage,
		Stompable:     opts.Stompable,
		prefix:        opts.Prefix,
	}
	c.Anim = anim.New(a, anim.Options{
		Config:    w.cfg.Animation,
		Prefix:    opts.Prefix,
		Overrides: opts.Overrides,
		Library:   w.clips,
		Player:    c.Sprite,
		Clock:     w,
		Sounds:    w.sounds,
		Listener:  w.camera,
		Rand:      w.rng,
	})

	a.Handle = w.actors.Add(c)
	w.space.Add(body, a)

	if opts.Player {
		w.attachPlayer(c)
	} else {
		ai := actor.NewAIController(a)
		a.HitWall.AddListener(func(n math.Vec2) {
			if n.X*ai.Direction().X < 0 {
				ai.Turn()
			}
		})
	}

	c.Anim.Start()
	w.log.Debug("actor added",
		zap.String("name", c.Name),
		zap.Stringer("handle", a.Handle),
		zap.Bool("player", opts.Player))
	return c
}

func (w *World) attachPlayer(c *Character) {
	if w.player != nil {
		w.log.Warn("replacing player", zap.String("old", w.player.Name), zap.String("new", c.Name))
	}
	w.player = c
	a := c.Actor
	actor.NewPlayerController(a)

	c.Anim.Falling = func(*actor.Actor) {
		w.AddScore(w.cfg.Session.FallScore)
	}
	// Dying throws the player up before the fall off screen.
	a.Died.AddListener(func(e actor.DamageEvent) {
		e.Actor.Body.Velocity.Y = -e.Actor.Config.JumpForce
	})
	a.Respawned.AddListener(func(*actor.Actor) {
		w.loadCheckpoint()
	})
	a.Landed.AddListener(func(*actor.Actor) {
		w.playSound(c.prefix + "LandSound")
	})
	w.camera.SnapTo(a.Body.Position)
}

// Character returns the character behind an actor handle.
func (w *World) Character(h entity.Handle) (*Character, bool) {
	return w.actors.Get(h)
}

// Characters returns the live characters in registration order.
func (w *World) Characters() []*Character {
	out := make([]*Character, 0, w.actors.Count())
	w.actors.Each(func(_ entity.Handle, c *Character) { out = append(out, c) })
	return out
}

// RemoveActor implements actor.World. The actor goes away at the end of the tick.
func (w *World) RemoveActor(a *actor.Actor) {
	for _, g := range w.pendingGone {
		if g == a {
			return
		}
	}
	w.pendingGone = append(w.pendingGone, a)
}

func (w *World) flushRemovals() {
	for _, a := range w.pendingGone {
		w.removeActorNow(a)
	}
	w.pendingGone = w.pendingGone[:0]
}

func (w *World) removeActorNow(a *actor.Actor) {
	c, ok := w.actors.Get(a.Handle)
	if !ok {
		return
	}
	if g, ok := a.Ground(); ok {
		g.ActorLeft(a)
	}
	w.triggers.Each(func(_ entity.Handle, t *trigger.Trigger) {
		if t.Contains(a) {
			t.Leave(a)
		}
	})
	c.Anim.Stop()
	w.space.Remove(a.Body)
	w.actors.Remove(a.Handle)
	if w.player == c {
		w.player = nil
	}
	w.log.Debug("actor removed", zap.String("name", c.Name), zap.Stringer("handle", a.Handle))
}

// AddPlatform registers a platform over body with the given behaviors.
func (w *World) AddPlatform(body *scene.Body, opts platform.Options, behaviors ...any) *platform.Platform {
	p := platform.New(body, opts)
	for _, b := range behaviors {
		p.AddBehavior(b)
	}
	p.Handle = w.platforms.Add(p)
	w.space.Add(body, p)
	return p
}

// PlatformSprite returns the sprite player of a platform, creating it on first use.
func (w *World) PlatformSprite(p *platform.Platform) *sprite.Player {
	sp, ok := w.platformSprites[p]
	if !ok {
		sp = sprite.NewPlayer(w.clips)
		w.platformSprites[p] = sp
	}
	return sp
}

// Platforms returns the live platforms in registration order.
func (w *World) Platforms() []*platform.Platform {
	out := make([]*platform.Platform, 0, w.platforms.Count())
	w.platforms.Each(func(_ entity.Handle, p *platform.Platform) { out = append(out, p) })
	return out
}

// RemovePlatform implements platform.Host. Riders lose their ground.
func (w *World) RemovePlatform(p *platform.Platform) {
	for _, r := range p.Holding() {
		p.ActorLeft(r)
	}
	p.Close()
	w.space.Remove(p.Body)
	w.platforms.Remove(p.Handle)
	delete(w.platformSprites, p)
}

// AddTrigger registers a trigger over body with the given behaviors.
func (w *World) AddTrigger(body *scene.Body, behaviors ...any) *trigger.Trigger {
	t := trigger.New(body)
	for _, b := range behaviors {
		t.AddBehavior(b)
	}
	w.insertTrigger(t)
	return t
}

func (w *World) insertTrigger(t *trigger.Trigger) {
	t.Handle = w.triggers.Add(t)
	w.space.Add(t.Body, t)
}

func (w *World) removeTrigger(t *trigger.Trigger) {
	t.Clear()
	w.space.Remove(t.Body)
	w.triggers.Remove(t.Handle)
}

// Trigger resolves a trigger handle.
func (w *World) Trigger(h entity.Handle) (*trigger.Trigger, bool) {
	return w.triggers.Get(h)
}

// Triggers returns the live triggers in registration order.
func (w *World) Triggers() []*trigger.Trigger {
	out := make([]*trigger.Trigger, 0, w.triggers.Count())
	w.triggers.Each(func(_ entity.Handle, t *trigger.Trigger) { out = append(out, t) })
	return out
}

// Collected implements trigger.Collector. Collected items come back when a
// checkpoint load drops them from the inventory.
func (w *World) Collected(t *trigger.Trigger) {
	w.collected[t.Handle.ID()] = t
}

// AddSpawnPoint registers a spawn point that produces template objects.
func (w *World) AddSpawnPoint(template string, pos math.Vec2, cfg config.SpawnConfig) *spawn.Point {
	p := spawn.NewPoint(template, pos, cfg, w)
	w.points = append(w.points, p)
	return p
}

// SpawnPoints returns the spawn points in registration order.
func (w *World) SpawnPoints() []*spawn.Point {
	return w.points
}

// RegisterTemplate makes a template available to spawn points.
func (w *World) RegisterTemplate(name string, t Template) {
	w.templates[name] = t
}

// Spawn implements spawn.Host.
func (w *World) Spawn(template string, pos, toward math.Vec2) (entity.ID, error) {
	t, ok := w.templates[template]
	if !ok {
		return 0, fmt.Errorf("%w: %s", spawn.ErrUnknownTemplate, template)
	}
	obj, err := t(w, pos, toward)
	if err != nil {
		return 0, fmt.Errorf("spawning %s: %w", template, err)
	}

	var ref spawnedObject
	switch o := obj.(type) {
	case *Character:
		ref.actor = o.Actor.Handle
	case *trigger.Trigger:
		ref.trigger = o.Handle
	default:
		return 0, fmt.Errorf("template %s produced %T", template, obj)
	}
	w.nextSpawnID++
	w.spawned[w.nextSpawnID] = ref
	return w.nextSpawnID, nil
}

// Despawn implements spawn.Host.
func (w *World) Despawn(id entity.ID) {
	ref, ok := w.spawned[id]
	if !ok {
		return
	}
	delete(w.spawned, id)
	if c, ok := w.actors.Get(ref.actor); ok {
		w.removeActorNow(c.Actor)
	}
	if t, ok := w.triggers.Get(ref.trigger); ok {
		w.removeTrigger(t)
	}
}

// Position implements spawn.Host. Objects that left the world are forgotten.
func (w *World) Position(id entity.ID) (math.Vec2, bool) {
	ref, ok := w.spawned[id]
	if !ok {
		return math.Vec2{}, false
	}
	if c, ok := w.actors.Get(ref.actor); ok {
		return c.Actor.Body.Position, true
	}
	if t, ok := w.triggers.Get(ref.trigger); ok {
		return t.Body.Position, true
	}
	delete(w.spawned, id)
	return math.Vec2{}, false
}

// SaveCheckpoint implements trigger.CheckpointSaver.
func (w *World) SaveCheckpoint() {
	w.checkpoint.Save(w.points, w.actorList())
}

func (w *World) loadCheckpoint() {
	dropped := w.checkpoint.Load(w.points, w.actorList())
	for _, id := range dropped {
		t, ok := w.collected[id]
		if !ok {
			continue
		}
		delete(w.collected, id)
		t.Restore()
		w.insertTrigger(t)
	}
}

func (w *World) actorList() []*actor.Actor {
	out := make([]*actor.Actor, 0, w.actors.Count())
	w.actors.Each(func(_ entity.Handle, c *Character) { out = append(out, c.Actor) })
	return out
}

// HandleInput routes key events to the player.
func (w *World) HandleInput(events []input.Event) {
	if w.player == nil {
		return
	}
	pc, ok := w.player.Actor.Controller.(*actor.PlayerController)
	if !ok {
		return
	}
	for _, e := range events {
		k, ok := actor.ParseKey(e.Key)
		if !ok {
			continue
		}
		switch e.Type {
		case input.EventKeyDown:
			pc.Press(k)
		case input.EventKeyUp:
			pc.Release(k)
		}
	}
}

func (w *World) playSound(name string) {
	if !w.cfg.Animation.PlaySounds || !w.sounds.Has(name) {
		return
	}
	w.sounds.Play(name, 1)
}
