package level

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/platformer-core/internal/config"
	"github.com/Faultbox/platformer-core/internal/engine/audio"
	"github.com/Faultbox/platformer-core/internal/engine/scene"
	"github.com/Faultbox/platformer-core/internal/engine/sprite"
	"github.com/Faultbox/platformer-core/internal/game/platform"
	"github.com/Faultbox/platformer-core/internal/game/trigger"
	"github.com/Faultbox/platformer-core/internal/game/world"
	"github.com/Faultbox/platformer-core/internal/logger"
	"github.com/Faultbox/platformer-core/pkg/math"
)

// NewWorld creates a world for doc and builds it. Restarting the world
// builds the document again. sounds may be nil.
func NewWorld(cfg *config.Config, doc *Document, sounds *audio.Manager) (*world.World, error) {
	w := world.New(cfg, doc.Bounds.Min, doc.Bounds.Max, sprite.NewLibrary(doc.Clips...), sounds)
	w.SetLoader(func(w *world.World) error { return Build(w, doc) })
	if err := Build(w, doc); err != nil {
		return nil, err
	}
	return w, nil
}

// Build adds every object of doc to w and saves the initial checkpoint.
func Build(w *world.World, doc *Document) error {
	cfg := w.Config()

	for name, t := range doc.Templates {
		tmpl := t
		w.RegisterTemplate(name, func(w *world.World, pos, toward math.Vec2) (any, error) {
			return tmpl.add(w, name, pos, toward.X < pos.X, false)
		})
	}

	if sc := doc.Scroller; sc != nil {
		w.StartScroller(world.ScrollerOptions{
			SpawnY: sc.SpawnY,
			MinX:   sc.MinX,
			MaxX:   sc.MaxX,
			Spawn:  sc.spawn,
		})
	}

	for i, ps := range doc.Platforms {
		p, err := addPlatform(w, cfg, ps)
		if err != nil {
			return fmt.Errorf("platform %d: %w", i, err)
		}
		if ps.Scroll {
			w.Scroll(p)
		}
	}

	for _, l := range doc.Ladders {
		w.AddTrigger(l.body(), &trigger.Ladder{})
	}
	for _, d := range doc.DamageAreas {
		w.AddTrigger(d.body(), trigger.NewAreaDamage(d.Amount, d.Interval, d.PlayerOnly, w))
	}
	for _, z := range doc.TurnZones {
		w.AddTrigger(z.body(), trigger.EnemyTurn{})
	}
	for _, p := range doc.Pickups {
		addPickup(w, p)
	}

	for i, sp := range doc.SpawnPoints {
		sc := cfg.Spawn
		if _, err := overlay(&sp.Spawn, &sc); err != nil {
			return fmt.Errorf("spawn point %d: %w", i, err)
		}
		w.AddSpawnPoint(sp.Template, sp.Position, sc)
	}

	for i, a := range doc.Actors {
		tmpl := doc.Templates[a.Template]
		if _, err := tmpl.add(w, a.Template, a.Position, a.FaceLeft, a.Player); err != nil {
			return fmt.Errorf("actor %d: %w", i, err)
		}
	}

	w.SaveCheckpoint()
	logger.Named("level").Info("level built",
		zap.String("name", doc.Name),
		zap.Int("platforms", len(doc.Platforms)),
		zap.Int("actors", len(doc.Actors)),
		zap.Int("spawn_points", len(doc.SpawnPoints)))
	return nil
}

func (t ActorTemplate) add(w *world.World, name string, pos math.Vec2, faceLeft, player bool) (*world.Character, error) {
	ac := w.Config().Actor
	if _, err := overlay(&t.Actor, &ac); err != nil {
		return nil, fmt.Errorf("template %s: actor config: %w", name, err)
	}
	overrides, err := t.overrides()
	if err != nil {
		return nil, fmt.Errorf("template %s: %w", name, err)
	}
	return w.AddActor(world.ActorOptions{
		Name:          name,
		Position:      pos,
		Size:          t.Size,
		Poly:          t.Poly,
		Config:        ac,
		FaceLeft:      faceLeft,
		Prefix:        t.Prefix,
		Overrides:     overrides,
		Player:        player,
		ContactDamage: t.ContactDamage,
		Stompable:     t.Stompable,
	}), nil
}

// spawn adds a copy of the safe or falling template at pos.
func (s *ScrollerSpec) spawn(w *world.World, pos math.Vec2, falling bool) (*platform.Platform, error) {
	ps := s.Safe
	if falling {
		ps = s.Falling
	}
	ps.Position = pos
	return addPlatform(w, w.Config(), ps)
}

func addPlatform(w *world.World, cfg *config.Config, ps PlatformSpec) (*platform.Platform, error) {
	opts := platform.Options{
		OneWay:   ps.OneWay,
		Friction: cfg.Platform.Friction,
		Force:    cfg.Platform.Force,
	}
	if ps.Friction != nil {
		opts.Friction = *ps.Friction
	}
	if ps.Force != nil {
		opts.Force = *ps.Force
	}

	body := scene.NewBody(ps.Position, ps.Size, ps.Poly)
	body.Rotation = ps.Rotation
	body.Velocity = ps.Velocity
	p := w.AddPlatform(body, opts)

	tc := cfg.Trampoline
	ok, err := overlay(&ps.Trampoline, &tc)
	if err != nil {
		return nil, fmt.Errorf("trampoline: %w", err)
	}
	if ok {
		p.AddBehavior(platform.NewTrampoline(tc))
	}

	fc := cfg.FallingPlatform
	ok, err = overlay(&ps.Falling, &fc)
	if err != nil {
		return nil, fmt.Errorf("falling: %w", err)
	}
	if ok {
		f := platform.NewFallingPlatform(fc, w, w.PlatformSprite(p))
		f.FallAnimation = ps.FallAnimation
		f.RecoverAnimation = ps.RecoverAnimation
		p.AddBehavior(f)
	}
	return p, nil
}

func addPickup(w *world.World, pk PickupSpec) {
	behaviors := []any{trigger.NewPickup(pk.Inventory, w)}
	switch pk.Kind {
	case PickupHeal:
		behaviors = append(behaviors, &trigger.HealPickup{Amount: pk.Amount, Sound: pk.Sound, Sounds: w.Sounds()})
	case PickupCheckpoint:
		behaviors = append(behaviors, &trigger.CheckpointPickup{Saver: w, Sound: pk.Sound, Sounds: w.Sounds()})
	}
	w.AddTrigger(pk.body(), behaviors...)
}

func (a Area) body() *scene.Body {
	return scene.NewBody(a.Position, a.Size, nil)
}
