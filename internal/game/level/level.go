// Package level loads level documents and builds worlds from them.
package level

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/platformer-core/internal/engine/input"
	"github.com/Faultbox/platformer-core/internal/engine/sprite"
	"github.com/Faultbox/platformer-core/internal/game/anim"
	"github.com/Faultbox/platformer-core/pkg/math"
)

// demoLevel is the level used when no path is configured.
//
//go:embed demo.yaml
var demoLevel []byte

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid level")

// Document is a level file.
type Document struct {
	Name   string `yaml:"name"`
	Bounds Bounds `yaml:"bounds"`

	Clips     []sprite.Clip            `yaml:"clips"`
	Templates map[string]ActorTemplate `yaml:"templates"`

	Platforms   []PlatformSpec   `yaml:"platforms"`
	Ladders     []Area           `yaml:"ladders"`
	DamageAreas []DamageArea     `yaml:"damage_areas"`
	TurnZones   []Area           `yaml:"turn_zones"`
	Pickups     []PickupSpec     `yaml:"pickups"`
	SpawnPoints []SpawnPointSpec `yaml:"spawn_points"`
	Actors      []ActorSpec      `yaml:"actors"`

	// Scroller, when set, raises the scrolling platforms and spawns more.
	Scroller *ScrollerSpec `yaml:"scroller"`

	// Script is the input played by the headless runner.
	Script []input.Step `yaml:"script"`
}

// Bounds are the world limits.
type Bounds struct {
	Min math.Vec2 `yaml:"min"`
	Max math.Vec2 `yaml:"max"`
}

// ActorTemplate describes a kind of actor. Actor overrides the configured
// actor tuning field by field.
type ActorTemplate struct {
	Size          math.Vec2         `yaml:"size"`
	Poly          []math.Vec2       `yaml:"poly"`
	Prefix        string            `yaml:"prefix"`
	Overrides     map[string]string `yaml:"overrides"`
	ContactDamage float32           `yaml:"contact_damage"`
	Stompable     bool              `yaml:"stompable"`
	Actor         yaml.Node         `yaml:"actor"`
}

// PlatformSpec places a platform. Trampoline and Falling override the
// configured defaults and are only attached when present.
type PlatformSpec struct {
	Position math.Vec2   `yaml:"position"`
	Size     math.Vec2   `yaml:"size"`
	Poly     []math.Vec2 `yaml:"poly"`
	Rotation float32     `yaml:"rotation"`
	Velocity math.Vec2   `yaml:"velocity"`
	OneWay   bool        `yaml:"one_way"`
	Friction *float32    `yaml:"friction"`
	Force    *float32    `yaml:"force"`

	Trampoline yaml.Node `yaml:"trampoline"`
	Falling    yaml.Node `yaml:"falling"`

	FallAnimation    string `yaml:"fall_animation"`
	RecoverAnimation string `yaml:"recover_animation"`

	// Scroll makes the platform rise with the scroller.
	Scroll bool `yaml:"scroll"`
}

// ScrollerSpec describes the platforms spawned below the view. Safe and
// Falling are templates; their positions are ignored.
type ScrollerSpec struct {
	SpawnY  float32      `yaml:"spawn_y"`
	MinX    float32      `yaml:"min_x"`
	MaxX    float32      `yaml:"max_x"`
	Safe    PlatformSpec `yaml:"safe"`
	Falling PlatformSpec `yaml:"falling"`
}

// Area is a rectangle.
type Area struct {
	Position math.Vec2 `yaml:"position"`
	Size     math.Vec2 `yaml:"size"`
}

// DamageArea hurts actors inside it.
type DamageArea struct {
	Area       `yaml:",inline"`
	Amount     float32       `yaml:"amount"`
	Interval   time.Duration `yaml:"interval"`
	PlayerOnly bool          `yaml:"player_only"`
}

// Pickup kinds.
const (
	PickupItem       = "item"
	PickupHeal       = "heal"
	PickupCheckpoint = "checkpoint"
)

// PickupSpec places a pickup.
type PickupSpec struct {
	Area      `yaml:",inline"`
	Kind      string  `yaml:"kind"`
	Amount    float32 `yaml:"amount"`
	Sound     string  `yaml:"sound"`
	Inventory bool    `yaml:"inventory"`
}

// SpawnPointSpec places a spawn point. Spawn overrides the configured defaults.
type SpawnPointSpec struct {
	Template string    `yaml:"template"`
	Position math.Vec2 `yaml:"position"`
	Spawn    yaml.Node `yaml:"spawn"`
}

// ActorSpec places an actor built from a template.
type ActorSpec struct {
	Template string    `yaml:"template"`
	Position math.Vec2 `yaml:"position"`
	FaceLeft bool      `yaml:"face_left"`
	Player   bool      `yaml:"player"`
}

// Load reads the level at path. An empty path loads the built-in demo level.
func Load(path string) (*Document, error) {
	if path == "" {
		return Parse(demoLevel)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading level: %w", err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("level %s: %w", path, err)
	}
	return doc, nil
}

// Parse decodes and validates a level document. Unknown fields are errors.
func Parse(data []byte) (*Document, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding level: %w", err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate checks references and geometry.
func (d *Document) Validate() error {
	if d.Bounds.Min.X >= d.Bounds.Max.X || d.Bounds.Min.Y >= d.Bounds.Max.Y {
		return fmt.Errorf("%w: empty bounds %v..%v", ErrInvalid, d.Bounds.Min, d.Bounds.Max)
	}

	for name, t := range d.Templates {
		if err := checkSize(t.Size, t.Poly); err != nil {
			return fmt.Errorf("%w: template %s: %v", ErrInvalid, name, err)
		}
		if _, err := t.overrides(); err != nil {
			return fmt.Errorf("%w: template %s: %v", ErrInvalid, name, err)
		}
	}

	if err := d.checkClips(); err != nil {
		return err
	}

	for i, p := range d.Platforms {
		if err := checkSize(p.Size, p.Poly); err != nil {
			return fmt.Errorf("%w: platform %d: %v", ErrInvalid, i, err)
		}
		if p.Scroll && d.Scroller == nil {
			return fmt.Errorf("%w: platform %d scrolls without a scroller", ErrInvalid, i)
		}
	}
	if err := d.Scroller.validate(); err != nil {
		return fmt.Errorf("%w: scroller: %v", ErrInvalid, err)
	}

	for i, p := range d.Pickups {
		switch p.Kind {
		case PickupItem, PickupHeal, PickupCheckpoint:
		default:
			return fmt.Errorf("%w: pickup %d: unknown kind %q", ErrInvalid, i, p.Kind)
		}
	}

	players := 0
	for i, a := range d.Actors {
		if _, ok := d.Templates[a.Template]; !ok {
			return fmt.Errorf("%w: actor %d: unknown template %q", ErrInvalid, i, a.Template)
		}
		if a.Player {
			players++
		}
	}
	if players > 1 {
		return fmt.Errorf("%w: %d player actors", ErrInvalid, players)
	}
	return nil
}

func (s *ScrollerSpec) validate() error {
	if s == nil {
		return nil
	}
	if s.MinX > s.MaxX {
		return fmt.Errorf("min_x %v above max_x %v", s.MinX, s.MaxX)
	}
	if err := checkSize(s.Safe.Size, s.Safe.Poly); err != nil {
		return fmt.Errorf("safe: %v", err)
	}
	if err := checkSize(s.Falling.Size, s.Falling.Poly); err != nil {
		return fmt.Errorf("falling: %v", err)
	}
	if s.Falling.Falling.Kind == 0 {
		return fmt.Errorf("falling platform has no falling section")
	}
	return nil
}

// checkClips rejects looping clips on states that wait for their clip to end.
func (d *Document) checkClips() error {
	waited := make(map[string]bool)
	for _, t := range d.Templates {
		overrides, _ := t.overrides()
		for s, res := range overrides {
			if anim.WaitsForClip(s) {
				waited[res] = true
			}
		}
	}
	for _, c := range d.Clips {
		if c.Loop && (anim.OneShot(c.Name) || waited[c.Name]) {
			return fmt.Errorf("%w: clip %s plays once and cannot loop", ErrInvalid, c.Name)
		}
	}
	return nil
}

func checkSize(size math.Vec2, poly []math.Vec2) error {
	if size.X <= 0 || size.Y <= 0 {
		return fmt.Errorf("size %v must be positive", size)
	}
	if len(poly) != 0 && len(poly) < 3 {
		return fmt.Errorf("poly needs at least 3 points, got %d", len(poly))
	}
	return nil
}

func (t ActorTemplate) overrides() (map[anim.State]string, error) {
	if len(t.Overrides) == 0 {
		return nil, nil
	}
	out := make(map[anim.State]string, len(t.Overrides))
	for name, res := range t.Overrides {
		s, ok := anim.ParseState(name)
		if !ok {
			return nil, fmt.Errorf("unknown animation state %q", name)
		}
		out[s] = res
	}
	return out, nil
}

// overlay decodes node over dst. It reports false when the node is absent.
func overlay(node *yaml.Node, dst any) (bool, error) {
	if node.Kind == 0 {
		return false, nil
	}
	if err := node.Decode(dst); err != nil {
		return true, err
	}
	return true, nil
}
