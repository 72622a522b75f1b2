package anim

import (
	"bytes"
	"encoding/binary"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/platformer-core/internal/config"
	"github.com/Faultbox/platformer-core/internal/engine/audio"
	"github.com/Faultbox/platformer-core/internal/engine/scene"
	"github.com/Faultbox/platformer-core/internal/engine/sprite"
	"github.com/Faultbox/platformer-core/internal/game/actor"
	"github.com/Faultbox/platformer-core/internal/game/entity"
	"github.com/Faultbox/platformer-core/internal/game/platform"
	"github.com/Faultbox/platformer-core/pkg/math"
)

const testTick = 32 * time.Millisecond

type testWorld struct {
	sched     *scene.Scheduler
	space     *scene.Space
	platforms *entity.Registry[*platform.Platform]
	ladders   *entity.Registry[*scene.Body]
}

func newTestWorld() *testWorld {
	w := &testWorld{
		sched:     scene.NewScheduler(),
		space:     scene.NewSpace(math.Vec2{X: -500, Y: -500}, math.Vec2{X: 500, Y: 500}, 16),
		platforms: entity.NewRegistry[*platform.Platform](),
		ladders:   entity.NewRegistry[*scene.Body](),
	}
	body := scene.NewBody(math.Vec2{Y: 10}, math.Vec2{X: 200, Y: 4}, nil)
	p := platform.New(body, platform.Options{Friction: 1})
	p.Handle = w.platforms.Add(p)
	w.space.Add(body, p)
	return w
}

func (w *testWorld) Now() time.Duration         { return w.sched.Now() }
func (w *testWorld) TickSeconds() float32       { return float32(testTick.Seconds()) }
func (w *testWorld) RemoveActor(a *actor.Actor) {}
func (w *testWorld) GameOver(a *actor.Actor)    {}
func (w *testWorld) After(d time.Duration, fn func()) *scene.Timer {
	return w.sched.After(d, fn)
}

func (w *testWorld) PlatformsIn(min, max math.Vec2, exclude any) []*platform.Platform {
	var out []*platform.Platform
	for _, o := range w.space.Query(min, max, exclude) {
		if p, ok := o.(*platform.Platform); ok {
			out = append(out, p)
		}
	}
	return out
}

func (w *testWorld) Platform(h entity.Handle) (*platform.Platform, bool) { return w.platforms.Get(h) }
func (w *testWorld) Ladder(h entity.Handle) (*scene.Body, bool)          { return w.ladders.Get(h) }

// countingBank records every sound played through it.
type countingBank struct {
	*audio.Manager
	played []string
}

func (b *countingBank) Play(name string, volume float32) *audio.Voice {
	b.played = append(b.played, name)
	return b.Manager.Play(name, volume)
}

// makeWAV builds a 16-bit mono PCM WAV with n silent samples.
func makeWAV(n int) []byte {
	var b bytes.Buffer
	dataLen := uint32(n * 2)
	b.WriteString("RIFF")
	binary.Write(&b, binary.LittleEndian, uint32(36)+dataLen)
	b.WriteString("WAVEfmt ")
	binary.Write(&b, binary.LittleEndian, uint32(16))
	binary.Write(&b, binary.LittleEndian, uint16(1))
	binary.Write(&b, binary.LittleEndian, uint16(1))
	binary.Write(&b, binary.LittleEndian, uint32(44100))
	binary.Write(&b, binary.LittleEndian, uint32(88200))
	binary.Write(&b, binary.LittleEndian, uint16(2))
	binary.Write(&b, binary.LittleEndian, uint16(16))
	b.WriteString("data")
	binary.Write(&b, binary.LittleEndian, dataLen)
	b.Write(make([]byte, dataLen))
	return b.Bytes()
}

func heroClips(extra ...sprite.Clip) *sprite.Library {
	clips := []sprite.Clip{
		{Name: "HeroIdleAnimation", Frames: 2, Interval: 100 * time.Millisecond, Loop: true},
		{Name: "HeroRunAnimation", Frames: 4, Interval: 50 * time.Millisecond, Loop: true},
		{Name: "HeroJumpAnimation", Frames: 1},
		{Name: "HeroFallAnimation", Frames: 1},
		{Name: "HeroActionAnimation", Frames: 2, Interval: 100 * time.Millisecond},
		{Name: "HeroDamageAnimation", Frames: 2, Interval: 100 * time.Millisecond},
		{Name: "HeroDieAnimation", Frames: 2, Interval: 100 * time.Millisecond},
	}
	return sprite.NewLibrary(append(clips, extra...)...)
}

type fixture struct {
	w      *testWorld
	a      *actor.Actor
	c      *Controller
	player *sprite.Player
}

// newFixture puts a 4x8 actor on the floor, feet at y = 8.
func newFixture(t *testing.T, lib *sprite.Library, sounds SoundBank) *fixture {
	t.Helper()
	w := newTestWorld()
	a := actor.New(scene.NewBody(math.Vec2{Y: 4}, math.Vec2{X: 4, Y: 8}, nil), config.DefaultActor(), w)
	a.Handle = entity.FromID(1)
	actor.NewPlayerController(a)

	player := sprite.NewPlayer(lib)
	c := New(a, Options{
		Config:  config.Default().Animation,
		Prefix:  "Hero",
		Library: lib,
		Player:  player,
		Clock:   w.sched,
		Sounds:  sounds,
		Rand:    rand.New(rand.NewSource(7)),
	})
	c.Start()
	return &fixture{w: w, a: a, c: c, player: player}
}

func (f *fixture) step() {
	f.a.ResolveGround()
	f.a.UpdatePhysics()
	f.c.Update()
	f.a.Body.Integrate(f.w.TickSeconds())
	f.player.Update(testTick)
	f.w.sched.Advance(testTick)
	f.w.space.SyncAll()
}

func (f *fixture) run(d time.Duration) {
	for end := f.w.sched.Now() + d; f.w.sched.Now() < end; {
		f.step()
	}
}

func (f *fixture) input() *actor.PlayerController {
	return f.a.Controller.(*actor.PlayerController)
}

func TestFallbackResolution(t *testing.T) {
	f := newFixture(t, heroClips(), nil)

	assert.Equal(t, "HeroJumpAnimation", f.c.Resource(RunJump))
	assert.Equal(t, "HeroJumpAnimation", f.c.Resource(ClimbJump))
	assert.Equal(t, "HeroFallAnimation", f.c.Resource(RunFall))

	assert.False(t, f.c.Registered(Slide))
	assert.False(t, f.c.Registered(Glide))
	assert.False(t, f.c.SetState(Slide))
	assert.Equal(t, Idle, f.c.Current())
	assert.False(t, f.c.SetAnimationState("nonsense"))
}

func TestOwnAnimationBeatsFallback(t *testing.T) {
	f := newFixture(t, heroClips(sprite.Clip{Name: "HeroRunJumpAnimation", Frames: 1}), nil)
	assert.Equal(t, "HeroRunJumpAnimation", f.c.Resource(RunJump))
}

func TestOverride(t *testing.T) {
	w := newTestWorld()
	lib := heroClips(sprite.Clip{Name: "HeroSpazAnimation", Frames: 1})
	a := actor.New(scene.NewBody(math.Vec2{Y: 4}, math.Vec2{X: 4, Y: 8}, nil), config.DefaultActor(), w)
	c := New(a, Options{Prefix: "Hero", Library: lib, Overrides: map[State]string{Damage: "HeroSpazAnimation"}})

	assert.Equal(t, "HeroSpazAnimation", c.Resource(Damage))

	c.Unregister(Damage)
	assert.False(t, c.Registered(Damage))
}

func TestUnregisteredStateIsInert(t *testing.T) {
	f := newFixture(t, heroClips(), nil)
	f.c.Unregister(Run)

	f.input().Press(actor.KeyRight)
	f.run(100 * time.Millisecond)
	assert.Equal(t, Idle, f.c.Current())
}

func TestIdleToAction(t *testing.T) {
	f := newFixture(t, heroClips(), nil)
	require.Equal(t, Idle, f.c.Current())

	f.run(time.Second)
	assert.Equal(t, Idle, f.c.Current())
	assert.True(t, f.a.OnGround())

	f.run(300 * time.Millisecond)
	assert.Equal(t, Action, f.c.Current())

	// The fidget plays once, then idle starts over.
	f.run(300 * time.Millisecond)
	assert.Equal(t, Idle, f.c.Current())
}

func TestIdleToRunOnInput(t *testing.T) {
	f := newFixture(t, heroClips(), nil)

	f.run(time.Second)
	f.input().Press(actor.KeyRight)
	f.step()
	assert.Equal(t, Run, f.c.Current())

	f.run(time.Second)
	assert.Equal(t, Run, f.c.Current())

	f.input().Release(actor.KeyRight)
	f.step()
	assert.Equal(t, Idle, f.c.Current())
}

func TestJumpAndLand(t *testing.T) {
	f := newFixture(t, heroClips(), nil)
	f.run(100 * time.Millisecond)

	f.input().Press(actor.KeyJump)
	assert.Equal(t, Jump, f.c.Current())
	f.input().Release(actor.KeyJump)

	f.step()
	require.False(t, f.a.OnGround())

	sawFall := false
	for i := 0; i < 200 && !f.a.OnGround(); i++ {
		f.step()
		if f.c.Current() == Fall {
			sawFall = true
		}
	}
	assert.True(t, sawFall)
	f.step()
	assert.Equal(t, Idle, f.c.Current())
}

func TestRunJumpFallsBackToJump(t *testing.T) {
	f := newFixture(t, heroClips(), nil)
	f.input().Press(actor.KeyRight)
	f.run(100 * time.Millisecond)
	require.Equal(t, Run, f.c.Current())

	f.input().Press(actor.KeyJump)
	assert.Equal(t, RunJump, f.c.Current())
	assert.Equal(t, "HeroJumpAnimation", f.player.Animation())
}

func TestTransitionAnimation(t *testing.T) {
	lib := heroClips(sprite.Clip{Name: "HeroIdle_to_RunAnimation", Frames: 2, Interval: 50 * time.Millisecond})
	f := newFixture(t, lib, nil)

	f.input().Press(actor.KeyRight)
	f.step()
	require.Equal(t, Run, f.c.Current())
	assert.True(t, f.c.Transitioning())
	assert.Equal(t, "HeroIdle_to_RunAnimation", f.player.Animation())

	f.run(200 * time.Millisecond)
	assert.False(t, f.c.Transitioning())
	assert.Equal(t, "HeroRunAnimation", f.player.Animation())
}

func TestTransitionsDisabled(t *testing.T) {
	lib := heroClips(sprite.Clip{Name: "HeroIdle_to_RunAnimation", Frames: 2})
	f := newFixture(t, lib, nil)
	f.c.cfg.AllowTransitions = false

	f.input().Press(actor.KeyRight)
	f.step()
	assert.False(t, f.c.Transitioning())
	assert.Equal(t, "HeroRunAnimation", f.player.Animation())
}

func TestFacing(t *testing.T) {
	f := newFixture(t, heroClips(), nil)

	f.input().Press(actor.KeyLeft)
	f.step()
	assert.True(t, f.a.Body.FlipX)

	f.input().Release(actor.KeyLeft)
	f.step()
	assert.True(t, f.a.Body.FlipX, "facing is kept without input")

	f.input().Press(actor.KeyRight)
	f.step()
	assert.False(t, f.a.Body.FlipX)
}

func TestSpawnSequence(t *testing.T) {
	lib := heroClips(sprite.Clip{Name: "HeroSpawnAnimation", Frames: 3, Interval: 50 * time.Millisecond})
	f := newFixture(t, lib, nil)

	assert.Equal(t, Spawn, f.c.Current())
	assert.False(t, f.a.Alive())
	assert.True(t, f.a.Spawning())

	f.run(300 * time.Millisecond)
	assert.True(t, f.a.Alive())
	assert.False(t, f.a.Spawning())
	assert.NotEqual(t, Spawn, f.c.Current())
}

func TestDeathAndRespawn(t *testing.T) {
	lib := heroClips(sprite.Clip{Name: "HeroSpawnAnimation", Frames: 2, Interval: 50 * time.Millisecond})
	f := newFixture(t, lib, nil)
	f.a.Config.HideOnDeath = true
	f.run(200 * time.Millisecond)
	require.True(t, f.a.Alive())

	f.a.Kill(nil)
	assert.Equal(t, Die, f.c.Current())

	f.run(time.Second)
	assert.False(t, f.a.Body.Visible, "hidden once the death animation ends")

	f.run(f.a.Config.SpawnTimeOut)
	f.run(200 * time.Millisecond)
	assert.True(t, f.a.Alive())
	assert.True(t, f.a.Body.Visible)
	assert.Equal(t, 2, f.a.Lives())
}

func TestDamageReturnsToIdle(t *testing.T) {
	f := newFixture(t, heroClips(), nil)
	f.run(100 * time.Millisecond)

	require.True(t, f.a.TakeDamage(10, nil, false, false))
	assert.Equal(t, Damage, f.c.Current())

	f.run(300 * time.Millisecond)
	assert.Equal(t, Idle, f.c.Current())
}

func TestFallingHook(t *testing.T) {
	f := newFixture(t, heroClips(), nil)
	f.a.Body.Position.Y = -200
	calls := 0
	f.c.Falling = func(a *actor.Actor) { calls++ }

	f.run(500 * time.Millisecond)
	assert.Equal(t, Fall, f.c.Current())
	assert.Greater(t, calls, 5)
}

func TestStepFrameSounds(t *testing.T) {
	lib := heroClips()
	lib.Add(sprite.Clip{Name: "HeroRunAnimation", Frames: 4, Interval: 50 * time.Millisecond, Loop: true, StepFrames: []int{1, 3}})
	bank := &countingBank{Manager: audio.New()}
	require.NoError(t, bank.Load("HeroRunSound", makeWAV(64), false))
	require.NoError(t, bank.Load("HeroJumpSound", makeWAV(64), false))

	f := newFixture(t, lib, bank)
	f.input().Press(actor.KeyRight)
	f.step()
	require.Equal(t, Run, f.c.Current())
	assert.Empty(t, bank.played, "step frame sounds do not play on enter")

	// Four frames at 50ms: frames 1 and 3 play a step each cycle.
	f.run(200 * time.Millisecond)
	assert.GreaterOrEqual(t, len(bank.played), 2)
	for _, name := range bank.played {
		assert.Equal(t, "HeroRunSound", name)
	}

	// Jump has no step frames, so its sound plays on enter.
	bank.played = nil
	f.input().Press(actor.KeyJump)
	assert.Equal(t, []string{"HeroJumpSound"}, bank.played)
}

func TestSoundVariants(t *testing.T) {
	bank := &countingBank{Manager: audio.New()}
	for _, n := range []string{"HeroJumpSound0", "HeroJumpSound1", "HeroJumpSound2"} {
		require.NoError(t, bank.Load(n, makeWAV(16), false))
	}
	f := newFixture(t, heroClips(), bank)

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		seen[f.c.findSound("HeroJumpAnimation")] = true
	}
	assert.Len(t, seen, 3)
	assert.Equal(t, "", f.c.findSound("HeroRunAnimation"))

	f.c.cfg.PlaySounds = false
	assert.Equal(t, "", f.c.findSound("HeroJumpAnimation"))
}

type fixedListener math.Vec2

func (l fixedListener) Position() math.Vec2 { return math.Vec2(l) }

func TestLoopingSoundVolumeFollowsListener(t *testing.T) {
	bank := &countingBank{Manager: audio.New()}
	require.NoError(t, bank.Load("HeroRunSound", makeWAV(64), true))

	listener := &fixedListener{}
	f := newFixture(t, heroClips(), bank)
	f.c.listener = listener

	f.input().Press(actor.KeyRight)
	f.step()
	v := f.c.Voice()
	require.NotNil(t, v)
	assert.True(t, v.Looping())
	assert.Equal(t, float32(1), v.Volume())

	*listener = fixedListener{X: f.a.Body.Position.X + 80, Y: f.a.Body.Position.Y}
	f.c.Update()
	assert.InDelta(t, 0.5, v.Volume(), 0.05)

	// Leaving the state stops the loop.
	f.input().Release(actor.KeyRight)
	f.step()
	assert.False(t, v.Playing())
}

func TestScaleVolume(t *testing.T) {
	tests := []struct {
		d, want float32
	}{
		{0, 1},
		{60, 1},
		{80, 0.5},
		{100, 0},
		{500, 0},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, ScaleVolume(tt.d, 60, 100), 1e-5, "distance %v", tt.d)
	}
	assert.Equal(t, float32(1), ScaleVolume(10, 50, 50))
	assert.Equal(t, float32(0), ScaleVolume(60, 50, 50))
}

func TestParseState(t *testing.T) {
	for s := Idle; s < stateCount; s++ {
		got, ok := ParseState(s.String())
		assert.True(t, ok)
		assert.Equal(t, s, got)
	}
	got, ok := ParseState("RunJump")
	assert.True(t, ok)
	assert.Equal(t, RunJump, got)
	assert.Equal(t, "RunJump", RunJump.resourceStem())
}

func TestOneShot(t *testing.T) {
	for _, name := range []string{
		"HeroActionAnimation", "HeroDamageAnimation", "DrillSpawnAnimation",
		"HeroDieAnimation", "HeroFall_to_IdleAnimation",
	} {
		assert.True(t, OneShot(name), name)
	}
	for _, name := range []string{
		"HeroIdleAnimation", "HeroRunAnimation", "HeroClimbIdleAnimation", "HeroAction", "",
	} {
		assert.False(t, OneShot(name), name)
	}
	assert.True(t, WaitsForClip(Die))
	assert.False(t, WaitsForClip(Glide))
}
