package actor

import (
	"math/rand"
	"testing"
	"time"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/platformer-core/internal/config"
	"github.com/Faultbox/platformer-core/internal/engine/scene"
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

	removed  []*Actor
	gameOver int
}

func newTestWorld() *testWorld {
	return &testWorld{
		sched:     scene.NewScheduler(),
		space:     scene.NewSpace(math.Vec2{X: -500, Y: -500}, math.Vec2{X: 500, Y: 500}, 16),
		platforms: entity.NewRegistry[*platform.Platform](),
		ladders:   entity.NewRegistry[*scene.Body](),
	}
}

func (w *testWorld) Now() time.Duration   { return w.sched.Now() }
func (w *testWorld) TickSeconds() float32 { return float32(testTick.Seconds()) }
func (w *testWorld) RemoveActor(a *Actor) { w.removed = append(w.removed, a) }
func (w *testWorld) GameOver(a *Actor)    { w.gameOver++ }
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

func (w *testWorld) Platform(h entity.Handle) (*platform.Platform, bool) {
	return w.platforms.Get(h)
}

func (w *testWorld) Ladder(h entity.Handle) (*scene.Body, bool) {
	return w.ladders.Get(h)
}

func (w *testWorld) addPlatform(pos, size math.Vec2, poly []math.Vec2, opts platform.Options) *platform.Platform {
	body := scene.NewBody(pos, size, poly)
	if opts.Friction == 0 {
		opts.Friction = 1
	}
	p := platform.New(body, opts)
	p.Handle = w.platforms.Add(p)
	w.space.Add(body, p)
	return p
}

func (w *testWorld) addLadder(pos, size math.Vec2) entity.Handle {
	return w.ladders.Add(scene.NewBody(pos, size, nil))
}

func (w *testWorld) step(actors ...*Actor) {
	for _, a := range actors {
		a.ResolveGround()
		a.UpdatePhysics()
	}
	for _, a := range actors {
		a.Body.Integrate(w.TickSeconds())
	}
	w.sched.Advance(testTick)
	w.space.SyncAll()
}

type fakeAnimator struct {
	state  string
	states []string
	accept bool
}

func (f *fakeAnimator) SetAnimationState(name string) bool {
	if !f.accept {
		return false
	}
	f.state = name
	f.states = append(f.states, name)
	return true
}

func (f *fakeAnimator) AnimationState() string { return f.state }

// A 4x8 actor: its ground mask bottom sits 4.05 below its position.
func newTestActor(w *testWorld, pos math.Vec2) *Actor {
	a := New(scene.NewBody(pos, math.Vec2{X: 4, Y: 8}, nil), config.DefaultActor(), w)
	a.Handle = entity.FromID(1)
	return a
}

// floor returns a wide solid platform whose top surface is at y = 8.
func floor(w *testWorld) *platform.Platform {
	return w.addPlatform(math.Vec2{Y: 10}, math.Vec2{X: 200, Y: 4}, nil, platform.Options{})
}

func settle(w *testWorld, a *Actor, ticks int) {
	for i := 0; i < ticks; i++ {
		w.step(a)
	}
}

func TestNewActorDefaults(t *testing.T) {
	w := newTestWorld()
	a := newTestActor(w, math.Vec2{})

	assert.True(t, a.Alive())
	assert.Equal(t, InAir, a.State())
	assert.Equal(t, float32(100), a.Health())
	assert.Equal(t, 3, a.Lives())
	assert.False(t, a.OnGround())

	min, max := a.Mask()
	assert.Equal(t, float32(-2), min.X)
	assert.InDelta(t, 4.05, max.Y, 1e-6)
}

func TestGroundSnapping(t *testing.T) {
	w := newTestWorld()
	p := floor(w)
	a := newTestActor(w, math.Vec2{Y: 8 - 4.05 - 0.5})

	a.ResolveGround()
	require.True(t, a.OnGround())
	assert.Equal(t, p.Handle, a.GroundHandle())
	assert.Equal(t, math.Up, a.GroundNormal())
	assert.True(t, p.Holds(a))

	c := a.PopCorrectionVelocity()
	rest := a.Body.Position.Y + c.Y*w.TickSeconds()
	assert.InDelta(t, 8-4.05, rest, 1e-4)
	assert.Zero(t, c.X)
}

func TestGroundSnappingAfterTick(t *testing.T) {
	w := newTestWorld()
	floor(w)
	a := newTestActor(w, math.Vec2{Y: 8 - 4.05 - 0.5})

	w.step(a)
	assert.Equal(t, OnGround, a.State())
	assert.InDelta(t, 8-4.05, a.Body.Position.Y, 1e-3)

	settle(w, a, 10)
	assert.True(t, a.OnGround())
	assert.InDelta(t, 8-4.05, a.Body.Position.Y, 1e-3)
}

func TestFallingLandsOnFloor(t *testing.T) {
	w := newTestWorld()
	floor(w)
	a := newTestActor(w, math.Vec2{Y: -40})

	landed := 0
	a.Landed.AddListener(func(*Actor) { landed++ })

	for i := 0; i < 200 && !a.OnGround(); i++ {
		w.step(a)
	}
	require.True(t, a.OnGround())
	assert.Equal(t, 1, landed)

	w.step(a)
	assert.InDelta(t, 8, a.Feet(), 1e-2)
}

func TestPopCorrectionVelocityIdempotent(t *testing.T) {
	w := newTestWorld()
	floor(w)
	a := newTestActor(w, math.Vec2{Y: 8 - 4.05 - 0.25})

	a.ResolveGround()
	first := a.PopCorrectionVelocity()
	second := a.PopCorrectionVelocity()

	assert.False(t, first.IsZero())
	assert.True(t, second.IsZero())
}

func TestCorrectionDoesNotPersist(t *testing.T) {
	w := newTestWorld()
	floor(w)
	a := newTestActor(w, math.Vec2{Y: 8 - 4.05 - 0.25})

	a.ResolveGround()
	a.UpdatePhysics()
	assert.True(t, a.PopCorrectionVelocity().IsZero())
}

func TestSlopeAccepted(t *testing.T) {
	w := newTestWorld()
	ramp := []math.Vec2{{X: -1, Y: 1}, {X: 1, Y: -1}, {X: 1, Y: 1}}
	p := w.addPlatform(math.Vec2{}, math.Vec2{X: 20, Y: 20}, ramp, platform.Options{})

	// Contact is at the right edge of the foot span, (2, -2).
	a := newTestActor(w, math.Vec2{Y: -2.5 - 4.05})
	a.ResolveGround()

	require.True(t, a.OnGround())
	assert.Equal(t, p.Handle, a.GroundHandle())
	assert.InDelta(t, -0.7071, a.GroundNormal().X, 1e-3)
	assert.InDelta(t, -0.7071, a.GroundNormal().Y, 1e-3)
}

func TestSteepSlopeIsWall(t *testing.T) {
	w := newTestWorld()
	ramp := []math.Vec2{{X: -1, Y: 1}, {X: 1, Y: -1}, {X: 1, Y: 1}}
	w.addPlatform(math.Vec2{}, math.Vec2{X: 20, Y: 400}, ramp, platform.Options{})

	a := newTestActor(w, math.Vec2{Y: -40.5 - 4.05})
	a.ResolveGround()

	assert.False(t, a.OnGround())
}

func TestSlopeClampThreshold(t *testing.T) {
	w := newTestWorld()
	p := floor(w)
	a := newTestActor(w, math.Vec2{})

	tests := []struct {
		name    string
		normalY float32
		want    bool
	}{
		{"flat", -1, true},
		{"just below threshold", -0.101, true},
		{"at threshold", -0.1, true},
		{"just above threshold", -0.099, false},
		{"vertical", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := math.Vec2{X: -math32.Sqrt(1 - tt.normalY*tt.normalY), Y: tt.normalY}
			c := contact{point: math.Vec2{X: 0, Y: a.Feet()}, normal: n}
			assert.Equal(t, tt.want, a.acceptGround(p, c, nil))
		})
	}
}

func TestMovingAwayIgnored(t *testing.T) {
	w := newTestWorld()
	floor(w)
	a := newTestActor(w, math.Vec2{Y: 8 - 4.05 - 0.2})
	a.Body.Velocity = math.Vec2{Y: -20}

	a.ResolveGround()
	assert.False(t, a.OnGround())
}

func TestLowestContactWins(t *testing.T) {
	w := newTestWorld()
	lower := floor(w)
	upper := w.addPlatform(math.Vec2{Y: 7.5}, math.Vec2{X: 20, Y: 1}, nil, platform.Options{})

	a := newTestActor(w, math.Vec2{Y: 8 - 4.05 - 0.5})
	a.ResolveGround()

	require.True(t, a.OnGround())
	assert.Equal(t, upper.Handle, a.GroundHandle())
	assert.False(t, lower.Holds(a))
}

func TestExactTieKeepsRegistrationOrder(t *testing.T) {
	w := newTestWorld()
	first := w.addPlatform(math.Vec2{X: -5, Y: 10}, math.Vec2{X: 12, Y: 4}, nil, platform.Options{})
	w.addPlatform(math.Vec2{X: 5, Y: 10}, math.Vec2{X: 12, Y: 4}, nil, platform.Options{})

	a := newTestActor(w, math.Vec2{Y: 8 - 4.05 - 0.1})
	a.ResolveGround()

	assert.Equal(t, first.Handle, a.GroundHandle())
}

func TestGroundInvariantRandomInput(t *testing.T) {
	w := newTestWorld()
	plats := []*platform.Platform{
		floor(w),
		w.addPlatform(math.Vec2{X: 30, Y: -10}, math.Vec2{X: 30, Y: 2}, nil, platform.Options{OneWay: true}),
		w.addPlatform(math.Vec2{X: -40, Y: 0}, math.Vec2{X: 20, Y: 20},
			[]math.Vec2{{X: -1, Y: 1}, {X: 1, Y: -1}, {X: 1, Y: 1}}, platform.Options{}),
	}
	a := newTestActor(w, math.Vec2{Y: -20})
	c := NewPlayerController(a)

	rng := rand.New(rand.NewSource(7))
	keys := []Key{KeyLeft, KeyRight, KeyDown, KeyJump}
	for i := 0; i < 2000; i++ {
		k := keys[rng.Intn(len(keys))]
		if rng.Intn(2) == 0 {
			c.Press(k)
		} else {
			c.Release(k)
		}
		w.step(a)

		onGround := a.OnGround()
		require.Equal(t, onGround, !a.GroundHandle().IsNil(), "tick %d", i)

		holders := 0
		for _, p := range plats {
			if p.Holds(a) {
				holders++
				require.True(t, onGround, "tick %d: held while airborne", i)
				require.Equal(t, p.Handle, a.GroundHandle(), "tick %d", i)
			}
		}
		if onGround {
			require.Equal(t, 1, holders, "tick %d", i)
		}
	}
}

func TestJumpUp(t *testing.T) {
	w := newTestWorld()
	p := floor(w)
	a := newTestActor(w, math.Vec2{Y: 8 - 4.05})
	anim := &fakeAnimator{accept: true}
	a.Animator = anim
	c := NewPlayerController(a)

	settle(w, a, 2)
	require.True(t, a.OnGround())

	c.Press(KeyJump)
	assert.False(t, a.OnGround())
	assert.False(t, p.Holds(a))
	assert.Equal(t, float32(-50), a.Body.Velocity.Y)
	assert.Equal(t, "jump", anim.state)

	w.step(a)
	assert.Equal(t, InAir, a.State())
	assert.Less(t, a.Body.Velocity.Y, float32(0))
}

func TestJumpInAirIgnored(t *testing.T) {
	w := newTestWorld()
	a := newTestActor(w, math.Vec2{})
	a.Body.Velocity = math.Vec2{Y: 5}

	a.JumpUp()
	assert.Equal(t, float32(5), a.Body.Velocity.Y)
}

func TestJumpDownOneWay(t *testing.T) {
	w := newTestWorld()
	solid := w.addPlatform(math.Vec2{Y: 40}, math.Vec2{X: 200, Y: 4}, nil, platform.Options{})
	oneWay := floor(w)
	oneWay.OneWay = true

	a := newTestActor(w, math.Vec2{Y: 8 - 4.05})
	c := NewPlayerController(a)
	settle(w, a, 2)
	require.Equal(t, oneWay.Handle, a.GroundHandle())

	c.Press(KeyDown)
	c.Press(KeyJump)
	assert.False(t, a.OnGround())
	assert.Equal(t, oneWay.Handle, a.JumpDownPlatform())
	c.Release(KeyJump)
	c.Release(KeyDown)

	for i := 0; i < 200 && !a.OnGround(); i++ {
		w.step(a)
		assert.NotEqual(t, oneWay.Handle, a.GroundHandle())
	}
	require.True(t, a.OnGround())
	assert.Equal(t, solid.Handle, a.GroundHandle())
	assert.True(t, a.JumpDownPlatform().IsNil())
}

func TestJumpDownOnSolidJumpsUp(t *testing.T) {
	w := newTestWorld()
	floor(w)
	a := newTestActor(w, math.Vec2{Y: 8 - 4.05})
	settle(w, a, 2)

	a.JumpDown()
	assert.False(t, a.OnGround())
	assert.True(t, a.JumpDownPlatform().IsNil())
	assert.Equal(t, float32(-50), a.Body.Velocity.Y)
}

func TestOneWayOnlyFromAbove(t *testing.T) {
	w := newTestWorld()
	oneWay := floor(w)
	oneWay.OneWay = true

	// Feet 1 unit below the surface, rising slowly.
	a := newTestActor(w, math.Vec2{Y: 9 - 4.05})
	a.Body.Velocity = math.Vec2{Y: 1}
	a.ResolveGround()
	assert.False(t, a.OnGround())
}

func TestWalkAccelerates(t *testing.T) {
	w := newTestWorld()
	floor(w)
	a := newTestActor(w, math.Vec2{Y: 8 - 4.05})
	c := NewPlayerController(a)
	settle(w, a, 2)

	c.Press(KeyRight)
	settle(w, a, 30)
	assert.Equal(t, float32(35), a.MoveSpeed().X)
	assert.InDelta(t, 35, a.Body.Velocity.X, 1e-3)
	assert.True(t, a.OnGround())

	c.Release(KeyRight)
	settle(w, a, 10)
	assert.Zero(t, a.MoveSpeed().X)
}

func TestMovingPlatformCarries(t *testing.T) {
	w := newTestWorld()
	p := floor(w)
	p.Body.Velocity = math.Vec2{X: 10}
	a := newTestActor(w, math.Vec2{Y: 8 - 4.05})

	settle(w, a, 3)
	assert.InDelta(t, 10, a.Body.Velocity.X, 1e-3)
	assert.Equal(t, float32(10), a.InheritedVelocity().X)
}

func TestGlideClampsFall(t *testing.T) {
	w := newTestWorld()
	a := newTestActor(w, math.Vec2{})
	c := NewPlayerController(a)
	c.jump = true
	a.Body.Velocity = math.Vec2{Y: 30}

	a.UpdatePhysics()
	assert.True(t, a.Gliding())
	assert.Equal(t, float32(10), a.Body.Velocity.Y)

	c.Release(KeyJump)
	a.UpdatePhysics()
	assert.False(t, a.Gliding())
	assert.Greater(t, a.Body.Velocity.Y, float32(10))
}

func TestGlideTimesOut(t *testing.T) {
	w := newTestWorld()
	a := newTestActor(w, math.Vec2{})
	c := NewPlayerController(a)
	c.jump = true
	a.DisableGravity = true
	a.Body.Velocity = math.Vec2{Y: 5}

	for i := 0; i < 100 && c.JumpHeld(); i++ {
		a.UpdatePhysics()
		w.sched.Advance(testTick)
	}
	assert.False(t, c.JumpHeld())
	assert.False(t, a.Gliding())

	c.jump = true
	a.UpdatePhysics()
	assert.False(t, a.Gliding(), "glide is spent until landing")
}

func TestLadderClimb(t *testing.T) {
	w := newTestWorld()
	floor(w)
	ladder := w.addLadder(math.Vec2{X: 0.5, Y: -12}, math.Vec2{X: 4, Y: 40})
	a := newTestActor(w, math.Vec2{Y: 8 - 4.05})
	c := NewPlayerController(a)
	settle(w, a, 2)

	// Detach timeout starts in the past.
	w.sched.Advance(2 * time.Second)
	a.SetLadder(ladder)
	c.Press(KeyUp)
	w.step(a)

	assert.True(t, a.Climbing())
	assert.Equal(t, OnLadder, a.State())
	assert.Equal(t, float32(0.5), a.Body.Position.X)
	assert.Equal(t, float32(-25), a.Body.Velocity.Y)
	assert.False(t, a.OnGround())

	// Climbs until the top and stops there.
	settle(w, a, 200)
	top := float32(-12 - 20)
	min, _ := a.Mask()
	assert.GreaterOrEqual(t, a.Body.Position.Y+min.Y, top-1e-3)
	assert.Zero(t, a.Body.Velocity.Y)

	c.Release(KeyUp)
	c.Press(KeyRight)
	c.Press(KeyJump)
	assert.False(t, a.Climbing())
	assert.Equal(t, float32(-25), a.Body.Velocity.Y)
	assert.InDelta(t, 17.5, a.Body.Velocity.X, 1e-4)
}

func TestTrampolineLaunchesOnLanding(t *testing.T) {
	w := newTestWorld()
	p := floor(w)
	p.AddBehavior(platform.NewTrampoline(config.TrampolineConfig{BounceForce: 100, JumpModifier: 1.5}))
	a := newTestActor(w, math.Vec2{Y: 8 - 4.05 - 0.2})

	a.ResolveGround()
	assert.False(t, a.OnGround())
	assert.False(t, p.Holds(a))
	assert.Equal(t, float32(-100), a.Body.Velocity.Y)
	assert.Equal(t, p.Handle, a.LastLanded())
}

func TestWallCollision(t *testing.T) {
	w := newTestWorld()
	a := newTestActor(w, math.Vec2{})
	a.moveSpeed.X = 20
	a.inherited = math.Vec2{X: 3, Y: 1}

	hits := 0
	a.HitWall.AddListener(func(math.Vec2) { hits++ })

	a.ResolvePlatformCollision(math.Up)
	assert.Equal(t, float32(20), a.MoveSpeed().X)

	a.ResolvePlatformCollision(math.Vec2{X: -1})
	assert.Zero(t, a.MoveSpeed().X)
	assert.True(t, a.InheritedVelocity().IsZero())
	assert.Equal(t, 1, hits)
}

func TestMissingControllerIsNoInput(t *testing.T) {
	w := newTestWorld()
	floor(w)
	a := newTestActor(w, math.Vec2{Y: 8 - 4.05})

	settle(w, a, 5)
	assert.True(t, a.Direction().IsZero())
	assert.True(t, a.OnGround())
}

func TestAIControllerTurn(t *testing.T) {
	w := newTestWorld()
	a := newTestActor(w, math.Vec2{})
	a.Body.FlipX = true
	c := NewAIController(a)

	assert.Equal(t, float32(-1), c.Direction().X)
	c.Turn()
	assert.Equal(t, float32(1), c.Direction().X)
	assert.False(t, c.JumpHeld())
}

func TestParseKey(t *testing.T) {
	k, ok := ParseKey("jump")
	assert.True(t, ok)
	assert.Equal(t, KeyJump, k)
	assert.Equal(t, "jump", k.String())

	_, ok = ParseKey("fly")
	assert.False(t, ok)
}
