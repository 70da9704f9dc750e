package main

import (
	"math"
	"testing"

	"github.com/akmonengine/grasp"
	"github.com/akmonengine/grasp/actor"
	"github.com/akmonengine/grasp/config"
	"github.com/akmonengine/grasp/event"
	"github.com/akmonengine/grasp/grab"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFloor(t *testing.T) {
	w := grasp.NewWorld(config.Default().World, nil)
	require.NoError(t, w.AddSystem(grasp.PhaseSolveConstraints, floor))

	h := w.AddBody(actor.NewRigidBody(
		actor.NewTransformAt(mgl64.Vec3{0, 2, 0}, mgl64.QuatIdent()),
		&actor.Box{HalfExtents: mgl64.Vec3{0.5, 0.5, 0.5}},
		actor.BodyTypeDynamic,
		1,
	))

	for range 120 {
		w.Step(1.0 / 60.0)
	}

	body, _ := w.Body(h)
	assert.InDelta(t, 0.5, body.Transform.Position.Y(), 1e-3)
	assert.InDelta(t, 0, body.Velocity.Y(), 0.2)
}

func TestWrapAngle(t *testing.T) {
	assert.InDelta(t, 0.5, wrapAngle(0.5), 1e-12)
	assert.InDelta(t, -math.Pi+0.5, wrapAngle(math.Pi+0.5), 1e-12)
	assert.InDelta(t, math.Pi-0.5, wrapAngle(-math.Pi-0.5+2*math.Pi*-2), 1e-12)
}

func TestDirector_RunsScene(t *testing.T) {
	cfg := config.Default()
	world := grasp.NewWorld(cfg.World, nil)
	require.NoError(t, world.AddSystem(grasp.PhaseIntegrate, respawn))
	require.NoError(t, world.AddSystem(grasp.PhaseSolveConstraints, floor))

	s := buildScene(world, cfg)
	system := grab.NewSystem(world, cfg.Grab, cfg.Joint, world.Events, nil)

	locked := make(map[actor.BodyHandle]bool)
	world.Events.Subscribe(event.GRAB_LOCK, func(e event.Event) {
		locked[e.(grab.LockEvent).Target] = true
	})

	d := newDirector(s, zap.NewNop())
	dt := cfg.World.TickDelta()
	for tick := 0; tick < 60*40 && !d.done(); tick++ {
		system.Update(s.grabber, s.view, d.next(dt), dt)
		world.Step(dt)
	}

	assert.True(t, d.done())
	assert.Len(t, locked, len(s.targets))
	for _, target := range s.targets {
		assert.True(t, locked[target])
	}
	assert.Zero(t, world.Joints.Len())
	assert.NotEqual(t, grab.StateLocked, s.grabber.State())
}

func TestRespawn(t *testing.T) {
	w := grasp.NewWorld(config.Default().World, nil)
	require.NoError(t, w.AddSystem(grasp.PhaseIntegrate, respawn))

	box := &actor.Box{HalfExtents: mgl64.Vec3{0.5, 0.5, 0.5}}
	falling := actor.NewRigidBody(actor.NewTransformAt(mgl64.Vec3{1, -49.9, 1}, mgl64.QuatIdent()), box, actor.BodyTypeDynamic, 1)
	falling.Velocity = mgl64.Vec3{2, -10, 0}
	w.AddBody(falling)

	wall := actor.NewRigidBody(actor.NewTransformAt(mgl64.Vec3{0, -60, 0}, mgl64.QuatIdent()), &actor.Sphere{Radius: 1}, actor.BodyTypeStatic, 0)
	w.AddBody(wall)

	w.Step(1.0 / 60.0)

	assert.InDelta(t, 0, falling.Transform.Position.Sub(spawnPoint).Len(), 1e-2)
	assert.Less(t, falling.Velocity.Len(), 0.1)
	assert.Equal(t, mgl64.Vec3{0, -60, 0}, wall.Transform.Position)
}

func TestDirector_Toss(t *testing.T) {
	cfg := config.Default()
	cfg.World.Gravity = [3]float64{}
	w := grasp.NewWorld(cfg.World, nil)

	s := &scene{
		world: w,
		view:  grab.NewViewpoint(eyePosition, mgl64.QuatRotate(math.Pi/4, mgl64.Vec3{0, 1, 0})),
	}
	body := actor.NewRigidBody(
		actor.NewTransformAt(mgl64.Vec3{0, 1, -1}, mgl64.QuatIdent()),
		&actor.Box{HalfExtents: mgl64.Vec3{0.5, 0.5, 0.5}},
		actor.BodyTypeDynamic,
		2,
	)
	body.Sleep()
	w.AddBody(body)

	d := newDirector(s, zap.NewNop())
	dt := cfg.World.TickDelta()
	d.toss(body, dt)
	assert.False(t, body.IsSleeping)
	w.Step(dt)

	expected := s.view.Forward().Mul(tossSpeed)
	assert.InDelta(t, 0, body.Velocity.Sub(expected).Len(), 1e-2)
	spin := s.view.Rotation.Rotate(mgl64.Vec3{1, 0, 0}).Mul(-tossSpin)
	assert.InDelta(t, 0, body.AngularVelocity.Sub(spin).Len(), 1e-2)

	// the force only lasts one substep
	w.Step(dt)
	assert.InDelta(t, 0, body.Velocity.Sub(expected).Len(), 1e-2)
}
