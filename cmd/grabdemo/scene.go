package main

import (
	"github.com/akmonengine/grasp"
	"github.com/akmonengine/grasp/actor"
	"github.com/akmonengine/grasp/config"
	"github.com/akmonengine/grasp/grab"
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
)

var (
	eyePosition = mgl64.Vec3{0, 1.6, 0}
	spawnPoint  = mgl64.Vec3{0, 3, -3}
)

// bodies falling below respawnHeight are put back at spawnPoint
const respawnHeight = -50.0

type scene struct {
	world   *grasp.World
	grabber *grab.Grabber
	view    *grab.Viewpoint
	targets []actor.BodyHandle
}

func buildScene(world *grasp.World, cfg config.Config) *scene {
	ground := actor.NewRigidBody(actor.NewTransform(), &actor.Plane{Normal: mgl64.Vec3{0, 1, 0}}, actor.BodyTypeStatic, 0)
	ground.Name = "ground"
	world.AddBody(ground)

	hand := actor.NewRigidBody(actor.NewTransformAt(eyePosition, mgl64.QuatIdent()), &actor.Sphere{Radius: 0.1}, actor.BodyTypeKinematic, 0)
	hand.Name = "hand"
	handle := world.AddBody(hand)

	s := &scene{
		world:   world,
		grabber: grab.NewGrabber(handle, cfg.Grab),
		view:    grab.NewViewpoint(eyePosition, mgl64.QuatIdent()),
	}

	s.spawn("crate", mgl64.Vec3{2, 0.5, -4}, &actor.Box{HalfExtents: mgl64.Vec3{0.5, 0.5, 0.5}}, 1)
	s.spawn("ball", mgl64.Vec3{-1.5, 0.3, -3}, &actor.Sphere{Radius: 0.3}, 2)
	s.spawn("plank", mgl64.Vec3{0, 0.15, -6}, &actor.Box{HalfExtents: mgl64.Vec3{1, 0.15, 0.3}}, 0.6)

	return s
}

func (s *scene) spawn(name string, position mgl64.Vec3, shape actor.ShapeInterface, density float64) {
	body := actor.NewRigidBody(actor.NewTransformAt(position, mgl64.QuatIdent()), shape, actor.BodyTypeDynamic, density)
	body.Name = name
	body.Tags |= actor.TagGrabbable
	body.Material.LinearDamping = 0.1
	body.Material.AngularDamping = 0.1

	s.targets = append(s.targets, s.world.AddBody(body))
}

// floor keeps dynamic bodies above y = 0. Velocities follow from the
// projected positions in the velocity update phase.
func floor(w *grasp.World, _ float64) {
	w.Bodies.Each(func(_ actor.BodyHandle, body *actor.RigidBody) bool {
		if !body.IsDynamic() || body.IsSleeping {
			return true
		}

		penetration := body.Shape.GetAABB().Min.Y()
		if penetration < 0 {
			body.Transform.Position[1] -= penetration
			body.Shape.ComputeAABB(body.Transform)
		}
		return true
	})
}

// respawn puts dynamic bodies that fell out of the world back at the spawn
// point, at rest.
func respawn(w *grasp.World, _ float64) {
	w.Bodies.Each(func(h actor.BodyHandle, body *actor.RigidBody) bool {
		if !body.IsDynamic() || body.Transform.Position.Y() > respawnHeight {
			return true
		}

		body.SetPose(spawnPoint, body.Transform.Rotation)
		body.Velocity = mgl64.Vec3{}
		body.AngularVelocity = mgl64.Vec3{}
		w.Logger.Debug("body respawned", zap.Uint32("body", h.Index), zap.String("name", body.Name))
		return true
	})
}
