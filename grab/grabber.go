// Package grab drives a hand that targets, attracts and holds grabbable bodies.
//
// Each tick the System moves the hand to the viewpoint, casts a ray forward to
// find a target, and walks the Grabber through
//
//	Idle → Targeting → Attracting → Locked → Idle
//
// Once the attracted body is close enough it is locked to the hand by a fixed
// joint, which the world solves on every substep until the grab is released.
package grab

import (
	"github.com/akmonengine/grasp/actor"
	"github.com/akmonengine/grasp/config"
	"github.com/akmonengine/grasp/constraint"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

type State int

const (
	StateIdle State = iota
	StateTargeting
	StateAttracting
	StateLocked
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateTargeting:
		return "targeting"
	case StateAttracting:
		return "attracting"
	case StateLocked:
		return "locked"
	}
	return "unknown"
}

// Grabber is the grab state of one hand.
// GrabbedEntity and Joint are either both set or both nil.
type Grabber struct {
	// Hand is a kinematic body moved to the viewpoint every tick
	Hand       actor.BodyHandle
	HandOffset mgl64.Vec3

	PotentialTarget actor.BodyHandle
	AttractedTarget actor.BodyHandle
	GrabbedEntity   actor.BodyHandle
	Joint           constraint.JointHandle

	GrabbingSpeed float64

	// Session identifies the current attraction and hold, uuid.Nil when idle
	Session uuid.UUID
}

func NewGrabber(hand actor.BodyHandle, cfg config.Grab) *Grabber {
	return &Grabber{
		Hand:          hand,
		HandOffset:    cfg.HandOffsetVec(),
		GrabbingSpeed: cfg.GrabbingSpeed,
	}
}

func (g *Grabber) State() State {
	switch {
	case !g.GrabbedEntity.IsNil():
		return StateLocked
	case !g.AttractedTarget.IsNil():
		return StateAttracting
	case !g.PotentialTarget.IsNil():
		return StateTargeting
	}
	return StateIdle
}

// Viewpoint is the camera pose the hand follows. Forward is -Z.
type Viewpoint struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
}

func NewViewpoint(position mgl64.Vec3, rotation mgl64.Quat) *Viewpoint {
	return &Viewpoint{Position: position, Rotation: rotation}
}

func (v *Viewpoint) Forward() mgl64.Vec3 {
	return v.Rotation.Rotate(mgl64.Vec3{0, 0, -1})
}

// HandPose returns where a hand at offset (in the view frame) sits
func (v *Viewpoint) HandPose(offset mgl64.Vec3) (mgl64.Vec3, mgl64.Quat) {
	return v.Position.Add(v.Rotation.Rotate(offset)), v.Rotation
}
