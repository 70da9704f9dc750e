package constraint

import (
	"math"

	"github.com/akmonengine/grasp/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// FixedJoint locks all six degrees of freedom between two bodies: the anchors
// are driven together and the frames BodyA·LocalRotationA and
// BodyB·LocalRotationB are driven into alignment.
//
// Builder methods work on copies:
//
//	joint := constraint.NewFixedJoint(hand, box).
//		WithLocalRotationA(mgl64.QuatRotate(math.Pi, mgl64.Vec3{0, 1, 0})).
//		WithCompliance(1e-6)
//	handle := world.AddJoint(&joint)
type FixedJoint struct {
	BodyA actor.BodyHandle
	BodyB actor.BodyHandle

	// Attachment points in each body's local frame
	LocalAnchorA mgl64.Vec3
	LocalAnchorB mgl64.Vec3
	// Relative rotation offsets, identity by default
	LocalRotationA mgl64.Quat
	LocalRotationB mgl64.Quat

	// Compliance is the inverse of stiffness, in meters per Newton. 0 is rigid.
	Compliance     float64
	LinearDamping  float64
	AngularDamping float64

	// Multipliers accumulated during the current substep
	PositionLagrange float64
	AlignLagrange    float64

	// Force and Torque exerted by the joint during the last substep
	Force  mgl64.Vec3
	Torque mgl64.Vec3
}

// NewFixedJoint creates a rigid joint with zero anchors, identity offsets and a damping of 1
func NewFixedJoint(bodyA, bodyB actor.BodyHandle) FixedJoint {
	return FixedJoint{
		BodyA:          bodyA,
		BodyB:          bodyB,
		LocalRotationA: mgl64.QuatIdent(),
		LocalRotationB: mgl64.QuatIdent(),
		LinearDamping:  1.0,
		AngularDamping: 1.0,
	}
}

func (j FixedJoint) WithCompliance(compliance float64) FixedJoint {
	j.Compliance = compliance
	return j
}

func (j FixedJoint) WithLocalAnchorA(anchor mgl64.Vec3) FixedJoint {
	j.LocalAnchorA = anchor
	return j
}

func (j FixedJoint) WithLocalAnchorB(anchor mgl64.Vec3) FixedJoint {
	j.LocalAnchorB = anchor
	return j
}

func (j FixedJoint) WithLocalRotationA(rotation mgl64.Quat) FixedJoint {
	j.LocalRotationA = rotation
	return j
}

func (j FixedJoint) WithLocalRotationB(rotation mgl64.Quat) FixedJoint {
	j.LocalRotationB = rotation
	return j
}

func (j FixedJoint) WithLinearDamping(damping float64) FixedJoint {
	j.LinearDamping = damping
	return j
}

func (j FixedJoint) WithAngularDamping(damping float64) FixedJoint {
	j.AngularDamping = damping
	return j
}

func (j *FixedJoint) Bodies() [2]actor.BodyHandle {
	return [2]actor.BodyHandle{j.BodyA, j.BodyB}
}

func (j *FixedJoint) ResetLagrange() {
	j.PositionLagrange = 0
	j.AlignLagrange = 0
}

// SolvePosition aligns orientations first, then anchor positions (XPBD, one iteration per substep)
func (j *FixedJoint) SolvePosition(bodyA, bodyB *actor.RigidBody, dt float64) {
	if dt <= Epsilon {
		return
	}

	rotA := bodyA.Transform.Rotation.Mul(j.LocalRotationA)
	rotB := bodyB.Transform.Rotation.Mul(j.LocalRotationB)

	j.Torque = j.alignOrientation(bodyA, bodyB, DeltaRotation(rotA, rotB), dt)
	j.Force = j.alignPosition(bodyA, bodyB, dt)
}

func (j *FixedJoint) alignOrientation(bodyA, bodyB *actor.RigidBody, dq mgl64.Vec3, dt float64) mgl64.Vec3 {
	angle := dq.Len()
	if angle <= Epsilon {
		return mgl64.Vec3{}
	}
	axis := dq.Mul(1.0 / angle)

	wA := AngularInverseMass(bodyA, axis)
	wB := AngularInverseMass(bodyB, axis)

	deltaLambda := LagrangeUpdate(j.AlignLagrange, angle, wA, wB, j.Compliance, dt)
	j.AlignLagrange += deltaLambda

	p := axis.Mul(deltaLambda)
	if bodyA.IsDynamic() {
		bodyA.SetRotation(ApplyRotation(bodyA.Transform.Rotation, bodyA.GetInverseInertiaWorld().Mul3x1(p)))
	}
	if bodyB.IsDynamic() {
		bodyB.SetRotation(ApplyRotation(bodyB.Transform.Rotation, bodyB.GetInverseInertiaWorld().Mul3x1(p).Mul(-1)))
	}

	return ForceFromLagrange(j.AlignLagrange, axis, dt)
}

func (j *FixedJoint) alignPosition(bodyA, bodyB *actor.RigidBody, dt float64) mgl64.Vec3 {
	rA := bodyA.Transform.Rotation.Rotate(j.LocalAnchorA)
	rB := bodyB.Transform.Rotation.Rotate(j.LocalAnchorB)

	delta := bodyA.Transform.Position.Add(rA).Sub(bodyB.Transform.Position.Add(rB))
	distance := delta.Len()
	if distance <= Epsilon {
		return mgl64.Vec3{}
	}
	n := delta.Mul(1.0 / distance)

	wA := PositionalInverseMass(bodyA, rA, n)
	wB := PositionalInverseMass(bodyB, rB, n)

	deltaLambda := LagrangeUpdate(j.PositionLagrange, distance, wA, wB, j.Compliance, dt)
	j.PositionLagrange += deltaLambda

	p := n.Mul(deltaLambda)
	if bodyA.IsDynamic() {
		bodyA.Transform.Position = bodyA.Transform.Position.Add(p.Mul(bodyA.InverseMass()))
		bodyA.SetRotation(ApplyRotation(bodyA.Transform.Rotation, bodyA.GetInverseInertiaWorld().Mul3x1(rA.Cross(p))))
	}
	if bodyB.IsDynamic() {
		bodyB.Transform.Position = bodyB.Transform.Position.Sub(p.Mul(bodyB.InverseMass()))
		bodyB.SetRotation(ApplyRotation(bodyB.Transform.Rotation, bodyB.GetInverseInertiaWorld().Mul3x1(rB.Cross(p)).Mul(-1)))
	}

	return ForceFromLagrange(j.PositionLagrange, n, dt)
}

// SolveVelocity damps the relative velocity of the two bodies by min(damping·dt, 1),
// each body taking its share by inverse mass
func (j *FixedJoint) SolveVelocity(bodyA, bodyB *actor.RigidBody, dt float64) {
	if dt <= Epsilon {
		return
	}

	j.dampAngular(bodyA, bodyB, dt)
	j.dampLinear(bodyA, bodyB, dt)
}

func (j *FixedJoint) dampAngular(bodyA, bodyB *actor.RigidBody, dt float64) {
	deltaOmega := bodyB.AngularVelocity.Sub(bodyA.AngularVelocity).Mul(math.Min(j.AngularDamping*dt, 1))
	magnitude := deltaOmega.Len()
	if magnitude <= Epsilon {
		return
	}
	axis := deltaOmega.Mul(1.0 / magnitude)

	wA := AngularInverseMass(bodyA, axis)
	wB := AngularInverseMass(bodyB, axis)
	if wA+wB <= Epsilon {
		return
	}

	// angular impulse along axis
	p := axis.Mul(magnitude / (wA + wB))
	bodyA.AngularVelocity = bodyA.AngularVelocity.Add(bodyA.GetInverseInertiaWorld().Mul3x1(p))
	bodyB.AngularVelocity = bodyB.AngularVelocity.Sub(bodyB.GetInverseInertiaWorld().Mul3x1(p))
}

func (j *FixedJoint) dampLinear(bodyA, bodyB *actor.RigidBody, dt float64) {
	wA := bodyA.InverseMass()
	wB := bodyB.InverseMass()
	if wA+wB <= Epsilon {
		return
	}

	deltaV := bodyB.Velocity.Sub(bodyA.Velocity).Mul(math.Min(j.LinearDamping*dt, 1))
	p := deltaV.Mul(1.0 / (wA + wB))
	bodyA.Velocity = bodyA.Velocity.Add(p.Mul(wA))
	bodyB.Velocity = bodyB.Velocity.Sub(p.Mul(wB))
}
