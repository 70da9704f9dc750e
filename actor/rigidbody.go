package actor

import (
	"math"

	"github.com/akmonengine/grasp/arena"
	"github.com/go-gl/mathgl/mgl64"
)

// BodyHandle references a RigidBody stored in the world. The zero value is "none".
type BodyHandle = arena.Handle[*RigidBody]

// BodyType represents the type of rigid body
type BodyType int

const (
	// BodyTypeDynamic bodies are affected by forces, gravity, and constraints
	// They have finite mass and can move freely
	BodyTypeDynamic BodyType = iota

	// BodyTypeStatic bodies are immovable and have infinite mass
	// They are not affected by forces or gravity (e.g., ground, walls)
	BodyTypeStatic

	// BodyTypeKinematic bodies are moved by the application and have infinite mass.
	// Constraints never push them (e.g., a hand following the camera)
	BodyTypeKinematic
)

// Tag is a bit set of markers the scene attaches to a body.
type Tag uint32

const (
	// TagGrabbable marks a body the grab system may target.
	TagGrabbable Tag = 1 << iota
)

type Material struct {
	Density float64
	mass    float64

	LinearDamping  float64 // 0.0 - 1.0, typical: 0.01
	AngularDamping float64 // 0.0 - 1.0, typical: 0.05
}

func (material Material) GetMass() float64 {
	return material.mass
}

// RigidBody represents a rigid body in the physics simulation
type RigidBody struct {
	Name string

	// Spatial properties
	PreviousTransform Transform
	Transform         Transform

	Velocity        mgl64.Vec3 // Linear velocity (m/s)
	AngularVelocity mgl64.Vec3 // rad/s

	InertiaLocal        mgl64.Mat3
	InverseInertiaLocal mgl64.Mat3
	inverseMass         float64

	accumulatedForce  mgl64.Vec3
	accumulatedTorque mgl64.Vec3

	IsSleeping bool
	SleepTimer float64
	// SleepDisabled keeps the body awake regardless of its velocity
	SleepDisabled bool

	Material Material
	BodyType BodyType
	Tags     Tag

	Shape ShapeInterface
}

// NewRigidBody creates a new rigid body with the given properties
// density is used to calculate mass for dynamic bodies (ignored otherwise)
func NewRigidBody(transform Transform, shape ShapeInterface, bodyType BodyType, density float64) *RigidBody {
	if transform.Rotation == (mgl64.Quat{}) {
		transform.Rotation = mgl64.QuatIdent()
	}
	transform.SetRotation(transform.Rotation)

	rb := &RigidBody{
		PreviousTransform: transform,
		Transform:         transform,
		Shape:             shape,
		BodyType:          bodyType,
	}

	if bodyType == BodyTypeDynamic {
		rb.Material = Material{
			Density: density,
			mass:    shape.ComputeMass(density),
		}
	} else {
		rb.Material = Material{mass: math.Inf(1)}
	}

	mass := rb.Material.mass
	if bodyType == BodyTypeDynamic && mass > 0 && !math.IsInf(mass, 1) {
		rb.inverseMass = 1.0 / mass
		rb.InertiaLocal = shape.ComputeInertia(mass)
		rb.InverseInertiaLocal = rb.InertiaLocal.Inv()
	}

	rb.Shape.ComputeAABB(rb.Transform)

	return rb
}

// IsDynamic reports whether the solver may move the body
func (rb *RigidBody) IsDynamic() bool {
	return rb.BodyType == BodyTypeDynamic && rb.inverseMass > 0
}

// InverseMass is 0 for static, kinematic and infinite-mass bodies
func (rb *RigidBody) InverseMass() float64 {
	if rb.BodyType != BodyTypeDynamic {
		return 0
	}
	return rb.inverseMass
}

func (rb *RigidBody) HasTag(tag Tag) bool {
	return rb.Tags&tag == tag
}

// SetPose teleports the body. Used for kinematic bodies driven by the application.
func (rb *RigidBody) SetPose(position mgl64.Vec3, rotation mgl64.Quat) {
	rb.Transform.Position = position
	rb.Transform.SetRotation(rotation)
	rb.PreviousTransform = rb.Transform
	rb.Shape.ComputeAABB(rb.Transform)
}

// SetRotation replaces the orientation, keeping the inverse in sync
func (rb *RigidBody) SetRotation(rotation mgl64.Quat) {
	rb.Transform.SetRotation(rotation)
}

// WorldPoint maps a local anchor to world space
func (rb *RigidBody) WorldPoint(local mgl64.Vec3) mgl64.Vec3 {
	return rb.Transform.WorldPoint(local)
}

func (rb *RigidBody) TrySleep(dt float64, timethreshold float64, velocityThreshold float64) {
	if rb.BodyType != BodyTypeDynamic {
		return
	}
	if rb.SleepDisabled {
		rb.Awake()
		return
	}

	if rb.Velocity.Len() < velocityThreshold && rb.AngularVelocity.Len() < velocityThreshold {
		rb.SleepTimer += dt
		if rb.SleepTimer >= timethreshold {
			rb.Sleep()
		}
	} else {
		rb.Awake()
	}
}

func (rb *RigidBody) Sleep() {
	rb.IsSleeping = true
	rb.SleepTimer = 0.0

	rb.Shape.ComputeAABB(rb.Transform)
	rb.ClearForces()
	rb.Velocity = mgl64.Vec3{}
	rb.AngularVelocity = mgl64.Vec3{}
}

func (rb *RigidBody) Awake() {
	rb.IsSleeping = false
	rb.SleepTimer = 0.0
}

// Integrate predicts the next position and rotation from velocities, gravity and accumulated forces
func (rb *RigidBody) Integrate(dt float64, gravity mgl64.Vec3) {
	if !rb.IsDynamic() || rb.IsSleeping || dt <= 0 {
		return
	}

	rb.PreviousTransform.Position = rb.Transform.Position
	rb.PreviousTransform.Rotation = rb.Transform.Rotation

	// linear
	acceleration := gravity.Add(rb.accumulatedForce.Mul(rb.inverseMass))
	rb.Velocity = rb.Velocity.Add(acceleration.Mul(dt))
	rb.Velocity = rb.Velocity.Mul(math.Exp(-rb.Material.LinearDamping * dt))
	rb.Transform.Position = rb.Transform.Position.Add(rb.Velocity.Mul(dt))

	// angular
	angularAcceleration := rb.GetInverseInertiaWorld().Mul3x1(rb.accumulatedTorque)
	rb.AngularVelocity = rb.AngularVelocity.Add(angularAcceleration.Mul(dt))
	rb.AngularVelocity = rb.AngularVelocity.Mul(math.Exp(-rb.Material.AngularDamping * dt))

	// q += 0.5 * (0, ω) * q * dt
	omegaQuat := mgl64.Quat{V: rb.AngularVelocity, W: 0}
	qDot := omegaQuat.Mul(rb.Transform.Rotation).Scale(0.5)
	rb.Transform.SetRotation(rb.Transform.Rotation.Add(qDot.Scale(dt)))

	rb.Shape.ComputeAABB(rb.Transform)
	rb.ClearForces()
}

// Update derives velocities from the corrected positions of this substep
func (rb *RigidBody) Update(dt float64) {
	if !rb.IsDynamic() || rb.IsSleeping || dt <= 0 {
		return
	}

	rb.Velocity = rb.Transform.Position.Sub(rb.PreviousTransform.Position).Mul(1.0 / dt)
	qDelta := rb.Transform.Rotation.Mul(rb.PreviousTransform.Rotation.Conjugate()).Normalize()
	if qDelta.W >= 0.0 {
		rb.AngularVelocity = qDelta.V.Mul(2.0 / dt)
	} else {
		rb.AngularVelocity = qDelta.V.Mul(-2.0 / dt)
	}

	rb.Shape.ComputeAABB(rb.Transform)
}

// AddForce in N, applied on the next integration
func (rb *RigidBody) AddForce(force mgl64.Vec3) {
	if rb.BodyType == BodyTypeDynamic {
		rb.Awake()
		rb.accumulatedForce = rb.accumulatedForce.Add(force)
	}
}

// AddTorque in N⋅m, applied on the next integration
func (rb *RigidBody) AddTorque(torque mgl64.Vec3) {
	if rb.BodyType == BodyTypeDynamic {
		rb.Awake()
		rb.accumulatedTorque = rb.accumulatedTorque.Add(torque)
	}
}

func (rb *RigidBody) ClearForces() {
	rb.accumulatedForce = mgl64.Vec3{0, 0, 0}
	rb.accumulatedTorque = mgl64.Vec3{0, 0, 0}
}

// GetInertiaWorld returns R * I_local * R^T
func (rb *RigidBody) GetInertiaWorld() mgl64.Mat3 {
	R := rb.Transform.Rotation.Mat4().Mat3()
	return R.Mul3(rb.InertiaLocal).Mul3(R.Transpose())
}

// GetInverseInertiaWorld returns R * I_local^(-1) * R^T, zero for bodies the solver may not move
func (rb *RigidBody) GetInverseInertiaWorld() mgl64.Mat3 {
	if !rb.IsDynamic() {
		return mgl64.Mat3{}
	}

	R := rb.Transform.Rotation.Mat4().Mat3()
	return R.Mul3(rb.InverseInertiaLocal).Mul3(R.Transpose())
}

// RayCast intersects a world-space ray with the body's shape.
// direction must be normalized.
func (rb *RigidBody) RayCast(origin, direction mgl64.Vec3, maxDistance float64, solid bool) (float64, bool) {
	if _, _, ok := rb.Shape.GetAABB().IntersectRay(origin, direction, maxDistance); !ok {
		return 0, false
	}

	localOrigin := rb.Transform.LocalPoint(origin)
	localDirection := rb.Transform.LocalDirection(direction)

	return rb.Shape.RayCast(localOrigin, localDirection, maxDistance, solid)
}
