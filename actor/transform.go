package actor

import "github.com/go-gl/mathgl/mgl64"

// Transform represents a position in 3D space
type Transform struct {
	Position        mgl64.Vec3
	Rotation        mgl64.Quat
	InverseRotation mgl64.Quat
}

// NewTransform creates an identity transform
func NewTransform() Transform {
	return Transform{
		Position:        mgl64.Vec3{0, 0, 0},
		Rotation:        mgl64.QuatIdent(),
		InverseRotation: mgl64.QuatIdent(),
	}
}

// NewTransformAt creates a transform at position with the given rotation
func NewTransformAt(position mgl64.Vec3, rotation mgl64.Quat) Transform {
	t := Transform{Position: position}
	t.SetRotation(rotation)
	return t
}

// SetRotation normalizes and stores the rotation, keeping InverseRotation in sync
func (t *Transform) SetRotation(rotation mgl64.Quat) {
	t.Rotation = rotation.Normalize()
	t.InverseRotation = t.Rotation.Inverse()
}

// WorldPoint maps a point from local space to world space
func (t Transform) WorldPoint(local mgl64.Vec3) mgl64.Vec3 {
	return t.Position.Add(t.Rotation.Rotate(local))
}

// LocalPoint maps a point from world space to local space
func (t Transform) LocalPoint(world mgl64.Vec3) mgl64.Vec3 {
	return t.InverseRotation.Rotate(world.Sub(t.Position))
}

// LocalDirection maps a direction from world space to local space
func (t Transform) LocalDirection(world mgl64.Vec3) mgl64.Vec3 {
	return t.InverseRotation.Rotate(world)
}
