package constraint

import (
	"math"
	"testing"

	"github.com/akmonengine/grasp/actor"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
)

func TestAlphaTilde(t *testing.T) {
	assert.InDelta(t, 0.01/(0.1*0.1), AlphaTilde(0.01, 0.1), 1e-12)
	assert.Zero(t, AlphaTilde(0, 1.0/60.0))
	assert.Zero(t, AlphaTilde(1, 0))
}

func TestLagrangeUpdate(t *testing.T) {
	tests := []struct {
		name       string
		lagrange   float64
		c          float64
		wA, wB     float64
		compliance float64
		dt         float64
		expected   float64
	}{
		{"rigid cancels error", 0, 2, 1, 1, 0, 0.1, -1},
		{"rigid one side immovable", 0, 2, 0, 0.5, 0, 0.1, -4},
		{"compliant", 0, 1, 1, 0, 0.01, 0.1, -1.0 / 2.0},
		{"compliant with accumulated multiplier", -0.5, 1, 1, 0, 0.01, 0.1, (-1 + 0.5) / 2.0},
		{"both immovable", 0, 1, 0, 0, 0, 0.1, 0},
		{"zero dt", 0, 1, 1, 1, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := LagrangeUpdate(tt.lagrange, tt.c, tt.wA, tt.wB, tt.compliance, tt.dt)
			assert.InDelta(t, tt.expected, result, 1e-10)
			assert.False(t, math.IsNaN(result) || math.IsInf(result, 0))
		})
	}
}

func TestLagrangeUpdate_StiffnessScalesWithDt(t *testing.T) {
	// halving dt quadruples α̃, so the same compliance corrects less per substep
	coarse := LagrangeUpdate(0, 1, 1, 0, 0.001, 0.1)
	fine := LagrangeUpdate(0, 1, 1, 0, 0.001, 0.05)

	assert.InDelta(t, -1/(1+0.1), coarse, 1e-10)
	assert.InDelta(t, -1/(1+0.4), fine, 1e-10)
}

func TestDeltaRotation(t *testing.T) {
	y := mgl64.Vec3{0, 1, 0}

	dq := DeltaRotation(mgl64.QuatRotate(0.2, y), mgl64.QuatIdent())
	assert.InDelta(t, 2*math.Sin(0.1), dq.Y(), 1e-12)
	assert.InDelta(t, 0, dq.X(), 1e-12)

	dq = DeltaRotation(mgl64.QuatIdent(), mgl64.QuatIdent())
	assert.InDelta(t, 0, dq.Len(), 1e-12)

	// q and -q are the same rotation
	q := mgl64.QuatRotate(0.7, mgl64.Vec3{1, 0, 0})
	dq = DeltaRotation(q, q.Scale(-1))
	assert.InDelta(t, 0, dq.Len(), 1e-12)

	// shorter arc is used past 180°
	dq = DeltaRotation(mgl64.QuatRotate(1.5*math.Pi, y), mgl64.QuatIdent())
	assert.Less(t, dq.Y(), 0.0)
}

func TestApplyRotation(t *testing.T) {
	q := mgl64.QuatIdent()
	assert.Equal(t, q, ApplyRotation(q, mgl64.Vec3{}))

	rotated := ApplyRotation(q, mgl64.Vec3{0, 0, 0.01})
	expected := mgl64.QuatRotate(0.01, mgl64.Vec3{0, 0, 1})
	assert.InDelta(t, 1.0, math.Abs(rotated.Dot(expected)), 1e-9)
	assert.InDelta(t, 1.0, rotated.Len(), 1e-12)
}

func TestForceFromLagrange(t *testing.T) {
	force := ForceFromLagrange(-2, mgl64.Vec3{1, 0, 0}, 0.5)
	assert.InDelta(t, -8, force.X(), 1e-12)
	assert.Equal(t, mgl64.Vec3{}, ForceFromLagrange(1, mgl64.Vec3{1, 0, 0}, 0))
}

func TestGeneralizedInverseMass(t *testing.T) {
	dynamic := actor.NewRigidBody(actor.NewTransform(), &actor.Sphere{Radius: 1}, actor.BodyTypeDynamic, 1)
	static := actor.NewRigidBody(actor.NewTransform(), &actor.Sphere{Radius: 1}, actor.BodyTypeStatic, 1)

	n := mgl64.Vec3{1, 0, 0}
	assert.InDelta(t, dynamic.InverseMass(), PositionalInverseMass(dynamic, mgl64.Vec3{}, n), 1e-12)

	// a lever arm perpendicular to n adds rotational inverse mass
	withArm := PositionalInverseMass(dynamic, mgl64.Vec3{0, 1, 0}, n)
	inertia := dynamic.InertiaLocal[0]
	assert.InDelta(t, dynamic.InverseMass()+1/inertia, withArm, 1e-12)

	assert.InDelta(t, 1/inertia, AngularInverseMass(dynamic, n), 1e-12)
	assert.Zero(t, PositionalInverseMass(static, mgl64.Vec3{0, 1, 0}, n))
	assert.Zero(t, AngularInverseMass(static, n))
}
