package constraint

import (
	"github.com/akmonengine/grasp/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// Epsilon guards divisions and normalizations in the solver
const Epsilon = 1e-10

// AlphaTilde scales a compliance (m/N) by the substep: α̃ = α / dt²
func AlphaTilde(compliance, dt float64) float64 {
	if dt <= Epsilon {
		return 0
	}
	return compliance / (dt * dt)
}

// LagrangeUpdate returns Δλ = (-C - α̃λ) / (wA + wB + α̃) for a constraint error c
// and the multiplier lagrange accumulated so far in this substep.
// It is 0 when neither body can move or dt is degenerate.
func LagrangeUpdate(lagrange, c, wA, wB, compliance, dt float64) float64 {
	if dt <= Epsilon || wA+wB <= Epsilon {
		return 0
	}

	alphaTilde := AlphaTilde(compliance, dt)
	return (-c - alphaTilde*lagrange) / (wA + wB + alphaTilde)
}

// PositionalInverseMass is the generalized inverse mass of a body for a correction
// along n applied at offset r: w = 1/m + (r × n)ᵀ I⁻¹ (r × n)
func PositionalInverseMass(body *actor.RigidBody, r, n mgl64.Vec3) float64 {
	if !body.IsDynamic() {
		return 0
	}

	rCrossN := r.Cross(n)
	return body.InverseMass() + body.GetInverseInertiaWorld().Mul3x1(rCrossN).Dot(rCrossN)
}

// AngularInverseMass is the generalized inverse mass for a rotation about axis: w = aᵀ I⁻¹ a
func AngularInverseMass(body *actor.RigidBody, axis mgl64.Vec3) float64 {
	if !body.IsDynamic() {
		return 0
	}

	return body.GetInverseInertiaWorld().Mul3x1(axis).Dot(axis)
}

// DeltaRotation returns twice the vector part of qA * qB⁻¹, taken on the w >= 0
// hemisphere so the error follows the shorter arc. For small angles it is the
// rotation vector that carries qB onto qA.
func DeltaRotation(qA, qB mgl64.Quat) mgl64.Vec3 {
	dq := qA.Mul(qB.Inverse())
	if dq.W < 0 {
		dq = dq.Scale(-1)
	}
	return dq.V.Mul(2)
}

// ApplyRotation rotates q by the world-space rotation vector dTheta.
// For a small angle δθ the rotation quaternion is q_delta ≈ [1, δθ/2]
func ApplyRotation(q mgl64.Quat, dTheta mgl64.Vec3) mgl64.Quat {
	if dTheta.Len() <= Epsilon {
		return q
	}

	qDelta := mgl64.Quat{W: 1.0, V: dTheta.Mul(0.5)}.Normalize()
	return qDelta.Mul(q).Normalize()
}

// ForceFromLagrange converts an accumulated multiplier into a force (or torque) along direction: λn / dt²
func ForceFromLagrange(lagrange float64, direction mgl64.Vec3, dt float64) mgl64.Vec3 {
	if dt <= Epsilon {
		return mgl64.Vec3{}
	}
	return direction.Mul(lagrange / (dt * dt))
}
