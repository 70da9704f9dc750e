// Package pid implements a three-axis proportional-integral-derivative controller.
package pid

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Epsilon is the smallest time step Update accepts
const Epsilon = 1e-10

// Stabilizer keeps its integral and last error between calls.
// There is no reset: a caller switching targets builds a new Stabilizer.
type Stabilizer struct {
	P, I, D float64

	// IntegralLimit bounds each axis of the integral. 0 leaves it unbounded.
	IntegralLimit float64

	integral  mgl64.Vec3
	lastError mgl64.Vec3
}

func New(p, i, d float64) *Stabilizer {
	return &Stabilizer{P: p, I: i, D: d}
}

// Update feeds the current error and returns P·e + I·∫e + D·de/dt.
// A dt below Epsilon returns the zero vector and leaves the state untouched.
func (s *Stabilizer) Update(err mgl64.Vec3, dt float64) mgl64.Vec3 {
	if dt <= Epsilon || math.IsNaN(dt) || math.IsInf(dt, 0) {
		return mgl64.Vec3{}
	}

	s.integral = s.integral.Add(err.Mul(dt))
	if s.IntegralLimit > 0 {
		for axis := range s.integral {
			s.integral[axis] = mgl64.Clamp(s.integral[axis], -s.IntegralLimit, s.IntegralLimit)
		}
	}
	derivative := err.Sub(s.lastError).Mul(1.0 / dt)
	s.lastError = err

	return err.Mul(s.P).Add(s.integral.Mul(s.I)).Add(derivative.Mul(s.D))
}

func (s *Stabilizer) Integral() mgl64.Vec3 {
	return s.integral
}

func (s *Stabilizer) LastError() mgl64.Vec3 {
	return s.lastError
}
