package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// AABB represents an axis-aligned bounding box
type AABB struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

// IntersectRay runs a slab test and returns the entry and exit distances along the ray.
// A ray starting inside the box has tmin < 0.
func (a AABB) IntersectRay(origin, direction mgl64.Vec3, maxDistance float64) (tmin, tmax float64, ok bool) {
	tmin = math.Inf(-1)
	tmax = math.Inf(1)

	for axis := 0; axis < 3; axis++ {
		if math.Abs(direction[axis]) < 1e-12 {
			// parallel to the slab: must already be inside it
			if origin[axis] < a.Min[axis] || origin[axis] > a.Max[axis] {
				return 0, 0, false
			}
			continue
		}

		inv := 1.0 / direction[axis]
		t1 := (a.Min[axis] - origin[axis]) * inv
		t2 := (a.Max[axis] - origin[axis]) * inv
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math.Max(tmin, t1)
		tmax = math.Min(tmax, t2)
		if tmin > tmax {
			return 0, 0, false
		}
	}

	if tmax < 0 || tmin > maxDistance {
		return 0, 0, false
	}

	return tmin, tmax, true
}
