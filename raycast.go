package grasp

import (
	"cmp"
	"iter"
	"slices"

	"github.com/akmonengine/grasp/actor"
	"github.com/akmonengine/grasp/constraint"
	"github.com/go-gl/mathgl/mgl64"
)

type rayHit struct {
	body     actor.BodyHandle
	distance float64
}

// CastRay yields the bodies hit by the ray, nearest first, with their distance
// from origin. direction does not need to be normalized. With solid set, a ray
// starting inside a shape hits it at distance 0.
//
//	for h, distance := range world.CastRay(eye, forward, 10, true) {
//		...
//		break
//	}
func (w *World) CastRay(origin, direction mgl64.Vec3, maxDistance float64, solid bool) iter.Seq2[actor.BodyHandle, float64] {
	return func(yield func(actor.BodyHandle, float64) bool) {
		length := direction.Len()
		if length <= constraint.Epsilon || maxDistance <= 0 {
			return
		}
		direction = direction.Mul(1.0 / length)

		var hits []rayHit
		w.Bodies.Each(func(h actor.BodyHandle, body *actor.RigidBody) bool {
			if distance, ok := body.RayCast(origin, direction, maxDistance, solid); ok {
				hits = append(hits, rayHit{body: h, distance: distance})
			}
			return true
		})

		slices.SortStableFunc(hits, func(a, b rayHit) int {
			return cmp.Compare(a.distance, b.distance)
		})

		for _, hit := range hits {
			if !yield(hit.body, hit.distance) {
				return
			}
		}
	}
}
