package grasp

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/sync/errgroup"
)

var ErrNonFinite = errors.New("grasp: non-finite body state")

// task splits data in workersCount chunks and runs fn on each chunk in its own goroutine.
// Every element is processed; the first error is returned.
func task[T any](workersCount int, data []T, fn func(data T) error) error {
	var g errgroup.Group
	dataSize := len(data)
	chunkSize := (dataSize + workersCount - 1) / workersCount

	for workerID := 0; workerID < workersCount; workerID++ {
		start, end := workerID*chunkSize, min((workerID+1)*chunkSize, dataSize)
		if start >= end {
			break
		}
		g.Go(func() error {
			var first error
			for i := start; i < end; i++ {
				if err := fn(data[i]); err != nil && first == nil {
					first = err
				}
			}
			return first
		})
	}

	return g.Wait()
}

// checkFinite restores the previous pose of a body whose state went NaN or infinite
func checkFinite(e bodyEntry) error {
	body := e.body
	if finite(body.Transform.Position) && finite(body.Velocity) && finite(body.AngularVelocity) && finite(body.Transform.Rotation.V) {
		return nil
	}

	body.Transform = body.PreviousTransform
	body.Velocity = mgl64.Vec3{}
	body.AngularVelocity = mgl64.Vec3{}
	body.ClearForces()
	body.Shape.ComputeAABB(body.Transform)

	return fmt.Errorf("body %d/%d: %w", e.handle.Index, e.handle.Generation, ErrNonFinite)
}

func finite(v mgl64.Vec3) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}
