package constraint

import (
	"errors"
	"fmt"

	"github.com/akmonengine/grasp/actor"
	"github.com/akmonengine/grasp/arena"
)

// ErrStaleBody is returned when a constraint references a body that no longer exists.
// The owner must drop the constraint.
var ErrStaleBody = errors.New("constraint: stale body handle")

// Constraint couples two bodies and corrects their positions and orientations
// once per substep. The world calls ResetLagrange on every constraint before
// solving any of them, then solves them one after another.
type Constraint interface {
	// Bodies returns the pair of bodies the constraint couples
	Bodies() [2]actor.BodyHandle
	// ResetLagrange zeroes the multipliers accumulated during the previous substep
	ResetLagrange()
	// SolvePosition corrects positions and orientations in place
	SolvePosition(bodyA, bodyB *actor.RigidBody, dt float64)
	// SolveVelocity runs after velocities were derived from the corrected positions
	SolveVelocity(bodyA, bodyB *actor.RigidBody, dt float64)
}

// JointHandle references a Constraint stored in the world. The zero value is "none".
type JointHandle = arena.Handle[Constraint]

// BodyLookup resolves body handles; the world implements it
type BodyLookup interface {
	Body(h actor.BodyHandle) (*actor.RigidBody, bool)
}

func resolve(c Constraint, bodies BodyLookup) (*actor.RigidBody, *actor.RigidBody, error) {
	handles := c.Bodies()

	bodyA, ok := bodies.Body(handles[0])
	if !ok {
		return nil, nil, fmt.Errorf("body A %d/%d: %w", handles[0].Index, handles[0].Generation, ErrStaleBody)
	}
	bodyB, ok := bodies.Body(handles[1])
	if !ok {
		return nil, nil, fmt.Errorf("body B %d/%d: %w", handles[1].Index, handles[1].Generation, ErrStaleBody)
	}

	return bodyA, bodyB, nil
}

// SolvePosition resolves both bodies of c and runs its position pass.
// Nothing is touched when a body is gone; the error wraps ErrStaleBody.
func SolvePosition(c Constraint, bodies BodyLookup, dt float64) error {
	bodyA, bodyB, err := resolve(c, bodies)
	if err != nil {
		return err
	}
	if bodyA.IsSleeping && bodyB.IsSleeping {
		return nil
	}

	c.SolvePosition(bodyA, bodyB, dt)
	return nil
}

// SolveVelocity resolves both bodies of c and runs its velocity pass.
func SolveVelocity(c Constraint, bodies BodyLookup, dt float64) error {
	bodyA, bodyB, err := resolve(c, bodies)
	if err != nil {
		return err
	}
	if bodyA.IsSleeping && bodyB.IsSleeping {
		return nil
	}

	c.SolveVelocity(bodyA, bodyB, dt)
	return nil
}
