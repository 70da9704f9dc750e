// Package grasp runs a substepped XPBD world of rigid bodies coupled by joints.
package grasp

import (
	"errors"
	"fmt"

	"github.com/akmonengine/grasp/actor"
	"github.com/akmonengine/grasp/arena"
	"github.com/akmonengine/grasp/config"
	"github.com/akmonengine/grasp/constraint"
	"github.com/akmonengine/grasp/event"
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
)

const DEFAULT_WORKERS = 1

// Phase is a named slot of the substep pipeline. Phases run in declaration order.
type Phase int

const (
	PhaseIntegrate Phase = iota
	PhaseSolveConstraints
	PhaseUpdateVelocities
	PhaseSolveVelocities
	PhaseSleep
	phaseCount
)

var phaseNames = [...]string{
	PhaseIntegrate:        "integrate",
	PhaseSolveConstraints: "solve_constraints",
	PhaseUpdateVelocities: "update_velocities",
	PhaseSolveVelocities:  "solve_velocities",
	PhaseSleep:            "sleep",
}

func (p Phase) String() string {
	if p >= 0 && p < phaseCount {
		return phaseNames[p]
	}
	return "unknown"
}

// SubstepSystem runs once per substep inside its phase, h being the substep duration
type SubstepSystem func(w *World, h float64)

var ErrUnknownPhase = errors.New("grasp: unknown phase")

type World struct {
	Bodies *arena.Arena[*actor.RigidBody]
	Joints *arena.Arena[constraint.Constraint]

	// Gravity acceleration (m/s², or N/kg)
	Gravity  mgl64.Vec3
	Substeps int
	Workers  int

	SleepTime     float64
	SleepVelocity float64

	Events *event.Bus
	Logger *zap.Logger

	systems     [phaseCount][]SubstepSystem
	sleepStates map[actor.BodyHandle]bool
}

// NewWorld creates an empty world. The built-in integration, joint, velocity
// and sleep systems are registered first in their phases.
func NewWorld(cfg config.World, logger *zap.Logger) *World {
	if logger == nil {
		logger = zap.NewNop()
	}

	w := &World{
		Bodies:        arena.New[*actor.RigidBody](),
		Joints:        arena.New[constraint.Constraint](),
		Gravity:       cfg.GravityVec(),
		Substeps:      cfg.Substeps,
		Workers:       cfg.Workers,
		SleepTime:     cfg.SleepTime,
		SleepVelocity: cfg.SleepVelocity,
		Events:        event.NewBus(),
		Logger:        logger,
		sleepStates:   make(map[actor.BodyHandle]bool),
	}

	w.systems[PhaseIntegrate] = []SubstepSystem{(*World).integrate}
	w.systems[PhaseSolveConstraints] = []SubstepSystem{(*World).solvePosition}
	w.systems[PhaseUpdateVelocities] = []SubstepSystem{(*World).update}
	w.systems[PhaseSolveVelocities] = []SubstepSystem{(*World).solveVelocity}
	w.systems[PhaseSleep] = []SubstepSystem{(*World).trySleep}

	return w
}

// AddSystem appends a system to a phase, after the ones already registered
func (w *World) AddSystem(phase Phase, system SubstepSystem) error {
	if phase < 0 || phase >= phaseCount {
		return fmt.Errorf("%w: %d", ErrUnknownPhase, int(phase))
	}
	w.systems[phase] = append(w.systems[phase], system)
	return nil
}

// AddBody adds a rigid body to the world
func (w *World) AddBody(body *actor.RigidBody) actor.BodyHandle {
	h := w.Bodies.Insert(body)
	w.Logger.Debug("body added", zap.Uint32("body", h.Index), zap.String("name", body.Name))
	return h
}

// RemoveBody removes a rigid body from the world. Joints referencing it
// break on the next constraint pass.
func (w *World) RemoveBody(h actor.BodyHandle) error {
	if err := w.Bodies.Remove(h); err != nil {
		return fmt.Errorf("remove body %d/%d: %w", h.Index, h.Generation, err)
	}
	delete(w.sleepStates, h)
	w.Logger.Debug("body removed", zap.Uint32("body", h.Index))
	return nil
}

func (w *World) Body(h actor.BodyHandle) (*actor.RigidBody, bool) {
	return w.Bodies.Get(h)
}

func (w *World) AddJoint(joint constraint.Constraint) constraint.JointHandle {
	h := w.Joints.Insert(joint)
	bodies := joint.Bodies()
	w.Logger.Debug("joint added",
		zap.Uint32("joint", h.Index),
		zap.Uint32("body_a", bodies[0].Index),
		zap.Uint32("body_b", bodies[1].Index))
	return h
}

func (w *World) RemoveJoint(h constraint.JointHandle) error {
	if err := w.Joints.Remove(h); err != nil {
		return fmt.Errorf("remove joint %d/%d: %w", h.Index, h.Generation, err)
	}
	w.Logger.Debug("joint removed", zap.Uint32("joint", h.Index))
	return nil
}

func (w *World) Joint(h constraint.JointHandle) (constraint.Constraint, bool) {
	return w.Joints.Get(h)
}

// Step advances the world by dt, split into Substeps substeps.
// Events emitted during the step are delivered once it is over.
func (w *World) Step(dt float64) {
	if dt <= 0 {
		return
	}

	w.Workers = max(DEFAULT_WORKERS, w.Workers)
	substeps := max(1, w.Substeps)
	h := dt / float64(substeps)

	for range substeps {
		for phase := range phaseCount {
			for _, system := range w.systems[phase] {
				system(w, h)
			}
		}
	}

	w.processSleepEvents()
	w.Events.Flush()
}

type bodyEntry struct {
	handle actor.BodyHandle
	body   *actor.RigidBody
}

func (w *World) entries() []bodyEntry {
	entries := make([]bodyEntry, 0, w.Bodies.Len())
	w.Bodies.Each(func(h actor.BodyHandle, body *actor.RigidBody) bool {
		entries = append(entries, bodyEntry{handle: h, body: body})
		return true
	})
	return entries
}

func (w *World) integrate(h float64) {
	err := task(w.Workers, w.entries(), func(e bodyEntry) error {
		e.body.Integrate(h, w.Gravity)
		return checkFinite(e)
	})
	if err != nil {
		w.Logger.Warn("integration diverged, body reset", zap.Error(err))
	}
}

func (w *World) update(h float64) {
	err := task(w.Workers, w.entries(), func(e bodyEntry) error {
		e.body.Update(h)
		return checkFinite(e)
	})
	if err != nil {
		w.Logger.Warn("velocity update diverged, body reset", zap.Error(err))
	}
}

type jointEntry struct {
	handle constraint.JointHandle
	joint  constraint.Constraint
}

// solvePosition resets every joint's multipliers, then solves the joints one
// after another in slot order. Joints whose bodies are gone are removed.
func (w *World) solvePosition(h float64) {
	joints := w.jointEntries()
	for _, j := range joints {
		j.joint.ResetLagrange()
	}

	for _, j := range joints {
		if err := constraint.SolvePosition(j.joint, w, h); err != nil {
			w.breakJoint(j, err)
		}
	}
}

func (w *World) solveVelocity(h float64) {
	for _, j := range w.jointEntries() {
		if err := constraint.SolveVelocity(j.joint, w, h); err != nil {
			w.breakJoint(j, err)
		}
	}
}

func (w *World) jointEntries() []jointEntry {
	joints := make([]jointEntry, 0, w.Joints.Len())
	w.Joints.Each(func(h constraint.JointHandle, joint constraint.Constraint) bool {
		joints = append(joints, jointEntry{handle: h, joint: joint})
		return true
	})
	return joints
}

func (w *World) breakJoint(j jointEntry, cause error) {
	if err := w.Joints.Remove(j.handle); err != nil {
		return
	}
	w.Logger.Warn("joint broken", zap.Uint32("joint", j.handle.Index), zap.Error(cause))
	w.Events.Emit(JointBrokenEvent{Joint: j.handle, Bodies: j.joint.Bodies(), Err: cause})
}

// trySleep sets the body to sleep if its velocity is lower than the threshold, for a given duration
// this method is too simple to use a task, it slows down in multiple goroutines
func (w *World) trySleep(h float64) {
	w.Bodies.Each(func(_ actor.BodyHandle, body *actor.RigidBody) bool {
		body.TrySleep(h, w.SleepTime, w.SleepVelocity)
		return true
	})
}
