package grasp

import (
	"github.com/akmonengine/grasp/actor"
	"github.com/akmonengine/grasp/constraint"
	"github.com/akmonengine/grasp/event"
)

// Sleep/Wake events
type SleepEvent struct {
	Body actor.BodyHandle
}

func (e SleepEvent) Type() event.EventType { return event.ON_SLEEP }

type WakeEvent struct {
	Body actor.BodyHandle
}

func (e WakeEvent) Type() event.EventType { return event.ON_WAKE }

// JointBrokenEvent is emitted when a joint is dropped because one of its bodies is gone
type JointBrokenEvent struct {
	Joint  constraint.JointHandle
	Bodies [2]actor.BodyHandle
	Err    error
}

func (e JointBrokenEvent) Type() event.EventType { return event.JOINT_BROKEN }

// processSleepEvents compares each body's sleep flag with the state seen at the
// previous step. A newly tracked body emits nothing.
func (w *World) processSleepEvents() {
	w.Bodies.Each(func(h actor.BodyHandle, body *actor.RigidBody) bool {
		trackedState, exists := w.sleepStates[h]
		if !exists {
			w.sleepStates[h] = body.IsSleeping
			return true
		}

		if !trackedState && body.IsSleeping {
			w.Events.Emit(SleepEvent{Body: h})
			w.sleepStates[h] = true
		} else if trackedState && !body.IsSleeping {
			w.Events.Emit(WakeEvent{Body: h})
			w.sleepStates[h] = false
		}
		return true
	})
}
