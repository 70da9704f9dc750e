package grab

import (
	"github.com/akmonengine/grasp/actor"
	"github.com/akmonengine/grasp/constraint"
	"github.com/akmonengine/grasp/event"
	"github.com/google/uuid"
)

type AbortReason string

const (
	ReasonReleased    AbortReason = "primary_released"
	ReasonStaleTarget AbortReason = "stale_target"
	ReasonStaleHand   AbortReason = "stale_hand"
	ReasonJointBroken AbortReason = "joint_broken"
)

// TargetEvent is emitted when the potential target changes, Target being nil when it was lost
type TargetEvent struct {
	Previous actor.BodyHandle
	Target   actor.BodyHandle
	Distance float64
}

func (e TargetEvent) Type() event.EventType { return event.GRAB_TARGET }

type AttractEvent struct {
	Session uuid.UUID
	Target  actor.BodyHandle
}

func (e AttractEvent) Type() event.EventType { return event.GRAB_ATTRACT }

type LockEvent struct {
	Session uuid.UUID
	Target  actor.BodyHandle
	Joint   constraint.JointHandle
}

func (e LockEvent) Type() event.EventType { return event.GRAB_LOCK }

type ReleaseEvent struct {
	Session uuid.UUID
	Target  actor.BodyHandle
}

func (e ReleaseEvent) Type() event.EventType { return event.GRAB_RELEASE }

type AbortEvent struct {
	Session uuid.UUID
	Target  actor.BodyHandle
	Reason  AbortReason
}

func (e AbortEvent) Type() event.EventType { return event.GRAB_ABORT }
