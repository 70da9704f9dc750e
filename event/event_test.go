package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEvent struct {
	kind EventType
	id   int
}

func (e testEvent) Type() EventType { return e.kind }

type eventCapture struct {
	events []Event
}

func (ec *eventCapture) capture(event Event) {
	ec.events = append(ec.events, event)
}

func TestBus_FlushDeliversInOrder(t *testing.T) {
	bus := NewBus()
	capture := &eventCapture{}
	bus.Subscribe(GRAB_LOCK, capture.capture)
	bus.Subscribe(GRAB_RELEASE, capture.capture)

	bus.Emit(testEvent{kind: GRAB_LOCK, id: 1})
	bus.Emit(testEvent{kind: ON_SLEEP, id: 2})
	bus.Emit(testEvent{kind: GRAB_RELEASE, id: 3})

	assert.Empty(t, capture.events, "nothing is delivered before flush")
	assert.Equal(t, 3, bus.Pending())

	bus.Flush()

	require.Len(t, capture.events, 2)
	assert.Equal(t, 1, capture.events[0].(testEvent).id)
	assert.Equal(t, 3, capture.events[1].(testEvent).id)
	assert.Zero(t, bus.Pending())
}

func TestBus_MultipleListeners(t *testing.T) {
	bus := NewBus()
	a, b := &eventCapture{}, &eventCapture{}
	bus.Subscribe(ON_WAKE, a.capture)
	bus.Subscribe(ON_WAKE, b.capture)

	bus.Emit(testEvent{kind: ON_WAKE})
	bus.Flush()

	assert.Len(t, a.events, 1)
	assert.Len(t, b.events, 1)
}

func TestBus_EmitDuringFlush(t *testing.T) {
	bus := NewBus()
	capture := &eventCapture{}
	bus.Subscribe(GRAB_ABORT, capture.capture)
	bus.Subscribe(GRAB_LOCK, func(Event) {
		bus.Emit(testEvent{kind: GRAB_ABORT})
	})

	bus.Emit(testEvent{kind: GRAB_LOCK})
	bus.Flush()
	assert.Empty(t, capture.events)
	assert.Equal(t, 1, bus.Pending())

	bus.Flush()
	assert.Len(t, capture.events, 1)
}

func TestEventType_String(t *testing.T) {
	assert.Equal(t, "joint_broken", JOINT_BROKEN.String())
	assert.Equal(t, "grab_attract", GRAB_ATTRACT.String())
	assert.Equal(t, "unknown", EventType(200).String())
}
