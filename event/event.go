// Package event buffers typed events during a step and delivers them to
// listeners on Flush.
package event

type EventType uint8

const (
	ON_SLEEP EventType = iota
	ON_WAKE
	JOINT_BROKEN
	GRAB_TARGET
	GRAB_ATTRACT
	GRAB_LOCK
	GRAB_RELEASE
	GRAB_ABORT
)

var typeNames = [...]string{
	ON_SLEEP:     "sleep",
	ON_WAKE:      "wake",
	JOINT_BROKEN: "joint_broken",
	GRAB_TARGET:  "grab_target",
	GRAB_ATTRACT: "grab_attract",
	GRAB_LOCK:    "grab_lock",
	GRAB_RELEASE: "grab_release",
	GRAB_ABORT:   "grab_abort",
}

func (t EventType) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "unknown"
}

// Event interface - all events implement this
type Event interface {
	Type() EventType
}

// Listener - callback for events
type Listener func(event Event)

// Bus holds listeners by event type and the events emitted since the last flush
type Bus struct {
	listeners map[EventType][]Listener
	buffer    []Event
}

func NewBus() *Bus {
	return &Bus{
		listeners: make(map[EventType][]Listener),
		buffer:    make([]Event, 0, 64),
	}
}

// Subscribe adds a listener for an event type
func (b *Bus) Subscribe(eventType EventType, listener Listener) {
	b.listeners[eventType] = append(b.listeners[eventType], listener)
}

// Emit buffers an event until the next Flush
func (b *Bus) Emit(event Event) {
	b.buffer = append(b.buffer, event)
}

// Pending returns the number of buffered events
func (b *Bus) Pending() int {
	return len(b.buffer)
}

// Flush sends all buffered events in emission order and clears the buffer.
// Events emitted by listeners during the flush are delivered on the next flush.
func (b *Bus) Flush() {
	events := b.buffer
	b.buffer = make([]Event, 0, cap(events))

	for _, event := range events {
		for _, listener := range b.listeners[event.Type()] {
			listener(event)
		}
	}
}
