package ecs

// EventType identifies an event payload.
type EventType string

const (
	// EventReloadScene asks the scene systems to despawn and respawn the level.
	EventReloadScene EventType = "reload_scene"
	// EventBodyLanded is emitted by physics when a falling body touches support.
	EventBodyLanded EventType = "body_landed"
	// EventStateChanged is emitted by the scheduler after a state transition.
	EventStateChanged EventType = "state_changed"
)

// Event is a generic ECS event payload.
type Event struct {
	Type EventType
	Data any
}

// LandedEvent is the payload of EventBodyLanded.
type LandedEvent struct {
	Entity Entity
	// Speed is the downward speed at impact, in m/s.
	Speed float64
}

// StateChange is the payload of EventStateChanged.
type StateChange struct {
	From GameState
	To   GameState
}

// EventQueue is a simple FIFO queue. The scheduler clears it after the last
// system of a frame, so events pushed outside the scheduler (UI callbacks)
// are seen by the next frame's systems.
type EventQueue struct {
	items []Event
}

// Push adds an event.
func (q *EventQueue) Push(evt Event) {
	if q == nil {
		return
	}
	q.items = append(q.items, evt)
}

// Each calls fn for every queued event of type t without consuming it.
func (q *EventQueue) Each(t EventType, fn func(Event)) {
	if q == nil {
		return
	}
	for _, evt := range q.items {
		if evt.Type == t {
			fn(evt)
		}
	}
}

// Drain returns all events and clears the queue.
func (q *EventQueue) Drain() []Event {
	if q == nil || len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = nil
	return out
}

// Len returns the number of queued events.
func (q *EventQueue) Len() int {
	if q == nil {
		return 0
	}
	return len(q.items)
}

func (q *EventQueue) flush() {
	if q == nil {
		return
	}
	q.items = nil
}
