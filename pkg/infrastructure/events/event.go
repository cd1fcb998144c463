package events

import (
	"time"
)

// Event is an immutable fact recorded during a planning run
type Event interface {
	Type() string
	StreamID() string
	Data() interface{}
	Timestamp() time.Time
	Version() int
}

// EventHandler receives events of the types it subscribed to
type EventHandler interface {
	Handle(event Event) error
	CanHandle(eventType string) bool
}

// EventStore appends events to per-run streams and fans them out to subscribers
type EventStore interface {
	AppendEvent(streamID string, event Event) error
	ReadEvents(streamID string, fromVersion int) ([]Event, error)
	ReadAllEvents(fromPosition int) ([]Event, error)
	Subscribe(eventTypes []string, handler EventHandler) error
	Unsubscribe(handler EventHandler) error
}

// BaseEvent is the stored form of every event
type BaseEvent struct {
	EventType    string      `json:"type"`
	Stream       string      `json:"stream"`
	EventData    interface{} `json:"data"`
	EventTime    time.Time   `json:"time"`
	EventVersion int         `json:"version"`
}

func (e BaseEvent) Type() string {
	return e.EventType
}

func (e BaseEvent) StreamID() string {
	return e.Stream
}

func (e BaseEvent) Data() interface{} {
	return e.EventData
}

func (e BaseEvent) Timestamp() time.Time {
	return e.EventTime
}

func (e BaseEvent) Version() int {
	return e.EventVersion
}

// NewEvent creates an event; the store assigns its final version
func NewEvent(eventType, streamID string, data interface{}) Event {
	return BaseEvent{
		EventType:    eventType,
		Stream:       streamID,
		EventData:    data,
		EventTime:    time.Now().UTC(),
		EventVersion: 1,
	}
}

// HandlerFunc adapts a function to EventHandler for a fixed set of types.
// An empty type list accepts every event.
type HandlerFunc struct {
	Types []string
	Fn    func(Event) error
}

func (h *HandlerFunc) Handle(event Event) error {
	return h.Fn(event)
}

func (h *HandlerFunc) CanHandle(eventType string) bool {
	if len(h.Types) == 0 {
		return true
	}
	for _, t := range h.Types {
		if t == eventType {
			return true
		}
	}
	return false
}
