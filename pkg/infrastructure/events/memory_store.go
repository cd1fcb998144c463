package events

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// InMemoryEventStore keeps the events of planning runs in process memory.
// Subscribers are notified synchronously, in append order.
type InMemoryEventStore struct {
	streams     map[string][]Event
	subscribers map[string][]EventHandler
	mutex       sync.RWMutex
	allEvents   []Event
}

// NewInMemoryEventStore creates an empty event store
func NewInMemoryEventStore() *InMemoryEventStore {
	return &InMemoryEventStore{
		streams:     make(map[string][]Event),
		subscribers: make(map[string][]EventHandler),
		allEvents:   make([]Event, 0),
	}
}

var _ EventStore = (*InMemoryEventStore)(nil)

func (s *InMemoryEventStore) AppendEvent(streamID string, event Event) error {
	s.mutex.Lock()
	stored := BaseEvent{
		EventType:    event.Type(),
		Stream:       streamID,
		EventData:    event.Data(),
		EventTime:    event.Timestamp(),
		EventVersion: len(s.streams[streamID]) + 1,
	}
	s.streams[streamID] = append(s.streams[streamID], stored)
	s.allEvents = append(s.allEvents, stored)
	handlers := append([]EventHandler(nil), s.subscribers[stored.EventType]...)
	s.mutex.Unlock()

	for _, handler := range handlers {
		if !handler.CanHandle(stored.EventType) {
			continue
		}
		if err := handler.Handle(stored); err != nil {
			log.Error().Err(err).Str("event", stored.EventType).Str("stream", streamID).Msg("event handler failed")
		}
	}
	return nil
}

func (s *InMemoryEventStore) ReadEvents(streamID string, fromVersion int) ([]Event, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	events, exists := s.streams[streamID]
	if !exists {
		return []Event{}, nil
	}

	if fromVersion < 1 {
		fromVersion = 1
	}
	if fromVersion > len(events) {
		return []Event{}, nil
	}

	return append([]Event(nil), events[fromVersion-1:]...), nil
}

func (s *InMemoryEventStore) ReadAllEvents(fromPosition int) ([]Event, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if fromPosition < 0 {
		fromPosition = 0
	}
	if fromPosition >= len(s.allEvents) {
		return []Event{}, nil
	}

	return append([]Event(nil), s.allEvents[fromPosition:]...), nil
}

func (s *InMemoryEventStore) Subscribe(eventTypes []string, handler EventHandler) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, eventType := range eventTypes {
		s.subscribers[eventType] = append(s.subscribers[eventType], handler)
	}
	return nil
}

func (s *InMemoryEventStore) Unsubscribe(handler EventHandler) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for eventType, handlers := range s.subscribers {
		kept := make([]EventHandler, 0, len(handlers))
		for _, h := range handlers {
			if h != handler {
				kept = append(kept, h)
			}
		}
		s.subscribers[eventType] = kept
	}
	return nil
}
