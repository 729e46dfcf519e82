package events

import (
	"io"
	"log"
	"sync"
)

type subscription struct {
	id      int
	handler EventHandler
}

// InMemoryEventStore keeps events in memory. Subscribers are called
// synchronously, in subscription order, after the event is stored.
type InMemoryEventStore struct {
	streams     map[string][]Event
	subscribers map[string][]subscription
	mutex       sync.RWMutex
	allEvents   []Event
	nextID      int
	logger      *log.Logger
}

// NewInMemoryEventStore creates an event store. Handler errors are written to
// logger; nil discards them.
func NewInMemoryEventStore(logger *log.Logger) *InMemoryEventStore {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &InMemoryEventStore{
		streams:     make(map[string][]Event),
		subscribers: make(map[string][]subscription),
		allEvents:   make([]Event, 0),
		logger:      logger,
	}
}

var _ EventStore = (*InMemoryEventStore)(nil)

func (s *InMemoryEventStore) AppendEvent(streamID string, event Event) error {
	s.mutex.Lock()
	eventWithVersion := BaseEvent{
		EventType:    event.Type(),
		Stream:       streamID,
		EventData:    event.Data(),
		EventTime:    event.Timestamp(),
		EventVersion: len(s.streams[streamID]) + 1,
	}
	s.streams[streamID] = append(s.streams[streamID], eventWithVersion)
	s.allEvents = append(s.allEvents, eventWithVersion)

	handlers := append([]subscription(nil), s.subscribers[event.Type()]...)
	handlers = append(handlers, s.subscribers[AllEvents]...)
	s.mutex.Unlock()

	for _, sub := range handlers {
		if err := sub.handler.Handle(eventWithVersion); err != nil {
			s.logger.Printf("[events] handler failed for %s: %v", event.Type(), err)
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

// Subscribe registers handler for the given types, or for all with AllEvents.
// The returned function removes the subscription.
func (s *InMemoryEventStore) Subscribe(eventTypes []string, handler EventHandler) func() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.nextID++
	sub := subscription{id: s.nextID, handler: handler}
	for _, eventType := range eventTypes {
		s.subscribers[eventType] = append(s.subscribers[eventType], sub)
	}

	return func() {
		s.mutex.Lock()
		defer s.mutex.Unlock()
		for eventType, subs := range s.subscribers {
			kept := make([]subscription, 0, len(subs))
			for _, existing := range subs {
				if existing.id != sub.id {
					kept = append(kept, existing)
				}
			}
			s.subscribers[eventType] = kept
		}
	}
}
