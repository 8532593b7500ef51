package eventsourcing

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sync"

	"github.com/clivox/backend/internal/domain/shared"
)

// Serializer handles JSON serialization/deserialization of domain events.
// Stores persist events by name + payload; the registry maps each event
// name back to its Go type on load.
type Serializer struct {
	mu       sync.RWMutex
	registry map[string]reflect.Type // event name -> Go type
}

// NewSerializer creates a new event serializer
func NewSerializer() *Serializer {
	return &Serializer{
		registry: make(map[string]reflect.Type),
	}
}

// Register registers an event type for deserialization.
// The name must match what EventName() returns on the event.
func (s *Serializer) Register(name string, eventInstance shared.DomainEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := reflect.TypeOf(eventInstance)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	s.registry[name] = t
}

// Serialize serializes a domain event to JSON bytes
func (s *Serializer) Serialize(event shared.DomainEvent) ([]byte, error) {
	return json.Marshal(event)
}

// Deserialize deserializes JSON bytes into the registered event type.
// An unregistered name fails with shared.ErrUnhandledEvent: a stored event
// nobody can replay is a schema mismatch, not a skippable row.
func (s *Serializer) Deserialize(name string, data []byte) (shared.DomainEvent, error) {
	s.mu.RLock()
	t, ok := s.registry[name]
	s.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("event type %q: %w", name, shared.ErrUnhandledEvent)
	}

	eventPtr := reflect.New(t).Interface()
	if err := json.Unmarshal(data, eventPtr); err != nil {
		return nil, fmt.Errorf("unmarshaling event %q: %w", name, err)
	}

	event, ok := eventPtr.(shared.DomainEvent)
	if !ok {
		return nil, fmt.Errorf("registered type for %q does not implement DomainEvent", name)
	}

	return event, nil
}

// IsRegistered checks if an event name is registered
func (s *Serializer) IsRegistered(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.registry[name]
	return ok
}

// RegisteredNames returns all registered event names
func (s *Serializer) RegisteredNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.registry))
	for name := range s.registry {
		names = append(names, name)
	}
	return names
}
