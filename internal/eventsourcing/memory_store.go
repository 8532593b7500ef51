package eventsourcing

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/clivox/backend/internal/domain/shared"
	"github.com/google/uuid"
)

type memoryEvent struct {
	name       string
	data       []byte
	sequence   int64
	occurredOn time.Time
}

type memoryStream struct {
	kind   string
	events []memoryEvent
}

// MemoryStore is an in-process Store used by tests and local development.
// Events round-trip through the serializer exactly as they would against a
// real database, so aliasing between appended values and replayed state is
// impossible.
type MemoryStore struct {
	mu            sync.RWMutex
	serializer    *Serializer
	streams       map[uuid.UUID]*memoryStream
	materializers map[string]Materializer
	snapshots     map[uuid.UUID]Snapshot
	now           func() time.Time
}

// NewMemoryStore creates an empty in-memory event store
func NewMemoryStore(serializer *Serializer) *MemoryStore {
	return &MemoryStore{
		serializer:    serializer,
		streams:       make(map[uuid.UUID]*memoryStream),
		materializers: make(map[string]Materializer),
		snapshots:     make(map[uuid.UUID]Snapshot),
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// RegisterMaterializer installs the snapshot fold for one aggregate kind
func (s *MemoryStore) RegisterMaterializer(kind string, m Materializer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.materializers[kind] = m
}

// SetClock overrides the append timestamp source. Test hook.
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// StartStream implements Store
func (s *MemoryStore) StartStream(ctx context.Context, kind string, streamID uuid.UUID, events ...shared.DomainEvent) error {
	if len(events) == 0 {
		return shared.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.streams[streamID]; exists {
		return shared.ErrAlreadyExists
	}

	stream := &memoryStream{kind: kind}
	s.streams[streamID] = stream
	if err := s.appendLocked(stream, streamID, events); err != nil {
		delete(s.streams, streamID)
		return err
	}
	return nil
}

// Append implements Store
func (s *MemoryStore) Append(ctx context.Context, streamID uuid.UUID, expectedVersion int64, events ...shared.DomainEvent) error {
	if len(events) == 0 {
		return shared.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stream, exists := s.streams[streamID]
	if !exists {
		return shared.ErrStreamNotFound
	}
	if expectedVersion >= 0 && int64(len(stream.events)) != expectedVersion {
		return shared.ErrConcurrencyConflict
	}
	return s.appendLocked(stream, streamID, events)
}

func (s *MemoryStore) appendLocked(stream *memoryStream, streamID uuid.UUID, events []shared.DomainEvent) error {
	occurredOn := s.now()
	appended := make([]memoryEvent, 0, len(events))
	for _, event := range events {
		data, err := s.serializer.Serialize(event)
		if err != nil {
			return fmt.Errorf("serializing %s: %w", event.EventName(), err)
		}
		appended = append(appended, memoryEvent{
			name:       event.EventName(),
			data:       data,
			sequence:   int64(len(stream.events)+len(appended)) + 1,
			occurredOn: occurredOn,
		})
	}
	stream.events = append(stream.events, appended...)
	return s.refreshSnapshotLocked(stream, streamID)
}

func (s *MemoryStore) refreshSnapshotLocked(stream *memoryStream, streamID uuid.UUID) error {
	materialize, ok := s.materializers[stream.kind]
	if !ok {
		return nil
	}
	stored, err := s.loadLocked(stream, streamID)
	if err != nil {
		return err
	}
	data, deleted, err := materialize(stored)
	if err != nil {
		return fmt.Errorf("materializing %s snapshot: %w", stream.kind, err)
	}
	s.snapshots[streamID] = Snapshot{
		StreamID: streamID,
		Kind:     stream.kind,
		Version:  int64(len(stream.events)),
		Deleted:  deleted,
		Data:     data,
	}
	return nil
}

// LoadStream implements Store
func (s *MemoryStore) LoadStream(ctx context.Context, streamID uuid.UUID) ([]StoredEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stream, exists := s.streams[streamID]
	if !exists {
		return nil, nil
	}
	return s.loadLocked(stream, streamID)
}

func (s *MemoryStore) loadLocked(stream *memoryStream, streamID uuid.UUID) ([]StoredEvent, error) {
	stored := make([]StoredEvent, 0, len(stream.events))
	for _, me := range stream.events {
		event, err := s.serializer.Deserialize(me.name, me.data)
		if err != nil {
			return nil, err
		}
		stored = append(stored, StoredEvent{
			Event: event,
			Envelope: Envelope{
				AggregateID: streamID,
				EventName:   me.name,
				Sequence:    me.sequence,
				OccurredOn:  me.occurredOn,
			},
		})
	}
	return stored, nil
}

// QuerySnapshots implements Store
func (s *MemoryStore) QuerySnapshots(ctx context.Context, kind string) ([]Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshots := make([]Snapshot, 0)
	for _, snap := range s.snapshots {
		if snap.Kind == kind && !snap.Deleted {
			snapshots = append(snapshots, snap)
		}
	}
	return snapshots, nil
}
