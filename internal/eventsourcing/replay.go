package eventsourcing

import (
	"encoding/json"
	"fmt"

	"github.com/clivox/backend/internal/domain/shared"
)

// Projection is the pure fold-function set for one aggregate kind. Apply
// must not mutate the state it is given; it returns a fresh value per step.
// ApplyMetadata runs once per replay after all events are folded.
type Projection[T shared.AggregateRoot] interface {
	// Zero returns the aggregate's initial state before any event.
	Zero() T

	// Apply folds one event into the state. It is total over every event
	// kind registered for the aggregate; an unknown event fails with
	// shared.ErrUnhandledEvent.
	Apply(state T, event shared.DomainEvent) (T, error)

	// ApplyMetadata stamps CreatedOn (only when still zero, so it keeps
	// the first event's timestamp across replays) and ModifiedOn (always
	// from the last event).
	ApplyMetadata(state T, last Envelope) T
}

// Result is the outcome of replaying one stream.
type Result[T shared.AggregateRoot] struct {
	Aggregate T
	Version   int64
	Deleted   bool
}

// Replay folds an ordered stream into the aggregate's current state.
// Replay is strictly sequential; a tombstone marks the aggregate deleted
// but does not stop folding of later events. Replaying an empty stream
// returns the zero state with Version 0; callers treat that as not found.
func Replay[T shared.AggregateRoot](p Projection[T], stream []StoredEvent) (Result[T], error) {
	state := p.Zero()
	deleted := false

	for _, se := range stream {
		next, err := p.Apply(state, se.Event)
		if err != nil {
			return Result[T]{}, fmt.Errorf("replaying %s at sequence %d: %w", se.Envelope.EventName, se.Envelope.Sequence, err)
		}
		if _, ok := se.Event.(shared.TombstoneEvent); ok {
			deleted = true
		}
		state = next
	}

	version := int64(len(stream))
	if version > 0 {
		// ApplyMetadata only sets CreatedOn while it is still default, so
		// running it for the first and then the last envelope stamps
		// CreatedOn from the first event and ModifiedOn from the last.
		state = p.ApplyMetadata(state, stream[0].Envelope)
		last := stream[len(stream)-1].Envelope
		state = p.ApplyMetadata(state, last)
		state.SetID(last.AggregateID)
		state.SetVersion(version)
	}

	return Result[T]{Aggregate: state, Version: version, Deleted: deleted}, nil
}

// NewMaterializer adapts a projection into the snapshot fold the store runs
// after every append to refresh its materialized view.
func NewMaterializer[T shared.AggregateRoot](p Projection[T]) Materializer {
	return func(stream []StoredEvent) ([]byte, bool, error) {
		result, err := Replay(p, stream)
		if err != nil {
			return nil, false, err
		}
		data, err := json.Marshal(result.Aggregate)
		if err != nil {
			return nil, false, fmt.Errorf("marshaling snapshot: %w", err)
		}
		return data, result.Deleted, nil
	}
}
