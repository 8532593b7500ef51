package persistence

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/clivox/backend/internal/domain/shared"
	"github.com/clivox/backend/internal/eventsourcing"
	"github.com/google/uuid"
)

// AggregateRepository is the generic event-sourced persistence engine the
// typed repositories are built on: load folds the stream, list reads the
// materialized snapshots, writes append events.
type AggregateRepository[T shared.AggregateRoot] struct {
	store      eventsourcing.Store
	kind       string
	projection eventsourcing.Projection[T]
}

// NewAggregateRepository creates the engine for one aggregate kind
func NewAggregateRepository[T shared.AggregateRoot](store eventsourcing.Store, kind string, projection eventsourcing.Projection[T]) *AggregateRepository[T] {
	return &AggregateRepository[T]{store: store, kind: kind, projection: projection}
}

// Load replays one stream into current state. Unknown streams and deleted
// aggregates both yield shared.ErrNotFound; deletion is visible only
// through LoadAny.
func (r *AggregateRepository[T]) Load(ctx context.Context, id uuid.UUID) (T, error) {
	result, err := r.LoadAny(ctx, id)
	if err != nil {
		var zero T
		return zero, err
	}
	if result.Deleted {
		var zero T
		return zero, shared.ErrNotFound
	}
	return result.Aggregate, nil
}

// LoadAny replays one stream including deleted aggregates. An empty stream
// yields shared.ErrNotFound.
func (r *AggregateRepository[T]) LoadAny(ctx context.Context, id uuid.UUID) (eventsourcing.Result[T], error) {
	stream, err := r.store.LoadStream(ctx, id)
	if err != nil {
		return eventsourcing.Result[T]{}, err
	}
	if len(stream) == 0 {
		return eventsourcing.Result[T]{}, shared.ErrNotFound
	}
	return eventsourcing.Replay(r.projection, stream)
}

// List returns every live aggregate of the kind from the materialized
// snapshots, in unspecified order.
func (r *AggregateRepository[T]) List(ctx context.Context) ([]T, error) {
	snapshots, err := r.store.QuerySnapshots(ctx, r.kind)
	if err != nil {
		return nil, err
	}

	aggregates := make([]T, 0, len(snapshots))
	for _, snapshot := range snapshots {
		aggregate := r.projection.Zero()
		if err := json.Unmarshal(snapshot.Data, aggregate); err != nil {
			return nil, fmt.Errorf("unmarshaling %s snapshot %s: %w", r.kind, snapshot.StreamID, err)
		}
		aggregate.SetID(snapshot.StreamID)
		aggregate.SetVersion(snapshot.Version)
		aggregates = append(aggregates, aggregate)
	}
	return aggregates, nil
}

// Start begins a new stream with the given events
func (r *AggregateRepository[T]) Start(ctx context.Context, id uuid.UUID, events ...shared.DomainEvent) error {
	return r.store.StartStream(ctx, r.kind, id, events...)
}

// Append adds events at the expected version; use
// eventsourcing.AnyVersion to skip the concurrency check.
func (r *AggregateRepository[T]) Append(ctx context.Context, id uuid.UUID, expectedVersion int64, events ...shared.DomainEvent) error {
	return r.store.Append(ctx, id, expectedVersion, events...)
}
