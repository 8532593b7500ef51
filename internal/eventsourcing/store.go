package eventsourcing

import (
	"context"

	"github.com/clivox/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// AnyVersion disables the optimistic concurrency check on Append. Used for
// tombstones, which are recorded without loading the aggregate first.
const AnyVersion int64 = -1

// Store is the append-only, per-stream-ordered event persistence contract.
// A stream is created implicitly by StartStream and only ever grows; deletes
// are tombstone events, never physical removals. Implementations enforce
// optimistic concurrency by comparing expectedVersion against the stream's
// current highest sequence inside the append transaction.
type Store interface {
	// StartStream creates the stream for a new aggregate and appends its
	// initial events. Fails with shared.ErrAlreadyExists when the stream
	// already has events.
	StartStream(ctx context.Context, kind string, streamID uuid.UUID, events ...shared.DomainEvent) error

	// Append adds events to an existing stream. Fails with
	// shared.ErrStreamNotFound when the stream has no events, and with
	// shared.ErrConcurrencyConflict when expectedVersion >= 0 and the
	// stream has advanced past it.
	Append(ctx context.Context, streamID uuid.UUID, expectedVersion int64, events ...shared.DomainEvent) error

	// LoadStream returns the full ordered event history of one stream,
	// tombstones included. An unknown stream yields an empty slice.
	LoadStream(ctx context.Context, streamID uuid.UUID) ([]StoredEvent, error)

	// QuerySnapshots returns the materialized current state of every live
	// (non-tombstoned) aggregate of the given kind.
	QuerySnapshots(ctx context.Context, kind string) ([]Snapshot, error)
}

// Materializer folds a full stream into the snapshot the store keeps in its
// materialized view. Registered per aggregate kind at wiring time.
type Materializer func(stream []StoredEvent) (data []byte, deleted bool, err error)
