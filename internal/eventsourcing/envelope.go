package eventsourcing

import (
	"time"

	"github.com/clivox/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Envelope carries the metadata the store assigns to an event at append
// time. Sequence positions within one stream are 1-based, strictly
// increasing with no gaps; this ordering is authoritative for replay.
type Envelope struct {
	AggregateID uuid.UUID `json:"aggregate_id"`
	EventName   string    `json:"event_name"`
	Sequence    int64     `json:"sequence"`
	OccurredOn  time.Time `json:"occurred_on"`
}

// StoredEvent pairs a deserialized domain event with its envelope.
type StoredEvent struct {
	Event    shared.DomainEvent
	Envelope Envelope
}

// Snapshot is one row of the store's inline materialized view: the current
// JSON-encoded state of a single aggregate, refreshed on every append.
type Snapshot struct {
	StreamID uuid.UUID
	Kind     string
	Version  int64
	Deleted  bool
	Data     []byte
}
