package eventstore

import (
	"time"

	"github.com/google/uuid"
)

// StreamModel is one aggregate's event stream
type StreamModel struct {
	StreamID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	Kind      string    `gorm:"type:varchar(64);not null;index"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for StreamModel
func (StreamModel) TableName() string {
	return "event_streams"
}

// EventModel is one stored domain event. Sequence is 1-based and gap-free
// within a stream; the unique index makes concurrent appends collide
// instead of interleaving.
type EventModel struct {
	ID         uint      `gorm:"primaryKey;autoIncrement"`
	StreamID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_stream_sequence,priority:1"`
	Sequence   int64     `gorm:"not null;uniqueIndex:idx_stream_sequence,priority:2"`
	EventName  string    `gorm:"type:varchar(128);not null"`
	Data       []byte    `gorm:"type:jsonb;not null"`
	OccurredOn time.Time `gorm:"not null"`
}

// TableName returns the table name for EventModel
func (EventModel) TableName() string {
	return "domain_events"
}

// SnapshotModel is the materialized current state of one stream, refreshed
// on every append. It is a cache over the events, never the record of truth.
type SnapshotModel struct {
	StreamID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	Kind      string    `gorm:"type:varchar(64);not null;index"`
	Version   int64     `gorm:"not null"`
	Deleted   bool      `gorm:"not null;default:false"`
	Data      []byte    `gorm:"type:jsonb;not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for SnapshotModel
func (SnapshotModel) TableName() string {
	return "stream_snapshots"
}

// Models returns every table the event store needs, for migration
func Models() []any {
	return []any{&StreamModel{}, &EventModel{}, &SnapshotModel{}}
}
