package shared

import (
	"time"

	"github.com/google/uuid"
)

// AggregateRoot is the base interface for all event-sourced aggregate roots.
// State is reconstructed by replaying the aggregate's event stream; Version
// and the timestamps are assigned by the replay engine, never by domain code.
type AggregateRoot interface {
	GetID() uuid.UUID
	SetID(id uuid.UUID)
	GetVersion() int64
	SetVersion(version int64)
	GetCreatedOn() time.Time
	SetCreatedOn(t time.Time)
	GetModifiedOn() time.Time
	SetModifiedOn(t time.Time)
}

// BaseAggregateRoot provides common fields for aggregate roots.
// Version equals the number of events applied since stream creation.
type BaseAggregateRoot struct {
	ID         uuid.UUID `json:"id"`
	Version    int64     `json:"version"`
	CreatedOn  time.Time `json:"created_on"`
	ModifiedOn time.Time `json:"modified_on"`
}

// GetID returns the aggregate identifier.
func (a *BaseAggregateRoot) GetID() uuid.UUID {
	return a.ID
}

// SetID sets the aggregate identifier.
func (a *BaseAggregateRoot) SetID(id uuid.UUID) {
	a.ID = id
}

// GetVersion returns the aggregate version for optimistic locking.
func (a *BaseAggregateRoot) GetVersion() int64 {
	return a.Version
}

// SetVersion sets the aggregate version.
func (a *BaseAggregateRoot) SetVersion(version int64) {
	a.Version = version
}

// GetCreatedOn returns the creation timestamp.
func (a *BaseAggregateRoot) GetCreatedOn() time.Time {
	return a.CreatedOn
}

// SetCreatedOn sets the creation timestamp.
func (a *BaseAggregateRoot) SetCreatedOn(t time.Time) {
	a.CreatedOn = t
}

// GetModifiedOn returns the last modification timestamp.
func (a *BaseAggregateRoot) GetModifiedOn() time.Time {
	return a.ModifiedOn
}

// SetModifiedOn sets the last modification timestamp.
func (a *BaseAggregateRoot) SetModifiedOn(t time.Time) {
	a.ModifiedOn = t
}
