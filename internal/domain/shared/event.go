package shared

// DomainEvent represents an immutable fact that occurred in the domain.
// Events are plain data: equality is structural and they expose no behavior
// beyond their name. Stream id, sequence position and timestamp are assigned
// by the event store at append time, not by the event itself.
type DomainEvent interface {
	EventName() string
}

// TombstoneEvent marks an event that removes its aggregate from query
// results. The event history is never erased; replay continues past a
// tombstone, the aggregate is only excluded from the materialized live set.
type TombstoneEvent interface {
	DomainEvent
	Tombstone()
}
