package client

import (
	"fmt"

	"github.com/clivox/backend/internal/domain/shared"
	"github.com/clivox/backend/internal/eventsourcing"
)

// Projection folds client events into current client state. Apply never
// mutates the state it receives; every step returns a fresh value.
type Projection struct{}

// Zero returns the empty client state before any event
func (Projection) Zero() *Client {
	return &Client{}
}

// Apply implements eventsourcing.Projection
func (Projection) Apply(state *Client, event shared.DomainEvent) (*Client, error) {
	next := *state

	switch e := event.(type) {
	case *ClientCreatedEvent:
		next.FirstName = e.FirstName
		next.LastName = e.LastName
		next.CompanyName = e.CompanyName
		next.IsCompany = e.IsCompany
		next.Gender = e.Gender
		next.Email = e.Email
		next.PhoneNumber = e.PhoneNumber
		next.Address = e.Address
	case *ClientUpdatedEvent:
		next.FirstName = e.FirstName
		next.LastName = e.LastName
		next.CompanyName = e.CompanyName
		next.IsCompany = e.IsCompany
		next.Gender = e.Gender
		next.Email = e.Email
		next.PhoneNumber = e.PhoneNumber
		next.Address = e.Address
	case *ClientDeletedEvent:
		// Tombstone carries no state change; the replay engine records
		// the deletion for the live-set.
	default:
		return nil, fmt.Errorf("client projection: %s: %w", event.EventName(), shared.ErrUnhandledEvent)
	}

	return &next, nil
}

// ApplyMetadata implements eventsourcing.Projection
func (Projection) ApplyMetadata(state *Client, last eventsourcing.Envelope) *Client {
	next := *state
	if next.CreatedOn.IsZero() {
		next.CreatedOn = last.OccurredOn
	}
	next.ModifiedOn = last.OccurredOn
	return &next
}
