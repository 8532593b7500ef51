package client

import (
	"github.com/clivox/backend/internal/domain/shared/valueobject"
)

// Aggregate kind constant
const AggregateKindClient = "Client"

// Event name constants
const (
	EventNameClientCreated = "ClientCreated"
	EventNameClientUpdated = "ClientUpdated"
	EventNameClientDeleted = "ClientDeleted"
)

// ClientCreatedEvent records the creation of a client with its full initial
// field values.
type ClientCreatedEvent struct {
	FirstName   string              `json:"first_name,omitempty"`
	LastName    string              `json:"last_name,omitempty"`
	CompanyName string              `json:"company_name,omitempty"`
	IsCompany   bool                `json:"is_company"`
	Gender      *Gender             `json:"gender,omitempty"`
	Email       string              `json:"email,omitempty"`
	PhoneNumber string              `json:"phone_number"`
	Address     valueobject.Address `json:"address"`
}

// EventName implements shared.DomainEvent
func (e *ClientCreatedEvent) EventName() string { return EventNameClientCreated }

// NewClientCreatedEvent captures the client's initial state
func NewClientCreatedEvent(c *Client) *ClientCreatedEvent {
	return &ClientCreatedEvent{
		FirstName:   c.FirstName,
		LastName:    c.LastName,
		CompanyName: c.CompanyName,
		IsCompany:   c.IsCompany,
		Gender:      c.Gender,
		Email:       c.Email,
		PhoneNumber: c.PhoneNumber,
		Address:     c.Address,
	}
}

// ClientUpdatedEvent carries the full new field values, not a diff.
type ClientUpdatedEvent struct {
	FirstName   string              `json:"first_name,omitempty"`
	LastName    string              `json:"last_name,omitempty"`
	CompanyName string              `json:"company_name,omitempty"`
	IsCompany   bool                `json:"is_company"`
	Gender      *Gender             `json:"gender,omitempty"`
	Email       string              `json:"email,omitempty"`
	PhoneNumber string              `json:"phone_number"`
	Address     valueobject.Address `json:"address"`
}

// EventName implements shared.DomainEvent
func (e *ClientUpdatedEvent) EventName() string { return EventNameClientUpdated }

// NewClientUpdatedEvent captures the client's full new state
func NewClientUpdatedEvent(c *Client) *ClientUpdatedEvent {
	return &ClientUpdatedEvent{
		FirstName:   c.FirstName,
		LastName:    c.LastName,
		CompanyName: c.CompanyName,
		IsCompany:   c.IsCompany,
		Gender:      c.Gender,
		Email:       c.Email,
		PhoneNumber: c.PhoneNumber,
		Address:     c.Address,
	}
}

// ClientDeletedEvent is the client stream's tombstone. The history stays
// intact; the client only disappears from query results.
type ClientDeletedEvent struct{}

// EventName implements shared.DomainEvent
func (e *ClientDeletedEvent) EventName() string { return EventNameClientDeleted }

// Tombstone implements shared.TombstoneEvent
func (e *ClientDeletedEvent) Tombstone() {}
