package auth

import (
	"fmt"

	"github.com/clivox/backend/internal/domain/shared"
	"github.com/clivox/backend/internal/eventsourcing"
)

// Projection folds user events into current user state. Apply never mutates
// the state it receives; every step returns a fresh value.
type Projection struct{}

// Zero returns the empty user state before any event
func (Projection) Zero() *User {
	return &User{}
}

// Apply implements eventsourcing.Projection
func (Projection) Apply(state *User, event shared.DomainEvent) (*User, error) {
	next := *state

	switch e := event.(type) {
	case *UserCreatedEvent:
		next.Username = e.Username
		next.Email = e.Email
		next.PasswordHash = e.PasswordHash
		next.Salt = e.Salt
		next.FirstName = e.FirstName
		next.LastName = e.LastName
		next.IsActive = true
		next.FailedLoginAttempts = 0
	case *UserLoggedInEvent:
		next.LastLoginAt = e.LoginTime
		next.FailedLoginAttempts = 0
		next.LockedUntil = nil
	case *UserLoggedOutEvent:
		// No state change; the envelope still advances ModifiedOn.
	case *UserPasswordChangedEvent:
		next.PasswordHash = e.NewPasswordHash
		next.Salt = e.NewSalt
	case *UserLoginFailedEvent:
		next.FailedLoginAttempts = state.FailedLoginAttempts + 1
	case *UserAccountLockedEvent:
		lockedUntil := e.LockedUntil
		next.LockedUntil = &lockedUntil
	case *UserAccountUnlockedEvent:
		next.LockedUntil = nil
		next.FailedLoginAttempts = 0
	case *UserDeletedEvent:
		// Tombstone carries no state change; the replay engine records
		// the deletion for the live-set.
	default:
		return nil, fmt.Errorf("user projection: %s: %w", event.EventName(), shared.ErrUnhandledEvent)
	}

	return &next, nil
}

// ApplyMetadata implements eventsourcing.Projection
func (Projection) ApplyMetadata(state *User, last eventsourcing.Envelope) *User {
	next := *state
	if next.CreatedOn.IsZero() {
		next.CreatedOn = last.OccurredOn
	}
	next.ModifiedOn = last.OccurredOn
	return &next
}
