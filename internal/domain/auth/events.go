package auth

import (
	"time"
)

// Aggregate kind constant
const AggregateKindUser = "User"

// Event name constants
const (
	EventNameUserCreated         = "UserCreated"
	EventNameUserLoggedIn        = "UserLoggedIn"
	EventNameUserLoggedOut       = "UserLoggedOut"
	EventNameUserPasswordChanged = "UserPasswordChanged"
	EventNameUserLoginFailed     = "UserLoginFailed"
	EventNameUserAccountLocked   = "UserAccountLocked"
	EventNameUserAccountUnlocked = "UserAccountUnlocked"
	EventNameUserDeleted         = "UserDeleted"
)

// UserCreatedEvent records the creation of a user with its credentials
// already hashed.
type UserCreatedEvent struct {
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash"`
	Salt         string `json:"salt"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
}

// EventName implements shared.DomainEvent
func (e *UserCreatedEvent) EventName() string { return EventNameUserCreated }

// NewUserCreatedEvent captures the user's initial state
func NewUserCreatedEvent(u *User) *UserCreatedEvent {
	return &UserCreatedEvent{
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Salt:         u.Salt,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
	}
}

// UserLoggedInEvent records a successful login, which also clears the
// failed-attempt counter and any lock.
type UserLoggedInEvent struct {
	LoginTime time.Time `json:"login_time"`
	IPAddress string    `json:"ip_address"`
}

// EventName implements shared.DomainEvent
func (e *UserLoggedInEvent) EventName() string { return EventNameUserLoggedIn }

// UserLoggedOutEvent records a logout
type UserLoggedOutEvent struct {
	LogoutTime time.Time `json:"logout_time"`
}

// EventName implements shared.DomainEvent
func (e *UserLoggedOutEvent) EventName() string { return EventNameUserLoggedOut }

// UserPasswordChangedEvent carries the new hash and salt
type UserPasswordChangedEvent struct {
	NewPasswordHash string `json:"new_password_hash"`
	NewSalt         string `json:"new_salt"`
}

// EventName implements shared.DomainEvent
func (e *UserPasswordChangedEvent) EventName() string { return EventNameUserPasswordChanged }

// UserLoginFailedEvent records one failed login attempt, so the counter
// survives replay instead of living only in process memory.
type UserLoginFailedEvent struct {
	AttemptTime time.Time `json:"attempt_time"`
}

// EventName implements shared.DomainEvent
func (e *UserLoginFailedEvent) EventName() string { return EventNameUserLoginFailed }

// UserAccountLockedEvent locks the account until the given time
type UserAccountLockedEvent struct {
	LockedUntil time.Time `json:"locked_until"`
	Reason      string    `json:"reason"`
}

// EventName implements shared.DomainEvent
func (e *UserAccountLockedEvent) EventName() string { return EventNameUserAccountLocked }

// UserAccountUnlockedEvent clears the lock and the failed-attempt counter
type UserAccountUnlockedEvent struct{}

// EventName implements shared.DomainEvent
func (e *UserAccountUnlockedEvent) EventName() string { return EventNameUserAccountUnlocked }

// UserDeletedEvent is the user stream's tombstone. The history stays
// intact; the user only disappears from query results.
type UserDeletedEvent struct{}

// EventName implements shared.DomainEvent
func (e *UserDeletedEvent) EventName() string { return EventNameUserDeleted }

// Tombstone implements shared.TombstoneEvent
func (e *UserDeletedEvent) Tombstone() {}
