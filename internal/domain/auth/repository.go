package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence port for the user aggregate. Write
// operations append domain events; reads are served from the store's
// materialized state.
type Repository interface {
	// GetByID loads one user, deleted or not found yield shared.ErrNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)

	// GetAll returns every live user ordered by username
	GetAll(ctx context.Context) ([]*User, error)

	// GetByUsername looks a live user up by exact username
	GetByUsername(ctx context.Context, username string) (*User, error)

	// GetByEmail looks a live user up by exact email
	GetByEmail(ctx context.Context, email string) (*User, error)

	// Create validates the user and starts its event stream. The user's
	// ID and version are populated on return.
	Create(ctx context.Context, u *User) error

	// RecordLogin appends a successful-login event, clearing the
	// failed-attempt counter and any lock at fold time.
	RecordLogin(ctx context.Context, id uuid.UUID, ipAddress string) error

	// RecordLogout appends a logout event
	RecordLogout(ctx context.Context, id uuid.UUID) error

	// RecordFailedLogin appends a failed-attempt event, followed by a
	// lock event once the attempt limit is reached.
	RecordFailedLogin(ctx context.Context, id uuid.UUID) error

	// UpdatePassword re-hashes the password and appends the change
	UpdatePassword(ctx context.Context, id uuid.UUID, newPassword string) error

	// Lock appends a lock event holding until the given time
	Lock(ctx context.Context, id uuid.UUID, until time.Time, reason string) error

	// Unlock appends an unlock event
	Unlock(ctx context.Context, id uuid.UUID) error

	// Delete appends the tombstone. The stream stays readable; the user
	// disappears from queries.
	Delete(ctx context.Context, id uuid.UUID) error
}
