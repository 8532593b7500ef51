package client

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the persistence port for the client aggregate. Write
// operations append domain events; reads are served from the store's
// materialized state.
type Repository interface {
	// GetByID loads one client, deleted or not found yield shared.ErrNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (*Client, error)

	// GetAll returns every live client ordered by FullName. InvoiceCount
	// is left zero; the application layer fills it from the invoice side.
	GetAll(ctx context.Context) ([]*Client, error)

	// Add validates the client and starts its event stream. The client's
	// ID and version are populated on return.
	Add(ctx context.Context, c *Client) error

	// Update validates the client and appends an update event at the
	// client's loaded version; a stale version fails with
	// shared.ErrConcurrencyConflict.
	Update(ctx context.Context, c *Client) error

	// Delete appends the tombstone. The stream stays readable; the client
	// disappears from GetAll.
	Delete(ctx context.Context, id uuid.UUID) error
}
