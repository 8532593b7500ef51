package invoice

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence port for the invoice aggregate. Write
// operations append domain events; reads are served from the store's
// materialized state.
type Repository interface {
	// GetByID loads one invoice, deleted or not found yield shared.ErrNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (*Invoice, error)

	// GetAll returns every live invoice ordered by invoice number
	GetAll(ctx context.Context) ([]*Invoice, error)

	// GetByClientID returns the client's live invoices ordered by invoice
	// number.
	GetByClientID(ctx context.Context, clientID uuid.UUID) ([]*Invoice, error)

	// Add validates the invoice and starts its event stream. The invoice's
	// ID and version are populated on return.
	Add(ctx context.Context, inv *Invoice) error

	// Update validates the invoice and appends an update event at the
	// invoice's loaded version; a stale version fails with
	// shared.ErrConcurrencyConflict.
	Update(ctx context.Context, inv *Invoice) error

	// ChangeStatus appends a status transition with its payment details
	ChangeStatus(ctx context.Context, id uuid.UUID, newStatus Status, paidDate *time.Time, paymentNotes string) error

	// Delete appends the tombstone. The stream stays readable; the
	// invoice disappears from GetAll.
	Delete(ctx context.Context, id uuid.UUID) error

	// AddItems appends an item-add event; ids already on the invoice are
	// no-ops at fold time.
	AddItems(ctx context.Context, id uuid.UUID, items []Item) error

	// ModifyItems appends an item-modify event; unknown ids are added
	ModifyItems(ctx context.Context, id uuid.UUID, items []Item) error

	// DeleteItems appends an item-delete event; unknown ids are ignored
	DeleteItems(ctx context.Context, id uuid.UUID, itemIDs []uuid.UUID) error

	// AddExpenseProofFiles appends a file-add event; ids already on the
	// invoice are no-ops at fold time.
	AddExpenseProofFiles(ctx context.Context, id uuid.UUID, files []ExpenseProofFile) error

	// ModifyExpenseProofFiles appends a file-modify event; unknown ids
	// are added.
	ModifyExpenseProofFiles(ctx context.Context, id uuid.UUID, files []ExpenseProofFile) error

	// DeleteExpenseProofFiles appends a file-delete event; unknown ids
	// are ignored.
	DeleteExpenseProofFiles(ctx context.Context, id uuid.UUID, fileIDs []uuid.UUID) error
}
