package invoice

import (
	"time"

	"github.com/clivox/backend/internal/domain/invoice"
	"github.com/google/uuid"
)

// CreateInvoiceInput carries the fields for creating an invoice. Zero
// dates fall back to the drafting defaults.
type CreateInvoiceInput struct {
	InvoiceNumber string
	InvoiceDate   time.Time
	DueDate       time.Time
	ServiceDate   time.Time
	ClientID      uuid.UUID
	Items         []invoice.Item
}

// UpdateInvoiceInput carries the fields for updating an invoice. Version
// is the version the caller loaded; a stale one fails the update.
type UpdateInvoiceInput struct {
	ID            uuid.UUID
	Version       int64
	InvoiceNumber string
	InvoiceDate   time.Time
	DueDate       time.Time
	ServiceDate   time.Time
	ClientID      uuid.UUID
	Items         []invoice.Item
}

// ChangeStatusInput carries a status transition
type ChangeStatusInput struct {
	ID           uuid.UUID
	NewStatus    invoice.Status
	PaidDate     *time.Time
	PaymentNotes string
}

// DashboardSummary aggregates the invoice figures the dashboard shows
type DashboardSummary struct {
	TotalCount   int `json:"total_count"`
	DraftCount   int `json:"draft_count"`
	SentCount    int `json:"sent_count"`
	PaidCount    int `json:"paid_count"`
	OverdueCount int `json:"overdue_count"`
	DueSoonCount int `json:"due_soon_count"`
}
