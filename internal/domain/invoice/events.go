package invoice

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate kind constant
const AggregateKindInvoice = "Invoice"

// Event name constants
const (
	EventNameInvoiceCreated       = "InvoiceCreated"
	EventNameInvoiceUpdated       = "InvoiceUpdated"
	EventNameInvoiceStatusChanged = "InvoiceStatusChanged"
	EventNameInvoiceDeleted       = "InvoiceDeleted"

	EventNameInvoiceItemsAdded    = "InvoiceItemsAdded"
	EventNameInvoiceItemsModified = "InvoiceItemsModified"
	EventNameInvoiceItemsDeleted  = "InvoiceItemsDeleted"

	EventNameExpenseProofFilesAdded    = "ExpenseProofFilesAdded"
	EventNameExpenseProofFilesModified = "ExpenseProofFilesModified"
	EventNameExpenseProofFilesDeleted  = "ExpenseProofFilesDeleted"
)

// InvoiceCreatedEvent records the creation of an invoice with its initial
// fields and items.
type InvoiceCreatedEvent struct {
	InvoiceNumber string          `json:"invoice_number"`
	InvoiceDate   time.Time       `json:"invoice_date"`
	DueDate       time.Time       `json:"due_date"`
	ServiceDate   time.Time       `json:"service_date"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	ClientID      uuid.UUID       `json:"client_id"`
	Items         []Item          `json:"items"`
	Status        Status          `json:"status"`
	PaidDate      *time.Time      `json:"paid_date,omitempty"`
	PaymentNotes  string          `json:"payment_notes,omitempty"`
}

// EventName implements shared.DomainEvent
func (e *InvoiceCreatedEvent) EventName() string { return EventNameInvoiceCreated }

// NewInvoiceCreatedEvent captures the invoice's initial state
func NewInvoiceCreatedEvent(inv *Invoice) *InvoiceCreatedEvent {
	status := inv.Status
	if status == "" {
		status = StatusDraft
	}
	return &InvoiceCreatedEvent{
		InvoiceNumber: inv.InvoiceNumber,
		InvoiceDate:   inv.InvoiceDate,
		DueDate:       inv.DueDate,
		ServiceDate:   inv.ServiceDate,
		TotalAmount:   inv.TotalAmount,
		ClientID:      inv.ClientID,
		Items:         cloneItems(inv.Items),
		Status:        status,
		PaidDate:      inv.PaidDate,
		PaymentNotes:  inv.PaymentNotes,
	}
}

// InvoiceUpdatedEvent carries the invoice's full new core fields and item
// list, not a diff. Status changes travel separately.
type InvoiceUpdatedEvent struct {
	InvoiceNumber string          `json:"invoice_number"`
	InvoiceDate   time.Time       `json:"invoice_date"`
	DueDate       time.Time       `json:"due_date"`
	ServiceDate   time.Time       `json:"service_date"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	ClientID      uuid.UUID       `json:"client_id"`
	Items         []Item          `json:"items"`
}

// EventName implements shared.DomainEvent
func (e *InvoiceUpdatedEvent) EventName() string { return EventNameInvoiceUpdated }

// NewInvoiceUpdatedEvent captures the invoice's full new core state
func NewInvoiceUpdatedEvent(inv *Invoice) *InvoiceUpdatedEvent {
	return &InvoiceUpdatedEvent{
		InvoiceNumber: inv.InvoiceNumber,
		InvoiceDate:   inv.InvoiceDate,
		DueDate:       inv.DueDate,
		ServiceDate:   inv.ServiceDate,
		TotalAmount:   inv.TotalAmount,
		ClientID:      inv.ClientID,
		Items:         cloneItems(inv.Items),
	}
}

// InvoiceStatusChangedEvent records a status transition with the payment
// details valid as of the transition.
type InvoiceStatusChangedEvent struct {
	NewStatus      Status     `json:"new_status"`
	PreviousStatus *Status    `json:"previous_status,omitempty"`
	PaidDate       *time.Time `json:"paid_date,omitempty"`
	PaymentNotes   string     `json:"payment_notes,omitempty"`
}

// EventName implements shared.DomainEvent
func (e *InvoiceStatusChangedEvent) EventName() string { return EventNameInvoiceStatusChanged }

// InvoiceItemsAddedEvent adds items; adding an id that already exists on
// the invoice is a no-op during replay.
type InvoiceItemsAddedEvent struct {
	Items []Item `json:"items"`
}

// EventName implements shared.DomainEvent
func (e *InvoiceItemsAddedEvent) EventName() string { return EventNameInvoiceItemsAdded }

// InvoiceItemsModifiedEvent replaces items by id, adding the ones that do
// not exist yet.
type InvoiceItemsModifiedEvent struct {
	Items []Item `json:"items"`
}

// EventName implements shared.DomainEvent
func (e *InvoiceItemsModifiedEvent) EventName() string { return EventNameInvoiceItemsModified }

// InvoiceItemsDeletedEvent removes items by id; unknown ids are ignored
type InvoiceItemsDeletedEvent struct {
	ItemIDs []uuid.UUID `json:"item_ids"`
}

// EventName implements shared.DomainEvent
func (e *InvoiceItemsDeletedEvent) EventName() string { return EventNameInvoiceItemsDeleted }

// ExpenseProofFilesAddedEvent attaches expense proofs; duplicates by id are
// no-ops during replay.
type ExpenseProofFilesAddedEvent struct {
	Files []ExpenseProofFile `json:"files"`
}

// EventName implements shared.DomainEvent
func (e *ExpenseProofFilesAddedEvent) EventName() string { return EventNameExpenseProofFilesAdded }

// ExpenseProofFilesModifiedEvent replaces expense proofs by id, adding the
// ones that do not exist yet.
type ExpenseProofFilesModifiedEvent struct {
	Files []ExpenseProofFile `json:"files"`
}

// EventName implements shared.DomainEvent
func (e *ExpenseProofFilesModifiedEvent) EventName() string { return EventNameExpenseProofFilesModified }

// ExpenseProofFilesDeletedEvent removes expense proofs by id; unknown ids
// are ignored.
type ExpenseProofFilesDeletedEvent struct {
	FileIDs []uuid.UUID `json:"file_ids"`
}

// EventName implements shared.DomainEvent
func (e *ExpenseProofFilesDeletedEvent) EventName() string { return EventNameExpenseProofFilesDeleted }

// InvoiceDeletedEvent is the invoice stream's tombstone. The history stays
// intact; the invoice only disappears from query results.
type InvoiceDeletedEvent struct{}

// EventName implements shared.DomainEvent
func (e *InvoiceDeletedEvent) EventName() string { return EventNameInvoiceDeleted }

// Tombstone implements shared.TombstoneEvent
func (e *InvoiceDeletedEvent) Tombstone() {}

func cloneItems(items []Item) []Item {
	if items == nil {
		return nil
	}
	cloned := make([]Item, len(items))
	copy(cloned, items)
	return cloned
}

func cloneFiles(files []ExpenseProofFile) []ExpenseProofFile {
	if files == nil {
		return nil
	}
	cloned := make([]ExpenseProofFile, len(files))
	copy(cloned, files)
	return cloned
}
