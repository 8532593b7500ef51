package invoice

import (
	"fmt"

	"github.com/clivox/backend/internal/domain/shared"
	"github.com/clivox/backend/internal/eventsourcing"
	"github.com/google/uuid"
)

// Projection folds invoice events into current invoice state. Apply never
// mutates the state it receives; collection events work on cloned slices.
type Projection struct{}

// Zero returns the empty invoice state before any event
func (Projection) Zero() *Invoice {
	return &Invoice{}
}

// Apply implements eventsourcing.Projection
func (Projection) Apply(state *Invoice, event shared.DomainEvent) (*Invoice, error) {
	next := *state

	switch e := event.(type) {
	case *InvoiceCreatedEvent:
		next.InvoiceNumber = e.InvoiceNumber
		next.InvoiceDate = e.InvoiceDate
		next.DueDate = e.DueDate
		next.ServiceDate = e.ServiceDate
		next.TotalAmount = e.TotalAmount
		next.ClientID = e.ClientID
		next.Items = cloneItems(e.Items)
		next.Status = e.Status
		next.PaidDate = e.PaidDate
		next.PaymentNotes = e.PaymentNotes
	case *InvoiceUpdatedEvent:
		next.InvoiceNumber = e.InvoiceNumber
		next.InvoiceDate = e.InvoiceDate
		next.DueDate = e.DueDate
		next.ServiceDate = e.ServiceDate
		next.TotalAmount = e.TotalAmount
		next.ClientID = e.ClientID
		next.Items = cloneItems(e.Items)
	case *InvoiceStatusChangedEvent:
		next.Status = e.NewStatus
		next.PaidDate = e.PaidDate
		if e.PaymentNotes != "" {
			next.PaymentNotes = e.PaymentNotes
		}
	case *InvoiceItemsAddedEvent:
		next.Items = addItems(state.Items, e.Items)
	case *InvoiceItemsModifiedEvent:
		next.Items = modifyItems(state.Items, e.Items)
	case *InvoiceItemsDeletedEvent:
		next.Items = deleteItems(state.Items, e.ItemIDs)
	case *ExpenseProofFilesAddedEvent:
		next.ExpenseProofFiles = addFiles(state.ExpenseProofFiles, e.Files)
	case *ExpenseProofFilesModifiedEvent:
		next.ExpenseProofFiles = modifyFiles(state.ExpenseProofFiles, e.Files)
	case *ExpenseProofFilesDeletedEvent:
		next.ExpenseProofFiles = deleteFiles(state.ExpenseProofFiles, e.FileIDs)
	case *InvoiceDeletedEvent:
		// Tombstone carries no state change; the replay engine records
		// the deletion for the live-set.
	default:
		return nil, fmt.Errorf("invoice projection: %s: %w", event.EventName(), shared.ErrUnhandledEvent)
	}

	return &next, nil
}

// ApplyMetadata implements eventsourcing.Projection
func (Projection) ApplyMetadata(state *Invoice, last eventsourcing.Envelope) *Invoice {
	next := *state
	if next.CreatedOn.IsZero() {
		next.CreatedOn = last.OccurredOn
	}
	next.ModifiedOn = last.OccurredOn
	return &next
}

func addItems(existing, added []Item) []Item {
	next := cloneItems(existing)
	for _, item := range added {
		if indexOfItem(next, item.ID) < 0 {
			next = append(next, item)
		}
	}
	return next
}

func modifyItems(existing, modified []Item) []Item {
	next := cloneItems(existing)
	for _, item := range modified {
		if i := indexOfItem(next, item.ID); i >= 0 {
			next[i] = item
		} else {
			next = append(next, item)
		}
	}
	return next
}

func deleteItems(existing []Item, ids []uuid.UUID) []Item {
	next := make([]Item, 0, len(existing))
	for _, item := range existing {
		if !containsID(ids, item.ID) {
			next = append(next, item)
		}
	}
	return next
}

func indexOfItem(items []Item, id uuid.UUID) int {
	for i, item := range items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

func addFiles(existing, added []ExpenseProofFile) []ExpenseProofFile {
	next := cloneFiles(existing)
	for _, file := range added {
		if indexOfFile(next, file.ID) < 0 {
			next = append(next, file)
		}
	}
	return next
}

func modifyFiles(existing, modified []ExpenseProofFile) []ExpenseProofFile {
	next := cloneFiles(existing)
	for _, file := range modified {
		if i := indexOfFile(next, file.ID); i >= 0 {
			next[i] = file
		} else {
			next = append(next, file)
		}
	}
	return next
}

func deleteFiles(existing []ExpenseProofFile, ids []uuid.UUID) []ExpenseProofFile {
	next := make([]ExpenseProofFile, 0, len(existing))
	for _, file := range existing {
		if !containsID(ids, file.ID) {
			next = append(next, file)
		}
	}
	return next
}

func indexOfFile(files []ExpenseProofFile, id uuid.UUID) int {
	for i, file := range files {
		if file.ID == id {
			return i
		}
	}
	return -1
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
