package persistence

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/clivox/backend/internal/domain/invoice"
	"github.com/clivox/backend/internal/domain/shared"
	"github.com/clivox/backend/internal/eventsourcing"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// InvoiceRepository is the event-sourced implementation of invoice.Repository
type InvoiceRepository struct {
	engine *AggregateRepository[*invoice.Invoice]
	logger *zap.Logger
	now    func() time.Time
}

// NewInvoiceRepository creates an invoice repository on the given store
func NewInvoiceRepository(store eventsourcing.Store, logger *zap.Logger) *InvoiceRepository {
	return &InvoiceRepository{
		engine: NewAggregateRepository[*invoice.Invoice](store, invoice.AggregateKindInvoice, invoice.Projection{}),
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// GetByID implements invoice.Repository
func (r *InvoiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*invoice.Invoice, error) {
	inv, err := r.engine.Load(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			r.logger.Warn("invoice not found", zap.String("invoice_id", id.String()))
		}
		return nil, err
	}
	return inv, nil
}

// GetAll implements invoice.Repository
func (r *InvoiceRepository) GetAll(ctx context.Context) ([]*invoice.Invoice, error) {
	invoices, err := r.engine.List(ctx)
	if err != nil {
		return nil, err
	}
	sortByNumber(invoices)
	return invoices, nil
}

// GetByClientID implements invoice.Repository
func (r *InvoiceRepository) GetByClientID(ctx context.Context, clientID uuid.UUID) ([]*invoice.Invoice, error) {
	invoices, err := r.engine.List(ctx)
	if err != nil {
		return nil, err
	}
	matched := make([]*invoice.Invoice, 0, len(invoices))
	for _, inv := range invoices {
		if inv.ClientID == clientID {
			matched = append(matched, inv)
		}
	}
	sortByNumber(matched)
	return matched, nil
}

func sortByNumber(invoices []*invoice.Invoice) {
	sort.Slice(invoices, func(i, j int) bool {
		return invoices[i].InvoiceNumber < invoices[j].InvoiceNumber
	})
}

// Add implements invoice.Repository
func (r *InvoiceRepository) Add(ctx context.Context, inv *invoice.Invoice) error {
	if inv == nil {
		return shared.ErrInvalidInput
	}
	if err := inv.Validate(); err != nil {
		r.logger.Error("cannot add invoice, validation failed", zap.Error(err))
		return err
	}

	if inv.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("generating invoice id: %w", err)
		}
		inv.ID = id
	}

	r.logger.Info("adding new invoice", zap.String("invoice_number", inv.InvoiceNumber))
	if err := r.engine.Start(ctx, inv.ID, invoice.NewInvoiceCreatedEvent(inv)); err != nil {
		return err
	}
	inv.Version = 1
	return nil
}

// Update implements invoice.Repository
func (r *InvoiceRepository) Update(ctx context.Context, inv *invoice.Invoice) error {
	if inv == nil {
		return shared.ErrInvalidInput
	}
	if err := inv.Validate(); err != nil {
		r.logger.Error("cannot update invoice, validation failed", zap.Error(err))
		return err
	}

	r.logger.Info("updating invoice", zap.String("invoice_number", inv.InvoiceNumber))
	if err := r.engine.Append(ctx, inv.ID, inv.Version, invoice.NewInvoiceUpdatedEvent(inv)); err != nil {
		if errors.Is(err, shared.ErrStreamNotFound) {
			return shared.ErrNotFound
		}
		return err
	}
	inv.Version++
	return nil
}

// ChangeStatus implements invoice.Repository
func (r *InvoiceRepository) ChangeStatus(ctx context.Context, id uuid.UUID, newStatus invoice.Status, paidDate *time.Time, paymentNotes string) error {
	inv, err := r.engine.Load(ctx, id)
	if err != nil {
		return err
	}

	previous := inv.Status
	if newStatus == invoice.StatusPaid && paidDate == nil {
		now := r.now()
		paidDate = &now
	}
	if newStatus != invoice.StatusPaid {
		paidDate = nil
	}

	r.logger.Info("changing invoice status",
		zap.String("invoice_id", id.String()),
		zap.String("from", string(previous)),
		zap.String("to", string(newStatus)))

	event := &invoice.InvoiceStatusChangedEvent{
		NewStatus:      newStatus,
		PreviousStatus: &previous,
		PaidDate:       paidDate,
		PaymentNotes:   paymentNotes,
	}
	return r.engine.Append(ctx, id, inv.Version, event)
}

// Delete implements invoice.Repository
func (r *InvoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.logger.Info("deleting invoice", zap.String("invoice_id", id.String()))
	if err := r.engine.Append(ctx, id, eventsourcing.AnyVersion, &invoice.InvoiceDeletedEvent{}); err != nil {
		if errors.Is(err, shared.ErrStreamNotFound) {
			return shared.ErrNotFound
		}
		return err
	}
	return nil
}

// AddItems implements invoice.Repository
func (r *InvoiceRepository) AddItems(ctx context.Context, id uuid.UUID, items []invoice.Item) error {
	if len(items) == 0 {
		return shared.ErrInvalidInput
	}
	r.logger.Info("adding invoice items", zap.String("invoice_id", id.String()), zap.Int("count", len(items)))
	return r.appendDelta(ctx, id, &invoice.InvoiceItemsAddedEvent{Items: items})
}

// ModifyItems implements invoice.Repository
func (r *InvoiceRepository) ModifyItems(ctx context.Context, id uuid.UUID, items []invoice.Item) error {
	if len(items) == 0 {
		return shared.ErrInvalidInput
	}
	r.logger.Info("modifying invoice items", zap.String("invoice_id", id.String()), zap.Int("count", len(items)))
	return r.appendDelta(ctx, id, &invoice.InvoiceItemsModifiedEvent{Items: items})
}

// DeleteItems implements invoice.Repository
func (r *InvoiceRepository) DeleteItems(ctx context.Context, id uuid.UUID, itemIDs []uuid.UUID) error {
	if len(itemIDs) == 0 {
		return shared.ErrInvalidInput
	}
	r.logger.Info("deleting invoice items", zap.String("invoice_id", id.String()), zap.Int("count", len(itemIDs)))
	return r.appendDelta(ctx, id, &invoice.InvoiceItemsDeletedEvent{ItemIDs: itemIDs})
}

// AddExpenseProofFiles implements invoice.Repository
func (r *InvoiceRepository) AddExpenseProofFiles(ctx context.Context, id uuid.UUID, files []invoice.ExpenseProofFile) error {
	if len(files) == 0 {
		return shared.ErrInvalidInput
	}
	r.logger.Info("adding expense proof files", zap.String("invoice_id", id.String()), zap.Int("count", len(files)))
	return r.appendDelta(ctx, id, &invoice.ExpenseProofFilesAddedEvent{Files: files})
}

// ModifyExpenseProofFiles implements invoice.Repository
func (r *InvoiceRepository) ModifyExpenseProofFiles(ctx context.Context, id uuid.UUID, files []invoice.ExpenseProofFile) error {
	if len(files) == 0 {
		return shared.ErrInvalidInput
	}
	r.logger.Info("modifying expense proof files", zap.String("invoice_id", id.String()), zap.Int("count", len(files)))
	return r.appendDelta(ctx, id, &invoice.ExpenseProofFilesModifiedEvent{Files: files})
}

// DeleteExpenseProofFiles implements invoice.Repository
func (r *InvoiceRepository) DeleteExpenseProofFiles(ctx context.Context, id uuid.UUID, fileIDs []uuid.UUID) error {
	if len(fileIDs) == 0 {
		return shared.ErrInvalidInput
	}
	r.logger.Info("deleting expense proof files", zap.String("invoice_id", id.String()), zap.Int("count", len(fileIDs)))
	return r.appendDelta(ctx, id, &invoice.ExpenseProofFilesDeletedEvent{FileIDs: fileIDs})
}

// appendDelta appends a collection delta without an expected version; the
// fold keeps these operations idempotent by item id.
func (r *InvoiceRepository) appendDelta(ctx context.Context, id uuid.UUID, event shared.DomainEvent) error {
	if err := r.engine.Append(ctx, id, eventsourcing.AnyVersion, event); err != nil {
		if errors.Is(err, shared.ErrStreamNotFound) {
			return shared.ErrNotFound
		}
		return err
	}
	return nil
}
