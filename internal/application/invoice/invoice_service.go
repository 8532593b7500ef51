package invoice

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/clivox/backend/internal/domain/invoice"
	"github.com/clivox/backend/internal/infrastructure/cache"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// InvoiceService handles invoice use cases. Every write invalidates the
// cached invoice-derived queries so the client filter and the dashboard
// never serve stale figures.
type InvoiceService struct {
	invoiceRepo invoice.Repository
	queryCache  cache.QueryCache
	cacheTTL    time.Duration
	logger      *zap.Logger
	now         func() time.Time
}

// NewInvoiceService creates a new invoice service
func NewInvoiceService(
	invoiceRepo invoice.Repository,
	queryCache cache.QueryCache,
	cacheTTL time.Duration,
	logger *zap.Logger,
) *InvoiceService {
	return &InvoiceService{
		invoiceRepo: invoiceRepo,
		queryCache:  queryCache,
		cacheTTL:    cacheTTL,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// List returns every live invoice
func (s *InvoiceService) List(ctx context.Context) ([]*invoice.Invoice, error) {
	return s.invoiceRepo.GetAll(ctx)
}

// Get returns one invoice
func (s *InvoiceService) Get(ctx context.Context, id uuid.UUID) (*invoice.Invoice, error) {
	return s.invoiceRepo.GetByID(ctx, id)
}

// GetByClient returns the client's invoices
func (s *InvoiceService) GetByClient(ctx context.Context, clientID uuid.UUID) ([]*invoice.Invoice, error) {
	return s.invoiceRepo.GetByClientID(ctx, clientID)
}

// Create validates and stores a new draft invoice
func (s *InvoiceService) Create(ctx context.Context, input CreateInvoiceInput) (*invoice.Invoice, error) {
	inv := invoice.New(s.now())
	if input.InvoiceNumber != "" {
		inv.InvoiceNumber = input.InvoiceNumber
	}
	if !input.InvoiceDate.IsZero() {
		inv.InvoiceDate = input.InvoiceDate
	}
	if !input.DueDate.IsZero() {
		inv.DueDate = input.DueDate
	}
	if !input.ServiceDate.IsZero() {
		inv.ServiceDate = input.ServiceDate
	}
	inv.ClientID = input.ClientID
	inv.Items = input.Items
	inv.TotalAmount = inv.ItemsTotal()

	if err := s.invoiceRepo.Add(ctx, inv); err != nil {
		return nil, err
	}
	s.invalidateInvoiceQueries(ctx)
	return inv, nil
}

// Update validates and stores changes to an existing invoice. Status and
// payment details are changed through ChangeStatus, not here.
func (s *InvoiceService) Update(ctx context.Context, input UpdateInvoiceInput) (*invoice.Invoice, error) {
	inv := &invoice.Invoice{
		InvoiceNumber: input.InvoiceNumber,
		InvoiceDate:   input.InvoiceDate,
		DueDate:       input.DueDate,
		ServiceDate:   input.ServiceDate,
		ClientID:      input.ClientID,
		Items:         input.Items,
	}
	inv.ID = input.ID
	inv.Version = input.Version
	inv.TotalAmount = inv.ItemsTotal()

	if err := s.invoiceRepo.Update(ctx, inv); err != nil {
		return nil, err
	}
	s.invalidateInvoiceQueries(ctx)
	return inv, nil
}

// ChangeStatus moves an invoice to a new status
func (s *InvoiceService) ChangeStatus(ctx context.Context, input ChangeStatusInput) error {
	if err := s.invoiceRepo.ChangeStatus(ctx, input.ID, input.NewStatus, input.PaidDate, input.PaymentNotes); err != nil {
		return err
	}
	s.invalidateInvoiceQueries(ctx)
	return nil
}

// MarkAsPaid is a shorthand for the paid status transition
func (s *InvoiceService) MarkAsPaid(ctx context.Context, id uuid.UUID, paidDate *time.Time, paymentNotes string) error {
	return s.ChangeStatus(ctx, ChangeStatusInput{
		ID:           id,
		NewStatus:    invoice.StatusPaid,
		PaidDate:     paidDate,
		PaymentNotes: paymentNotes,
	})
}

// Delete removes an invoice
func (s *InvoiceService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.invoiceRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateInvoiceQueries(ctx)
	return nil
}

// AddItems appends items to an invoice
func (s *InvoiceService) AddItems(ctx context.Context, id uuid.UUID, items []invoice.Item) error {
	if err := s.invoiceRepo.AddItems(ctx, id, items); err != nil {
		return err
	}
	s.invalidateInvoiceQueries(ctx)
	return nil
}

// ModifyItems updates items on an invoice
func (s *InvoiceService) ModifyItems(ctx context.Context, id uuid.UUID, items []invoice.Item) error {
	if err := s.invoiceRepo.ModifyItems(ctx, id, items); err != nil {
		return err
	}
	s.invalidateInvoiceQueries(ctx)
	return nil
}

// DeleteItems removes items from an invoice
func (s *InvoiceService) DeleteItems(ctx context.Context, id uuid.UUID, itemIDs []uuid.UUID) error {
	if err := s.invoiceRepo.DeleteItems(ctx, id, itemIDs); err != nil {
		return err
	}
	s.invalidateInvoiceQueries(ctx)
	return nil
}

// AddExpenseProofFiles attaches expense receipts to an invoice
func (s *InvoiceService) AddExpenseProofFiles(ctx context.Context, id uuid.UUID, files []invoice.ExpenseProofFile) error {
	if err := s.invoiceRepo.AddExpenseProofFiles(ctx, id, files); err != nil {
		return err
	}
	s.invalidateInvoiceQueries(ctx)
	return nil
}

// ModifyExpenseProofFiles updates expense receipts on an invoice
func (s *InvoiceService) ModifyExpenseProofFiles(ctx context.Context, id uuid.UUID, files []invoice.ExpenseProofFile) error {
	if err := s.invoiceRepo.ModifyExpenseProofFiles(ctx, id, files); err != nil {
		return err
	}
	s.invalidateInvoiceQueries(ctx)
	return nil
}

// DeleteExpenseProofFiles removes expense receipts from an invoice
func (s *InvoiceService) DeleteExpenseProofFiles(ctx context.Context, id uuid.UUID, fileIDs []uuid.UUID) error {
	if err := s.invoiceRepo.DeleteExpenseProofFiles(ctx, id, fileIDs); err != nil {
		return err
	}
	s.invalidateInvoiceQueries(ctx)
	return nil
}

// DistinctYears returns the years invoices were issued in, newest first,
// for populating the filter dropdown.
func (s *InvoiceService) DistinctYears(ctx context.Context) ([]int, error) {
	if data, found, err := s.queryCache.Get(ctx, cache.KeyInvoiceYears); err == nil && found {
		var years []int
		if err := json.Unmarshal(data, &years); err == nil {
			return years, nil
		}
	}

	invoices, err := s.invoiceRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[int]struct{})
	for _, inv := range invoices {
		seen[inv.InvoiceDate.Year()] = struct{}{}
	}
	years := make([]int, 0, len(seen))
	for year := range seen {
		years = append(years, year)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))

	s.cacheJSON(ctx, cache.KeyInvoiceYears, years)
	return years, nil
}

// DueSoon returns open invoices due within the next 7 days
func (s *InvoiceService) DueSoon(ctx context.Context) ([]*invoice.Invoice, error) {
	return s.filterByDate(ctx, (*invoice.Invoice).IsDueSoon)
}

// Overdue returns sent invoices past their due date
func (s *InvoiceService) Overdue(ctx context.Context) ([]*invoice.Invoice, error) {
	return s.filterByDate(ctx, (*invoice.Invoice).IsOverdue)
}

func (s *InvoiceService) filterByDate(ctx context.Context, match func(*invoice.Invoice, time.Time) bool) ([]*invoice.Invoice, error) {
	invoices, err := s.invoiceRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	matched := make([]*invoice.Invoice, 0, len(invoices))
	for _, inv := range invoices {
		if match(inv, now) {
			matched = append(matched, inv)
		}
	}
	return matched, nil
}

// Dashboard returns the invoice counts shown on the start screen
func (s *InvoiceService) Dashboard(ctx context.Context) (*DashboardSummary, error) {
	invoices, err := s.invoiceRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	summary := &DashboardSummary{TotalCount: len(invoices)}
	for _, inv := range invoices {
		switch inv.EffectiveStatus(now) {
		case invoice.StatusDraft:
			summary.DraftCount++
		case invoice.StatusSent:
			summary.SentCount++
		case invoice.StatusPaid:
			summary.PaidCount++
		case invoice.StatusOverdue:
			summary.OverdueCount++
		}
		if inv.IsDueSoon(now) {
			summary.DueSoonCount++
		}
	}
	return summary, nil
}

func (s *InvoiceService) cacheJSON(ctx context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.queryCache.Set(ctx, key, data, s.cacheTTL); err != nil {
		s.logger.Warn("caching query result failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *InvoiceService) invalidateInvoiceQueries(ctx context.Context) {
	err := s.queryCache.Invalidate(ctx,
		cache.KeyInvoiceCounts,
		cache.KeyInvoiceYears,
		cache.KeyInvoiceDueCounts,
	)
	if err != nil {
		s.logger.Warn("cache invalidation failed", zap.Error(err))
	}
}
