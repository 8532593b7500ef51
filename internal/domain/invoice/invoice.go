package invoice

import (
	"fmt"
	"strings"
	"time"

	"github.com/clivox/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// NumberPrefix starts every invoice number
const NumberPrefix = "RN-"

// BillingType selects how an invoice item is priced
type BillingType string

const (
	BillingPerHour        BillingType = "per_hour"
	BillingPerSquareMeter BillingType = "per_square_meter"
	BillingFixedPrice     BillingType = "fixed_price"
	BillingPerObject      BillingType = "per_object"
)

// Status of an invoice
type Status string

const (
	StatusDraft     Status = "draft"
	StatusSent      Status = "sent"
	StatusPaid      Status = "paid"
	StatusOverdue   Status = "overdue"
	StatusCancelled Status = "cancelled"
)

// Item is one billed line of an invoice. Which amount fields are relevant
// depends on the billing type.
type Item struct {
	ID          uuid.UUID   `json:"id"`
	Description string      `json:"description"`
	BillingType BillingType `json:"billing_type"`

	// PerHour and PerObject
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`

	// PerSquareMeter
	Area                decimal.Decimal `json:"area"`
	PricePerSquareMeter decimal.Decimal `json:"price_per_square_meter"`

	// FixedPrice
	FixedAmount decimal.Decimal `json:"fixed_amount"`
}

// Total returns the item's charge according to its billing type
func (i Item) Total() decimal.Decimal {
	switch i.BillingType {
	case BillingPerHour, BillingPerObject:
		return i.Quantity.Mul(i.UnitPrice)
	case BillingPerSquareMeter:
		return i.Area.Mul(i.PricePerSquareMeter)
	case BillingFixedPrice:
		return i.FixedAmount
	default:
		return decimal.Zero
	}
}

// ExpenseProofFile is a receipt attached to an invoice as proof of an
// expense incurred for the job.
type ExpenseProofFile struct {
	ID          uuid.UUID       `json:"id"`
	FileName    string          `json:"file_name"`
	ContentType string          `json:"content_type"`
	FileSize    int64           `json:"file_size"`
	FileContent []byte          `json:"file_content"`
	UploadedAt  time.Time       `json:"uploaded_at"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

// Invoice is an event-sourced aggregate root: its current state is the fold
// of its event stream. ClientID is a weak reference; deleting the client
// does not cascade.
type Invoice struct {
	shared.BaseAggregateRoot
	InvoiceNumber string          `json:"invoice_number"`
	InvoiceDate   time.Time       `json:"invoice_date"`
	DueDate       time.Time       `json:"due_date"`
	ServiceDate   time.Time       `json:"service_date"`
	TotalAmount   decimal.Decimal `json:"total_amount"`

	Status       Status     `json:"status"`
	PaidDate     *time.Time `json:"paid_date,omitempty"`
	PaymentNotes string     `json:"payment_notes,omitempty"`

	ClientID          uuid.UUID          `json:"client_id"`
	Items             []Item             `json:"items"`
	ExpenseProofFiles []ExpenseProofFile `json:"expense_proof_files"`
}

// New returns a draft invoice with the default dates: due in 14 days,
// service a week ago.
func New(now time.Time) *Invoice {
	return &Invoice{
		InvoiceNumber: NumberPrefix,
		InvoiceDate:   now,
		DueDate:       now.AddDate(0, 0, 14),
		ServiceDate:   now.AddDate(0, 0, -7),
		Status:        StatusDraft,
	}
}

// ItemsTotal is the sum of all item charges, what the client is billed
func (inv *Invoice) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range inv.Items {
		total = total.Add(item.Total())
	}
	return total
}

// ExpensesTotal is the sum of all expense proof amounts, what was spent
func (inv *Invoice) ExpensesTotal() decimal.Decimal {
	total := decimal.Zero
	for _, file := range inv.ExpenseProofFiles {
		total = total.Add(file.Amount)
	}
	return total
}

// NetTotal is items minus expenses, what the client actually pays
func (inv *Invoice) NetTotal() decimal.Decimal {
	return inv.ItemsTotal().Sub(inv.ExpensesTotal())
}

// EffectiveStatus derives the status from the stored one and the due date:
// a sent invoice past its due date reads as overdue.
func (inv *Invoice) EffectiveStatus(now time.Time) Status {
	switch inv.Status {
	case StatusPaid, StatusCancelled, StatusDraft:
		return inv.Status
	case StatusSent:
		if inv.DueDate.Before(truncateToDay(now)) {
			return StatusOverdue
		}
	}
	return inv.Status
}

// IsOverdue reports whether the invoice is past due and unpaid
func (inv *Invoice) IsOverdue(now time.Time) bool {
	return inv.EffectiveStatus(now) == StatusOverdue
}

// IsDueSoon reports whether an open invoice is due within the next 7 days
func (inv *Invoice) IsDueSoon(now time.Time) bool {
	if inv.Status == StatusPaid || inv.Status == StatusCancelled {
		return false
	}
	daysUntilDue := inv.DueDate.Sub(truncateToDay(now)).Hours() / 24
	return daysUntilDue <= 7 && daysUntilDue >= 0
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// MarkAsPaid sets the paid status with an optional paid date and notes
func (inv *Invoice) MarkAsPaid(paidDate *time.Time, paymentNotes string, now time.Time) {
	inv.Status = StatusPaid
	if paidDate == nil {
		paidDate = &now
	}
	inv.PaidDate = paidDate
	inv.PaymentNotes = paymentNotes
}

// ChangeStatus moves the invoice to a new status. Entering paid stamps the
// paid date when missing; leaving paid clears it.
func (inv *Invoice) ChangeStatus(newStatus Status, notes string, now time.Time) {
	inv.Status = newStatus

	if newStatus == StatusPaid {
		if inv.PaidDate == nil {
			inv.PaidDate = &now
		}
	} else {
		inv.PaidDate = nil
	}

	if notes != "" {
		inv.PaymentNotes = notes
	}
}

// Validate checks the invoice's invariants. It returns a ValidationError
// listing every violation, or nil when the invoice is valid.
func (inv *Invoice) Validate() error {
	var violations []string

	if len(inv.Items) == 0 {
		violations = append(violations, "Invoice must have at least one item.")
	}

	if strings.TrimSpace(inv.InvoiceNumber) == "" || inv.InvoiceNumber == NumberPrefix {
		violations = append(violations, "Invoice number is required.")
	}

	if inv.ClientID == uuid.Nil {
		violations = append(violations, "Client is required.")
	}

	for i, item := range inv.Items {
		violations = append(violations, validateItem(item, i+1)...)
	}

	if len(violations) > 0 {
		return shared.NewValidationError(violations...)
	}
	return nil
}

func validateItem(item Item, itemNumber int) []string {
	var violations []string

	if strings.TrimSpace(item.Description) == "" {
		violations = append(violations, fmt.Sprintf("Item %d: Description is required.", itemNumber))
	}

	switch item.BillingType {
	case BillingPerHour, BillingPerObject:
		if !item.Quantity.IsPositive() {
			violations = append(violations, fmt.Sprintf("Item %d: Quantity must be greater than 0.", itemNumber))
		}
		if !item.UnitPrice.IsPositive() {
			violations = append(violations, fmt.Sprintf("Item %d: Unit price must be greater than 0.", itemNumber))
		}
	case BillingPerSquareMeter:
		if !item.Area.IsPositive() {
			violations = append(violations, fmt.Sprintf("Item %d: Area must be greater than 0.", itemNumber))
		}
		if !item.PricePerSquareMeter.IsPositive() {
			violations = append(violations, fmt.Sprintf("Item %d: Price per square meter must be greater than 0.", itemNumber))
		}
	case BillingFixedPrice:
		if !item.FixedAmount.IsPositive() {
			violations = append(violations, fmt.Sprintf("Item %d: Fixed amount must be greater than 0.", itemNumber))
		}
	}

	return violations
}
