package invoice

import (
	"testing"
	"time"

	"github.com/clivox/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestItem_Total(t *testing.T) {
	t.Run("per hour multiplies quantity and unit price", func(t *testing.T) {
		item := Item{BillingType: BillingPerHour, Quantity: dec("2.5"), UnitPrice: dec("80")}
		assert.True(t, item.Total().Equal(dec("200")))
	})

	t.Run("per object multiplies quantity and unit price", func(t *testing.T) {
		item := Item{BillingType: BillingPerObject, Quantity: dec("3"), UnitPrice: dec("45.50")}
		assert.True(t, item.Total().Equal(dec("136.5")))
	})

	t.Run("per square meter multiplies area and rate", func(t *testing.T) {
		item := Item{BillingType: BillingPerSquareMeter, Area: dec("120"), PricePerSquareMeter: dec("4.20")}
		assert.True(t, item.Total().Equal(dec("504")))
	})

	t.Run("fixed price returns the fixed amount", func(t *testing.T) {
		item := Item{BillingType: BillingFixedPrice, FixedAmount: dec("999.99"), Quantity: dec("7")}
		assert.True(t, item.Total().Equal(dec("999.99")))
	})

	t.Run("unknown billing type totals zero", func(t *testing.T) {
		item := Item{BillingType: "weird", Quantity: dec("7"), UnitPrice: dec("7")}
		assert.True(t, item.Total().IsZero())
	})
}

func TestInvoice_Totals(t *testing.T) {
	inv := &Invoice{
		Items: []Item{
			{ID: uuid.Must(uuid.NewV7()), BillingType: BillingPerHour, Quantity: dec("10"), UnitPrice: dec("50")},
			{ID: uuid.Must(uuid.NewV7()), BillingType: BillingFixedPrice, FixedAmount: dec("150")},
		},
		ExpenseProofFiles: []ExpenseProofFile{
			{ID: uuid.Must(uuid.NewV7()), Amount: dec("75.50")},
			{ID: uuid.Must(uuid.NewV7()), Amount: dec("24.50")},
		},
	}

	assert.True(t, inv.ItemsTotal().Equal(dec("650")))
	assert.True(t, inv.ExpensesTotal().Equal(dec("100")))
	assert.True(t, inv.NetTotal().Equal(dec("550")))
}

func TestNew(t *testing.T) {
	now := time.Date(2026, 3, 15, 14, 30, 0, 0, time.UTC)
	inv := New(now)

	assert.Equal(t, NumberPrefix, inv.InvoiceNumber)
	assert.Equal(t, StatusDraft, inv.Status)
	assert.Equal(t, now, inv.InvoiceDate)
	assert.Equal(t, now.AddDate(0, 0, 14), inv.DueDate)
	assert.Equal(t, now.AddDate(0, 0, -7), inv.ServiceDate)
}

func TestInvoice_EffectiveStatus(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	t.Run("sent past due reads as overdue", func(t *testing.T) {
		inv := &Invoice{Status: StatusSent, DueDate: now.AddDate(0, 0, -1)}
		assert.Equal(t, StatusOverdue, inv.EffectiveStatus(now))
		assert.True(t, inv.IsOverdue(now))
	})

	t.Run("sent due today is not overdue", func(t *testing.T) {
		inv := &Invoice{Status: StatusSent, DueDate: time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)}
		assert.Equal(t, StatusSent, inv.EffectiveStatus(now))
	})

	t.Run("paid stays paid regardless of due date", func(t *testing.T) {
		inv := &Invoice{Status: StatusPaid, DueDate: now.AddDate(0, 0, -30)}
		assert.Equal(t, StatusPaid, inv.EffectiveStatus(now))
	})

	t.Run("draft stays draft past its due date", func(t *testing.T) {
		inv := &Invoice{Status: StatusDraft, DueDate: now.AddDate(0, 0, -30)}
		assert.Equal(t, StatusDraft, inv.EffectiveStatus(now))
	})

	t.Run("cancelled stays cancelled", func(t *testing.T) {
		inv := &Invoice{Status: StatusCancelled, DueDate: now.AddDate(0, 0, -30)}
		assert.Equal(t, StatusCancelled, inv.EffectiveStatus(now))
	})
}

func TestInvoice_IsDueSoon(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	t.Run("due within a week", func(t *testing.T) {
		inv := &Invoice{Status: StatusSent, DueDate: time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)}
		assert.True(t, inv.IsDueSoon(now))
	})

	t.Run("due further out", func(t *testing.T) {
		inv := &Invoice{Status: StatusSent, DueDate: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)}
		assert.False(t, inv.IsDueSoon(now))
	})

	t.Run("already past due", func(t *testing.T) {
		inv := &Invoice{Status: StatusSent, DueDate: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)}
		assert.False(t, inv.IsDueSoon(now))
	})

	t.Run("paid invoices never show up", func(t *testing.T) {
		inv := &Invoice{Status: StatusPaid, DueDate: time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC)}
		assert.False(t, inv.IsDueSoon(now))
	})
}

func TestInvoice_MarkAsPaid(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	t.Run("defaults the paid date to now", func(t *testing.T) {
		inv := &Invoice{Status: StatusSent}
		inv.MarkAsPaid(nil, "bank transfer", now)

		assert.Equal(t, StatusPaid, inv.Status)
		require.NotNil(t, inv.PaidDate)
		assert.Equal(t, now, *inv.PaidDate)
		assert.Equal(t, "bank transfer", inv.PaymentNotes)
	})

	t.Run("keeps an explicit paid date", func(t *testing.T) {
		paidOn := now.AddDate(0, 0, -2)
		inv := &Invoice{Status: StatusSent}
		inv.MarkAsPaid(&paidOn, "", now)

		require.NotNil(t, inv.PaidDate)
		assert.Equal(t, paidOn, *inv.PaidDate)
	})
}

func TestInvoice_ChangeStatus(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	t.Run("entering paid stamps the paid date", func(t *testing.T) {
		inv := &Invoice{Status: StatusSent}
		inv.ChangeStatus(StatusPaid, "", now)

		require.NotNil(t, inv.PaidDate)
		assert.Equal(t, now, *inv.PaidDate)
	})

	t.Run("leaving paid clears the paid date", func(t *testing.T) {
		paidOn := now
		inv := &Invoice{Status: StatusPaid, PaidDate: &paidOn}
		inv.ChangeStatus(StatusSent, "", now)

		assert.Nil(t, inv.PaidDate)
		assert.Equal(t, StatusSent, inv.Status)
	})

	t.Run("notes only overwrite when present", func(t *testing.T) {
		inv := &Invoice{Status: StatusSent, PaymentNotes: "keep me"}
		inv.ChangeStatus(StatusCancelled, "", now)
		assert.Equal(t, "keep me", inv.PaymentNotes)

		inv.ChangeStatus(StatusSent, "replaced", now)
		assert.Equal(t, "replaced", inv.PaymentNotes)
	})
}

func TestInvoice_Validate(t *testing.T) {
	valid := func() *Invoice {
		return &Invoice{
			InvoiceNumber: "RN-2026-001",
			ClientID:      uuid.Must(uuid.NewV7()),
			Items: []Item{
				{ID: uuid.Must(uuid.NewV7()), Description: "Cleaning", BillingType: BillingPerHour, Quantity: dec("2"), UnitPrice: dec("60")},
			},
		}
	}

	t.Run("valid invoice passes", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	t.Run("requires at least one item", func(t *testing.T) {
		inv := valid()
		inv.Items = nil

		var verr *shared.ValidationError
		require.ErrorAs(t, inv.Validate(), &verr)
		assert.Contains(t, verr.Violations, "Invoice must have at least one item.")
	})

	t.Run("bare number prefix counts as missing", func(t *testing.T) {
		inv := valid()
		inv.InvoiceNumber = NumberPrefix

		var verr *shared.ValidationError
		require.ErrorAs(t, inv.Validate(), &verr)
		assert.Contains(t, verr.Violations, "Invoice number is required.")
	})

	t.Run("requires a client", func(t *testing.T) {
		inv := valid()
		inv.ClientID = uuid.Nil

		var verr *shared.ValidationError
		require.ErrorAs(t, inv.Validate(), &verr)
		assert.Contains(t, verr.Violations, "Client is required.")
	})

	t.Run("item violations name the item position", func(t *testing.T) {
		inv := valid()
		inv.Items = append(inv.Items, Item{
			ID:          uuid.Must(uuid.NewV7()),
			BillingType: BillingPerSquareMeter,
		})

		var verr *shared.ValidationError
		require.ErrorAs(t, inv.Validate(), &verr)
		assert.Contains(t, verr.Violations, "Item 2: Description is required.")
		assert.Contains(t, verr.Violations, "Item 2: Area must be greater than 0.")
		assert.Contains(t, verr.Violations, "Item 2: Price per square meter must be greater than 0.")
	})

	t.Run("fixed price items need a positive amount", func(t *testing.T) {
		inv := valid()
		inv.Items = []Item{{
			ID:          uuid.Must(uuid.NewV7()),
			Description: "Flat fee",
			BillingType: BillingFixedPrice,
			FixedAmount: dec("0"),
		}}

		var verr *shared.ValidationError
		require.ErrorAs(t, inv.Validate(), &verr)
		assert.Contains(t, verr.Violations, "Item 1: Fixed amount must be greater than 0.")
	})
}
