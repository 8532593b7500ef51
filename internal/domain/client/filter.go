package client

import (
	"strings"
	"time"

	"github.com/clivox/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// Type narrows a filter to individual or company clients
type Type string

const (
	TypeIndividual Type = "individual"
	TypeCompany    Type = "company"
)

// Filter holds the criteria for client searches. Nil pointer fields mean
// the criterion is not applied.
type Filter struct {
	// SearchQuery matches case-insensitively against first name, last
	// name, company name and email.
	SearchQuery string               `json:"search_query,omitempty"`
	Type        *Type                `json:"type,omitempty"`
	Gender      *Gender              `json:"gender,omitempty"`
	Country     *valueobject.Country `json:"country,omitempty"`

	CreationYear *int       `json:"creation_year,omitempty"`
	CreatedFrom  *time.Time `json:"created_from,omitempty"`
	CreatedTo    *time.Time `json:"created_to,omitempty"`

	// Invoice criteria match against the client's invoice dates, supplied
	// by the caller from the invoice read side.
	InvoiceYear  *int       `json:"invoice_year,omitempty"`
	InvoicesFrom *time.Time `json:"invoices_from,omitempty"`
	InvoicesTo   *time.Time `json:"invoices_to,omitempty"`

	MinInvoiceCount *int  `json:"min_invoice_count,omitempty"`
	MaxInvoiceCount *int  `json:"max_invoice_count,omitempty"`
	HasInvoices     *bool `json:"has_invoices,omitempty"`

	City       string `json:"city,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
}

// IsActive reports whether any criterion is set
func (f *Filter) IsActive() bool {
	return strings.TrimSpace(f.SearchQuery) != "" ||
		f.Type != nil ||
		f.Gender != nil ||
		f.Country != nil ||
		f.CreationYear != nil ||
		f.CreatedFrom != nil ||
		f.CreatedTo != nil ||
		f.InvoiceYear != nil ||
		f.InvoicesFrom != nil ||
		f.InvoicesTo != nil ||
		f.MinInvoiceCount != nil ||
		f.MaxInvoiceCount != nil ||
		f.HasInvoices != nil ||
		strings.TrimSpace(f.City) != "" ||
		strings.TrimSpace(f.PostalCode) != ""
}

// Apply filters clients without touching the input slice. invoiceDates maps
// a client ID to the invoice dates of that client's live invoices; it is
// only consulted for the invoice-based criteria.
func (f *Filter) Apply(clients []*Client, invoiceDates map[uuid.UUID][]time.Time) []*Client {
	matched := make([]*Client, 0, len(clients))
	for _, c := range clients {
		if f.matches(c, invoiceDates[c.ID]) {
			matched = append(matched, c)
		}
	}
	return matched
}

func (f *Filter) matches(c *Client, invoiceDates []time.Time) bool {
	if q := strings.ToLower(strings.TrimSpace(f.SearchQuery)); q != "" {
		if !strings.Contains(strings.ToLower(c.FirstName), q) &&
			!strings.Contains(strings.ToLower(c.LastName), q) &&
			!strings.Contains(strings.ToLower(c.CompanyName), q) &&
			!strings.Contains(strings.ToLower(c.Email), q) {
			return false
		}
	}

	if f.Type != nil {
		if (*f.Type == TypeCompany) != c.IsCompany {
			return false
		}
	}
	if f.Gender != nil {
		if c.Gender == nil || *c.Gender != *f.Gender {
			return false
		}
	}
	if f.Country != nil && c.Address.Country != *f.Country {
		return false
	}

	if f.CreationYear != nil && c.CreatedOn.Year() != *f.CreationYear {
		return false
	}
	if f.CreatedFrom != nil && c.CreatedOn.Before(*f.CreatedFrom) {
		return false
	}
	if f.CreatedTo != nil && c.CreatedOn.After(*f.CreatedTo) {
		return false
	}

	if f.InvoiceYear != nil || f.InvoicesFrom != nil || f.InvoicesTo != nil {
		if !f.anyInvoiceInPeriod(invoiceDates) {
			return false
		}
	}

	count := len(invoiceDates)
	if f.MinInvoiceCount != nil && count < *f.MinInvoiceCount {
		return false
	}
	if f.MaxInvoiceCount != nil && count > *f.MaxInvoiceCount {
		return false
	}
	if f.HasInvoices != nil && (count > 0) != *f.HasInvoices {
		return false
	}

	if city := strings.TrimSpace(f.City); city != "" {
		if !strings.EqualFold(strings.TrimSpace(c.Address.City), city) {
			return false
		}
	}
	if postal := strings.TrimSpace(f.PostalCode); postal != "" {
		if !strings.HasPrefix(strings.TrimSpace(c.Address.PostalCode), postal) {
			return false
		}
	}

	return true
}

func (f *Filter) anyInvoiceInPeriod(invoiceDates []time.Time) bool {
	for _, date := range invoiceDates {
		if f.InvoiceYear != nil && date.Year() != *f.InvoiceYear {
			continue
		}
		if f.InvoicesFrom != nil && date.Before(*f.InvoicesFrom) {
			continue
		}
		if f.InvoicesTo != nil && date.After(*f.InvoicesTo) {
			continue
		}
		return true
	}
	return false
}
