package client

import (
	"strings"

	"github.com/clivox/backend/internal/domain/shared"
	"github.com/clivox/backend/internal/domain/shared/valueobject"
)

// Gender of an individual client
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// Client represents a customer of the business. It is an event-sourced
// aggregate root: current state is the fold of its event stream.
type Client struct {
	shared.BaseAggregateRoot
	FirstName   string              `json:"first_name,omitempty"`
	LastName    string              `json:"last_name,omitempty"`
	CompanyName string              `json:"company_name,omitempty"`
	IsCompany   bool                `json:"is_company"`
	Gender      *Gender             `json:"gender,omitempty"`
	Email       string              `json:"email,omitempty"`
	PhoneNumber string              `json:"phone_number"`
	Address     valueobject.Address `json:"address"`

	// InvoiceCount is computed by the read side from the invoice
	// aggregates; it is not part of the client's event stream.
	InvoiceCount int `json:"-"`
}

// FullName returns the client's display name: first + last for individuals,
// the company name for companies.
func (c *Client) FullName() string {
	if c.IsCompany {
		return c.CompanyName
	}
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// Validate checks the client's invariants. It returns a ValidationError
// listing every violation, or nil when the client is valid.
func (c *Client) Validate() error {
	var violations []string

	if strings.TrimSpace(c.PhoneNumber) == "" {
		violations = append(violations, "Phone number is required.")
	}

	if c.IsCompany {
		if strings.TrimSpace(c.CompanyName) == "" {
			violations = append(violations, "Company name is required for company clients.")
		}
	} else {
		if strings.TrimSpace(c.FirstName) == "" {
			violations = append(violations, "First name is required for individual clients.")
		}
		if strings.TrimSpace(c.LastName) == "" {
			violations = append(violations, "Last name is required for individual clients.")
		}
	}

	if len(violations) > 0 {
		return shared.NewValidationError(violations...)
	}
	return nil
}
