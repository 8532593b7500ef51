package valueobject

import "strings"

// Country is an ISO-like country label used on client addresses
type Country string

const (
	CountryGermany     Country = "Germany"
	CountryAustria     Country = "Austria"
	CountrySwitzerland Country = "Switzerland"
	CountryFrance      Country = "France"
	CountryNetherlands Country = "Netherlands"
	CountryPoland      Country = "Poland"
	CountryOther       Country = "Other"
)

// Address is the postal address value object shared by clients.
// It has no identity; two addresses with the same fields are equal.
type Address struct {
	CompanyOrPerson string  `json:"company_or_person,omitempty"`
	Street          string  `json:"street"`
	PostalCode      string  `json:"postal_code"`
	City            string  `json:"city"`
	Country         Country `json:"country"`
}

// NewAddress creates an address defaulting the country to Germany
func NewAddress(street, postalCode, city string) Address {
	return Address{
		Street:     street,
		PostalCode: postalCode,
		City:       city,
		Country:    CountryGermany,
	}
}

// String renders the address as postal lines, skipping empty parts
func (a Address) String() string {
	lines := make([]string, 0, 3)
	if a.CompanyOrPerson != "" {
		lines = append(lines, a.CompanyOrPerson)
	}
	if a.Street != "" {
		lines = append(lines, a.Street)
	}
	if cityLine := strings.TrimSpace(a.PostalCode + " " + a.City); cityLine != "" {
		lines = append(lines, cityLine)
	}
	return strings.Join(lines, "\n")
}

// IsZero reports whether the address carries no information
func (a Address) IsZero() bool {
	return a.CompanyOrPerson == "" && a.Street == "" && a.PostalCode == "" && a.City == ""
}
