package client

import (
	"github.com/clivox/backend/internal/domain/client"
	"github.com/clivox/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// CreateClientInput carries the fields for creating a client
type CreateClientInput struct {
	FirstName   string
	LastName    string
	CompanyName string
	IsCompany   bool
	Gender      *client.Gender
	Email       string
	PhoneNumber string
	Address     valueobject.Address
}

// UpdateClientInput carries the fields for updating a client. Version is
// the version the caller loaded; a stale one fails the update.
type UpdateClientInput struct {
	ID          uuid.UUID
	Version     int64
	FirstName   string
	LastName    string
	CompanyName string
	IsCompany   bool
	Gender      *client.Gender
	Email       string
	PhoneNumber string
	Address     valueobject.Address
}

func (in CreateClientInput) toDomain() *client.Client {
	return &client.Client{
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		CompanyName: in.CompanyName,
		IsCompany:   in.IsCompany,
		Gender:      in.Gender,
		Email:       in.Email,
		PhoneNumber: in.PhoneNumber,
		Address:     in.Address,
	}
}

func (in UpdateClientInput) toDomain() *client.Client {
	c := &client.Client{
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		CompanyName: in.CompanyName,
		IsCompany:   in.IsCompany,
		Gender:      in.Gender,
		Email:       in.Email,
		PhoneNumber: in.PhoneNumber,
		Address:     in.Address,
	}
	c.ID = in.ID
	c.Version = in.Version
	return c
}
