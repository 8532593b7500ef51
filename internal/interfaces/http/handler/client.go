package handler

import (
	"time"

	appclient "github.com/clivox/backend/internal/application/client"
	"github.com/clivox/backend/internal/domain/client"
	"github.com/clivox/backend/internal/domain/shared/valueobject"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AddressRequest is the address payload shared by create and update
type AddressRequest struct {
	CompanyOrPerson string `json:"company_or_person"`
	Street          string `json:"street"`
	PostalCode      string `json:"postal_code"`
	City            string `json:"city"`
	Country         string `json:"country"`
}

func (r AddressRequest) toDomain() valueobject.Address {
	return valueobject.Address{
		CompanyOrPerson: r.CompanyOrPerson,
		Street:          r.Street,
		PostalCode:      r.PostalCode,
		City:            r.City,
		Country:         valueobject.Country(r.Country),
	}
}

// CreateClientRequest is the payload for creating a client
type CreateClientRequest struct {
	FirstName   string         `json:"first_name" binding:"max=100"`
	LastName    string         `json:"last_name" binding:"max=100"`
	CompanyName string         `json:"company_name" binding:"max=200"`
	IsCompany   bool           `json:"is_company"`
	Gender      *string        `json:"gender" binding:"omitempty,oneof=male female"`
	Email       string         `json:"email" binding:"omitempty,email"`
	PhoneNumber string         `json:"phone_number" binding:"required,max=50"`
	Address     AddressRequest `json:"address"`
}

// UpdateClientRequest is the payload for updating a client. Version is the
// version the caller loaded; a stale one is rejected with a conflict.
type UpdateClientRequest struct {
	Version     int64          `json:"version" binding:"gte=0"`
	FirstName   string         `json:"first_name" binding:"max=100"`
	LastName    string         `json:"last_name" binding:"max=100"`
	CompanyName string         `json:"company_name" binding:"max=200"`
	IsCompany   bool           `json:"is_company"`
	Gender      *string        `json:"gender" binding:"omitempty,oneof=male female"`
	Email       string         `json:"email" binding:"omitempty,email"`
	PhoneNumber string         `json:"phone_number" binding:"required,max=50"`
	Address     AddressRequest `json:"address"`
}

// ClientFilterRequest binds the list endpoint's query parameters
type ClientFilterRequest struct {
	Search          string     `form:"search"`
	Type            *string    `form:"type" binding:"omitempty,oneof=individual company"`
	Gender          *string    `form:"gender" binding:"omitempty,oneof=male female"`
	Country         *string    `form:"country"`
	CreationYear    *int       `form:"creation_year"`
	CreatedFrom     *time.Time `form:"created_from" time_format:"2006-01-02"`
	CreatedTo       *time.Time `form:"created_to" time_format:"2006-01-02"`
	InvoiceYear     *int       `form:"invoice_year"`
	InvoicesFrom    *time.Time `form:"invoices_from" time_format:"2006-01-02"`
	InvoicesTo      *time.Time `form:"invoices_to" time_format:"2006-01-02"`
	MinInvoiceCount *int       `form:"min_invoice_count"`
	MaxInvoiceCount *int       `form:"max_invoice_count"`
	HasInvoices     *bool      `form:"has_invoices"`
	City            string     `form:"city"`
	PostalCode      string     `form:"postal_code"`
}

func (r ClientFilterRequest) toDomain() *client.Filter {
	f := &client.Filter{
		SearchQuery:     r.Search,
		CreationYear:    r.CreationYear,
		CreatedFrom:     r.CreatedFrom,
		CreatedTo:       r.CreatedTo,
		InvoiceYear:     r.InvoiceYear,
		InvoicesFrom:    r.InvoicesFrom,
		InvoicesTo:      r.InvoicesTo,
		MinInvoiceCount: r.MinInvoiceCount,
		MaxInvoiceCount: r.MaxInvoiceCount,
		HasInvoices:     r.HasInvoices,
		City:            r.City,
		PostalCode:      r.PostalCode,
	}
	if r.Type != nil {
		t := client.Type(*r.Type)
		f.Type = &t
	}
	if r.Gender != nil {
		g := client.Gender(*r.Gender)
		f.Gender = &g
	}
	if r.Country != nil {
		c := valueobject.Country(*r.Country)
		f.Country = &c
	}
	return f
}

// ClientResponse is the client view returned to the frontend. InvoiceCount
// is computed from the invoice read side and is not part of the aggregate's
// own serialization, so the view carries it explicitly.
type ClientResponse struct {
	ID           uuid.UUID           `json:"id"`
	Version      int64               `json:"version"`
	FirstName    string              `json:"first_name,omitempty"`
	LastName     string              `json:"last_name,omitempty"`
	CompanyName  string              `json:"company_name,omitempty"`
	FullName     string              `json:"full_name"`
	IsCompany    bool                `json:"is_company"`
	Gender       *client.Gender      `json:"gender,omitempty"`
	Email        string              `json:"email,omitempty"`
	PhoneNumber  string              `json:"phone_number"`
	Address      valueobject.Address `json:"address"`
	InvoiceCount int                 `json:"invoice_count"`
	CreatedOn    time.Time           `json:"created_on"`
	ModifiedOn   time.Time           `json:"modified_on"`
}

func toClientResponse(c *client.Client) ClientResponse {
	return ClientResponse{
		ID:           c.ID,
		Version:      c.Version,
		FirstName:    c.FirstName,
		LastName:     c.LastName,
		CompanyName:  c.CompanyName,
		FullName:     c.FullName(),
		IsCompany:    c.IsCompany,
		Gender:       c.Gender,
		Email:        c.Email,
		PhoneNumber:  c.PhoneNumber,
		Address:      c.Address,
		InvoiceCount: c.InvoiceCount,
		CreatedOn:    c.CreatedOn,
		ModifiedOn:   c.ModifiedOn,
	}
}

func toClientResponses(clients []*client.Client) []ClientResponse {
	out := make([]ClientResponse, 0, len(clients))
	for _, c := range clients {
		out = append(out, toClientResponse(c))
	}
	return out
}

// ClientHandler handles client endpoints
type ClientHandler struct {
	*BaseHandler
	clientService *appclient.ClientService
}

// NewClientHandler creates a client handler
func NewClientHandler(clientService *appclient.ClientService, logger *zap.Logger) *ClientHandler {
	return &ClientHandler{
		BaseHandler:   NewBaseHandler(logger),
		clientService: clientService,
	}
}

// List handles GET /api/v1/clients
func (h *ClientHandler) List(c *gin.Context) {
	var req ClientFilterRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	clients, err := h.clientService.List(c.Request.Context(), req.toDomain())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toClientResponses(clients))
}

// Get handles GET /api/v1/clients/:id
func (h *ClientHandler) Get(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	result, err := h.clientService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toClientResponse(result))
}

// Create handles POST /api/v1/clients
func (h *ClientHandler) Create(c *gin.Context) {
	var req CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	input := appclient.CreateClientInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		CompanyName: req.CompanyName,
		IsCompany:   req.IsCompany,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Address:     req.Address.toDomain(),
	}
	if req.Gender != nil {
		g := client.Gender(*req.Gender)
		input.Gender = &g
	}

	created, err := h.clientService.Create(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toClientResponse(created))
}

// Update handles PUT /api/v1/clients/:id
func (h *ClientHandler) Update(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	var req UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	input := appclient.UpdateClientInput{
		ID:          id,
		Version:     req.Version,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		CompanyName: req.CompanyName,
		IsCompany:   req.IsCompany,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Address:     req.Address.toDomain(),
	}
	if req.Gender != nil {
		g := client.Gender(*req.Gender)
		input.Gender = &g
	}

	updated, err := h.clientService.Update(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toClientResponse(updated))
}

// Delete handles DELETE /api/v1/clients/:id
func (h *ClientHandler) Delete(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	if err := h.clientService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// Countries handles GET /api/v1/clients/countries
func (h *ClientHandler) Countries(c *gin.Context) {
	countries, err := h.clientService.DistinctCountries(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, countries)
}
