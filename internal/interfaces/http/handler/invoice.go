package handler

import (
	"time"

	appinvoice "github.com/clivox/backend/internal/application/invoice"
	"github.com/clivox/backend/internal/domain/invoice"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ItemRequest is one invoice line in a request payload. A missing ID means
// the item is new and gets one assigned.
type ItemRequest struct {
	ID          *uuid.UUID      `json:"id"`
	Description string          `json:"description" binding:"required"`
	BillingType string          `json:"billing_type" binding:"required,oneof=per_hour per_square_meter fixed_price per_object"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`

	Area                decimal.Decimal `json:"area"`
	PricePerSquareMeter decimal.Decimal `json:"price_per_square_meter"`

	FixedAmount decimal.Decimal `json:"fixed_amount"`
}

func (r ItemRequest) toDomain() invoice.Item {
	item := invoice.Item{
		Description:         r.Description,
		BillingType:         invoice.BillingType(r.BillingType),
		Quantity:            r.Quantity,
		UnitPrice:           r.UnitPrice,
		Area:                r.Area,
		PricePerSquareMeter: r.PricePerSquareMeter,
		FixedAmount:         r.FixedAmount,
	}
	if r.ID != nil {
		item.ID = *r.ID
	} else {
		item.ID = uuid.Must(uuid.NewV7())
	}
	return item
}

func toDomainItems(reqs []ItemRequest) []invoice.Item {
	items := make([]invoice.Item, 0, len(reqs))
	for _, r := range reqs {
		items = append(items, r.toDomain())
	}
	return items
}

// ExpenseProofFileRequest is one expense receipt in a request payload
type ExpenseProofFileRequest struct {
	ID          *uuid.UUID      `json:"id"`
	FileName    string          `json:"file_name" binding:"required"`
	ContentType string          `json:"content_type"`
	FileContent []byte          `json:"file_content"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

func (r ExpenseProofFileRequest) toDomain(now time.Time) invoice.ExpenseProofFile {
	file := invoice.ExpenseProofFile{
		FileName:    r.FileName,
		ContentType: r.ContentType,
		FileSize:    int64(len(r.FileContent)),
		FileContent: r.FileContent,
		UploadedAt:  now,
		Description: r.Description,
		Amount:      r.Amount,
	}
	if r.ID != nil {
		file.ID = *r.ID
	} else {
		file.ID = uuid.Must(uuid.NewV7())
	}
	return file
}

func toDomainFiles(reqs []ExpenseProofFileRequest, now time.Time) []invoice.ExpenseProofFile {
	files := make([]invoice.ExpenseProofFile, 0, len(reqs))
	for _, r := range reqs {
		files = append(files, r.toDomain(now))
	}
	return files
}

// CreateInvoiceRequest is the payload for creating an invoice
type CreateInvoiceRequest struct {
	InvoiceNumber string        `json:"invoice_number"`
	InvoiceDate   time.Time     `json:"invoice_date"`
	DueDate       time.Time     `json:"due_date"`
	ServiceDate   time.Time     `json:"service_date"`
	ClientID      uuid.UUID     `json:"client_id" binding:"required"`
	Items         []ItemRequest `json:"items" binding:"required,min=1,dive"`
}

// UpdateInvoiceRequest is the payload for updating an invoice. Version is
// the version the caller loaded; a stale one is rejected with a conflict.
type UpdateInvoiceRequest struct {
	Version       int64         `json:"version" binding:"gte=0"`
	InvoiceNumber string        `json:"invoice_number" binding:"required"`
	InvoiceDate   time.Time     `json:"invoice_date" binding:"required"`
	DueDate       time.Time     `json:"due_date" binding:"required"`
	ServiceDate   time.Time     `json:"service_date"`
	ClientID      uuid.UUID     `json:"client_id" binding:"required"`
	Items         []ItemRequest `json:"items" binding:"required,min=1,dive"`
}

// ChangeStatusRequest is the payload for a status transition
type ChangeStatusRequest struct {
	Status       string     `json:"status" binding:"required,oneof=draft sent paid overdue cancelled"`
	PaidDate     *time.Time `json:"paid_date"`
	PaymentNotes string     `json:"payment_notes"`
}

// MarkPaidRequest is the payload for the paid shorthand
type MarkPaidRequest struct {
	PaidDate     *time.Time `json:"paid_date"`
	PaymentNotes string     `json:"payment_notes"`
}

// ItemsRequest carries items for the item sub-resource operations
type ItemsRequest struct {
	Items []ItemRequest `json:"items" binding:"required,min=1,dive"`
}

// ItemIDsRequest carries the item IDs to delete
type ItemIDsRequest struct {
	ItemIDs []uuid.UUID `json:"item_ids" binding:"required,min=1"`
}

// FilesRequest carries expense receipts for the file sub-resource operations
type FilesRequest struct {
	Files []ExpenseProofFileRequest `json:"files" binding:"required,min=1,dive"`
}

// FileIDsRequest carries the file IDs to delete
type FileIDsRequest struct {
	FileIDs []uuid.UUID `json:"file_ids" binding:"required,min=1"`
}

// InvoiceHandler handles invoice endpoints
type InvoiceHandler struct {
	*BaseHandler
	invoiceService *appinvoice.InvoiceService
}

// NewInvoiceHandler creates an invoice handler
func NewInvoiceHandler(invoiceService *appinvoice.InvoiceService, logger *zap.Logger) *InvoiceHandler {
	return &InvoiceHandler{
		BaseHandler:    NewBaseHandler(logger),
		invoiceService: invoiceService,
	}
}

// List handles GET /api/v1/invoices. An optional client_id query parameter
// narrows the list to one client's invoices.
func (h *InvoiceHandler) List(c *gin.Context) {
	if clientID := c.Query("client_id"); clientID != "" {
		id, err := uuid.Parse(clientID)
		if err != nil {
			h.BadRequest(c, "Invalid client_id")
			return
		}
		invoices, err := h.invoiceService.GetByClient(c.Request.Context(), id)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Success(c, invoices)
		return
	}

	invoices, err := h.invoiceService.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoices)
}

// Get handles GET /api/v1/invoices/:id
func (h *InvoiceHandler) Get(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	inv, err := h.invoiceService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, inv)
}

// Create handles POST /api/v1/invoices
func (h *InvoiceHandler) Create(c *gin.Context) {
	var req CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	created, err := h.invoiceService.Create(c.Request.Context(), appinvoice.CreateInvoiceInput{
		InvoiceNumber: req.InvoiceNumber,
		InvoiceDate:   req.InvoiceDate,
		DueDate:       req.DueDate,
		ServiceDate:   req.ServiceDate,
		ClientID:      req.ClientID,
		Items:         toDomainItems(req.Items),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, created)
}

// Update handles PUT /api/v1/invoices/:id
func (h *InvoiceHandler) Update(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	var req UpdateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	updated, err := h.invoiceService.Update(c.Request.Context(), appinvoice.UpdateInvoiceInput{
		ID:            id,
		Version:       req.Version,
		InvoiceNumber: req.InvoiceNumber,
		InvoiceDate:   req.InvoiceDate,
		DueDate:       req.DueDate,
		ServiceDate:   req.ServiceDate,
		ClientID:      req.ClientID,
		Items:         toDomainItems(req.Items),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, updated)
}

// ChangeStatus handles POST /api/v1/invoices/:id/status
func (h *InvoiceHandler) ChangeStatus(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	var req ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	err := h.invoiceService.ChangeStatus(c.Request.Context(), appinvoice.ChangeStatusInput{
		ID:           id,
		NewStatus:    invoice.Status(req.Status),
		PaidDate:     req.PaidDate,
		PaymentNotes: req.PaymentNotes,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"message": "Status changed"})
}

// MarkAsPaid handles POST /api/v1/invoices/:id/pay
func (h *InvoiceHandler) MarkAsPaid(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	var req MarkPaidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	if err := h.invoiceService.MarkAsPaid(c.Request.Context(), id, req.PaidDate, req.PaymentNotes); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"message": "Invoice marked as paid"})
}

// Delete handles DELETE /api/v1/invoices/:id
func (h *InvoiceHandler) Delete(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	if err := h.invoiceService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// AddItems handles POST /api/v1/invoices/:id/items
func (h *InvoiceHandler) AddItems(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	var req ItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	if err := h.invoiceService.AddItems(c.Request.Context(), id, toDomainItems(req.Items)); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"message": "Items added"})
}

// ModifyItems handles PUT /api/v1/invoices/:id/items
func (h *InvoiceHandler) ModifyItems(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	var req ItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	if err := h.invoiceService.ModifyItems(c.Request.Context(), id, toDomainItems(req.Items)); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"message": "Items updated"})
}

// DeleteItems handles DELETE /api/v1/invoices/:id/items
func (h *InvoiceHandler) DeleteItems(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	var req ItemIDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	if err := h.invoiceService.DeleteItems(c.Request.Context(), id, req.ItemIDs); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"message": "Items removed"})
}

// AddFiles handles POST /api/v1/invoices/:id/files
func (h *InvoiceHandler) AddFiles(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	var req FilesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	files := toDomainFiles(req.Files, time.Now().UTC())
	if err := h.invoiceService.AddExpenseProofFiles(c.Request.Context(), id, files); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"message": "Files added"})
}

// ModifyFiles handles PUT /api/v1/invoices/:id/files
func (h *InvoiceHandler) ModifyFiles(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	var req FilesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	files := toDomainFiles(req.Files, time.Now().UTC())
	if err := h.invoiceService.ModifyExpenseProofFiles(c.Request.Context(), id, files); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"message": "Files updated"})
}

// DeleteFiles handles DELETE /api/v1/invoices/:id/files
func (h *InvoiceHandler) DeleteFiles(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	var req FileIDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	if err := h.invoiceService.DeleteExpenseProofFiles(c.Request.Context(), id, req.FileIDs); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"message": "Files removed"})
}

// Years handles GET /api/v1/invoices/years
func (h *InvoiceHandler) Years(c *gin.Context) {
	years, err := h.invoiceService.DistinctYears(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, years)
}

// DueSoon handles GET /api/v1/invoices/due-soon
func (h *InvoiceHandler) DueSoon(c *gin.Context) {
	invoices, err := h.invoiceService.DueSoon(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoices)
}

// Overdue handles GET /api/v1/invoices/overdue
func (h *InvoiceHandler) Overdue(c *gin.Context) {
	invoices, err := h.invoiceService.Overdue(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoices)
}

// Dashboard handles GET /api/v1/invoices/dashboard
func (h *InvoiceHandler) Dashboard(c *gin.Context) {
	summary, err := h.invoiceService.Dashboard(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}
