package client

import (
	"context"
	"testing"
	"time"

	"github.com/clivox/backend/internal/domain/client"
	"github.com/clivox/backend/internal/domain/invoice"
	"github.com/clivox/backend/internal/domain/shared/valueobject"
	"github.com/clivox/backend/internal/infrastructure/cache"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockClientRepository is a mock implementation of client.Repository
type MockClientRepository struct {
	mock.Mock
}

func (m *MockClientRepository) GetByID(ctx context.Context, id uuid.UUID) (*client.Client, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.Client), args.Error(1)
}

func (m *MockClientRepository) GetAll(ctx context.Context) ([]*client.Client, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*client.Client), args.Error(1)
}

func (m *MockClientRepository) Add(ctx context.Context, c *client.Client) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockClientRepository) Update(ctx context.Context, c *client.Client) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockClientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

var _ client.Repository = (*MockClientRepository)(nil)

// MockInvoiceRepository is a mock implementation of invoice.Repository
type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*invoice.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoice.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) GetAll(ctx context.Context) ([]*invoice.Invoice, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*invoice.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) GetByClientID(ctx context.Context, clientID uuid.UUID) ([]*invoice.Invoice, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*invoice.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) Add(ctx context.Context, inv *invoice.Invoice) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}

func (m *MockInvoiceRepository) Update(ctx context.Context, inv *invoice.Invoice) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}

func (m *MockInvoiceRepository) ChangeStatus(ctx context.Context, id uuid.UUID, newStatus invoice.Status, paidDate *time.Time, paymentNotes string) error {
	args := m.Called(ctx, id, newStatus, paidDate, paymentNotes)
	return args.Error(0)
}

func (m *MockInvoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockInvoiceRepository) AddItems(ctx context.Context, id uuid.UUID, items []invoice.Item) error {
	args := m.Called(ctx, id, items)
	return args.Error(0)
}

func (m *MockInvoiceRepository) ModifyItems(ctx context.Context, id uuid.UUID, items []invoice.Item) error {
	args := m.Called(ctx, id, items)
	return args.Error(0)
}

func (m *MockInvoiceRepository) DeleteItems(ctx context.Context, id uuid.UUID, itemIDs []uuid.UUID) error {
	args := m.Called(ctx, id, itemIDs)
	return args.Error(0)
}

func (m *MockInvoiceRepository) AddExpenseProofFiles(ctx context.Context, id uuid.UUID, files []invoice.ExpenseProofFile) error {
	args := m.Called(ctx, id, files)
	return args.Error(0)
}

func (m *MockInvoiceRepository) ModifyExpenseProofFiles(ctx context.Context, id uuid.UUID, files []invoice.ExpenseProofFile) error {
	args := m.Called(ctx, id, files)
	return args.Error(0)
}

func (m *MockInvoiceRepository) DeleteExpenseProofFiles(ctx context.Context, id uuid.UUID, fileIDs []uuid.UUID) error {
	args := m.Called(ctx, id, fileIDs)
	return args.Error(0)
}

var _ invoice.Repository = (*MockInvoiceRepository)(nil)

func newTestClientService(clientRepo *MockClientRepository, invoiceRepo *MockInvoiceRepository) *ClientService {
	return NewClientService(clientRepo, invoiceRepo, cache.NewInMemoryQueryCache(), time.Minute, zap.NewNop())
}

func testClient(name string, country string) *client.Client {
	c := &client.Client{
		FirstName:   name,
		LastName:    "Smith",
		PhoneNumber: "+123456",
		Address:     valueobject.Address{Country: valueobject.Country(country)},
	}
	c.ID = uuid.Must(uuid.NewV7())
	return c
}

func testInvoiceFor(clientID uuid.UUID, date time.Time) *invoice.Invoice {
	inv := invoice.New(date)
	inv.ID = uuid.Must(uuid.NewV7())
	inv.ClientID = clientID
	inv.InvoiceNumber = "RN-001"
	inv.InvoiceDate = date
	inv.Items = []invoice.Item{{
		ID:          uuid.Must(uuid.NewV7()),
		Description: "Work",
		BillingType: invoice.BillingFixedPrice,
		FixedAmount: decimal.NewFromInt(100),
	}}
	return inv
}

func TestClientService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("populates invoice counts", func(t *testing.T) {
		clientRepo := new(MockClientRepository)
		invoiceRepo := new(MockInvoiceRepository)
		svc := newTestClientService(clientRepo, invoiceRepo)

		billed := testClient("Anna", "Germany")
		idle := testClient("Ben", "Austria")
		clientRepo.On("GetAll", ctx).Return([]*client.Client{billed, idle}, nil)
		invoiceRepo.On("GetAll", ctx).Return([]*invoice.Invoice{
			testInvoiceFor(billed.ID, time.Now()),
			testInvoiceFor(billed.ID, time.Now()),
		}, nil)

		clients, err := svc.List(ctx, nil)
		require.NoError(t, err)
		require.Len(t, clients, 2)
		assert.Equal(t, 2, billed.InvoiceCount)
		assert.Equal(t, 0, idle.InvoiceCount)
	})

	t.Run("applies an active filter", func(t *testing.T) {
		clientRepo := new(MockClientRepository)
		invoiceRepo := new(MockInvoiceRepository)
		svc := newTestClientService(clientRepo, invoiceRepo)

		billed := testClient("Anna", "Germany")
		idle := testClient("Ben", "Austria")
		clientRepo.On("GetAll", ctx).Return([]*client.Client{billed, idle}, nil)
		invoiceRepo.On("GetAll", ctx).Return([]*invoice.Invoice{
			testInvoiceFor(billed.ID, time.Now()),
		}, nil)

		hasInvoices := true
		clients, err := svc.List(ctx, &client.Filter{HasInvoices: &hasInvoices})
		require.NoError(t, err)
		require.Len(t, clients, 1)
		assert.Equal(t, billed.ID, clients[0].ID)
	})

	t.Run("second scan within the TTL hits the cache", func(t *testing.T) {
		clientRepo := new(MockClientRepository)
		invoiceRepo := new(MockInvoiceRepository)
		svc := newTestClientService(clientRepo, invoiceRepo)

		c := testClient("Anna", "Germany")
		clientRepo.On("GetAll", ctx).Return([]*client.Client{c}, nil)
		invoiceRepo.On("GetAll", ctx).Return([]*invoice.Invoice{
			testInvoiceFor(c.ID, time.Now()),
		}, nil).Once()

		_, err := svc.List(ctx, nil)
		require.NoError(t, err)
		_, err = svc.List(ctx, nil)
		require.NoError(t, err)
		invoiceRepo.AssertNumberOfCalls(t, "GetAll", 1)
	})
}

func TestClientService_DistinctCountries(t *testing.T) {
	ctx := context.Background()

	t.Run("returns sorted unique countries", func(t *testing.T) {
		clientRepo := new(MockClientRepository)
		invoiceRepo := new(MockInvoiceRepository)
		svc := newTestClientService(clientRepo, invoiceRepo)

		clientRepo.On("GetAll", ctx).Return([]*client.Client{
			testClient("Anna", "Germany"),
			testClient("Ben", "Austria"),
			testClient("Cara", "Germany"),
			testClient("Dan", ""),
		}, nil)

		countries, err := svc.DistinctCountries(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"Austria", "Germany"}, countries)
	})
}

func TestClientService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("passes the domain client to the repository", func(t *testing.T) {
		clientRepo := new(MockClientRepository)
		invoiceRepo := new(MockInvoiceRepository)
		svc := newTestClientService(clientRepo, invoiceRepo)

		clientRepo.On("Add", ctx, mock.MatchedBy(func(c *client.Client) bool {
			return c.FirstName == "Anna" && c.PhoneNumber == "+123"
		})).Return(nil)

		created, err := svc.Create(ctx, CreateClientInput{
			FirstName:   "Anna",
			LastName:    "Smith",
			PhoneNumber: "+123",
		})
		require.NoError(t, err)
		assert.Equal(t, "Anna Smith", created.FullName())
		clientRepo.AssertExpectations(t)
	})
}
