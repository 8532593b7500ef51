package client

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/clivox/backend/internal/domain/client"
	"github.com/clivox/backend/internal/domain/invoice"
	"github.com/clivox/backend/internal/infrastructure/cache"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ClientService handles client use cases. Invoice-derived values, the
// per-client invoice counts and the invoice dates the filter needs, come
// from a single scan of the invoice read side and are cached.
type ClientService struct {
	clientRepo  client.Repository
	invoiceRepo invoice.Repository
	queryCache  cache.QueryCache
	cacheTTL    time.Duration
	logger      *zap.Logger
}

// NewClientService creates a new client service
func NewClientService(
	clientRepo client.Repository,
	invoiceRepo invoice.Repository,
	queryCache cache.QueryCache,
	cacheTTL time.Duration,
	logger *zap.Logger,
) *ClientService {
	return &ClientService{
		clientRepo:  clientRepo,
		invoiceRepo: invoiceRepo,
		queryCache:  queryCache,
		cacheTTL:    cacheTTL,
		logger:      logger,
	}
}

// List returns all clients matching the filter, with invoice counts
// populated. A nil or inactive filter returns every client.
func (s *ClientService) List(ctx context.Context, filter *client.Filter) ([]*client.Client, error) {
	clients, err := s.clientRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	invoiceDates, err := s.invoiceDatesByClient(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range clients {
		c.InvoiceCount = len(invoiceDates[c.ID])
	}

	if filter != nil && filter.IsActive() {
		clients = filter.Apply(clients, invoiceDates)
	}
	return clients, nil
}

// Get returns one client with its invoice count populated
func (s *ClientService) Get(ctx context.Context, id uuid.UUID) (*client.Client, error) {
	c, err := s.clientRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	invoiceDates, err := s.invoiceDatesByClient(ctx)
	if err != nil {
		return nil, err
	}
	c.InvoiceCount = len(invoiceDates[c.ID])
	return c, nil
}

// Create validates and stores a new client
func (s *ClientService) Create(ctx context.Context, input CreateClientInput) (*client.Client, error) {
	c := input.toDomain()
	if err := s.clientRepo.Add(ctx, c); err != nil {
		return nil, err
	}
	s.invalidate(ctx, cache.KeyClientCountries)
	return c, nil
}

// Update validates and stores changes to an existing client
func (s *ClientService) Update(ctx context.Context, input UpdateClientInput) (*client.Client, error) {
	c := input.toDomain()
	if err := s.clientRepo.Update(ctx, c); err != nil {
		return nil, err
	}
	s.invalidate(ctx, cache.KeyClientCountries)
	return c, nil
}

// Delete removes a client. Its invoices keep their client reference.
func (s *ClientService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.clientRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, cache.KeyClientCountries)
	return nil
}

// DistinctCountries returns the sorted set of countries clients live in,
// for populating the filter dropdown.
func (s *ClientService) DistinctCountries(ctx context.Context) ([]string, error) {
	if data, found, err := s.queryCache.Get(ctx, cache.KeyClientCountries); err == nil && found {
		var countries []string
		if err := json.Unmarshal(data, &countries); err == nil {
			return countries, nil
		}
	}

	clients, err := s.clientRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	for _, c := range clients {
		name := string(c.Address.Country)
		if name == "" {
			continue
		}
		seen[name] = struct{}{}
	}

	countries := make([]string, 0, len(seen))
	for name := range seen {
		countries = append(countries, name)
	}
	sort.Strings(countries)

	s.cacheJSON(ctx, cache.KeyClientCountries, countries)
	return countries, nil
}

// invoiceDatesByClient scans the invoice read side once and groups the
// invoice dates of live invoices by client.
func (s *ClientService) invoiceDatesByClient(ctx context.Context) (map[uuid.UUID][]time.Time, error) {
	if data, found, err := s.queryCache.Get(ctx, cache.KeyInvoiceCounts); err == nil && found {
		var dates map[uuid.UUID][]time.Time
		if err := json.Unmarshal(data, &dates); err == nil {
			return dates, nil
		}
	}

	invoices, err := s.invoiceRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	dates := make(map[uuid.UUID][]time.Time)
	for _, inv := range invoices {
		if inv.ClientID == uuid.Nil {
			continue
		}
		dates[inv.ClientID] = append(dates[inv.ClientID], inv.InvoiceDate)
	}

	s.cacheJSON(ctx, cache.KeyInvoiceCounts, dates)
	return dates, nil
}

func (s *ClientService) cacheJSON(ctx context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.queryCache.Set(ctx, key, data, s.cacheTTL); err != nil {
		s.logger.Warn("caching query result failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *ClientService) invalidate(ctx context.Context, keys ...string) {
	if err := s.queryCache.Invalidate(ctx, keys...); err != nil {
		s.logger.Warn("cache invalidation failed", zap.Error(err))
	}
}
