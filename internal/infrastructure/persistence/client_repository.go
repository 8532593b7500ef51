package persistence

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/clivox/backend/internal/domain/client"
	"github.com/clivox/backend/internal/domain/shared"
	"github.com/clivox/backend/internal/eventsourcing"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ClientRepository is the event-sourced implementation of client.Repository
type ClientRepository struct {
	engine *AggregateRepository[*client.Client]
	logger *zap.Logger
}

// NewClientRepository creates a client repository on the given store
func NewClientRepository(store eventsourcing.Store, logger *zap.Logger) *ClientRepository {
	return &ClientRepository{
		engine: NewAggregateRepository[*client.Client](store, client.AggregateKindClient, client.Projection{}),
		logger: logger,
	}
}

// GetByID implements client.Repository
func (r *ClientRepository) GetByID(ctx context.Context, id uuid.UUID) (*client.Client, error) {
	c, err := r.engine.Load(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			r.logger.Warn("client not found", zap.String("client_id", id.String()))
		}
		return nil, err
	}
	return c, nil
}

// GetAll implements client.Repository
func (r *ClientRepository) GetAll(ctx context.Context) ([]*client.Client, error) {
	clients, err := r.engine.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(clients, func(i, j int) bool {
		return strings.ToLower(clients[i].FullName()) < strings.ToLower(clients[j].FullName())
	})
	return clients, nil
}

// Add implements client.Repository
func (r *ClientRepository) Add(ctx context.Context, c *client.Client) error {
	if c == nil {
		return shared.ErrInvalidInput
	}
	if err := c.Validate(); err != nil {
		r.logger.Error("cannot add client, validation failed", zap.Error(err))
		return err
	}

	if c.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("generating client id: %w", err)
		}
		c.ID = id
	}

	r.logger.Info("adding new client", zap.String("client_name", c.FullName()))
	if err := r.engine.Start(ctx, c.ID, client.NewClientCreatedEvent(c)); err != nil {
		return err
	}
	c.Version = 1
	return nil
}

// Update implements client.Repository
func (r *ClientRepository) Update(ctx context.Context, c *client.Client) error {
	if c == nil {
		return shared.ErrInvalidInput
	}
	if err := c.Validate(); err != nil {
		r.logger.Error("cannot update client, validation failed", zap.Error(err))
		return err
	}

	r.logger.Info("updating client", zap.String("client_name", c.FullName()))
	if err := r.engine.Append(ctx, c.ID, c.Version, client.NewClientUpdatedEvent(c)); err != nil {
		if errors.Is(err, shared.ErrStreamNotFound) {
			return shared.ErrNotFound
		}
		return err
	}
	c.Version++
	return nil
}

// Delete implements client.Repository
func (r *ClientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.logger.Info("deleting client", zap.String("client_id", id.String()))
	if err := r.engine.Append(ctx, id, eventsourcing.AnyVersion, &client.ClientDeletedEvent{}); err != nil {
		if errors.Is(err, shared.ErrStreamNotFound) {
			return shared.ErrNotFound
		}
		return err
	}
	return nil
}
