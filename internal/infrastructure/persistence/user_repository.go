package persistence

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/clivox/backend/internal/domain/auth"
	"github.com/clivox/backend/internal/domain/shared"
	"github.com/clivox/backend/internal/eventsourcing"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UserRepository is the event-sourced implementation of auth.Repository.
// Credential fields never reach the JSON snapshots, so lookups that need
// them resolve the id from the snapshot and then replay the full stream.
type UserRepository struct {
	engine *AggregateRepository[*auth.User]
	logger *zap.Logger
	now    func() time.Time
}

// NewUserRepository creates a user repository on the given store
func NewUserRepository(store eventsourcing.Store, logger *zap.Logger) *UserRepository {
	return &UserRepository{
		engine: NewAggregateRepository[*auth.User](store, auth.AggregateKindUser, auth.Projection{}),
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// GetByID implements auth.Repository
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*auth.User, error) {
	u, err := r.engine.Load(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			r.logger.Warn("user not found", zap.String("user_id", id.String()))
		}
		return nil, err
	}
	return u, nil
}

// GetAll implements auth.Repository
func (r *UserRepository) GetAll(ctx context.Context) ([]*auth.User, error) {
	users, err := r.engine.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(users, func(i, j int) bool {
		return strings.ToLower(users[i].Username) < strings.ToLower(users[j].Username)
	})
	return users, nil
}

// GetByUsername implements auth.Repository
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*auth.User, error) {
	return r.findAndReplay(ctx, func(u *auth.User) bool { return u.Username == username })
}

// GetByEmail implements auth.Repository
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	return r.findAndReplay(ctx, func(u *auth.User) bool { return u.Email == email })
}

func (r *UserRepository) findAndReplay(ctx context.Context, match func(*auth.User) bool) (*auth.User, error) {
	users, err := r.engine.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if match(u) {
			return r.engine.Load(ctx, u.ID)
		}
	}
	return nil, shared.ErrNotFound
}

// Create implements auth.Repository
func (r *UserRepository) Create(ctx context.Context, u *auth.User) error {
	if u == nil {
		return shared.ErrInvalidInput
	}
	if err := u.Validate(); err != nil {
		r.logger.Error("cannot create user, validation failed", zap.Error(err))
		return err
	}

	if u.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("generating user id: %w", err)
		}
		u.ID = id
	}

	r.logger.Info("creating new user", zap.String("username", u.Username))
	if err := r.engine.Start(ctx, u.ID, auth.NewUserCreatedEvent(u)); err != nil {
		return err
	}
	u.Version = 1
	return nil
}

// RecordLogin implements auth.Repository
func (r *UserRepository) RecordLogin(ctx context.Context, id uuid.UUID, ipAddress string) error {
	r.logger.Info("recording successful login", zap.String("user_id", id.String()))
	return r.append(ctx, id, &auth.UserLoggedInEvent{LoginTime: r.now(), IPAddress: ipAddress})
}

// RecordLogout implements auth.Repository
func (r *UserRepository) RecordLogout(ctx context.Context, id uuid.UUID) error {
	r.logger.Info("recording logout", zap.String("user_id", id.String()))
	return r.append(ctx, id, &auth.UserLoggedOutEvent{LogoutTime: r.now()})
}

// RecordFailedLogin implements auth.Repository
func (r *UserRepository) RecordFailedLogin(ctx context.Context, id uuid.UUID) error {
	u, err := r.engine.Load(ctx, id)
	if err != nil {
		return err
	}

	r.logger.Warn("recording failed login attempt",
		zap.String("user_id", id.String()),
		zap.Int("failed_attempts", u.FailedLoginAttempts+1))

	events := []shared.DomainEvent{&auth.UserLoginFailedEvent{AttemptTime: r.now()}}
	if u.FailedLoginAttempts+1 >= auth.MaxFailedLoginAttempts {
		events = append(events, &auth.UserAccountLockedEvent{
			LockedUntil: r.now().Add(auth.LockoutDuration),
			Reason:      "Too many failed login attempts",
		})
	}
	return r.append(ctx, id, events...)
}

// UpdatePassword implements auth.Repository
func (r *UserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, newPassword string) error {
	u, err := r.engine.Load(ctx, id)
	if err != nil {
		return err
	}
	if err := u.UpdatePassword(newPassword); err != nil {
		return err
	}

	r.logger.Info("updating password", zap.String("user_id", id.String()))
	return r.append(ctx, id, &auth.UserPasswordChangedEvent{
		NewPasswordHash: u.PasswordHash,
		NewSalt:         u.Salt,
	})
}

// Lock implements auth.Repository
func (r *UserRepository) Lock(ctx context.Context, id uuid.UUID, until time.Time, reason string) error {
	r.logger.Warn("locking user account", zap.String("user_id", id.String()), zap.Time("until", until))
	return r.append(ctx, id, &auth.UserAccountLockedEvent{LockedUntil: until, Reason: reason})
}

// Unlock implements auth.Repository
func (r *UserRepository) Unlock(ctx context.Context, id uuid.UUID) error {
	r.logger.Info("unlocking user account", zap.String("user_id", id.String()))
	return r.append(ctx, id, &auth.UserAccountUnlockedEvent{})
}

// Delete implements auth.Repository
func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.logger.Info("deleting user", zap.String("user_id", id.String()))
	return r.append(ctx, id, &auth.UserDeletedEvent{})
}

func (r *UserRepository) append(ctx context.Context, id uuid.UUID, events ...shared.DomainEvent) error {
	if err := r.engine.Append(ctx, id, eventsourcing.AnyVersion, events...); err != nil {
		if errors.Is(err, shared.ErrStreamNotFound) {
			return shared.ErrNotFound
		}
		return err
	}
	return nil
}
