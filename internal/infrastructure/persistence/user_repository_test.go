package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/clivox/backend/internal/domain/auth"
	"github.com/clivox/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newUserRepo(t *testing.T) *UserRepository {
	t.Helper()
	return NewUserRepository(newTestStore(), zap.NewNop())
}

func createUser(t *testing.T, repo *UserRepository, username string) *auth.User {
	t.Helper()
	u, err := auth.NewUser(username, username+"@example.com", "Admin123!", "Default", "Admin")
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), u))
	return u
}

func TestUserRepository_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("creates with id and version", func(t *testing.T) {
		repo := newUserRepo(t)
		u := createUser(t, repo, "admin")

		assert.NotEqual(t, uuid.Nil, u.ID)
		assert.Equal(t, int64(1), u.Version)
	})

	t.Run("rejects invalid users", func(t *testing.T) {
		repo := newUserRepo(t)

		var verr *shared.ValidationError
		assert.ErrorAs(t, repo.Create(ctx, &auth.User{}), &verr)
	})

	t.Run("rejects nil", func(t *testing.T) {
		repo := newUserRepo(t)
		assert.ErrorIs(t, repo.Create(ctx, nil), shared.ErrInvalidInput)
	})
}

func TestUserRepository_Lookups(t *testing.T) {
	ctx := context.Background()

	t.Run("by id keeps credentials usable", func(t *testing.T) {
		repo := newUserRepo(t)
		u := createUser(t, repo, "admin")

		loaded, err := repo.GetByID(ctx, u.ID)
		require.NoError(t, err)
		assert.True(t, loaded.VerifyPassword("Admin123!"))
		assert.Equal(t, "admin", loaded.Username)
	})

	t.Run("by username replays the full stream for credentials", func(t *testing.T) {
		repo := newUserRepo(t)
		createUser(t, repo, "admin")
		createUser(t, repo, "second")

		loaded, err := repo.GetByUsername(ctx, "second")
		require.NoError(t, err)
		assert.Equal(t, "second", loaded.Username)
		assert.True(t, loaded.VerifyPassword("Admin123!"))
	})

	t.Run("by email", func(t *testing.T) {
		repo := newUserRepo(t)
		createUser(t, repo, "admin")

		loaded, err := repo.GetByEmail(ctx, "admin@example.com")
		require.NoError(t, err)
		assert.Equal(t, "admin", loaded.Username)
	})

	t.Run("missing user yields not found", func(t *testing.T) {
		repo := newUserRepo(t)
		createUser(t, repo, "admin")

		_, err := repo.GetByUsername(ctx, "ghost")
		assert.ErrorIs(t, err, shared.ErrNotFound)

		_, err = repo.GetByEmail(ctx, "ghost@example.com")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("get all sorts by username", func(t *testing.T) {
		repo := newUserRepo(t)
		createUser(t, repo, "zoe")
		createUser(t, repo, "Admin")

		users, err := repo.GetAll(ctx)
		require.NoError(t, err)
		require.Len(t, users, 2)
		assert.Equal(t, "Admin", users[0].Username)
		assert.Equal(t, "zoe", users[1].Username)
	})
}

func TestUserRepository_LoginBookkeeping(t *testing.T) {
	ctx := context.Background()

	t.Run("successful login resets failures", func(t *testing.T) {
		repo := newUserRepo(t)
		u := createUser(t, repo, "admin")

		require.NoError(t, repo.RecordFailedLogin(ctx, u.ID))
		require.NoError(t, repo.RecordFailedLogin(ctx, u.ID))
		require.NoError(t, repo.RecordLogin(ctx, u.ID, "127.0.0.1"))

		loaded, err := repo.GetByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, loaded.FailedLoginAttempts)
		assert.False(t, loaded.LastLoginAt.IsZero())
	})

	t.Run("reaching the attempt limit locks the account", func(t *testing.T) {
		repo := newUserRepo(t)
		now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
		repo.now = func() time.Time { return now }
		u := createUser(t, repo, "admin")

		for i := 0; i < auth.MaxFailedLoginAttempts; i++ {
			require.NoError(t, repo.RecordFailedLogin(ctx, u.ID))
		}

		loaded, err := repo.GetByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, auth.MaxFailedLoginAttempts, loaded.FailedLoginAttempts)
		require.NotNil(t, loaded.LockedUntil)
		assert.Equal(t, now.Add(auth.LockoutDuration), *loaded.LockedUntil)
		assert.True(t, loaded.IsLocked(now))
	})

	t.Run("unlock clears lock and counter", func(t *testing.T) {
		repo := newUserRepo(t)
		u := createUser(t, repo, "admin")
		require.NoError(t, repo.Lock(ctx, u.ID, time.Now().Add(time.Hour), "manual"))

		require.NoError(t, repo.Unlock(ctx, u.ID))

		loaded, err := repo.GetByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Nil(t, loaded.LockedUntil)
		assert.Equal(t, 0, loaded.FailedLoginAttempts)
	})

	t.Run("logout advances modification time only", func(t *testing.T) {
		repo := newUserRepo(t)
		u := createUser(t, repo, "admin")

		require.NoError(t, repo.RecordLogout(ctx, u.ID))

		loaded, err := repo.GetByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), loaded.Version)
	})

	t.Run("bookkeeping against an unknown user yields not found", func(t *testing.T) {
		repo := newUserRepo(t)
		ghost := uuid.Must(uuid.NewV7())

		assert.ErrorIs(t, repo.RecordLogin(ctx, ghost, ""), shared.ErrNotFound)
		assert.ErrorIs(t, repo.RecordLogout(ctx, ghost), shared.ErrNotFound)
		assert.ErrorIs(t, repo.RecordFailedLogin(ctx, ghost), shared.ErrNotFound)
	})
}

func TestUserRepository_UpdatePassword(t *testing.T) {
	ctx := context.Background()

	repo := newUserRepo(t)
	u := createUser(t, repo, "admin")

	require.NoError(t, repo.UpdatePassword(ctx, u.ID, "NewPass456!"))

	loaded, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, loaded.VerifyPassword("Admin123!"))
	assert.True(t, loaded.VerifyPassword("NewPass456!"))
}

func TestUserRepository_Delete(t *testing.T) {
	ctx := context.Background()

	repo := newUserRepo(t)
	u := createUser(t, repo, "admin")

	require.NoError(t, repo.Delete(ctx, u.ID))

	_, err := repo.GetByID(ctx, u.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	users, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)
}
