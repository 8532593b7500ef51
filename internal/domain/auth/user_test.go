package auth

import (
	"testing"
	"time"

	"github.com/clivox/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	u, err := NewUser("admin", "admin@example.com", "Admin123!", "Default", "Admin")
	require.NoError(t, err)

	assert.Equal(t, "admin", u.Username)
	assert.Equal(t, "admin@example.com", u.Email)
	assert.True(t, u.IsActive)
	assert.NotEmpty(t, u.PasswordHash)
	assert.NotEmpty(t, u.Salt)
	assert.NotEqual(t, "Admin123!", u.PasswordHash)
}

func TestUser_VerifyPassword(t *testing.T) {
	u, err := NewUser("admin", "admin@example.com", "Admin123!", "", "")
	require.NoError(t, err)

	t.Run("correct password", func(t *testing.T) {
		assert.True(t, u.VerifyPassword("Admin123!"))
	})

	t.Run("wrong password", func(t *testing.T) {
		assert.False(t, u.VerifyPassword("admin123!"))
		assert.False(t, u.VerifyPassword(""))
	})

	t.Run("same password hashes differently per user", func(t *testing.T) {
		other, err := NewUser("second", "second@example.com", "Admin123!", "", "")
		require.NoError(t, err)

		assert.NotEqual(t, u.PasswordHash, other.PasswordHash)
		assert.NotEqual(t, u.Salt, other.Salt)
	})

	t.Run("corrupt salt fails verification without panicking", func(t *testing.T) {
		tampered := *u
		tampered.Salt = "not base64 !!!"
		assert.False(t, tampered.VerifyPassword("Admin123!"))
	})
}

func TestUser_UpdatePassword(t *testing.T) {
	u, err := NewUser("admin", "admin@example.com", "OldPass123!", "", "")
	require.NoError(t, err)
	oldHash := u.PasswordHash
	oldSalt := u.Salt

	require.NoError(t, u.UpdatePassword("NewPass456!"))

	assert.NotEqual(t, oldHash, u.PasswordHash)
	assert.NotEqual(t, oldSalt, u.Salt)
	assert.False(t, u.VerifyPassword("OldPass123!"))
	assert.True(t, u.VerifyPassword("NewPass456!"))
}

func TestUser_IsLocked(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	t.Run("no lock", func(t *testing.T) {
		u := &User{}
		assert.False(t, u.IsLocked(now))
	})

	t.Run("active lock", func(t *testing.T) {
		until := now.Add(LockoutDuration)
		u := &User{LockedUntil: &until}
		assert.True(t, u.IsLocked(now))
	})

	t.Run("expired lock", func(t *testing.T) {
		until := now.Add(-time.Minute)
		u := &User{LockedUntil: &until}
		assert.False(t, u.IsLocked(now))
	})
}

func TestUser_FullName(t *testing.T) {
	u := &User{FirstName: "Default", LastName: "Admin"}
	assert.Equal(t, "Default Admin", u.FullName())

	u = &User{FirstName: "Solo"}
	assert.Equal(t, "Solo", u.FullName())
}

func TestUser_Validate(t *testing.T) {
	t.Run("valid user passes", func(t *testing.T) {
		u, err := NewUser("admin", "admin@example.com", "Admin123!", "", "")
		require.NoError(t, err)
		assert.NoError(t, u.Validate())
	})

	t.Run("missing everything lists all violations", func(t *testing.T) {
		u := &User{}

		var verr *shared.ValidationError
		require.ErrorAs(t, u.Validate(), &verr)
		assert.Len(t, verr.Violations, 3)
	})
}
