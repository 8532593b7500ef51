package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/clivox/backend/internal/domain/shared"
	"golang.org/x/crypto/pbkdf2"
)

const (
	// Password hashing parameters
	hashIterations = 10000
	hashKeyLength  = 32
	saltLength     = 32

	// MaxFailedLoginAttempts locks the account when reached
	MaxFailedLoginAttempts = 5
	// LockoutDuration is how long the account stays locked
	LockoutDuration = 15 * time.Minute
)

// User is an event-sourced aggregate root holding the credentials and login
// state of an application user.
type User struct {
	shared.BaseAggregateRoot
	Username            string     `json:"username"`
	Email               string     `json:"email"`
	PasswordHash        string     `json:"-"`
	Salt                string     `json:"-"`
	FirstName           string     `json:"first_name"`
	LastName            string     `json:"last_name"`
	IsActive            bool       `json:"is_active"`
	LastLoginAt         time.Time  `json:"last_login_at"`
	LockedUntil         *time.Time `json:"locked_until,omitempty"`
	FailedLoginAttempts int        `json:"failed_login_attempts"`
}

// NewUser creates a user with a freshly salted password hash
func NewUser(username, email, password, firstName, lastName string) (*User, error) {
	salt, err := generateSalt()
	if err != nil {
		return nil, err
	}
	return &User{
		Username:     username,
		Email:        email,
		PasswordHash: hashPassword(password, salt),
		Salt:         salt,
		FirstName:    firstName,
		LastName:     lastName,
		IsActive:     true,
	}, nil
}

// FullName returns first + last name
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// VerifyPassword reports whether the password matches the stored hash
func (u *User) VerifyPassword(password string) bool {
	return subtle.ConstantTimeCompare([]byte(hashPassword(password, u.Salt)), []byte(u.PasswordHash)) == 1
}

// UpdatePassword re-salts and re-hashes the user's password
func (u *User) UpdatePassword(newPassword string) error {
	salt, err := generateSalt()
	if err != nil {
		return err
	}
	u.Salt = salt
	u.PasswordHash = hashPassword(newPassword, salt)
	return nil
}

// IsLocked reports whether the account is locked as of now
func (u *User) IsLocked(now time.Time) bool {
	return u.LockedUntil != nil && u.LockedUntil.After(now)
}

func generateSalt() (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}
	return base64.StdEncoding.EncodeToString(salt), nil
}

func hashPassword(password, salt string) string {
	saltBytes, err := base64.StdEncoding.DecodeString(salt)
	if err != nil {
		// A corrupt salt can only come from tampered storage; hash over
		// the raw string so verification fails instead of panicking.
		saltBytes = []byte(salt)
	}
	key := pbkdf2.Key([]byte(password), saltBytes, hashIterations, hashKeyLength, sha256.New)
	return base64.StdEncoding.EncodeToString(key)
}

// Validate checks the user's invariants. It returns a ValidationError
// listing every violation, or nil when the user is valid.
func (u *User) Validate() error {
	var violations []string

	if strings.TrimSpace(u.Username) == "" {
		violations = append(violations, "Username is required.")
	}
	if strings.TrimSpace(u.Email) == "" {
		violations = append(violations, "Email is required.")
	}
	if u.PasswordHash == "" || u.Salt == "" {
		violations = append(violations, "Password is required.")
	}

	if len(violations) > 0 {
		return shared.NewValidationError(violations...)
	}
	return nil
}
