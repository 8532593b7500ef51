package auth

import (
	"time"

	"github.com/google/uuid"
)

// LoginInput carries a login attempt
type LoginInput struct {
	Username  string
	Password  string
	IPAddress string
}

// LoginResult is a successful login: the issued token and the user
type LoginResult struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	TokenType   string    `json:"token_type"`
	User        UserInfo  `json:"user"`
}

// LogoutInput carries the token being revoked
type LogoutInput struct {
	UserID    uuid.UUID
	JTI       string
	ExpiresAt time.Time
}

// ChangePasswordInput carries a password change request
type ChangePasswordInput struct {
	UserID      uuid.UUID
	OldPassword string
	NewPassword string
}

// UserInfo is the user view returned to the frontend
type UserInfo struct {
	ID          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	FullName    string    `json:"full_name"`
	LastLoginAt time.Time `json:"last_login_at"`
}
