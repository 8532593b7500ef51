package auth

import (
	"context"
	"time"

	"github.com/clivox/backend/internal/domain/auth"
	"github.com/clivox/backend/internal/domain/shared"
	infraauth "github.com/clivox/backend/internal/infrastructure/auth"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Default credentials seeded on first start so the desktop app is usable
// before any user management has happened.
const (
	DefaultUsername  = "admin"
	DefaultEmail     = "admin@clivox.com"
	DefaultPassword  = "Admin123!"
	DefaultFirstName = "Administrator"
	DefaultLastName  = "User"
)

// AuthService handles authentication use cases: login with the failed
// attempt lockout, logout with token revocation, and password changes.
type AuthService struct {
	userRepo   auth.Repository
	jwtService *infraauth.JWTService
	blacklist  infraauth.TokenBlacklist
	logger     *zap.Logger
	now        func() time.Time
}

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo auth.Repository,
	jwtService *infraauth.JWTService,
	blacklist infraauth.TokenBlacklist,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtService: jwtService,
		blacklist:  blacklist,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Login authenticates a user and issues an access token. Failed attempts
// are recorded on the user's stream; the fifth in a row locks the account
// and revokes any tokens already issued to it.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	s.logger.Info("login attempt", zap.String("username", input.Username))

	user, err := s.userRepo.GetByUsername(ctx, input.Username)
	if err != nil {
		s.logger.Warn("login for unknown username", zap.String("username", input.Username))
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid username or password")
	}

	now := s.now()
	if user.IsLocked(now) {
		s.logger.Warn("login attempt on locked account",
			zap.String("username", input.Username),
			zap.Timep("locked_until", user.LockedUntil))
		return nil, shared.ErrAccountLocked
	}
	if !user.IsActive {
		s.logger.Warn("login attempt on inactive account", zap.String("username", input.Username))
		return nil, shared.NewDomainError("ACCOUNT_INACTIVE", "Account has been deactivated")
	}

	if !user.VerifyPassword(input.Password) {
		if err := s.userRepo.RecordFailedLogin(ctx, user.ID); err != nil {
			s.logger.Error("recording failed login failed", zap.Error(err))
		}
		if user.FailedLoginAttempts+1 >= auth.MaxFailedLoginAttempts {
			if err := s.blacklist.RevokeUserTokens(ctx, user.ID.String(), auth.LockoutDuration); err != nil {
				s.logger.Error("revoking tokens of locked account failed", zap.Error(err))
			}
			return nil, shared.NewDomainError("ACCOUNT_LOCKED", "Too many failed login attempts. Account has been locked")
		}
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid username or password")
	}

	token, err := s.jwtService.GenerateToken(user.ID, user.Username)
	if err != nil {
		s.logger.Error("token generation failed", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate authentication token")
	}

	if err := s.userRepo.RecordLogin(ctx, user.ID, input.IPAddress); err != nil {
		// The user is authenticated; a failed audit write does not block them.
		s.logger.Error("recording login failed", zap.Error(err))
	}

	s.logger.Info("user logged in",
		zap.String("username", user.Username),
		zap.String("user_id", user.ID.String()))

	return &LoginResult{
		AccessToken: token.Value,
		ExpiresAt:   token.ExpiresAt,
		TokenType:   "Bearer",
		User:        toUserInfo(user),
	}, nil
}

// Logout revokes the presented token and records the logout
func (s *AuthService) Logout(ctx context.Context, input LogoutInput) error {
	ttl := time.Until(input.ExpiresAt)
	if ttl > 0 && input.JTI != "" {
		if err := s.blacklist.Revoke(ctx, input.JTI, ttl); err != nil {
			s.logger.Error("token revocation failed", zap.Error(err))
			return shared.NewDomainError("INTERNAL_ERROR", "Failed to revoke token")
		}
	}
	if err := s.userRepo.RecordLogout(ctx, input.UserID); err != nil {
		s.logger.Error("recording logout failed", zap.Error(err))
	}
	return nil
}

// GetCurrentUser returns the authenticated user's profile
func (s *AuthService) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*UserInfo, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	info := toUserInfo(user)
	return &info, nil
}

// ChangePassword verifies the old password and stores a new one. Existing
// tokens are revoked so stolen sessions die with the old password.
func (s *AuthService) ChangePassword(ctx context.Context, input ChangePasswordInput) error {
	user, err := s.userRepo.GetByID(ctx, input.UserID)
	if err != nil {
		return err
	}
	if !user.VerifyPassword(input.OldPassword) {
		return shared.NewDomainError("INVALID_CREDENTIALS", "Current password is incorrect")
	}

	if err := s.userRepo.UpdatePassword(ctx, input.UserID, input.NewPassword); err != nil {
		return err
	}
	if err := s.blacklist.RevokeUserTokens(ctx, input.UserID.String(), s.jwtService.Expiration()); err != nil {
		s.logger.Error("revoking tokens after password change failed", zap.Error(err))
	}

	s.logger.Info("password changed", zap.String("user_id", input.UserID.String()))
	return nil
}

// EnsureDefaultUser creates the default admin account when no users exist
// yet. Called once at startup.
func (s *AuthService) EnsureDefaultUser(ctx context.Context) error {
	users, err := s.userRepo.GetAll(ctx)
	if err != nil {
		return err
	}
	if len(users) > 0 {
		return nil
	}

	user, err := auth.NewUser(DefaultUsername, DefaultEmail, DefaultPassword, DefaultFirstName, DefaultLastName)
	if err != nil {
		return err
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return err
	}

	s.logger.Info("created default admin user", zap.String("username", DefaultUsername))
	return nil
}

func toUserInfo(u *auth.User) UserInfo {
	return UserInfo{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		FullName:    u.FullName(),
		LastLoginAt: u.LastLoginAt,
	}
}
