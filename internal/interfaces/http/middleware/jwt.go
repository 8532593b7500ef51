package middleware

import (
	"net/http"
	"strings"

	"github.com/clivox/backend/internal/infrastructure/auth"
	"github.com/clivox/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Context keys for authenticated request data
const (
	// JWTClaimsKey is the context key for the validated JWT claims
	JWTClaimsKey = "jwt_claims"
	// JWTUserIDKey is the context key for the authenticated user ID
	JWTUserIDKey = "jwt_user_id"
	// JWTUsernameKey is the context key for the authenticated username
	JWTUsernameKey = "jwt_username"

	// AuthHeaderKey is the header carrying the access token
	AuthHeaderKey = "Authorization"
	// BearerPrefix is the expected token scheme
	BearerPrefix = "Bearer "
)

// JWTMiddlewareConfig configures the JWT authentication middleware
type JWTMiddlewareConfig struct {
	JWTService *auth.JWTService
	// Blacklist is consulted for revoked tokens. Optional; when nil no
	// revocation check is performed.
	Blacklist auth.TokenBlacklist
	// SkipPaths lists exact request paths that bypass authentication
	SkipPaths []string
	Logger    *zap.Logger
}

// JWTAuth returns a middleware that validates Bearer tokens and stores
// the claims on the request context.
func JWTAuth(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		tokenString, err := extractBearerToken(c)
		if err != nil {
			handleAuthError(c, err)
			return
		}

		claims, err := cfg.JWTService.ValidateToken(tokenString)
		if err != nil {
			handleAuthError(c, err)
			return
		}

		if cfg.Blacklist != nil {
			revoked, err := cfg.Blacklist.IsRevoked(c.Request.Context(), claims.ID)
			if err != nil {
				// Fail open: an unreachable blacklist must not take the API down
				logger.Warn("token blacklist check failed",
					zap.String("jti", claims.ID),
					zap.Error(err))
			} else if revoked {
				handleAuthError(c, auth.ErrTokenRevoked)
				return
			}

			if claims.IssuedAt != nil {
				userRevoked, err := cfg.Blacklist.IsUserTokenRevoked(c.Request.Context(), claims.UserID, claims.IssuedAt.Time)
				if err != nil {
					logger.Warn("user token revocation check failed",
						zap.String("user_id", claims.UserID),
						zap.Error(err))
				} else if userRevoked {
					handleAuthError(c, auth.ErrTokenRevoked)
					return
				}
			}
		}

		c.Set(JWTClaimsKey, claims)
		c.Set(JWTUserIDKey, claims.UserID)
		c.Set(JWTUsernameKey, claims.Username)

		c.Next()
	}
}

// extractBearerToken pulls the token out of the Authorization header
func extractBearerToken(c *gin.Context) (string, error) {
	header := c.GetHeader(AuthHeaderKey)
	if header == "" {
		return "", auth.ErrInvalidToken
	}
	if !strings.HasPrefix(header, BearerPrefix) {
		return "", auth.ErrInvalidToken
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, BearerPrefix))
	if token == "" {
		return "", auth.ErrInvalidToken
	}
	return token, nil
}

// handleAuthError aborts the request with the appropriate error response
func handleAuthError(c *gin.Context, err error) {
	requestID := c.GetString("request_id")

	code := dto.ErrCodeUnauthorized
	message := "Authentication required"

	switch err {
	case auth.ErrExpiredToken:
		code = dto.ErrCodeTokenExpired
		message = "Token has expired"
	case auth.ErrTokenRevoked:
		code = dto.ErrCodeTokenRevoked
		message = "Token has been revoked"
	case auth.ErrTokenNotYetValid, auth.ErrInvalidClaims, auth.ErrMissingUserID:
		code = dto.ErrCodeTokenInvalid
		message = "Invalid token"
	}

	c.AbortWithStatusJSON(http.StatusUnauthorized,
		dto.NewErrorResponseWithRequestID(code, message, requestID))
}

// GetJWTClaims returns the validated claims stored by JWTAuth
func GetJWTClaims(c *gin.Context) (*auth.Claims, bool) {
	value, exists := c.Get(JWTClaimsKey)
	if !exists {
		return nil, false
	}
	claims, ok := value.(*auth.Claims)
	return claims, ok
}

// GetJWTUserID returns the authenticated user ID stored by JWTAuth
func GetJWTUserID(c *gin.Context) (string, bool) {
	id := c.GetString(JWTUserIDKey)
	return id, id != ""
}

// GetJWTUsername returns the authenticated username stored by JWTAuth
func GetJWTUsername(c *gin.Context) (string, bool) {
	name := c.GetString(JWTUsernameKey)
	return name, name != ""
}
