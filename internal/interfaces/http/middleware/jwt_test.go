package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/clivox/backend/internal/infrastructure/auth"
	"github.com/clivox/backend/internal/infrastructure/config"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuthStack(t *testing.T) (*auth.JWTService, *auth.InMemoryTokenBlacklist) {
	t.Helper()
	svc := auth.NewJWTService(&config.JWTConfig{
		Secret:                "test-secret-key-for-middleware",
		AccessTokenExpiration: time.Hour,
		Issuer:                "clivox-test",
	})
	return svc, auth.NewInMemoryTokenBlacklist()
}

func newProtectedRouter(cfg JWTMiddlewareConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(JWTAuth(cfg))
	r.GET("/api/v1/me", func(c *gin.Context) {
		userID, _ := GetJWTUserID(c)
		username, _ := GetJWTUsername(c)
		c.JSON(http.StatusOK, gin.H{"user_id": userID, "username": username})
	})
	r.POST("/api/v1/auth/login", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func doRequest(r *gin.Engine, method, path, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if authHeader != "" {
		req.Header.Set(AuthHeaderKey, authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuth(t *testing.T) {
	jwtService, blacklist := newTestAuthStack(t)
	userID := uuid.Must(uuid.NewV7())

	r := newProtectedRouter(JWTMiddlewareConfig{
		JWTService: jwtService,
		Blacklist:  blacklist,
		SkipPaths:  []string{"/api/v1/auth/login"},
	})

	t.Run("valid token passes and exposes claims", func(t *testing.T) {
		token, err := jwtService.GenerateToken(userID, "admin")
		require.NoError(t, err)

		w := doRequest(r, http.MethodGet, "/api/v1/me", BearerPrefix+token.Value)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), userID.String())
		assert.Contains(t, w.Body.String(), "admin")
	})

	t.Run("missing header is rejected", func(t *testing.T) {
		w := doRequest(r, http.MethodGet, "/api/v1/me", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("wrong scheme is rejected", func(t *testing.T) {
		w := doRequest(r, http.MethodGet, "/api/v1/me", "Basic abc123")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("garbage token is rejected", func(t *testing.T) {
		w := doRequest(r, http.MethodGet, "/api/v1/me", BearerPrefix+"not.a.token")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("skip path bypasses authentication", func(t *testing.T) {
		w := doRequest(r, http.MethodPost, "/api/v1/auth/login", "")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("revoked token is rejected", func(t *testing.T) {
		token, err := jwtService.GenerateToken(userID, "admin")
		require.NoError(t, err)
		require.NoError(t, blacklist.Revoke(context.Background(), token.JTI, time.Hour))

		w := doRequest(r, http.MethodGet, "/api/v1/me", BearerPrefix+token.Value)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "ERR_TOKEN_REVOKED")
	})

	t.Run("user wide revocation rejects older tokens", func(t *testing.T) {
		lockedUser := uuid.Must(uuid.NewV7())
		token, err := jwtService.GenerateToken(lockedUser, "locked")
		require.NoError(t, err)
		require.NoError(t, blacklist.RevokeUserTokens(context.Background(), lockedUser.String(), time.Hour))

		w := doRequest(r, http.MethodGet, "/api/v1/me", BearerPrefix+token.Value)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "ERR_TOKEN_REVOKED")
	})

	t.Run("expired token reports its own code", func(t *testing.T) {
		expiredService := auth.NewJWTService(&config.JWTConfig{
			Secret:                "test-secret-key-for-middleware",
			AccessTokenExpiration: -time.Minute,
			Issuer:                "clivox-test",
		})
		token, err := expiredService.GenerateToken(userID, "admin")
		require.NoError(t, err)

		w := doRequest(r, http.MethodGet, "/api/v1/me", BearerPrefix+token.Value)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "ERR_TOKEN_EXPIRED")
	})
}
