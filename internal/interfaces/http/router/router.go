package router

import (
	"time"

	"github.com/clivox/backend/internal/infrastructure/auth"
	"github.com/clivox/backend/internal/infrastructure/config"
	"github.com/clivox/backend/internal/infrastructure/logger"
	"github.com/clivox/backend/internal/interfaces/http/handler"
	"github.com/clivox/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handlers groups the handlers the router wires up
type Handlers struct {
	Auth    *handler.AuthHandler
	Client  *handler.ClientHandler
	Invoice *handler.InvoiceHandler
	System  *handler.SystemHandler
}

// Dependencies carries everything the router needs besides the handlers
type Dependencies struct {
	Config     *config.Config
	Logger     *zap.Logger
	JWTService *auth.JWTService
	Blacklist  auth.TokenBlacklist
	Handlers   Handlers
}

// loginRateLimit is deliberately tight; the desktop frontend logs in once
// per session, anything beyond that is someone guessing passwords.
const (
	loginRateLimit       = 10
	loginRateLimitWindow = time.Minute
)

// New builds the gin engine with the full middleware chain and all routes
func New(deps Dependencies) *gin.Engine {
	if deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	middleware.SetupValidator()

	engine := gin.New()
	if len(deps.Config.HTTP.TrustedProxies) > 0 {
		_ = engine.SetTrustedProxies(deps.Config.HTTP.TrustedProxies)
	}

	engine.Use(logger.GinMiddleware(deps.Logger))
	engine.Use(logger.Recovery(deps.Logger))
	engine.Use(middleware.RequestID())
	engine.Use(middleware.CORSWithConfig(corsConfig(deps.Config)))
	engine.Use(middleware.Secure())
	engine.Use(middleware.BodyLimit(deps.Config.HTTP.MaxBodySize))

	engine.GET("/health", deps.Handlers.System.Ping)

	loginLimiter := middleware.NewRateLimiter(loginRateLimit, loginRateLimitWindow)

	api := engine.Group("/api/v1")
	api.Use(middleware.JWTAuth(middleware.JWTMiddlewareConfig{
		JWTService: deps.JWTService,
		Blacklist:  deps.Blacklist,
		SkipPaths: []string{
			"/api/v1/auth/login",
			"/api/v1/system/ping",
			"/api/v1/system/info",
		},
		Logger: deps.Logger,
	}))

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/login", middleware.RateLimit(loginLimiter), deps.Handlers.Auth.Login)
		authGroup.POST("/logout", deps.Handlers.Auth.Logout)
		authGroup.GET("/me", deps.Handlers.Auth.Me)
		authGroup.POST("/change-password", deps.Handlers.Auth.ChangePassword)
	}

	clients := api.Group("/clients")
	{
		clients.GET("", deps.Handlers.Client.List)
		clients.GET("/countries", deps.Handlers.Client.Countries)
		clients.GET("/:id", deps.Handlers.Client.Get)
		clients.POST("", deps.Handlers.Client.Create)
		clients.PUT("/:id", deps.Handlers.Client.Update)
		clients.DELETE("/:id", deps.Handlers.Client.Delete)
	}

	invoices := api.Group("/invoices")
	{
		invoices.GET("", deps.Handlers.Invoice.List)
		invoices.GET("/years", deps.Handlers.Invoice.Years)
		invoices.GET("/due-soon", deps.Handlers.Invoice.DueSoon)
		invoices.GET("/overdue", deps.Handlers.Invoice.Overdue)
		invoices.GET("/dashboard", deps.Handlers.Invoice.Dashboard)
		invoices.GET("/:id", deps.Handlers.Invoice.Get)
		invoices.POST("", deps.Handlers.Invoice.Create)
		invoices.PUT("/:id", deps.Handlers.Invoice.Update)
		invoices.DELETE("/:id", deps.Handlers.Invoice.Delete)

		invoices.POST("/:id/status", deps.Handlers.Invoice.ChangeStatus)
		invoices.POST("/:id/pay", deps.Handlers.Invoice.MarkAsPaid)

		invoices.POST("/:id/items", deps.Handlers.Invoice.AddItems)
		invoices.PUT("/:id/items", deps.Handlers.Invoice.ModifyItems)
		invoices.DELETE("/:id/items", deps.Handlers.Invoice.DeleteItems)

		invoices.POST("/:id/files", deps.Handlers.Invoice.AddFiles)
		invoices.PUT("/:id/files", deps.Handlers.Invoice.ModifyFiles)
		invoices.DELETE("/:id/files", deps.Handlers.Invoice.DeleteFiles)
	}

	system := api.Group("/system")
	{
		system.GET("/ping", deps.Handlers.System.Ping)
		system.GET("/info", deps.Handlers.System.GetSystemInfo)
	}

	return engine
}

func corsConfig(cfg *config.Config) middleware.CORSConfig {
	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsCfg.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsCfg.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	return corsCfg
}
