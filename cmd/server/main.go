package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	authapp "github.com/clivox/backend/internal/application/auth"
	clientapp "github.com/clivox/backend/internal/application/client"
	invoiceapp "github.com/clivox/backend/internal/application/invoice"
	"github.com/clivox/backend/internal/infrastructure/auth"
	"github.com/clivox/backend/internal/infrastructure/cache"
	"github.com/clivox/backend/internal/infrastructure/config"
	"github.com/clivox/backend/internal/infrastructure/eventstore"
	"github.com/clivox/backend/internal/infrastructure/logger"
	"github.com/clivox/backend/internal/infrastructure/persistence"
	"github.com/clivox/backend/internal/interfaces/http/handler"
	"github.com/clivox/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Clivox Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("database", cfg.Database.Driver),
	)

	// Database connection with the zap-backed GORM logger
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Event store: serializer, tables, snapshot materializers
	serializer := eventstore.NewSerializer()
	store := eventstore.NewGormStore(db.DB, serializer, log)
	if err := store.Migrate(); err != nil {
		log.Fatal("Failed to migrate event store", zap.Error(err))
	}
	eventstore.RegisterMaterializers(store)

	// Repositories over the event store
	clientRepo := persistence.NewClientRepository(store, log)
	invoiceRepo := persistence.NewInvoiceRepository(store, log)
	userRepo := persistence.NewUserRepository(store, log)

	// Query cache: Redis when enabled, in-memory otherwise
	cacheFactory := cache.NewQueryCacheFactory(&cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(true),
	)
	queryCache, err := cacheFactory.CreateCache()
	if err != nil {
		log.Fatal("Failed to create query cache", zap.Error(err))
	}
	defer func() {
		if err := queryCache.Close(); err != nil {
			log.Error("Error closing query cache", zap.Error(err))
		}
	}()

	// Token infrastructure
	jwtService := auth.NewJWTService(&cfg.JWT)
	var blacklist auth.TokenBlacklist
	if cfg.Redis.Enabled {
		redisBlacklist, err := auth.NewRedisTokenBlacklist(&cfg.Redis)
		if err != nil {
			log.Warn("Redis token blacklist unavailable, using in-memory", zap.Error(err))
			blacklist = auth.NewInMemoryTokenBlacklist()
		} else {
			blacklist = redisBlacklist
		}
	} else {
		blacklist = auth.NewInMemoryTokenBlacklist()
	}

	// Application services
	authService := authapp.NewAuthService(userRepo, jwtService, blacklist, log)
	clientService := clientapp.NewClientService(clientRepo, invoiceRepo, queryCache, cfg.Redis.CacheTTL, log)
	invoiceService := invoiceapp.NewInvoiceService(invoiceRepo, queryCache, cfg.Redis.CacheTTL, log)

	// Seed the default admin account on an empty user store
	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 30*time.Second)
	if err := authService.EnsureDefaultUser(startupCtx); err != nil {
		cancelStartup()
		log.Fatal("Failed to ensure default user", zap.Error(err))
	}
	cancelStartup()

	engine := router.New(router.Dependencies{
		Config:     cfg,
		Logger:     log,
		JWTService: jwtService,
		Blacklist:  blacklist,
		Handlers: router.Handlers{
			Auth:    handler.NewAuthHandler(authService, log),
			Client:  handler.NewClientHandler(clientService, log),
			Invoice: handler.NewInvoiceHandler(invoiceService, log),
			System:  handler.NewSystemHandler(),
		},
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
