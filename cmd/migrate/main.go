package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/clivox/backend/internal/infrastructure/config"
	"github.com/clivox/backend/internal/infrastructure/eventstore"
	"github.com/clivox/backend/internal/infrastructure/logger"
	"github.com/clivox/backend/internal/infrastructure/persistence"
	"go.uber.org/zap"
)

// The schema is owned by the event store: two tables, created idempotently.
// This tool exists so deployments can migrate before starting the server,
// and to sanity-check connectivity without booting the whole application.
func main() {
	var logLevel string
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	command := args[0]

	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		_ = db.Close()
	}()

	switch command {
	case "up":
		store := eventstore.NewGormStore(db.DB, eventstore.NewSerializer(), log)
		if err := store.Migrate(); err != nil {
			log.Fatal("Migration failed", zap.Error(err))
		}
		log.Info("Event store schema is up to date",
			zap.String("driver", cfg.Database.Driver),
			zap.String("dsn", cfg.Database.Path),
		)

	case "ping":
		if err := db.Ping(); err != nil {
			log.Fatal("Database unreachable", zap.Error(err))
		}
		log.Info("Database reachable", zap.String("driver", cfg.Database.Driver))

	default:
		log.Error("Unknown command", zap.String("command", command))
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Clivox Database Migration Tool

Usage:
  migrate [flags] <command>

Commands:
  up      Create or update the event store schema
  ping    Check database connectivity

Flags:
  -log-level string     Log level: debug, info, warn, error (default: info)

Configuration comes from config.toml and CLIVOX_* environment variables,
the same sources the server reads.`)
}
