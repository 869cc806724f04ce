// Command migrate applies the places schema for the configured database.
package main

import (
	"context"
	"errors"
	"flag"
	"log"

	"github.com/alexivanou/nearport/internal/config"
	"github.com/alexivanou/nearport/internal/database"
	"github.com/alexivanou/nearport/internal/logging"
	"github.com/golang-migrate/migrate/v4"
	"go.uber.org/zap"
)

func main() {
	var (
		command = flag.String("command", "up", "Migration command: up, down, steps, force, or version")
		dir     = flag.String("dir", "migrations", "Directory holding sqlite/ and postgres/ migrations")
		steps   = flag.Int("n", 1, "Number of migrations for steps (negative rolls back)")
		version = flag.Int("version", -1, "Version to record for force")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	db, err := database.Connect(context.Background(), cfg.DB)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	m, err := database.NewMigrate(db, cfg.DB, *dir)
	if err != nil {
		logger.Fatal("Failed to create migration instance", zap.Error(err))
	}

	logger = logger.With(zap.String("command", *command), zap.String("db_type", string(cfg.DB.Type)))

	switch *command {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	case "steps":
		err = m.Steps(*steps)
	case "force":
		if *version < 0 {
			logger.Fatal("force requires -version")
		}
		err = m.Force(*version)
	case "version":
		v, dirty, verr := m.Version()
		if errors.Is(verr, migrate.ErrNilVersion) {
			logger.Info("No migrations applied")
			return
		}
		if verr != nil {
			logger.Fatal("Failed to get version", zap.Error(verr))
		}
		logger.Info("Migration version", zap.Uint("version", v), zap.Bool("dirty", dirty))
		return
	default:
		logger.Fatal("Unknown command")
	}

	switch {
	case errors.Is(err, migrate.ErrNoChange):
		logger.Info("Schema already up to date")
	case err != nil:
		logger.Fatal("Migration failed", zap.Error(err))
	default:
		logger.Info("Migration command completed successfully")
	}
}
