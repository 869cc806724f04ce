package main

import (
	"context"
	"flag"
	"log"

	"github.com/alexivanou/nearport/internal/config"
	"github.com/alexivanou/nearport/internal/database"
	"github.com/alexivanou/nearport/internal/logging"
	"github.com/alexivanou/nearport/internal/repository"
	"github.com/alexivanou/nearport/internal/seeder"
	"go.uber.org/zap"
)

func main() {
	var (
		migrationsDir = flag.String("migrations", "migrations", "Directory holding sqlite/ and postgres/ migrations")
		truncate      = flag.Bool("truncate", false, "Delete existing places before importing")
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

	ctx := context.Background()

	db, err := database.Connect(ctx, cfg.DB)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatal("Failed to ping database", zap.Error(err))
	}

	logger.Info("Connected to database", zap.String("type", string(cfg.DB.Type)))

	// Memory databases start empty, so the schema has to be created here.
	if cfg.DB.IsMemory() {
		if err := database.Migrate(db, cfg.DB, *migrationsDir); err != nil {
			logger.Fatal("Failed to run migrations", zap.Error(err))
		}
	}

	if *truncate {
		logger.Info("Deleting existing places...")
		for _, table := range []string{"airports", "cities", "countries"} {
			if _, err := db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				logger.Fatal("Failed to truncate", zap.String("table", table), zap.Error(err))
			}
		}
	}

	logger.Info("Starting data import...", zap.String("data_dir", cfg.Seeder.DataDir))

	repos := repository.NewRepositories(db, cfg.DB.Type)
	sum, err := seeder.Run(ctx, seeder.NewParser(cfg.Seeder.DataDir, cfg.Seeder), repos, logger)
	if err != nil {
		logger.Fatal("Failed to import data", zap.Error(err))
	}

	logger.Info("Data import completed successfully!",
		zap.Int("countries", sum.Countries),
		zap.Int("cities", sum.Cities),
		zap.Int("airports", sum.Airports),
		zap.Int("cities_with_iata_code", sum.CodedCities),
		zap.Int("skipped_orphans", sum.SkippedOrphans),
	)
}
