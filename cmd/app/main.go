package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexivanou/nearport/internal/api"
	"github.com/alexivanou/nearport/internal/autocomplete"
	"github.com/alexivanou/nearport/internal/config"
	"github.com/alexivanou/nearport/internal/database"
	"github.com/alexivanou/nearport/internal/geocoder"
	"github.com/alexivanou/nearport/internal/location"
	"github.com/alexivanou/nearport/internal/logging"
	"github.com/alexivanou/nearport/internal/observability"
	"github.com/alexivanou/nearport/internal/repository"
	"github.com/alexivanou/nearport/internal/resolver"
	"github.com/alexivanou/nearport/internal/seeder"
	"github.com/alexivanou/nearport/internal/service"
	"github.com/alexivanou/nearport/internal/stats"
	"go.uber.org/zap"
)

func main() {
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

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfig{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: cfg.Tracing.ServiceName,
		SampleRatio: cfg.Tracing.SampleRatio,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize tracing", zap.Error(err))
	}

	db, err := database.Connect(ctx, cfg.DB)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatal("Failed to ping database", zap.Error(err))
	}
	logger.Info("Connected to database", zap.String("type", string(cfg.DB.Type)))

	if err := database.Migrate(db, cfg.DB, "migrations"); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	repos := repository.NewRepositories(db, cfg.DB.Type)

	isEmpty, err := repository.IsDatabaseEmpty(ctx, db)
	if err != nil {
		logger.Warn("Failed to check if database is empty", zap.Error(err))
	} else if isEmpty {
		logger.Info("Database is empty, auto-seeding data...")
		sum, err := seeder.Run(ctx, seeder.NewParser(cfg.Seeder.DataDir, cfg.Seeder), repos, logger)
		if err != nil {
			logger.Fatal("Failed to auto-seed database", zap.Error(err))
		}
		logger.Info("Database seeded successfully",
			zap.Int("cities", sum.Cities),
			zap.Int("airports", sum.Airports),
		)
	}

	metrics := observability.NewMetrics()
	svc := service.NewServiceFromContainer(repos)

	locator, err := newLocator(cfg, repos, svc, metrics, logger)
	if err != nil {
		logger.Fatal("Failed to build locator", zap.Error(err))
	}

	statsCollector := stats.NewCollector(db, cfg.DB).WithSessions(locator)
	router := api.NewRouter(svc, locator, statsCollector, logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Warn("Failed to flush traces", zap.Error(err))
	}

	logger.Info("Server exited")
}

func newLocator(
	cfg *config.Config,
	repos *repository.Container,
	svc *service.Service,
	metrics *observability.Metrics,
	logger *zap.Logger,
) (*service.Locator, error) {
	geo, err := geocoder.FromConfig(cfg.Geocoder, repos.City, repos.Country, metrics, logger)
	if err != nil {
		return nil, err
	}
	places, err := autocomplete.FromConfig(cfg.Autocomplete, svc)
	if err != nil {
		return nil, err
	}

	ipLookup := location.NewIPLookup(cfg.Location.IPLookupEnabled, cfg.Location.IPLookupURL, cfg.Location.Timeout, logger)

	return service.NewLocator(geo, places, ipLookup,
		service.LocatorConfig{MaxSessions: cfg.Sessions.MaxSessions, SessionTTL: cfg.Sessions.TTL},
		metrics,
		resolver.WithFixTimeout(cfg.Resolver.FixTimeout),
		resolver.WithLogger(logger),
		resolver.WithMetrics(metrics),
	), nil
}
