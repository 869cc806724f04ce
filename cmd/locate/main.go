// Command locate resolves a position to its nearest airport from the
// command line, either from -lat/-lon or from an IP address lookup.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/alexivanou/nearport/internal/autocomplete"
	"github.com/alexivanou/nearport/internal/config"
	"github.com/alexivanou/nearport/internal/database"
	"github.com/alexivanou/nearport/internal/geo"
	"github.com/alexivanou/nearport/internal/geocoder"
	"github.com/alexivanou/nearport/internal/location"
	"github.com/alexivanou/nearport/internal/logging"
	"github.com/alexivanou/nearport/internal/repository"
	"github.com/alexivanou/nearport/internal/resolver"
	"github.com/alexivanou/nearport/internal/seeder"
	"github.com/alexivanou/nearport/internal/service"
	"go.uber.org/zap"
)

func main() {
	var (
		lat     = flag.String("lat", "", "Latitude of the position to resolve")
		lon     = flag.String("lon", "", "Longitude of the position to resolve")
		ip      = flag.String("ip", "", "Resolve the approximate position of this IP address instead")
		verbose = flag.Bool("v", false, "Print each resolution stage")
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

	provider, err := providerFromFlags(*lat, *lon, *ip, cfg, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	db, err := database.Connect(ctx, cfg.DB)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := database.Migrate(db, cfg.DB, "migrations"); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	repos := repository.NewRepositories(db, cfg.DB.Type)

	if empty, err := repository.IsDatabaseEmpty(ctx, db); err == nil && empty {
		logger.Info("Database is empty, seeding data...")
		if _, err := seeder.Run(ctx, seeder.NewParser(cfg.Seeder.DataDir, cfg.Seeder), repos, logger); err != nil {
			logger.Fatal("Failed to seed database", zap.Error(err))
		}
	}

	geocode, err := geocoder.FromConfig(cfg.Geocoder, repos.City, repos.Country, nil, logger)
	if err != nil {
		logger.Fatal("Failed to build geocoder", zap.Error(err))
	}
	places, err := autocomplete.FromConfig(cfg.Autocomplete, service.NewServiceFromContainer(repos))
	if err != nil {
		logger.Fatal("Failed to build place search", zap.Error(err))
	}

	opts := []resolver.Option{
		resolver.WithFixTimeout(cfg.Resolver.FixTimeout),
		resolver.WithLogger(logger),
	}
	if *verbose {
		opts = append(opts, resolver.WithStateHook(func(s resolver.ResolutionState) {
			fmt.Fprintf(os.Stderr, "-> %s\n", s)
		}))
	}

	r := resolver.New(provider, geocode, places, opts...)
	loc, err := r.ResolveWait(ctx)
	if err != nil {
		var re *resolver.ResolutionError
		if errors.As(err, &re) {
			fmt.Fprintf(os.Stderr, "%s (%s)\n", re.Message, re.Kind)
			logger.Debug("Resolution failed", zap.Error(err))
			os.Exit(1)
		}
		logger.Fatal("Resolution aborted", zap.Error(err))
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(loc); err != nil {
		logger.Fatal("Failed to encode result", zap.Error(err))
	}
}

func providerFromFlags(lat, lon, ip string, cfg *config.Config, logger *zap.Logger) (resolver.LocationProvider, error) {
	switch {
	case lat != "" || lon != "":
		c, err := geo.ParseCoordinate(lat, lon)
		if err != nil {
			return nil, err
		}
		return location.NewStatic(&c), nil
	case ip != "":
		lookup := location.NewIPLookup(true, cfg.Location.IPLookupURL, cfg.Location.Timeout, logger)
		return lookup.ForIP(ip), nil
	default:
		return nil, fmt.Errorf("either -lat and -lon or -ip is required")
	}
}
