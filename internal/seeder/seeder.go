package seeder

import (
	"context"
	"fmt"

	"github.com/alexivanou/nearport/internal/model"
	"github.com/alexivanou/nearport/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Summary counts what a seed run imported
type Summary struct {
	Countries      int
	Cities         int
	Airports       int
	CodedCities    int
	SkippedOrphans int
}

// Run parses the data files in parallel and loads countries, cities and
// airports into the repositories. Cities and airports whose country was not
// imported are dropped.
func Run(ctx context.Context, parser *Parser, repos *repository.Container, logger *zap.Logger) (Summary, error) {
	var (
		countries []model.Country
		cities    []model.City
		airports  []model.Airport
	)

	var eg errgroup.Group
	eg.Go(func() (err error) {
		logger.Info("Parsing countries...")
		countries, err = parser.ParseCountries()
		return err
	})
	eg.Go(func() (err error) {
		logger.Info("Parsing cities...")
		cities, err = parser.ParseCities()
		return err
	})
	eg.Go(func() (err error) {
		logger.Info("Parsing airports...")
		airports, err = parser.ParseAirports()
		return err
	})
	if err := eg.Wait(); err != nil {
		return Summary{}, err
	}

	known := CreateCountryCodeMap(countries)
	var sum Summary
	cities, dropped := filterCities(cities, known)
	sum.SkippedOrphans += dropped
	airports, dropped = filterAirports(airports, known)
	sum.SkippedOrphans += dropped

	sum.CodedCities = AssignCityCodes(cities, airports)

	logger.Info("Inserting countries...", zap.Int("count", len(countries)))
	if err := repos.Country.BulkInsertCountries(ctx, countries); err != nil {
		return Summary{}, fmt.Errorf("failed to insert countries: %w", err)
	}

	logger.Info("Inserting cities...", zap.Int("count", len(cities)))
	if err := repos.City.BulkInsertCities(ctx, cities); err != nil {
		return Summary{}, fmt.Errorf("failed to insert cities: %w", err)
	}

	logger.Info("Inserting airports...", zap.Int("count", len(airports)))
	if err := repos.Airport.BulkInsertAirports(ctx, airports); err != nil {
		return Summary{}, fmt.Errorf("failed to insert airports: %w", err)
	}

	sum.Countries = len(countries)
	sum.Cities = len(cities)
	sum.Airports = len(airports)
	return sum, nil
}

func filterCities(cities []model.City, known map[string]bool) ([]model.City, int) {
	kept := cities[:0]
	for _, c := range cities {
		if known[c.CountryCode] {
			kept = append(kept, c)
		}
	}
	return kept, len(cities) - len(kept)
}

func filterAirports(airports []model.Airport, known map[string]bool) ([]model.Airport, int) {
	kept := airports[:0]
	for _, a := range airports {
		if known[a.CountryCode] {
			kept = append(kept, a)
		}
	}
	return kept, len(airports) - len(kept)
}
