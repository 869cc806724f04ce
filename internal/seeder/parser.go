package seeder

import (
	"archive/zip"
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/alexivanou/nearport/internal/config"
	"github.com/alexivanou/nearport/internal/model"
)

// Default airport kinds imported when none are configured.
var defaultAirportTypes = []string{"large_airport", "medium_airport"}

// Parser parses GeoNames and OurAirports data files
type Parser struct {
	dataDir       string
	batchSize     int
	minPopulation int
	countries     map[string]bool
	airportTypes  map[string]bool
}

// NewParser creates a new parser instance with config
func NewParser(dataDir string, seederCfg config.SeederConfig) *Parser {
	countries := make(map[string]bool)
	for _, code := range seederCfg.Countries {
		countries[strings.ToUpper(strings.TrimSpace(code))] = true
	}

	types := seederCfg.AirportTypes
	if len(types) == 0 {
		types = defaultAirportTypes
	}
	airportTypes := make(map[string]bool)
	for _, t := range types {
		airportTypes[strings.TrimSpace(t)] = true
	}

	return &Parser{
		dataDir:       dataDir,
		batchSize:     seederCfg.BatchSize,
		minPopulation: seederCfg.MinPopulation,
		countries:     countries,
		airportTypes:  airportTypes,
	}
}

// wantCountry reports whether rows for code pass the country filter.
// An empty filter admits everything.
func (p *Parser) wantCountry(code string) bool {
	return len(p.countries) == 0 || p.countries[code]
}

// ParseCountries parses countryInfo.txt
func (p *Parser) ParseCountries() ([]model.Country, error) {
	filePath := filepath.Join(p.dataDir, "countryInfo.txt")
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open countryInfo.txt: %w", err)
	}
	defer file.Close()

	return p.parseCountriesFromReader(file)
}

func (p *Parser) parseCountriesFromReader(reader io.Reader) ([]model.Country, error) {
	var countries []model.Country
	scanner := bufio.NewScanner(reader)

	for scanner.Scan() {
		line := scanner.Text()

		// Skip comments
		if strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, "\t")
		if len(parts) < 5 {
			continue
		}

		code := parts[0]
		name := parts[4]

		if code != "" && name != "" && p.wantCountry(code) {
			countries = append(countries, model.Country{
				Code:        code,
				NameDefault: name,
			})
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan countryInfo.txt: %w", err)
	}

	return countries, nil
}

// ParseCities parses cities1000.txt (or cities1000.zip) and filters by
// population and country
func (p *Parser) ParseCities() ([]model.City, error) {
	zipPath := filepath.Join(p.dataDir, "cities1000.zip")
	if _, err := os.Stat(zipPath); err == nil {
		return p.parseCitiesFromZip(zipPath)
	}

	file, err := os.Open(filepath.Join(p.dataDir, "cities1000.txt"))
	if err != nil {
		return nil, fmt.Errorf("failed to open cities1000.txt: %w", err)
	}
	defer file.Close()

	return p.parseCitiesFromReader(file)
}

func (p *Parser) parseCitiesFromZip(zipPath string) ([]model.City, error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open zip: %w", err)
	}
	defer r.Close()

	for _, f := range r.File {
		if strings.HasSuffix(f.Name, ".txt") {
			rc, err := f.Open()
			if err != nil {
				return nil, fmt.Errorf("failed to open file in zip: %w", err)
			}
			defer rc.Close()
			return p.parseCitiesFromReader(rc)
		}
	}

	return nil, fmt.Errorf("no txt file found in zip")
}

func (p *Parser) parseCitiesFromReader(reader io.Reader) ([]model.City, error) {
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var cities []model.City

	for scanner.Scan() {
		parts := strings.Split(scanner.Text(), "\t")
		if len(parts) < 19 {
			continue
		}

		id, err := strconv.Atoi(parts[0])
		if err != nil {
			continue
		}

		population, err := strconv.Atoi(parts[14])
		if err != nil || population < p.minPopulation {
			continue
		}

		countryCode := parts[8]
		if !p.wantCountry(countryCode) {
			continue
		}

		lat, err := strconv.ParseFloat(parts[4], 64)
		if err != nil {
			continue
		}

		lon, err := strconv.ParseFloat(parts[5], 64)
		if err != nil {
			continue
		}

		var elevation *int
		if parts[15] != "" {
			elev, err := strconv.Atoi(parts[15])
			if err == nil {
				elevation = &elev
			}
		}

		var timezone *string
		if parts[17] != "" {
			tz := parts[17]
			timezone = &tz
		}

		cities = append(cities, model.City{
			ID:          id,
			CountryCode: countryCode,
			NameDefault: parts[1],
			Population:  population,
			Lat:         lat,
			Lon:         lon,
			Elevation:   elevation,
			Timezone:    timezone,
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan cities: %w", err)
	}

	return cities, nil
}

// CreateCountryCodeMap creates a map of country codes
func CreateCountryCodeMap(countries []model.Country) map[string]bool {
	m := make(map[string]bool)
	for _, country := range countries {
		m[country.Code] = true
	}
	return m
}
