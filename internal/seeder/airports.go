package seeder

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/alexivanou/nearport/internal/geo"
	"github.com/alexivanou/nearport/internal/model"
)

// maxCityAirportKm bounds how far a city's main airport may be from it.
const maxCityAirportKm = 100.0

// ourairports.com airports.csv columns used by the importer.
var airportColumns = []string{"type", "name", "latitude_deg", "longitude_deg", "iso_country", "municipality", "iata_code"}

// ParseAirports parses the OurAirports airports.csv, keeping airports of the
// configured types that carry a three letter IATA code.
func (p *Parser) ParseAirports() ([]model.Airport, error) {
	file, err := os.Open(filepath.Join(p.dataDir, "airports.csv"))
	if err != nil {
		return nil, fmt.Errorf("failed to open airports.csv: %w", err)
	}
	defer file.Close()

	return p.parseAirportsFromReader(file)
}

func (p *Parser) parseAirportsFromReader(reader io.Reader) ([]model.Airport, error) {
	r := csv.NewReader(reader)
	r.FieldsPerRecord = -1
	r.ReuseRecord = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read airports header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(h)] = i
	}
	for _, col := range airportColumns {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("airports.csv is missing column %q", col)
		}
	}

	field := func(rec []string, col string) string {
		i := idx[col]
		if i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var airports []model.Airport
	seen := make(map[string]bool)

	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read airports.csv: %w", err)
		}

		code := strings.ToUpper(field(rec, "iata_code"))
		if !validIATA(code) || seen[code] {
			continue
		}
		kind := field(rec, "type")
		if !p.airportTypes[kind] {
			continue
		}
		country := field(rec, "iso_country")
		if !p.wantCountry(country) {
			continue
		}

		lat, err := strconv.ParseFloat(field(rec, "latitude_deg"), 64)
		if err != nil {
			continue
		}
		lon, err := strconv.ParseFloat(field(rec, "longitude_deg"), 64)
		if err != nil {
			continue
		}

		seen[code] = true
		airports = append(airports, model.Airport{
			IATACode:    code,
			Name:        field(rec, "name"),
			CityName:    field(rec, "municipality"),
			CountryCode: country,
			Lat:         lat,
			Lon:         lon,
			AirportType: kind,
		})
	}

	return airports, nil
}

func validIATA(code string) bool {
	if len(code) != 3 {
		return false
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

func sizeRank(kind string) int {
	switch kind {
	case "large_airport":
		return 0
	case "medium_airport":
		return 1
	default:
		return 2
	}
}

// AssignCityCodes gives each city the code of its main airport: the largest
// airport in the same country whose municipality matches the city name,
// nearest first on ties, no further than maxCityAirportKm. Each airport
// code goes to at most one city, the most populous candidate. It returns
// the number of cities that received a code.
func AssignCityCodes(cities []model.City, airports []model.Airport) int {
	byMunicipality := make(map[string][]model.Airport)
	for _, a := range airports {
		if a.CityName == "" {
			continue
		}
		key := a.CountryCode + "|" + strings.ToLower(a.CityName)
		byMunicipality[key] = append(byMunicipality[key], a)
	}

	order := make([]int, len(cities))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return cities[order[a]].Population > cities[order[b]].Population
	})

	used := make(map[string]bool)
	assigned := 0
	for _, i := range order {
		c := &cities[i]
		candidates := byMunicipality[c.CountryCode+"|"+strings.ToLower(c.NameDefault)]

		var best *model.Airport
		bestDist := 0.0
		for j := range candidates {
			a := &candidates[j]
			if used[a.IATACode] {
				continue
			}
			d := geo.DistanceKm(c.Lat, c.Lon, a.Lat, a.Lon)
			if d > maxCityAirportKm {
				continue
			}
			if best == nil ||
				sizeRank(a.AirportType) < sizeRank(best.AirportType) ||
				(sizeRank(a.AirportType) == sizeRank(best.AirportType) && d < bestDist) {
				best, bestDist = a, d
			}
		}

		if best == nil {
			continue
		}
		code := best.IATACode
		c.IATACode = &code
		used[code] = true
		assigned++
	}
	return assigned
}
