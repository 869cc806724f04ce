package seeder

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alexivanou/nearport/internal/config"
	"github.com/alexivanou/nearport/internal/database"
	"github.com/alexivanou/nearport/internal/model"
	"github.com/alexivanou/nearport/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const countryInfo = `#ISO	ISO3	ISO-Numeric	fips	Country	Capital	Area(in sq km)	Population	Continent	tld	CurrencyCode	CurrencyName	Phone	Postal Code Format	Postal Code Regex	Languages	geonameid	neighbours	EquivalentFipsCode
FR	FRA	250	FR	France	Paris	547030	66987244	EU	.fr	EUR	Euro	33	#####	^(\d{5})$	fr-FR,frp,br,co,ca,eu,oc	3017382	CH,DE,BE,LU,IT,AD,MC,ES	
IE	IRL	372	EI	Ireland	Dublin	70280	4853506	EU	.ie	EUR	Euro	353			en-IE,ga-IE	2963597	GB	
`

// geonameid name asciiname alternatenames lat lon fclass fcode country cc2 admin1 admin2 admin3 admin4 population elevation dem timezone modified
const cities1000 = "2988507\tParis\tParis\t\t48.85341\t2.3488\tP\tPPLC\tFR\t\t11\t75\t751\t75056\t2138551\t\t42\tEurope/Paris\t2024-01-01\n" +
	"2964574\tDublin\tDublin\t\t53.33306\t-6.24889\tP\tPPLC\tIE\t\t07\t33\t\t\t1024027\t\t17\tEurope/Dublin\t2024-01-01\n" +
	"2995469\tMarseille\tMarseille\t\t43.29695\t5.38107\tP\tPPLA\tFR\t\t93\t13\t\t\t870731\t\t28\tEurope/Paris\t2024-01-01\n" +
	"3037044\tAvoine\tAvoine\t\t47.2\t0.18\tP\tPPL\tFR\t\t24\t37\t\t\t1800\t\t40\tEurope/Paris\t2024-01-01\n" +
	"2643743\tLondon\tLondon\t\t51.50853\t-0.12574\tP\tPPLC\tGB\t\tENG\tGLA\t\t\t8961989\t\t25\tEurope/London\t2024-01-01\n" +
	"broken line\n"

const airportsCSV = `"id","ident","type","name","latitude_deg","longitude_deg","elevation_ft","continent","iso_country","iso_region","municipality","scheduled_service","gps_code","iata_code","local_code","home_link","wikipedia_link","keywords"
1,"LFPG","large_airport","Charles de Gaulle International Airport",49.012798,2.55,392,"EU","FR","FR-IDF","Paris","yes","LFPG","CDG",,,,
2,"LFPO","large_airport","Paris-Orly Airport",48.7233333,2.3794444,291,"EU","FR","FR-IDF","Paris","yes","LFPO","ORY",,,,
3,"LFPB","medium_airport","Paris-Le Bourget Airport",48.969398,2.44139,218,"EU","FR","FR-IDF","Paris","no","LFPB","LBG",,,,
4,"EIDW","large_airport","Dublin Airport",53.421299,-6.27007,242,"EU","IE","IE-D","Dublin","yes","EIDW","DUB",,,,
5,"LFML","large_airport","Marseille Provence Airport",43.439271922,5.22142410278,74,"EU","FR","FR-PAC","Marseille","yes","LFML","MRS",,,,
6,"FR-0001","small_airport","Some Strip",47.0,1.0,300,"EU","FR","FR-CVL","Avoine","no",,"AVX",,,,
7,"EGLL","large_airport","London Heathrow Airport",51.4706,-0.461941,83,"EU","GB","GB-ENG","London","yes","EGLL","LHR",,,,
8,"XXXX","heliport","Heliport",48.8,2.3,0,"EU","FR","FR-IDF","Paris","no",,"",,,,
9,"LFPX","large_airport","Bad Code Airport",48.8,2.3,0,"EU","FR","FR-IDF","Paris","no",,"P1",,,,
`

func writeDataDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "countryInfo.txt"), []byte(countryInfo), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cities1000.txt"), []byte(cities1000), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "airports.csv"), []byte(airportsCSV), 0644))
	return dir
}

func TestCreateCountryCodeMap(t *testing.T) {
	countries := []model.Country{
		{Code: "RU", NameDefault: "Russia"},
		{Code: "US", NameDefault: "United States"},
	}

	codes := CreateCountryCodeMap(countries)

	assert.True(t, codes["RU"])
	assert.True(t, codes["US"])
	assert.False(t, codes["FR"])
}

func TestParser_ParseCountries(t *testing.T) {
	dir := writeDataDir(t)

	t.Run("all countries", func(t *testing.T) {
		countries, err := NewParser(dir, config.SeederConfig{}).ParseCountries()
		require.NoError(t, err)
		assert.Equal(t, []model.Country{
			{Code: "FR", NameDefault: "France"},
			{Code: "IE", NameDefault: "Ireland"},
		}, countries)
	})

	t.Run("country filter", func(t *testing.T) {
		countries, err := NewParser(dir, config.SeederConfig{Countries: []string{"ie"}}).ParseCountries()
		require.NoError(t, err)
		require.Len(t, countries, 1)
		assert.Equal(t, "IE", countries[0].Code)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := NewParser(t.TempDir(), config.SeederConfig{}).ParseCountries()
		assert.ErrorContains(t, err, "countryInfo.txt")
	})
}

func TestParser_ParseCities(t *testing.T) {
	dir := writeDataDir(t)

	cities, err := NewParser(dir, config.SeederConfig{MinPopulation: 10000}).ParseCities()
	require.NoError(t, err)

	names := make([]string, 0, len(cities))
	for _, c := range cities {
		names = append(names, c.NameDefault)
	}
	assert.Equal(t, []string{"Paris", "Dublin", "Marseille", "London"}, names)

	paris := cities[0]
	assert.Equal(t, 2988507, paris.ID)
	assert.Equal(t, "FR", paris.CountryCode)
	require.NotNil(t, paris.Timezone)
	assert.Equal(t, "Europe/Paris", *paris.Timezone)
	assert.Nil(t, paris.Elevation)
	assert.Nil(t, paris.IATACode)
}

func TestParser_ParseAirports(t *testing.T) {
	dir := writeDataDir(t)

	t.Run("default types", func(t *testing.T) {
		airports, err := NewParser(dir, config.SeederConfig{}).ParseAirports()
		require.NoError(t, err)

		codes := make([]string, 0, len(airports))
		for _, a := range airports {
			codes = append(codes, a.IATACode)
		}
		assert.Equal(t, []string{"CDG", "ORY", "LBG", "DUB", "MRS", "LHR"}, codes)
		assert.Equal(t, model.Airport{
			IATACode: "DUB", Name: "Dublin Airport", CityName: "Dublin", CountryCode: "IE",
			Lat: 53.421299, Lon: -6.27007, AirportType: "large_airport",
		}, airports[3])
	})

	t.Run("large only in France", func(t *testing.T) {
		cfg := config.SeederConfig{Countries: []string{"FR"}, AirportTypes: []string{"large_airport"}}
		airports, err := NewParser(dir, cfg).ParseAirports()
		require.NoError(t, err)
		require.Len(t, airports, 3)
		for _, a := range airports {
			assert.Equal(t, "FR", a.CountryCode)
			assert.Equal(t, "large_airport", a.AirportType)
		}
	})

	t.Run("missing columns", func(t *testing.T) {
		p := NewParser("", config.SeederConfig{})
		_, err := p.parseAirportsFromReader(strings.NewReader("id,name\n1,foo\n"))
		assert.ErrorContains(t, err, "missing column")
	})
}

func TestAssignCityCodes(t *testing.T) {
	cities := []model.City{
		{ID: 1, CountryCode: "FR", NameDefault: "Paris", Population: 2138551, Lat: 48.85341, Lon: 2.3488},
		{ID: 2, CountryCode: "US", NameDefault: "Paris", Population: 25000, Lat: 33.66, Lon: -95.55},
		{ID: 3, CountryCode: "IE", NameDefault: "Dublin", Population: 1024027, Lat: 53.33306, Lon: -6.24889},
		{ID: 4, CountryCode: "IE", NameDefault: "Cork", Population: 190000, Lat: 51.9, Lon: -8.47},
	}
	airports := []model.Airport{
		{IATACode: "LBG", CityName: "Paris", CountryCode: "FR", Lat: 48.969398, Lon: 2.44139, AirportType: "medium_airport"},
		{IATACode: "CDG", CityName: "Paris", CountryCode: "FR", Lat: 49.012798, Lon: 2.55, AirportType: "large_airport"},
		{IATACode: "ORY", CityName: "Paris", CountryCode: "FR", Lat: 48.7233333, Lon: 2.3794444, AirportType: "large_airport"},
		{IATACode: "DUB", CityName: "dublin", CountryCode: "IE", Lat: 53.421299, Lon: -6.27007, AirportType: "large_airport"},
	}

	assigned := AssignCityCodes(cities, airports)
	assert.Equal(t, 2, assigned)

	require.NotNil(t, cities[0].IATACode)
	assert.Equal(t, "ORY", *cities[0].IATACode, "nearest of the large airports")
	assert.Nil(t, cities[1].IATACode, "same name in another country")
	require.NotNil(t, cities[2].IATACode)
	assert.Equal(t, "DUB", *cities[2].IATACode)
	assert.Nil(t, cities[3].IATACode)
}

func TestRun(t *testing.T) {
	dir := writeDataDir(t)

	cfg := config.DBConfig{Type: config.DBTypeMemory, Name: fmt.Sprintf("seed_%s", t.Name())}
	db, err := database.Connect(context.Background(), cfg)
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, database.Migrate(db, cfg, "../../migrations"))

	repos := repository.NewRepositories(db, cfg.Type)
	parser := NewParser(dir, config.SeederConfig{MinPopulation: 10000})

	sum, err := Run(context.Background(), parser, repos, zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, Summary{
		Countries:      2,
		Cities:         3,
		Airports:       5,
		CodedCities:    3,
		SkippedOrphans: 2,
	}, sum)

	empty, err := repository.IsDatabaseEmpty(context.Background(), db)
	require.NoError(t, err)
	assert.False(t, empty)

	rows, err := repos.Place.SearchPlaces(context.Background(), "Dublin", 10)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "airport", rows[0].Type)
	assert.Equal(t, "city", rows[1].Type)
	assert.Equal(t, "DUB", rows[1].Code)
}
