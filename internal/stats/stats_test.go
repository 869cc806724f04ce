package stats

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alexivanou/nearport/internal/config"
	"github.com/alexivanou/nearport/internal/database"
	"github.com/jmoiron/sqlx"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) (*sqlx.DB, config.DBConfig) {
	cfg := config.DBConfig{Type: config.DBTypeMemory, Name: fmt.Sprintf("stats_%s", t.Name())}
	db, err := database.Connect(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.Migrate(db, cfg, "../../migrations"))
	return db, cfg
}

func seed(t *testing.T, db *sqlx.DB) {
	stmts := []string{
		"INSERT INTO countries (code, name_default) VALUES ('XX', 'Test Country')",
		"INSERT INTO cities (id, country_code, name_default, population, lat, lon, iata_code) VALUES (1, 'XX', 'Test City', 1000, 10.0, 10.0, 'TSA')",
		"INSERT INTO cities (id, country_code, name_default, population, lat, lon) VALUES (2, 'XX', 'Other City', 500, 11.0, 11.0)",
		"INSERT INTO airports (iata_code, name, city_name, country_code, lat, lon, airport_type) VALUES ('TSA', 'Test Airport', 'Test City', 'XX', 10.1, 10.1, 'large_airport')",
		"INSERT INTO airports (iata_code, name, city_name, country_code, lat, lon, airport_type) VALUES ('OTH', 'Other Field', 'Other City', 'XX', 11.1, 11.1, 'medium_airport')",
	}
	for _, s := range stmts {
		_, err := db.Exec(s)
		require.NoError(t, err)
	}
}

type fixedSessions int

func (f fixedSessions) ActiveSessions() int { return int(f) }

func TestCollector_Collect(t *testing.T) {
	db, cfg := setupTestDB(t)
	seed(t, db)

	collector := NewCollector(db, cfg).WithSessions(fixedSessions(3))

	s, err := collector.Collect(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "memory", s.Database.Type)
	assert.Equal(t, int64(5), s.Database.TotalRecords)

	counts := map[string]int64{}
	for _, ts := range s.Database.Tables {
		counts[ts.Name] = ts.RowCount
	}
	assert.Equal(t, map[string]int64{"countries": 1, "cities": 2, "airports": 2}, counts)

	assert.Equal(t, map[string]int64{"large_airport": 1, "medium_airport": 1}, s.Coverage.AirportsByType)
	assert.Equal(t, int64(1), s.Coverage.CountriesWithAirports)
	assert.Equal(t, int64(1), s.Coverage.CitiesWithIATACode)
	assert.Equal(t, 3, s.Resolver.ActiveSessions)

	assert.Greater(t, s.Process.HeapAlloc, uint64(0))
	assert.GreaterOrEqual(t, s.Process.Goroutines, 1)
	assert.GreaterOrEqual(t, s.Host.NumCPU, 1)
	assert.GreaterOrEqual(t, s.Host.CPUPercent, 0.0)
	assert.GreaterOrEqual(t, s.Host.MemoryUsedPercent, 0.0)
}

func TestCollector_EmptyDB(t *testing.T) {
	db, cfg := setupTestDB(t)

	s, err := NewCollector(db, cfg).Collect(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(0), s.Database.TotalRecords)
	assert.Empty(t, s.Coverage.AirportsByType)
	assert.Equal(t, 0, s.Resolver.ActiveSessions)
}

func TestCollector_ProcessStatsCached(t *testing.T) {
	db, cfg := setupTestDB(t)
	clock := clockwork.NewFakeClock()
	collector := newCollector(db, cfg, clock)

	first := collector.collectProcess()
	assert.Equal(t, int64(0), first.UptimeSeconds)

	clock.Advance(2 * time.Second)
	cached := collector.collectProcess()
	assert.Equal(t, first.HeapAlloc, cached.HeapAlloc)
	assert.Equal(t, int64(2), cached.UptimeSeconds)
	assert.Equal(t, clock.Now().Add(-2*time.Second), collector.processTime)

	clock.Advance(processCacheTTL)
	collector.collectProcess()
	assert.Equal(t, clock.Now(), collector.processTime)
}
