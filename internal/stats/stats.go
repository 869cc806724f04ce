// Package stats reports on the process, the host, the places database and
// the resolver sessions of a running nearport instance.
package stats

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/alexivanou/nearport/internal/config"
	"github.com/jmoiron/sqlx"
	"github.com/jonboulle/clockwork"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// placeTables are the tables reported on, in display order.
var placeTables = []string{"countries", "cities", "airports"}

const processCacheTTL = 5 * time.Second

type Stats struct {
	Timestamp time.Time     `json:"timestamp"`
	Process   ProcessStats  `json:"process"`
	Host      HostStats     `json:"host"`
	Database  DatabaseStats `json:"database"`
	Coverage  CoverageStats `json:"coverage"`
	Resolver  ResolverStats `json:"resolver"`
}

type ProcessStats struct {
	HeapAlloc     uint64 `json:"heap_alloc"`
	HeapInuse     uint64 `json:"heap_inuse"`
	Sys           uint64 `json:"sys"`
	NumGC         uint32 `json:"num_gc"`
	Goroutines    int    `json:"goroutines"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

// HostStats describes the machine the service runs on. Values are zero when
// the platform does not report them.
type HostStats struct {
	NumCPU            int     `json:"num_cpu"`
	CPUPercent        float64 `json:"cpu_percent"`
	MemoryTotal       uint64  `json:"memory_total"`
	MemoryUsedPercent float64 `json:"memory_used_percent"`
}

type DatabaseStats struct {
	Type         string      `json:"type"`
	SizeBytes    int64       `json:"size_bytes"`
	TotalRecords int64       `json:"total_records"`
	Tables       []TableStat `json:"tables"`
}

type TableStat struct {
	Name      string `json:"name"`
	RowCount  int64  `json:"row_count"`
	SizeBytes int64  `json:"size_bytes,omitempty"`
}

// CoverageStats tells how much of the world the resolver can answer for.
type CoverageStats struct {
	AirportsByType        map[string]int64 `json:"airports_by_type"`
	CountriesWithAirports int64            `json:"countries_with_airports"`
	CitiesWithIATACode    int64            `json:"cities_with_iata_code"`
}

// ResolverStats describes the in-memory resolver sessions
type ResolverStats struct {
	ActiveSessions int `json:"active_sessions"`
}

// SessionCounter reports how many resolver sessions are alive
type SessionCounter interface {
	ActiveSessions() int
}

type Collector struct {
	db       *sqlx.DB
	dbType   config.DBType
	sessions SessionCounter
	clock    clockwork.Clock
	started  time.Time

	mu          sync.Mutex
	process     ProcessStats
	processTime time.Time
}

func NewCollector(db *sqlx.DB, cfg config.DBConfig) *Collector {
	return newCollector(db, cfg, clockwork.NewRealClock())
}

func newCollector(db *sqlx.DB, cfg config.DBConfig, clock clockwork.Clock) *Collector {
	return &Collector{
		db:      db,
		dbType:  cfg.Type,
		clock:   clock,
		started: clock.Now(),
	}
}

// WithSessions makes Collect report resolver session counts from sc
func (c *Collector) WithSessions(sc SessionCounter) *Collector {
	c.sessions = sc
	return c
}

func (c *Collector) Collect(ctx context.Context) (*Stats, error) {
	db, err := c.collectDatabase(ctx)
	if err != nil {
		return nil, err
	}
	coverage, err := c.collectCoverage(ctx)
	if err != nil {
		return nil, err
	}

	s := &Stats{
		Timestamp: c.clock.Now(),
		Process:   c.collectProcess(),
		Host:      collectHost(ctx),
		Database:  db,
		Coverage:  coverage,
	}
	if c.sessions != nil {
		s.Resolver.ActiveSessions = c.sessions.ActiveSessions()
	}
	return s, nil
}

// collectProcess reads runtime memory stats at most once per processCacheTTL;
// ReadMemStats stops the world.
func (c *Collector) collectProcess() ProcessStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	if !c.processTime.IsZero() && now.Sub(c.processTime) < processCacheTTL {
		p := c.process
		p.UptimeSeconds = int64(now.Sub(c.started).Seconds())
		return p
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	c.process = ProcessStats{
		HeapAlloc:     m.HeapAlloc,
		HeapInuse:     m.HeapInuse,
		Sys:           m.Sys,
		NumGC:         m.NumGC,
		Goroutines:    runtime.NumGoroutine(),
		UptimeSeconds: int64(now.Sub(c.started).Seconds()),
	}
	c.processTime = now
	return c.process
}

func collectHost(ctx context.Context) HostStats {
	hs := HostStats{NumCPU: runtime.NumCPU()}
	// Interval 0 compares against the previous call instead of sleeping.
	if pct, err := cpu.PercentWithContext(ctx, 0, false); err == nil && len(pct) > 0 {
		hs.CPUPercent = pct[0]
	}
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		hs.MemoryTotal = vm.Total
		hs.MemoryUsedPercent = vm.UsedPercent
	}
	return hs
}

func (c *Collector) collectDatabase(ctx context.Context) (DatabaseStats, error) {
	ds := DatabaseStats{Type: string(c.dbType)}

	if size, err := c.databaseSize(ctx); err == nil {
		ds.SizeBytes = size
	}

	for _, table := range placeTables {
		ts := TableStat{Name: table}
		if err := c.db.GetContext(ctx, &ts.RowCount, "SELECT COUNT(*) FROM "+table); err != nil {
			return DatabaseStats{}, fmt.Errorf("failed to count %s: %w", table, err)
		}
		ts.SizeBytes = c.tableSize(ctx, table)
		ds.TotalRecords += ts.RowCount
		ds.Tables = append(ds.Tables, ts)
	}
	return ds, nil
}

func (c *Collector) databaseSize(ctx context.Context) (int64, error) {
	query := "SELECT page_count * page_size FROM pragma_page_count(), pragma_page_size()"
	if c.dbType == config.DBTypePostgreSQL {
		query = "SELECT pg_database_size(current_database())"
	}
	var size int64
	err := c.db.GetContext(ctx, &size, query)
	return size, err
}

// tableSize is best effort: SQLite only reports it when built with dbstat.
func (c *Collector) tableSize(ctx context.Context, table string) int64 {
	var size int64
	if c.dbType == config.DBTypePostgreSQL {
		_ = c.db.GetContext(ctx, &size, "SELECT COALESCE(pg_total_relation_size($1::regclass), 0)", table)
	} else {
		_ = c.db.GetContext(ctx, &size, "SELECT COALESCE(SUM(pgsize), 0) FROM dbstat WHERE name = ?", table)
	}
	return size
}

func (c *Collector) collectCoverage(ctx context.Context) (CoverageStats, error) {
	var byType []struct {
		Type  string `db:"airport_type"`
		Count int64  `db:"n"`
	}
	err := c.db.SelectContext(ctx, &byType,
		"SELECT airport_type, COUNT(*) AS n FROM airports GROUP BY airport_type")
	if err != nil {
		return CoverageStats{}, fmt.Errorf("failed to count airports by type: %w", err)
	}

	cs := CoverageStats{AirportsByType: make(map[string]int64, len(byType))}
	for _, row := range byType {
		cs.AirportsByType[row.Type] = row.Count
	}

	if err := c.db.GetContext(ctx, &cs.CountriesWithAirports,
		"SELECT COUNT(DISTINCT country_code) FROM airports"); err != nil {
		return CoverageStats{}, fmt.Errorf("failed to count countries with airports: %w", err)
	}
	if err := c.db.GetContext(ctx, &cs.CitiesWithIATACode,
		"SELECT COUNT(*) FROM cities WHERE iata_code IS NOT NULL"); err != nil {
		return CoverageStats{}, fmt.Errorf("failed to count cities with IATA code: %w", err)
	}
	return cs, nil
}
