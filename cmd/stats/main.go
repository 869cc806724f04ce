// Command stats prints database coverage and host statistics for a nearport
// deployment.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/alexivanou/nearport/internal/config"
	"github.com/alexivanou/nearport/internal/database"
	"github.com/alexivanou/nearport/internal/logging"
	"github.com/alexivanou/nearport/internal/stats"
	"go.uber.org/zap"
)

func main() {
	format := flag.String("format", getenvDefault("OUTPUT_FORMAT", "json"), "Output format: json or text")
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

	if cfg.DB.Type == config.DBTypeMemory {
		if err := database.Migrate(db, cfg.DB, "migrations"); err != nil {
			logger.Fatal("Failed to run migrations", zap.Error(err))
		}
	}

	logger.Debug("Collecting statistics", zap.String("db_type", string(cfg.DB.Type)))
	s, err := stats.NewCollector(db, cfg.DB).Collect(ctx)
	if err != nil {
		logger.Fatal("Failed to collect statistics", zap.Error(err))
	}

	switch *format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(s); err != nil {
			logger.Fatal("Failed to encode statistics", zap.Error(err))
		}
	case "text", "human":
		printText(s)
	default:
		logger.Fatal("Unknown output format", zap.String("format", *format))
	}
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func printText(s *stats.Stats) {
	fmt.Printf("nearport statistics at %s\n\n", s.Timestamp.Format("2006-01-02 15:04:05"))

	fmt.Printf("Database (%s, %s)\n", s.Database.Type, formatBytes(uint64(s.Database.SizeBytes)))
	for _, ts := range s.Database.Tables {
		fmt.Printf("  %-10s %10d rows", ts.Name, ts.RowCount)
		if ts.SizeBytes > 0 {
			fmt.Printf("  %s", formatBytes(uint64(ts.SizeBytes)))
		}
		fmt.Println()
	}

	fmt.Println("\nCoverage")
	fmt.Printf("  countries with airports  %d\n", s.Coverage.CountriesWithAirports)
	fmt.Printf("  cities with IATA code    %d\n", s.Coverage.CitiesWithIATACode)
	types := make([]string, 0, len(s.Coverage.AirportsByType))
	for t := range s.Coverage.AirportsByType {
		types = append(types, t)
	}
	sort.Strings(types)
	for _, t := range types {
		fmt.Printf("  %-24s %d\n", t, s.Coverage.AirportsByType[t])
	}

	fmt.Println("\nProcess")
	fmt.Printf("  heap      %s\n", formatBytes(s.Process.HeapAlloc))
	fmt.Printf("  gc runs   %d\n", s.Process.NumGC)

	fmt.Println("\nHost")
	fmt.Printf("  cpus      %d (%.1f%% busy)\n", s.Host.NumCPU, s.Host.CPUPercent)
	fmt.Printf("  memory    %.1f%% of %s\n", s.Host.MemoryUsedPercent, formatBytes(s.Host.MemoryTotal))
}

func formatBytes(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := uint64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
