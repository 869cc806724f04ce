package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DB           DBConfig
	Server       ServerConfig
	Seeder       SeederConfig
	Resolver     ResolverConfig
	Geocoder     GeocoderConfig
	Location     LocationConfig
	Autocomplete AutocompleteConfig
	Sessions     SessionsConfig
	Log          LogConfig
	Tracing      TracingConfig
}

// DBType represents database type
type DBType string

const (
	DBTypePostgreSQL DBType = "postgres"
	DBTypeMemory     DBType = "memory"
)

// DBConfig holds database configuration
type DBConfig struct {
	Type     DBType
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// SeederConfig holds settings for data import
type SeederConfig struct {
	DataDir       string
	BatchSize     int
	MinPopulation int
	// Countries restricts the import to these ISO codes. Empty means all.
	Countries    []string
	AirportTypes []string
}

// DSN returns the database connection string
func (c DBConfig) DSN() string {
	if c.Type == DBTypeMemory {
		// SQLite in-memory database
		if c.Name != "" && c.Name != "nearport" {
			return fmt.Sprintf("file:%s?mode=memory&cache=shared", c.Name)
		}
		return "file::memory:?cache=shared"
	}
	// PostgreSQL connection string
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode,
	)
}

// IsMemory returns true if using in-memory database
func (c DBConfig) IsMemory() bool {
	return c.Type == DBTypeMemory
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// ResolverConfig holds nearest-airport resolution settings
type ResolverConfig struct {
	FixTimeout time.Duration
}

// Geocoder providers
const (
	GeocoderLocal  = "local"
	GeocoderMapbox = "mapbox"
)

// GeocoderConfig selects and tunes the reverse geocoder
type GeocoderConfig struct {
	Provider      string
	MapboxToken   string
	MapboxBaseURL string
	Timeout       time.Duration
	CacheSize     int
	CacheTTL      time.Duration
	MaxDistanceKm float64
}

// LocationConfig controls the IP based location fallback
type LocationConfig struct {
	IPLookupEnabled bool
	IPLookupURL     string
	Timeout         time.Duration
}

// Autocomplete providers
const (
	AutocompleteLocal  = "local"
	AutocompleteRemote = "remote"
)

// AutocompleteConfig selects the place search backend
type AutocompleteConfig struct {
	Provider string
	BaseURL  string
	Limit    int
	Timeout  time.Duration
}

// SessionsConfig bounds the per-client resolver registry
type SessionsConfig struct {
	MaxSessions int
	TTL         time.Duration
}

// LogConfig holds logger settings
type LogConfig struct {
	Level      string
	Format     string
	File       string
	MaxSizeMB  int
	MaxBackups int
}

// TracingConfig holds OpenTelemetry settings
type TracingConfig struct {
	Enabled     bool
	ServiceName string
	SampleRatio float64
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbType := DBType(getEnv("DB_TYPE", "memory"))
	if dbType != DBTypePostgreSQL && dbType != DBTypeMemory {
		dbType = DBTypeMemory
	}

	config := &Config{
		DB: DBConfig{
			Type:     dbType,
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "nearport"),
			Password: getEnv("DB_PASSWORD", "nearport_password"),
			Name:     getEnv("DB_NAME", "nearport"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Server: ServerConfig{
			Port:            getEnv("APP_PORT", "8080"),
			ReadTimeout:     getEnvAsDuration("APP_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvAsDuration("APP_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getEnvAsDuration("APP_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Seeder: SeederConfig{
			DataDir:       getEnv("SEEDER_DATA_DIR", "data"),
			BatchSize:     getEnvAsInt("SEEDER_BATCH_SIZE", 10000),
			MinPopulation: getEnvAsInt("SEEDER_MIN_POPULATION", 10000),
			Countries:     getEnvAsSlice("SEEDER_COUNTRIES"),
			AirportTypes:  getEnvAsSlice("SEEDER_AIRPORT_TYPES"),
		},
		Resolver: ResolverConfig{
			FixTimeout: getEnvAsDuration("RESOLVER_FIX_TIMEOUT", 10*time.Second),
		},
		Geocoder: GeocoderConfig{
			Provider:      getEnv("GEOCODER_PROVIDER", GeocoderLocal),
			MapboxToken:   getEnv("MAPBOX_TOKEN", ""),
			MapboxBaseURL: getEnv("MAPBOX_BASE_URL", "https://api.mapbox.com"),
			Timeout:       getEnvAsDuration("GEOCODER_TIMEOUT", 5*time.Second),
			CacheSize:     getEnvAsInt("GEOCODER_CACHE_SIZE", 1000),
			CacheTTL:      getEnvAsDuration("GEOCODER_CACHE_TTL", 24*time.Hour),
			MaxDistanceKm: getEnvAsFloat("GEOCODER_MAX_DISTANCE_KM", 50),
		},
		Location: LocationConfig{
			IPLookupEnabled: getEnvAsBool("LOCATION_IP_LOOKUP_ENABLED", false),
			IPLookupURL:     getEnv("LOCATION_IP_LOOKUP_URL", "http://ip-api.com"),
			Timeout:         getEnvAsDuration("LOCATION_TIMEOUT", 5*time.Second),
		},
		Autocomplete: AutocompleteConfig{
			Provider: getEnv("AUTOCOMPLETE_PROVIDER", AutocompleteLocal),
			BaseURL:  getEnv("AUTOCOMPLETE_BASE_URL", ""),
			Limit:    getEnvAsInt("AUTOCOMPLETE_LIMIT", 10),
			Timeout:  getEnvAsDuration("AUTOCOMPLETE_TIMEOUT", 5*time.Second),
		},
		Sessions: SessionsConfig{
			MaxSessions: getEnvAsInt("SESSIONS_MAX", 10000),
			TTL:         getEnvAsDuration("SESSIONS_TTL", 15*time.Minute),
		},
		Log: LogConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			Format:     getEnv("LOG_FORMAT", "json"),
			File:       getEnv("LOG_FILE", ""),
			MaxSizeMB:  getEnvAsInt("LOG_MAX_SIZE_MB", 100),
			MaxBackups: getEnvAsInt("LOG_MAX_BACKUPS", 3),
		},
		Tracing: TracingConfig{
			Enabled:     getEnvAsBool("TRACING_ENABLED", false),
			ServiceName: getEnv("TRACING_SERVICE_NAME", "nearport"),
			SampleRatio: getEnvAsFloat("TRACING_SAMPLE_RATIO", 1),
		},
	}

	if config.Geocoder.Provider == GeocoderMapbox && config.Geocoder.MapboxToken == "" {
		return nil, fmt.Errorf("MAPBOX_TOKEN is required when GEOCODER_PROVIDER=%s", GeocoderMapbox)
	}
	if config.Autocomplete.Provider == AutocompleteRemote && config.Autocomplete.BaseURL == "" {
		return nil, fmt.Errorf("AUTOCOMPLETE_BASE_URL is required when AUTOCOMPLETE_PROVIDER=%s", AutocompleteRemote)
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	var result []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
