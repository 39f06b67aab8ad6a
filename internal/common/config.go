package common

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joseph-ayodele/label-matcher/constants"
)

// Config holds all application configuration
type Config struct {
	Catalog  CatalogConfig
	Database DatabaseConfig
	Server   ServerConfig
	Oracle   OracleConfig
	Match    MatchConfig
	Log      LogConfig
}

// CatalogConfig describes where varieties are loaded from and how often they refresh.
type CatalogConfig struct {
	Source       constants.SourceKind
	Path         string // json/xlsx file, or sqlite database file
	Sheet        string // xlsx sheet, first sheet when empty
	Watch        bool   // reload file sources on change
	Debounce     time.Duration
	PollInterval time.Duration // reload period for SQL sources, 0 disables
	TransitOnly  bool          // SQL: restrict to today's in-transit offers
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	GRPCAddr string
	HTTPAddr string
}

// OracleConfig holds language-model oracle configuration
type OracleConfig struct {
	Provider       string // ollama, openai or none
	BaseURL        string
	Model          string
	APIKey         string
	Temperature    float32
	ConnectTimeout time.Duration
	Timeout        time.Duration
}

// MatchConfig tunes shortlist sizes and the result cache.
type MatchConfig struct {
	MaxShortlist int
	MaxPerFamily int
	CacheTTL     time.Duration
	BatchWorkers int
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string
	Format string // text or json
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	source, _ := constants.ParseSourceKind(getEnv("CATALOG_SOURCE", string(constants.SourceJSON)))
	return &Config{
		Catalog: CatalogConfig{
			Source:       source,
			Path:         getEnv("CATALOG_PATH", "ofertas.json"),
			Sheet:        getEnv("CATALOG_SHEET", ""),
			Watch:        getEnvAsBool("CATALOG_WATCH", true),
			Debounce:     getEnvAsDuration("CATALOG_DEBOUNCE", 500*time.Millisecond),
			PollInterval: getEnvAsDuration("CATALOG_POLL_INTERVAL", 5*time.Minute),
			TransitOnly:  getEnvAsBool("CATALOG_TRANSIT_ONLY", true),
		},
		Database: DatabaseConfig{
			DSN:              getEnv("DB_URL", ""),
			MaxConns:         getEnvAsInt32("DB_MAX_CONNS", 10),
			MinConns:         getEnvAsInt32("DB_MIN_CONNS", 1),
			MaxConnLifetime:  getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime:  getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:      getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
			StatementTimeout: getEnvAsDuration("DB_STATEMENT_TIMEOUT", 0),
		},
		Server: ServerConfig{
			GRPCAddr: getEnv("GRPC_ADDR", ":8080"),
			HTTPAddr: getEnv("HTTP_ADDR", ":8081"),
		},
		Oracle: OracleConfig{
			Provider:       strings.ToLower(getEnv("ORACLE_PROVIDER", "ollama")),
			BaseURL:        getEnv("ORACLE_BASE_URL", ""),
			Model:          getEnv("ORACLE_MODEL", ""),
			APIKey:         getEnv("OPENAI_API_KEY", ""),
			Temperature:    getEnvAsFloat32("ORACLE_TEMPERATURE", 0.0),
			ConnectTimeout: getEnvAsDuration("ORACLE_CONNECT_TIMEOUT", constants.OracleConnectTimeout),
			Timeout:        getEnvAsDuration("ORACLE_TIMEOUT", constants.OracleTimeout),
		},
		Match: MatchConfig{
			MaxShortlist: getEnvAsInt("MATCH_MAX_SHORTLIST", constants.MaxShortlist),
			MaxPerFamily: getEnvAsInt("MATCH_MAX_PER_FAMILY", constants.MaxPerFamily),
			CacheTTL:     getEnvAsDuration("MATCH_CACHE_TTL", 10*time.Minute),
			BatchWorkers: getEnvAsInt("BATCH_WORKERS", 4),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
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
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate checks the loaded configuration for missing or conflicting values.
func (c *Config) Validate() error {
	if c.Catalog.Source == "" {
		return NewAppError("CONFIG_ERROR", "CATALOG_SOURCE must be one of json, xlsx, postgres, mysql, sqlite", ErrInvalidInput)
	}
	if c.Catalog.Source.IsFile() && strings.TrimSpace(c.Catalog.Path) == "" {
		return NewAppError("CONFIG_ERROR", "CATALOG_PATH is required for file catalogs", ErrInvalidInput)
	}
	if c.Catalog.Source == constants.SourceSQLite && c.Database.DSN == "" && c.Catalog.Path == "" {
		return NewAppError("CONFIG_ERROR", "DB_URL or CATALOG_PATH is required for sqlite catalogs", ErrInvalidInput)
	}
	if (c.Catalog.Source == constants.SourcePostgres || c.Catalog.Source == constants.SourceMySQL) && c.Database.DSN == "" {
		return NewAppError("CONFIG_ERROR", "DB_URL is required for "+string(c.Catalog.Source)+" catalogs", ErrInvalidInput)
	}
	switch c.Oracle.Provider {
	case "ollama", "none", "":
	case "openai":
		if c.Oracle.APIKey == "" {
			return NewAppError("CONFIG_ERROR", "OPENAI_API_KEY is required for the openai oracle", ErrInvalidInput)
		}
	default:
		return NewAppError("CONFIG_ERROR", "ORACLE_PROVIDER must be ollama, openai or none", ErrInvalidInput)
	}
	if c.Oracle.Timeout <= 0 {
		return NewAppError("CONFIG_ERROR", "ORACLE_TIMEOUT must be positive", ErrInvalidInput)
	}
	if c.Match.MaxShortlist <= 0 || c.Match.MaxPerFamily <= 0 {
		return NewAppError("CONFIG_ERROR", "shortlist limits must be positive", ErrInvalidInput)
	}
	return nil
}
