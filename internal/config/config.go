package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"salesboard/internal/core"
)

// Backends accepted by DATA_BACKEND.
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendMongo    = "mongo"
)

var validBackends = []string{BackendMemory, BackendSQLite, BackendPostgres, BackendMongo}

type Config struct {
	// HTTP Server
	Port           string
	TrustedProxies []string // CIDRs trusted for X-Forwarded-For, beyond private networks

	// Backend selection
	DataBackend string

	// Stores
	SQLiteDBPath    string
	MemorySeedFile  string
	PostgresDSN     string
	MongoURI        string
	MongoDatabase   string
	MongoCollection string

	// Seeder
	SeedURL     string
	SeedTimeout time.Duration

	// Queries
	FilterYear     int
	BarChartRanges string
	CacheSize      int
	CacheTTL       time.Duration

	// AMQP, optional
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	LogLevel string
}

func Load() *Config {
	cfg := &Config{
		Port:           getEnv("PORT", "5000"),
		TrustedProxies: getEnvList("TRUSTED_PROXIES"),
		DataBackend: getEnv("DATA_BACKEND", BackendSQLite),

		SQLiteDBPath:    getEnv("SQLITE_DB_PATH", "./data/salesboard.db"),
		MemorySeedFile:  getEnv("MEMORY_SEED_FILE", ""),
		PostgresDSN:     getEnv("POSTGRES_DSN", ""),
		MongoURI:        getEnv("MONGO_URI", ""),
		MongoDatabase:   getEnv("MONGO_DATABASE", "salesboard"),
		MongoCollection: getEnv("MONGO_COLLECTION", "transactions"),

		SeedURL:     getEnv("SEED_URL", "https://s3.amazonaws.com/roxiler.com/product_transaction.json"),
		SeedTimeout: getEnvDuration("SEED_TIMEOUT", 30*time.Second),

		FilterYear:     getEnvInt("FILTER_YEAR", 2023),
		BarChartRanges: getEnv("BAR_CHART_RANGES", core.DefaultPriceRanges),
		CacheSize:      getEnvInt("CACHE_SIZE", 64),
		CacheTTL:       getEnvDuration("CACHE_TTL", 5*time.Minute),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "salesboard"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "salesboard.cache"),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	return cfg
}

// PriceRanges parses BarChartRanges.
func (c *Config) PriceRanges() ([]core.PriceRange, error) {
	return core.ParsePriceRanges(c.BarChartRanges)
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	for _, cidr := range c.TrustedProxies {
		if _, _, err := net.ParseCIDR(cidr); err != nil {
			errors = append(errors, fmt.Sprintf("invalid trusted proxy '%s': must be a CIDR", cidr))
		}
	}

	if !slices.Contains(validBackends, c.DataBackend) {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	switch c.DataBackend {
	case BackendSQLite:
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	case BackendPostgres:
		if c.PostgresDSN == "" {
			errors = append(errors, "POSTGRES_DSN is required when using postgres backend")
		}
	case BackendMongo:
		if c.MongoURI == "" {
			errors = append(errors, "MONGO_URI is required when using mongo backend")
		} else if u, err := url.Parse(c.MongoURI); err != nil || (u.Scheme != "mongodb" && u.Scheme != "mongodb+srv") {
			errors = append(errors, fmt.Sprintf("invalid MONGO_URI '%s': scheme must be 'mongodb' or 'mongodb+srv'", c.MongoURI))
		}
		if c.MongoDatabase == "" || c.MongoCollection == "" {
			errors = append(errors, "MONGO_DATABASE and MONGO_COLLECTION cannot be empty when using mongo backend")
		}
	}

	if u, err := url.Parse(c.SeedURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errors = append(errors, fmt.Sprintf("invalid SEED_URL '%s': must be an absolute http(s) URL", c.SeedURL))
	}
	if c.SeedTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid seed timeout %v: must be at least 1 second", c.SeedTimeout))
	}

	if c.FilterYear < 1970 || c.FilterYear > 9999 {
		errors = append(errors, fmt.Sprintf("invalid filter year %d: must be between 1970 and 9999", c.FilterYear))
	}
	if _, err := c.PriceRanges(); err != nil {
		errors = append(errors, fmt.Sprintf("invalid BAR_CHART_RANGES '%s': %v", c.BarChartRanges, err))
	}
	if c.CacheSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid cache size %d: must be at least 1", c.CacheSize))
	}
	if c.CacheTTL < 0 {
		errors = append(errors, fmt.Sprintf("invalid cache TTL %v: must not be negative", c.CacheTTL))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be debug, info, warn or error", c.LogLevel))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvList splits a comma separated value, dropping blanks.
func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
