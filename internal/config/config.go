package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/text/language"
)

// Storage drivers
const (
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

type Config struct {
	Server    ServerConfig
	OMDB      OMDBConfig
	Search    SearchConfig
	Storage   StorageConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Log       LogConfig
}

type ServerConfig struct {
	Env  string
	Port string
}

type OMDBConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

type SearchConfig struct {
	BootstrapQuery string
	Locale         language.Tag
}

type StorageConfig struct {
	Driver     string
	DataDir    string
	SQLitePath string
}

type DatabaseConfig struct {
	URL string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	TLS      bool
}

type RateLimitConfig struct {
	Enabled     bool
	MaxRequests int
	Window      time.Duration
}

type LogConfig struct {
	File       string
	MaxSize    int
	MaxBackups int
	MaxAge     int
}

// Load reads environment variables and returns a Config struct
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	dataDir := getEnv("DATA_DIR", "data")

	locale, err := language.Parse(getEnv("LOCALE", "en"))
	if err != nil {
		return nil, fmt.Errorf("LOCALE is not a valid language tag: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Env:  getEnv("APP_ENV", "local"),
			Port: getEnv("PORT", "4000"),
		},
		OMDB: OMDBConfig{
			APIKey:  getEnv("OMDB_KEY", ""),
			BaseURL: getEnv("OMDB_URL", "https://www.omdbapi.com/"),
			Timeout: getDuration("OMDB_TIMEOUT", 10*time.Second),
		},
		Search: SearchConfig{
			BootstrapQuery: getEnv("BOOTSTRAP_QUERY", "avengers"),
			Locale:         locale,
		},
		Storage: StorageConfig{
			Driver:     getEnv("STORAGE_DRIVER", DriverFile),
			DataDir:    dataDir,
			SQLitePath: getEnv("SQLITE_PATH", filepath.Join(dataDir, "moviefinder.db")),
		},
		Database: DatabaseConfig{
			URL: getEnv("DATABASE_URL", ""),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			TLS:      getEnv("REDIS_TLS", "false") == "true",
		},
		RateLimit: RateLimitConfig{
			Enabled:     getEnv("RATE_LIMIT_ENABLED", "false") == "true",
			MaxRequests: getInt("RATE_LIMIT_MAX", 100),
			Window:      time.Minute,
		},
		Log: LogConfig{
			File:       getEnv("LOG_FILE", ""),
			MaxSize:    getInt("LOG_MAX_SIZE", 10),
			MaxBackups: getInt("LOG_MAX_BACKUPS", 3),
			MaxAge:     getInt("LOG_MAX_AGE", 28),
		},
	}

	// Rate limiting defaults on in production
	if os.Getenv("RATE_LIMIT_ENABLED") == "" {
		cfg.RateLimit.Enabled = cfg.IsProduction()
	}

	// Validate required fields
	if cfg.OMDB.APIKey == "" {
		return nil, fmt.Errorf("OMDB_KEY is required")
	}

	switch cfg.Storage.Driver {
	case DriverFile, DriverSQLite, DriverRedis:
	case DriverPostgres:
		if cfg.Database.URL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for the postgres storage driver")
		}
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.Storage.Driver)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// NeedsRedis reports whether any component requires a Redis connection
func (c *Config) NeedsRedis() bool {
	return c.Storage.Driver == DriverRedis || c.RateLimit.Enabled
}

// RedisAddr returns the Redis address in host:port format
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}
