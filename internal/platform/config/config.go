package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"airdrop/pkg/platform/strings"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"

	// DefaultVerifyURL is the reCAPTCHA siteverify endpoint.
	DefaultVerifyURL = "https://www.google.com/recaptcha/api/siteverify"
)

// Server captures process-level configuration.
type Server struct {
	Addr           string
	MetricsEnabled bool
	LogLevel       string
	CORSOrigins    []string
	Database       Database
	Recaptcha      Recaptcha
	TokenTTL       time.Duration
	OperatorJWTKey string
}

// Database selects the record store backend.
type Database struct {
	Driver      string
	URL         string
	PoolSize    int
	AutoMigrate bool
}

// Recaptcha configures the outbound verification client.
type Recaptcha struct {
	Secret    string
	VerifyURL string
	Timeout   time.Duration
}

// FromEnv builds a Server config from the environment, loading a .env file
// first when one is present.
func FromEnv() (Server, error) {
	_ = godotenv.Load()

	cfg := Server{
		Addr:           getEnv("LISTEN_ADDR", getEnv("LISTEN_URL", ":8080")),
		MetricsEnabled: getEnv("METRICS_ENABLED", "true") == "true",
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		CORSOrigins:    strings.SplitList(os.Getenv("CORS_ORIGIN")),
		OperatorJWTKey: os.Getenv("OPERATOR_JWT_KEY"),
	}

	db, err := DatabaseFromEnv()
	if err != nil {
		return Server{}, err
	}
	cfg.Database = db

	cfg.Recaptcha = Recaptcha{
		Secret:    os.Getenv("RECAPTCHA_KEY"),
		VerifyURL: getEnv("RECAPTCHA_VERIFY_URL", DefaultVerifyURL),
	}
	if cfg.Recaptcha.Secret == "" {
		return Server{}, fmt.Errorf("RECAPTCHA_KEY must be set")
	}
	if cfg.Recaptcha.Timeout, err = durationEnv("RECAPTCHA_TIMEOUT", 10*time.Second); err != nil {
		return Server{}, err
	}
	if cfg.TokenTTL, err = durationEnv("TOKEN_TTL", 24*time.Hour); err != nil {
		return Server{}, err
	}
	if cfg.TokenTTL <= 0 {
		return Server{}, fmt.Errorf("TOKEN_TTL must be positive")
	}

	return cfg, nil
}

// DatabaseFromEnv reads only the store settings. The operator CLI uses it so
// it does not require the HTTP-only variables.
func DatabaseFromEnv() (Database, error) {
	_ = godotenv.Load()

	db := Database{
		Driver:      getEnv("DB_DRIVER", DriverPostgres),
		URL:         os.Getenv("DATABASE_URL"),
		AutoMigrate: getEnv("DB_AUTO_MIGRATE", "false") == "true",
	}
	switch db.Driver {
	case DriverPostgres, DriverSQLite:
		if db.URL == "" {
			return Database{}, fmt.Errorf("DATABASE_URL must be set for driver %q", db.Driver)
		}
	case DriverMemory:
	default:
		return Database{}, fmt.Errorf("unsupported DB_DRIVER %q", db.Driver)
	}

	size, err := intEnv("DB_POOL_SIZE", DefaultPoolSize(db.Driver))
	if err != nil {
		return Database{}, err
	}
	if size < 1 {
		return Database{}, fmt.Errorf("DB_POOL_SIZE must be at least 1")
	}
	db.PoolSize = size
	return db, nil
}

// DefaultPoolSize is 1 for sqlite (single writer) and 4 otherwise.
func DefaultPoolSize(driver string) int {
	if driver == DriverSQLite {
		return 1
	}
	return 4
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return d, nil
}

func intEnv(key string, def int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return n, nil
}
