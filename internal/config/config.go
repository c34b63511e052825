package config

import (
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Store drivers
const (
	DriverSQLite = "sqlite"
	DriverMongo  = "mongo"
)

// Config holds all configuration for the application
type Config struct {
	Environment  string
	Port         string
	LogLevel     string
	Timezone     string
	RateLimitRPS float64
	Database     DatabaseConfig
	Mongo        MongoConfig
	Redis        RedisConfig
	Pricing      PricingConfig
	Import       ImportConfig
	JWT          JWTConfig
	Admin        AdminConfig

	// CommissionRate is the percentage paid on matched sales
	CommissionRate decimal.Decimal
}

// MongoConfig holds the alternative document store settings
type MongoConfig struct {
	URI      string
	Database string
}

// RedisConfig holds the pricing cache connection. An empty Addr disables the cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// PricingConfig holds the public pricing endpoint settings
type PricingConfig struct {
	CacheTTL  time.Duration
	RateLimit string
}

// ImportConfig holds bulk import settings
type ImportConfig struct {
	WriteDelay  time.Duration
	ArchiveType string // "local" or "memory"
	ArchivePath string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret      string
	ExpiryHours int
}

// AdminConfig holds the administrator credentials
type AdminConfig struct {
	Email        string
	PasswordHash string
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	// Set up Viper
	viper.AutomaticEnv()
	viper.SetDefault("PORT", "8081")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("TIMEZONE", "America/Argentina/Buenos_Aires")
	viper.SetDefault("RATE_LIMIT_RPS", 100)
	viper.SetDefault("STORE_DRIVER", DriverSQLite)
	viper.SetDefault("DB_PATH", "./data/baul.db")
	viper.SetDefault("DB_MAX_OPEN_CONNS", 1)
	viper.SetDefault("DB_AUTO_MIGRATE", true)
	viper.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	viper.SetDefault("MONGO_DATABASE", "baul")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("PRICING_CACHE_TTL", "5m")
	viper.SetDefault("PRICING_RATE_LIMIT", "60-M")
	viper.SetDefault("IMPORT_WRITE_DELAY", "100ms")
	viper.SetDefault("IMPORT_ARCHIVE_TYPE", "local")
	viper.SetDefault("IMPORT_ARCHIVE_PATH", "./data/importaciones")
	viper.SetDefault("JWT_EXPIRY_HOURS", 24)
	viper.SetDefault("COMMISSION_RATE", "2.5")

	commission, err := decimal.NewFromString(strings.TrimSpace(viper.GetString("COMMISSION_RATE")))
	if err != nil {
		return nil, fmt.Errorf("invalid COMMISSION_RATE: %w", err)
	}

	config := &Config{
		Environment:  viper.GetString("ENVIRONMENT"),
		Port:         viper.GetString("PORT"),
		LogLevel:     viper.GetString("LOG_LEVEL"),
		Timezone:     viper.GetString("TIMEZONE"),
		RateLimitRPS: viper.GetFloat64("RATE_LIMIT_RPS"),
		Database: DatabaseConfig{
			Driver:          strings.ToLower(viper.GetString("STORE_DRIVER")),
			Path:            viper.GetString("DB_PATH"),
			MaxOpenConns:    viper.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    viper.GetInt("DB_MAX_OPEN_CONNS"),
			ConnMaxLifetime: time.Hour,
			AutoMigrate:     viper.GetBool("DB_AUTO_MIGRATE"),
		},
		Mongo: MongoConfig{
			URI:      viper.GetString("MONGO_URI"),
			Database: viper.GetString("MONGO_DATABASE"),
		},
		Redis: RedisConfig{
			Addr:     viper.GetString("REDIS_ADDR"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Pricing: PricingConfig{
			CacheTTL:  viper.GetDuration("PRICING_CACHE_TTL"),
			RateLimit: viper.GetString("PRICING_RATE_LIMIT"),
		},
		Import: ImportConfig{
			WriteDelay:  viper.GetDuration("IMPORT_WRITE_DELAY"),
			ArchiveType: viper.GetString("IMPORT_ARCHIVE_TYPE"),
			ArchivePath: viper.GetString("IMPORT_ARCHIVE_PATH"),
		},
		JWT: JWTConfig{
			Secret:      viper.GetString("JWT_SECRET"),
			ExpiryHours: viper.GetInt("JWT_EXPIRY_HOURS"),
		},
		Admin: AdminConfig{
			Email:        viper.GetString("ADMIN_EMAIL"),
			PasswordHash: viper.GetString("ADMIN_PASSWORD_HASH"),
		},
		CommissionRate: commission,
	}

	return config, nil
}

// IsProduction reports whether the service runs in production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Validate rejects configurations the service cannot start with
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverSQLite:
		if err := c.Database.Validate(); err != nil {
			return err
		}
	case DriverMongo:
		if c.Mongo.URI == "" || c.Mongo.Database == "" {
			return fmt.Errorf("MONGO_URI and MONGO_DATABASE are required for the mongo driver")
		}
	default:
		return fmt.Errorf("unsupported store driver: %q", c.Database.Driver)
	}

	if c.JWT.Secret == "" && c.IsProduction() {
		return fmt.Errorf("JWT_SECRET is required in production")
	}
	if c.JWT.ExpiryHours < 1 {
		return fmt.Errorf("JWT_EXPIRY_HOURS must be at least 1")
	}
	if c.Import.WriteDelay < 0 {
		return fmt.Errorf("IMPORT_WRITE_DELAY cannot be negative")
	}
	if c.CommissionRate.IsNegative() {
		return fmt.Errorf("COMMISSION_RATE cannot be negative")
	}
	if _, err := c.Location(); err != nil {
		return err
	}

	return nil
}

// Location resolves the configured time zone used for date presets
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// TokenDuration returns the lifetime of admin session tokens
func (c *Config) TokenDuration() time.Duration {
	return time.Duration(c.JWT.ExpiryHours) * time.Hour
}

// NewLogger builds the process logger: JSON in production, text otherwise
func (c *Config) NewLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	if c.IsProduction() {
		logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
		logger.WithField("log_level", c.LogLevel).Warn("Unknown log level, using info")
	}
	logger.SetLevel(level)

	return logger
}

// GetEnv gets an environment variable with a fallback value
func GetEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
