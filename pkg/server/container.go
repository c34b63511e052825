package server

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"baul-admin-api/internal/adapters/storage"
	"baul-admin-api/internal/analytics"
	"baul-admin-api/internal/config"
	"baul-admin-api/internal/database"
	"baul-admin-api/internal/middleware"
	"baul-admin-api/internal/pricing"
	"baul-admin-api/internal/repositories"
	"baul-admin-api/internal/repositories/mongodb"
	"baul-admin-api/internal/repositories/sqlite"
	"baul-admin-api/internal/services"
)

// Container holds all application dependencies
type Container struct {
	Config *config.Config
	Logger *logrus.Logger
	Store  repositories.Store
	Tokens *middleware.AuthService

	ProductService services.ProductService
	StatsService   services.StatsService
	PricingService services.PricingService
	ImportService  services.ImportService
	AuthService    services.AuthService

	// Internal dependencies
	redis *redis.Client
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *config.Config, logger *logrus.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if logger == nil {
		logger = logrus.New()
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	store, err := openStore(cfg, logger)
	if err != nil {
		return nil, err
	}

	container := &Container{
		Config: cfg,
		Logger: logger,
		Store:  store,
	}

	cache := container.openCache()

	archive, err := storage.CreateFromConfig(&storage.StorageConfig{
		Type:     cfg.Import.ArchiveType,
		BasePath: cfg.Import.ArchivePath,
	}, logger)
	if err != nil {
		container.Close()
		return nil, fmt.Errorf("failed to create import archive: %w", err)
	}

	secret := cfg.JWT.Secret
	if secret == "" {
		secret = uuid.New().String()
		logger.Warn("JWT_SECRET not set, sessions will not survive a restart")
	}
	container.Tokens = middleware.NewAuthService(&middleware.AuthConfig{
		JWTSecret:     secret,
		TokenDuration: cfg.TokenDuration(),
	})

	serviceContainer, err := services.NewServiceContainer(store, &services.ServiceConfig{
		Engine: analytics.EngineConfig{
			Location:       loc,
			CommissionRate: cfg.CommissionRate,
		},
		Cache:      cache,
		Archive:    archive,
		WriteDelay: cfg.Import.WriteDelay,
		Admin: services.AdminCredentials{
			Email:        cfg.Admin.Email,
			PasswordHash: cfg.Admin.PasswordHash,
		},
		TokenIssuer: container.Tokens,
		TokenTTL:    container.Tokens.TokenDuration(),
		Logger:      logger,
	})
	if err != nil {
		container.Close()
		return nil, fmt.Errorf("failed to create service container: %w", err)
	}
	if err := serviceContainer.Validate(); err != nil {
		container.Close()
		return nil, err
	}

	container.ProductService = serviceContainer.ProductService
	container.StatsService = serviceContainer.StatsService
	container.PricingService = serviceContainer.PricingService
	container.ImportService = serviceContainer.ImportService
	container.AuthService = serviceContainer.AuthService

	return container, nil
}

// openStore connects the configured document store
func openStore(cfg *config.Config, logger *logrus.Logger) (repositories.Store, error) {
	switch cfg.Database.Driver {
	case config.DriverMongo:
		client, db, err := database.ConnectMongo(context.Background(), database.MongoConfig{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
			Logger:   logger,
		})
		if err != nil {
			return nil, err
		}
		return mongodb.NewStore(client, db, logger), nil

	case config.DriverSQLite, "":
		cm := database.NewConnectionManager(cfg.Database.ToConnectionConfig(logger))
		if err := cm.Connect(); err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		return sqlite.NewStore(cm.GetDB(), logger), nil

	default:
		return nil, fmt.Errorf("unsupported store driver: %q", cfg.Database.Driver)
	}
}

// openCache returns the redis pricing cache, or a no-op cache when redis is
// not configured or unreachable.
func (c *Container) openCache() pricing.Cache {
	if c.Config.Redis.Addr == "" {
		return pricing.NoopCache{}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     c.Config.Redis.Addr,
		Password: c.Config.Redis.Password,
		DB:       c.Config.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		c.Logger.WithError(err).WithField("addr", c.Config.Redis.Addr).Warn("Redis unavailable, pricing cache disabled")
		client.Close()
		return pricing.NoopCache{}
	}

	c.redis = client
	c.Logger.WithField("addr", c.Config.Redis.Addr).Info("Pricing cache connected")
	return pricing.NewRedisCache(client, c.Config.Pricing.CacheTTL, c.Logger)
}

// Health checks the backing store
func (c *Container) Health(ctx context.Context) error {
	return c.Store.Health(ctx)
}

// Close cleans up all resources
func (c *Container) Close() error {
	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			c.Logger.WithError(err).Warn("Failed to close redis client")
		}
		c.redis = nil
	}

	if c.Store != nil {
		if err := c.Store.Close(); err != nil {
			return fmt.Errorf("failed to close store: %w", err)
		}
		c.Store = nil
	}

	return nil
}
