package services

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"baul-admin-api/internal/adapters/storage"
	"baul-admin-api/internal/analytics"
	"baul-admin-api/internal/importer"
	"baul-admin-api/internal/pricing"
	"baul-admin-api/internal/repositories"
)

// ServiceContainer holds all service instances
type ServiceContainer struct {
	ProductService ProductService
	StatsService   StatsService
	PricingService PricingService
	ImportService  ImportService
	AuthService    AuthService
}

// ServiceConfig holds configuration for services
type ServiceConfig struct {
	Engine      analytics.EngineConfig
	Cache       pricing.Cache
	Archive     storage.FileStorage
	WriteDelay  time.Duration
	Admin       AdminCredentials
	TokenIssuer TokenIssuer
	TokenTTL    time.Duration
	Logger      *logrus.Logger
}

// NewServiceContainer creates a new service container with all services
func NewServiceContainer(store repositories.Store, config *ServiceConfig) (*ServiceContainer, error) {
	if store == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}
	if config == nil {
		config = &ServiceConfig{WriteDelay: importer.DefaultWriteDelay}
	}
	if config.TokenIssuer == nil {
		return nil, fmt.Errorf("token issuer cannot be nil")
	}

	logger := config.Logger
	if logger == nil {
		logger = logrus.New()
	}

	engine := analytics.NewEngine(config.Engine, logger)
	persister := importer.NewPersister(store.Products(), config.WriteDelay, logger)

	return &ServiceContainer{
		ProductService: NewProductService(store.Products(), config.Cache, logger),
		StatsService:   NewStatsService(store.Sales(), store.Quotes(), store.Customers(), engine),
		PricingService: NewPricingService(store.Products(), config.Cache, logger),
		ImportService:  NewImportService(importer.NewPipeline(persister, logger), config.Archive, store.Customers(), logger),
		AuthService:    NewAuthService(config.Admin, config.TokenIssuer, config.TokenTTL, logger),
	}, nil
}

// Validate validates that all services are properly initialized
func (sc *ServiceContainer) Validate() error {
	if sc.ProductService == nil {
		return fmt.Errorf("product service is nil")
	}
	if sc.StatsService == nil {
		return fmt.Errorf("stats service is nil")
	}
	if sc.PricingService == nil {
		return fmt.Errorf("pricing service is nil")
	}
	if sc.ImportService == nil {
		return fmt.Errorf("import service is nil")
	}
	if sc.AuthService == nil {
		return fmt.Errorf("auth service is nil")
	}

	return nil
}
