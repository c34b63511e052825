package storage

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// StorageType represents the type of storage implementation
type StorageType string

const (
	StorageTypeLocal  StorageType = "local"
	StorageTypeMemory StorageType = "memory"
)

// Factory creates FileStorage instances based on configuration
type Factory struct {
	retryConfig *RetryConfig
	logger      *logrus.Logger
}

// NewFactory creates a new storage factory. A nil retry config disables retries.
func NewFactory(retryConfig *RetryConfig, logger *logrus.Logger) *Factory {
	if logger == nil {
		logger = logrus.New()
	}
	return &Factory{retryConfig: retryConfig, logger: logger}
}

// Create creates a FileStorage instance based on the provided configuration
func (f *Factory) Create(config *StorageConfig) (FileStorage, error) {
	if config == nil {
		return nil, fmt.Errorf("storage config is required")
	}

	var (
		storage FileStorage
		err     error
	)
	switch StorageType(strings.ToLower(config.Type)) {
	case StorageTypeLocal, "":
		basePath := config.BasePath
		if basePath == "" {
			basePath = "./data/importaciones"
		}
		storage, err = NewLocalFileStorage(basePath, f.logger)
	case StorageTypeMemory:
		storage = NewMemoryFileStorage()
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", config.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s storage: %w", config.Type, err)
	}

	if f.retryConfig != nil {
		storage = NewRetryableFileStorage(storage, f.retryConfig, f.logger)
	}

	return storage, nil
}

// CreateFromConfig creates storage with the default retry configuration
func CreateFromConfig(config *StorageConfig, logger *logrus.Logger) (FileStorage, error) {
	return NewFactory(DefaultRetryConfig(), logger).Create(config)
}
