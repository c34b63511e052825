package lambda

import (
	"context"
	"sync"
	"time"

	"baul-admin-api/internal/config"
	"baul-admin-api/pkg/server"
)

// staleAfter is how long an idle container is considered healthy
const staleAfter = 5 * time.Minute

// ConnectionManager keeps one service container alive across warm Lambda invocations
type ConnectionManager struct {
	container *server.Container
	lastUsed  time.Time
	mu        sync.Mutex

	// newContainer is replaced in tests
	newContainer func(*config.Config) (*server.Container, error)
}

var (
	globalConnectionManager *ConnectionManager
	connectionManagerOnce   sync.Once
)

// GetConnectionManager returns the global connection manager instance
func GetConnectionManager() *ConnectionManager {
	connectionManagerOnce.Do(func() {
		globalConnectionManager = NewConnectionManager()
	})
	return globalConnectionManager
}

// NewConnectionManager creates an empty connection manager
func NewConnectionManager() *ConnectionManager {
	return &ConnectionManager{
		newContainer: func(cfg *config.Config) (*server.Container, error) {
			return server.NewContainer(cfg, cfg.NewLogger())
		},
	}
}

// Initialize builds the container from cfg unless one already exists
func (cm *ConnectionManager) Initialize(cfg *config.Config) error {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	return cm.initLocked(cfg)
}

func (cm *ConnectionManager) initLocked(cfg *config.Config) error {
	if cm.container != nil {
		return nil
	}

	container, err := cm.newContainer(cfg)
	if err != nil {
		return err
	}

	cm.container = container
	cm.lastUsed = time.Now()
	return nil
}

// GetContainer returns the service container, initializing it on a cold start.
// A failed initialization is retried on the next call.
func (cm *ConnectionManager) GetContainer(ctx context.Context) (*server.Container, error) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if cm.container == nil {
		cfg, err := config.GetOptimizedConfig()
		if err != nil {
			return nil, err
		}
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		if err := cm.initLocked(cfg); err != nil {
			return nil, err
		}
	}

	cm.lastUsed = time.Now()
	return cm.container, nil
}

// IsHealthy checks if the connection manager is healthy
func (cm *ConnectionManager) IsHealthy() bool {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if cm.container == nil {
		return false
	}
	return time.Since(cm.lastUsed) < staleAfter
}

// Cleanup closes the container; the next GetContainer call rebuilds it
func (cm *ConnectionManager) Cleanup() error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if cm.container == nil {
		return nil
	}

	err := cm.container.Close()
	cm.container = nil
	return err
}
