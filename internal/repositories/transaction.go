package repositories

import (
	"context"
)

// TransactionManager runs a group of writes as one atomic unit
type TransactionManager interface {
	// WithTransaction executes fn within a transaction; any error rolls back every write made by fn
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
