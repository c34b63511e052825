package sqlite

import (
	"context"
	"database/sql"

	"baul-admin-api/internal/repositories"

	"github.com/sirupsen/logrus"
)

type txKey struct{}

func txFromContext(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(txKey{}).(*sql.Tx)
	return tx, ok
}

// TransactionManager implements repositories.TransactionManager for SQLite.
// Repositories pick up the transaction from the context passed to fn.
type TransactionManager struct {
	db     *sql.DB
	logger *logrus.Logger
}

// NewTransactionManager creates a new SQLite transaction manager
func NewTransactionManager(db *sql.DB, logger *logrus.Logger) *TransactionManager {
	if logger == nil {
		logger = logrus.New()
	}
	return &TransactionManager{
		db:     db,
		logger: logger,
	}
}

// WithTransaction executes a function within a transaction. Calls nested
// inside an open transaction join it.
func (tm *TransactionManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := txFromContext(ctx); ok {
		return fn(ctx)
	}

	tx, err := tm.db.BeginTx(ctx, nil)
	if err != nil {
		tm.logger.WithError(err).Error("Failed to begin transaction")
		return repositories.TransactionError("begin", err)
	}
	tm.logger.Debug("Transaction started successfully")

	// Ensure transaction is cleaned up
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			tm.logger.WithError(rollbackErr).Error("Failed to rollback transaction after error")
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		tm.logger.WithError(err).Error("Failed to commit transaction")
		return repositories.TransactionError("commit", err)
	}
	tm.logger.Debug("Transaction committed successfully")
	return nil
}
