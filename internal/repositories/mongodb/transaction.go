package mongodb

import (
	"context"

	"baul-admin-api/internal/repositories"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
)

// TransactionManager implements repositories.TransactionManager with
// MongoDB sessions. Multi-document transactions require a replica set.
type TransactionManager struct {
	client *mongo.Client
	logger *logrus.Logger
}

// NewTransactionManager creates a new MongoDB transaction manager
func NewTransactionManager(client *mongo.Client, logger *logrus.Logger) *TransactionManager {
	if logger == nil {
		logger = logrus.New()
	}
	return &TransactionManager{client: client, logger: logger}
}

// WithTransaction executes fn inside a session transaction. Calls nested
// inside an open session join it.
func (tm *TransactionManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if mongo.SessionFromContext(ctx) != nil {
		return fn(ctx)
	}

	session, err := tm.client.StartSession()
	if err != nil {
		tm.logger.WithError(err).Error("Failed to start session")
		return repositories.TransactionError("begin", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	if err != nil {
		tm.logger.WithError(err).Error("Transaction aborted")
		if repositories.IsNotFound(err) || repositories.IsValidation(err) {
			return err
		}
		return repositories.TransactionError("commit", err)
	}

	tm.logger.Debug("Transaction committed successfully")
	return nil
}
