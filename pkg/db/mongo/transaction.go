package mongo

import (
	"context"
	"errors"
	"fmt"

	apperrors "shareit/pkg/errors"

	"go.mongodb.org/mongo-driver/mongo"
)

type TransactionFunc func(ctx mongo.SessionContext) error

type TransactionManager interface {
	ExecuteTransaction(ctx context.Context, fn TransactionFunc) error
}

type mongoTransactionManager struct {
	client *mongo.Client
}

func NewTransactionManager(client *mongo.Client) TransactionManager {
	return &mongoTransactionManager{
		client: client,
	}
}

// ExecuteTransaction runs fn inside a session transaction. The driver retries
// fn on transient transaction errors, so fn must be safe to run again.
// AppErrors returned by fn abort the transaction and are passed through as-is.
// Deadline and network failures surface as Timeout and Unavailable.
func (m *mongoTransactionManager) ExecuteTransaction(ctx context.Context, fn TransactionFunc) error {
	session, err := m.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (any, error) {
		return nil, fn(sessCtx)
	})

	if err != nil {
		if apperrors.IsAppError(err) {
			return err
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return apperrors.Timeout("Database transaction timed out")
		}
		if mongo.IsNetworkError(err) {
			return apperrors.Unavailable("Database")
		}
		return fmt.Errorf("transaction failed: %w", err)
	}

	return nil
}
