package mongo

import (
	"context"
	"errors"
	"fmt"

	apperrors "travelbook/pkg/errors"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

const (
	writeConflictCode         = 112
	transientTransactionLabel = "TransientTransactionError"
)

// TransactionFunc runs inside a transaction. ctx is a mongo.SessionContext when
// executed by the Mongo manager; repositories must pass it through unchanged.
type TransactionFunc func(ctx context.Context) error

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

// ExecuteTransaction runs fn with snapshot reads and majority writes.
// The driver retries fn on transient errors such as write conflicts, so fn must be
// safe to run more than once. Contention that outlives the driver's retry window
// surfaces as a Conflict.
func (m *mongoTransactionManager) ExecuteTransaction(ctx context.Context, fn TransactionFunc) error {
	session, err := m.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	opts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (any, error) {
		return nil, fn(sessCtx)
	}, opts)

	return transactionError(err)
}

// transactionError maps the outcome of a transaction. Contention wins over any AppError
// wrapping it, since a wrapped write conflict is still a conflict.
func transactionError(err error) error {
	switch {
	case err == nil:
		return nil
	case IsContention(err):
		return apperrors.Conflict("The resource is being booked concurrently, please retry")
	case apperrors.IsAppError(err):
		return err
	default:
		return fmt.Errorf("transaction failed: %w", err)
	}
}

// IsContention reports whether err is a write conflict or a transient transaction error.
func IsContention(err error) bool {
	var serverErr mongo.ServerError
	if !errors.As(err, &serverErr) {
		return false
	}
	return serverErr.HasErrorCode(writeConflictCode) ||
		serverErr.HasErrorLabel(transientTransactionLabel)
}
