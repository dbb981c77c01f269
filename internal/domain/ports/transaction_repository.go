package ports

import (
	"context"

	"github.com/kevin07696/payment-gateway/internal/domain/models"
)

// TransactionRepository defines the interface for transaction persistence.
// Passing a nil DBTX executes against the pool outside any transaction.
type TransactionRepository interface {
	// Create inserts a new transaction. A duplicate idempotency key returns
	// domain.ErrIdempotencyConflict; the storage layer's uniqueness
	// constraint resolves concurrent duplicate submissions.
	Create(ctx context.Context, tx DBTX, transaction *models.Transaction) error

	// GetByID retrieves a transaction by its ID
	GetByID(ctx context.Context, db DBTX, id string) (*models.Transaction, error)

	// GetByIdempotencyKey retrieves a transaction by its idempotency key.
	// Returns (nil, nil) when no transaction carries the key.
	GetByIdempotencyKey(ctx context.Context, db DBTX, key string) (*models.Transaction, error)

	// Update persists the mutable fields of a transaction (status, codes,
	// failure reason, description, settled_at). The row is never deleted.
	Update(ctx context.Context, tx DBTX, transaction *models.Transaction) error

	// ListByMerchant lists transactions for a merchant with pagination
	ListByMerchant(ctx context.Context, db DBTX, merchantID string, limit, offset int32) ([]*models.Transaction, error)
}
