package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/kevin07696/payment-gateway/internal/domain"
	"github.com/kevin07696/payment-gateway/internal/domain/models"
	"github.com/kevin07696/payment-gateway/internal/domain/ports"
)

const pgUniqueViolation = "23505"

// TransactionRepository implements transaction persistence over pgx
type TransactionRepository struct {
	db     ports.DBPort
	logger ports.Logger
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db ports.DBPort, logger ports.Logger) *TransactionRepository {
	return &TransactionRepository{db: db, logger: logger}
}

// executor returns the given transaction, or the pool when called outside one
func (r *TransactionRepository) executor(tx ports.DBTX) ports.DBTX {
	if tx != nil {
		return tx
	}
	return r.db.GetDB()
}

const transactionColumns = `id, merchant_id, amount, currency, status, payment_method,
	card_token, authorization_code, reference_number, failure_reason,
	idempotency_key, description, customer_email, created_at, updated_at, settled_at`

// Create inserts a new transaction. A duplicate idempotency key maps to
// domain.ErrIdempotencyConflict.
func (r *TransactionRepository) Create(ctx context.Context, tx ports.DBTX, transaction *models.Transaction) error {
	query := `
		INSERT INTO transactions (
			id, merchant_id, amount, currency, status, payment_method,
			card_token, authorization_code, reference_number, failure_reason,
			idempotency_key, description, customer_email, created_at, updated_at, settled_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	_, err := r.executor(tx).Exec(ctx, query,
		transaction.ID,
		transaction.MerchantID,
		transaction.Amount.String(),
		transaction.Currency,
		string(transaction.Status),
		string(transaction.PaymentMethod),
		transaction.CardToken,
		transaction.AuthorizationCode,
		transaction.ReferenceNumber,
		transaction.FailureReason,
		transaction.IdempotencyKey,
		transaction.Description,
		transaction.CustomerEmail,
		transaction.CreatedAt,
		transaction.UpdatedAt,
		transaction.SettledAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return domain.ErrIdempotencyConflict.WithDetail("idempotency_key", transaction.IdempotencyKey)
		}
		r.logger.Error("failed to insert transaction",
			ports.String("transaction_id", transaction.ID),
			ports.Err(err))
		return domain.ErrDatabaseError
	}

	return nil
}

// GetByID retrieves a transaction by its ID
func (r *TransactionRepository) GetByID(ctx context.Context, db ports.DBTX, id string) (*models.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`

	transaction, err := r.scanTransaction(r.executor(db).QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTxnNotFound.WithDetail("transaction_id", id)
		}
		r.logger.Error("failed to query transaction",
			ports.String("transaction_id", id),
			ports.Err(err))
		return nil, domain.ErrDatabaseError
	}

	return transaction, nil
}

// GetByIdempotencyKey retrieves a transaction by its idempotency key.
// Returns (nil, nil) when no transaction carries the key.
func (r *TransactionRepository) GetByIdempotencyKey(ctx context.Context, db ports.DBTX, key string) (*models.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE idempotency_key = $1`

	transaction, err := r.scanTransaction(r.executor(db).QueryRow(ctx, query, key))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("failed to query transaction by idempotency key", ports.Err(err))
		return nil, domain.ErrDatabaseError
	}

	return transaction, nil
}

// Update persists the mutable fields of a transaction
func (r *TransactionRepository) Update(ctx context.Context, tx ports.DBTX, transaction *models.Transaction) error {
	query := `
		UPDATE transactions SET
			status = $2,
			authorization_code = $3,
			reference_number = $4,
			failure_reason = $5,
			description = $6,
			updated_at = $7,
			settled_at = $8
		WHERE id = $1`

	tag, err := r.executor(tx).Exec(ctx, query,
		transaction.ID,
		string(transaction.Status),
		transaction.AuthorizationCode,
		transaction.ReferenceNumber,
		transaction.FailureReason,
		transaction.Description,
		transaction.UpdatedAt,
		transaction.SettledAt,
	)
	if err != nil {
		r.logger.Error("failed to update transaction",
			ports.String("transaction_id", transaction.ID),
			ports.Err(err))
		return domain.ErrDatabaseError
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTxnNotFound.WithDetail("transaction_id", transaction.ID)
	}

	return nil
}

// ListByMerchant lists transactions for a merchant, newest first
func (r *TransactionRepository) ListByMerchant(ctx context.Context, db ports.DBTX, merchantID string, limit, offset int32) ([]*models.Transaction, error) {
	query := `SELECT ` + transactionColumns + `
		FROM transactions
		WHERE merchant_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.executor(db).Query(ctx, query, merchantID, limit, offset)
	if err != nil {
		r.logger.Error("failed to list transactions",
			ports.String("merchant_id", merchantID),
			ports.Err(err))
		return nil, domain.ErrDatabaseError
	}
	defer rows.Close()

	transactions := make([]*models.Transaction, 0)
	for rows.Next() {
		transaction, err := r.scanTransaction(rows)
		if err != nil {
			r.logger.Error("failed to scan transaction row", ports.Err(err))
			return nil, domain.ErrDatabaseError
		}
		transactions = append(transactions, transaction)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrDatabaseError
	}

	return transactions, nil
}

func (r *TransactionRepository) scanTransaction(row pgx.Row) (*models.Transaction, error) {
	var (
		transaction   models.Transaction
		amount        string
		status        string
		paymentMethod string
	)

	err := row.Scan(
		&transaction.ID,
		&transaction.MerchantID,
		&amount,
		&transaction.Currency,
		&status,
		&paymentMethod,
		&transaction.CardToken,
		&transaction.AuthorizationCode,
		&transaction.ReferenceNumber,
		&transaction.FailureReason,
		&transaction.IdempotencyKey,
		&transaction.Description,
		&transaction.CustomerEmail,
		&transaction.CreatedAt,
		&transaction.UpdatedAt,
		&transaction.SettledAt,
	)
	if err != nil {
		return nil, err
	}

	transaction.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("parse stored amount %q: %w", amount, err)
	}
	transaction.Status = models.TransactionStatus(status)
	transaction.PaymentMethod = models.PaymentMethod(paymentMethod)

	return &transaction, nil
}
