package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/kevin07696/payment-gateway/internal/domain"
	"github.com/kevin07696/payment-gateway/internal/domain/models"
	"github.com/kevin07696/payment-gateway/internal/domain/ports"
	"github.com/kevin07696/payment-gateway/pkg/observability"
	"github.com/kevin07696/payment-gateway/pkg/resilience"
)

const (
	reasonHighRisk      = "High Risk Fraud Detected"
	reasonFraudSystem   = "Fraud Check System Error"
	reasonCeiling       = "Business logic limit exceeded"
	reviewMarker        = "[REVIEW REQUIRED]"
	defaultAuthCeiling  = 10000
	defaultListPageSize = 50
	maxListPageSize     = 200
)

// Config holds the orchestrator's business policy knobs
type Config struct {
	// AuthCeiling caps auto-authorization: amounts strictly below authorize,
	// at or above fail
	AuthCeiling decimal.Decimal

	// FraudFailOpen controls what an unreachable fraud engine does to the
	// payment: false (default) fails the transaction closed, true degrades
	// to manual review and continues
	FraudFailOpen bool

	Timeouts *resilience.TimeoutConfig
}

// DefaultConfig returns the production policy: fail-closed fraud handling and
// a 10,000 unit authorization ceiling
func DefaultConfig() Config {
	return Config{
		AuthCeiling:   decimal.NewFromInt(defaultAuthCeiling),
		FraudFailOpen: false,
		Timeouts:      resilience.DefaultTimeoutConfig(),
	}
}

// Service is the payment orchestrator: it sequences validation, merchant
// lookup, tokenization, persistence, fraud evaluation, and the authorization
// decision, moving each transaction through its state machine exactly once
// per idempotency key.
type Service struct {
	cfg       Config
	db        ports.DBPort
	txRepo    ports.TransactionRepository
	merchants ports.MerchantClient
	vault     ports.VaultClient
	fraud     ports.FraudChecker
	events    ports.EventPublisher
	logger    ports.Logger
}

// NewService creates a new payment orchestrator
func NewService(
	cfg Config,
	db ports.DBPort,
	txRepo ports.TransactionRepository,
	merchants ports.MerchantClient,
	vault ports.VaultClient,
	fraud ports.FraudChecker,
	events ports.EventPublisher,
	logger ports.Logger,
) *Service {
	if cfg.Timeouts == nil {
		cfg.Timeouts = resilience.DefaultTimeoutConfig()
	}
	return &Service{
		cfg:       cfg,
		db:        db,
		txRepo:    txRepo,
		merchants: merchants,
		vault:     vault,
		fraud:     fraud,
		events:    events,
		logger:    logger,
	}
}

// ProcessPayment runs the full authorization flow. Failures before the first
// persist abort with a domain error and leave no record; failures after it
// land the transaction in FAILED with a human-readable reason and still
// return the record.
func (s *Service) ProcessPayment(ctx context.Context, req *ProcessPaymentRequest) (*models.Transaction, error) {
	start := time.Now()

	// Idempotency guard runs before validation or any external call: a
	// retried request must observe the first attempt's outcome even if the
	// request body has since been mangled.
	if req.IdempotencyKey != "" {
		existing, err := s.txRepo.GetByIdempotencyKey(ctx, nil, req.IdempotencyKey)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			s.logger.Info("returning existing transaction for idempotency key",
				ports.String("idempotency_key", req.IdempotencyKey),
				ports.String("transaction_id", existing.ID))
			return existing, nil
		}
	}

	if err := validateRequest(req); err != nil {
		return nil, err
	}

	// Merchant check fails fast: no record is created for an unknown or
	// unreachable merchant directory.
	merchantCtx, cancel := s.cfg.Timeouts.CollaboratorContext(ctx)
	merchant, err := s.merchants.GetMerchant(merchantCtx, req.MerchantID)
	cancel()
	if err != nil {
		return nil, err
	}

	cardToken := req.CardToken
	if models.PaymentMethod(req.PaymentMethod) == models.PaymentMethodCard && cardToken == "" {
		tokenCtx, cancel := s.cfg.Timeouts.CollaboratorContext(ctx)
		cardToken, err = s.vault.Tokenize(tokenCtx, &ports.TokenizeRequest{
			PAN:            req.CardNumber,
			ExpiryMonth:    req.ExpiryMonth,
			ExpiryYear:     req.ExpiryYear,
			CardHolderName: req.CardHolderName,
			CVV:            req.CVV,
		})
		cancel()
		if err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	transaction := &models.Transaction{
		ID:             uuid.NewString(),
		MerchantID:     merchant.ID,
		Amount:         req.Amount,
		Currency:       req.Currency,
		Status:         models.StatusInitiated,
		PaymentMethod:  models.PaymentMethod(req.PaymentMethod),
		CardToken:      cardToken,
		IdempotencyKey: req.IdempotencyKey,
		Description:    req.Description,
		CustomerEmail:  req.CustomerEmail,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	err = s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		return s.txRepo.Create(ctx, tx, transaction)
	})
	if err != nil {
		// A concurrent request with the same key committed first; hand back
		// its record instead of an error.
		if errors.Is(err, domain.ErrIdempotencyConflict) && req.IdempotencyKey != "" {
			if first, lookupErr := s.txRepo.GetByIdempotencyKey(ctx, nil, req.IdempotencyKey); lookupErr == nil && first != nil {
				return first, nil
			}
		}
		return nil, err
	}

	// From here on the transaction exists: every outcome is a state
	// transition plus one published event, never an orphaned error.
	fraudResult, fraudErr := s.checkFraud(ctx, req, transaction)
	switch {
	case fraudErr != nil:
		return s.finalize(ctx, transaction, models.StatusFailed, reasonFraudSystem, start)
	case fraudResult.Decision == models.DecisionBlock:
		return s.finalize(ctx, transaction, models.StatusFailed, reasonHighRisk, start)
	case fraudResult.Decision == models.DecisionManualReview:
		transaction.Description = annotateForReview(transaction.Description, fraudResult.RiskScore)
	}

	if transaction.Amount.GreaterThanOrEqual(s.cfg.AuthCeiling) {
		return s.finalize(ctx, transaction, models.StatusFailed, reasonCeiling, start)
	}

	transaction.AuthorizationCode = "AUTH_" + strings.ToUpper(uuid.NewString()[:8])
	transaction.ReferenceNumber = fmt.Sprintf("REF_%d", time.Now().UnixMilli())
	return s.finalize(ctx, transaction, models.StatusAuthorized, "", start)
}

// checkFraud calls the decision engine under the configured unavailability
// policy. Fail-closed surfaces the error for the caller to turn into a FAILED
// transaction; fail-open substitutes a manual-review decision.
func (s *Service) checkFraud(ctx context.Context, req *ProcessPaymentRequest, transaction *models.Transaction) (*models.FraudResult, error) {
	fraudCtx, cancel := s.cfg.Timeouts.CollaboratorContext(ctx)
	defer cancel()

	result, err := s.fraud.CheckFraud(fraudCtx, &models.FraudCheckRequest{
		TransactionID:     transaction.ID,
		MerchantID:        transaction.MerchantID,
		UserID:            req.UserID,
		Amount:            transaction.Amount,
		Currency:          transaction.Currency,
		IPAddress:         req.IPAddress,
		DeviceFingerprint: req.DeviceFingerprint,
		Email:             req.CustomerEmail,
	})
	if err != nil {
		if !s.cfg.FraudFailOpen {
			s.logger.Error("fraud check failed, failing transaction closed",
				ports.String("transaction_id", transaction.ID),
				ports.Err(err))
			return nil, err
		}
		s.logger.Warn("fraud check failed, continuing under manual review",
			ports.String("transaction_id", transaction.ID),
			ports.Err(err))
		return &models.FraudResult{
			TransactionID: transaction.ID,
			RiskScore:     0.5,
			Decision:      models.DecisionManualReview,
			RiskFactors:   []string{"Fraud Service Unavailable"},
		}, nil
	}

	return result, nil
}

// finalize applies the terminal (or authorized) state transition, persists
// it, publishes exactly one event, and records metrics. It always returns the
// transaction: post-persist failures are states, not exceptions.
func (s *Service) finalize(ctx context.Context, transaction *models.Transaction, status models.TransactionStatus, failureReason string, start time.Time) (*models.Transaction, error) {
	if !transaction.CanTransitionTo(status) {
		return nil, domain.ErrTxnInvalidState.
			WithDetail("from", string(transaction.Status)).
			WithDetail("to", string(status))
	}

	transaction.Status = status
	transaction.FailureReason = failureReason
	transaction.UpdatedAt = time.Now().UTC()

	err := s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		return s.txRepo.Update(ctx, tx, transaction)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, transaction)

	observability.RecordPayment(transaction.MerchantID, string(transaction.PaymentMethod), string(status), failureReason, time.Since(start))

	s.logger.Info("payment processed",
		ports.String("transaction_id", transaction.ID),
		ports.String("merchant_id", transaction.MerchantID),
		ports.String("status", string(status)),
		ports.String("failure_reason", failureReason),
		ports.Duration("elapsed", time.Since(start)))

	return transaction, nil
}

// publishEvent emits the transaction snapshot. Publish failures are logged
// and dropped: the committed state is authoritative and downstream consumers
// reconcile from it.
func (s *Service) publishEvent(ctx context.Context, transaction *models.Transaction) {
	pubCtx, cancel := s.cfg.Timeouts.CollaboratorContext(ctx)
	defer cancel()

	if err := s.events.Publish(pubCtx, transaction); err != nil {
		s.logger.Error("failed to publish transaction event",
			ports.String("transaction_id", transaction.ID),
			ports.String("status", string(transaction.Status)),
			ports.Err(err))
	}
}

// GetTransaction retrieves a transaction by ID
func (s *Service) GetTransaction(ctx context.Context, id string) (*models.Transaction, error) {
	return s.txRepo.GetByID(ctx, nil, id)
}

// CapturePayment moves an AUTHORIZED transaction to CAPTURED and stamps the
// settlement time. Any other starting state is an invariant violation naming
// the current status.
func (s *Service) CapturePayment(ctx context.Context, id string) (*models.Transaction, error) {
	start := time.Now()
	var captured *models.Transaction

	err := s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		transaction, err := s.txRepo.GetByID(ctx, tx, id)
		if err != nil {
			return err
		}

		if !transaction.CanBeCaptured() {
			return domain.ErrTxnInvalidState.
				WithDetail("transaction_id", id).
				WithDetail("status", string(transaction.Status))
		}

		now := time.Now().UTC()
		transaction.Status = models.StatusCaptured
		transaction.SettledAt = &now
		transaction.UpdatedAt = now

		if err := s.txRepo.Update(ctx, tx, transaction); err != nil {
			return err
		}

		captured = transaction
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, captured)
	observability.RecordPayment(captured.MerchantID, string(captured.PaymentMethod), string(models.StatusCaptured), "", time.Since(start))

	s.logger.Info("payment captured",
		ports.String("transaction_id", captured.ID),
		ports.String("merchant_id", captured.MerchantID))

	return captured, nil
}

// ListMerchantTransactions lists a merchant's transactions newest first,
// inside a read-only transaction for a consistent snapshot
func (s *Service) ListMerchantTransactions(ctx context.Context, merchantID string, limit, offset int32) ([]*models.Transaction, error) {
	if limit <= 0 {
		limit = defaultListPageSize
	}
	if limit > maxListPageSize {
		limit = maxListPageSize
	}
	if offset < 0 {
		offset = 0
	}

	var transactions []*models.Transaction
	err := s.db.WithReadOnlyTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var err error
		transactions, err = s.txRepo.ListByMerchant(ctx, tx, merchantID, limit, offset)
		return err
	})
	if err != nil {
		return nil, err
	}

	return transactions, nil
}

// annotateForReview appends the manual-review marker and risk score to the
// description so the flag survives in the audit trail
func annotateForReview(description string, riskScore float64) string {
	annotation := fmt.Sprintf("%s (risk score: %.2f)", reviewMarker, riskScore)
	if description == "" {
		return annotation
	}
	return description + " " + annotation
}
