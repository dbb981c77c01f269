package ports

import (
	"context"

	"github.com/kevin07696/payment-gateway/internal/domain/models"
)

// MerchantInfo is the minimum merchant shape the orchestrator needs
type MerchantInfo struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

// MerchantClient validates merchant existence before any transaction is created
type MerchantClient interface {
	// GetMerchant returns domain.ErrMerchantNotFound for unknown merchants
	// and a MERCHANT_UNAVAILABLE error for transport failures.
	GetMerchant(ctx context.Context, merchantID string) (*MerchantInfo, error)
}

// TokenizeRequest carries raw card data to the vault. The PAN and CVV never
// touch the transaction store.
type TokenizeRequest struct {
	PAN            string
	ExpiryMonth    string
	ExpiryYear     string
	CardHolderName string
	CVV            string
}

// VaultClient exchanges raw card data for an opaque token reference
type VaultClient interface {
	Tokenize(ctx context.Context, req *TokenizeRequest) (string, error)
}

// FraudChecker is the fraud decision engine's external-facing contract.
// Implementations decide their own unavailability policy: the in-process
// engine propagates nothing past a degraded decision, while remote clients
// may fail open (MANUAL_REVIEW fallback) or fail closed (surface the error).
type FraudChecker interface {
	CheckFraud(ctx context.Context, req *models.FraudCheckRequest) (*models.FraudResult, error)
}

// EventPublisher publishes a transaction snapshot after every terminal write.
// At-least-once; fire-and-forget from the orchestrator's perspective.
type EventPublisher interface {
	Publish(ctx context.Context, transaction *models.Transaction) error
}
