package payment

import (
	"regexp"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/kevin07696/payment-gateway/internal/domain"
	"github.com/kevin07696/payment-gateway/internal/domain/models"
)

// ProcessPaymentRequest carries everything needed to authorize a payment.
// Either CardToken or the raw card fields must be present for CARD payments;
// raw card data goes straight to the vault and is never persisted.
type ProcessPaymentRequest struct {
	MerchantID    string          `json:"merchant_id" validate:"required"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency" validate:"required"`
	PaymentMethod string          `json:"payment_method" validate:"required,oneof=CARD UPI NET_BANKING WALLET"`

	CardToken      string `json:"card_token,omitempty"`
	CardNumber     string `json:"card_number,omitempty"`
	ExpiryMonth    string `json:"expiry_month,omitempty"`
	ExpiryYear     string `json:"expiry_year,omitempty"`
	CardHolderName string `json:"card_holder_name,omitempty"`
	CVV            string `json:"cvv,omitempty"`

	IdempotencyKey string `json:"idempotency_key,omitempty"`
	Description    string `json:"description,omitempty"`
	CustomerEmail  string `json:"customer_email,omitempty" validate:"omitempty,email"`

	// Fraud signal fields, passed through to the decision engine
	UserID            string `json:"user_id,omitempty"`
	IPAddress         string `json:"ip_address,omitempty"`
	DeviceFingerprint string `json:"device_fingerprint,omitempty"`
}

var currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)

var validate = validator.New()

// validateRequest checks the request before any collaborator is touched.
// Struct tags cover shape; the amount, currency, and card-presence rules need
// explicit checks to map onto distinct validation codes.
func validateRequest(req *ProcessPaymentRequest) error {
	if err := validate.Struct(req); err != nil {
		return domain.ErrValidationFailed.WithCause(err)
	}

	if !req.Amount.IsPositive() {
		return domain.ErrValidationAmountInvalid.WithDetail("amount", req.Amount.String())
	}

	if !currencyPattern.MatchString(req.Currency) {
		return domain.ErrValidationCurrencyInvalid.WithDetail("currency", req.Currency)
	}

	if models.PaymentMethod(req.PaymentMethod) == models.PaymentMethodCard {
		if req.CardToken == "" && req.CardNumber == "" {
			return domain.ErrValidationMissingField.WithDetail("field", "card_token or card_number")
		}
	}

	return nil
}
