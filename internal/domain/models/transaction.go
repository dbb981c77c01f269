package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionStatus represents the lifecycle state of a transaction.
// Transitions are monotonic: INITIATED -> AUTHORIZED -> CAPTURED -> SETTLED,
// with FAILED reachable from INITIATED or AUTHORIZED only, and
// REFUNDED/CANCELLED as separate terminal branches.
type TransactionStatus string

const (
	StatusInitiated  TransactionStatus = "INITIATED"
	StatusAuthorized TransactionStatus = "AUTHORIZED"
	StatusCaptured   TransactionStatus = "CAPTURED"
	StatusSettled    TransactionStatus = "SETTLED"
	StatusFailed     TransactionStatus = "FAILED"
	StatusRefunded   TransactionStatus = "REFUNDED"
	StatusCancelled  TransactionStatus = "CANCELLED"
)

// PaymentMethod represents the payment instrument type
type PaymentMethod string

const (
	PaymentMethodCard       PaymentMethod = "CARD"
	PaymentMethodUPI        PaymentMethod = "UPI"
	PaymentMethodNetBanking PaymentMethod = "NET_BANKING"
	PaymentMethodWallet     PaymentMethod = "WALLET"
)

// Transaction is the unit of work owned by the payment orchestrator.
// It is created on the first processing attempt, mutated only by the
// orchestrator, and never deleted (append-only audit trail).
type Transaction struct {
	ID                string            `json:"id"`
	MerchantID        string            `json:"merchant_id"`
	Amount            decimal.Decimal   `json:"amount"`
	Currency          string            `json:"currency"`
	Status            TransactionStatus `json:"status"`
	PaymentMethod     PaymentMethod     `json:"payment_method"`
	CardToken         string            `json:"card_token,omitempty"`
	AuthorizationCode string            `json:"authorization_code,omitempty"`
	ReferenceNumber   string            `json:"reference_number,omitempty"`
	FailureReason     string            `json:"failure_reason,omitempty"`
	IdempotencyKey    string            `json:"idempotency_key,omitempty"`
	Description       string            `json:"description,omitempty"`
	CustomerEmail     string            `json:"customer_email,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
	SettledAt         *time.Time        `json:"settled_at,omitempty"`
}

// statusRank orders forward-progress states; terminal branches are handled
// separately in CanTransitionTo.
var statusRank = map[TransactionStatus]int{
	StatusInitiated:  0,
	StatusAuthorized: 1,
	StatusCaptured:   2,
	StatusSettled:    3,
}

// CanTransitionTo reports whether moving to next respects the state machine.
// No transition may move backward.
func (t *Transaction) CanTransitionTo(next TransactionStatus) bool {
	switch next {
	case StatusFailed:
		// FAILED is reachable from INITIATED or AUTHORIZED only
		return t.Status == StatusInitiated || t.Status == StatusAuthorized
	case StatusRefunded:
		return t.Status == StatusCaptured || t.Status == StatusSettled
	case StatusCancelled:
		return t.Status == StatusInitiated || t.Status == StatusAuthorized
	}

	current, ok := statusRank[t.Status]
	if !ok {
		return false
	}
	target, ok := statusRank[next]
	if !ok {
		return false
	}
	return target == current+1
}

// CanBeCaptured returns true if the transaction can be captured
func (t *Transaction) CanBeCaptured() bool {
	return t.Status == StatusAuthorized
}

// IsTerminal returns true if no further processing will mutate the transaction
func (t *Transaction) IsTerminal() bool {
	switch t.Status {
	case StatusSettled, StatusFailed, StatusRefunded, StatusCancelled:
		return true
	}
	return false
}
