package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevin07696/payment-gateway/internal/domain"
)

func TestDomainError_ErrorString(t *testing.T) {
	err := domain.NewDomainError(domain.ErrorCodeTxnNotFound, "transaction not found")
	assert.Equal(t, "TXN_NOT_FOUND: transaction not found", err.Error())

	wrapped := err.WithCause(errors.New("row missing"))
	assert.Contains(t, wrapped.Error(), "row missing")
}

func TestDomainError_WithDetailDoesNotMutateSentinel(t *testing.T) {
	before := len(domain.ErrTxnNotFound.Details)

	detailed := domain.ErrTxnNotFound.WithDetail("transaction_id", "txn_1")

	assert.Len(t, domain.ErrTxnNotFound.Details, before)
	assert.Equal(t, "txn_1", detailed.Details["transaction_id"])
}

func TestDomainError_IsMatchesByCode(t *testing.T) {
	detailed := domain.ErrIdempotencyConflict.WithDetail("idempotency_key", "k1")
	wrapped := fmt.Errorf("create transaction: %w", detailed)

	assert.ErrorIs(t, wrapped, domain.ErrIdempotencyConflict)
	assert.NotErrorIs(t, wrapped, domain.ErrTxnNotFound)
}

func TestPredicates(t *testing.T) {
	cases := []struct {
		err       error
		validation, notFound, dependency, invariant bool
	}{
		{domain.ErrValidationAmountInvalid, true, false, false, false},
		{domain.ErrValidationCurrencyInvalid, true, false, false, false},
		{domain.ErrMerchantNotFound, false, true, false, false},
		{domain.ErrTxnNotFound, false, true, false, false},
		{domain.ErrMerchantUnavailable, false, false, true, false},
		{domain.ErrVaultError, false, false, true, false},
		{domain.ErrFraudUnavailable, false, false, true, false},
		{domain.ErrTxnInvalidState, false, false, false, true},
	}

	for _, tc := range cases {
		t.Run(string(domain.GetErrorCode(tc.err)), func(t *testing.T) {
			assert.Equal(t, tc.validation, domain.IsValidationError(tc.err))
			assert.Equal(t, tc.notFound, domain.IsNotFoundError(tc.err))
			assert.Equal(t, tc.dependency, domain.IsDependencyError(tc.err))
			assert.Equal(t, tc.invariant, domain.IsInvariantViolation(tc.err))
		})
	}
}

func TestPredicates_SeeThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", domain.ErrMerchantNotFound.WithDetail("merchant_id", "m1"))

	assert.True(t, domain.IsNotFoundError(wrapped))
	assert.Equal(t, domain.ErrorCodeMerchantNotFound, domain.GetErrorCode(wrapped))
}

func TestGetErrorCode_NonDomainError(t *testing.T) {
	require.Equal(t, domain.ErrorCode(""), domain.GetErrorCode(errors.New("plain")))
}
