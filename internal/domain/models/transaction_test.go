package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kevin07696/payment-gateway/internal/domain/models"
)

func TestCanTransitionTo(t *testing.T) {
	cases := []struct {
		from    models.TransactionStatus
		to      models.TransactionStatus
		allowed bool
	}{
		{models.StatusInitiated, models.StatusAuthorized, true},
		{models.StatusInitiated, models.StatusFailed, true},
		{models.StatusAuthorized, models.StatusCaptured, true},
		{models.StatusAuthorized, models.StatusFailed, true},
		{models.StatusCaptured, models.StatusSettled, true},

		// No regressions
		{models.StatusAuthorized, models.StatusInitiated, false},
		{models.StatusCaptured, models.StatusAuthorized, false},
		{models.StatusSettled, models.StatusCaptured, false},

		// FAILED is only reachable from INITIATED or AUTHORIZED
		{models.StatusCaptured, models.StatusFailed, false},
		{models.StatusSettled, models.StatusFailed, false},

		// Terminal states go nowhere
		{models.StatusFailed, models.StatusAuthorized, false},
		{models.StatusCancelled, models.StatusAuthorized, false},
		{models.StatusRefunded, models.StatusSettled, false},
	}

	for _, tc := range cases {
		t.Run(string(tc.from)+"->"+string(tc.to), func(t *testing.T) {
			txn := &models.Transaction{Status: tc.from}
			assert.Equal(t, tc.allowed, txn.CanTransitionTo(tc.to))
		})
	}
}

func TestCanBeCaptured(t *testing.T) {
	assert.True(t, (&models.Transaction{Status: models.StatusAuthorized}).CanBeCaptured())
	assert.False(t, (&models.Transaction{Status: models.StatusInitiated}).CanBeCaptured())
	assert.False(t, (&models.Transaction{Status: models.StatusCaptured}).CanBeCaptured())
	assert.False(t, (&models.Transaction{Status: models.StatusFailed}).CanBeCaptured())
}

func TestIsTerminal(t *testing.T) {
	for status, terminal := range map[models.TransactionStatus]bool{
		models.StatusInitiated:  false,
		models.StatusAuthorized: false,
		models.StatusCaptured:   false,
		models.StatusSettled:    true,
		models.StatusFailed:     true,
		models.StatusRefunded:   true,
		models.StatusCancelled:  true,
	} {
		txn := &models.Transaction{Status: status}
		assert.Equal(t, terminal, txn.IsTerminal(), "status %s", status)
	}
}

func TestIsBlockEquivalent(t *testing.T) {
	assert.True(t, models.DecisionBlock.IsBlockEquivalent())
	assert.True(t, models.DecisionManualReview.IsBlockEquivalent())
	assert.False(t, models.DecisionApprove.IsBlockEquivalent())
}
