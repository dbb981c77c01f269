package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// FraudDecision is the verdict the decision engine returns for a transaction
type FraudDecision string

const (
	DecisionApprove      FraudDecision = "APPROVE"
	DecisionManualReview FraudDecision = "MANUAL_REVIEW"
	DecisionBlock        FraudDecision = "BLOCK"
)

// IsBlockEquivalent reports whether the decision stops straight-through
// processing. MANUAL_REVIEW counts as block-equivalent for model comparison.
func (d FraudDecision) IsBlockEquivalent() bool {
	return d == DecisionBlock || d == DecisionManualReview
}

// FraudCheckRequest carries the transaction context the engine scores.
// Value object: produced per call, never persisted by the orchestrator.
type FraudCheckRequest struct {
	TransactionID     string          `json:"transaction_id"`
	MerchantID        string          `json:"merchant_id"`
	UserID            string          `json:"user_id,omitempty"`
	Amount            decimal.Decimal `json:"amount"`
	Currency          string          `json:"currency,omitempty"`
	IPAddress         string          `json:"ip_address,omitempty"`
	DeviceFingerprint string          `json:"device_fingerprint,omitempty"`
	Email             string          `json:"email,omitempty"`
}

// FraudResult is the engine's authoritative answer, always derived from the
// champion model (or the cold-start rules).
type FraudResult struct {
	TransactionID string        `json:"transaction_id"`
	RiskScore     float64       `json:"risk_score"`
	Decision      FraudDecision `json:"decision"`
	RiskFactors   []string      `json:"risk_factors,omitempty"`
}

// DualInferenceResult holds both models' verdicts for shadow comparison.
// The challenger never affects what is returned to the caller.
type DualInferenceResult struct {
	ChampionScore         float64       `json:"champion_score"`
	ChallengerScore       float64       `json:"challenger_score"`
	ChampionDecision      FraudDecision `json:"champion_decision"`
	ChallengerDecision    FraudDecision `json:"challenger_decision"`
	ChampionInferenceMs   int64         `json:"champion_inference_ms"`
	ChallengerInferenceMs int64         `json:"challenger_inference_ms"`
}

// DisagreementType classifies champion/challenger (dis)agreement
type DisagreementType string

const (
	DisagreementBothFraud     DisagreementType = "BOTH_FRAUD"
	DisagreementBothLegit     DisagreementType = "BOTH_LEGIT"
	DisagreementMissedFraud   DisagreementType = "MISSED_FRAUD"   // champion under-reacted
	DisagreementFalsePositive DisagreementType = "FALSE_POSITIVE" // champion over-reacted
	DisagreementAgreement     DisagreementType = "AGREEMENT"
)

// ModelDisagreement is a sampled shadow-metrics record. Created
// asynchronously, never mutated, retained indefinitely for offline analysis.
type ModelDisagreement struct {
	ID                    int64            `json:"id"`
	TransactionID         string           `json:"transaction_id"`
	ChampionScore         float64          `json:"champion_score"`
	ChallengerScore       float64          `json:"challenger_score"`
	ChampionDecision      FraudDecision    `json:"champion_decision"`
	ChallengerDecision    FraudDecision    `json:"challenger_decision"`
	Type                  DisagreementType `json:"type"`
	ChampionInferenceMs   int64            `json:"champion_inference_ms"`
	ChallengerInferenceMs int64            `json:"challenger_inference_ms"`
	CreatedAt             time.Time        `json:"created_at"`
}

// DisagreementStats aggregates disagreement counts for offline model comparison
type DisagreementStats struct {
	BothFraud        int64   `json:"both_fraud"`
	BothLegit        int64   `json:"both_legit"`
	MissedFraud      int64   `json:"missed_fraud"`
	FalsePositive    int64   `json:"false_positive"`
	Total            int64   `json:"total"`
	DisagreementRate float64 `json:"disagreement_rate"`
}
