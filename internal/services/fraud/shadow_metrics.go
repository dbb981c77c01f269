package fraud

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/kevin07696/payment-gateway/internal/domain/models"
	"github.com/kevin07696/payment-gateway/internal/domain/ports"
	"github.com/kevin07696/payment-gateway/pkg/observability"
)

// Classify compares the two model decisions on block-equivalence: BLOCK and
// MANUAL_REVIEW both count as flagging fraud, APPROVE does not. The exact
// score gap is irrelevant; only whether the models would have acted
// differently.
func Classify(champion, challenger models.FraudDecision) models.DisagreementType {
	championFlags := champion.IsBlockEquivalent()
	challengerFlags := challenger.IsBlockEquivalent()

	switch {
	case championFlags && challengerFlags:
		return models.DisagreementBothFraud
	case !championFlags && !challengerFlags:
		return models.DisagreementBothLegit
	case !championFlags && challengerFlags:
		// Challenger flagged what the champion let through
		return models.DisagreementMissedFraud
	default:
		// Champion flagged what the challenger would have approved
		return models.DisagreementFalsePositive
	}
}

// ShadowRecorder captures champion/challenger comparisons off the hot path.
// True disagreements always persist; agreements persist at a small sample
// rate so baseline volume stays known without flooding storage. Recording
// runs on a detached goroutine and never surfaces errors to the payment flow.
type ShadowRecorder struct {
	store      ports.DisagreementRepository
	logger     ports.Logger
	sampleRate float64
	sample     func() float64
	timeout    time.Duration

	wg sync.WaitGroup
}

// RecorderOption customizes a ShadowRecorder
type RecorderOption func(*ShadowRecorder)

// WithSampleRate overrides the agreement sampling rate
func WithSampleRate(rate float64) RecorderOption {
	return func(r *ShadowRecorder) { r.sampleRate = rate }
}

// WithSampler replaces the random source behind agreement sampling
func WithSampler(sample func() float64) RecorderOption {
	return func(r *ShadowRecorder) { r.sample = sample }
}

// NewShadowRecorder creates a recorder persisting to store with a 1%
// agreement sample rate
func NewShadowRecorder(store ports.DisagreementRepository, logger ports.Logger, opts ...RecorderOption) *ShadowRecorder {
	r := &ShadowRecorder{
		store:      store,
		logger:     logger,
		sampleRate: 0.01,
		sample:     rand.Float64,
		timeout:    5 * time.Second,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record classifies and persists a dual inference comparison asynchronously.
// Safe to call from the request path: it returns immediately and any failure
// inside is logged and swallowed.
func (r *ShadowRecorder) Record(transactionID string, result *models.DualInferenceResult) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer func() {
			if p := recover(); p != nil {
				r.logger.Error("shadow metrics recording panicked",
					ports.String("transaction_id", transactionID))
			}
		}()
		r.record(transactionID, result)
	}()
}

func (r *ShadowRecorder) record(transactionID string, result *models.DualInferenceResult) {
	disagreementType := Classify(result.ChampionDecision, result.ChallengerDecision)

	isDisagreement := disagreementType == models.DisagreementMissedFraud ||
		disagreementType == models.DisagreementFalsePositive
	if !isDisagreement && r.sample() >= r.sampleRate {
		return
	}

	comparison := &models.ModelDisagreement{
		TransactionID:         transactionID,
		ChampionScore:         result.ChampionScore,
		ChallengerScore:       result.ChallengerScore,
		ChampionDecision:      result.ChampionDecision,
		ChallengerDecision:    result.ChallengerDecision,
		Type:                  disagreementType,
		ChampionInferenceMs:   result.ChampionInferenceMs,
		ChallengerInferenceMs: result.ChallengerInferenceMs,
		CreatedAt:             time.Now().UTC(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	if err := r.store.Save(ctx, comparison); err != nil {
		r.logger.Warn("failed to persist model comparison",
			ports.String("transaction_id", transactionID),
			ports.String("disagreement_type", string(disagreementType)),
			ports.Err(err))
		return
	}

	observability.RecordModelDisagreement(string(disagreementType))
}

// Wait blocks until all in-flight recordings finish. Used at shutdown and in
// tests.
func (r *ShadowRecorder) Wait() {
	r.wg.Wait()
}

// Stats aggregates persisted comparisons into disagreement counts and the
// overall disagreement rate
func (r *ShadowRecorder) Stats(ctx context.Context) (*models.DisagreementStats, error) {
	total, err := r.store.Count(ctx)
	if err != nil {
		return nil, err
	}

	stats := &models.DisagreementStats{Total: total}
	if total == 0 {
		return stats, nil
	}

	if stats.BothFraud, err = r.store.CountByType(ctx, models.DisagreementBothFraud); err != nil {
		return nil, err
	}
	if stats.BothLegit, err = r.store.CountByType(ctx, models.DisagreementBothLegit); err != nil {
		return nil, err
	}
	if stats.MissedFraud, err = r.store.CountByType(ctx, models.DisagreementMissedFraud); err != nil {
		return nil, err
	}
	if stats.FalsePositive, err = r.store.CountByType(ctx, models.DisagreementFalsePositive); err != nil {
		return nil, err
	}

	disagreements := stats.MissedFraud + stats.FalsePositive
	stats.DisagreementRate = float64(disagreements) / float64(total) * 100.0

	return stats, nil
}
