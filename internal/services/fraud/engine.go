package fraud

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kevin07696/payment-gateway/internal/domain/models"
	"github.com/kevin07696/payment-gateway/internal/domain/ports"
	"github.com/kevin07696/payment-gateway/pkg/observability"
)

// EngineConfig holds the decision thresholds for the fraud engine
type EngineConfig struct {
	// ColdStartLimit is the maximum amount auto-approved for users with no
	// transaction history
	ColdStartLimit decimal.Decimal

	// NewUserPrefix marks user IDs that have no history yet
	NewUserPrefix string

	// BlockThreshold and ReviewThreshold partition the score range:
	// score > BlockThreshold blocks, score > ReviewThreshold flags for
	// manual review, anything else approves
	BlockThreshold  float64
	ReviewThreshold float64

	// DefaultScore substitutes for a model that timed out or errored
	DefaultScore float64

	// InferenceTimeout bounds each model call independently
	InferenceTimeout time.Duration
}

// DefaultEngineConfig returns production threshold values
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		ColdStartLimit:   decimal.NewFromInt(200),
		NewUserPrefix:    "new_",
		BlockThreshold:   0.8,
		ReviewThreshold:  0.3,
		DefaultScore:     0.05,
		InferenceTimeout: 2 * time.Second,
	}
}

// Engine decides fraud outcomes for transactions. Known users get scored by
// the champion and challenger models concurrently; the champion alone
// determines the decision, while the challenger runs in shadow mode and its
// divergences feed the shadow recorder. Users with no history skip ML
// entirely and go through deterministic cold-start rules.
type Engine struct {
	cfg        EngineConfig
	enricher   *Enricher
	champion   ports.ScoringBackend
	challenger ports.ScoringBackend
	shadow     *ShadowRecorder
	logger     ports.Logger
}

// NewEngine creates a fraud decision engine. shadow may be nil to disable
// challenger comparison recording.
func NewEngine(cfg EngineConfig, enricher *Enricher, champion, challenger ports.ScoringBackend, shadow *ShadowRecorder, logger ports.Logger) *Engine {
	return &Engine{
		cfg:        cfg,
		enricher:   enricher,
		champion:   champion,
		challenger: challenger,
		shadow:     shadow,
		logger:     logger,
	}
}

// CheckFraud evaluates a transaction and returns a decision. It degrades
// rather than fails: enrichment trouble yields MANUAL_REVIEW, model trouble
// yields the default low score, and an error return is reserved for cases
// where no decision could be produced at all.
func (e *Engine) CheckFraud(ctx context.Context, req *models.FraudCheckRequest) (*models.FraudResult, error) {
	if e.isColdStart(req) {
		result := e.applyColdStartRules(req)
		observability.RecordFraudDecision(string(result.Decision), "cold_start")
		e.logger.Info("cold start rules applied",
			ports.String("transaction_id", req.TransactionID),
			ports.String("decision", string(result.Decision)))
		return result, nil
	}

	features, err := e.enricher.BuildFeatures(ctx, req)
	if err != nil {
		e.logger.Warn("feature enrichment failed, degrading to manual review",
			ports.String("transaction_id", req.TransactionID),
			ports.Err(err))
		observability.RecordFraudDecision(string(models.DecisionManualReview), "degraded")
		return &models.FraudResult{
			TransactionID: req.TransactionID,
			RiskScore:     0.5,
			Decision:      models.DecisionManualReview,
			RiskFactors:   []string{"Velocity Data Unavailable"},
		}, nil
	}

	dual := e.runDualInference(ctx, features)

	if e.shadow != nil {
		e.shadow.Record(req.TransactionID, dual)
	}

	observability.RecordFraudDecision(string(dual.ChampionDecision), "champion")
	e.logger.Info("fraud decision",
		ports.String("transaction_id", req.TransactionID),
		ports.Float64("champion_score", dual.ChampionScore),
		ports.Float64("challenger_score", dual.ChallengerScore),
		ports.String("decision", string(dual.ChampionDecision)),
		ports.Int64("champion_ms", dual.ChampionInferenceMs))

	return &models.FraudResult{
		TransactionID: req.TransactionID,
		RiskScore:     dual.ChampionScore,
		Decision:      dual.ChampionDecision,
		RiskFactors:   []string{"Source: Champion (Logistic Regression)"},
	}, nil
}

// runDualInference scores the same feature vector with both models in
// parallel. Each model has its own timeout and failure isolation: a slow or
// broken challenger never delays or degrades the champion path, and vice
// versa.
func (e *Engine) runDualInference(ctx context.Context, features []float64) *models.DualInferenceResult {
	var (
		championScore, challengerScore float64
		championMs, challengerMs       int64
	)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		championScore, championMs = e.scoreTimed(ctx, e.champion, "champion", features)
	}()
	go func() {
		defer wg.Done()
		challengerScore, challengerMs = e.scoreTimed(ctx, e.challenger, "challenger", features)
	}()
	wg.Wait()

	return &models.DualInferenceResult{
		ChampionScore:         championScore,
		ChallengerScore:       challengerScore,
		ChampionDecision:      e.scoreToDecision(championScore),
		ChallengerDecision:    e.scoreToDecision(challengerScore),
		ChampionInferenceMs:   championMs,
		ChallengerInferenceMs: challengerMs,
	}
}

// scoreTimed runs one model under its own timeout. Any error, timeout, or
// panic collapses to the configured default score so the other model's result
// stands on its own.
func (e *Engine) scoreTimed(ctx context.Context, backend ports.ScoringBackend, label string, features []float64) (score float64, elapsedMs int64) {
	score = e.cfg.DefaultScore
	if backend == nil {
		return score, 0
	}

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("model inference panicked",
				ports.String("model", backend.Name()))
			score = e.cfg.DefaultScore
			elapsedMs = 0
		}
	}()

	inferCtx, cancel := context.WithTimeout(ctx, e.cfg.InferenceTimeout)
	defer cancel()

	start := time.Now()
	result, err := backend.Score(inferCtx, features)
	elapsed := time.Since(start)
	observability.ObserveInference(label, elapsed)

	if err != nil {
		e.logger.Error("model inference failed",
			ports.String("model", backend.Name()),
			ports.Err(err))
		return e.cfg.DefaultScore, 0
	}

	return result, elapsed.Milliseconds()
}

func (e *Engine) isColdStart(req *models.FraudCheckRequest) bool {
	return req.UserID == "" || strings.HasPrefix(req.UserID, e.cfg.NewUserPrefix)
}

// applyColdStartRules handles users with no history: a hard amount limit
// instead of model scores
func (e *Engine) applyColdStartRules(req *models.FraudCheckRequest) *models.FraudResult {
	if req.Amount.GreaterThan(e.cfg.ColdStartLimit) {
		return &models.FraudResult{
			TransactionID: req.TransactionID,
			RiskScore:     0.9,
			Decision:      models.DecisionBlock,
			RiskFactors:   []string{"Cold Start Limit Exceeded"},
		}
	}
	return &models.FraudResult{
		TransactionID: req.TransactionID,
		RiskScore:     0.1,
		Decision:      models.DecisionApprove,
		RiskFactors:   []string{"Cold Start - Safe"},
	}
}

func (e *Engine) scoreToDecision(score float64) models.FraudDecision {
	switch {
	case score > e.cfg.BlockThreshold:
		return models.DecisionBlock
	case score > e.cfg.ReviewThreshold:
		return models.DecisionManualReview
	default:
		return models.DecisionApprove
	}
}
