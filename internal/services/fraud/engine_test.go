package fraud_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kevin07696/payment-gateway/internal/domain/models"
	"github.com/kevin07696/payment-gateway/internal/domain/ports"
	"github.com/kevin07696/payment-gateway/internal/services/fraud"
)

// MockVelocityStore mocks the velocity counter
type MockVelocityStore struct {
	mock.Mock
}

func (m *MockVelocityStore) Increment(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

// MockDisagreementRepository mocks the comparison store
type MockDisagreementRepository struct {
	mock.Mock
}

func (m *MockDisagreementRepository) Save(ctx context.Context, disagreement *models.ModelDisagreement) error {
	args := m.Called(ctx, disagreement)
	return args.Error(0)
}

func (m *MockDisagreementRepository) CountByType(ctx context.Context, disagreementType models.DisagreementType) (int64, error) {
	args := m.Called(ctx, disagreementType)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDisagreementRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockLogger discards all log output
type MockLogger struct{}

func (m *MockLogger) Info(msg string, fields ...ports.Field)  {}
func (m *MockLogger) Error(msg string, fields ...ports.Field) {}
func (m *MockLogger) Warn(msg string, fields ...ports.Field)  {}
func (m *MockLogger) Debug(msg string, fields ...ports.Field) {}

// stubScorer returns a fixed score or error
type stubScorer struct {
	name  string
	score float64
	err   error
}

func (s *stubScorer) Name() string { return s.name }

func (s *stubScorer) Score(_ context.Context, _ []float64) (float64, error) {
	return s.score, s.err
}

// panicScorer simulates a crashing model backend
type panicScorer struct{}

func (s *panicScorer) Name() string { return "panic" }

func (s *panicScorer) Score(_ context.Context, _ []float64) (float64, error) {
	panic("model runtime crashed")
}

func newEngine(velocity ports.VelocityStore, champion, challenger ports.ScoringBackend) *fraud.Engine {
	return fraud.NewEngine(
		fraud.DefaultEngineConfig(),
		fraud.NewEnricher(velocity, &MockLogger{}),
		champion,
		challenger,
		nil,
		&MockLogger{},
	)
}

func checkRequest(userID string, amount float64) *models.FraudCheckRequest {
	return &models.FraudCheckRequest{
		TransactionID:     "txn_1",
		MerchantID:        "merch_1",
		UserID:            userID,
		Amount:            decimal.NewFromFloat(amount),
		Currency:          "USD",
		DeviceFingerprint: "fp_abc",
	}
}

func TestCheckFraud_ColdStartBlocksAboveLimit(t *testing.T) {
	velocity := new(MockVelocityStore)
	engine := newEngine(velocity, &stubScorer{score: 0.0}, &stubScorer{score: 0.0})

	result, err := engine.CheckFraud(context.Background(), checkRequest("new_42", 250))

	require.NoError(t, err)
	assert.Equal(t, models.DecisionBlock, result.Decision)
	assert.Equal(t, 0.9, result.RiskScore)
	assert.Contains(t, result.RiskFactors, "Cold Start Limit Exceeded")
	velocity.AssertNotCalled(t, "Increment")
}

func TestCheckFraud_ColdStartApprovesSmallAmounts(t *testing.T) {
	velocity := new(MockVelocityStore)
	engine := newEngine(velocity, &stubScorer{score: 0.99}, &stubScorer{score: 0.99})

	result, err := engine.CheckFraud(context.Background(), checkRequest("new_42", 50))

	require.NoError(t, err)
	assert.Equal(t, models.DecisionApprove, result.Decision)
	assert.Equal(t, 0.1, result.RiskScore)
	assert.Contains(t, result.RiskFactors, "Cold Start - Safe")
}

func TestCheckFraud_EmptyUserIDIsColdStart(t *testing.T) {
	velocity := new(MockVelocityStore)
	engine := newEngine(velocity, &stubScorer{score: 0.0}, &stubScorer{score: 0.0})

	result, err := engine.CheckFraud(context.Background(), checkRequest("", 500))

	require.NoError(t, err)
	assert.Equal(t, models.DecisionBlock, result.Decision)
	velocity.AssertNotCalled(t, "Increment")
}

func TestCheckFraud_ChampionIsAuthoritative(t *testing.T) {
	velocity := new(MockVelocityStore)
	velocity.On("Increment", mock.Anything, "user_7").Return(int64(2), nil)

	engine := newEngine(velocity,
		&stubScorer{name: "champion", score: 0.95},
		&stubScorer{name: "challenger", score: 0.01})

	result, err := engine.CheckFraud(context.Background(), checkRequest("user_7", 500))

	require.NoError(t, err)
	assert.Equal(t, models.DecisionBlock, result.Decision)
	assert.Equal(t, 0.95, result.RiskScore)
	assert.Contains(t, result.RiskFactors, "Source: Champion (Logistic Regression)")
}

func TestCheckFraud_ChallengerNeverAffectsResult(t *testing.T) {
	velocity := new(MockVelocityStore)
	velocity.On("Increment", mock.Anything, "user_7").Return(int64(1), nil)

	engine := newEngine(velocity,
		&stubScorer{name: "champion", score: 0.05},
		&stubScorer{name: "challenger", score: 0.99})

	result, err := engine.CheckFraud(context.Background(), checkRequest("user_7", 500))

	require.NoError(t, err)
	assert.Equal(t, models.DecisionApprove, result.Decision)
	assert.Equal(t, 0.05, result.RiskScore)
}

func TestCheckFraud_ThresholdBoundaries(t *testing.T) {
	cases := []struct {
		score    float64
		decision models.FraudDecision
	}{
		{0.81, models.DecisionBlock},
		{0.8, models.DecisionManualReview},
		{0.31, models.DecisionManualReview},
		{0.3, models.DecisionApprove},
		{0.05, models.DecisionApprove},
	}

	for _, tc := range cases {
		velocity := new(MockVelocityStore)
		velocity.On("Increment", mock.Anything, mock.Anything).Return(int64(1), nil)

		engine := newEngine(velocity, &stubScorer{score: tc.score}, &stubScorer{score: tc.score})

		result, err := engine.CheckFraud(context.Background(), checkRequest("user_7", 500))

		require.NoError(t, err)
		assert.Equal(t, tc.decision, result.Decision, "score %v", tc.score)
	}
}

func TestCheckFraud_ModelFailureYieldsDefaultScore(t *testing.T) {
	velocity := new(MockVelocityStore)
	velocity.On("Increment", mock.Anything, "user_7").Return(int64(1), nil)

	engine := newEngine(velocity,
		&stubScorer{name: "champion", err: assert.AnError},
		&stubScorer{name: "challenger", score: 0.99})

	result, err := engine.CheckFraud(context.Background(), checkRequest("user_7", 500))

	require.NoError(t, err)
	assert.Equal(t, models.DecisionApprove, result.Decision)
	assert.Equal(t, 0.05, result.RiskScore)
}

func TestCheckFraud_ModelPanicIsIsolated(t *testing.T) {
	velocity := new(MockVelocityStore)
	velocity.On("Increment", mock.Anything, "user_7").Return(int64(1), nil)

	engine := newEngine(velocity, &panicScorer{}, &stubScorer{score: 0.99})

	result, err := engine.CheckFraud(context.Background(), checkRequest("user_7", 500))

	require.NoError(t, err)
	assert.Equal(t, 0.05, result.RiskScore)
}

func TestCheckFraud_EnrichmentFailureDegradesToReview(t *testing.T) {
	velocity := new(MockVelocityStore)
	velocity.On("Increment", mock.Anything, "user_7").Return(int64(0), assert.AnError)

	engine := newEngine(velocity, &stubScorer{score: 0.0}, &stubScorer{score: 0.0})

	result, err := engine.CheckFraud(context.Background(), checkRequest("user_7", 500))

	require.NoError(t, err)
	assert.Equal(t, models.DecisionManualReview, result.Decision)
	assert.Equal(t, 0.5, result.RiskScore)
	assert.Contains(t, result.RiskFactors, "Velocity Data Unavailable")
}

func TestCheckFraud_HandsOffToShadowRecorder(t *testing.T) {
	velocity := new(MockVelocityStore)
	velocity.On("Increment", mock.Anything, "user_7").Return(int64(1), nil)

	store := new(MockDisagreementRepository)
	store.On("Save", mock.Anything, mock.MatchedBy(func(d *models.ModelDisagreement) bool {
		return d.Type == models.DisagreementFalsePositive && d.TransactionID == "txn_1"
	})).Return(nil)

	recorder := fraud.NewShadowRecorder(store, &MockLogger{})
	engine := fraud.NewEngine(
		fraud.DefaultEngineConfig(),
		fraud.NewEnricher(velocity, &MockLogger{}),
		&stubScorer{name: "champion", score: 0.95},
		&stubScorer{name: "challenger", score: 0.05},
		recorder,
		&MockLogger{},
	)

	_, err := engine.CheckFraud(context.Background(), checkRequest("user_7", 500))
	require.NoError(t, err)

	recorder.Wait()
	store.AssertExpectations(t)
}
