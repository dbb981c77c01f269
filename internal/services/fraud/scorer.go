package fraud

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// StandardScaler normalizes features with z = (x - mean) / scale, using
// parameters exported from the offline training pipeline. Slots beyond the
// trained width pass through unscaled.
type StandardScaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// LoadStandardScaler reads scaler parameters from a JSON file. A missing file
// is not an error at the call site: scoring works on raw values without one.
func LoadStandardScaler(path string) (*StandardScaler, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scaler params: %w", err)
	}

	var scaler StandardScaler
	if err := json.Unmarshal(data, &scaler); err != nil {
		return nil, fmt.Errorf("parse scaler params: %w", err)
	}
	if len(scaler.Mean) != len(scaler.Scale) {
		return nil, fmt.Errorf("scaler params mismatch: %d means, %d scales", len(scaler.Mean), len(scaler.Scale))
	}

	return &scaler, nil
}

// Apply returns a scaled copy of features
func (s *StandardScaler) Apply(features []float64) []float64 {
	scaled := make([]float64, len(features))
	for i, x := range features {
		if i < len(s.Mean) && s.Scale[i] != 0 {
			scaled[i] = (x - s.Mean[i]) / s.Scale[i]
		} else {
			scaled[i] = x
		}
	}
	return scaled
}

// LinearScorer is a logistic regression scoring backend:
// sigmoid(dot(weights, features) + bias). It exists so clear-cut cases never
// need a heavyweight model runtime.
type LinearScorer struct {
	name    string
	weights []float64
	bias    float64
	scaler  *StandardScaler
}

// NewLinearScorer creates a scoring backend from trained weights
func NewLinearScorer(name string, weights []float64, bias float64, scaler *StandardScaler) *LinearScorer {
	return &LinearScorer{
		name:    name,
		weights: weights,
		bias:    bias,
		scaler:  scaler,
	}
}

// Weights trained offline via logistic regression.
// Features: [Amount, Velocity, IsNight, AmountDelta, NewDevice, ...zeros].
// Velocity and NewDevice carry the most signal.
var (
	championWeights = []float64{0.0005, 0.85, 0.40, 0.02, 1.50, 0, 0, 0, 0, 0, 0}
	championBias    = -4.5

	// Candidate retrain under shadow evaluation: reacts harder to velocity
	// and device novelty than the champion.
	challengerWeights = []float64{0.0008, 1.10, 0.55, 0.03, 1.80, 0, 0, 0, 0, 0, 0}
	challengerBias    = -4.2
)

// NewChampionScorer returns the production-serving model
func NewChampionScorer(scaler *StandardScaler) *LinearScorer {
	return NewLinearScorer("champion", championWeights, championBias, scaler)
}

// NewChallengerScorer returns the shadow-mode candidate model
func NewChallengerScorer(scaler *StandardScaler) *LinearScorer {
	return NewLinearScorer("challenger", challengerWeights, challengerBias, scaler)
}

// Name returns the model identifier
func (s *LinearScorer) Name() string {
	return s.name
}

// Score computes the fraud probability for a feature vector
func (s *LinearScorer) Score(ctx context.Context, features []float64) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	x := features
	if s.scaler != nil {
		x = s.scaler.Apply(features)
	}

	z := s.bias
	for i := 0; i < len(s.weights) && i < len(x); i++ {
		z += s.weights[i] * x[i]
	}

	return 1.0 / (1.0 + math.Exp(-z)), nil
}
