package fraud

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/kevin07696/payment-gateway/internal/domain/models"
	"github.com/kevin07696/payment-gateway/internal/domain/ports"
)

// FeatureCount is the fixed feature vector width shared by both models
const FeatureCount = 11

// referenceAvgTicket is the baseline ticket size used for the deviation slot
const referenceAvgTicket = 1000.0

// Enricher builds the feature vector for a transaction from request data plus
// a sliding per-user velocity counter. Vectors are computed freshly per
// request; the velocity counter is the only state carried across requests.
type Enricher struct {
	velocity ports.VelocityStore
	logger   ports.Logger
	now      func() time.Time
}

// EnricherOption customizes an Enricher
type EnricherOption func(*Enricher)

// WithClock replaces the time source behind the night-time feature
func WithClock(now func() time.Time) EnricherOption {
	return func(e *Enricher) { e.now = now }
}

// NewEnricher creates a feature enricher backed by the given velocity store
func NewEnricher(velocity ports.VelocityStore, logger ports.Logger, opts ...EnricherOption) *Enricher {
	e := &Enricher{
		velocity: velocity,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// BuildFeatures returns the feature vector for req:
//
//	[0] transaction amount
//	[1] velocity count (atomic increment, 1h sliding window)
//	[2] night-time indicator (local hour in [22,6))
//	[3] absolute deviation from reference average ticket
//	[4] new-device indicator (no device fingerprint supplied)
//	[5-10] reserved, zero-filled
func (e *Enricher) BuildFeatures(ctx context.Context, req *models.FraudCheckRequest) ([]float64, error) {
	count, err := e.velocity.Increment(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("increment velocity counter: %w", err)
	}

	amount, _ := req.Amount.Float64()

	features := make([]float64, FeatureCount)
	features[0] = amount
	features[1] = float64(count)
	if e.isNightTime() {
		features[2] = 1.0
	}
	features[3] = math.Abs(amount - referenceAvgTicket)
	if req.DeviceFingerprint == "" {
		features[4] = 1.0
	}

	return features, nil
}

func (e *Enricher) isNightTime() bool {
	hour := e.now().Hour()
	return hour >= 22 || hour < 6
}
