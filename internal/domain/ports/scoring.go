package ports

import "context"

// ScoringBackend wraps a single loaded model. Stateless: feature vector in,
// fraud probability (0.0-1.0) out.
type ScoringBackend interface {
	Name() string
	Score(ctx context.Context, features []float64) (float64, error)
}

// VelocityStore tracks per-user transaction velocity over a sliding window.
// Increment must be atomic in a single round trip; the window expiry reset is
// best-effort.
type VelocityStore interface {
	Increment(ctx context.Context, userID string) (int64, error)
}
