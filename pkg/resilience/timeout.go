package resilience

import (
	"context"
	"time"
)

// TimeoutConfig defines the application's timeout hierarchy
//
// Hierarchy (outermost to innermost):
//
//	HTTP Handler (30s)
//	  Service Layer (25s)
//	    Collaborator API (10s - merchant, vault, fraud engine)
//	      Model Inference (2s per backend)
//
// Each layer completes before its parent times out, so a stuck backend cannot
// stall the orchestrator indefinitely.
type TimeoutConfig struct {
	// Handler layer
	HTTPHandler time.Duration

	// Service layer (must be < HTTPHandler)
	Service time.Duration

	// Outbound collaborator calls (merchant, vault, fraud engine)
	Collaborator time.Duration

	// Single model inference inside the dual-inference fan-out
	ModelInference time.Duration

	// Off-critical-path work (event publish, shadow metrics persistence)
	Background time.Duration
}

// DefaultTimeoutConfig returns production timeout values
func DefaultTimeoutConfig() *TimeoutConfig {
	return &TimeoutConfig{
		HTTPHandler:    30 * time.Second,
		Service:        25 * time.Second,
		Collaborator:   10 * time.Second,
		ModelInference: 2 * time.Second,
		Background:     10 * time.Second,
	}
}

// TestTimeoutConfig returns shorter timeouts for testing
func TestTimeoutConfig() *TimeoutConfig {
	return &TimeoutConfig{
		HTTPHandler:    5 * time.Second,
		Service:        4 * time.Second,
		Collaborator:   2 * time.Second,
		ModelInference: 500 * time.Millisecond,
		Background:     1 * time.Second,
	}
}

// HandlerContext creates a context with timeout for HTTP handlers
func (tc *TimeoutConfig) HandlerContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, tc.HTTPHandler)
}

// ServiceContext creates a context with timeout for service layer operations
func (tc *TimeoutConfig) ServiceContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, tc.Service)
}

// CollaboratorContext creates a context for outbound collaborator calls
func (tc *TimeoutConfig) CollaboratorContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, tc.Collaborator)
}

// InferenceContext creates a context for a single model inference
func (tc *TimeoutConfig) InferenceContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, tc.ModelInference)
}

// BackgroundContext creates a context for off-critical-path work
func (tc *TimeoutConfig) BackgroundContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, tc.Background)
}
