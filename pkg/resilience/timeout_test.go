package resilience

import (
	"context"
	"testing"
	"time"
)

func TestDefaultTimeoutConfig(t *testing.T) {
	config := DefaultTimeoutConfig()

	// Verify the hierarchy is correctly ordered, outermost to innermost
	if config.HTTPHandler <= config.Service {
		t.Errorf("HTTPHandler (%v) must be > Service (%v)", config.HTTPHandler, config.Service)
	}

	if config.Service <= config.Collaborator {
		t.Errorf("Service (%v) must be > Collaborator (%v)", config.Service, config.Collaborator)
	}

	if config.Collaborator <= config.ModelInference {
		t.Errorf("Collaborator (%v) must be > ModelInference (%v)", config.Collaborator, config.ModelInference)
	}

	// Verify production values
	if config.HTTPHandler != 30*time.Second {
		t.Errorf("Expected HTTPHandler = 30s, got %v", config.HTTPHandler)
	}

	if config.Collaborator != 10*time.Second {
		t.Errorf("Expected Collaborator = 10s, got %v", config.Collaborator)
	}

	if config.ModelInference != 2*time.Second {
		t.Errorf("Expected ModelInference = 2s, got %v", config.ModelInference)
	}
}

func TestTestTimeoutConfig(t *testing.T) {
	config := TestTimeoutConfig()

	// Test timeouts are shorter but keep the same hierarchy
	if config.HTTPHandler >= 10*time.Second {
		t.Errorf("Test timeouts should be < 10s, got %v", config.HTTPHandler)
	}

	if config.HTTPHandler <= config.Service {
		t.Errorf("HTTPHandler (%v) must be > Service (%v)", config.HTTPHandler, config.Service)
	}

	if config.Service <= config.Collaborator {
		t.Errorf("Service (%v) must be > Collaborator (%v)", config.Service, config.Collaborator)
	}

	if config.Collaborator <= config.ModelInference {
		t.Errorf("Collaborator (%v) must be > ModelInference (%v)", config.Collaborator, config.ModelInference)
	}
}

func TestTimeoutConfig_Contexts(t *testing.T) {
	config := TestTimeoutConfig()

	tests := []struct {
		name    string
		derive  func(context.Context) (context.Context, context.CancelFunc)
		timeout time.Duration
	}{
		{"handler", config.HandlerContext, config.HTTPHandler},
		{"service", config.ServiceContext, config.Service},
		{"collaborator", config.CollaboratorContext, config.Collaborator},
		{"inference", config.InferenceContext, config.ModelInference},
		{"background", config.BackgroundContext, config.Background},
	}

	for _, tt := range tests {
		ctx, cancel := tt.derive(context.Background())

		deadline, ok := ctx.Deadline()
		if !ok {
			t.Errorf("%s: expected a deadline, got none", tt.name)
			cancel()
			continue
		}

		remaining := time.Until(deadline)
		if remaining > tt.timeout {
			t.Errorf("%s: deadline %v exceeds configured timeout %v", tt.name, remaining, tt.timeout)
		}

		cancel()
		if ctx.Err() == nil {
			t.Errorf("%s: expected context error after cancel", tt.name)
		}
	}
}
