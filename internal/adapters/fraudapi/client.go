package fraudapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/kevin07696/payment-gateway/internal/domain"
	"github.com/kevin07696/payment-gateway/internal/domain/models"
	"github.com/kevin07696/payment-gateway/internal/domain/ports"
	httpclient "github.com/kevin07696/payment-gateway/pkg/http"
)

// Client calls a remote fraud decision service. Deployments that run the
// engine in-process wire the engine directly instead; this client exists for
// the split deployment where fraud scoring is its own service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     ports.Logger

	// failOpen selects the unavailability policy: true degrades failures to
	// a MANUAL_REVIEW decision with a mid-range score, false surfaces
	// domain.ErrFraudUnavailable to the caller.
	failOpen bool
}

// NewClient creates a fraud service client with the given unavailability policy
func NewClient(baseURL string, timeout time.Duration, failOpen bool, logger ports.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: httpclient.NewClient(httpclient.CollaboratorClientConfig(), timeout),
		logger:     logger,
		failOpen:   failOpen,
	}
}

// CheckFraud requests a decision for the transaction. Any transport error,
// timeout, or non-200 response goes through the configured unavailability
// policy rather than returning a raw error.
func (c *Client) CheckFraud(ctx context.Context, req *models.FraudCheckRequest) (*models.FraudResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return c.unavailable(req, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/fraud/check", bytes.NewReader(body))
	if err != nil {
		return c.unavailable(req, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return c.unavailable(req, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.unavailable(req, domain.ErrFraudUnavailable.WithDetail("status", resp.StatusCode))
	}

	var result models.FraudResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return c.unavailable(req, err)
	}

	return &result, nil
}

func (c *Client) unavailable(req *models.FraudCheckRequest, cause error) (*models.FraudResult, error) {
	if !c.failOpen {
		c.logger.Error("fraud service unavailable, failing closed",
			ports.String("transaction_id", req.TransactionID),
			ports.Err(cause))
		return nil, domain.ErrFraudUnavailable.WithCause(cause)
	}

	c.logger.Warn("fraud service unavailable, failing open to manual review",
		ports.String("transaction_id", req.TransactionID),
		ports.Err(cause))
	return &models.FraudResult{
		TransactionID: req.TransactionID,
		RiskScore:     0.5,
		Decision:      models.DecisionManualReview,
		RiskFactors:   []string{"Fraud Service Unavailable"},
	}, nil
}
