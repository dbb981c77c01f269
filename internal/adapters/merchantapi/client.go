package merchantapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/kevin07696/payment-gateway/internal/domain"
	"github.com/kevin07696/payment-gateway/internal/domain/ports"
	httpclient "github.com/kevin07696/payment-gateway/pkg/http"
)

// Client resolves merchants against the merchant directory service
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     ports.Logger
}

// NewClient creates a merchant directory client
func NewClient(baseURL string, timeout time.Duration, logger ports.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: httpclient.NewClient(httpclient.CollaboratorClientConfig(), timeout),
		logger:     logger,
	}
}

// GetMerchant fetches a merchant by ID. Unknown merchants map to
// domain.ErrMerchantNotFound; transport and server failures map to
// domain.ErrMerchantUnavailable so callers can distinguish "does not exist"
// from "cannot tell right now".
func (c *Client) GetMerchant(ctx context.Context, merchantID string) (*ports.MerchantInfo, error) {
	url := fmt.Sprintf("%s/api/v1/merchants/%s", c.baseURL, merchantID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, domain.ErrMerchantUnavailable.WithCause(err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("merchant lookup transport failure",
			ports.String("merchant_id", merchantID),
			ports.Err(err))
		return nil, domain.ErrMerchantUnavailable.WithCause(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, domain.ErrMerchantNotFound.WithDetail("merchant_id", merchantID)
	case resp.StatusCode != http.StatusOK:
		c.logger.Warn("merchant lookup unexpected status",
			ports.String("merchant_id", merchantID),
			ports.Int("status", resp.StatusCode))
		return nil, domain.ErrMerchantUnavailable.WithDetail("status", resp.StatusCode)
	}

	var merchant ports.MerchantInfo
	if err := json.NewDecoder(resp.Body).Decode(&merchant); err != nil {
		return nil, domain.ErrMerchantUnavailable.WithCause(err)
	}

	return &merchant, nil
}
