package fraudapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevin07696/payment-gateway/internal/adapters/fraudapi"
	"github.com/kevin07696/payment-gateway/internal/domain"
	"github.com/kevin07696/payment-gateway/internal/domain/models"
	"github.com/kevin07696/payment-gateway/internal/domain/ports"
)

type noopLogger struct{}

func (noopLogger) Info(msg string, fields ...ports.Field)  {}
func (noopLogger) Error(msg string, fields ...ports.Field) {}
func (noopLogger) Warn(msg string, fields ...ports.Field)  {}
func (noopLogger) Debug(msg string, fields ...ports.Field) {}

func fraudRequest() *models.FraudCheckRequest {
	return &models.FraudCheckRequest{
		TransactionID: "txn_1",
		MerchantID:    "merch_1",
		UserID:        "user_1",
		Amount:        decimal.NewFromInt(500),
		Currency:      "USD",
	}
}

func TestCheckFraud_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/fraud/check", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		var req models.FraudCheckRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "txn_1", req.TransactionID)

		json.NewEncoder(w).Encode(&models.FraudResult{
			TransactionID: "txn_1",
			RiskScore:     0.12,
			Decision:      models.DecisionApprove,
		})
	}))
	defer server.Close()

	client := fraudapi.NewClient(server.URL, 2*time.Second, true, noopLogger{})

	result, err := client.CheckFraud(context.Background(), fraudRequest())

	require.NoError(t, err)
	assert.Equal(t, models.DecisionApprove, result.Decision)
	assert.Equal(t, 0.12, result.RiskScore)
}

func TestCheckFraud_FailOpenDegradesToReview(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := fraudapi.NewClient(server.URL, 2*time.Second, true, noopLogger{})

	result, err := client.CheckFraud(context.Background(), fraudRequest())

	require.NoError(t, err)
	assert.Equal(t, models.DecisionManualReview, result.Decision)
	assert.Equal(t, 0.5, result.RiskScore)
	assert.Contains(t, result.RiskFactors, "Fraud Service Unavailable")
}

func TestCheckFraud_FailClosedSurfacesError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := fraudapi.NewClient(server.URL, 2*time.Second, false, noopLogger{})

	_, err := client.CheckFraud(context.Background(), fraudRequest())

	require.Error(t, err)
	assert.Equal(t, domain.ErrorCodeFraudUnavailable, domain.GetErrorCode(err))
}

func TestCheckFraud_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	t.Run("fail open", func(t *testing.T) {
		client := fraudapi.NewClient(server.URL, time.Second, true, noopLogger{})
		result, err := client.CheckFraud(context.Background(), fraudRequest())
		require.NoError(t, err)
		assert.Equal(t, models.DecisionManualReview, result.Decision)
	})

	t.Run("fail closed", func(t *testing.T) {
		client := fraudapi.NewClient(server.URL, time.Second, false, noopLogger{})
		_, err := client.CheckFraud(context.Background(), fraudRequest())
		require.Error(t, err)
	})
}
