package merchantapi_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevin07696/payment-gateway/internal/adapters/merchantapi"
	"github.com/kevin07696/payment-gateway/internal/domain"
	"github.com/kevin07696/payment-gateway/internal/domain/ports"
)

type noopLogger struct{}

func (noopLogger) Info(msg string, fields ...ports.Field)  {}
func (noopLogger) Error(msg string, fields ...ports.Field) {}
func (noopLogger) Warn(msg string, fields ...ports.Field)  {}
func (noopLogger) Debug(msg string, fields ...ports.Field) {}

func TestGetMerchant_Found(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/merchants/merch_1", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"merch_1","name":"Acme","status":"ACTIVE"}`))
	}))
	defer server.Close()

	client := merchantapi.NewClient(server.URL, 2*time.Second, noopLogger{})

	merchant, err := client.GetMerchant(context.Background(), "merch_1")

	require.NoError(t, err)
	assert.Equal(t, "merch_1", merchant.ID)
	assert.Equal(t, "Acme", merchant.Name)
}

func TestGetMerchant_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := merchantapi.NewClient(server.URL, 2*time.Second, noopLogger{})

	_, err := client.GetMerchant(context.Background(), "merch_ghost")

	require.Error(t, err)
	assert.True(t, domain.IsNotFoundError(err))
}

func TestGetMerchant_ServerErrorIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := merchantapi.NewClient(server.URL, 2*time.Second, noopLogger{})

	_, err := client.GetMerchant(context.Background(), "merch_1")

	require.Error(t, err)
	assert.True(t, domain.IsDependencyError(err))
	assert.Equal(t, domain.ErrorCodeMerchantUnavailable, domain.GetErrorCode(err))
}

func TestGetMerchant_TransportFailureIsUnavailable(t *testing.T) {
	// Point at a server that has already gone away
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := merchantapi.NewClient(server.URL, time.Second, noopLogger{})

	_, err := client.GetMerchant(context.Background(), "merch_1")

	require.Error(t, err)
	assert.Equal(t, domain.ErrorCodeMerchantUnavailable, domain.GetErrorCode(err))
}
