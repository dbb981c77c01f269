package payment_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kevin07696/payment-gateway/internal/domain"
	"github.com/kevin07696/payment-gateway/internal/domain/models"
	"github.com/kevin07696/payment-gateway/internal/domain/ports"
	paymentHandler "github.com/kevin07696/payment-gateway/internal/handlers/payment"
	paymentsvc "github.com/kevin07696/payment-gateway/internal/services/payment"
)

// MockOrchestrator mocks the payment service behind the handler
type MockOrchestrator struct {
	mock.Mock
}

func (m *MockOrchestrator) ProcessPayment(ctx context.Context, req *paymentsvc.ProcessPaymentRequest) (*models.Transaction, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func (m *MockOrchestrator) GetTransaction(ctx context.Context, id string) (*models.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func (m *MockOrchestrator) CapturePayment(ctx context.Context, id string) (*models.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func (m *MockOrchestrator) ListMerchantTransactions(ctx context.Context, merchantID string, limit, offset int32) ([]*models.Transaction, error) {
	args := m.Called(ctx, merchantID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Transaction), args.Error(1)
}

type noopLogger struct{}

func (noopLogger) Info(msg string, fields ...ports.Field)  {}
func (noopLogger) Error(msg string, fields ...ports.Field) {}
func (noopLogger) Warn(msg string, fields ...ports.Field)  {}
func (noopLogger) Debug(msg string, fields ...ports.Field) {}

func newRouter(svc *MockOrchestrator) *chi.Mux {
	router := chi.NewRouter()
	paymentHandler.NewHandler(svc, noopLogger{}).RegisterRoutes(router)
	return router
}

func TestProcessPayment_Created(t *testing.T) {
	svc := new(MockOrchestrator)
	svc.On("ProcessPayment", mock.Anything, mock.Anything).Return(&models.Transaction{
		ID:     "txn_1",
		Status: models.StatusAuthorized,
	}, nil)

	body := `{"merchant_id":"merch_1","amount":"150","currency":"USD","payment_method":"CARD","card_token":"tok_1"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()

	newRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)

	var got models.Transaction
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "txn_1", got.ID)
}

func TestProcessPayment_FailedTransactionIsOK(t *testing.T) {
	svc := new(MockOrchestrator)
	svc.On("ProcessPayment", mock.Anything, mock.Anything).Return(&models.Transaction{
		ID:            "txn_1",
		Status:        models.StatusFailed,
		FailureReason: "High Risk Fraud Detected",
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments", bytes.NewBufferString(`{}`))
	rec := httptest.NewRecorder()

	newRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "High Risk Fraud Detected")
}

func TestProcessPayment_IdempotencyKeyHeaderWins(t *testing.T) {
	svc := new(MockOrchestrator)
	svc.On("ProcessPayment", mock.Anything, mock.MatchedBy(func(r *paymentsvc.ProcessPaymentRequest) bool {
		return r.IdempotencyKey == "header-key"
	})).Return(&models.Transaction{ID: "txn_1", Status: models.StatusAuthorized}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments",
		bytes.NewBufferString(`{"idempotency_key":"body-key"}`))
	req.Header.Set("Idempotency-Key", "header-key")
	rec := httptest.NewRecorder()

	newRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	svc.AssertExpectations(t)
}

func TestProcessPayment_ValidationErrorIs400(t *testing.T) {
	svc := new(MockOrchestrator)
	svc.On("ProcessPayment", mock.Anything, mock.Anything).
		Return(nil, domain.ErrValidationAmountInvalid)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments", bytes.NewBufferString(`{}`))
	rec := httptest.NewRecorder()

	newRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "VALIDATION_AMOUNT_INVALID")
}

func TestProcessPayment_MalformedBodyIs400(t *testing.T) {
	svc := new(MockOrchestrator)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments", bytes.NewBufferString(`{not json`))
	rec := httptest.NewRecorder()

	newRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "ProcessPayment")
}

func TestGetTransaction_NotFoundIs404(t *testing.T) {
	svc := new(MockOrchestrator)
	svc.On("GetTransaction", mock.Anything, "txn_missing").
		Return(nil, domain.ErrTxnNotFound)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/payments/txn_missing", nil)
	rec := httptest.NewRecorder()

	newRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "TXN_NOT_FOUND")
}

func TestCapturePayment_InvalidStateIs409(t *testing.T) {
	svc := new(MockOrchestrator)
	svc.On("CapturePayment", mock.Anything, "txn_1").
		Return(nil, domain.ErrTxnInvalidState.WithDetail("status", "FAILED"))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/txn_1/capture", nil)
	rec := httptest.NewRecorder()

	newRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "TXN_INVALID_STATE")
}

func TestCapturePayment_DependencyErrorIs503(t *testing.T) {
	svc := new(MockOrchestrator)
	svc.On("CapturePayment", mock.Anything, "txn_1").
		Return(nil, domain.ErrMerchantUnavailable)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/txn_1/capture", nil)
	rec := httptest.NewRecorder()

	newRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestListMerchantTransactions_ParsesPagination(t *testing.T) {
	svc := new(MockOrchestrator)
	svc.On("ListMerchantTransactions", mock.Anything, "merch_1", int32(10), int32(20)).
		Return([]*models.Transaction{{ID: "txn_1"}}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/merchants/merch_1/transactions?limit=10&offset=20", nil)
	rec := httptest.NewRecorder()

	newRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"count":1`)
	svc.AssertExpectations(t)
}
