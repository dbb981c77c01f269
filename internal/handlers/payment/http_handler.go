package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/kevin07696/payment-gateway/internal/domain"
	"github.com/kevin07696/payment-gateway/internal/domain/models"
	"github.com/kevin07696/payment-gateway/internal/domain/ports"
	"github.com/kevin07696/payment-gateway/internal/handlers"
	paymentsvc "github.com/kevin07696/payment-gateway/internal/services/payment"
)

// Orchestrator is the slice of the payment service the HTTP layer needs
type Orchestrator interface {
	ProcessPayment(ctx context.Context, req *paymentsvc.ProcessPaymentRequest) (*models.Transaction, error)
	GetTransaction(ctx context.Context, id string) (*models.Transaction, error)
	CapturePayment(ctx context.Context, id string) (*models.Transaction, error)
	ListMerchantTransactions(ctx context.Context, merchantID string, limit, offset int32) ([]*models.Transaction, error)
}

// Handler exposes the payment orchestrator over HTTP
type Handler struct {
	service Orchestrator
	logger  ports.Logger
}

// NewHandler creates a payment HTTP handler
func NewHandler(service Orchestrator, logger ports.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes mounts the payment endpoints on the router
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/api/v1/payments", h.ProcessPayment)
	r.Get("/api/v1/payments/{id}", h.GetTransaction)
	r.Post("/api/v1/payments/{id}/capture", h.CapturePayment)
	r.Get("/api/v1/merchants/{merchantID}/transactions", h.ListMerchantTransactions)
}

// ProcessPayment handles POST /api/v1/payments. The Idempotency-Key header
// takes precedence over the body field when both are present.
func (h *Handler) ProcessPayment(w http.ResponseWriter, r *http.Request) {
	var req paymentsvc.ProcessPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.WriteError(w, domain.ErrValidationFailed.WithCause(err))
		return
	}

	if key := r.Header.Get("Idempotency-Key"); key != "" {
		req.IdempotencyKey = key
	}

	transaction, err := h.service.ProcessPayment(r.Context(), &req)
	if err != nil {
		handlers.WriteError(w, err)
		return
	}

	status := http.StatusCreated
	if transaction.Status == models.StatusFailed {
		// The request was accepted and a terminal record exists; the
		// failure is carried in the body, not the status code
		status = http.StatusOK
	}
	handlers.WriteJSON(w, status, transaction)
}

// GetTransaction handles GET /api/v1/payments/{id}
func (h *Handler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	transaction, err := h.service.GetTransaction(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handlers.WriteError(w, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, transaction)
}

// CapturePayment handles POST /api/v1/payments/{id}/capture
func (h *Handler) CapturePayment(w http.ResponseWriter, r *http.Request) {
	transaction, err := h.service.CapturePayment(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handlers.WriteError(w, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, transaction)
}

// ListMerchantTransactions handles GET /api/v1/merchants/{merchantID}/transactions
func (h *Handler) ListMerchantTransactions(w http.ResponseWriter, r *http.Request) {
	limit := queryInt32(r, "limit", 0)
	offset := queryInt32(r, "offset", 0)

	transactions, err := h.service.ListMerchantTransactions(r.Context(), chi.URLParam(r, "merchantID"), limit, offset)
	if err != nil {
		handlers.WriteError(w, err)
		return
	}

	handlers.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": transactions,
		"count":        len(transactions),
	})
}

func queryInt32(r *http.Request, name string, fallback int32) int32 {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return fallback
	}
	return int32(v)
}
