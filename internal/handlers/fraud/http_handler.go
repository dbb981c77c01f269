package fraud

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kevin07696/payment-gateway/internal/domain"
	"github.com/kevin07696/payment-gateway/internal/domain/models"
	"github.com/kevin07696/payment-gateway/internal/domain/ports"
	"github.com/kevin07696/payment-gateway/internal/handlers"
)

// StatsProvider reports aggregate champion/challenger comparison counts
type StatsProvider interface {
	Stats(ctx context.Context) (*models.DisagreementStats, error)
}

// Handler exposes the fraud engine and shadow metrics over HTTP
type Handler struct {
	engine ports.FraudChecker
	stats  StatsProvider
	logger ports.Logger
}

// NewHandler creates a fraud HTTP handler
func NewHandler(engine ports.FraudChecker, stats StatsProvider, logger ports.Logger) *Handler {
	return &Handler{engine: engine, stats: stats, logger: logger}
}

// RegisterRoutes mounts the fraud endpoints on the router
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/api/v1/fraud/check", h.CheckFraud)
	r.Get("/api/v1/fraud/metrics/disagreement-stats", h.DisagreementStats)
}

// CheckFraud handles POST /api/v1/fraud/check, the split-deployment entry
// point used when scoring runs as its own service
func (h *Handler) CheckFraud(w http.ResponseWriter, r *http.Request) {
	var req models.FraudCheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.WriteError(w, domain.ErrValidationFailed.WithCause(err))
		return
	}
	if req.TransactionID == "" {
		handlers.WriteError(w, domain.ErrValidationMissingField.WithDetail("field", "transaction_id"))
		return
	}

	result, err := h.engine.CheckFraud(r.Context(), &req)
	if err != nil {
		handlers.WriteError(w, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, result)
}

// DisagreementStats handles GET /api/v1/fraud/metrics/disagreement-stats
func (h *Handler) DisagreementStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.Stats(r.Context())
	if err != nil {
		handlers.WriteError(w, err)
		return
	}
	handlers.WriteJSON(w, http.StatusOK, stats)
}
