package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Payment transaction metrics
	paymentTransactionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_transactions_total",
		Help: "Total number of payment transactions by terminal status",
	}, []string{
		"merchant_id",
		"payment_method",
		"status",         // AUTHORIZED, CAPTURED, FAILED, ...
		"failure_reason", // empty for successful transactions
	})

	paymentProcessingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "payment_processing_duration_seconds",
		Help:    "Time to process a payment end-to-end (validation through terminal write)",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{
		"merchant_id",
		"status",
	})

	// Fraud decision metrics
	fraudDecisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fraud_decisions_total",
		Help: "Total fraud decisions returned by the decision engine",
	}, []string{
		"decision", // APPROVE, MANUAL_REVIEW, BLOCK
		"source",   // cold_start, champion, degraded
	})

	fraudInferenceDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fraud_inference_duration_seconds",
		Help:    "Model inference latency per scoring backend",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}, []string{
		"model", // champion, challenger
	})

	// Shadow comparison metrics
	modelDisagreementsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fraud_model_disagreements_total",
		Help: "Champion/challenger verdict comparisons by classification",
	}, []string{
		"type", // BOTH_FRAUD, BOTH_LEGIT, MISSED_FRAUD, FALSE_POSITIVE, AGREEMENT
	})

	// Event publishing metrics
	eventPublishesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_event_publishes_total",
		Help: "Total domain event publish attempts",
	}, []string{
		"status", // success, failed
	})
)

// RecordPayment records a terminal payment outcome
func RecordPayment(merchantID, paymentMethod, status, failureReason string, duration time.Duration) {
	paymentTransactionsTotal.WithLabelValues(merchantID, paymentMethod, status, failureReason).Inc()
	paymentProcessingDuration.WithLabelValues(merchantID, status).Observe(duration.Seconds())
}

// RecordFraudDecision records a decision returned by the engine
func RecordFraudDecision(decision, source string) {
	fraudDecisionsTotal.WithLabelValues(decision, source).Inc()
}

// ObserveInference records a single model's inference latency
func ObserveInference(model string, duration time.Duration) {
	fraudInferenceDuration.WithLabelValues(model).Observe(duration.Seconds())
}

// RecordModelDisagreement records a champion/challenger comparison
func RecordModelDisagreement(disagreementType string) {
	modelDisagreementsTotal.WithLabelValues(disagreementType).Inc()
}

// RecordEventPublish records an event publish attempt
func RecordEventPublish(success bool) {
	status := "success"
	if !success {
		status = "failed"
	}
	eventPublishesTotal.WithLabelValues(status).Inc()
}
