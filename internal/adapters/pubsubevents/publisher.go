package pubsubevents

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub"

	"github.com/kevin07696/payment-gateway/internal/domain/models"
	"github.com/kevin07696/payment-gateway/internal/domain/ports"
	"github.com/kevin07696/payment-gateway/pkg/observability"
	"github.com/kevin07696/payment-gateway/pkg/resilience"
)

const publishRetries = 3

// Publisher emits transaction lifecycle events to a Pub/Sub topic.
// At-least-once: downstream consumers (ledger, notifications, analytics)
// deduplicate on transaction ID plus status.
type Publisher struct {
	client  *pubsub.Client
	topic   *pubsub.Topic
	backoff resilience.BackoffStrategy
	logger  ports.Logger
}

// NewPublisher creates a publisher for the given project and topic
func NewPublisher(ctx context.Context, projectID, topicID string, logger ports.Logger) (*Publisher, error) {
	client, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("create pubsub client: %w", err)
	}

	topic := client.Topic(topicID)
	ok, err := topic.Exists(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("check topic %s: %w", topicID, err)
	}
	if !ok {
		client.Close()
		return nil, fmt.Errorf("topic %s does not exist", topicID)
	}

	return &Publisher{
		client:  client,
		topic:   topic,
		backoff: resilience.PublisherBackoff(),
		logger:  logger,
	}, nil
}

// Publish sends a transaction snapshot as a JSON event. Transient failures
// retry with exponential backoff; attributes carry routing metadata so
// subscribers can filter without deserializing the payload.
func (p *Publisher) Publish(ctx context.Context, transaction *models.Transaction) error {
	data, err := json.Marshal(transaction)
	if err != nil {
		return fmt.Errorf("marshal transaction event: %w", err)
	}

	msg := &pubsub.Message{
		Data: data,
		Attributes: map[string]string{
			"event_type":  "transaction." + string(transaction.Status),
			"merchant_id": transaction.MerchantID,
		},
	}

	var lastErr error
	for attempt := 0; attempt < publishRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(p.backoff.NextDelay(attempt - 1)):
			case <-ctx.Done():
				observability.RecordEventPublish(false)
				return ctx.Err()
			}
		}

		_, lastErr = p.topic.Publish(ctx, msg).Get(ctx)
		if lastErr == nil {
			observability.RecordEventPublish(true)
			return nil
		}

		p.logger.Warn("event publish attempt failed",
			ports.String("transaction_id", transaction.ID),
			ports.Int("attempt", attempt+1),
			ports.Err(lastErr))
	}

	observability.RecordEventPublish(false)
	return fmt.Errorf("publish transaction event after %d attempts: %w", publishRetries, lastErr)
}

// Close flushes pending messages and releases the client
func (p *Publisher) Close() error {
	p.topic.Stop()
	return p.client.Close()
}
