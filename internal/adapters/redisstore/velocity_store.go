package redisstore

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kevin07696/payment-gateway/internal/domain/ports"
)

const velocityWindow = time.Hour

// VelocityStore counts per-user transactions over a sliding window in Redis.
// INCR and EXPIRE run in one pipeline round trip, so concurrent requests for
// the same user never lose counts.
type VelocityStore struct {
	client *redis.Client
	logger ports.Logger
}

// NewVelocityStore creates a Redis-backed velocity store
func NewVelocityStore(client *redis.Client, logger ports.Logger) *VelocityStore {
	return &VelocityStore{client: client, logger: logger}
}

// NewClient connects to Redis and verifies the connection with a ping
func NewClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return client, nil
}

// Increment bumps the user's transaction counter and returns the new count.
// The expiry refresh on every call keeps the window sliding from the most
// recent transaction.
func (s *VelocityStore) Increment(ctx context.Context, userID string) (int64, error) {
	key := "velocity:user:" + userID

	pipe := s.client.Pipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, velocityWindow)

	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("increment velocity for user: %w", err)
	}

	return incr.Val(), nil
}
