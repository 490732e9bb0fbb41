package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"apotek/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	trackingKeyPrefix       = "tracking:"
	defaultTrackingLifetime = 30 * time.Second
)

// TrackingCache is a read-through cache in front of delivery tracking rows.
// A miss is reported as (nil, nil).
type TrackingCache interface {
	Get(ctx context.Context, orderID string) (*models.DeliveryTracking, error)
	Set(ctx context.Context, tracking *models.DeliveryTracking) error
	Delete(ctx context.Context, orderID string) error
}

// RedisTrackingCache implements TrackingCache using Redis.
type RedisTrackingCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisTrackingCache creates a Redis-backed tracking cache.
func NewRedisTrackingCache(client *redis.Client, ttl time.Duration) *RedisTrackingCache {
	if ttl <= 0 {
		ttl = defaultTrackingLifetime
	}
	return &RedisTrackingCache{client: client, ttl: ttl}
}

func (c *RedisTrackingCache) Get(ctx context.Context, orderID string) (*models.DeliveryTracking, error) {
	data, err := c.client.Get(ctx, trackingKeyPrefix+orderID).Bytes()
	if errors.Is(err, redis.Nil) {
		log.Debug().Str("order_id", orderID).Msg("Tracking cache miss")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("tracking cache get %s: %w", orderID, err)
	}

	var tracking models.DeliveryTracking
	if err := json.Unmarshal(data, &tracking); err != nil {
		return nil, fmt.Errorf("tracking cache decode %s: %w", orderID, err)
	}
	return &tracking, nil
}

func (c *RedisTrackingCache) Set(ctx context.Context, tracking *models.DeliveryTracking) error {
	data, err := json.Marshal(tracking)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, trackingKeyPrefix+tracking.OrderID, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("tracking cache set %s: %w", tracking.OrderID, err)
	}
	return nil
}

func (c *RedisTrackingCache) Delete(ctx context.Context, orderID string) error {
	if err := c.client.Del(ctx, trackingKeyPrefix+orderID).Err(); err != nil {
		return fmt.Errorf("tracking cache delete %s: %w", orderID, err)
	}
	return nil
}
