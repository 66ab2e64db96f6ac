package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Zhihong0321/ATAP-solar/internal/logger"
	"github.com/Zhihong0321/ATAP-solar/internal/models"
	"github.com/redis/go-redis/v9"
)

// RedisQuoteCache stores the snapshot under a single key with native TTL
// expiry, so instances behind a load balancer share one upstream refresh.
type RedisQuoteCache struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

func NewRedisQuoteCache(redisURL, prefix string, ttl time.Duration) (*RedisQuoteCache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	// Test the connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisQuoteCache{
		client: client,
		key:    prefix + "stocks",
		ttl:    ttl,
	}, nil
}

func (r *RedisQuoteCache) Get(ctx context.Context) ([]models.Quote, bool) {
	raw, err := r.client.Get(ctx, r.key).Bytes()
	if err != nil {
		// redis.Nil means expired or never written; an unreachable Redis is
		// treated as a miss too and the caller refreshes upstream.
		if !errors.Is(err, redis.Nil) {
			logger.WithError(err).Msg("Redis quote cache read failed")
		}
		return nil, false
	}
	var quotes []models.Quote
	if err := json.Unmarshal(raw, &quotes); err != nil {
		return nil, false
	}
	return quotes, true
}

func (r *RedisQuoteCache) Set(ctx context.Context, quotes []models.Quote) error {
	raw, err := json.Marshal(quotes)
	if err != nil {
		return fmt.Errorf("marshal quotes: %w", err)
	}
	return r.client.Set(ctx, r.key, raw, r.ttl).Err()
}

func (r *RedisQuoteCache) Close() error {
	return r.client.Close()
}
