// Package cache stores the stock quote snapshot between upstream refreshes.
// The default backend is a single in-memory entry; a Redis backend is used
// when REDIS_URL is configured so multiple instances share one snapshot.
package cache

import (
	"context"

	"github.com/Zhihong0321/ATAP-solar/internal/models"
)

// QuoteCache holds one snapshot of the ticker board. Get reports a miss once
// the entry is older than the configured TTL.
type QuoteCache interface {
	Get(ctx context.Context) ([]models.Quote, bool)
	Set(ctx context.Context, quotes []models.Quote) error
	Close() error
}
