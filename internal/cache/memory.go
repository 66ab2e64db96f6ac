package cache

import (
	"context"
	"sync"
	"time"

	"github.com/Zhihong0321/ATAP-solar/internal/models"
)

// MemoryQuoteCache keeps the snapshot in process memory. The clock is
// injectable so tests can simulate expiry without real delays. The
// check-then-refresh sequence around this cache is deliberately unlocked at
// the caller; concurrent refreshes after expiry may each hit upstream, which
// is acceptable at this request volume.
type MemoryQuoteCache struct {
	mu    sync.RWMutex
	data  []models.Quote
	at    time.Time
	ttl   time.Duration
	clock func() time.Time
}

func NewMemoryQuoteCache(ttl time.Duration) *MemoryQuoteCache {
	return &MemoryQuoteCache{ttl: ttl, clock: time.Now}
}

// NewMemoryQuoteCacheWithClock is the test constructor.
func NewMemoryQuoteCacheWithClock(ttl time.Duration, clock func() time.Time) *MemoryQuoteCache {
	return &MemoryQuoteCache{ttl: ttl, clock: clock}
}

func (m *MemoryQuoteCache) Get(ctx context.Context) ([]models.Quote, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.data == nil || m.clock().Sub(m.at) >= m.ttl {
		return nil, false
	}
	return m.data, true
}

func (m *MemoryQuoteCache) Set(ctx context.Context, quotes []models.Quote) error {
	m.mu.Lock()
	m.data = quotes
	m.at = m.clock()
	m.mu.Unlock()
	return nil
}

func (m *MemoryQuoteCache) Close() error {
	return nil
}
