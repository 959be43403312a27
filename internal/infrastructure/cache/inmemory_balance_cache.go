package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	loyaltyapp "github.com/travelcrm/backend/internal/application/loyalty"
)

const cleanupInterval = 30 * time.Second

// InMemoryBalanceCache caches rolling loyalty balances in process memory.
// Suitable for single-instance deployments and tests; state is not shared
// across instances.
type InMemoryBalanceCache struct {
	entries sync.Map // map[string]*balanceEntry
	ttl     time.Duration
	stopCh  chan struct{}
	stopped int32

	hits   int64
	misses int64
}

type balanceEntry struct {
	balance   int64
	expiresAt time.Time
}

func (e *balanceEntry) isExpired() bool {
	return time.Now().After(e.expiresAt)
}

// NewInMemoryBalanceCache creates an in-memory balance cache with the given TTL
func NewInMemoryBalanceCache(ttl time.Duration) *InMemoryBalanceCache {
	if ttl == 0 {
		ttl = time.Minute
	}
	c := &InMemoryBalanceCache{
		ttl:    ttl,
		stopCh: make(chan struct{}),
	}
	go c.cleanupExpired()
	return c
}

func balanceKey(tenantID, userID uuid.UUID) string {
	return tenantID.String() + ":" + userID.String()
}

// Get returns the cached balance and whether a value was present
func (c *InMemoryBalanceCache) Get(_ context.Context, tenantID, userID uuid.UUID) (int64, bool, error) {
	key := balanceKey(tenantID, userID)
	if value, ok := c.entries.Load(key); ok {
		entry := value.(*balanceEntry)
		if !entry.isExpired() {
			atomic.AddInt64(&c.hits, 1)
			return entry.balance, true, nil
		}
		c.entries.Delete(key)
	}

	atomic.AddInt64(&c.misses, 1)
	return 0, false, nil
}

// Set stores the freshly computed balance
func (c *InMemoryBalanceCache) Set(_ context.Context, tenantID, userID uuid.UUID, balance int64) error {
	c.entries.Store(balanceKey(tenantID, userID), &balanceEntry{
		balance:   balance,
		expiresAt: time.Now().Add(c.ttl),
	})
	return nil
}

// Invalidate drops the cached balance after a ledger write
func (c *InMemoryBalanceCache) Invalidate(_ context.Context, tenantID, userID uuid.UUID) error {
	c.entries.Delete(balanceKey(tenantID, userID))
	return nil
}

// Close stops the background cleanup goroutine
func (c *InMemoryBalanceCache) Close() error {
	if atomic.CompareAndSwapInt32(&c.stopped, 0, 1) {
		close(c.stopCh)
	}
	return nil
}

// Stats returns hit and miss counts for monitoring
func (c *InMemoryBalanceCache) Stats() (hits, misses int64) {
	return atomic.LoadInt64(&c.hits), atomic.LoadInt64(&c.misses)
}

// Count returns the number of cached balances
func (c *InMemoryBalanceCache) Count() int {
	count := 0
	c.entries.Range(func(_, _ any) bool {
		count++
		return true
	})
	return count
}

func (c *InMemoryBalanceCache) cleanupExpired() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.entries.Range(func(key, value any) bool {
				if value.(*balanceEntry).isExpired() {
					c.entries.Delete(key)
				}
				return true
			})
		}
	}
}

var _ loyaltyapp.BalanceCache = (*InMemoryBalanceCache)(nil)
