package loyalty

import (
	"context"

	"github.com/google/uuid"
)

// BalanceCache is a materialized view of the rolling loyalty balance. The
// ledger stays the source of truth: every write path invalidates the cached
// value and the next read recomputes it from the ledger.
type BalanceCache interface {
	// Get returns the cached balance and whether a value was present.
	Get(ctx context.Context, tenantID, userID uuid.UUID) (int64, bool, error)
	// Set stores the freshly computed balance.
	Set(ctx context.Context, tenantID, userID uuid.UUID, balance int64) error
	// Invalidate drops the cached balance after a ledger write.
	Invalidate(ctx context.Context, tenantID, userID uuid.UUID) error
}

// NoOpBalanceCache never caches; every read goes to the ledger.
type NoOpBalanceCache struct{}

// Get always reports a miss.
func (NoOpBalanceCache) Get(_ context.Context, _, _ uuid.UUID) (int64, bool, error) {
	return 0, false, nil
}

// Set discards the value.
func (NoOpBalanceCache) Set(_ context.Context, _, _ uuid.UUID, _ int64) error { return nil }

// Invalidate does nothing.
func (NoOpBalanceCache) Invalidate(_ context.Context, _, _ uuid.UUID) error { return nil }

var _ BalanceCache = NoOpBalanceCache{}
