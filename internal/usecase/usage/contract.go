package usage

import (
	"context"
	"time"
)

// CounterStore persists per-tenant token counters.
type CounterStore interface {
	Add(ctx context.Context, tenant string, tokens int64, at time.Time) error
	Daily(ctx context.Context, tenant string, at time.Time) (int64, error)
	Monthly(ctx context.Context, tenant string, at time.Time) (int64, error)
}
