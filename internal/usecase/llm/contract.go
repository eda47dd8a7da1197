package llm

import "context"

// QuotaGuard enforces and accounts per-tenant token budgets.
type QuotaGuard interface {
	CheckQuota(ctx context.Context, tenant string) error
	Record(ctx context.Context, tenant string, tokens int) error
}
