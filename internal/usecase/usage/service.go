package usage

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docfinder/internal/domain"
)

// Unlimited is reported as the remaining budget when no limit is configured.
const Unlimited int64 = -1

// Limits caps a tenant's token consumption. Zero means unlimited.
type Limits struct {
	Daily   int64
	Monthly int64
}

// Report is a tenant's LLM token usage for the current day and month.
type Report struct {
	Tenant           string
	DailyUsed        int64
	DailyLimit       int64
	DailyRemaining   int64
	MonthlyUsed      int64
	MonthlyLimit     int64
	MonthlyRemaining int64
	Exhausted        bool
	// DailyResetsAt is unix millis of the next UTC midnight.
	DailyResetsAt int64
}

// Service handles usage accounting, quota checks and reporting.
type Service struct {
	store  CounterStore
	limits Limits
	logger *zap.Logger
	now    func() time.Time
}

// New creates a Service. store can be nil (usage not persisted, quota never enforced).
func New(store CounterStore, limits Limits, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:  store,
		limits: limits,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Record adds consumed tokens to the tenant's counters.
func (s *Service) Record(ctx context.Context, tenant string, tokens int) error {
	if s.store == nil || tokens <= 0 {
		return nil
	}
	if err := s.store.Add(ctx, tenant, int64(tokens), s.now()); err != nil {
		return fmt.Errorf("record usage: %w", err)
	}
	return nil
}

// CheckQuota returns domain.ErrLLMQuotaExceeded once a tenant has used up its budget.
// A store read failure lets the request through.
func (s *Service) CheckQuota(ctx context.Context, tenant string) error {
	if s.store == nil || (s.limits.Daily <= 0 && s.limits.Monthly <= 0) {
		return nil
	}

	r, err := s.Report(ctx, tenant)
	if err != nil {
		s.logger.Warn("Usage lookup failed, quota not enforced",
			zap.String("tenant", tenant), zap.Error(err))
		return nil
	}
	if r.Exhausted {
		return fmt.Errorf("tenant %s: %w", tenant, domain.ErrLLMQuotaExceeded)
	}
	return nil
}

// Report builds the usage report for a tenant.
func (s *Service) Report(ctx context.Context, tenant string) (Report, error) {
	now := s.now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	r := Report{
		Tenant:        tenant,
		DailyLimit:    s.limits.Daily,
		MonthlyLimit:  s.limits.Monthly,
		DailyResetsAt: dayStart.Add(24 * time.Hour).UnixMilli(),
	}

	if s.store != nil {
		var err error
		if r.DailyUsed, err = s.store.Daily(ctx, tenant, now); err != nil {
			return Report{}, fmt.Errorf("daily usage: %w", err)
		}
		if r.MonthlyUsed, err = s.store.Monthly(ctx, tenant, now); err != nil {
			return Report{}, fmt.Errorf("monthly usage: %w", err)
		}
	}

	r.DailyRemaining = remaining(r.DailyLimit, r.DailyUsed)
	r.MonthlyRemaining = remaining(r.MonthlyLimit, r.MonthlyUsed)
	r.Exhausted = r.DailyRemaining == 0 || r.MonthlyRemaining == 0

	return r, nil
}

func remaining(limit, used int64) int64 {
	if limit <= 0 {
		return Unlimited
	}
	if used >= limit {
		return 0
	}
	return limit - used
}
