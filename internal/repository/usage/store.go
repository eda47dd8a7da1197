package usage

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/kailas-cloud/docfinder/internal/db"
	"github.com/kailas-cloud/docfinder/internal/domain"
)

// Default counter lifetimes, long enough to outlive the period they count.
const (
	DefaultDailyTTL   = 48 * time.Hour
	DefaultMonthlyTTL = 62 * 24 * time.Hour
)

// store is the consumer interface for usage counters (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	IncrBy(ctx context.Context, key string, val int64) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error
}

// Store keeps per-tenant daily and monthly token counters (INCRBY + EXPIRE NX).
type Store struct {
	store    store
	prefix   string
	dailyTTL time.Duration
	monthTTL time.Duration
}

// New creates a usage store. Non-positive TTLs fall back to the defaults.
func New(s store, dailyTTL, monthTTL time.Duration) *Store {
	if dailyTTL <= 0 {
		dailyTTL = DefaultDailyTTL
	}
	if monthTTL <= 0 {
		monthTTL = DefaultMonthlyTTL
	}
	return &Store{
		store:    s,
		prefix:   domain.KeyPrefix,
		dailyTTL: dailyTTL,
		monthTTL: monthTTL,
	}
}

// WithKeyPrefix overrides the key namespace.
func (s *Store) WithKeyPrefix(prefix string) *Store {
	s.prefix = prefix
	return s
}

// Add records tokens against both of the tenant's counters for the period containing at.
func (s *Store) Add(ctx context.Context, tenant string, tokens int64, at time.Time) error {
	if tokens <= 0 {
		return nil
	}
	if err := s.incr(ctx, s.dailyKey(tenant, at), tokens, s.dailyTTL); err != nil {
		return err
	}
	return s.incr(ctx, s.monthlyKey(tenant, at), tokens, s.monthTTL)
}

// Daily returns the tokens used by tenant on the day of at.
func (s *Store) Daily(ctx context.Context, tenant string, at time.Time) (int64, error) {
	return s.get(ctx, s.dailyKey(tenant, at))
}

// Monthly returns the tokens used by tenant in the month of at.
func (s *Store) Monthly(ctx context.Context, tenant string, at time.Time) (int64, error) {
	return s.get(ctx, s.monthlyKey(tenant, at))
}

func (s *Store) incr(ctx context.Context, key string, val int64, ttl time.Duration) error {
	if _, err := s.store.IncrBy(ctx, key, val); err != nil {
		return fmt.Errorf("usage INCRBY %s: %w", key, err)
	}
	// NX: the first write of a period sets the expiry, later writes keep it.
	if err := s.store.Expire(ctx, key, ttl, true); err != nil {
		return fmt.Errorf("usage EXPIRE %s: %w", key, err)
	}
	return nil
}

// get returns 0 if the key does not exist.
func (s *Store) get(ctx context.Context, key string) (int64, error) {
	data, err := s.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("usage GET %s: %w", key, err)
	}

	val, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("usage GET %s parse: %w", key, err)
	}
	return val, nil
}

func (s *Store) dailyKey(tenant string, t time.Time) string {
	return fmt.Sprintf("%susage:%s:daily:%s", s.prefix, tenant, t.UTC().Format("2006-01-02"))
}

func (s *Store) monthlyKey(tenant string, t time.Time) string {
	return fmt.Sprintf("%susage:%s:monthly:%s", s.prefix, tenant, t.UTC().Format("2006-01"))
}
