package usage

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/kailas-cloud/docfinder/internal/db"
)

type expireCall struct {
	key string
	ttl time.Duration
	nx  bool
}

type mockStore struct {
	values  map[string]int64
	incrErr error
	getErr  error
	raw     map[string]string
	expires []expireCall
}

func newMockStore() *mockStore {
	return &mockStore{values: map[string]int64{}, raw: map[string]string{}}
}

func (m *mockStore) Get(_ context.Context, key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if r, ok := m.raw[key]; ok {
		return []byte(r), nil
	}
	v, ok := m.values[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return []byte(strconv.FormatInt(v, 10)), nil
}

func (m *mockStore) IncrBy(_ context.Context, key string, val int64) (int64, error) {
	if m.incrErr != nil {
		return 0, m.incrErr
	}
	m.values[key] += val
	return m.values[key], nil
}

func (m *mockStore) Expire(_ context.Context, key string, ttl time.Duration, nx bool) error {
	m.expires = append(m.expires, expireCall{key, ttl, nx})
	return nil
}

var at = time.Date(2024, 5, 17, 23, 30, 0, 0, time.UTC)

func TestAdd_IncrementsBothPeriods(t *testing.T) {
	ms := newMockStore()
	s := New(ms, 0, 0)
	ctx := context.Background()

	if err := s.Add(ctx, "acme", 40, at); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Add(ctx, "acme", 2, at); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ms.values["docfinder:usage:acme:daily:2024-05-17"] != 42 {
		t.Errorf("daily = %v", ms.values)
	}
	if ms.values["docfinder:usage:acme:monthly:2024-05"] != 42 {
		t.Errorf("monthly = %v", ms.values)
	}

	if len(ms.expires) != 4 {
		t.Fatalf("expected 4 EXPIRE calls, got %d", len(ms.expires))
	}
	if ms.expires[0].ttl != DefaultDailyTTL || !ms.expires[0].nx {
		t.Errorf("daily expire = %+v", ms.expires[0])
	}
	if ms.expires[1].ttl != DefaultMonthlyTTL || !ms.expires[1].nx {
		t.Errorf("monthly expire = %+v", ms.expires[1])
	}
}

func TestAdd_SkipsNonPositive(t *testing.T) {
	ms := newMockStore()
	if err := New(ms, 0, 0).Add(context.Background(), "acme", 0, at); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ms.values) != 0 || len(ms.expires) != 0 {
		t.Errorf("expected no writes, got %v %v", ms.values, ms.expires)
	}
}

func TestAdd_StoreError(t *testing.T) {
	ms := newMockStore()
	ms.incrErr = &db.Error{Op: db.OpIncrBy, Err: errors.New("READONLY")}
	if err := New(ms, 0, 0).Add(context.Background(), "acme", 5, at); err == nil {
		t.Fatal("expected error")
	}
}

func TestDailyMonthly(t *testing.T) {
	ms := newMockStore()
	s := New(ms, time.Hour, 2*time.Hour).WithKeyPrefix("t:")
	ctx := context.Background()

	if v, err := s.Daily(ctx, "acme", at); err != nil || v != 0 {
		t.Fatalf("missing key: %d, %v", v, err)
	}

	if err := s.Add(ctx, "acme", 7, at); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Add(ctx, "acme", 3, at.Add(time.Hour)); err != nil { // next day, same month
		t.Fatalf("unexpected error: %v", err)
	}

	if v, _ := s.Daily(ctx, "acme", at); v != 7 {
		t.Errorf("daily = %d, want 7", v)
	}
	if v, _ := s.Monthly(ctx, "acme", at); v != 10 {
		t.Errorf("monthly = %d, want 10", v)
	}
	if v, _ := s.Daily(ctx, "globex", at); v != 0 {
		t.Errorf("other tenant = %d, want 0", v)
	}
}

func TestGet_Errors(t *testing.T) {
	ms := newMockStore()
	ms.raw["docfinder:usage:acme:daily:2024-05-17"] = "abc"
	s := New(ms, 0, 0)

	if _, err := s.Daily(context.Background(), "acme", at); err == nil {
		t.Error("expected parse error")
	}

	ms.getErr = errors.New("timeout")
	if _, err := s.Monthly(context.Background(), "acme", at); err == nil {
		t.Error("expected store error")
	}
}
