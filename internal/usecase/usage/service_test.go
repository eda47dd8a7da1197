package usage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kailas-cloud/docfinder/internal/domain"
)

// --- Mock ---

type mockCounterStore struct {
	daily, monthly int64
	err            error
	added          int64
	addedTenant    string
	addedAt        time.Time
}

func (m *mockCounterStore) Add(_ context.Context, tenant string, tokens int64, at time.Time) error {
	if m.err != nil {
		return m.err
	}
	m.added += tokens
	m.addedTenant = tenant
	m.addedAt = at
	return nil
}

func (m *mockCounterStore) Daily(_ context.Context, _ string, _ time.Time) (int64, error) {
	return m.daily, m.err
}

func (m *mockCounterStore) Monthly(_ context.Context, _ string, _ time.Time) (int64, error) {
	return m.monthly, m.err
}

var fixedNow = time.Date(2024, 5, 17, 15, 0, 0, 0, time.UTC)

func newTestService(store CounterStore, limits Limits) *Service {
	s := New(store, limits, nil)
	s.now = func() time.Time { return fixedNow }
	return s
}

// --- Tests ---

func TestReport(t *testing.T) {
	svc := newTestService(&mockCounterStore{daily: 3000, monthly: 50000}, Limits{Daily: 10000, Monthly: 100000})
	r, err := svc.Report(context.Background(), "acme")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if r.Tenant != "acme" {
		t.Errorf("tenant = %q", r.Tenant)
	}
	if r.DailyUsed != 3000 || r.DailyRemaining != 7000 {
		t.Errorf("daily used=%d remaining=%d", r.DailyUsed, r.DailyRemaining)
	}
	if r.MonthlyUsed != 50000 || r.MonthlyRemaining != 50000 {
		t.Errorf("monthly used=%d remaining=%d", r.MonthlyUsed, r.MonthlyRemaining)
	}
	if r.Exhausted {
		t.Error("budget should not be exhausted")
	}
	want := time.Date(2024, 5, 18, 0, 0, 0, 0, time.UTC).UnixMilli()
	if r.DailyResetsAt != want {
		t.Errorf("resets at %d, want %d", r.DailyResetsAt, want)
	}
}

func TestReport_Unlimited(t *testing.T) {
	svc := newTestService(&mockCounterStore{daily: 10, monthly: 10}, Limits{})
	r, err := svc.Report(context.Background(), "acme")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.DailyRemaining != Unlimited || r.MonthlyRemaining != Unlimited {
		t.Errorf("remaining = %d/%d, want unlimited", r.DailyRemaining, r.MonthlyRemaining)
	}
	if r.Exhausted {
		t.Error("unlimited budget cannot be exhausted")
	}
}

func TestReport_NilStore(t *testing.T) {
	r, err := newTestService(nil, Limits{Daily: 100}).Report(context.Background(), "acme")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.DailyUsed != 0 || r.DailyRemaining != 100 {
		t.Errorf("report = %+v", r)
	}
}

func TestReport_StoreError(t *testing.T) {
	svc := newTestService(&mockCounterStore{err: errors.New("timeout")}, Limits{})
	if _, err := svc.Report(context.Background(), "acme"); err == nil {
		t.Fatal("expected error")
	}
}

func TestCheckQuota(t *testing.T) {
	tests := []struct {
		name    string
		store   *mockCounterStore
		limits  Limits
		wantErr bool
	}{
		{"under daily", &mockCounterStore{daily: 99, monthly: 99}, Limits{Daily: 100}, false},
		{"daily reached", &mockCounterStore{daily: 100, monthly: 100}, Limits{Daily: 100}, true},
		{"monthly reached", &mockCounterStore{daily: 1, monthly: 500}, Limits{Daily: 100, Monthly: 500}, true},
		{"no limits", &mockCounterStore{daily: 1 << 40}, Limits{}, false},
		{"store down fails open", &mockCounterStore{err: errors.New("down")}, Limits{Daily: 1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := newTestService(tt.store, tt.limits).CheckQuota(context.Background(), "acme")
			if tt.wantErr != errors.Is(err, domain.ErrLLMQuotaExceeded) {
				t.Errorf("CheckQuota() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRecord(t *testing.T) {
	ms := &mockCounterStore{}
	svc := newTestService(ms, Limits{})

	if err := svc.Record(context.Background(), "acme", 42); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ms.added != 42 || ms.addedTenant != "acme" || !ms.addedAt.Equal(fixedNow) {
		t.Errorf("added %d for %q at %v", ms.added, ms.addedTenant, ms.addedAt)
	}

	if err := svc.Record(context.Background(), "acme", 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ms.added != 42 {
		t.Errorf("zero tokens must not be recorded")
	}

	ms.err = errors.New("READONLY")
	if err := svc.Record(context.Background(), "acme", 1); err == nil {
		t.Fatal("expected error")
	}

	if err := newTestService(nil, Limits{}).Record(context.Background(), "acme", 5); err != nil {
		t.Fatalf("nil store: %v", err)
	}
}
