package health

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

// --- Mocks ---

type mockDBPinger struct {
	err error
}

func (m *mockDBPinger) Ping(_ context.Context) error { return m.err }

type mockLLMChecker struct {
	err   error
	block bool
}

func (m *mockLLMChecker) HealthCheck(ctx context.Context) error {
	if m.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return m.err
}

// --- Tests ---

func TestCheck_AllHealthy(t *testing.T) {
	svc := New(&mockDBPinger{}, &mockLLMChecker{})
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if r.Errors != nil {
		t.Errorf("expected no errors, got %v", r.Errors)
	}
	if r.Checks[ComponentDatabase] != CheckOK {
		t.Errorf("expected database %q, got %q", CheckOK, r.Checks[ComponentDatabase])
	}
	if r.Checks[ComponentLLM] != CheckOK {
		t.Errorf("expected llm %q, got %q", CheckOK, r.Checks[ComponentLLM])
	}
}

func TestCheck_DBError(t *testing.T) {
	svc := New(&mockDBPinger{err: errors.New("conn refused")}, &mockLLMChecker{})
	r := svc.Check(context.Background())

	if r.Status != Unhealthy {
		t.Errorf("expected %q, got %q", Unhealthy, r.Status)
	}
	if r.Checks[ComponentDatabase] != CheckError {
		t.Errorf("expected database %q, got %q", CheckError, r.Checks[ComponentDatabase])
	}
	if r.Checks[ComponentLLM] != CheckOK {
		t.Errorf("expected llm %q, got %q", CheckOK, r.Checks[ComponentLLM])
	}
	if r.Errors[ComponentDatabase] != "conn refused" {
		t.Errorf("database error = %q", r.Errors[ComponentDatabase])
	}
	if _, ok := r.Errors[ComponentLLM]; ok {
		t.Error("passing check must not report an error")
	}
}

func TestCheck_ErrorMessageTruncated(t *testing.T) {
	svc := New(&mockDBPinger{err: errors.New(strings.Repeat("x", 500))}, nil)
	r := svc.Check(context.Background())

	if got := len(r.Errors[ComponentDatabase]); got != maxErrorLen {
		t.Errorf("error length = %d, want %d", got, maxErrorLen)
	}
}

func TestCheck_LLMError(t *testing.T) {
	svc := New(&mockDBPinger{}, &mockLLMChecker{err: errors.New("timeout")})
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks[ComponentLLM] != CheckError {
		t.Errorf("expected llm %q, got %q", CheckError, r.Checks[ComponentLLM])
	}
}

func TestCheck_NoLLM(t *testing.T) {
	svc := New(&mockDBPinger{}, nil)
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if _, ok := r.Checks[ComponentLLM]; ok {
		t.Error("llm check should be absent when not configured")
	}
}

func TestCheck_ProbeTimeout(t *testing.T) {
	svc := New(&mockDBPinger{}, &mockLLMChecker{block: true}).WithTimeout(20 * time.Millisecond)

	start := time.Now()
	r := svc.Check(context.Background())
	if time.Since(start) > time.Second {
		t.Fatal("probe did not honor timeout")
	}
	if r.Checks[ComponentLLM] != CheckError {
		t.Errorf("expected llm %q, got %q", CheckError, r.Checks[ComponentLLM])
	}
}
