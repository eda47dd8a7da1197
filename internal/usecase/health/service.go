package health

import (
	"context"
	"time"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates an optional component is failing; search still works.
	Degraded Status = "degraded"
	// Unhealthy indicates the database is unreachable.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Component names reported in Report.Checks.
const (
	ComponentDatabase = "database"
	ComponentLLM      = "llm"
)

// DefaultCheckTimeout bounds every individual probe.
const DefaultCheckTimeout = 2 * time.Second

// maxErrorLen caps the failure message reported per component.
const maxErrorLen = 200

// Report aggregates health check results. Errors holds the failure message
// of every component whose check is CheckError.
type Report struct {
	Status Status
	Checks map[string]CheckResult
	Errors map[string]string
}

// Service coordinates health checks.
type Service struct {
	db      DBPinger
	llm     LLMChecker
	timeout time.Duration
}

// New creates a Service. llm can be nil.
func New(db DBPinger, llm LLMChecker) *Service {
	return &Service{db: db, llm: llm, timeout: DefaultCheckTimeout}
}

// WithTimeout overrides the per-probe timeout.
func (s *Service) WithTimeout(d time.Duration) *Service {
	if d > 0 {
		s.timeout = d
	}
	return s
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	r := Report{Checks: make(map[string]CheckResult, 2)}

	s.run(ctx, &r, ComponentDatabase, s.db.Ping)
	if s.llm != nil {
		s.run(ctx, &r, ComponentLLM, s.llm.HealthCheck)
	}

	r.Status = Healthy
	switch {
	case r.Checks[ComponentDatabase] == CheckError:
		r.Status = Unhealthy
	case r.Checks[ComponentLLM] == CheckError:
		r.Status = Degraded
	}
	return r
}

func (s *Service) run(ctx context.Context, r *Report, component string, probe probeFunc) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := probe(ctx); err != nil {
		r.Checks[component] = CheckError
		if r.Errors == nil {
			r.Errors = make(map[string]string, 1)
		}
		msg := err.Error()
		if len(msg) > maxErrorLen {
			msg = msg[:maxErrorLen]
		}
		r.Errors[component] = msg
		return
	}
	r.Checks[component] = CheckOK
}
