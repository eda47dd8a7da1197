package health

import "context"

// DBPinger is satisfied by db.Store. A failure makes the service unhealthy.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// LLMChecker is satisfied by the chat-completion client. A failure only
// degrades the service: search still answers without summaries.
type LLMChecker interface {
	HealthCheck(ctx context.Context) error
}

// probeFunc is one bounded component check.
type probeFunc func(ctx context.Context) error
