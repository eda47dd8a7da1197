package domain

import (
	"context"
	"sync"
)

type llmUsageKey struct{}

// LLMUsage collects chat-completion token usage for a single HTTP request.
// The handler puts a pointer into the context, the LLM decorator writes to it,
// and the handler reads it back for response headers.
type LLMUsage struct {
	mu          sync.Mutex
	totalTokens int
	used        bool
}

// Completion is the text and token usage of one chat-completion call.
type Completion struct {
	Text             string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// NewContextWithUsage returns a context with an attached usage collector.
func NewContextWithUsage(ctx context.Context) (context.Context, *LLMUsage) {
	u := &LLMUsage{}
	return context.WithValue(ctx, llmUsageKey{}, u), u
}

// UsageFromContext extracts the usage collector from context. Returns nil if not set.
func UsageFromContext(ctx context.Context) *LLMUsage {
	u, _ := ctx.Value(llmUsageKey{}).(*LLMUsage)
	return u
}

// AddTokens records consumed tokens. Safe on a nil receiver.
func (u *LLMUsage) AddTokens(n int) {
	if u == nil {
		return
	}
	u.mu.Lock()
	u.totalTokens += n
	u.used = true
	u.mu.Unlock()
}

// TotalTokens returns the tokens recorded so far.
func (u *LLMUsage) TotalTokens() int {
	if u == nil {
		return 0
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.totalTokens
}

// Used reports whether the LLM was called, even on a cache hit with 0 tokens.
func (u *LLMUsage) Used() bool {
	if u == nil {
		return false
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.used
}
