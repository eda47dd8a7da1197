package domain

import "context"

// Chat-completion operations, used for metrics labels and cache keys.
const (
	OperationSummarize = "summarize"
	OperationClassify  = "classify"
)

// ChatRequest is a single-turn chat-completion request.
type ChatRequest struct {
	Operation string
	System    string
	User      string
	MaxTokens int
}

// Completer produces a chat completion.
type Completer interface {
	Complete(ctx context.Context, req ChatRequest) (Completion, error)
}
