package domain

import "errors"

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrDocumentNotFound signals a missing document.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrInvalidDocument signals a document that failed validation.
	ErrInvalidDocument = errors.New("invalid document")
	// ErrInvalidCursor signals a malformed pagination cursor.
	ErrInvalidCursor = errors.New("invalid cursor")
	// ErrBatchTooLarge signals a batch request over the item limit.
	ErrBatchTooLarge = errors.New("batch too large")
	// ErrUnknownCollection signals a collection name outside the fixed set.
	ErrUnknownCollection = errors.New("unknown collection")
	// ErrQueryRequired signals a missing or blank search query.
	ErrQueryRequired = errors.New("query required")
	// ErrInvalidTenant signals a tenant name that cannot form a storage key segment.
	ErrInvalidTenant = errors.New("invalid tenant")
	// ErrSearchFailed signals that the corpus could not be retrieved for a search.
	ErrSearchFailed = errors.New("search failed")

	// ErrRateLimited signals a rate limit hit.
	ErrRateLimited = errors.New("rate limited")
	// ErrLLMQuotaExceeded signals an exhausted per-tenant LLM token quota.
	ErrLLMQuotaExceeded = errors.New("llm quota exceeded")
	// ErrLLMProviderError signals a chat-completion provider failure.
	ErrLLMProviderError = errors.New("llm provider error")
	// ErrLLMDisabled signals that no chat-completion provider is configured.
	ErrLLMDisabled = errors.New("llm disabled")
)
