package chi

import "github.com/kailas-cloud/docfinder/internal/domain/document/record"

// Error codes returned in ErrorResponse.Code.
const (
	CodeBadRequest        = "bad_request"
	CodeValidationFailed  = "validation_failed"
	CodeUnauthorized      = "unauthorized"
	CodeQueryRequired     = "query_required"
	CodeInvalidTenant     = "invalid_tenant"
	CodeUnknownCollection = "unknown_collection"
	CodeNotFound          = "not_found"
	CodeDocumentNotFound  = "document_not_found"
	CodeInvalidCursor     = "invalid_cursor"
	CodeBatchTooLarge     = "batch_too_large"
	CodeRateLimited       = "rate_limited"
	CodeLLMQuotaExceeded  = "llm_quota_exceeded"
	CodeLLMProviderError  = "llm_provider_error"
	CodeSearchFailed      = "search_failed"
	CodeInternalError     = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SearchParams are the query parameters of both search routes.
type SearchParams struct {
	Query     *string `json:"query,omitempty"`
	Type      *string `json:"type,omitempty"`
	Summarize *bool   `json:"summarize,omitempty"`
}

// SearchResponse answers GET /api/v1/search.
type SearchResponse struct {
	Success       bool     `json:"success"`
	Query         string   `json:"query"`
	DocumentType  *string  `json:"documentType"`
	Answer        string   `json:"answer"`
	Sources       []string `json:"sources"`
	DocumentCount int      `json:"documentCount"`
	Summary       *string  `json:"summary,omitempty"`
}

// ManualSearchResponse answers GET /api/v1/search-manual.
type ManualSearchResponse struct {
	Success      bool     `json:"success"`
	Query        string   `json:"query"`
	DocumentType *string  `json:"documentType"`
	Answer       string   `json:"answer"`
	Sources      []string `json:"sources"`
	SectionCount int      `json:"sectionCount"`
	Summary      *string  `json:"summary,omitempty"`
}

// ListDocumentsParams are the query parameters of GET .../documents.
type ListDocumentsParams struct {
	Cursor *string `json:"cursor,omitempty"`
	Limit  *int    `json:"limit,omitempty"`
}

// DocumentListResponse is one page of documents.
type DocumentListResponse struct {
	Items      []record.Record `json:"items"`
	NextCursor *string         `json:"nextCursor,omitempty"`
	HasMore    bool            `json:"hasMore"`
}

// BatchUpsertRequest is the body of POST .../documents/batch.
type BatchUpsertRequest struct {
	Documents []record.Record `json:"documents"`
}

// BatchDeleteRequest is the body of DELETE .../documents/batch.
type BatchDeleteRequest struct {
	IDs []string `json:"ids"`
}

// BatchResultItem is the outcome of one batch item.
type BatchResultItem struct {
	ID     string         `json:"id"`
	Status string         `json:"status"`
	Error  *ErrorResponse `json:"error,omitempty"`
}

// BatchResponse summarizes a batch request.
type BatchResponse struct {
	Items     []BatchResultItem `json:"items"`
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
}

// UsagePeriod is token usage against a single limit window.
type UsagePeriod struct {
	Used      int64  `json:"used"`
	Limit     *int64 `json:"limit,omitempty"`
	Remaining *int64 `json:"remaining,omitempty"`
}

// UsageResponse answers GET /api/v1/usage.
type UsageResponse struct {
	Tenant        string      `json:"tenant"`
	Daily         UsagePeriod `json:"daily"`
	Monthly       UsagePeriod `json:"monthly"`
	IsExhausted   bool        `json:"isExhausted"`
	DailyResetsAt string      `json:"dailyResetsAt"`
}

// HealthResponse answers GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
	Errors map[string]string `json:"errors,omitempty"`
}
