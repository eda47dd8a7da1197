package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docfinder/internal/domain"
	dombatch "github.com/kailas-cloud/docfinder/internal/domain/batch"
	"github.com/kailas-cloud/docfinder/internal/domain/collection"
	"github.com/kailas-cloud/docfinder/internal/domain/document/doctype"
	"github.com/kailas-cloud/docfinder/internal/domain/document/record"
	"github.com/kailas-cloud/docfinder/internal/domain/search/query"
	"github.com/kailas-cloud/docfinder/internal/domain/search/result"
	healthuc "github.com/kailas-cloud/docfinder/internal/usecase/health"
	usageuc "github.com/kailas-cloud/docfinder/internal/usecase/usage"
)

const maxBodyBytes = 4 << 20

// LLMTokensHeader reports the chat-completion tokens a request consumed.
const LLMTokensHeader = "X-LLM-Tokens"

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the search and document API.
type Server struct {
	search        Searcher
	documents     DocumentService
	batch         BatchService
	usage         UsageReporter
	health        HealthChecker
	searchLimit   func(http.Handler) http.Handler
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	search Searcher,
	documents DocumentService,
	batch BatchService,
	usage UsageReporter,
	health HealthChecker,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		search:    search,
		documents: documents,
		batch:     batch,
		usage:     usage,
		health:    health,
		logger:    logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrDocumentNotFound, http.StatusNotFound, CodeDocumentNotFound),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, CodeNotFound),
		sentinelHandler(domain.ErrInvalidDocument, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrInvalidCursor, http.StatusBadRequest, CodeInvalidCursor),
		sentinelHandler(domain.ErrInvalidTenant, http.StatusBadRequest, CodeInvalidTenant),
		sentinelHandler(domain.ErrQueryRequired, http.StatusBadRequest, CodeQueryRequired),
		sentinelHandler(domain.ErrUnknownCollection, http.StatusBadRequest, CodeUnknownCollection),
		sentinelHandler(domain.ErrBatchTooLarge, http.StatusBadRequest, CodeBatchTooLarge),
		sentinelHandler(domain.ErrRateLimited, http.StatusTooManyRequests, CodeRateLimited),
		sentinelHandler(domain.ErrLLMQuotaExceeded, http.StatusPaymentRequired, CodeLLMQuotaExceeded),
		sentinelHandler(domain.ErrLLMProviderError, http.StatusBadGateway, CodeLLMProviderError),
		sentinelHandler(domain.ErrSearchFailed, http.StatusInternalServerError, CodeSearchFailed),
	}
	return s
}

// WithSearchLimiter wraps both search routes with mw.
func (s *Server) WithSearchLimiter(mw func(http.Handler) http.Handler) *Server {
	s.searchLimit = mw
	return s
}

// Mount registers every route on r.
func (s *Server) Mount(r chi.Router) {
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, CodeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, CodeBadRequest, "method not allowed")
	})

	r.Get("/health", s.HealthCheck)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if s.searchLimit != nil {
				r.Use(s.searchLimit)
			}
			r.Get("/search", s.Search)
			r.Get("/search-manual", s.SearchManual)
		})
		r.Get("/usage", s.GetUsage)

		r.Route("/collections/{collection}/documents", func(r chi.Router) {
			r.Get("/", s.ListDocuments)
			r.Post("/", s.CreateDocument)
			r.Post("/batch", s.BatchUpsert)
			r.Delete("/batch", s.BatchDelete)
			r.Get("/{id}", s.GetDocument)
			r.Put("/{id}", s.UpsertDocument)
			r.Delete("/{id}", s.DeleteDocument)
		})
	})
}

// Search handles GET /api/v1/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var params SearchParams
	if !bindQuery(w, r, "query", &params.Query) ||
		!bindQuery(w, r, "type", &params.Type) ||
		!bindQuery(w, r, "summarize", &params.Summarize) {
		return
	}

	answer, ok := s.runSearch(w, r, collection.Documents, params)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, SearchResponse{
		Success:       true,
		Query:         deref(params.Query),
		DocumentType:  effectiveType(answer),
		Answer:        answer.Text(),
		Sources:       nonNil(answer.Sources()),
		DocumentCount: answer.ResultCount(),
		Summary:       summaryOf(answer),
	})
}

// SearchManual handles GET /api/v1/search-manual.
func (s *Server) SearchManual(w http.ResponseWriter, r *http.Request) {
	var params SearchParams
	if !bindQuery(w, r, "query", &params.Query) ||
		!bindQuery(w, r, "summarize", &params.Summarize) {
		return
	}

	answer, ok := s.runSearch(w, r, collection.Manual, params)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, ManualSearchResponse{
		Success:      true,
		Query:        deref(params.Query),
		DocumentType: effectiveType(answer),
		Answer:       answer.Text(),
		Sources:      nonNil(answer.Sources()),
		SectionCount: answer.SectionCount(),
		Summary:      summaryOf(answer),
	})
}

func (s *Server) runSearch(
	w http.ResponseWriter, r *http.Request, col collection.Name, params SearchParams,
) (result.Answer, bool) {
	typeFilter, ok := doctype.ParseStrict(deref(params.Type))
	if !ok {
		writeError(w, http.StatusBadRequest, CodeValidationFailed,
			fmt.Sprintf("unknown document type %q", deref(params.Type)))
		return result.Answer{}, false
	}
	q, err := query.New(deref(params.Query), typeFilter)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, err.Error())
		return result.Answer{}, false
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	summarize := params.Summarize != nil && *params.Summarize
	answer, err := s.search.Search(ctx, domain.TenantFromContext(ctx), col, q, summarize)
	if err != nil {
		s.handleDomainError(w, r, err)
		return result.Answer{}, false
	}
	setLLMHeaders(w, usage)
	return answer, true
}

// CreateDocument handles POST /api/v1/collections/{collection}/documents.
// The stored document always gets a generated ID.
func (s *Server) CreateDocument(w http.ResponseWriter, r *http.Request) {
	col, ok := bindCollection(w, r)
	if !ok {
		return
	}
	var rec record.Record
	if !decodeBody(w, r, &rec) {
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	doc, err := s.documents.Create(ctx, domain.TenantFromContext(ctx), col, rec)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	setLLMHeaders(w, usage)
	w.Header().Set("Location", documentLocation(col, doc.ID()))
	writeJSON(w, http.StatusCreated, record.FromDocument(&doc))
}

// UpsertDocument handles PUT /api/v1/collections/{collection}/documents/{id}.
func (s *Server) UpsertDocument(w http.ResponseWriter, r *http.Request) {
	col, ok := bindCollection(w, r)
	if !ok {
		return
	}
	id, ok := bindID(w, r)
	if !ok {
		return
	}
	var rec record.Record
	if !decodeBody(w, r, &rec) {
		return
	}
	rec.ID = id

	ctx, usage := domain.NewContextWithUsage(r.Context())
	doc, created, err := s.documents.Upsert(ctx, domain.TenantFromContext(ctx), col, rec)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
		w.Header().Set("Location", documentLocation(col, id))
	}
	setLLMHeaders(w, usage)
	writeJSON(w, status, record.FromDocument(&doc))
}

// GetDocument handles GET /api/v1/collections/{collection}/documents/{id}.
func (s *Server) GetDocument(w http.ResponseWriter, r *http.Request) {
	col, ok := bindCollection(w, r)
	if !ok {
		return
	}
	id, ok := bindID(w, r)
	if !ok {
		return
	}

	doc, err := s.documents.Get(r.Context(), domain.TenantFromContext(r.Context()), col, id)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, record.FromDocument(&doc))
}

// DeleteDocument handles DELETE /api/v1/collections/{collection}/documents/{id}.
func (s *Server) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	col, ok := bindCollection(w, r)
	if !ok {
		return
	}
	id, ok := bindID(w, r)
	if !ok {
		return
	}

	if err := s.documents.Delete(r.Context(), domain.TenantFromContext(r.Context()), col, id); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListDocuments handles GET /api/v1/collections/{collection}/documents.
func (s *Server) ListDocuments(w http.ResponseWriter, r *http.Request) {
	col, ok := bindCollection(w, r)
	if !ok {
		return
	}
	var params ListDocumentsParams
	if !bindQuery(w, r, "cursor", &params.Cursor) || !bindQuery(w, r, "limit", &params.Limit) {
		return
	}
	limit := 0
	if params.Limit != nil {
		limit = *params.Limit
	}

	docs, next, err := s.documents.List(r.Context(), domain.TenantFromContext(r.Context()), col,
		deref(params.Cursor), limit)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := make([]record.Record, len(docs))
	for i := range docs {
		items[i] = record.FromDocument(&docs[i])
	}
	resp := DocumentListResponse{Items: items, HasMore: next != ""}
	if next != "" {
		resp.NextCursor = &next
	}
	writeJSON(w, http.StatusOK, resp)
}

// BatchUpsert handles POST /api/v1/collections/{collection}/documents/batch.
func (s *Server) BatchUpsert(w http.ResponseWriter, r *http.Request) {
	col, ok := bindCollection(w, r)
	if !ok {
		return
	}
	var req BatchUpsertRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if len(req.Documents) == 0 {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "documents must not be empty")
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	results, err := s.batch.Upsert(ctx, domain.TenantFromContext(ctx), col, req.Documents)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	setLLMHeaders(w, usage)
	writeJSON(w, http.StatusOK, batchResponse(results))
}

// BatchDelete handles DELETE /api/v1/collections/{collection}/documents/batch.
func (s *Server) BatchDelete(w http.ResponseWriter, r *http.Request) {
	col, ok := bindCollection(w, r)
	if !ok {
		return
	}
	var req BatchDeleteRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if len(req.IDs) == 0 {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "ids must not be empty")
		return
	}

	results, err := s.batch.Delete(r.Context(), domain.TenantFromContext(r.Context()), col, req.IDs)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, batchResponse(results))
}

// GetUsage handles GET /api/v1/usage.
func (s *Server) GetUsage(w http.ResponseWriter, r *http.Request) {
	report, err := s.usage.Report(r.Context(), domain.TenantFromContext(r.Context()))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, usageToResponse(report))
}

// HealthCheck handles GET /health. A degraded LLM still answers 200.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	status := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, HealthResponse{Status: string(report.Status), Checks: checks, Errors: report.Errors})
}

func bindQuery(w http.ResponseWriter, r *http.Request, name string, dest any) bool {
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), dest); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest,
			fmt.Sprintf("Invalid format for parameter %s: %s", name, err))
		return false
	}
	return true
}

func bindPath(w http.ResponseWriter, r *http.Request, name string, dest any) bool {
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), dest,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Required: true})
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest,
			fmt.Sprintf("Invalid format for parameter %s: %s", name, err))
		return false
	}
	return true
}

func bindCollection(w http.ResponseWriter, r *http.Request) (collection.Name, bool) {
	var raw string
	if !bindPath(w, r, "collection", &raw) {
		return "", false
	}
	col, err := collection.Parse(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeUnknownCollection, err.Error())
		return "", false
	}
	return col, true
}

func bindID(w http.ResponseWriter, r *http.Request) (string, bool) {
	var id string
	if !bindPath(w, r, "id", &id) {
		return "", false
	}
	if strings.TrimSpace(id) == "" {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "document id is required")
		return "", false
	}
	return id, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dest any) bool {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dest); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func documentLocation(col collection.Name, id string) string {
	return fmt.Sprintf("/api/v1/collections/%s/documents/%s", col, id)
}

func effectiveType(a result.Answer) *string {
	if a.EffectiveType() == "" {
		return nil
	}
	t := string(a.EffectiveType())
	return &t
}

func summaryOf(a result.Answer) *string {
	if a.Summary() == "" {
		return nil
	}
	s := a.Summary()
	return &s
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func batchResponse(results []dombatch.Result) BatchResponse {
	items := make([]BatchResultItem, len(results))
	for i, res := range results {
		items[i] = BatchResultItem{ID: res.ID(), Status: string(res.Status())}
		if res.Err() != nil {
			items[i].Error = &ErrorResponse{
				Code:    batchErrorCode(res.Err()),
				Message: safeDomainMessage(res.Err()),
			}
		}
	}
	succeeded, failed := dombatch.Count(results)
	return BatchResponse{Items: items, Succeeded: succeeded, Failed: failed}
}

func usageToResponse(r usageuc.Report) UsageResponse {
	return UsageResponse{
		Tenant:        r.Tenant,
		Daily:         usagePeriod(r.DailyUsed, r.DailyLimit, r.DailyRemaining),
		Monthly:       usagePeriod(r.MonthlyUsed, r.MonthlyLimit, r.MonthlyRemaining),
		IsExhausted:   r.Exhausted,
		DailyResetsAt: time.UnixMilli(r.DailyResetsAt).UTC().Format(time.RFC3339),
	}
}

// usagePeriod omits limit and remaining for unlimited windows.
func usagePeriod(used, limit, remaining int64) UsagePeriod {
	p := UsagePeriod{Used: used}
	if limit > 0 {
		p.Limit = &limit
		p.Remaining = &remaining
	}
	return p
}

func setLLMHeaders(w http.ResponseWriter, usage *domain.LLMUsage) {
	if usage.Used() {
		w.Header().Set(LLMTokensHeader, strconv.Itoa(usage.TotalTokens()))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
// Validation failures keep their reason.
func safeDomainMessage(err error) string {
	if errors.Is(err, domain.ErrInvalidDocument) {
		msg := err.Error()
		if i := strings.Index(msg, domain.ErrInvalidDocument.Error()); i >= 0 {
			return msg[i:]
		}
		return domain.ErrInvalidDocument.Error()
	}
	sentinels := []error{
		domain.ErrDocumentNotFound,
		domain.ErrNotFound,
		domain.ErrInvalidCursor,
		domain.ErrQueryRequired,
		domain.ErrUnknownCollection,
		domain.ErrBatchTooLarge,
		domain.ErrRateLimited,
		domain.ErrLLMQuotaExceeded,
		domain.ErrLLMProviderError,
		domain.ErrSearchFailed,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := s.logger.With(zap.String("path", r.URL.Path))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			log.Warn("domain error", zap.Error(err))
			return
		}
	}
	log.Error("unhandled error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, msg)
}

func batchErrorCode(err error) string {
	switch {
	case errors.Is(err, domain.ErrDocumentNotFound):
		return CodeDocumentNotFound
	case errors.Is(err, domain.ErrInvalidDocument):
		return CodeValidationFailed
	case errors.Is(err, domain.ErrUnknownCollection):
		return CodeUnknownCollection
	case errors.Is(err, domain.ErrLLMQuotaExceeded):
		return CodeLLMQuotaExceeded
	case errors.Is(err, domain.ErrLLMProviderError):
		return CodeLLMProviderError
	case errors.Is(err, domain.ErrRateLimited):
		return CodeRateLimited
	default:
		return CodeInternalError
	}
}
