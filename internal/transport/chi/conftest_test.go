package chi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kailas-cloud/docfinder/internal/domain"
	dombatch "github.com/kailas-cloud/docfinder/internal/domain/batch"
	"github.com/kailas-cloud/docfinder/internal/domain/collection"
	domdoc "github.com/kailas-cloud/docfinder/internal/domain/document"
	"github.com/kailas-cloud/docfinder/internal/domain/document/doctype"
	"github.com/kailas-cloud/docfinder/internal/domain/document/priority"
	"github.com/kailas-cloud/docfinder/internal/domain/document/record"
	"github.com/kailas-cloud/docfinder/internal/domain/document/section"
	"github.com/kailas-cloud/docfinder/internal/domain/search/query"
	"github.com/kailas-cloud/docfinder/internal/domain/search/result"
	healthuc "github.com/kailas-cloud/docfinder/internal/usecase/health"
	usageuc "github.com/kailas-cloud/docfinder/internal/usecase/usage"
)

type mockSearcher struct {
	answer        result.Answer
	err           error
	tokens        int
	called        bool
	lastTenant    string
	lastCol       collection.Name
	lastQuery     query.Query
	lastSummarize bool
}

func (m *mockSearcher) Search(
	ctx context.Context, tenant string, col collection.Name, q query.Query, summarize bool,
) (result.Answer, error) {
	m.called = true
	m.lastTenant, m.lastCol, m.lastQuery, m.lastSummarize = tenant, col, q, summarize
	if m.tokens > 0 {
		domain.UsageFromContext(ctx).AddTokens(m.tokens)
	}
	return m.answer, m.err
}

type mockDocs struct {
	createFn func(ctx context.Context, tenant string, col collection.Name, rec record.Record) (domdoc.Document, error)
	upsertFn func(ctx context.Context, tenant string, col collection.Name, rec record.Record) (domdoc.Document, bool, error)
	getFn    func(ctx context.Context, tenant string, col collection.Name, id string) (domdoc.Document, error)
	listFn   func(ctx context.Context, tenant string, col collection.Name, cursor string, limit int) ([]domdoc.Document, string, error)
	deleteFn func(ctx context.Context, tenant string, col collection.Name, id string) error
}

func (m *mockDocs) Create(ctx context.Context, tenant string, col collection.Name, rec record.Record) (domdoc.Document, error) {
	return m.createFn(ctx, tenant, col, rec)
}

func (m *mockDocs) Upsert(
	ctx context.Context, tenant string, col collection.Name, rec record.Record,
) (domdoc.Document, bool, error) {
	return m.upsertFn(ctx, tenant, col, rec)
}

func (m *mockDocs) Get(ctx context.Context, tenant string, col collection.Name, id string) (domdoc.Document, error) {
	return m.getFn(ctx, tenant, col, id)
}

func (m *mockDocs) List(
	ctx context.Context, tenant string, col collection.Name, cursor string, limit int,
) ([]domdoc.Document, string, error) {
	return m.listFn(ctx, tenant, col, cursor, limit)
}

func (m *mockDocs) Delete(ctx context.Context, tenant string, col collection.Name, id string) error {
	return m.deleteFn(ctx, tenant, col, id)
}

type mockBatch struct {
	results []dombatch.Result
	err     error
	items   int
}

func (m *mockBatch) Upsert(_ context.Context, _ string, _ collection.Name, items []record.Record) ([]dombatch.Result, error) {
	m.items = len(items)
	return m.results, m.err
}

func (m *mockBatch) Delete(_ context.Context, _ string, _ collection.Name, ids []string) ([]dombatch.Result, error) {
	m.items = len(ids)
	return m.results, m.err
}

type mockUsage struct {
	report     usageuc.Report
	err        error
	lastTenant string
}

func (m *mockUsage) Report(_ context.Context, tenant string) (usageuc.Report, error) {
	m.lastTenant = tenant
	return m.report, m.err
}

type mockHealth struct{ report healthuc.Report }

func (m *mockHealth) Check(context.Context) healthuc.Report { return m.report }

type deps struct {
	search *mockSearcher
	docs   *mockDocs
	batch  *mockBatch
	usage  *mockUsage
	health *mockHealth
}

func newDeps() *deps {
	return &deps{
		search: &mockSearcher{},
		docs:   &mockDocs{},
		batch:  &mockBatch{},
		usage:  &mockUsage{},
		health: &mockHealth{report: healthuc.Report{Status: healthuc.Healthy, Checks: map[string]healthuc.CheckResult{}}},
	}
}

func (d *deps) router() http.Handler {
	r := chi.NewRouter()
	r.Use(TenantAuthMiddleware(nil))
	NewServer(d.search, d.docs, d.batch, d.usage, d.health, nil).Mount(r)
	return r
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, http.NoBody)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(TenantHeader, "acme")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

var testTime = time.UnixMilli(1700000000000).UTC()

func testDoc(t *testing.T, id, title string) domdoc.Document {
	t.Helper()
	d, err := domdoc.New(id, title, doctype.Manual, section.Sections{
		{Name: "pricing", Content: section.List([]string{"月額3万円"})},
	}, []string{"billing"}, priority.High, testTime)
	if err != nil {
		t.Fatalf("document.New: %v", err)
	}
	return d
}

func newRouterWith(d *deps, limiter func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(TenantAuthMiddleware(nil))
	NewServer(d.search, d.docs, d.batch, d.usage, d.health, nil).WithSearchLimiter(limiter).Mount(r)
	return r
}
