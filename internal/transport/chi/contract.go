package chi

import (
	"context"

	dombatch "github.com/kailas-cloud/docfinder/internal/domain/batch"
	"github.com/kailas-cloud/docfinder/internal/domain/collection"
	domdoc "github.com/kailas-cloud/docfinder/internal/domain/document"
	"github.com/kailas-cloud/docfinder/internal/domain/document/record"
	"github.com/kailas-cloud/docfinder/internal/domain/search/query"
	"github.com/kailas-cloud/docfinder/internal/domain/search/result"
	healthuc "github.com/kailas-cloud/docfinder/internal/usecase/health"
	usageuc "github.com/kailas-cloud/docfinder/internal/usecase/usage"
)

// Searcher answers queries over a tenant collection.
type Searcher interface {
	Search(
		ctx context.Context, tenant string, col collection.Name, q query.Query, summarize bool,
	) (result.Answer, error)
}

// DocumentService manages single documents.
type DocumentService interface {
	Create(ctx context.Context, tenant string, col collection.Name, rec record.Record) (domdoc.Document, error)
	Upsert(ctx context.Context, tenant string, col collection.Name, rec record.Record) (domdoc.Document, bool, error)
	Get(ctx context.Context, tenant string, col collection.Name, id string) (domdoc.Document, error)
	List(ctx context.Context, tenant string, col collection.Name, cursor string, limit int) ([]domdoc.Document, string, error)
	Delete(ctx context.Context, tenant string, col collection.Name, id string) error
}

// BatchService applies per-item writes.
type BatchService interface {
	Upsert(ctx context.Context, tenant string, col collection.Name, items []record.Record) ([]dombatch.Result, error)
	Delete(ctx context.Context, tenant string, col collection.Name, ids []string) ([]dombatch.Result, error)
}

// UsageReporter reads a tenant's LLM token usage.
type UsageReporter interface {
	Report(ctx context.Context, tenant string) (usageuc.Report, error)
}

// HealthChecker aggregates component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}
