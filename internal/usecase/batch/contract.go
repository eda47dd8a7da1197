package batch

import (
	"context"

	"github.com/kailas-cloud/docfinder/internal/domain/collection"
	domdoc "github.com/kailas-cloud/docfinder/internal/domain/document"
	"github.com/kailas-cloud/docfinder/internal/domain/document/record"
)

// DocumentWriter validates and stores documents one at a time.
type DocumentWriter interface {
	Create(ctx context.Context, tenant string, col collection.Name, rec record.Record) (domdoc.Document, error)
	Upsert(ctx context.Context, tenant string, col collection.Name, rec record.Record) (domdoc.Document, bool, error)
	Delete(ctx context.Context, tenant string, col collection.Name, id string) error
}
