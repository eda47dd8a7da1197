package ingest

import (
	"context"

	"github.com/kailas-cloud/docfinder/internal/domain/collection"
	domdoc "github.com/kailas-cloud/docfinder/internal/domain/document"
	"github.com/kailas-cloud/docfinder/internal/domain/document/record"
)

// DocumentWriter persists ingested records.
type DocumentWriter interface {
	Upsert(ctx context.Context, tenant string, col collection.Name, rec record.Record) (domdoc.Document, bool, error)
}
