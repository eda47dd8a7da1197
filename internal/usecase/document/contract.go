package document

import (
	"context"

	"github.com/kailas-cloud/docfinder/internal/domain/collection"
	domdoc "github.com/kailas-cloud/docfinder/internal/domain/document"
	"github.com/kailas-cloud/docfinder/internal/domain/document/doctype"
	"github.com/kailas-cloud/docfinder/internal/domain/document/section"
)

// Repository defines the storage contract for documents.
type Repository interface {
	Upsert(ctx context.Context, tenant string, col collection.Name, doc *domdoc.Document) (created bool, err error)
	Get(ctx context.Context, tenant string, col collection.Name, id string) (domdoc.Document, error)
	List(ctx context.Context, tenant string, col collection.Name, cursor string, limit int) (
		docs []domdoc.Document, nextCursor string, err error,
	)
	Delete(ctx context.Context, tenant string, col collection.Name, id string) error
}

// Classifier guesses the type of a document uploaded without one.
type Classifier interface {
	Classify(ctx context.Context, title string, sections section.Sections) (doctype.Type, error)
}
