package search

import (
	"context"

	"github.com/kailas-cloud/docfinder/internal/domain/collection"
	"github.com/kailas-cloud/docfinder/internal/domain/document"
	"github.com/kailas-cloud/docfinder/internal/domain/document/doctype"
)

// CorpusReader fetches the candidate documents of one tenant collection.
// An empty docType means the whole collection.
type CorpusReader interface {
	Corpus(ctx context.Context, tenant string, col collection.Name, docType doctype.Type) ([]document.Document, error)
}

// Summarizer condenses the top results into a prose answer.
type Summarizer interface {
	Summarize(ctx context.Context, question string, docs []document.Document) (string, error)
}
