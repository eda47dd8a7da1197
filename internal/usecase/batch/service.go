package batch

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/docfinder/internal/domain"
	dombatch "github.com/kailas-cloud/docfinder/internal/domain/batch"
	"github.com/kailas-cloud/docfinder/internal/domain/collection"
	"github.com/kailas-cloud/docfinder/internal/domain/document/record"
)

// MaxBatchSize is the maximum number of items per batch request.
const MaxBatchSize = 100

// Service handles batch document operations with per-item error reporting.
type Service struct {
	docs         DocumentWriter
	maxBatchSize int
}

// New creates a batch service.
func New(docs DocumentWriter) *Service {
	return &Service{docs: docs, maxBatchSize: MaxBatchSize}
}

// WithMaxBatchSize configures the maximum batch size.
func (s *Service) WithMaxBatchSize(size int) *Service {
	if size > 0 {
		s.maxBatchSize = size
	}
	return s
}

// Upsert stores records in order. Records without an ID get a generated one.
// Once ctx is done the remaining items fail with the context error.
func (s *Service) Upsert(
	ctx context.Context, tenant string, col collection.Name, items []record.Record,
) ([]dombatch.Result, error) {
	if err := s.precheck(col, len(items)); err != nil {
		return nil, err
	}

	results := make([]dombatch.Result, len(items))
	for i, rec := range items {
		if err := ctx.Err(); err != nil {
			failRest(results[i:], items[i:], err)
			break
		}

		if rec.ID == "" {
			doc, err := s.docs.Create(ctx, tenant, col, rec)
			if err != nil {
				results[i] = dombatch.NewError("", fmt.Errorf("create: %w", err))
				continue
			}
			results[i] = dombatch.NewUpserted(doc.ID(), true)
			continue
		}

		_, created, err := s.docs.Upsert(ctx, tenant, col, rec)
		if err != nil {
			results[i] = dombatch.NewError(rec.ID, fmt.Errorf("upsert: %w", err))
			continue
		}
		results[i] = dombatch.NewUpserted(rec.ID, created)
	}
	return results, nil
}

// Delete removes documents by ID.
func (s *Service) Delete(
	ctx context.Context, tenant string, col collection.Name, ids []string,
) ([]dombatch.Result, error) {
	if err := s.precheck(col, len(ids)); err != nil {
		return nil, err
	}

	results := make([]dombatch.Result, len(ids))
	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			for j := i; j < len(ids); j++ {
				results[j] = dombatch.NewError(ids[j], err)
			}
			break
		}
		if err := s.docs.Delete(ctx, tenant, col, id); err != nil {
			results[i] = dombatch.NewError(id, fmt.Errorf("delete: %w", err))
			continue
		}
		results[i] = dombatch.NewDeleted(id)
	}
	return results, nil
}

func (s *Service) precheck(col collection.Name, n int) error {
	if _, err := collection.Parse(string(col)); err != nil {
		return err
	}
	if n > s.maxBatchSize {
		return fmt.Errorf("%d items, max %d: %w", n, s.maxBatchSize, domain.ErrBatchTooLarge)
	}
	return nil
}

func failRest(results []dombatch.Result, items []record.Record, err error) {
	for i := range results {
		results[i] = dombatch.NewError(items[i].ID, err)
	}
}
