package document

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docfinder/internal/domain"
	"github.com/kailas-cloud/docfinder/internal/domain/collection"
	domdoc "github.com/kailas-cloud/docfinder/internal/domain/document"
	"github.com/kailas-cloud/docfinder/internal/domain/document/doctype"
	"github.com/kailas-cloud/docfinder/internal/domain/document/record"
	"github.com/kailas-cloud/docfinder/internal/domain/document/section"
)

// Service handles tenant document CRUD.
type Service struct {
	repo            Repository
	classifier      Classifier
	logger          *zap.Logger
	now             func() time.Time
	defaultPageSize int
	maxPageSize     int
}

// New creates a document service. classifier can be nil (untyped uploads become other).
func New(repo Repository, classifier Classifier, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:            repo,
		classifier:      classifier,
		logger:          logger,
		now:             func() time.Time { return time.Now().UTC() },
		defaultPageSize: 20,
		maxPageSize:     100,
	}
}

// WithPagination configures page size limits.
func (s *Service) WithPagination(defaultPageSize, maxPageSize int) *Service {
	if defaultPageSize > 0 {
		s.defaultPageSize = defaultPageSize
	}
	if maxPageSize > 0 {
		s.maxPageSize = maxPageSize
	}
	return s
}

// Create stores a record under a freshly generated ID.
func (s *Service) Create(ctx context.Context, tenant string, col collection.Name, rec record.Record) (domdoc.Document, error) {
	rec.ID = uuid.NewString()
	doc, _, err := s.Upsert(ctx, tenant, col, rec)
	return doc, err
}

// Upsert validates, normalizes and stores a record.
// Returns true if the document was created, false if updated.
func (s *Service) Upsert(
	ctx context.Context, tenant string, col collection.Name, rec record.Record,
) (domdoc.Document, bool, error) {
	if _, err := collection.Parse(string(col)); err != nil {
		return domdoc.Document{}, false, err
	}

	rec.Title = plainText(rec.DisplayTitle())
	secs := make(section.Sections, len(rec.Sections))
	for i, sec := range rec.Sections {
		secs[i] = section.Section{Name: sec.Name, Content: sec.Content.Map(plainText)}
	}
	rec.Sections = secs

	doc, err := rec.Document()
	if err != nil {
		return domdoc.Document{}, false, fmt.Errorf("%w: %w", domain.ErrInvalidDocument, err)
	}

	if strings.TrimSpace(rec.Type) == "" {
		doc = doc.WithType(s.classify(ctx, &doc))
	}
	if doc.LastUpdated().IsZero() {
		doc = doc.WithLastUpdated(s.now())
	}

	created, err := s.repo.Upsert(ctx, tenant, col, &doc)
	if err != nil {
		return domdoc.Document{}, false, fmt.Errorf("upsert document: %w", err)
	}
	return doc, created, nil
}

// classify falls back to doctype.Other when no classifier is set or it fails.
func (s *Service) classify(ctx context.Context, doc *domdoc.Document) doctype.Type {
	if s.classifier == nil {
		return doctype.Other
	}
	t, err := s.classifier.Classify(ctx, doc.Title(), doc.Sections())
	if err != nil {
		lvl := zap.WarnLevel
		if errors.Is(err, domain.ErrLLMDisabled) {
			lvl = zap.DebugLevel
		}
		s.logger.Log(lvl, "Document classification failed, using other",
			zap.String("id", doc.ID()), zap.Error(err))
		return doctype.Other
	}
	return t
}

// Get retrieves a document by collection and ID.
func (s *Service) Get(ctx context.Context, tenant string, col collection.Name, id string) (domdoc.Document, error) {
	if _, err := collection.Parse(string(col)); err != nil {
		return domdoc.Document{}, err
	}
	doc, err := s.repo.Get(ctx, tenant, col, id)
	if err != nil {
		return domdoc.Document{}, fmt.Errorf("get document: %w", err)
	}
	return doc, nil
}

// List returns a paginated list of documents.
func (s *Service) List(
	ctx context.Context, tenant string, col collection.Name, cursor string, limit int,
) ([]domdoc.Document, string, error) {
	if _, err := collection.Parse(string(col)); err != nil {
		return nil, "", err
	}

	if limit <= 0 {
		limit = s.defaultPageSize
	}
	if limit > s.maxPageSize {
		limit = s.maxPageSize
	}

	docs, nextCursor, err := s.repo.List(ctx, tenant, col, cursor, limit)
	if err != nil {
		return nil, "", fmt.Errorf("list documents: %w", err)
	}
	return docs, nextCursor, nil
}

// Delete removes a document.
func (s *Service) Delete(ctx context.Context, tenant string, col collection.Name, id string) error {
	if _, err := collection.Parse(string(col)); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, tenant, col, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}
