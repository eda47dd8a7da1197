package document

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docfinder/internal/db"
	"github.com/kailas-cloud/docfinder/internal/domain"
	"github.com/kailas-cloud/docfinder/internal/domain/collection"
	domdoc "github.com/kailas-cloud/docfinder/internal/domain/document"
	"github.com/kailas-cloud/docfinder/internal/domain/document/doctype"
)

// fetchChunk bounds the number of keys read per DoMulti round-trip.
const fetchChunk = 500

// store is the consumer interface for documents (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	GetMulti(ctx context.Context, keys []string) ([][]byte, error)
	Upsert(ctx context.Context, key string, value []byte) (bool, error)
	Del(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Repo stores documents as JSON strings under tenant-scoped keys:
// {prefix}{tenant}:{collection}:{id}.
type Repo struct {
	store  store
	prefix string
	logger *zap.Logger
	now    func() time.Time
}

// New creates a document repository.
func New(s store, logger *zap.Logger) *Repo {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repo{store: s, prefix: domain.KeyPrefix, logger: logger, now: time.Now}
}

// WithKeyPrefix overrides the key prefix (default domain.KeyPrefix).
func (r *Repo) WithKeyPrefix(prefix string) *Repo {
	if prefix != "" {
		r.prefix = prefix
	}
	return r
}

// Upsert creates or updates a document. Returns true if created.
func (r *Repo) Upsert(ctx context.Context, tenant string, col collection.Name, doc *domdoc.Document) (bool, error) {
	key, err := r.docKey(tenant, col, doc.ID())
	if err != nil {
		return false, err
	}
	data, err := encodeDocument(doc)
	if err != nil {
		return false, err
	}
	created, err := r.store.Upsert(ctx, key, data)
	if err != nil {
		return false, fmt.Errorf("upsert %s: %w", key, err)
	}
	return created, nil
}

// Get returns a document by ID.
func (r *Repo) Get(ctx context.Context, tenant string, col collection.Name, id string) (domdoc.Document, error) {
	key, err := r.docKey(tenant, col, id)
	if err != nil {
		return domdoc.Document{}, err
	}
	data, err := r.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domdoc.Document{}, domain.ErrDocumentNotFound
		}
		return domdoc.Document{}, fmt.Errorf("get %s: %w", key, err)
	}
	return decodeDocument(id, data, r.now())
}

// Delete removes a document.
func (r *Repo) Delete(ctx context.Context, tenant string, col collection.Name, id string) error {
	key, err := r.docKey(tenant, col, id)
	if err != nil {
		return err
	}
	removed, err := r.store.Del(ctx, key)
	if err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	if !removed {
		return domain.ErrDocumentNotFound
	}
	return nil
}

// List returns a page of documents ordered by ID. The cursor is the offset of
// the next page; an empty next cursor means the last page.
func (r *Repo) List(
	ctx context.Context, tenant string, col collection.Name, cursor string, limit int,
) ([]domdoc.Document, string, error) {
	if limit <= 0 {
		limit = 20
	}

	offset := 0
	if cursor != "" {
		parsed, err := strconv.Atoi(cursor)
		if err != nil || parsed < 0 {
			return nil, "", fmt.Errorf("%w: %q", domain.ErrInvalidCursor, cursor)
		}
		offset = parsed
	}

	keys, err := r.keys(ctx, tenant, col)
	if err != nil {
		return nil, "", err
	}
	if offset >= len(keys) {
		return nil, "", nil
	}

	end := min(offset+limit, len(keys))
	docs, err := r.load(ctx, keys[offset:end])
	if err != nil {
		return nil, "", err
	}

	var next string
	if end < len(keys) {
		next = strconv.Itoa(end)
	}
	return docs, next, nil
}

// Corpus returns every document of a tenant collection in ID order, optionally
// restricted to one type. Records that fail to decode are skipped with a warning.
func (r *Repo) Corpus(
	ctx context.Context, tenant string, col collection.Name, t doctype.Type,
) ([]domdoc.Document, error) {
	keys, err := r.keys(ctx, tenant, col)
	if err != nil {
		return nil, err
	}

	docs := make([]domdoc.Document, 0, len(keys))
	for start := 0; start < len(keys); start += fetchChunk {
		end := min(start+fetchChunk, len(keys))
		chunk, err := r.load(ctx, keys[start:end])
		if err != nil {
			return nil, err
		}
		for i := range chunk {
			if t != "" && chunk[i].Type() != t {
				continue
			}
			docs = append(docs, chunk[i])
		}
	}
	return docs, nil
}

// keys scans the collection keyspace and sorts it for stable paging.
func (r *Repo) keys(ctx context.Context, tenant string, col collection.Name) ([]string, error) {
	prefix, err := r.collectionPrefix(tenant, col)
	if err != nil {
		return nil, err
	}
	pattern := escapeGlob(prefix) + "*"
	keys, err := r.store.Scan(ctx, pattern)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", pattern, err)
	}
	// only direct children of the prefix belong to this collection
	own := keys[:0]
	for _, k := range keys {
		if strings.HasPrefix(k, prefix) && !strings.Contains(k[len(prefix):], ":") {
			own = append(own, k)
		}
	}
	sort.Strings(own)
	return own, nil
}

// load fetches keys and decodes them, dropping vanished keys and bad records.
func (r *Repo) load(ctx context.Context, keys []string) ([]domdoc.Document, error) {
	values, err := r.store.GetMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("get multi: %w", err)
	}
	now := r.now()
	docs := make([]domdoc.Document, 0, len(values))
	for i, data := range values {
		if data == nil {
			continue // deleted between SCAN and GET
		}
		id := keys[i][strings.LastIndexByte(keys[i], ':')+1:]
		doc, err := decodeDocument(id, data, now)
		if err != nil {
			r.logger.Warn("Skipping unreadable document", zap.String("key", keys[i]), zap.Error(err))
			continue
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// collectionPrefix is "{prefix}{tenant}:{collection}:". The tenant must be a
// single key segment, see domain.ValidateTenant.
func (r *Repo) collectionPrefix(tenant string, col collection.Name) (string, error) {
	if err := domain.ValidateTenant(tenant); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%s:%s:", r.prefix, tenant, col), nil
}

func (r *Repo) docKey(tenant string, col collection.Name, id string) (string, error) {
	prefix, err := r.collectionPrefix(tenant, col)
	if err != nil {
		return "", err
	}
	return prefix + id, nil
}

var globEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)

// escapeGlob quotes SCAN MATCH metacharacters.
func escapeGlob(s string) string { return globEscaper.Replace(s) }
