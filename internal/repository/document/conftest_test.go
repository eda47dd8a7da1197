package document

import (
	"context"
	"path"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docfinder/internal/db"
	domdoc "github.com/kailas-cloud/docfinder/internal/domain/document"
	"github.com/kailas-cloud/docfinder/internal/domain/document/doctype"
	"github.com/kailas-cloud/docfinder/internal/domain/document/priority"
	"github.com/kailas-cloud/docfinder/internal/domain/document/section"
)

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	getFn      func(ctx context.Context, key string) ([]byte, error)
	getMultiFn func(ctx context.Context, keys []string) ([][]byte, error)
	upsertFn   func(ctx context.Context, key string, value []byte) (bool, error)
	delFn      func(ctx context.Context, key string) (bool, error)
	scanFn     func(ctx context.Context, pattern string) ([]string, error)
}

func (m *mockStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockStore) GetMulti(ctx context.Context, keys []string) ([][]byte, error) {
	if m.getMultiFn != nil {
		return m.getMultiFn(ctx, keys)
	}
	return make([][]byte, len(keys)), nil
}

func (m *mockStore) Upsert(ctx context.Context, key string, value []byte) (bool, error) {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, key, value)
	}
	return true, nil
}

func (m *mockStore) Del(ctx context.Context, key string) (bool, error) {
	if m.delFn != nil {
		return m.delFn(ctx, key)
	}
	return true, nil
}

func (m *mockStore) Scan(ctx context.Context, pattern string) ([]string, error) {
	if m.scanFn != nil {
		return m.scanFn(ctx, pattern)
	}
	return nil, nil
}

// kvStore backs mockStore with a map for multi-call scenarios.
func kvStore(data map[string]string) *mockStore {
	return &mockStore{
		scanFn: func(_ context.Context, _ string) ([]string, error) {
			keys := make([]string, 0, len(data))
			for k := range data {
				keys = append(keys, k)
			}
			return keys, nil
		},
		getMultiFn: func(_ context.Context, keys []string) ([][]byte, error) {
			out := make([][]byte, len(keys))
			for i, k := range keys {
				if v, ok := data[k]; ok {
					out[i] = []byte(v)
				}
			}
			return out, nil
		},
	}
}

// globStore is an in-memory store whose Scan applies the pattern like SCAN MATCH.
func globStore() (*mockStore, map[string]string) {
	data := map[string]string{}
	ms := kvStore(data)
	ms.scanFn = func(_ context.Context, pattern string) ([]string, error) {
		var keys []string
		for k := range data {
			if ok, err := path.Match(pattern, k); err == nil && ok {
				keys = append(keys, k)
			}
		}
		return keys, nil
	}
	ms.upsertFn = func(_ context.Context, key string, value []byte) (bool, error) {
		_, existed := data[key]
		data[key] = string(value)
		return !existed, nil
	}
	return ms, data
}

func newTestRepo(t *testing.T, ms *mockStore) *Repo {
	t.Helper()
	repo := New(ms, zap.NewNop())
	repo.now = func() time.Time { return fixedNow }
	return repo
}

func testDocument(t *testing.T) domdoc.Document {
	t.Helper()
	d, err := domdoc.New("doc-1", "料金プラン", doctype.Manual, section.Sections{
		{Name: "pricing", Content: section.List([]string{"月額3万円"})},
	}, []string{"billing"}, priority.High, time.UnixMilli(1700000000000))
	if err != nil {
		t.Fatalf("testDocument: %v", err)
	}
	return d
}

func ids(docs []domdoc.Document) []string {
	out := make([]string, len(docs))
	for i := range docs {
		out[i] = docs[i].ID()
	}
	return out
}
