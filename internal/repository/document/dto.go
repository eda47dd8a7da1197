package document

import (
	"encoding/json"
	"fmt"
	"time"

	domdoc "github.com/kailas-cloud/docfinder/internal/domain/document"
	"github.com/kailas-cloud/docfinder/internal/domain/document/record"
)

// encodeDocument serializes a document to its stored JSON record. The id is
// kept in the value so a record copied out of the keyspace is self-describing.
func encodeDocument(doc *domdoc.Document) ([]byte, error) {
	data, err := json.Marshal(record.FromDocument(doc))
	if err != nil {
		return nil, fmt.Errorf("marshal document %s: %w", doc.ID(), err)
	}
	return data, nil
}

// decodeDocument hydrates a stored record. The key id wins over the id in the value.
func decodeDocument(id string, data []byte, now time.Time) (domdoc.Document, error) {
	var rec record.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return domdoc.Document{}, fmt.Errorf("unmarshal document %s: %w", id, err)
	}
	rec.ID = id
	return rec.Hydrate(now), nil
}
