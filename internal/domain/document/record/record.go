// Package record is the JSON shape of a document shared by storage, the HTTP API
// and file ingestion.
package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/kailas-cloud/docfinder/internal/domain/document"
	"github.com/kailas-cloud/docfinder/internal/domain/document/doctype"
	"github.com/kailas-cloud/docfinder/internal/domain/document/priority"
	"github.com/kailas-cloud/docfinder/internal/domain/document/section"
)

// Record is a denormalized document as exchanged in JSON.
type Record struct {
	ID          string           `json:"id,omitempty"`
	Title       string           `json:"title,omitempty"`
	Name        string           `json:"name,omitempty"` // legacy alias of title
	Type        string           `json:"documentType,omitempty"`
	Sections    section.Sections `json:"sections"`
	Tags        Tags             `json:"tags,omitempty"`
	Priority    string           `json:"priorityHint,omitempty"`
	LastUpdated Millis           `json:"lastUpdated,omitempty"`
}

// FromDocument converts a domain document to its JSON record.
func FromDocument(d *document.Document) Record {
	r := Record{
		ID:       d.ID(),
		Title:    d.Title(),
		Type:     string(d.Type()),
		Sections: d.Sections(),
		Tags:     Tags(d.Tags()),
		Priority: string(d.Priority()),
	}
	if !d.LastUpdated().IsZero() {
		r.LastUpdated = Millis(d.LastUpdated().UnixMilli())
	}
	if r.Sections == nil {
		r.Sections = section.Sections{}
	}
	return r
}

// DisplayTitle returns title, falling back to the legacy name field.
func (r *Record) DisplayTitle() string {
	if strings.TrimSpace(r.Title) != "" {
		return r.Title
	}
	return r.Name
}

// Hydrate maps a stored record to a document without validation. Missing fields
// take safe defaults: no tags, type other, lastUpdated now.
func (r *Record) Hydrate(now time.Time) document.Document {
	tags := []string(r.Tags)
	if tags == nil {
		tags = []string{}
	}
	ts := r.LastUpdated.Time()
	if ts.IsZero() {
		ts = now
	}
	return document.Reconstruct(
		r.ID, r.DisplayTitle(), doctype.Parse(r.Type), r.Sections,
		tags, priority.Parse(r.Priority), ts,
	)
}

// Document validates the record into a new document. An unknown document type
// is an error here, unlike Hydrate. A missing lastUpdated stays zero.
func (r *Record) Document() (document.Document, error) {
	t, ok := doctype.ParseStrict(r.Type)
	if !ok {
		return document.Document{}, fmt.Errorf("unknown document type %q", r.Type)
	}
	return document.New(
		r.ID, r.DisplayTitle(), t, r.Sections,
		r.Tags, priority.Parse(r.Priority), r.LastUpdated.Time(),
	)
}

// Decode parses a single JSON record or an array of records.
func Decode(data []byte) ([]Record, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}
	if data[0] == '[' {
		var recs []Record
		if err := json.Unmarshal(data, &recs); err != nil {
			return nil, fmt.Errorf("decode records: %w", err)
		}
		return recs, nil
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return []Record{rec}, nil
}

// Tags decodes from an array (non-string items skipped) or a single string.
type Tags []string

// UnmarshalJSON implements json.Unmarshaler.
func (t *Tags) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0:
		*t = nil
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err //nolint:wrapcheck // standard decode error
		}
		*t = Tags{s}
	case data[0] == '[':
		var raw []json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return err //nolint:wrapcheck // standard decode error
		}
		out := make(Tags, 0, len(raw))
		for _, r := range raw {
			var s string
			if len(r) > 0 && r[0] == '"' && json.Unmarshal(r, &s) == nil {
				out = append(out, s)
			}
		}
		*t = out
	default:
		*t = nil
	}
	return nil
}

// Millis is a unix-millisecond timestamp. It also decodes RFC 3339 strings.
// Zero means "not set". Numbers that are negative, fractional or past
// 9999-12-31, and strings before the epoch, decode as not set.
type Millis int64

// maxMillis is 9999-12-31T23:59:59.999Z.
const maxMillis = 253402300799999

// Time returns the timestamp in UTC, or the zero time.
func (m Millis) Time() time.Time {
	if m == 0 {
		return time.Time{}
	}
	return time.UnixMilli(int64(m)).UTC()
}

// UnmarshalJSON implements json.Unmarshaler.
func (m *Millis) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*m = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err //nolint:wrapcheck // standard decode error
		}
		ts, err := time.Parse(time.RFC3339, s)
		if err != nil {
			*m = 0
			return nil //nolint:nilerr // unparseable timestamps fall back to "not set"
		}
		if ms := ts.UnixMilli(); ms > 0 {
			*m = Millis(ms)
		} else {
			*m = 0
		}
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		*m = 0
		return nil //nolint:nilerr // non-numeric timestamps fall back to "not set"
	}
	// negative, fractional and post-9999 values are not millisecond timestamps
	if f < 0 || f > maxMillis || f != math.Trunc(f) {
		*m = 0
		return nil
	}
	*m = Millis(int64(f))
	return nil
}
