package document

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/kailas-cloud/docfinder/internal/domain/document/doctype"
	"github.com/kailas-cloud/docfinder/internal/domain/document/priority"
	"github.com/kailas-cloud/docfinder/internal/domain/document/section"
)

var idRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Size limits for a single document.
const (
	MaxTitleLength  = 512
	MaxSections     = 200
	MaxTags         = 64
	MaxContentBytes = 163840 // 160KB across all sections
)

// Document is a searchable unit of content (immutable value object).
type Document struct {
	id          string
	title       string
	docType     doctype.Type
	sections    section.Sections
	tags        []string
	priority    priority.Hint
	lastUpdated time.Time
}

// New validates and creates a Document.
// ID: ^[a-zA-Z0-9_-]+$, 1-256 chars. Title and at least one section are required.
func New(
	id, title string, t doctype.Type, sections section.Sections,
	tags []string, hint priority.Hint, lastUpdated time.Time,
) (Document, error) {
	if id == "" {
		return Document{}, fmt.Errorf("document ID is required")
	}
	if len(id) > 256 {
		return Document{}, fmt.Errorf("document ID too long (max 256)")
	}
	if !idRegex.MatchString(id) {
		return Document{}, fmt.Errorf("document ID must be alphanumeric with underscores and hyphens")
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return Document{}, fmt.Errorf("title is required")
	}
	if len(title) > MaxTitleLength {
		return Document{}, fmt.Errorf("title too long (max %d bytes)", MaxTitleLength)
	}
	if len(sections) == 0 {
		return Document{}, fmt.Errorf("at least one section is required")
	}
	if len(sections) > MaxSections {
		return Document{}, fmt.Errorf("too many sections (max %d)", MaxSections)
	}
	size := 0
	for _, s := range sections {
		if strings.TrimSpace(s.Name) == "" {
			return Document{}, fmt.Errorf("section name is required")
		}
		size += len(s.Name) + len(s.Content.Flatten(""))
	}
	if size > MaxContentBytes {
		return Document{}, fmt.Errorf("content too large (max %d bytes)", MaxContentBytes)
	}
	if len(tags) > MaxTags {
		return Document{}, fmt.Errorf("too many tags (max %d)", MaxTags)
	}
	if t == "" {
		t = doctype.Other
	}
	if !t.IsValid() {
		return Document{}, fmt.Errorf("unknown document type %q", t)
	}

	return Document{
		id:          id,
		title:       title,
		docType:     t,
		sections:    cloneSections(sections),
		tags:        cloneTags(tags),
		priority:    hint,
		lastUpdated: lastUpdated,
	}, nil
}

// Reconstruct creates a Document without validation (storage hydration).
func Reconstruct(
	id, title string, t doctype.Type, sections section.Sections,
	tags []string, hint priority.Hint, lastUpdated time.Time,
) Document {
	return Document{
		id: id, title: title, docType: t, sections: sections,
		tags: tags, priority: hint, lastUpdated: lastUpdated,
	}
}

// ID returns the document identifier.
func (d *Document) ID() string { return d.id }

// Title returns the document label.
func (d *Document) Title() string { return d.title }

// Type returns the document category.
func (d *Document) Type() doctype.Type { return d.docType }

// Sections returns the ordered sections.
func (d *Document) Sections() section.Sections { return d.sections }

// Tags returns the free-form tags.
func (d *Document) Tags() []string { return d.tags }

// Priority returns the author-assigned priority hint.
func (d *Document) Priority() priority.Hint { return d.priority }

// LastUpdated returns the modification time used for recency tie-breaks.
func (d *Document) LastUpdated() time.Time { return d.lastUpdated }

// WithType returns a copy with the document type replaced.
func (d *Document) WithType(t doctype.Type) Document {
	c := *d
	c.docType = t
	return c
}

// WithSections returns a copy with the sections replaced.
func (d *Document) WithSections(s section.Sections) Document {
	c := *d
	c.sections = cloneSections(s)
	return c
}

// WithLastUpdated returns a copy stamped with ts.
func (d *Document) WithLastUpdated(ts time.Time) Document {
	c := *d
	c.lastUpdated = ts
	return c
}

func cloneSections(s section.Sections) section.Sections {
	if s == nil {
		return nil
	}
	c := make(section.Sections, len(s))
	copy(c, s)
	return c
}

func cloneTags(tags []string) []string {
	if tags == nil {
		return nil
	}
	c := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			c = append(c, t)
		}
	}
	return c
}
