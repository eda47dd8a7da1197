// Package section models named document sections whose body is either a single
// text or an ordered list of items.
package section

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Kind tells which variant a Content holds.
type Kind int

// Content variants.
const (
	KindText Kind = iota
	KindList
)

// Content is a section body: Text(string) or List([]string).
type Content struct {
	kind  Kind
	text  string
	items []string
}

// Text creates a single-string section body.
func Text(s string) Content { return Content{kind: KindText, text: s} }

// List creates a list section body.
func List(items []string) Content {
	c := make([]string, len(items))
	copy(c, items)
	return Content{kind: KindList, items: c}
}

// Kind returns the variant.
func (c Content) Kind() Kind { return c.kind }

// Items returns the list items, or the text as a one-element list.
func (c Content) Items() []string {
	if c.kind == KindList {
		out := make([]string, len(c.items))
		copy(out, c.items)
		return out
	}
	if c.text == "" {
		return nil
	}
	return []string{c.text}
}

// Flatten joins list items with sep. Text is returned as is.
func (c Content) Flatten(sep string) string {
	if c.kind == KindList {
		return strings.Join(c.items, sep)
	}
	return c.text
}

// IsEmpty reports whether the body has no visible text.
func (c Content) IsEmpty() bool {
	return strings.TrimSpace(c.Flatten("")) == ""
}

// Map applies fn to the text or to every list item.
func (c Content) Map(fn func(string) string) Content {
	if c.kind == KindList {
		out := make([]string, len(c.items))
		for i, it := range c.items {
			out[i] = fn(it)
		}
		return Content{kind: KindList, items: out}
	}
	return Content{kind: KindText, text: fn(c.text)}
}

// MarshalJSON encodes Text as a JSON string and List as an array.
func (c Content) MarshalJSON() ([]byte, error) {
	if c.kind == KindList {
		items := c.items
		if items == nil {
			items = []string{}
		}
		return json.Marshal(items)
	}
	return json.Marshal(c.text)
}

// UnmarshalJSON accepts a string, an array of strings or anything else.
// Values that are neither decode to an empty Text.
func (c *Content) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		*c = Text("")
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err //nolint:wrapcheck // standard decode error
		}
		*c = Text(s)
	case '[':
		var raw []json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return err //nolint:wrapcheck // standard decode error
		}
		items := make([]string, 0, len(raw))
		for _, r := range raw {
			var s string
			if len(r) > 0 && r[0] == '"' && json.Unmarshal(r, &s) == nil {
				items = append(items, s)
			}
		}
		*c = Content{kind: KindList, items: items}
	default:
		*c = Text("")
	}
	return nil
}

// Section is one named body of a document.
type Section struct {
	Name    string
	Content Content
}

// Sections is an ordered list of sections. In JSON it is an object whose key
// order is preserved on decode.
type Sections []Section

// Get returns the first section whose name equals one of names (case-insensitive).
func (s Sections) Get(names ...string) (Section, bool) {
	for _, sec := range s {
		for _, n := range names {
			if strings.EqualFold(sec.Name, n) {
				return sec, true
			}
		}
	}
	return Section{}, false
}

// MarshalJSON writes the sections as an ordered JSON object.
func (s Sections) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, sec := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(sec.Name)
		if err != nil {
			return nil, err //nolint:wrapcheck // standard encode error
		}
		val, err := sec.Content.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object keeping key order. null decodes to no sections.
func (s *Sections) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err //nolint:wrapcheck // standard decode error
	}
	if tok == nil {
		*s = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		*s = nil
		return nil
	}

	out := Sections{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err //nolint:wrapcheck // standard decode error
		}
		key, _ := keyTok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err //nolint:wrapcheck // standard decode error
		}
		var c Content
		if err := c.UnmarshalJSON(raw); err != nil {
			return err
		}
		out = append(out, Section{Name: key, Content: c})
	}
	*s = out
	return nil
}
