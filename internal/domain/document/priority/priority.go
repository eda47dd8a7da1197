// Package priority holds the author-assigned priority hint of a document.
package priority

import "strings"

// Hint is the author-assigned priority. The zero value means "not set".
type Hint string

// Hint values.
const (
	None   Hint = ""
	High   Hint = "high"
	Medium Hint = "medium"
	Low    Hint = "low"
)

// Parse normalizes a raw hint; unknown values map to None.
func Parse(raw string) Hint {
	switch h := Hint(strings.ToLower(strings.TrimSpace(raw))); h {
	case High, Medium, Low:
		return h
	default:
		return None
	}
}
