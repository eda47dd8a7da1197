// Package doctype enumerates the document categories a corpus can be narrowed by.
package doctype

import "strings"

// Type is a document category.
type Type string

// Known document types.
const (
	Meeting  Type = "meeting"
	Policy   Type = "policy"
	Contract Type = "contract"
	Manual   Type = "manual"
	Other    Type = "other"
)

// All returns every known type in a stable order.
func All() []Type { return []Type{Meeting, Policy, Contract, Manual, Other} }

// IsValid reports whether t is a known type.
func (t Type) IsValid() bool {
	switch t {
	case Meeting, Policy, Contract, Manual, Other:
		return true
	}
	return false
}

// Parse normalizes a raw type. Empty, "general" and unknown values map to Other.
func Parse(raw string) Type {
	t := Type(strings.ToLower(strings.TrimSpace(raw)))
	if t == "general" || !t.IsValid() {
		return Other
	}
	return t
}

// ParseStrict is like Parse but reports unknown non-empty values.
func ParseStrict(raw string) (Type, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch s {
	case "":
		return "", true
	case "general":
		return Other, true
	}
	t := Type(s)
	return t, t.IsValid()
}
