// Package collection names the fixed document collections a tenant owns.
package collection

import (
	"fmt"

	"github.com/kailas-cloud/docfinder/internal/domain"
)

// Name identifies a collection.
type Name string

// Collections served by the API.
const (
	// Documents holds tagged documents of any type (meeting notes, policies, contracts).
	Documents Name = "documents"
	// Manual holds manually entered reference documents with priority hints.
	Manual Name = "manual"
)

// All returns every collection.
func All() []Name { return []Name{Documents, Manual} }

// Parse validates a raw collection name.
func Parse(raw string) (Name, error) {
	switch n := Name(raw); n {
	case Documents, Manual:
		return n, nil
	default:
		return "", fmt.Errorf("%q: %w", raw, domain.ErrUnknownCollection)
	}
}
