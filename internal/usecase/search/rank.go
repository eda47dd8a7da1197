package search

import (
	"sort"

	"github.com/kailas-cloud/docfinder/internal/domain/search/result"
)

// MaxResults caps the ranked result list.
const MaxResults = 5

// TieBreak selects how equal scores are ordered.
type TieBreak string

// Tie-break policies.
const (
	// TieBreakNone keeps corpus encounter order among equal scores.
	TieBreakNone TieBreak = "none"
	// TieBreakRecency puts the most recently updated document first among equal scores.
	TieBreakRecency TieBreak = "recency"
)

// IsValid reports whether t is a known policy.
func (t TieBreak) IsValid() bool { return t == TieBreakNone || t == TieBreakRecency }

// rank drops non-positive scores, sorts by score descending and truncates to MaxResults.
func rank(scored []result.Scored, tb TieBreak) []result.Scored {
	kept := make([]result.Scored, 0, len(scored))
	for _, s := range scored {
		if s.Score() > 0 {
			kept = append(kept, s)
		}
	}

	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].Score() != kept[j].Score() {
			return kept[i].Score() > kept[j].Score()
		}
		if tb == TieBreakRecency {
			di, dj := kept[i].Document(), kept[j].Document()
			return di.LastUpdated().After(dj.LastUpdated())
		}
		return false
	})

	if len(kept) > MaxResults {
		kept = kept[:MaxResults]
	}
	return kept
}
