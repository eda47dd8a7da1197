package search

import (
	"strings"

	"github.com/kailas-cloud/docfinder/internal/domain/document"
	"github.com/kailas-cloud/docfinder/internal/domain/document/priority"
	"github.com/kailas-cloud/docfinder/internal/domain/search/query"
)

// Weights are the point values of the additive relevance score.
type Weights struct {
	Title              float64 // per keyword found in the title
	Tag                float64 // per (tag, keyword) match
	Section            float64 // per (section, keyword) match
	IntentSection      float64 // document has a non-empty section answering the intent
	HighPriorityFactor float64 // applied when the author marked the document high priority
}

// DefaultWeights returns the production weights.
func DefaultWeights() Weights {
	return Weights{
		Title:              10,
		Tag:                3,
		Section:            5,
		IntentSection:      20,
		HighPriorityFactor: 1.5,
	}
}

// Scorer computes relevance scores.
type Scorer struct {
	w Weights
}

// NewScorer creates a scorer with the given weights.
func NewScorer(w Weights) Scorer { return Scorer{w: w} }

// Score returns the relevance of doc for a. 0 means "exclude".
func (s Scorer) Score(doc *document.Document, a *query.Analysis) float64 {
	var score float64

	title := strings.ToLower(doc.Title())
	for _, kw := range a.Keywords {
		if strings.Contains(title, kw) {
			score += s.w.Title
		}
	}

	for _, tag := range doc.Tags() {
		lt := strings.ToLower(tag)
		for _, kw := range a.Keywords {
			if strings.Contains(lt, kw) {
				score += s.w.Tag
			}
		}
	}

	for _, sec := range doc.Sections() {
		text := strings.ToLower(sec.Content.Flatten(" "))
		for _, kw := range a.Keywords {
			if strings.Contains(text, kw) {
				score += s.w.Section
			}
		}
	}

	if _, ok := intentSection(doc, a.Intent); ok {
		score += s.w.IntentSection
	}

	if doc.Priority() == priority.High {
		score *= s.w.HighPriorityFactor
	}

	// multiplier last so zero stays zero
	mult := a.PriorityMultiplier
	if mult < 1 {
		mult = 1
	}
	return score * float64(mult)
}
