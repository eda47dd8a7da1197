// Package result holds the outcome types of a relevance search.
package result

import (
	"github.com/kailas-cloud/docfinder/internal/domain/document"
	"github.com/kailas-cloud/docfinder/internal/domain/document/doctype"
	"github.com/kailas-cloud/docfinder/internal/domain/search/intent"
)

// Scored pairs a document with its relevance score.
type Scored struct {
	doc   document.Document
	score float64
}

// NewScored creates a scored document.
func NewScored(doc document.Document, score float64) Scored {
	return Scored{doc: doc, score: score}
}

// Document returns the scored document.
func (s Scored) Document() document.Document { return s.doc }

// Score returns the relevance score (0 = excluded).
func (s Scored) Score() float64 { return s.score }

// Answer is the synthesized response of a search.
type Answer struct {
	text          string
	matches       []Scored
	intent        intent.Intent
	effectiveType doctype.Type
	summary       string
}

// NewAnswer creates an Answer.
func NewAnswer(text string, matches []Scored, in intent.Intent, effectiveType doctype.Type) Answer {
	return Answer{text: text, matches: matches, intent: in, effectiveType: effectiveType}
}

// Text returns the answer string.
func (a Answer) Text() string { return a.text }

// Matches returns the ranked results (at most the result cap).
func (a Answer) Matches() []Scored { return a.matches }

// Sources returns result titles in rank order. Never nil.
func (a Answer) Sources() []string {
	out := make([]string, len(a.matches))
	for i, m := range a.matches {
		d := m.Document()
		out[i] = d.Title()
	}
	return out
}

// ResultCount returns the number of ranked results.
func (a Answer) ResultCount() int { return len(a.matches) }

// Intent returns the intent the query resolved to.
func (a Answer) Intent() intent.Intent { return a.intent }

// EffectiveType returns the type filter applied to the corpus, or "" for none.
func (a Answer) EffectiveType() doctype.Type { return a.effectiveType }

// SectionCount returns the number of sections of the top result, or 0.
func (a Answer) SectionCount() int {
	if len(a.matches) == 0 {
		return 0
	}
	d := a.matches[0].Document()
	return len(d.Sections())
}

// Summary returns the LLM summary, if one was produced.
func (a Answer) Summary() string { return a.summary }

// WithSummary returns a copy carrying an LLM summary.
func (a Answer) WithSummary(s string) Answer {
	a.summary = s
	return a
}
