package search

import (
	"github.com/kailas-cloud/docfinder/internal/domain/document"
	"github.com/kailas-cloud/docfinder/internal/domain/document/doctype"
	"github.com/kailas-cloud/docfinder/internal/domain/search/query"
	"github.com/kailas-cloud/docfinder/internal/domain/search/result"
)

// EngineConfig tunes one corpus variant.
type EngineConfig struct {
	Weights    Weights
	TieBreak   TieBreak
	DetectType bool // narrow the corpus by the type inferred from the query
}

// DefaultEngineConfig scores with DefaultWeights, breaks ties by recency and detects types.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{Weights: DefaultWeights(), TieBreak: TieBreakRecency, DetectType: true}
}

// Engine is the pure scoring, ranking and answer pipeline. It performs no I/O
// and holds no mutable state; one Engine serves concurrent searches.
type Engine struct {
	scorer Scorer
	cfg    EngineConfig
}

// NewEngine creates an engine.
func NewEngine(cfg EngineConfig) *Engine {
	if !cfg.TieBreak.IsValid() {
		cfg.TieBreak = TieBreakNone
	}
	return &Engine{scorer: NewScorer(cfg.Weights), cfg: cfg}
}

// Config returns the engine configuration.
func (e *Engine) Config() EngineConfig { return e.cfg }

// EffectiveType resolves the corpus filter: explicit filter first, then detection.
func (e *Engine) EffectiveType(q query.Query, a *query.Analysis) doctype.Type {
	if t, ok := q.TypeFilter(); ok {
		return t
	}
	if e.cfg.DetectType {
		return a.DetectedType
	}
	return ""
}

// Search scores corpus against q and synthesizes an answer. Every input yields a valid Answer.
func (e *Engine) Search(q query.Query, corpus []document.Document) result.Answer {
	a := query.Analyze(q.RawText())
	return e.SearchAnalyzed(q, &a, corpus)
}

// SearchAnalyzed is Search with a precomputed analysis.
func (e *Engine) SearchAnalyzed(q query.Query, a *query.Analysis, corpus []document.Document) result.Answer {
	effective := e.EffectiveType(q, a)

	scored := make([]result.Scored, 0, len(corpus))
	for i := range corpus {
		doc := &corpus[i]
		if effective != "" && doc.Type() != effective {
			continue
		}
		scored = append(scored, result.NewScored(*doc, e.scorer.Score(doc, a)))
	}

	ranked := rank(scored, e.cfg.TieBreak)
	return result.NewAnswer(synthesize(ranked, a.Intent), ranked, a.Intent, effective)
}
