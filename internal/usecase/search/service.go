package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docfinder/internal/domain"
	"github.com/kailas-cloud/docfinder/internal/domain/collection"
	"github.com/kailas-cloud/docfinder/internal/domain/document"
	"github.com/kailas-cloud/docfinder/internal/domain/search/query"
	"github.com/kailas-cloud/docfinder/internal/domain/search/result"
	"github.com/kailas-cloud/docfinder/internal/metrics"
)

// DefaultCollectionConfigs returns the engine setup per collection: the general
// corpus breaks ties by recency and narrows by detected type, the manual corpus
// keeps encounter order and never narrows.
func DefaultCollectionConfigs() map[collection.Name]EngineConfig {
	return map[collection.Name]EngineConfig{
		collection.Documents: DefaultEngineConfig(),
		collection.Manual:    {Weights: DefaultWeights(), TieBreak: TieBreakNone, DetectType: false},
	}
}

// Service answers natural-language questions over a tenant's documents.
type Service struct {
	corpus     CorpusReader
	engines    map[collection.Name]*Engine
	summarizer Summarizer
	logger     *zap.Logger
}

// New creates a search service. Collections missing from cfgs use DefaultCollectionConfigs.
// summarizer may be nil.
func New(
	corpus CorpusReader, cfgs map[collection.Name]EngineConfig,
	summarizer Summarizer, logger *zap.Logger,
) *Service {
	engines := make(map[collection.Name]*Engine, len(collection.All()))
	defaults := DefaultCollectionConfigs()
	for _, name := range collection.All() {
		cfg, ok := cfgs[name]
		if !ok {
			cfg = defaults[name]
		}
		engines[name] = NewEngine(cfg)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{corpus: corpus, engines: engines, summarizer: summarizer, logger: logger}
}

// Search fetches the tenant corpus, ranks it against q and synthesizes an answer.
// With summarize set and a summarizer configured, the ranked documents are also
// condensed by the LLM; a failed summary leaves the synthesized answer untouched.
func (s *Service) Search(
	ctx context.Context, tenant string, col collection.Name, q query.Query, summarize bool,
) (result.Answer, error) {
	if strings.TrimSpace(q.RawText()) == "" {
		return result.Answer{}, domain.ErrQueryRequired
	}
	engine, ok := s.engines[col]
	if !ok {
		return result.Answer{}, fmt.Errorf("%w: %s", domain.ErrUnknownCollection, col)
	}

	start := time.Now()
	a := query.Analyze(q.RawText())

	// fetch-level narrowing only for the explicit filter; detection is applied by the engine
	explicit, _ := q.TypeFilter()
	docs, err := s.corpus.Corpus(ctx, tenant, col, explicit)
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues(string(col), string(a.Intent), "error").Inc()
		return result.Answer{}, fmt.Errorf("%w: fetch corpus: %w", domain.ErrSearchFailed, err)
	}

	answer := engine.SearchAnalyzed(q, &a, docs)

	metrics.SearchDuration.WithLabelValues(string(col)).Observe(time.Since(start).Seconds())
	metrics.SearchCorpusSize.WithLabelValues(string(col)).Observe(float64(len(docs)))
	outcome := "answered"
	if answer.ResultCount() == 0 {
		outcome = "no_match"
	}
	metrics.SearchRequestsTotal.WithLabelValues(string(col), string(a.Intent), outcome).Inc()

	if summarize && answer.ResultCount() > 0 {
		answer = s.summarize(ctx, q.RawText(), answer)
	}
	return answer, nil
}

func (s *Service) summarize(ctx context.Context, question string, answer result.Answer) result.Answer {
	if s.summarizer == nil {
		s.logger.Debug("Summary requested but no LLM configured")
		return answer
	}
	matches := answer.Matches()
	docs := make([]document.Document, len(matches))
	for i, m := range matches {
		docs[i] = m.Document()
	}
	summary, err := s.summarizer.Summarize(ctx, question, docs)
	if err != nil {
		s.logger.Warn("Summary failed, returning synthesized answer", zap.Error(err))
		return answer
	}
	return answer.WithSummary(summary)
}
