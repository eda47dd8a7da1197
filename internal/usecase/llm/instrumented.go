package llm

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docfinder/internal/domain"
	"github.com/kailas-cloud/docfinder/internal/metrics"
)

// InstrumentedCompleter wraps a Completer with tenant quota enforcement and logging.
// Transport metrics (requests, duration, tokens) are recorded in transport/openai.
type InstrumentedCompleter struct {
	inner  domain.Completer
	model  string
	quota  QuotaGuard
	logger *zap.Logger
}

// NewInstrumentedCompleter wraps a completer. quota can be nil (unlimited).
func NewInstrumentedCompleter(
	inner domain.Completer, model string, quota QuotaGuard, logger *zap.Logger,
) *InstrumentedCompleter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InstrumentedCompleter{inner: inner, model: model, quota: quota, logger: logger}
}

// Complete checks the tenant quota, delegates, then records consumed tokens
// in the usage store and in the request-scoped collector.
func (p *InstrumentedCompleter) Complete(ctx context.Context, req domain.ChatRequest) (domain.Completion, error) {
	tenant := domain.TenantFromContext(ctx)

	if p.quota != nil {
		if err := p.quota.CheckQuota(ctx, tenant); err != nil {
			metrics.LLMQuotaRejectionsTotal.Inc()
			p.logger.Warn("LLM quota exceeded",
				zap.String("tenant", tenant),
				zap.String("operation", req.Operation),
				zap.Error(err),
			)
			return domain.Completion{}, fmt.Errorf("quota check: %w", err)
		}
	}

	start := time.Now()

	res, err := p.inner.Complete(ctx, req)

	duration := time.Since(start)

	if err != nil {
		p.logger.Error("Chat completion failed",
			zap.String("tenant", tenant),
			zap.String("operation", req.Operation),
			zap.String("model", p.model),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return domain.Completion{}, fmt.Errorf("complete: %w", err)
	}

	domain.UsageFromContext(ctx).AddTokens(res.TotalTokens)

	if p.quota != nil && res.TotalTokens > 0 {
		if err := p.quota.Record(ctx, tenant, res.TotalTokens); err != nil {
			p.logger.Warn("Failed to record LLM usage", zap.String("tenant", tenant), zap.Error(err))
		}
	}

	p.logger.Debug("Chat completion completed",
		zap.String("tenant", tenant),
		zap.String("operation", req.Operation),
		zap.String("model", p.model),
		zap.Duration("duration", duration),
		zap.Int("prompt_tokens", res.PromptTokens),
		zap.Int("total_tokens", res.TotalTokens),
	)

	return res, nil
}
