package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/kailas-cloud/docfinder/internal/domain"
	"github.com/kailas-cloud/docfinder/internal/domain/document"
)

// Summarizer defaults.
const (
	DefaultSummaryDocs      = 3
	DefaultSummaryDocChars  = 1200
	DefaultSummaryMaxTokens = 400
)

const summarySystemPrompt = "あなたは社内文書のアシスタントです。" +
	"提示された文書の内容だけを根拠に、質問へ日本語で簡潔に回答してください。" +
	"文書に答えがない場合は「該当する情報が見つかりませんでした。」とだけ答えてください。"

// Summarizer turns the top search matches into a short natural-language answer.
type Summarizer struct {
	c         domain.Completer
	maxDocs   int
	maxChars  int
	maxTokens int
}

// NewSummarizer creates a Summarizer with the default limits.
func NewSummarizer(c domain.Completer) *Summarizer {
	return &Summarizer{
		c:         c,
		maxDocs:   DefaultSummaryDocs,
		maxChars:  DefaultSummaryDocChars,
		maxTokens: DefaultSummaryMaxTokens,
	}
}

// Summarize answers question from docs, which are expected in rank order.
func (s *Summarizer) Summarize(ctx context.Context, question string, docs []document.Document) (string, error) {
	if s.c == nil {
		return "", domain.ErrLLMDisabled
	}
	if len(docs) == 0 {
		return "", nil
	}

	res, err := s.c.Complete(ctx, domain.ChatRequest{
		Operation: domain.OperationSummarize,
		System:    summarySystemPrompt,
		User:      s.prompt(question, docs),
		MaxTokens: s.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("summarize: %w", err)
	}
	return res.Text, nil
}

func (s *Summarizer) prompt(question string, docs []document.Document) string {
	if len(docs) > s.maxDocs {
		docs = docs[:s.maxDocs]
	}

	var b strings.Builder
	b.WriteString("質問: ")
	b.WriteString(strings.TrimSpace(question))
	b.WriteString("\n\n文書:\n")
	for i := range docs {
		fmt.Fprintf(&b, "[%d] %s\n", i+1, docs[i].Title())
		b.WriteString(truncate(renderSections(&docs[i]), s.maxChars))
		b.WriteString("\n")
	}
	return b.String()
}

func renderSections(d *document.Document) string {
	var b strings.Builder
	for _, sec := range d.Sections() {
		if sec.Content.IsEmpty() {
			continue
		}
		fmt.Fprintf(&b, "【%s】%s\n", sec.Name, sec.Content.Flatten(" / "))
	}
	return b.String()
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…\n"
}
