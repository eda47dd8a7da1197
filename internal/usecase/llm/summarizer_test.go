package llm

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kailas-cloud/docfinder/internal/domain"
	"github.com/kailas-cloud/docfinder/internal/domain/document"
	"github.com/kailas-cloud/docfinder/internal/domain/document/section"
)

func TestSummarize(t *testing.T) {
	inner := &mockCompleter{result: domain.Completion{Text: "月額3万円です。"}}
	s := NewSummarizer(inner)

	docs := []document.Document{
		testDoc("p1", "料金プラン", section.Sections{
			{Name: "pricing", Content: section.List([]string{"月額3万円", "年額30万円"})},
			{Name: "empty", Content: section.Text("")},
		}),
		testDoc("p2", "料金FAQ", section.Sections{{Name: "overview", Content: section.Text("よくある質問")}}),
	}

	got, err := s.Summarize(context.Background(), " 料金は？ ", docs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "月額3万円です。" {
		t.Errorf("summary = %q", got)
	}

	req := inner.last
	if req.Operation != domain.OperationSummarize || req.MaxTokens != DefaultSummaryMaxTokens {
		t.Errorf("unexpected request: %+v", req)
	}
	for _, want := range []string{"質問: 料金は？", "[1] 料金プラン", "【pricing】月額3万円 / 年額30万円", "[2] 料金FAQ"} {
		if !strings.Contains(req.User, want) {
			t.Errorf("prompt missing %q:\n%s", want, req.User)
		}
	}
	if strings.Contains(req.User, "【empty】") {
		t.Error("empty sections must be skipped")
	}
}

func TestSummarize_LimitsDocsAndLength(t *testing.T) {
	inner := &mockCompleter{result: domain.Completion{Text: "x"}}
	s := NewSummarizer(inner)

	long := strings.Repeat("あ", DefaultSummaryDocChars*2)
	var docs []document.Document
	for i := range 5 {
		docs = append(docs, testDoc(string(rune('a'+i)), "doc", section.Sections{{Name: "body", Content: section.Text(long)}}))
	}

	if _, err := s.Summarize(context.Background(), "q", docs); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(inner.last.User, "[4]") {
		t.Error("prompt includes more than the default doc count")
	}
	if n := strings.Count(inner.last.User, "あ"); n > DefaultSummaryDocs*DefaultSummaryDocChars {
		t.Errorf("prompt not truncated: %d runes of body", n)
	}
}

func TestSummarize_NoDocs(t *testing.T) {
	inner := &mockCompleter{}
	got, err := NewSummarizer(inner).Summarize(context.Background(), "q", nil)
	if err != nil || got != "" || inner.calls != 0 {
		t.Fatalf("got=%q err=%v calls=%d", got, err, inner.calls)
	}
}

func TestSummarize_Errors(t *testing.T) {
	docs := []document.Document{testDoc("a", "A", section.Sections{{Name: "x", Content: section.Text("y")}})}

	if _, err := NewSummarizer(nil).Summarize(context.Background(), "q", docs); !errors.Is(err, domain.ErrLLMDisabled) {
		t.Errorf("expected ErrLLMDisabled, got %v", err)
	}

	inner := &mockCompleter{err: domain.ErrLLMQuotaExceeded}
	if _, err := NewSummarizer(inner).Summarize(context.Background(), "q", docs); !errors.Is(err, domain.ErrLLMQuotaExceeded) {
		t.Errorf("expected ErrLLMQuotaExceeded, got %v", err)
	}
}
