package search

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/kailas-cloud/docfinder/internal/domain/document"
	"github.com/kailas-cloud/docfinder/internal/domain/document/doctype"
	"github.com/kailas-cloud/docfinder/internal/domain/document/priority"
	"github.com/kailas-cloud/docfinder/internal/domain/document/section"
	"github.com/kailas-cloud/docfinder/internal/domain/search/intent"
	"github.com/kailas-cloud/docfinder/internal/domain/search/query"
)

var baseTime = time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)

func doc(id, title string, t doctype.Type, secs section.Sections) document.Document {
	return document.Reconstruct(id, title, t, secs, nil, priority.None, baseTime)
}

func mustQuery(t *testing.T, raw string, filter doctype.Type) query.Query {
	t.Helper()
	q, err := query.New(raw, filter)
	if err != nil {
		t.Fatalf("query.New(%q): %v", raw, err)
	}
	return q
}

func TestSearch_EmptyCorpus(t *testing.T) {
	e := NewEngine(DefaultEngineConfig())
	for _, raw := range []string{"", "料金について教えて", "urgent support"} {
		a := e.Search(mustQuery(t, raw, ""), nil)
		if a.Text() != NoInformationAnswer {
			t.Errorf("query %q: answer = %q", raw, a.Text())
		}
		if a.Sources() == nil || len(a.Sources()) != 0 {
			t.Errorf("query %q: sources = %#v, want empty non-nil", raw, a.Sources())
		}
	}
}

func TestSearch_PricingExample(t *testing.T) {
	corpus := []document.Document{
		doc("p1", "料金プラン", doctype.Manual, section.Sections{
			{Name: "pricing", Content: section.List([]string{"月額3万円"})},
		}),
	}
	e := NewEngine(DefaultEngineConfig())
	a := e.Search(mustQuery(t, "料金について教えて", ""), corpus)

	if a.Intent() != intent.Pricing {
		t.Errorf("intent = %q, want pricing", a.Intent())
	}
	if !strings.Contains(a.Text(), "月額3万円") {
		t.Errorf("answer missing content: %q", a.Text())
	}
	want := "料金プランについて\n\n【料金】\n月額3万円"
	if a.Text() != want {
		t.Errorf("answer = %q, want %q", a.Text(), want)
	}
	if got := a.Sources(); len(got) != 1 || got[0] != "料金プラン" {
		t.Errorf("sources = %v", got)
	}
}

func TestSearch_EmptyQueryNoInformation(t *testing.T) {
	corpus := []document.Document{
		doc("a", "A", doctype.Other, section.Sections{{Name: "overview", Content: section.Text("x")}}),
		doc("b", "B", doctype.Other, section.Sections{{Name: "overview", Content: section.Text("y")}}),
	}
	a := NewEngine(DefaultEngineConfig()).Search(mustQuery(t, "", ""), corpus)
	if a.Text() != NoInformationAnswer {
		t.Errorf("answer = %q", a.Text())
	}
	if a.ResultCount() != 0 {
		t.Errorf("result count = %d", a.ResultCount())
	}
}

func TestSearch_TermsSectionRanksFirst(t *testing.T) {
	corpus := []document.Document{
		doc("c1", "業務委託契約", doctype.Contract, section.Sections{
			{Name: "overview", Content: section.Text("契約の概要")},
		}),
		doc("c2", "業務委託契約 改定版", doctype.Contract, section.Sections{
			{Name: "overview", Content: section.Text("契約の概要")},
			{Name: "terms", Content: section.Text("支払いは月末締め")},
		}),
	}
	a := NewEngine(DefaultEngineConfig()).Search(mustQuery(t, "契約の条件を教えて", ""), corpus)

	if a.Intent() != intent.Terms {
		t.Fatalf("intent = %q, want terms", a.Intent())
	}
	src := a.Sources()
	if len(src) != 2 || src[0] != "業務委託契約 改定版" {
		t.Fatalf("sources = %v", src)
	}
	if !strings.HasPrefix(a.Text(), "業務委託契約 改定版について\n\n【契約条件】\n支払いは月末締め") {
		t.Errorf("answer = %q", a.Text())
	}
	if !strings.HasSuffix(a.Text(), "\n\n"+MoreResultsNote) {
		t.Errorf("answer missing more-results note: %q", a.Text())
	}
}

func TestSearch_ResultCap(t *testing.T) {
	corpus := make([]document.Document, 0, 12)
	for i := range 12 {
		corpus = append(corpus, doc(fmt.Sprintf("d%d", i), fmt.Sprintf("サポート窓口 %d", i), doctype.Other,
			section.Sections{{Name: "overview", Content: section.Text("窓口")}}))
	}
	a := NewEngine(DefaultEngineConfig()).Search(mustQuery(t, "サポート窓口", ""), corpus)
	if n := len(a.Sources()); n != MaxResults {
		t.Errorf("sources = %d, want %d", n, MaxResults)
	}
}

func TestSearch_Idempotent(t *testing.T) {
	corpus := []document.Document{
		doc("a", "料金表", doctype.Manual, section.Sections{{Name: "料金", Content: section.Text("1万円")}}),
		doc("b", "料金改定", doctype.Policy, section.Sections{{Name: "概要", Content: section.Text("料金を改定")}}),
		doc("c", "料金FAQ", doctype.Manual, section.Sections{{Name: "faq", Content: section.Text("料金は?")}}),
	}
	e := NewEngine(EngineConfig{Weights: DefaultWeights(), TieBreak: TieBreakNone})
	q := mustQuery(t, "料金", "")
	first := e.Search(q, corpus)
	second := e.Search(q, corpus)
	if first.Text() != second.Text() {
		t.Errorf("answers differ: %q vs %q", first.Text(), second.Text())
	}
	if strings.Join(first.Sources(), "|") != strings.Join(second.Sources(), "|") {
		t.Errorf("sources differ: %v vs %v", first.Sources(), second.Sources())
	}
}

func TestSearch_TieBreak(t *testing.T) {
	older := document.Reconstruct("old", "就業規則", doctype.Policy,
		section.Sections{{Name: "overview", Content: section.Text("本文")}}, nil, priority.None, baseTime)
	newer := document.Reconstruct("new", "就業規則", doctype.Policy,
		section.Sections{{Name: "overview", Content: section.Text("本文")}}, nil, priority.None, baseTime.Add(time.Hour))
	corpus := []document.Document{older, newer}

	tests := []struct {
		name  string
		tb    TieBreak
		first string
	}{
		{"recency", TieBreakRecency, "new"},
		{"encounter order", TieBreakNone, "old"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEngine(EngineConfig{Weights: DefaultWeights(), TieBreak: tt.tb})
			a := e.Search(mustQuery(t, "就業", ""), corpus)
			m := a.Matches()
			if len(m) != 2 {
				t.Fatalf("matches = %d", len(m))
			}
			top := m[0].Document()
			if top.ID() != tt.first {
				t.Errorf("top = %q, want %q", top.ID(), tt.first)
			}
		})
	}
}

func TestSearch_TypeFilter(t *testing.T) {
	corpus := []document.Document{
		doc("m", "料金マニュアル", doctype.Manual, section.Sections{{Name: "overview", Content: section.Text("x")}}),
		doc("p", "料金ポリシー", doctype.Policy, section.Sections{{Name: "overview", Content: section.Text("y")}}),
	}
	e := NewEngine(DefaultEngineConfig())

	t.Run("explicit filter", func(t *testing.T) {
		a := e.Search(mustQuery(t, "料金", doctype.Policy), corpus)
		if got := a.Sources(); len(got) != 1 || got[0] != "料金ポリシー" {
			t.Errorf("sources = %v", got)
		}
		if a.EffectiveType() != doctype.Policy {
			t.Errorf("effective type = %q", a.EffectiveType())
		}
	})

	t.Run("explicit beats detected", func(t *testing.T) {
		a := e.Search(mustQuery(t, "料金 マニュアル", doctype.Policy), corpus)
		if a.EffectiveType() != doctype.Policy {
			t.Errorf("effective type = %q", a.EffectiveType())
		}
	})

	t.Run("detected", func(t *testing.T) {
		a := e.Search(mustQuery(t, "料金 マニュアル", ""), corpus)
		if got := a.Sources(); len(got) != 1 || got[0] != "料金マニュアル" {
			t.Errorf("sources = %v", got)
		}
	})

	t.Run("detection disabled", func(t *testing.T) {
		off := NewEngine(EngineConfig{Weights: DefaultWeights(), TieBreak: TieBreakNone})
		a := off.Search(mustQuery(t, "料金 会議", ""), corpus)
		if a.EffectiveType() != "" {
			t.Errorf("effective type = %q, want none", a.EffectiveType())
		}
		if a.ResultCount() != 2 {
			t.Errorf("result count = %d, want 2", a.ResultCount())
		}
	})
}

func TestSearch_SectionFallbacks(t *testing.T) {
	e := NewEngine(DefaultEngineConfig())

	tests := []struct {
		name  string
		query string
		secs  section.Sections
		want  string
	}{
		{
			"overview",
			"休暇",
			section.Sections{{Name: "背景", Content: section.Text("b")}, {Name: "概要", Content: section.Text("要約")}},
			"休暇制度について\n\n【概要】\n要約",
		},
		{
			"first section",
			"休暇",
			section.Sections{{Name: "背景", Content: section.List([]string{"一", "二"})}},
			"休暇制度について\n\n【背景】\n一\n二",
		},
		{
			"empty intent section falls back",
			"休暇の料金",
			section.Sections{{Name: "pricing", Content: section.Text("")}, {Name: "overview", Content: section.Text("ov")}},
			"休暇制度について\n\n【概要】\nov",
		},
		{
			"no sections",
			"休暇",
			nil,
			"休暇制度について\n\n【概要】\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			corpus := []document.Document{doc("x", "休暇制度", doctype.Policy, tt.secs)}
			a := e.Search(mustQuery(t, tt.query, ""), corpus)
			if a.Text() != tt.want {
				t.Errorf("answer = %q, want %q", a.Text(), tt.want)
			}
		})
	}
}

func TestSearch_SectionCount(t *testing.T) {
	corpus := []document.Document{
		doc("m", "経費精算マニュアル", doctype.Manual, section.Sections{
			{Name: "overview", Content: section.Text("a")},
			{Name: "procedures", Content: section.List([]string{"申請", "承認"})},
			{Name: "support", Content: section.Text("経理部")},
		}),
	}
	e := NewEngine(EngineConfig{Weights: DefaultWeights(), TieBreak: TieBreakNone})
	a := e.Search(mustQuery(t, "経費精算の手順", ""), corpus)
	if a.SectionCount() != 3 {
		t.Errorf("section count = %d, want 3", a.SectionCount())
	}
	if !strings.Contains(a.Text(), "【手順】\n申請\n承認") {
		t.Errorf("answer = %q", a.Text())
	}
}

func TestNewEngine_InvalidTieBreak(t *testing.T) {
	e := NewEngine(EngineConfig{Weights: DefaultWeights(), TieBreak: "random"})
	if e.Config().TieBreak != TieBreakNone {
		t.Errorf("tie break = %q", e.Config().TieBreak)
	}
}
