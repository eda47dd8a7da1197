// Package intent classifies what a query is asking for and maps each intent to
// the section a document conventionally answers it in.
package intent

import "strings"

// Intent is the inferred purpose of a query.
type Intent string

// Known intents.
const (
	Pricing    Intent = "pricing"
	Features   Intent = "features"
	Procedures Intent = "procedures"
	Rules      Intent = "rules"
	Terms      Intent = "terms"
	Support    Intent = "support"
	General    Intent = "general"
)

type rule struct {
	intent Intent
	terms  []string
}

// rules are evaluated in order, first match wins.
var rules = []rule{
	{Pricing, []string{"料金", "価格", "費用", "値段", "金額", "price", "pricing", "cost", "fee"}},
	{Features, []string{"機能", "特徴", "feature", "function"}},
	{Procedures, []string{"手順", "方法", "やり方", "流れ", "procedure", "step", "how to"}},
	{Rules, []string{"規則", "ルール", "規定", "規程", "rule", "regulation"}},
	{Terms, []string{"契約", "条項", "条件", "規約", "contract", "clause", "terms", "condition"}},
	{Support, []string{"サポート", "支援", "問い合わせ", "support", "help"}},
}

var (
	urgentCues = []string{"緊急", "至急", "重要", "urgent", "important", "asap"}
	detailCues = []string{"詳しく", "詳細", "具体的", "detail", "explain"}
)

// Classify maps lowercased query text to an intent.
func Classify(text string) Intent {
	for _, r := range rules {
		if containsAny(text, r.terms...) {
			return r.intent
		}
	}
	return General
}

// PriorityMultiplier returns 3 for urgency cues, 2 for detail cues, otherwise 1.
// Urgency is checked first.
func PriorityMultiplier(text string) int {
	switch {
	case containsAny(text, urgentCues...):
		return 3
	case containsAny(text, detailCues...):
		return 2
	default:
		return 1
	}
}

// canonical holds the section names conventionally answering an intent, and the label
// printed above that section in an answer.
var canonical = map[Intent]struct {
	names []string
	label string
}{
	Pricing:    {[]string{"pricing", "料金"}, "【料金】"},
	Features:   {[]string{"features", "機能"}, "【機能】"},
	Procedures: {[]string{"procedures", "手順"}, "【手順】"},
	Rules:      {[]string{"rules", "規則"}, "【規則】"},
	Terms:      {[]string{"terms", "契約条件"}, "【契約条件】"},
	Support:    {[]string{"support", "サポート"}, "【サポート】"},
}

// OverviewSections are the fallback section names when no canonical section applies.
var OverviewSections = []string{"overview", "概要"}

// OverviewLabel heads an overview section in an answer.
const OverviewLabel = "【概要】"

// SectionNames returns the canonical section names for i, or nil for General.
func (i Intent) SectionNames() []string {
	c, ok := canonical[i]
	if !ok {
		return nil
	}
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// Label returns the answer heading for the canonical section of i.
func (i Intent) Label() string {
	if c, ok := canonical[i]; ok {
		return c.label
	}
	return OverviewLabel
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
