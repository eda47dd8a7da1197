// Package query turns free-text search input into a keyword/intent analysis.
package query

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/kailas-cloud/docfinder/internal/domain/document/doctype"
	"github.com/kailas-cloud/docfinder/internal/domain/search/intent"
)

// MaxLength is the maximum accepted query length in bytes.
const MaxLength = 4096

// Query is a validated search input.
type Query struct {
	rawText    string
	typeFilter doctype.Type
}

// New creates a Query. An empty typeFilter means "no explicit filter".
func New(rawText string, typeFilter doctype.Type) (Query, error) {
	if len(rawText) > MaxLength {
		return Query{}, fmt.Errorf("query too long (max %d bytes)", MaxLength)
	}
	if typeFilter != "" && !typeFilter.IsValid() {
		return Query{}, fmt.Errorf("unknown document type %q", typeFilter)
	}
	return Query{rawText: rawText, typeFilter: typeFilter}, nil
}

// RawText returns the original user input.
func (q Query) RawText() string { return q.rawText }

// TypeFilter returns the explicit type filter and whether one was given.
func (q Query) TypeFilter() (doctype.Type, bool) { return q.typeFilter, q.typeFilter != "" }

// Analysis is the per-call derived view of a query.
type Analysis struct {
	Keywords           []string
	Intent             intent.Intent
	PriorityMultiplier int
	DetectedType       doctype.Type // empty when nothing matched
}

// Analyze runs keyword extraction, intent classification and type detection once.
// Cue words are not stripped from the keywords: "至急" or "urgent" both set the
// priority multiplier and score as keywords when a document contains them.
func Analyze(rawText string) Analysis {
	lower := strings.ToLower(rawText)
	detected, _ := DetectType(rawText)
	return Analysis{
		Keywords:           ExtractKeywords(rawText),
		Intent:             intent.Classify(lower),
		PriorityMultiplier: intent.PriorityMultiplier(lower),
		DetectedType:       detected,
	}
}

var (
	punctuation = strings.NewReplacer("、", "", "。", "", "！", "", "？", "")
	// ties at the same position resolve in argument order
	connectors = strings.NewReplacer(
		"について", " ",
		"教えて", " ",
		"とは", " ",
		"の", " ",
		"を", " ",
	)
)

// ExtractKeywords returns the lowercased query followed by its significant tokens,
// deduplicated. Blank input yields no keywords.
func ExtractKeywords(text string) []string {
	lower := strings.ToLower(strings.TrimSpace(text))
	if lower == "" {
		return nil
	}

	cleaned := connectors.Replace(punctuation.Replace(lower))

	seen := map[string]struct{}{lower: {}}
	keywords := []string{lower}
	for _, tok := range strings.Fields(cleaned) {
		if utf8.RuneCountInString(tok) <= 1 {
			continue
		}
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		keywords = append(keywords, tok)
	}
	return keywords
}

type typeRule struct {
	t     doctype.Type
	terms []string
}

var typeRules = []typeRule{
	{doctype.Meeting, []string{"meeting", "打ち合わせ", "会議", "議事録", "資料", "ミーティング"}},
	{doctype.Policy, []string{"policy", "ポリシー", "方針"}},
	{doctype.Contract, []string{"contract", "契約"}},
	{doctype.Manual, []string{"manual", "マニュアル", "手順書"}},
}

// DetectType infers a document type from query vocabulary.
func DetectType(text string) (doctype.Type, bool) {
	lower := strings.ToLower(text)
	for _, r := range typeRules {
		for _, term := range r.terms {
			if strings.Contains(lower, term) {
				return r.t, true
			}
		}
	}
	return "", false
}
