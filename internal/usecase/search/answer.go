package search

import (
	"strings"

	"github.com/kailas-cloud/docfinder/internal/domain/document"
	"github.com/kailas-cloud/docfinder/internal/domain/document/section"
	"github.com/kailas-cloud/docfinder/internal/domain/search/intent"
	"github.com/kailas-cloud/docfinder/internal/domain/search/result"
)

// Fixed answer texts.
const (
	NoInformationAnswer = "申し訳ございませんが、該当する情報が見つかりませんでした。"
	MoreResultsNote     = "他にも関連する情報があります。"
)

// intentSection returns the non-empty canonical section answering in, if any.
func intentSection(doc *document.Document, in intent.Intent) (section.Section, bool) {
	names := in.SectionNames()
	if len(names) == 0 {
		return section.Section{}, false
	}
	sec, ok := doc.Sections().Get(names...)
	if !ok || sec.Content.IsEmpty() {
		return section.Section{}, false
	}
	return sec, true
}

// relevantSection picks the section quoted in the answer and its heading:
// the intent section, else an overview section, else the first section.
func relevantSection(doc *document.Document, in intent.Intent) (string, section.Content) {
	if sec, ok := intentSection(doc, in); ok {
		return in.Label(), sec.Content
	}
	if sec, ok := doc.Sections().Get(intent.OverviewSections...); ok {
		return intent.OverviewLabel, sec.Content
	}
	if secs := doc.Sections(); len(secs) > 0 {
		return "【" + secs[0].Name + "】", secs[0].Content
	}
	return intent.OverviewLabel, section.Text("")
}

func synthesize(ranked []result.Scored, in intent.Intent) string {
	if len(ranked) == 0 {
		return NoInformationAnswer
	}

	top := ranked[0].Document()
	label, content := relevantSection(&top, in)

	var b strings.Builder
	b.WriteString(top.Title())
	b.WriteString("について\n\n")
	b.WriteString(label)
	b.WriteString("\n")
	b.WriteString(content.Flatten("\n"))
	if len(ranked) > 1 {
		b.WriteString("\n\n")
		b.WriteString(MoreResultsNote)
	}
	return b.String()
}
