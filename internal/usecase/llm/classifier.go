package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/kailas-cloud/docfinder/internal/domain"
	"github.com/kailas-cloud/docfinder/internal/domain/document/doctype"
	"github.com/kailas-cloud/docfinder/internal/domain/document/section"
)

const (
	classifyMaxTokens = 8
	classifyMaxChars  = 800
)

var classifySystemPrompt = "Classify the company document into exactly one category: " +
	joinTypes() + ". Reply with the category name only."

// Classifier assigns a document type to uploads that arrive without one.
type Classifier struct {
	c domain.Completer
}

// NewClassifier creates a Classifier.
func NewClassifier(c domain.Completer) *Classifier {
	return &Classifier{c: c}
}

// Classify returns the model's category for the document.
// Unrecognized replies map to doctype.Other; on error the type is doctype.Other too.
func (c *Classifier) Classify(ctx context.Context, title string, sections section.Sections) (doctype.Type, error) {
	if c.c == nil {
		return doctype.Other, domain.ErrLLMDisabled
	}

	var b strings.Builder
	b.WriteString("Title: ")
	b.WriteString(title)
	b.WriteString("\n")
	for _, sec := range sections {
		fmt.Fprintf(&b, "%s: %s\n", sec.Name, sec.Content.Flatten(" / "))
	}

	res, err := c.c.Complete(ctx, domain.ChatRequest{
		Operation: domain.OperationClassify,
		System:    classifySystemPrompt,
		User:      truncate(b.String(), classifyMaxChars),
		MaxTokens: classifyMaxTokens,
	})
	if err != nil {
		return doctype.Other, fmt.Errorf("classify: %w", err)
	}
	return parseCategory(res.Text), nil
}

// parseCategory accepts replies like "Policy", "policy." or "category: contract".
func parseCategory(reply string) doctype.Type {
	words := strings.FieldsFunc(strings.ToLower(reply), func(r rune) bool {
		return r < 'a' || r > 'z'
	})
	for _, w := range words {
		if t, ok := doctype.ParseStrict(w); ok {
			return t
		}
	}
	return doctype.Other
}

func joinTypes() string {
	all := doctype.All()
	names := make([]string, len(all))
	for i, t := range all {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}
