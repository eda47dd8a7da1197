// Command docfinder-cli inspects query analysis and runs the ranking engine
// offline against a JSON corpus file.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docfinder/internal/domain/document"
	"github.com/kailas-cloud/docfinder/internal/domain/document/doctype"
	"github.com/kailas-cloud/docfinder/internal/domain/document/record"
	"github.com/kailas-cloud/docfinder/internal/domain/search/query"
	"github.com/kailas-cloud/docfinder/internal/domain/search/result"
	logpkg "github.com/kailas-cloud/docfinder/internal/logger"
	searchuc "github.com/kailas-cloud/docfinder/internal/usecase/search"
	"github.com/kailas-cloud/docfinder/internal/version"
)

const loggerKey = "logger"

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:    "docfinder-cli",
		Usage:   "Analyze queries and rank documents offline",
		Version: version.String(),
		Writer:  out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "warn",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "analyze",
				Usage:     "Show keywords, intent, priority multiplier and detected type of a query",
				ArgsUsage: "<query>",
				Action:    analyzeCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "Print JSON instead of text"},
				},
			},
			{
				Name:      "search",
				Usage:     "Rank a JSON corpus file against a query",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "corpus",
						Aliases:  []string{"c"},
						Usage:    "Path to a JSON file holding one record or an array of records",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "type",
						Aliases: []string{"t"},
						Usage:   "Explicit document type filter (meeting, policy, contract, manual, other)",
					},
					&cli.StringFlag{
						Name:  "tie-break",
						Usage: "Order of equal scores: recency or none",
						Value: string(searchuc.TieBreakRecency),
					},
					&cli.BoolFlag{Name: "no-detect", Usage: "Do not narrow the corpus by the type detected in the query"},
					&cli.BoolFlag{Name: "json", Usage: "Print JSON instead of text"},
				},
			},
		},
	}
}

func setupLogger(c *cli.Context) error {
	l, err := logpkg.NewLogger(logpkg.EnvCLI, c.String("log-level"))
	if err != nil {
		return fmt.Errorf("setup logger: %w", err)
	}
	if c.App.Metadata == nil {
		c.App.Metadata = map[string]any{}
	}
	c.App.Metadata[loggerKey] = l
	return nil
}

func loggerFrom(c *cli.Context) *zap.Logger {
	if l, ok := c.App.Metadata[loggerKey].(*zap.Logger); ok {
		return l
	}
	return zap.NewNop()
}

func queryArg(c *cli.Context) (string, error) {
	q := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if q == "" {
		return "", errors.New("query argument is required")
	}
	return q, nil
}

type analysisOutput struct {
	Query              string   `json:"query"`
	Keywords           []string `json:"keywords"`
	Intent             string   `json:"intent"`
	PriorityMultiplier int      `json:"priorityMultiplier"`
	DetectedType       string   `json:"detectedType,omitempty"`
}

func analyzeCommand(c *cli.Context) error {
	q, err := queryArg(c)
	if err != nil {
		return err
	}
	a := query.Analyze(q)
	out := analysisOutput{
		Query:              q,
		Keywords:           a.Keywords,
		Intent:             string(a.Intent),
		PriorityMultiplier: a.PriorityMultiplier,
		DetectedType:       string(a.DetectedType),
	}
	if c.Bool("json") {
		return writeJSON(c.App.Writer, out)
	}

	tw := tabwriter.NewWriter(c.App.Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "query\t%s\n", out.Query)
	fmt.Fprintf(tw, "keywords\t%s\n", strings.Join(out.Keywords, ", "))
	fmt.Fprintf(tw, "intent\t%s\n", out.Intent)
	fmt.Fprintf(tw, "priority\tx%d\n", out.PriorityMultiplier)
	detected := out.DetectedType
	if detected == "" {
		detected = "-"
	}
	fmt.Fprintf(tw, "detected type\t%s\n", detected)
	return tw.Flush()
}

type matchOutput struct {
	ID    string  `json:"id"`
	Title string  `json:"title"`
	Type  string  `json:"documentType"`
	Score float64 `json:"score"`
}

type searchOutput struct {
	Query         string        `json:"query"`
	Intent        string        `json:"intent"`
	DocumentType  string        `json:"documentType,omitempty"`
	Answer        string        `json:"answer"`
	Sources       []string      `json:"sources"`
	DocumentCount int           `json:"documentCount"`
	Matches       []matchOutput `json:"matches"`
}

func searchCommand(c *cli.Context) error {
	raw, err := queryArg(c)
	if err != nil {
		return err
	}

	tb := searchuc.TieBreak(c.String("tie-break"))
	if !tb.IsValid() {
		return fmt.Errorf("invalid --tie-break %q: want recency or none", tb)
	}
	t, ok := doctype.ParseStrict(c.String("type"))
	if !ok {
		return fmt.Errorf("invalid --type %q", c.String("type"))
	}
	q, err := query.New(raw, t)
	if err != nil {
		return fmt.Errorf("invalid query: %w", err)
	}

	corpus, err := loadCorpus(c.String("corpus"), time.Now(), loggerFrom(c))
	if err != nil {
		return err
	}

	engine := searchuc.NewEngine(searchuc.EngineConfig{
		Weights:    searchuc.DefaultWeights(),
		TieBreak:   tb,
		DetectType: !c.Bool("no-detect"),
	})
	answer := engine.Search(q, corpus)

	out := toSearchOutput(raw, answer)
	if c.Bool("json") {
		return writeJSON(c.App.Writer, out)
	}

	fmt.Fprintln(c.App.Writer, out.Answer)
	if len(out.Matches) == 0 {
		return nil
	}
	fmt.Fprintln(c.App.Writer)
	tw := tabwriter.NewWriter(c.App.Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tSCORE\tTYPE\tID\tTITLE")
	for i, m := range out.Matches {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", i+1, strconv.FormatFloat(m.Score, 'f', -1, 64), m.Type, m.ID, m.Title)
	}
	return tw.Flush()
}

// loadCorpus hydrates every record of the file. Records without an id are
// numbered by position.
func loadCorpus(path string, now time.Time, logger *zap.Logger) ([]document.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read corpus: %w", err)
	}
	recs, err := record.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode corpus: %w", err)
	}

	docs := make([]document.Document, 0, len(recs))
	for i := range recs {
		if recs[i].ID == "" {
			recs[i].ID = "doc-" + strconv.Itoa(i+1)
		}
		if len(recs[i].Sections) == 0 {
			logger.Warn("Record has no sections", zap.String("id", recs[i].ID))
		}
		docs = append(docs, recs[i].Hydrate(now))
	}
	logger.Debug("Corpus loaded", zap.String("path", path), zap.Int("documents", len(docs)))
	return docs, nil
}

func toSearchOutput(raw string, a result.Answer) searchOutput {
	out := searchOutput{
		Query:         raw,
		Intent:        string(a.Intent()),
		DocumentType:  string(a.EffectiveType()),
		Answer:        a.Text(),
		Sources:       a.Sources(),
		DocumentCount: a.ResultCount(),
		Matches:       make([]matchOutput, 0, a.ResultCount()),
	}
	if out.Sources == nil {
		out.Sources = []string{}
	}
	for _, m := range a.Matches() {
		d := m.Document()
		out.Matches = append(out.Matches, matchOutput{
			ID: d.ID(), Title: d.Title(), Type: string(d.Type()), Score: m.Score(),
		})
	}
	return out
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
