// Package analyzer extracts function spans from discovered files and checks
// them against the line threshold and allow-list.
package analyzer

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/gubarz/fnspan/internal/discovery"
	"github.com/gubarz/fnspan/internal/spans"
	"github.com/gubarz/fnspan/internal/telemetry"
	"golang.org/x/sync/errgroup"
)

// Finding is one extracted function together with its verdict. File is
// relative to the scan root; Path is how the file was reached.
type Finding struct {
	File      string             `json:"file" yaml:"file"`
	Path      string             `json:"path" yaml:"path"`
	Span      spans.FunctionSpan `json:"span" yaml:"span"`
	Exceeds   bool               `json:"exceeds" yaml:"exceeds"`
	Allowed   bool               `json:"allowed" yaml:"allowed"`
	AllowRule string             `json:"allow_rule,omitempty" yaml:"allow_rule,omitempty"`
}

// Violation reports whether the finding fails the run
func (f Finding) Violation() bool {
	return f.Exceeds && !f.Allowed
}

// Report is the result of one analyzer run
type Report struct {
	Threshold  int       `json:"threshold" yaml:"threshold"`
	Files      int       `json:"files" yaml:"files"`
	Functions  int       `json:"functions" yaml:"functions"`
	Violations int       `json:"violations" yaml:"violations"`
	Excused    int       `json:"excused" yaml:"excused"`
	Findings   []Finding `json:"findings" yaml:"findings"`
}

// Failed reports whether any unexcused violation was found
func (r *Report) Failed() bool {
	return r.Violations > 0
}

// Options configures an Analyzer
type Options struct {
	MaxLines int
	Workers  int
	Allow    []string
	// ShowAll keeps functions within the threshold in Findings
	ShowAll bool
	Logger  *slog.Logger
	Metrics *telemetry.Metrics
}

// Analyzer runs span extraction over a set of files
type Analyzer struct {
	maxLines int
	workers  int
	allow    AllowList
	showAll  bool
	logger   *slog.Logger
	metrics  *telemetry.Metrics
}

// New creates an analyzer
func New(opts Options) *Analyzer {
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{
		maxLines: opts.MaxLines,
		workers:  workers,
		allow:    ParseAllowList(opts.Allow),
		showAll:  opts.ShowAll,
		logger:   logger,
		metrics:  opts.Metrics,
	}
}

// Run extracts spans from every file and builds a sorted report
func (a *Analyzer) Run(ctx context.Context, files []discovery.SourceFile) (*Report, error) {
	results := make([][]Finding, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)
	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = a.analyzeFile(ctx, file)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &Report{Threshold: a.maxLines, Files: len(files), Findings: []Finding{}}
	for _, findings := range results {
		for _, f := range findings {
			report.Functions++
			if f.Exceeds {
				if f.Allowed {
					report.Excused++
				} else {
					report.Violations++
				}
			}
			if a.showAll || f.Exceeds {
				report.Findings = append(report.Findings, f)
			}
		}
	}
	sortFindings(report.Findings)

	a.logger.Debug("analysis complete",
		slog.Int("files", report.Files),
		slog.Int("functions", report.Functions),
		slog.Int("violations", report.Violations),
		slog.Int("excused", report.Excused))
	return report, nil
}

func (a *Analyzer) analyzeFile(ctx context.Context, file discovery.SourceFile) []Finding {
	start := time.Now()
	extracted := spans.Extract(file.Text)
	a.metrics.RecordFile(ctx, len(extracted), time.Since(start))

	findings := make([]Finding, 0, len(extracted))
	for _, span := range extracted {
		f := Finding{
			File:    file.RelPath,
			Path:    file.Path,
			Span:    span,
			Exceeds: span.LineCount > a.maxLines,
		}
		if f.Exceeds {
			f.AllowRule, f.Allowed = a.allow.Match(file.RelPath, span.Name)
		}
		a.metrics.RecordFunction(ctx, span.LineCount, f.Exceeds, f.Allowed)
		findings = append(findings, f)
	}

	a.logger.Debug("scanned file",
		slog.String("path", file.RelPath),
		slog.Int("functions", len(extracted)))
	return findings
}

// sortFindings orders by length descending, then file, then start line
func sortFindings(findings []Finding) {
	sort.SliceStable(findings, func(i, j int) bool {
		a, b := findings[i], findings[j]
		if a.Span.LineCount != b.Span.LineCount {
			return a.Span.LineCount > b.Span.LineCount
		}
		if a.File != b.File {
			return a.File < b.File
		}
		return a.Span.StartLine < b.Span.StartLine
	})
}
