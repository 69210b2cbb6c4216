package scan

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/leakshield/leakshield/internal/metrics"
	"github.com/leakshield/leakshield/internal/ner"
	"github.com/leakshield/leakshield/internal/pattern"
	"github.com/leakshield/leakshield/internal/pii"
	"github.com/leakshield/leakshield/internal/scorer"
	"github.com/leakshield/leakshield/internal/validator"
)

// Report metadata.
const (
	ToolName      = "leakshield"
	ReportVersion = "1.0"
)

const defaultConcurrency = 4

// Input is one document to scan.
type Input struct {
	Text string
	// Source labels the document in reports, e.g. "text", a file path or a URL.
	Source string
	// Path is set when the text came from a file.
	Path string
}

// FileInput is one file for ScanFiles.
type FileInput struct {
	Path string
	Text string
}

// Engine runs the match, validate and score pipeline. It is safe for
// concurrent use.
type Engine struct {
	recognizer  ner.Recognizer
	rules       *Rules
	logger      *slog.Logger
	metrics     *metrics.Metrics
	now         func() time.Time
	maxFindings int
	concurrency int

	matcher   *pattern.Matcher
	validator *validator.Validator
	scorer    *scorer.Scorer
}

// Option configures an Engine.
type Option func(*Engine)

// WithRecognizer sets the entity recognizer. The default is regex-only.
func WithRecognizer(r ner.Recognizer) Option {
	return func(e *Engine) { e.recognizer = r }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithRules applies disabled types, severity overrides, the allowlist and
// extra keywords.
func WithRules(r *Rules) Option {
	return func(e *Engine) { e.rules = r }
}

// WithMetrics records scans in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithClock overrides time.Now, for reproducible reports in tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithMaxFindings keeps only the n most severe findings. Zero means no limit.
func WithMaxFindings(n int) Option {
	return func(e *Engine) { e.maxFindings = n }
}

// WithConcurrency bounds how many documents ScanFiles processes at once.
func WithConcurrency(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		recognizer:  ner.Noop{},
		logger:      slog.Default(),
		now:         time.Now,
		concurrency: defaultConcurrency,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.recognizer == nil {
		e.recognizer = ner.Noop{}
	}

	e.matcher = pattern.New(e.rules.Disabled()...)
	vopts := []validator.Option{validator.WithLogger(e.logger)}
	if e.rules != nil {
		vopts = append(vopts, validator.WithKeywords(e.rules.Keywords))
	}
	e.validator = validator.New(e.recognizer, vopts...)
	e.scorer = scorer.Default()
	if overrides := e.rules.Overrides(); len(overrides) > 0 {
		e.scorer = scorer.WithSeverityOverrides(overrides)
	}
	return e
}

// Recognizer returns the configured recognizer.
func (e *Engine) Recognizer() ner.Recognizer { return e.recognizer }

// document is the scored result of one input.
type document struct {
	findings     []pii.Finding
	entities     []pii.Entity
	nerAvailable bool
	nerDuration  time.Duration
}

// Scan scans a single document. Empty input yields a report with no
// findings.
func (e *Engine) Scan(ctx context.Context, in Input) (*pii.Report, error) {
	start := e.now()
	source := in.Source
	if source == "" {
		source = in.Path
	}

	doc, err := e.scanDocument(ctx, in.Text, source)
	if err != nil {
		return nil, err
	}

	report := e.newReport(start, source)
	report.Entities = doc.entities
	return e.finish(report, start, doc.findings, doc.entities, doc.nerAvailable, doc.nerDuration), nil
}

// ScanFiles scans files concurrently and merges their findings in input
// order into one report.
func (e *Engine) ScanFiles(ctx context.Context, files []FileInput) (*pii.Report, error) {
	start := e.now()
	docs := make([]document, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i, f := range files {
		g.Go(func() error {
			doc, err := e.scanDocument(gctx, f.Text, f.Path)
			if err != nil {
				return fmt.Errorf("scanning %s: %w", f.Path, err)
			}
			docs[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var findings []pii.Finding
	var entities []pii.Entity
	var nerDuration time.Duration
	// With no files, availability reflects the configured recognizer.
	nerAvailable := e.hasRecognizer()
	for _, d := range docs {
		findings = append(findings, d.findings...)
		entities = append(entities, d.entities...)
		nerDuration += d.nerDuration
		nerAvailable = nerAvailable && d.nerAvailable
	}

	source := fmt.Sprintf("%d files", len(files))
	if len(files) == 1 {
		source = files[0].Path
	}
	report := e.newReport(start, source)
	return e.finish(report, start, findings, entities, nerAvailable, nerDuration), nil
}

func (e *Engine) hasRecognizer() bool {
	_, noop := e.recognizer.(ner.Noop)
	return !noop
}

func (e *Engine) scanDocument(ctx context.Context, text, source string) (document, error) {
	if strings.TrimSpace(text) == "" {
		return document{nerAvailable: e.hasRecognizer()}, nil
	}
	docStart := time.Now()

	cands := e.matcher.Match(text)
	res, err := e.validator.Validate(ctx, text, cands)
	if err != nil {
		return document{}, err
	}
	e.metrics.ObserveNER(res.Recognizer, res.NERDuration)
	if !res.NERAvailable {
		e.logger.Debug("scanning without entity recognition", "source", source, "recognizer", res.Recognizer)
	}

	lines := newLineIndex(text)
	findings := make([]pii.Finding, 0, len(cands))
	for i, c := range cands {
		if e.rules.Allowed(c.Value) {
			continue
		}
		f := e.scorer.Score(c, res.Signals[i])
		f.Source = source
		f.Line = lines.line(c.Span.Start)
		f.ID = findingID(f)
		findings = append(findings, f)
	}

	e.metrics.ObserveScan(sourceKind(source), time.Since(docStart), findings, res.NERAvailable)
	e.logger.Debug("document scanned", "source", source, "candidates", len(cands), "findings", len(findings))
	return document{
		findings:     findings,
		entities:     res.Entities,
		nerAvailable: res.NERAvailable,
		nerDuration:  res.NERDuration,
	}, nil
}

func (e *Engine) newReport(start time.Time, source string) *pii.Report {
	return &pii.Report{
		Tool:       ToolName,
		Version:    ReportVersion,
		RunID:      uuid.NewString(),
		Source:     source,
		ScannedAt:  start.UTC(),
		Recognizer: e.recognizer.Name(),
	}
}

func (e *Engine) finish(r *pii.Report, start time.Time, findings []pii.Finding, entities []pii.Entity, nerAvailable bool, nerDuration time.Duration) *pii.Report {
	findings = limitFindings(findings, e.maxFindings)
	if findings == nil {
		findings = []pii.Finding{}
	}
	r.NERAvailable = nerAvailable
	r.Findings = findings
	r.Summary = pii.ComputeSummary(findings)
	r.Insights = BuildInsights(findings, entities)
	r.Timing = pii.Timing{
		NERMs:   nerDuration.Milliseconds(),
		TotalMs: e.now().Sub(start).Milliseconds(),
	}
	return r
}

// limitFindings keeps the n highest-ranked findings, ordered by severity,
// then confidence, then position. Below the limit detection order is kept.
func limitFindings(findings []pii.Finding, n int) []pii.Finding {
	if n <= 0 || len(findings) <= n {
		return findings
	}
	sorted := make([]pii.Finding, len(findings))
	copy(sorted, findings)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if sa, sb := pii.SeverityRank(a.Severity), pii.SeverityRank(b.Severity); sa != sb {
			return sa > sb
		}
		if ca, cb := pii.ConfidenceRank(a.Confidence), pii.ConfidenceRank(b.Confidence); ca != cb {
			return ca > cb
		}
		return a.Span.Start < b.Span.Start
	})
	return sorted[:n]
}

func findingID(f pii.Finding) string {
	data := fmt.Sprintf("%s:%s:%s:%d", f.Source, f.Type, f.Value, f.Span.Start)
	h := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", h[:8])
}

// sourceKind reduces a source label to a low-cardinality metric label.
func sourceKind(source string) string {
	switch {
	case source == "" || source == "text" || source == "stdin":
		return "text"
	case source == "http" || source == "mcp":
		return source
	case strings.HasPrefix(source, "sample:"):
		return "sample"
	case strings.HasPrefix(source, "https://"), strings.HasPrefix(source, "http://"), strings.HasPrefix(source, "github.com/"):
		return "url"
	default:
		return "file"
	}
}

// lineIndex maps byte offsets to 1-based line numbers.
type lineIndex []int

func newLineIndex(text string) lineIndex {
	idx := lineIndex{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			idx = append(idx, i+1)
		}
	}
	return idx
}

func (l lineIndex) line(offset int) int {
	return sort.Search(len(l), func(i int) bool { return l[i] > offset })
}
