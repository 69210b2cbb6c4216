package validator

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/leakshield/leakshield/internal/ner"
	"github.com/leakshield/leakshield/internal/pii"
)

// DefaultWindow is the number of characters examined on each side of a match.
const DefaultWindow = 80

var wordRe = regexp.MustCompile(`[a-z0-9]+`)

// Result is the outcome of validating one document.
type Result struct {
	// Signals is parallel to the candidates passed to Validate.
	Signals      []pii.ContextSignal
	Entities     []pii.Entity
	NERAvailable bool
	Recognizer   string
	NERDuration  time.Duration
}

// Validator computes context signals for candidates.
type Validator struct {
	recognizer ner.Recognizer
	keywords   Keywords
	window     int
	logger     *slog.Logger
}

// Option configures a Validator.
type Option func(*Validator)

// WithKeywords adds extra keywords to the built-in sets.
func WithKeywords(extra Keywords) Option {
	return func(v *Validator) { v.keywords = v.keywords.Merge(extra) }
}

// WithWindow overrides the context window size in characters.
func WithWindow(n int) Option {
	return func(v *Validator) {
		if n > 0 {
			v.window = n
		}
	}
}

// WithLogger sets the logger used to report recognizer failures.
func WithLogger(logger *slog.Logger) Option {
	return func(v *Validator) { v.logger = logger }
}

// New creates a Validator. A nil recognizer means regex-only mode.
func New(r ner.Recognizer, opts ...Option) *Validator {
	if r == nil {
		r = ner.Noop{}
	}
	v := &Validator{
		recognizer: r,
		keywords:   DefaultKeywords(),
		window:     DefaultWindow,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Recognizer returns the recognizer used by v.
func (v *Validator) Recognizer() ner.Recognizer { return v.recognizer }

// Validate runs the recognizer once over text and returns one signal per
// candidate. Recognizer failures degrade to regex-only mode; only context
// cancellation is returned as an error.
func (v *Validator) Validate(ctx context.Context, text string, cands []pii.Candidate) (Result, error) {
	res := Result{Recognizer: v.recognizer.Name()}
	if strings.TrimSpace(text) == "" {
		return res, nil
	}

	start := time.Now()
	entities, err := v.recognizer.Entities(ctx, text)
	res.NERDuration = time.Since(start)
	switch {
	case err == nil:
		res.NERAvailable = true
		res.Entities = entities
	case ctx.Err() != nil:
		return res, ctx.Err()
	case errors.Is(err, ner.ErrUnavailable):
		v.logger.Debug("entity recognition unavailable, using regex-only mode", "recognizer", res.Recognizer)
	default:
		v.logger.Warn("entity recognition failed, using regex-only mode", "recognizer", res.Recognizer, "error", err)
	}

	res.Signals = make([]pii.ContextSignal, len(cands))
	for i, c := range cands {
		res.Signals[i] = v.signal(text, c, res.Entities, res.NERAvailable)
	}
	return res, nil
}

func (v *Validator) signal(text string, c pii.Candidate, entities []pii.Entity, nerAvailable bool) pii.ContextSignal {
	win := Window(text, c.Span, v.window)
	lower := strings.ToLower(text[win.Start:win.End])

	words := make(map[string]bool)
	for _, w := range wordRe.FindAllString(lower, -1) {
		words[w] = true
	}

	s := pii.ContextSignal{NERAvailable: nerAvailable}
	for _, e := range entities {
		if !e.Span().Overlaps(win) {
			continue
		}
		switch e.Label {
		case pii.LabelPerson:
			s.PersonNearby = true
		case pii.LabelLocation:
			s.LocationNearby = true
		}
	}
	s.DisqualifyingKeywords = matchKeywords(v.keywords.Log, words, lower)
	s.Disqualified = len(s.DisqualifyingKeywords) > 0
	s.SupportingKeywords = matchKeywords(v.keywords.supporting(c.Type), words, lower)
	return s
}

// Window returns the span extending n characters either side of span,
// clamped to text and aligned to rune boundaries.
func Window(text string, span pii.Span, n int) pii.Span {
	start := min(max(span.Start, 0), len(text))
	for i := 0; i < n && start > 0; i++ {
		_, size := utf8.DecodeLastRuneInString(text[:start])
		start -= size
	}
	end := min(max(span.End, start), len(text))
	for i := 0; i < n && end < len(text); i++ {
		_, size := utf8.DecodeRuneInString(text[end:])
		end += size
	}
	return pii.Span{Start: start, End: end}
}
