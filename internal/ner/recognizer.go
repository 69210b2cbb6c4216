package ner

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"unicode/utf8"

	"github.com/leakshield/leakshield/internal/pii"
)

// ErrUnavailable is returned when no entity recognition can be performed.
var ErrUnavailable = errors.New("ner: recognizer unavailable")

// Recognizer extracts named entities from a document.
type Recognizer interface {
	Entities(ctx context.Context, text string) ([]pii.Entity, error)
	Name() string
}

// Noop is the regex-only recognizer.
type Noop struct{}

func (Noop) Entities(context.Context, string) ([]pii.Entity, error) { return nil, ErrUnavailable }
func (Noop) Name() string { return "none" }

// Static returns the same entities for every call. It is meant for tests.
type Static struct {
	Found []pii.Entity
	Err   error

	calls atomic.Int64
}

func (s *Static) Entities(context.Context, string) ([]pii.Entity, error) {
	s.calls.Add(1)
	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]pii.Entity, len(s.Found))
	copy(out, s.Found)
	return out, nil
}

func (s *Static) Name() string { return "static" }

// Calls returns how many times Entities was invoked.
func (s *Static) Calls() int { return int(s.calls.Load()) }

// Mentions returns one entity per word, located at the word's first
// occurrence in text. Words that do not occur are skipped.
func Mentions(text, label string, words ...string) []pii.Entity {
	var out []pii.Entity
	for _, w := range words {
		if i := strings.Index(text, w); i >= 0 {
			out = append(out, pii.Entity{Label: label, Text: w, Start: i, End: i + len(w)})
		}
	}
	return out
}

// Anchor makes sure e points at e.Text inside text. Offsets reported by
// models are often wrong, so when text[Start:End] does not hold the entity
// the first exact, then case-insensitive, occurrence is used instead.
func Anchor(text string, e pii.Entity) (pii.Entity, bool) {
	if validSpan(text, e.Start, e.End) {
		if e.Text == "" || strings.EqualFold(text[e.Start:e.End], e.Text) {
			e.Text = text[e.Start:e.End]
			return e, true
		}
	}
	needle := strings.TrimSpace(e.Text)
	if needle == "" {
		return e, false
	}
	start, end := -1, -1
	if i := strings.Index(text, needle); i >= 0 {
		start, end = i, i+len(needle)
	} else if i, j, ok := indexFold(text, needle); ok {
		start, end = i, j
	} else {
		return e, false
	}
	e.Start, e.End = start, end
	e.Text = text[start:end]
	return e, true
}

// validSpan reports whether start and end are in range and on rune boundaries.
func validSpan(text string, start, end int) bool {
	if start < 0 || end > len(text) || start >= end {
		return false
	}
	return utf8.RuneStart(text[start]) && (end == len(text) || utf8.RuneStart(text[end]))
}

// indexFold finds needle in text ignoring case. Runes are compared one by one,
// so the returned span is measured in text even when case folding changes the
// encoded length.
func indexFold(text, needle string) (int, int, bool) {
	for i := range text {
		if n, ok := hasPrefixFold(text[i:], needle); ok {
			return i, i + n, true
		}
	}
	return 0, 0, false
}

func hasPrefixFold(s, prefix string) (int, bool) {
	n := 0
	for _, pr := range prefix {
		if n >= len(s) {
			return 0, false
		}
		sr, size := utf8.DecodeRuneInString(s[n:])
		if sr != pr && !strings.EqualFold(string(sr), string(pr)) {
			return 0, false
		}
		n += size
	}
	return n, true
}
