package pattern

import (
	"regexp"
	"strings"

	"github.com/leakshield/leakshield/internal/pii"
)

var (
	emailRe   = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	strictRe  = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	phoneRe   = regexp.MustCompile(`(?:\+?\d{1,3}[\s\-.]?)?(?:\(?\d{2,4}\)?[\s\-.]?)\d{3,5}[\s\-.]?\d{4,5}`)
	aadhaarRe = regexp.MustCompile(`\b[2-9]\d{3}[\s\-]?\d{4}[\s\-]?\d{4}\b`)
	// RE2 has no lookahead, so the reserved SSN blocks are rejected in validSSN.
	ssnRe     = regexp.MustCompile(`\b(\d{3})[\s\-](\d{2})[\s\-](\d{4})\b`)
	addressRe = regexp.MustCompile(`(?i)\b(?:No\.?\s*)?\d{1,5}[A-Za-z]?[,\s]+[A-Za-z0-9\s.\-]{3,40}` +
		`(?:Street|St|Road|Rd|Avenue|Ave|Lane|Ln|Drive|Dr|Boulevard|Blvd|Nagar|Colony|Hills|Layout|` +
		`Enclave|Cross|Main|Block|Sector|Phase|Place|Pl|Circle|Court|Ct|Way|Marg|Chowk|Bazaar|Galli|Peth)` +
		`(?:[,\s]+[A-Za-z\s]{2,30})?\b`)
	spaceRe = regexp.MustCompile(`\s+`)
)

const (
	aadhaarDigits  = 12
	minPhoneDigits = 7
)

// Matcher applies the fixed pattern set to text.
type Matcher struct {
	disabled map[pii.Type]bool
}

// New returns a Matcher. Types listed in disabled are never reported.
func New(disabled ...pii.Type) *Matcher {
	m := &Matcher{disabled: make(map[pii.Type]bool)}
	for _, t := range disabled {
		m.disabled[t] = true
	}
	return m
}

// Types returns the enabled types in scan order.
func (m *Matcher) Types() []pii.Type {
	var out []pii.Type
	for _, t := range pii.AllTypes {
		if !m.disabled[t] {
			out = append(out, t)
		}
	}
	return out
}

// Match is shorthand for New().Match(text).
func Match(text string) []pii.Candidate {
	return New().Match(text)
}

// Match returns every candidate in text. Emails come first, then Aadhaar
// numbers (before phones, so 12-digit IDs are not tagged as phones), SSNs,
// phones and addresses. Values are unique across all types.
func (m *Matcher) Match(text string) []pii.Candidate {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var out []pii.Candidate
	seen := make(map[string]bool)
	add := func(t pii.Type, value string, start, end int) {
		if seen[value] {
			return
		}
		seen[value] = true
		out = append(out, pii.Candidate{Type: t, Value: value, Span: pii.Span{Start: start, End: end}})
	}

	var emails []string
	var idSpans []pii.Span

	if !m.disabled[pii.TypeEmail] {
		for _, loc := range emailRe.FindAllStringIndex(text, -1) {
			v := text[loc[0]:loc[1]]
			emails = append(emails, v)
			add(pii.TypeEmail, v, loc[0], loc[1])
		}
	}

	if !m.disabled[pii.TypeAadhaar] {
		for _, loc := range aadhaarRe.FindAllStringIndex(text, -1) {
			v := text[loc[0]:loc[1]]
			if len(Digits(v)) != aadhaarDigits {
				continue
			}
			idSpans = append(idSpans, pii.Span{Start: loc[0], End: loc[1]})
			add(pii.TypeAadhaar, v, loc[0], loc[1])
		}
	}

	if !m.disabled[pii.TypeSSN] {
		for _, loc := range ssnRe.FindAllStringSubmatchIndex(text, -1) {
			if !validSSN(text[loc[2]:loc[3]], text[loc[4]:loc[5]], text[loc[6]:loc[7]]) {
				continue
			}
			idSpans = append(idSpans, pii.Span{Start: loc[0], End: loc[1]})
			add(pii.TypeSSN, text[loc[0]:loc[1]], loc[0], loc[1])
		}
	}

	if !m.disabled[pii.TypePhone] {
	phones:
		for _, loc := range phoneRe.FindAllStringIndex(text, -1) {
			v := strings.TrimSpace(text[loc[0]:loc[1]])
			if len(Digits(v)) < minPhoneDigits {
				continue
			}
			for _, e := range emails {
				if strings.Contains(e, v) {
					continue phones
				}
			}
			span := pii.Span{Start: loc[0], End: loc[1]}
			for _, id := range idSpans {
				if span.Overlaps(id) {
					continue phones
				}
			}
			add(pii.TypePhone, v, loc[0], loc[1])
		}
	}

	if !m.disabled[pii.TypeAddress] {
		for _, loc := range addressRe.FindAllStringIndex(text, -1) {
			v := spaceRe.ReplaceAllString(strings.TrimSpace(text[loc[0]:loc[1]]), " ")
			add(pii.TypeAddress, v, loc[0], loc[1])
		}
	}

	return out
}

// validSSN rejects area 000, 666 and 9xx, group 00 and serial 0000.
func validSSN(area, group, serial string) bool {
	if area == "000" || area == "666" || area[0] == '9' {
		return false
	}
	return group != "00" && serial != "0000"
}

// Digits returns only the ASCII digits of s.
func Digits(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// IsStrictEmail reports whether s is exactly one well-formed address.
func IsStrictEmail(s string) bool {
	return strictRe.MatchString(strings.TrimSpace(s))
}
