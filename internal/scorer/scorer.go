package scorer

import (
	"fmt"
	"strings"

	"github.com/leakshield/leakshield/internal/pattern"
	"github.com/leakshield/leakshield/internal/pii"
)

const minPhoneDigits = 10

var defaultSeverity = map[pii.Type]pii.Severity{
	pii.TypeAadhaar: pii.SeverityHigh,
	pii.TypeSSN:     pii.SeverityHigh,
	pii.TypePhone:   pii.SeverityMedium,
	pii.TypeAddress: pii.SeverityMedium,
	pii.TypeEmail:   pii.SeverityLow,
}

// Scorer assigns confidence, severity and an explanation.
type Scorer struct {
	severity map[pii.Type]pii.Severity
}

var defaultScorer = &Scorer{severity: defaultSeverity}

// Default returns the scorer with the built-in severity table.
func Default() *Scorer { return defaultScorer }

// Score scores c with the default scorer.
func Score(c pii.Candidate, s pii.ContextSignal) pii.Finding {
	return defaultScorer.Score(c, s)
}

// SeverityOf returns the default severity for t.
func SeverityOf(t pii.Type) pii.Severity {
	return defaultSeverity[t]
}

// WithSeverityOverrides returns a scorer whose severity table is the default
// table updated with overrides. Government ID types stay HIGH.
func WithSeverityOverrides(overrides map[pii.Type]pii.Severity) *Scorer {
	table := make(map[pii.Type]pii.Severity, len(defaultSeverity))
	for t, sev := range defaultSeverity {
		table[t] = sev
	}
	for t, sev := range overrides {
		if _, known := table[t]; !known || pii.SeverityRank(sev) == 0 {
			continue
		}
		if t.IsGovernmentID() && pii.SeverityRank(sev) < pii.SeverityRank(pii.SeverityHigh) {
			continue
		}
		table[t] = sev
	}
	return &Scorer{severity: table}
}

// Severity returns the severity this scorer assigns to t.
func (sc *Scorer) Severity(t pii.Type) pii.Severity {
	return sc.severity[t]
}

// Score is total: every candidate yields a finding.
func (sc *Scorer) Score(c pii.Candidate, s pii.ContextSignal) pii.Finding {
	conf, reason := base(c, s)

	var notes []string
	if c.Type != pii.TypePhone && s.Disqualified && len(s.SupportingKeywords) == 0 {
		if lowered := conf.Lower(); lowered != conf {
			notes = append(notes, fmt.Sprintf("log/system keywords nearby (%s), confidence lowered", strings.Join(s.DisqualifyingKeywords, ", ")))
			conf = lowered
		}
	}
	if !s.NERAvailable && conf == pii.ConfidenceHigh {
		conf = pii.ConfidenceMedium
		notes = append(notes, "NER unavailable, confidence capped at MEDIUM")
	}

	explanation := reason
	if len(notes) > 0 {
		explanation += "; " + strings.Join(notes, "; ")
	}

	return pii.Finding{
		Type:        c.Type,
		Value:       c.Value,
		Span:        c.Span,
		Confidence:  conf,
		Severity:    sc.Severity(c.Type),
		Explanation: explanation,
		Signal:      s,
	}
}

func base(c pii.Candidate, s pii.ContextSignal) (pii.Confidence, string) {
	switch c.Type {
	case pii.TypeEmail:
		return email(c, s)
	case pii.TypePhone:
		return phone(c, s)
	case pii.TypeAadhaar:
		return aadhaar(s)
	case pii.TypeSSN:
		return ssn(s)
	case pii.TypeAddress:
		return address(s)
	default:
		return pii.ConfidenceLow, "Unrecognized type"
	}
}

func email(c pii.Candidate, s pii.ContextSignal) (pii.Confidence, string) {
	switch {
	case !pattern.IsStrictEmail(c.Value):
		return pii.ConfidenceMedium, "Partial email match"
	case s.PersonNearby:
		return pii.ConfidenceHigh, "Valid email format with PERSON entity nearby"
	default:
		return pii.ConfidenceMedium, "Valid email format"
	}
}

func phone(c pii.Candidate, s pii.ContextSignal) (pii.Confidence, string) {
	switch {
	case s.Disqualified:
		return pii.ConfidenceLow, fmt.Sprintf("Numeric value found in log/error/system context (keywords: %s)", strings.Join(s.DisqualifyingKeywords, ", "))
	case len(pattern.Digits(c.Value)) < minPhoneDigits:
		return pii.ConfidenceLow, "Digit count below standard phone number length"
	case !s.PersonNearby:
		return pii.ConfidenceMedium, "Valid format but no PERSON entity detected nearby"
	default:
		return pii.ConfidenceHigh, "Valid phone format with PERSON entity nearby"
	}
}

func aadhaar(s pii.ContextSignal) (pii.Confidence, string) {
	switch {
	case len(s.SupportingKeywords) > 0:
		return pii.ConfidenceHigh, keywordReason("Aadhaar keyword in context", s.SupportingKeywords)
	case s.PersonNearby:
		return pii.ConfidenceHigh, "12-digit ID with PERSON entity nearby"
	default:
		return pii.ConfidenceMedium, "12-digit number matching Aadhaar format (no contextual confirmation)"
	}
}

func ssn(s pii.ContextSignal) (pii.Confidence, string) {
	switch {
	case len(s.SupportingKeywords) > 0:
		return pii.ConfidenceHigh, keywordReason("SSN keyword in surrounding context", s.SupportingKeywords)
	case s.PersonNearby:
		return pii.ConfidenceHigh, "SSN format with PERSON entity nearby"
	default:
		return pii.ConfidenceMedium, "Matches SSN format (AAA-BB-CCCC), no contextual confirmation"
	}
}

func address(s pii.ContextSignal) (pii.Confidence, string) {
	keyword := len(s.SupportingKeywords) > 0
	entity := s.EntityNearby()
	switch {
	case keyword && entity:
		return pii.ConfidenceHigh, keywordReason("Address keyword context + NLP entity (PERSON/LOCATION) present", s.SupportingKeywords)
	case keyword:
		return pii.ConfidenceMedium, keywordReason("Address keyword found in context", s.SupportingKeywords)
	case entity:
		return pii.ConfidenceMedium, "PERSON/LOCATION entity supports address pattern"
	default:
		return pii.ConfidenceLow, "Street keyword pattern matched but no contextual confirmation"
	}
}

func keywordReason(reason string, keywords []string) string {
	return fmt.Sprintf("%s (keywords: %s)", reason, strings.Join(keywords, ", "))
}
