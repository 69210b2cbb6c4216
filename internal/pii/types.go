package pii

import "strings"

// Type identifies the kind of PII a pattern matched.
type Type string

const (
	TypeEmail   Type = "EMAIL"
	TypePhone   Type = "PHONE"
	TypeAadhaar Type = "AADHAAR"
	TypeSSN     Type = "SSN"
	TypeAddress Type = "ADDRESS"
)

// AllTypes lists every type in scan order.
var AllTypes = []Type{TypeEmail, TypeAadhaar, TypeSSN, TypePhone, TypeAddress}

// ParseType parses a type name case-insensitively.
func ParseType(s string) (Type, bool) {
	t := Type(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range AllTypes {
		if t == known {
			return t, true
		}
	}
	return "", false
}

// IsGovernmentID reports whether the type is a national identity number.
func (t Type) IsGovernmentID() bool {
	return t == TypeAadhaar || t == TypeSSN
}

// Confidence is how sure the scorer is that a candidate is real PII.
type Confidence string

const (
	ConfidenceLow    Confidence = "LOW"
	ConfidenceMedium Confidence = "MEDIUM"
	ConfidenceHigh   Confidence = "HIGH"
)

// ConfidenceRank returns a numeric rank for sorting (higher = more certain).
func ConfidenceRank(c Confidence) int {
	switch c {
	case ConfidenceHigh:
		return 3
	case ConfidenceMedium:
		return 2
	case ConfidenceLow:
		return 1
	default:
		return 0
	}
}

// Lower returns the next lower confidence, stopping at LOW.
func (c Confidence) Lower() Confidence {
	switch c {
	case ConfidenceHigh:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// Severity represents the impact of a leak of this type.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// SeverityRank returns a numeric rank for sorting (higher = more severe).
func SeverityRank(s Severity) int {
	switch s {
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// MeetsThreshold returns true if severity is at or above the threshold.
func MeetsThreshold(s Severity, threshold string) bool {
	if threshold == "none" || threshold == "" {
		return false
	}
	return SeverityRank(s) >= SeverityRank(Severity(threshold))
}

// Span is a half-open byte range [Start, End) in the scanned text.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Overlaps reports whether two spans share at least one byte.
func (s Span) Overlaps(o Span) bool {
	return s.Start < o.End && o.Start < s.End
}

// Candidate is a raw pattern match before contextual validation.
type Candidate struct {
	Type  Type   `json:"type"`
	Value string `json:"value"`
	Span  Span   `json:"span"`
}

// Entity labels produced by recognizers after normalization.
const (
	LabelPerson   = "PERSON"
	LabelLocation = "LOCATION"
	LabelOrg      = "ORG"
)

// Entity is a labelled span returned by a named-entity recognizer.
type Entity struct {
	Label string `json:"label"`
	Text  string `json:"text,omitempty"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// Span returns the entity's byte range.
func (e Entity) Span() Span {
	return Span{Start: e.Start, End: e.End}
}

// ContextSignal summarizes the context around one candidate.
type ContextSignal struct {
	PersonNearby          bool     `json:"personNearby"`
	LocationNearby        bool     `json:"locationNearby"`
	Disqualified          bool     `json:"disqualified"`
	DisqualifyingKeywords []string `json:"disqualifyingKeywords,omitempty"`
	SupportingKeywords    []string `json:"supportingKeywords,omitempty"`
	NERAvailable          bool     `json:"nerAvailable"`
}

// EntityNearby reports whether any PERSON or LOCATION entity was near.
func (s ContextSignal) EntityNearby() bool {
	return s.PersonNearby || s.LocationNearby
}

// Finding is a fully scored and explained detection result.
type Finding struct {
	ID          string        `json:"id"`
	Type        Type          `json:"type"`
	Value       string        `json:"value"`
	Span        Span          `json:"span"`
	Line        int           `json:"line"`
	Source      string        `json:"source,omitempty"`
	Confidence  Confidence    `json:"confidence"`
	Severity    Severity      `json:"severity"`
	Explanation string        `json:"explanation"`
	Signal      ContextSignal `json:"signal"`
}
