package pii

import "time"

// Alert levels shown at the top of a report.
const (
	AlertCritical = "critical"
	AlertWarning  = "warning"
	AlertClean    = "clean"
)

// SeverityCounts holds counts by severity level.
type SeverityCounts struct {
	Low    int `json:"low"`
	Medium int `json:"medium"`
	High   int `json:"high"`
}

// ConfidenceCounts holds counts by confidence level.
type ConfidenceCounts struct {
	Low    int `json:"low"`
	Medium int `json:"medium"`
	High   int `json:"high"`
}

// Summary provides an overview of findings.
type Summary struct {
	Total           int              `json:"total"`
	ByConfidence    ConfidenceCounts `json:"byConfidence"`
	BySeverity      SeverityCounts   `json:"bySeverity"`
	ByType          map[Type]int     `json:"byType"`
	GovernmentIDs   int              `json:"governmentIds"`
	HighestSeverity Severity         `json:"highestSeverity,omitempty"`
	Alert           string           `json:"alert"`
}

// Insight is one line of digital-footprint analysis.
type Insight struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Timing contains performance metrics.
type Timing struct {
	NERMs   int64 `json:"nerMs"`
	TotalMs int64 `json:"totalMs"`
}

// Report is the top-level output structure.
type Report struct {
	Tool         string    `json:"tool"`
	Version      string    `json:"version"`
	RunID        string    `json:"runId"`
	Source       string    `json:"source"`
	ScannedAt    time.Time `json:"scannedAt"`
	Recognizer   string    `json:"recognizer"`
	NERAvailable bool      `json:"nerAvailable"`
	Entities     []Entity  `json:"entities,omitempty"`
	Summary      Summary   `json:"summary"`
	Insights     []Insight `json:"insights,omitempty"`
	Findings     []Finding `json:"findings"`
	Timing       Timing    `json:"timing"`
}

// ComputeSummary calculates the summary from findings.
func ComputeSummary(findings []Finding) Summary {
	s := Summary{
		Total:  len(findings),
		ByType: make(map[Type]int),
		Alert:  AlertClean,
	}
	for _, f := range findings {
		switch f.Severity {
		case SeverityLow:
			s.BySeverity.Low++
		case SeverityMedium:
			s.BySeverity.Medium++
		case SeverityHigh:
			s.BySeverity.High++
		}
		switch f.Confidence {
		case ConfidenceLow:
			s.ByConfidence.Low++
		case ConfidenceMedium:
			s.ByConfidence.Medium++
		case ConfidenceHigh:
			s.ByConfidence.High++
		}
		s.ByType[f.Type]++
		if f.Type.IsGovernmentID() {
			s.GovernmentIDs++
		}
		if SeverityRank(f.Severity) > SeverityRank(s.HighestSeverity) {
			s.HighestSeverity = f.Severity
		}
	}
	switch {
	case s.ByConfidence.High > 0:
		s.Alert = AlertCritical
	case s.Total > 0:
		s.Alert = AlertWarning
	}
	return s
}
