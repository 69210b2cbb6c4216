package pii

import "testing"

func TestSeverityRank(t *testing.T) {
	tests := []struct {
		severity Severity
		want     int
	}{
		{SeverityLow, 1},
		{SeverityMedium, 2},
		{SeverityHigh, 3},
		{Severity("unknown"), 0},
	}
	for _, tt := range tests {
		got := SeverityRank(tt.severity)
		if got != tt.want {
			t.Errorf("SeverityRank(%q) = %d, want %d", tt.severity, got, tt.want)
		}
	}
}

func TestMeetsThreshold(t *testing.T) {
	tests := []struct {
		severity  Severity
		threshold string
		want      bool
	}{
		{SeverityHigh, "none", false},
		{SeverityHigh, "", false},
		{SeverityHigh, "high", true},
		{SeverityHigh, "low", true},
		{SeverityMedium, "high", false},
		{SeverityMedium, "medium", true},
		{SeverityLow, "medium", false},
		{SeverityLow, "low", true},
	}
	for _, tt := range tests {
		got := MeetsThreshold(tt.severity, tt.threshold)
		if got != tt.want {
			t.Errorf("MeetsThreshold(%q, %q) = %v, want %v", tt.severity, tt.threshold, got, tt.want)
		}
	}
}

func TestConfidenceLower(t *testing.T) {
	tests := []struct {
		in, want Confidence
	}{
		{ConfidenceHigh, ConfidenceMedium},
		{ConfidenceMedium, ConfidenceLow},
		{ConfidenceLow, ConfidenceLow},
	}
	for _, tt := range tests {
		if got := tt.in.Lower(); got != tt.want {
			t.Errorf("%q.Lower() = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseType(t *testing.T) {
	if got, ok := ParseType(" email "); !ok || got != TypeEmail {
		t.Errorf("ParseType(email) = %q, %v", got, ok)
	}
	if _, ok := ParseType("passport"); ok {
		t.Error("ParseType(passport) should fail")
	}
}

func TestSpanOverlaps(t *testing.T) {
	a := Span{Start: 0, End: 5}
	if !a.Overlaps(Span{Start: 4, End: 8}) {
		t.Error("expected overlap")
	}
	if a.Overlaps(Span{Start: 5, End: 8}) {
		t.Error("adjacent spans should not overlap")
	}
}

func TestComputeSummary(t *testing.T) {
	findings := []Finding{
		{Type: TypeAadhaar, Severity: SeverityHigh, Confidence: ConfidenceMedium},
		{Type: TypeSSN, Severity: SeverityHigh, Confidence: ConfidenceHigh},
		{Type: TypePhone, Severity: SeverityMedium, Confidence: ConfidenceLow},
		{Type: TypeEmail, Severity: SeverityLow, Confidence: ConfidenceMedium},
		{Type: TypeEmail, Severity: SeverityLow, Confidence: ConfidenceMedium},
	}

	s := ComputeSummary(findings)

	if s.Total != 5 {
		t.Errorf("Total = %d, want 5", s.Total)
	}
	if s.BySeverity.High != 2 || s.BySeverity.Medium != 1 || s.BySeverity.Low != 2 {
		t.Errorf("BySeverity = %+v", s.BySeverity)
	}
	if s.ByConfidence.High != 1 || s.ByConfidence.Medium != 3 || s.ByConfidence.Low != 1 {
		t.Errorf("ByConfidence = %+v", s.ByConfidence)
	}
	if s.ByType[TypeEmail] != 2 {
		t.Errorf("ByType[EMAIL] = %d, want 2", s.ByType[TypeEmail])
	}
	if s.GovernmentIDs != 2 {
		t.Errorf("GovernmentIDs = %d, want 2", s.GovernmentIDs)
	}
	if s.HighestSeverity != SeverityHigh {
		t.Errorf("HighestSeverity = %q, want %q", s.HighestSeverity, SeverityHigh)
	}
	if s.Alert != AlertCritical {
		t.Errorf("Alert = %q, want %q", s.Alert, AlertCritical)
	}
}

func TestComputeSummary_Alerts(t *testing.T) {
	if s := ComputeSummary(nil); s.Alert != AlertClean || s.Total != 0 || s.HighestSeverity != "" {
		t.Errorf("empty summary = %+v", s)
	}
	s := ComputeSummary([]Finding{{Type: TypePhone, Severity: SeverityMedium, Confidence: ConfidenceLow}})
	if s.Alert != AlertWarning {
		t.Errorf("Alert = %q, want %q", s.Alert, AlertWarning)
	}
}
