package scan

import (
	"strings"
	"testing"

	"github.com/leakshield/leakshield/internal/pii"
)

func finding(t pii.Type, value string) pii.Finding {
	return pii.Finding{Type: t, Value: value}
}

func insight(insights []pii.Insight, kind string) (pii.Insight, bool) {
	for _, in := range insights {
		if in.Kind == kind {
			return in, true
		}
	}
	return pii.Insight{}, false
}

func TestBuildInsights_None(t *testing.T) {
	entities := []pii.Entity{{Label: pii.LabelPerson, Text: "John"}}
	if got := BuildInsights(nil, entities); got != nil {
		t.Errorf("BuildInsights(nil) = %v, want nil", got)
	}
}

func TestBuildInsights(t *testing.T) {
	findings := []pii.Finding{
		finding(pii.TypeEmail, "john.doe@example.com"),
		finding(pii.TypeEmail, "jane@Corp.org"),
		finding(pii.TypeEmail, "ceo@example.com"),
		finding(pii.TypePhone, "+91-9876543210"),
		finding(pii.TypePhone, "+91 98765 43210"),
		finding(pii.TypePhone, "+1 (800) 555-0199"),
		finding(pii.TypeAadhaar, "2345 6789 0123"),
		finding(pii.TypeSSN, "123-45-6789"),
		finding(pii.TypeAddress, "45B, MG Road"),
	}
	entities := []pii.Entity{
		{Label: pii.LabelPerson, Text: "John Doe"},
		{Label: pii.LabelLocation, Text: "Hyderabad"},
		{Label: pii.LabelPerson, Text: "Jane Smith"},
		{Label: pii.LabelPerson, Text: "John Doe"},
	}
	got := BuildInsights(findings, entities)

	kinds := make([]string, 0, len(got))
	for _, in := range got {
		kinds = append(kinds, in.Kind)
	}
	want := []string{InsightPersons, InsightEmailDomains, InsightPhoneCodes, InsightGovernmentIDs, InsightAddresses, InsightCombinedRisk}
	if strings.Join(kinds, ",") != strings.Join(want, ",") {
		t.Fatalf("kinds = %v, want %v", kinds, want)
	}

	checks := map[string]string{
		InsightPersons:       "2 named individual(s) detected: John Doe, Jane Smith.",
		InsightEmailDomains:  "Email domains: example.com (2 addresses), corp.org (1 address).",
		InsightPhoneCodes:    "Phone country codes: +91 (India) x2, +1 (US/Canada) x1.",
		InsightGovernmentIDs: "1 Aadhaar number(s) and 1 SSN(s) detected.",
		InsightAddresses:     "1 physical address(es) detected.",
		InsightCombinedRisk:  "5 distinct PII types found (AADHAAR, ADDRESS, EMAIL, PHONE, SSN)",
	}
	for kind, fragment := range checks {
		in, _ := insight(got, kind)
		if !strings.Contains(in.Message, fragment) {
			t.Errorf("%s message = %q, want it to contain %q", kind, in.Message, fragment)
		}
	}
}

func TestBuildInsights_NoCombinedRiskBelowThreeTypes(t *testing.T) {
	got := BuildInsights([]pii.Finding{
		finding(pii.TypeEmail, "a@b.com"),
		finding(pii.TypePhone, "9876543210"),
	}, nil)
	if _, ok := insight(got, InsightCombinedRisk); ok {
		t.Error("combined risk needs at least 3 distinct types")
	}
	if _, ok := insight(got, InsightPersons); ok {
		t.Error("no persons insight without PERSON entities")
	}
}

func TestPhoneRegion(t *testing.T) {
	tests := []struct {
		phone string
		want  string
	}{
		{"+91-9876543210", "+91 (India)"},
		{"+1 (800) 555-0199", "+1 (US/Canada)"},
		{"+44 20 7946 0958", "+44 (International)"},
		{"9876543210", "Local / unspecified"},
		{" +91 98765 43210", "+91 (India)"},
	}
	for _, tt := range tests {
		if got := PhoneRegion(tt.phone); got != tt.want {
			t.Errorf("PhoneRegion(%q) = %q, want %q", tt.phone, got, tt.want)
		}
	}
}
