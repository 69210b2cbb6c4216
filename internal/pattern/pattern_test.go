package pattern

import (
	"strings"
	"testing"

	"github.com/leakshield/leakshield/internal/pii"
)

func typesOf(cands []pii.Candidate) []pii.Type {
	var out []pii.Type
	for _, c := range cands {
		out = append(out, c.Type)
	}
	return out
}

func find(cands []pii.Candidate, t pii.Type) (pii.Candidate, bool) {
	for _, c := range cands {
		if c.Type == t {
			return c, true
		}
	}
	return pii.Candidate{}, false
}

func TestMatch_EmailAndPhone(t *testing.T) {
	text := "Contact John at john@example.com or 9876543210"
	got := Match(text)
	if len(got) != 2 {
		t.Fatalf("Match() = %v, want 2 candidates", got)
	}
	if got[0].Type != pii.TypeEmail || got[0].Value != "john@example.com" {
		t.Errorf("first candidate = %+v, want EMAIL john@example.com", got[0])
	}
	if got[0].Span.Start != 16 || got[0].Span.End != 32 {
		t.Errorf("email span = %+v, want {16 32}", got[0].Span)
	}
	if got[1].Type != pii.TypePhone || got[1].Value != "9876543210" {
		t.Errorf("second candidate = %+v, want PHONE 9876543210", got[1])
	}
	if text[got[1].Span.Start:got[1].Span.End] != "9876543210" {
		t.Errorf("phone span does not cover the value: %+v", got[1].Span)
	}
}

func TestMatch_ErrorCodePhone(t *testing.T) {
	got := Match("Error code 9876543210 at line 42")
	c, ok := find(got, pii.TypePhone)
	if !ok {
		t.Fatalf("expected PHONE candidate, got %v", typesOf(got))
	}
	if c.Value != "9876543210" {
		t.Errorf("phone value = %q", c.Value)
	}
}

func TestMatch_AadhaarNotPhone(t *testing.T) {
	got := Match("Aadhaar: 2345 6789 0123")
	if len(got) != 1 || got[0].Type != pii.TypeAadhaar {
		t.Fatalf("Match() = %v, want single AADHAAR", typesOf(got))
	}
	if got[0].Value != "2345 6789 0123" {
		t.Errorf("aadhaar value = %q", got[0].Value)
	}
}

func TestMatch_AadhaarLeadingDigit(t *testing.T) {
	got := Match("ref 1234 5678 9012")
	if _, ok := find(got, pii.TypeAadhaar); ok {
		t.Error("numbers starting with 0 or 1 are not Aadhaar numbers")
	}
}

func TestMatch_SSN(t *testing.T) {
	got := Match("SSN: 123-45-6789")
	if len(got) != 1 || got[0].Type != pii.TypeSSN {
		t.Fatalf("Match() = %v, want single SSN", typesOf(got))
	}
	if got[0].Value != "123-45-6789" {
		t.Errorf("ssn value = %q", got[0].Value)
	}
}

func TestMatch_SSNReservedBlocks(t *testing.T) {
	for _, v := range []string{"000-12-3456", "666-12-3456", "923-45-6789", "123-00-6789", "123-45-0000"} {
		t.Run(v, func(t *testing.T) {
			if _, ok := find(Match("ssn "+v), pii.TypeSSN); ok {
				t.Errorf("%s should not be reported as SSN", v)
			}
		})
	}
}

func TestMatch_PhoneInsideEmailSkipped(t *testing.T) {
	got := Match("reach me at 9876543210@mail.com")
	if len(got) != 1 || got[0].Type != pii.TypeEmail {
		t.Fatalf("Match() = %v, want only EMAIL", typesOf(got))
	}
}

func TestMatch_InternationalPhones(t *testing.T) {
	got := Match("Phone: +91-9876543210 or +1 (800) 555-0199")
	var values []string
	for _, c := range got {
		if c.Type == pii.TypePhone {
			values = append(values, c.Value)
		}
	}
	if len(values) != 2 {
		t.Fatalf("phones = %v, want 2", values)
	}
	if values[0] != "+91-9876543210" {
		t.Errorf("phone[0] = %q", values[0])
	}
	if values[1] != "+1 (800) 555-0199" {
		t.Errorf("phone[1] = %q", values[1])
	}
}

func TestMatch_Address(t *testing.T) {
	got := Match("Home: 12, Greenwood Avenue, Banjara Hills.")
	c, ok := find(got, pii.TypeAddress)
	if !ok {
		t.Fatalf("expected ADDRESS, got %v", typesOf(got))
	}
	if !strings.HasPrefix(c.Value, "12, Greenwood Avenue") {
		t.Errorf("address value = %q", c.Value)
	}
}

func TestMatch_AddressWhitespaceNormalized(t *testing.T) {
	got := Match("lives at 221B   Baker\nStreet")
	c, ok := find(got, pii.TypeAddress)
	if !ok {
		t.Fatalf("expected ADDRESS, got %v", typesOf(got))
	}
	if strings.Contains(c.Value, "  ") || strings.Contains(c.Value, "\n") {
		t.Errorf("address value not normalized: %q", c.Value)
	}
}

func TestMatch_DedupByValue(t *testing.T) {
	got := Match("a@b.com, again a@b.com")
	if len(got) != 1 {
		t.Fatalf("Match() = %v, want 1 candidate", got)
	}
	if got[0].Span.Start != 0 {
		t.Errorf("first occurrence should win, got span %+v", got[0].Span)
	}
}

func TestMatch_Order(t *testing.T) {
	got := Match("SSN 123-45-6789 email a@b.com")
	types := typesOf(got)
	if len(types) != 2 || types[0] != pii.TypeEmail || types[1] != pii.TypeSSN {
		t.Errorf("types = %v, want [EMAIL SSN]", types)
	}
}

func TestMatch_Empty(t *testing.T) {
	for _, in := range []string{"", "   ", "\n\t"} {
		if got := Match(in); len(got) != 0 {
			t.Errorf("Match(%q) = %v, want none", in, got)
		}
	}
}

func TestMatcher_Disabled(t *testing.T) {
	m := New(pii.TypePhone)
	got := m.Match("john@example.com 9876543210")
	if len(got) != 1 || got[0].Type != pii.TypeEmail {
		t.Errorf("Match() = %v, want only EMAIL", typesOf(got))
	}
	for _, typ := range m.Types() {
		if typ == pii.TypePhone {
			t.Error("Types() should not include disabled PHONE")
		}
	}
}

func TestDigits(t *testing.T) {
	if got := Digits("+1 (800) 555-0199"); got != "18005550199" {
		t.Errorf("Digits() = %q", got)
	}
}

func TestIsStrictEmail(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"john@example.com", true},
		{" jane.smith@corp.org ", true},
		{"john@example", false},
		{"a@b.com extra", false},
	}
	for _, tt := range tests {
		if got := IsStrictEmail(tt.in); got != tt.want {
			t.Errorf("IsStrictEmail(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
