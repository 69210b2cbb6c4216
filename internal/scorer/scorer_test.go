package scorer

import (
	"strings"
	"testing"

	"github.com/leakshield/leakshield/internal/pii"
)

func cand(t pii.Type, v string) pii.Candidate {
	return pii.Candidate{Type: t, Value: v, Span: pii.Span{Start: 0, End: len(v)}}
}

func sig(mods ...func(*pii.ContextSignal)) pii.ContextSignal {
	s := pii.ContextSignal{NERAvailable: true}
	for _, m := range mods {
		m(&s)
	}
	return s
}

func person(s *pii.ContextSignal) { s.PersonNearby = true }
func location(s *pii.ContextSignal) { s.LocationNearby = true }
func noNER(s *pii.ContextSignal) { s.NERAvailable = false }

func logWords(words ...string) func(*pii.ContextSignal) {
	return func(s *pii.ContextSignal) {
		s.Disqualified = true
		s.DisqualifyingKeywords = words
	}
}

func support(words ...string) func(*pii.ContextSignal) {
	return func(s *pii.ContextSignal) { s.SupportingKeywords = words }
}

func TestScore_BaseRules(t *testing.T) {
	tests := []struct {
		name       string
		cand       pii.Candidate
		sig        pii.ContextSignal
		want       pii.Confidence
		wantReason string
	}{
		{"email person", cand(pii.TypeEmail, "john@example.com"), sig(person), pii.ConfidenceHigh, "Valid email format with PERSON entity nearby"},
		{"email alone", cand(pii.TypeEmail, "john@example.com"), sig(), pii.ConfidenceMedium, "Valid email format"},
		{"email partial", cand(pii.TypeEmail, "john@example.com extra"), sig(person), pii.ConfidenceMedium, "Partial email match"},
		{"phone log", cand(pii.TypePhone, "9876543210"), sig(person, logWords("error", "code")), pii.ConfidenceLow, "Numeric value found in log/error/system context (keywords: error, code)"},
		{"phone short", cand(pii.TypePhone, "555-0199"), sig(person), pii.ConfidenceLow, "Digit count below standard phone number length"},
		{"phone no person", cand(pii.TypePhone, "9876543210"), sig(), pii.ConfidenceMedium, "Valid format but no PERSON entity detected nearby"},
		{"phone person", cand(pii.TypePhone, "+91-9876543210"), sig(person), pii.ConfidenceHigh, "Valid phone format with PERSON entity nearby"},
		{"aadhaar keyword", cand(pii.TypeAadhaar, "2345 6789 0123"), sig(support("aadhaar")), pii.ConfidenceHigh, "Aadhaar keyword in context (keywords: aadhaar)"},
		{"aadhaar person", cand(pii.TypeAadhaar, "2345 6789 0123"), sig(person), pii.ConfidenceHigh, "12-digit ID with PERSON entity nearby"},
		{"aadhaar bare", cand(pii.TypeAadhaar, "2345 6789 0123"), sig(), pii.ConfidenceMedium, "12-digit number matching Aadhaar format (no contextual confirmation)"},
		{"ssn keyword", cand(pii.TypeSSN, "123-45-6789"), sig(support("ssn")), pii.ConfidenceHigh, "SSN keyword in surrounding context (keywords: ssn)"},
		{"ssn person", cand(pii.TypeSSN, "123-45-6789"), sig(person), pii.ConfidenceHigh, "SSN format with PERSON entity nearby"},
		{"ssn bare", cand(pii.TypeSSN, "123-45-6789"), sig(), pii.ConfidenceMedium, "Matches SSN format (AAA-BB-CCCC), no contextual confirmation"},
		{"address both", cand(pii.TypeAddress, "12, Greenwood Avenue"), sig(location, support("home")), pii.ConfidenceHigh, "Address keyword context + NLP entity (PERSON/LOCATION) present (keywords: home)"},
		{"address keyword", cand(pii.TypeAddress, "12, Greenwood Avenue"), sig(support("home")), pii.ConfidenceMedium, "Address keyword found in context (keywords: home)"},
		{"address entity", cand(pii.TypeAddress, "12, Greenwood Avenue"), sig(person), pii.ConfidenceMedium, "PERSON/LOCATION entity supports address pattern"},
		{"address bare", cand(pii.TypeAddress, "12, Greenwood Avenue"), sig(), pii.ConfidenceLow, "Street keyword pattern matched but no contextual confirmation"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Score(tt.cand, tt.sig)
			if f.Confidence != tt.want {
				t.Errorf("Confidence = %s, want %s", f.Confidence, tt.want)
			}
			if f.Explanation != tt.wantReason {
				t.Errorf("Explanation = %q, want %q", f.Explanation, tt.wantReason)
			}
		})
	}
}

func TestScore_DisqualifyingModifier(t *testing.T) {
	f := Score(cand(pii.TypeEmail, "support@helpdesk.in"), sig(person, logWords("request", "id")))
	if f.Confidence != pii.ConfidenceMedium {
		t.Errorf("Confidence = %s, want MEDIUM", f.Confidence)
	}
	if !strings.Contains(f.Explanation, "log/system keywords nearby (request, id), confidence lowered") {
		t.Errorf("Explanation = %q", f.Explanation)
	}

	// Supporting keywords cancel the modifier.
	f = Score(cand(pii.TypeAadhaar, "2345 6789 0123"), sig(support("aadhaar"), logWords("id")))
	if f.Confidence != pii.ConfidenceHigh {
		t.Errorf("Aadhaar with keyword = %s, want HIGH", f.Confidence)
	}

	// Never below LOW, and no note when nothing changed.
	f = Score(cand(pii.TypeAddress, "12, Greenwood Avenue"), sig(logWords("order")))
	if f.Confidence != pii.ConfidenceLow || strings.Contains(f.Explanation, "lowered") {
		t.Errorf("address = %s %q", f.Confidence, f.Explanation)
	}
}

func TestScore_NERUnavailableCap(t *testing.T) {
	f := Score(cand(pii.TypeSSN, "123-45-6789"), sig(noNER, support("ssn")))
	if f.Confidence != pii.ConfidenceMedium {
		t.Errorf("Confidence = %s, want MEDIUM", f.Confidence)
	}
	if !strings.HasSuffix(f.Explanation, "; NER unavailable, confidence capped at MEDIUM") {
		t.Errorf("Explanation = %q", f.Explanation)
	}

	f = Score(cand(pii.TypePhone, "9876543210"), sig(noNER))
	if f.Confidence != pii.ConfidenceMedium || strings.Contains(f.Explanation, "capped") {
		t.Errorf("uncapped phone = %s %q", f.Confidence, f.Explanation)
	}
}

func TestScore_Severity(t *testing.T) {
	want := map[pii.Type]pii.Severity{
		pii.TypeAadhaar: pii.SeverityHigh,
		pii.TypeSSN:     pii.SeverityHigh,
		pii.TypePhone:   pii.SeverityMedium,
		pii.TypeAddress: pii.SeverityMedium,
		pii.TypeEmail:   pii.SeverityLow,
	}
	for typ, sev := range want {
		for _, s := range []pii.ContextSignal{sig(), sig(person), sig(noNER, logWords("error"))} {
			if got := Score(cand(typ, "x"), s).Severity; got != sev {
				t.Errorf("%s severity = %s, want %s", typ, got, sev)
			}
		}
	}
}

func TestScore_PhoneLogContextBelowPerson(t *testing.T) {
	c := cand(pii.TypePhone, "9876543210")
	logged := Score(c, sig(logWords("error")))
	near := Score(c, sig(person))
	if pii.ConfidenceRank(logged.Confidence) >= pii.ConfidenceRank(near.Confidence) {
		t.Errorf("log context %s should rank below person context %s", logged.Confidence, near.Confidence)
	}
}

func TestScore_CarriesCandidate(t *testing.T) {
	c := pii.Candidate{Type: pii.TypeEmail, Value: "a@b.com", Span: pii.Span{Start: 3, End: 10}}
	s := sig(person)
	f := Score(c, s)
	if f.Value != c.Value || f.Span != c.Span || f.Type != c.Type || !f.Signal.PersonNearby {
		t.Errorf("finding = %+v", f)
	}
}

func TestWithSeverityOverrides(t *testing.T) {
	sc := WithSeverityOverrides(map[pii.Type]pii.Severity{
		pii.TypeEmail:   pii.SeverityMedium,
		pii.TypeAadhaar: pii.SeverityLow,
		pii.TypeSSN:     "bogus",
	})
	if got := sc.Severity(pii.TypeEmail); got != pii.SeverityMedium {
		t.Errorf("EMAIL = %s, want medium", got)
	}
	if got := sc.Severity(pii.TypeAadhaar); got != pii.SeverityHigh {
		t.Errorf("AADHAAR = %s, must stay high", got)
	}
	if got := sc.Severity(pii.TypeSSN); got != pii.SeverityHigh {
		t.Errorf("SSN = %s, must stay high", got)
	}
	if got := Default().Severity(pii.TypeEmail); got != pii.SeverityLow {
		t.Errorf("default table was modified: EMAIL = %s", got)
	}
}
