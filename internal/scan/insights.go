package scan

import (
	"fmt"
	"slices"
	"strings"

	"github.com/leakshield/leakshield/internal/pii"
)

// Insight kinds.
const (
	InsightPersons       = "persons"
	InsightEmailDomains  = "email_domains"
	InsightPhoneCodes    = "phone_codes"
	InsightGovernmentIDs = "government_ids"
	InsightAddresses     = "addresses"
	InsightCombinedRisk  = "combined_risk"
)

// counter counts keys while remembering first-seen order.
type counter struct {
	keys   []string
	counts map[string]int
}

func (c *counter) add(k string) {
	if c.counts == nil {
		c.counts = make(map[string]int)
	}
	if c.counts[k] == 0 {
		c.keys = append(c.keys, k)
	}
	c.counts[k]++
}

// BuildInsights summarizes the digital footprint exposed by findings. It
// returns nothing when there are no findings.
func BuildInsights(findings []pii.Finding, entities []pii.Entity) []pii.Insight {
	if len(findings) == 0 {
		return nil
	}
	var out []pii.Insight

	var persons []string
	for _, e := range entities {
		if e.Label == pii.LabelPerson && e.Text != "" && !slices.Contains(persons, e.Text) {
			persons = append(persons, e.Text)
		}
	}
	if len(persons) > 0 {
		out = append(out, pii.Insight{
			Kind: InsightPersons,
			Message: fmt.Sprintf("%d named individual(s) detected: %s. Multiple identifiers linked to one person significantly amplify exposure risk.",
				len(persons), strings.Join(persons, ", ")),
		})
	}

	var domains, codes counter
	var aadhaar, ssn, addresses int
	types := make(map[pii.Type]bool)
	for _, f := range findings {
		types[f.Type] = true
		switch f.Type {
		case pii.TypeEmail:
			domain := "unknown"
			if _, d, ok := strings.Cut(f.Value, "@"); ok {
				domain = strings.ToLower(d)
			}
			domains.add(domain)
		case pii.TypePhone:
			codes.add(PhoneRegion(f.Value))
		case pii.TypeAadhaar:
			aadhaar++
		case pii.TypeSSN:
			ssn++
		case pii.TypeAddress:
			addresses++
		}
	}

	if len(domains.keys) > 0 {
		parts := make([]string, 0, len(domains.keys))
		for _, d := range domains.keys {
			n := domains.counts[d]
			noun := "address"
			if n > 1 {
				noun = "addresses"
			}
			parts = append(parts, fmt.Sprintf("%s (%d %s)", d, n, noun))
		}
		out = append(out, pii.Insight{
			Kind:    InsightEmailDomains,
			Message: "Email domains: " + strings.Join(parts, ", ") + ". Corporate domain addresses carry elevated organisational breach risk.",
		})
	}

	if len(codes.keys) > 0 {
		parts := make([]string, 0, len(codes.keys))
		for _, c := range codes.keys {
			parts = append(parts, fmt.Sprintf("%s x%d", c, codes.counts[c]))
		}
		out = append(out, pii.Insight{
			Kind:    InsightPhoneCodes,
			Message: "Phone country codes: " + strings.Join(parts, ", ") + ". Cross-border exposure triggers multi-jurisdiction compliance obligations (GDPR, DPDP Act).",
		})
	}

	if aadhaar > 0 || ssn > 0 {
		var ids []string
		if aadhaar > 0 {
			ids = append(ids, fmt.Sprintf("%d Aadhaar number(s)", aadhaar))
		}
		if ssn > 0 {
			ids = append(ids, fmt.Sprintf("%d SSN(s)", ssn))
		}
		out = append(out, pii.Insight{
			Kind: InsightGovernmentIDs,
			Message: "Government-issued IDs: " + strings.Join(ids, " and ") +
				" detected. Exposure of national identity numbers constitutes a critical-level data breach under the DPDP Act 2023 and US privacy laws.",
		})
	}

	if addresses > 0 {
		out = append(out, pii.Insight{
			Kind:    InsightAddresses,
			Message: fmt.Sprintf("%d physical address(es) detected. Location data combined with identity information enables real-world targeting and stalking.", addresses),
		})
	}

	if len(types) >= 3 {
		names := make([]string, 0, len(types))
		for t := range types {
			names = append(names, string(t))
		}
		slices.Sort(names)
		out = append(out, pii.Insight{
			Kind: InsightCombinedRisk,
			Message: fmt.Sprintf("Combined PII risk: %d distinct PII types found (%s). Aggregated PII dramatically increases identity theft, fraud, and social engineering risk.",
				len(types), strings.Join(names, ", ")),
		})
	}

	return out
}

// PhoneRegion classifies a phone number by its international prefix.
func PhoneRegion(phone string) string {
	phone = strings.TrimSpace(phone)
	switch {
	case strings.HasPrefix(phone, "+91"):
		return "+91 (India)"
	case strings.HasPrefix(phone, "+1"):
		return "+1 (US/Canada)"
	case strings.HasPrefix(phone, "+"):
		end := min(3, len(phone))
		return phone[:end] + " (International)"
	default:
		return "Local / unspecified"
	}
}
