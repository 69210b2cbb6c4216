package ner

import (
	"strings"

	"github.com/leakshield/leakshield/internal/pii"
)

var labelAliases = map[string]string{
	"PER":          pii.LabelPerson,
	"PERSON":       pii.LabelPerson,
	"NAME":         pii.LabelPerson,
	"FIRSTNAME":    pii.LabelPerson,
	"LASTNAME":     pii.LabelPerson,
	"GIVENNAME":    pii.LabelPerson,
	"SURNAME":      pii.LabelPerson,
	"LOC":          pii.LabelLocation,
	"LOCATION":     pii.LabelLocation,
	"GPE":          pii.LabelLocation,
	"FAC":          pii.LabelLocation,
	"CITY":         pii.LabelLocation,
	"STREET":       pii.LabelLocation,
	"ADDRESS":      pii.LabelLocation,
	"ORG":          pii.LabelOrg,
	"ORGANIZATION": pii.LabelOrg,
	"ORGANISATION": pii.LabelOrg,
	"COMPANY":      pii.LabelOrg,
}

// NormalizeLabel maps a model label such as "B-PER" or "gpe" onto one of the
// pii entity labels. It returns false for labels the scanner does not use.
func NormalizeLabel(raw string) (string, bool) {
	l := strings.ToUpper(strings.TrimSpace(raw))
	if len(l) > 2 && l[1] == '-' && strings.ContainsRune("BIES", rune(l[0])) {
		l = l[2:]
	}
	l = strings.NewReplacer("_", "", " ", "").Replace(l)
	out, ok := labelAliases[l]
	return out, ok
}

// normalizeAll keeps only entities with a known label and rewrites the label.
func normalizeAll(in []pii.Entity) []pii.Entity {
	out := in[:0]
	for _, e := range in {
		label, ok := NormalizeLabel(e.Label)
		if !ok {
			continue
		}
		e.Label = label
		out = append(out, e)
	}
	return out
}
