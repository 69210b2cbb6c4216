package validator

import (
	"slices"
	"strings"

	"github.com/leakshield/leakshield/internal/pii"
)

// Keywords holds the context keyword sets. Keywords are matched against the
// lower-cased words of the window; keywords that contain anything other than
// letters and digits (such as "w-2") are matched as substrings.
type Keywords struct {
	Log     []string `yaml:"log" json:"log"`
	Aadhaar []string `yaml:"aadhaar" json:"aadhaar"`
	SSN     []string `yaml:"ssn" json:"ssn"`
	Address []string `yaml:"address" json:"address"`
}

// DefaultKeywords returns the built-in keyword sets.
func DefaultKeywords() Keywords {
	return Keywords{
		Log: []string{
			"error", "code", "exception", "log", "transaction",
			"id", "ref", "request", "status", "trace", "debug",
			"ticket", "order", "invoice", "batch", "session", "event",
		},
		Aadhaar: []string{
			"aadhaar", "aadhar", "uid", "uidai", "enrollment",
			"dob", "biometric", "identity", "verification",
		},
		SSN: []string{
			"ssn", "social", "security", "taxpayer", "irs",
			"federal", "ein", "tin", "w2", "w-2",
		},
		Address: []string{
			"address", "residence", "residing", "lives", "located",
			"home", "office", "flat", "apartment", "house", "plot",
			"door", "building", "floor", "near", "opposite", "behind",
		},
	}
}

// Merge returns k with the extra keywords appended. Duplicates are dropped
// and everything is lower-cased.
func (k Keywords) Merge(extra Keywords) Keywords {
	return Keywords{
		Log:     mergeSet(k.Log, extra.Log),
		Aadhaar: mergeSet(k.Aadhaar, extra.Aadhaar),
		SSN:     mergeSet(k.SSN, extra.SSN),
		Address: mergeSet(k.Address, extra.Address),
	}
}

// supporting returns the keyword set that confirms candidates of type t.
func (k Keywords) supporting(t pii.Type) []string {
	switch t {
	case pii.TypeAadhaar:
		return k.Aadhaar
	case pii.TypeSSN:
		return k.SSN
	case pii.TypeAddress:
		return k.Address
	default:
		return nil
	}
}

func mergeSet(base, extra []string) []string {
	out := make([]string, 0, len(base)+len(extra))
	for _, w := range append(slices.Clone(base), extra...) {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" && !slices.Contains(out, w) {
			out = append(out, w)
		}
	}
	return out
}

func isWord(kw string) bool {
	for i := 0; i < len(kw); i++ {
		c := kw[i]
		if (c < 'a' || c > 'z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}

// matchKeywords returns the keywords of set present in the window, in set
// order.
func matchKeywords(set []string, words map[string]bool, window string) []string {
	var out []string
	for _, kw := range set {
		if isWord(kw) {
			if words[kw] {
				out = append(out, kw)
			}
		} else if strings.Contains(window, kw) {
			out = append(out, kw)
		}
	}
	return out
}
