package redact

import (
	"regexp"
	"strings"

	"github.com/leakshield/leakshield/internal/pii"
)

const placeholder = "[REDACTED]"

// secretRule pairs a secret kind with the expression that finds it.
type secretRule struct {
	kind string
	re   *regexp.Regexp
}

// secretRules run in order; earlier, more specific rules win.
var secretRules = []secretRule{
	{"private-key", regexp.MustCompile(`-----BEGIN\s+(?:RSA\s+|EC\s+|OPENSSH\s+)?PRIVATE KEY-----`)},
	{"aws-access-key", regexp.MustCompile(`AKIA[0-9A-Z]{16}`)},
	{"aws-secret-key", regexp.MustCompile(`(?i)aws[_-]?secret[_-]?access[_-]?key\s*[:=]\s*["']?[A-Za-z0-9/+=]{40}["']?`)},
	{"anthropic-key", regexp.MustCompile(`sk-ant-[A-Za-z0-9_-]{20,}`)},
	{"openai-key", regexp.MustCompile(`sk-[A-Za-z0-9]{20,}`)},
	{"github-token", regexp.MustCompile(`gh[pousr]_[A-Za-z0-9_]{36,}`)},
	{"slack-token", regexp.MustCompile(`xox[bporas]-[A-Za-z0-9-]{10,}`)},
	{"jwt", regexp.MustCompile(`eyJ[A-Za-z0-9_-]{10,}\.eyJ[A-Za-z0-9_-]{10,}\.[A-Za-z0-9_-]{10,}`)},
	{"bearer", regexp.MustCompile(`(?i)Bearer\s+[A-Za-z0-9._-]{20,}`)},
	{"api-key", regexp.MustCompile(`(?i)(?:api[_-]?key|apikey|api[_-]?secret)\s*[:=]\s*["']?[A-Za-z0-9/+=_-]{20,}["']?`)},
	{"assignment", regexp.MustCompile(`(?i)(?:secret|token|password|passwd|credential)\s*[:=]\s*["'][^"']{8,}["']`)},
	{"hex-secret", regexp.MustCompile(`(?i)(?:key|secret|token)\s*[:=]\s*["']?[0-9a-f]{32,}["']?`)},
}

// Secrets replaces credentials in text with [REDACTED]. Text goes through it
// before it is sent to an LLM recognizer. Personal data is left alone; the
// recognizer needs it.
func Secrets(text string) string {
	out, _ := Scrub(text)
	return out
}

// Scrub is Secrets that also counts the replacements by kind.
func Scrub(text string) (string, map[string]int) {
	var counts map[string]int
	for _, r := range secretRules {
		n := len(r.re.FindAllStringIndex(text, -1))
		if n == 0 {
			continue
		}
		if counts == nil {
			counts = make(map[string]int)
		}
		counts[r.kind] += n
		text = r.re.ReplaceAllLiteralString(text, placeholder)
	}
	return text, counts
}

const maskRunes = "******"

// Mask hides most of a finding value for display. Emails keep the first two
// characters of the local part and the domain; everything else keeps its
// last four characters.
func Mask(value string, t pii.Type) string {
	if t == pii.TypeEmail {
		if local, domain, ok := strings.Cut(value, "@"); ok {
			keep := min(2, len(local))
			return local[:keep] + maskRunes + "@" + domain
		}
	}
	r := []rune(value)
	if len(r) <= 4 {
		return maskRunes
	}
	return maskRunes + string(r[len(r)-4:])
}
