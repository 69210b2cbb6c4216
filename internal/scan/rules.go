package scan

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/leakshield/leakshield/internal/pii"
	"github.com/leakshield/leakshield/internal/validator"
)

// Rules represents a rules file loaded from --rules.
type Rules struct {
	DisabledTypes     []string           `yaml:"disabledTypes,omitempty"`
	SeverityOverrides map[string]string  `yaml:"severityOverrides,omitempty"`
	Allowlist         []string           `yaml:"allowlist,omitempty"`
	Keywords          validator.Keywords `yaml:"keywords,omitempty"`

	disabled  []pii.Type
	overrides map[pii.Type]pii.Severity
	literals  map[string]bool
	patterns  []*regexp.Regexp
}

// LoadRules loads a rules file from disk. Returns nil Rules and nil error if path is empty.
func LoadRules(path string) (*Rules, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules file: %w", err)
	}
	return ParseRules(data)
}

// ParseRules parses and validates YAML rules.
func ParseRules(data []byte) (*Rules, error) {
	var r Rules
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parsing rules file: %w", err)
	}
	if err := r.compile(); err != nil {
		return nil, err
	}
	return &r, nil
}

func (r *Rules) compile() error {
	for _, name := range r.DisabledTypes {
		t, ok := pii.ParseType(name)
		if !ok {
			return fmt.Errorf("rules: unknown type %q in disabledTypes", name)
		}
		r.disabled = append(r.disabled, t)
	}

	r.overrides = make(map[pii.Type]pii.Severity, len(r.SeverityOverrides))
	for name, sev := range r.SeverityOverrides {
		t, ok := pii.ParseType(name)
		if !ok {
			return fmt.Errorf("rules: unknown type %q in severityOverrides", name)
		}
		s := pii.Severity(strings.ToLower(sev))
		if pii.SeverityRank(s) == 0 {
			return fmt.Errorf("rules: invalid severity %q for %s (must be low, medium, or high)", sev, name)
		}
		r.overrides[t] = s
	}

	r.literals = make(map[string]bool)
	for _, entry := range r.Allowlist {
		if expr, ok := strings.CutPrefix(entry, "re:"); ok {
			re, err := regexp.Compile(expr)
			if err != nil {
				return fmt.Errorf("rules: invalid allowlist pattern %q: %w", expr, err)
			}
			r.patterns = append(r.patterns, re)
			continue
		}
		r.literals[strings.TrimSpace(entry)] = true
	}
	return nil
}

// Disabled returns the types the rules switch off.
func (r *Rules) Disabled() []pii.Type {
	if r == nil {
		return nil
	}
	return r.disabled
}

// Overrides returns the validated severity overrides.
func (r *Rules) Overrides() map[pii.Type]pii.Severity {
	if r == nil {
		return nil
	}
	return r.overrides
}

// Allowed reports whether value is allowlisted and must not be reported.
func (r *Rules) Allowed(value string) bool {
	if r == nil {
		return false
	}
	if r.literals[value] {
		return true
	}
	for _, re := range r.patterns {
		if re.MatchString(value) {
			return true
		}
	}
	return false
}
