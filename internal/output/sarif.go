package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/leakshield/leakshield/internal/pii"
)

// SARIFWriter outputs findings in SARIF v2.1.0 format.
type SARIFWriter struct {
	Mask bool
}

func (s *SARIFWriter) Write(w io.Writer, report *pii.Report) error {
	sarif := buildSARIF(masked(report, s.Mask))
	data, err := json.MarshalIndent(sarif, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling SARIF: %w", err)
	}
	_, err = w.Write(data)
	if err != nil {
		return fmt.Errorf("writing SARIF: %w", err)
	}
	_, err = fmt.Fprintln(w)
	return err
}

// SARIF schema types (v2.1.0)

type sarifLog struct {
	Version string     `json:"version"`
	Schema  string     `json:"$schema"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string      `json:"name"`
	Version        string      `json:"version"`
	InformationURI string      `json:"informationUri"`
	Rules          []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string              `json:"id"`
	Name             string              `json:"name"`
	ShortDescription sarifMessage        `json:"shortDescription"`
	DefaultConfig    sarifDefaultConfig  `json:"defaultConfiguration"`
	Properties       sarifRuleProperties `json:"properties,omitempty"`
}

type sarifDefaultConfig struct {
	Level string `json:"level"`
}

type sarifRuleProperties struct {
	Tags []string `json:"tags,omitempty"`
}

type sarifResult struct {
	RuleID              string            `json:"ruleId"`
	Level               string            `json:"level"`
	Message             sarifMessage      `json:"message"`
	Locations           []sarifLocation   `json:"locations,omitempty"`
	PartialFingerprints map[string]string `json:"partialFingerprints,omitempty"`
	Properties          map[string]string `json:"properties,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           sarifRegion           `json:"region"`
}

type sarifArtifactLocation struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine int `json:"startLine"`
	EndLine   int `json:"endLine"`
}

var ruleDescriptions = map[pii.Type]string{
	pii.TypeEmail:   "Email address",
	pii.TypePhone:   "Phone number",
	pii.TypeAadhaar: "Aadhaar number (India national ID)",
	pii.TypeSSN:     "US Social Security Number",
	pii.TypeAddress: "Physical address",
}

func buildSARIF(report *pii.Report) sarifLog {
	var rules []sarifRule
	seen := make(map[string]bool)
	results := make([]sarifResult, 0, len(report.Findings))

	for _, f := range report.Findings {
		id := ruleID(f.Type)
		if !seen[id] {
			seen[id] = true
			tags := []string{"pii", "privacy"}
			if f.Type.IsGovernmentID() {
				tags = append(tags, "government-id")
			}
			rules = append(rules, sarifRule{
				ID:               id,
				Name:             string(f.Type),
				ShortDescription: sarifMessage{Text: ruleDescriptions[f.Type]},
				DefaultConfig:    sarifDefaultConfig{Level: severityToLevel(f.Severity)},
				Properties:       sarifRuleProperties{Tags: tags},
			})
		}

		result := sarifResult{
			RuleID: id,
			Level:  severityToLevel(f.Severity),
			Message: sarifMessage{
				Text: fmt.Sprintf("%s %s detected (confidence %s): %s", f.Type, f.Value, f.Confidence, f.Explanation),
			},
			PartialFingerprints: map[string]string{"leakshield/v1": f.ID},
			Properties:          map[string]string{"confidence": string(f.Confidence)},
		}
		if uri := artifactURI(report, f); uri != "" {
			result.Locations = []sarifLocation{{
				PhysicalLocation: sarifPhysicalLocation{
					ArtifactLocation: sarifArtifactLocation{URI: uri},
					Region:           sarifRegion{StartLine: f.Line, EndLine: f.Line},
				},
			}}
		}
		results = append(results, result)
	}

	return sarifLog{
		Version: "2.1.0",
		Schema:  "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/main/sarif-2.1/schema/sarif-schema-2.1.0.json",
		Runs: []sarifRun{
			{
				Tool: sarifTool{
					Driver: sarifDriver{
						Name:           report.Tool,
						Version:        report.Version,
						InformationURI: "https://github.com/leakshield/leakshield",
						Rules:          rules,
					},
				},
				Results: results,
			},
		},
	}
}

// artifactURI is the file a finding came from. Text, stdin, sample and
// HTTP sources have no artifact.
func artifactURI(report *pii.Report, f pii.Finding) string {
	source := f.Source
	if source == "" {
		source = report.Source
	}
	switch {
	case source == "", source == "text", source == "stdin", source == "http", source == "mcp":
		return ""
	case strings.HasPrefix(source, "sample:"):
		return ""
	}
	return source
}

func severityToLevel(s pii.Severity) string {
	switch s {
	case pii.SeverityHigh:
		return "error"
	case pii.SeverityMedium:
		return "warning"
	default:
		return "note"
	}
}

func ruleID(t pii.Type) string {
	return "leakshield/" + strings.ToLower(string(t))
}
