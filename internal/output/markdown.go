package output

import (
	"io"
	"strings"

	"github.com/leakshield/leakshield/internal/pii"
)

// MarkdownWriter outputs a markdown report with summary and findings tables.
type MarkdownWriter struct {
	Mask bool
}

func (m *MarkdownWriter) Write(w io.Writer, report *pii.Report) error {
	report = masked(report, m.Mask)
	ew := &errWriter{w: w}
	s := report.Summary

	ew.printf("## LeakShield PII Scan\n\n")
	ew.printf("**Source:** `%s` | **Recognizer:** %s | **Alert:** %s %s\n\n",
		report.Source, report.Recognizer, mdAlertIcon(s.Alert), strings.ToUpper(s.Alert))
	if !report.NERAvailable {
		ew.printf("> Entity recognition was unavailable; confidence is capped at MEDIUM.\n\n")
	}

	ew.printf("| Confidence | Count |\n")
	ew.printf("|------------|-------|\n")
	ew.printf("| High       | %d    |\n", s.ByConfidence.High)
	ew.printf("| Medium     | %d    |\n", s.ByConfidence.Medium)
	ew.printf("| Low        | %d    |\n", s.ByConfidence.Low)
	ew.printf("| **Total**  | **%d** |\n\n", s.Total)

	if s.Total == 0 {
		ew.println("No PII detected. :white_check_mark:")
		return ew.err
	}

	ew.printf("### Findings\n\n")
	ew.printf("| # | Type | Value | Line | Confidence | Severity | Reason |\n")
	ew.printf("|---|------|-------|------|------------|----------|--------|\n")
	for i, f := range report.Findings {
		ew.printf("| %d | %s | `%s` | %s | %s | %s %s | %s |\n",
			i+1, f.Type, mdEscape(f.Value), location(report, f), f.Confidence,
			mdSeverityIcon(f.Severity), f.Severity, mdEscape(f.Explanation))
	}
	ew.println("")

	if len(report.Insights) > 0 {
		ew.printf("<details>\n<summary>Digital footprint (%d)</summary>\n\n", len(report.Insights))
		for _, in := range report.Insights {
			ew.printf("- %s\n", in.Message)
		}
		ew.printf("\n</details>\n\n")
	}

	ew.printf("*Scanned in %dms (NER: %dms)*\n", report.Timing.TotalMs, report.Timing.NERMs)
	return ew.err
}

func mdEscape(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

func mdAlertIcon(alert string) string {
	switch alert {
	case pii.AlertCritical:
		return ":rotating_light:"
	case pii.AlertWarning:
		return ":warning:"
	default:
		return ":white_check_mark:"
	}
}

func mdSeverityIcon(s pii.Severity) string {
	switch s {
	case pii.SeverityHigh:
		return ":red_circle:"
	case pii.SeverityMedium:
		return ":orange_circle:"
	case pii.SeverityLow:
		return ":yellow_circle:"
	default:
		return ":white_circle:"
	}
}
