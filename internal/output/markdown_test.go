package output

import (
	"bytes"
	"strings"
	"testing"
)

func TestMarkdownWriter_NoFindings(t *testing.T) {
	var buf bytes.Buffer
	if err := (&MarkdownWriter{}).Write(&buf, emptyReport()); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "## LeakShield PII Scan") {
		t.Error("Missing heading")
	}
	if !strings.Contains(out, "No PII detected") {
		t.Error("Missing no-findings message")
	}
	if !strings.Contains(out, "confidence is capped at MEDIUM") {
		t.Error("Missing regex-only note")
	}
}

func TestMarkdownWriter_WithFindings(t *testing.T) {
	report := sampleReport()
	report.Findings[1].Explanation = "pipe | in reason"

	var buf bytes.Buffer
	if err := (&MarkdownWriter{}).Write(&buf, report); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"| **Total**  | **2** |",
		"| 1 | EMAIL | `john@example.com` | 1 | HIGH | :yellow_circle: low |",
		":red_circle: high",
		`pipe \| in reason`,
		"<summary>Digital footprint (1)</summary>",
		"*Scanned in 20ms (NER: 12ms)*",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Output missing %q:\n%s", want, out)
		}
	}
}
