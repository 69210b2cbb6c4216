package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/leakshield/leakshield/internal/pii"
)

var (
	colorHigh   = lipgloss.AdaptiveColor{Light: "#C62828", Dark: "#FF6B6B"}
	colorMedium = lipgloss.AdaptiveColor{Light: "#E65100", Dark: "#FFB454"}
	colorLow    = lipgloss.AdaptiveColor{Light: "#2E7D32", Dark: "#7BD88F"}
	colorMuted  = lipgloss.AdaptiveColor{Light: "#757575", Dark: "#8A8A8A"}

	titleStyle  = lipgloss.NewStyle().Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(colorMuted)
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// TextWriter outputs a human-readable report with a findings table.
type TextWriter struct {
	Options
}

func (t *TextWriter) Write(w io.Writer, report *pii.Report) error {
	report = masked(report, t.Mask)
	ew := &errWriter{w: w}
	width := t.Width
	if width <= 0 {
		width = defaultWidth
	}

	ew.println(t.style(titleStyle, "LeakShield PII scan: "+report.Source))
	mode := "NER available"
	if !report.NERAvailable {
		mode = "regex-only mode, confidence capped at MEDIUM"
	}
	ew.println(t.style(mutedStyle, fmt.Sprintf("Recognizer: %s (%s)", report.Recognizer, mode)))
	ew.println(strings.Repeat("─", 60))

	s := report.Summary
	if s.Total == 0 {
		ew.printf("%s No PII detected.\n", t.alertBadge(s.Alert))
		ew.printf("\nCompleted in %dms\n", report.Timing.TotalMs)
		return ew.err
	}

	ew.printf("%s %d finding(s): %d high, %d medium, %d low confidence\n",
		t.alertBadge(s.Alert), s.Total, s.ByConfidence.High, s.ByConfidence.Medium, s.ByConfidence.Low)
	ew.printf("Severity: %d high, %d medium, %d low | Government IDs: %d\n\n",
		s.BySeverity.High, s.BySeverity.Medium, s.BySeverity.Low, s.GovernmentIDs)

	ew.println(t.findingsTable(report))

	ew.printf("\nDetails\n")
	for i, f := range report.Findings {
		ew.printf("  [%d] %s %s\n", i+1, f.Type, f.Value)
		for _, line := range wrapText(f.Explanation, width-8) {
			ew.printf("      %s\n", line)
		}
	}

	if len(report.Insights) > 0 {
		ew.printf("\nDigital footprint\n")
		for _, in := range report.Insights {
			for i, line := range wrapText(in.Message, width-6) {
				prefix := "    "
				if i == 0 {
					prefix = "  - "
				}
				ew.printf("%s%s\n", prefix, line)
			}
		}
	}

	ew.printf("\n%s\n", strings.Repeat("─", 60))
	ew.printf("Completed in %dms (NER: %dms)\n", report.Timing.TotalMs, report.Timing.NERMs)
	return ew.err
}

func (t *TextWriter) findingsTable(report *pii.Report) string {
	rows := make([][]string, 0, len(report.Findings))
	for i, f := range report.Findings {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			string(f.Type),
			f.Value,
			location(report, f),
			string(f.Confidence),
			strings.ToUpper(string(f.Severity)),
		})
	}

	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("#", "TYPE", "VALUE", "LINE", "CONFIDENCE", "SEVERITY").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				if t.Color {
					return headerStyle
				}
				return cellStyle
			}
			if !t.Color || row < 0 || row >= len(rows) {
				return cellStyle
			}
			switch col {
			case 4:
				return cellStyle.Foreground(confidenceColor(pii.Confidence(rows[row][col])))
			case 5:
				return cellStyle.Foreground(severityColor(pii.Severity(strings.ToLower(rows[row][col]))))
			}
			return cellStyle
		})
	if t.Color {
		tbl = tbl.BorderStyle(mutedStyle)
	}
	return tbl.String()
}

func (t *TextWriter) style(s lipgloss.Style, text string) string {
	if !t.Color {
		return text
	}
	return s.Render(text)
}

func (t *TextWriter) alertBadge(alert string) string {
	badge := "[" + strings.ToUpper(alert) + "]"
	if !t.Color {
		return badge
	}
	var c lipgloss.TerminalColor = colorLow
	switch alert {
	case pii.AlertCritical:
		c = colorHigh
	case pii.AlertWarning:
		c = colorMedium
	}
	return lipgloss.NewStyle().Bold(true).Foreground(c).Render(badge)
}

func confidenceColor(c pii.Confidence) lipgloss.TerminalColor {
	switch c {
	case pii.ConfidenceHigh:
		return colorHigh
	case pii.ConfidenceMedium:
		return colorMedium
	default:
		return colorLow
	}
}

func severityColor(s pii.Severity) lipgloss.TerminalColor {
	switch s {
	case pii.SeverityHigh:
		return colorHigh
	case pii.SeverityMedium:
		return colorMedium
	default:
		return colorLow
	}
}

// errWriter wraps an io.Writer and captures the first error.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func (ew *errWriter) println(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintln(ew.w, s)
}

func wrapText(text string, width int) []string {
	if width < 20 {
		width = 20
	}
	if len(text) <= width {
		return []string{text}
	}
	var lines []string
	words := strings.Fields(text)
	var current strings.Builder
	for _, word := range words {
		if current.Len()+len(word)+1 > width && current.Len() > 0 {
			lines = append(lines, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(word)
	}
	if current.Len() > 0 {
		lines = append(lines, current.String())
	}
	return lines
}
