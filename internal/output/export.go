package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/leakshield/leakshield/internal/pii"
)

// Row is one exported finding.
type Row struct {
	Source     string `json:"source"`
	Timestamp  string `json:"timestamp"`
	Type       string `json:"type"`
	Value      string `json:"value"`
	Confidence string `json:"confidence"`
	Severity   string `json:"severity"`
	Reason     string `json:"reason"`
}

var csvHeader = []string{"Source", "Timestamp", "Type", "Value", "Confidence", "Severity", "Reason"}

// ExportRows flattens a report into one row per finding.
func ExportRows(report *pii.Report, mask bool) []Row {
	report = masked(report, mask)
	ts := report.ScannedAt.UTC().Format(time.RFC3339)
	rows := make([]Row, 0, len(report.Findings))
	for _, f := range report.Findings {
		source := f.Source
		if source == "" {
			source = report.Source
		}
		rows = append(rows, Row{
			Source:     source,
			Timestamp:  ts,
			Type:       string(f.Type),
			Value:      f.Value,
			Confidence: string(f.Confidence),
			Severity:   string(f.Severity),
			Reason:     f.Explanation,
		})
	}
	return rows
}

// CSVWriter outputs one CSV row per finding with a header line.
type CSVWriter struct {
	Mask bool
}

func (c *CSVWriter) Write(w io.Writer, report *pii.Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("writing CSV: %w", err)
	}
	for _, r := range ExportRows(report, c.Mask) {
		record := []string{r.Source, r.Timestamp, r.Type, r.Value, r.Confidence, r.Severity, r.Reason}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing CSV: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// JSONLWriter outputs the export rows as JSON lines.
type JSONLWriter struct {
	Mask bool
}

func (j *JSONLWriter) Write(w io.Writer, report *pii.Report) error {
	enc := json.NewEncoder(w)
	for _, r := range ExportRows(report, j.Mask) {
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("writing JSON lines: %w", err)
		}
	}
	return nil
}
