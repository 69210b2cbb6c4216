package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
)

func TestExportRows(t *testing.T) {
	rows := ExportRows(sampleReport(), false)
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	want := Row{
		Source:     "text",
		Timestamp:  "2026-03-01T09:30:00Z",
		Type:       "EMAIL",
		Value:      "john@example.com",
		Confidence: "HIGH",
		Severity:   "low",
		Reason:     "Valid email format with PERSON entity nearby",
	}
	if rows[0] != want {
		t.Errorf("rows[0] = %+v, want %+v", rows[0], want)
	}
}

func TestCSVWriter(t *testing.T) {
	var buf bytes.Buffer
	if err := (&CSVWriter{}).Write(&buf, sampleReport()); err != nil {
		t.Fatalf("Write error: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("invalid CSV: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("records = %d, want header + 2", len(records))
	}
	if strings.Join(records[0], ",") != "Source,Timestamp,Type,Value,Confidence,Severity,Reason" {
		t.Errorf("header = %v", records[0])
	}
	if records[2][3] != "123-45-6789" || records[2][5] != "high" {
		t.Errorf("row = %v", records[2])
	}
}

func TestCSVWriter_EmptyReportHasHeader(t *testing.T) {
	var buf bytes.Buffer
	if err := (&CSVWriter{}).Write(&buf, emptyReport()); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != "Source,Timestamp,Type,Value,Confidence,Severity,Reason" {
		t.Errorf("output = %q", got)
	}
}

func TestJSONLWriter(t *testing.T) {
	var buf bytes.Buffer
	if err := (&JSONLWriter{Mask: true}).Write(&buf, sampleReport()); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(lines))
	}
	var r Row
	if err := json.Unmarshal([]byte(lines[0]), &r); err != nil {
		t.Fatalf("invalid JSON line: %v", err)
	}
	if r.Value != "jo******@example.com" {
		t.Errorf("Value = %q, want masked email", r.Value)
	}
}
