package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/leakshield/leakshield/internal/pii"
)

func TestJSONWriter(t *testing.T) {
	var buf bytes.Buffer
	w := &JSONWriter{}
	if err := w.Write(&buf, sampleReport()); err != nil {
		t.Fatalf("Write error: %v", err)
	}

	var decoded pii.Report
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if decoded.Tool != "leakshield" {
		t.Errorf("Tool = %q", decoded.Tool)
	}
	if len(decoded.Findings) != 2 {
		t.Fatalf("Findings count = %d, want 2", len(decoded.Findings))
	}
	if decoded.Findings[0].Value != "john@example.com" {
		t.Errorf("Value = %q", decoded.Findings[0].Value)
	}
	if decoded.Summary.Alert != pii.AlertCritical {
		t.Errorf("Alert = %q", decoded.Summary.Alert)
	}
}

func TestJSONWriter_Mask(t *testing.T) {
	var buf bytes.Buffer
	w := &JSONWriter{Mask: true}
	if err := w.Write(&buf, sampleReport()); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	if bytes.Contains(buf.Bytes(), []byte("john@example.com")) {
		t.Error("masked JSON should not contain the raw email")
	}
}

func TestJSONWriter_EmptyFindingsIsArray(t *testing.T) {
	var buf bytes.Buffer
	if err := (&JSONWriter{}).Write(&buf, emptyReport()); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	if !bytes.Contains(buf.Bytes(), []byte(`"findings": []`)) {
		t.Errorf("findings should encode as an empty array:\n%s", buf.String())
	}
}
