package output

import (
	"fmt"
	"io"
	"os"

	"github.com/leakshield/leakshield/internal/pii"
	"github.com/leakshield/leakshield/internal/redact"
)

// Formats lists the supported output formats.
var Formats = []string{"text", "json", "markdown", "sarif", "csv", "jsonl"}

// Writer writes a report in a specific format.
type Writer interface {
	Write(w io.Writer, report *pii.Report) error
}

// Options control rendering.
type Options struct {
	// Mask replaces finding values with a masked form.
	Mask bool
	// Color enables ANSI styling in text output.
	Color bool
	// Width is the text table width; zero uses the terminal width.
	Width int
}

// GetWriter returns a writer for the specified format.
func GetWriter(format string, opts Options) (Writer, error) {
	switch format {
	case "text", "":
		return &TextWriter{Options: opts}, nil
	case "json":
		return &JSONWriter{Mask: opts.Mask}, nil
	case "markdown", "md":
		return &MarkdownWriter{Mask: opts.Mask}, nil
	case "sarif":
		return &SARIFWriter{Mask: opts.Mask}, nil
	case "csv":
		return &CSVWriter{Mask: opts.Mask}, nil
	case "jsonl":
		return &JSONLWriter{Mask: opts.Mask}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// WriteReport writes the report to the specified output (file path or stdout).
func WriteReport(report *pii.Report, format, outPath string, opts Options) error {
	writer, err := GetWriter(format, opts)
	if err != nil {
		return err
	}

	var w io.Writer
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		w = f
	} else {
		w = os.Stdout
	}

	return writer.Write(w, report)
}

// masked returns a copy of report whose finding values are masked. The
// input report is never modified.
func masked(report *pii.Report, mask bool) *pii.Report {
	if !mask {
		return report
	}
	cp := *report
	cp.Findings = make([]pii.Finding, len(report.Findings))
	for i, f := range report.Findings {
		f.Value = redact.Mask(f.Value, f.Type)
		cp.Findings[i] = f
	}
	return &cp
}

// location renders where a finding was seen: the line for single-document
// reports, path:line when the report merges several files.
func location(report *pii.Report, f pii.Finding) string {
	if f.Source != "" && f.Source != report.Source {
		return fmt.Sprintf("%s:%d", f.Source, f.Line)
	}
	return fmt.Sprintf("%d", f.Line)
}
