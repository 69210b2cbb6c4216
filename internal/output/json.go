package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/leakshield/leakshield/internal/pii"
)

// JSONWriter outputs the full report as JSON.
type JSONWriter struct {
	Mask bool
}

func (j *JSONWriter) Write(w io.Writer, report *pii.Report) error {
	data, err := json.MarshalIndent(masked(report, j.Mask), "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	_, err = w.Write(data)
	if err != nil {
		return fmt.Errorf("writing JSON: %w", err)
	}
	_, err = fmt.Fprintln(w)
	return err
}
