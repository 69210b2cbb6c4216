// Package output formats scan reports for display or machine consumption.
//
// Supported formats:
//   - text     - terminal output with a findings table (default)
//   - json     - the full structured report
//   - markdown - summary and findings tables for PR comments and wikis
//   - sarif    - SARIF v2.1.0 for code-scanning uploads
//   - csv      - one row per finding (Source, Timestamp, Type, Value,
//     Confidence, Severity, Reason)
//   - jsonl    - the same rows as CSV, one JSON object per line
//
// Use [GetWriter] to obtain a [Writer] for a format, or [WriteReport] to
// write to a file or stdout. With Options.Mask set, finding values are
// replaced by [redact.Mask] before rendering.
package output
