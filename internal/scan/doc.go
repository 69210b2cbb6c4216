// Package scan wires pattern matching, context validation and scoring into
// a single engine that produces reports.
//
// The engine runs the recognizer once per document, applies the optional
// rules file (disabled types, severity overrides, an allowlist and extra
// context keywords), assigns stable finding IDs and line numbers, and
// attaches a summary and digital-footprint insights to the report.
package scan
