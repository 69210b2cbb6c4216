// LeakShield is a CLI for finding personally identifiable information in
// public text.
//
// It matches emails, phone numbers, Aadhaar numbers, SSNs and street
// addresses with fixed patterns, checks each match against named entities
// and keyword context, and reports every finding with a confidence, a
// severity and a one-line explanation. Exit codes are deterministic so the
// tool can gate CI jobs and git hooks.
//
// Usage:
//
//	leakshield scan text "Contact John at john@example.com"
//	leakshield scan file notes.txt dump.log
//	leakshield scan url https://github.com/owner/repo
//	leakshield scan staged                # scan staged changes
//	leakshield scan repo                  # scan all tracked files
//	leakshield scan sample identity-leak  # scan a simulated paste
//	leakshield serve                      # HTTP API on :8080
//	leakshield mcp                        # MCP tool server on stdio
package main
