// Package cli wires together the Cobra command tree for the leakshield binary.
//
// It defines the root command and all subcommands (scan, samples, serve, mcp,
// hook, cache, config, recognizers, version), binds flags, reads
// configuration, builds the scan engine, and returns deterministic exit codes
// for CI gating.
package cli
