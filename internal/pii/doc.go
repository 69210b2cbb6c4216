// Package pii defines the types shared by every stage of a LeakShield scan.
//
// A scan turns raw text into [Candidate] values (pattern matches), derives a
// [ContextSignal] for each from named entities and nearby keywords, and
// scores the pair into a [Finding]. Findings are collected into a [Report]
// whose [Summary] is computed by [ComputeSummary].
//
// All values are plain data. Nothing in this package performs I/O.
package pii
