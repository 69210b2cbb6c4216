// Package metrics exposes Prometheus instrumentation for scans.
package metrics
