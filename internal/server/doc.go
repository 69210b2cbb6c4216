// Package server exposes the scan engine over HTTP.
//
// Routes:
//
//	POST /v1/scan   {"text": "..."} or {"url": "https://github.com/owner/repo"}
//	GET  /healthz
//	GET  /metrics   Prometheus exposition
//
// Every response carries an X-Request-ID header. Errors are returned as
// {"error": code, "error_description": message}.
package server
