// Package mcpserver exposes scanning as Model Context Protocol tools over
// stdio, so assistants can check text for PII before sharing it.
//
// Tools:
//
//	scan_text           scan the "text" argument
//	scan_github_readme  fetch and scan a repository README
//
// Both accept optional "format" (json, text, markdown) and "mask" arguments.
package mcpserver
