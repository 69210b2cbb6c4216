// Package github fetches a public repository's README for scanning.
//
// Only README.md is read, from raw.githubusercontent.com, trying the main
// branch and then master. No token is sent and nothing else in the
// repository is crawled. The repository can be given as an https URL, a
// bare github.com/owner/repo path or an ssh remote, and DetectRepo reads it
// from the local git remote.
package github
