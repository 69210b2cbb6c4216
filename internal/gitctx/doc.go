// Package gitctx collects file contents from a git repository for scanning.
//
// [Staged] reads the index version of every staged file, which is what the
// pre-commit hook scans. [Tracked] reads every tracked file in the working
// tree. Both shell out to git, filter paths by include/exclude glob patterns,
// and skip binary and oversized files, reporting them in Result.Skipped.
package gitctx
