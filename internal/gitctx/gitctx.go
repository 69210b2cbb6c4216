package gitctx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
)

// maxFileBytes is the default per-file size limit.
const maxFileBytes = 1 << 20 // 1MB

// binarySniffBytes is how much of a file is checked for NUL bytes.
const binarySniffBytes = 8000

// Options controls which files are collected.
type Options struct {
	// Dir is any directory inside the repository; empty means the working
	// directory.
	Dir          string
	Include      []string
	Exclude      []string
	MaxFileBytes int
}

// File is the content of one file to scan.
type File struct {
	Path string
	Text string
}

// RepoMeta contains git repository metadata.
type RepoMeta struct {
	Root   string
	Head   string
	Branch string
}

// Skipped records files left out of a collection and why.
type Skipped struct {
	Path   string
	Reason string
}

// Result holds collected files and the repository they came from.
type Result struct {
	Files   []File
	Skipped []Skipped
	Repo    RepoMeta
}

// GetRepoMeta collects repository metadata from git.
func GetRepoMeta(ctx context.Context, dir string) (RepoMeta, error) {
	root, err := gitOutput(ctx, dir, "rev-parse", "--show-toplevel")
	if err != nil {
		return RepoMeta{}, fmt.Errorf("not a git repository: %w", err)
	}
	head, err := gitOutput(ctx, dir, "rev-parse", "HEAD")
	if err != nil {
		head = "" // new repo with no commits
	}
	branch, err := gitOutput(ctx, dir, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		branch = ""
	}
	return RepoMeta{
		Root:   strings.TrimSpace(root),
		Head:   strings.TrimSpace(head),
		Branch: strings.TrimSpace(branch),
	}, nil
}

// Staged returns the staged (index) content of every added, copied,
// modified or renamed file. This is what the next commit would contain.
func Staged(ctx context.Context, opts Options) (Result, error) {
	meta, err := GetRepoMeta(ctx, opts.Dir)
	if err != nil {
		return Result{}, err
	}
	out, err := gitOutput(ctx, meta.Root, "diff", "--cached", "--name-only", "--diff-filter=ACMR", "-z")
	if err != nil {
		return Result{}, fmt.Errorf("git diff --cached: %w", err)
	}

	res := Result{Repo: meta}
	for _, path := range filterFiles(splitNUL(out), opts) {
		data, err := gitOutput(ctx, meta.Root, "show", ":"+path)
		if err != nil {
			res.Skipped = append(res.Skipped, Skipped{Path: path, Reason: "unreadable"})
			continue
		}
		res.add(path, []byte(data), opts.maxBytes())
	}
	return res, nil
}

// Tracked reads every git-tracked file in the working tree that matches the
// include/exclude filters.
func Tracked(ctx context.Context, opts Options) (Result, error) {
	meta, err := GetRepoMeta(ctx, opts.Dir)
	if err != nil {
		return Result{}, err
	}
	out, err := gitOutput(ctx, meta.Root, "ls-files", "-z")
	if err != nil {
		return Result{}, fmt.Errorf("git ls-files: %w", err)
	}

	res := Result{Repo: meta}
	for _, path := range filterFiles(splitNUL(out), opts) {
		data, err := os.ReadFile(filepath.Join(meta.Root, path))
		if err != nil {
			// deleted in the working tree but still tracked
			res.Skipped = append(res.Skipped, Skipped{Path: path, Reason: "unreadable"})
			continue
		}
		res.add(path, data, opts.maxBytes())
	}
	return res, nil
}

func (r *Result) add(path string, data []byte, limit int) {
	switch {
	case len(data) > limit:
		r.Skipped = append(r.Skipped, Skipped{Path: path, Reason: "too large"})
	case isBinary(data):
		r.Skipped = append(r.Skipped, Skipped{Path: path, Reason: "binary"})
	default:
		r.Files = append(r.Files, File{Path: path, Text: string(data)})
	}
}

func (o Options) maxBytes() int {
	if o.MaxFileBytes > 0 {
		return o.MaxFileBytes
	}
	return maxFileBytes
}

// filterFiles applies include/exclude patterns and sorts the result.
func filterFiles(files []string, opts Options) []string {
	var result []string
	for _, f := range files {
		if len(opts.Include) > 0 && !MatchesAny(f, opts.Include) {
			continue
		}
		if len(opts.Exclude) > 0 && MatchesAny(f, opts.Exclude) {
			continue
		}
		result = append(result, f)
	}
	sort.Strings(result)
	return result
}

func splitNUL(out string) []string {
	var files []string
	for _, f := range strings.Split(out, "\x00") {
		if f = strings.TrimSpace(f); f != "" {
			files = append(files, f)
		}
	}
	return files
}

// MatchesAny returns true if the path matches any of the given glob patterns.
// A leading "**/" matches in any directory, and a trailing "/*" or "/**"
// covers every file below that directory.
func MatchesAny(path string, patterns []string) bool {
	for _, pattern := range patterns {
		if matchGlob(pattern, path) || matchDir(pattern, path) {
			return true
		}
	}
	return false
}

func matchGlob(pattern, path string) bool {
	if matched, err := filepath.Match(pattern, path); err == nil && matched {
		return true
	}
	clean, ok := strings.CutPrefix(pattern, "**/")
	if !ok {
		return false
	}
	if matched, err := filepath.Match(clean, filepath.Base(path)); err == nil && matched {
		return true
	}
	matched, err := filepath.Match(clean, path)
	return err == nil && matched
}

// matchDir compares the directory part of "dir/*" against the leading
// directories of path, or any run of them when dir starts with "**/".
func matchDir(pattern, path string) bool {
	dir, ok := strings.CutSuffix(pattern, "/**")
	if !ok {
		if dir, ok = strings.CutSuffix(pattern, "/*"); !ok {
			return false
		}
	}
	dir, anywhere := strings.CutPrefix(dir, "**/")
	parts := strings.Split(path, "/")
	n := strings.Count(dir, "/") + 1
	// At least one path segment must remain below the directory.
	for i := 0; i+n < len(parts); i++ {
		if i > 0 && !anywhere {
			break
		}
		if matched, err := filepath.Match(dir, strings.Join(parts[i:i+n], "/")); err == nil && matched {
			return true
		}
	}
	return false
}

// isBinary uses git's heuristic: a NUL byte near the start of the file.
func isBinary(data []byte) bool {
	if len(data) > binarySniffBytes {
		data = data[:binarySniffBytes]
	}
	return bytes.IndexByte(data, 0) >= 0
}

func gitOutput(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return string(out), fmt.Errorf("%s: %s", err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", err
	}
	return string(out), nil
}
