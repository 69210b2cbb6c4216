package github

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"time"
)

const (
	defaultRawURL  = "https://raw.githubusercontent.com"
	defaultTimeout = 8 * time.Second
	maxReadmeBytes = 5 << 20
)

// Branches are tried in this order.
var branches = []string{"main", "master"}

// ErrFetch wraps every failure to retrieve repository content.
var ErrFetch = errors.New("could not retrieve content")

// Readme is a fetched README.
type Readme struct {
	Owner  string
	Repo   string
	Branch string
	URL    string
	Text   string
}

// Client downloads READMEs from raw.githubusercontent.com.
type Client struct {
	rawURL  string
	httpCli *http.Client
}

// NewClient creates a client with the given per-request timeout. A zero
// timeout uses the default of 8 seconds. LEAKSHIELD_GITHUB_RAW_URL overrides
// the content host.
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	rawURL := os.Getenv("LEAKSHIELD_GITHUB_RAW_URL")
	if rawURL == "" {
		rawURL = defaultRawURL
	}
	return &Client{
		rawURL:  strings.TrimRight(rawURL, "/"),
		httpCli: &http.Client{Timeout: timeout},
	}
}

// FetchReadme fetches README.md for repoURL with a default client.
func FetchReadme(ctx context.Context, repoURL string) (*Readme, error) {
	return NewClient(0).FetchReadme(ctx, repoURL)
}

// FetchReadme parses owner/repo from repoURL and downloads README.md from
// the main branch, falling back to master. All errors wrap ErrFetch.
func (c *Client) FetchReadme(ctx context.Context, repoURL string) (*Readme, error) {
	owner, repo, err := ParseRepoURL(repoURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}

	for _, branch := range branches {
		url := fmt.Sprintf("%s/%s/%s/%s/README.md", c.rawURL, owner, repo, branch)
		text, found, err := c.get(ctx, url)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrFetch, describe(err))
		}
		if found {
			return &Readme{Owner: owner, Repo: repo, Branch: branch, URL: url, Text: text}, nil
		}
	}
	return nil, fmt.Errorf("%w: README.md not found in %s/%s (tried main and master branches)", ErrFetch, owner, repo)
}

// get returns found=false for any non-200 status so the next branch is tried.
func (c *Client) get(ctx context.Context, url string) (string, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", false, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", "leakshield")

	resp, err := c.httpCli.Do(req)
	if err != nil {
		return "", false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return "", false, nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxReadmeBytes))
	if err != nil {
		return "", false, fmt.Errorf("reading response: %w", err)
	}
	return string(body), true, nil
}

func describe(err error) string {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		return "Request timed out. Check your internet connection."
	case errors.Is(err, context.Canceled):
		return "request canceled"
	default:
		return "Connection error. Check your internet connection."
	}
}

var (
	httpsRepoRe = regexp.MustCompile(`^(?:https?://)?(?:www\.)?github\.com/([^/\s?#]+)/([^/\s?#]+)`)
	sshRepoRe   = regexp.MustCompile(`^[^@\s]+@github\.com:([^/\s?#]+)/([^/\s?#]+)`)
)

// ParseRepoURL extracts owner and repo from a GitHub URL. Extra path
// segments, query strings and fragments are ignored.
func ParseRepoURL(url string) (owner, repo string, err error) {
	url = strings.TrimSpace(url)
	var m []string
	if m = httpsRepoRe.FindStringSubmatch(url); m == nil {
		m = sshRepoRe.FindStringSubmatch(url)
	}
	if m == nil {
		return "", "", fmt.Errorf("invalid GitHub URL %q (expected https://github.com/owner/repo)", url)
	}
	owner = m[1]
	repo = strings.TrimSuffix(m[2], ".git")
	if repo == "" {
		return "", "", fmt.Errorf("could not parse owner/repo from %q", url)
	}
	return owner, repo, nil
}

// DetectRepo returns the URL of the git remote origin.
func DetectRepo(ctx context.Context, dir string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", "remote", "get-url", "origin")
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("cannot detect repo: git remote get-url origin failed: %w", err)
	}
	url := strings.TrimSpace(string(out))
	if _, _, err := ParseRepoURL(url); err != nil {
		return "", err
	}
	return url, nil
}
