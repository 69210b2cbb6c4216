package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leakshield/leakshield/internal/github"
	"github.com/leakshield/leakshield/internal/metrics"
	"github.com/leakshield/leakshield/internal/ner"
	"github.com/leakshield/leakshield/internal/pii"
	"github.com/leakshield/leakshield/internal/scan"
)

type stubFetcher struct {
	readme *github.Readme
	err    error
	calls  int
}

func (f *stubFetcher) FetchReadme(ctx context.Context, repoURL string) (*github.Readme, error) {
	f.calls++
	return f.readme, f.err
}

type failingScanner struct{}

func (failingScanner) Scan(context.Context, scan.Input) (*pii.Report, error) {
	return nil, errors.New("db exploded")
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T, fetcher Fetcher) (http.Handler, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	engine := scan.New(
		scan.WithRecognizer(&ner.Static{Found: ner.Mentions("Contact John at john@example.com", pii.LabelPerson, "John")}),
		scan.WithLogger(discardLogger()),
		scan.WithMetrics(metrics.New(reg)),
	)
	return New(engine, fetcher, reg, discardLogger()).Handler(), reg
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestHealthz(t *testing.T) {
	h, _ := newTestServer(t, nil)
	rec := do(t, h, http.MethodGet, "/healthz", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
}

func TestRequestIDPropagated(t *testing.T) {
	h, _ := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "req-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "req-123", rec.Header().Get(requestIDHeader))
}

func TestScanText(t *testing.T) {
	h, _ := newTestServer(t, nil)
	rec := do(t, h, http.MethodPost, "/v1/scan", `{"text":"Contact John at john@example.com"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var report pii.Report
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&report))
	assert.Equal(t, "http", report.Source)
	require.Len(t, report.Findings, 1)
	assert.Equal(t, pii.TypeEmail, report.Findings[0].Type)
	assert.Equal(t, pii.ConfidenceHigh, report.Findings[0].Confidence)
	assert.Equal(t, pii.AlertCritical, report.Summary.Alert)
}

func TestScanURL(t *testing.T) {
	fetcher := &stubFetcher{readme: &github.Readme{
		Owner: "acme",
		Repo:  "widgets",
		URL:   "https://raw.githubusercontent.com/acme/widgets/main/README.md",
		Text:  "Maintainer: ops@acme.io",
	}}
	h, _ := newTestServer(t, fetcher)
	rec := do(t, h, http.MethodPost, "/v1/scan", `{"url":"https://github.com/acme/widgets"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var report pii.Report
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&report))
	assert.Equal(t, fetcher.readme.URL, report.Source)
	require.Len(t, report.Findings, 1)
	assert.Equal(t, "ops@acme.io", report.Findings[0].Value)
	assert.Equal(t, 1, fetcher.calls)
}

func TestScanURL_FetchFailure(t *testing.T) {
	fetcher := &stubFetcher{err: fmt.Errorf("%w: README.md not found in acme/none (tried main and master branches)", github.ErrFetch)}
	h, _ := newTestServer(t, fetcher)
	rec := do(t, h, http.MethodPost, "/v1/scan", `{"url":"https://github.com/acme/none"}`)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, "fetch_failed", body["error"])
	assert.Contains(t, body["error_description"], "could not retrieve content")
}

func TestScanURL_InvalidURL(t *testing.T) {
	for _, url := range []string{
		"https://example.com/nope",
		"https://gitlab.com/acme/app",
		"https://github.com/acme",
		"https://github.com/acme/#readme",
		"not a url",
	} {
		t.Run(url, func(t *testing.T) {
			fetcher := &stubFetcher{err: fmt.Errorf("%w: invalid GitHub URL", github.ErrFetch)}
			h, _ := newTestServer(t, fetcher)
			body, err := json.Marshal(map[string]string{"url": url})
			require.NoError(t, err)
			rec := do(t, h, http.MethodPost, "/v1/scan", string(body))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "bad_request", decodeError(t, rec)["error"])
		})
	}
}

func TestScan_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{"text":`},
		{"empty body", ``},
		{"both fields", `{"text":"a","url":"https://github.com/a/b"}`},
		{"neither field", `{}`},
	}
	h, _ := newTestServer(t, &stubFetcher{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/v1/scan", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "bad_request", decodeError(t, rec)["error"])
		})
	}
}

func TestScanURL_NoFetcher(t *testing.T) {
	h, _ := newTestServer(t, nil)
	rec := do(t, h, http.MethodPost, "/v1/scan", `{"url":"https://github.com/a/b"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScan_InternalErrorHidesDetails(t *testing.T) {
	h := New(failingScanner{}, nil, nil, discardLogger()).Handler()
	rec := do(t, h, http.MethodPost, "/v1/scan", `{"text":"hello"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, "internal_error", body["error"])
	assert.NotContains(t, body, "error_description")
}

func TestScan_MethodNotAllowed(t *testing.T) {
	h, _ := newTestServer(t, nil)
	rec := do(t, h, http.MethodGet, "/v1/scan", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	h, _ := newTestServer(t, nil)
	do(t, h, http.MethodPost, "/v1/scan", `{"text":"mail a@b.com"}`)

	rec := do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `leakshield_scans_total{source="http"} 1`)
	assert.Contains(t, rec.Body.String(), "leakshield_findings_total")
}

func TestMetricsDisabled(t *testing.T) {
	h := New(failingScanner{}, nil, nil, discardLogger()).Handler()
	rec := do(t, h, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListenAndServe_Shutdown(t *testing.T) {
	s := New(failingScanner{}, nil, nil, discardLogger())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx, "127.0.0.1:0") }()
	cancel()
	assert.NoError(t, <-done)
}
