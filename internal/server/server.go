package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/leakshield/leakshield/internal/github"
	"github.com/leakshield/leakshield/internal/pii"
	"github.com/leakshield/leakshield/internal/scan"
)

// maxBodyBytes bounds POST /v1/scan request bodies.
const maxBodyBytes = 2 << 20 // 2MB

const requestIDHeader = "X-Request-ID"

// Scanner scans a single document.
type Scanner interface {
	Scan(ctx context.Context, in scan.Input) (*pii.Report, error)
}

// Fetcher retrieves a repository README.
type Fetcher interface {
	FetchReadme(ctx context.Context, repoURL string) (*github.Readme, error)
}

// ScanRequest is the POST /v1/scan body. Exactly one of Text and URL is set.
type ScanRequest struct {
	Text   string `json:"text,omitempty"`
	URL    string `json:"url,omitempty"`
	Source string `json:"source,omitempty"`
}

// Server is the HTTP API.
type Server struct {
	scanner  Scanner
	fetcher  Fetcher
	gatherer prometheus.Gatherer
	logger   *slog.Logger
}

// New creates a Server. A nil gatherer disables /metrics.
func New(scanner Scanner, fetcher Fetcher, gatherer prometheus.Gatherer, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{scanner: scanner, fetcher: fetcher, gatherer: gatherer, logger: logger}
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Get("/healthz", s.handleHealth)
	r.Post("/v1/scan", s.handleScan)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// NewHTTPServer builds an http.Server for addr with the API mounted.
func (s *Server) NewHTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// ListenAndServe serves until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := s.NewHTTPServer(addr)
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info("http server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type ctxKeyRequestID struct{}

func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		ctx := context.WithValue(r.Context(), ctxKeyRequestID{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestID returns the request ID stored by the middleware.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKeyRequestID{}).(string)
	return id
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := RequestID(ctx)
	start := time.Now()

	var req ScanRequest
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "request_too_large", "request body too large")
			return
		}
		if !errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
			return
		}
	}

	hasText, hasURL := req.Text != "", strings.TrimSpace(req.URL) != ""
	if hasText == hasURL {
		writeError(w, http.StatusBadRequest, "bad_request", `exactly one of "text" or "url" is required`)
		return
	}

	in := scan.Input{Text: req.Text, Source: req.Source}
	if in.Source == "" {
		in.Source = "http"
	}
	if hasURL {
		if s.fetcher == nil {
			writeError(w, http.StatusBadRequest, "bad_request", "url scanning is disabled")
			return
		}
		readme, err := s.fetcher.FetchReadme(ctx, req.URL)
		if err != nil {
			s.logger.WarnContext(ctx, "readme fetch failed", "request_id", requestID, "url", req.URL, "error", err)
			status, code := http.StatusBadGateway, "fetch_failed"
			if _, _, perr := github.ParseRepoURL(req.URL); perr != nil {
				status, code = http.StatusBadRequest, "bad_request"
			}
			writeError(w, status, code, err.Error())
			return
		}
		in = scan.Input{Text: readme.Text, Source: readme.URL}
	}

	report, err := s.scanner.Scan(ctx, in)
	if err != nil {
		if ctx.Err() != nil {
			s.logger.InfoContext(ctx, "scan canceled", "request_id", requestID)
			return
		}
		s.logger.ErrorContext(ctx, "scan failed", "request_id", requestID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "")
		return
	}

	s.logger.InfoContext(ctx, "scan completed",
		"request_id", requestID,
		"source", report.Source,
		"findings", report.Summary.Total,
		"alert", report.Summary.Alert,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	writeJSON(w, http.StatusOK, report)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError omits the description for internal errors.
func writeError(w http.ResponseWriter, status int, code, description string) {
	body := map[string]string{"error": code}
	if description != "" && status != http.StatusInternalServerError {
		body["error_description"] = description
	}
	writeJSON(w, status, body)
}
