package mcpserver

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/leakshield/leakshield/internal/github"
	"github.com/leakshield/leakshield/internal/output"
	"github.com/leakshield/leakshield/internal/pii"
	"github.com/leakshield/leakshield/internal/scan"
)

const serverName = "leakshield"

// toolFormats are the report formats a tool can return.
var toolFormats = []string{"json", "text", "markdown"}

// Scanner scans a single document.
type Scanner interface {
	Scan(ctx context.Context, in scan.Input) (*pii.Report, error)
}

// Fetcher retrieves a repository README.
type Fetcher interface {
	FetchReadme(ctx context.Context, repoURL string) (*github.Readme, error)
}

// Server holds the MCP tool handlers.
type Server struct {
	scanner Scanner
	fetcher Fetcher
	logger  *slog.Logger
	mcp     *server.MCPServer
}

// New creates a Server with its tools registered. A nil fetcher leaves out
// scan_github_readme.
func New(scanner Scanner, fetcher Fetcher, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		scanner: scanner,
		fetcher: fetcher,
		logger:  logger,
		mcp:     server.NewMCPServer(serverName, version),
	}

	s.mcp.AddTool(mcp.NewTool("scan_text",
		mcp.WithDescription("Scan text for personally identifiable information (emails, phone numbers, Aadhaar, SSN, addresses) and return a report with confidence and severity per finding."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Text to scan")),
		formatArg(),
		maskArg(),
	), s.handleScanText)

	if fetcher != nil {
		s.mcp.AddTool(mcp.NewTool("scan_github_readme",
			mcp.WithDescription("Fetch README.md of a public GitHub repository (main, then master branch) and scan it for PII."),
			mcp.WithString("url", mcp.Required(), mcp.Description("Repository URL, e.g. https://github.com/owner/repo")),
			formatArg(),
			maskArg(),
		), s.handleScanReadme)
	}
	return s
}

func formatArg() mcp.ToolOption {
	return mcp.WithString("format",
		mcp.Description("Report format: "+strings.Join(toolFormats, ", ")+" (default json)"),
		mcp.Enum(toolFormats...),
	)
}

func maskArg() mcp.ToolOption {
	return mcp.WithBoolean("mask", mcp.Description("Mask finding values in the report"))
}

// MCPServer returns the underlying server.
func (s *Server) MCPServer() *server.MCPServer { return s.mcp }

// ServeStdio serves the tools on stdin/stdout until the client disconnects.
func (s *Server) ServeStdio() error {
	s.logger.Info("mcp server listening on stdio")
	return server.ServeStdio(s.mcp)
}

func (s *Server) handleScanText(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, ok := request.Params.Arguments["text"].(string)
	if !ok {
		return mcp.NewToolResultError(`"text" must be a string`), nil
	}
	return s.scan(ctx, request, scan.Input{Text: text, Source: "mcp"})
}

func (s *Server) handleScanReadme(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, ok := request.Params.Arguments["url"].(string)
	if !ok || strings.TrimSpace(url) == "" {
		return mcp.NewToolResultError(`"url" must be a non-empty string`), nil
	}
	readme, err := s.fetcher.FetchReadme(ctx, url)
	if err != nil {
		s.logger.Warn("readme fetch failed", "url", url, "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.scan(ctx, request, scan.Input{Text: readme.Text, Source: readme.URL})
}

func (s *Server) scan(ctx context.Context, request mcp.CallToolRequest, in scan.Input) (*mcp.CallToolResult, error) {
	format, _ := request.Params.Arguments["format"].(string)
	if format == "" {
		format = "json"
	}
	if !validFormat(format) {
		return mcp.NewToolResultError(fmt.Sprintf("unsupported format %q (supported: %s)", format, strings.Join(toolFormats, ", "))), nil
	}
	mask, _ := request.Params.Arguments["mask"].(bool)

	report, err := s.scanner.Scan(ctx, in)
	if err != nil {
		s.logger.Error("scan failed", "source", in.Source, "error", err)
		return mcp.NewToolResultError("scan failed: " + err.Error()), nil
	}
	s.logger.Info("scan completed", "source", report.Source, "findings", report.Summary.Total)

	w, err := output.GetWriter(format, output.Options{Mask: mask, Width: 100})
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := w.Write(&buf, report); err != nil {
		return nil, fmt.Errorf("rendering report: %w", err)
	}
	return mcp.NewToolResultText(buf.String()), nil
}

func validFormat(format string) bool {
	for _, f := range toolFormats {
		if f == format {
			return true
		}
	}
	return false
}
