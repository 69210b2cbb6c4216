package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/suite"

	"github.com/leakshield/leakshield/internal/github"
	"github.com/leakshield/leakshield/internal/ner"
	"github.com/leakshield/leakshield/internal/pii"
	"github.com/leakshield/leakshield/internal/scan"
)

type stubFetcher struct {
	readme *github.Readme
	err    error
}

func (f stubFetcher) FetchReadme(context.Context, string) (*github.Readme, error) {
	return f.readme, f.err
}

type ToolSuite struct {
	suite.Suite
	srv *Server
}

func TestToolSuite(t *testing.T) {
	suite.Run(t, new(ToolSuite))
}

func (s *ToolSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine := scan.New(scan.WithLogger(logger))
	fetcher := stubFetcher{readme: &github.Readme{
		URL:  "https://raw.githubusercontent.com/acme/widgets/main/README.md",
		Text: "SSN: 123-45-6789",
	}}
	s.srv = New(engine, fetcher, "test", logger)
}

func call(args map[string]interface{}) mcp.CallToolRequest {
	request := mcp.CallToolRequest{}
	request.Params.Arguments = args
	return request
}

func resultText(s *ToolSuite, result *mcp.CallToolResult) string {
	s.Require().NotNil(result)
	s.Require().NotEmpty(result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	s.Require().True(ok, "expected text content")
	return text.Text
}

func (s *ToolSuite) TestScanTextJSON() {
	result, err := s.srv.handleScanText(context.Background(), call(map[string]interface{}{
		"text": "mail john@example.com",
	}))
	s.Require().NoError(err)
	s.False(result.IsError)

	var report pii.Report
	s.Require().NoError(json.Unmarshal([]byte(resultText(s, result)), &report))
	s.Equal("mcp", report.Source)
	s.Require().Len(report.Findings, 1)
	s.Equal("john@example.com", report.Findings[0].Value)
	s.False(report.NERAvailable)
}

func (s *ToolSuite) TestScanTextMasked() {
	result, err := s.srv.handleScanText(context.Background(), call(map[string]interface{}{
		"text": "mail john@example.com",
		"mask": true,
	}))
	s.Require().NoError(err)
	text := resultText(s, result)
	s.Contains(text, "jo******@example.com")
	s.NotContains(text, "john@example.com")
}

func (s *ToolSuite) TestScanTextMarkdown() {
	result, err := s.srv.handleScanText(context.Background(), call(map[string]interface{}{
		"text":   "mail john@example.com",
		"format": "markdown",
	}))
	s.Require().NoError(err)
	s.Contains(resultText(s, result), "## LeakShield PII Scan")
}

func (s *ToolSuite) TestScanTextErrors() {
	tests := []struct {
		name string
		args map[string]interface{}
	}{
		{"missing text", map[string]interface{}{}},
		{"wrong type", map[string]interface{}{"text": 42}},
		{"bad format", map[string]interface{}{"text": "x", "format": "sarif"}},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			result, err := s.srv.handleScanText(context.Background(), call(tt.args))
			s.Require().NoError(err)
			s.True(result.IsError)
		})
	}
}

func (s *ToolSuite) TestScanReadme() {
	result, err := s.srv.handleScanReadme(context.Background(), call(map[string]interface{}{
		"url": "https://github.com/acme/widgets",
	}))
	s.Require().NoError(err)
	s.False(result.IsError)

	var report pii.Report
	s.Require().NoError(json.Unmarshal([]byte(resultText(s, result)), &report))
	s.Equal("https://raw.githubusercontent.com/acme/widgets/main/README.md", report.Source)
	s.Require().Len(report.Findings, 1)
	s.Equal(pii.TypeSSN, report.Findings[0].Type)
	s.Equal(pii.SeverityHigh, report.Findings[0].Severity)
}

func (s *ToolSuite) TestScanReadmeFetchError() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := New(scan.New(scan.WithLogger(logger)), stubFetcher{
		err: fmt.Errorf("%w: Request timed out. Check your internet connection.", github.ErrFetch),
	}, "test", logger)

	result, err := srv.handleScanReadme(context.Background(), call(map[string]interface{}{
		"url": "https://github.com/acme/widgets",
	}))
	s.Require().NoError(err)
	s.True(result.IsError)
	s.Contains(resultText(s, result), "could not retrieve content")
}

func (s *ToolSuite) TestScanReadmeMissingURL() {
	result, err := s.srv.handleScanReadme(context.Background(), call(map[string]interface{}{"url": "  "}))
	s.Require().NoError(err)
	s.True(result.IsError)
}

func (s *ToolSuite) TestWithRecognizer() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	text := "Contact John at john@example.com"
	engine := scan.New(scan.WithLogger(logger), scan.WithRecognizer(&ner.Static{Found: ner.Mentions(text, pii.LabelPerson, "John")}))
	srv := New(engine, nil, "test", logger)

	result, err := srv.handleScanText(context.Background(), call(map[string]interface{}{"text": text}))
	s.Require().NoError(err)

	var report pii.Report
	s.Require().NoError(json.Unmarshal([]byte(resultText(s, result)), &report))
	s.True(report.NERAvailable)
	s.Require().Len(report.Findings, 1)
	s.Equal(pii.ConfidenceHigh, report.Findings[0].Confidence)
}
