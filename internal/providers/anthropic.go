package providers

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// Anthropic implements the Completer interface on top of the Anthropic SDK.
type Anthropic struct {
	client anthropic.Client
	model  string
}

// NewAnthropic creates a new Anthropic provider. Extra request options are
// appended after the API key, so tests can point the client at a local server.
func NewAnthropic(model string, opts ...option.RequestOption) (*Anthropic, error) {
	key := os.Getenv("ANTHROPIC_API_KEY")
	if key == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable is not set")
	}
	// Retries are handled by retryWithBackoff so every provider behaves the same.
	reqOpts := []option.RequestOption{option.WithAPIKey(key), option.WithMaxRetries(0)}
	if base := strings.TrimSpace(os.Getenv("LEAKSHIELD_ANTHROPIC_BASE_URL")); base != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(base))
	}
	reqOpts = append(reqOpts, opts...)
	return &Anthropic{
		client: anthropic.NewClient(reqOpts...),
		model:  model,
	}, nil
}

func (a *Anthropic) Name() string { return "anthropic" }

func (a *Anthropic) Complete(ctx context.Context, req Request) (Response, error) {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = 2048
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.UserPrompt)),
		},
	}
	if req.SystemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.SystemPrompt}}
	}
	if req.Temperature > 0 {
		params.Temperature = anthropic.Float(req.Temperature)
	}

	var resp Response
	err := retryWithBackoff(ctx, 3, func() error {
		message, err := a.client.Messages.New(ctx, params)
		if err != nil {
			return classifyAnthropicError(err)
		}

		var content string
		for _, block := range message.Content {
			if block.Type == "text" {
				content += block.Text
			}
		}
		if content == "" {
			return fmt.Errorf("unexpected response format: no text content")
		}

		resp = Response{
			Content:    content,
			TokensUsed: int(message.Usage.InputTokens + message.Usage.OutputTokens),
		}
		return nil
	})

	return resp, err
}

func classifyAnthropicError(err error) error {
	var apiErr *anthropic.Error
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("sending request: %w", err)
	}
	switch {
	case apiErr.StatusCode == 429:
		return &rateLimitError{retryable: true}
	case apiErr.StatusCode == 401 || apiErr.StatusCode == 403:
		return &authError{message: apiErr.Error()}
	case apiErr.StatusCode >= 500:
		return &serverError{statusCode: apiErr.StatusCode, body: apiErr.Error()}
	default:
		return fmt.Errorf("API error (status %d): %w", apiErr.StatusCode, err)
	}
}
