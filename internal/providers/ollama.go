package providers

import (
	"context"
	"net/http"
	"os"
	"strings"
	"time"
)

const defaultOllamaURL = "http://localhost:11434"

// Ollama implements the Completer interface for Ollama and LM Studio through
// their OpenAI-compatible endpoint. No API key is required by default.
type Ollama struct {
	chatClient
}

// NewOllama creates a new Ollama provider. OLLAMA_HOST overrides the server.
func NewOllama(model string) (*Ollama, error) {
	return &Ollama{chatClient{
		apiKey:  os.Getenv("LEAKSHIELD_OLLAMA_API_KEY"),
		model:   model,
		baseURL: ollamaEndpoint(os.Getenv("OLLAMA_HOST")),
		client:  &http.Client{Timeout: 300 * time.Second},
	}}, nil
}

// ollamaEndpoint normalizes a host such as "localhost:11434/v1/" into the
// full chat-completions URL.
func ollamaEndpoint(host string) string {
	if host == "" {
		host = defaultOllamaURL
	}
	if !strings.Contains(host, "://") {
		host = "http://" + host
	}
	host = strings.TrimRight(host, "/")
	host = strings.TrimSuffix(host, "/v1/chat/completions")
	host = strings.TrimSuffix(host, "/v1")
	return host + "/v1/chat/completions"
}

func (o *Ollama) Name() string { return "ollama" }

func (o *Ollama) Complete(ctx context.Context, req Request) (Response, error) {
	return o.complete(ctx, req)
}
