//go:build integration

package providers

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"
)

// Live smoke tests. Run with: go test -tags integration ./internal/providers/
var liveProviders = []struct {
	name   string
	model  string
	envVar string
}{
	{"anthropic", "claude-haiku-4-5", "ANTHROPIC_API_KEY"},
	{"openai", "gpt-4o-mini", "OPENAI_API_KEY"},
	{"ollama", "llama3.2", "OLLAMA_HOST"},
}

func TestLive_Complete(t *testing.T) {
	for _, lp := range liveProviders {
		t.Run(lp.name, func(t *testing.T) {
			if os.Getenv(lp.envVar) == "" {
				t.Skipf("skipping: %s not set", lp.envVar)
			}
			p, err := New(lp.name, lp.model)
			if err != nil {
				t.Fatalf("New(%s): %v", lp.name, err)
			}
			ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
			defer cancel()

			resp, err := p.Complete(ctx, Request{
				SystemPrompt: "Respond with exactly: ok",
				UserPrompt:   "ping",
				MaxTokens:    10,
			})
			if err != nil {
				t.Fatalf("Complete: %v", err)
			}
			if !strings.Contains(strings.ToLower(resp.Content), "ok") {
				t.Errorf("unexpected reply %q", resp.Content)
			}
		})
	}
}
