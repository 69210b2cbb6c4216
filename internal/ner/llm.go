package ner

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/leakshield/leakshield/internal/pii"
	"github.com/leakshield/leakshield/internal/providers"
	"github.com/leakshield/leakshield/internal/redact"
)

// rawEntity is the JSON structure returned by the LLM.
type rawEntity struct {
	Label string `json:"label"`
	Text  string `json:"text"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// LLM recognizes entities by prompting a chat model.
type LLM struct {
	completer     providers.Completer
	model         string
	redactSecrets bool
	maxTokens     int
	logger        *slog.Logger
}

// LLMOption configures an LLM recognizer.
type LLMOption func(*LLM)

// WithRedaction controls whether secrets are stripped before text leaves the
// process. It is on by default.
func WithRedaction(on bool) LLMOption {
	return func(l *LLM) { l.redactSecrets = on }
}

// WithLLMLogger sets the logger used for repair and anchoring diagnostics.
func WithLLMLogger(logger *slog.Logger) LLMOption {
	return func(l *LLM) { l.logger = logger }
}

// NewLLM creates a recognizer backed by c. model is only used for naming and
// cache keys; the completer already knows which model to call.
func NewLLM(c providers.Completer, model string, opts ...LLMOption) *LLM {
	l := &LLM{
		completer:     c,
		model:         model,
		redactSecrets: true,
		maxTokens:     2048,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *LLM) Name() string { return "llm:" + l.completer.Name() }

// Model returns the model name the recognizer was built with.
func (l *LLM) Model() string { return l.model }

func (l *LLM) Entities(ctx context.Context, text string) ([]pii.Entity, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	sent := text
	if l.redactSecrets {
		var counts map[string]int
		sent, counts = redact.Scrub(sent)
		if len(counts) > 0 {
			l.logger.Debug("redacted secrets before sending text", "recognizer", l.Name(), "kinds", counts)
		}
	}

	resp, err := l.completer.Complete(ctx, providers.Request{
		SystemPrompt: systemPrompt,
		UserPrompt:   userPrompt(sent),
		MaxTokens:    l.maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("llm entities: %w", err)
	}

	raw, err := parseEntities(resp.Content)
	if err != nil {
		l.logger.Debug("llm returned invalid entity json, attempting repair", "recognizer", l.Name(), "error", err)
		resp2, err2 := l.completer.Complete(ctx, providers.Request{
			SystemPrompt: systemPrompt,
			UserPrompt:   fmt.Sprintf(repairPrompt, err.Error(), resp.Content),
			MaxTokens:    l.maxTokens,
		})
		if err2 != nil {
			return nil, fmt.Errorf("repair pass failed: %w (original error: %w)", err2, err)
		}
		raw, err = parseEntities(resp2.Content)
		if err != nil {
			return nil, fmt.Errorf("entity response invalid after repair: %w", err)
		}
	}

	entities := make([]pii.Entity, 0, len(raw))
	for _, r := range raw {
		label, ok := NormalizeLabel(r.Label)
		if !ok {
			continue
		}
		e, ok := Anchor(text, pii.Entity{Label: label, Text: r.Text, Start: r.Start, End: r.End})
		if !ok {
			l.logger.Debug("dropping entity not found in text", "label", label)
			continue
		}
		entities = append(entities, e)
	}
	return entities, nil
}

// parseEntities accepts a bare JSON array, optionally wrapped in markdown
// code fences or surrounded by stray prose.
func parseEntities(content string) ([]rawEntity, error) {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```") {
		lines := strings.Split(content, "\n")
		if len(lines) >= 2 {
			end := len(lines)
			if strings.TrimSpace(lines[end-1]) == "```" {
				end--
			}
			content = strings.TrimSpace(strings.Join(lines[1:end], "\n"))
		}
	}

	if !strings.HasPrefix(content, "[") {
		start, end := strings.Index(content, "["), strings.LastIndex(content, "]")
		if start >= 0 && end > start {
			content = content[start : end+1]
		}
	}

	var raw []rawEntity
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, fmt.Errorf("invalid JSON array: %w", err)
	}
	return raw, nil
}
