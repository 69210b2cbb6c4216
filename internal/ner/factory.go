package ner

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/leakshield/leakshield/internal/cache"
	"github.com/leakshield/leakshield/internal/providers"
)

// Backend names accepted by New.
const (
	BackendNone = "none"
	BackendLLM  = "llm"
	BackendONNX = "onnx"
)

// Backends lists the recognizer backends in display order.
var Backends = []string{BackendNone, BackendLLM, BackendONNX}

// Options selects and configures a recognizer.
type Options struct {
	Backend       string
	Provider      string
	Model         string
	ONNXModelDir  string
	SeqLen        int
	RedactSecrets bool
	Cache         *cache.Cache
	Logger        *slog.Logger
}

// New builds the recognizer named by opts.Backend. LLM and ONNX results are
// cached when opts.Cache is enabled.
func New(opts Options) (Recognizer, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case "", BackendNone:
		return Noop{}, nil
	case BackendLLM:
		c, err := providers.New(opts.Provider, opts.Model)
		if err != nil {
			return nil, fmt.Errorf("creating provider: %w", err)
		}
		llm := NewLLM(c, opts.Model, WithRedaction(opts.RedactSecrets), WithLLMLogger(opts.Logger))
		return NewCached(llm, opts.Model, opts.Cache, opts.Logger), nil
	case BackendONNX:
		o, err := NewONNX(ONNXOptions{ModelDir: opts.ONNXModelDir, SeqLen: opts.SeqLen, Logger: opts.Logger})
		if err != nil {
			return nil, err
		}
		return NewCached(o, o.Model(), opts.Cache, opts.Logger), nil
	default:
		return nil, fmt.Errorf("unknown recognizer %q (supported: %s)", opts.Backend, strings.Join(Backends, ", "))
	}
}
