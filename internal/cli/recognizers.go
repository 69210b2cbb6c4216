package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/leakshield/leakshield/internal/config"
	"github.com/leakshield/leakshield/internal/logging"
	"github.com/leakshield/leakshield/internal/ner"
	"github.com/leakshield/leakshield/internal/providers"
)

// doctorProbe is the text the doctor command asks the recognizer about.
const doctorProbe = "Please forward the invoice to John Smith at the Hyderabad office of Acme Corp."

var recognizersCmd = &cobra.Command{
	Use:   "recognizers",
	Short: "Entity recognizer backends",
}

type modelInfo struct {
	Provider string
	Models   []string
}

// knownModels are LLM models that work well for entity extraction.
var knownModels = []modelInfo{
	{
		Provider: "anthropic",
		Models: []string{
			"claude-haiku-4-5",
			"claude-sonnet-4-5",
		},
	},
	{
		Provider: "openai",
		Models: []string{
			"gpt-4.1-mini",
			"gpt-4o-mini",
		},
	},
	{
		Provider: "gemini",
		Models: []string{
			"gemini-2.5-flash",
			"gemini-2.0-flash",
		},
	},
	{
		Provider: "ollama",
		Models: []string{
			"llama3.2",
			"qwen2.5",
			"mistral",
		},
	},
}

var backendDescriptions = map[string]string{
	ner.BackendNone: "regex and keyword context only, confidence capped at MEDIUM",
	ner.BackendLLM:  "named entities from an LLM provider (text leaves the machine, secrets redacted)",
	ner.BackendONNX: "local BERT-style token classifier via onnxruntime (--onnx-model-dir)",
}

var recognizersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recognizer backends and known LLM models",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Backends:")
		for _, b := range ner.Backends {
			fmt.Fprintf(out, "  %-5s %s\n", b, backendDescriptions[b])
		}
		fmt.Fprintln(out)
		for _, info := range knownModels {
			fmt.Fprintf(out, "%s:\n", info.Provider)
			for _, m := range info.Models {
				fmt.Fprintf(out, "  - %s\n", m)
			}
			fmt.Fprintln(out)
		}
	},
}

var recognizersDoctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that the configured recognizer loads and responds",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(flagConfig, buildOverrides())
		if err != nil {
			return err
		}
		logger, closeLog, err := logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format, File: cfg.Log.File})
		if err != nil {
			return err
		}
		defer closeLog()

		out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
		name := cfg.NER.Recognizer
		if name == ner.BackendLLM {
			name += ":" + cfg.NER.Provider + "/" + cfg.NER.Model
		}
		fmt.Fprintf(out, "Checking %s...\n", name)

		// No cache: the point is to exercise the backend.
		r, err := ner.New(ner.Options{
			Backend:       cfg.NER.Recognizer,
			Provider:      cfg.NER.Provider,
			Model:         cfg.NER.Model,
			ONNXModelDir:  cfg.NER.ONNXModelDir,
			SeqLen:        cfg.NER.SeqLen,
			RedactSecrets: cfg.Privacy.RedactSecrets,
			Logger:        logger,
		})
		if err != nil {
			fmt.Fprintf(errOut, "FAIL: %v\n", err)
			if cfg.NER.Recognizer == ner.BackendLLM {
				exitCode = ExitAuthError
			} else {
				exitCode = ExitRuntimeError
			}
			return nil
		}
		if c, ok := r.(io.Closer); ok {
			defer c.Close()
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		start := time.Now()
		entities, err := r.Entities(ctx, doctorProbe)
		switch {
		case errors.Is(err, ner.ErrUnavailable):
			fmt.Fprintf(out, "OK: %s (regex-only mode, no entity recognition)\n", r.Name())
			return nil
		case err != nil:
			fmt.Fprintf(errOut, "FAIL: %v\n", err)
			if providers.IsAuthError(err) {
				exitCode = ExitAuthError
			} else {
				exitCode = ExitRuntimeError
			}
			return nil
		}

		fmt.Fprintf(out, "OK: %s responded in %dms with %d entities\n", r.Name(), time.Since(start).Milliseconds(), len(entities))
		for _, e := range entities {
			fmt.Fprintf(out, "  %-8s %s\n", e.Label, e.Text)
		}
		return nil
	},
}

func init() {
	recognizersCmd.AddCommand(recognizersListCmd)
	recognizersCmd.AddCommand(recognizersDoctorCmd)
	addEngineFlags(recognizersDoctorCmd)
}
