package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/leakshield/leakshield/internal/cache"
	"github.com/leakshield/leakshield/internal/config"
	"github.com/leakshield/leakshield/internal/gitctx"
	"github.com/leakshield/leakshield/internal/github"
	"github.com/leakshield/leakshield/internal/logging"
	"github.com/leakshield/leakshield/internal/metrics"
	"github.com/leakshield/leakshield/internal/ner"
	"github.com/leakshield/leakshield/internal/output"
	"github.com/leakshield/leakshield/internal/pii"
	"github.com/leakshield/leakshield/internal/providers"
	"github.com/leakshield/leakshield/internal/samples"
	"github.com/leakshield/leakshield/internal/scan"
)

// Shared scan flags
var (
	flagFormat       string
	flagOut          string
	flagFailOn       string
	flagMaxFindings  int
	flagMask         bool
	flagRules        string
	flagRecognizer   string
	flagProvider     string
	flagModel        string
	flagONNXModelDir string
	flagConcurrency  int
	flagPaths        string
	flagExclude      string
	flagNoRedact     bool
	flagNoCache      bool
)

func addScanFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagFormat, "format", "", "Output format ("+strings.Join(output.Formats, ", ")+")")
	cmd.Flags().StringVar(&flagOut, "out", "", "Output file path (default: stdout)")
	cmd.Flags().StringVar(&flagFailOn, "fail-on", "", "Exit 1 when a finding reaches this severity (none, low, medium, high)")
	cmd.Flags().BoolVar(&flagMask, "mask", false, "Mask finding values in the output")
	addEngineFlags(cmd)
}

// addEngineFlags adds the flags that shape the engine, shared with serve and mcp.
func addEngineFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&flagMaxFindings, "max-findings", 0, "Maximum number of findings (most severe kept)")
	cmd.Flags().StringVar(&flagRules, "rules", "", "Rules file path")
	cmd.Flags().StringVar(&flagRecognizer, "recognizer", "", "Entity recognizer ("+strings.Join(ner.Backends, ", ")+")")
	cmd.Flags().StringVar(&flagProvider, "provider", "", "LLM provider for --recognizer llm (anthropic, openai, gemini, ollama)")
	cmd.Flags().StringVar(&flagModel, "model", "", "LLM model for --recognizer llm")
	cmd.Flags().StringVar(&flagONNXModelDir, "onnx-model-dir", "", "Directory holding the ONNX NER model")
	cmd.Flags().BoolVar(&flagNoRedact, "no-redact", false, "Send text to the LLM without redacting secrets (use with caution)")
	cmd.Flags().BoolVar(&flagNoCache, "no-cache", false, "Do not read or write the recognizer cache")
}

func globalOverrides() map[string]string {
	m := make(map[string]string)
	if flagLogLevel != "" {
		m["log.level"] = flagLogLevel
	}
	if flagLogFormat != "" {
		m["log.format"] = flagLogFormat
	}
	if flagLogFile != "" {
		m["log.file"] = flagLogFile
	}
	return m
}

func buildOverrides() map[string]string {
	m := globalOverrides()
	if flagFormat != "" {
		m["format"] = flagFormat
	}
	if flagFailOn != "" {
		m["failOn"] = flagFailOn
	}
	if flagMaxFindings > 0 {
		m["maxFindings"] = fmt.Sprintf("%d", flagMaxFindings)
	}
	if flagMask {
		m["mask"] = "true"
	}
	if flagRules != "" {
		m["rulesFile"] = flagRules
	}
	if flagRecognizer != "" {
		m["ner.recognizer"] = flagRecognizer
	}
	if flagProvider != "" {
		m["ner.provider"] = flagProvider
	}
	if flagModel != "" {
		m["ner.model"] = flagModel
	}
	if flagONNXModelDir != "" {
		m["ner.onnxModelDir"] = flagONNXModelDir
	}
	if flagConcurrency > 0 {
		m["scan.concurrency"] = fmt.Sprintf("%d", flagConcurrency)
	}
	return m
}

func buildFileOpts(cfg config.Config) gitctx.Options {
	opts := gitctx.Options{
		Dir:     ".",
		Include: cfg.Scan.Include,
		Exclude: cfg.Scan.Exclude,
	}
	if flagPaths != "" {
		opts.Include = splitComma(flagPaths)
	}
	if flagExclude != "" {
		opts.Exclude = append(opts.Exclude, splitComma(flagExclude)...)
	}
	return opts
}

func splitComma(s string) []string {
	parts := strings.Split(s, ",")
	var result []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

// session is the configuration, logger and engine for one command run.
type session struct {
	cfg    config.Config
	logger *slog.Logger
	engine *scan.Engine
	close  func()
}

// newSession loads config and builds the engine. Errors are configuration
// problems and are returned to cobra as usage errors.
func newSession(overrides map[string]string, reg prometheus.Registerer) (*session, error) {
	cfg, err := config.Load(flagConfig, overrides)
	if err != nil {
		return nil, err
	}
	if flagNoRedact {
		cfg.Privacy.RedactSecrets = false
	}
	if flagNoCache {
		cfg.Cache.Enabled = false
	}

	logger, closeLog, err := logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format, File: cfg.Log.File})
	if err != nil {
		return nil, err
	}
	if !cfg.Privacy.RedactSecrets && cfg.NER.Recognizer == ner.BackendLLM {
		logger.Warn("secret redaction is disabled, text is sent to the LLM provider as-is")
	}

	rules, err := scan.LoadRules(cfg.RulesFile)
	if err != nil {
		closeLog()
		return nil, fmt.Errorf("loading rules: %w", err)
	}

	recognizer := buildRecognizer(cfg, logger)
	opts := []scan.Option{
		scan.WithRecognizer(recognizer),
		scan.WithLogger(logger),
		scan.WithRules(rules),
		scan.WithMaxFindings(cfg.MaxFindings),
		scan.WithConcurrency(cfg.Scan.Concurrency),
	}
	if reg != nil {
		opts = append(opts, scan.WithMetrics(metrics.New(reg)))
	}

	return &session{
		cfg:    cfg,
		logger: logger,
		engine: scan.New(opts...),
		close: func() {
			if c, ok := recognizer.(io.Closer); ok {
				c.Close()
			}
			closeLog()
		},
	}, nil
}

// buildRecognizer falls back to regex-only mode when the configured
// recognizer cannot be created.
func buildRecognizer(cfg config.Config, logger *slog.Logger) ner.Recognizer {
	c, err := cache.New(cfg.Cache.Enabled, cfg.Cache.Dir, cfg.Cache.TTLSeconds)
	if err != nil {
		logger.Warn("entity cache disabled", "error", err)
		c = nil
	}

	r, err := ner.New(ner.Options{
		Backend:       cfg.NER.Recognizer,
		Provider:      cfg.NER.Provider,
		Model:         cfg.NER.Model,
		ONNXModelDir:  cfg.NER.ONNXModelDir,
		SeqLen:        cfg.NER.SeqLen,
		RedactSecrets: cfg.Privacy.RedactSecrets,
		Cache:         c,
		Logger:        logger,
	})
	if err != nil {
		logger.Warn("entity recognizer unavailable, using regex-only mode (confidence capped at MEDIUM)",
			"recognizer", cfg.NER.Recognizer, "error", err)
		return ner.Noop{}
	}
	return r
}

// finish renders the report and applies the --fail-on threshold.
func (s *session) finish(cmd *cobra.Command, report *pii.Report) {
	opts := output.Options{Mask: s.cfg.Mask}
	w, err := output.GetWriter(s.cfg.Format, opts)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		exitCode = ExitUsageError
		return
	}

	if flagOut != "" {
		if err := output.WriteReport(report, s.cfg.Format, flagOut, opts); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error writing output: %v\n", err)
			exitCode = ExitRuntimeError
			return
		}
	} else {
		if tw, ok := w.(*output.TextWriter); ok && cmd.OutOrStdout() == os.Stdout {
			tw.Color = output.ShouldUseColor()
		}
		if err := w.Write(cmd.OutOrStdout(), report); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error writing output: %v\n", err)
			exitCode = ExitRuntimeError
			return
		}
	}

	for _, f := range report.Findings {
		if pii.MeetsThreshold(f.Severity, s.cfg.FailOn) {
			exitCode = ExitFindings
			return
		}
	}
}

// fail reports a runtime error and sets the exit code.
func (s *session) fail(cmd *cobra.Command, err error) {
	fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
	if providers.IsAuthError(err) {
		exitCode = ExitAuthError
		return
	}
	exitCode = ExitRuntimeError
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan content for PII",
	Long:  "Scan text, files, git changes, a repository README or a built-in sample for personal data.",
}

var scanTextCmd = &cobra.Command{
	Use:   "text [TEXT...]",
	Short: "Scan text from arguments or stdin",
	RunE: func(cmd *cobra.Command, args []string) error {
		text := strings.Join(args, " ")
		source := "text"
		if len(args) == 0 {
			if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
				return errors.New("no input: pass TEXT or pipe content to stdin")
			}
			data, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("reading stdin: %w", err)
			}
			text, source = string(data), "stdin"
		}

		s, err := newSession(buildOverrides(), nil)
		if err != nil {
			return err
		}
		defer s.close()

		report, err := s.engine.Scan(cmd.Context(), scan.Input{Text: text, Source: source})
		if err != nil {
			s.fail(cmd, err)
			return nil
		}
		s.finish(cmd, report)
		return nil
	},
}

var scanFileCmd = &cobra.Command{
	Use:   "file PATH...",
	Short: "Scan one or more files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(buildOverrides(), nil)
		if err != nil {
			return err
		}
		defer s.close()

		files := make([]scan.FileInput, 0, len(args))
		for _, path := range args {
			data, err := os.ReadFile(path)
			if err != nil {
				s.fail(cmd, fmt.Errorf("reading %s: %w", path, err))
				return nil
			}
			files = append(files, scan.FileInput{Path: path, Text: string(data)})
		}

		report, err := s.engine.ScanFiles(cmd.Context(), files)
		if err != nil {
			s.fail(cmd, err)
			return nil
		}
		s.finish(cmd, report)
		return nil
	},
}

var scanURLCmd = &cobra.Command{
	Use:   "url [REPO_URL]",
	Short: "Scan a GitHub repository README",
	Long:  "Fetch README.md from the repository's main (then master) branch and scan it. Defaults to the origin remote of the current repository.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(buildOverrides(), nil)
		if err != nil {
			return err
		}
		defer s.close()
		ctx := cmd.Context()

		repoURL := ""
		if len(args) == 1 {
			repoURL = args[0]
		} else {
			repoURL, err = github.DetectRepo(ctx, ".")
			if err != nil {
				return fmt.Errorf("%w; pass REPO_URL explicitly", err)
			}
			s.logger.Debug("using origin remote", "url", repoURL)
		}

		client := github.NewClient(time.Duration(s.cfg.Fetch.TimeoutSeconds) * time.Second)
		readme, err := client.FetchReadme(ctx, repoURL)
		if err != nil {
			s.fail(cmd, err)
			return nil
		}
		s.logger.Info("fetched readme", "owner", readme.Owner, "repo", readme.Repo, "branch", readme.Branch)

		report, err := s.engine.Scan(ctx, scan.Input{Text: readme.Text, Source: readme.URL})
		if err != nil {
			s.fail(cmd, err)
			return nil
		}
		s.finish(cmd, report)
		return nil
	},
}

var scanStagedCmd = &cobra.Command{
	Use:   "staged",
	Short: "Scan staged changes (what the next commit would contain)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGitScan(cmd, gitctx.Staged)
	},
}

var scanRepoCmd = &cobra.Command{
	Use:   "repo",
	Short: "Scan all tracked files in the repository",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGitScan(cmd, gitctx.Tracked)
	},
}

func runGitScan(cmd *cobra.Command, collect func(ctx context.Context, opts gitctx.Options) (gitctx.Result, error)) error {
	s, err := newSession(buildOverrides(), nil)
	if err != nil {
		return err
	}
	defer s.close()
	ctx := cmd.Context()

	res, err := collect(ctx, buildFileOpts(s.cfg))
	if err != nil {
		s.fail(cmd, err)
		return nil
	}
	for _, sk := range res.Skipped {
		s.logger.Debug("skipping file", "path", sk.Path, "reason", sk.Reason)
	}
	s.logger.Info("collected files", "files", len(res.Files), "skipped", len(res.Skipped), "root", res.Repo.Root)

	files := make([]scan.FileInput, len(res.Files))
	for i, f := range res.Files {
		files[i] = scan.FileInput{Path: f.Path, Text: f.Text}
	}
	report, err := s.engine.ScanFiles(ctx, files)
	if err != nil {
		s.fail(cmd, err)
		return nil
	}
	s.finish(cmd, report)
	return nil
}

var scanSampleCmd = &cobra.Command{
	Use:   "sample NAME",
	Short: "Scan a built-in simulated paste",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sample, err := samples.Get(args[0])
		if err != nil {
			return err
		}
		return runSample(cmd, sample)
	},
}

func runSample(cmd *cobra.Command, sample samples.Sample) error {
	s, err := newSession(buildOverrides(), nil)
	if err != nil {
		return err
	}
	defer s.close()

	report, err := s.engine.Scan(cmd.Context(), scan.Input{Text: sample.Text, Source: sample.Source()})
	if err != nil {
		s.fail(cmd, err)
		return nil
	}
	s.finish(cmd, report)
	return nil
}

func init() {
	scanCmd.AddCommand(scanTextCmd)
	scanCmd.AddCommand(scanFileCmd)
	scanCmd.AddCommand(scanURLCmd)
	scanCmd.AddCommand(scanStagedCmd)
	scanCmd.AddCommand(scanRepoCmd)
	scanCmd.AddCommand(scanSampleCmd)

	for _, cmd := range []*cobra.Command{
		scanTextCmd,
		scanFileCmd,
		scanURLCmd,
		scanStagedCmd,
		scanRepoCmd,
		scanSampleCmd,
	} {
		addScanFlags(cmd)
	}
	for _, cmd := range []*cobra.Command{scanFileCmd, scanStagedCmd, scanRepoCmd} {
		cmd.Flags().IntVar(&flagConcurrency, "concurrency", 0, "Files scanned in parallel")
	}
	for _, cmd := range []*cobra.Command{scanStagedCmd, scanRepoCmd} {
		cmd.Flags().StringVar(&flagPaths, "paths", "", "Include file path globs (comma-separated)")
		cmd.Flags().StringVar(&flagExclude, "exclude", "", "Exclude file path globs (comma-separated, added to config)")
	}
}
