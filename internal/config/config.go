package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config represents the leakshield configuration.
type Config struct {
	Format      string        `yaml:"format" mapstructure:"format"`
	FailOn      string        `yaml:"failOn" mapstructure:"failOn"`
	MaxFindings int           `yaml:"maxFindings" mapstructure:"maxFindings"`
	Mask        bool          `yaml:"mask" mapstructure:"mask"`
	RulesFile   string        `yaml:"rulesFile,omitempty" mapstructure:"rulesFile"`
	NER         NERConfig     `yaml:"ner" mapstructure:"ner"`
	Cache       CacheConfig   `yaml:"cache" mapstructure:"cache"`
	Privacy     PrivacyConfig `yaml:"privacy" mapstructure:"privacy"`
	Server      ServerConfig  `yaml:"server" mapstructure:"server"`
	Log         LogConfig     `yaml:"log" mapstructure:"log"`
	Fetch       FetchConfig   `yaml:"fetch" mapstructure:"fetch"`
	Scan        ScanConfig    `yaml:"scan" mapstructure:"scan"`
}

// NERConfig selects the entity recognizer.
type NERConfig struct {
	Recognizer   string `yaml:"recognizer" mapstructure:"recognizer"`
	Provider     string `yaml:"provider" mapstructure:"provider"`
	Model        string `yaml:"model" mapstructure:"model"`
	ONNXModelDir string `yaml:"onnxModelDir,omitempty" mapstructure:"onnxModelDir"`
	SeqLen       int    `yaml:"seqLen" mapstructure:"seqLen"`
}

// CacheConfig controls caching of recognizer results.
type CacheConfig struct {
	Enabled    bool   `yaml:"enabled" mapstructure:"enabled"`
	Dir        string `yaml:"dir,omitempty" mapstructure:"dir"`
	TTLSeconds int    `yaml:"ttlSeconds" mapstructure:"ttlSeconds"`
}

// PrivacyConfig controls what leaves the machine.
type PrivacyConfig struct {
	RedactSecrets bool `yaml:"redactSecrets" mapstructure:"redactSecrets"`
}

// ServerConfig configures `leakshield serve`.
type ServerConfig struct {
	Addr string `yaml:"addr" mapstructure:"addr"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
	File   string `yaml:"file,omitempty" mapstructure:"file"`
}

// FetchConfig configures README fetching.
type FetchConfig struct {
	TimeoutSeconds int `yaml:"timeoutSeconds" mapstructure:"timeoutSeconds"`
}

// ScanConfig configures file and repository scans.
type ScanConfig struct {
	Concurrency int      `yaml:"concurrency" mapstructure:"concurrency"`
	Include     []string `yaml:"include,omitempty" mapstructure:"include"`
	Exclude     []string `yaml:"exclude,omitempty" mapstructure:"exclude"`
}

// Accepted values for enumerated keys.
var (
	Formats     = []string{"text", "json", "markdown", "sarif", "csv", "jsonl"}
	FailOnLevel = []string{"none", "low", "medium", "high"}
	Recognizers = []string{"none", "llm", "onnx"}
	LogLevels   = []string{"debug", "info", "warn", "error"}
	LogFormats  = []string{"text", "json"}
)

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		Format: "text",
		FailOn: "none",
		NER: NERConfig{
			Recognizer: "onnx",
			Provider:   "anthropic",
			Model:      "claude-haiku-4-5",
			SeqLen:     128,
		},
		Cache: CacheConfig{
			Enabled:    true,
			TTLSeconds: 86400,
		},
		Privacy: PrivacyConfig{RedactSecrets: true},
		Server:  ServerConfig{Addr: "127.0.0.1:8080"},
		Log:     LogConfig{Level: "info", Format: "text"},
		Fetch:   FetchConfig{TimeoutSeconds: 8},
		Scan: ScanConfig{
			Concurrency: 4,
			Exclude: []string{
				"vendor/*", "node_modules/*", "**/go.sum", "**/package-lock.json",
				"**/*.png", "**/*.jpg", "**/*.gif", "**/*.pdf", "**/*.zip", "**/*.onnx",
			},
		},
	}
}

// envNames maps camelCase keys to readable environment variables. Other keys
// are found by AutomaticEnv, e.g. ner.recognizer -> LEAKSHIELD_NER_RECOGNIZER.
var envNames = map[string]string{
	"failOn":                "LEAKSHIELD_FAIL_ON",
	"maxFindings":           "LEAKSHIELD_MAX_FINDINGS",
	"rulesFile":             "LEAKSHIELD_RULES_FILE",
	"ner.onnxModelDir":      "LEAKSHIELD_NER_ONNX_MODEL_DIR",
	"ner.seqLen":            "LEAKSHIELD_NER_SEQ_LEN",
	"cache.ttlSeconds":      "LEAKSHIELD_CACHE_TTL_SECONDS",
	"privacy.redactSecrets": "LEAKSHIELD_PRIVACY_REDACT_SECRETS",
	"fetch.timeoutSeconds":  "LEAKSHIELD_FETCH_TIMEOUT_SECONDS",
}

// Keys lists every settable key in display order.
var Keys = []string{
	"format", "failOn", "maxFindings", "mask", "rulesFile",
	"ner.recognizer", "ner.provider", "ner.model", "ner.onnxModelDir", "ner.seqLen",
	"cache.enabled", "cache.dir", "cache.ttlSeconds",
	"privacy.redactSecrets",
	"server.addr",
	"log.level", "log.format", "log.file",
	"fetch.timeoutSeconds",
	"scan.concurrency", "scan.include", "scan.exclude",
}

// ConfigDir returns the platform-appropriate config directory for leakshield.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "leakshield"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "leakshield"), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "leakshield"), nil
		}
		return filepath.Join(home, "AppData", "Roaming", "leakshield"), nil
	default:
		return filepath.Join(home, ".config", "leakshield"), nil
	}
}

// ConfigPath returns the full path to the config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load builds the effective config by merging: defaults <- file <- env <- overrides.
// An empty path uses ConfigPath; a missing default file is not an error.
// The overrides map comes from CLI flags (only non-empty values are applied).
func Load(path string, overrides map[string]string) (Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v, Default())

	explicit := path != ""
	if !explicit {
		p, err := ConfigPath()
		if err != nil {
			return Config{}, err
		}
		path = p
	}
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	} else if explicit {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	v.SetEnvPrefix("LEAKSHIELD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	for key, env := range envNames {
		_ = v.BindEnv(key, env)
	}

	for key, value := range overrides {
		if value != "" {
			v.Set(key, value)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("format", d.Format)
	v.SetDefault("failOn", d.FailOn)
	v.SetDefault("maxFindings", d.MaxFindings)
	v.SetDefault("mask", d.Mask)
	v.SetDefault("rulesFile", d.RulesFile)
	v.SetDefault("ner.recognizer", d.NER.Recognizer)
	v.SetDefault("ner.provider", d.NER.Provider)
	v.SetDefault("ner.model", d.NER.Model)
	v.SetDefault("ner.onnxModelDir", d.NER.ONNXModelDir)
	v.SetDefault("ner.seqLen", d.NER.SeqLen)
	v.SetDefault("cache.enabled", d.Cache.Enabled)
	v.SetDefault("cache.dir", d.Cache.Dir)
	v.SetDefault("cache.ttlSeconds", d.Cache.TTLSeconds)
	v.SetDefault("privacy.redactSecrets", d.Privacy.RedactSecrets)
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("fetch.timeoutSeconds", d.Fetch.TimeoutSeconds)
	v.SetDefault("scan.concurrency", d.Scan.Concurrency)
	v.SetDefault("scan.include", d.Scan.Include)
	v.SetDefault("scan.exclude", d.Scan.Exclude)
}

// Validate checks enumerated values and numeric ranges.
func (c Config) Validate() error {
	checks := []struct {
		key, value string
		allowed    []string
	}{
		{"format", c.Format, Formats},
		{"failOn", c.FailOn, FailOnLevel},
		{"ner.recognizer", c.NER.Recognizer, Recognizers},
		{"log.level", c.Log.Level, LogLevels},
		{"log.format", c.Log.Format, LogFormats},
	}
	for _, ch := range checks {
		if !slices.Contains(ch.allowed, ch.value) {
			return fmt.Errorf("invalid %s %q (must be one of: %s)", ch.key, ch.value, strings.Join(ch.allowed, ", "))
		}
	}
	if c.MaxFindings < 0 {
		return fmt.Errorf("maxFindings must not be negative")
	}
	if c.Scan.Concurrency < 1 {
		return fmt.Errorf("scan.concurrency must be at least 1")
	}
	return nil
}

// LoadFile loads only the config file. Returns Default() and nil error if
// the file doesn't exist.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// Save writes the config to path as YAML.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// SetField sets a single config field by key name. Returns error if key is
// unknown or the value is invalid for it.
func SetField(cfg *Config, key, value string) error {
	var err error
	switch key {
	case "format":
		cfg.Format = value
	case "failOn":
		cfg.FailOn = value
	case "maxFindings":
		err = setInt(&cfg.MaxFindings, key, value)
	case "mask":
		err = setBool(&cfg.Mask, key, value)
	case "rulesFile":
		cfg.RulesFile = value
	case "ner.recognizer":
		cfg.NER.Recognizer = value
	case "ner.provider":
		cfg.NER.Provider = value
	case "ner.model":
		cfg.NER.Model = value
	case "ner.onnxModelDir":
		cfg.NER.ONNXModelDir = value
	case "ner.seqLen":
		err = setInt(&cfg.NER.SeqLen, key, value)
	case "cache.enabled":
		err = setBool(&cfg.Cache.Enabled, key, value)
	case "cache.dir":
		cfg.Cache.Dir = value
	case "cache.ttlSeconds":
		err = setInt(&cfg.Cache.TTLSeconds, key, value)
	case "privacy.redactSecrets":
		err = setBool(&cfg.Privacy.RedactSecrets, key, value)
	case "server.addr":
		cfg.Server.Addr = value
	case "log.level":
		cfg.Log.Level = value
	case "log.format":
		cfg.Log.Format = value
	case "log.file":
		cfg.Log.File = value
	case "fetch.timeoutSeconds":
		err = setInt(&cfg.Fetch.TimeoutSeconds, key, value)
	case "scan.concurrency":
		err = setInt(&cfg.Scan.Concurrency, key, value)
	case "scan.include":
		cfg.Scan.Include = splitList(value)
	case "scan.exclude":
		cfg.Scan.Exclude = splitList(value)
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	if err != nil {
		return err
	}
	return cfg.Validate()
}

func setInt(dst *int, key, value string) error {
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("%s must be an integer: %w", key, err)
	}
	if n < 0 {
		return fmt.Errorf("%s must not be negative", key)
	}
	*dst = n
	return nil
}

func setBool(dst *bool, key, value string) error {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("%s must be true or false: %w", key, err)
	}
	*dst = b
	return nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
