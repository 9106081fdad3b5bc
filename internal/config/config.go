// Package config loads tutorgen.yml and validates it once at startup.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dusk-indust/tutorgen/internal/agent"
)

// FileNames are the config files Load looks for, in order.
var FileNames = []string{"tutorgen.yml", "tutorgen.yaml"}

// Providers accepted in backend.provider.
const (
	ProviderOpenAI  = "openai"
	ProviderOllama  = "ollama"
	ProviderOffline = "offline"
)

// Export formats accepted in output.formats.
const (
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
	FormatJSON     = "json"
)

// Config holds every setting of a tutorgen process.
type Config struct {
	Backend   BackendConfig   `yaml:"backend"`
	Pipeline  PipelineConfig  `yaml:"pipeline"`
	Output    OutputConfig    `yaml:"output"`
	Log       LogConfig       `yaml:"log"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Server    ServerConfig    `yaml:"server"`
}

// BackendConfig selects and tunes the generation backend.
type BackendConfig struct {
	Provider     string        `yaml:"provider,omitempty"`
	Model        string        `yaml:"model,omitempty"`
	BaseURL      string        `yaml:"baseURL,omitempty"`
	APIKey       string        `yaml:"apiKey,omitempty"`
	CallTimeout  time.Duration `yaml:"callTimeout,omitempty"`
	MaxAttempts  int           `yaml:"maxAttempts,omitempty"`
	RetryBackoff time.Duration `yaml:"retryBackoff,omitempty"`
	Temperature  *float64      `yaml:"temperature,omitempty"`
}

// PipelineConfig tunes a run.
type PipelineConfig struct {
	RunTimeout   time.Duration `yaml:"runTimeout,omitempty"`
	CodeLanguage string        `yaml:"codeLanguage,omitempty"`
	LintCode     *bool         `yaml:"lintCode,omitempty"`
}

// OutputConfig controls exports.
type OutputConfig struct {
	Dir     string   `yaml:"dir,omitempty"`
	Formats []string `yaml:"formats,omitempty"`
}

// LogConfig controls logging.
type LogConfig struct {
	Mode string `yaml:"mode,omitempty"`
}

// TelemetryConfig controls tracing.
type TelemetryConfig struct {
	Exporter string `yaml:"exporter,omitempty"`
}

// ServerConfig controls the HTTP surface.
type ServerConfig struct {
	HTTPAddr string `yaml:"httpAddr,omitempty"`
}

// Load attempts to read tutorgen.yml or tutorgen.yaml from dir. Returns a
// default config (not an error) if no config file exists.
func Load(dir string) (*Config, error) {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		return LoadFile(path)
	}
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg, nil
}

// LoadFile reads the config at path. A missing file is an error.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Field: "file", Reason: err.Error(), Err: err}
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, &Error{Field: "file", Reason: fmt.Sprintf("parse %s: %v", path, err), Err: err}
	}
	cfg.ApplyDefaults()
	return &cfg, nil
}

// ApplyDefaults fills every unset field except the model.
func (c *Config) ApplyDefaults() {
	if c.Backend.Provider == "" {
		c.Backend.Provider = ProviderOpenAI
	}
	if c.Backend.CallTimeout == 0 {
		c.Backend.CallTimeout = 3 * time.Minute
	}
	if c.Backend.MaxAttempts == 0 {
		c.Backend.MaxAttempts = 1
	}
	if c.Backend.RetryBackoff == 0 {
		c.Backend.RetryBackoff = 2 * time.Second
	}
	if c.Pipeline.RunTimeout == 0 {
		c.Pipeline.RunTimeout = 15 * time.Minute
	}
	if c.Pipeline.CodeLanguage == "" {
		c.Pipeline.CodeLanguage = "python"
	}
	if c.Pipeline.LintCode == nil {
		on := true
		c.Pipeline.LintCode = &on
	}
	if c.Output.Dir == "" {
		c.Output.Dir = "tutorials"
	}
	if len(c.Output.Formats) == 0 {
		c.Output.Formats = []string{FormatMarkdown}
	}
	if c.Log.Mode == "" {
		c.Log.Mode = "development"
	}
	if c.Telemetry.Exporter == "" {
		c.Telemetry.Exporter = "none"
	}
	if c.Server.HTTPAddr == "" {
		c.Server.HTTPAddr = ":8080"
	}
}

// LintEnabled reports whether code sections are syntax checked.
func (c *Config) LintEnabled() bool {
	return c.Pipeline.LintCode == nil || *c.Pipeline.LintCode
}

// Validate checks the settings a run depends on. It returns the first problem
// as an *Error.
func (c *Config) Validate() error {
	b := c.Backend
	switch b.Provider {
	case ProviderOpenAI, ProviderOllama, ProviderOffline:
	default:
		return &Error{Field: "backend.provider", Reason: fmt.Sprintf("unknown provider %q (want openai, ollama or offline)", b.Provider)}
	}
	if strings.TrimSpace(b.Model) == "" && b.Provider != ProviderOffline {
		return &Error{Field: "backend.model", Reason: "a model is required (set TUTORGEN_MODEL or MODEL_NAME)"}
	}
	if b.Provider == ProviderOpenAI && b.APIKey == "" {
		return &Error{Field: "backend.apiKey", Reason: "an API key is required for the openai provider (set TUTORGEN_API_KEY or OPENAI_API_KEY)"}
	}
	if b.CallTimeout < 0 {
		return &Error{Field: "backend.callTimeout", Reason: "must not be negative"}
	}
	if b.MaxAttempts < 1 {
		return &Error{Field: "backend.maxAttempts", Reason: "must be at least 1"}
	}
	if b.RetryBackoff < 0 {
		return &Error{Field: "backend.retryBackoff", Reason: "must not be negative"}
	}
	if b.Temperature != nil && (*b.Temperature < 0 || *b.Temperature > 2) {
		return &Error{Field: "backend.temperature", Reason: "must be within [0, 2]"}
	}
	if c.Pipeline.RunTimeout < 0 {
		return &Error{Field: "pipeline.runTimeout", Reason: "must not be negative"}
	}
	if !agent.IsSupportedLanguage(c.Pipeline.CodeLanguage) {
		return &Error{Field: "pipeline.codeLanguage", Reason: fmt.Sprintf("unsupported language %q (want one of %s)",
			c.Pipeline.CodeLanguage, strings.Join(agent.SupportedLanguages(), ", "))}
	}
	for _, f := range c.Output.Formats {
		if !slices.Contains([]string{FormatMarkdown, FormatHTML, FormatJSON}, f) {
			return &Error{Field: "output.formats", Reason: fmt.Sprintf("unknown format %q", f)}
		}
	}
	switch c.Telemetry.Exporter {
	case "", "none", "stdout":
	default:
		return &Error{Field: "telemetry.exporter", Reason: fmt.Sprintf("unknown exporter %q", c.Telemetry.Exporter)}
	}
	return nil
}

// ErrInvalid matches every *Error via errors.Is.
var ErrInvalid = errors.New("invalid configuration")

// CodeInvalid is the stable error code reported for configuration errors.
const CodeInvalid = "INVALID_CONFIGURATION"

// Error reports a missing or invalid setting. It is fatal before any run.
type Error struct {
	Field  string
	Reason string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
}

func (e *Error) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrInvalid) succeed.
func (e *Error) Is(target error) bool { return target == ErrInvalid }

// Code returns CodeInvalid.
func (e *Error) Code() string { return CodeInvalid }
