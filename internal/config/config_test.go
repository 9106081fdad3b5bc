package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, ProviderOpenAI, cfg.Backend.Provider)
	assert.Empty(t, cfg.Backend.Model)
	assert.Equal(t, 3*time.Minute, cfg.Backend.CallTimeout)
	assert.Equal(t, 1, cfg.Backend.MaxAttempts)
	assert.Equal(t, 2*time.Second, cfg.Backend.RetryBackoff)
	assert.Equal(t, 15*time.Minute, cfg.Pipeline.RunTimeout)
	assert.Equal(t, "python", cfg.Pipeline.CodeLanguage)
	assert.True(t, cfg.LintEnabled())
	assert.Equal(t, "tutorials", cfg.Output.Dir)
	assert.Equal(t, []string{FormatMarkdown}, cfg.Output.Formats)
	assert.Equal(t, ":8080", cfg.Server.HTTPAddr)
	assert.Equal(t, "none", cfg.Telemetry.Exporter)
}

func TestLoad_ReadsYAML(t *testing.T) {
	dir := t.TempDir()
	yml := `backend:
  provider: ollama
  model: llama3.1
  callTimeout: 90s
  maxAttempts: 3
  temperature: 0.2
pipeline:
  codeLanguage: go
  lintCode: false
output:
  dir: out
  formats: [markdown, html, json]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tutorgen.yaml"), []byte(yml), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, ProviderOllama, cfg.Backend.Provider)
	assert.Equal(t, "llama3.1", cfg.Backend.Model)
	assert.Equal(t, 90*time.Second, cfg.Backend.CallTimeout)
	assert.Equal(t, 3, cfg.Backend.MaxAttempts)
	require.NotNil(t, cfg.Backend.Temperature)
	assert.InDelta(t, 0.2, *cfg.Backend.Temperature, 1e-9)
	assert.Equal(t, "go", cfg.Pipeline.CodeLanguage)
	assert.False(t, cfg.LintEnabled())
	assert.Equal(t, "out", cfg.Output.Dir)
	assert.Len(t, cfg.Output.Formats, 3)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_PrefersYML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tutorgen.yml"), []byte("backend:\n  model: a\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tutorgen.yaml"), []byte("backend:\n  model: b\n"), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "a", cfg.Backend.Model)
}

func TestLoadFile_Errors(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yml"))
	assert.ErrorIs(t, err, ErrInvalid)

	path := filepath.Join(t.TempDir(), "bad.yml")
	require.NoError(t, os.WriteFile(path, []byte("backend: [unterminated"), 0o644))
	_, err = LoadFile(path)
	assert.ErrorIs(t, err, ErrInvalid)
}

func validConfig() *Config {
	cfg := &Config{Backend: BackendConfig{Model: "gpt-4o-mini", APIKey: "sk-test"}}
	cfg.ApplyDefaults()
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing model", func(c *Config) { c.Backend.Model = "" }, "backend.model"},
		{"offline needs no model", func(c *Config) { c.Backend.Provider = ProviderOffline; c.Backend.Model = "" }, ""},
		{"ollama needs no key", func(c *Config) { c.Backend.Provider = ProviderOllama; c.Backend.APIKey = "" }, ""},
		{"openai needs key", func(c *Config) { c.Backend.APIKey = "" }, "backend.apiKey"},
		{"unknown provider", func(c *Config) { c.Backend.Provider = "bard" }, "backend.provider"},
		{"zero attempts", func(c *Config) { c.Backend.MaxAttempts = -1 }, "backend.maxAttempts"},
		{"negative timeout", func(c *Config) { c.Backend.CallTimeout = -time.Second }, "backend.callTimeout"},
		{"bad temperature", func(c *Config) { v := 3.0; c.Backend.Temperature = &v }, "backend.temperature"},
		{"bad language", func(c *Config) { c.Pipeline.CodeLanguage = "cobol" }, "pipeline.codeLanguage"},
		{"bad format", func(c *Config) { c.Output.Formats = []string{"pdf"} }, "output.formats"},
		{"bad exporter", func(c *Config) { c.Telemetry.Exporter = "jaeger" }, "telemetry.exporter"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalid)
			var ce *Error
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, tt.field, ce.Field)
			assert.Equal(t, CodeInvalid, ce.Code())
		})
	}
}
