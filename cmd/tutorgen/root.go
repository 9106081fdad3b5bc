package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dusk-indust/tutorgen/internal/config"
	"github.com/dusk-indust/tutorgen/internal/logger"
	"github.com/dusk-indust/tutorgen/internal/telemetry"
)

// app is the state shared by every subcommand of one invocation.
type app struct {
	v      *viper.Viper
	stdout io.Writer
	stderr io.Writer

	cfg      *config.Config
	log      *logger.Logger
	shutdown telemetry.ShutdownFunc
}

// envAliases lists the environment variables bound to each flag, in
// priority order.
var envAliases = map[string][]string{
	"provider":      {"TUTORGEN_PROVIDER"},
	"model":         {"TUTORGEN_MODEL", "MODEL_NAME"},
	"base-url":      {"TUTORGEN_BASE_URL"},
	"api-key":       {"TUTORGEN_API_KEY", "OPENAI_API_KEY"},
	"call-timeout":  {"TUTORGEN_CALL_TIMEOUT"},
	"max-attempts":  {"TUTORGEN_MAX_ATTEMPTS"},
	"run-timeout":   {"TUTORGEN_RUN_TIMEOUT"},
	"code-language": {"TUTORGEN_CODE_LANGUAGE"},
	"lint-code":     {"TUTORGEN_LINT_CODE"},
	"output-dir":    {"TUTORGEN_OUTPUT_DIR"},
	"format":        {"TUTORGEN_FORMATS"},
	"log-mode":      {"TUTORGEN_LOG_MODE"},
	"telemetry":     {"TUTORGEN_TELEMETRY"},
	"http-addr":     {"TUTORGEN_HTTP_ADDR"},
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{v: viper.New(), stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:   "tutorgen",
		Short: "Generate data science tutorials with a multi-agent pipeline",
		Long: `tutorgen turns a topic into a tutorial. A scope gate first decides whether
the topic belongs to data science; accepted topics are written by three
concurrent agents (theory, examples, code) and merged by a consolidator.

Settings come from flags, then TUTORGEN_* environment variables, then
tutorgen.yml in the working directory, then built-in defaults.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return a.teardown(cmd.Context())
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.String("config", "", "config file (default: ./tutorgen.yml)")
	pf.String("provider", "", "generation backend: openai, ollama or offline")
	pf.String("model", "", "model name")
	pf.String("base-url", "", "OpenAI-compatible endpoint")
	pf.String("api-key", "", "API key for the backend")
	pf.Duration("call-timeout", 0, "timeout for one generation call")
	pf.Int("max-attempts", 0, "attempts per generation call (1 = no retries)")
	pf.Duration("run-timeout", 0, "timeout for a whole run")
	pf.String("code-language", "", "language of the code section: python, go, rust or typescript")
	pf.Bool("lint-code", true, "syntax check the code section")
	pf.String("output-dir", "", "directory for exported tutorials")
	pf.StringSlice("format", nil, "export formats: markdown, html, json")
	pf.String("log-mode", "", "log mode: development, production or none")
	pf.String("telemetry", "", "trace exporter: none or stdout")
	pf.String("http-addr", "", "listen address for serve-http")

	for key, envs := range envAliases {
		_ = a.v.BindPFlag(key, pf.Lookup(key))
		_ = a.v.BindEnv(append([]string{key}, envs...)...)
	}

	root.AddCommand(
		newGenerateCmd(a),
		newClassifyCmd(a),
		newListCmd(a),
		newCheckCmd(a),
		newServeMCPCmd(a),
		newServeHTTPCmd(a),
		newVersionCmd(a),
	)
	return root
}

// setup loads and validates configuration, then builds the logger and tracer.
// An invalid configuration aborts the command before any backend connection.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if cmd.Annotations["skipSetup"] == "true" {
		return nil
	}

	path, _ := cmd.Flags().GetString("config")
	var (
		cfg *config.Config
		err error
	)
	if path != "" {
		cfg, err = config.LoadFile(path)
	} else {
		cfg, err = config.Load(".")
	}
	if err != nil {
		return err
	}
	if err := a.overlay(cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		return err
	}
	a.log = log

	shutdown, err := telemetry.Init(cmd.Context(), log, telemetry.Config{
		Version:  version,
		Exporter: cfg.Telemetry.Exporter,
		Writer:   a.stderr,
	})
	if err != nil {
		return err
	}
	a.shutdown = shutdown
	return nil
}

func (a *app) teardown(ctx context.Context) error {
	if a.log != nil {
		a.log.Sync()
	}
	if a.shutdown == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return a.shutdown(ctx)
}

// overlay applies flags and environment variables on top of the file
// configuration. Viper resolves flag over env; only keys that were set win.
func (a *app) overlay(cfg *config.Config) error {
	v := a.v
	str := func(key string, dst *string) {
		if v.IsSet(key) {
			*dst = strings.TrimSpace(v.GetString(key))
		}
	}
	str("provider", &cfg.Backend.Provider)
	str("model", &cfg.Backend.Model)
	str("base-url", &cfg.Backend.BaseURL)
	str("api-key", &cfg.Backend.APIKey)
	str("code-language", &cfg.Pipeline.CodeLanguage)
	str("output-dir", &cfg.Output.Dir)
	str("log-mode", &cfg.Log.Mode)
	str("telemetry", &cfg.Telemetry.Exporter)
	str("http-addr", &cfg.Server.HTTPAddr)

	for _, key := range []string{"call-timeout", "run-timeout"} {
		if !v.IsSet(key) {
			continue
		}
		d, err := time.ParseDuration(strings.TrimSpace(v.GetString(key)))
		if err != nil {
			return &config.Error{Field: key, Reason: fmt.Sprintf("invalid duration %q", v.GetString(key)), Err: err}
		}
		if key == "call-timeout" {
			cfg.Backend.CallTimeout = d
		} else {
			cfg.Pipeline.RunTimeout = d
		}
	}
	if v.IsSet("max-attempts") {
		cfg.Backend.MaxAttempts = v.GetInt("max-attempts")
	}
	if v.IsSet("lint-code") {
		on := v.GetBool("lint-code")
		cfg.Pipeline.LintCode = &on
	}
	if v.IsSet("format") {
		var formats []string
		for _, f := range v.GetStringSlice("format") {
			for _, part := range strings.Split(f, ",") {
				if part = strings.TrimSpace(part); part != "" {
					formats = append(formats, part)
				}
			}
		}
		cfg.Output.Formats = formats
	}
	return nil
}
