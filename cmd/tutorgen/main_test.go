package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/tutorgen/internal/tutorial"
)

// execute runs the CLI with the offline backend and quiet logging.
func execute(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	base := []string{"--provider", "offline", "--log-mode", "none"}
	code = run(context.Background(), append(args, base...), &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestVersion(t *testing.T) {
	var out bytes.Buffer
	code := run(context.Background(), []string{"version"}, &out, &bytes.Buffer{})
	assert.Equal(t, exitOK, code)
	assert.Equal(t, "tutorgen dev\n", out.String())
}

func TestGenerate_Done(t *testing.T) {
	dir := t.TempDir()
	code, stdout, stderr := execute(t, "generate", "Linear", "Regression", "--output-dir", dir, "--format", "markdown,json")
	require.Equal(t, exitOK, code, stderr)

	paths := strings.Fields(stdout)
	require.Len(t, paths, 2)
	assert.Equal(t, filepath.Join(dir, "linear_regression_tutorial.md"), paths[0])
	assert.Equal(t, filepath.Join(dir, "linear_regression_tutorial.json"), paths[1])

	data, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "# A Practical Guide to Linear Regression\n\n**Summary:** "))

	assert.Contains(t, stderr, "checking scope...")
	assert.Contains(t, stderr, "✓ done")
}

func TestGenerate_PrintNoWrite(t *testing.T) {
	dir := t.TempDir()
	code, stdout, _ := execute(t, "generate", "Linear Regression", "--print", "--no-write", "--output-dir", dir)
	require.Equal(t, exitOK, code)
	assert.True(t, strings.HasPrefix(stdout, "# A Practical Guide to Linear Regression"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestGenerate_RejectedExitsTwo(t *testing.T) {
	dir := t.TempDir()
	code, stdout, stderr := execute(t, "generate", "Network Administration", "--output-dir", dir)
	assert.Equal(t, exitRejected, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "topic rejected (confidence 0.80)")
	assert.Contains(t, stderr, "outside data-related scope")
}

func TestGenerate_MissingModelFailsBeforeRun(t *testing.T) {
	var out, errOut bytes.Buffer
	code := run(context.Background(), []string{"generate", "Linear Regression", "--provider", "ollama", "--log-mode", "none"}, &out, &errOut)
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, errOut.String(), "backend.model")
	assert.NotContains(t, errOut.String(), "checking scope")
}

func TestClassify_PrintsDecision(t *testing.T) {
	code, stdout, _ := execute(t, "classify", "Linear Regression")
	require.Equal(t, exitOK, code)

	var d tutorial.ScopeDecision
	require.NoError(t, json.Unmarshal([]byte(stdout), &d))
	assert.True(t, d.InScope)
	assert.NoError(t, d.Validate())
}

func TestList(t *testing.T) {
	dir := t.TempDir()
	code, stdout, _ := execute(t, "list", "--output-dir", dir)
	require.Equal(t, exitOK, code)
	assert.Contains(t, stdout, "No tutorials")

	code, _, _ = execute(t, "generate", "Linear Regression", "--output-dir", dir)
	require.Equal(t, exitOK, code)

	code, stdout, _ = execute(t, "list", "--output-dir", dir, "--json")
	require.Equal(t, exitOK, code)
	assert.Contains(t, stdout, `"title": "A Practical Guide to Linear Regression"`)
}

func TestCheck_Offline(t *testing.T) {
	code, stdout, _ := execute(t, "check")
	require.Equal(t, exitOK, code)
	assert.Contains(t, stdout, "provider:  offline")
	assert.Contains(t, stdout, "backend:   ok")
}

func TestSettingsPrecedence(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "tutorgen.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(
		"backend:\n  provider: offline\n  model: file-model\noutput:\n  dir: from-file\nlog:\n  mode: none\n"), 0o644))

	runCheck := func(args ...string) string {
		t.Helper()
		var out, errOut bytes.Buffer
		code := run(context.Background(), append([]string{"check", "--config", cfgPath}, args...), &out, &errOut)
		require.Equal(t, exitOK, code, errOut.String())
		return out.String()
	}

	assert.Contains(t, runCheck(), "model:     file-model")

	t.Setenv("MODEL_NAME", "alias-model")
	assert.Contains(t, runCheck(), "model:     alias-model")

	t.Setenv("TUTORGEN_MODEL", "env-model")
	assert.Contains(t, runCheck(), "model:     env-model")

	assert.Contains(t, runCheck("--model", "flag-model"), "model:     flag-model")
}

func TestOutputDirPrecedence(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "tutorgen.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("backend:\n  provider: offline\noutput:\n  dir: from-file\nlog:\n  mode: none\n"), 0o644))

	list := func(args ...string) string {
		t.Helper()
		var out bytes.Buffer
		code := run(context.Background(), append([]string{"list", "--config", cfgPath}, args...), &out, &bytes.Buffer{})
		require.Equal(t, exitOK, code)
		return out.String()
	}

	assert.Equal(t, "No tutorials in from-file.\n", list())
	t.Setenv("TUTORGEN_OUTPUT_DIR", "from-env")
	assert.Equal(t, "No tutorials in from-env.\n", list())
	assert.Equal(t, "No tutorials in from-flag.\n", list("--output-dir", "from-flag"))
}

func TestInvalidConfigIsConfigurationError(t *testing.T) {
	var errOut bytes.Buffer
	code := run(context.Background(), []string{"list", "--provider", "offline", "--format", "pdf", "--log-mode", "none"}, &bytes.Buffer{}, &errOut)
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, errOut.String(), "output.formats")
}

func TestInvalidDurationFlag(t *testing.T) {
	t.Setenv("TUTORGEN_CALL_TIMEOUT", "soon")
	var errOut bytes.Buffer
	code := run(context.Background(), []string{"list", "--provider", "offline", "--log-mode", "none"}, &bytes.Buffer{}, &errOut)
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, errOut.String(), "call-timeout")
}

