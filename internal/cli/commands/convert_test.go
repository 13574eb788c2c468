package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/fmto/internal/cli/config"
	"github.com/leapstack-labs/fmto/internal/cli/output"
	"github.com/leapstack-labs/fmto/internal/cli/testutil"
)

// executeConvert runs the convert command with cfg in its context and
// returns stdout and stderr.
func executeConvert(t *testing.T, cfg *config.Config, stdin string, args ...string) (string, string, error) {
	t.Helper()

	cmd := NewConvertCommand()
	out, errOut := new(bytes.Buffer), new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(config.WithConfig(context.Background(), cfg))
	return out.String(), errOut.String(), err
}

func markdownConfig() *config.Config {
	cfg := config.Default()
	cfg.OutputFormat = string(output.ModeMarkdown)
	return cfg
}

func TestConvert_ExplicitOutputs(t *testing.T) {
	dir := testutil.SetupWorkDir(t)

	out, _, err := executeConvert(t, markdownConfig(), "", "app.conf", "-o", "app.json", "-o", "deploy/app.yaml")
	require.NoError(t, err)

	assert.Contains(t, out, "## Converting app.conf")
	assert.Contains(t, out, "- app.json `success` (json,")
	assert.Contains(t, out, "- "+filepath.Join("deploy", "app.yaml")+" `success` (yaml,")
	assert.Contains(t, out, "**Wrote 2 files**")
	testutil.AssertNoANSI(t, out)
	testutil.AssertValidMarkdown(t, out)

	assert.Contains(t, testutil.ReadFile(t, dir, "app.json"), `"replicas": [`)
	assert.Contains(t, testutil.ReadFile(t, dir, filepath.Join("deploy", "app.yaml")), "host: localhost")
}

func TestConvert_ConfiguredFormatsAndDir(t *testing.T) {
	dir := testutil.SetupWorkDir(t)
	cfg := markdownConfig()
	cfg.OutputFormats = []string{"toml", "env"}
	cfg.OutputDir = "out"

	_, _, err := executeConvert(t, cfg, "", "app.conf")
	require.NoError(t, err)

	assert.Contains(t, testutil.ReadFile(t, dir, filepath.Join("out", "app.toml")), "[db]")
	assert.Equal(t, "name=\"svc\"\n", testutil.ReadFile(t, dir, filepath.Join("out", "app.env")))
}

func TestConvert_ConfiguredFormatsIgnoredForExplicitOutputs(t *testing.T) {
	dir := testutil.SetupWorkDir(t)
	cfg := markdownConfig()
	cfg.OutputFormats = []string{"toml"}

	_, _, err := executeConvert(t, cfg, "", "app.conf", "-o", "app.json")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(testutil.ReadFile(t, dir, "app.json"), "{\n"))
}

func TestConvert_JSONOutput(t *testing.T) {
	testutil.SetupWorkDir(t)
	cfg := config.Default()
	cfg.OutputFormat = string(output.ModeJSON)
	cfg.OutputFormats = []string{"yaml"}

	out, _, err := executeConvert(t, cfg, "", "app.conf")
	require.NoError(t, err)

	var got output.ConvertOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "app.conf", got.Input)
	assert.Equal(t, 1, got.Succeeded)
	assert.Zero(t, got.Failed)
	require.Len(t, got.Targets, 1)
	assert.Equal(t, "yaml", got.Targets[0].Format)
	assert.Positive(t, got.Targets[0].Bytes)
}

func TestConvert_Stdout(t *testing.T) {
	testutil.SetupWorkDir(t)
	cfg := markdownConfig()
	cfg.InputFormat = "yaml"
	cfg.OutputFormats = []string{"json"}

	out, _, err := executeConvert(t, cfg, "b: 1\na: x\n", "-", "--stdout")
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"b\": 1,\n  \"a\": \"x\"\n}\n", out)
}

func TestConvert_Errors(t *testing.T) {
	tests := []struct {
		name      string
		formats   []string
		input     string
		args      []string
		errSubstr string
	}{
		{
			name:      "stdout without a single format",
			args:      []string{"app.conf", "--stdout"},
			errSubstr: "exactly one output format",
		},
		{
			name:      "stdout with watch",
			formats:   []string{"json"},
			args:      []string{"app.conf", "--stdout", "--watch"},
			errSubstr: "cannot be combined",
		},
		{
			name:      "stdin without format",
			formats:   []string{"json"},
			args:      []string{"-"},
			errSubstr: "cannot determine input format",
		},
		{
			name:      "unknown output extension",
			args:      []string{"app.conf", "-o", "app.csv"},
			errSubstr: "cannot determine output format",
		},
		{
			name:      "output overwrites input",
			args:      []string{"app.conf"},
			errSubstr: "overwrite the input",
		},
		{
			name:      "missing input",
			formats:   []string{"json"},
			args:      []string{"missing.conf"},
			errSubstr: "failed to read input",
		},
		{
			name:      "no arguments",
			args:      []string{},
			errSubstr: "accepts 1 arg",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testutil.SetupWorkDir(t)
			cfg := markdownConfig()
			cfg.OutputFormats = tt.formats

			_, _, err := executeConvert(t, cfg, tt.input, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestConvert_FailedTargetIsReported(t *testing.T) {
	dir := testutil.SetupWorkDir(t)
	testutil.WriteFile(t, dir, "blocked", "")

	out, _, err := executeConvert(t, markdownConfig(), "", "app.conf", "-o", "blocked/app.json", "-o", "app.yaml")
	require.Error(t, err)
	assert.Equal(t, "1 of 2 targets failed", err.Error())

	assert.Contains(t, out, "`failed`")
	assert.Contains(t, out, "- app.yaml `success`")
	assert.NotContains(t, out, "Wrote")

	_, statErr := os.Stat(filepath.Join(dir, "app.yaml"))
	assert.NoError(t, statErr)
}

func TestDisplayPath(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	wd, err := os.Getwd()
	require.NoError(t, err)

	assert.Equal(t, "<stdin>", displayPath("-"))
	assert.Equal(t, filepath.Join("a", "b.json"), displayPath(filepath.Join(wd, "a", "b.json")))
	outside := filepath.Join(filepath.Dir(wd), "other.json")
	assert.Equal(t, outside, displayPath(outside))
}
