package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/disperse-validator/internal/config"
	"github.com/ginjaninja78/disperse-validator/internal/report"
)

var (
	addrA = "0xAAAA" + strings.Repeat("0", 35) + "1"
	addrB = "0xBBBB" + strings.Repeat("0", 35) + "2"
)

// resetFlags restores flag variables between runs of the shared rootCmd.
func resetFlags() {
	cfgFile = config.DefaultPath
	verbose = false
	logLevel = "error"
	validateFormat = string(report.FormatText)
	validateStrict = false
	resolvePolicy = ""
	resolveOutput = ""
	resolveWrite = false
	dryRun = false
	filePath = ""
	serveAddr = ""
}

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	resetFlags()

	var stdout, stderr bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(append(args, "--log-level", "error"))

	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

// writeConfig writes a config.yaml rooted in a temporary directory.
func writeConfig(t *testing.T, extra string) (string, string) {
	t.Helper()
	root := t.TempDir()

	content := fmt.Sprintf(`input_dir: %s
output_dir: %s
input_archive_dir: %s
output_name_format: "{original}_{policy}.txt"
log_level: error
%s`,
		filepath.Join(root, "input"),
		filepath.Join(root, "output"),
		filepath.Join(root, "archive"),
		extra)

	path := filepath.Join(root, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "input"), 0o755))
	return path, root
}

func TestVersion(t *testing.T) {
	out, _, err := execute(t, "", "version")
	require.NoError(t, err)

	assert.Contains(t, out, "Disperse Validator")
	assert.Contains(t, out, "Version:    "+Version)
}

func TestValidate_CleanStdin(t *testing.T) {
	out, _, err := execute(t, addrA+"=1\n", "validate")
	require.NoError(t, err)

	assert.Equal(t, "No validation errors. 1 line(s) checked.\n", out)
}

func TestValidate_StrictExitsWithStatusOne(t *testing.T) {
	input := addrA + "=1\n" + strings.ToLower(addrA) + "=2\nnotanaddress"

	out, _, err := execute(t, input, "validate", "-", "--strict")

	var exit *exitError
	require.True(t, errors.As(err, &exit))
	assert.Equal(t, 1, exit.code)
	assert.Contains(t, out, "Line 3: Ethereum address and amount must be specified.")
	assert.Contains(t, out, "Duplicate addresses")
}

func TestValidate_NonStrictReportsWithoutFailing(t *testing.T) {
	_, _, err := execute(t, "junk", "validate")
	assert.NoError(t, err)
}

func TestValidate_YAMLReportForFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "list.csv")
	require.NoError(t, os.WriteFile(path, []byte(addrA+",1\n"+addrB+",-5\n"), 0o644))

	out, _, err := execute(t, "", "validate", path, "--format", "yaml")
	require.NoError(t, err)

	var decoded struct {
		Source string `yaml:"source"`
		Valid  bool   `yaml:"valid"`
		Errors []struct {
			Line int    `yaml:"line"`
			Kind string `yaml:"kind"`
		} `yaml:"errors"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, path, decoded.Source)
	assert.False(t, decoded.Valid)
	require.Len(t, decoded.Errors, 1)
	assert.Equal(t, 2, decoded.Errors[0].Line)
	assert.Equal(t, "amount_invalid", decoded.Errors[0].Kind)
}

func TestValidate_UnknownFormat(t *testing.T) {
	_, _, err := execute(t, "", "validate", "--format", "pdf")
	assert.Error(t, err)
}

func TestResolve_CombineBalanceToStdout(t *testing.T) {
	input := strings.Join([]string{addrA + "=10", strings.ToLower(addrA) + "=5", "notanaddress", addrB + "=3"}, "\n")

	out, stderr, err := execute(t, input, "resolve", "--policy", "combine-balance")
	require.NoError(t, err)

	assert.Equal(t, addrA+"=15\n"+addrB+"=3\n", out)
	assert.Empty(t, stderr)
}

func TestResolve_KeepFirstReportsRemainingDuplicates(t *testing.T) {
	input := addrA + "=10\n" + addrA + "=5"

	out, stderr, err := execute(t, input, "resolve", "-p", "keep-first")
	require.NoError(t, err)

	assert.Equal(t, input+"\n", out)
	assert.Contains(t, stderr, "Duplicate addresses")
}

func TestResolve_WriteInPlace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "list.txt")
	require.NoError(t, os.WriteFile(path, []byte(addrA+"=1\r\n"+addrA+"=1\r\n"), 0o644))

	_, _, err := execute(t, "", "resolve", path, "--policy", "keep-first", "--write")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, addrA+"=1\n", string(data))
}

func TestResolve_OutputFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "fixed.txt")

	_, _, err := execute(t, addrA+"=1\n"+addrA+"=2", "resolve", "-p", "combine-balance", "-o", out)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, addrA+"=3\n", string(data))
}

func TestResolve_InvalidUsage(t *testing.T) {
	_, _, err := execute(t, "x", "resolve", "--policy", "keep-first", "--write")
	assert.ErrorContains(t, err, "--write needs an input file")

	_, _, err = execute(t, "x", "resolve", "--policy", "shuffle")
	assert.Error(t, err)
}

func TestProcess_BatchWithConfig(t *testing.T) {
	cfgPath, root := writeConfig(t, "duplicate_policy: combine-balance\narchive_on_success: true\n")
	input := filepath.Join(root, "input")

	require.NoError(t, os.WriteFile(filepath.Join(input, "clean.txt"),
		[]byte(addrA+"=1\n"+addrA+"=2\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(input, "broken.txt"),
		[]byte(addrB+"=-1\n"), 0o644))

	out, _, err := execute(t, "", "process", "--config", cfgPath)
	require.NoError(t, err)

	assert.Contains(t, out, "Found 2 file(s) to process")
	assert.Contains(t, out, "✓ clean.txt")
	assert.Contains(t, out, "! broken.txt")

	data, err := os.ReadFile(filepath.Join(root, "output", "clean_combine-balance.txt"))
	require.NoError(t, err)
	assert.Equal(t, addrA+"=3\n", string(data))

	assert.FileExists(t, filepath.Join(root, "archive", "clean.txt"))
	assert.FileExists(t, filepath.Join(input, "broken.txt"))

	summaries, err := filepath.Glob(filepath.Join(root, "output", "processing_summary_*.txt"))
	require.NoError(t, err)
	assert.Len(t, summaries, 1)
}

func TestProcess_DryRunSingleFile(t *testing.T) {
	cfgPath, root := writeConfig(t, "")
	path := filepath.Join(root, "input", "one.txt")
	require.NoError(t, os.WriteFile(path, []byte(addrA+"=1"), 0o644))

	out, _, err := execute(t, "", "process", "--config", cfgPath, "--dry-run", "--file", path)
	require.NoError(t, err)

	assert.Contains(t, out, "Found 1 file(s) to process")
	assert.NoDirExists(t, filepath.Join(root, "output"))
}

func TestProcess_MissingFile(t *testing.T) {
	cfgPath, root := writeConfig(t, "")

	_, _, err := execute(t, "", "process", "--config", cfgPath, "--file", filepath.Join(root, "nope.txt"))
	assert.ErrorContains(t, err, "file not found")
}

func TestInvalidConfigFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: loud\n"), 0o644))

	_, _, err := execute(t, "", "validate", "--config", path)
	assert.ErrorContains(t, err, "failed to load main config")
}
