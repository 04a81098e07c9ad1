package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mistral-io/phaseanalysis/internal/phaseanalysis/sink"
)

const repoConfigDir = "../../../config/phaseanalysis"

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := RootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestCompare(t *testing.T) {
	out, err := execute(t, "compare", "1:2:3:4", "1:2:3:4:5")
	require.NoError(t, err)
	assert.Contains(t, out, "Edit distance:    1")
	assert.Contains(t, out, "Similarity:       0.800")
	assert.Contains(t, out, "Phases:           1 / 1")
	assert.Contains(t, out, "Phase similarity: 0.800")
}

func TestCompare_InvalidCoding(t *testing.T) {
	_, err := execute(t, "compare", "1:x", "1")
	assert.ErrorContains(t, err, "first coding")

	_, err = execute(t, "compare", "1")
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Version:")
	assert.Contains(t, out, "Go version:")
}

// parsedRunCmd returns the run command with args parsed, reading the base configuration from the repository.
func parsedRunCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd, _, err := RootCmd().Find([]string{"run"})
	require.NoError(t, err)
	require.NoError(t, cmd.ParseFlags(append([]string{"--" + configDirFlag, repoConfigDir}, args...)))
	return cmd
}

func TestLoadConfig_Defaults(t *testing.T) {
	c, err := loadConfig(parsedRunCmd(t))
	require.NoError(t, err)
	assert.Equal(t, 1_000_000, c.NRows)
	assert.Equal(t, 1000, c.BatchSize)
	assert.Equal(t, 0.7, c.MinSimilarity)
	assert.Equal(t, 72, c.NumWorkers)
	assert.Equal(t, 1, c.Phases.MinPhaseLength)
	assert.False(t, c.GateOnChannels)
	assert.Equal(t, []sink.Type{sink.Csv}, c.Output.Sinks)
	assert.Equal(t, 3, c.Output.MaxAttempts)
	assert.Equal(t, 10*time.Second, c.Output.MaxBackoff)
	assert.Equal(t, "5432", c.Output.Postgres.Connection["port"])
}

func TestLoadConfig_FlagsAndFilesOverride(t *testing.T) {
	override := filepath.Join(t.TempDir(), "override.yaml")
	require.NoError(t, os.WriteFile(override, []byte("batchSize: 50\noutput:\n  sinks: [csv, sqlite]\n"), 0o600))

	cmd := parsedRunCmd(t, "--"+configFlag, override, "--nrows", "10", "--minSimilarity", "0.9", "--dataset", "jobs.csv")

	c, err := loadConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, 10, c.NRows)
	assert.Equal(t, 50, c.BatchSize)
	assert.Equal(t, 0.9, c.MinSimilarity)
	assert.Equal(t, "jobs.csv", c.Dataset.Path)
	assert.Equal(t, []sink.Type{sink.Csv, sink.Sqlite}, c.Output.Sinks)
}

func TestLoadConfig_Invalid(t *testing.T) {
	_, err := loadConfig(parsedRunCmd(t, "--batchSize", "0"))
	assert.ErrorContains(t, err, "invalid configuration")
}
