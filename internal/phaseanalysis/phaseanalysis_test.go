package phaseanalysis

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mistral-io/phaseanalysis/internal/common/logging"
	"github.com/mistral-io/phaseanalysis/internal/common/runctx"
	"github.com/mistral-io/phaseanalysis/internal/phaseanalysis/configuration"
	"github.com/mistral-io/phaseanalysis/internal/phaseanalysis/sink"
)

const datasetHeader = "jobid,md_file_create,md_file_delete,md_mod,md_other,md_read,read_bytes,read_calls,write_bytes,write_calls," +
	"coding_abs,coding_abs_aggzeros,elapsed,partition,state,ntasks,ntasks_per_node,start,end"

func writeDataset(t *testing.T, dir string, records ...string) string {
	t.Helper()
	path := filepath.Join(dir, "job_codings.csv")
	contents := datasetHeader + "\n" + strings.Join(records, "\n") + "\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func datasetRecord(jobId string, abs string) string {
	return jobId + ",0,0,0,0,0," + abs + ",0,0,0," + abs + "," + abs + ",600,compute,COMPLETED,4,1,2020-01-01,2020-01-02"
}

func testConfig(datasetPath string, outputPath string) configuration.PhaseAnalysisConfiguration {
	return configuration.PhaseAnalysisConfiguration{
		Dataset:       configuration.DatasetConfig{Path: datasetPath},
		Phases:        configuration.PhasesConfig{MinPhaseLength: 1},
		NRows:         1_000_000,
		BatchSize:     2,
		MinSimilarity: 0.7,
		NumWorkers:    3,
		Output: sink.Config{
			Sinks:       []sink.Type{sink.Csv},
			Csv:         sink.CsvConfig{Path: outputPath},
			MaxAttempts: 1,
			MaxBackoff:  time.Millisecond,
		},
		Logging: logging.DefaultConfig(),
	}
}

func readOutput(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	datasetPath := writeDataset(t, dir,
		datasetRecord("1", "256:256:0:0:38"),
		datasetRecord("2", "256:256:0:0:38"),
		datasetRecord("3", "0:0:0"),
		datasetRecord("4", "7:7:7:7:7:7:7:7:7:7"),
		datasetRecord("5", "256:256:0:0:38"),
	)
	outputPath := filepath.Join(dir, "similarity.csv")

	summary, err := Run(runctx.Discard(), testConfig(datasetPath, outputPath))
	require.NoError(t, err)

	assert.Len(t, summary.RunId, 26)
	assert.Equal(t, 5, summary.Records)
	assert.Equal(t, 1, summary.Dropped)
	assert.Equal(t, 4, summary.Jobs)
	assert.Equal(t, 3, summary.Units)
	assert.Equal(t, 2, summary.Cycles)
	assert.Equal(t, 6, summary.Received)
	assert.Equal(t, 3, summary.Emitted)

	records := readOutput(t, outputPath)
	require.Len(t, records, 4)
	assert.Equal(t, []string{"jobid_1", "jobid_2", "num_phases_1", "num_phases_2", "sim_abs", "sim_abs_aggzeros", "sim_hex", "sim_phases"}, records[0])
	pairs := map[string]bool{}
	for _, r := range records[1:] {
		pairs[r[0]+"-"+r[1]] = true
		assert.Equal(t, "1", r[4])
	}
	assert.Equal(t, map[string]bool{"1-2": true, "1-5": true, "2-5": true}, pairs)
}

func TestRun_NRowsLimitsComparisons(t *testing.T) {
	dir := t.TempDir()
	datasetPath := writeDataset(t, dir,
		datasetRecord("1", "1:1"),
		datasetRecord("2", "1:1"),
		datasetRecord("3", "1:1"),
	)
	config := testConfig(datasetPath, filepath.Join(dir, "similarity.csv"))
	config.NRows = 2

	summary, err := Run(runctx.Discard(), config)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Units)
	assert.Equal(t, 1, summary.Received)
	assert.Len(t, readOutput(t, config.Output.Csv.Path), 2)
}

func TestRun_MissingDataset(t *testing.T) {
	dir := t.TempDir()
	_, err := Run(runctx.Discard(), testConfig(filepath.Join(dir, "missing.csv"), filepath.Join(dir, "similarity.csv")))
	assert.ErrorContains(t, err, "unable to open dataset")
}

func TestRun_MalformedDataset(t *testing.T) {
	dir := t.TempDir()
	datasetPath := writeDataset(t, dir, datasetRecord("1", "1:1"), datasetRecord("two", "1:1"))
	_, err := Run(runctx.Discard(), testConfig(datasetPath, filepath.Join(dir, "similarity.csv")))
	assert.ErrorContains(t, err, "malformed record on line 3")
}

func TestRun_UnwritableOutput(t *testing.T) {
	dir := t.TempDir()
	datasetPath := writeDataset(t, dir, datasetRecord("1", "1:1"))
	_, err := Run(runctx.Discard(), testConfig(datasetPath, filepath.Join(dir, "missing", "similarity.csv")))
	assert.ErrorContains(t, err, "error opening csv sink")
}

func TestRun_Cancelled(t *testing.T) {
	dir := t.TempDir()
	records := make([]string, 50)
	for i := range records {
		records[i] = datasetRecord(strconv.Itoa(i+1), "1:2:3")
	}
	datasetPath := writeDataset(t, dir, records...)
	ctx, cancel := runctx.WithCancel(runctx.Discard())
	cancel()
	_, err := Run(ctx, testConfig(datasetPath, filepath.Join(dir, "similarity.csv")))
	assert.ErrorIs(t, err, context.Canceled)
}
