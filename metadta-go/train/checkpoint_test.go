package train

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pippaduckett1/MetaDTA/metadta-go/config"
	"github.com/pippaduckett1/MetaDTA/metadta-go/predict"
)

func TestCheckpointRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, CheckpointFile)

	cfg := config.Default()
	cfg.Name = "roundtrip"
	ckpt := Checkpoint{
		ModelState: predict.ModelState{
			"encoder.0.w0": {0.25, -1.5},
			"encoder.0.b":  {0.0, 3.0},
		},
		OptimizerState: predict.OptimizerState{
			M:    [][]float64{{0.1, 0.2}},
			V:    [][]float64{{0.01, 0.02}},
			Step: 7,
			LR:   3e-4,
		},
		Config: cfg,
	}
	require.NoError(t, SaveCheckpoint(path, ckpt))

	got, err := LoadCheckpoint(path)
	require.NoError(t, err)
	assert.Equal(t, ckpt.ModelState, got.ModelState)
	assert.Equal(t, ckpt.OptimizerState, got.OptimizerState)
	assert.Equal(t, "roundtrip", got.Config.Name)

	// no temp file is left behind
	entries, err := ioutil.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, CheckpointFile, entries[0].Name())
}

func TestCheckpointOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), CheckpointFile)

	first := Checkpoint{ModelState: predict.ModelState{"p": {1}}, Config: config.Default()}
	second := Checkpoint{ModelState: predict.ModelState{"p": {2}}, Config: config.Default()}
	require.NoError(t, SaveCheckpoint(path, first))
	require.NoError(t, SaveCheckpoint(path, second))

	got, err := LoadCheckpoint(path)
	require.NoError(t, err)
	assert.Equal(t, []float64{2}, got.ModelState["p"])
}

func TestLoadCheckpointMissing(t *testing.T) {
	_, err := LoadCheckpoint(filepath.Join(t.TempDir(), "absent.gob.gz"))
	require.Error(t, err)
}

func TestAppendSummaryAccumulates(t *testing.T) {
	path := filepath.Join(t.TempDir(), SummaryFile)
	cfg := config.Default()
	cfg.Name = "run-a"

	require.NoError(t, AppendSummary(path, cfg, 16, Metrics{MAE: 0.812, Loss: 2.345}))
	cfg.Name = "run-b"
	require.NoError(t, AppendSummary(path, cfg, 16, Metrics{MAE: 0.644, Loss: 2.001}))

	buf, err := ioutil.ReadFile(path)
	require.NoError(t, err)
	text := string(buf)
	assert.Contains(t, text, "run-a/default | Support Set Size: 16 | Test Metrics: loss:2.345 mae:0.812")
	assert.Contains(t, text, "run-b/default")
}

func TestRenderCurvesRequiresHistory(t *testing.T) {
	require.Error(t, RenderCurves(filepath.Join(t.TempDir(), CurvesFile), nil))
}

func TestRenderCurvesWritesPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), CurvesFile)
	history := []Point{
		{Epoch: 0, Train: Metrics{MAE: 1.2, Loss: 3.0}, Valid: Metrics{MAE: 1.4, Loss: 3.2}},
		{Epoch: 1, Train: Metrics{MAE: 1.0, Loss: 2.5}, Valid: Metrics{MAE: 1.1, Loss: 2.8}},
	}
	require.NoError(t, RenderCurves(path, history))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}
