package dataset

import (
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"

	"github.com/gocarina/gocsv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pippaduckett1/MetaDTA/metadta-go/config"
	"github.com/pippaduckett1/MetaDTA/metadta-golib/serialization"
)

func writeInteractionsGz(t *testing.T, path string, rows []Interaction) {
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := gzip.NewWriter(f)
	require.NoError(t, gocsv.Marshal(&rows, zw))
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
}

// writeDatasetFixture lays out a complete artifact directory: two targets
// with 20 interactions each, so episodes clear the production support size.
func writeDatasetFixture(t *testing.T, dir string) {
	require.NoError(t, os.MkdirAll(dir, 0755))
	writeInteractionsGz(t, filepath.Join(dir, TrainFile), testInteractions(2, 20))
	writeInteractionsGz(t, filepath.Join(dir, ValidFile), testInteractions(2, 20))
	writeInteractionsGz(t, filepath.Join(dir, TestFile), testInteractions(2, 20))
	require.NoError(t, serialization.Encode(filepath.Join(dir, ECFPFile), testFingerprints(40, 8)))
}

func testConfig(t *testing.T) config.Config {
	cfg := config.Default()
	cfg.DataDir = t.TempDir()
	cfg.Dataset = "kiba"
	return cfg
}

func TestLoadData(t *testing.T) {
	cfg := testConfig(t)
	writeDatasetFixture(t, Dir(cfg))

	d, err := LoadData(cfg)
	require.NoError(t, err)
	assert.Len(t, d.Train, 40)
	assert.Len(t, d.Valid, 40)
	assert.Len(t, d.Test, 40)
	assert.Equal(t, 8, d.Fingerprints.Dim)
	assert.Equal(t, 40, d.Fingerprints.NumLigands)
}

func TestLoadDataMissingArtifacts(t *testing.T) {
	_, err := LoadData(testConfig(t))
	require.Error(t, err)
}

func TestLoadDataRejectsUnknownLigand(t *testing.T) {
	cfg := testConfig(t)
	dir := Dir(cfg)
	writeDatasetFixture(t, dir)

	// a train row referencing a ligand beyond the fingerprint matrix
	rows := testInteractions(2, 20)
	rows[0].Ligand = 99
	writeInteractionsGz(t, filepath.Join(dir, TrainFile), rows)

	_, err := LoadData(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no fingerprint row")
}

func TestBuildSets(t *testing.T) {
	cfg := testConfig(t)
	writeDatasetFixture(t, Dir(cfg))
	d, err := LoadData(cfg)
	require.NoError(t, err)

	sets, err := BuildSets(cfg, d)
	require.NoError(t, err)
	assert.Equal(t, 2, sets.Train.Len())
	assert.Equal(t, 2, sets.Valid.Len())
	assert.Equal(t, 2, sets.Test.Len())
	assert.Equal(t, cfg.NBins, sets.Binner.NBins)

	// the shared binner comes from the train split's observed range
	assert.Equal(t, 1.0, sets.Binner.Min)
	assert.Equal(t, 40.0, sets.Binner.Max)
}
