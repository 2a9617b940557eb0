package dataset

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownloadFetchesMissingArtifacts(t *testing.T) {
	remote := t.TempDir()
	cfg := testConfig(t)
	cfg.BaseURL = remote
	writeDatasetFixture(t, filepath.Join(remote, cfg.Dataset))

	require.NoError(t, Download(cfg))

	for _, name := range []string{TrainFile, ValidFile, TestFile, ECFPFile} {
		_, err := os.Stat(filepath.Join(Dir(cfg), name))
		assert.NoError(t, err, name)
	}

	// and the fetched artifacts actually load
	_, err := LoadData(cfg)
	require.NoError(t, err)
}

func TestDownloadKeepsExistingArtifacts(t *testing.T) {
	remote := t.TempDir()
	cfg := testConfig(t)
	cfg.BaseURL = remote
	writeDatasetFixture(t, filepath.Join(remote, cfg.Dataset))

	// pre-place one artifact with sentinel content
	require.NoError(t, os.MkdirAll(Dir(cfg), 0755))
	sentinel := filepath.Join(Dir(cfg), TrainFile)
	require.NoError(t, ioutil.WriteFile(sentinel, []byte("sentinel"), 0644))

	require.NoError(t, Download(cfg))

	got, err := ioutil.ReadFile(sentinel)
	require.NoError(t, err)
	assert.Equal(t, "sentinel", string(got))
}

func TestDownloadRequiresBaseURL(t *testing.T) {
	cfg := testConfig(t)
	err := Download(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "baseurl")
}
