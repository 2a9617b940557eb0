package dataset

import (
	"path/filepath"

	"github.com/pippaduckett1/MetaDTA/metadta-go/config"
	"github.com/pippaduckett1/MetaDTA/metadta-golib/errors"
)

// Artifact names inside {datadir}/{dataset}/.
const (
	TrainFile = "train.csv.gz"
	ValidFile = "valid.csv.gz"
	TestFile  = "test.csv.gz"
	ECFPFile  = "ecfp.gob.gz"
)

// Data bundles the three interaction splits and the fingerprint matrix.
type Data struct {
	Train []Interaction
	Valid []Interaction
	Test  []Interaction

	Fingerprints *Fingerprints
}

// Dir returns the local directory holding cfg.Dataset's artifacts.
func Dir(cfg config.Config) string {
	return filepath.Join(cfg.DataDir, cfg.Dataset)
}

// LoadData reads a prepared dataset from cfg.DataDir, checking that every
// referenced ligand has a fingerprint row.
func LoadData(cfg config.Config) (*Data, error) {
	dir := Dir(cfg)

	fps, err := LoadFingerprints(filepath.Join(dir, ECFPFile))
	if err != nil {
		return nil, err
	}

	d := &Data{Fingerprints: fps}
	splits := []struct {
		name string
		dst  *[]Interaction
	}{
		{TrainFile, &d.Train},
		{ValidFile, &d.Valid},
		{TestFile, &d.Test},
	}
	for _, split := range splits {
		rows, err := ReadInteractions(filepath.Join(dir, split.name))
		if err != nil {
			return nil, err
		}
		for i, r := range rows {
			if r.Ligand >= fps.NumLigands {
				return nil, errors.Errorf("%s row %d: ligand %d has no fingerprint row (matrix holds %d)",
					split.name, i, r.Ligand, fps.NumLigands)
			}
		}
		*split.dst = rows
	}
	return d, nil
}

// Sets bundles the per-split episode datasets sharing one binner.
type Sets struct {
	Train *MetaDataset
	Valid *MetaDataset
	Test  *MetaDataset

	Binner Binner
}

// BuildSets fits the affinity binner on the training split and materializes
// the three episode datasets against it.
func BuildSets(cfg config.Config, data *Data) (Sets, error) {
	binner, err := NewBinner(data.Train, cfg.NBins)
	if err != nil {
		return Sets{}, err
	}

	train, err := NewMetaDataset(data.Train, data.Fingerprints, binner, cfg.SeqLen, SupportSize)
	if err != nil {
		return Sets{}, errors.Wrapf(err, "building train episodes")
	}
	valid, err := NewMetaDataset(data.Valid, data.Fingerprints, binner, cfg.SeqLen, SupportSize)
	if err != nil {
		return Sets{}, errors.Wrapf(err, "building valid episodes")
	}
	test, err := NewMetaDataset(data.Test, data.Fingerprints, binner, cfg.SeqLen, SupportSize)
	if err != nil {
		return Sets{}, errors.Wrapf(err, "building test episodes")
	}
	return Sets{Train: train, Valid: valid, Test: test, Binner: binner}, nil
}
