package dataset

import (
	"github.com/pippaduckett1/MetaDTA/metadta-golib/errors"
	"github.com/pippaduckett1/MetaDTA/metadta-golib/serialization"
)

// Fingerprints is the dense ligand fingerprint matrix: row i holds the
// feature vector of ligand i.
type Fingerprints struct {
	NumLigands int
	Dim        int
	Bits       []float64
}

// LoadFingerprints decodes a fingerprint matrix artifact.
func LoadFingerprints(path string) (*Fingerprints, error) {
	var fp Fingerprints
	if err := serialization.Decode(path, &fp); err != nil {
		return nil, errors.Wrapf(err, "loading fingerprint matrix %s", path)
	}
	if fp.NumLigands < 1 || fp.Dim < 1 {
		return nil, errors.Errorf("%s: degenerate fingerprint shape (%d, %d)", path, fp.NumLigands, fp.Dim)
	}
	if len(fp.Bits) != fp.NumLigands*fp.Dim {
		return nil, errors.Errorf("%s: fingerprint matrix claims shape (%d, %d) but holds %d values",
			path, fp.NumLigands, fp.Dim, len(fp.Bits))
	}
	return &fp, nil
}

// Row returns ligand i's fingerprint as a view into the matrix.
func (f *Fingerprints) Row(i int) []float64 {
	return f.Bits[i*f.Dim : (i+1)*f.Dim]
}
