package dataset

import (
	"compress/gzip"
	"io"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/pippaduckett1/MetaDTA/metadta-golib/errors"
	"github.com/pippaduckett1/MetaDTA/metadta-golib/fileutil"
)

// Interaction is one measured ligand-target binding affinity in a
// coordinate-format table. Affinities are positive by contract (pKd/pKi
// style); zero is reserved for padding.
type Interaction struct {
	Ligand   int     `csv:"ligand"`
	Target   int     `csv:"target"`
	Affinity float64 `csv:"affinity"`
}

// ReadInteractions loads an interaction table from a local path, URL or S3
// URI, gunzipping .gz files, and enforces the positive-affinity contract.
func ReadInteractions(path string) ([]Interaction, error) {
	r, err := fileutil.NewReader(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening interaction table %s", path)
	}
	defer r.Close()

	var in io.Reader = r
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, errors.Wrapf(err, "gunzipping %s", path)
		}
		defer gz.Close()
		in = gz
	}

	var rows []Interaction
	if err := gocsv.Unmarshal(in, &rows); err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}
	for i, row := range rows {
		if row.Ligand < 0 || row.Target < 0 {
			return nil, errors.Errorf("%s row %d: negative ligand or target id", path, i)
		}
		if row.Affinity <= 0 {
			return nil, errors.Errorf("%s row %d: affinity %g is not positive, zero is reserved for padding", path, i, row.Affinity)
		}
	}
	return rows, nil
}
