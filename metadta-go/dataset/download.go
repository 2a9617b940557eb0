package dataset

import (
	"io"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/pippaduckett1/MetaDTA/metadta-go/config"
	"github.com/pippaduckett1/MetaDTA/metadta-golib/errors"
	"github.com/pippaduckett1/MetaDTA/metadta-golib/fileutil"
)

// Download fetches missing dataset artifacts into {datadir}/{dataset} from
// {baseurl}/{dataset}/{artifact}. Artifacts already present locally are left
// alone. A missing artifact with no BaseURL configured is a setup error.
func Download(cfg config.Config) error {
	dir := Dir(cfg)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, "creating data dir %s", dir)
	}
	for _, name := range []string{TrainFile, ValidFile, TestFile, ECFPFile} {
		local := filepath.Join(dir, name)
		if fileutil.Exists(local) {
			continue
		}
		if cfg.BaseURL == "" {
			return errors.Errorf("dataset artifact %s is missing and no baseurl is configured", local)
		}
		remote := fileutil.Join(cfg.BaseURL, cfg.Dataset, name)
		if err := fetch(remote, local); err != nil {
			return err
		}
	}
	return nil
}

// fetch copies a remote artifact to a temp file and renames it into place,
// so a partial download never looks like a complete artifact.
func fetch(remote, local string) error {
	r, err := fileutil.NewReader(remote)
	if err != nil {
		return errors.Wrapf(err, "opening %s", remote)
	}
	defer r.Close()

	tmp, err := ioutil.TempFile(filepath.Dir(local), ".fetch-")
	if err != nil {
		return errors.Wrapf(err, "creating temp file for %s", local)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "downloading %s", remote)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "flushing %s", tmp.Name())
	}
	return errors.WrapfOrNil(os.Rename(tmp.Name(), local), "placing %s", local)
}
