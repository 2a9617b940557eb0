package train

import (
	"os"
	"path/filepath"

	"github.com/pippaduckett1/MetaDTA/metadta-go/config"
	"github.com/pippaduckett1/MetaDTA/metadta-go/predict"
	"github.com/pippaduckett1/MetaDTA/metadta-golib/errors"
	"github.com/pippaduckett1/MetaDTA/metadta-golib/serialization"
)

// CheckpointFile is the best-model artifact name inside the run directory.
const CheckpointFile = "model.gob.gz"

// Checkpoint is the persisted best-model record: parameter and optimizer
// snapshots plus the full run configuration that produced them.
type Checkpoint struct {
	ModelState     predict.ModelState
	OptimizerState predict.OptimizerState
	Config         config.Config
}

// RunDir returns the per-run directory under the log dir.
func RunDir(cfg config.Config) string {
	return filepath.Join(cfg.LogDir, cfg.Name)
}

// CheckpointPath returns the best-model path for a run.
func CheckpointPath(cfg config.Config) string {
	return filepath.Join(RunDir(cfg), CheckpointFile)
}

// SaveCheckpoint writes the record next to its final path and renames it
// into place, so a crash mid-write never leaves a truncated checkpoint
// where readers look.
func SaveCheckpoint(path string, ckpt Checkpoint) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrapf(err, "creating run dir for %s", path)
	}
	tmp := filepath.Join(filepath.Dir(path), ".tmp-"+filepath.Base(path))
	if err := serialization.Encode(tmp, ckpt); err != nil {
		os.Remove(tmp)
		return errors.Wrapf(err, "encoding checkpoint %s", path)
	}
	return errors.WrapfOrNil(os.Rename(tmp, path), "placing checkpoint %s", path)
}

// LoadCheckpoint reads a best-model record back.
func LoadCheckpoint(path string) (Checkpoint, error) {
	var ckpt Checkpoint
	if err := serialization.Decode(path, &ckpt); err != nil {
		return Checkpoint{}, errors.Wrapf(err, "loading checkpoint %s", path)
	}
	if len(ckpt.ModelState) == 0 {
		return Checkpoint{}, errors.Errorf("checkpoint %s holds no model state", path)
	}
	return ckpt, nil
}
