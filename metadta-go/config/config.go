package config

import (
	"github.com/pippaduckett1/MetaDTA/metadta-golib/errors"
)

// Config captures a single training or evaluation run. It is built once at
// startup from CLI flags and passed explicitly through every component;
// nothing mutates it after parse, and the checkpoint embeds a copy.
type Config struct {
	// run identity
	Name    string
	Dataset string

	// model
	DModel        int
	NCA           int
	NSA           int
	UseLatentPath bool

	// data
	NBins     int
	SeqLen    int
	BatchSize int

	// training
	LR      float64
	NEpochs int

	// environment
	DataDir    string
	LogDir     string
	BaseURL    string
	NumWorkers int
	Patience   int
	Seed       int64
	NoProgress bool
	NoChart    bool
}

// Default returns the values the CLIs start from, mirroring the published
// training recipe.
func Default() Config {
	return Config{
		Name:       "default",
		Dataset:    "default",
		DModel:     128,
		NCA:        2,
		NSA:        2,
		NBins:      32,
		SeqLen:     512,
		BatchSize:  32,
		LR:         1e-4,
		NEpochs:    1000,
		DataDir:    "./data/",
		LogDir:     "./runs/",
		NumWorkers: 8,
		Seed:       42,
	}
}

// Validate reports the first configuration error. Configuration errors are
// fatal at startup; nothing downstream re-checks these.
func (c Config) Validate() error {
	switch {
	case c.Name == "":
		return errors.Errorf("name must not be empty")
	case c.Dataset == "":
		return errors.Errorf("dataset must not be empty")
	case c.DModel < 1:
		return errors.Errorf("dmodel must be positive, got %d", c.DModel)
	case c.NCA < 1:
		return errors.Errorf("nca must be positive, got %d", c.NCA)
	case c.NSA < 1:
		return errors.Errorf("nsa must be positive, got %d", c.NSA)
	case c.NBins < 2:
		return errors.Errorf("nbins must be at least 2, got %d", c.NBins)
	case c.SeqLen < 2:
		return errors.Errorf("seqlen must be at least 2, got %d", c.SeqLen)
	case c.BatchSize < 1:
		return errors.Errorf("batchsize must be positive, got %d", c.BatchSize)
	case c.LR <= 0:
		return errors.Errorf("lr must be positive, got %g", c.LR)
	case c.NEpochs < 1:
		return errors.Errorf("nepochs must be positive, got %d", c.NEpochs)
	case c.NumWorkers < 1:
		return errors.Errorf("numworkers must be positive, got %d", c.NumWorkers)
	case c.Patience < 0:
		return errors.Errorf("patience must not be negative, got %d", c.Patience)
	case c.DataDir == "":
		return errors.Errorf("datadir must not be empty")
	case c.LogDir == "":
		return errors.Errorf("logdir must not be empty")
	}
	return nil
}
