package main

import (
	"context"
	"log"
	"math/rand"

	arg "github.com/alexflint/go-arg"

	"github.com/pippaduckett1/MetaDTA/metadta-go/dataset"
	"github.com/pippaduckett1/MetaDTA/metadta-go/predict"
	"github.com/pippaduckett1/MetaDTA/metadta-go/train"
)

func fail(err error) {
	if err != nil {
		panic(err)
	}
}

// metadta-eval reruns the held-out test evaluation for a finished run from
// its best checkpoint. The run configuration comes out of the checkpoint;
// only the data location and console behavior can be overridden.
func main() {
	args := struct {
		Checkpoint string `help:"path to a best-model checkpoint"`
		DataDir    string `help:"override the dataset directory"`
		Split      string `help:"which split to evaluate: test or valid"`
		NoProgress bool   `help:"disable progress bars"`
	}{
		Checkpoint: "./runs/default/" + train.CheckpointFile,
		Split:      "test",
	}
	arg.MustParse(&args)

	ckpt, err := train.LoadCheckpoint(args.Checkpoint)
	fail(err)
	cfg := ckpt.Config
	if args.DataDir != "" {
		cfg.DataDir = args.DataDir
	}
	cfg.NoProgress = cfg.NoProgress || args.NoProgress

	data, err := dataset.LoadData(cfg)
	fail(err)
	sets, err := dataset.BuildSets(cfg, data)
	fail(err)

	ds := sets.Test
	if args.Split == "valid" {
		ds = sets.Valid
	} else if args.Split != "test" {
		log.Fatalf("unknown split %q", args.Split)
	}
	loader := dataset.NewLoader(ds, dataset.FewShotCollator{SupportSize: dataset.SupportSize}, dataset.Opts{
		BatchSize:  cfg.BatchSize,
		NumWorkers: cfg.NumWorkers,
		Seed:       cfg.Seed,
	})

	model, err := predict.NewLatentBinModel(cfg, data.Fingerprints.Dim, sets.Binner.Centers(), rand.New(rand.NewSource(cfg.Seed)))
	fail(err)
	fail(model.Restore(ckpt.ModelState))

	metrics, err := train.Evaluate(context.Background(), model, loader, cfg.NoProgress)
	fail(err)
	log.Printf("%s: %s_loss:%.3f | %s_mae:%.3f", cfg.Name, args.Split, metrics.Loss, args.Split, metrics.MAE)
}
