package main

import (
	"context"
	"log"
	"math/rand"
	"path/filepath"
	"time"

	arg "github.com/alexflint/go-arg"

	"github.com/pippaduckett1/MetaDTA/metadta-go/config"
	"github.com/pippaduckett1/MetaDTA/metadta-go/dataset"
	"github.com/pippaduckett1/MetaDTA/metadta-go/predict"
	"github.com/pippaduckett1/MetaDTA/metadta-go/train"
)

func fail(err error) {
	if err != nil {
		panic(err)
	}
}

func main() {
	start := time.Now()
	def := config.Default()
	args := struct {
		Name          string  `help:"run identifier"`
		Dataset       string  `help:"dataset selector"`
		DModel        int     `help:"hidden space dimension"`
		NCA           int     `help:"number of cross-attention layers"`
		NSA           int     `help:"number of self-attention layers"`
		UseLatentPath bool    `help:"enable the stochastic latent path"`
		NBins         int     `help:"number of affinity histogram bins"`
		SeqLen        int     `help:"ligand count per target episode"`
		BatchSize     int     `help:"episodes per batch"`
		LR            float64 `help:"base learning rate"`
		NEpochs       int     `help:"training epochs"`
		DataDir       string  `help:"local dataset directory"`
		LogDir        string  `help:"run output directory"`
		BaseURL       string  `help:"remote base for missing dataset artifacts"`
		NumWorkers    int     `help:"batch prefetch workers"`
		Patience      int     `help:"stop after this many non-improving epochs, 0 disables"`
		Seed          int64   `help:"run seed"`
		NoProgress    bool    `help:"disable progress bars"`
		NoChart       bool    `help:"skip the training-curve chart"`
	}{
		Name:       def.Name,
		Dataset:    def.Dataset,
		DModel:     def.DModel,
		NCA:        def.NCA,
		NSA:        def.NSA,
		NBins:      def.NBins,
		SeqLen:     def.SeqLen,
		BatchSize:  def.BatchSize,
		LR:         def.LR,
		NEpochs:    def.NEpochs,
		DataDir:    def.DataDir,
		LogDir:     def.LogDir,
		NumWorkers: def.NumWorkers,
		Seed:       def.Seed,
	}
	arg.MustParse(&args)

	cfg := config.Config{
		Name:          args.Name,
		Dataset:       args.Dataset,
		DModel:        args.DModel,
		NCA:           args.NCA,
		NSA:           args.NSA,
		UseLatentPath: args.UseLatentPath,
		NBins:         args.NBins,
		SeqLen:        args.SeqLen,
		BatchSize:     args.BatchSize,
		LR:            args.LR,
		NEpochs:       args.NEpochs,
		DataDir:       args.DataDir,
		LogDir:        args.LogDir,
		BaseURL:       args.BaseURL,
		NumWorkers:    args.NumWorkers,
		Patience:      args.Patience,
		Seed:          args.Seed,
		NoProgress:    args.NoProgress,
		NoChart:       args.NoChart,
	}
	fail(cfg.Validate())

	fail(dataset.Download(cfg))
	data, err := dataset.LoadData(cfg)
	fail(err)
	sets, err := dataset.BuildSets(cfg, data)
	fail(err)
	log.Printf("dataset %s: %d/%d/%d train/valid/test targets, fingerprint dim %d",
		cfg.Dataset, sets.Train.Len(), sets.Valid.Len(), sets.Test.Len(), data.Fingerprints.Dim)

	coll := dataset.FewShotCollator{SupportSize: dataset.SupportSize}
	trainLoader := dataset.NewLoader(sets.Train, coll, dataset.Opts{
		BatchSize:  cfg.BatchSize,
		NumWorkers: cfg.NumWorkers,
		Shuffle:    true,
		DropLast:   true,
		Seed:       cfg.Seed,
	})
	validLoader := dataset.NewLoader(sets.Valid, coll, dataset.Opts{
		BatchSize:  cfg.BatchSize,
		NumWorkers: cfg.NumWorkers,
		Seed:       cfg.Seed,
	})
	testLoader := dataset.NewLoader(sets.Test, coll, dataset.Opts{
		BatchSize:  cfg.BatchSize,
		NumWorkers: cfg.NumWorkers,
		Seed:       cfg.Seed,
	})

	rng := rand.New(rand.NewSource(cfg.Seed))
	model, err := predict.NewLatentBinModel(cfg, data.Fingerprints.Dim, sets.Binner.Centers(), rng)
	fail(err)
	opt := predict.NewAdam(model.Params(), cfg.LR)

	trainer := train.NewTrainer(cfg, model, opt, trainLoader, validLoader)
	res, err := trainer.Run(context.Background())
	fail(err)
	log.Printf("best validation loss %.3f at epoch %d", res.BestLoss, res.BestEpoch)

	testMetrics, err := train.Evaluate(context.Background(), model, testLoader, cfg.NoProgress)
	fail(err)
	log.Printf("test_loss:%.3f | test_mae:%.3f", testMetrics.Loss, testMetrics.MAE)

	fail(train.AppendSummary(train.SummaryFile, cfg, dataset.SupportSize, testMetrics))
	if !cfg.NoChart {
		fail(train.RenderCurves(filepath.Join(train.RunDir(cfg), train.CurvesFile), res.History))
	}
	log.Printf("done, took %v", time.Since(start))
}
