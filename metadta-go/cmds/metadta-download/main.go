package main

import (
	"log"

	arg "github.com/alexflint/go-arg"

	"github.com/pippaduckett1/MetaDTA/metadta-go/config"
	"github.com/pippaduckett1/MetaDTA/metadta-go/dataset"
)

func fail(err error) {
	if err != nil {
		panic(err)
	}
}

// metadta-download fetches missing dataset artifacts ahead of a run, so
// training hosts without remote access can be primed from a machine that
// has it.
func main() {
	def := config.Default()
	args := struct {
		Dataset string `help:"dataset selector"`
		DataDir string `help:"local dataset directory"`
		BaseURL string `arg:"required" help:"remote base: a local path, http(s) URL or s3 URI"`
	}{
		Dataset: def.Dataset,
		DataDir: def.DataDir,
	}
	arg.MustParse(&args)

	cfg := def
	cfg.Dataset = args.Dataset
	cfg.DataDir = args.DataDir
	cfg.BaseURL = args.BaseURL
	fail(cfg.Validate())

	fail(dataset.Download(cfg))
	log.Printf("dataset %s is ready under %s", cfg.Dataset, dataset.Dir(cfg))
}
