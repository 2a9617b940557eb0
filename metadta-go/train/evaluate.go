package train

import (
	"context"

	"github.com/pippaduckett1/MetaDTA/metadta-go/dataset"
	"github.com/pippaduckett1/MetaDTA/metadta-go/episode"
	"github.com/pippaduckett1/MetaDTA/metadta-go/predict"
	"github.com/pippaduckett1/MetaDTA/metadta-golib/autograd"
)

// Evaluate runs the model over a held-out loader without gradient updates
// and returns the aggregate metrics. Episode sampling uses a fixed seed
// epoch, so repeated calls over the same loader with a frozen model are
// identical. The checkpoint is never touched.
func Evaluate(ctx context.Context, model predict.Predictor, loader *dataset.Loader, noProgress bool) (Metrics, error) {
	return runEval(ctx, model, loader, 0, "Test", noProgress)
}

func runEval(ctx context.Context, model predict.Predictor, loader *dataset.Loader, epoch int, desc string, noProgress bool) (Metrics, error) {
	model.SetTraining(false)
	autograd.SetGradEnabled(false)
	defer func() {
		autograd.SetGradEnabled(true)
		model.SetTraining(true)
	}()

	ictx, cancel := context.WithCancel(ctx)
	defer cancel()
	batches, errFn := loader.Batches(ictx, epoch)

	agg := &Aggregator{}
	err := forEachBatch(batches, loader.NumBatches(), desc, noProgress,
		func(b episode.Batch) error {
			out, err := model.Forward(b)
			if err != nil {
				return err
			}
			agg.Observe(b, out)
			return nil
		})
	if err != nil {
		return Metrics{}, err
	}
	if err := errFn(); err != nil {
		return Metrics{}, err
	}
	return agg.Metrics()
}
