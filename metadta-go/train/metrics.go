package train

import (
	"math"

	"github.com/montanaflynn/stats"

	"github.com/pippaduckett1/MetaDTA/metadta-go/episode"
	"github.com/pippaduckett1/MetaDTA/metadta-go/predict"
	"github.com/pippaduckett1/MetaDTA/metadta-golib/errors"
)

// Metrics are the per-epoch scalars.
type Metrics struct {
	MAE  float64
	Loss float64
}

// Aggregator accumulates query-region predictions and truths across one
// epoch. Only positions past the support prefix count, and only where the
// raw affinity is strictly positive: an affinity of exactly 0 is the
// padding sentinel, never a measurement. Each epoch gets a fresh
// aggregator.
type Aggregator struct {
	truths []float64
	preds  []float64
	losses []float64
}

// Observe folds in one batch of model output.
func (a *Aggregator) Observe(b episode.Batch, out *predict.Output) {
	for i := 0; i < b.Size(); i++ {
		for j := b.SupportSize; j < b.TargetLen(); j++ {
			yf := b.TargetYf.At(i, j, 0)
			if yf <= 0 {
				continue
			}
			a.truths = append(a.truths, yf)
			a.preds = append(a.preds, out.YPred.At(i, j, 0))
		}
	}
	a.losses = append(a.losses, out.Loss.Data)
}

// Count returns the number of collected truth/prediction pairs.
func (a *Aggregator) Count() int { return len(a.truths) }

// Truths returns the collected query-region labels.
func (a *Aggregator) Truths() []float64 { return a.truths }

// Metrics computes the epoch MAE over the collected pairs and the
// unweighted mean of the per-batch losses. An epoch with no unmasked query
// position has no defined MAE and is reported as an error, never a NaN.
func (a *Aggregator) Metrics() (Metrics, error) {
	if len(a.truths) == 0 {
		return Metrics{}, errors.Errorf("no labeled query positions were observed this epoch")
	}
	abs := make([]float64, len(a.truths))
	for i, truth := range a.truths {
		abs[i] = math.Abs(truth - a.preds[i])
	}
	mae, err := stats.Mean(abs)
	if err != nil {
		return Metrics{}, errors.Wrapf(err, "computing epoch mae")
	}
	loss, err := stats.Mean(a.losses)
	if err != nil {
		return Metrics{}, errors.Wrapf(err, "computing epoch loss")
	}
	return Metrics{MAE: mae, Loss: loss}, nil
}
