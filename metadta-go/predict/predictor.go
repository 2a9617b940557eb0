package predict

import (
	"github.com/pippaduckett1/MetaDTA/metadta-go/episode"
	"github.com/pippaduckett1/MetaDTA/metadta-golib/autograd"
	"github.com/pippaduckett1/MetaDTA/metadta-golib/tensor"
)

// Output is one forward pass over a batch.
type Output struct {
	// YPred is the expected affinity per target position, (B, T, 1). It is
	// defined for every position, padding included.
	YPred *tensor.T
	// Sigma is the predictive standard deviation per position, (B, T, 1),
	// non-negative.
	Sigma *tensor.T
	// KL is the latent regularizer averaged over the batch. Exactly 0 when
	// the latent path is disabled.
	KL float64
	// Loss is the scalar training objective, a root of the autodiff graph
	// when gradients are enabled.
	Loss *autograd.Scalar
}

// Predictor is the episodic model contract the training loop depends on.
// A predictor conditions on the context set and the target fingerprints
// only: target labels reach it solely through the loss. Callers must hand
// it batches satisfying episode.Batch.Validate; shapes are not re-checked
// per position.
type Predictor interface {
	// Forward runs the model over one batch.
	Forward(batch episode.Batch) (*Output, error)
	// Params returns every trainable vector, in a stable order.
	Params() []*autograd.Vec
	// SetTraining switches between training behavior (latent sampling) and
	// evaluation behavior (posterior mean).
	SetTraining(on bool)
}
