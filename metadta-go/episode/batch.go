package episode

import (
	"github.com/pippaduckett1/MetaDTA/metadta-golib/errors"
	"github.com/pippaduckett1/MetaDTA/metadta-golib/tensor"
)

// Batch is one collated batch of few-shot episodes. Each episode pairs a
// support set of known ligand-target affinities with a query set of unknown
// pairs for the same target protein.
//
// Shapes, with B the batch size, S the support size, T the target length
// and D the fingerprint dimension:
//
//	ContextX  (B, S, D)  support fingerprints
//	ContextY  (B, S, 1)  support affinity bins
//	TargetX   (B, T, D)  support fingerprints repeated, then query fingerprints
//	TargetY   (B, T, 1)  affinity bins for the full target region
//	TargetYf  (B, T, 1)  raw affinities; exactly 0 marks padding
//
// Episodes shorter than T are padded with zero rows; the zero raw affinity
// keeps padded positions out of losses and metrics.
type Batch struct {
	ContextX *tensor.T
	ContextY *tensor.T
	TargetX  *tensor.T
	TargetY  *tensor.T
	TargetYf *tensor.T

	// SupportSize is the number of leading target positions that repeat the
	// context. Everything at or past this index is the query region.
	SupportSize int
}

// Size returns the number of episodes in the batch.
func (b Batch) Size() int { return b.ContextX.Dim(0) }

// TargetLen returns the padded target-region length.
func (b Batch) TargetLen() int { return b.TargetX.Dim(1) }

// QueryLen returns the number of query positions per episode.
func (b Batch) QueryLen() int { return b.TargetX.Dim(1) - b.SupportSize }

// FeatureDim returns the fingerprint dimension.
func (b Batch) FeatureDim() int { return b.ContextX.Dim(2) }

// Validate checks the shape contract and the support-prefix invariant.
// Collators must only ever hand out valid batches; the predictor panics on a
// violation rather than guessing.
func (b Batch) Validate() error {
	if b.ContextX == nil || b.ContextY == nil || b.TargetX == nil || b.TargetY == nil || b.TargetYf == nil {
		return errors.Errorf("batch has a nil tensor")
	}
	for _, tt := range []*tensor.T{b.ContextX, b.ContextY, b.TargetX, b.TargetY, b.TargetYf} {
		if len(tt.Shape) != 3 {
			return errors.Errorf("batch tensors must be 3-d, got shape %v", tt.Shape)
		}
	}

	n := b.ContextX.Dim(0)
	s := b.ContextX.Dim(1)
	d := b.ContextX.Dim(2)
	tl := b.TargetX.Dim(1)

	if b.SupportSize != s {
		return errors.Errorf("support size %d does not match context length %d", b.SupportSize, s)
	}
	if tl <= s {
		return errors.Errorf("target length %d leaves no query region past support %d", tl, s)
	}
	if b.ContextY.Dim(0) != n || b.ContextY.Dim(1) != s || b.ContextY.Dim(2) != 1 {
		return errors.Errorf("context y shape %v does not match (%d, %d, 1)", b.ContextY.Shape, n, s)
	}
	if b.TargetX.Dim(0) != n || b.TargetX.Dim(2) != d {
		return errors.Errorf("target x shape %v does not match (%d, *, %d)", b.TargetX.Shape, n, d)
	}
	if b.TargetY.Dim(0) != n || b.TargetY.Dim(1) != tl || b.TargetY.Dim(2) != 1 {
		return errors.Errorf("target y shape %v does not match (%d, %d, 1)", b.TargetY.Shape, n, tl)
	}
	if b.TargetYf.Dim(0) != n || b.TargetYf.Dim(1) != tl || b.TargetYf.Dim(2) != 1 {
		return errors.Errorf("target yf shape %v does not match (%d, %d, 1)", b.TargetYf.Shape, n, tl)
	}

	for i := 0; i < n; i++ {
		for j := 0; j < s; j++ {
			for k := 0; k < d; k++ {
				if b.TargetX.At(i, j, k) != b.ContextX.At(i, j, k) {
					return errors.Errorf("episode %d: target x position %d does not repeat the context", i, j)
				}
			}
			if b.TargetY.At(i, j, 0) != b.ContextY.At(i, j, 0) {
				return errors.Errorf("episode %d: target y position %d does not repeat the context", i, j)
			}
			if b.TargetYf.At(i, j, 0) <= 0 {
				return errors.Errorf("episode %d: support position %d has no raw affinity", i, j)
			}
		}
	}
	return nil
}
