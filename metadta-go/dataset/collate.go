package dataset

import (
	"github.com/pippaduckett1/MetaDTA/metadta-go/episode"
	"github.com/pippaduckett1/MetaDTA/metadta-golib/errors"
	"github.com/pippaduckett1/MetaDTA/metadta-golib/tensor"
)

// FewShotCollator assembles sampled episodes into a padded Batch. The first
// SupportSize items of each episode form its context, and the entire episode
// forms the target region: support items first as self-targets, queries
// after. Episodes shorter than the batch maximum are padded with zero rows,
// which the zero raw affinity marks as missing.
type FewShotCollator struct {
	SupportSize int
}

// Collate stacks the episodes into one Batch.
func (c FewShotCollator) Collate(eps []Episode) (episode.Batch, error) {
	if len(eps) == 0 {
		return episode.Batch{}, errors.Errorf("cannot collate an empty batch")
	}

	maxLen := 0
	for _, ep := range eps {
		if len(ep.X) <= c.SupportSize {
			return episode.Batch{}, errors.Errorf(
				"episode with %d interactions cannot fill a support set of %d plus a query", len(ep.X), c.SupportSize)
		}
		if len(ep.X) > maxLen {
			maxLen = len(ep.X)
		}
	}

	n := len(eps)
	dim := len(eps[0].X[0])
	b := episode.Batch{
		ContextX:    tensor.New(n, c.SupportSize, dim),
		ContextY:    tensor.New(n, c.SupportSize, 1),
		TargetX:     tensor.New(n, maxLen, dim),
		TargetY:     tensor.New(n, maxLen, 1),
		TargetYf:    tensor.New(n, maxLen, 1),
		SupportSize: c.SupportSize,
	}
	for i, ep := range eps {
		for j := range ep.X {
			copy(b.TargetX.Row(i, j), ep.X[j])
			b.TargetY.Set(float64(ep.YBin[j]), i, j, 0)
			b.TargetYf.Set(ep.YRaw[j], i, j, 0)
		}
		for j := 0; j < c.SupportSize; j++ {
			copy(b.ContextX.Row(i, j), ep.X[j])
			b.ContextY.Set(float64(ep.YBin[j]), i, j, 0)
		}
	}
	return b, nil
}
