package dataset

import (
	"github.com/pippaduckett1/MetaDTA/metadta-golib/errors"
)

// Binner maps continuous affinities onto equal-width histogram bins. The
// range is fit on the training split and shared by every split and by the
// model's bin centers, so bin indices mean the same thing everywhere.
// Out-of-range values clamp to the edge bins.
type Binner struct {
	Min   float64
	Max   float64
	NBins int
}

// NewBinner fits the bin range to the observed affinities.
func NewBinner(rows []Interaction, nBins int) (Binner, error) {
	if len(rows) == 0 {
		return Binner{}, errors.Errorf("cannot fit affinity bins to an empty split")
	}
	min, max := rows[0].Affinity, rows[0].Affinity
	for _, r := range rows[1:] {
		if r.Affinity < min {
			min = r.Affinity
		}
		if r.Affinity > max {
			max = r.Affinity
		}
	}
	if min == max {
		return Binner{}, errors.Errorf("cannot fit affinity bins: every affinity equals %g", min)
	}
	return Binner{Min: min, Max: max, NBins: nBins}, nil
}

// Width returns the bin width.
func (b Binner) Width() float64 {
	return (b.Max - b.Min) / float64(b.NBins)
}

// Bin returns the bin index of an affinity, clamped to [0, NBins-1].
func (b Binner) Bin(affinity float64) int {
	idx := int((affinity - b.Min) / b.Width())
	if idx < 0 {
		idx = 0
	}
	if idx >= b.NBins {
		idx = b.NBins - 1
	}
	return idx
}

// Center returns the representative affinity of a bin.
func (b Binner) Center(bin int) float64 {
	return b.Min + (float64(bin)+0.5)*b.Width()
}

// Centers returns every bin center in index order.
func (b Binner) Centers() []float64 {
	out := make([]float64, b.NBins)
	for i := range out {
		out[i] = b.Center(i)
	}
	return out
}
