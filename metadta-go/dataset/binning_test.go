package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBinnerEdges(t *testing.T) {
	rows := []Interaction{
		{Ligand: 0, Target: 0, Affinity: 4.0},
		{Ligand: 1, Target: 0, Affinity: 9.0},
		{Ligand: 2, Target: 0, Affinity: 6.5},
	}
	b, err := NewBinner(rows, 10)
	require.NoError(t, err)

	assert.Equal(t, 0, b.Bin(4.0))
	assert.Equal(t, 9, b.Bin(9.0))
	assert.Equal(t, 4, b.Bin(6.4))

	// out-of-range values clamp to the edge bins
	assert.Equal(t, 0, b.Bin(3.0))
	assert.Equal(t, 9, b.Bin(11.0))
}

func TestBinnerCentersReconstruct(t *testing.T) {
	rows := []Interaction{
		{Ligand: 0, Target: 0, Affinity: 2.0},
		{Ligand: 1, Target: 0, Affinity: 10.0},
	}
	b, err := NewBinner(rows, 16)
	require.NoError(t, err)

	halfWidth := b.Width() / 2
	for _, a := range []float64{2.0, 3.3, 5.77, 9.99, 10.0} {
		c := b.Center(b.Bin(a))
		assert.InDelta(t, a, c, halfWidth+1e-12)
	}

	centers := b.Centers()
	require.Len(t, centers, 16)
	assert.InDelta(t, 2.0+halfWidth, centers[0], 1e-12)
	assert.InDelta(t, 10.0-halfWidth, centers[15], 1e-12)
}

func TestBinnerDegenerateInputs(t *testing.T) {
	_, err := NewBinner(nil, 8)
	require.Error(t, err)

	same := []Interaction{
		{Ligand: 0, Target: 0, Affinity: 5.0},
		{Ligand: 1, Target: 0, Affinity: 5.0},
	}
	_, err = NewBinner(same, 8)
	require.Error(t, err)
}
