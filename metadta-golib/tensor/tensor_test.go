package tensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAtSet(t *testing.T) {
	x := New(2, 3, 4)
	require.Equal(t, 24, x.Size())

	x.Set(7.5, 1, 2, 3)
	assert.Equal(t, 7.5, x.At(1, 2, 3))
	assert.Equal(t, 7.5, x.Data[23])
	assert.Zero(t, x.At(0, 0, 0))
}

func TestRowIsView(t *testing.T) {
	x := New(2, 2, 3)
	row := x.Row(1, 0)
	require.Len(t, row, 3)

	row[2] = 9.0
	assert.Equal(t, 9.0, x.At(1, 0, 2))
}

func TestNewFrom(t *testing.T) {
	x := NewFrom([]float64{1, 2, 3, 4, 5, 6}, 2, 3)
	assert.Equal(t, 4.0, x.At(1, 0))

	require.Panics(t, func() { NewFrom([]float64{1, 2, 3}, 2, 3) })
}

func TestCloneIsIndependent(t *testing.T) {
	x := NewFrom([]float64{1, 2, 3, 4}, 2, 2)
	y := x.Clone()
	require.True(t, x.Equal(y))

	y.Set(10, 0, 0)
	assert.Equal(t, 1.0, x.At(0, 0))
	assert.False(t, x.Equal(y))
}

func TestEqualShapeMismatch(t *testing.T) {
	assert.False(t, New(2, 3).Equal(New(3, 2)))
	assert.False(t, New(2, 3).Equal(New(2, 3, 1)))
	assert.True(t, New(2, 3).Equal(New(2, 3)))
}

func TestIndexPanics(t *testing.T) {
	x := New(2, 3)
	require.Panics(t, func() { x.At(2, 0) })
	require.Panics(t, func() { x.At(0) })
	require.Panics(t, func() { x.Row(0, 0) })
}
