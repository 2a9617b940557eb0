package autograd

import (
	"math/rand"

	"gonum.org/v1/gonum/floats"
)

// MatrixParam is a trainable weight matrix stored as rows of Vecs,
// shape (nout, nin).
type MatrixParam struct {
	Rows []*Vec
	Nout int
	Nin  int
}

// NewMatrixParam draws entries from N(0, std^2) using rng.
func NewMatrixParam(nout, nin int, std float64, rng *rand.Rand) *MatrixParam {
	rows := make([]*Vec, nout)
	for i := 0; i < nout; i++ {
		data := make([]float64, nin)
		for j := range data {
			data[j] = rng.NormFloat64() * std
		}
		rows[i] = NewVec(data)
	}
	return &MatrixParam{Rows: rows, Nout: nout, Nin: nin}
}

// Matvec computes m @ x.
func (m *MatrixParam) Matvec(x *Vec) *Vec {
	out := NewVecZero(m.Nout)
	for i, row := range m.Rows {
		out.Data[i] = floats.Dot(row.Data, x.Data)
	}
	if gradEnabled {
		kids := make([]Node, m.Nout+1)
		for i, row := range m.Rows {
			kids[i] = row
		}
		kids[m.Nout] = x
		out.kids = kids
		rows := m.Rows
		out.backFn = func() {
			for i, row := range rows {
				g := out.Grad[i]
				floats.AddScaled(row.Grad, g, x.Data)
				floats.AddScaled(x.Grad, g, row.Data)
			}
		}
	}
	return out
}

// Params returns the row vectors, for the optimizer.
func (m *MatrixParam) Params() []*Vec {
	return m.Rows
}

// Linear is a fully connected layer with bias.
type Linear struct {
	W *MatrixParam
	B *Vec
}

// NewLinear builds a (nout, nin) layer with N(0, std^2) weights and zero bias.
func NewLinear(nout, nin int, std float64, rng *rand.Rand) *Linear {
	return &Linear{
		W: NewMatrixParam(nout, nin, std, rng),
		B: NewVecZero(nout),
	}
}

// Apply computes W @ x + b.
func (l *Linear) Apply(x *Vec) *Vec {
	return l.W.Matvec(x).Add(l.B)
}

// Params returns the weight rows and the bias, for the optimizer.
func (l *Linear) Params() []*Vec {
	return append(l.W.Params(), l.B)
}
