package autograd

import (
	"gonum.org/v1/gonum/floats"
)

// gradEnabled gates graph construction. When false, ops compute forward
// values only and allocate no backward closures.
var gradEnabled = true

// SetGradEnabled toggles recording of the backward graph for subsequent ops.
// Evaluation passes turn it off. Not safe for concurrent use: the goroutine
// running forward passes owns the toggle.
func SetGradEnabled(on bool) { gradEnabled = on }

// GradEnabled reports whether ops currently record the backward graph.
func GradEnabled() bool { return gradEnabled }

// Node is a vertex in the reverse-mode autodiff graph.
type Node interface {
	children() []Node
	backward()
}

// Vec is a differentiable vector: a hidden state, an embedding row, or a
// parameter slice in the compute graph.
type Vec struct {
	Data []float64
	Grad []float64

	kids   []Node
	backFn func()
}

// NewVec wraps data as a leaf vector. The slice is not copied.
func NewVec(data []float64) *Vec {
	return &Vec{Data: data, Grad: make([]float64, len(data))}
}

// NewVecZero returns a zero leaf vector of length n.
func NewVecZero(n int) *Vec { return NewVec(make([]float64, n)) }

func (v *Vec) children() []Node { return v.kids }

func (v *Vec) backward() {
	if v.backFn != nil {
		v.backFn()
	}
}

// Len returns the vector length.
func (v *Vec) Len() int { return len(v.Data) }

// ZeroGrad clears the accumulated gradient.
func (v *Vec) ZeroGrad() {
	for i := range v.Grad {
		v.Grad[i] = 0
	}
}

// Add returns v + other element-wise.
func (v *Vec) Add(other *Vec) *Vec {
	out := NewVecZero(len(v.Data))
	floats.AddTo(out.Data, v.Data, other.Data)
	if gradEnabled {
		out.kids = []Node{v, other}
		out.backFn = func() {
			floats.Add(v.Grad, out.Grad)
			floats.Add(other.Grad, out.Grad)
		}
	}
	return out
}

// Scale returns v * s.
func (v *Vec) Scale(s float64) *Vec {
	out := NewVecZero(len(v.Data))
	floats.ScaleTo(out.Data, s, v.Data)
	if gradEnabled {
		out.kids = []Node{v}
		out.backFn = func() {
			floats.AddScaled(v.Grad, s, out.Grad)
		}
	}
	return out
}

// ReLU applies max(0, x) element-wise.
func (v *Vec) ReLU() *Vec {
	n := len(v.Data)
	out := NewVecZero(n)
	for i := 0; i < n; i++ {
		if v.Data[i] > 0 {
			out.Data[i] = v.Data[i]
		}
	}
	if gradEnabled {
		out.kids = []Node{v}
		src := v.Data
		out.backFn = func() {
			for i := 0; i < n; i++ {
				if src[i] > 0 {
					v.Grad[i] += out.Grad[i]
				}
			}
		}
	}
	return out
}

// Dot returns the scalar inner product of v and other.
func (v *Vec) Dot(other *Vec) *Scalar {
	out := &Scalar{Data: floats.Dot(v.Data, other.Data)}
	if gradEnabled {
		out.kids = []Node{v, other}
		out.backFn = func() {
			floats.AddScaled(v.Grad, out.Grad, other.Data)
			floats.AddScaled(other.Grad, out.Grad, v.Data)
		}
	}
	return out
}

// Slice returns v[start:end) as a new vector.
func (v *Vec) Slice(start, end int) *Vec {
	out := NewVecZero(end - start)
	copy(out.Data, v.Data[start:end])
	if gradEnabled {
		out.kids = []Node{v}
		out.backFn = func() {
			floats.Add(v.Grad[start:end], out.Grad)
		}
	}
	return out
}

// Scalar is a differentiable scalar: a loss term, attention logit, or KL.
type Scalar struct {
	Data float64
	Grad float64

	kids   []Node
	backFn func()
}

// NewScalar wraps data as a leaf scalar.
func NewScalar(data float64) *Scalar { return &Scalar{Data: data} }

func (s *Scalar) children() []Node { return s.kids }

func (s *Scalar) backward() {
	if s.backFn != nil {
		s.backFn()
	}
}

// Add returns s + other.
func (s *Scalar) Add(other *Scalar) *Scalar {
	out := &Scalar{Data: s.Data + other.Data}
	if gradEnabled {
		out.kids = []Node{s, other}
		out.backFn = func() {
			s.Grad += out.Grad
			other.Grad += out.Grad
		}
	}
	return out
}

// Backward runs reverse-mode autodiff from root: topological order over the
// recorded graph, root gradient seeded to 1, then each node's backward
// closure applied in reverse.
func Backward(root Node) {
	var topo []Node
	visited := make(map[Node]bool)

	var build func(n Node)
	build = func(n Node) {
		if visited[n] {
			return
		}
		visited[n] = true
		for _, c := range n.children() {
			build(c)
		}
		topo = append(topo, n)
	}
	build(root)

	switch r := root.(type) {
	case *Scalar:
		r.Grad = 1
	case *Vec:
		for i := range r.Grad {
			r.Grad[i] = 1
		}
	}
	for i := len(topo) - 1; i >= 0; i-- {
		topo[i].backward()
	}
}
