package tensor

import "fmt"

// T is a dense row-major float64 tensor. It is a plain value container:
// gradients live in the autograd package, not here.
type T struct {
	Shape []int
	Data  []float64
}

// New returns a zero tensor with the given shape.
func New(shape ...int) *T {
	size := 1
	for _, d := range shape {
		size *= d
	}
	return &T{Shape: shape, Data: make([]float64, size)}
}

// NewFrom wraps data with the given shape. The slice is not copied.
func NewFrom(data []float64, shape ...int) *T {
	size := 1
	for _, d := range shape {
		size *= d
	}
	if size != len(data) {
		panic(fmt.Sprintf("tensor: data length %d does not match shape %v", len(data), shape))
	}
	return &T{Shape: shape, Data: data}
}

// Size returns the element count.
func (t *T) Size() int { return len(t.Data) }

// Dim returns the size of axis i.
func (t *T) Dim(i int) int { return t.Shape[i] }

func (t *T) offset(idx []int) int {
	if len(idx) != len(t.Shape) {
		panic(fmt.Sprintf("tensor: %d indices into %d-d tensor", len(idx), len(t.Shape)))
	}
	off := 0
	for i, x := range idx {
		if x < 0 || x >= t.Shape[i] {
			panic(fmt.Sprintf("tensor: index %d out of range for axis %d of size %d", x, i, t.Shape[i]))
		}
		off = off*t.Shape[i] + x
	}
	return off
}

// At returns the element at the multi-index.
func (t *T) At(idx ...int) float64 { return t.Data[t.offset(idx)] }

// Set writes the element at the multi-index.
func (t *T) Set(v float64, idx ...int) { t.Data[t.offset(idx)] = v }

// Row returns the innermost vector at (i, j) of a 3-d tensor as a view into
// the underlying data.
func (t *T) Row(i, j int) []float64 {
	if len(t.Shape) != 3 {
		panic(fmt.Sprintf("tensor: Row on %d-d tensor", len(t.Shape)))
	}
	inner := t.Shape[2]
	start := (i*t.Shape[1] + j) * inner
	return t.Data[start : start+inner]
}

// Clone returns a deep copy.
func (t *T) Clone() *T {
	shape := make([]int, len(t.Shape))
	copy(shape, t.Shape)
	data := make([]float64, len(t.Data))
	copy(data, t.Data)
	return &T{Shape: shape, Data: data}
}

// Equal reports whether the tensors match in shape and every element.
func (t *T) Equal(other *T) bool {
	if len(t.Shape) != len(other.Shape) {
		return false
	}
	for i, d := range t.Shape {
		if other.Shape[i] != d {
			return false
		}
	}
	for i, v := range t.Data {
		if other.Data[i] != v {
			return false
		}
	}
	return true
}
