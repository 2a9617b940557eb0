package predict

import (
	"math"

	"github.com/pippaduckett1/MetaDTA/metadta-golib/autograd"
	"github.com/pippaduckett1/MetaDTA/metadta-golib/errors"
)

// Adam hyperparameters, the usual defaults.
const (
	adamBeta1 = 0.9
	adamBeta2 = 0.999
	adamEps   = 1e-8
)

// Adam holds first and second moment estimates per parameter vector. The
// learning rate is set from outside before each step, which is how the
// warmup schedule reaches the optimizer.
type Adam struct {
	params []*autograd.Vec
	m      [][]float64
	v      [][]float64
	lr     float64
	step   int
}

// NewAdam builds an optimizer over params with zeroed moments.
func NewAdam(params []*autograd.Vec, lr float64) *Adam {
	a := &Adam{
		params: params,
		m:      make([][]float64, len(params)),
		v:      make([][]float64, len(params)),
		lr:     lr,
	}
	for i, p := range params {
		a.m[i] = make([]float64, len(p.Data))
		a.v[i] = make([]float64, len(p.Data))
	}
	return a
}

// SetLR overwrites the learning rate used by the next Step.
func (a *Adam) SetLR(lr float64) { a.lr = lr }

// LR returns the current learning rate.
func (a *Adam) LR() float64 { return a.lr }

// ZeroGrad clears the gradient of every parameter.
func (a *Adam) ZeroGrad() {
	for _, p := range a.params {
		p.ZeroGrad()
	}
}

// Step applies one bias-corrected Adam update from the accumulated
// gradients.
func (a *Adam) Step() {
	a.step++
	c1 := 1 - math.Pow(adamBeta1, float64(a.step))
	c2 := 1 - math.Pow(adamBeta2, float64(a.step))
	for i, p := range a.params {
		m, v := a.m[i], a.v[i]
		for j, g := range p.Grad {
			m[j] = adamBeta1*m[j] + (1-adamBeta1)*g
			v[j] = adamBeta2*v[j] + (1-adamBeta2)*g*g
			mHat := m[j] / c1
			vHat := v[j] / c2
			p.Data[j] -= a.lr * mHat / (math.Sqrt(vHat) + adamEps)
		}
	}
}

// OptimizerState is a checkpointable snapshot of the optimizer moments and
// step counter, aligned index-for-index with the model's Params order.
type OptimizerState struct {
	M    [][]float64
	V    [][]float64
	Step int
	LR   float64
}

// State copies the optimizer internals out into a snapshot.
func (a *Adam) State() OptimizerState {
	s := OptimizerState{
		M:    make([][]float64, len(a.m)),
		V:    make([][]float64, len(a.v)),
		Step: a.step,
		LR:   a.lr,
	}
	for i := range a.m {
		s.M[i] = append([]float64(nil), a.m[i]...)
		s.V[i] = append([]float64(nil), a.v[i]...)
	}
	return s
}

// Restore overwrites the optimizer internals from a snapshot.
func (a *Adam) Restore(s OptimizerState) error {
	if len(s.M) != len(a.params) || len(s.V) != len(a.params) {
		return errors.Errorf("optimizer state holds %d/%d moment vectors, model has %d parameters",
			len(s.M), len(s.V), len(a.params))
	}
	for i, p := range a.params {
		if len(s.M[i]) != len(p.Data) || len(s.V[i]) != len(p.Data) {
			return errors.Errorf("optimizer state moment %d has wrong length", i)
		}
		copy(a.m[i], s.M[i])
		copy(a.v[i], s.V[i])
	}
	a.step = s.Step
	a.lr = s.LR
	return nil
}
