package autograd

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

const gradTol = 1e-4

// numGrad estimates df/dx_i by central difference, restoring x afterwards.
func numGrad(f func() float64, x []float64, i int) float64 {
	const h = 1e-5
	orig := x[i]
	x[i] = orig + h
	plus := f()
	x[i] = orig - h
	minus := f()
	x[i] = orig
	return (plus - minus) / (2 * h)
}

func TestLinearReLUChainGradients(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	layer := NewLinear(3, 4, 0.5, rng)
	x := NewVec([]float64{0.3, -1.2, 0.8, 0.1})
	u := NewVec([]float64{0.7, -0.4, 1.1})

	forward := func() float64 {
		return layer.Apply(x).ReLU().Dot(u).Data
	}

	Backward(layer.Apply(x).ReLU().Dot(u))

	for i := range x.Data {
		require.InDelta(t, numGrad(forward, x.Data, i), x.Grad[i], gradTol)
	}
	for _, p := range layer.Params() {
		for j := range p.Data {
			require.InDelta(t, numGrad(forward, p.Data, j), p.Grad[j], gradTol)
		}
	}
}

func TestCrossEntropyMatchesFiniteDifference(t *testing.T) {
	logits := NewVec([]float64{0.2, -0.7, 1.3, 0.05})
	target := 2

	expSum := 0.0
	for _, v := range logits.Data {
		expSum += math.Exp(v - 1.3)
	}
	want := math.Log(expSum) + 1.3 - logits.Data[target]

	loss := CrossEntropy(logits, target)
	require.InDelta(t, want, loss.Data, 1e-12)

	Backward(loss)
	forward := func() float64 { return CrossEntropy(logits, target).Data }
	for i := range logits.Data {
		require.InDelta(t, numGrad(forward, logits.Data, i), logits.Grad[i], gradTol)
	}
}

func TestSoftmaxDistribution(t *testing.T) {
	logits := []*Scalar{NewScalar(2.0), NewScalar(-1.0), NewScalar(0.5)}
	probs := Softmax(logits)

	total := 0.0
	for _, p := range probs {
		total += p.Data
	}
	require.InDelta(t, 1.0, total, 1e-12)
	require.Greater(t, probs[0].Data, probs[2].Data)
	require.Greater(t, probs[2].Data, probs[1].Data)
}

func TestAttentionChainGradients(t *testing.T) {
	q := NewVec([]float64{0.5, -0.3})
	keys := []*Vec{
		NewVec([]float64{0.1, 0.9}),
		NewVec([]float64{-0.4, 0.2}),
		NewVec([]float64{0.7, 0.7}),
	}
	vals := []*Vec{
		NewVec([]float64{1.0, 0.0}),
		NewVec([]float64{0.0, 1.0}),
		NewVec([]float64{0.5, 0.5}),
	}
	readout := NewVec([]float64{0.8, -0.6})

	attend := func() *Scalar {
		scaled := q.Scale(1 / math.Sqrt(2))
		logits := make([]*Scalar, len(keys))
		for i, k := range keys {
			logits[i] = scaled.Dot(k)
		}
		return WeightedSum(Softmax(logits), vals).Dot(readout)
	}

	Backward(attend())
	forward := func() float64 { return attend().Data }

	for i := range q.Data {
		require.InDelta(t, numGrad(forward, q.Data, i), q.Grad[i], gradTol)
	}
	for _, k := range keys {
		for i := range k.Data {
			require.InDelta(t, numGrad(forward, k.Data, i), k.Grad[i], gradTol)
		}
	}
	for _, v := range vals {
		for i := range v.Data {
			require.InDelta(t, numGrad(forward, v.Data, i), v.Grad[i], gradTol)
		}
	}
}

func TestGaussianKLStandardNormalIsZero(t *testing.T) {
	mu := NewVecZero(4)
	logvar := NewVecZero(4)

	kl := GaussianKL(mu, logvar)
	require.Zero(t, kl.Data)

	Backward(kl)
	for i := 0; i < 4; i++ {
		require.Zero(t, mu.Grad[i])
		require.Zero(t, logvar.Grad[i])
	}
}

func TestGaussianKLGradients(t *testing.T) {
	mu := NewVec([]float64{0.3, -0.8, 1.1})
	logvar := NewVec([]float64{-0.2, 0.4, 0.0})

	Backward(GaussianKL(mu, logvar))
	forward := func() float64 { return GaussianKL(mu, logvar).Data }

	for i := range mu.Data {
		require.InDelta(t, numGrad(forward, mu.Data, i), mu.Grad[i], gradTol)
	}
	for i := range logvar.Data {
		require.InDelta(t, numGrad(forward, logvar.Data, i), logvar.Grad[i], gradTol)
	}
}

func TestGaussianSampleGradients(t *testing.T) {
	mu := NewVec([]float64{0.1, -0.5})
	logvar := NewVec([]float64{0.3, -0.7})
	eps := []float64{0.9, -1.4}
	u := NewVec([]float64{1.0, 2.0})

	Backward(GaussianSample(mu, logvar, eps).Dot(u))
	forward := func() float64 { return GaussianSample(mu, logvar, eps).Dot(u).Data }

	for i := range mu.Data {
		require.InDelta(t, numGrad(forward, mu.Data, i), mu.Grad[i], gradTol)
	}
	for i := range logvar.Data {
		require.InDelta(t, numGrad(forward, logvar.Data, i), logvar.Grad[i], gradTol)
	}
}

func TestRMSNormGradients(t *testing.T) {
	x := NewVec([]float64{0.6, -1.3, 0.9, 0.2})
	u := NewVec([]float64{0.5, 0.25, -0.75, 1.0})

	Backward(RMSNorm(x).Dot(u))
	forward := func() float64 { return RMSNorm(x).Dot(u).Data }

	for i := range x.Data {
		require.InDelta(t, numGrad(forward, x.Data, i), x.Grad[i], gradTol)
	}
}

func TestConcatSliceGradients(t *testing.T) {
	a := NewVec([]float64{0.4, -0.9})
	b := NewVec([]float64{1.5, 0.2, -0.3})
	u := NewVec([]float64{0.6, -1.1})

	Backward(Concat([]*Vec{a, b}).Slice(1, 3).Dot(u))
	forward := func() float64 {
		return Concat([]*Vec{a, b}).Slice(1, 3).Dot(u).Data
	}

	for i := range a.Data {
		require.InDelta(t, numGrad(forward, a.Data, i), a.Grad[i], gradTol)
	}
	for i := range b.Data {
		require.InDelta(t, numGrad(forward, b.Data, i), b.Grad[i], gradTol)
	}
}

func TestMeanVecsGradients(t *testing.T) {
	vs := []*Vec{
		NewVec([]float64{1, 2}),
		NewVec([]float64{3, 4}),
		NewVec([]float64{5, 6}),
	}
	u := NewVec([]float64{0.5, -0.25})

	Backward(MeanVecs(vs).Dot(u))
	forward := func() float64 { return MeanVecs(vs).Dot(u).Data }

	for _, v := range vs {
		for i := range v.Data {
			require.InDelta(t, numGrad(forward, v.Data, i), v.Grad[i], gradTol)
		}
	}
}

func TestMeanScalars(t *testing.T) {
	xs := []*Scalar{NewScalar(1.0), NewScalar(2.0), NewScalar(6.0)}

	total := MeanScalars(xs).Add(NewScalar(0.5))
	require.InDelta(t, 3.5, total.Data, 1e-12)

	Backward(total)
	for _, x := range xs {
		require.InDelta(t, 1.0/3.0, x.Grad, 1e-12)
	}
}

func TestNoGradBuildsNoGraph(t *testing.T) {
	SetGradEnabled(false)
	defer SetGradEnabled(true)

	x := NewVec([]float64{1, 2, 3})
	y := NewVec([]float64{4, 5, 6})
	out := x.Add(y).Dot(y)
	require.InDelta(t, 109.0, out.Data, 1e-12)

	Backward(out)
	for i := range x.Grad {
		require.Zero(t, x.Grad[i])
	}
	require.Nil(t, out.kids)
}
