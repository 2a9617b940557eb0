package autograd

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

const rmsEps = 1e-5

// Concat joins vectors into one.
func Concat(vecs []*Vec) *Vec {
	total := 0
	for _, v := range vecs {
		total += len(v.Data)
	}
	data := make([]float64, 0, total)
	for _, v := range vecs {
		data = append(data, v.Data...)
	}
	out := NewVec(data)
	if gradEnabled {
		kids := make([]Node, len(vecs))
		for i, v := range vecs {
			kids[i] = v
		}
		out.kids = kids
		out.backFn = func() {
			offset := 0
			for _, v := range vecs {
				floats.Add(v.Grad, out.Grad[offset:offset+len(v.Data)])
				offset += len(v.Data)
			}
		}
	}
	return out
}

// MeanVecs returns the element-wise mean of vecs, which must share a length.
func MeanVecs(vecs []*Vec) *Vec {
	n := len(vecs)
	inv := 1 / float64(n)
	out := NewVecZero(len(vecs[0].Data))
	for _, v := range vecs {
		floats.AddScaled(out.Data, inv, v.Data)
	}
	if gradEnabled {
		kids := make([]Node, n)
		for i, v := range vecs {
			kids[i] = v
		}
		out.kids = kids
		out.backFn = func() {
			for _, v := range vecs {
				floats.AddScaled(v.Grad, inv, out.Grad)
			}
		}
	}
	return out
}

// WeightedSum returns sum_t weights[t] * values[t], the attention read-out.
func WeightedSum(weights []*Scalar, values []*Vec) *Vec {
	out := NewVecZero(len(values[0].Data))
	for t, w := range weights {
		floats.AddScaled(out.Data, w.Data, values[t].Data)
	}
	if gradEnabled {
		kids := make([]Node, 0, len(weights)+len(values))
		for _, w := range weights {
			kids = append(kids, w)
		}
		for _, v := range values {
			kids = append(kids, v)
		}
		out.kids = kids
		out.backFn = func() {
			for t, w := range weights {
				w.Grad += floats.Dot(values[t].Data, out.Grad)
				floats.AddScaled(values[t].Grad, w.Data, out.Grad)
			}
		}
	}
	return out
}

// Softmax computes a softmax distribution over scalar logits.
func Softmax(logits []*Scalar) []*Scalar {
	n := len(logits)
	maxVal := logits[0].Data
	for _, s := range logits[1:] {
		if s.Data > maxVal {
			maxVal = s.Data
		}
	}
	probs := make([]float64, n)
	total := 0.0
	for i, s := range logits {
		probs[i] = math.Exp(s.Data - maxVal)
		total += probs[i]
	}
	floats.Scale(1/total, probs)

	var kids []Node
	if gradEnabled {
		kids = make([]Node, n)
		for i, s := range logits {
			kids[i] = s
		}
	}
	out := make([]*Scalar, n)
	for i := 0; i < n; i++ {
		sv := &Scalar{Data: probs[i]}
		if gradEnabled {
			ii := i
			sv.kids = kids
			sv.backFn = func() {
				g := out[ii].Grad
				for j := 0; j < n; j++ {
					if j == ii {
						logits[j].Grad += g * probs[ii] * (1 - probs[ii])
					} else {
						logits[j].Grad -= g * probs[ii] * probs[j]
					}
				}
			}
		}
		out[i] = sv
	}
	return out
}

// CrossEntropy returns -log(softmax(logits)[target]) with log-sum-exp
// stabilization. The backward pass is the usual probs minus one-hot.
func CrossEntropy(logits *Vec, target int) *Scalar {
	n := len(logits.Data)
	maxVal := floats.Max(logits.Data)
	probs := make([]float64, n)
	expSum := 0.0
	for i := 0; i < n; i++ {
		probs[i] = math.Exp(logits.Data[i] - maxVal)
		expSum += probs[i]
	}
	floats.Scale(1/expSum, probs)
	out := &Scalar{Data: math.Log(expSum) + maxVal - logits.Data[target]}
	if gradEnabled {
		out.kids = []Node{logits}
		out.backFn = func() {
			for i := 0; i < n; i++ {
				logits.Grad[i] += probs[i] * out.Grad
			}
			logits.Grad[target] -= out.Grad
		}
	}
	return out
}

// MeanScalars returns the mean of xs.
func MeanScalars(xs []*Scalar) *Scalar {
	n := len(xs)
	inv := 1 / float64(n)
	total := 0.0
	for _, x := range xs {
		total += x.Data
	}
	out := &Scalar{Data: total * inv}
	if gradEnabled {
		kids := make([]Node, n)
		for i, x := range xs {
			kids[i] = x
		}
		out.kids = kids
		out.backFn = func() {
			for _, x := range xs {
				x.Grad += inv * out.Grad
			}
		}
	}
	return out
}

// GaussianKL returns KL(N(mu, exp(logvar)) || N(0, I)) summed over dims.
func GaussianKL(mu, logvar *Vec) *Scalar {
	n := len(mu.Data)
	val := 0.0
	for i := 0; i < n; i++ {
		val += math.Exp(logvar.Data[i]) + mu.Data[i]*mu.Data[i] - 1 - logvar.Data[i]
	}
	out := &Scalar{Data: 0.5 * val}
	if gradEnabled {
		out.kids = []Node{mu, logvar}
		out.backFn = func() {
			for i := 0; i < n; i++ {
				mu.Grad[i] += mu.Data[i] * out.Grad
				logvar.Grad[i] += 0.5 * (math.Exp(logvar.Data[i]) - 1) * out.Grad
			}
		}
	}
	return out
}

// GaussianSample reparameterizes z = mu + exp(logvar/2) * eps for a fixed
// noise draw eps, keeping gradients flowing into mu and logvar.
func GaussianSample(mu, logvar *Vec, eps []float64) *Vec {
	n := len(mu.Data)
	out := NewVecZero(n)
	for i := 0; i < n; i++ {
		out.Data[i] = mu.Data[i] + math.Exp(0.5*logvar.Data[i])*eps[i]
	}
	if gradEnabled {
		out.kids = []Node{mu, logvar}
		out.backFn = func() {
			for i := 0; i < n; i++ {
				mu.Grad[i] += out.Grad[i]
				logvar.Grad[i] += 0.5 * (out.Data[i] - mu.Data[i]) * out.Grad[i]
			}
		}
	}
	return out
}

// RMSNorm scales x by the inverse root mean square of its elements.
func RMSNorm(x *Vec) *Vec {
	n := len(x.Data)
	ms := floats.Dot(x.Data, x.Data) / float64(n)
	scale := math.Pow(ms+rmsEps, -0.5)
	out := NewVecZero(n)
	floats.ScaleTo(out.Data, scale, x.Data)
	if gradEnabled {
		out.kids = []Node{x}
		out.backFn = func() {
			dsDms := -0.5 * math.Pow(ms+rmsEps, -1.5)
			cross := floats.Dot(out.Grad, x.Data)
			for i := 0; i < n; i++ {
				x.Grad[i] += scale*out.Grad[i] + cross*dsDms*2*x.Data[i]/float64(n)
			}
		}
	}
	return out
}
