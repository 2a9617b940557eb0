package predict

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/pippaduckett1/MetaDTA/metadta-go/config"
	"github.com/pippaduckett1/MetaDTA/metadta-go/episode"
	"github.com/pippaduckett1/MetaDTA/metadta-golib/autograd"
	"github.com/pippaduckett1/MetaDTA/metadta-golib/errors"
	"github.com/pippaduckett1/MetaDTA/metadta-golib/tensor"
)

const initStd = 0.02

// attnLayer is one multihead-free attention block: query, key, value and
// output projections.
type attnLayer struct {
	q, k, v, o *autograd.Linear
}

func newAttnLayer(d int, rng *rand.Rand) *attnLayer {
	return &attnLayer{
		q: autograd.NewLinear(d, d, initStd, rng),
		k: autograd.NewLinear(d, d, initStd, rng),
		v: autograd.NewLinear(d, d, initStd, rng),
		o: autograd.NewLinear(d, d, initStd, rng),
	}
}

// LatentBinModel is the episodic predictor: an attentive conditional model
// over affinity histogram bins. Support pairs are encoded into
// representations; target fingerprints cross-attend over them; a decoder
// emits bin logits, whose softmax expectation is the predicted affinity.
// With UseLatentPath, self-attention over the encoded context is pooled
// into a Gaussian posterior whose sample conditions the decoder, adding a
// KL term against the standard-normal prior. The posterior sees context
// pairs only, never query labels.
type LatentBinModel struct {
	cfg      config.Config
	inputDim int
	centers  []float64

	xproj *autograd.Linear
	enc1  *autograd.Linear
	enc2  *autograd.Linear
	cross []*attnLayer

	self   []*attnLayer
	muHead *autograd.Linear
	lvHead *autograd.Linear

	dec1 *autograd.Linear
	dec2 *autograd.Linear

	reg      registry
	rng      *rand.Rand
	training bool
}

// NewLatentBinModel builds a model for fingerprints of inputDim and the
// given bin centers, which fix both the output width and the expectation
// read-out. Layer shapes come from cfg.
func NewLatentBinModel(cfg config.Config, inputDim int, centers []float64, rng *rand.Rand) (*LatentBinModel, error) {
	if inputDim < 1 {
		return nil, errors.Errorf("input dim must be positive, got %d", inputDim)
	}
	if len(centers) != cfg.NBins {
		return nil, errors.Errorf("got %d bin centers for %d bins", len(centers), cfg.NBins)
	}
	d := cfg.DModel
	m := &LatentBinModel{
		cfg:      cfg,
		inputDim: inputDim,
		centers:  append([]float64(nil), centers...),
		xproj:    autograd.NewLinear(d, inputDim, initStd, rng),
		enc1:     autograd.NewLinear(d, inputDim+cfg.NBins, initStd, rng),
		enc2:     autograd.NewLinear(d, d, initStd, rng),
		rng:      rng,
		training: true,
	}
	for i := 0; i < cfg.NCA; i++ {
		m.cross = append(m.cross, newAttnLayer(d, rng))
	}

	decIn := d
	if cfg.UseLatentPath {
		for i := 0; i < cfg.NSA; i++ {
			m.self = append(m.self, newAttnLayer(d, rng))
		}
		m.muHead = autograd.NewLinear(d, d, initStd, rng)
		m.lvHead = autograd.NewLinear(d, d, initStd, rng)
		decIn = 2 * d
	}
	m.dec1 = autograd.NewLinear(d, decIn, initStd, rng)
	m.dec2 = autograd.NewLinear(cfg.NBins, d, initStd, rng)

	m.reg.addLinear("xproj", m.xproj)
	m.reg.addLinear("encoder.0", m.enc1)
	m.reg.addLinear("encoder.1", m.enc2)
	for i, l := range m.cross {
		m.registerAttn(fmt.Sprintf("cross.%d", i), l)
	}
	for i, l := range m.self {
		m.registerAttn(fmt.Sprintf("latent.self.%d", i), l)
	}
	if cfg.UseLatentPath {
		m.reg.addLinear("latent.mu", m.muHead)
		m.reg.addLinear("latent.logvar", m.lvHead)
	}
	m.reg.addLinear("decoder.0", m.dec1)
	m.reg.addLinear("decoder.1", m.dec2)
	return m, nil
}

func (m *LatentBinModel) registerAttn(name string, l *attnLayer) {
	m.reg.addLinear(name+".q", l.q)
	m.reg.addLinear(name+".k", l.k)
	m.reg.addLinear(name+".v", l.v)
	m.reg.addLinear(name+".o", l.o)
}

// Params returns every trainable vector in registration order.
func (m *LatentBinModel) Params() []*autograd.Vec { return m.reg.params() }

// SetTraining toggles latent sampling: training draws from the posterior,
// evaluation uses its mean.
func (m *LatentBinModel) SetTraining(on bool) { m.training = on }

// State snapshots the parameters for checkpointing.
func (m *LatentBinModel) State() ModelState { return m.reg.snapshot() }

// Restore overwrites the parameters from a snapshot.
func (m *LatentBinModel) Restore(state ModelState) error { return m.reg.restore(state) }

// Forward runs the model over one batch. The batch must satisfy the
// support-prefix contract; only a cheap shape guard runs here.
func (m *LatentBinModel) Forward(b episode.Batch) (*Output, error) {
	if b.ContextX.Dim(1) != b.SupportSize || b.ContextX.Dim(2) != m.inputDim {
		panic(fmt.Sprintf("predict: batch context shape %v does not fit support %d, input dim %d",
			b.ContextX.Shape, b.SupportSize, m.inputDim))
	}

	n := b.Size()
	tl := b.TargetLen()
	yPred := tensor.New(n, tl, 1)
	sigma := tensor.New(n, tl, 1)
	invSqrtD := 1 / math.Sqrt(float64(m.cfg.DModel))

	var ces []*autograd.Scalar
	var kls []*autograd.Scalar
	for i := 0; i < n; i++ {
		ctx := m.encodeContext(b, i)

		var z *autograd.Vec
		if m.cfg.UseLatentPath {
			var kl *autograd.Scalar
			z, kl = m.latent(ctx, invSqrtD)
			kls = append(kls, kl)
		}

		// Per-layer keys and values over the encoded context are shared by
		// every target position of the episode.
		keys := make([][]*autograd.Vec, len(m.cross))
		vals := make([][]*autograd.Vec, len(m.cross))
		for l, layer := range m.cross {
			keys[l] = make([]*autograd.Vec, len(ctx))
			vals[l] = make([]*autograd.Vec, len(ctx))
			for s, e := range ctx {
				keys[l][s] = layer.k.Apply(e)
				vals[l][s] = layer.v.Apply(e)
			}
		}

		for t := 0; t < tl; t++ {
			h := m.xproj.Apply(autograd.NewVec(b.TargetX.Row(i, t)))
			for l, layer := range m.cross {
				h = autograd.RMSNorm(h.Add(layer.o.Apply(attend(layer.q.Apply(h).Scale(invSqrtD), keys[l], vals[l]))))
			}
			in := h
			if z != nil {
				in = autograd.Concat([]*autograd.Vec{h, z})
			}
			logits := m.dec2.Apply(m.dec1.Apply(in).ReLU())

			mean, std := m.expectation(logits.Data)
			yPred.Set(mean, i, t, 0)
			sigma.Set(std, i, t, 0)

			if b.TargetYf.At(i, t, 0) > 0 {
				ces = append(ces, autograd.CrossEntropy(logits, int(b.TargetY.At(i, t, 0))))
			}
		}
	}

	if len(ces) == 0 {
		return nil, errors.Errorf("batch has no labeled target positions")
	}
	loss := autograd.MeanScalars(ces)
	klVal := 0.0
	if len(kls) > 0 {
		klMean := autograd.MeanScalars(kls)
		klVal = klMean.Data
		loss = loss.Add(klMean)
	}
	return &Output{YPred: yPred, Sigma: sigma, KL: klVal, Loss: loss}, nil
}

// encodeContext embeds each support pair of episode i: fingerprint
// concatenated with the one-hot affinity bin, through the encoder MLP.
func (m *LatentBinModel) encodeContext(b episode.Batch, i int) []*autograd.Vec {
	out := make([]*autograd.Vec, b.SupportSize)
	for s := 0; s < b.SupportSize; s++ {
		in := make([]float64, m.inputDim+m.cfg.NBins)
		copy(in, b.ContextX.Row(i, s))
		in[m.inputDim+int(b.ContextY.At(i, s, 0))] = 1
		out[s] = m.enc2.Apply(m.enc1.Apply(autograd.NewVec(in)).ReLU())
	}
	return out
}

// latent runs the self-attention stack over the encoded context, pools it,
// and returns a posterior draw (mean at evaluation) plus the KL term.
func (m *LatentBinModel) latent(ctx []*autograd.Vec, invSqrtD float64) (*autograd.Vec, *autograd.Scalar) {
	rows := ctx
	for _, layer := range m.self {
		keys := make([]*autograd.Vec, len(rows))
		vals := make([]*autograd.Vec, len(rows))
		for s, r := range rows {
			keys[s] = layer.k.Apply(r)
			vals[s] = layer.v.Apply(r)
		}
		next := make([]*autograd.Vec, len(rows))
		for s, r := range rows {
			next[s] = autograd.RMSNorm(r.Add(layer.o.Apply(attend(layer.q.Apply(r).Scale(invSqrtD), keys, vals))))
		}
		rows = next
	}
	pooled := autograd.MeanVecs(rows)
	mu := m.muHead.Apply(pooled)
	logvar := m.lvHead.Apply(pooled)
	kl := autograd.GaussianKL(mu, logvar)

	if !m.training {
		return mu, kl
	}
	eps := make([]float64, mu.Len())
	for i := range eps {
		eps[i] = m.rng.NormFloat64()
	}
	return autograd.GaussianSample(mu, logvar, eps), kl
}

// attend is scaled dot-product attention of one query over the keys.
func attend(q *autograd.Vec, keys, vals []*autograd.Vec) *autograd.Vec {
	scores := make([]*autograd.Scalar, len(keys))
	for s, k := range keys {
		scores[s] = q.Dot(k)
	}
	return autograd.WeightedSum(autograd.Softmax(scores), vals)
}

// expectation reads the histogram head: softmax the logits and take the
// mean and standard deviation over the bin centers.
func (m *LatentBinModel) expectation(logits []float64) (mean, std float64) {
	maxVal := logits[0]
	for _, v := range logits[1:] {
		if v > maxVal {
			maxVal = v
		}
	}
	total := 0.0
	probs := make([]float64, len(logits))
	for i, v := range logits {
		probs[i] = math.Exp(v - maxVal)
		total += probs[i]
	}
	for i, p := range probs {
		probs[i] = p / total
		mean += probs[i] * m.centers[i]
	}
	variance := 0.0
	for i, p := range probs {
		d := m.centers[i] - mean
		variance += p * d * d
	}
	return mean, math.Sqrt(variance)
}
