package dataset

import (
	"math/rand"
	"sort"

	"github.com/pippaduckett1/MetaDTA/metadta-golib/errors"
)

// SupportSize is the fixed number of support-set interactions per episode.
// It is a property of the task formulation, not run configuration.
const SupportSize = 16

// Episode is one sampled few-shot task: up to seqLen interactions of a
// single target protein, with binned and raw affinities aligned to X.
type Episode struct {
	X    [][]float64
	YBin []int
	YRaw []float64
}

type entity struct {
	target int
	rows   []Interaction
}

// MetaDataset holds one entry per target entity that has enough labeled
// interactions to fill a support set and at least one query.
type MetaDataset struct {
	entities    []entity
	fps         *Fingerprints
	binner      Binner
	seqLen      int
	supportSize int
}

// NewMetaDataset groups interactions by target in ascending target order,
// dropping targets with fewer than supportSize+1 interactions.
func NewMetaDataset(rows []Interaction, fps *Fingerprints, binner Binner, seqLen, supportSize int) (*MetaDataset, error) {
	if seqLen <= supportSize {
		return nil, errors.Errorf("seqlen %d must exceed the support size %d", seqLen, supportSize)
	}
	byTarget := make(map[int][]Interaction)
	for _, r := range rows {
		byTarget[r.Target] = append(byTarget[r.Target], r)
	}
	targets := make([]int, 0, len(byTarget))
	for t, trs := range byTarget {
		if len(trs) > supportSize {
			targets = append(targets, t)
		}
	}
	if len(targets) == 0 {
		return nil, errors.Errorf("no target has more than %d labeled interactions", supportSize)
	}
	sort.Ints(targets)

	entities := make([]entity, len(targets))
	for i, t := range targets {
		entities[i] = entity{target: t, rows: byTarget[t]}
	}
	return &MetaDataset{
		entities:    entities,
		fps:         fps,
		binner:      binner,
		seqLen:      seqLen,
		supportSize: supportSize,
	}, nil
}

// Len returns the number of target entities.
func (d *MetaDataset) Len() int { return len(d.entities) }

// Targets returns the entity target ids in dataset order.
func (d *MetaDataset) Targets() []int {
	out := make([]int, len(d.entities))
	for i, e := range d.entities {
		out[i] = e.target
	}
	return out
}

// Binner returns the shared affinity binner.
func (d *MetaDataset) Binner() Binner { return d.binner }

// Episode samples entity i: a shuffled draw of at most seqLen of its
// interactions. The first supportSize drawn items become the support set
// downstream, so the draw order is the support/query split.
func (d *MetaDataset) Episode(i int, rng *rand.Rand) Episode {
	rows := d.entities[i].rows
	perm := rng.Perm(len(rows))

	n := len(rows)
	if n > d.seqLen {
		n = d.seqLen
	}
	ep := Episode{
		X:    make([][]float64, n),
		YBin: make([]int, n),
		YRaw: make([]float64, n),
	}
	for j := 0; j < n; j++ {
		r := rows[perm[j]]
		ep.X[j] = d.fps.Row(r.Ligand)
		ep.YBin[j] = d.binner.Bin(r.Affinity)
		ep.YRaw[j] = r.Affinity
	}
	return ep
}
