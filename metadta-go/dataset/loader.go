package dataset

import (
	"context"
	"math/rand"
	"sync"

	"github.com/pippaduckett1/MetaDTA/metadta-go/episode"
	"github.com/pippaduckett1/MetaDTA/metadta-golib/workerpool"
)

// Opts configure a Loader.
type Opts struct {
	BatchSize  int
	NumWorkers int
	// Shuffle permutes entity order per epoch; evaluation loaders keep the
	// fixed dataset order.
	Shuffle bool
	// DropLast discards a trailing partial batch, training semantics.
	DropLast bool
	Seed     int64
}

// Loader streams collated batches for one epoch at a time. Workers prefetch
// batches concurrently but delivery preserves deterministic batch order, so
// a run is reproducible given the seed.
type Loader struct {
	ds   *MetaDataset
	coll FewShotCollator
	opts Opts
}

// NewLoader builds a loader over ds.
func NewLoader(ds *MetaDataset, coll FewShotCollator, opts Opts) *Loader {
	return &Loader{ds: ds, coll: coll, opts: opts}
}

// NumBatches returns the number of batches one epoch yields.
func (l *Loader) NumBatches() int {
	n := l.ds.Len()
	if l.opts.DropLast {
		return n / l.opts.BatchSize
	}
	return (n + l.opts.BatchSize - 1) / l.opts.BatchSize
}

// Batches launches one epoch. The channel closes when the epoch completes or
// aborts; the returned error func reports the first failure and must be
// called only after the channel has closed. The caller must drain the
// channel or cancel ctx, otherwise workers stay blocked.
//
// Episode sampling is seeded per (seed, epoch, entity), so batch content is
// independent of worker scheduling. Evaluation callers pass a fixed epoch to
// make repeated passes identical.
func (l *Loader) Batches(ctx context.Context, epoch int) (<-chan episode.Batch, func() error) {
	order := make([]int, l.ds.Len())
	for i := range order {
		order[i] = i
	}
	if l.opts.Shuffle {
		rng := rand.New(rand.NewSource(l.opts.Seed + int64(epoch)))
		rng.Shuffle(len(order), func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})
	}
	groups := l.groups(order)

	ictx, cancel := context.WithCancel(ctx)
	slots := make([]chan episode.Batch, len(groups))
	for i := range slots {
		slots[i] = make(chan episode.Batch)
	}

	var mu sync.Mutex
	var failure error
	setErr := func(err error) {
		mu.Lock()
		if failure == nil {
			failure = err
		}
		mu.Unlock()
	}

	jobs := make([]workerpool.Job, len(groups))
	for i := range groups {
		i := i
		group := groups[i]
		jobs[i] = func() error {
			select {
			case <-ictx.Done():
				return ictx.Err()
			default:
			}

			eps := make([]Episode, len(group))
			for j, ent := range group {
				seed := l.opts.Seed + int64(epoch)*int64(l.ds.Len()) + int64(ent)
				eps[j] = l.ds.Episode(ent, rand.New(rand.NewSource(seed)))
			}
			batch, err := l.coll.Collate(eps)
			if err != nil {
				setErr(err)
				close(slots[i])
				return err
			}
			select {
			case slots[i] <- batch:
				return nil
			case <-ictx.Done():
				return ictx.Err()
			}
		}
	}

	pool := workerpool.New(l.opts.NumWorkers)
	pool.Add(jobs)

	out := make(chan episode.Batch)
	go func() {
	deliver:
		for i := range slots {
			var batch episode.Batch
			var ok bool
			select {
			case batch, ok = <-slots[i]:
			case <-ictx.Done():
			}
			if !ok {
				break
			}
			select {
			case out <- batch:
			case <-ictx.Done():
				break deliver
			}
		}
		cancel()
		if err := pool.Wait(); err != nil && err != context.Canceled {
			setErr(err)
		}
		pool.Stop()
		close(out)
	}()

	errFn := func() error {
		mu.Lock()
		defer mu.Unlock()
		if failure != nil {
			return failure
		}
		return ctx.Err()
	}
	return out, errFn
}

func (l *Loader) groups(order []int) [][]int {
	var groups [][]int
	for start := 0; start < len(order); start += l.opts.BatchSize {
		end := start + l.opts.BatchSize
		if end > len(order) {
			if l.opts.DropLast {
				break
			}
			end = len(order)
		}
		groups = append(groups, order[start:end])
	}
	return groups
}
