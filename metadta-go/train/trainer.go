package train

import (
	"context"
	"fmt"
	"math"

	"github.com/sbwhitecap/tqdm"
	"github.com/sbwhitecap/tqdm/iterators"
	"go.uber.org/zap"

	"github.com/pippaduckett1/MetaDTA/metadta-go/config"
	"github.com/pippaduckett1/MetaDTA/metadta-go/dataset"
	"github.com/pippaduckett1/MetaDTA/metadta-go/episode"
	"github.com/pippaduckett1/MetaDTA/metadta-go/predict"
	"github.com/pippaduckett1/MetaDTA/metadta-golib/autograd"
	"github.com/pippaduckett1/MetaDTA/metadta-golib/errors"
	"github.com/pippaduckett1/MetaDTA/metadta-golib/logging"
)

// Model is what the trainer needs from a predictor: the episodic contract
// plus checkpointable parameters.
type Model interface {
	predict.Predictor
	State() predict.ModelState
	Restore(state predict.ModelState) error
}

// Point is one epoch of training history.
type Point struct {
	Epoch int
	Train Metrics
	Valid Metrics
}

// Result is what a completed run hands back.
type Result struct {
	// Best is the lowest-validation-loss snapshot, also persisted to the
	// checkpoint path. It is the initial state if no epoch ever improved.
	Best Checkpoint
	// BestLoss is the validation loss of Best, +Inf if no epoch improved.
	BestLoss float64
	// BestEpoch is the epoch that produced Best, -1 if none improved.
	BestEpoch int
	History   []Point
}

// Trainer owns the model and optimizer for one run. The loop is single
// threaded: loader workers prefetch batches, but every forward, backward
// and parameter update happens on the calling goroutine.
type Trainer struct {
	cfg   config.Config
	model Model
	opt   *predict.Adam
	train *dataset.Loader
	valid *dataset.Loader
	log   *zap.SugaredLogger

	// step counts optimizer steps across the whole run; it never resets
	// between epochs and is incremented before the schedule is read.
	step int
}

// NewTrainer wires a run together.
func NewTrainer(cfg config.Config, model Model, opt *predict.Adam, trainLoader, validLoader *dataset.Loader) *Trainer {
	return &Trainer{
		cfg:   cfg,
		model: model,
		opt:   opt,
		train: trainLoader,
		valid: validLoader,
		log:   logging.Sugared(),
	}
}

// Run trains for cfg.NEpochs epochs, checkpointing whenever the validation
// loss strictly improves and leaving the model restored to its best state.
// With cfg.Patience > 0 the run stops early after that many consecutive
// epochs without improvement; zero disables the mechanism. A degenerate
// epoch (no labeled query positions) aborts the run; checkpoints from
// earlier improved epochs stay on disk.
func (t *Trainer) Run(ctx context.Context) (*Result, error) {
	res := &Result{
		Best: Checkpoint{
			ModelState:     t.model.State(),
			OptimizerState: t.opt.State(),
			Config:         t.cfg,
		},
		BestLoss:  math.Inf(1),
		BestEpoch: -1,
	}

	bad := 0
	for epoch := 0; epoch < t.cfg.NEpochs; epoch++ {
		trainM, err := t.trainEpoch(ctx, epoch)
		if err != nil {
			return nil, errors.Wrapf(err, "training epoch %d", epoch)
		}
		validM, err := t.validEpoch(ctx, epoch)
		if err != nil {
			return nil, errors.Wrapf(err, "validating epoch %d", epoch)
		}
		t.log.Infof("Epoch[%d/%d] | train_loss:%.3f | train_mae:%.3f | val_loss:%.3f | val_mae:%.3f",
			epoch, t.cfg.NEpochs, trainM.Loss, trainM.MAE, validM.Loss, validM.MAE)
		res.History = append(res.History, Point{Epoch: epoch, Train: trainM, Valid: validM})

		if validM.Loss < res.BestLoss {
			res.BestLoss = validM.Loss
			res.BestEpoch = epoch
			bad = 0
			res.Best = Checkpoint{
				ModelState:     t.model.State(),
				OptimizerState: t.opt.State(),
				Config:         t.cfg,
			}
			if err := SaveCheckpoint(CheckpointPath(t.cfg), res.Best); err != nil {
				return nil, err
			}
			continue
		}
		if t.cfg.Patience > 0 {
			bad++
			if bad >= t.cfg.Patience {
				t.log.Infof("stopping early after %d epochs without improvement", bad)
				break
			}
		}
	}

	if err := t.model.Restore(res.Best.ModelState); err != nil {
		return nil, errors.Wrapf(err, "restoring best model")
	}
	return res, nil
}

func (t *Trainer) trainEpoch(ctx context.Context, epoch int) (Metrics, error) {
	t.model.SetTraining(true)
	autograd.SetGradEnabled(true)

	ictx, cancel := context.WithCancel(ctx)
	defer cancel()
	batches, errFn := t.train.Batches(ictx, epoch)

	agg := &Aggregator{}
	err := forEachBatch(batches, t.train.NumBatches(), fmt.Sprintf("Epoch %d", epoch), t.cfg.NoProgress,
		func(b episode.Batch) error {
			t.step++
			t.opt.SetLR(NoamLR(t.cfg.LR, t.step, DefaultWarmup))
			out, err := t.model.Forward(b)
			if err != nil {
				return err
			}
			t.opt.ZeroGrad()
			autograd.Backward(out.Loss)
			t.opt.Step()
			agg.Observe(b, out)
			return nil
		})
	if err != nil {
		return Metrics{}, err
	}
	if err := errFn(); err != nil {
		return Metrics{}, err
	}
	return agg.Metrics()
}

func (t *Trainer) validEpoch(ctx context.Context, epoch int) (Metrics, error) {
	return runEval(ctx, t.model, t.valid, epoch, fmt.Sprintf("Epoch %d valid", epoch), t.cfg.NoProgress)
}

// forEachBatch drains batches through fn, behind a progress bar unless the
// run is non-interactive. The expected batch count only sizes the bar.
func forEachBatch(batches <-chan episode.Batch, n int, desc string, noProgress bool, fn func(episode.Batch) error) error {
	if noProgress {
		for b := range batches {
			if err := fn(b); err != nil {
				return err
			}
		}
		return nil
	}

	var failure error
	err := tqdm.With(iterators.Interval(0, n), desc, func(v interface{}) (brk bool) {
		b, ok := <-batches
		if !ok {
			return true
		}
		if err := fn(b); err != nil {
			failure = err
			return true
		}
		return
	})
	if failure != nil {
		return failure
	}
	return err
}
