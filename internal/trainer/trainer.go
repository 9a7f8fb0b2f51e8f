// Package trainer runs the concurrent train/evaluate loop: a fixed pool of
// workers claims work through one shared atomic counter, computes forward and
// backward passes against the shared weight tensor, and rendezvouses at a
// barrier where a single elected worker aggregates gradients and executes the
// operator command loop.
package trainer

import (
	"errors"
	"fmt"
	"io"
	"math/rand"
	"runtime"
	"sync"
	"sync/atomic"

	"sepnet/internal/dataset"
	"sepnet/internal/model"
	"sepnet/internal/nn"
)

// maxRoundBudget bounds how many training claims elapse between controller
// checkpoints, keeping the reporting cadence responsive for large repetition
// requests.
const maxRoundBudget = 100

// Reporter consumes one finished evaluation round. Predictions are aligned
// index-for-index with the evaluation suffix and are fully visible to the
// reporter: it runs inside the rendezvous, after the disjoint writes of the
// round and before any worker resumes.
type Reporter interface {
	ReportEvaluation(predictions []float64, evaluation []model.Event) error
}

// Config assembles a Trainer.
type Config struct {
	Data *dataset.Dataset
	// Depth is the number of node layers; 5 when unset.
	Depth int
	// Workers is the pool size; max(1, NumCPU-1) when unset.
	Workers int
	Seed    int64
	// Commands supplies operator commands; required.
	Commands CommandSource
	// Reporter receives evaluation rounds; nil disables reporting.
	Reporter Reporter
	// Out receives controller output such as weight dumps; discarded when
	// nil.
	Out io.Writer
}

// Stats counts the work performed across a run.
type Stats struct {
	Rounds           int64
	TrainClaims      int64
	EvaluationRounds int64
}

// Trainer owns the whole training state: the weight tensor, the per-worker
// gradient accumulators, the prediction buffer, and the shared claim
// counter. Weight and mode fields follow a strict phase-separation
// discipline: workers read them only between rendezvous, the controller
// writes them only inside one.
type Trainer struct {
	cfg     Config
	depth   int
	units   int
	workers int
	out     io.Writer

	weights *nn.Weights
	accums  []*nn.Weights
	preds   []float64

	// reps is the shared claim counter. In train mode it is a budget that
	// workers decrement; in evaluate mode a cursor they increment. It is
	// re-armed by the controller strictly before the rendezvous releases.
	reps    atomic.Int64
	mode    Mode
	pending int64

	stop bool
	err  error

	rounds      int64
	evalRounds  int64
	trainClaims atomic.Int64

	barrier *rendezvous
}

// New validates cfg and builds a trainer in its initial state: train mode
// with an empty work budget, so the first round immediately prompts the
// operator.
func New(cfg Config) (*Trainer, error) {
	if cfg.Data == nil || len(cfg.Data.Events) == 0 {
		return nil, errors.New("a non-empty dataset is required")
	}
	if cfg.Data.TrainingCutoff < 1 || cfg.Data.TrainingCutoff >= len(cfg.Data.Events) {
		return nil, fmt.Errorf("training cutoff %d leaves an empty partition", cfg.Data.TrainingCutoff)
	}
	if cfg.Commands == nil {
		return nil, errors.New("a command source is required")
	}

	depth := cfg.Depth
	if depth < 2 {
		depth = 5
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU() - 1
		if workers < 1 {
			workers = 1
		}
	}
	out := cfg.Out
	if out == nil {
		out = io.Discard
	}

	units := len(cfg.Data.Events[0].Features)
	rng := rand.New(rand.NewSource(cfg.Seed))

	t := &Trainer{
		cfg:     cfg,
		depth:   depth,
		units:   units,
		workers: workers,
		out:     out,
		weights: nn.NewWeights(depth, units, rng),
		preds:   make([]float64, len(cfg.Data.Events)-cfg.Data.TrainingCutoff),
		mode:    ModeTrain,
	}
	t.accums = make([]*nn.Weights, workers)
	for i := range t.accums {
		t.accums[i] = nn.NewZeroWeights(depth, units)
	}
	t.barrier = newRendezvous(workers, t.controller)
	return t, nil
}

// Run spawns the worker pool and blocks until the command source is
// exhausted or reporting fails. Workers are spawned once and never recreated.
func (t *Trainer) Run() error {
	var wg sync.WaitGroup
	for id := 0; id < t.workers; id++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			t.worker(id)
		}(id)
	}
	wg.Wait()
	return t.err
}

// Weights exposes the model tensor. Callers must not touch it while Run is
// in flight.
func (t *Trainer) Weights() *nn.Weights {
	return t.weights
}

// Predictions returns a copy of the evaluation prediction buffer.
func (t *Trainer) Predictions() []float64 {
	out := make([]float64, len(t.preds))
	copy(out, t.preds)
	return out
}

// Stats reports work counters; valid once Run has returned.
func (t *Trainer) Stats() Stats {
	return Stats{
		Rounds:           t.rounds,
		TrainClaims:      t.trainClaims.Load(),
		EvaluationRounds: t.evalRounds,
	}
}

// claimTrain performs one train-protocol claim: an atomic decrement whose
// pre-decrement value authorizes work only while it is still positive.
func (t *Trainer) claimTrain() bool {
	return t.reps.Add(-1) >= 0
}

// claimEvaluate performs one evaluate-protocol claim: an atomic increment
// whose pre-increment value is the claimed evaluation ordinal, valid only
// inside the evaluation suffix.
func (t *Trainer) claimEvaluate() (int, bool) {
	ordinal := int(t.reps.Add(1)) - 1
	if ordinal >= len(t.preds) {
		return 0, false
	}
	return ordinal, true
}

func (t *Trainer) worker(id int) {
	rng := rand.New(rand.NewSource(t.cfg.Seed ^ int64(uint64(id+1)*0x9e3779b97f4a7c15)))
	scratch := nn.NewScratch(t.depth, t.units)
	acc := t.accums[id]
	data := t.cfg.Data
	cutoff := data.TrainingCutoff

	for {
		for {
			if t.mode == ModeTrain {
				if !t.claimTrain() {
					break
				}
				event := &data.Events[rng.Intn(cutoff)]
				score := nn.Forward(t.weights, event.Features, scratch)
				nn.Backward(t.weights, scratch, score, event.Target(), data.ClassBias(event.Signal), acc)
				t.trainClaims.Add(1)
			} else {
				ordinal, ok := t.claimEvaluate()
				if !ok {
					break
				}
				event := &data.Events[cutoff+ordinal]
				t.preds[ordinal] = nn.Forward(t.weights, event.Features, scratch)
			}
		}

		t.barrier.await()
		if t.stop {
			return
		}
		// Clear the round's own contribution before any further write.
		acc.Reset()
	}
}

// controller runs once per round as the rendezvous action, with every worker
// parked.
func (t *Trainer) controller() {
	t.rounds++

	// Summation order across workers is unspecified; the result is
	// commutative but not bit-deterministic.
	for _, acc := range t.accums {
		t.weights.Add(acc)
	}

	if t.pending == 0 {
		if t.mode == ModeEvaluate {
			t.evalRounds++
			if t.cfg.Reporter != nil {
				if err := t.cfg.Reporter.ReportEvaluation(t.preds, t.cfg.Data.Evaluation()); err != nil {
					t.shutdown(fmt.Errorf("report evaluation: %w", err))
					return
				}
			}
		}
		if !t.prompt() {
			return
		}
	}

	budget := t.pending
	if budget > maxRoundBudget {
		budget = maxRoundBudget
	}
	t.pending -= budget

	// Re-arm the counter for the next round. No claim can land between this
	// store and the rendezvous release: every worker is still parked.
	t.reps.Store(budget)
}

// prompt drives the operator command loop. It reports false when the run
// should end.
func (t *Trainer) prompt() bool {
	for {
		cmd, err := t.cfg.Commands.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				t.shutdown(nil)
			} else {
				t.shutdown(fmt.Errorf("read command: %w", err))
			}
			return false
		}
		switch cmd.Kind {
		case CommandPrint:
			t.weights.Print(t.out)
		case CommandEvaluate:
			t.mode = ModeEvaluate
			t.pending = 0
			return true
		case CommandTrain:
			reps := cmd.Reps
			if reps < 0 {
				reps = 0
			}
			t.mode = ModeTrain
			t.pending = reps
			return true
		default:
			// Sources only emit the three valid kinds; ignore anything else.
		}
	}
}

func (t *Trainer) shutdown(err error) {
	if t.err == nil {
		t.err = err
	}
	t.stop = true
}
