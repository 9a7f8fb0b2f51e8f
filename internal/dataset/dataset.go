// Package dataset builds the immutable labeled event sequence consumed by the
// trainer. Construction runs once at startup: per-feature series are read
// from each labeled source, events whose diagnostic value is inconsistent
// with their label are cut, features are normalized by their per-feature
// maximum, and the shuffled sequence is split into a training prefix and an
// evaluation suffix.
package dataset

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"runtime"
	"slices"
	"sync"
	"sync/atomic"

	"sepnet/internal/model"
)

// Source is one labeled input: a directory of per-feature series files, all
// carrying the same signal/background label.
type Source struct {
	Path   string
	Signal bool
}

// Config describes how to assemble a Dataset.
type Config struct {
	// FeatureNames are the series used as network inputs, in input order.
	FeatureNames []string
	// DiagnosticName is the series used by the consistency cut only; it is
	// never normalized and never fed to the network.
	DiagnosticName string
	Sources        []Source

	// Events whose diagnostic value lies within HalfWidth of Center must be
	// labeled signal, and events outside must be labeled background; the
	// rest are cut.
	DiagnosticCenter    float64
	DiagnosticHalfWidth float64

	// SplitFraction is the training prefix share; 0.9 when unset.
	SplitFraction float64
	// Seed drives the one-time shuffle before the split is fixed.
	Seed int64
	// Readers bounds concurrent series reads; NumCPU when unset.
	Readers int
}

// Dataset is the ordered event sequence, logically split at TrainingCutoff
// into a training prefix and an evaluation suffix. It is never reordered
// after construction.
type Dataset struct {
	Events         []model.Event
	TrainingCutoff int

	FractionSignal     float64
	FractionBackground float64
	FeatureMax         []float64
}

// Training returns the training prefix.
func (d *Dataset) Training() []model.Event {
	return d.Events[:d.TrainingCutoff]
}

// Evaluation returns the evaluation suffix.
func (d *Dataset) Evaluation() []model.Event {
	return d.Events[d.TrainingCutoff:]
}

// ClassBias returns the error reweighting factor for an event with the given
// label: the realized fraction of the opposite class, which compensates
// class imbalance without resampling.
func (d *Dataset) ClassBias(signal bool) float64 {
	if signal {
		return d.FractionBackground
	}
	return d.FractionSignal
}

// Build assembles a Dataset from per-feature series files on disk.
func Build(cfg Config) (*Dataset, error) {
	return BuildFromReaders(cfg, func(src Source, column string) ([]float64, error) {
		return ReadSeries(src.Path, column)
	})
}

// BuildFromReaders assembles a Dataset using read to fetch each named series
// of each source. A series length mismatch within one source means the
// threaded ingestion's integrity is violated and is reported as an error.
func BuildFromReaders(cfg Config, read func(src Source, column string) ([]float64, error)) (*Dataset, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	columns := make([]string, 0, len(cfg.FeatureNames)+1)
	columns = append(columns, cfg.FeatureNames...)
	columns = append(columns, cfg.DiagnosticName)

	var events []model.Event
	for _, src := range cfg.Sources {
		if err := ingestSource(cfg, src, columns, &events, read); err != nil {
			return nil, err
		}
	}

	events = slices.DeleteFunc(events, func(e model.Event) bool {
		inWindow := math.Abs(e.Diagnostic-cfg.DiagnosticCenter) < cfg.DiagnosticHalfWidth
		return inWindow != e.Signal
	})
	if len(events) == 0 {
		return nil, errors.New("no events survived the consistency cut")
	}

	background := 0
	for i := range events {
		if !events[i].Signal {
			background++
		}
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	rng.Shuffle(len(events), func(i, j int) {
		events[i], events[j] = events[j], events[i]
	})

	featureMax := normalize(events, len(cfg.FeatureNames), cfg.readers())

	split := cfg.SplitFraction
	if split <= 0 || split >= 1 {
		split = 0.9
	}
	cutoff := int(float64(len(events)) * split)
	if cutoff < 1 {
		cutoff = 1
	}
	if cutoff >= len(events) {
		cutoff = len(events) - 1
	}

	fractionBackground := float64(background) / float64(len(events))
	return &Dataset{
		Events:             events,
		TrainingCutoff:     cutoff,
		FractionSignal:     1 - fractionBackground,
		FractionBackground: fractionBackground,
		FeatureMax:         featureMax,
	}, nil
}

func (cfg Config) validate() error {
	if len(cfg.FeatureNames) == 0 {
		return errors.New("at least one feature name is required")
	}
	if cfg.DiagnosticName == "" {
		return errors.New("diagnostic series name is required")
	}
	if len(cfg.Sources) == 0 {
		return errors.New("at least one source is required")
	}
	if cfg.DiagnosticHalfWidth <= 0 {
		return errors.New("diagnostic half-width must be positive")
	}
	return nil
}

func (cfg Config) readers() int {
	if cfg.Readers > 0 {
		return cfg.Readers
	}
	return runtime.NumCPU()
}

// ingestSource reads every column series of one source concurrently. The
// first column to arrive grows the event slab exactly once; every later
// column must report the same length. Column writes are disjoint, so only
// the slab growth needs the lock.
func ingestSource(cfg Config, src Source, columns []string, events *[]model.Event, read func(Source, string) ([]float64, error)) error {
	old := len(*events)
	featureCount := len(cfg.FeatureNames)

	var (
		mu       sync.Mutex
		firstErr error
		next     atomic.Int64
		wg       sync.WaitGroup
	)

	workers := cfg.readers()
	if workers > len(columns) {
		workers = len(columns)
	}
	for n := 0; n < workers; n++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				i := int(next.Add(1)) - 1
				if i >= len(columns) {
					return
				}
				column := columns[i]

				values, err := read(src, column)

				mu.Lock()
				if err != nil {
					if firstErr == nil {
						firstErr = fmt.Errorf("read series %s from %s: %w", column, src.Path, err)
					}
					mu.Unlock()
					return
				}
				if len(*events) == old {
					for r := 0; r < len(values); r++ {
						*events = append(*events, model.Event{Features: make([]float64, featureCount)})
					}
				}
				if old+len(values) != len(*events) {
					if firstErr == nil {
						firstErr = fmt.Errorf("inconsistent series lengths in %s: column %s has %d rows, expected %d",
							src.Path, column, len(values), len(*events)-old)
					}
					mu.Unlock()
					return
				}
				mu.Unlock()

				for r, v := range values {
					event := &(*events)[old+r]
					if i < featureCount {
						event.Features[i] = v
					} else {
						event.Diagnostic = v
					}
				}
			}
		}()
	}
	wg.Wait()

	if firstErr != nil {
		return firstErr
	}
	for r := old; r < len(*events); r++ {
		(*events)[r].Signal = src.Signal
	}
	return nil
}

// normalize divides every feature by its realized maximum, one feature per
// claim across a small worker pool. All-zero features are left untouched.
func normalize(events []model.Event, featureCount, workers int) []float64 {
	featureMax := make([]float64, featureCount)

	var (
		next atomic.Int64
		wg   sync.WaitGroup
	)
	if workers > featureCount {
		workers = featureCount
	}
	for n := 0; n < workers; n++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				f := int(next.Add(1)) - 1
				if f >= featureCount {
					return
				}
				max := events[0].Features[f]
				for i := range events {
					if events[i].Features[f] > max {
						max = events[i].Features[f]
					}
				}
				featureMax[f] = max
				if max == 0 {
					continue
				}
				for i := range events {
					events[i].Features[f] /= max
				}
			}
		}()
	}
	wg.Wait()
	return featureMax
}
