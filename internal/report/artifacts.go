package report

import (
	"fmt"
	"os"
	"path/filepath"

	"sepnet/internal/model"
)

const (
	histogramFile = "score_histogram.png"
	rocFile       = "roc_curve.png"
)

// Artifacts renders both evaluation artifacts into a directory, overwriting
// the previous round's images. It implements the trainer's Reporter contract
// and is only ever called from the single elected controller, so it keeps
// plain counters.
type Artifacts struct {
	// Dir receives the PNG files; created on first use.
	Dir string
	// OnEvaluation, when set, observes each completed round, typically to
	// journal the AUC.
	OnEvaluation func(round int, auc float64, predictions int) error

	rounds int
}

// ReportEvaluation renders the histogram and ROC curve for one finished
// evaluation round.
func (a *Artifacts) ReportEvaluation(predictions []float64, evaluation []model.Event) error {
	if err := os.MkdirAll(a.Dir, 0o755); err != nil {
		return fmt.Errorf("create artifacts dir: %w", err)
	}

	if err := ScoreHistogram(predictions, evaluation, filepath.Join(a.Dir, histogramFile)); err != nil {
		return err
	}
	auc, err := ROCCurve(predictions, evaluation, filepath.Join(a.Dir, rocFile))
	if err != nil {
		return err
	}

	a.rounds++
	if a.OnEvaluation != nil {
		return a.OnEvaluation(a.rounds, auc, len(predictions))
	}
	return nil
}
