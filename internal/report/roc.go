package report

import (
	"fmt"
	"image/color"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"sepnet/internal/model"
)

const rocSteps = 10000

// Point is one (false positive rate, true positive rate) pair.
type Point struct {
	FPR float64
	TPR float64
}

// Curve sweeps a score threshold from 0 to 1 across rocSteps steps and
// returns the resulting ROC points together with the area under the curve,
// integrated with the trapezoid rule.
func Curve(predictions []float64, evaluation []model.Event) ([]Point, float64, error) {
	if len(predictions) != len(evaluation) {
		return nil, 0, fmt.Errorf("prediction count %d does not match evaluation subset size %d",
			len(predictions), len(evaluation))
	}

	var signal, background []float64
	for i, p := range predictions {
		if evaluation[i].Signal {
			signal = append(signal, p)
		} else {
			background = append(background, p)
		}
	}
	if len(signal) == 0 || len(background) == 0 {
		return nil, 0, fmt.Errorf("evaluation subset has %d signal and %d background events; both classes are required",
			len(signal), len(background))
	}
	sort.Float64s(signal)
	sort.Float64s(background)

	totalSignal := float64(len(signal))
	totalBackground := float64(len(background))

	points := make([]Point, 0, rocSteps)
	area := 0.0
	prevTPR, prevFPR := 1.0, 1.0
	si, bi := 0, 0
	for i := 1; i <= rocSteps; i++ {
		cut := float64(i) / rocSteps
		for si < len(signal) && signal[si] < cut {
			si++
		}
		for bi < len(background) && background[bi] < cut {
			bi++
		}
		tpr := float64(len(signal)-si) / totalSignal
		fpr := float64(len(background)-bi) / totalBackground

		area += (prevFPR - fpr) * (tpr + prevTPR) / 2
		points = append(points, Point{FPR: fpr, TPR: tpr})
		prevTPR, prevFPR = tpr, fpr
	}
	return points, area, nil
}

// ROCCurve renders the ROC curve PNG and returns the area under it.
func ROCCurve(predictions []float64, evaluation []model.Event, path string) (float64, error) {
	points, area, err := Curve(predictions, evaluation)
	if err != nil {
		return 0, err
	}

	pts := make(plotter.XYs, len(points))
	for i, p := range points {
		pts[i] = plotter.XY{X: p.FPR, Y: p.TPR}
	}

	plt := plot.New()
	plt.Title.Text = "ROC curve"
	plt.X.Label.Text = "false positive rate"
	plt.Y.Label.Text = "true positive rate"

	line, err := plotter.NewLine(pts)
	if err != nil {
		return 0, fmt.Errorf("roc line: %w", err)
	}
	line.Color = color.RGBA{B: 255, A: 255}

	plt.Add(line)
	plt.Legend.Add(fmt.Sprintf("AUC = %.6f", area), line)

	if err := plt.Save(10*vg.Inch, 6*vg.Inch, path); err != nil {
		return 0, err
	}
	return area, nil
}
