// Package report renders evaluation artifacts. Both entry points consume a
// prediction sequence aligned index-for-index with the evaluation suffix and
// produce a PNG image.
package report

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"sepnet/internal/model"
)

const histogramBuckets = 1000

// ScoreHistogram writes a log-count histogram of scores, one line per class,
// each class weighted by the opposite class's realized fraction so that both
// lines are comparable despite class imbalance.
func ScoreHistogram(predictions []float64, evaluation []model.Event, path string) error {
	if len(predictions) != len(evaluation) {
		return fmt.Errorf("prediction count %d does not match evaluation subset size %d",
			len(predictions), len(evaluation))
	}

	background := 0
	for i := range evaluation {
		if !evaluation[i].Signal {
			background++
		}
	}
	fractionBackground := float64(background) / float64(len(evaluation))

	var histogram [histogramBuckets][2]float64
	for i, p := range predictions {
		bucket := int(p * histogramBuckets)
		if bucket < 0 {
			bucket = 0
		} else if bucket >= histogramBuckets {
			bucket = histogramBuckets - 1
		}
		if evaluation[i].Signal {
			histogram[bucket][1] += fractionBackground
		} else {
			histogram[bucket][0] += 1 - fractionBackground
		}
	}

	var signalPts, backgroundPts plotter.XYs
	for i := range histogram {
		x := float64(i) / histogramBuckets
		if histogram[i][1] > 0 {
			signalPts = append(signalPts, plotter.XY{X: x, Y: math.Log10(histogram[i][1])})
		}
		if histogram[i][0] > 0 {
			backgroundPts = append(backgroundPts, plotter.XY{X: x, Y: math.Log10(histogram[i][0])})
		}
	}

	plt := plot.New()
	plt.Title.Text = "score histogram"
	plt.X.Label.Text = "score"
	plt.Y.Label.Text = "log10(count)"

	signalLine, err := plotter.NewLine(signalPts)
	if err != nil {
		return fmt.Errorf("signal line: %w", err)
	}
	signalLine.Color = color.RGBA{B: 255, A: 255}

	backgroundLine, err := plotter.NewLine(backgroundPts)
	if err != nil {
		return fmt.Errorf("background line: %w", err)
	}
	backgroundLine.Color = color.RGBA{R: 255, A: 255}

	plt.Add(signalLine, backgroundLine)
	plt.Legend.Add("signal", signalLine)
	plt.Legend.Add("background", backgroundLine)

	return plt.Save(10*vg.Inch, 6*vg.Inch, path)
}
