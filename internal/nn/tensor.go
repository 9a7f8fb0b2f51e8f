package nn

import (
	"fmt"
	"io"
	"math/rand"

	"gonum.org/v1/gonum/floats"
)

// Weights holds one square connection matrix per layer transition, each
// stored row-major as a flat slice of Units*Units values. The same shape
// serves both the shared model tensor and the per-worker gradient
// accumulators.
type Weights struct {
	Units  int
	Layers [][]float64
}

// NewWeights returns a tensor for a network of the given depth, with every
// element drawn as U(-2, 2)/units.
func NewWeights(depth, units int, rng *rand.Rand) *Weights {
	w := NewZeroWeights(depth, units)
	for _, layer := range w.Layers {
		for i := range layer {
			layer[i] = (rng.Float64()*4 - 2) / float64(units)
		}
	}
	return w
}

// NewZeroWeights returns an all-zero tensor, the initial state of a gradient
// accumulator.
func NewZeroWeights(depth, units int) *Weights {
	if depth < 2 {
		depth = 2
	}
	layers := make([][]float64, depth-1)
	for i := range layers {
		layers[i] = make([]float64, units*units)
	}
	return &Weights{Units: units, Layers: layers}
}

// Depth returns the number of node layers the tensor connects.
func (w *Weights) Depth() int {
	return len(w.Layers) + 1
}

// At returns the weight of the connection from unit `from` of layer `layer`
// to unit `to` of layer `layer+1`.
func (w *Weights) At(layer, to, from int) float64 {
	return w.Layers[layer][to*w.Units+from]
}

// Set assigns one connection weight; used by tests and hand-built fixtures.
func (w *Weights) Set(layer, to, from int, value float64) {
	w.Layers[layer][to*w.Units+from] = value
}

// Add merges other into w element-wise. Callers are responsible for ensuring
// exclusive access; the trainer only calls this while all workers are parked.
func (w *Weights) Add(other *Weights) {
	for i, layer := range w.Layers {
		floats.Add(layer, other.Layers[i])
	}
}

// Reset zeroes every element in place.
func (w *Weights) Reset() {
	for _, layer := range w.Layers {
		clear(layer)
	}
}

// Clone returns a deep copy.
func (w *Weights) Clone() *Weights {
	out := NewZeroWeights(w.Depth(), w.Units)
	for i, layer := range w.Layers {
		copy(out.Layers[i], layer)
	}
	return out
}

// Equal reports whether both tensors have the same shape and values within
// the given absolute tolerance. Aggregation order across workers is not
// bit-deterministic, so comparisons of trained tensors must use a tolerance.
func (w *Weights) Equal(other *Weights, tolerance float64) bool {
	if w.Units != other.Units || len(w.Layers) != len(other.Layers) {
		return false
	}
	for i, layer := range w.Layers {
		if !floats.EqualApprox(layer, other.Layers[i], tolerance) {
			return false
		}
	}
	return true
}

// Print writes a layer-by-layer dump of the tensor.
func (w *Weights) Print(out io.Writer) {
	for i, layer := range w.Layers {
		fmt.Fprintf(out, "\nweights layer %d:\n", i)
		for j := 0; j < w.Units; j++ {
			for k := 0; k < w.Units; k++ {
				fmt.Fprintf(out, "% f  ", layer[j*w.Units+k])
			}
			fmt.Fprintln(out)
		}
	}
}
