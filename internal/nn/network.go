package nn

import (
	"gonum.org/v1/gonum/floats"
)

// Scratch holds the transient activation and error buffers for one claim.
// Each worker owns exactly one Scratch and reuses it between claims; nothing
// here is shared or aliased.
type Scratch struct {
	nodes  [][]float64
	errors [][]float64
}

// NewScratch allocates buffers for a network of the given shape.
func NewScratch(depth, units int) *Scratch {
	s := &Scratch{
		nodes:  make([][]float64, depth),
		errors: make([][]float64, depth),
	}
	for i := 0; i < depth; i++ {
		s.nodes[i] = make([]float64, units)
		s.errors[i] = make([]float64, units)
	}
	return s
}

// Activations exposes the node values left behind by the last Forward call.
func (s *Scratch) Activations(layer int) []float64 {
	return s.nodes[layer]
}

// Forward runs the forward pass for one event and returns its score, which
// lies strictly in (0, 1). Layer 0 activations are the event's features;
// every later node is the zero-centered logistic of a weighted sum of the
// previous layer; the score is the logistic of the summed last-layer
// activations, re-centered to (0, 1). The weight tensor is only read.
func Forward(w *Weights, features []float64, s *Scratch) float64 {
	units := w.Units
	copy(s.nodes[0], features)

	for i := 1; i < len(s.nodes); i++ {
		prev := s.nodes[i-1]
		layer := w.Layers[i-1]
		for j := 0; j < units; j++ {
			s.nodes[i][j] = Logistic(floats.Dot(prev, layer[j*units:(j+1)*units]))
		}
	}

	return Logistic(floats.Sum(s.nodes[len(s.nodes)-1])) + 0.5
}

// Backward propagates the output error of the claim that produced score back
// through the network and adds the resulting gradient into acc. It must be
// called immediately after Forward on the same Scratch. The weight tensor is
// only read; all writes go to the caller's own accumulator, which is what
// keeps the hot arithmetic lock-free.
//
// target is the event label (0 or 1) and bias the class reweighting factor
// compensating signal/background imbalance.
func Backward(w *Weights, s *Scratch, score, target, bias float64, acc *Weights) {
	units := w.Units
	depth := len(s.nodes)

	outputError := (target - score) * bias * LogisticPrime(score-0.5)

	last := s.errors[depth-1]
	for i, activation := range s.nodes[depth-1] {
		last[i] = outputError / float64(units) * LogisticPrime(activation)
	}

	// Propagate through the transpose of each weight matrix.
	for i := depth - 2; i > 0; i-- {
		next := s.errors[i+1]
		layer := w.Layers[i]
		for j := 0; j < units; j++ {
			sum := 0.0
			for k := 0; k < units; k++ {
				sum += next[k] * layer[k*units+j]
			}
			s.errors[i][j] = sum * LogisticPrime(s.nodes[i][j])
		}
	}

	for i := 0; i < depth-1; i++ {
		activations := s.nodes[i]
		layer := acc.Layers[i]
		for j, e := range s.errors[i+1] {
			floats.AddScaled(layer[j*units:(j+1)*units], e, activations)
		}
	}
}
