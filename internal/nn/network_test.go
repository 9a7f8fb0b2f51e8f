package nn

import (
	"math"
	"math/rand"
	"testing"
)

func TestForwardScoreStrictlyInUnitInterval(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for trial := 0; trial < 200; trial++ {
		depth := 2 + rng.Intn(4)
		units := 1 + rng.Intn(8)
		w := NewWeights(depth, units, rng)
		s := NewScratch(depth, units)
		features := make([]float64, units)
		for i := range features {
			features[i] = rng.Float64()*2 - 1
		}

		score := Forward(w, features, s)
		if score <= 0 || score >= 1 {
			t.Fatalf("trial %d: score %f outside (0, 1)", trial, score)
		}
	}
}

// A depth-3, 4-unit network with uniform per-layer weights collapses to a
// handful of scalar expressions, so the expected score and gradient follow
// directly from the written-out formulas.
func TestForwardBackwardHandComputed(t *testing.T) {
	const (
		depth = 3
		units = 4
		w0    = 0.1  // every layer-0 weight
		w1    = -0.2 // every layer-1 weight
		bias  = 0.3
	)
	features := []float64{0.5, -0.25, 1, 0}

	w := NewZeroWeights(depth, units)
	for j := 0; j < units; j++ {
		for k := 0; k < units; k++ {
			w.Set(0, j, k, w0)
			w.Set(1, j, k, w1)
		}
	}

	sigmoid := func(x float64) float64 { return 1 / (1 + math.Exp(-x)) }
	prime := func(y float64) float64 { return (0.5 + y) * (0.5 - y) }

	featureSum := 0.5 - 0.25 + 1 + 0
	a := sigmoid(w0*featureSum) - 0.5 // every layer-1 activation
	b := sigmoid(w1*4*a) - 0.5        // every layer-2 activation
	wantScore := sigmoid(4 * b)

	s := NewScratch(depth, units)
	score := Forward(w, features, s)
	if math.Abs(score-wantScore) > 1e-12 {
		t.Fatalf("forward score: got=%.15f want=%.15f", score, wantScore)
	}

	// Single training claim with target 1.
	acc := NewZeroWeights(depth, units)
	Backward(w, s, score, 1, bias, acc)

	outputError := (1 - score) * bias * prime(score-0.5)
	e2 := outputError / units * prime(b)
	e1 := 4 * e2 * w1 * prime(a)

	for j := 0; j < units; j++ {
		for k := 0; k < units; k++ {
			want0 := e1 * features[k]
			if got := acc.At(0, j, k); math.Abs(got-want0) > 1e-12 {
				t.Fatalf("gradient layer 0 [%d][%d]: got=%.15f want=%.15f", j, k, got, want0)
			}
			want1 := e2 * a
			if got := acc.At(1, j, k); math.Abs(got-want1) > 1e-12 {
				t.Fatalf("gradient layer 1 [%d][%d]: got=%.15f want=%.15f", j, k, got, want1)
			}
		}
	}
}

func TestBackwardAccumulates(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	w := NewWeights(3, 4, rng)
	s := NewScratch(3, 4)
	features := []float64{0.2, 0.4, -0.6, 0.8}

	once := NewZeroWeights(3, 4)
	score := Forward(w, features, s)
	Backward(w, s, score, 0, 0.5, once)

	twice := NewZeroWeights(3, 4)
	for i := 0; i < 2; i++ {
		score := Forward(w, features, s)
		Backward(w, s, score, 0, 0.5, twice)
	}

	doubled := once.Clone()
	doubled.Add(once)
	if !twice.Equal(doubled, 1e-12) {
		t.Fatal("two identical claims did not accumulate to twice one claim")
	}
}

func TestBackwardLeavesWeightsUntouched(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	w := NewWeights(4, 3, rng)
	before := w.Clone()

	s := NewScratch(4, 3)
	acc := NewZeroWeights(4, 3)
	score := Forward(w, []float64{0.1, -0.2, 0.3}, s)
	Backward(w, s, score, 1, 0.4, acc)

	if !w.Equal(before, 0) {
		t.Fatal("backward pass mutated the weight tensor")
	}
}
