// Package nn implements the fixed-shape multilayer perceptron used by the
// trainer: zero-centered logistic activations, the shared weight tensor, and
// manually differentiated forward/backward passes that accumulate gradients
// into per-worker buffers.
package nn

import "math"

// Logistic is the zero-centered logistic activation with codomain (-0.5, 0.5).
func Logistic(x float64) float64 {
	return 1/(1+math.Exp(-x)) - 0.5
}

// LogisticPrime evaluates the derivative of Logistic at the point whose
// activation value is y, via the identity f'(x) = (0.5+f(x))(0.5-f(x)).
// This avoids recomputing an exponential during backpropagation.
func LogisticPrime(y float64) float64 {
	return (0.5 + y) * (0.5 - y)
}
