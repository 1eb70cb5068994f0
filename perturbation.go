package qlock

import "math"

// DefaultEpsilon scales signature entries into angle offsets.
const DefaultEpsilon = 0.01

// Perturb returns epsilon times the signature entry addressed by gateIndex,
// which wraps around the signature length. An empty signature yields 0.
func Perturb(signature []float64, gateIndex int, epsilon float64) float64 {
	n := len(signature)
	if n == 0 {
		return 0
	}
	idx := gateIndex % n
	if idx < 0 {
		idx += n
	}
	return epsilon * signature[idx]
}

// PerturbationBound is the largest magnitude Perturb can return for signature.
func PerturbationBound(signature []float64, epsilon float64) float64 {
	peak := 0.0
	for _, v := range signature {
		peak = math.Max(peak, math.Abs(v))
	}
	return math.Abs(epsilon) * peak
}
