package qlock

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
)

// Phi is the golden ratio (1+√5)/2.
const Phi = 1.61803398874989484820458683436563811772030917980576

// latentGain is the tanh squashing gain applied before the spectral phase walk.
const latentGain = 0.12

/*
Reweight multiplies entry i by cos(2π·i·φ) and rescales the result to unit
L2 norm. A vector that collapses to zero norm comes back as zeros of the same
length. The input is not modified.
*/
func Reweight(vec []float64) []float64 {
	out := make([]float64, len(vec))
	for i, v := range vec {
		out[i] = v * math.Cos(2*math.Pi*float64(i)*Phi)
	}
	return unitNorm(out)
}

/*
LatentTransform squashes the vector with tanh, rotates the phase of rFFT
coefficient k by 2πk/(K-1), transforms back, mean-centres and rescales to unit
L2 norm. A zero-norm result is returned unnormalised.
*/
func LatentTransform(vec []float64) []float64 {
	n := len(vec)
	if n == 0 {
		return []float64{}
	}

	w := make([]float64, n)
	for i, v := range vec {
		w[i] = math.Tanh(latentGain * v)
	}

	fft := fourier.NewFFT(n)
	coeff := fft.Coefficients(nil, w)
	k := len(coeff)
	for i := range coeff {
		theta := 0.0
		if k > 1 {
			theta = 2 * math.Pi * float64(i) / float64(k-1)
		}
		coeff[i] *= cmplx.Exp(complex(0, theta))
	}

	out := fft.Sequence(nil, coeff)
	floats.Scale(1/float64(n), out)
	floats.AddConst(-floats.Sum(out)/float64(n), out)
	return unitNorm(out)
}

func unitNorm(vec []float64) []float64 {
	norm := floats.Norm(vec, 2)
	if norm == 0 {
		return vec
	}
	floats.Scale(1/norm, vec)
	return vec
}
