package sim

import (
	"math"
	"math/cmplx"
)

type matrix [2][2]complex128

var (
	identity = matrix{{1, 0}, {0, 1}}
	pauliX   = matrix{{0, 1}, {1, 0}}
	pauliY   = matrix{{0, -1i}, {1i, 0}}
	pauliZ   = matrix{{1, 0}, {0, -1}}
	hadamard = matrix{{1 / math.Sqrt2, 1 / math.Sqrt2}, {1 / math.Sqrt2, -1 / math.Sqrt2}}
	sqrtX    = matrix{{0.5 + 0.5i, 0.5 - 0.5i}, {0.5 - 0.5i, 0.5 + 0.5i}}
	sqrtXdg  = matrix{{0.5 - 0.5i, 0.5 + 0.5i}, {0.5 + 0.5i, 0.5 - 0.5i}}
)

func phase(lambda float64) matrix {
	return matrix{{1, 0}, {0, cmplx.Exp(complex(0, lambda))}}
}

func rx(theta float64) matrix {
	c, s := complex(math.Cos(theta/2), 0), complex(0, -math.Sin(theta/2))
	return matrix{{c, s}, {s, c}}
}

func ry(theta float64) matrix {
	c, s := complex(math.Cos(theta/2), 0), complex(math.Sin(theta/2), 0)
	return matrix{{c, -s}, {s, c}}
}

func rz(theta float64) matrix {
	return matrix{
		{cmplx.Exp(complex(0, -theta/2)), 0},
		{0, cmplx.Exp(complex(0, theta/2))},
	}
}

func u3(theta, phi, lambda float64) matrix {
	c, s := math.Cos(theta/2), math.Sin(theta/2)
	return matrix{
		{complex(c, 0), -cmplx.Exp(complex(0, lambda)) * complex(s, 0)},
		{cmplx.Exp(complex(0, phi)) * complex(s, 0), cmplx.Exp(complex(0, phi+lambda)) * complex(c, 0)},
	}
}

// stateVector holds 2^n amplitudes; qubit k is bit k of the basis index.
type stateVector struct {
	amps []complex128
}

func newStateVector(numQubits int) *stateVector {
	amps := make([]complex128, 1<<numQubits)
	amps[0] = 1
	return &stateVector{amps: amps}
}

func controlled(i int, controls []int) bool {
	for _, c := range controls {
		if i&(1<<c) == 0 {
			return false
		}
	}
	return true
}

// apply acts with m on target wherever every control qubit is set.
func (s *stateVector) apply(m matrix, target int, controls ...int) {
	bit := 1 << target
	for i := range s.amps {
		if i&bit != 0 || !controlled(i, controls) {
			continue
		}
		j := i | bit
		a, b := s.amps[i], s.amps[j]
		s.amps[i] = m[0][0]*a + m[0][1]*b
		s.amps[j] = m[1][0]*a + m[1][1]*b
	}
}

func (s *stateVector) swap(a, b int, controls ...int) {
	ba, bb := 1<<a, 1<<b
	for i := range s.amps {
		if i&ba == 0 || i&bb != 0 || !controlled(i, controls) {
			continue
		}
		j := i ^ ba ^ bb
		s.amps[i], s.amps[j] = s.amps[j], s.amps[i]
	}
}

// zz applies exp(-i theta/2 Z⊗Z).
func (s *stateVector) zz(theta float64, a, b int) {
	even := cmplx.Exp(complex(0, -theta/2))
	odd := cmplx.Exp(complex(0, theta/2))
	for i := range s.amps {
		if (i>>a)&1 == (i>>b)&1 {
			s.amps[i] *= even
		} else {
			s.amps[i] *= odd
		}
	}
}

func (s *stateVector) probabilities() []float64 {
	p := make([]float64, len(s.amps))
	for i, a := range s.amps {
		p[i] = real(a)*real(a) + imag(a)*imag(a)
	}
	return p
}
