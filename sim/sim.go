/*
Package sim samples measurement outcomes from circuits. The Simulator is an
exact statevector backend with a seeded random source, so the same circuit,
seed and shot count always produce the same counts.
*/
package sim

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/theapemachine/qlock/circuit"
	"github.com/theapemachine/qlock/dist"
)

var (
	ErrTooManyQubits         = errors.New("circuit exceeds simulator qubit limit")
	ErrUnsupportedGate       = errors.New("unsupported gate")
	ErrMidCircuitMeasurement = errors.New("gate acts on an already measured qubit")
	ErrInvalidShots          = errors.New("shots must be positive")
)

// DefaultMaxQubits bounds the statevector at 2^20 amplitudes.
const DefaultMaxQubits = 20

// shotBatch is how many shots are drawn between context checks.
const shotBatch = 1024

/*
Backend runs a circuit for a caller-supplied number of shots and returns the
observed counts. Implementations must not retry on their own.
*/
type Backend interface {
	Run(ctx context.Context, c *circuit.Circuit, shots int) (dist.Counts, error)
}

// Simulator is the in-process statevector Backend.
type Simulator struct {
	seed      uint64
	maxQubits int
}

type Option func(*Simulator)

func WithSeed(seed uint64) Option {
	return func(s *Simulator) {
		s.seed = seed
	}
}

func WithMaxQubits(n int) Option {
	return func(s *Simulator) {
		if n > 0 {
			s.maxQubits = n
		}
	}
}

func NewSimulator(opts ...Option) *Simulator {
	s := &Simulator{maxQubits: DefaultMaxQubits}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

/*
Run evolves the statevector through every unitary gate, then samples the
terminal measurements. A circuit without measurements is measured on every
qubit into a fresh `meas` register first.
*/
func (s *Simulator) Run(ctx context.Context, c *circuit.Circuit, shots int) (dist.Counts, error) {
	if shots <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidShots, shots)
	}
	if c == nil {
		return nil, fmt.Errorf("sim: nil circuit")
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("sim: %w", err)
	}
	if n := c.NumQubits(); n > s.maxQubits {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyQubits, n, s.maxQubits)
	}
	if !c.HasMeasurements() {
		c = c.MeasureAll()
	}

	state, readout, err := s.evolve(ctx, c)
	if err != nil {
		return nil, err
	}
	return s.sample(ctx, c, state, readout, shots)
}

// evolve returns the final state and, per classical bit, the qubit measured into it (-1 if none).
func (s *Simulator) evolve(ctx context.Context, c *circuit.Circuit) (*stateVector, []int, error) {
	state := newStateVector(c.NumQubits())
	readout := make([]int, c.NumClbits())
	for i := range readout {
		readout[i] = -1
	}
	measured := make([]bool, c.NumQubits())
	touched := make([]bool, c.NumQubits())

	for i, g := range c.Gates {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		switch g.Name {
		case "barrier":
			continue
		case "measure":
			measured[g.Qubits[0]] = true
			readout[g.Clbits[0]] = g.Qubits[0]
			continue
		}

		for _, q := range g.Qubits {
			if measured[q] {
				return nil, nil, fmt.Errorf("%w: gate %d (%s) on qubit %d", ErrMidCircuitMeasurement, i, g.Name, q)
			}
		}

		if g.Name == "reset" {
			if touched[g.Qubits[0]] {
				return nil, nil, fmt.Errorf("%w: reset after use of qubit %d", ErrUnsupportedGate, g.Qubits[0])
			}
			continue
		}

		if err := state.applyGate(g); err != nil {
			return nil, nil, fmt.Errorf("gate %d: %w", i, err)
		}
		for _, q := range g.Qubits {
			touched[q] = true
		}
	}
	return state, readout, nil
}

func (s *Simulator) sample(
	ctx context.Context, c *circuit.Circuit, state *stateVector, readout []int, shots int,
) (dist.Counts, error) {
	probs := state.probabilities()
	cdf := floats.CumSum(make([]float64, len(probs)), probs)
	total := cdf[len(cdf)-1]

	rng := rand.New(rand.NewPCG(s.seed, s.seed^0x9e3779b97f4a7c15))
	outcomes := make(map[int]int)

	for shot := 0; shot < shots; shot++ {
		if shot%shotBatch == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		u := rng.Float64() * total
		idx := sort.SearchFloat64s(cdf, u)
		for idx < len(cdf)-1 && cdf[idx] <= u {
			idx++
		}
		outcomes[idx]++
	}

	counts := make(dist.Counts, len(outcomes))
	for idx, n := range outcomes {
		counts[bitstring(c.CRegs, readout, idx)] += n
	}
	return counts, nil
}

/*
bitstring renders a basis state as classical register contents: highest bit
first within a register, registers separated by a space with the last
declared register leftmost.
*/
func bitstring(cregs []circuit.Register, readout []int, basis int) string {
	parts := make([]string, len(cregs))
	offset := 0
	for r, reg := range cregs {
		var sb strings.Builder
		for b := reg.Size - 1; b >= 0; b-- {
			q := readout[offset+b]
			if q >= 0 && basis&(1<<q) != 0 {
				sb.WriteByte('1')
			} else {
				sb.WriteByte('0')
			}
		}
		parts[len(cregs)-1-r] = sb.String()
		offset += reg.Size
	}
	return strings.Join(parts, " ")
}
