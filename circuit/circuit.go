/*
Package circuit holds the in-memory model of a quantum circuit: flat qubit and
classical bit indices spread over named registers, and an ordered gate list.
*/
package circuit

import (
	"errors"
	"fmt"
	"slices"
)

// ErrInvalidCircuit is returned by Validate.
var ErrInvalidCircuit = errors.New("invalid circuit")

// Gate is a single instruction placed on the circuit.
type Gate struct {
	Name   string    `json:"name"`
	Params []float64 `json:"params,omitempty"`
	Qubits []int     `json:"qubits"`
	Clbits []int     `json:"clbits,omitempty"`
}

// Register is a named, contiguous run of qubits or classical bits.
type Register struct {
	Name string `json:"name"`
	Size int    `json:"size"`
}

/*
Circuit is an ordered list of gates over quantum and classical registers.
Qubit index k addresses the k-th qubit counting across QRegs in declaration
order; classical bits are indexed the same way across CRegs.
*/
type Circuit struct {
	QRegs []Register `json:"qregs"`
	CRegs []Register `json:"cregs"`
	Gates []Gate     `json:"gates"`
}

// New returns an empty circuit with a single `q` and a single `c` register.
func New(numQubits, numClbits int) *Circuit {
	c := &Circuit{}
	if numQubits > 0 {
		c.QRegs = append(c.QRegs, Register{Name: "q", Size: numQubits})
	}
	if numClbits > 0 {
		c.CRegs = append(c.CRegs, Register{Name: "c", Size: numClbits})
	}
	return c
}

func (c *Circuit) NumQubits() int {
	return registerTotal(c.QRegs)
}

func (c *Circuit) NumClbits() int {
	return registerTotal(c.CRegs)
}

func registerTotal(regs []Register) int {
	n := 0
	for _, r := range regs {
		n += r.Size
	}
	return n
}

// Append adds a gate and returns the circuit for chaining.
func (c *Circuit) Append(g Gate) *Circuit {
	c.Gates = append(c.Gates, g)
	return c
}

func (c *Circuit) H(q int) *Circuit { return c.Append(Gate{Name: "h", Qubits: []int{q}}) }
func (c *Circuit) X(q int) *Circuit { return c.Append(Gate{Name: "x", Qubits: []int{q}}) }

func (c *Circuit) RX(theta float64, q int) *Circuit {
	return c.Append(Gate{Name: "rx", Params: []float64{theta}, Qubits: []int{q}})
}

func (c *Circuit) RY(theta float64, q int) *Circuit {
	return c.Append(Gate{Name: "ry", Params: []float64{theta}, Qubits: []int{q}})
}

func (c *Circuit) RZ(theta float64, q int) *Circuit {
	return c.Append(Gate{Name: "rz", Params: []float64{theta}, Qubits: []int{q}})
}

func (c *Circuit) CX(control, target int) *Circuit {
	return c.Append(Gate{Name: "cx", Qubits: []int{control, target}})
}

func (c *Circuit) Measure(q, clbit int) *Circuit {
	return c.Append(Gate{Name: "measure", Qubits: []int{q}, Clbits: []int{clbit}})
}

// Barrier spans the given qubits, or every qubit when none are given.
func (c *Circuit) Barrier(qubits ...int) *Circuit {
	if len(qubits) == 0 {
		qubits = allQubits(c.NumQubits())
	}
	return c.Append(Gate{Name: "barrier", Qubits: qubits})
}

func allQubits(n int) []int {
	qubits := make([]int, n)
	for i := range qubits {
		qubits[i] = i
	}
	return qubits
}

// Clone returns a deep copy; nothing is shared with the receiver.
func (c *Circuit) Clone() *Circuit {
	if c == nil {
		return nil
	}
	out := &Circuit{
		QRegs: slices.Clone(c.QRegs),
		CRegs: slices.Clone(c.CRegs),
		Gates: make([]Gate, len(c.Gates)),
	}
	for i, g := range c.Gates {
		out.Gates[i] = g.Clone()
	}
	return out
}

func (g Gate) Clone() Gate {
	return Gate{
		Name:   g.Name,
		Params: slices.Clone(g.Params),
		Qubits: slices.Clone(g.Qubits),
		Clbits: slices.Clone(g.Clbits),
	}
}

// HasMeasurements reports whether any gate is a measurement.
func (c *Circuit) HasMeasurements() bool {
	for _, g := range c.Gates {
		if g.Name == "measure" {
			return true
		}
	}
	return false
}

/*
MeasureAll returns a copy of the circuit with a barrier across every qubit
followed by a measurement of each qubit into a new `meas` register.
*/
func (c *Circuit) MeasureAll() *Circuit {
	out := c.Clone()
	n := out.NumQubits()
	if n == 0 {
		return out
	}
	offset := out.NumClbits()
	out.CRegs = append(out.CRegs, Register{Name: "meas", Size: n})
	out.Barrier()
	for q := range n {
		out.Measure(q, offset+q)
	}
	return out
}

/*
Depth is the length of the critical path through the circuit. Barriers
synchronise the wires they span but add no layer of their own.
*/
func (c *Circuit) Depth() int {
	qlevel := make([]int, c.NumQubits())
	clevel := make([]int, c.NumClbits())
	depth := 0

	for _, g := range c.Gates {
		level := 0
		for _, q := range g.Qubits {
			if q >= 0 && q < len(qlevel) {
				level = max(level, qlevel[q])
			}
		}
		for _, b := range g.Clbits {
			if b >= 0 && b < len(clevel) {
				level = max(level, clevel[b])
			}
		}
		if g.Name != "barrier" {
			level++
		}
		for _, q := range g.Qubits {
			if q >= 0 && q < len(qlevel) {
				qlevel[q] = level
			}
		}
		for _, b := range g.Clbits {
			if b >= 0 && b < len(clevel) {
				clevel[b] = level
			}
		}
		depth = max(depth, level)
	}
	return depth
}

// CountKinds tallies gates by name.
func (c *Circuit) CountKinds() map[string]int {
	counts := make(map[string]int)
	for _, g := range c.Gates {
		counts[g.Name]++
	}
	return counts
}

// Validate reports gates that address qubits or bits outside the registers.
func (c *Circuit) Validate() error {
	nq, nc := c.NumQubits(), c.NumClbits()
	for i, g := range c.Gates {
		if g.Name == "" {
			return fmt.Errorf("%w: gate %d has no name", ErrInvalidCircuit, i)
		}
		if len(g.Qubits) == 0 {
			return fmt.Errorf("%w: gate %d (%s) acts on no qubits", ErrInvalidCircuit, i, g.Name)
		}
		for _, q := range g.Qubits {
			if q < 0 || q >= nq {
				return fmt.Errorf("%w: gate %d (%s) qubit %d out of range [0,%d)", ErrInvalidCircuit, i, g.Name, q, nq)
			}
		}
		for _, b := range g.Clbits {
			if b < 0 || b >= nc {
				return fmt.Errorf("%w: gate %d (%s) clbit %d out of range [0,%d)", ErrInvalidCircuit, i, g.Name, b, nc)
			}
		}
		if g.Name != "barrier" && hasDuplicate(g.Qubits) {
			return fmt.Errorf("%w: gate %d (%s) repeats a qubit", ErrInvalidCircuit, i, g.Name)
		}
		if g.Name == "measure" && (len(g.Qubits) != 1 || len(g.Clbits) != 1) {
			return fmt.Errorf("%w: gate %d measure needs one qubit and one clbit", ErrInvalidCircuit, i)
		}
	}
	return nil
}

func hasDuplicate(xs []int) bool {
	seen := make(map[int]struct{}, len(xs))
	for _, x := range xs {
		if _, ok := seen[x]; ok {
			return true
		}
		seen[x] = struct{}{}
	}
	return false
}
