package sim

import (
	"fmt"
	"math"

	"github.com/theapemachine/qlock/circuit"
)

var singleQubit = map[string]func(p []float64) matrix{
	"id":   func([]float64) matrix { return identity },
	"x":    func([]float64) matrix { return pauliX },
	"y":    func([]float64) matrix { return pauliY },
	"z":    func([]float64) matrix { return pauliZ },
	"h":    func([]float64) matrix { return hadamard },
	"s":    func([]float64) matrix { return phase(math.Pi / 2) },
	"sdg":  func([]float64) matrix { return phase(-math.Pi / 2) },
	"t":    func([]float64) matrix { return phase(math.Pi / 4) },
	"tdg":  func([]float64) matrix { return phase(-math.Pi / 4) },
	"sx":   func([]float64) matrix { return sqrtX },
	"sxdg": func([]float64) matrix { return sqrtXdg },
	"rx":   func(p []float64) matrix { return rx(p[0]) },
	"ry":   func(p []float64) matrix { return ry(p[0]) },
	"rz":   func(p []float64) matrix { return rz(p[0]) },
	"p":    func(p []float64) matrix { return phase(p[0]) },
	"u1":   func(p []float64) matrix { return phase(p[0]) },
	"u2":   func(p []float64) matrix { return u3(math.Pi/2, p[0], p[1]) },
	"u3":   func(p []float64) matrix { return u3(p[0], p[1], p[2]) },
	"u":    func(p []float64) matrix { return u3(p[0], p[1], p[2]) },
}

// controlledOf maps a controlled gate onto the single-qubit gate it controls.
var controlledOf = map[string]string{
	"cx":  "x",
	"cy":  "y",
	"cz":  "z",
	"ch":  "h",
	"crx": "rx",
	"cry": "ry",
	"crz": "rz",
	"cp":  "p",
	"cu1": "u1",
	"cu3": "u3",
	"ccx": "x",
}

var paramCount = map[string]int{
	"rx": 1, "ry": 1, "rz": 1, "p": 1, "u1": 1, "u2": 2, "u3": 3, "u": 3,
	"crx": 1, "cry": 1, "crz": 1, "cp": 1, "cu1": 1, "cu3": 3,
	"rxx": 1, "rzz": 1,
}

var qubitCount = map[string]int{
	"cx": 2, "cy": 2, "cz": 2, "ch": 2, "crx": 2, "cry": 2, "crz": 2, "cp": 2,
	"cu1": 2, "cu3": 2, "swap": 2, "rxx": 2, "rzz": 2, "ccx": 3, "cswap": 3,
}

func checkArity(g circuit.Gate) error {
	wantQ := 1
	if n, ok := qubitCount[g.Name]; ok {
		wantQ = n
	}
	if len(g.Qubits) != wantQ || len(g.Params) < paramCount[g.Name] {
		return fmt.Errorf("%w: %s with %d qubits and %d params", ErrUnsupportedGate, g.Name, len(g.Qubits), len(g.Params))
	}
	return nil
}

// applyGate evolves the state by one unitary gate.
func (s *stateVector) applyGate(g circuit.Gate) error {
	if _, ok := singleQubit[g.Name]; !ok {
		if _, ok := controlledOf[g.Name]; !ok {
			switch g.Name {
			case "swap", "cswap", "rxx", "rzz":
			default:
				return fmt.Errorf("%w: %s", ErrUnsupportedGate, g.Name)
			}
		}
	}
	if err := checkArity(g); err != nil {
		return err
	}

	if build, ok := singleQubit[g.Name]; ok {
		s.apply(build(g.Params), g.Qubits[0])
		return nil
	}
	if base, ok := controlledOf[g.Name]; ok {
		last := len(g.Qubits) - 1
		s.apply(singleQubit[base](g.Params), g.Qubits[last], g.Qubits[:last]...)
		return nil
	}

	switch g.Name {
	case "swap":
		s.swap(g.Qubits[0], g.Qubits[1])
	case "cswap":
		s.swap(g.Qubits[1], g.Qubits[2], g.Qubits[0])
	case "rzz":
		s.zz(g.Params[0], g.Qubits[0], g.Qubits[1])
	case "rxx":
		s.apply(hadamard, g.Qubits[0])
		s.apply(hadamard, g.Qubits[1])
		s.zz(g.Params[0], g.Qubits[0], g.Qubits[1])
		s.apply(hadamard, g.Qubits[0])
		s.apply(hadamard, g.Qubits[1])
	}
	return nil
}
