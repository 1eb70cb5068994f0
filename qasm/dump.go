package qasm

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/theapemachine/qlock/circuit"
)

var identRegex = regexp.MustCompile(`^[a-z][A-Za-z0-9_]*$`)

type wire struct {
	name  string
	index int
}

func wires(regs []circuit.Register) ([]wire, error) {
	var out []wire
	for _, r := range regs {
		if !identRegex.MatchString(r.Name) {
			return nil, fmt.Errorf("qasm: register name %q is not a valid identifier", r.Name)
		}
		for i := range r.Size {
			out = append(out, wire{name: r.Name, index: i})
		}
	}
	return out, nil
}

func (w wire) String() string {
	return w.name + "[" + strconv.Itoa(w.index) + "]"
}

// FormatFloat renders v with the fewest digits that parse back to v exactly.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

/*
Dump writes the circuit as canonical OpenQASM 2.0: header, qelib1 include,
register declarations, then one statement per gate. Parse(Dump(c))
reproduces c.
*/
func Dump(c *circuit.Circuit) (string, error) {
	if c == nil {
		return "", fmt.Errorf("qasm: nil circuit")
	}
	if err := c.Validate(); err != nil {
		return "", fmt.Errorf("qasm: %w", err)
	}
	qw, err := wires(c.QRegs)
	if err != nil {
		return "", err
	}
	cw, err := wires(c.CRegs)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("OPENQASM 2.0;\n")
	sb.WriteString("include \"qelib1.inc\";\n")
	for _, r := range c.QRegs {
		fmt.Fprintf(&sb, "qreg %s[%d];\n", r.Name, r.Size)
	}
	for _, r := range c.CRegs {
		fmt.Fprintf(&sb, "creg %s[%d];\n", r.Name, r.Size)
	}

	for i, g := range c.Gates {
		if err := writeGate(&sb, g, qw, cw); err != nil {
			return "", fmt.Errorf("qasm: gate %d: %w", i, err)
		}
	}
	return sb.String(), nil
}

func writeGate(sb *strings.Builder, g circuit.Gate, qw, cw []wire) error {
	switch g.Name {
	case "measure":
		fmt.Fprintf(sb, "measure %s -> %s;\n", qw[g.Qubits[0]], cw[g.Clbits[0]])
		return nil
	case "barrier", "reset":
	default:
		spec, ok := qelib1[g.Name]
		if !ok {
			return fmt.Errorf("%w: gate %s", ErrUnsupported, g.Name)
		}
		if spec.params != len(g.Params) || spec.qubits != len(g.Qubits) {
			return fmt.Errorf("%w: %s arity mismatch", ErrSyntax, g.Name)
		}
	}

	sb.WriteString(g.Name)
	if len(g.Params) > 0 {
		params := make([]string, len(g.Params))
		for i, v := range g.Params {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: %s parameter %d is not finite", ErrSyntax, g.Name, i)
			}
			params[i] = FormatFloat(v)
		}
		sb.WriteString("(" + strings.Join(params, ",") + ")")
	}

	args := make([]string, len(g.Qubits))
	for i, q := range g.Qubits {
		args[i] = qw[q].String()
	}
	sb.WriteString(" " + strings.Join(args, ",") + ";\n")
	return nil
}
