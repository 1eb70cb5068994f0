/*
Package qasm reads and writes the OpenQASM 2.0 subset needed to move circuits
in and out of the circuit package: register declarations, qelib1 gates with
parameter expressions, measurement, reset and barriers.
*/
package qasm

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/theapemachine/qlock/circuit"
)

var (
	headerRegex   = regexp.MustCompile(`^OPENQASM\s+2(\.\d+)?$`)
	includeRegex  = regexp.MustCompile(`^include\s+"[^"]*"$`)
	registerRegex = regexp.MustCompile(`^(qreg|creg)\s+([a-z][A-Za-z0-9_]*)\s*\[\s*(\d+)\s*\]$`)
	measureRegex  = regexp.MustCompile(`^measure\s+(.+?)\s*->\s*(.+)$`)
	gateRegex     = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9_]*)\s*(?:\((.*)\))?\s*(.*)$`)
	argumentRegex = regexp.MustCompile(`^([a-z][A-Za-z0-9_]*)\s*(?:\[\s*(\d+)\s*\])?$`)
)

type register struct {
	offset int
	size   int
}

// operand is a whole register (index < 0) or a single element of one.
type operand struct {
	reg   register
	index int
}

func (o operand) width() int {
	if o.index >= 0 {
		return 1
	}
	return o.reg.size
}

func (o operand) at(i int) int {
	if o.index >= 0 {
		return o.reg.offset + o.index
	}
	return o.reg.offset + i
}

type parser struct {
	c     *circuit.Circuit
	qregs map[string]register
	cregs map[string]register
	n     int
	text  string
}

/*
Parse reads OpenQASM 2.0 source into a circuit. Qubits and classical bits are
flattened across registers in declaration order. Gate applications on whole
registers are broadcast element-wise.
*/
func Parse(src string) (*circuit.Circuit, error) {
	p := &parser{
		c:     &circuit.Circuit{},
		qregs: make(map[string]register),
		cregs: make(map[string]register),
	}

	header := false
	for _, raw := range strings.Split(stripComments(src), ";") {
		stmt := strings.Join(strings.Fields(raw), " ")
		if stmt == "" {
			continue
		}
		p.n++
		p.text = stmt

		if !header {
			if !headerRegex.MatchString(stmt) {
				return nil, p.fail(ErrSyntax, "expected OPENQASM 2.0 header")
			}
			header = true
			continue
		}
		if err := p.statement(stmt); err != nil {
			return nil, err
		}
	}

	if !header {
		return nil, &SyntaxError{Err: ErrSyntax, Msg: "empty program"}
	}
	return p.c, nil
}

func stripComments(src string) string {
	var sb strings.Builder
	for _, line := range strings.Split(src, "\n") {
		if i := strings.Index(line, "//"); i >= 0 {
			line = line[:i]
		}
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	return sb.String()
}

func (p *parser) fail(kind error, format string, args ...any) error {
	return &SyntaxError{
		Statement: p.n,
		Text:      p.text,
		Err:       kind,
		Msg:       fmt.Sprintf(format, args...),
	}
}

func (p *parser) statement(stmt string) error {
	keyword, _, _ := strings.Cut(stmt, " ")
	if i := strings.IndexAny(keyword, "(["); i >= 0 {
		keyword = keyword[:i]
	}

	switch keyword {
	case "include":
		if !includeRegex.MatchString(stmt) {
			return p.fail(ErrSyntax, "malformed include")
		}
		return nil
	case "qreg", "creg":
		return p.declare(stmt)
	case "gate", "opaque":
		return p.fail(ErrUnsupported, "%s definitions are not supported", keyword)
	case "if":
		return p.fail(ErrUnsupported, "classically controlled operations are not supported")
	case "measure":
		return p.measure(stmt)
	case "barrier":
		return p.barrier(stmt)
	case "reset":
		return p.reset(stmt)
	}
	return p.gate(stmt)
}

func (p *parser) declare(stmt string) error {
	m := registerRegex.FindStringSubmatch(stmt)
	if m == nil {
		return p.fail(ErrSyntax, "malformed register declaration")
	}
	name := m[2]
	size, err := strconv.Atoi(m[3])
	if err != nil || size <= 0 {
		return p.fail(ErrSyntax, "register %s needs a positive size", name)
	}
	if _, ok := p.qregs[name]; ok {
		return p.fail(ErrSyntax, "register %s already declared", name)
	}
	if _, ok := p.cregs[name]; ok {
		return p.fail(ErrSyntax, "register %s already declared", name)
	}

	if m[1] == "qreg" {
		p.qregs[name] = register{offset: p.c.NumQubits(), size: size}
		p.c.QRegs = append(p.c.QRegs, circuit.Register{Name: name, Size: size})
		return nil
	}
	p.cregs[name] = register{offset: p.c.NumClbits(), size: size}
	p.c.CRegs = append(p.c.CRegs, circuit.Register{Name: name, Size: size})
	return nil
}

func (p *parser) operand(arg string, regs map[string]register, kind string) (operand, error) {
	m := argumentRegex.FindStringSubmatch(strings.TrimSpace(arg))
	if m == nil {
		return operand{}, p.fail(ErrSyntax, "malformed %s argument %q", kind, arg)
	}
	reg, ok := regs[m[1]]
	if !ok {
		return operand{}, p.fail(ErrSyntax, "unknown %s register %s", kind, m[1])
	}
	if m[2] == "" {
		return operand{reg: reg, index: -1}, nil
	}
	idx, err := strconv.Atoi(m[2])
	if err != nil || idx >= reg.size {
		return operand{}, p.fail(ErrSyntax, "index %s out of range for %s[%d]", m[2], m[1], reg.size)
	}
	return operand{reg: reg, index: idx}, nil
}

func (p *parser) operands(list string, regs map[string]register, kind string) ([]operand, error) {
	if strings.TrimSpace(list) == "" {
		return nil, p.fail(ErrSyntax, "missing %s arguments", kind)
	}
	var out []operand
	for _, arg := range strings.Split(list, ",") {
		op, err := p.operand(arg, regs, kind)
		if err != nil {
			return nil, err
		}
		out = append(out, op)
	}
	return out, nil
}

// broadcastWidth is the number of gate copies a mix of whole-register and
// single-element operands expands into.
func (p *parser) broadcastWidth(ops []operand) (int, error) {
	width := 1
	for _, op := range ops {
		if op.index >= 0 {
			continue
		}
		if width != 1 && op.reg.size != width {
			return 0, p.fail(ErrSyntax, "register sizes do not match for broadcast")
		}
		width = op.reg.size
	}
	return width, nil
}

func (p *parser) measure(stmt string) error {
	m := measureRegex.FindStringSubmatch(stmt)
	if m == nil {
		return p.fail(ErrSyntax, "malformed measure")
	}
	q, err := p.operand(m[1], p.qregs, "qubit")
	if err != nil {
		return err
	}
	c, err := p.operand(m[2], p.cregs, "clbit")
	if err != nil {
		return err
	}
	if q.width() != c.width() {
		return p.fail(ErrSyntax, "measure needs matching widths, got %d and %d", q.width(), c.width())
	}
	for i := range q.width() {
		p.c.Measure(q.at(i), c.at(i))
	}
	return nil
}

func (p *parser) barrier(stmt string) error {
	ops, err := p.operands(strings.TrimPrefix(stmt, "barrier"), p.qregs, "qubit")
	if err != nil {
		return err
	}
	var qubits []int
	for _, op := range ops {
		for i := range op.width() {
			qubits = append(qubits, op.at(i))
		}
	}
	p.c.Append(circuit.Gate{Name: "barrier", Qubits: qubits})
	return nil
}

func (p *parser) reset(stmt string) error {
	op, err := p.operand(strings.TrimPrefix(stmt, "reset"), p.qregs, "qubit")
	if err != nil {
		return err
	}
	for i := range op.width() {
		p.c.Append(circuit.Gate{Name: "reset", Qubits: []int{op.at(i)}})
	}
	return nil
}

func (p *parser) gate(stmt string) error {
	m := gateRegex.FindStringSubmatch(stmt)
	if m == nil {
		return p.fail(ErrSyntax, "unrecognised statement")
	}
	spec, ok := qelib1[m[1]]
	if !ok {
		return p.fail(ErrUnsupported, "unknown gate %s", m[1])
	}

	params, err := p.params(m[2])
	if err != nil {
		return err
	}
	if len(params) != spec.params {
		return p.fail(ErrSyntax, "%s takes %d parameters, got %d", m[1], spec.params, len(params))
	}

	ops, err := p.operands(m[3], p.qregs, "qubit")
	if err != nil {
		return err
	}
	if len(ops) != spec.qubits {
		return p.fail(ErrSyntax, "%s acts on %d qubits, got %d", m[1], spec.qubits, len(ops))
	}

	width, err := p.broadcastWidth(ops)
	if err != nil {
		return err
	}
	for i := range width {
		qubits := make([]int, len(ops))
		for j, op := range ops {
			qubits[j] = op.at(i)
		}
		g := circuit.Gate{Name: canonical(m[1]), Qubits: qubits}
		if len(params) > 0 {
			g.Params = append([]float64(nil), params...)
		}
		p.c.Append(g)
	}
	return nil
}

func (p *parser) params(list string) ([]float64, error) {
	if strings.TrimSpace(list) == "" {
		return nil, nil
	}
	var out []float64
	for _, raw := range splitTopLevel(list) {
		v, err := evalExpr(raw)
		if err != nil {
			return nil, p.fail(ErrSyntax, "%v", err)
		}
		out = append(out, v)
	}
	return out, nil
}

// splitTopLevel splits on commas that are not nested inside parentheses.
func splitTopLevel(s string) []string {
	var (
		out   []string
		depth int
		start int
	)
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				out = append(out, s[start:i])
				start = i + 1
			}
		}
	}
	return append(out, s[start:])
}
