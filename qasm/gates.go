package qasm

// gateSpec is the parameter and qubit arity of a qelib1 gate.
type gateSpec struct {
	params int
	qubits int
}

var qelib1 = map[string]gateSpec{
	"id":    {0, 1},
	"x":     {0, 1},
	"y":     {0, 1},
	"z":     {0, 1},
	"h":     {0, 1},
	"s":     {0, 1},
	"sdg":   {0, 1},
	"t":     {0, 1},
	"tdg":   {0, 1},
	"sx":    {0, 1},
	"sxdg":  {0, 1},
	"rx":    {1, 1},
	"ry":    {1, 1},
	"rz":    {1, 1},
	"p":     {1, 1},
	"u1":    {1, 1},
	"u2":    {2, 1},
	"u3":    {3, 1},
	"u":     {3, 1},
	"U":     {3, 1},
	"cx":    {0, 2},
	"CX":    {0, 2},
	"cy":    {0, 2},
	"cz":    {0, 2},
	"ch":    {0, 2},
	"swap":  {0, 2},
	"crx":   {1, 2},
	"cry":   {1, 2},
	"crz":   {1, 2},
	"cp":    {1, 2},
	"cu1":   {1, 2},
	"cu3":   {3, 2},
	"rxx":   {1, 2},
	"rzz":   {1, 2},
	"ccx":   {0, 3},
	"cswap": {0, 3},
}

// canonical maps the builtin upper-case spellings onto their qelib1 names.
func canonical(name string) string {
	switch name {
	case "U":
		return "u"
	case "CX":
		return "cx"
	}
	return name
}
