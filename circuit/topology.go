package circuit

import "slices"

var rotations = map[string]struct{}{
	"rx": {},
	"ry": {},
	"rz": {},
}

// IsRotation reports whether name is one of the single-axis rotations rx, ry, rz.
func IsRotation(name string) bool {
	_, ok := rotations[name]
	return ok
}

/*
SameTopology reports whether two circuits have identical registers and the
same gate sequence on the same wires. Parameter values are ignored, only
their count must agree.
*/
func SameTopology(a, b *Circuit) bool {
	if a == nil || b == nil {
		return a == b
	}
	if !slices.Equal(a.QRegs, b.QRegs) || !slices.Equal(a.CRegs, b.CRegs) {
		return false
	}
	if len(a.Gates) != len(b.Gates) {
		return false
	}
	for i := range a.Gates {
		ga, gb := a.Gates[i], b.Gates[i]
		if ga.Name != gb.Name || len(ga.Params) != len(gb.Params) {
			return false
		}
		if !slices.Equal(ga.Qubits, gb.Qubits) || !slices.Equal(ga.Clbits, gb.Clbits) {
			return false
		}
	}
	return true
}
