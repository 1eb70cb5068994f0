package qasm

import (
	"errors"
	"math"
	"testing"

	"github.com/davecgh/go-spew/spew"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/theapemachine/qlock/circuit"
)

var dump = spew.ConfigState{
	Indent:                  " ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

const bell = `OPENQASM 2.0;
include "qelib1.inc";
// prepare a bell pair
qreg q[2];
creg c[2];
h q[0]; cx q[0],q[1];
measure q -> c;
`

func TestParse(t *testing.T) {
	Convey("Given a bell program", t, func() {
		c, err := Parse(bell)
		So(err, ShouldBeNil)

		Convey("It should declare the registers", func() {
			So(c.QRegs, ShouldResemble, []circuit.Register{{Name: "q", Size: 2}})
			So(c.CRegs, ShouldResemble, []circuit.Register{{Name: "c", Size: 2}})
		})

		Convey("It should broadcast the register measurement", func() {
			So(len(c.Gates), ShouldEqual, 4)
			So(c.Gates[2], ShouldResemble, circuit.Gate{Name: "measure", Qubits: []int{0}, Clbits: []int{0}})
			So(c.Gates[3], ShouldResemble, circuit.Gate{Name: "measure", Qubits: []int{1}, Clbits: []int{1}})
		})
	})

	Convey("Given parameter expressions", t, func() {
		src := `OPENQASM 2.0;
qreg q[1];
rx(pi/2) q[0];
ry(-pi/4 + 0.5*2) q[0];
rz(2^3 - sqrt(4)) q[0];
u3(cos(0), ln(1), (1+1)*-3) q[0];
p(1e-3) q[0];`
		c, err := Parse(src)
		So(err, ShouldBeNil)
		So(len(c.Gates), ShouldEqual, 5)

		So(c.Gates[0].Params[0], ShouldAlmostEqual, math.Pi/2, 1e-15)
		So(c.Gates[1].Params[0], ShouldAlmostEqual, -math.Pi/4+1, 1e-15)
		So(c.Gates[2].Params[0], ShouldEqual, 6)
		So(c.Gates[3].Params, ShouldResemble, []float64{1, 0, -6})
		So(c.Gates[4].Params[0], ShouldEqual, 1e-3)
	})

	Convey("Given several registers", t, func() {
		src := `OPENQASM 2.0;
qreg a[2];
qreg b[1];
creg x[1];
creg y[2];
cx a[1],b[0];
h a;
measure b[0] -> x[0];
measure a -> y;`
		c, err := Parse(src)
		So(err, ShouldBeNil)

		Convey("Indices are flattened in declaration order", func() {
			So(c.NumQubits(), ShouldEqual, 3)
			So(c.NumClbits(), ShouldEqual, 3)
			So(c.Gates[0].Qubits, ShouldResemble, []int{1, 2})
			So(c.Gates[1].Qubits, ShouldResemble, []int{0})
			So(c.Gates[2].Qubits, ShouldResemble, []int{1})
			So(c.Gates[3].Clbits, ShouldResemble, []int{0})
			So(c.Gates[4].Clbits, ShouldResemble, []int{1})
			So(c.Gates[5].Clbits, ShouldResemble, []int{2})
		})
	})

	Convey("Given broken programs", t, func() {
		cases := []struct {
			name string
			src  string
			kind error
			stmt int
		}{
			{"missing header", "qreg q[1];", ErrSyntax, 1},
			{"unknown register", "OPENQASM 2.0;\nqreg q[1];\nh r[0];", ErrSyntax, 3},
			{"index out of range", "OPENQASM 2.0;\nqreg q[1];\nh q[1];", ErrSyntax, 3},
			{"wrong arity", "OPENQASM 2.0;\nqreg q[2];\nrx q[0];", ErrSyntax, 3},
			{"bad expression", "OPENQASM 2.0;\nqreg q[1];\nrx(1+) q[0];", ErrSyntax, 3},
			{"broadcast mismatch", "OPENQASM 2.0;\nqreg a[2];\nqreg b[3];\ncx a,b;", ErrSyntax, 4},
			{"gate definition", "OPENQASM 2.0;\ngate foo a { h a; }", ErrUnsupported, 2},
			{"opaque gate", "OPENQASM 2.0;\nopaque bar a;", ErrUnsupported, 2},
			{"classical control", "OPENQASM 2.0;\nqreg q[1];\ncreg c[1];\nif(c==1) x q[0];", ErrUnsupported, 4},
			{"unknown gate", "OPENQASM 2.0;\nqreg q[1];\nfoo q[0];", ErrUnsupported, 3},
		}

		for _, tc := range cases {
			Convey("It should reject "+tc.name, func() {
				_, err := Parse(tc.src)
				So(err, ShouldNotBeNil)
				So(errors.Is(err, tc.kind), ShouldBeTrue)

				var syn *SyntaxError
				So(errors.As(err, &syn), ShouldBeTrue)
				So(syn.Statement, ShouldEqual, tc.stmt)
			})
		}

		Convey("It should reject an empty program", func() {
			_, err := Parse("// nothing here\n")
			So(errors.Is(err, ErrSyntax), ShouldBeTrue)
		})
	})
}

func TestDump(t *testing.T) {
	Convey("Given a circuit", t, func() {
		c := circuit.New(2, 2)
		c.H(0).RX(0.05, 0).RZ(-1.0/3.0, 1).CX(0, 1).Barrier().Measure(0, 0).Measure(1, 1)

		out, err := Dump(c)
		So(err, ShouldBeNil)

		Convey("It should write canonical text", func() {
			So(out, ShouldEqual, `OPENQASM 2.0;
include "qelib1.inc";
qreg q[2];
creg c[2];
h q[0];
rx(0.05) q[0];
rz(-0.3333333333333333) q[1];
cx q[0],q[1];
barrier q[0],q[1];
measure q[0] -> c[0];
measure q[1] -> c[1];
`)
		})

		Convey("Parsing it back should reproduce the circuit", func() {
			back, err := Parse(out)
			So(err, ShouldBeNil)
			So(dump.Sdump(back), ShouldEqual, dump.Sdump(c))
		})
	})

	Convey("Given circuits it cannot express", t, func() {
		Convey("Unknown gates are rejected", func() {
			c := circuit.New(1, 0).Append(circuit.Gate{Name: "magic", Qubits: []int{0}})
			_, err := Dump(c)
			So(errors.Is(err, ErrUnsupported), ShouldBeTrue)
		})

		Convey("Non-finite angles are rejected", func() {
			_, err := Dump(circuit.New(1, 0).RX(math.Inf(1), 0))
			So(err, ShouldNotBeNil)
		})

		Convey("Invalid wiring is rejected", func() {
			_, err := Dump(circuit.New(1, 0).CX(0, 1))
			So(errors.Is(err, circuit.ErrInvalidCircuit), ShouldBeTrue)
		})
	})
}
