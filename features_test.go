package qlock

import (
	"math"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/theapemachine/qlock/circuit"
)

func TestCircuitFeatures(t *testing.T) {
	Convey("Given a parameterised circuit", t, func() {
		c := circuit.New(1, 0).RX(1, 0).H(0).RY(2, 0).RZ(3, 0)
		features := CircuitFeatures(c, 6)

		Convey("Its angles are standardised and tiled", func() {
			s := math.Sqrt(1.5)
			want := []float64{-s, 0, s, -s, 0, s}
			So(len(features), ShouldEqual, 6)
			for i := range want {
				So(features[i], ShouldAlmostEqual, want[i], 1e-12)
			}
		})

		Convey("The circuit is not touched", func() {
			So(c.Gates[0].Params[0], ShouldEqual, 1)
		})
	})

	Convey("Given a circuit without parameters", t, func() {
		c := circuit.New(2, 0).H(0).H(1).CX(0, 1)
		features := CircuitFeatures(c, 3)

		So(features[0], ShouldAlmostEqual, 1, 1e-12)
		So(features[1], ShouldAlmostEqual, -1, 1e-12)
		So(features[2], ShouldAlmostEqual, 1, 1e-12)
	})

	Convey("Given degenerate inputs", t, func() {
		So(CircuitFeatures(nil, 4), ShouldResemble, []float64{0, 0, 0, 0})
		So(CircuitFeatures(circuit.New(1, 0), 2), ShouldResemble, []float64{0, 0})
		So(CircuitFeatures(circuit.New(1, 0).H(0), 0), ShouldBeNil)
	})
}
