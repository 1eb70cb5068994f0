package qlock

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats"

	. "github.com/smartystreets/goconvey/convey"
)

func TestReweight(t *testing.T) {
	Convey("Given an embedding", t, func() {
		vec, err := Embed("alice@example.com", 64)
		So(err, ShouldBeNil)
		original := append([]float64(nil), vec...)

		sig := Reweight(vec)

		Convey("It should have unit L2 norm", func() {
			So(floats.Norm(sig, 2), ShouldAlmostEqual, 1, 1e-12)
		})

		Convey("It should not modify its input", func() {
			So(vec, ShouldResemble, original)
		})

		Convey("It should weight entry i by cos(2πiφ)", func() {
			raw := make([]float64, len(vec))
			for i, v := range vec {
				raw[i] = v * math.Cos(2*math.Pi*float64(i)*Phi)
			}
			norm := floats.Norm(raw, 2)
			for i := range sig {
				So(sig[i], ShouldAlmostEqual, raw[i]/norm, 1e-12)
			}
		})

		Convey("It should be deterministic", func() {
			So(Reweight(vec), ShouldResemble, sig)
		})
	})

	Convey("Given a zero vector", t, func() {
		So(Reweight(make([]float64, 5)), ShouldResemble, make([]float64, 5))
		So(Reweight(nil), ShouldResemble, []float64{})
	})
}

func TestLatentTransform(t *testing.T) {
	Convey("Given an embedding", t, func() {
		vec, err := Embed("alice@example.com", 60)
		So(err, ShouldBeNil)

		out := LatentTransform(vec)

		Convey("It should be mean-centred with unit norm", func() {
			So(len(out), ShouldEqual, 60)
			So(floats.Sum(out), ShouldAlmostEqual, 0, 1e-9)
			So(floats.Norm(out, 2), ShouldAlmostEqual, 1, 1e-12)
		})

		Convey("It should be deterministic", func() {
			So(LatentTransform(vec), ShouldResemble, out)
		})

		Convey("It should differ from the golden reweighting", func() {
			So(out, ShouldNotResemble, Reweight(vec))
		})
	})

	Convey("Given degenerate vectors", t, func() {
		So(LatentTransform(nil), ShouldResemble, []float64{})
		So(LatentTransform([]float64{3}), ShouldResemble, []float64{0})
		So(LatentTransform(make([]float64, 4)), ShouldResemble, make([]float64, 4))
	})
}
