package dist

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestEntropy(t *testing.T) {
	Convey("Given count distributions", t, func() {
		Convey("A single outcome carries no information", func() {
			So(Entropy(Counts{"00": 1024}), ShouldEqual, 0)
		})

		Convey("A fair bell pair carries one bit", func() {
			So(Entropy(Counts{"00": 512, "11": 512}), ShouldAlmostEqual, 1, 1e-12)
		})

		Convey("Four uniform outcomes carry two bits", func() {
			So(Entropy(Counts{"00": 1, "01": 1, "10": 1, "11": 1}), ShouldAlmostEqual, 2, 1e-12)
		})

		Convey("Empty and all-zero inputs yield zero", func() {
			So(Entropy(nil), ShouldEqual, 0)
			So(Entropy(Counts{"0": 0, "1": 0}), ShouldEqual, 0)
		})
	})
}

func TestDistances(t *testing.T) {
	Convey("Given two distributions", t, func() {
		p := Counts{"00": 700, "11": 300}

		Convey("Identical distributions are at distance zero", func() {
			So(TotalVariationDistance(p, p), ShouldEqual, 0)
			So(KLDivergence(p, p, DefaultKLEpsilon), ShouldEqual, 0)
			So(HellingerDistance(p, p), ShouldEqual, 0)
			So(Fidelity(p, p), ShouldAlmostEqual, 1, 1e-12)
		})

		Convey("Scaling the shot count does not matter", func() {
			q := Counts{"00": 70, "11": 30}
			So(TotalVariationDistance(p, q), ShouldAlmostEqual, 0, 1e-12)
		})

		Convey("Disjoint distributions are maximally apart", func() {
			q := Counts{"01": 5, "10": 5}
			So(TotalVariationDistance(p, q), ShouldAlmostEqual, 1, 1e-12)
			So(HellingerDistance(p, q), ShouldAlmostEqual, 1, 1e-12)
			So(Fidelity(p, q), ShouldEqual, 0)
			So(KLDivergence(p, q, DefaultKLEpsilon), ShouldBeGreaterThan, 10)
		})

		Convey("Missing labels count as zero probability", func() {
			q := Counts{"00": 1000}
			So(TotalVariationDistance(p, q), ShouldAlmostEqual, 0.3, 1e-12)
		})

		Convey("Either side empty yields zero", func() {
			for _, empty := range []Counts{nil, {}, {"00": 0}} {
				So(TotalVariationDistance(p, empty), ShouldEqual, 0)
				So(TotalVariationDistance(empty, p), ShouldEqual, 0)
				So(KLDivergence(p, empty, DefaultKLEpsilon), ShouldEqual, 0)
				So(HellingerDistance(empty, p), ShouldEqual, 0)
				So(Fidelity(p, empty), ShouldEqual, 0)
			}
		})

		Convey("KL divergence is asymmetric", func() {
			q := Counts{"00": 500, "11": 500}
			So(KLDivergence(p, q, DefaultKLEpsilon), ShouldNotAlmostEqual, KLDivergence(q, p, DefaultKLEpsilon), 1e-6)
		})
	})
}

func TestBasinMetrics(t *testing.T) {
	Convey("Given a uniform distribution", t, func() {
		c := Counts{"00": 256, "01": 256, "10": 256, "11": 256}

		So(GiniCoefficient(c), ShouldAlmostEqual, 0, 1e-12)
		So(EffectiveSupport(c), ShouldAlmostEqual, 4, 1e-12)
		So(TopKMass(c, 2), ShouldAlmostEqual, 0.5, 1e-12)
		So(OctaveBinnedMass(c, 3), ShouldResemble, []float64{0.25, 0.5, 0.25})
	})

	Convey("Given a skewed distribution", t, func() {
		c := Counts{"a": 5, "b": 3, "c": 2}

		So(GiniCoefficient(Counts{"x": 3, "y": 1}), ShouldAlmostEqual, 0.25, 1e-12)
		So(TopKMass(c, 1), ShouldAlmostEqual, 0.5, 1e-12)
		So(TopKMass(c, 10), ShouldAlmostEqual, 1, 1e-12)
		So(TopKMass(c, 0), ShouldEqual, 0)

		octaves := OctaveBinnedMass(c, 5)
		So(len(octaves), ShouldEqual, 5)
		So(octaves[0], ShouldAlmostEqual, 0.5, 1e-12)
		So(octaves[1], ShouldAlmostEqual, 0.5, 1e-12)
		So(octaves[2], ShouldEqual, 0)
	})

	Convey("Given degenerate inputs", t, func() {
		So(GiniCoefficient(nil), ShouldEqual, 0)
		So(GiniCoefficient(Counts{"0": 10}), ShouldEqual, 0)
		So(EffectiveSupport(Counts{}), ShouldEqual, 0)
		So(EffectiveSupport(Counts{"0": 10}), ShouldEqual, 1)
		So(TopKMass(nil, 3), ShouldEqual, 0)
		So(OctaveBinnedMass(nil, 0), ShouldBeNil)
	})
}

func TestCompare(t *testing.T) {
	Convey("Given a baseline and a locked run", t, func() {
		baseline := Counts{"0": 900, "1": 124}
		locked := Counts{"0": 890, "1": 134}

		r := Compare(baseline, locked)

		So(r.Shots, ShouldEqual, 1024)
		So(r.TVD, ShouldAlmostEqual, 10.0/1024, 1e-12)
		So(r.Fidelity, ShouldBeGreaterThan, 0.99)
		So(r.BaselineEntropy, ShouldBeGreaterThan, 0)
		So(len(r.BaselineOctaves), ShouldEqual, 5)
	})
}

func TestIdenticalRuns(t *testing.T) {
	Convey("Given the same bell histogram twice", t, func() {
		bell := Counts{"00": 500, "11": 500}
		report := Compare(bell, Counts{"00": 500, "11": 500})

		So(report.TVD, ShouldEqual, 0)
		So(report.Fidelity, ShouldAlmostEqual, 1, 1e-12)
		So(report.BaselineEntropy, ShouldAlmostEqual, report.LockedEntropy, 1e-15)
	})
}
