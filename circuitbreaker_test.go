package qlock

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestCircuitBreaker(t *testing.T) {
	Convey("Given a circuit breaker", t, func() {
		breaker := NewCircuitBreaker(2, 50*time.Millisecond, 1)

		Convey("It should act as a Regulator", func() {
			var r Regulator = breaker
			r.Observe(NewMetrics())
			So(r.Limit(), ShouldBeFalse)
		})

		Convey("It should start closed", func() {
			So(breaker.Allow(), ShouldBeTrue)
			So(breaker.State(), ShouldEqual, CircuitClosed)
		})

		Convey("A success resets the failure streak", func() {
			breaker.RecordFailure()
			breaker.RecordSuccess()
			breaker.RecordFailure()
			So(breaker.State(), ShouldEqual, CircuitClosed)
		})

		Convey("When failures reach the threshold", func() {
			breaker.RecordFailure()
			breaker.RecordFailure()

			So(breaker.State(), ShouldEqual, CircuitOpen)
			So(breaker.Allow(), ShouldBeFalse)
			So(breaker.Limit(), ShouldBeTrue)

			Convey("It goes half-open after the reset timeout", func() {
				time.Sleep(80 * time.Millisecond)
				So(breaker.Allow(), ShouldBeTrue)
				So(breaker.State(), ShouldEqual, CircuitHalfOpen)

				Convey("It admits a single trial job", func() {
					So(breaker.Allow(), ShouldBeFalse)
					So(breaker.Allow(), ShouldBeFalse)
					So(breaker.Limit(), ShouldBeTrue)
				})

				Convey("A successful trial job closes it", func() {
					breaker.RecordSuccess()
					So(breaker.State(), ShouldEqual, CircuitClosed)
				})

				Convey("A failed trial job reopens it", func() {
					breaker.RecordFailure()
					So(breaker.State(), ShouldEqual, CircuitOpen)
					So(breaker.Allow(), ShouldBeFalse)
				})
			})

			Convey("Renormalize moves it half-open once the timeout passed", func() {
				breaker.Renormalize()
				So(breaker.State(), ShouldEqual, CircuitOpen)

				time.Sleep(80 * time.Millisecond)
				breaker.Renormalize()
				So(breaker.State(), ShouldEqual, CircuitHalfOpen)
			})
		})
	})

	Convey("States have readable names", t, func() {
		So(CircuitClosed.String(), ShouldEqual, "closed")
		So(CircuitOpen.String(), ShouldEqual, "open")
		So(CircuitHalfOpen.String(), ShouldEqual, "half-open")
	})

	Convey("Given a breaker that has gone half-open", t, func() {
		breaker := NewCircuitBreaker(1, time.Millisecond, 2)
		breaker.RecordFailure()
		time.Sleep(5 * time.Millisecond)

		Convey("Limit reports without spending trial jobs", func() {
			So(breaker.Limit(), ShouldBeFalse)
			So(breaker.Limit(), ShouldBeFalse)
			So(breaker.State(), ShouldEqual, CircuitOpen)
		})

		Convey("Allow lets exactly halfOpenMax trial jobs through", func() {
			admitted := 0
			for range 5 {
				if breaker.Allow() {
					admitted++
				}
			}
			So(admitted, ShouldEqual, 2)
			So(breaker.State(), ShouldEqual, CircuitHalfOpen)
		})
	})

	Convey("Given a breaker that observes metrics", t, func() {
		m := NewMetrics()
		breaker := NewCircuitBreaker(2, time.Millisecond, 1)
		breaker.Observe(m)

		Convey("Each trip is counted once", func() {
			breaker.RecordFailure()
			So(m.BreakerTrips, ShouldEqual, int64(0))
			breaker.RecordFailure()
			So(m.BreakerTrips, ShouldEqual, int64(1))

			time.Sleep(5 * time.Millisecond)
			So(breaker.Allow(), ShouldBeTrue)
			breaker.RecordFailure()
			So(m.BreakerTrips, ShouldEqual, int64(2))
			So(m.ExportMetrics()["breaker_trips"], ShouldEqual, int64(2))
		})
	})
}
