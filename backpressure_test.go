package qlock

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestBackPressureRegulator(t *testing.T) {
	Convey("Given a back pressure regulator", t, func() {
		regulator := NewBackPressureRegulator(100, time.Second)
		metrics := NewMetrics()

		Convey("A long queue and slow jobs saturate the pressure", func() {
			metrics.JobQueueSize = 80
			metrics.AverageJobLatency = 2 * time.Second
			regulator.Observe(metrics)

			So(regulator.Pressure(), ShouldEqual, 1.0)
			So(regulator.Limit(), ShouldBeTrue)

			Convey("Pressure holds while the queue stays long", func() {
				regulator.Renormalize()
				So(regulator.Pressure(), ShouldEqual, 1.0)
			})

			Convey("Pressure decays once the queue drains", func() {
				metrics.JobQueueSize = 10
				regulator.Renormalize()
				regulator.Renormalize()
				regulator.Renormalize()
				So(regulator.Pressure(), ShouldAlmostEqual, 0.7, 1e-12)
				So(regulator.Limit(), ShouldBeFalse)
			})
		})

		Convey("A light load stays below the limit", func() {
			metrics.JobQueueSize = 20
			metrics.AverageJobLatency = time.Second / 2
			regulator.Observe(metrics)

			So(regulator.Pressure(), ShouldAlmostEqual, 0.32, 1e-12)
			So(regulator.Limit(), ShouldBeFalse)
		})

		Convey("Renormalize without observations is a no-op", func() {
			regulator.Renormalize()
			So(regulator.Pressure(), ShouldEqual, 0)
		})
	})
}

func TestPoolBackPressure(t *testing.T) {
	Convey("Given a pool whose regulator reports overload", t, func() {
		q := NewQ(context.Background(), 1, NewConfig(), WithBackPressure(1, time.Millisecond))
		defer q.Close()

		q.metrics.mu.Lock()
		q.metrics.JobQueueSize = 5
		q.metrics.mu.Unlock()
		q.pressure.Observe(q.metrics)

		r := <-q.Schedule("turned-away", func(context.Context) (any, error) { return nil, nil })
		So(errors.Is(r.Error, ErrBackPressure), ShouldBeTrue)
		So(q.Metrics().SchedulingFailures, ShouldBeGreaterThanOrEqualTo, int64(1))
	})
}
