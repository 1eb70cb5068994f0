package qlock

import (
	"context"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestRateLimiter(t *testing.T) {
	Convey("Given a rate limiter with a burst of 3", t, func() {
		limiter := NewRateLimiter(3, 50*time.Millisecond)

		Convey("It should allow the burst and then limit", func() {
			So(limiter.Limit(), ShouldBeFalse)
			So(limiter.Limit(), ShouldBeFalse)
			So(limiter.Limit(), ShouldBeFalse)
			So(limiter.Limit(), ShouldBeTrue)
		})

		Convey("It should regain one token per interval", func() {
			start := limiter.lastRefill
			limiter.tokens = 0

			limiter.refill(start.Add(120 * time.Millisecond))
			So(limiter.tokens, ShouldEqual, 2)
			So(limiter.lastRefill.Equal(start.Add(100*time.Millisecond)), ShouldBeTrue)

			limiter.refill(start.Add(time.Hour))
			So(limiter.tokens, ShouldEqual, 3)
		})

		Convey("It should remember what it observed", func() {
			m := NewMetrics()
			limiter.Observe(m)
			So(limiter.metrics, ShouldPointTo, m)
		})

		Convey("Refused tokens are counted in the observed metrics", func() {
			m := NewMetrics()
			limiter.Observe(m)
			for range 5 {
				limiter.Limit()
			}
			So(m.ThrottledDispatch, ShouldEqual, int64(2))
			So(m.ExportMetrics()["throttled_dispatch"], ShouldEqual, int64(2))
		})
	})
}

func TestPoolRateLimit(t *testing.T) {
	Convey("Given a pool limited to a burst of one job per 40ms", t, func() {
		q := NewQ(context.Background(), 2, NewConfig(), WithRateLimit(1, 40*time.Millisecond))
		defer q.Close()

		start := time.Now()
		chans := make([]chan Result, 3)
		for i := range chans {
			chans[i] = q.Schedule("paced-"+string(rune('a'+i)), func(context.Context) (any, error) {
				return i, nil
			})
		}
		for _, ch := range chans {
			r := <-ch
			So(r.Error, ShouldBeNil)
		}

		So(time.Since(start), ShouldBeGreaterThanOrEqualTo, 70*time.Millisecond)
	})
}
