package qlock

import (
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

const testTimeout = 2 * time.Second

func TestSpace(t *testing.T) {
	Convey("Given a space", t, func() {
		s := newSpace(time.Hour)

		Reset(func() {
			s.Close()
		})

		Convey("A stored value is delivered to a later Await", func() {
			s.Store("job", "value", nil, time.Minute)

			select {
			case <-time.After(testTimeout):
				t.Fatal("timed out waiting for stored value")
			case r := <-s.Await("job"):
				So(r.Value, ShouldEqual, "value")
				So(r.Error, ShouldBeNil)
			}
		})

		Convey("An earlier Await is woken by Store", func() {
			first, second := s.Await("job"), s.Await("job")
			boom := errors.New("boom")
			s.Store("job", nil, boom, 0)

			for _, ch := range []chan Result{first, second} {
				select {
				case <-time.After(testTimeout):
					t.Fatal("timed out waiting for waiter")
				case r := <-ch:
					So(r.Error, ShouldEqual, boom)
				}
				_, open := <-ch
				So(open, ShouldBeFalse)
			}
		})

		Convey("Expired values are swept", func() {
			s.Store("short", 1, nil, time.Millisecond)
			s.Store("forever", 2, nil, 0)

			s.expire(time.Now().Add(time.Second))
			So(s.len(), ShouldEqual, 1)

			r := <-s.Await("forever")
			So(r.Value, ShouldEqual, 2)
		})
	})
}
