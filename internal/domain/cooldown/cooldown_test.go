package cooldown_test

import (
	"sync"
	"testing"
	"time"

	"github.com/nanahoshi/pointbot/internal/domain/cooldown"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSet(t *testing.T) {
	Convey("Given an empty cooldown set", t, func() {
		s := cooldown.New()

		Convey("When a user begins cooling down", func() {
			first := s.Begin("u1")

			Convey("Then the first call should succeed", func() {
				So(first, ShouldBeTrue)
				So(s.Contains("u1"), ShouldBeTrue)
				So(s.Size(), ShouldEqual, 1)
			})

			Convey("And a second call for the same user should not", func() {
				So(s.Begin("u1"), ShouldBeFalse)
				So(s.Size(), ShouldEqual, 1)
			})

			Convey("But a different user should be unaffected", func() {
				So(s.Begin("u2"), ShouldBeTrue)
				So(s.Size(), ShouldEqual, 2)
			})
		})
	})

	Convey("Given a set with an immediate release timer", t, func() {
		var pending []func()
		s := cooldown.New(cooldown.WithAfterFunc(func(d time.Duration, f func()) *time.Timer {
			pending = append(pending, f)
			return nil
		}))

		Convey("When a release is scheduled and fires", func() {
			s.Begin("u1")
			s.ReleaseAfter("u1", 5*time.Second)
			So(s.Contains("u1"), ShouldBeTrue)

			for _, f := range pending {
				f()
			}

			Convey("Then the user should be released", func() {
				So(s.Contains("u1"), ShouldBeFalse)
				So(s.Size(), ShouldEqual, 0)
			})

			Convey("And the user can begin cooling down again", func() {
				for _, f := range pending {
					f()
				}
				So(s.Begin("u1"), ShouldBeTrue)
			})
		})

		Convey("When releasing a user that was never recorded", func() {
			s.ReleaseAfter("ghost", time.Second)
			for _, f := range pending {
				f()
			}

			Convey("Then nothing should blow up", func() {
				So(s.Size(), ShouldEqual, 0)
			})
		})
	})

	Convey("Given concurrent access", t, func() {
		s := cooldown.New()

		Convey("When many goroutines race on Begin", func() {
			var wg sync.WaitGroup
			wins := make(chan bool, 100)
			for i := 0; i < 100; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					wins <- s.Begin("shared")
				}()
			}
			wg.Wait()
			close(wins)

			Convey("Then exactly one should win", func() {
				won := 0
				for w := range wins {
					if w {
						won++
					}
				}
				So(won, ShouldEqual, 1)
			})
		})
	})
}
