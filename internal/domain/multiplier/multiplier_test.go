package multiplier_test

import (
	"testing"

	"github.com/nanahoshi/pointbot/internal/domain/multiplier"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRegistry(t *testing.T) {
	Convey("Given a registry with default bounds", t, func() {
		reg := multiplier.New()

		Convey("When assigning a guild many times", func() {
			Convey("Then every draw should land in [30,100]", func() {
				for i := 0; i < 500; i++ {
					v := reg.Set("g1")
					So(v, ShouldBeGreaterThanOrEqualTo, 30)
					So(v, ShouldBeLessThanOrEqualTo, 100)
				}
			})
		})

		Convey("When a guild has not been observed", func() {
			_, ok := reg.Get("unknown")

			Convey("Then Get should report it missing", func() {
				So(ok, ShouldBeFalse)
			})
		})
	})

	Convey("Given a registry with a deterministic source", t, func() {
		reg := multiplier.New(
			multiplier.WithBounds(30, 100),
			multiplier.WithRand(func(n int) int { return 20 }),
		)

		Convey("When assigning a guild", func() {
			v := reg.Set("g1")

			Convey("Then the value should be min + draw", func() {
				So(v, ShouldEqual, 50)
				got, ok := reg.Get("g1")
				So(ok, ShouldBeTrue)
				So(got, ShouldEqual, 50)
			})
		})

		Convey("When refreshing all guilds", func() {
			reg.Set("g1")
			reg.Set("g2")
			reg.RefreshAll([]string{"g1", "g2", "g3"})

			Convey("Then every listed guild should have a value", func() {
				So(reg.Len(), ShouldEqual, 3)
				v, ok := reg.Get("g3")
				So(ok, ShouldBeTrue)
				So(v, ShouldEqual, 50)
			})
		})
	})

	Convey("Given a registry with a single-value range", t, func() {
		reg := multiplier.New(multiplier.WithBounds(7, 7), multiplier.WithRand(func(n int) int {
			So(n, ShouldEqual, 1)
			return 0
		}))

		Convey("When assigning", func() {
			So(reg.Set("g"), ShouldEqual, 7)
		})
	})
}
