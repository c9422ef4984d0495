package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	repository "github.com/nanahoshi/pointbot/internal/adapters/repository"
	"github.com/nanahoshi/pointbot/internal/domain/model"
	"github.com/nanahoshi/pointbot/internal/domain/multiplier"
	"github.com/nanahoshi/pointbot/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init()
}

type fakeGuilds struct {
	ids []string
}

func (f *fakeGuilds) GuildIDs() []string { return f.ids }

// flakyStore fails the first ListUsers calls before delegating.
type flakyStore struct {
	*repository.MemoryStore
	failures int
}

func (f *flakyStore) ListUsers(ctx context.Context) ([]model.User, error) {
	if f.failures > 0 {
		f.failures--
		return nil, errors.New("connection reset")
	}
	return f.MemoryStore.ListUsers(ctx)
}

// newTestScheduler pins the clock to a mutable time value in UTC.
func newTestScheduler(store Store, reg *multiplier.Registry, guilds GuildLister, at *time.Time) *Scheduler {
	return New(store, reg, guilds,
		WithLocation(time.UTC),
		WithNow(func() time.Time { return *at }),
	)
}

func TestRollover(t *testing.T) {
	ctx := context.Background()

	Convey("Given users with accumulated points", t, func() {
		store := repository.NewMemoryStore()
		So(store.UpsertUser(ctx, model.User{ID: "a", Point: 80, Rank: 1}), ShouldBeNil)
		So(store.UpsertUser(ctx, model.User{ID: "b", Point: 40, Rank: 9}), ShouldBeNil)

		reg := multiplier.New(multiplier.WithRand(func(int) int { return 0 }))
		reg.Set("g1") // non-empty so the empty-registry refresh stays quiet

		at := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
		s := newTestScheduler(store, reg, &fakeGuilds{ids: []string{"g1"}}, &at)

		Convey("When a tick lands at local midnight", func() {
			s.tick(ctx)

			Convey("Then every user should be rolled over", func() {
				a, err := store.GetUser(ctx, "a")
				So(err, ShouldBeNil)
				So(a.Rank, ShouldEqual, 8)
				So(a.Point, ShouldEqual, 0)

				b, err := store.GetUser(ctx, "b")
				So(err, ShouldBeNil)
				So(b.Rank, ShouldEqual, 4)
				So(b.Point, ShouldEqual, 0)
			})

			Convey("And a second tick in the same minute should not fire again", func() {
				So(store.UpsertUser(ctx, model.User{ID: "a", Point: 50, Rank: 8}), ShouldBeNil)
				at = at.Add(30 * time.Second)
				s.tick(ctx)

				a, err := store.GetUser(ctx, "a")
				So(err, ShouldBeNil)
				So(a.Point, ShouldEqual, 50)
				So(a.Rank, ShouldEqual, 8)
			})

			Convey("But the next day's midnight should fire", func() {
				So(store.UpsertUser(ctx, model.User{ID: "a", Point: 50, Rank: 8}), ShouldBeNil)
				at = at.Add(24 * time.Hour)
				s.tick(ctx)

				a, err := store.GetUser(ctx, "a")
				So(err, ShouldBeNil)
				So(a.Point, ShouldEqual, 0)
				So(a.Rank, ShouldEqual, 5)
			})
		})

		Convey("When a tick lands outside midnight", func() {
			at = time.Date(2024, 7, 1, 12, 30, 0, 0, time.UTC)
			s.tick(ctx)

			Convey("Then points should be untouched", func() {
				a, err := store.GetUser(ctx, "a")
				So(err, ShouldBeNil)
				So(a.Point, ShouldEqual, 80)
			})
		})

		Convey("When rollover runs twice back to back", func() {
			So(s.rollover(ctx), ShouldBeNil)
			So(s.rollover(ctx), ShouldBeNil)

			Convey("Then points stay zeroed", func() {
				a, err := store.GetUser(ctx, "a")
				So(err, ShouldBeNil)
				So(a.Point, ShouldEqual, 0)
			})
		})

		Convey("When the store fails on the first midnight tick", func() {
			flaky := &flakyStore{MemoryStore: store, failures: 1}
			s2 := newTestScheduler(flaky, reg, &fakeGuilds{ids: []string{"g1"}}, &at)
			s2.tick(ctx)

			Convey("Then nothing should have rolled over yet", func() {
				a, err := store.GetUser(ctx, "a")
				So(err, ShouldBeNil)
				So(a.Point, ShouldEqual, 80)
			})

			Convey("And the next tick inside the minute window should retry", func() {
				at = at.Add(time.Second)
				s2.tick(ctx)

				a, err := store.GetUser(ctx, "a")
				So(err, ShouldBeNil)
				So(a.Point, ShouldEqual, 0)
				So(a.Rank, ShouldEqual, 8)

				Convey("And the retry should mark the day as done", func() {
					So(store.UpsertUser(ctx, model.User{ID: "a", Point: 50, Rank: 8}), ShouldBeNil)
					at = at.Add(time.Second)
					s2.tick(ctx)

					a, err := store.GetUser(ctx, "a")
					So(err, ShouldBeNil)
					So(a.Point, ShouldEqual, 50)
				})
			})
		})
	})
}

func TestMultiplierRefresh(t *testing.T) {
	ctx := context.Background()

	Convey("Given a scheduler with known guilds and an empty registry", t, func() {
		store := repository.NewMemoryStore()
		reg := multiplier.New(multiplier.WithRand(func(int) int { return 10 }))
		guilds := &fakeGuilds{ids: []string{"g1", "g2"}}

		at := time.Date(2024, 7, 1, 3, 17, 0, 0, time.UTC)
		s := newTestScheduler(store, reg, guilds, &at)

		Convey("When any tick runs while the registry is empty", func() {
			s.tick(ctx)

			Convey("Then every guild should get a multiplier immediately", func() {
				So(reg.Len(), ShouldEqual, 2)
				v, ok := reg.Get("g1")
				So(ok, ShouldBeTrue)
				So(v, ShouldEqual, 40)
			})
		})

		Convey("When a tick lands on an hour boundary before 6 AM", func() {
			reg.Set("g1")
			at = time.Date(2024, 7, 1, 5, 0, 0, 0, time.UTC)
			s.tick(ctx)

			Convey("Then no refresh should fire", func() {
				_, ok := reg.Get("g2")
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When a tick lands on an hour boundary at or after 6 AM", func() {
			reg.Set("g1")
			at = time.Date(2024, 7, 1, 6, 0, 0, 0, time.UTC)
			s.tick(ctx)

			Convey("Then every known guild should be re-rolled", func() {
				So(reg.Len(), ShouldEqual, 2)
			})

			Convey("And a second tick inside the same hour should not re-fire", func() {
				var calls int
				counted := multiplier.New(multiplier.WithRand(func(int) int { calls++; return 0 }))
				counted.Set("seed")
				calls = 0

				s2 := newTestScheduler(store, counted, guilds, &at)
				s2.tick(ctx)
				firstCalls := calls
				at = at.Add(20 * time.Second)
				s2.tick(ctx)

				So(firstCalls, ShouldEqual, 2)
				So(calls, ShouldEqual, firstCalls)
			})
		})

		Convey("When no guilds are known yet", func() {
			empty := &fakeGuilds{}
			s3 := newTestScheduler(store, multiplier.New(), empty, &at)
			at = time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC)
			s3.tick(ctx)

			Convey("Then the refresh should stay pending for a later tick", func() {
				empty.ids = []string{"g9"}
				at = at.Add(time.Second)
				s3.tick(ctx)
				_, ok := s3.multipliers.Get("g9")
				So(ok, ShouldBeTrue)
			})
		})
	})
}
