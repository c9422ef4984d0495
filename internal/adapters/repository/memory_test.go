package repository_test

import (
	"context"
	"errors"
	"testing"

	repository "github.com/nanahoshi/pointbot/internal/adapters/repository"
	"github.com/nanahoshi/pointbot/internal/domain/model"
	"github.com/nanahoshi/pointbot/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()

	Convey("Given an empty store", t, func() {
		store := repository.NewMemoryStore()

		Convey("When fetching an unknown user", func() {
			_, err := store.GetUser(ctx, "missing")

			Convey("Then it should return ErrNotFound", func() {
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When asking for a standing of an unknown user", func() {
			_, err := store.Standing(ctx, "missing")
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})

		Convey("When reading the event flag", func() {
			active, err := store.EventActive(ctx)

			Convey("Then a missing flag should read as inactive", func() {
				So(err, ShouldBeNil)
				So(active, ShouldBeFalse)
			})
		})

		Convey("When toggling the event flag", func() {
			So(store.SetEventActive(ctx, true), ShouldBeNil)
			active, err := store.EventActive(ctx)
			So(err, ShouldBeNil)
			So(active, ShouldBeTrue)
		})
	})

	Convey("Given a store with scored users", t, func() {
		store := repository.NewMemoryStore()
		So(store.UpsertUser(ctx, model.User{ID: "a", Username: "alice", Point: 80, Rank: 2}), ShouldBeNil)
		So(store.UpsertUser(ctx, model.User{ID: "b", Username: "bob", Point: 40, Rank: 6}), ShouldBeNil)
		So(store.UpsertUser(ctx, model.User{ID: "c", Username: "caro", Point: 80, Rank: 1}), ShouldBeNil)
		So(store.UpsertUser(ctx, model.User{ID: "d", Username: "dan", Point: 10, Rank: 0}), ShouldBeNil)

		Convey("When upserting an existing user", func() {
			So(store.UpsertUser(ctx, model.User{ID: "a", Username: "alice2", Point: 130, Rank: 2}), ShouldBeNil)

			Convey("Then the row count should not grow", func() {
				n, err := store.Count(ctx)
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 4)
			})

			Convey("And the row should be overwritten", func() {
				u, err := store.GetUser(ctx, "a")
				So(err, ShouldBeNil)
				So(u.Username, ShouldEqual, "alice2")
				So(u.Point, ShouldEqual, 130)
			})
		})

		Convey("When listing the top users by point", func() {
			top, err := store.TopUsers(ctx, types.BasisPoint, 3)

			Convey("Then ordering should be point desc with ties in row order", func() {
				So(err, ShouldBeNil)
				So(len(top), ShouldEqual, 3)
				So(top[0].ID, ShouldEqual, "a")
				So(top[1].ID, ShouldEqual, "c")
				So(top[2].ID, ShouldEqual, "b")
			})
		})

		Convey("When listing the top users by rank", func() {
			top, err := store.TopUsers(ctx, types.BasisRank, 10)

			Convey("Then ordering should be rank desc", func() {
				So(err, ShouldBeNil)
				So(len(top), ShouldEqual, 4)
				So(top[0].ID, ShouldEqual, "b")
				So(top[1].ID, ShouldEqual, "a")
			})
		})

		Convey("When asking with a bad limit or basis", func() {
			_, err := store.TopUsers(ctx, types.BasisPoint, 0)
			So(errors.Is(err, repository.ErrInvalidLimit), ShouldBeTrue)

			_, err = store.TopUsers(ctx, types.RankingBasis("Elo"), 10)
			So(errors.Is(err, repository.ErrInvalidBasis), ShouldBeTrue)
		})

		Convey("When computing standings", func() {
			Convey("Then tied point values should share a position", func() {
				a, err := store.Standing(ctx, "a")
				So(err, ShouldBeNil)
				c, err := store.Standing(ctx, "c")
				So(err, ShouldBeNil)
				So(a.PointPosition, ShouldEqual, 1)
				So(c.PointPosition, ShouldEqual, 1)
			})

			Convey("And the next distinct value should skip per RANK semantics", func() {
				b, err := store.Standing(ctx, "b")
				So(err, ShouldBeNil)
				So(b.PointPosition, ShouldEqual, 3)
			})

			Convey("And the rank ordering should be independent", func() {
				b, err := store.Standing(ctx, "b")
				So(err, ShouldBeNil)
				So(b.RankPosition, ShouldEqual, 1)

				d, err := store.Standing(ctx, "d")
				So(err, ShouldBeNil)
				So(d.PointPosition, ShouldEqual, 4)
				So(d.RankPosition, ShouldEqual, 4)
			})
		})

		Convey("When listing all users", func() {
			all, err := store.ListUsers(ctx)

			Convey("Then insertion order should hold", func() {
				So(err, ShouldBeNil)
				So(len(all), ShouldEqual, 4)
				So(all[0].ID, ShouldEqual, "a")
				So(all[3].ID, ShouldEqual, "d")
			})
		})
	})
}
