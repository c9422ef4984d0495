// Package repository defines the user store interface and errors.
package repository

import (
	"context"

	"github.com/nanahoshi/pointbot/internal/domain/model"
	"github.com/nanahoshi/pointbot/internal/domain/types"
)

// Store provides read/write access to user records and the event flag.
//
// All write paths go through UpsertUser so the store holds exactly one row
// per user ID regardless of interleaving between message workers and the
// daily rollover.
type Store interface {
	// EnsureSchema creates the backing tables when they do not exist yet.
	EnsureSchema(ctx context.Context) error

	// GetUser returns the record for id. Returns ErrNotFound if the user
	// has never been scored.
	GetUser(ctx context.Context, id string) (model.User, error)

	// ListUsers returns every user record. Used by the daily rollover.
	ListUsers(ctx context.Context) ([]model.User, error)

	// UpsertUser inserts the record or overwrites all fields of the
	// existing row with the same ID.
	UpsertUser(ctx context.Context, u model.User) error

	// TopUsers returns up to limit users ordered descending by the chosen
	// basis. Ties keep the store's natural row order.
	TopUsers(ctx context.Context, basis types.RankingBasis, limit int) ([]model.User, error)

	// Standing returns the user's position in the point and rank orderings,
	// each computed with standard RANK tie semantics over all users.
	// Returns ErrNotFound if the user has no row.
	Standing(ctx context.Context, id string) (types.Standing, error)

	// EventActive reports the metadata `isevent` flag. A missing flag
	// reads as false.
	EventActive(ctx context.Context) (bool, error)

	// SetEventActive upserts the `isevent` flag.
	SetEventActive(ctx context.Context, active bool) error

	// Count returns the number of user rows.
	Count(ctx context.Context) (int, error)
}
