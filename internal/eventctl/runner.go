// Package eventctl implements the operational CLI for the pointbot store.
package eventctl

import (
	"context"
	"fmt"
	"os"

	repository "github.com/nanahoshi/pointbot/internal/adapters/repository"
	"github.com/nanahoshi/pointbot/internal/domain/types"
	"github.com/nanahoshi/pointbot/pkg/logger"
)

// Run executes one eventctl command against the store.
func Run(ctx context.Context, cfg *Config) error {
	if cfg.DSN == "" {
		return ErrMissingDSN
	}

	store, err := repository.NewPostgresStore(ctx, cfg.DSN)
	if err != nil {
		return fmt.Errorf("connect store: %w", err)
	}
	defer store.Close()

	switch cfg.Command {
	case "schema":
		return runSchema(ctx, store)
	case "event":
		return runEvent(ctx, store, cfg.Args)
	case "seed":
		return runSeed(ctx, store, cfg.SeedCount)
	case "top":
		return runTop(ctx, store, cfg.TopN)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, cfg.Command)
	}
}

// runSchema creates the tables if they do not exist yet.
func runSchema(ctx context.Context, store *repository.PostgresStore) error {
	if err := store.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	logger.Get().Info(ctx, "schema ready")
	return nil
}

// runEvent toggles the scoring event flag.
func runEvent(ctx context.Context, store *repository.PostgresStore, args []string) error {
	if len(args) != 1 || (args[0] != "on" && args[0] != "off") {
		return fmt.Errorf("%w: event expects on or off", ErrBadArgument)
	}

	active := args[0] == "on"
	if err := store.SetEventActive(ctx, active); err != nil {
		return fmt.Errorf("set event flag: %w", err)
	}
	logger.Get().Info(ctx, "event flag updated", logger.Bool("active", active))
	return nil
}

// runTop prints the current leaders in both orderings.
func runTop(ctx context.Context, store *repository.PostgresStore, n int) error {
	for _, basis := range []types.RankingBasis{types.BasisPoint, types.BasisRank} {
		users, err := store.TopUsers(ctx, basis, n)
		if err != nil {
			return fmt.Errorf("top users by %s: %w", basis, err)
		}

		fmt.Fprintf(os.Stdout, "TOP %d by %s\n", n, basis)
		for i, u := range users {
			value := u.Point
			if basis == types.BasisRank {
				value = u.Rank
			}
			fmt.Fprintf(os.Stdout, "  #%-3d %-24s %6dpt.\n", i+1, u.DisplayName, value)
		}
		fmt.Fprintln(os.Stdout)
	}

	total, err := store.Count(ctx)
	if err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	logger.Get().Info(ctx, "store totals", logger.Int("users", total))
	return nil
}
