package eventctl

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"

	"github.com/google/uuid"

	"github.com/nanahoshi/pointbot/internal/domain/model"
	"github.com/nanahoshi/pointbot/pkg/logger"
)

// Constants for fake user generation.
const (
	defaultSeedCount = 25
	maxSeedPoints    = 5000
	maxSeedRank      = 300
)

// seedStore is the slice of the repository seeding writes to.
type seedStore interface {
	UpsertUser(ctx context.Context, u model.User) error
}

// runSeed inserts n fake user rows with randomized points and ranks.
func runSeed(ctx context.Context, store seedStore, n int) error {
	if n < 1 {
		n = defaultSeedCount
	}

	for i := 0; i < n; i++ {
		u := generateFakeUser(i)
		if err := store.UpsertUser(ctx, u); err != nil {
			return fmt.Errorf("seed user %d: %w", i, err)
		}
	}

	logger.Get().Info(ctx, "seeded fake users", logger.Int("count", n))
	return nil
}

// generateFakeUser creates one fake user row. IDs are random so repeated
// seed runs add rows instead of overwriting earlier ones.
func generateFakeUser(index int) model.User {
	name := "seed-user-" + strconv.Itoa(index)
	return model.User{
		ID:          uuid.NewString(),
		Username:    name,
		DisplayName: name,
		Icon:        "",
		Point:       randomInt(maxSeedPoints),
		Rank:        randomInt(maxSeedRank),
	}
}

// randomInt returns a random int in [0, max) using crypto/rand.
func randomInt(max int) int {
	n, _ := rand.Int(rand.Reader, big.NewInt(int64(max)))
	return int(n.Int64())
}
