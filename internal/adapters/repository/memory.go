package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/nanahoshi/pointbot/internal/domain/model"
	"github.com/nanahoshi/pointbot/internal/domain/types"
)

// MemoryStore implements Store on process memory with the same ordering and
// tie semantics as the Postgres queries. It backs unit tests across the
// repo and local development without a database.
type MemoryStore struct {
	mu          sync.RWMutex
	users       map[string]model.User
	order       map[string]int // insertion sequence, the "natural row order"
	seq         int
	eventActive bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users: make(map[string]model.User),
		order: make(map[string]int),
	}
}

// EnsureSchema is a no-op for the in-memory store.
func (s *MemoryStore) EnsureSchema(ctx context.Context) error { return nil }

// GetUser returns the record for id.
func (s *MemoryStore) GetUser(ctx context.Context, id string) (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return model.User{}, ErrNotFound
	}
	return u, nil
}

// ListUsers returns every user record in natural row order.
func (s *MemoryStore) ListUsers(ctx context.Context) ([]model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.sorted(func(a, b model.User) bool {
		return s.order[a.ID] < s.order[b.ID]
	}), nil
}

// UpsertUser inserts or fully overwrites the row for u.ID.
func (s *MemoryStore) UpsertUser(ctx context.Context, u model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[u.ID]; !ok {
		s.order[u.ID] = s.seq
		s.seq++
	}
	s.users[u.ID] = u
	return nil
}

// TopUsers returns up to limit users ordered descending by basis, ties in
// natural row order.
func (s *MemoryStore) TopUsers(ctx context.Context, basis types.RankingBasis, limit int) ([]model.User, error) {
	if limit < 1 {
		return nil, ErrInvalidLimit
	}
	if !basis.Valid() {
		return nil, ErrInvalidBasis
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	users := s.sorted(func(a, b model.User) bool {
		av, bv := value(a, basis), value(b, basis)
		if av != bv {
			return av > bv
		}
		return s.order[a.ID] < s.order[b.ID]
	})
	if len(users) > limit {
		users = users[:limit]
	}
	return users, nil
}

// Standing returns standard RANK positions: 1 plus the count of users with
// a strictly greater value, so ties share a position and the next distinct
// value skips.
func (s *MemoryStore) Standing(ctx context.Context, id string) (types.Standing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	me, ok := s.users[id]
	if !ok {
		return types.Standing{}, ErrNotFound
	}

	st := types.Standing{PointPosition: 1, RankPosition: 1}
	for _, u := range s.users {
		if u.Point > me.Point {
			st.PointPosition++
		}
		if u.Rank > me.Rank {
			st.RankPosition++
		}
	}
	return st, nil
}

// EventActive reports the in-memory event flag.
func (s *MemoryStore) EventActive(ctx context.Context) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.eventActive, nil
}

// SetEventActive sets the in-memory event flag.
func (s *MemoryStore) SetEventActive(ctx context.Context, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.eventActive = active
	return nil
}

// Count returns the number of user rows.
func (s *MemoryStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.users), nil
}

// sorted copies all users and sorts them with less. Callers hold the lock.
func (s *MemoryStore) sorted(less func(a, b model.User) bool) []model.User {
	users := make([]model.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return less(users[i], users[j]) })
	return users
}

func value(u model.User, basis types.RankingBasis) int {
	if basis == types.BasisRank {
		return u.Rank
	}
	return u.Point
}
