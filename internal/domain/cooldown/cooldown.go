// Package cooldown tracks users temporarily barred from scoring.
//
// The set is process-local and lost on restart, which fails open: a restart
// never locks anyone out, at worst it lets one extra message score.
package cooldown

import (
	"sync"
	"time"
)

// Set records which user IDs are currently cooling down.
type Set struct {
	mu      sync.Mutex
	cooling map[string]struct{}

	after func(d time.Duration, f func()) *time.Timer
}

// New creates a cooldown Set with configuration options.
func New(opts ...Option) *Set {
	s := &Set{
		cooling: make(map[string]struct{}),
		after:   time.AfterFunc,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Begin records the user as cooling down. Returns false if the user was
// already in the set, true if newly recorded. Callers must invoke this
// before any I/O so rapid-fire messages cannot double-score.
func (s *Set) Begin(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, cooling := s.cooling[id]; cooling {
		return false
	}
	s.cooling[id] = struct{}{}
	return true
}

// ReleaseAfter removes the user from the set once the delay elapses. The
// release is unconditional: it runs whether or not the scoring write that
// triggered the cooldown succeeded, so a failed upsert can never lock a
// user out permanently.
func (s *Set) ReleaseAfter(id string, delay time.Duration) {
	s.after(delay, func() {
		s.release(id)
	})
}

func (s *Set) release(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.cooling, id)
}

// Contains reports whether the user is currently cooling down.
func (s *Set) Contains(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, cooling := s.cooling[id]
	return cooling
}

// Size returns the number of users currently cooling down.
func (s *Set) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.cooling)
}
