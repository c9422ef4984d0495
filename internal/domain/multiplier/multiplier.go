// Package multiplier tracks the per-guild daily point multiplier.
//
// Values are ephemeral process state: they are assigned when a guild is
// first observed and re-randomized by the scheduler. Nothing is persisted;
// a restart simply re-rolls every guild.
package multiplier

import (
	"math/rand"
	"sync"
)

// Registry holds the multiplier for each known guild. Handlers and the
// scheduler run on different goroutines, so access is mutex-guarded.
type Registry struct {
	mu     sync.RWMutex
	values map[string]int

	min, max int
	intn     func(n int) int
}

// New creates a Registry with configuration options.
func New(opts ...Option) *Registry {
	r := &Registry{
		values: make(map[string]int),
		min:    30,
		max:    100,
		intn:   rand.Intn,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// roll returns a uniformly random multiplier in [min,max].
func (r *Registry) roll() int {
	return r.min + r.intn(r.max-r.min+1)
}

// Set assigns a fresh random multiplier to the guild, overwriting any
// previous value. Used on guild join and by the scheduler refresh.
func (r *Registry) Set(guildID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	v := r.roll()
	r.values[guildID] = v
	return v
}

// Get returns the guild's current multiplier. ok is false for guilds that
// have not been observed yet; messages from those guilds are not scored.
func (r *Registry) Get(guildID string) (int, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.values[guildID]
	return v, ok
}

// RefreshAll re-rolls every listed guild in one pass.
func (r *Registry) RefreshAll(guildIDs []string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range guildIDs {
		r.values[id] = r.roll()
	}
}

// Len returns the number of guilds with an assigned multiplier.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.values)
}
