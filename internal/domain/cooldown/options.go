package cooldown

import "time"

// Option applies a configuration option to the Set.
type Option func(*Set)

// WithAfterFunc replaces the timer used for releases. Tests use this to
// trigger releases synchronously instead of waiting out real delays.
func WithAfterFunc(after func(d time.Duration, f func()) *time.Timer) Option {
	return func(s *Set) {
		if after != nil {
			s.after = after
		}
	}
}
