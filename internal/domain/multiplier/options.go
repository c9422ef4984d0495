package multiplier

// Option applies a configuration option to the Registry.
type Option func(*Registry)

// WithBounds sets the inclusive range multipliers are drawn from.
func WithBounds(min, max int) Option {
	return func(r *Registry) {
		if min >= 0 && max >= min {
			r.min = min
			r.max = max
		}
	}
}

// WithRand replaces the random source. Tests use this to make draws
// deterministic.
func WithRand(intn func(n int) int) Option {
	return func(r *Registry) {
		if intn != nil {
			r.intn = intn
		}
	}
}
