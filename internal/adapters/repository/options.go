package repository

import (
	"github.com/nanahoshi/pointbot/pkg/logger"
)

// PostgresOption applies a configuration option to the PostgresStore.
type PostgresOption func(*PostgresStore)

// WithLogger sets a custom logger for the store.
func WithLogger(l logger.Logger) PostgresOption {
	return func(s *PostgresStore) {
		if l != nil {
			s.logger = l
		}
	}
}
