package eventctl

import "time"

// Config holds configuration for one eventctl invocation.
type Config struct {
	DSN       string        // Postgres connection string
	Command   string        // Subcommand: schema, event, seed, top
	Args      []string      // Remaining positional arguments
	SeedCount int           // Number of fake users to seed
	TopN      int           // Number of rows to show for top
	Timeout   time.Duration // Per-invocation deadline
}
