package eventctl

import "os"

// ShowHelp prints usage information for the eventctl tool.
func ShowHelp() {
	os.Stdout.WriteString(`pointbot eventctl
=================

Operational tool for the pointbot store: manage the event flag, seed
test data, and inspect rankings without going through Discord.

Usage:
  go run cmd/eventctl/main.go [options] <command> [args]

Commands:
  schema          Create the users and metadata tables if missing
  event on|off    Toggle the scoring event flag
  seed            Insert fake user rows for local testing
  top             Print the current point and rank leaders

Options:
  -dsn string
        Postgres connection string (default $POINTBOT_DSN)
  -n int
        Number of fake users to seed (default 25)
  -top int
        Number of rows to show (default 10)
  -timeout duration
        Per-invocation deadline (default 30s)
  -help
        Show this help message

Examples:
  # Prepare a fresh database
  go run cmd/eventctl/main.go -dsn postgres://localhost/pointbot schema

  # Start an event
  go run cmd/eventctl/main.go event on

  # Seed 100 users and inspect the leaders
  go run cmd/eventctl/main.go seed -n 100
  go run cmd/eventctl/main.go top
`)
}
