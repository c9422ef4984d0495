package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/nanahoshi/pointbot/internal/eventctl"
	"github.com/nanahoshi/pointbot/pkg/logger"
)

const defaultTimeout = 30 * time.Second

func main() {
	var (
		dsn     = flag.String("dsn", os.Getenv("POINTBOT_DSN"), "Postgres connection string")
		seedN   = flag.Int("n", 25, "Number of fake users to seed")
		topN    = flag.Int("top", 10, "Number of rows to show")
		timeout = flag.Duration("timeout", defaultTimeout, "Per-invocation deadline")
		help    = flag.Bool("help", false, "Show help message")
	)
	flag.Parse()

	if *help || flag.NArg() == 0 {
		eventctl.ShowHelp()
		return
	}

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	cfg := &eventctl.Config{
		DSN:       *dsn,
		Command:   flag.Arg(0),
		Args:      flag.Args()[1:],
		SeedCount: *seedN,
		TopN:      *topN,
		Timeout:   *timeout,
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	if err := eventctl.Run(ctx, cfg); err != nil {
		logger.Get().Error(ctx, "eventctl failed", logger.Error(err))
		os.Exit(1)
	}
}
