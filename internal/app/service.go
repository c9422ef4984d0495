// Package service assembles the scoring pipeline and implements the
// dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nanahoshi/pointbot/internal/adapters/discord"
	eventqueue "github.com/nanahoshi/pointbot/internal/adapters/mq/queue"
	workerpool "github.com/nanahoshi/pointbot/internal/adapters/mq/worker"
	repository "github.com/nanahoshi/pointbot/internal/adapters/repository"
	"github.com/nanahoshi/pointbot/internal/domain/cooldown"
	"github.com/nanahoshi/pointbot/internal/domain/multiplier"
	"github.com/nanahoshi/pointbot/internal/domain/types"
	"github.com/nanahoshi/pointbot/internal/scheduler"
	"github.com/nanahoshi/pointbot/pkg/logger"
	"github.com/nanahoshi/pointbot/pkg/metrics"
)

// Service owns the whole bot: the Postgres store, the scoring pipeline,
// the gateway session, and the daily scheduler.
type Service struct {
	mu sync.RWMutex

	// Core components
	store       *repository.PostgresStore
	multipliers *multiplier.Registry
	cooldowns   *cooldown.Set
	eventQueue  eventqueue.Queue
	workerPool  *workerpool.Pool
	sched       *scheduler.Scheduler
	bot         *discord.Bot

	// Configuration
	dsn           string
	token         string
	timezone      string
	tickInterval  time.Duration
	cooldownFor   time.Duration
	multiplierMin int
	multiplierMax int
	queueSize     int
	workerCount   int
	rankingLimit  int
	presenceEvery time.Duration

	// State
	started bool
	cancel  context.CancelFunc

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithTimezone sets the IANA zone the daily schedule runs in.
func WithTimezone(tz string) Option {
	return func(s *Service) {
		if tz != "" {
			s.timezone = tz
		}
	}
}

// WithTickInterval sets the scheduler check interval.
func WithTickInterval(interval time.Duration) Option {
	return func(s *Service) {
		if interval > 0 {
			s.tickInterval = interval
		}
	}
}

// WithCooldown sets the per-user scoring cooldown.
func WithCooldown(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.cooldownFor = d
		}
	}
}

// WithMultiplierBounds sets the inclusive per-guild multiplier range.
func WithMultiplierBounds(min, max int) Option {
	return func(s *Service) {
		if min > 0 && max >= min {
			s.multiplierMin = min
			s.multiplierMax = max
		}
	}
}

// WithQueueSize sets the maximum size of the score event queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithWorkerCount sets the number of score worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithRankingLimit caps the number of rows in the /ranking reply.
func WithRankingLimit(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.rankingLimit = limit
		}
	}
}

// WithPresenceInterval sets how often the activity text refreshes.
func WithPresenceInterval(interval time.Duration) Option {
	return func(s *Service) {
		if interval > 0 {
			s.presenceEvery = interval
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration. dsn and token
// are required; everything else has a production default.
func New(dsn, token string, opts ...Option) *Service {
	s := &Service{
		dsn:           dsn,
		token:         token,
		timezone:      "Asia/Tokyo",
		tickInterval:  time.Second,
		cooldownFor:   5 * time.Second,
		multiplierMin: 30,
		multiplierMax: 100,
		queueSize:     1024,
		workerCount:   4,
		rankingLimit:  10,
		presenceEvery: 20 * time.Second,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting pointbot service...")

	loc, err := time.LoadLocation(s.timezone)
	if err != nil {
		return fmt.Errorf("load timezone %q: %w", s.timezone, err)
	}

	store, err := repository.NewPostgresStore(ctx, s.dsn)
	if err != nil {
		return fmt.Errorf("connect store: %w", err)
	}
	if err := store.EnsureSchema(ctx); err != nil {
		store.Close()
		return fmt.Errorf("ensure schema: %w", err)
	}
	s.store = store

	s.multipliers = multiplier.New(
		multiplier.WithBounds(s.multiplierMin, s.multiplierMax),
	)
	s.cooldowns = cooldown.New()
	s.eventQueue = eventqueue.NewInMemoryQueue(
		eventqueue.WithCapacity(s.queueSize),
	)

	messages := discord.NewMessageHandler(s.store, s.multipliers, s.cooldowns, s.eventQueue, s.cooldownFor, nil)
	commands := discord.NewCommands(s.store, s.rankingLimit, nil)

	bot, err := discord.New(s.token, messages, commands, s.multipliers,
		discord.WithPresenceInterval(s.presenceEvery),
	)
	if err != nil {
		store.Close()
		return fmt.Errorf("build gateway session: %w", err)
	}
	s.bot = bot

	s.sched = scheduler.New(s.store, s.multipliers, s.bot,
		scheduler.WithInterval(s.tickInterval),
		scheduler.WithLocation(loc),
	)

	if err := s.bot.Open(ctx); err != nil {
		store.Close()
		return fmt.Errorf("open gateway session: %w", err)
	}

	runCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.workerPool = workerpool.NewPool(s.workerCount, s.eventQueue, s.store)
	s.workerPool.Start(runCtx)
	go s.sched.Run(runCtx)
	go s.bot.RunPresenceLoop(runCtx)

	s.started = true
	s.logger.Info(ctx, "pointbot service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.String("timezone", s.timezone),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping pointbot service...")

	if s.cancel != nil {
		s.cancel()
	}

	if s.bot != nil {
		if err := s.bot.Close(); err != nil {
			s.logger.Warn(ctx, "gateway close failed", logger.Error(err))
		}
	}

	// Closing the queue lets workers drain what is left before the pool
	// stops them.
	if q, ok := s.eventQueue.(*eventqueue.InMemoryQueue); ok {
		_ = q.Close()
	}
	if s.workerPool != nil {
		s.workerPool.Stop()
	}

	if s.store != nil {
		s.store.Close()
	}

	s.started = false
	s.logger.Info(ctx, "pointbot service stopped")
}

// Guilds exposes the live guild listing for the web API.
func (s *Service) Guilds() []types.GuildInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return nil
	}
	return s.bot.Guilds()
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"timezone":    s.timezone,
	}

	if !s.started {
		return stats
	}

	queueLen := s.eventQueue.Len(ctx)
	stats["queueLength"] = queueLen
	stats["guildCount"] = len(s.bot.GuildIDs())
	stats["cooldowns"] = s.cooldowns.Size()
	stats["multipliers"] = s.multipliers.Len()

	if active, err := s.store.EventActive(ctx); err == nil {
		stats["eventActive"] = active
	}
	if n, err := s.store.Count(ctx); err == nil {
		stats["trackedUsers"] = n
		metrics.UpdateTrackedUsers(n)
	}

	metrics.UpdateQueueSize(queueLen)
	metrics.UpdateCooldownSize(s.cooldowns.Size())

	return stats
}
