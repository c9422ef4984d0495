// Package scheduler runs the recurring daily reset and multiplier refresh.
//
// One goroutine checks the wall clock at a short fixed interval against a
// fixed timezone (Asia/Tokyo in production). Two time-based side effects
// hang off it:
//
//   - the daily rollover at local midnight, which snapshots every user's
//     point total into a rank and zeroes points, and
//   - the guild multiplier refresh at each hour boundary from 06:00 on,
//     plus an immediate pass whenever no guild has a multiplier yet.
//
// Both triggers carry a last-fired marker so a tick landing anywhere inside
// the one-minute trigger window fires at most once per day respectively per
// hour. Store errors are logged and the next tick proceeds normally; a
// failing tick never stops the loop.
package scheduler

import (
	"context"
	"time"

	"github.com/nanahoshi/pointbot/internal/domain/model"
	"github.com/nanahoshi/pointbot/internal/domain/multiplier"
	"github.com/nanahoshi/pointbot/pkg/logger"
	"github.com/nanahoshi/pointbot/pkg/metrics"
)

const (
	defaultInterval  = time.Second
	defaultTimezone  = "Asia/Tokyo"
	refreshStartHour = 6

	dateLayout = "2006-01-02"
	hourLayout = "2006-01-02T15"
)

// Store is the slice of the repository the scheduler needs.
type Store interface {
	ListUsers(ctx context.Context) ([]model.User, error)
	UpsertUser(ctx context.Context, u model.User) error
}

// GuildLister exposes the guilds currently known to the gateway session.
type GuildLister interface {
	GuildIDs() []string
}

// Scheduler owns the recurring tick loop.
type Scheduler struct {
	store       Store
	multipliers *multiplier.Registry
	guilds      GuildLister

	loc      *time.Location
	interval time.Duration
	now      func() time.Time

	lastRollover string // local date of the last rollover
	lastRefresh  string // local hour of the last multiplier refresh

	logger logger.Logger
}

// New creates a Scheduler with configuration options.
func New(store Store, multipliers *multiplier.Registry, guilds GuildLister, opts ...Option) *Scheduler {
	s := &Scheduler{
		store:       store,
		multipliers: multipliers,
		guilds:      guilds,
		interval:    defaultInterval,
		now:         time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.loc == nil {
		loc, err := time.LoadLocation(defaultTimezone)
		if err != nil {
			loc = time.UTC
		}
		s.loc = loc
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("scheduler")
	}

	return s
}

// Run ticks until ctx is canceled. The loop itself never returns an error;
// per-tick failures are logged and the next tick is attempted normally.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info(ctx, "scheduler started",
		logger.String("timezone", s.loc.String()),
		logger.Duration("interval", s.interval),
	)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info(ctx, "scheduler stopped")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// tick evaluates both triggers against the current local time.
func (s *Scheduler) tick(ctx context.Context) {
	now := s.now().In(s.loc)

	if now.Hour() == 0 && now.Minute() == 0 {
		day := now.Format(dateLayout)
		if s.lastRollover != day {
			// The day is marked only once the user listing succeeded, so a
			// store hiccup on the first tick retries on the next tick while
			// the minute window is still open. Nothing was written on the
			// failed attempt, so the retry is safe.
			if err := s.rollover(ctx); err == nil {
				s.lastRollover = day
			}
		}
	}

	switch hour := now.Format(hourLayout); {
	case now.Minute() == 0 && now.Hour() >= refreshStartHour && s.lastRefresh != hour:
		s.lastRefresh = hour
		s.refresh(ctx)
	case s.multipliers.Len() == 0:
		// A fresh process has no multipliers; assign them immediately so
		// messages can score without waiting for the next hour boundary.
		s.refresh(ctx)
	}
}

// rollover snapshots every user's point total into a rank and zeroes
// points. A failed listing aborts the whole run and is reported to the
// caller; per-user upsert failures are logged and skipped, and the
// remaining users still roll over.
func (s *Scheduler) rollover(ctx context.Context) error {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		metrics.RecordRolloverError()
		s.logger.Error(ctx, "rollover: listing users failed", logger.Error(err))
		return err
	}

	metrics.RecordRolloverRun()

	rolled := 0
	for _, u := range users {
		if err := s.store.UpsertUser(ctx, u.Rollover()); err != nil {
			metrics.RecordRolloverError()
			s.logger.Error(ctx, "rollover: upsert failed",
				logger.String("userID", u.ID),
				logger.Error(err),
			)
			continue
		}
		rolled++
	}

	metrics.RecordRolloverUsers(rolled)
	s.logger.Info(ctx, "daily rollover complete",
		logger.Int("users", rolled),
		logger.Int("failed", len(users)-rolled),
	)
	return nil
}

// refresh re-rolls the multiplier of every currently known guild.
func (s *Scheduler) refresh(ctx context.Context) {
	guilds := s.guilds.GuildIDs()
	if len(guilds) == 0 {
		return
	}

	s.multipliers.RefreshAll(guilds)
	metrics.RecordMultiplierRefresh()
	s.logger.Info(ctx, "guild multipliers refreshed", logger.Int("guilds", len(guilds)))
}
