package discord

import (
	"time"

	"github.com/nanahoshi/pointbot/pkg/logger"
)

// Option applies a configuration option to the Bot.
type Option func(*Bot)

// WithPresenceInterval sets how often the activity text is refreshed.
func WithPresenceInterval(interval time.Duration) Option {
	return func(b *Bot) {
		if interval > 0 {
			b.presenceEvery = interval
		}
	}
}

// WithLogger sets a custom logger for the bot.
func WithLogger(l logger.Logger) Option {
	return func(b *Bot) {
		if l != nil {
			b.logger = l
		}
	}
}
