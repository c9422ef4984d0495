// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Keep fields unexported where possible and use functional options.
// - All future functions must accept context.Context as the first parameter.
// - External errors must be wrapped via this package's error helpers.
package config

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":10000".
	Addr string `koanf:"addr"`

	// DSN is the Postgres connection string. Required.
	DSN string `koanf:"dsn"`

	// DiscordToken is the bot token for the gateway session. Required.
	DiscordToken string `koanf:"discord_token"`

	// Timezone is the IANA zone the daily schedule is evaluated in.
	Timezone string `koanf:"timezone"`

	// TickSeconds sets the scheduler check interval.
	TickSeconds int `koanf:"tick_seconds"`

	// CooldownSeconds sets how long a user is barred from scoring after a
	// scored message.
	CooldownSeconds int `koanf:"cooldown_seconds"`

	// MultiplierMin and MultiplierMax bound the per-guild random multiplier.
	MultiplierMin int `koanf:"multiplier_min"`
	MultiplierMax int `koanf:"multiplier_max"`

	// QueueSize bounds the in-memory score event queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of score workers.
	WorkerCount int `koanf:"worker_count"`

	// RankingLimit caps the number of rows in the /ranking reply.
	RankingLimit int `koanf:"ranking_limit"`

	// PresenceSeconds sets the presence refresh interval.
	PresenceSeconds int `koanf:"presence_seconds"`
}

// New returns a Config populated with defaults. The defaults mirror the
// production deployment: Tokyo clock, 5 second cooldown, multipliers in
// [30,100], top-10 rankings, web API on :10000.
func New() *Config {
	return &Config{
		LogLevel:        "info",
		Addr:            ":10000",
		Timezone:        "Asia/Tokyo",
		TickSeconds:     1,
		CooldownSeconds: 5,
		MultiplierMin:   30,
		MultiplierMax:   100,
		QueueSize:       1024,
		WorkerCount:     4,
		RankingLimit:    10,
		PresenceSeconds: 20,
	}
}
