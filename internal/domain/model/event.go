package model

import "time"

// ScoreEvent represents one scored message flowing through the queue. The
// award is the guild multiplier captured at message time; multiplier changes
// after the message was sent do not retro-apply.
type ScoreEvent struct {
	EventID string // unique id for traceability
	GuildID string
	Author  Profile
	Award   int
	TS      time.Time
}
