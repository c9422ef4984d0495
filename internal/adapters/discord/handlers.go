package discord

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"

	"github.com/nanahoshi/pointbot/internal/domain/cooldown"
	"github.com/nanahoshi/pointbot/internal/domain/model"
	"github.com/nanahoshi/pointbot/internal/domain/multiplier"
	"github.com/nanahoshi/pointbot/pkg/logger"
	"github.com/nanahoshi/pointbot/pkg/metrics"
)

// Skip reasons recorded on messages that do not score.
const (
	skipBot           = "bot_author"
	skipDM            = "direct_message"
	skipUnknownGuild  = "unknown_guild"
	skipCooldown      = "cooldown"
	skipEventInactive = "event_inactive"
	skipStoreError    = "store_error"
	skipBackpressure  = "backpressure"
)

// EventGate is the slice of the repository the message path reads.
type EventGate interface {
	EventActive(ctx context.Context) (bool, error)
}

// Enqueuer pushes score events for async processing.
type Enqueuer interface {
	Enqueue(ctx context.Context, e model.ScoreEvent) bool
}

// MessageHandler is the scoring front end: it runs the preconditions on
// every inbound message and enqueues a score event when they all pass.
type MessageHandler struct {
	gate        EventGate
	multipliers *multiplier.Registry
	cooldowns   *cooldown.Set
	queue       Enqueuer

	cooldownFor time.Duration

	logger logger.Logger
}

// NewMessageHandler creates the scoring front end.
func NewMessageHandler(gate EventGate, multipliers *multiplier.Registry, cooldowns *cooldown.Set, queue Enqueuer, cooldownFor time.Duration, l logger.Logger) *MessageHandler {
	if l == nil {
		l = logger.Get().Named("scorer")
	}
	return &MessageHandler{
		gate:        gate,
		multipliers: multipliers,
		cooldowns:   cooldowns,
		queue:       queue,
		cooldownFor: cooldownFor,
		logger:      l,
	}
}

// HandleMessage scores one inbound message. Every failed precondition is a
// silent no-op toward the author; only metrics and debug logs observe it.
func (h *MessageHandler) HandleMessage(ctx context.Context, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		metrics.RecordMessageSkipped(skipBot)
		return
	}
	if m.GuildID == "" {
		metrics.RecordMessageSkipped(skipDM)
		return
	}
	award, known := h.multipliers.Get(m.GuildID)
	if !known {
		metrics.RecordMessageSkipped(skipUnknownGuild)
		return
	}
	if h.cooldowns.Contains(m.Author.ID) {
		metrics.RecordMessageSkipped(skipCooldown)
		return
	}

	active, err := h.gate.EventActive(ctx)
	if err != nil {
		metrics.RecordMessageSkipped(skipStoreError)
		h.logger.Error(ctx, "event flag read failed", logger.Error(err))
		return
	}
	if !active {
		metrics.RecordMessageSkipped(skipEventInactive)
		return
	}

	// The cooldown is taken before any further I/O so a burst of messages
	// from the same author can score at most once. The release is scheduled
	// immediately and fires regardless of what the worker does with the
	// event.
	if !h.cooldowns.Begin(m.Author.ID) {
		metrics.RecordMessageSkipped(skipCooldown)
		return
	}
	h.cooldowns.ReleaseAfter(m.Author.ID, h.cooldownFor)
	metrics.UpdateCooldownSize(h.cooldowns.Size())

	event := model.ScoreEvent{
		EventID: uuid.NewString(),
		GuildID: m.GuildID,
		Author:  profileOf(m),
		Award:   award,
		TS:      time.Now(),
	}
	if !h.queue.Enqueue(ctx, event) {
		metrics.RecordMessageSkipped(skipBackpressure)
		h.logger.Warn(ctx, "score event dropped by backpressure",
			logger.String("userID", m.Author.ID),
			logger.String("guildID", m.GuildID),
		)
		return
	}

	metrics.RecordMessageScored()
	h.logger.Debug(ctx, "message scored",
		logger.String("eventID", event.EventID),
		logger.String("userID", m.Author.ID),
		logger.Int("award", award),
	)
}

// profileOf snapshots the author's identity as observed on this message.
func profileOf(m *discordgo.MessageCreate) model.Profile {
	display := m.Author.GlobalName
	if m.Member != nil && m.Member.Nick != "" {
		display = m.Member.Nick
	}
	if display == "" {
		display = m.Author.Username
	}
	return model.Profile{
		ID:          m.Author.ID,
		Username:    m.Author.Username,
		DisplayName: display,
		Icon:        m.Author.AvatarURL(""),
	}
}
