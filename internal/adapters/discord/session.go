// Package discord adapts the gateway session to the scoring pipeline and
// the command surface.
package discord

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/nanahoshi/pointbot/internal/domain/multiplier"
	"github.com/nanahoshi/pointbot/internal/domain/types"
	"github.com/nanahoshi/pointbot/pkg/logger"
	"github.com/nanahoshi/pointbot/pkg/metrics"
)

const defaultPresenceInterval = 20 * time.Second

// Bot owns the gateway session and fans events out to the message handler
// and the command handler.
type Bot struct {
	session     *discordgo.Session
	messages    *MessageHandler
	commands    *Commands
	multipliers *multiplier.Registry

	presenceEvery time.Duration

	logger logger.Logger
}

// New builds the gateway session and registers all event handlers. The
// session is not opened yet; call Open.
func New(token string, messages *MessageHandler, commands *Commands, multipliers *multiplier.Registry, opts ...Option) (*Bot, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSession, err)
	}

	b := &Bot{
		session:       session,
		messages:      messages,
		commands:      commands,
		multipliers:   multipliers,
		presenceEvery: defaultPresenceInterval,
	}

	for _, opt := range opts {
		opt(b)
	}

	if b.logger == nil {
		b.logger = logger.Get().Named("discord")
	}

	session.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages
	session.AddHandler(b.onReady)
	session.AddHandler(b.onGuildCreate)
	session.AddHandler(b.onGuildDelete)
	session.AddHandler(b.onMessageCreate)
	session.AddHandler(b.onInteractionCreate)

	return b, nil
}

// Open connects to the gateway.
func (b *Bot) Open(ctx context.Context) error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("%w: %w", ErrSession, err)
	}
	b.logger.Info(ctx, "gateway session opened")
	return nil
}

// Close disconnects from the gateway.
func (b *Bot) Close() error {
	if err := b.session.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrSession, err)
	}
	return nil
}

// GuildIDs returns the IDs of all currently joined guilds from live
// gateway state.
func (b *Bot) GuildIDs() []string {
	guilds := b.session.State.Guilds
	ids := make([]string, 0, len(guilds))
	for _, g := range guilds {
		ids = append(ids, g.ID)
	}
	return ids
}

// Guilds returns the public guild listing served by /api/getservers,
// sourced from live gateway state rather than the store.
func (b *Bot) Guilds() []types.GuildInfo {
	guilds := b.session.State.Guilds
	infos := make([]types.GuildInfo, 0, len(guilds))
	for _, g := range guilds {
		infos = append(infos, types.GuildInfo{
			Name:        g.Name,
			Icon:        g.IconURL(""),
			MemberCount: g.MemberCount,
		})
	}
	return infos
}

// RunPresenceLoop refreshes the bot's activity text until ctx is canceled.
func (b *Bot) RunPresenceLoop(ctx context.Context) {
	ticker := time.NewTicker(b.presenceEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n := len(b.session.State.Guilds)
			if err := b.session.UpdateGameStatus(0, fmt.Sprintf("%d サーバーが参加中", n)); err != nil {
				b.logger.Warn(ctx, "presence update failed", logger.Error(err))
			}
			metrics.UpdateGuildCount(n)
		}
	}
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	ctx := context.Background()
	b.logger.Info(ctx, "gateway ready",
		logger.String("user", r.User.Username),
		logger.Int("guilds", len(r.Guilds)),
	)
	metrics.UpdateGuildCount(len(r.Guilds))

	if err := b.commands.Register(s); err != nil {
		b.logger.Error(ctx, "slash command registration failed", logger.Error(err))
	}
}

// onGuildCreate fires once per joined guild on startup and again whenever
// the bot is added to a new guild; either way the guild gets a multiplier.
func (b *Bot) onGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	v := b.multipliers.Set(g.ID)
	b.logger.Info(context.Background(), "guild multiplier assigned",
		logger.String("guildID", g.ID),
		logger.Int("multiplier", v),
	)
	metrics.UpdateGuildCount(len(s.State.Guilds))
}

func (b *Bot) onGuildDelete(s *discordgo.Session, g *discordgo.GuildDelete) {
	metrics.UpdateGuildCount(len(s.State.Guilds))
}

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	b.messages.HandleMessage(context.Background(), m)
}

func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	b.commands.Handle(s, i)
}
