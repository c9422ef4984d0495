package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/nanahoshi/pointbot/internal/domain/model"
	"github.com/nanahoshi/pointbot/internal/domain/types"
	"github.com/nanahoshi/pointbot/pkg/logger"
	"github.com/nanahoshi/pointbot/pkg/metrics"
)

// StoreReader is the slice of the repository the command surface reads.
type StoreReader interface {
	EventActive(ctx context.Context) (bool, error)
	TopUsers(ctx context.Context, basis types.RankingBasis, limit int) ([]model.User, error)
	GetUser(ctx context.Context, id string) (model.User, error)
	Standing(ctx context.Context, id string) (types.Standing, error)
}

// Commands implements the /ranking and /status slash commands.
type Commands struct {
	store StoreReader
	limit int

	logger logger.Logger
}

// NewCommands creates the command surface. limit caps the ranking reply.
func NewCommands(store StoreReader, limit int, l logger.Logger) *Commands {
	if l == nil {
		l = logger.Get().Named("commands")
	}
	return &Commands{store: store, limit: limit, logger: l}
}

// Register creates the global application commands. Called once the
// session is ready and knows its own application ID.
func (c *Commands) Register(s *discordgo.Session) error {
	commands := []*discordgo.ApplicationCommand{
		{
			Name:        "ranking",
			Description: "ポイントとランクのランキングを表示します",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "type",
					Description: "ランキングの種類",
					Required:    true,
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "Point", Value: string(types.BasisPoint)},
						{Name: "Rank", Value: string(types.BasisRank)},
					},
				},
			},
		},
		{
			Name:        "status",
			Description: "あなたのステータスをチェックします",
		},
	}

	for _, cmd := range commands {
		if _, err := s.ApplicationCommandCreate(s.State.User.ID, "", cmd); err != nil {
			return fmt.Errorf("register /%s: %w", cmd.Name, err)
		}
	}
	return nil
}

// Handle dispatches one interaction. Replies are deferred first, the way
// the store round-trips require.
func (c *Commands) Handle(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	ctx := context.Background()
	data := i.ApplicationCommandData()
	metrics.RecordCommand(data.Name)

	switch data.Name {
	case "ranking":
		basis := types.BasisPoint
		if len(data.Options) > 0 {
			basis = types.RankingBasis(data.Options[0].StringValue())
		}
		c.respond(ctx, s, i, false, func() (string, *discordgo.MessageEmbed) {
			return c.rankingReply(ctx, basis)
		})
	case "status":
		c.respond(ctx, s, i, true, func() (string, *discordgo.MessageEmbed) {
			return c.statusReply(ctx, interactionUserID(i))
		})
	}
}

// respond defers, builds the reply, and follows up. Errors end up in the
// log; the interaction is never left hanging unless the defer itself
// failed.
func (c *Commands) respond(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, ephemeral bool, build func() (string, *discordgo.MessageEmbed)) {
	var flags discordgo.MessageFlags
	if ephemeral {
		flags = discordgo.MessageFlagsEphemeral
	}

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: flags},
	})
	if err != nil {
		c.logger.Error(ctx, "interaction defer failed", logger.Error(err))
		return
	}

	content, embed := build()
	params := &discordgo.WebhookParams{Content: content, Flags: flags}
	if embed != nil {
		params.Embeds = []*discordgo.MessageEmbed{embed}
	}
	if _, err := s.FollowupMessageCreate(i.Interaction, true, params); err != nil {
		c.logger.Error(ctx, "interaction followup failed", logger.Error(err))
	}
}

// rankingReply builds the /ranking response: either a plain gate message
// or the top-N embed.
func (c *Commands) rankingReply(ctx context.Context, basis types.RankingBasis) (string, *discordgo.MessageEmbed) {
	active, err := c.store.EventActive(ctx)
	if err != nil {
		c.logger.Error(ctx, "event flag read failed", logger.Error(err))
		return msgError, nil
	}
	if !active {
		return msgNoEvent, nil
	}

	if !basis.Valid() {
		basis = types.BasisPoint
	}
	users, err := c.store.TopUsers(ctx, basis, c.limit)
	if err != nil {
		c.logger.Error(ctx, "ranking query failed", logger.Error(err))
		return msgError, nil
	}
	return "", rankingEmbed(users, basis)
}

// statusReply builds the /status response for the requesting user.
func (c *Commands) statusReply(ctx context.Context, userID string) (string, *discordgo.MessageEmbed) {
	active, err := c.store.EventActive(ctx)
	if err != nil {
		c.logger.Error(ctx, "event flag read failed", logger.Error(err))
		return msgError, nil
	}
	if !active {
		return msgNoEvent, nil
	}

	u, err := c.store.GetUser(ctx, userID)
	if isNotFound(err) {
		// A user who never posted during an event has no row yet; tell
		// them so instead of failing the lookup.
		return msgNoRecord, nil
	}
	if err != nil {
		c.logger.Error(ctx, "status query failed", logger.Error(err))
		return msgError, nil
	}

	st, err := c.store.Standing(ctx, userID)
	if err != nil {
		c.logger.Error(ctx, "standing query failed", logger.Error(err))
		return msgError, nil
	}
	return "", statusEmbed(u, st)
}

func interactionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}
