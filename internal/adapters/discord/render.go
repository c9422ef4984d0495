package discord

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/nanahoshi/pointbot/internal/adapters/repository"
	"github.com/nanahoshi/pointbot/internal/domain/model"
	"github.com/nanahoshi/pointbot/internal/domain/types"
)

// Reply strings. The deployment is Japanese-speaking.
const (
	msgNoEvent  = "現在はイベント期間中ではありません"
	msgNoRecord = "まだ記録がありません"
	msgError    = "エラーが発生しました。時間をおいて再試行してください"
)

// embedColor is Discord's og-blurple.
const embedColor = 0x5865F2

// rankingEmbed renders the top users as the 1-indexed TOP 10 list.
func rankingEmbed(users []model.User, basis types.RankingBasis) *discordgo.MessageEmbed {
	lines := make([]string, 0, len(users))
	for i, u := range users {
		value := u.Point
		if basis == types.BasisRank {
			value = u.Rank
		}
		lines = append(lines, fmt.Sprintf("#%d %s (@%s) **%d**pt.", i+1, u.DisplayName, u.Username, value))
	}

	return &discordgo.MessageEmbed{
		Title:       "TOP 10",
		Description: strings.Join(lines, "\n"),
		Color:       embedColor,
	}
}

// statusEmbed renders the requester's point/rank values with their RANK
// positions in each ordering.
func statusEmbed(u model.User, st types.Standing) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: "Your Status",
		Description: fmt.Sprintf("ポイント: **%d**pt. (#%d)\nランク: **%d**pt. (#%d)",
			u.Point, st.PointPosition, u.Rank, st.RankPosition),
		Color: embedColor,
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound)
}
