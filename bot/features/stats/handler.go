package stats

import (
	"context"
	"fmt"
	"strings"
	"time"

	"typerbot/bot/common"
	"typerbot/models"
	"typerbot/ranks"
	"typerbot/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

const leaderboardSize = 10

var medals = []string{"🥇", "🥈", "🥉"}

func (f *Feature) handleLeaderboard(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	accounts, err := f.accountService.GetLeaderboard(ctx, leaderboardSize)
	if err != nil {
		log.WithError(err).Error("Error getting leaderboard")
		common.RespondWithError(s, i, "Wystąpił błąd podczas pobierania rankingu.")
		return
	}

	common.RespondWithEmbed(s, i, LeaderboardEmbed(accounts, f.ranks), false)
}

func (f *Feature) handleStats(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	user := common.InteractionUser(i)

	summary, err := f.accountService.GetAccount(ctx, user.ID)
	if err != nil {
		log.WithError(err).WithField("account_id", user.ID).Error("Error getting account")
		common.RespondWithError(s, i, "Wystąpił błąd podczas pobierania statystyk.")
		return
	}

	stats, err := f.accountService.GetStats(ctx, user.ID)
	if err != nil {
		log.WithError(err).WithField("account_id", user.ID).Error("Error getting bet stats")
		common.RespondWithError(s, i, "Wystąpił błąd podczas pobierania statystyk.")
		return
	}

	common.RespondWithEmbed(s, i, StatsEmbed(user.Username, summary, stats), true)
}

// LeaderboardEmbed ranks accounts by lifetime points
func LeaderboardEmbed(accounts []*models.Account, table *ranks.Table) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Color:     common.ColorGold,
		Title:     "🏆 Ranking Graczy",
		Footer:    &discordgo.MessageEmbedFooter{Text: "Ranking według sumy zdobytych punktów"},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	if len(accounts) == 0 {
		embed.Description = "Brak graczy w rankingu."
		return embed
	}

	var lines []string
	for idx, account := range accounts {
		position := fmt.Sprintf("**%d.**", idx+1)
		if idx < len(medals) {
			position = medals[idx]
		}
		tier := table.CalculateRank(account.TotalPoints)
		lines = append(lines, fmt.Sprintf("%s <@%s> %s %s • **%s** pkt",
			position, account.ID, tier.Emoji, tier.Name, common.FormatPoints(account.TotalPoints)))
	}
	embed.Description = strings.Join(lines, "\n")

	return embed
}

// StatsEmbed summarises an account's points and betting record
func StatsEmbed(username string, summary *service.AccountSummary, stats *models.BetStats) *discordgo.MessageEmbed {
	account := summary.Account

	return &discordgo.MessageEmbed{
		Color:       summary.Tier.Color,
		Title:       "📊 Twoje Statystyki",
		Description: fmt.Sprintf("Statystyki gracza **%s**", username),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "🏆 Ranga", Value: fmt.Sprintf("%s %s", summary.Tier.Emoji, summary.Tier.Name), Inline: true},
			{Name: "💎 Balans", Value: fmt.Sprintf("%s punktów", common.FormatPoints(account.Balance)), Inline: true},
			{Name: "📊 Suma punktów", Value: fmt.Sprintf("%s punktów", common.FormatPoints(account.TotalPoints)), Inline: true},
			{Name: "🎲 Zakłady", Value: fmt.Sprintf("%d (aktywne: %d)", stats.TotalBets, stats.Pending), Inline: true},
			{Name: "✅ Wygrane", Value: fmt.Sprintf("%d", stats.Wins), Inline: true},
			{Name: "❌ Przegrane", Value: fmt.Sprintf("%d", stats.Losses), Inline: true},
			{Name: "↩️ Zwroty", Value: fmt.Sprintf("%d", stats.Voids), Inline: true},
			{Name: "📈 Skuteczność", Value: fmt.Sprintf("%.1f%%", stats.WinRate()), Inline: true},
			{Name: "💰 Postawione", Value: fmt.Sprintf("%s punktów", common.FormatPoints(stats.TotalStaked)), Inline: true},
			{Name: "🎁 Wygrane punkty", Value: fmt.Sprintf("%s punktów", common.FormatPoints(stats.TotalWon)), Inline: true},
		},
		Footer:    &discordgo.MessageEmbedFooter{Text: "System zakładów"},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}
