package balance

import (
	"context"
	"fmt"
	"time"

	"typerbot/bot/common"
	"typerbot/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

func (f *Feature) handleBalance(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	user := common.InteractionUser(i)

	summary, err := f.accountService.GetAccount(ctx, user.ID)
	if err != nil {
		log.WithError(err).WithField("account_id", user.ID).Error("Error getting account")
		common.RespondWithError(s, i, "Wystąpił błąd podczas sprawdzania balansu.")
		return
	}

	common.RespondWithEmbed(s, i, BalanceEmbed(summary, user.Username), true)
}

// BalanceEmbed shows balance, lifetime points and rank progress
func BalanceEmbed(summary *service.AccountSummary, username string) *discordgo.MessageEmbed {
	account := summary.Account
	embed := &discordgo.MessageEmbed{
		Color:       summary.Tier.Color,
		Title:       "💰 Twój Balans",
		Description: fmt.Sprintf("Witaj, %s!", username),
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "💎 Obecny balans",
				Value:  fmt.Sprintf("**%s** punktów", common.FormatPoints(account.Balance)),
				Inline: true,
			},
			{
				Name:   "📊 Suma punktów",
				Value:  fmt.Sprintf("**%s** punktów", common.FormatPoints(account.TotalPoints)),
				Inline: true,
			},
			{
				Name:   "🏆 Twoja ranga",
				Value:  fmt.Sprintf("%s **%s**", summary.Tier.Emoji, summary.Tier.Name),
				Inline: true,
			},
		},
		Footer:    &discordgo.MessageEmbedFooter{Text: "System punktów"},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	if summary.NextTier != nil {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "⬆️ Następna ranga",
			Value: fmt.Sprintf("%s **%s**\nPotrzebujesz jeszcze **%s** punktów",
				summary.NextTier.Emoji, summary.NextTier.Name, common.FormatPoints(summary.PointsToNext)),
			Inline: true,
		})
	} else {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   "👑 Status",
			Value:  "**Maksymalna ranga!**\nJesteś na szczycie!",
			Inline: true,
		})
	}

	if account.ActiveVoiceSession != nil {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "🎙️ Kanał głosowy",
			Value: fmt.Sprintf("Na kanale od %s", common.FormatDiscordTimestamp(account.ActiveVoiceSession.JoinTime, "R")),
		})
	}

	return embed
}
