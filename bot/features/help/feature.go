package help

import (
	"fmt"
	"time"

	"typerbot/bot/common"
	"typerbot/ranks"

	"github.com/bwmarrin/discordgo"
)

type Feature struct {
	ranks    *ranks.Table
	minStake int64
}

func New(table *ranks.Table, minStake int64) *Feature {
	return &Feature{ranks: table, minStake: minStake}
}

func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	common.RespondWithEmbed(s, i, HelpEmbed(f.ranks, f.minStake), true)
}

// HelpEmbed lists the commands and the rank ladder
func HelpEmbed(table *ranks.Table, minStake int64) *discordgo.MessageEmbed {
	var ladder string
	for _, tier := range table.Tiers() {
		ladder += fmt.Sprintf("%s **%s** od %s pkt\n", tier.Emoji, tier.Name, common.FormatPoints(tier.Threshold))
	}

	return &discordgo.MessageEmbed{
		Color:       common.ColorInfo,
		Title:       "🤖 Pomoc - System Zakładów Piłkarskich",
		Description: "Zbieraj punkty za aktywność na serwerze i obstawiaj mecze!",
		Fields: []*discordgo.MessageEmbedField{
			{
				Name: "💰 Punkty",
				Value: "`/saldo` - sprawdź balans i rangę\n" +
					"`/statystyki` - Twoje statystyki\n" +
					"`/ranking` - najlepsi gracze",
			},
			{
				Name: "⚽ Zakłady",
				Value: "`/mecze` - nadchodzące mecze i kursy\n" +
					fmt.Sprintf("`/postaw` - postaw zakład (min. %d pkt)\n", minStake) +
					"`/zaklady` - Twoje aktywne zakłady",
			},
			{
				Name:  "🎁 Jak zdobywać punkty?",
				Value: "💬 Pisz wiadomości na serwerze\n🎙️ Spędzaj czas na kanałach głosowych\n🏆 Wygrywaj zakłady",
			},
			{
				Name:  "🏅 Rangi",
				Value: ladder,
			},
		},
		Footer:    &discordgo.MessageEmbedFooter{Text: "Powodzenia!"},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}
