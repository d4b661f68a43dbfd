package betting

import (
	"fmt"
	"strings"
	"time"

	"typerbot/bot/common"
	"typerbot/models"
	"typerbot/service"

	"github.com/bwmarrin/discordgo"
)

// discord caps select menus at 25 options
const maxSelectOptions = 25

var selectionLabels = map[models.Selection]string{
	models.SelectionHome: "Wygrana gospodarzy 🏠",
	models.SelectionDraw: "Remis 🤝",
	models.SelectionAway: "Wygrana gości ✈️",
}

func matchName(fixture *models.Fixture) string {
	return fmt.Sprintf("%s vs %s", fixture.HomeTeam, fixture.AwayTeam)
}

// FixturesMessage lists upcoming fixtures with a picker to see their odds
func FixturesMessage(fixtures []models.Fixture) (*discordgo.MessageEmbed, []discordgo.MessageComponent) {
	embed := &discordgo.MessageEmbed{
		Color:     common.ColorInfo,
		Title:     "⚽ Nadchodzące mecze",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Footer:    &discordgo.MessageEmbedFooter{Text: "Obstawiaj komendą /postaw"},
	}

	if len(fixtures) == 0 {
		embed.Description = "Brak nadchodzących meczów."
		return embed, nil
	}
	embed.Description = "Wybierz mecz, aby zobaczyć kursy"

	options := make([]discordgo.SelectMenuOption, 0, len(fixtures))
	for idx := range fixtures {
		fixture := &fixtures[idx]
		if idx < maxSelectOptions {
			embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
				Name:  matchName(fixture),
				Value: fmt.Sprintf("🏆 %s\n📅 %s\n🆔 `%s`", fixture.League, common.FormatDate(fixture.Kickoff), fixture.ID),
			})
			options = append(options, discordgo.SelectMenuOption{
				Label:       truncate(matchName(fixture), 100),
				Value:       fixture.ID,
				Description: truncate(fixture.League, 100),
			})
		}
	}

	components := []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.SelectMenu{
					CustomID:    matchSelectID,
					Placeholder: "Wybierz mecz",
					Options:     options,
				},
			},
		},
	}
	return embed, components
}

// MatchOddsEmbed shows the 1X2 prices of one fixture
func MatchOddsEmbed(fixture *models.Fixture, odds *models.Odds, minStake int64) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Color:       common.ColorInfo,
		Title:       "⚽ Obstawianie meczu",
		Description: fmt.Sprintf("**%s** vs **%s**", fixture.HomeTeam, fixture.AwayTeam),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "🏆 Liga", Value: fixture.League, Inline: true},
			{Name: "📅 Data", Value: common.FormatDate(fixture.Kickoff), Inline: true},
			{Name: "🆔 ID meczu", Value: fmt.Sprintf("`%s`", fixture.ID), Inline: true},
			{Name: "🏠 Wygrana gospodarzy (1)", Value: fmt.Sprintf("Kurs: **%s**", common.FormatOdds(odds.Home)), Inline: true},
			{Name: "🤝 Remis (X)", Value: fmt.Sprintf("Kurs: **%s**", common.FormatOdds(odds.Draw)), Inline: true},
			{Name: "✈️ Wygrana gości (2)", Value: fmt.Sprintf("Kurs: **%s**", common.FormatOdds(odds.Away)), Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("/postaw mecz_id:%s typ:... stawka:... (min. %d)", fixture.ID, minStake),
		},
	}
}

// BetPlacedEmbed confirms a bet
func BetPlacedEmbed(fixture *models.Fixture, result *service.PlaceBetResult) *discordgo.MessageEmbed {
	bet := result.Bet
	return &discordgo.MessageEmbed{
		Color:       common.ColorSuccess,
		Title:       "✅ Zakład postawiony!",
		Description: fmt.Sprintf("**%s** vs **%s**", fixture.HomeTeam, fixture.AwayTeam),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "🎯 Typ zakładu", Value: bet.Selection.DisplayName(), Inline: true},
			{Name: "💰 Stawka", Value: fmt.Sprintf("%s punktów", common.FormatPoints(bet.Stake)), Inline: true},
			{Name: "📊 Kurs", Value: common.FormatOdds(bet.Odds), Inline: true},
			{Name: "🎁 Potencjalna wygrana", Value: fmt.Sprintf("%s punktów", common.FormatPoints(bet.Credit())), Inline: true},
			{Name: "💎 Nowy balans", Value: fmt.Sprintf("%s punktów", common.FormatPoints(result.NewBalance)), Inline: true},
		},
		Footer:    &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("Zakład #%d • Powodzenia!", bet.ID)},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// ActiveBetsEmbed lists pending bets with totals
func ActiveBetsEmbed(bets []*models.Bet) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Color:     common.ColorInfo,
		Title:     "🎲 Twoje aktywne zakłady",
		Footer:    &discordgo.MessageEmbedFooter{Text: "System zakładów"},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	if len(bets) == 0 {
		embed.Description = "Nie masz aktywnych zakładów."
		return embed
	}

	var totalStaked, totalPotential int64
	for _, bet := range bets {
		totalStaked += bet.Stake
		totalPotential += bet.Credit()

		// embeds hold at most 25 fields
		if len(embed.Fields) >= 25 {
			continue
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: fmt.Sprintf("Zakład #%d", bet.ID),
			Value: strings.Join([]string{
				fmt.Sprintf("**Mecz:** %s", bet.MatchID),
				fmt.Sprintf("**Typ:** %s", selectionLabels[bet.Selection]),
				fmt.Sprintf("**Stawka:** %s punktów", common.FormatPoints(bet.Stake)),
				fmt.Sprintf("**Kurs:** %s", common.FormatOdds(bet.Odds)),
				fmt.Sprintf("**Potencjalna wygrana:** %s punktów", common.FormatPoints(bet.Credit())),
				fmt.Sprintf("**Data:** %s", common.FormatDate(bet.CreatedAt)),
			}, "\n"),
		})
	}

	embed.Description = fmt.Sprintf("Masz **%d** %s %s.\n\n💰 Łączna stawka: **%s** punktów\n🎁 Potencjalna wygrana: **%s** punktów",
		len(bets),
		common.Plural(len(bets), "aktywny", "aktywne", "aktywnych"),
		common.Plural(len(bets), "zakład", "zakłady", "zakładów"),
		common.FormatPoints(totalStaked),
		common.FormatPoints(totalPotential),
	)
	return embed
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-3]) + "..."
}
