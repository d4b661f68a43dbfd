package stats

import (
	"strings"
	"testing"

	"typerbot/models"
	"typerbot/ranks"
	"typerbot/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeaderboardEmbed(t *testing.T) {
	accounts := []*models.Account{
		{ID: "1", TotalPoints: 12000},
		{ID: "2", TotalPoints: 2500},
		{ID: "3", TotalPoints: 600},
		{ID: "4", TotalPoints: 40},
	}

	embed := LeaderboardEmbed(accounts, ranks.Default)

	assert.Equal(t, "🏆 Ranking Graczy", embed.Title)
	lines := strings.Split(embed.Description, "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "🥇 <@1>")
	assert.Contains(t, lines[0], "**12 000** pkt")
	assert.Contains(t, lines[1], "🥈 <@2>")
	assert.Contains(t, lines[2], "🥉 <@3>")
	assert.Contains(t, lines[3], "**4.** <@4>")
	assert.Contains(t, lines[3], "Brąz")
}

func TestLeaderboardEmbed_Empty(t *testing.T) {
	embed := LeaderboardEmbed(nil, ranks.Default)
	assert.Equal(t, "Brak graczy w rankingu.", embed.Description)
}

func TestStatsEmbed(t *testing.T) {
	silver, _ := ranks.Default.ByName("Srebro")
	summary := &service.AccountSummary{
		Account: &models.Account{ID: "1", Balance: 900, TotalPoints: 1100},
		Tier:    silver,
	}
	stats := &models.BetStats{TotalBets: 6, Pending: 1, Wins: 3, Losses: 1, Voids: 1, TotalStaked: 600, TotalWon: 750}

	embed := StatsEmbed("kuba", summary, stats)

	assert.Equal(t, "📊 Twoje Statystyki", embed.Title)
	values := map[string]string{}
	for _, field := range embed.Fields {
		values[field.Name] = field.Value
	}
	assert.Equal(t, "6 (aktywne: 1)", values["🎲 Zakłady"])
	assert.Equal(t, "75.0%", values["📈 Skuteczność"])
	assert.Equal(t, "750 punktów", values["🎁 Wygrane punkty"])
}
