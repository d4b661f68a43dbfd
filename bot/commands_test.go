package bot

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandDefinitions(t *testing.T) {
	commands := commandDefinitions(10)

	var names []string
	for _, cmd := range commands {
		names = append(names, cmd.Name)
	}
	assert.ElementsMatch(t, []string{"saldo", "postaw", "zaklady", "mecze", "ranking", "statystyki", "pomoc"}, names)

	var placeBet *discordgo.ApplicationCommand
	for _, cmd := range commands {
		if cmd.Name == "postaw" {
			placeBet = cmd
		}
	}
	require.NotNil(t, placeBet)
	require.Len(t, placeBet.Options, 3)

	selection := placeBet.Options[1]
	require.Len(t, selection.Choices, 3)
	assert.Equal(t, "Wygrana gospodarzy", selection.Choices[0].Name)
	assert.Equal(t, "home", selection.Choices[0].Value)

	stake := placeBet.Options[2]
	require.NotNil(t, stake.MinValue)
	assert.Equal(t, float64(10), *stake.MinValue)
}
