package help

import (
	"testing"

	"typerbot/ranks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHelpEmbed(t *testing.T) {
	embed := HelpEmbed(ranks.Default, 10)

	assert.Equal(t, "🤖 Pomoc - System Zakładów Piłkarskich", embed.Title)
	require.Len(t, embed.Fields, 4)
	assert.Contains(t, embed.Fields[1].Value, "min. 10 pkt")
	assert.Contains(t, embed.Fields[3].Value, "🥈 **Srebro** od 100 pkt")
	assert.Contains(t, embed.Fields[3].Value, "⚡ **Legenda** od 25 000 pkt")
}
