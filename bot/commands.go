package bot

import (
	"fmt"

	"typerbot/models"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// commandDefinitions builds the slash commands the bot registers
func commandDefinitions(minStake int64) []*discordgo.ApplicationCommand {
	minValue := float64(minStake)

	return []*discordgo.ApplicationCommand{
		{
			Name:        "saldo",
			Description: "Sprawdź swój balans punktów i rangę",
		},
		{
			Name:        "postaw",
			Description: "Postaw zakład na mecz",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "mecz_id",
					Description: "ID meczu (z komendy /mecze)",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "typ",
					Description: "Typ zakładu",
					Required:    true,
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: models.SelectionHome.DisplayName(), Value: string(models.SelectionHome)},
						{Name: models.SelectionDraw.DisplayName(), Value: string(models.SelectionDraw)},
						{Name: models.SelectionAway.DisplayName(), Value: string(models.SelectionAway)},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "stawka",
					Description: fmt.Sprintf("Stawka w punktach (min. %d)", minStake),
					Required:    true,
					MinValue:    &minValue,
				},
			},
		},
		{
			Name:        "zaklady",
			Description: "Pokaż swoje aktywne zakłady",
		},
		{
			Name:        "mecze",
			Description: "Pokaż nadchodzące mecze",
		},
		{
			Name:        "ranking",
			Description: "Pokaż ranking graczy",
		},
		{
			Name:        "statystyki",
			Description: "Pokaż swoje statystyki",
		},
		{
			Name:        "pomoc",
			Description: "Pokaż pomoc",
		},
	}
}

// registerCommands registers all slash commands with Discord
func (b *Bot) registerCommands() error {
	for _, cmd := range commandDefinitions(b.config.MinStake) {
		_, err := b.session.ApplicationCommandCreate(b.session.State.User.ID, b.config.GuildID, cmd)
		if err != nil {
			return fmt.Errorf("cannot create '%s' command: %w", cmd.Name, err)
		}
	}

	log.WithField("guild_id", b.config.GuildID).Info("Slash commands registered")
	return nil
}

func (b *Bot) handleCommands(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	switch i.ApplicationCommandData().Name {
	case "saldo":
		b.balanceFeature.HandleCommand(s, i)
	case "postaw", "zaklady", "mecze":
		b.bettingFeature.HandleCommand(s, i)
	case "ranking", "statystyki":
		b.statsFeature.HandleCommand(s, i)
	case "pomoc":
		b.helpFeature.HandleCommand(s, i)
	}
}
