package betting

import (
	"context"
	"strings"

	"typerbot/models"
	"typerbot/service"

	"github.com/bwmarrin/discordgo"
)

// FixtureProvider is the part of the football data source the commands use
type FixtureProvider interface {
	UpcomingFixtures(ctx context.Context) ([]models.Fixture, error)
	Fixture(ctx context.Context, matchID string) (*models.Fixture, error)
	Odds(ctx context.Context, matchID string) (*models.Odds, error)
}

const matchSelectID = "mecze_select"

type Feature struct {
	wageringService service.WageringService
	fixtures        FixtureProvider
	minStake        int64
}

func New(wageringService service.WageringService, fixtures FixtureProvider, minStake int64) *Feature {
	return &Feature{
		wageringService: wageringService,
		fixtures:        fixtures,
		minStake:        minStake,
	}
}

func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.ApplicationCommandData().Name {
	case "postaw":
		f.handlePlaceBet(s, i)
	case "mecze":
		f.handleFixtures(s, i)
	case "zaklady":
		f.handleActiveBets(s, i)
	}
}

// HandleInteraction handles the fixture picker shown by /mecze
func (f *Feature) HandleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionMessageComponent {
		return
	}
	if strings.HasPrefix(i.MessageComponentData().CustomID, matchSelectID) {
		f.handleMatchSelected(s, i)
	}
}
