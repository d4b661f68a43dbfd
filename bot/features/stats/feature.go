package stats

import (
	"typerbot/ranks"
	"typerbot/service"

	"github.com/bwmarrin/discordgo"
)

type Feature struct {
	accountService service.AccountService
	ranks          *ranks.Table
}

func New(accountService service.AccountService, table *ranks.Table) *Feature {
	return &Feature{
		accountService: accountService,
		ranks:          table,
	}
}

func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.ApplicationCommandData().Name {
	case "ranking":
		f.handleLeaderboard(s, i)
	case "statystyki":
		f.handleStats(s, i)
	}
}
