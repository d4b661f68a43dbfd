package balance

import (
	"typerbot/service"

	"github.com/bwmarrin/discordgo"
)

type Feature struct {
	accountService service.AccountService
}

func New(accountService service.AccountService) *Feature {
	return &Feature{
		accountService: accountService,
	}
}

func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	f.handleBalance(s, i)
}
