package bot

import (
	"fmt"

	"typerbot/bot/features/activity"
	"typerbot/bot/features/balance"
	"typerbot/bot/features/betting"
	"typerbot/bot/features/help"
	"typerbot/bot/features/stats"
	"typerbot/ranks"
	"typerbot/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Config holds bot configuration
type Config struct {
	Token    string
	GuildID  string
	MinStake int64
}

type Bot struct {
	config  Config
	session *discordgo.Session

	balanceFeature  *balance.Feature
	bettingFeature  *betting.Feature
	statsFeature    *stats.Feature
	helpFeature     *help.Feature
	activityFeature *activity.Feature
}

func New(config Config, accountService service.AccountService, wageringService service.WageringService, pointsService service.PointsService, fixtures betting.FixtureProvider, table *ranks.Table) (*Bot, error) {
	dg, err := discordgo.New("Bot " + config.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildVoiceStates

	bot := &Bot{
		config:          config,
		session:         dg,
		balanceFeature:  balance.New(accountService),
		bettingFeature:  betting.New(wageringService, fixtures, config.MinStake),
		statsFeature:    stats.New(accountService, table),
		helpFeature:     help.New(table, config.MinStake),
		activityFeature: activity.New(pointsService),
	}

	// Register slash command and component handlers
	dg.AddHandler(bot.handleCommands)
	dg.AddHandler(bot.bettingFeature.HandleInteraction)

	// Register activity handlers
	dg.AddHandler(bot.activityFeature.HandleMessage)
	dg.AddHandler(bot.activityFeature.HandleVoiceState)

	dg.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		log.WithFields(log.Fields{
			"user":   r.User.Username,
			"guilds": len(r.Guilds),
		}).Info("Bot connected to Discord")
	})

	// Open websocket connection
	if err := dg.Open(); err != nil {
		return nil, fmt.Errorf("error opening connection: %w", err)
	}

	// Register slash commands with Discord
	if err := bot.registerCommands(); err != nil {
		dg.Close()
		return nil, fmt.Errorf("error registering commands: %w", err)
	}

	return bot, nil
}

// Session exposes the gateway session for outbound messages such as promotion DMs
func (b *Bot) Session() *discordgo.Session {
	return b.session
}

func (b *Bot) Close() error {
	return b.session.Close()
}
