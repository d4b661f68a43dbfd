package betting

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"typerbot/bot/common"
	"typerbot/models"
	"typerbot/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

func (f *Feature) handlePlaceBet(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	user := common.InteractionUser(i)

	var (
		matchID   string
		selection string
		stake     int64
	)
	for _, opt := range i.ApplicationCommandData().Options {
		switch opt.Name {
		case "mecz_id":
			matchID = strconv.FormatInt(opt.IntValue(), 10)
		case "typ":
			selection = opt.StringValue()
		case "stawka":
			stake = opt.IntValue()
		}
	}

	if err := common.DeferResponse(s, i, true); err != nil {
		log.WithError(err).Error("Error deferring bet response")
		return
	}

	req, fixture, err := f.prepareBet(ctx, user.ID, matchID, selection, stake)
	if err != nil {
		f.replyWithError(s, i, err, "Error preparing bet")
		return
	}

	result, err := f.wageringService.PlaceBet(ctx, req)
	if err != nil {
		f.replyWithError(s, i, err, "Error placing bet")
		return
	}

	common.EditWithEmbed(s, i, BetPlacedEmbed(fixture, result))
}

// prepareBet resolves the fixture status and price for a bet request
func (f *Feature) prepareBet(ctx context.Context, accountID, matchID, rawSelection string, stake int64) (service.PlaceBetRequest, *models.Fixture, error) {
	selection, err := models.ParseSelection(rawSelection)
	if err != nil {
		return service.PlaceBetRequest{}, nil, fmt.Errorf("%w: %v", service.ErrInvalidSelection, err)
	}

	fixture, err := f.fixtures.Fixture(ctx, matchID)
	if err != nil {
		return service.PlaceBetRequest{}, nil, err
	}

	req := service.PlaceBetRequest{
		AccountID:   accountID,
		MatchID:     matchID,
		Selection:   selection,
		Stake:       stake,
		MatchStatus: fixture.Status(),
	}

	// no point pricing a match that can no longer be bet on
	if req.MatchStatus != models.MatchStatusNotStarted {
		return req, fixture, nil
	}

	odds, err := f.fixtures.Odds(ctx, matchID)
	if err != nil {
		return service.PlaceBetRequest{}, nil, err
	}
	req.Odds = odds.For(selection)

	return req, fixture, nil
}

func (f *Feature) handleFixtures(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	if err := common.DeferResponse(s, i, false); err != nil {
		log.WithError(err).Error("Error deferring fixtures response")
		return
	}

	fixtures, err := f.fixtures.UpcomingFixtures(ctx)
	if err != nil {
		f.replyWithError(s, i, err, "Error fetching fixtures")
		return
	}

	embed, components := FixturesMessage(fixtures)
	edit := &discordgo.WebhookEdit{
		Embeds: &[]*discordgo.MessageEmbed{embed},
	}
	if len(components) > 0 {
		edit.Components = &components
	}
	if _, err := s.InteractionResponseEdit(i.Interaction, edit); err != nil {
		log.WithError(err).Error("Error sending fixtures")
	}
}

func (f *Feature) handleMatchSelected(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	values := i.MessageComponentData().Values
	if len(values) == 0 {
		return
	}
	matchID := values[0]

	fixture, err := f.fixtures.Fixture(ctx, matchID)
	if err != nil {
		log.WithError(err).WithField("match_id", matchID).Warn("Error fetching selected fixture")
		common.RespondWithError(s, i, common.UserMessage(err, f.minStake))
		return
	}

	odds, err := f.fixtures.Odds(ctx, matchID)
	if err != nil {
		log.WithError(err).WithField("match_id", matchID).Warn("Error fetching odds")
		common.RespondWithError(s, i, common.UserMessage(err, f.minStake))
		return
	}

	common.RespondWithEmbed(s, i, MatchOddsEmbed(fixture, odds, f.minStake), true)
}

func (f *Feature) handleActiveBets(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	user := common.InteractionUser(i)

	bets, err := f.wageringService.GetActiveBets(ctx, user.ID)
	if err != nil {
		log.WithError(err).WithField("account_id", user.ID).Error("Error fetching active bets")
		common.RespondWithError(s, i, "Wystąpił błąd podczas pobierania zakładów.")
		return
	}

	common.RespondWithEmbed(s, i, ActiveBetsEmbed(bets), true)
}

// replyWithError edits a deferred response with the user-facing message for err
func (f *Feature) replyWithError(s *discordgo.Session, i *discordgo.InteractionCreate, err error, logMessage string) {
	logger := log.WithError(err).WithField("user_id", common.InteractionUser(i).ID)
	if errors.Is(err, service.ErrValidation) || errors.Is(err, service.ErrNotFound) || errors.Is(err, service.ErrInsufficientBalance) {
		logger.Debug(logMessage)
	} else {
		logger.Error(logMessage)
	}

	common.EditWithEmbed(s, i, common.ErrorEmbed(common.UserMessage(err, f.minStake)))
}
