package activity

import (
	"context"

	"typerbot/models"
	"typerbot/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Feature turns gateway activity into points
type Feature struct {
	pointsService service.PointsService
}

func New(pointsService service.PointsService) *Feature {
	return &Feature{pointsService: pointsService}
}

// HandleMessage credits guild chat messages
func (f *Feature) HandleMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if !countsForPoints(m.Message) {
		return
	}

	award, err := f.pointsService.AwardMessagePoints(context.Background(), m.Author.ID)
	if err != nil {
		log.WithError(err).WithField("account_id", m.Author.ID).Error("Error awarding message points")
		return
	}
	if award != nil && award.Awarded > 0 {
		log.WithFields(log.Fields{
			"account_id": award.AccountID,
			"awarded":    award.Awarded,
			"total":      award.NewTotal,
		}).Debug("Message points awarded")
	}
}

// HandleVoiceState tracks voice sessions
func (f *Feature) HandleVoiceState(s *discordgo.Session, v *discordgo.VoiceStateUpdate) {
	if v.VoiceState == nil || (v.Member != nil && v.Member.User != nil && v.Member.User.Bot) {
		return
	}

	ctx := context.Background()
	accountID := v.UserID
	transition := classifyVoice(v)

	logger := log.WithFields(log.Fields{
		"account_id": accountID,
		"channel_id": v.ChannelID,
	})

	var (
		award *models.PointsAward
		err   error
	)
	switch transition {
	case voiceJoined:
		err = f.pointsService.VoiceJoin(ctx, accountID, v.ChannelID)
	case voiceLeft:
		award, err = f.pointsService.VoiceLeave(ctx, accountID)
	case voiceSwitched:
		award, err = f.pointsService.VoiceSwitch(ctx, accountID, v.ChannelID)
	default:
		return
	}

	if err != nil {
		logger.WithError(err).WithField("transition", transition).Error("Error handling voice state")
		return
	}
	if award != nil && award.Awarded > 0 {
		logger.WithFields(log.Fields{
			"awarded": award.Awarded,
			"total":   award.NewTotal,
		}).Info("Voice points awarded")
	}
}
