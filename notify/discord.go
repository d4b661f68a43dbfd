// Package notify delivers committed ledger events outside the process.
package notify

import (
	"context"
	"fmt"
	"time"

	"typerbot/events"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// DMSender is the part of *discordgo.Session used to send direct messages
type DMSender interface {
	UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// PromotionDM congratulates users on a new rank by direct message. Delivery
// failures (closed DMs, left the guild) are logged and dropped.
type PromotionDM struct {
	sender DMSender
	now    func() time.Time
}

// NewPromotionDM creates a promotion notifier on top of a discord session
func NewPromotionDM(sender DMSender) *PromotionDM {
	return &PromotionDM{
		sender: sender,
		now:    time.Now,
	}
}

// Register subscribes the notifier to promotion events
func (n *PromotionDM) Register(bus *events.Bus) {
	bus.Subscribe(events.EventTypePromotion, n.HandleEvent)
}

// HandleEvent sends the promotion message
func (n *PromotionDM) HandleEvent(ctx context.Context, event events.Event) {
	promotion, ok := event.(events.PromotionEvent)
	if !ok {
		return
	}

	logger := log.WithFields(log.Fields{
		"account_id": promotion.AccountID,
		"rank":       promotion.NewTier.Name,
	})

	channel, err := n.sender.UserChannelCreate(promotion.AccountID)
	if err != nil {
		logger.WithError(err).Warn("Failed to open DM channel for promotion")
		return
	}

	if _, err := n.sender.ChannelMessageSendEmbed(channel.ID, n.promotionEmbed(promotion)); err != nil {
		logger.WithError(err).Warn("Failed to send promotion DM")
		return
	}

	logger.Info("Promotion DM sent")
}

func (n *PromotionDM) promotionEmbed(promotion events.PromotionEvent) *discordgo.MessageEmbed {
	tier := promotion.NewTier
	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("%s Awans na nową rangę!", tier.Emoji),
		Description: fmt.Sprintf("Gratulacje! Właśnie awansowałeś na rangę **%s**!", tier.Name),
		Color:       tier.Color,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "Nowa ranga",
				Value:  fmt.Sprintf("%s %s", tier.Emoji, tier.Name),
				Inline: true,
			},
			{
				Name:   "Twoje punkty",
				Value:  fmt.Sprintf("%d punktów", promotion.TotalPoints),
				Inline: true,
			},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: "Gratulacje awansu!",
		},
		Timestamp: n.now().UTC().Format(time.RFC3339),
	}
}
