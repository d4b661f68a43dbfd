package service

import (
	"context"
	"fmt"
	"time"

	"typerbot/config"
	"typerbot/events"
	"typerbot/models"
	"typerbot/ranks"

	log "github.com/sirupsen/logrus"
)

// Sources reported on PointsAwardedEvent
const (
	PointsSourceMessage = "message"
	PointsSourceVoice   = "voice"
	PointsSourceManual  = "manual"
)

type pointsService struct {
	uowFactory           UnitOfWorkFactory
	table                *ranks.Table
	pointsPerMessage     int64
	messageCooldown      time.Duration
	voiceIntervalMinutes int64
	now                  func() time.Time
}

// NewPointsService creates a new points accrual service
func NewPointsService(uowFactory UnitOfWorkFactory, table *ranks.Table, cfg *config.Config) PointsService {
	return &pointsService{
		uowFactory:           uowFactory,
		table:                table,
		pointsPerMessage:     cfg.PointsPerMessage,
		messageCooldown:      cfg.MessageCooldown(),
		voiceIntervalMinutes: cfg.VoiceAwardIntervalMinutes,
		now:                  time.Now,
	}
}

// VoicePoints converts time spent in voice into points: whole minutes divided
// by the award interval, rounded down
func VoicePoints(elapsed time.Duration, intervalMinutes int64) int64 {
	if intervalMinutes <= 0 || elapsed <= 0 {
		return 0
	}
	minutes := int64(elapsed / time.Minute)
	return minutes / intervalMinutes
}

// AwardMessagePoints credits pointsPerMessage unless the previous award is
// inside the cooldown window. A cooldown hit returns an award of 0.
func (s *pointsService) AwardMessagePoints(ctx context.Context, accountID string) (*models.PointsAward, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, persistenceError("failed to begin transaction", err)
	}
	defer uow.Rollback()

	account, err := uow.AccountRepository().GetOrCreate(ctx, accountID)
	if err != nil {
		return nil, persistenceError("failed to load account", err)
	}

	if s.pointsPerMessage <= 0 {
		if err := uow.Commit(); err != nil {
			return nil, persistenceError("failed to commit account", err)
		}
		return unchangedAward(account), nil
	}

	now := s.now().UTC()
	updated, err := uow.AccountRepository().AddMessagePoints(ctx, accountID, s.pointsPerMessage, now, now.Add(-s.messageCooldown))
	if err != nil {
		return nil, persistenceError("failed to award message points", err)
	}
	if updated == nil {
		if err := uow.Commit(); err != nil {
			return nil, persistenceError("failed to commit account", err)
		}
		log.WithField("account_id", accountID).Debug("Message award skipped, cooldown active")
		return unchangedAward(account), nil
	}

	award := s.recordAward(uow, updated, s.pointsPerMessage, PointsSourceMessage)
	if err := uow.Commit(); err != nil {
		return nil, persistenceError("failed to commit message award", err)
	}

	s.syncRank(ctx, updated)
	return award, nil
}

// VoiceJoin opens a session for the channel, overwriting a stale one
func (s *pointsService) VoiceJoin(ctx context.Context, accountID, channelID string) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return persistenceError("failed to begin transaction", err)
	}
	defer uow.Rollback()

	if err := s.openSession(ctx, uow, accountID, channelID); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return persistenceError("failed to commit voice join", err)
	}
	return nil
}

// VoiceLeave closes the session and awards the elapsed time
func (s *pointsService) VoiceLeave(ctx context.Context, accountID string) (*models.PointsAward, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, persistenceError("failed to begin transaction", err)
	}
	defer uow.Rollback()

	award, updated, err := s.closeSession(ctx, uow, accountID)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, persistenceError("failed to commit voice leave", err)
	}

	if updated != nil {
		s.syncRank(ctx, updated)
	}
	return award, nil
}

// VoiceSwitch settles the current session and opens one in the new channel atomically
func (s *pointsService) VoiceSwitch(ctx context.Context, accountID, channelID string) (*models.PointsAward, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, persistenceError("failed to begin transaction", err)
	}
	defer uow.Rollback()

	award, updated, err := s.closeSession(ctx, uow, accountID)
	if err != nil {
		return nil, err
	}
	if err := s.openSession(ctx, uow, accountID, channelID); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, persistenceError("failed to commit voice switch", err)
	}

	if updated != nil {
		s.syncRank(ctx, updated)
	}
	return award, nil
}

// AwardPoints credits delta points through the same promotion-aware path as activity awards
func (s *pointsService) AwardPoints(ctx context.Context, accountID string, delta int64, source string) (*models.PointsAward, error) {
	if delta < 0 {
		return nil, fmt.Errorf("%w: points award must not be negative", ErrValidation)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, persistenceError("failed to begin transaction", err)
	}
	defer uow.Rollback()

	account, err := uow.AccountRepository().GetOrCreate(ctx, accountID)
	if err != nil {
		return nil, persistenceError("failed to load account", err)
	}

	if delta == 0 {
		if err := uow.Commit(); err != nil {
			return nil, persistenceError("failed to commit account", err)
		}
		return unchangedAward(account), nil
	}

	updated, err := uow.AccountRepository().AddPoints(ctx, accountID, delta)
	if err != nil {
		return nil, persistenceError("failed to add points", err)
	}

	award := s.recordAward(uow, updated, delta, source)
	if err := uow.Commit(); err != nil {
		return nil, persistenceError("failed to commit points award", err)
	}

	s.syncRank(ctx, updated)
	return award, nil
}

func (s *pointsService) openSession(ctx context.Context, uow UnitOfWork, accountID, channelID string) error {
	if _, err := uow.AccountRepository().GetOrCreate(ctx, accountID); err != nil {
		return persistenceError("failed to load account", err)
	}

	session := &models.VoiceSession{
		AccountID: accountID,
		ChannelID: channelID,
		JoinTime:  s.now().UTC(),
	}
	if err := uow.VoiceSessionRepository().Upsert(ctx, session); err != nil {
		return persistenceError("failed to open voice session", err)
	}
	return nil
}

// closeSession claims the open session and awards it. Returns the updated
// account only when points were added.
func (s *pointsService) closeSession(ctx context.Context, uow UnitOfWork, accountID string) (*models.PointsAward, *models.Account, error) {
	session, err := uow.VoiceSessionRepository().Take(ctx, accountID)
	if err != nil {
		return nil, nil, persistenceError("failed to close voice session", err)
	}
	if session == nil {
		return &models.PointsAward{AccountID: accountID}, nil, nil
	}

	elapsed := s.now().Sub(session.JoinTime)
	points := VoicePoints(elapsed, s.voiceIntervalMinutes)

	logger := log.WithFields(log.Fields{
		"account_id": accountID,
		"channel_id": session.ChannelID,
		"elapsed":    elapsed.Truncate(time.Second).String(),
		"points":     points,
	})

	if points == 0 {
		logger.Debug("Voice session too short for points")
		return &models.PointsAward{AccountID: accountID}, nil, nil
	}

	updated, err := uow.AccountRepository().AddPoints(ctx, accountID, points)
	if err != nil {
		return nil, nil, persistenceError("failed to add voice points", err)
	}

	logger.Info("Voice points awarded")
	return s.recordAward(uow, updated, points, PointsSourceVoice), updated, nil
}

// recordAward builds the award result and queues its events for delivery after commit
func (s *pointsService) recordAward(uow UnitOfWork, updated *models.Account, delta int64, source string) *models.PointsAward {
	oldTotal := updated.TotalPoints - delta
	award := &models.PointsAward{
		AccountID: updated.ID,
		Awarded:   delta,
		OldTotal:  oldTotal,
		NewTotal:  updated.TotalPoints,
		Balance:   updated.Balance,
		Rank:      s.table.CalculateRank(updated.TotalPoints).Name,
	}

	uow.EventBus().Publish(events.PointsAwardedEvent{
		AccountID: updated.ID,
		Source:    source,
		Amount:    delta,
		NewTotal:  updated.TotalPoints,
	})

	if tier, promoted := s.table.CheckPromotion(oldTotal, updated.TotalPoints); promoted {
		award.Promoted = true
		uow.EventBus().Publish(events.PromotionEvent{
			AccountID:   updated.ID,
			NewTier:     tier,
			TotalPoints: updated.TotalPoints,
		})
	}

	return award
}

// syncRank persists the tier for the account's committed total. It runs after
// the points commit so a failure here is logged and never undoes the award.
// The write is guarded by the tier's point bracket, so a slower writer
// holding an older total cannot overwrite a newer rank.
func (s *pointsService) syncRank(ctx context.Context, updated *models.Account) {
	tier := s.table.CalculateRank(updated.TotalPoints)
	if tier.Name == updated.Rank {
		return
	}
	// totals only grow, so a stored tier above this one came from a newer award
	if stored, ok := s.table.ByName(updated.Rank); ok && stored.Ordinal > tier.Ordinal {
		return
	}

	lower, upper, hasUpper := s.table.Bounds(tier)
	var maxPoints *int64
	if hasUpper {
		maxPoints = &upper
	}

	logger := log.WithFields(log.Fields{
		"account_id": updated.ID,
		"rank":       tier.Name,
	})

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		logger.WithError(err).Error("Failed to begin rank update")
		return
	}
	defer uow.Rollback()

	changed, err := uow.AccountRepository().UpdateRank(ctx, updated.ID, tier.Name, lower, maxPoints)
	if err != nil {
		logger.WithError(err).Error("Failed to persist rank")
		return
	}
	if err := uow.Commit(); err != nil {
		logger.WithError(err).Error("Failed to commit rank update")
		return
	}

	if changed {
		logger.Info("Rank updated")
	}
}

func unchangedAward(account *models.Account) *models.PointsAward {
	return &models.PointsAward{
		AccountID: account.ID,
		OldTotal:  account.TotalPoints,
		NewTotal:  account.TotalPoints,
		Balance:   account.Balance,
		Rank:      account.Rank,
	}
}
