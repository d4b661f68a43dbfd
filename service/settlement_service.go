package service

import (
	"context"
	"fmt"
	"time"

	"typerbot/config"
	"typerbot/events"
	"typerbot/models"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type settlementService struct {
	uowFactory     UnitOfWorkFactory
	oracle         MatchOracle
	rateLimitDelay time.Duration
	now            func() time.Time
}

// NewSettlementService creates a new settlement service
func NewSettlementService(uowFactory UnitOfWorkFactory, oracle MatchOracle, cfg *config.Config) SettlementService {
	return &settlementService{
		uowFactory:     uowFactory,
		oracle:         oracle,
		rateLimitDelay: cfg.OracleRateLimitDelay(),
		now:            time.Now,
	}
}

// SettlePendingBets walks every pending bet once. A failed lookup or write is
// logged and leaves that bet pending; the sweep moves on to the next one.
// Cancelling ctx stops the sweep between bets, never inside a settlement.
func (s *settlementService) SettlePendingBets(ctx context.Context) (*models.SweepResult, error) {
	start := s.now()
	result := &models.SweepResult{SweepID: uuid.NewString()}
	logger := log.WithField("sweep_id", result.SweepID)

	pending, err := s.loadPending(ctx)
	if err != nil {
		return result, err
	}
	if len(pending) == 0 {
		logger.Debug("No pending bets to settle")
		return result, nil
	}

	logger.WithField("pending", len(pending)).Info("Starting settlement sweep")

	// one oracle query per match per sweep
	outcomes := make(map[string]*models.MatchOutcome)
	queried := 0

	for _, bet := range pending {
		if ctx.Err() != nil {
			result.Aborted = true
			break
		}

		betLogger := logger.WithFields(log.Fields{
			"bet_id":   bet.ID,
			"match_id": bet.MatchID,
		})

		outcome, seen := outcomes[bet.MatchID]
		if !seen {
			if queried > 0 && !s.wait(ctx) {
				result.Aborted = true
				break
			}
			queried++

			outcome, err = s.oracle.Lookup(ctx, bet.MatchID)
			if err != nil {
				result.Failed++
				betLogger.WithError(err).Warn("Match oracle lookup failed, bet stays pending")
				continue
			}
			outcomes[bet.MatchID] = outcome
		}

		result.Checked++
		if outcome == nil || !outcome.Finished {
			continue
		}

		// a started settlement runs to completion even if the sweep is cancelled
		settled, applied, err := s.SettleBet(context.WithoutCancel(ctx), bet.ID, outcome)
		if err != nil {
			result.Failed++
			betLogger.WithError(err).Error("Failed to settle bet")
			continue
		}
		if !applied {
			betLogger.Debug("Bet already settled elsewhere")
			continue
		}

		result.Settled++
		switch settled.State {
		case models.BetStateSettledWin:
			result.Wins++
		case models.BetStateSettledLoss:
			result.Losses++
		case models.BetStateSettledVoid:
			result.Voids++
		}
	}

	result.Duration = s.now().Sub(start)
	logger.WithFields(log.Fields{
		"checked":  result.Checked,
		"settled":  result.Settled,
		"wins":     result.Wins,
		"losses":   result.Losses,
		"voids":    result.Voids,
		"failed":   result.Failed,
		"aborted":  result.Aborted,
		"duration": result.Duration.String(),
	}).Info("Settlement sweep finished")

	return result, nil
}

func (s *settlementService) loadPending(ctx context.Context) ([]*models.Bet, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, persistenceError("failed to begin transaction", err)
	}
	defer uow.Rollback()

	pending, err := uow.BetRepository().GetPending(ctx)
	if err != nil {
		return nil, persistenceError("failed to load pending bets", err)
	}
	return pending, nil
}

// wait sleeps for the rate limit delay, returning false if ctx ends first
func (s *settlementService) wait(ctx context.Context) bool {
	if s.rateLimitDelay <= 0 {
		return ctx.Err() == nil
	}

	timer := time.NewTimer(s.rateLimitDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// SettleBet moves one bet to its terminal state and credits the account in the
// same transaction. The pending check happens inside the UPDATE, so a bet is
// credited at most once no matter how many sweeps race on it.
func (s *settlementService) SettleBet(ctx context.Context, betID int64, outcome *models.MatchOutcome) (*models.Bet, bool, error) {
	if outcome == nil || !outcome.Finished {
		return nil, false, fmt.Errorf("%w: match outcome is not final", ErrValidation)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, false, persistenceError("failed to begin transaction", err)
	}
	defer uow.Rollback()

	bet, err := uow.BetRepository().GetByID(ctx, betID)
	if err != nil {
		return nil, false, persistenceError("failed to get bet", err)
	}
	if bet == nil {
		return nil, false, fmt.Errorf("%w: bet %d", ErrNotFound, betID)
	}

	state := outcome.SettlesAs(bet.Selection)
	settled, err := uow.BetRepository().Settle(ctx, betID, state, outcome.Score, s.now().UTC())
	if err != nil {
		return nil, false, persistenceError("failed to settle bet", err)
	}
	if settled == nil {
		return bet, false, nil
	}

	var credit int64
	switch state {
	case models.BetStateSettledWin:
		credit = settled.Credit()
	case models.BetStateSettledVoid:
		credit = settled.Stake
	}

	if credit > 0 {
		if _, err := uow.AccountRepository().Credit(ctx, settled.AccountID, credit); err != nil {
			return nil, false, persistenceError("failed to credit settlement", err)
		}
	}

	uow.EventBus().Publish(events.BetSettledEvent{
		BetID:     settled.ID,
		AccountID: settled.AccountID,
		MatchID:   settled.MatchID,
		State:     settled.State,
		Credited:  credit,
		Score:     outcome.Score,
	})

	if err := uow.Commit(); err != nil {
		return nil, false, persistenceError("failed to commit settlement", err)
	}

	log.WithFields(log.Fields{
		"bet_id":     settled.ID,
		"account_id": settled.AccountID,
		"state":      settled.State,
		"credited":   credit,
		"score":      outcome.Score,
	}).Info("Bet settled")

	return settled, true, nil
}
