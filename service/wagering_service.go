package service

import (
	"context"
	"errors"
	"fmt"

	"typerbot/config"
	"typerbot/events"
	"typerbot/models"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// PlaceBetRequest carries everything needed to place a bet. MatchStatus is
// determined by the caller from the fixture provider before the call.
type PlaceBetRequest struct {
	AccountID   string             `validate:"required"`
	MatchID     string             `validate:"required"`
	Selection   models.Selection   `validate:"required,oneof=home draw away"`
	Stake       int64              `validate:"-"`
	Odds        decimal.Decimal    `validate:"-"`
	MatchStatus models.MatchStatus `validate:"-"`
}

// PlaceBetResult is the stored bet and the balance left after the debit
type PlaceBetResult struct {
	Bet        *models.Bet
	NewBalance int64
}

type wageringService struct {
	uowFactory UnitOfWorkFactory
	minStake   int64
	validate   *validator.Validate
}

// NewWageringService creates a new wagering service
func NewWageringService(uowFactory UnitOfWorkFactory, cfg *config.Config) WageringService {
	return &wageringService{
		uowFactory: uowFactory,
		minStake:   cfg.MinStake,
		validate:   validator.New(),
	}
}

var oddsFloor = decimal.NewFromInt(1)

// validateRequest rejects a request before anything is touched
func (s *wageringService) validateRequest(req PlaceBetRequest) error {
	if err := s.validate.Struct(req); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			for _, fieldErr := range validationErrors {
				if fieldErr.Field() == "Selection" {
					return fmt.Errorf("%w: got %q", ErrInvalidSelection, req.Selection)
				}
			}
			return fmt.Errorf("%w: %s", ErrValidation, validationErrors.Error())
		}
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	if req.Stake < s.minStake {
		return fmt.Errorf("%w: minimum is %d, got %d", ErrStakeTooLow, s.minStake, req.Stake)
	}
	if !req.Odds.GreaterThan(oddsFloor) {
		return fmt.Errorf("%w: got %s", ErrInvalidOdds, req.Odds)
	}

	switch req.MatchStatus {
	case models.MatchStatusNotStarted:
		return nil
	case models.MatchStatusStarted:
		return fmt.Errorf("%w: %s", ErrMatchStarted, req.MatchID)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownMatch, req.MatchID)
	}
}

// PlaceBet debits the stake and stores the bet in one transaction
func (s *wageringService) PlaceBet(ctx context.Context, req PlaceBetRequest) (*PlaceBetResult, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, persistenceError("failed to begin transaction", err)
	}
	defer uow.Rollback()

	if _, err := uow.AccountRepository().GetOrCreate(ctx, req.AccountID); err != nil {
		return nil, persistenceError("failed to load account", err)
	}

	newBalance, err := uow.AccountRepository().Debit(ctx, req.AccountID, req.Stake)
	if err != nil {
		if errors.Is(err, ErrInsufficientBalance) {
			return nil, err
		}
		return nil, persistenceError("failed to debit stake", err)
	}

	bet := &models.Bet{
		AccountID:       req.AccountID,
		MatchID:         req.MatchID,
		Selection:       req.Selection,
		Stake:           req.Stake,
		Odds:            req.Odds,
		PotentialPayout: models.PotentialPayout(req.Stake, req.Odds),
		State:           models.BetStatePending,
	}
	if err := uow.BetRepository().Create(ctx, bet); err != nil {
		return nil, persistenceError("failed to create bet", err)
	}

	uow.EventBus().Publish(events.BetPlacedEvent{
		BetID:      bet.ID,
		AccountID:  bet.AccountID,
		MatchID:    bet.MatchID,
		Selection:  bet.Selection,
		Stake:      bet.Stake,
		NewBalance: newBalance,
	})

	if err := uow.Commit(); err != nil {
		return nil, persistenceError("failed to commit bet", err)
	}

	log.WithFields(log.Fields{
		"bet_id":     bet.ID,
		"account_id": bet.AccountID,
		"match_id":   bet.MatchID,
		"selection":  bet.Selection,
		"stake":      bet.Stake,
		"odds":       bet.Odds.String(),
	}).Info("Bet placed")

	return &PlaceBetResult{Bet: bet, NewBalance: newBalance}, nil
}

// GetActiveBets returns the account's pending bets
func (s *wageringService) GetActiveBets(ctx context.Context, accountID string) ([]*models.Bet, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, persistenceError("failed to begin transaction", err)
	}
	defer uow.Rollback()

	bets, err := uow.BetRepository().GetActiveByAccount(ctx, accountID)
	if err != nil {
		return nil, persistenceError("failed to get active bets", err)
	}
	return bets, nil
}

// GetBetHistory returns the account's most recent bets
func (s *wageringService) GetBetHistory(ctx context.Context, accountID string, limit int) ([]*models.Bet, error) {
	if limit <= 0 {
		limit = 10
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, persistenceError("failed to begin transaction", err)
	}
	defer uow.Rollback()

	bets, err := uow.BetRepository().GetByAccount(ctx, accountID, limit)
	if err != nil {
		return nil, persistenceError("failed to get bet history", err)
	}
	return bets, nil
}
