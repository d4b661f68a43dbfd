package service

import (
	"context"

	"typerbot/models"
	"typerbot/ranks"
)

// AccountSummary is an account with its tier position resolved
type AccountSummary struct {
	Account      *models.Account
	Tier         ranks.Tier
	NextTier     *ranks.Tier
	PointsToNext int64
}

const (
	defaultLeaderboardSize = 10
	maxLeaderboardSize     = 25
)

type accountService struct {
	uowFactory UnitOfWorkFactory
	table      *ranks.Table
}

// NewAccountService creates a new account service
func NewAccountService(uowFactory UnitOfWorkFactory, table *ranks.Table) AccountService {
	return &accountService{
		uowFactory: uowFactory,
		table:      table,
	}
}

// GetAccount returns the account summary, creating the account on first contact
func (s *accountService) GetAccount(ctx context.Context, accountID string) (*AccountSummary, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, persistenceError("failed to begin transaction", err)
	}
	defer uow.Rollback()

	account, err := uow.AccountRepository().GetOrCreate(ctx, accountID)
	if err != nil {
		return nil, persistenceError("failed to load account", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, persistenceError("failed to commit account", err)
	}

	summary := &AccountSummary{
		Account: account,
		Tier:    s.table.CalculateRank(account.TotalPoints),
	}
	if next, ok := s.table.GetNextRank(account.TotalPoints); ok {
		summary.NextTier = &next
		summary.PointsToNext = s.table.PointsToNextRank(account.TotalPoints)
	}

	return summary, nil
}

// GetLeaderboard returns the top accounts by lifetime points
func (s *accountService) GetLeaderboard(ctx context.Context, limit int) ([]*models.Account, error) {
	if limit <= 0 {
		limit = defaultLeaderboardSize
	}
	if limit > maxLeaderboardSize {
		limit = maxLeaderboardSize
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, persistenceError("failed to begin transaction", err)
	}
	defer uow.Rollback()

	accounts, err := uow.AccountRepository().GetLeaderboard(ctx, limit)
	if err != nil {
		return nil, persistenceError("failed to get leaderboard", err)
	}
	return accounts, nil
}

// GetStats returns betting statistics for an account
func (s *accountService) GetStats(ctx context.Context, accountID string) (*models.BetStats, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, persistenceError("failed to begin transaction", err)
	}
	defer uow.Rollback()

	stats, err := uow.BetRepository().GetStats(ctx, accountID)
	if err != nil {
		return nil, persistenceError("failed to get bet stats", err)
	}
	return stats, nil
}
