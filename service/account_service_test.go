package service

import (
	"context"
	"testing"

	"typerbot/models"
	"typerbot/ranks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountService_GetAccount(t *testing.T) {
	ctx := context.Background()
	m := newServiceMocks()
	m.expectCommit()

	m.accounts.On("GetOrCreate", ctx, "1").Return(&models.Account{ID: "1", Balance: 80, TotalPoints: 120, Rank: "Srebro"}, nil)

	summary, err := NewAccountService(m.factory, ranks.Default).GetAccount(ctx, "1")

	require.NoError(t, err)
	assert.Equal(t, "Srebro", summary.Tier.Name)
	require.NotNil(t, summary.NextTier)
	assert.Equal(t, "Złoto", summary.NextTier.Name)
	assert.Equal(t, int64(380), summary.PointsToNext)
	m.assertExpectations(t)
}

func TestAccountService_GetAccount_TopTier(t *testing.T) {
	ctx := context.Background()
	m := newServiceMocks()
	m.expectCommit()

	m.accounts.On("GetOrCreate", ctx, "1").Return(&models.Account{ID: "1", TotalPoints: 30000, Rank: "Legenda"}, nil)

	summary, err := NewAccountService(m.factory, ranks.Default).GetAccount(ctx, "1")

	require.NoError(t, err)
	assert.Equal(t, "Legenda", summary.Tier.Name)
	assert.Nil(t, summary.NextTier)
	assert.Zero(t, summary.PointsToNext)
}

func TestAccountService_GetLeaderboard_ClampsLimit(t *testing.T) {
	ctx := context.Background()
	m := newServiceMocks()
	m.expectRollbackOnly()

	top := []*models.Account{{ID: "1", TotalPoints: 900}}
	m.accounts.On("GetLeaderboard", ctx, 25).Return(top, nil)

	accounts, err := NewAccountService(m.factory, ranks.Default).GetLeaderboard(ctx, 100)

	require.NoError(t, err)
	assert.Equal(t, top, accounts)
	m.assertExpectations(t)
}

func TestAccountService_GetStats(t *testing.T) {
	ctx := context.Background()
	m := newServiceMocks()
	m.expectRollbackOnly()

	stats := &models.BetStats{TotalBets: 4, Wins: 1}
	m.bets.On("GetStats", ctx, "1").Return(stats, nil)

	got, err := NewAccountService(m.factory, ranks.Default).GetStats(ctx, "1")

	require.NoError(t, err)
	assert.Equal(t, stats, got)
	m.assertExpectations(t)
}
