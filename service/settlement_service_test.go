package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"typerbot/config"
	"typerbot/events"
	"typerbot/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func pendingBet(id int64, accountID, matchID string, selection models.Selection, stake int64, odds string) *models.Bet {
	price := decimal.RequireFromString(odds)
	return &models.Bet{
		ID:              id,
		AccountID:       accountID,
		MatchID:         matchID,
		Selection:       selection,
		Stake:           stake,
		Odds:            price,
		PotentialPayout: models.PotentialPayout(stake, price),
		State:           models.BetStatePending,
	}
}

func settledCopy(bet *models.Bet, state models.BetState) *models.Bet {
	copied := *bet
	copied.State = state
	now := time.Now()
	copied.SettledAt = &now
	return &copied
}

func newTestSettlementService(m *serviceMocks, oracle MatchOracle) *settlementService {
	return NewSettlementService(m.factory, oracle, config.NewTestConfig()).(*settlementService)
}

func expectSettle(m *serviceMocks, bet *models.Bet, state models.BetState, score string) {
	m.bets.On("GetByID", mock.Anything, bet.ID).Return(bet, nil).Once()
	m.bets.On("Settle", mock.Anything, bet.ID, state, score, mock.AnythingOfType("time.Time")).
		Return(settledCopy(bet, state), nil).Once()
}

func TestSettlementService_SettlePendingBets(t *testing.T) {
	ctx := context.Background()
	m := newServiceMocks()
	m.expectCommit()
	oracle := new(MockMatchOracle)

	homeWin := pendingBet(1, "10", "m1", models.SelectionHome, 50, "2.1")
	awayLoss := pendingBet(2, "20", "m1", models.SelectionAway, 20, "3.2")
	notFinished := pendingBet(3, "10", "m2", models.SelectionDraw, 10, "3.4")
	cancelled := pendingBet(4, "30", "m3", models.SelectionHome, 15, "2.0")

	m.bets.On("GetPending", mock.Anything).Return([]*models.Bet{homeWin, awayLoss, notFinished, cancelled}, nil)

	oracle.On("Lookup", mock.Anything, "m1").Return(&models.MatchOutcome{MatchID: "m1", Finished: true, Winner: models.SelectionHome, Score: "2:1"}, nil).Once()
	oracle.On("Lookup", mock.Anything, "m2").Return(&models.MatchOutcome{MatchID: "m2", Finished: false}, nil).Once()
	oracle.On("Lookup", mock.Anything, "m3").Return(&models.MatchOutcome{MatchID: "m3", Finished: true, Void: true}, nil).Once()

	expectSettle(m, homeWin, models.BetStateSettledWin, "2:1")
	expectSettle(m, awayLoss, models.BetStateSettledLoss, "2:1")
	expectSettle(m, cancelled, models.BetStateSettledVoid, "")

	m.accounts.On("Credit", mock.Anything, "10", int64(105)).Return(int64(105), nil).Once()
	m.accounts.On("Credit", mock.Anything, "30", int64(15)).Return(int64(15), nil).Once()

	m.publisher.On("Publish", mock.MatchedBy(func(e events.Event) bool {
		_, ok := e.(events.BetSettledEvent)
		return ok
	})).Return().Times(3)

	svc := newTestSettlementService(m, oracle)
	result, err := svc.SettlePendingBets(ctx)

	require.NoError(t, err)
	assert.NotEmpty(t, result.SweepID)
	assert.Equal(t, 4, result.Checked)
	assert.Equal(t, 3, result.Settled)
	assert.Equal(t, 1, result.Wins)
	assert.Equal(t, 1, result.Losses)
	assert.Equal(t, 1, result.Voids)
	assert.Equal(t, 0, result.Failed)
	assert.False(t, result.Aborted)

	m.bets.AssertNotCalled(t, "GetByID", mock.Anything, int64(3))
	oracle.AssertExpectations(t)
	m.assertExpectations(t)
}

func TestSettlementService_OracleFailureIsIsolated(t *testing.T) {
	ctx := context.Background()
	m := newServiceMocks()
	m.expectCommit()
	oracle := new(MockMatchOracle)

	first := pendingBet(1, "10", "m1", models.SelectionHome, 10, "2.0")
	second := pendingBet(2, "10", "m2", models.SelectionAway, 10, "2.5")

	m.bets.On("GetPending", mock.Anything).Return([]*models.Bet{first, second}, nil)
	oracle.On("Lookup", mock.Anything, "m1").Return(nil, ErrOracleUnavailable)
	oracle.On("Lookup", mock.Anything, "m2").Return(&models.MatchOutcome{Finished: true, Winner: models.SelectionAway, Score: "0:1"}, nil)

	expectSettle(m, second, models.BetStateSettledWin, "0:1")
	m.accounts.On("Credit", mock.Anything, "10", int64(25)).Return(int64(25), nil)
	m.publisher.On("Publish", mock.Anything).Return()

	svc := newTestSettlementService(m, oracle)
	result, err := svc.SettlePendingBets(ctx)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 1, result.Settled)
	m.bets.AssertNotCalled(t, "Settle", mock.Anything, int64(1), mock.Anything, mock.Anything, mock.Anything)
	m.assertExpectations(t)
}

func TestSettlementService_WriteFailureIsIsolated(t *testing.T) {
	ctx := context.Background()
	m := newServiceMocks()
	m.expectCommit()
	oracle := new(MockMatchOracle)

	first := pendingBet(1, "10", "m1", models.SelectionHome, 10, "2.0")
	second := pendingBet(2, "20", "m1", models.SelectionHome, 10, "2.0")

	m.bets.On("GetPending", mock.Anything).Return([]*models.Bet{first, second}, nil)
	oracle.On("Lookup", mock.Anything, "m1").Return(&models.MatchOutcome{Finished: true, Winner: models.SelectionHome, Score: "1:0"}, nil).Once()

	m.bets.On("GetByID", mock.Anything, int64(1)).Return(nil, errors.New("connection reset"))
	expectSettle(m, second, models.BetStateSettledWin, "1:0")
	m.accounts.On("Credit", mock.Anything, "20", int64(20)).Return(int64(20), nil)
	m.publisher.On("Publish", mock.Anything).Return()

	svc := newTestSettlementService(m, oracle)
	result, err := svc.SettlePendingBets(ctx)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 1, result.Settled)
	m.assertExpectations(t)
}

func TestSettlementService_SettleBet_AlreadySettledCreditsNothing(t *testing.T) {
	ctx := context.Background()
	m := newServiceMocks()
	m.expectRollbackOnly()

	bet := pendingBet(5, "10", "m1", models.SelectionHome, 50, "2.1")
	m.bets.On("GetByID", ctx, int64(5)).Return(bet, nil)
	m.bets.On("Settle", ctx, int64(5), models.BetStateSettledWin, "2:0", mock.AnythingOfType("time.Time")).Return(nil, nil)

	svc := newTestSettlementService(m, new(MockMatchOracle))
	_, applied, err := svc.SettleBet(ctx, 5, &models.MatchOutcome{Finished: true, Winner: models.SelectionHome, Score: "2:0"})

	require.NoError(t, err)
	assert.False(t, applied)
	m.accounts.AssertNotCalled(t, "Credit", mock.Anything, mock.Anything, mock.Anything)
	m.publisher.AssertNotCalled(t, "Publish", mock.Anything)
	m.uow.AssertNotCalled(t, "Commit")
	m.assertExpectations(t)
}

func TestSettlementService_SettleBet_FloorsFractionalPayout(t *testing.T) {
	ctx := context.Background()
	m := newServiceMocks()
	m.expectCommit()

	bet := pendingBet(6, "10", "m1", models.SelectionDraw, 33, "2.15")
	expectSettle(m, bet, models.BetStateSettledWin, "1:1")
	m.accounts.On("Credit", mock.Anything, "10", int64(70)).Return(int64(70), nil)
	m.publisher.On("Publish", mock.MatchedBy(func(e events.Event) bool {
		settled, ok := e.(events.BetSettledEvent)
		return ok && settled.Credited == 70
	})).Return()

	svc := newTestSettlementService(m, new(MockMatchOracle))
	settled, applied, err := svc.SettleBet(ctx, 6, &models.MatchOutcome{Finished: true, Winner: models.SelectionDraw, Score: "1:1"})

	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, models.BetStateSettledWin, settled.State)
	m.assertExpectations(t)
}

func TestSettlementService_SettleBet_RejectsUnfinishedOutcome(t *testing.T) {
	m := newServiceMocks()
	svc := newTestSettlementService(m, new(MockMatchOracle))

	_, _, err := svc.SettleBet(context.Background(), 1, &models.MatchOutcome{Finished: false})

	assert.ErrorIs(t, err, ErrValidation)
	m.factory.AssertNotCalled(t, "Create")
}

func TestSettlementService_SettleBet_UnknownBet(t *testing.T) {
	ctx := context.Background()
	m := newServiceMocks()
	m.expectRollbackOnly()
	m.bets.On("GetByID", ctx, int64(404)).Return(nil, nil)

	svc := newTestSettlementService(m, new(MockMatchOracle))
	_, _, err := svc.SettleBet(ctx, 404, &models.MatchOutcome{Finished: true, Winner: models.SelectionHome})

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSettlementService_CancelledSweepStopsBetweenBets(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := newServiceMocks()
	m.expectRollbackOnly()
	oracle := new(MockMatchOracle)

	m.bets.On("GetPending", mock.Anything).Return([]*models.Bet{pendingBet(1, "10", "m1", models.SelectionHome, 10, "2.0")}, nil)

	svc := newTestSettlementService(m, oracle)
	result, err := svc.SettlePendingBets(ctx)

	require.NoError(t, err)
	assert.True(t, result.Aborted)
	assert.Equal(t, 0, result.Checked)
	oracle.AssertNotCalled(t, "Lookup", mock.Anything, mock.Anything)
}

func TestSettlementService_RateLimitsOracleQueries(t *testing.T) {
	m := newServiceMocks()
	m.expectRollbackOnly()
	oracle := new(MockMatchOracle)

	m.bets.On("GetPending", mock.Anything).Return([]*models.Bet{
		pendingBet(1, "10", "m1", models.SelectionHome, 10, "2.0"),
		pendingBet(2, "10", "m2", models.SelectionHome, 10, "2.0"),
		pendingBet(3, "10", "m3", models.SelectionHome, 10, "2.0"),
	}, nil)
	oracle.On("Lookup", mock.Anything, mock.Anything).Return(&models.MatchOutcome{Finished: false}, nil)

	cfg := config.NewTestConfig()
	cfg.OracleRateLimitDelayMs = 20
	svc := NewSettlementService(m.factory, oracle, cfg)

	start := time.Now()
	result, err := svc.SettlePendingBets(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 3, result.Checked)
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
	oracle.AssertNumberOfCalls(t, "Lookup", 3)
}

func TestSettlementService_LoadFailureIsReported(t *testing.T) {
	m := newServiceMocks()
	m.expectRollbackOnly()
	m.bets.On("GetPending", mock.Anything).Return(nil, errors.New("db down"))

	svc := newTestSettlementService(m, new(MockMatchOracle))
	_, err := svc.SettlePendingBets(context.Background())

	assert.ErrorIs(t, err, ErrPersistence)
}
