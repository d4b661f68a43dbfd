package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"typerbot/models"
	"typerbot/ranks"
	"typerbot/service"
	"typerbot/workers"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockAccountService struct {
	mock.Mock
}

func (m *mockAccountService) GetAccount(ctx context.Context, accountID string) (*service.AccountSummary, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AccountSummary), args.Error(1)
}

func (m *mockAccountService) GetLeaderboard(ctx context.Context, limit int) ([]*models.Account, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Account), args.Error(1)
}

func (m *mockAccountService) GetStats(ctx context.Context, accountID string) (*models.BetStats, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BetStats), args.Error(1)
}

type mockWageringService struct {
	mock.Mock
}

func (m *mockWageringService) PlaceBet(ctx context.Context, req service.PlaceBetRequest) (*service.PlaceBetResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PlaceBetResult), args.Error(1)
}

func (m *mockWageringService) GetActiveBets(ctx context.Context, accountID string) ([]*models.Bet, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Bet), args.Error(1)
}

func (m *mockWageringService) GetBetHistory(ctx context.Context, accountID string, limit int) ([]*models.Bet, error) {
	args := m.Called(ctx, accountID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Bet), args.Error(1)
}

type mockPointsAwarder struct {
	mock.Mock
}

func (m *mockPointsAwarder) AwardPoints(ctx context.Context, accountID string, delta int64, source string) (*models.PointsAward, error) {
	args := m.Called(ctx, accountID, delta, source)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PointsAward), args.Error(1)
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(ctx context.Context) error { return p.err }

type stubSweeper struct {
	result *models.SweepResult
	err    error
}

func (s stubSweeper) Sweep(ctx context.Context) (*models.SweepResult, error) {
	return s.result, s.err
}

type fixture struct {
	accounts *mockAccountService
	wagering *mockWageringService
	points   *mockPointsAwarder
}

func newTestServer(pinger Pinger, sweeper Sweeper) (*Server, fixture) {
	f := fixture{accounts: new(mockAccountService), wagering: new(mockWageringService), points: new(mockPointsAwarder)}
	return NewServer(pinger, f.accounts, f.wagering, f.points, sweeper), f
}

func do(t *testing.T, s *Server, method, target string) (int, []byte) {
	t.Helper()

	resp, err := s.App().Test(httptest.NewRequest(method, target, nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, body
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(stubPinger{}, stubSweeper{})
	status, _ := do(t, s, http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, status)

	s, _ = newTestServer(stubPinger{err: errors.New("connection refused")}, stubSweeper{})
	status, _ = do(t, s, http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, status)
}

func TestGetAccount(t *testing.T) {
	s, f := newTestServer(stubPinger{}, stubSweeper{})
	silver, _ := ranks.Default.ByName("Srebro")
	gold, _ := ranks.Default.ByName("Złoto")

	f.accounts.On("GetAccount", mock.Anything, "42").Return(&service.AccountSummary{
		Account:      &models.Account{ID: "42", Balance: 80, TotalPoints: 120, Rank: "Srebro"},
		Tier:         silver,
		NextTier:     &gold,
		PointsToNext: 380,
	}, nil)

	status, body := do(t, s, http.MethodGet, "/accounts/42")
	require.Equal(t, http.StatusOK, status)

	var resp accountResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	assert.Equal(t, int64(80), resp.Balance)
	assert.Equal(t, "Srebro", resp.Rank)
	require.NotNil(t, resp.NextRank)
	assert.Equal(t, "Złoto", *resp.NextRank)
	assert.Equal(t, int64(380), resp.PointsToNext)
	assert.False(t, resp.InVoice)
}

func TestGetAccount_PersistenceErrorIs500(t *testing.T) {
	s, f := newTestServer(stubPinger{}, stubSweeper{})
	f.accounts.On("GetAccount", mock.Anything, "42").Return(nil, fmt.Errorf("%w: boom", service.ErrPersistence))

	status, body := do(t, s, http.MethodGet, "/accounts/42")

	assert.Equal(t, http.StatusInternalServerError, status)
	assert.NotContains(t, string(body), "boom")
}

func TestGetBets(t *testing.T) {
	s, f := newTestServer(stubPinger{}, stubSweeper{})
	bet := &models.Bet{
		ID:              7,
		AccountID:       "42",
		MatchID:         "1001",
		Selection:       models.SelectionHome,
		Stake:           33,
		Odds:            decimal.RequireFromString("2.15"),
		PotentialPayout: decimal.RequireFromString("70.95"),
		State:           models.BetStatePending,
	}

	f.wagering.On("GetBetHistory", mock.Anything, "42", 100).Return([]*models.Bet{bet}, nil)
	f.wagering.On("GetActiveBets", mock.Anything, "42").Return([]*models.Bet{}, nil)

	status, body := do(t, s, http.MethodGet, "/accounts/42/bets?limit=500")
	require.Equal(t, http.StatusOK, status)

	var resp []betResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, "2.15", resp[0].Odds)
	assert.Equal(t, int64(70), resp[0].PotentialPayout)

	status, body = do(t, s, http.MethodGet, "/accounts/42/bets?active=true")
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, "[]", string(body))

	f.wagering.AssertExpectations(t)
}

func TestGetLeaderboard(t *testing.T) {
	s, f := newTestServer(stubPinger{}, stubSweeper{})
	f.accounts.On("GetLeaderboard", mock.Anything, 5).Return([]*models.Account{
		{ID: "1", TotalPoints: 900, Rank: "Złoto"},
		{ID: "2", TotalPoints: 40, Rank: "Brąz"},
	}, nil)

	status, body := do(t, s, http.MethodGet, "/leaderboard?limit=5")
	require.Equal(t, http.StatusOK, status)

	var resp []leaderboardEntry
	require.NoError(t, json.Unmarshal(body, &resp))
	require.Len(t, resp, 2)
	assert.Equal(t, 1, resp[0].Position)
	assert.Equal(t, "2", resp[1].ID)
}

func TestTriggerSweep(t *testing.T) {
	s, _ := newTestServer(stubPinger{}, stubSweeper{result: &models.SweepResult{SweepID: "abc", Checked: 3, Settled: 2, Wins: 1, Losses: 1}})

	status, body := do(t, s, http.MethodPost, "/settlement/sweep")
	require.Equal(t, http.StatusOK, status)

	var resp models.SweepResult
	require.NoError(t, json.Unmarshal(body, &resp))
	assert.Equal(t, "abc", resp.SweepID)
	assert.Equal(t, 2, resp.Settled)
}

func TestTriggerSweep_InProgressIsConflict(t *testing.T) {
	s, _ := newTestServer(stubPinger{}, stubSweeper{err: workers.ErrSweepInProgress})

	status, _ := do(t, s, http.MethodPost, "/settlement/sweep")

	assert.Equal(t, http.StatusConflict, status)
}

func TestNotFoundMapsTo404(t *testing.T) {
	s, f := newTestServer(stubPinger{}, stubSweeper{})
	f.accounts.On("GetAccount", mock.Anything, "x").Return(nil, fmt.Errorf("%w: account x", service.ErrNotFound))

	status, _ := do(t, s, http.MethodGet, "/accounts/x")

	assert.Equal(t, http.StatusNotFound, status)
}

func TestAwardPoints(t *testing.T) {
	s, f := newTestServer(stubPinger{}, stubSweeper{})
	f.points.On("AwardPoints", mock.Anything, "42", int64(150), service.PointsSourceManual).
		Return(&models.PointsAward{AccountID: "42", Awarded: 150, OldTotal: 400, NewTotal: 550, Balance: 300, Rank: "Złoto", Promoted: true}, nil)

	req := httptest.NewRequest(http.MethodPost, "/accounts/42/points", strings.NewReader(`{"points":150}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.App().Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body awardResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, awardResponse{AccountID: "42", Awarded: 150, TotalPoints: 550, Balance: 300, Rank: "Złoto", Promoted: true}, body)
	f.points.AssertExpectations(t)
}

func TestAwardPoints_RejectsNonPositive(t *testing.T) {
	s, f := newTestServer(stubPinger{}, stubSweeper{})

	for _, payload := range []string{`{"points":0}`, `{"points":-3}`, `not json`} {
		req := httptest.NewRequest(http.MethodPost, "/accounts/42/points", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		resp, err := s.App().Test(req)
		require.NoError(t, err)
		resp.Body.Close()

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, payload)
	}
	f.points.AssertNotCalled(t, "AwardPoints", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
