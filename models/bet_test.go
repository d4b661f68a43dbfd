package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPotentialPayout_Exact(t *testing.T) {
	payout := PotentialPayout(50, decimal.RequireFromString("2.1"))
	assert.True(t, payout.Equal(decimal.NewFromInt(105)), "got %s", payout)

	bet := &Bet{PotentialPayout: PotentialPayout(33, decimal.RequireFromString("2.15"))}
	assert.Equal(t, "70.95", bet.PotentialPayout.String())
	assert.Equal(t, int64(70), bet.Credit())
}

func TestParseSelection(t *testing.T) {
	for input, want := range map[string]Selection{
		"home": SelectionHome,
		"1":    SelectionHome,
		"X":    SelectionDraw,
		"draw": SelectionDraw,
		" 2 ":  SelectionAway,
		"AWAY": SelectionAway,
	} {
		got, err := ParseSelection(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got)
	}

	_, err := ParseSelection("over")
	assert.Error(t, err)
}

func TestBetState_IsTerminal(t *testing.T) {
	assert.False(t, BetStatePending.IsTerminal())
	assert.True(t, BetStateSettledWin.IsTerminal())
	assert.True(t, BetStateSettledLoss.IsTerminal())
	assert.True(t, BetStateSettledVoid.IsTerminal())
}

func TestMatchOutcome_SettlesAs(t *testing.T) {
	homeWin := &MatchOutcome{Finished: true, Winner: SelectionHome, Score: "2:1"}
	assert.Equal(t, BetStateSettledWin, homeWin.SettlesAs(SelectionHome))
	assert.Equal(t, BetStateSettledLoss, homeWin.SettlesAs(SelectionDraw))

	void := &MatchOutcome{Finished: true, Void: true}
	assert.Equal(t, BetStateSettledVoid, void.SettlesAs(SelectionAway))
}

func TestBetStats_WinRate(t *testing.T) {
	assert.Zero(t, (&BetStats{Pending: 3}).WinRate())
	assert.InDelta(t, 25.0, (&BetStats{Wins: 1, Losses: 3, Voids: 5}).WinRate(), 0.001)
}
