package testutil

import (
	"context"
	"testing"

	"typerbot/database"
	"typerbot/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// CreateTestBet builds a pending bet with the payout already computed
func CreateTestBet(accountID, matchID string, selection models.Selection, stake int64, odds string) *models.Bet {
	price := decimal.RequireFromString(odds)
	return &models.Bet{
		AccountID:       accountID,
		MatchID:         matchID,
		Selection:       selection,
		Stake:           stake,
		Odds:            price,
		PotentialPayout: models.PotentialPayout(stake, price),
		State:           models.BetStatePending,
	}
}

// SeedAccount inserts an account with the given balance and lifetime points
func SeedAccount(t *testing.T, db *database.DB, id string, balance, totalPoints int64, rank string) {
	t.Helper()
	_, err := db.Exec(context.Background(),
		`INSERT INTO accounts (id, balance, total_points, rank) VALUES ($1, $2, $3, $4)`,
		id, balance, totalPoints, rank)
	require.NoError(t, err)
}
