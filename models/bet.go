package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// BetState is the lifecycle state of a bet. Only pending bets can change.
type BetState string

const (
	BetStatePending     BetState = "pending"
	BetStateSettledWin  BetState = "settled_win"
	BetStateSettledLoss BetState = "settled_loss"
	BetStateSettledVoid BetState = "settled_void"
)

// IsTerminal reports whether the state is one of the settled states
func (s BetState) IsTerminal() bool {
	switch s {
	case BetStateSettledWin, BetStateSettledLoss, BetStateSettledVoid:
		return true
	}
	return false
}

// Selection is the 1X2 outcome a bet is placed on
type Selection string

const (
	SelectionHome Selection = "home"
	SelectionDraw Selection = "draw"
	SelectionAway Selection = "away"
)

// ParseSelection accepts the canonical names plus the 1/X/2 shorthand
func ParseSelection(s string) (Selection, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "home", "1":
		return SelectionHome, nil
	case "draw", "x":
		return SelectionDraw, nil
	case "away", "2":
		return SelectionAway, nil
	}
	return "", fmt.Errorf("unknown selection %q", s)
}

// DisplayName is the Polish label shown to users
func (s Selection) DisplayName() string {
	switch s {
	case SelectionHome:
		return "Wygrana gospodarzy"
	case SelectionDraw:
		return "Remis"
	case SelectionAway:
		return "Wygrana gości"
	}
	return string(s)
}

// Bet is a single stake on a match outcome
type Bet struct {
	ID              int64           `db:"id"`
	AccountID       string          `db:"account_id"`
	MatchID         string          `db:"match_id"`
	Selection       Selection       `db:"selection"`
	Stake           int64           `db:"stake"`
	Odds            decimal.Decimal `db:"odds"`
	PotentialPayout decimal.Decimal `db:"potential_payout"`
	State           BetState        `db:"state"`
	FinalScore      *string         `db:"final_score"`
	CreatedAt       time.Time       `db:"created_at"`
	SettledAt       *time.Time      `db:"settled_at"`
}

// PotentialPayout is stake × odds, kept exact
func PotentialPayout(stake int64, odds decimal.Decimal) decimal.Decimal {
	return decimal.NewFromInt(stake).Mul(odds)
}

// Credit is the whole number of points a win pays out
func (b *Bet) Credit() int64 {
	return b.PotentialPayout.Floor().IntPart()
}

// BetStats aggregates an account's betting history
type BetStats struct {
	TotalBets   int
	Pending     int
	Wins        int
	Losses      int
	Voids       int
	TotalStaked int64
	TotalWon    int64
}

// WinRate is the share of decided bets that won, in percent
func (s *BetStats) WinRate() float64 {
	decided := s.Wins + s.Losses
	if decided == 0 {
		return 0
	}
	return float64(s.Wins) / float64(decided) * 100
}
