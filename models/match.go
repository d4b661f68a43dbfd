package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MatchOutcome is what the oracle knows about a match result.
// Void matches (cancelled, abandoned) refund every bet.
type MatchOutcome struct {
	MatchID  string    `json:"match_id"`
	Finished bool      `json:"finished"`
	Void     bool      `json:"void"`
	Winner   Selection `json:"winner,omitempty"`
	Score    string    `json:"score,omitempty"`
}

// SettlesAs maps a finished outcome to the terminal state of a bet on selection
func (o *MatchOutcome) SettlesAs(selection Selection) BetState {
	if o.Void {
		return BetStateSettledVoid
	}
	if o.Winner == selection {
		return BetStateSettledWin
	}
	return BetStateSettledLoss
}

// MatchStatus is the kickoff status the caller determines before a bet is placed
type MatchStatus int

const (
	MatchStatusUnknown MatchStatus = iota
	MatchStatusNotStarted
	MatchStatusStarted
)

func (s MatchStatus) String() string {
	switch s {
	case MatchStatusNotStarted:
		return "not_started"
	case MatchStatusStarted:
		return "started"
	}
	return "unknown"
}

// Fixture is an upcoming or finished match listed by the oracle
type Fixture struct {
	ID         string    `json:"id"`
	HomeTeam   string    `json:"home_team"`
	AwayTeam   string    `json:"away_team"`
	League     string    `json:"league"`
	Kickoff    time.Time `json:"kickoff"`
	StatusCode string    `json:"status"`
}

// Status classifies the fixture for bet placement
func (f *Fixture) Status() MatchStatus {
	switch f.StatusCode {
	case "TBD", "NS", "":
		return MatchStatusNotStarted
	}
	return MatchStatusStarted
}

// Odds are decimal 1X2 prices for a fixture
type Odds struct {
	Home decimal.Decimal `json:"home"`
	Draw decimal.Decimal `json:"draw"`
	Away decimal.Decimal `json:"away"`
}

// For returns the price of one selection
func (o Odds) For(selection Selection) decimal.Decimal {
	switch selection {
	case SelectionHome:
		return o.Home
	case SelectionDraw:
		return o.Draw
	case SelectionAway:
		return o.Away
	}
	return decimal.Zero
}

// SweepResult summarises one settlement pass
type SweepResult struct {
	SweepID  string        `json:"sweep_id"`
	Checked  int           `json:"checked"`
	Settled  int           `json:"settled"`
	Wins     int           `json:"wins"`
	Losses   int           `json:"losses"`
	Voids    int           `json:"voids"`
	Failed   int           `json:"failed"`
	Aborted  bool          `json:"aborted"`
	Duration time.Duration `json:"duration_ns"`
}
