package oracle

import (
	"context"
	"fmt"

	"typerbot/models"

	"github.com/shopspring/decimal"
)

// Provider is the football data source used for bet placement and settlement.
// It satisfies service.MatchOracle.
type Provider interface {
	Lookup(ctx context.Context, matchID string) (*models.MatchOutcome, error)
	UpcomingFixtures(ctx context.Context) ([]models.Fixture, error)
	Fixture(ctx context.Context, matchID string) (*models.Fixture, error)
	Odds(ctx context.Context, matchID string) (*models.Odds, error)
}

// DefaultOdds are quoted when the provider has no Match Winner market for a fixture
var DefaultOdds = models.Odds{
	Home: decimal.RequireFromString("2.00"),
	Draw: decimal.RequireFromString("3.00"),
	Away: decimal.RequireFromString("2.00"),
}

// MaxUpcomingFixtures caps the fixture list shown to users
const MaxUpcomingFixtures = 25

var competitionNames = map[int]string{
	39:  "Premier League",
	140: "La Liga",
	135: "Serie A",
	78:  "Bundesliga",
	61:  "Ligue 1",
	106: "Ekstraklasa",
}

// CompetitionName returns the display name of a league id
func CompetitionName(id int) string {
	if name, ok := competitionNames[id]; ok {
		return name
	}
	return fmt.Sprintf("Liga %d", id)
}

// IsFinishedStatus reports whether a status code means the result is final.
// Awarded matches and walkovers settle on the awarded score.
func IsFinishedStatus(code string) bool {
	switch code {
	case "FT", "AET", "PEN", "AWD", "WO":
		return true
	}
	return false
}

// IsVoidStatus reports whether a status code means the match will not be
// played out and its bets are refunded
func IsVoidStatus(code string) bool {
	switch code {
	case "CANC", "ABD":
		return true
	}
	return false
}

// Outcome maps a status code and score to a match outcome. A match that is
// neither finished nor void returns an unfinished outcome.
func Outcome(matchID, statusCode string, homeGoals, awayGoals *int) *models.MatchOutcome {
	outcome := &models.MatchOutcome{MatchID: matchID}

	switch {
	case IsVoidStatus(statusCode):
		outcome.Finished = true
		outcome.Void = true
		if homeGoals != nil && awayGoals != nil {
			outcome.Score = FormatScore(*homeGoals, *awayGoals)
		}
	case IsFinishedStatus(statusCode):
		if homeGoals == nil || awayGoals == nil {
			return outcome
		}
		outcome.Finished = true
		outcome.Score = FormatScore(*homeGoals, *awayGoals)
		switch {
		case *homeGoals > *awayGoals:
			outcome.Winner = models.SelectionHome
		case *awayGoals > *homeGoals:
			outcome.Winner = models.SelectionAway
		default:
			outcome.Winner = models.SelectionDraw
		}
	}

	return outcome
}

// FormatScore renders a score the way it is stored on settled bets
func FormatScore(home, away int) string {
	return fmt.Sprintf("%d:%d", home, away)
}
