package oracle

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"typerbot/models"
	"typerbot/service"

	"github.com/shopspring/decimal"
)

// MockOdds are the fixed prices quoted by MockProvider
var MockOdds = models.Odds{
	Home: decimal.RequireFromString("2.10"),
	Draw: decimal.RequireFromString("3.40"),
	Away: decimal.RequireFromString("3.20"),
}

var mockTeams = []string{
	"Manchester City",
	"Liverpool",
	"Real Madrid",
	"Barcelona",
	"Bayern Munich",
	"PSG",
	"Inter Milan",
	"AC Milan",
	"Legia Warszawa",
	"Lech Poznań",
}

const mockFirstFixtureID = 1000

// MockProvider serves a fixed set of fixtures, one a day starting tomorrow.
// It is used when no API key is configured. Matches never finish on their
// own; Resolve records a result.
type MockProvider struct {
	mu       sync.RWMutex
	fixtures []models.Fixture
	results  map[string]*models.MatchOutcome
}

// NewMockProvider builds ten fixtures relative to now
func NewMockProvider(now time.Time, competitions []int) *MockProvider {
	if len(competitions) == 0 {
		competitions = []int{39}
	}

	fixtures := make([]models.Fixture, 0, len(mockTeams))
	for i := range mockTeams {
		fixtures = append(fixtures, models.Fixture{
			ID:         strconv.Itoa(mockFirstFixtureID + i),
			HomeTeam:   mockTeams[i],
			AwayTeam:   mockTeams[(i+1)%len(mockTeams)],
			League:     CompetitionName(competitions[i%len(competitions)]),
			Kickoff:    now.UTC().Add(time.Duration(i+1) * 24 * time.Hour),
			StatusCode: "NS",
		})
	}

	return &MockProvider{
		fixtures: fixtures,
		results:  make(map[string]*models.MatchOutcome),
	}
}

// Resolve records a final result for a mock fixture
func (p *MockProvider) Resolve(matchID string, outcome models.MatchOutcome) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	idx := p.indexOf(matchID)
	if idx < 0 {
		return fmt.Errorf("%w: %s", service.ErrUnknownMatch, matchID)
	}

	outcome.MatchID = matchID
	p.results[matchID] = &outcome
	switch {
	case outcome.Void:
		p.fixtures[idx].StatusCode = "CANC"
	case outcome.Finished:
		p.fixtures[idx].StatusCode = "FT"
	}
	return nil
}

func (p *MockProvider) Lookup(ctx context.Context, matchID string) (*models.MatchOutcome, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.indexOf(matchID) < 0 {
		return nil, fmt.Errorf("%w: %s", service.ErrUnknownMatch, matchID)
	}
	if result, ok := p.results[matchID]; ok {
		copied := *result
		return &copied, nil
	}
	return &models.MatchOutcome{MatchID: matchID}, nil
}

func (p *MockProvider) UpcomingFixtures(ctx context.Context) ([]models.Fixture, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	fixtures := make([]models.Fixture, 0, len(p.fixtures))
	for _, f := range p.fixtures {
		if f.Status() == models.MatchStatusNotStarted {
			fixtures = append(fixtures, f)
		}
	}
	return fixtures, nil
}

func (p *MockProvider) Fixture(ctx context.Context, matchID string) (*models.Fixture, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	idx := p.indexOf(matchID)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", service.ErrUnknownMatch, matchID)
	}
	fixture := p.fixtures[idx]
	return &fixture, nil
}

func (p *MockProvider) Odds(ctx context.Context, matchID string) (*models.Odds, error) {
	odds := MockOdds
	return &odds, nil
}

func (p *MockProvider) indexOf(matchID string) int {
	for i := range p.fixtures {
		if p.fixtures[i].ID == matchID {
			return i
		}
	}
	return -1
}
