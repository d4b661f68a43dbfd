package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"typerbot/models"
	"typerbot/service"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

const (
	requestTimeout   = 10 * time.Second
	leagueQueryDelay = 500 * time.Millisecond
	fixtureWindow    = 7 * 24 * time.Hour
	fixtureTimezone  = "Europe/Warsaw"
	matchWinnerBetID = "1"
	matchWinnerName  = "Match Winner"
)

// FootballAPIClient talks to api-football v3 through RapidAPI
type FootballAPIClient struct {
	baseURL      string
	apiKey       string
	host         string
	competitions []int
	httpClient   *http.Client
	leagueDelay  time.Duration
	now          func() time.Time
}

// NewFootballAPIClient creates a client for the given base URL and RapidAPI key
func NewFootballAPIClient(baseURL, apiKey string, competitions []int) (*FootballAPIClient, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Host == "" {
		return nil, fmt.Errorf("invalid football API base URL %q", baseURL)
	}

	return &FootballAPIClient{
		baseURL:      baseURL,
		apiKey:       apiKey,
		host:         parsed.Host,
		competitions: competitions,
		httpClient:   &http.Client{Timeout: requestTimeout},
		leagueDelay:  leagueQueryDelay,
		now:          time.Now,
	}, nil
}

type apiFixturesResponse struct {
	Response []apiFixture `json:"response"`
}

type apiFixture struct {
	Fixture struct {
		ID     int64     `json:"id"`
		Date   time.Time `json:"date"`
		Status struct {
			Short string `json:"short"`
		} `json:"status"`
	} `json:"fixture"`
	League struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"league"`
	Teams struct {
		Home struct {
			Name string `json:"name"`
		} `json:"home"`
		Away struct {
			Name string `json:"name"`
		} `json:"away"`
	} `json:"teams"`
	Goals apiScore `json:"goals"`
	Score struct {
		Fulltime apiScore `json:"fulltime"`
	} `json:"score"`
}

type apiScore struct {
	Home *int `json:"home"`
	Away *int `json:"away"`
}

type apiOddsResponse struct {
	Response []struct {
		Bookmakers []struct {
			Bets []struct {
				Name   string `json:"name"`
				Values []struct {
					Value string `json:"value"`
					Odd   string `json:"odd"`
				} `json:"values"`
			} `json:"bets"`
		} `json:"bookmakers"`
	} `json:"response"`
}

func (f *apiFixture) toModel() models.Fixture {
	league := f.League.Name
	if league == "" {
		league = CompetitionName(f.League.ID)
	}
	return models.Fixture{
		ID:         strconv.FormatInt(f.Fixture.ID, 10),
		HomeTeam:   f.Teams.Home.Name,
		AwayTeam:   f.Teams.Away.Name,
		League:     league,
		Kickoff:    f.Fixture.Date.UTC(),
		StatusCode: f.Fixture.Status.Short,
	}
}

// regulation returns the 90 minute score, falling back to the goal totals
func (f *apiFixture) regulation() apiScore {
	if f.Score.Fulltime.Home != nil && f.Score.Fulltime.Away != nil {
		return f.Score.Fulltime
	}
	return f.Goals
}

// Lookup reports whether a match has finished and how. Unfinished matches
// return an outcome with Finished false.
func (c *FootballAPIClient) Lookup(ctx context.Context, matchID string) (*models.MatchOutcome, error) {
	fixture, err := c.fetchFixture(ctx, matchID)
	if err != nil {
		return nil, err
	}

	score := fixture.regulation()
	return Outcome(matchID, fixture.Fixture.Status.Short, score.Home, score.Away), nil
}

// Fixture returns a single fixture with its current status
func (c *FootballAPIClient) Fixture(ctx context.Context, matchID string) (*models.Fixture, error) {
	fixture, err := c.fetchFixture(ctx, matchID)
	if err != nil {
		return nil, err
	}

	model := fixture.toModel()
	return &model, nil
}

// UpcomingFixtures lists the next week of fixtures across the supported
// competitions, capped at MaxUpcomingFixtures
func (c *FootballAPIClient) UpcomingFixtures(ctx context.Context) ([]models.Fixture, error) {
	today := c.now().UTC()
	from := today.Format(time.DateOnly)
	to := today.Add(fixtureWindow).Format(time.DateOnly)

	var fixtures []models.Fixture
	for i, league := range c.competitions {
		if i > 0 && !sleep(ctx, c.leagueDelay) {
			return nil, ctx.Err()
		}

		params := url.Values{}
		params.Set("league", strconv.Itoa(league))
		params.Set("season", strconv.Itoa(season(today)))
		params.Set("from", from)
		params.Set("to", to)
		params.Set("timezone", fixtureTimezone)

		var resp apiFixturesResponse
		if err := c.get(ctx, "/fixtures", params, &resp); err != nil {
			log.WithError(err).WithField("league", league).Warn("Failed to fetch fixtures for league")
			continue
		}

		for i := range resp.Response {
			fixtures = append(fixtures, resp.Response[i].toModel())
		}
		if len(fixtures) >= MaxUpcomingFixtures {
			break
		}
	}

	if len(fixtures) > MaxUpcomingFixtures {
		fixtures = fixtures[:MaxUpcomingFixtures]
	}
	return fixtures, nil
}

// Odds returns the Match Winner prices for a fixture. Missing markets or
// unparseable prices fall back to DefaultOdds.
func (c *FootballAPIClient) Odds(ctx context.Context, matchID string) (*models.Odds, error) {
	params := url.Values{}
	params.Set("fixture", matchID)
	params.Set("bet", matchWinnerBetID)

	var resp apiOddsResponse
	if err := c.get(ctx, "/odds", params, &resp); err != nil {
		return nil, err
	}

	odds := DefaultOdds
	if len(resp.Response) == 0 || len(resp.Response[0].Bookmakers) == 0 {
		return &odds, nil
	}

	for _, bet := range resp.Response[0].Bookmakers[0].Bets {
		if bet.Name != matchWinnerName {
			continue
		}
		for _, v := range bet.Values {
			price, err := decimal.NewFromString(v.Odd)
			if err != nil {
				continue
			}
			switch v.Value {
			case "Home":
				odds.Home = price
			case "Draw":
				odds.Draw = price
			case "Away":
				odds.Away = price
			}
		}
		break
	}

	return &odds, nil
}

func (c *FootballAPIClient) fetchFixture(ctx context.Context, matchID string) (*apiFixture, error) {
	if _, err := strconv.ParseInt(matchID, 10, 64); err != nil {
		return nil, fmt.Errorf("%w: %s", service.ErrUnknownMatch, matchID)
	}

	params := url.Values{}
	params.Set("id", matchID)

	var resp apiFixturesResponse
	if err := c.get(ctx, "/fixtures", params, &resp); err != nil {
		return nil, err
	}
	if len(resp.Response) == 0 {
		return nil, fmt.Errorf("%w: %s", service.ErrUnknownMatch, matchID)
	}
	return &resp.Response[0], nil
}

func (c *FootballAPIClient) get(ctx context.Context, path string, params url.Values, out any) error {
	endpoint := c.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("X-RapidAPI-Key", c.apiKey)
	req.Header.Set("X-RapidAPI-Host", c.host)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", service.ErrOracleUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s returned status %d", service.ErrOracleUnavailable, path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: failed to decode %s response: %v", service.ErrOracleUnavailable, path, err)
	}
	return nil
}

// season returns the api-football season year, which starts in July
func season(t time.Time) int {
	if t.Month() < time.July {
		return t.Year() - 1
	}
	return t.Year()
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
