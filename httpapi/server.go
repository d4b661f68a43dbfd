// Package httpapi serves a view of the ledger plus manual sweep and points triggers.
package httpapi

import (
	"context"
	"errors"
	"time"

	"typerbot/models"
	"typerbot/service"
	"typerbot/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	log "github.com/sirupsen/logrus"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// Pinger reports database reachability
type Pinger interface {
	Ping(ctx context.Context) error
}

// PointsAwarder credits points outside the activity signals
type PointsAwarder interface {
	AwardPoints(ctx context.Context, accountID string, delta int64, source string) (*models.PointsAward, error)
}

// Sweeper runs a settlement sweep on demand
type Sweeper interface {
	Sweep(ctx context.Context) (*models.SweepResult, error)
}

// Server is the fiber application for the status API
type Server struct {
	app      *fiber.App
	db       Pinger
	accounts service.AccountService
	wagering service.WageringService
	points   PointsAwarder
	sweeper  Sweeper
}

type accountResponse struct {
	ID           string  `json:"id"`
	Balance      int64   `json:"balance"`
	TotalPoints  int64   `json:"total_points"`
	Rank         string  `json:"rank"`
	RankEmoji    string  `json:"rank_emoji"`
	NextRank     *string `json:"next_rank,omitempty"`
	PointsToNext int64   `json:"points_to_next"`
	InVoice      bool    `json:"in_voice"`
}

type betResponse struct {
	ID              int64      `json:"id"`
	MatchID         string     `json:"match_id"`
	Selection       string     `json:"selection"`
	Stake           int64      `json:"stake"`
	Odds            string     `json:"odds"`
	PotentialPayout int64      `json:"potential_payout"`
	State           string     `json:"state"`
	FinalScore      *string    `json:"final_score,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	SettledAt       *time.Time `json:"settled_at,omitempty"`
}

type awardRequest struct {
	Points int64 `json:"points"`
}

type awardResponse struct {
	AccountID   string `json:"account_id"`
	Awarded     int64  `json:"awarded"`
	TotalPoints int64  `json:"total_points"`
	Balance     int64  `json:"balance"`
	Rank        string `json:"rank"`
	Promoted    bool   `json:"promoted"`
}

type leaderboardEntry struct {
	Position    int    `json:"position"`
	ID          string `json:"id"`
	TotalPoints int64  `json:"total_points"`
	Balance     int64  `json:"balance"`
	Rank        string `json:"rank"`
}

// NewServer builds the app and its routes
func NewServer(db Pinger, accounts service.AccountService, wagering service.WageringService, points PointsAwarder, sweeper Sweeper) *Server {
	s := &Server{
		db:       db,
		accounts: accounts,
		wagering: wagering,
		points:   points,
		sweeper:  sweeper,
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "typerbot",
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          2 * time.Minute,
	})
	s.app.Use(recover.New())

	s.app.Get("/healthz", s.health)
	s.app.Get("/accounts/:id", s.getAccount)
	s.app.Get("/accounts/:id/bets", s.getBets)
	s.app.Post("/accounts/:id/points", s.awardPoints)
	s.app.Get("/leaderboard", s.getLeaderboard)
	s.app.Post("/settlement/sweep", s.triggerSweep)

	return s
}

// App exposes the fiber app, for tests
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves until Shutdown is called
func (s *Server) Listen(addr string) error {
	log.WithField("addr", addr).Info("Status API listening")
	return s.app.Listen(addr)
}

// Shutdown stops accepting connections and waits for in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	if err := s.db.Ping(ctx); err != nil {
		log.WithError(err).Warn("Health check failed")
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) getAccount(c *fiber.Ctx) error {
	summary, err := s.accounts.GetAccount(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}

	resp := accountResponse{
		ID:           summary.Account.ID,
		Balance:      summary.Account.Balance,
		TotalPoints:  summary.Account.TotalPoints,
		Rank:         summary.Tier.Name,
		RankEmoji:    summary.Tier.Emoji,
		PointsToNext: summary.PointsToNext,
		InVoice:      summary.Account.ActiveVoiceSession != nil,
	}
	if summary.NextTier != nil {
		resp.NextRank = &summary.NextTier.Name
	}
	return c.JSON(resp)
}

func (s *Server) getBets(c *fiber.Ctx) error {
	accountID := c.Params("id")

	var (
		bets []*models.Bet
		err  error
	)
	if c.QueryBool("active") {
		bets, err = s.wagering.GetActiveBets(c.UserContext(), accountID)
	} else {
		limit := clamp(c.QueryInt("limit", defaultHistoryLimit), 1, maxHistoryLimit)
		bets, err = s.wagering.GetBetHistory(c.UserContext(), accountID, limit)
	}
	if err != nil {
		return err
	}

	resp := make([]betResponse, 0, len(bets))
	for _, bet := range bets {
		resp = append(resp, betResponse{
			ID:              bet.ID,
			MatchID:         bet.MatchID,
			Selection:       string(bet.Selection),
			Stake:           bet.Stake,
			Odds:            bet.Odds.StringFixed(2),
			PotentialPayout: bet.Credit(),
			State:           string(bet.State),
			FinalScore:      bet.FinalScore,
			CreatedAt:       bet.CreatedAt,
			SettledAt:       bet.SettledAt,
		})
	}
	return c.JSON(resp)
}

func (s *Server) awardPoints(c *fiber.Ctx) error {
	var req awardRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	if req.Points <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "points must be positive")
	}

	award, err := s.points.AwardPoints(c.UserContext(), c.Params("id"), req.Points, service.PointsSourceManual)
	if err != nil {
		return err
	}

	return c.JSON(awardResponse{
		AccountID:   award.AccountID,
		Awarded:     award.Awarded,
		TotalPoints: award.NewTotal,
		Balance:     award.Balance,
		Rank:        award.Rank,
		Promoted:    award.Promoted,
	})
}

func (s *Server) getLeaderboard(c *fiber.Ctx) error {
	accounts, err := s.accounts.GetLeaderboard(c.UserContext(), c.QueryInt("limit", 0))
	if err != nil {
		return err
	}

	resp := make([]leaderboardEntry, 0, len(accounts))
	for i, account := range accounts {
		resp = append(resp, leaderboardEntry{
			Position:    i + 1,
			ID:          account.ID,
			TotalPoints: account.TotalPoints,
			Balance:     account.Balance,
			Rank:        account.Rank,
		})
	}
	return c.JSON(resp)
}

func (s *Server) triggerSweep(c *fiber.Ctx) error {
	result, err := s.sweeper.Sweep(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(result)
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "internal error"

	var fiberErr *fiber.Error
	switch {
	case errors.As(err, &fiberErr):
		code = fiberErr.Code
		message = fiberErr.Message
	case errors.Is(err, service.ErrNotFound):
		code = fiber.StatusNotFound
		message = err.Error()
	case errors.Is(err, service.ErrValidation):
		code = fiber.StatusBadRequest
		message = err.Error()
	case errors.Is(err, workers.ErrSweepInProgress):
		code = fiber.StatusConflict
		message = err.Error()
	default:
		log.WithError(err).WithField("path", c.Path()).Error("Request failed")
	}

	return c.Status(code).JSON(fiber.Map{"error": message})
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
