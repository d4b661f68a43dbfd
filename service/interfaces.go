package service

import (
	"context"
	"time"

	"typerbot/events"
	"typerbot/models"
)

// AccountRepository defines the interface for ledger account data access
type AccountRepository interface {
	// GetOrCreate returns the account, creating it with zero balance and the lowest rank on first contact
	GetOrCreate(ctx context.Context, id string) (*models.Account, error)

	// GetByID retrieves an account and its open voice session, or nil if it does not exist
	GetByID(ctx context.Context, id string) (*models.Account, error)

	// Debit subtracts amount from the balance in one guarded statement and returns the new balance.
	// Returns ErrInsufficientBalance when the balance is lower than amount.
	Debit(ctx context.Context, id string, amount int64) (int64, error)

	// Credit adds amount to the balance and returns the new balance
	Credit(ctx context.Context, id string, amount int64) (int64, error)

	// AddPoints adds delta to both balance and total points and returns the updated account
	AddPoints(ctx context.Context, id string, delta int64) (*models.Account, error)

	// AddMessagePoints adds delta and stamps the award time only if the previous
	// award is at or before cutoff. Returns nil when the account is still cooling down.
	AddMessagePoints(ctx context.Context, id string, delta int64, awardedAt, cutoff time.Time) (*models.Account, error)

	// UpdateRank stores rank only while total points still fall in [minPoints, maxPoints).
	// A nil maxPoints means no upper bound. Reports whether the row changed.
	UpdateRank(ctx context.Context, id string, rank string, minPoints int64, maxPoints *int64) (bool, error)

	// GetLeaderboard returns accounts ordered by total points, highest first
	GetLeaderboard(ctx context.Context, limit int) ([]*models.Account, error)
}

// BetRepository defines the interface for bet data access
type BetRepository interface {
	// Create inserts a pending bet and fills in its ID and creation time
	Create(ctx context.Context, bet *models.Bet) error

	// GetByID retrieves a bet by its ID, or nil if it does not exist
	GetByID(ctx context.Context, id int64) (*models.Bet, error)

	// GetPending returns every pending bet, oldest first
	GetPending(ctx context.Context) ([]*models.Bet, error)

	// GetActiveByAccount returns an account's pending bets, newest first
	GetActiveByAccount(ctx context.Context, accountID string) ([]*models.Bet, error)

	// GetByAccount returns an account's most recent bets in any state
	GetByAccount(ctx context.Context, accountID string, limit int) ([]*models.Bet, error)

	// GetStats returns betting statistics for an account
	GetStats(ctx context.Context, accountID string) (*models.BetStats, error)

	// Settle moves a pending bet to a terminal state. Returns nil when the bet was
	// not pending, so concurrent settlers cannot both succeed.
	Settle(ctx context.Context, id int64, state models.BetState, score string, settledAt time.Time) (*models.Bet, error)
}

// VoiceSessionRepository defines the interface for voice presence tracking
type VoiceSessionRepository interface {
	// Upsert records a join, replacing any session the account already had
	Upsert(ctx context.Context, session *models.VoiceSession) error

	// Get returns the account's open session, or nil
	Get(ctx context.Context, accountID string) (*models.VoiceSession, error)

	// Take removes and returns the account's open session, or nil if there was none
	Take(ctx context.Context, accountID string) (*models.VoiceSession, error)
}

// MatchOracle answers whether a match has finished and how
type MatchOracle interface {
	// Lookup returns the current outcome of a match. An unfinished match is
	// reported with Finished false. Transport failures return an error.
	Lookup(ctx context.Context, matchID string) (*models.MatchOutcome, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	AccountRepository() AccountRepository
	BetRepository() BetRepository
	VoiceSessionRepository() VoiceSessionRepository

	// EventBus returns a publisher whose events are delivered only after Commit
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// WageringService defines the interface for placing and listing bets
type WageringService interface {
	// PlaceBet debits the stake and records a pending bet atomically
	PlaceBet(ctx context.Context, req PlaceBetRequest) (*PlaceBetResult, error)

	// GetActiveBets returns an account's pending bets
	GetActiveBets(ctx context.Context, accountID string) ([]*models.Bet, error)

	// GetBetHistory returns an account's most recent bets
	GetBetHistory(ctx context.Context, accountID string, limit int) ([]*models.Bet, error)
}

// SettlementService defines the interface for resolving pending bets
type SettlementService interface {
	// SettlePendingBets runs one sweep over all pending bets
	SettlePendingBets(ctx context.Context) (*models.SweepResult, error)

	// SettleBet applies a finished outcome to one bet. Reports false when the bet
	// had already left the pending state.
	SettleBet(ctx context.Context, betID int64, outcome *models.MatchOutcome) (*models.Bet, bool, error)
}

// PointsService defines the interface for activity-based point accrual
type PointsService interface {
	// AwardMessagePoints credits a chat message unless the account is cooling down
	AwardMessagePoints(ctx context.Context, accountID string) (*models.PointsAward, error)

	// VoiceJoin opens a voice session, replacing any previous one
	VoiceJoin(ctx context.Context, accountID, channelID string) error

	// VoiceLeave closes the session and credits the time spent. No-op without a session.
	VoiceLeave(ctx context.Context, accountID string) (*models.PointsAward, error)

	// VoiceSwitch closes the current session and opens one in channelID
	VoiceSwitch(ctx context.Context, accountID, channelID string) (*models.PointsAward, error)

	// AwardPoints credits points from any source through the promotion-aware path
	AwardPoints(ctx context.Context, accountID string, delta int64, source string) (*models.PointsAward, error)
}

// AccountService defines the interface for account reads
type AccountService interface {
	// GetAccount returns the account summary, creating the account on first contact
	GetAccount(ctx context.Context, accountID string) (*AccountSummary, error)

	// GetLeaderboard returns the top accounts by total points
	GetLeaderboard(ctx context.Context, limit int) ([]*models.Account, error)

	// GetStats returns betting statistics for an account
	GetStats(ctx context.Context, accountID string) (*models.BetStats, error)
}
