package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"typerbot/database"
	"typerbot/models"

	"github.com/jackc/pgx/v5"
)

const betColumns = `id, account_id, match_id, selection, stake, odds, potential_payout, state, final_score, created_at, settled_at`

// BetRepository implements service.BetRepository on Postgres
type BetRepository struct {
	q queryable
}

// NewBetRepository creates a new bet repository
func NewBetRepository(db *database.DB) *BetRepository {
	return &BetRepository{q: db.Pool}
}

// newBetRepositoryWithTx creates a new bet repository with a transaction
func newBetRepositoryWithTx(tx queryable) *BetRepository {
	return &BetRepository{q: tx}
}

func scanBet(row rowScanner) (*models.Bet, error) {
	var bet models.Bet
	err := row.Scan(
		&bet.ID,
		&bet.AccountID,
		&bet.MatchID,
		&bet.Selection,
		&bet.Stake,
		&bet.Odds,
		&bet.PotentialPayout,
		&bet.State,
		&bet.FinalScore,
		&bet.CreatedAt,
		&bet.SettledAt,
	)
	if err != nil {
		return nil, err
	}
	return &bet, nil
}

func (r *BetRepository) queryBets(ctx context.Context, query string, args ...any) ([]*models.Bet, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bets []*models.Bet
	for rows.Next() {
		bet, err := scanBet(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bet: %w", err)
		}
		bets = append(bets, bet)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bets: %w", err)
	}

	return bets, nil
}

// Create inserts the bet in the pending state
func (r *BetRepository) Create(ctx context.Context, bet *models.Bet) error {
	query := `
		INSERT INTO bets (account_id, match_id, selection, stake, odds, potential_payout, state)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	bet.State = models.BetStatePending
	err := r.q.QueryRow(ctx, query,
		bet.AccountID,
		bet.MatchID,
		bet.Selection,
		bet.Stake,
		bet.Odds,
		bet.PotentialPayout,
		bet.State,
	).Scan(&bet.ID, &bet.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create bet: %w", err)
	}

	return nil
}

// GetByID retrieves a bet by its ID
func (r *BetRepository) GetByID(ctx context.Context, id int64) (*models.Bet, error) {
	query := `SELECT ` + betColumns + ` FROM bets WHERE id = $1`

	bet, err := scanBet(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bet %d: %w", id, err)
	}

	return bet, nil
}

// GetPending returns all pending bets in placement order
func (r *BetRepository) GetPending(ctx context.Context) ([]*models.Bet, error) {
	query := `
		SELECT ` + betColumns + `
		FROM bets
		WHERE state = 'pending'
		ORDER BY created_at ASC, id ASC
	`

	bets, err := r.queryBets(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending bets: %w", err)
	}
	return bets, nil
}

// GetActiveByAccount returns an account's pending bets
func (r *BetRepository) GetActiveByAccount(ctx context.Context, accountID string) ([]*models.Bet, error) {
	query := `
		SELECT ` + betColumns + `
		FROM bets
		WHERE account_id = $1 AND state = 'pending'
		ORDER BY created_at DESC, id DESC
	`

	bets, err := r.queryBets(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to get active bets for account %s: %w", accountID, err)
	}
	return bets, nil
}

// GetByAccount returns an account's most recent bets
func (r *BetRepository) GetByAccount(ctx context.Context, accountID string, limit int) ([]*models.Bet, error) {
	query := `
		SELECT ` + betColumns + `
		FROM bets
		WHERE account_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	bets, err := r.queryBets(ctx, query, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get bets for account %s: %w", accountID, err)
	}
	return bets, nil
}

// GetStats aggregates an account's bets in one pass
func (r *BetRepository) GetStats(ctx context.Context, accountID string) (*models.BetStats, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE state = 'pending'),
			COUNT(*) FILTER (WHERE state = 'settled_win'),
			COUNT(*) FILTER (WHERE state = 'settled_loss'),
			COUNT(*) FILTER (WHERE state = 'settled_void'),
			COALESCE(SUM(stake), 0)::BIGINT,
			COALESCE(SUM(FLOOR(potential_payout)) FILTER (WHERE state = 'settled_win'), 0)::BIGINT
		FROM bets
		WHERE account_id = $1
	`

	var stats models.BetStats
	err := r.q.QueryRow(ctx, query, accountID).Scan(
		&stats.TotalBets,
		&stats.Pending,
		&stats.Wins,
		&stats.Losses,
		&stats.Voids,
		&stats.TotalStaked,
		&stats.TotalWon,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get bet stats for account %s: %w", accountID, err)
	}

	return &stats, nil
}

// Settle performs the pending -> terminal transition. The state check lives in
// the WHERE clause, so only one caller can ever win it.
func (r *BetRepository) Settle(ctx context.Context, id int64, state models.BetState, score string, settledAt time.Time) (*models.Bet, error) {
	if !state.IsTerminal() {
		return nil, fmt.Errorf("cannot settle bet %d into non-terminal state %q", id, state)
	}

	query := `
		UPDATE bets
		SET state = $2, final_score = NULLIF($3, ''), settled_at = $4
		WHERE id = $1 AND state = 'pending'
		RETURNING ` + betColumns

	bet, err := scanBet(r.q.QueryRow(ctx, query, id, state, score, settledAt))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to settle bet %d: %w", id, err)
	}

	return bet, nil
}
