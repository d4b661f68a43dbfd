package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"typerbot/database"
	"typerbot/models"
	"typerbot/ranks"
	"typerbot/service"

	"github.com/jackc/pgx/v5"
)

const accountColumns = `id, balance, total_points, rank, last_message_award_at, created_at, updated_at`

// AccountRepository implements service.AccountRepository on Postgres.
// Every balance or points change is a single UPDATE against the current row.
type AccountRepository struct {
	q queryable
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *database.DB) *AccountRepository {
	return &AccountRepository{q: db.Pool}
}

// newAccountRepositoryWithTx creates a new account repository with a transaction
func newAccountRepositoryWithTx(tx queryable) *AccountRepository {
	return &AccountRepository{q: tx}
}

func scanAccount(row rowScanner) (*models.Account, error) {
	var account models.Account
	err := row.Scan(
		&account.ID,
		&account.Balance,
		&account.TotalPoints,
		&account.Rank,
		&account.LastMessageAwardAt,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// GetOrCreate returns the account, inserting a zeroed row on first contact
func (r *AccountRepository) GetOrCreate(ctx context.Context, id string) (*models.Account, error) {
	query := `
		INSERT INTO accounts (id, rank)
		VALUES ($1, $2)
		ON CONFLICT (id) DO NOTHING
	`
	if _, err := r.q.Exec(ctx, query, id, ranks.Default.Lowest().Name); err != nil {
		return nil, fmt.Errorf("failed to create account %s: %w", id, err)
	}

	account, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, fmt.Errorf("account %s missing after insert", id)
	}
	return account, nil
}

// GetByID retrieves an account with its open voice session
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	query := `
		SELECT
			a.id, a.balance, a.total_points, a.rank, a.last_message_award_at, a.created_at, a.updated_at,
			vs.channel_id, vs.join_time
		FROM accounts a
		LEFT JOIN voice_sessions vs ON vs.account_id = a.id
		WHERE a.id = $1
	`

	var account models.Account
	var channelID *string
	var joinTime *time.Time
	err := r.q.QueryRow(ctx, query, id).Scan(
		&account.ID,
		&account.Balance,
		&account.TotalPoints,
		&account.Rank,
		&account.LastMessageAwardAt,
		&account.CreatedAt,
		&account.UpdatedAt,
		&channelID,
		&joinTime,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account %s: %w", id, err)
	}

	if channelID != nil && joinTime != nil {
		account.ActiveVoiceSession = &models.VoiceSession{
			AccountID: account.ID,
			ChannelID: *channelID,
			JoinTime:  *joinTime,
		}
	}

	return &account, nil
}

// Debit subtracts amount only if the balance covers it
func (r *AccountRepository) Debit(ctx context.Context, id string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("debit amount must be positive, got %d", amount)
	}

	query := `
		UPDATE accounts
		SET balance = balance - $2, updated_at = NOW()
		WHERE id = $1 AND balance >= $2
		RETURNING balance
	`

	var newBalance int64
	err := r.q.QueryRow(ctx, query, id, amount).Scan(&newBalance)
	if errors.Is(err, pgx.ErrNoRows) {
		exists, existsErr := r.exists(ctx, id)
		if existsErr != nil {
			return 0, existsErr
		}
		if !exists {
			return 0, fmt.Errorf("account %s not found", id)
		}
		return 0, fmt.Errorf("account %s cannot cover %d: %w", id, amount, service.ErrInsufficientBalance)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to debit account %s: %w", id, err)
	}

	return newBalance, nil
}

// Credit adds amount to the balance without touching lifetime points
func (r *AccountRepository) Credit(ctx context.Context, id string, amount int64) (int64, error) {
	if amount < 0 {
		return 0, fmt.Errorf("credit amount must not be negative, got %d", amount)
	}

	query := `
		UPDATE accounts
		SET balance = balance + $2, updated_at = NOW()
		WHERE id = $1
		RETURNING balance
	`

	var newBalance int64
	err := r.q.QueryRow(ctx, query, id, amount).Scan(&newBalance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("account %s not found", id)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to credit account %s: %w", id, err)
	}

	return newBalance, nil
}

// AddPoints adds delta to both balance and lifetime points
func (r *AccountRepository) AddPoints(ctx context.Context, id string, delta int64) (*models.Account, error) {
	if delta < 0 {
		return nil, fmt.Errorf("points delta must not be negative, got %d", delta)
	}

	query := `
		UPDATE accounts
		SET balance = balance + $2, total_points = total_points + $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + accountColumns

	account, err := scanAccount(r.q.QueryRow(ctx, query, id, delta))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("account %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to add points to account %s: %w", id, err)
	}

	return account, nil
}

// AddMessagePoints awards delta and stamps awardedAt in one statement, guarded by the cooldown cutoff
func (r *AccountRepository) AddMessagePoints(ctx context.Context, id string, delta int64, awardedAt, cutoff time.Time) (*models.Account, error) {
	if delta < 0 {
		return nil, fmt.Errorf("points delta must not be negative, got %d", delta)
	}

	query := `
		UPDATE accounts
		SET balance = balance + $2,
		    total_points = total_points + $2,
		    last_message_award_at = $3,
		    updated_at = NOW()
		WHERE id = $1
		  AND (last_message_award_at IS NULL OR last_message_award_at <= $4)
		RETURNING ` + accountColumns

	account, err := scanAccount(r.q.QueryRow(ctx, query, id, delta, awardedAt, cutoff))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to award message points to account %s: %w", id, err)
	}

	return account, nil
}

// UpdateRank writes rank only while total points still sit inside the tier's bracket
func (r *AccountRepository) UpdateRank(ctx context.Context, id string, rank string, minPoints int64, maxPoints *int64) (bool, error) {
	query := `
		UPDATE accounts
		SET rank = $2, updated_at = NOW()
		WHERE id = $1
		  AND rank <> $2
		  AND total_points >= $3
		  AND ($4::BIGINT IS NULL OR total_points < $4::BIGINT)
	`

	tag, err := r.q.Exec(ctx, query, id, rank, minPoints, maxPoints)
	if err != nil {
		return false, fmt.Errorf("failed to update rank for account %s: %w", id, err)
	}

	return tag.RowsAffected() > 0, nil
}

// GetLeaderboard returns the accounts with the most lifetime points
func (r *AccountRepository) GetLeaderboard(ctx context.Context, limit int) ([]*models.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		ORDER BY total_points DESC, id ASC
		LIMIT $1
	`

	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	var accounts []*models.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard row: %w", err)
		}
		accounts = append(accounts, account)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating leaderboard: %w", err)
	}

	return accounts, nil
}

func (r *AccountRepository) exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM accounts WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check account %s: %w", id, err)
	}
	return exists, nil
}
