package repository

import (
	"context"
	"errors"
	"fmt"

	"typerbot/database"
	"typerbot/models"

	"github.com/jackc/pgx/v5"
)

// VoiceSessionRepository implements service.VoiceSessionRepository on Postgres
type VoiceSessionRepository struct {
	q queryable
}

// NewVoiceSessionRepository creates a new voice session repository
func NewVoiceSessionRepository(db *database.DB) *VoiceSessionRepository {
	return &VoiceSessionRepository{q: db.Pool}
}

func newVoiceSessionRepositoryWithTx(tx queryable) *VoiceSessionRepository {
	return &VoiceSessionRepository{q: tx}
}

// Upsert stores the session, overwriting a stale one
func (r *VoiceSessionRepository) Upsert(ctx context.Context, session *models.VoiceSession) error {
	query := `
		INSERT INTO voice_sessions (account_id, channel_id, join_time)
		VALUES ($1, $2, $3)
		ON CONFLICT (account_id) DO UPDATE
		SET channel_id = EXCLUDED.channel_id, join_time = EXCLUDED.join_time
	`

	if _, err := r.q.Exec(ctx, query, session.AccountID, session.ChannelID, session.JoinTime); err != nil {
		return fmt.Errorf("failed to upsert voice session for account %s: %w", session.AccountID, err)
	}
	return nil
}

// Get returns the open session for an account
func (r *VoiceSessionRepository) Get(ctx context.Context, accountID string) (*models.VoiceSession, error) {
	query := `SELECT account_id, channel_id, join_time FROM voice_sessions WHERE account_id = $1`

	var session models.VoiceSession
	err := r.q.QueryRow(ctx, query, accountID).Scan(&session.AccountID, &session.ChannelID, &session.JoinTime)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get voice session for account %s: %w", accountID, err)
	}

	return &session, nil
}

// Take deletes and returns the open session. Two concurrent leaves cannot both claim it.
func (r *VoiceSessionRepository) Take(ctx context.Context, accountID string) (*models.VoiceSession, error) {
	query := `
		DELETE FROM voice_sessions
		WHERE account_id = $1
		RETURNING account_id, channel_id, join_time
	`

	var session models.VoiceSession
	err := r.q.QueryRow(ctx, query, accountID).Scan(&session.AccountID, &session.ChannelID, &session.JoinTime)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to take voice session for account %s: %w", accountID, err)
	}

	return &session, nil
}
