package models

import (
	"time"
)

// Account is a participant's ledger row, keyed by their Discord user ID
type Account struct {
	ID                 string     `db:"id"`
	Balance            int64      `db:"balance"`
	TotalPoints        int64      `db:"total_points"`
	Rank               string     `db:"rank"`
	LastMessageAwardAt *time.Time `db:"last_message_award_at"`
	CreatedAt          time.Time  `db:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at"`

	ActiveVoiceSession *VoiceSession `db:"-"`
}

// VoiceSession records when an account joined a voice channel
type VoiceSession struct {
	AccountID string    `db:"account_id"`
	ChannelID string    `db:"channel_id"`
	JoinTime  time.Time `db:"join_time"`
}

// PointsAward is the result of crediting points to an account.
// Promoted is set only when the award moved the account into a higher tier.
type PointsAward struct {
	AccountID string
	Awarded   int64
	OldTotal  int64
	NewTotal  int64
	Balance   int64
	Rank      string
	Promoted  bool
}
