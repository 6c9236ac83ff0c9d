package models

import (
	"time"
)

// UserConfig holds global (not per-guild) per-user state: the starbits
// balance, the daily claim cooldown, and the optional name override used
// when the voice lifecycle creates a channel for the user.
type UserConfig struct {
	UserID          int64     `db:"user_id"`
	Balance         int64     `db:"balance"`
	NextClaimAt     time.Time `db:"next_claim_at"`
	TempChannelName *string   `db:"temp_channel_name"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}

// LeaderboardEntry is one row of the starbits leaderboard.
type LeaderboardEntry struct {
	UserID  int64 `db:"user_id"`
	Balance int64 `db:"balance"`
	Rank    int   `db:"-"`
}
