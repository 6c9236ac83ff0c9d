package models

import (
	"time"
)

// GuildConfig holds per-guild bot settings. A row is created lazily the
// first time a guild is read or written, so callers always see defaults
// rather than a missing-row error.
type GuildConfig struct {
	GuildID           int64     `db:"guild_id"`
	WelcomeChannelID  *int64    `db:"welcome_channel_id"`
	VoiceHubChannelID *int64    `db:"voice_hub_channel_id"`
	ReactionToggle    bool      `db:"reaction_toggle"`
	CreatedAt         time.Time `db:"created_at"`
	UpdatedAt         time.Time `db:"updated_at"`
}

// NewDefaultGuildConfig returns the documented defaults for a guild
// without a stored row: no welcome channel, no voice hub, reactions on.
func NewDefaultGuildConfig(guildID int64) *GuildConfig {
	return &GuildConfig{
		GuildID:        guildID,
		ReactionToggle: true,
	}
}
