package models

import (
	"time"
)

// ReactionRoleBinding maps a (message, emoji) pair to a role. The pair
// is unique; one message may carry several bindings with different
// emoji. Emoji is either a literal grapheme or a custom-emoji
// identifier in discord's name:id form.
type ReactionRoleBinding struct {
	ID        int64     `db:"id"`
	GuildID   int64     `db:"guild_id"`
	ChannelID int64     `db:"channel_id"`
	MessageID int64     `db:"message_id"`
	Emoji     string    `db:"emoji"`
	RoleID    int64     `db:"role_id"`
	CreatedAt time.Time `db:"created_at"`
}
