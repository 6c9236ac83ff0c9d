package models

import (
	"time"
)

// TempVoiceChannel records an ephemeral voice channel spawned from a
// guild's hub channel. Rows are persisted so channels orphaned by a
// crash can be swept on the next startup.
type TempVoiceChannel struct {
	ChannelID int64     `db:"channel_id"`
	GuildID   int64     `db:"guild_id"`
	OwnerID   int64     `db:"owner_id"`
	CreatedAt time.Time `db:"created_at"`
}
