package repository

import (
	"context"
	"fmt"

	"lunabot/database"
	"lunabot/models"

	"github.com/jackc/pgx/v5"
)

// TempChannelRepository implements the TempChannelRepository interface
type TempChannelRepository struct {
	q queryable
}

// NewTempChannelRepository creates a new temp channel repository
func NewTempChannelRepository(db *database.DB) *TempChannelRepository {
	return &TempChannelRepository{q: db.Pool}
}

// newTempChannelRepositoryWithTx creates a new temp channel repository with a transaction
func newTempChannelRepositoryWithTx(tx queryable) *TempChannelRepository {
	return &TempChannelRepository{q: tx}
}

// Create records a spawned ephemeral voice channel.
func (r *TempChannelRepository) Create(ctx context.Context, ch *models.TempVoiceChannel) error {
	query := `
		INSERT INTO temp_voice_channels (channel_id, guild_id, owner_id)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`

	err := r.q.QueryRow(ctx, query, ch.ChannelID, ch.GuildID, ch.OwnerID).Scan(&ch.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create temp channel record %d: %w", ch.ChannelID, err)
	}

	return nil
}

// Delete removes the record of a torn-down channel. Deleting an absent
// record is a no-op so teardown stays idempotent.
func (r *TempChannelRepository) Delete(ctx context.Context, channelID int64) error {
	_, err := r.q.Exec(ctx,
		`DELETE FROM temp_voice_channels WHERE channel_id = $1`,
		channelID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete temp channel record %d: %w", channelID, err)
	}

	return nil
}

// GetByID retrieves a temp channel record, or nil if absent.
func (r *TempChannelRepository) GetByID(ctx context.Context, channelID int64) (*models.TempVoiceChannel, error) {
	query := `
		SELECT channel_id, guild_id, owner_id, created_at
		FROM temp_voice_channels
		WHERE channel_id = $1
	`

	var ch models.TempVoiceChannel
	err := r.q.QueryRow(ctx, query, channelID).Scan(
		&ch.ChannelID,
		&ch.GuildID,
		&ch.OwnerID,
		&ch.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get temp channel %d: %w", channelID, err)
	}

	return &ch, nil
}

// ListByGuild returns all recorded temp channels for a guild.
func (r *TempChannelRepository) ListByGuild(ctx context.Context, guildID int64) ([]*models.TempVoiceChannel, error) {
	return r.list(ctx,
		`SELECT channel_id, guild_id, owner_id, created_at
		 FROM temp_voice_channels WHERE guild_id = $1 ORDER BY created_at`,
		guildID,
	)
}

// ListAll returns every recorded temp channel, for the startup sweep.
func (r *TempChannelRepository) ListAll(ctx context.Context) ([]*models.TempVoiceChannel, error) {
	return r.list(ctx,
		`SELECT channel_id, guild_id, owner_id, created_at
		 FROM temp_voice_channels ORDER BY created_at`,
	)
}

func (r *TempChannelRepository) list(ctx context.Context, query string, args ...any) ([]*models.TempVoiceChannel, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list temp channels: %w", err)
	}
	defer rows.Close()

	var channels []*models.TempVoiceChannel
	for rows.Next() {
		var ch models.TempVoiceChannel
		err := rows.Scan(&ch.ChannelID, &ch.GuildID, &ch.OwnerID, &ch.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan temp channel: %w", err)
		}
		channels = append(channels, &ch)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate temp channels: %w", err)
	}

	return channels, nil
}
