package repository

import (
	"context"
	"fmt"

	"lunabot/database"
	"lunabot/models"

	"github.com/jackc/pgx/v5"
)

// GuildConfigRepository implements the GuildConfigRepository interface
type GuildConfigRepository struct {
	q queryable
}

// NewGuildConfigRepository creates a new guild config repository
func NewGuildConfigRepository(db *database.DB) *GuildConfigRepository {
	return &GuildConfigRepository{q: db.Pool}
}

// newGuildConfigRepositoryWithTx creates a new guild config repository with a transaction
func newGuildConfigRepositoryWithTx(tx queryable) *GuildConfigRepository {
	return &GuildConfigRepository{q: tx}
}

// GetOrCreate retrieves a guild's config or persists and returns the
// default row if none exists yet. Never fails for a well-formed ID.
func (r *GuildConfigRepository) GetOrCreate(ctx context.Context, guildID int64) (*models.GuildConfig, error) {
	query := `
		SELECT guild_id, welcome_channel_id, voice_hub_channel_id, reaction_toggle, created_at, updated_at
		FROM guild_configs
		WHERE guild_id = $1
	`

	var cfg models.GuildConfig
	err := r.q.QueryRow(ctx, query, guildID).Scan(
		&cfg.GuildID,
		&cfg.WelcomeChannelID,
		&cfg.VoiceHubChannelID,
		&cfg.ReactionToggle,
		&cfg.CreatedAt,
		&cfg.UpdatedAt,
	)

	if err == nil {
		return &cfg, nil
	}

	if err != pgx.ErrNoRows {
		return nil, fmt.Errorf("failed to get guild config for guild %d: %w", guildID, err)
	}

	// Upsert-on-read: synthesize the default row. ON CONFLICT covers a
	// concurrent first read of the same guild.
	insertQuery := `
		INSERT INTO guild_configs (guild_id)
		VALUES ($1)
		ON CONFLICT (guild_id) DO UPDATE SET updated_at = guild_configs.updated_at
		RETURNING guild_id, welcome_channel_id, voice_hub_channel_id, reaction_toggle, created_at, updated_at
	`

	err = r.q.QueryRow(ctx, insertQuery, guildID).Scan(
		&cfg.GuildID,
		&cfg.WelcomeChannelID,
		&cfg.VoiceHubChannelID,
		&cfg.ReactionToggle,
		&cfg.CreatedAt,
		&cfg.UpdatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to create guild config for guild %d: %w", guildID, err)
	}

	return &cfg, nil
}

// Update persists all settable fields of a guild config.
func (r *GuildConfigRepository) Update(ctx context.Context, cfg *models.GuildConfig) error {
	query := `
		UPDATE guild_configs
		SET welcome_channel_id = $2,
		    voice_hub_channel_id = $3,
		    reaction_toggle = $4,
		    updated_at = NOW()
		WHERE guild_id = $1
	`

	result, err := r.q.Exec(ctx, query,
		cfg.GuildID,
		cfg.WelcomeChannelID,
		cfg.VoiceHubChannelID,
		cfg.ReactionToggle,
	)

	if err != nil {
		return fmt.Errorf("failed to update guild config for guild %d: %w", cfg.GuildID, err)
	}

	if result.RowsAffected() == 0 {
		return &models.NotFoundError{Kind: "guild config", ID: cfg.GuildID}
	}

	return nil
}

// ListGuildIDs returns the IDs of all guilds with a stored config row.
func (r *GuildConfigRepository) ListGuildIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.q.Query(ctx, `SELECT guild_id FROM guild_configs ORDER BY guild_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list guild IDs: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan guild ID: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate guild IDs: %w", err)
	}

	return ids, nil
}

// AddAutorole adds a role to a guild's autorole set. Adding a role that
// is already present is a no-op.
func (r *GuildConfigRepository) AddAutorole(ctx context.Context, guildID, roleID int64) error {
	query := `
		INSERT INTO autoroles (guild_id, role_id)
		VALUES ($1, $2)
		ON CONFLICT (guild_id, role_id) DO NOTHING
	`

	if _, err := r.q.Exec(ctx, query, guildID, roleID); err != nil {
		return fmt.Errorf("failed to add autorole %d for guild %d: %w", roleID, guildID, err)
	}

	return nil
}

// RemoveAutorole removes a role from a guild's autorole set.
func (r *GuildConfigRepository) RemoveAutorole(ctx context.Context, guildID, roleID int64) error {
	result, err := r.q.Exec(ctx,
		`DELETE FROM autoroles WHERE guild_id = $1 AND role_id = $2`,
		guildID, roleID,
	)
	if err != nil {
		return fmt.Errorf("failed to remove autorole %d for guild %d: %w", roleID, guildID, err)
	}

	if result.RowsAffected() == 0 {
		return &models.NotFoundError{Kind: "autorole", ID: roleID}
	}

	return nil
}

// ListAutoroles returns the autorole set for a guild. Order is not
// significant.
func (r *GuildConfigRepository) ListAutoroles(ctx context.Context, guildID int64) ([]int64, error) {
	rows, err := r.q.Query(ctx,
		`SELECT role_id FROM autoroles WHERE guild_id = $1 ORDER BY role_id`,
		guildID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list autoroles for guild %d: %w", guildID, err)
	}
	defer rows.Close()

	var roleIDs []int64
	for rows.Next() {
		var roleID int64
		if err := rows.Scan(&roleID); err != nil {
			return nil, fmt.Errorf("failed to scan autorole: %w", err)
		}
		roleIDs = append(roleIDs, roleID)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate autoroles: %w", err)
	}

	return roleIDs, nil
}
