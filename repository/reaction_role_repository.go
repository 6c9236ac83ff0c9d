package repository

import (
	"context"
	"fmt"

	"lunabot/database"
	"lunabot/models"

	"github.com/jackc/pgx/v5"
)

// ReactionRoleRepository implements the ReactionRoleRepository interface
type ReactionRoleRepository struct {
	q queryable
}

// NewReactionRoleRepository creates a new reaction role repository
func NewReactionRoleRepository(db *database.DB) *ReactionRoleRepository {
	return &ReactionRoleRepository{q: db.Pool}
}

// newReactionRoleRepositoryWithTx creates a new reaction role repository with a transaction
func newReactionRoleRepositoryWithTx(tx queryable) *ReactionRoleRepository {
	return &ReactionRoleRepository{q: tx}
}

// Create persists a binding. The (message_id, emoji) pair is unique.
func (r *ReactionRoleRepository) Create(ctx context.Context, binding *models.ReactionRoleBinding) error {
	query := `
		INSERT INTO reaction_role_bindings (guild_id, channel_id, message_id, emoji, role_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		binding.GuildID,
		binding.ChannelID,
		binding.MessageID,
		binding.Emoji,
		binding.RoleID,
	).Scan(&binding.ID, &binding.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create reaction role binding for message %d emoji %q: %w",
			binding.MessageID, binding.Emoji, err)
	}

	return nil
}

// DeleteByID removes a binding.
func (r *ReactionRoleRepository) DeleteByID(ctx context.Context, id int64) error {
	result, err := r.q.Exec(ctx, `DELETE FROM reaction_role_bindings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete reaction role binding %d: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return &models.NotFoundError{Kind: "reaction role binding", ID: id}
	}

	return nil
}

// FindByMessageAndEmoji looks up the binding for a (message, emoji)
// pair, or nil if no such binding exists.
func (r *ReactionRoleRepository) FindByMessageAndEmoji(ctx context.Context, messageID int64, emoji string) (*models.ReactionRoleBinding, error) {
	query := `
		SELECT id, guild_id, channel_id, message_id, emoji, role_id, created_at
		FROM reaction_role_bindings
		WHERE message_id = $1 AND emoji = $2
	`

	var binding models.ReactionRoleBinding
	err := r.q.QueryRow(ctx, query, messageID, emoji).Scan(
		&binding.ID,
		&binding.GuildID,
		&binding.ChannelID,
		&binding.MessageID,
		&binding.Emoji,
		&binding.RoleID,
		&binding.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find reaction role binding for message %d emoji %q: %w", messageID, emoji, err)
	}

	return &binding, nil
}

// FindByChannel returns all bindings on messages in a channel.
func (r *ReactionRoleRepository) FindByChannel(ctx context.Context, channelID int64) ([]*models.ReactionRoleBinding, error) {
	return r.find(ctx,
		`SELECT id, guild_id, channel_id, message_id, emoji, role_id, created_at
		 FROM reaction_role_bindings WHERE channel_id = $1 ORDER BY id`,
		channelID,
	)
}

// FindByGuild returns all bindings in a guild.
func (r *ReactionRoleRepository) FindByGuild(ctx context.Context, guildID int64) ([]*models.ReactionRoleBinding, error) {
	return r.find(ctx,
		`SELECT id, guild_id, channel_id, message_id, emoji, role_id, created_at
		 FROM reaction_role_bindings WHERE guild_id = $1 ORDER BY id`,
		guildID,
	)
}

func (r *ReactionRoleRepository) find(ctx context.Context, query string, args ...any) ([]*models.ReactionRoleBinding, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to find reaction role bindings: %w", err)
	}
	defer rows.Close()

	var bindings []*models.ReactionRoleBinding
	for rows.Next() {
		var binding models.ReactionRoleBinding
		err := rows.Scan(
			&binding.ID,
			&binding.GuildID,
			&binding.ChannelID,
			&binding.MessageID,
			&binding.Emoji,
			&binding.RoleID,
			&binding.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reaction role binding: %w", err)
		}
		bindings = append(bindings, &binding)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reaction role bindings: %w", err)
	}

	return bindings, nil
}
