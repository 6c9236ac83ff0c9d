package repository

import (
	"context"
	"fmt"
	"time"

	"lunabot/database"
	"lunabot/models"

	"github.com/jackc/pgx/v5"
)

// UserConfigRepository implements the UserConfigRepository interface
type UserConfigRepository struct {
	q queryable
}

// NewUserConfigRepository creates a new user config repository
func NewUserConfigRepository(db *database.DB) *UserConfigRepository {
	return &UserConfigRepository{q: db.Pool}
}

// newUserConfigRepositoryWithTx creates a new user config repository with a transaction
func newUserConfigRepositoryWithTx(tx queryable) *UserConfigRepository {
	return &UserConfigRepository{q: tx}
}

// GetOrCreate retrieves a user's config or persists and returns the
// default row (zero balance, claim immediately available).
func (r *UserConfigRepository) GetOrCreate(ctx context.Context, userID int64) (*models.UserConfig, error) {
	query := `
		SELECT user_id, balance, next_claim_at, temp_channel_name, created_at, updated_at
		FROM user_configs
		WHERE user_id = $1
	`

	var user models.UserConfig
	err := r.q.QueryRow(ctx, query, userID).Scan(
		&user.UserID,
		&user.Balance,
		&user.NextClaimAt,
		&user.TempChannelName,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err == nil {
		return &user, nil
	}

	if err != pgx.ErrNoRows {
		return nil, fmt.Errorf("failed to get user config for user %d: %w", userID, err)
	}

	insertQuery := `
		INSERT INTO user_configs (user_id)
		VALUES ($1)
		ON CONFLICT (user_id) DO UPDATE SET updated_at = user_configs.updated_at
		RETURNING user_id, balance, next_claim_at, temp_channel_name, created_at, updated_at
	`

	err = r.q.QueryRow(ctx, insertQuery, userID).Scan(
		&user.UserID,
		&user.Balance,
		&user.NextClaimAt,
		&user.TempChannelName,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to create user config for user %d: %w", userID, err)
	}

	return &user, nil
}

// AddBalance atomically applies balance += delta and returns the updated
// config. A delta that would drive the balance negative is rejected with
// InsufficientFundsError and leaves the balance unchanged.
func (r *UserConfigRepository) AddBalance(ctx context.Context, userID int64, delta int64) (*models.UserConfig, error) {
	// Row must exist before the conditional update can distinguish
	// not-found from insufficient funds.
	existing, err := r.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	query := `
		UPDATE user_configs
		SET balance = balance + $1, updated_at = NOW()
		WHERE user_id = $2 AND balance + $1 >= 0
		RETURNING user_id, balance, next_claim_at, temp_channel_name, created_at, updated_at
	`

	var user models.UserConfig
	err = r.q.QueryRow(ctx, query, delta, userID).Scan(
		&user.UserID,
		&user.Balance,
		&user.NextClaimAt,
		&user.TempChannelName,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, &models.InsufficientFundsError{
			UserID: userID,
			Have:   existing.Balance,
			Need:   -delta,
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to add balance for user %d: %w", userID, err)
	}

	return &user, nil
}

// SetBalance overwrites a user's balance. Developer tooling only.
func (r *UserConfigRepository) SetBalance(ctx context.Context, userID int64, balance int64) error {
	if balance < 0 {
		return &models.InvalidAmountError{Amount: balance}
	}

	if _, err := r.GetOrCreate(ctx, userID); err != nil {
		return err
	}

	_, err := r.q.Exec(ctx,
		`UPDATE user_configs SET balance = $1, updated_at = NOW() WHERE user_id = $2`,
		balance, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to set balance for user %d: %w", userID, err)
	}

	return nil
}

// SetNextClaim sets the timestamp before which a daily claim is rejected.
func (r *UserConfigRepository) SetNextClaim(ctx context.Context, userID int64, at time.Time) error {
	if _, err := r.GetOrCreate(ctx, userID); err != nil {
		return err
	}

	_, err := r.q.Exec(ctx,
		`UPDATE user_configs SET next_claim_at = $1, updated_at = NOW() WHERE user_id = $2`,
		at, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to set next claim for user %d: %w", userID, err)
	}

	return nil
}

// SetTempChannelName sets the name override used when the voice
// lifecycle creates a channel for this user. nil clears the override.
func (r *UserConfigRepository) SetTempChannelName(ctx context.Context, userID int64, name *string) error {
	if _, err := r.GetOrCreate(ctx, userID); err != nil {
		return err
	}

	_, err := r.q.Exec(ctx,
		`UPDATE user_configs SET temp_channel_name = $1, updated_at = NOW() WHERE user_id = $2`,
		name, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to set temp channel name for user %d: %w", userID, err)
	}

	return nil
}

// ListAllUserIDs returns every known user ID, for leaderboard scans.
func (r *UserConfigRepository) ListAllUserIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.q.Query(ctx, `SELECT user_id FROM user_configs ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list user IDs: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user ID: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate user IDs: %w", err)
	}

	return ids, nil
}

// GetTopBalances returns the highest balances in descending order.
func (r *UserConfigRepository) GetTopBalances(ctx context.Context, limit int) ([]*models.LeaderboardEntry, error) {
	rows, err := r.q.Query(ctx,
		`SELECT user_id, balance FROM user_configs ORDER BY balance DESC, user_id ASC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get top balances: %w", err)
	}
	defer rows.Close()

	var entries []*models.LeaderboardEntry
	for rows.Next() {
		var entry models.LeaderboardEntry
		if err := rows.Scan(&entry.UserID, &entry.Balance); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard entry: %w", err)
		}
		entry.Rank = len(entries) + 1
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate leaderboard entries: %w", err)
	}

	return entries, nil
}
