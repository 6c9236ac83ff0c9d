package repository

import (
	"context"
	"testing"

	"lunabot/models"
	"lunabot/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuildConfigRepository_GetOrCreate(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewGuildConfigRepository(testDB.DB)
	ctx := context.Background()

	t.Run("creates default row for unknown guild", func(t *testing.T) {
		cfg, err := repo.GetOrCreate(ctx, 42)
		require.NoError(t, err)
		require.NotNil(t, cfg)

		assert.Equal(t, int64(42), cfg.GuildID)
		assert.Nil(t, cfg.WelcomeChannelID)
		assert.Nil(t, cfg.VoiceHubChannelID)
		assert.True(t, cfg.ReactionToggle)
		assert.False(t, cfg.CreatedAt.IsZero())
	})

	t.Run("repeated reads return the same row", func(t *testing.T) {
		first, err := repo.GetOrCreate(ctx, 43)
		require.NoError(t, err)

		second, err := repo.GetOrCreate(ctx, 43)
		require.NoError(t, err)

		assert.Equal(t, first.GuildID, second.GuildID)
		assert.Equal(t, first.CreatedAt, second.CreatedAt)

		ids, err := repo.ListGuildIDs(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, int64(43))
	})
}

func TestGuildConfigRepository_Update(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewGuildConfigRepository(testDB.DB)
	ctx := context.Background()

	t.Run("round-trips all settable fields", func(t *testing.T) {
		cfg, err := repo.GetOrCreate(ctx, 42)
		require.NoError(t, err)

		welcomeID := int64(777)
		hubID := int64(100)
		cfg.WelcomeChannelID = &welcomeID
		cfg.VoiceHubChannelID = &hubID
		cfg.ReactionToggle = false

		require.NoError(t, repo.Update(ctx, cfg))

		loaded, err := repo.GetOrCreate(ctx, 42)
		require.NoError(t, err)
		require.NotNil(t, loaded.WelcomeChannelID)
		assert.Equal(t, int64(777), *loaded.WelcomeChannelID)
		require.NotNil(t, loaded.VoiceHubChannelID)
		assert.Equal(t, int64(100), *loaded.VoiceHubChannelID)
		assert.False(t, loaded.ReactionToggle)
	})

	t.Run("clears nullable channels", func(t *testing.T) {
		cfg, err := repo.GetOrCreate(ctx, 42)
		require.NoError(t, err)

		cfg.WelcomeChannelID = nil
		require.NoError(t, repo.Update(ctx, cfg))

		loaded, err := repo.GetOrCreate(ctx, 42)
		require.NoError(t, err)
		assert.Nil(t, loaded.WelcomeChannelID)
	})

	t.Run("unknown guild returns NotFoundError", func(t *testing.T) {
		ghost := models.NewDefaultGuildConfig(999999)
		err := repo.Update(ctx, ghost)

		var nfErr *models.NotFoundError
		require.ErrorAs(t, err, &nfErr)
	})
}

func TestGuildConfigRepository_Autoroles(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewGuildConfigRepository(testDB.DB)
	ctx := context.Background()

	_, err := repo.GetOrCreate(ctx, 42)
	require.NoError(t, err)

	t.Run("add is idempotent", func(t *testing.T) {
		require.NoError(t, repo.AddAutorole(ctx, 42, 900))
		require.NoError(t, repo.AddAutorole(ctx, 42, 900))
		require.NoError(t, repo.AddAutorole(ctx, 42, 901))

		roles, err := repo.ListAutoroles(ctx, 42)
		require.NoError(t, err)
		assert.ElementsMatch(t, []int64{900, 901}, roles)
	})

	t.Run("remove deletes exactly one role", func(t *testing.T) {
		require.NoError(t, repo.RemoveAutorole(ctx, 42, 900))

		roles, err := repo.ListAutoroles(ctx, 42)
		require.NoError(t, err)
		assert.ElementsMatch(t, []int64{901}, roles)
	})

	t.Run("removing an absent role returns NotFoundError", func(t *testing.T) {
		err := repo.RemoveAutorole(ctx, 42, 900)

		var nfErr *models.NotFoundError
		require.ErrorAs(t, err, &nfErr)
	})
}
