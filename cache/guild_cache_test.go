package cache

import (
	"context"
	"testing"

	"lunabot/events"
	"lunabot/models"
	"lunabot/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubConfigService implements just the parts of GuildConfigService the
// warm-up touches.
type stubConfigService struct {
	service.GuildConfigService
	configs map[int64]*models.GuildConfig
}

func (s *stubConfigService) ListGuildIDs(ctx context.Context) ([]int64, error) {
	ids := make([]int64, 0, len(s.configs))
	for id := range s.configs {
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *stubConfigService) GetOrDefault(ctx context.Context, guildID int64) (*models.GuildConfig, error) {
	return s.configs[guildID], nil
}

func TestGuildCache_GetUnknownGuildReturnsDefaults(t *testing.T) {
	cache := NewGuildCache()

	view := cache.Get(42)

	assert.Equal(t, int64(42), view.GuildID)
	assert.Zero(t, view.WelcomeChannelID)
	assert.Zero(t, view.VoiceHubChannelID)
	assert.True(t, view.ReactionToggle)
}

func TestGuildCache_Warm(t *testing.T) {
	hubID := int64(100)
	stub := &stubConfigService{configs: map[int64]*models.GuildConfig{
		1: {GuildID: 1, VoiceHubChannelID: &hubID, ReactionToggle: true},
		2: {GuildID: 2, ReactionToggle: false},
	}}

	cache := NewGuildCache()
	require.NoError(t, cache.Warm(context.Background(), stub))

	assert.Equal(t, int64(100), cache.VoiceHub(1))
	assert.True(t, cache.ReactionsEnabled(1))
	assert.Zero(t, cache.VoiceHub(2))
	assert.False(t, cache.ReactionsEnabled(2))
}

func TestGuildCache_ApplyOverwritesView(t *testing.T) {
	cache := NewGuildCache()

	welcomeID := int64(777)
	cache.Apply(events.GuildConfigUpdatedEvent{
		GuildID:          42,
		WelcomeChannelID: &welcomeID,
		ReactionToggle:   false,
	})

	view := cache.Get(42)
	assert.Equal(t, int64(777), view.WelcomeChannelID)
	assert.Zero(t, view.VoiceHubChannelID)
	assert.False(t, view.ReactionToggle)
	assert.Equal(t, int64(777), cache.WelcomeChannel(42))

	// A later update clears the welcome channel again
	cache.Apply(events.GuildConfigUpdatedEvent{GuildID: 42, ReactionToggle: true})
	assert.Zero(t, cache.WelcomeChannel(42))
	assert.True(t, cache.ReactionsEnabled(42))
}

func TestGuildCache_TypedSetters(t *testing.T) {
	cache := NewGuildCache()

	cache.SetWelcomeChannel(42, 777)
	cache.SetVoiceHub(42, 100)
	cache.SetReactionToggle(42, false)

	view := cache.Get(42)
	assert.Equal(t, int64(777), view.WelcomeChannelID)
	assert.Equal(t, int64(100), view.VoiceHubChannelID)
	assert.False(t, view.ReactionToggle)

	// Zero clears a channel without touching the other fields
	cache.SetVoiceHub(42, 0)
	assert.Zero(t, cache.VoiceHub(42))
	assert.Equal(t, int64(777), cache.WelcomeChannel(42))
}
