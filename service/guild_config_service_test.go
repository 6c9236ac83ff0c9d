package service

import (
	"context"
	"testing"

	"lunabot/events"
	"lunabot/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newGuildConfigMocks(ctx context.Context) (*MockUnitOfWork, *MockUnitOfWorkFactory, *MockGuildConfigRepository) {
	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockGuildRepo := new(MockGuildConfigRepository)

	mockUoW.SetRepositories(mockGuildRepo, nil, nil, nil)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	return mockUoW, mockFactory, mockGuildRepo
}

func TestGuildConfigService_GetOrDefault(t *testing.T) {
	ctx := context.Background()
	_, mockFactory, mockGuildRepo := newGuildConfigMocks(ctx)

	service := NewGuildConfigService(mockFactory)

	stored := models.NewDefaultGuildConfig(42)
	mockGuildRepo.On("GetOrCreate", ctx, int64(42)).Return(stored, nil)

	cfg, err := service.GetOrDefault(ctx, 42)

	require.NoError(t, err)
	assert.Equal(t, int64(42), cfg.GuildID)
	assert.Nil(t, cfg.WelcomeChannelID)
	assert.Nil(t, cfg.VoiceHubChannelID)
	assert.True(t, cfg.ReactionToggle)

	mockGuildRepo.AssertExpectations(t)
}

func TestGuildConfigService_SetWelcomeChannel_PublishesUpdate(t *testing.T) {
	ctx := context.Background()
	mockUoW, mockFactory, mockGuildRepo := newGuildConfigMocks(ctx)

	service := NewGuildConfigService(mockFactory)

	mockGuildRepo.On("GetOrCreate", ctx, int64(42)).Return(models.NewDefaultGuildConfig(42), nil)
	mockGuildRepo.On("Update", ctx, mock.MatchedBy(func(cfg *models.GuildConfig) bool {
		return cfg.GuildID == 42 && cfg.WelcomeChannelID != nil && *cfg.WelcomeChannelID == 777
	})).Return(nil)

	channelID := int64(777)
	err := service.SetWelcomeChannel(ctx, 42, &channelID)

	require.NoError(t, err)

	published := mockUoW.PublishedEvents()
	require.Len(t, published, 1)
	update := published[0].(events.GuildConfigUpdatedEvent)
	assert.Equal(t, int64(42), update.GuildID)
	require.NotNil(t, update.WelcomeChannelID)
	assert.Equal(t, int64(777), *update.WelcomeChannelID)
	assert.True(t, update.ReactionToggle)

	mockGuildRepo.AssertExpectations(t)
	mockUoW.AssertExpectations(t)
}

func TestGuildConfigService_UpdateFields(t *testing.T) {
	ctx := context.Background()
	_, mockFactory, mockGuildRepo := newGuildConfigMocks(ctx)

	service := NewGuildConfigService(mockFactory)

	mockGuildRepo.On("GetOrCreate", ctx, int64(42)).Return(models.NewDefaultGuildConfig(42), nil)
	mockGuildRepo.On("Update", ctx, mock.MatchedBy(func(cfg *models.GuildConfig) bool {
		return cfg.VoiceHubChannelID != nil && *cfg.VoiceHubChannelID == 555 && !cfg.ReactionToggle
	})).Return(nil)

	err := service.UpdateFields(ctx, 42, map[string]any{
		"voice_hub_channel_id": int64(555),
		"reaction_toggle":      false,
	})

	require.NoError(t, err)
	mockGuildRepo.AssertExpectations(t)
}

func TestGuildConfigService_UpdateFields_ClearsChannel(t *testing.T) {
	ctx := context.Background()
	_, mockFactory, mockGuildRepo := newGuildConfigMocks(ctx)

	service := NewGuildConfigService(mockFactory)

	channelID := int64(777)
	existing := models.NewDefaultGuildConfig(42)
	existing.WelcomeChannelID = &channelID

	mockGuildRepo.On("GetOrCreate", ctx, int64(42)).Return(existing, nil)
	mockGuildRepo.On("Update", ctx, mock.MatchedBy(func(cfg *models.GuildConfig) bool {
		return cfg.WelcomeChannelID == nil
	})).Return(nil)

	err := service.UpdateFields(ctx, 42, map[string]any{"welcome_channel_id": nil})

	require.NoError(t, err)
	mockGuildRepo.AssertExpectations(t)
}

func TestGuildConfigService_UpdateFields_UnknownField(t *testing.T) {
	ctx := context.Background()
	_, mockFactory, mockGuildRepo := newGuildConfigMocks(ctx)

	service := NewGuildConfigService(mockFactory)

	mockGuildRepo.On("GetOrCreate", ctx, int64(42)).Return(models.NewDefaultGuildConfig(42), nil)

	err := service.UpdateFields(ctx, 42, map[string]any{"prefix": "!"})

	var unknownErr *models.UnknownFieldError
	require.ErrorAs(t, err, &unknownErr)
	assert.Equal(t, "prefix", unknownErr.Field)

	// Nothing is persisted when a field name is rejected
	mockGuildRepo.AssertNotCalled(t, "Update", ctx, mock.Anything)
}

func TestGuildConfigService_AddAutorole_EnsuresGuildRow(t *testing.T) {
	ctx := context.Background()
	_, mockFactory, mockGuildRepo := newGuildConfigMocks(ctx)

	service := NewGuildConfigService(mockFactory)

	mockGuildRepo.On("GetOrCreate", ctx, int64(42)).Return(models.NewDefaultGuildConfig(42), nil)
	mockGuildRepo.On("AddAutorole", ctx, int64(42), int64(900)).Return(nil)

	err := service.AddAutorole(ctx, 42, 900)

	require.NoError(t, err)
	mockGuildRepo.AssertExpectations(t)
}

func TestGuildConfigService_RemoveAutorole_NotFound(t *testing.T) {
	ctx := context.Background()
	_, mockFactory, mockGuildRepo := newGuildConfigMocks(ctx)

	service := NewGuildConfigService(mockFactory)

	notFound := &models.NotFoundError{Kind: "autorole", ID: 900}
	mockGuildRepo.On("RemoveAutorole", ctx, int64(42), int64(900)).Return(notFound)

	err := service.RemoveAutorole(ctx, 42, 900)

	var nfErr *models.NotFoundError
	require.ErrorAs(t, err, &nfErr)
}
