package service

import (
	"context"
	"errors"
	"testing"

	"lunabot/events"
	"lunabot/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newVoiceMocks(ctx context.Context) (*MockUnitOfWork, *MockUnitOfWorkFactory, *MockUserConfigRepository, *MockTempChannelRepository, *MockChannelPlatform) {
	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUserRepo := new(MockUserConfigRepository)
	mockTempRepo := new(MockTempChannelRepository)
	mockPlatform := new(MockChannelPlatform)

	mockUoW.SetRepositories(nil, mockUserRepo, mockTempRepo, nil)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	return mockUoW, mockFactory, mockUserRepo, mockTempRepo, mockPlatform
}

func TestVoiceLifecycle_HubJoinSpawnsChannel(t *testing.T) {
	ctx := context.Background()
	mockUoW, mockFactory, mockUserRepo, mockTempRepo, mockPlatform := newVoiceMocks(ctx)

	manager := NewVoiceLifecycleService(mockFactory, staticHubLookup{hub: 100}, mockPlatform)

	mockUserRepo.On("GetOrCreate", ctx, int64(5)).
		Return(&models.UserConfig{UserID: 5}, nil)
	mockPlatform.On("CreateVoiceChannel", ctx, int64(1), "Luna's channel").Return(int64(200), nil)
	mockTempRepo.On("Create", ctx, mock.MatchedBy(func(ch *models.TempVoiceChannel) bool {
		return ch.ChannelID == 200 && ch.GuildID == 1 && ch.OwnerID == 5
	})).Return(nil)
	mockPlatform.On("MoveMember", ctx, int64(1), int64(5), int64(200)).Return(nil)

	err := manager.HandleVoiceStateUpdate(ctx, VoiceStateUpdate{
		GuildID:        1,
		UserID:         5,
		AfterChannelID: 100,
		DisplayName:    "Luna",
	})

	require.NoError(t, err)

	published := mockUoW.PublishedEvents()
	require.Len(t, published, 1)
	created := published[0].(events.TempChannelCreatedEvent)
	assert.Equal(t, int64(200), created.ChannelID)
	assert.Equal(t, int64(5), created.OwnerID)

	mockPlatform.AssertExpectations(t)
	mockTempRepo.AssertExpectations(t)
}

func TestVoiceLifecycle_HubJoinUsesNameOverride(t *testing.T) {
	ctx := context.Background()
	_, mockFactory, mockUserRepo, mockTempRepo, mockPlatform := newVoiceMocks(ctx)

	manager := NewVoiceLifecycleService(mockFactory, staticHubLookup{hub: 100}, mockPlatform)

	override := "the moon base"
	mockUserRepo.On("GetOrCreate", ctx, int64(5)).
		Return(&models.UserConfig{UserID: 5, TempChannelName: &override}, nil)
	mockPlatform.On("CreateVoiceChannel", ctx, int64(1), "the moon base").Return(int64(200), nil)
	mockTempRepo.On("Create", ctx, mock.Anything).Return(nil)
	mockPlatform.On("MoveMember", ctx, int64(1), int64(5), int64(200)).Return(nil)

	err := manager.HandleVoiceStateUpdate(ctx, VoiceStateUpdate{
		GuildID:        1,
		UserID:         5,
		AfterChannelID: 100,
		DisplayName:    "Luna",
	})

	require.NoError(t, err)
	mockPlatform.AssertExpectations(t)
}

func TestVoiceLifecycle_SameChannelUpdateIsNoop(t *testing.T) {
	ctx := context.Background()
	mockFactory := new(MockUnitOfWorkFactory)
	mockPlatform := new(MockChannelPlatform)

	manager := NewVoiceLifecycleService(mockFactory, staticHubLookup{hub: 100}, mockPlatform)

	// Mute/deafen toggles arrive with before == after
	err := manager.HandleVoiceStateUpdate(ctx, VoiceStateUpdate{
		GuildID:         1,
		UserID:          5,
		BeforeChannelID: 200,
		AfterChannelID:  200,
	})

	require.NoError(t, err)
	mockFactory.AssertNotCalled(t, "Create")
	mockPlatform.AssertNotCalled(t, "ChannelMemberCount", int64(1), int64(200))
}

func TestVoiceLifecycle_LeaveEmptyChannelTearsDownOnce(t *testing.T) {
	ctx := context.Background()
	mockUoW, mockFactory, _, mockTempRepo, mockPlatform := newVoiceMocks(ctx)

	manager := NewVoiceLifecycleService(mockFactory, staticHubLookup{hub: 100}, mockPlatform)

	mockTempRepo.On("ListAll", ctx).Return([]*models.TempVoiceChannel{
		{ChannelID: 200, GuildID: 1, OwnerID: 5},
	}, nil)
	require.NoError(t, manager.WarmLiveSet(ctx))

	mockPlatform.On("ChannelMemberCount", int64(1), int64(200)).Return(0, nil)
	mockPlatform.On("DeleteChannel", ctx, int64(200)).Return(nil).Once()
	mockTempRepo.On("Delete", ctx, int64(200)).Return(nil).Once()

	err := manager.HandleVoiceStateUpdate(ctx, VoiceStateUpdate{
		GuildID:         1,
		UserID:          5,
		BeforeChannelID: 200,
		AfterChannelID:  0,
	})
	require.NoError(t, err)

	// A second leave event for the same channel finds it unregistered
	err = manager.HandleVoiceStateUpdate(ctx, VoiceStateUpdate{
		GuildID:         1,
		UserID:          6,
		BeforeChannelID: 200,
		AfterChannelID:  0,
	})
	require.NoError(t, err)

	published := mockUoW.PublishedEvents()
	require.Len(t, published, 1)
	deleted := published[0].(events.TempChannelDeletedEvent)
	assert.Equal(t, int64(200), deleted.ChannelID)

	mockPlatform.AssertExpectations(t)
	mockTempRepo.AssertExpectations(t)
}

func TestVoiceLifecycle_OccupiedChannelSurvivesLeave(t *testing.T) {
	ctx := context.Background()
	_, mockFactory, _, mockTempRepo, mockPlatform := newVoiceMocks(ctx)

	manager := NewVoiceLifecycleService(mockFactory, staticHubLookup{hub: 100}, mockPlatform)

	mockTempRepo.On("ListAll", ctx).Return([]*models.TempVoiceChannel{
		{ChannelID: 200, GuildID: 1, OwnerID: 5},
	}, nil)
	require.NoError(t, manager.WarmLiveSet(ctx))

	mockPlatform.On("ChannelMemberCount", int64(1), int64(200)).Return(2, nil)

	err := manager.HandleVoiceStateUpdate(ctx, VoiceStateUpdate{
		GuildID:         1,
		UserID:          5,
		BeforeChannelID: 200,
		AfterChannelID:  0,
	})

	require.NoError(t, err)
	mockPlatform.AssertNotCalled(t, "DeleteChannel", ctx, int64(200))
}

func TestVoiceLifecycle_DeleteFailureKeepsRegistrationForRetry(t *testing.T) {
	ctx := context.Background()
	_, mockFactory, _, mockTempRepo, mockPlatform := newVoiceMocks(ctx)

	manager := NewVoiceLifecycleService(mockFactory, staticHubLookup{hub: 100}, mockPlatform)

	mockTempRepo.On("ListAll", ctx).Return([]*models.TempVoiceChannel{
		{ChannelID: 200, GuildID: 1, OwnerID: 5},
	}, nil)
	require.NoError(t, manager.WarmLiveSet(ctx))

	mockPlatform.On("ChannelMemberCount", int64(1), int64(200)).Return(0, nil)
	mockPlatform.On("DeleteChannel", ctx, int64(200)).
		Return(errors.New("rate limited")).Once()
	mockPlatform.On("DeleteChannel", ctx, int64(200)).Return(nil).Once()
	mockTempRepo.On("Delete", ctx, int64(200)).Return(nil).Once()

	update := VoiceStateUpdate{GuildID: 1, UserID: 5, BeforeChannelID: 200}

	// First attempt fails on the platform; the registration survives
	require.NoError(t, manager.HandleVoiceStateUpdate(ctx, update))

	// The next voice event in the guild retries and succeeds
	require.NoError(t, manager.HandleVoiceStateUpdate(ctx, update))

	mockPlatform.AssertExpectations(t)
	mockTempRepo.AssertExpectations(t)
}

func TestVoiceLifecycle_PersistFailureRollsBackChannel(t *testing.T) {
	ctx := context.Background()
	mockUoW, mockFactory, mockUserRepo, mockTempRepo, mockPlatform := newVoiceMocks(ctx)

	manager := NewVoiceLifecycleService(mockFactory, staticHubLookup{hub: 100}, mockPlatform)

	mockUserRepo.On("GetOrCreate", ctx, int64(5)).
		Return(&models.UserConfig{UserID: 5}, nil)
	mockPlatform.On("CreateVoiceChannel", ctx, int64(1), "Luna's channel").Return(int64(200), nil)
	mockTempRepo.On("Create", ctx, mock.Anything).Return(errors.New("connection reset"))
	mockPlatform.On("DeleteChannel", ctx, int64(200)).Return(nil)

	// The failure is logged and recovered; event callbacks have no one
	// to report to
	err := manager.HandleVoiceStateUpdate(ctx, VoiceStateUpdate{
		GuildID:        1,
		UserID:         5,
		AfterChannelID: 100,
		DisplayName:    "Luna",
	})

	require.NoError(t, err)
	mockPlatform.AssertNotCalled(t, "MoveMember", ctx, int64(1), int64(5), int64(200))
	assert.Empty(t, mockUoW.PublishedEvents())
}

func TestVoiceLifecycle_SweepOrphans(t *testing.T) {
	ctx := context.Background()
	_, mockFactory, _, mockTempRepo, mockPlatform := newVoiceMocks(ctx)

	manager := NewVoiceLifecycleService(mockFactory, staticHubLookup{hub: 100}, mockPlatform)

	mockTempRepo.On("ListAll", ctx).Return([]*models.TempVoiceChannel{
		{ChannelID: 200, GuildID: 1, OwnerID: 5}, // empty, swept
		{ChannelID: 201, GuildID: 1, OwnerID: 6}, // occupied, kept
		{ChannelID: 202, GuildID: 1, OwnerID: 7}, // already gone on platform
	}, nil)

	mockPlatform.On("ChannelMemberCount", int64(1), int64(200)).Return(0, nil)
	mockPlatform.On("ChannelMemberCount", int64(1), int64(201)).Return(3, nil)
	mockPlatform.On("ChannelMemberCount", int64(1), int64(202)).
		Return(0, &models.PlatformOperationError{Op: "member count", Err: models.ErrPlatformNotFound})

	mockPlatform.On("DeleteChannel", ctx, int64(200)).Return(nil)
	mockPlatform.On("DeleteChannel", ctx, int64(202)).
		Return(&models.PlatformOperationError{Op: "delete channel", Err: models.ErrPlatformNotFound})

	mockTempRepo.On("Delete", ctx, int64(200)).Return(nil)
	mockTempRepo.On("Delete", ctx, int64(202)).Return(nil)

	err := manager.SweepOrphans(ctx)

	require.NoError(t, err)
	mockPlatform.AssertNotCalled(t, "DeleteChannel", ctx, int64(201))
	mockTempRepo.AssertExpectations(t)
}

func TestVoiceLifecycle_SetChannelNameOverride(t *testing.T) {
	ctx := context.Background()
	_, mockFactory, mockUserRepo, _, mockPlatform := newVoiceMocks(ctx)

	manager := NewVoiceLifecycleService(mockFactory, staticHubLookup{hub: 100}, mockPlatform)

	name := "the moon base"
	mockUserRepo.On("GetOrCreate", ctx, int64(5)).
		Return(&models.UserConfig{UserID: 5}, nil)
	mockUserRepo.On("SetTempChannelName", ctx, int64(5), &name).Return(nil)

	err := manager.SetChannelNameOverride(ctx, 5, &name)

	require.NoError(t, err)
	mockUserRepo.AssertExpectations(t)
}

func TestVoiceLifecycle_ClearChannelNameOverride(t *testing.T) {
	ctx := context.Background()
	_, mockFactory, mockUserRepo, _, mockPlatform := newVoiceMocks(ctx)

	manager := NewVoiceLifecycleService(mockFactory, staticHubLookup{hub: 100}, mockPlatform)

	mockUserRepo.On("GetOrCreate", ctx, int64(5)).
		Return(&models.UserConfig{UserID: 5}, nil)
	mockUserRepo.On("SetTempChannelName", ctx, int64(5), (*string)(nil)).Return(nil)

	err := manager.SetChannelNameOverride(ctx, 5, nil)

	require.NoError(t, err)
	mockUserRepo.AssertExpectations(t)
}
