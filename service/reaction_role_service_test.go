package service

import (
	"context"
	"errors"
	"testing"

	"lunabot/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testBotID = int64(999)

func newReactionRoleMocks(ctx context.Context) (*MockUnitOfWorkFactory, *MockReactionRoleRepository, *MockRolePlatform, *MockMessagePlatform) {
	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockBindingRepo := new(MockReactionRoleRepository)
	mockRoles := new(MockRolePlatform)
	mockMessages := new(MockMessagePlatform)

	mockUoW.SetRepositories(nil, nil, nil, mockBindingRepo)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	return mockFactory, mockBindingRepo, mockRoles, mockMessages
}

func TestReactionRoleService_HandleReactionAdd_GrantsBoundRole(t *testing.T) {
	ctx := context.Background()
	mockFactory, mockBindingRepo, mockRoles, mockMessages := newReactionRoleMocks(ctx)

	service := NewReactionRoleService(mockFactory, mockRoles, mockMessages, testBotID)

	binding := &models.ReactionRoleBinding{
		ID: 1, GuildID: 42, ChannelID: 10, MessageID: 500, Emoji: "⭐", RoleID: 900,
	}
	mockBindingRepo.On("FindByMessageAndEmoji", ctx, int64(500), "⭐").Return(binding, nil)
	mockRoles.On("AddRole", ctx, int64(42), int64(5), int64(900)).Return(nil)

	err := service.HandleReactionAdd(ctx, ReactionEvent{
		GuildID: 42, ChannelID: 10, MessageID: 500, UserID: 5, Emoji: "⭐",
	})

	require.NoError(t, err)
	mockRoles.AssertExpectations(t)
}

func TestReactionRoleService_HandleReactionRemove_RevokesBoundRole(t *testing.T) {
	ctx := context.Background()
	mockFactory, mockBindingRepo, mockRoles, mockMessages := newReactionRoleMocks(ctx)

	service := NewReactionRoleService(mockFactory, mockRoles, mockMessages, testBotID)

	binding := &models.ReactionRoleBinding{
		ID: 1, GuildID: 42, ChannelID: 10, MessageID: 500, Emoji: "⭐", RoleID: 900,
	}
	mockBindingRepo.On("FindByMessageAndEmoji", ctx, int64(500), "⭐").Return(binding, nil)
	mockRoles.On("RemoveRole", ctx, int64(42), int64(5), int64(900)).Return(nil)

	err := service.HandleReactionRemove(ctx, ReactionEvent{
		GuildID: 42, ChannelID: 10, MessageID: 500, UserID: 5, Emoji: "⭐",
	})

	require.NoError(t, err)
	mockRoles.AssertExpectations(t)
}

func TestReactionRoleService_UnboundEmojiMakesNoPlatformCalls(t *testing.T) {
	ctx := context.Background()
	mockFactory, mockBindingRepo, mockRoles, mockMessages := newReactionRoleMocks(ctx)

	service := NewReactionRoleService(mockFactory, mockRoles, mockMessages, testBotID)

	mockBindingRepo.On("FindByMessageAndEmoji", ctx, int64(500), "🎲").Return(nil, nil)

	err := service.HandleReactionAdd(ctx, ReactionEvent{
		GuildID: 42, ChannelID: 10, MessageID: 500, UserID: 5, Emoji: "🎲",
	})

	require.NoError(t, err)
	mockRoles.AssertNotCalled(t, "AddRole", ctx, mock.Anything, mock.Anything, mock.Anything)
}

func TestReactionRoleService_IgnoresOwnReactions(t *testing.T) {
	ctx := context.Background()
	mockFactory := new(MockUnitOfWorkFactory)
	mockRoles := new(MockRolePlatform)
	mockMessages := new(MockMessagePlatform)

	service := NewReactionRoleService(mockFactory, mockRoles, mockMessages, testBotID)

	// The bot seeds its own reaction on bound messages; that must not
	// loop back into a role grant.
	err := service.HandleReactionAdd(ctx, ReactionEvent{
		GuildID: 42, ChannelID: 10, MessageID: 500, UserID: testBotID, Emoji: "⭐",
	})

	require.NoError(t, err)
	mockFactory.AssertNotCalled(t, "Create")
}

func TestReactionRoleService_RoleFailureKeepsBinding(t *testing.T) {
	ctx := context.Background()
	mockFactory, mockBindingRepo, mockRoles, mockMessages := newReactionRoleMocks(ctx)

	service := NewReactionRoleService(mockFactory, mockRoles, mockMessages, testBotID)

	binding := &models.ReactionRoleBinding{
		ID: 1, GuildID: 42, ChannelID: 10, MessageID: 500, Emoji: "⭐", RoleID: 900,
	}
	mockBindingRepo.On("FindByMessageAndEmoji", ctx, int64(500), "⭐").Return(binding, nil)
	mockRoles.On("AddRole", ctx, int64(42), int64(5), int64(900)).
		Return(&models.PlatformOperationError{Op: "add role", Err: errors.New("unknown role")})

	err := service.HandleReactionAdd(ctx, ReactionEvent{
		GuildID: 42, ChannelID: 10, MessageID: 500, UserID: 5, Emoji: "⭐",
	})

	// The grant failure is logged, not propagated, and the binding stays
	require.NoError(t, err)
	mockBindingRepo.AssertNotCalled(t, "DeleteByID", ctx, int64(1))
}

func TestReactionRoleService_CreateBinding(t *testing.T) {
	ctx := context.Background()
	mockFactory, mockBindingRepo, mockRoles, mockMessages := newReactionRoleMocks(ctx)

	service := NewReactionRoleService(mockFactory, mockRoles, mockMessages, testBotID)

	mockMessages.On("MessageExists", ctx, int64(10), int64(500)).Return(nil)
	mockBindingRepo.On("Create", ctx, mock.MatchedBy(func(b *models.ReactionRoleBinding) bool {
		return b.GuildID == 42 && b.MessageID == 500 && b.Emoji == "⭐" && b.RoleID == 900
	})).Return(nil)
	mockMessages.On("AddReaction", ctx, int64(10), int64(500), "⭐").Return(nil)

	binding, err := service.CreateBinding(ctx, 42, 10, 500, "⭐", 900)

	require.NoError(t, err)
	assert.Equal(t, int64(900), binding.RoleID)
	mockMessages.AssertExpectations(t)
	mockBindingRepo.AssertExpectations(t)
}

func TestReactionRoleService_CreateBinding_MissingMessage(t *testing.T) {
	ctx := context.Background()
	mockFactory, mockBindingRepo, mockRoles, mockMessages := newReactionRoleMocks(ctx)

	service := NewReactionRoleService(mockFactory, mockRoles, mockMessages, testBotID)

	mockMessages.On("MessageExists", ctx, int64(10), int64(500)).
		Return(&models.PlatformOperationError{Op: "fetch message", Err: models.ErrPlatformNotFound})

	binding, err := service.CreateBinding(ctx, 42, 10, 500, "⭐", 900)

	assert.Nil(t, binding)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrPlatformNotFound)
	mockBindingRepo.AssertNotCalled(t, "Create", ctx, mock.Anything)
}

func TestReactionRoleService_RemoveBinding_NotFound(t *testing.T) {
	ctx := context.Background()
	mockFactory, mockBindingRepo, mockRoles, mockMessages := newReactionRoleMocks(ctx)

	service := NewReactionRoleService(mockFactory, mockRoles, mockMessages, testBotID)

	mockBindingRepo.On("FindByMessageAndEmoji", ctx, int64(500), "⭐").Return(nil, nil)

	err := service.RemoveBinding(ctx, 500, "⭐")

	var nfErr *models.NotFoundError
	require.ErrorAs(t, err, &nfErr)
	mockBindingRepo.AssertNotCalled(t, "DeleteByID", ctx, mock.Anything)
}
