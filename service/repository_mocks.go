package service

import (
	"context"
	"sync"
	"time"

	"lunabot/events"
	"lunabot/models"

	"github.com/stretchr/testify/mock"
)

// MockGuildConfigRepository is a mock implementation of GuildConfigRepository
type MockGuildConfigRepository struct {
	mock.Mock
}

func (m *MockGuildConfigRepository) GetOrCreate(ctx context.Context, guildID int64) (*models.GuildConfig, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GuildConfig), args.Error(1)
}

func (m *MockGuildConfigRepository) Update(ctx context.Context, cfg *models.GuildConfig) error {
	args := m.Called(ctx, cfg)
	return args.Error(0)
}

func (m *MockGuildConfigRepository) ListGuildIDs(ctx context.Context) ([]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockGuildConfigRepository) AddAutorole(ctx context.Context, guildID, roleID int64) error {
	args := m.Called(ctx, guildID, roleID)
	return args.Error(0)
}

func (m *MockGuildConfigRepository) RemoveAutorole(ctx context.Context, guildID, roleID int64) error {
	args := m.Called(ctx, guildID, roleID)
	return args.Error(0)
}

func (m *MockGuildConfigRepository) ListAutoroles(ctx context.Context, guildID int64) ([]int64, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

// MockUserConfigRepository is a mock implementation of UserConfigRepository
type MockUserConfigRepository struct {
	mock.Mock
}

func (m *MockUserConfigRepository) GetOrCreate(ctx context.Context, userID int64) (*models.UserConfig, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserConfig), args.Error(1)
}

func (m *MockUserConfigRepository) AddBalance(ctx context.Context, userID int64, delta int64) (*models.UserConfig, error) {
	args := m.Called(ctx, userID, delta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserConfig), args.Error(1)
}

func (m *MockUserConfigRepository) SetBalance(ctx context.Context, userID int64, balance int64) error {
	args := m.Called(ctx, userID, balance)
	return args.Error(0)
}

func (m *MockUserConfigRepository) SetNextClaim(ctx context.Context, userID int64, at time.Time) error {
	args := m.Called(ctx, userID, at)
	return args.Error(0)
}

func (m *MockUserConfigRepository) SetTempChannelName(ctx context.Context, userID int64, name *string) error {
	args := m.Called(ctx, userID, name)
	return args.Error(0)
}

func (m *MockUserConfigRepository) ListAllUserIDs(ctx context.Context) ([]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockUserConfigRepository) GetTopBalances(ctx context.Context, limit int) ([]*models.LeaderboardEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.LeaderboardEntry), args.Error(1)
}

// MockTempChannelRepository is a mock implementation of TempChannelRepository
type MockTempChannelRepository struct {
	mock.Mock
}

func (m *MockTempChannelRepository) Create(ctx context.Context, ch *models.TempVoiceChannel) error {
	args := m.Called(ctx, ch)
	return args.Error(0)
}

func (m *MockTempChannelRepository) Delete(ctx context.Context, channelID int64) error {
	args := m.Called(ctx, channelID)
	return args.Error(0)
}

func (m *MockTempChannelRepository) GetByID(ctx context.Context, channelID int64) (*models.TempVoiceChannel, error) {
	args := m.Called(ctx, channelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TempVoiceChannel), args.Error(1)
}

func (m *MockTempChannelRepository) ListByGuild(ctx context.Context, guildID int64) ([]*models.TempVoiceChannel, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.TempVoiceChannel), args.Error(1)
}

func (m *MockTempChannelRepository) ListAll(ctx context.Context) ([]*models.TempVoiceChannel, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.TempVoiceChannel), args.Error(1)
}

// MockReactionRoleRepository is a mock implementation of ReactionRoleRepository
type MockReactionRoleRepository struct {
	mock.Mock
}

func (m *MockReactionRoleRepository) Create(ctx context.Context, binding *models.ReactionRoleBinding) error {
	args := m.Called(ctx, binding)
	return args.Error(0)
}

func (m *MockReactionRoleRepository) DeleteByID(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockReactionRoleRepository) FindByMessageAndEmoji(ctx context.Context, messageID int64, emoji string) (*models.ReactionRoleBinding, error) {
	args := m.Called(ctx, messageID, emoji)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ReactionRoleBinding), args.Error(1)
}

func (m *MockReactionRoleRepository) FindByChannel(ctx context.Context, channelID int64) ([]*models.ReactionRoleBinding, error) {
	args := m.Called(ctx, channelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ReactionRoleBinding), args.Error(1)
}

func (m *MockReactionRoleRepository) FindByGuild(ctx context.Context, guildID int64) ([]*models.ReactionRoleBinding, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ReactionRoleBinding), args.Error(1)
}

// RecordingEventBus collects published events for assertions.
type RecordingEventBus struct {
	mu     sync.Mutex
	Events []events.Event
}

func (b *RecordingEventBus) Publish(e events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Events = append(b.Events, e)
}

func (b *RecordingEventBus) Published() []events.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]events.Event, len(b.Events))
	copy(out, b.Events)
	return out
}

// MockUnitOfWork is a mock implementation of UnitOfWork. Repositories
// are injected with SetRepositories rather than expectations since
// the getters are trivial.
type MockUnitOfWork struct {
	mock.Mock

	guildConfigRepo  GuildConfigRepository
	userConfigRepo   UserConfigRepository
	tempChannelRepo  TempChannelRepository
	reactionRoleRepo ReactionRoleRepository
	eventBus         *RecordingEventBus
}

func (m *MockUnitOfWork) SetRepositories(
	guildConfigRepo GuildConfigRepository,
	userConfigRepo UserConfigRepository,
	tempChannelRepo TempChannelRepository,
	reactionRoleRepo ReactionRoleRepository,
) {
	m.guildConfigRepo = guildConfigRepo
	m.userConfigRepo = userConfigRepo
	m.tempChannelRepo = tempChannelRepo
	m.reactionRoleRepo = reactionRoleRepo
	m.eventBus = &RecordingEventBus{}
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) GuildConfigRepository() GuildConfigRepository {
	return m.guildConfigRepo
}

func (m *MockUnitOfWork) UserConfigRepository() UserConfigRepository {
	return m.userConfigRepo
}

func (m *MockUnitOfWork) TempChannelRepository() TempChannelRepository {
	return m.tempChannelRepo
}

func (m *MockUnitOfWork) ReactionRoleRepository() ReactionRoleRepository {
	return m.reactionRoleRepo
}

func (m *MockUnitOfWork) EventBus() EventPublisher {
	return m.eventBus
}

// PublishedEvents returns the events published through this unit of work.
func (m *MockUnitOfWork) PublishedEvents() []events.Event {
	return m.eventBus.Published()
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}

// MockChannelPlatform is a mock implementation of ChannelPlatform
type MockChannelPlatform struct {
	mock.Mock
}

func (m *MockChannelPlatform) CreateVoiceChannel(ctx context.Context, guildID int64, name string) (int64, error) {
	args := m.Called(ctx, guildID, name)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockChannelPlatform) DeleteChannel(ctx context.Context, channelID int64) error {
	args := m.Called(ctx, channelID)
	return args.Error(0)
}

func (m *MockChannelPlatform) MoveMember(ctx context.Context, guildID, userID, channelID int64) error {
	args := m.Called(ctx, guildID, userID, channelID)
	return args.Error(0)
}

func (m *MockChannelPlatform) ChannelMemberCount(guildID, channelID int64) (int, error) {
	args := m.Called(guildID, channelID)
	return args.Int(0), args.Error(1)
}

// MockRolePlatform is a mock implementation of RolePlatform
type MockRolePlatform struct {
	mock.Mock
}

func (m *MockRolePlatform) AddRole(ctx context.Context, guildID, userID, roleID int64) error {
	args := m.Called(ctx, guildID, userID, roleID)
	return args.Error(0)
}

func (m *MockRolePlatform) RemoveRole(ctx context.Context, guildID, userID, roleID int64) error {
	args := m.Called(ctx, guildID, userID, roleID)
	return args.Error(0)
}

// MockMessagePlatform is a mock implementation of MessagePlatform
type MockMessagePlatform struct {
	mock.Mock
}

func (m *MockMessagePlatform) MessageExists(ctx context.Context, channelID, messageID int64) error {
	args := m.Called(ctx, channelID, messageID)
	return args.Error(0)
}

func (m *MockMessagePlatform) AddReaction(ctx context.Context, channelID, messageID int64, emoji string) error {
	args := m.Called(ctx, channelID, messageID, emoji)
	return args.Error(0)
}

// staticHubLookup resolves every guild to the same hub channel.
type staticHubLookup struct {
	hub int64
}

func (h staticHubLookup) VoiceHub(guildID int64) int64 {
	return h.hub
}
