package service

import (
	"context"
	"time"

	"lunabot/events"
	"lunabot/models"
)

// GuildConfigRepository defines the interface for guild config data access
type GuildConfigRepository interface {
	// GetOrCreate retrieves a guild's config or persists and returns the default row
	GetOrCreate(ctx context.Context, guildID int64) (*models.GuildConfig, error)

	// Update persists all settable fields of a guild config
	Update(ctx context.Context, cfg *models.GuildConfig) error

	// ListGuildIDs returns the IDs of all guilds with a stored config row
	ListGuildIDs(ctx context.Context) ([]int64, error)

	// AddAutorole adds a role to a guild's autorole set (idempotent)
	AddAutorole(ctx context.Context, guildID, roleID int64) error

	// RemoveAutorole removes a role from a guild's autorole set
	RemoveAutorole(ctx context.Context, guildID, roleID int64) error

	// ListAutoroles returns the autorole set for a guild
	ListAutoroles(ctx context.Context, guildID int64) ([]int64, error)
}

// UserConfigRepository defines the interface for user config data access
type UserConfigRepository interface {
	// GetOrCreate retrieves a user's config or persists and returns the default row
	GetOrCreate(ctx context.Context, userID int64) (*models.UserConfig, error)

	// AddBalance atomically applies balance += delta, rejecting overdraws
	AddBalance(ctx context.Context, userID int64, delta int64) (*models.UserConfig, error)

	// SetBalance overwrites a user's balance (developer tooling)
	SetBalance(ctx context.Context, userID int64, balance int64) error

	// SetNextClaim sets the timestamp before which a daily claim is rejected
	SetNextClaim(ctx context.Context, userID int64, at time.Time) error

	// SetTempChannelName sets or clears the temp voice channel name override
	SetTempChannelName(ctx context.Context, userID int64, name *string) error

	// ListAllUserIDs returns every known user ID
	ListAllUserIDs(ctx context.Context) ([]int64, error)

	// GetTopBalances returns the highest balances in descending order
	GetTopBalances(ctx context.Context, limit int) ([]*models.LeaderboardEntry, error)
}

// TempChannelRepository defines the interface for temp voice channel records
type TempChannelRepository interface {
	// Create records a spawned ephemeral voice channel
	Create(ctx context.Context, ch *models.TempVoiceChannel) error

	// Delete removes the record of a torn-down channel (idempotent)
	Delete(ctx context.Context, channelID int64) error

	// GetByID retrieves a temp channel record, or nil if absent
	GetByID(ctx context.Context, channelID int64) (*models.TempVoiceChannel, error)

	// ListByGuild returns all recorded temp channels for a guild
	ListByGuild(ctx context.Context, guildID int64) ([]*models.TempVoiceChannel, error)

	// ListAll returns every recorded temp channel
	ListAll(ctx context.Context) ([]*models.TempVoiceChannel, error)
}

// ReactionRoleRepository defines the interface for reaction role binding data access
type ReactionRoleRepository interface {
	// Create persists a binding; (message_id, emoji) is unique
	Create(ctx context.Context, binding *models.ReactionRoleBinding) error

	// DeleteByID removes a binding
	DeleteByID(ctx context.Context, id int64) error

	// FindByMessageAndEmoji looks up a binding, or nil if absent
	FindByMessageAndEmoji(ctx context.Context, messageID int64, emoji string) (*models.ReactionRoleBinding, error)

	// FindByChannel returns all bindings on messages in a channel
	FindByChannel(ctx context.Context, channelID int64) ([]*models.ReactionRoleBinding, error)

	// FindByGuild returns all bindings in a guild
	FindByGuild(ctx context.Context, guildID int64) ([]*models.ReactionRoleBinding, error)
}

// GuildConfigService defines the interface for guild config operations
type GuildConfigService interface {
	// GetOrDefault retrieves a guild's config, creating the default row if absent
	GetOrDefault(ctx context.Context, guildID int64) (*models.GuildConfig, error)

	// UpdateFields upserts named fields; unknown names are rejected with UnknownFieldError
	UpdateFields(ctx context.Context, guildID int64, fields map[string]any) error

	// SetWelcomeChannel sets or clears the welcome announcement channel
	SetWelcomeChannel(ctx context.Context, guildID int64, channelID *int64) error

	// SetVoiceHubChannel sets or clears the voice hub generator channel
	SetVoiceHubChannel(ctx context.Context, guildID int64, channelID *int64) error

	// SetReactionToggle gates whether the bot reacts to pattern-matched messages
	SetReactionToggle(ctx context.Context, guildID int64, enabled bool) error

	// AddAutorole adds a role granted to every new member
	AddAutorole(ctx context.Context, guildID, roleID int64) error

	// RemoveAutorole removes an autorole
	RemoveAutorole(ctx context.Context, guildID, roleID int64) error

	// ListAutoroles returns the guild's autorole set
	ListAutoroles(ctx context.Context, guildID int64) ([]int64, error)

	// ListGuildIDs returns all guilds with stored config, for cache warm-up
	ListGuildIDs(ctx context.Context) ([]int64, error)
}

// EconomyService defines the interface for starbits operations
type EconomyService interface {
	// ClaimDaily grants the cooldown-gated daily starbits
	ClaimDaily(ctx context.Context, userID int64, now time.Time) (*models.ClaimResult, error)

	// Wager stakes starbits on a tiered-payout roll
	Wager(ctx context.Context, userID int64, amount int64) (*models.WagerResult, error)

	// Balance returns the user's current starbits balance
	Balance(ctx context.Context, userID int64) (int64, error)

	// SetBalance overwrites a balance (developer allowlist only)
	SetBalance(ctx context.Context, userID int64, amount int64) error

	// Leaderboard returns the top starbits holders
	Leaderboard(ctx context.Context, limit int) ([]*models.LeaderboardEntry, error)
}

// ReactionEvent carries the identifiers the matcher needs from a
// platform reaction add/remove payload.
type ReactionEvent struct {
	GuildID   int64
	ChannelID int64
	MessageID int64
	UserID    int64
	Emoji     string
}

// ReactionRoleService defines the interface for reaction role operations
type ReactionRoleService interface {
	// HandleReactionAdd grants the bound role, if any
	HandleReactionAdd(ctx context.Context, event ReactionEvent) error

	// HandleReactionRemove revokes the bound role, if any
	HandleReactionRemove(ctx context.Context, event ReactionEvent) error

	// CreateBinding validates the target message and persists a binding,
	// adding the bot's own reaction as a side effect
	CreateBinding(ctx context.Context, guildID, channelID, messageID int64, emoji string, roleID int64) (*models.ReactionRoleBinding, error)

	// RemoveBinding deletes the binding for a (message, emoji) pair
	RemoveBinding(ctx context.Context, messageID int64, emoji string) error

	// ListBindings returns bindings for a channel
	ListBindings(ctx context.Context, channelID int64) ([]*models.ReactionRoleBinding, error)
}

// VoiceStateUpdate carries the identifiers the lifecycle manager needs
// from a platform voice-presence event. A zero channel ID means "no
// channel".
type VoiceStateUpdate struct {
	GuildID         int64
	UserID          int64
	BeforeChannelID int64
	AfterChannelID  int64
	DisplayName     string
}

// VoiceLifecycleManager defines the interface for the temp voice
// channel lifecycle
type VoiceLifecycleManager interface {
	// HandleVoiceStateUpdate applies the hub create/teardown transitions
	HandleVoiceStateUpdate(ctx context.Context, update VoiceStateUpdate) error

	// SetChannelNameOverride sets or clears the name used for channels
	// spawned for a user
	SetChannelNameOverride(ctx context.Context, userID int64, name *string) error

	// WarmLiveSet loads persisted temp channel records into the live set
	WarmLiveSet(ctx context.Context) error

	// SweepOrphans deletes recorded temp channels that are gone or empty
	SweepOrphans(ctx context.Context) error
}

// HubLookup resolves the configured voice hub channel for a guild
// without a store round-trip. 0 means no hub configured.
type HubLookup interface {
	VoiceHub(guildID int64) int64
}

// ChannelPlatform abstracts the chat platform's voice channel calls.
// All operations are fallible; implementations wrap failures in
// PlatformOperationError.
type ChannelPlatform interface {
	// CreateVoiceChannel creates a voice channel and returns its ID
	CreateVoiceChannel(ctx context.Context, guildID int64, name string) (int64, error)

	// DeleteChannel deletes a channel
	DeleteChannel(ctx context.Context, channelID int64) error

	// MoveMember moves a member into a voice channel
	MoveMember(ctx context.Context, guildID, userID, channelID int64) error

	// ChannelMemberCount reports how many members are in a voice channel
	ChannelMemberCount(guildID, channelID int64) (int, error)
}

// RolePlatform abstracts the chat platform's role membership calls.
type RolePlatform interface {
	// AddRole grants a role to a member
	AddRole(ctx context.Context, guildID, userID, roleID int64) error

	// RemoveRole revokes a role from a member
	RemoveRole(ctx context.Context, guildID, userID, roleID int64) error
}

// MessagePlatform abstracts the chat platform's message calls used by
// reaction role bootstrapping.
type MessagePlatform interface {
	// MessageExists reports whether a message is fetchable in a channel
	MessageExists(ctx context.Context, channelID, messageID int64) error

	// AddReaction adds the bot's own reaction to a message
	AddReaction(ctx context.Context, channelID, messageID int64, emoji string) error
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Repository getters
	GuildConfigRepository() GuildConfigRepository
	UserConfigRepository() UserConfigRepository
	TempChannelRepository() TempChannelRepository
	ReactionRoleRepository() ReactionRoleRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	// Create creates a new UnitOfWork instance
	Create() UnitOfWork
}
