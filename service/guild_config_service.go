package service

import (
	"context"
	"fmt"

	"lunabot/events"
	"lunabot/models"
)

// guildConfigService implements the GuildConfigService interface
type guildConfigService struct {
	uowFactory UnitOfWorkFactory
}

// NewGuildConfigService creates a new guild config service
func NewGuildConfigService(uowFactory UnitOfWorkFactory) GuildConfigService {
	return &guildConfigService{
		uowFactory: uowFactory,
	}
}

// GetOrDefault retrieves a guild's config, creating the default row if absent
func (s *guildConfigService) GetOrDefault(ctx context.Context, guildID int64) (*models.GuildConfig, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	cfg, err := uow.GuildConfigRepository().GetOrCreate(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create guild config: %w", err)
	}

	// Commit in case the default row was created
	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return cfg, nil
}

// UpdateFields upserts named fields on a guild's config. Unknown field
// names are rejected with UnknownFieldError before anything is written.
func (s *guildConfigService) UpdateFields(ctx context.Context, guildID int64, fields map[string]any) error {
	return s.mutate(ctx, guildID, func(cfg *models.GuildConfig) error {
		for name, value := range fields {
			switch name {
			case "welcome_channel_id":
				id, err := optionalChannelID(name, value)
				if err != nil {
					return err
				}
				cfg.WelcomeChannelID = id
			case "voice_hub_channel_id":
				id, err := optionalChannelID(name, value)
				if err != nil {
					return err
				}
				cfg.VoiceHubChannelID = id
			case "reaction_toggle":
				enabled, ok := value.(bool)
				if !ok {
					return fmt.Errorf("field %q requires a bool, got %T", name, value)
				}
				cfg.ReactionToggle = enabled
			default:
				return &models.UnknownFieldError{Field: name}
			}
		}
		return nil
	})
}

// SetWelcomeChannel sets or clears the welcome announcement channel
func (s *guildConfigService) SetWelcomeChannel(ctx context.Context, guildID int64, channelID *int64) error {
	return s.mutate(ctx, guildID, func(cfg *models.GuildConfig) error {
		cfg.WelcomeChannelID = channelID
		return nil
	})
}

// SetVoiceHubChannel sets or clears the voice hub generator channel
func (s *guildConfigService) SetVoiceHubChannel(ctx context.Context, guildID int64, channelID *int64) error {
	return s.mutate(ctx, guildID, func(cfg *models.GuildConfig) error {
		cfg.VoiceHubChannelID = channelID
		return nil
	})
}

// SetReactionToggle gates whether the bot reacts to pattern-matched messages
func (s *guildConfigService) SetReactionToggle(ctx context.Context, guildID int64, enabled bool) error {
	return s.mutate(ctx, guildID, func(cfg *models.GuildConfig) error {
		cfg.ReactionToggle = enabled
		return nil
	})
}

// mutate loads (or lazily creates) the config row, applies fn, persists
// the result, and publishes the updated config after commit so cache
// subscribers stay in lockstep with the store.
func (s *guildConfigService) mutate(ctx context.Context, guildID int64, fn func(*models.GuildConfig) error) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	cfg, err := uow.GuildConfigRepository().GetOrCreate(ctx, guildID)
	if err != nil {
		return fmt.Errorf("failed to get guild config: %w", err)
	}

	if err := fn(cfg); err != nil {
		return err
	}

	if err := uow.GuildConfigRepository().Update(ctx, cfg); err != nil {
		return fmt.Errorf("failed to update guild config: %w", err)
	}

	uow.EventBus().Publish(events.GuildConfigUpdatedEvent{
		GuildID:           cfg.GuildID,
		WelcomeChannelID:  cfg.WelcomeChannelID,
		VoiceHubChannelID: cfg.VoiceHubChannelID,
		ReactionToggle:    cfg.ReactionToggle,
	})

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// AddAutorole adds a role granted to every new member
func (s *guildConfigService) AddAutorole(ctx context.Context, guildID, roleID int64) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	// Ensure the guild row exists so the autorole belongs to a known guild
	if _, err := uow.GuildConfigRepository().GetOrCreate(ctx, guildID); err != nil {
		return fmt.Errorf("failed to get guild config: %w", err)
	}

	if err := uow.GuildConfigRepository().AddAutorole(ctx, guildID, roleID); err != nil {
		return fmt.Errorf("failed to add autorole: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// RemoveAutorole removes an autorole
func (s *guildConfigService) RemoveAutorole(ctx context.Context, guildID, roleID int64) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.GuildConfigRepository().RemoveAutorole(ctx, guildID, roleID); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// ListAutoroles returns the guild's autorole set
func (s *guildConfigService) ListAutoroles(ctx context.Context, guildID int64) ([]int64, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	roleIDs, err := uow.GuildConfigRepository().ListAutoroles(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list autoroles: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return roleIDs, nil
}

// ListGuildIDs returns all guilds with stored config, for cache warm-up
func (s *guildConfigService) ListGuildIDs(ctx context.Context) ([]int64, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	ids, err := uow.GuildConfigRepository().ListGuildIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list guild IDs: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return ids, nil
}

// optionalChannelID coerces a dynamic field value into a nullable
// channel ID.
func optionalChannelID(name string, value any) (*int64, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case int64:
		return &v, nil
	case *int64:
		return v, nil
	case int:
		id := int64(v)
		return &id, nil
	default:
		return nil, fmt.Errorf("field %q requires a channel ID, got %T", name, value)
	}
}
