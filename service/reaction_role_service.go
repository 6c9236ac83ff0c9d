package service

import (
	"context"
	"fmt"

	"lunabot/models"

	log "github.com/sirupsen/logrus"
)

// reactionRoleService implements the ReactionRoleService interface
type reactionRoleService struct {
	uowFactory UnitOfWorkFactory
	roles      RolePlatform
	messages   MessagePlatform
	selfID     int64
}

// NewReactionRoleService creates a new reaction role service. selfID is
// the bot's own user ID; its reactions never grant roles.
func NewReactionRoleService(uowFactory UnitOfWorkFactory, roles RolePlatform, messages MessagePlatform, selfID int64) ReactionRoleService {
	return &reactionRoleService{
		uowFactory: uowFactory,
		roles:      roles,
		messages:   messages,
		selfID:     selfID,
	}
}

// HandleReactionAdd grants the bound role for a reaction, if one exists.
// Unbound reactions make no platform calls at all.
func (s *reactionRoleService) HandleReactionAdd(ctx context.Context, event ReactionEvent) error {
	return s.handleReaction(ctx, event, s.roles.AddRole, "grant")
}

// HandleReactionRemove revokes the bound role for a removed reaction.
func (s *reactionRoleService) HandleReactionRemove(ctx context.Context, event ReactionEvent) error {
	return s.handleReaction(ctx, event, s.roles.RemoveRole, "revoke")
}

func (s *reactionRoleService) handleReaction(ctx context.Context, event ReactionEvent, apply func(ctx context.Context, guildID, userID, roleID int64) error, verb string) error {
	if event.UserID == s.selfID {
		return nil
	}

	binding, err := s.findBinding(ctx, event.MessageID, event.Emoji)
	if err != nil {
		return err
	}
	if binding == nil {
		return nil
	}

	if err := apply(ctx, event.GuildID, event.UserID, binding.RoleID); err != nil {
		// A deleted role is not fatal; the binding stays so an admin
		// can see and remove it.
		log.WithFields(log.Fields{
			"guildID": event.GuildID,
			"userID":  event.UserID,
			"roleID":  binding.RoleID,
			"action":  verb,
		}).WithError(err).Error("Failed to apply reaction role")
		return nil
	}

	log.WithFields(log.Fields{
		"guildID": event.GuildID,
		"userID":  event.UserID,
		"roleID":  binding.RoleID,
		"action":  verb,
	}).Debug("Applied reaction role")

	return nil
}

func (s *reactionRoleService) findBinding(ctx context.Context, messageID int64, emoji string) (*models.ReactionRoleBinding, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	binding, err := uow.ReactionRoleRepository().FindByMessageAndEmoji(ctx, messageID, emoji)
	if err != nil {
		return nil, fmt.Errorf("failed to look up reaction role binding: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return binding, nil
}

// CreateBinding validates that the target message exists, persists the
// binding, and seeds the message with the bot's own reaction so members
// have something to click.
func (s *reactionRoleService) CreateBinding(ctx context.Context, guildID, channelID, messageID int64, emoji string, roleID int64) (*models.ReactionRoleBinding, error) {
	if err := s.messages.MessageExists(ctx, channelID, messageID); err != nil {
		return nil, fmt.Errorf("failed to validate target message: %w", err)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	binding := &models.ReactionRoleBinding{
		GuildID:   guildID,
		ChannelID: channelID,
		MessageID: messageID,
		Emoji:     emoji,
		RoleID:    roleID,
	}
	if err := uow.ReactionRoleRepository().Create(ctx, binding); err != nil {
		return nil, fmt.Errorf("failed to create reaction role binding: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	// Seeding the reaction is cosmetic; the binding works without it.
	if err := s.messages.AddReaction(ctx, channelID, messageID, emoji); err != nil {
		log.WithFields(log.Fields{
			"channelID": channelID,
			"messageID": messageID,
			"emoji":     emoji,
		}).WithError(err).Warn("Failed to seed reaction on bound message")
	}

	log.WithFields(log.Fields{
		"guildID":   guildID,
		"messageID": messageID,
		"emoji":     emoji,
		"roleID":    roleID,
	}).Info("Created reaction role binding")

	return binding, nil
}

// RemoveBinding deletes the binding for a (message, emoji) pair.
func (s *reactionRoleService) RemoveBinding(ctx context.Context, messageID int64, emoji string) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	binding, err := uow.ReactionRoleRepository().FindByMessageAndEmoji(ctx, messageID, emoji)
	if err != nil {
		return fmt.Errorf("failed to look up reaction role binding: %w", err)
	}
	if binding == nil {
		return &models.NotFoundError{Kind: "reaction role binding", ID: messageID}
	}

	if err := uow.ReactionRoleRepository().DeleteByID(ctx, binding.ID); err != nil {
		return fmt.Errorf("failed to delete reaction role binding: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"messageID": messageID,
		"emoji":     emoji,
	}).Info("Removed reaction role binding")

	return nil
}

// ListBindings returns bindings for a channel.
func (s *reactionRoleService) ListBindings(ctx context.Context, channelID int64) ([]*models.ReactionRoleBinding, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	bindings, err := uow.ReactionRoleRepository().FindByChannel(ctx, channelID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reaction role bindings: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return bindings, nil
}
