package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"lunabot/events"
	"lunabot/models"

	log "github.com/sirupsen/logrus"
)

// voiceLifecycleService implements the VoiceLifecycleManager interface.
// It tracks live ephemeral channels in memory and mirrors them to the
// store so orphans survive a restart.
type voiceLifecycleService struct {
	uowFactory UnitOfWorkFactory
	hubs       HubLookup
	platform   ChannelPlatform

	mu       sync.Mutex
	live     map[int64]int64 // channel ID -> guild ID
	deleting map[int64]bool  // teardown in flight
}

// NewVoiceLifecycleService creates a new voice lifecycle manager
func NewVoiceLifecycleService(uowFactory UnitOfWorkFactory, hubs HubLookup, platform ChannelPlatform) VoiceLifecycleManager {
	return &voiceLifecycleService{
		uowFactory: uowFactory,
		hubs:       hubs,
		platform:   platform,
		live:       make(map[int64]int64),
		deleting:   make(map[int64]bool),
	}
}

// HandleVoiceStateUpdate applies the hub create/teardown transitions.
// Platform failures are logged and recovered here; there is no user to
// reply to from an event callback.
func (s *voiceLifecycleService) HandleVoiceStateUpdate(ctx context.Context, update VoiceStateUpdate) error {
	// Mute/deafen toggles fire this event with an unchanged channel.
	if update.BeforeChannelID == update.AfterChannelID {
		return nil
	}

	if hub := s.hubs.VoiceHub(update.GuildID); hub != 0 && update.AfterChannelID == hub {
		if err := s.spawnChannel(ctx, update); err != nil {
			log.WithFields(log.Fields{
				"guildID": update.GuildID,
				"userID":  update.UserID,
			}).WithError(err).Error("Failed to spawn temp voice channel")
		}
	}

	if update.BeforeChannelID != 0 && s.isLive(update.BeforeChannelID) {
		s.teardownIfEmpty(ctx, update.GuildID, update.BeforeChannelID)
	}

	return nil
}

// spawnChannel creates an ephemeral channel for the member, records it,
// and moves the member into it. Registration is rolled back if creation
// fails partway.
func (s *voiceLifecycleService) spawnChannel(ctx context.Context, update VoiceStateUpdate) error {
	name, err := s.channelName(ctx, update)
	if err != nil {
		return err
	}

	channelID, err := s.platform.CreateVoiceChannel(ctx, update.GuildID, name)
	if err != nil {
		return fmt.Errorf("failed to create voice channel: %w", err)
	}

	if err := s.persistChannel(ctx, update, channelID); err != nil {
		// Roll back the platform channel; a failure here leaves an
		// orphan that the startup sweep will catch.
		if delErr := s.platform.DeleteChannel(ctx, channelID); delErr != nil {
			log.WithField("channelID", channelID).WithError(delErr).Error("Failed to roll back voice channel")
		}
		return err
	}

	s.mu.Lock()
	s.live[channelID] = update.GuildID
	s.mu.Unlock()

	// A failed move is not rolled back: the empty channel is torn down
	// by the next empty-check.
	if err := s.platform.MoveMember(ctx, update.GuildID, update.UserID, channelID); err != nil {
		log.WithFields(log.Fields{
			"guildID":   update.GuildID,
			"userID":    update.UserID,
			"channelID": channelID,
		}).WithError(err).Error("Failed to move member into temp voice channel")
	}

	log.WithFields(log.Fields{
		"guildID":   update.GuildID,
		"ownerID":   update.UserID,
		"channelID": channelID,
		"name":      name,
	}).Info("Created temp voice channel")

	return nil
}

// channelName resolves the member's configured override or derives a
// name from their display name.
func (s *voiceLifecycleService) channelName(ctx context.Context, update VoiceStateUpdate) (string, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserConfigRepository().GetOrCreate(ctx, update.UserID)
	if err != nil {
		return "", fmt.Errorf("failed to get user config: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}

	if user.TempChannelName != nil && *user.TempChannelName != "" {
		return *user.TempChannelName, nil
	}
	return update.DisplayName + "'s channel", nil
}

func (s *voiceLifecycleService) persistChannel(ctx context.Context, update VoiceStateUpdate, channelID int64) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	record := &models.TempVoiceChannel{
		ChannelID: channelID,
		GuildID:   update.GuildID,
		OwnerID:   update.UserID,
	}
	if err := uow.TempChannelRepository().Create(ctx, record); err != nil {
		return fmt.Errorf("failed to record temp channel: %w", err)
	}

	uow.EventBus().Publish(events.TempChannelCreatedEvent{
		GuildID:   update.GuildID,
		ChannelID: channelID,
		OwnerID:   update.UserID,
	})

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (s *voiceLifecycleService) isLive(channelID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.live[channelID]
	return ok
}

// teardownIfEmpty deletes a live channel once it has no members. The
// in-flight guard makes a second empty-check for the same channel a
// no-op, so a channel is deleted at most once. A failed platform delete
// keeps the registration; the next voice event in the guild retries.
func (s *voiceLifecycleService) teardownIfEmpty(ctx context.Context, guildID, channelID int64) {
	count, err := s.platform.ChannelMemberCount(guildID, channelID)
	if err != nil {
		if errors.Is(err, models.ErrPlatformNotFound) {
			// Channel already gone on the platform; drop our record.
			s.finishTeardown(ctx, guildID, channelID)
			return
		}
		log.WithField("channelID", channelID).WithError(err).Error("Failed to count voice channel members")
		return
	}
	if count > 0 {
		return
	}

	s.mu.Lock()
	if _, ok := s.live[channelID]; !ok || s.deleting[channelID] {
		s.mu.Unlock()
		return
	}
	s.deleting[channelID] = true
	s.mu.Unlock()

	if err := s.platform.DeleteChannel(ctx, channelID); err != nil {
		log.WithField("channelID", channelID).WithError(err).Error("Failed to delete temp voice channel")
		s.mu.Lock()
		delete(s.deleting, channelID)
		s.mu.Unlock()
		return
	}

	s.finishTeardown(ctx, guildID, channelID)

	log.WithFields(log.Fields{
		"guildID":   guildID,
		"channelID": channelID,
	}).Info("Deleted empty temp voice channel")
}

// finishTeardown unregisters the channel and removes its record.
func (s *voiceLifecycleService) finishTeardown(ctx context.Context, guildID, channelID int64) {
	s.mu.Lock()
	delete(s.live, channelID)
	delete(s.deleting, channelID)
	s.mu.Unlock()

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		log.WithField("channelID", channelID).WithError(err).Error("Failed to begin teardown transaction")
		return
	}
	defer uow.Rollback()

	if err := uow.TempChannelRepository().Delete(ctx, channelID); err != nil {
		log.WithField("channelID", channelID).WithError(err).Error("Failed to delete temp channel record")
		return
	}

	uow.EventBus().Publish(events.TempChannelDeletedEvent{
		GuildID:   guildID,
		ChannelID: channelID,
	})

	if err := uow.Commit(); err != nil {
		log.WithField("channelID", channelID).WithError(err).Error("Failed to commit teardown transaction")
	}
}

// SetChannelNameOverride sets or clears the name used for channels
// spawned for a user.
func (s *voiceLifecycleService) SetChannelNameOverride(ctx context.Context, userID int64, name *string) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if _, err := uow.UserConfigRepository().GetOrCreate(ctx, userID); err != nil {
		return fmt.Errorf("failed to get user config: %w", err)
	}

	if err := uow.UserConfigRepository().SetTempChannelName(ctx, userID, name); err != nil {
		return fmt.Errorf("failed to set channel name override: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// WarmLiveSet loads persisted temp channel records into the live set so
// empty-checks keep working across a restart.
func (s *voiceLifecycleService) WarmLiveSet(ctx context.Context) error {
	records, err := s.listRecords(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	for _, record := range records {
		s.live[record.ChannelID] = record.GuildID
	}
	s.mu.Unlock()

	log.WithField("count", len(records)).Info("Restored temp voice channel live set")
	return nil
}

// SweepOrphans deletes recorded temp channels that are gone or empty.
// Run at startup; channels that outlived a crash get cleaned up here.
func (s *voiceLifecycleService) SweepOrphans(ctx context.Context) error {
	records, err := s.listRecords(ctx)
	if err != nil {
		return err
	}

	for _, record := range records {
		count, err := s.platform.ChannelMemberCount(record.GuildID, record.ChannelID)
		if err == nil && count > 0 {
			continue
		}

		if err := s.platform.DeleteChannel(ctx, record.ChannelID); err != nil {
			// Not found on the platform is fine, the record is stale.
			if !errors.Is(err, models.ErrPlatformNotFound) {
				log.WithField("channelID", record.ChannelID).WithError(err).Error("Failed to delete orphaned voice channel")
				continue
			}
		}
		s.finishTeardown(ctx, record.GuildID, record.ChannelID)

		log.WithFields(log.Fields{
			"guildID":   record.GuildID,
			"channelID": record.ChannelID,
		}).Info("Swept orphaned temp voice channel")
	}

	return nil
}

func (s *voiceLifecycleService) listRecords(ctx context.Context) ([]*models.TempVoiceChannel, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	records, err := uow.TempChannelRepository().ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list temp channels: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return records, nil
}
