package testutil

import (
	"lunabot/models"
)

// CreateTestGuildConfig creates a guild config with default values
func CreateTestGuildConfig(guildID int64) *models.GuildConfig {
	return models.NewDefaultGuildConfig(guildID)
}

// CreateTestGuildConfigWithHub creates a guild config with a voice hub set
func CreateTestGuildConfigWithHub(guildID, hubChannelID int64) *models.GuildConfig {
	cfg := models.NewDefaultGuildConfig(guildID)
	cfg.VoiceHubChannelID = &hubChannelID
	return cfg
}

// CreateTestTempChannel creates a temp voice channel record
func CreateTestTempChannel(channelID, guildID, ownerID int64) *models.TempVoiceChannel {
	return &models.TempVoiceChannel{
		ChannelID: channelID,
		GuildID:   guildID,
		OwnerID:   ownerID,
	}
}

// CreateTestReactionRoleBinding creates a reaction role binding
func CreateTestReactionRoleBinding(guildID, channelID, messageID int64, emoji string, roleID int64) *models.ReactionRoleBinding {
	return &models.ReactionRoleBinding{
		GuildID:   guildID,
		ChannelID: channelID,
		MessageID: messageID,
		Emoji:     emoji,
		RoleID:    roleID,
	}
}
