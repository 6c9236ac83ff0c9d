package settings

import (
	"context"
	"fmt"

	"lunabot/bot/common"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// requireAdmin gates a settings subcommand behind guild admin
// permissions. Returns the parsed guild ID, or ok=false after an error
// response has been sent.
func requireAdmin(s *discordgo.Session, i *discordgo.InteractionCreate) (int64, bool) {
	if !common.IsUserAdmin(s, i.GuildID, i.Member.User.ID) {
		common.RespondWithError(s, i, "You need administrator permissions to use this command")
		return 0, false
	}

	guildID, err := common.ParseID(i.GuildID)
	if err != nil {
		log.Errorf("Failed to parse guild ID: %v", err)
		common.RespondWithError(s, i, "Failed to process command")
		return 0, false
	}
	return guildID, true
}

// channelOption extracts an optional channel argument. nil means the
// caller wants the setting cleared.
func channelOption(s *discordgo.Session, i *discordgo.InteractionCreate) (*int64, error) {
	options := i.ApplicationCommandData().Options[0].Options
	if len(options) == 0 {
		return nil, nil
	}

	channelID, err := common.ParseID(options[0].ChannelValue(s).ID)
	if err != nil {
		return nil, err
	}
	return &channelID, nil
}

// handleWelcomeChannel handles the /settings welcome-channel subcommand
func (f *Feature) handleWelcomeChannel(s *discordgo.Session, i *discordgo.InteractionCreate) {
	guildID, ok := requireAdmin(s, i)
	if !ok {
		return
	}

	channelID, err := channelOption(s, i)
	if err != nil {
		log.Errorf("Failed to parse channel ID: %v", err)
		common.RespondWithError(s, i, "Invalid channel selected")
		return
	}

	if err := f.guildConfigService.SetWelcomeChannel(context.Background(), guildID, channelID); err != nil {
		log.Errorf("Failed to update welcome channel for guild %d: %v", guildID, err)
		common.RespondWithError(s, i, "Failed to update settings")
		return
	}

	if channelID != nil {
		common.RespondWithSuccess(s, i, fmt.Sprintf("Welcome messages will be posted in <#%d>", *channelID), true)
	} else {
		common.RespondWithSuccess(s, i, "Welcome messages disabled", true)
	}
}

// handleVoiceHub handles the /settings voice-hub subcommand
func (f *Feature) handleVoiceHub(s *discordgo.Session, i *discordgo.InteractionCreate) {
	guildID, ok := requireAdmin(s, i)
	if !ok {
		return
	}

	channelID, err := channelOption(s, i)
	if err != nil {
		log.Errorf("Failed to parse channel ID: %v", err)
		common.RespondWithError(s, i, "Invalid channel selected")
		return
	}

	if err := f.guildConfigService.SetVoiceHubChannel(context.Background(), guildID, channelID); err != nil {
		log.Errorf("Failed to update voice hub for guild %d: %v", guildID, err)
		common.RespondWithError(s, i, "Failed to update settings")
		return
	}

	if channelID != nil {
		common.RespondWithSuccess(s, i, fmt.Sprintf("Joining <#%d> now spawns a personal voice channel", *channelID), true)
	} else {
		common.RespondWithSuccess(s, i, "Voice hub disabled", true)
	}
}

// handleReactions handles the /settings reactions subcommand
func (f *Feature) handleReactions(s *discordgo.Session, i *discordgo.InteractionCreate) {
	guildID, ok := requireAdmin(s, i)
	if !ok {
		return
	}

	options := i.ApplicationCommandData().Options[0].Options
	if len(options) == 0 {
		common.RespondWithError(s, i, "Enabled flag is required")
		return
	}
	enabled := options[0].BoolValue()

	if err := f.guildConfigService.SetReactionToggle(context.Background(), guildID, enabled); err != nil {
		log.Errorf("Failed to update reaction toggle for guild %d: %v", guildID, err)
		common.RespondWithError(s, i, "Failed to update settings")
		return
	}

	if enabled {
		common.RespondWithSuccess(s, i, "Message reactions enabled", true)
	} else {
		common.RespondWithSuccess(s, i, "Message reactions disabled", true)
	}
}

// handleShow handles the /settings show subcommand
func (f *Feature) handleShow(s *discordgo.Session, i *discordgo.InteractionCreate) {
	guildID, ok := requireAdmin(s, i)
	if !ok {
		return
	}

	cfg, err := f.guildConfigService.GetOrDefault(context.Background(), guildID)
	if err != nil {
		log.Errorf("Failed to load config for guild %d: %v", guildID, err)
		common.RespondWithError(s, i, "Failed to load settings")
		return
	}

	formatChannel := func(id *int64) string {
		if id == nil {
			return "not set"
		}
		return fmt.Sprintf("<#%d>", *id)
	}
	formatToggle := func(on bool) string {
		if on {
			return "enabled"
		}
		return "disabled"
	}

	embed := &discordgo.MessageEmbed{
		Title: "Server Settings",
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Welcome channel", Value: formatChannel(cfg.WelcomeChannelID), Inline: true},
			{Name: "Voice hub", Value: formatChannel(cfg.VoiceHubChannelID), Inline: true},
			{Name: "Message reactions", Value: formatToggle(cfg.ReactionToggle), Inline: true},
		},
	}

	if err := common.RespondWithEmbed(s, i, embed, true); err != nil {
		log.Errorf("Error responding to settings show: %v", err)
	}
}
