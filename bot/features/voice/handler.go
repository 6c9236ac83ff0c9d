package voice

import (
	"context"
	"fmt"

	"lunabot/bot/common"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// handleVoiceName handles the /voicename command. No name argument
// clears the override.
func (f *Feature) handleVoiceName(s *discordgo.Session, i *discordgo.InteractionCreate) {
	userID, err := common.ParseID(i.Member.User.ID)
	if err != nil {
		log.Errorf("Error parsing Discord ID %s: %v", i.Member.User.ID, err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	var name *string
	options := i.ApplicationCommandData().Options
	if len(options) > 0 {
		value := options[0].StringValue()
		if value != "" {
			name = &value
		}
	}

	if err := f.voiceManager.SetChannelNameOverride(context.Background(), userID, name); err != nil {
		log.Errorf("Failed to set channel name override for user %d: %v", userID, err)
		common.RespondWithError(s, i, "Unable to update your channel name. Please try again.")
		return
	}

	if name != nil {
		common.RespondWithSuccess(s, i, fmt.Sprintf("Your voice channels will be named **%s**", *name), true)
	} else {
		common.RespondWithSuccess(s, i, "Your voice channel name is back to the default", true)
	}
}
