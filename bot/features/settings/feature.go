package settings

import (
	"lunabot/service"

	"github.com/bwmarrin/discordgo"
)

// Feature handles the /settings command group
type Feature struct {
	guildConfigService service.GuildConfigService
}

// New creates a new settings feature instance
func New(guildConfigService service.GuildConfigService) *Feature {
	return &Feature{
		guildConfigService: guildConfigService,
	}
}

// HandleCommand routes settings subcommands to appropriate handlers
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		return
	}

	switch options[0].Name {
	case "welcome-channel":
		f.handleWelcomeChannel(s, i)
	case "voice-hub":
		f.handleVoiceHub(s, i)
	case "reactions":
		f.handleReactions(s, i)
	case "show":
		f.handleShow(s, i)
	}
}
