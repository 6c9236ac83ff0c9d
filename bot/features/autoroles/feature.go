package autoroles

import (
	"lunabot/service"

	"github.com/bwmarrin/discordgo"
)

// Feature handles the /autorole command group
type Feature struct {
	guildConfigService service.GuildConfigService
}

// New creates a new autoroles feature instance
func New(guildConfigService service.GuildConfigService) *Feature {
	return &Feature{
		guildConfigService: guildConfigService,
	}
}

// HandleCommand routes autorole subcommands to appropriate handlers
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		return
	}

	switch options[0].Name {
	case "add":
		f.handleAdd(s, i)
	case "remove":
		f.handleRemove(s, i)
	case "list":
		f.handleList(s, i)
	}
}
