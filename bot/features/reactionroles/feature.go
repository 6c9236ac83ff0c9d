package reactionroles

import (
	"lunabot/service"

	"github.com/bwmarrin/discordgo"
)

// Feature handles the /reactrole command group
type Feature struct {
	reactionRoleService service.ReactionRoleService
}

// New creates a new reaction roles feature instance
func New(reactionRoleService service.ReactionRoleService) *Feature {
	return &Feature{
		reactionRoleService: reactionRoleService,
	}
}

// HandleCommand routes reactrole subcommands to appropriate handlers
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
