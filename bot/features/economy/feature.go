package economy

import (
	"lunabot/service"

	"github.com/bwmarrin/discordgo"
)

// Feature handles the /starbits command group
type Feature struct {
	economyService service.EconomyService
	developerIDs   map[int64]bool
}

// New creates a new economy feature instance
func New(economyService service.EconomyService, developerIDs []int64) *Feature {
	devs := make(map[int64]bool, len(developerIDs))
	for _, id := range developerIDs {
		devs[id] = true
	}
	return &Feature{
		economyService: economyService,
		developerIDs:   devs,
	}
}

// HandleCommand routes starbits subcommands to appropriate handlers
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		return
	}

	switch options[0].Name {
	case "claim":
		f.handleClaim(s, i)
	case "gamble":
		f.handleGamble(s, i)
	case "balance":
		f.handleBalance(s, i)
	case "top":
		f.handleTop(s, i)
	case "devset":
		f.handleDevSet(s, i)
	}
}
