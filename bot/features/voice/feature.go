package voice

import (
	"lunabot/service"

	"github.com/bwmarrin/discordgo"
)

// Feature handles the /voicename command
type Feature struct {
	voiceManager service.VoiceLifecycleManager
}

// New creates a new voice feature instance
func New(voiceManager service.VoiceLifecycleManager) *Feature {
	return &Feature{
		voiceManager: voiceManager,
	}
}

// HandleCommand handles the /voicename command
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	f.handleVoiceName(s, i)
}
