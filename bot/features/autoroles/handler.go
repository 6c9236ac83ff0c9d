package autoroles

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"lunabot/bot/common"
	"lunabot/models"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// adminAndRole gates the subcommand behind admin permissions and parses
// the guild and role arguments.
func adminAndRole(s *discordgo.Session, i *discordgo.InteractionCreate) (guildID, roleID int64, ok bool) {
	if !common.IsUserAdmin(s, i.GuildID, i.Member.User.ID) {
		common.RespondWithError(s, i, "You need administrator permissions to use this command")
		return 0, 0, false
	}

	guildID, err := common.ParseID(i.GuildID)
	if err != nil {
		log.Errorf("Failed to parse guild ID: %v", err)
		common.RespondWithError(s, i, "Failed to process command")
		return 0, 0, false
	}

	options := i.ApplicationCommandData().Options[0].Options
	if len(options) == 0 {
		common.RespondWithError(s, i, "Role is required")
		return 0, 0, false
	}

	roleID, err = common.ParseID(options[0].RoleValue(s, "").ID)
	if err != nil {
		log.Errorf("Failed to parse role ID: %v", err)
		common.RespondWithError(s, i, "Invalid role selected")
		return 0, 0, false
	}

	return guildID, roleID, true
}

// handleAdd handles the /autorole add subcommand
func (f *Feature) handleAdd(s *discordgo.Session, i *discordgo.InteractionCreate) {
	guildID, roleID, ok := adminAndRole(s, i)
	if !ok {
		return
	}

	if err := f.guildConfigService.AddAutorole(context.Background(), guildID, roleID); err != nil {
		log.Errorf("Failed to add autorole %d for guild %d: %v", roleID, guildID, err)
		common.RespondWithError(s, i, "Failed to add autorole")
		return
	}

	common.RespondWithSuccess(s, i, fmt.Sprintf("New members will receive <@&%d>", roleID), true)
}

// handleRemove handles the /autorole remove subcommand
func (f *Feature) handleRemove(s *discordgo.Session, i *discordgo.InteractionCreate) {
	guildID, roleID, ok := adminAndRole(s, i)
	if !ok {
		return
	}

	if err := f.guildConfigService.RemoveAutorole(context.Background(), guildID, roleID); err != nil {
		var notFound *models.NotFoundError
		if errors.As(err, &notFound) {
			common.RespondWithError(s, i, "That role is not an autorole")
			return
		}
		log.Errorf("Failed to remove autorole %d for guild %d: %v", roleID, guildID, err)
		common.RespondWithError(s, i, "Failed to remove autorole")
		return
	}

	common.RespondWithSuccess(s, i, fmt.Sprintf("<@&%d> will no longer be granted to new members", roleID), true)
}

// handleList handles the /autorole list subcommand
func (f *Feature) handleList(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !common.IsUserAdmin(s, i.GuildID, i.Member.User.ID) {
		common.RespondWithError(s, i, "You need administrator permissions to use this command")
		return
	}

	guildID, err := common.ParseID(i.GuildID)
	if err != nil {
		log.Errorf("Failed to parse guild ID: %v", err)
		common.RespondWithError(s, i, "Failed to process command")
		return
	}

	roleIDs, err := f.guildConfigService.ListAutoroles(context.Background(), guildID)
	if err != nil {
		log.Errorf("Failed to list autoroles for guild %d: %v", guildID, err)
		common.RespondWithError(s, i, "Failed to list autoroles")
		return
	}

	if len(roleIDs) == 0 {
		if err := common.RespondWithContent(s, i, "No autoroles configured.", true); err != nil {
			log.Errorf("Error responding to autorole list: %v", err)
		}
		return
	}

	mentions := make([]string, len(roleIDs))
	for idx, roleID := range roleIDs {
		mentions[idx] = fmt.Sprintf("<@&%d>", roleID)
	}

	embed := &discordgo.MessageEmbed{
		Title:       "Autoroles",
		Description: strings.Join(mentions, "\n"),
	}
	if err := common.RespondWithEmbed(s, i, embed, true); err != nil {
		log.Errorf("Error responding to autorole list: %v", err)
	}
}
