package reactionroles

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"lunabot/bot/common"
	"lunabot/models"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// customEmojiPattern matches the <:name:id> and <a:name:id> forms a
// user pastes for custom emoji.
var customEmojiPattern = regexp.MustCompile(`^<a?:([A-Za-z0-9_~]+):(\d+)>$`)

// normalizeEmoji converts a user-supplied emoji argument to the form
// the gateway reports in reaction payloads: the literal grapheme for
// unicode emoji, name:id for custom emoji.
func normalizeEmoji(arg string) string {
	arg = strings.TrimSpace(arg)
	if m := customEmojiPattern.FindStringSubmatch(arg); m != nil {
		return m[1] + ":" + m[2]
	}
	return arg
}

// handleAdd handles the /reactrole add subcommand. The binding targets
// a message in the channel the command was invoked in.
func (f *Feature) handleAdd(s *discordgo.Session, i *discordgo.InteractionCreate) {
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
	channelID, err := common.ParseID(i.ChannelID)
	if err != nil {
		log.Errorf("Failed to parse channel ID: %v", err)
		common.RespondWithError(s, i, "Failed to process command")
		return
	}

	options := i.ApplicationCommandData().Options[0].Options
	if len(options) < 3 {
		common.RespondWithError(s, i, "Message ID, emoji and role are required")
		return
	}

	messageID, err := common.ParseID(options[0].StringValue())
	if err != nil {
		common.RespondWithError(s, i, "Invalid message ID")
		return
	}
	emoji := normalizeEmoji(options[1].StringValue())
	roleID, err := common.ParseID(options[2].RoleValue(s, "").ID)
	if err != nil {
		log.Errorf("Failed to parse role ID: %v", err)
		common.RespondWithError(s, i, "Invalid role selected")
		return
	}

	_, err = f.reactionRoleService.CreateBinding(context.Background(), guildID, channelID, messageID, emoji, roleID)
	if err != nil {
		if errors.Is(err, models.ErrPlatformNotFound) {
			common.RespondWithError(s, i, "Message not found in this channel")
			return
		}
		log.Errorf("Failed to create reaction role binding on message %d: %v", messageID, err)
		common.RespondWithError(s, i, "Failed to create reaction role")
		return
	}

	common.RespondWithSuccess(s, i, fmt.Sprintf("Reacting with %s on that message now grants <@&%d>",
		displayEmoji(emoji), roleID), true)
}

// handleRemove handles the /reactrole remove subcommand
func (f *Feature) handleRemove(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !common.IsUserAdmin(s, i.GuildID, i.Member.User.ID) {
		common.RespondWithError(s, i, "You need administrator permissions to use this command")
		return
	}

	options := i.ApplicationCommandData().Options[0].Options
	if len(options) < 2 {
		common.RespondWithError(s, i, "Message ID and emoji are required")
		return
	}

	messageID, err := common.ParseID(options[0].StringValue())
	if err != nil {
		common.RespondWithError(s, i, "Invalid message ID")
		return
	}
	emoji := normalizeEmoji(options[1].StringValue())

	if err := f.reactionRoleService.RemoveBinding(context.Background(), messageID, emoji); err != nil {
		var notFound *models.NotFoundError
		if errors.As(err, &notFound) {
			common.RespondWithError(s, i, "No reaction role bound to that message and emoji")
			return
		}
		log.Errorf("Failed to remove reaction role binding on message %d: %v", messageID, err)
		common.RespondWithError(s, i, "Failed to remove reaction role")
		return
	}

	common.RespondWithSuccess(s, i, "Reaction role removed", true)
}

// handleList handles the /reactrole list subcommand, scoped to the
// invoking channel.
func (f *Feature) handleList(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !common.IsUserAdmin(s, i.GuildID, i.Member.User.ID) {
		common.RespondWithError(s, i, "You need administrator permissions to use this command")
		return
	}

	channelID, err := common.ParseID(i.ChannelID)
	if err != nil {
		log.Errorf("Failed to parse channel ID: %v", err)
		common.RespondWithError(s, i, "Failed to process command")
		return
	}

	bindings, err := f.reactionRoleService.ListBindings(context.Background(), channelID)
	if err != nil {
		log.Errorf("Failed to list reaction roles for channel %d: %v", channelID, err)
		common.RespondWithError(s, i, "Failed to list reaction roles")
		return
	}

	if len(bindings) == 0 {
		if err := common.RespondWithContent(s, i, "No reaction roles in this channel.", true); err != nil {
			log.Errorf("Error responding to reactrole list: %v", err)
		}
		return
	}

	var sb strings.Builder
	for _, binding := range bindings {
		fmt.Fprintf(&sb, "%s on [message](https://discord.com/channels/%d/%d/%d) grants <@&%d>\n",
			displayEmoji(binding.Emoji), binding.GuildID, binding.ChannelID, binding.MessageID, binding.RoleID)
	}

	embed := &discordgo.MessageEmbed{
		Title:       "Reaction Roles",
		Description: sb.String(),
	}
	if err := common.RespondWithEmbed(s, i, embed, true); err != nil {
		log.Errorf("Error responding to reactrole list: %v", err)
	}
}

// displayEmoji renders a stored emoji back into a message-embeddable
// form.
func displayEmoji(emoji string) string {
	if idx := strings.LastIndex(emoji, ":"); idx > 0 {
		return fmt.Sprintf("<:%s>", emoji)
	}
	return emoji
}
