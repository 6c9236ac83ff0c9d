package bot

import (
	"context"
	"errors"
	"fmt"

	"lunabot/bot/common"
	"lunabot/models"

	"github.com/bwmarrin/discordgo"
)

// Platform implements the service platform interfaces over a discordgo
// session. All failures come back as PlatformOperationError; Discord
// 404s additionally wrap ErrPlatformNotFound so callers can treat
// vanished entities as already cleaned up.
type Platform struct {
	session *discordgo.Session
}

// NewPlatform creates a platform adapter over a discord session
func NewPlatform(session *discordgo.Session) *Platform {
	return &Platform{session: session}
}

func wrapPlatformErr(op string, err error) error {
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Response != nil && restErr.Response.StatusCode == 404 {
		return &models.PlatformOperationError{Op: op, Err: fmt.Errorf("%w: %v", models.ErrPlatformNotFound, err)}
	}
	return &models.PlatformOperationError{Op: op, Err: err}
}

// CreateVoiceChannel creates a voice channel and returns its ID
func (p *Platform) CreateVoiceChannel(ctx context.Context, guildID int64, name string) (int64, error) {
	channel, err := p.session.GuildChannelCreateComplex(common.FormatID(guildID), discordgo.GuildChannelCreateData{
		Name: name,
		Type: discordgo.ChannelTypeGuildVoice,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return 0, wrapPlatformErr("create voice channel", err)
	}

	channelID, err := common.ParseID(channel.ID)
	if err != nil {
		return 0, wrapPlatformErr("create voice channel", err)
	}

	return channelID, nil
}

// DeleteChannel deletes a channel
func (p *Platform) DeleteChannel(ctx context.Context, channelID int64) error {
	if _, err := p.session.ChannelDelete(common.FormatID(channelID), discordgo.WithContext(ctx)); err != nil {
		return wrapPlatformErr("delete channel", err)
	}
	return nil
}

// MoveMember moves a member into a voice channel
func (p *Platform) MoveMember(ctx context.Context, guildID, userID, channelID int64) error {
	target := common.FormatID(channelID)
	err := p.session.GuildMemberMove(common.FormatID(guildID), common.FormatID(userID), &target, discordgo.WithContext(ctx))
	if err != nil {
		return wrapPlatformErr("move member", err)
	}
	return nil
}

// ChannelMemberCount reports how many members are in a voice channel,
// from the gateway state rather than a REST round-trip.
func (p *Platform) ChannelMemberCount(guildID, channelID int64) (int, error) {
	guild, err := p.session.State.Guild(common.FormatID(guildID))
	if err != nil {
		return 0, wrapPlatformErr("channel member count", err)
	}

	target := common.FormatID(channelID)
	count := 0
	for _, vs := range guild.VoiceStates {
		if vs.ChannelID == target {
			count++
		}
	}

	return count, nil
}

// AddRole grants a role to a member
func (p *Platform) AddRole(ctx context.Context, guildID, userID, roleID int64) error {
	err := p.session.GuildMemberRoleAdd(common.FormatID(guildID), common.FormatID(userID), common.FormatID(roleID), discordgo.WithContext(ctx))
	if err != nil {
		return wrapPlatformErr("add role", err)
	}
	return nil
}

// RemoveRole revokes a role from a member
func (p *Platform) RemoveRole(ctx context.Context, guildID, userID, roleID int64) error {
	err := p.session.GuildMemberRoleRemove(common.FormatID(guildID), common.FormatID(userID), common.FormatID(roleID), discordgo.WithContext(ctx))
	if err != nil {
		return wrapPlatformErr("remove role", err)
	}
	return nil
}

// MessageExists reports whether a message is fetchable in a channel
func (p *Platform) MessageExists(ctx context.Context, channelID, messageID int64) error {
	_, err := p.session.ChannelMessage(common.FormatID(channelID), common.FormatID(messageID), discordgo.WithContext(ctx))
	if err != nil {
		return wrapPlatformErr("fetch message", err)
	}
	return nil
}

// AddReaction adds the bot's own reaction to a message
func (p *Platform) AddReaction(ctx context.Context, channelID, messageID int64, emoji string) error {
	err := p.session.MessageReactionAdd(common.FormatID(channelID), common.FormatID(messageID), emoji, discordgo.WithContext(ctx))
	if err != nil {
		return wrapPlatformErr("add reaction", err)
	}
	return nil
}
