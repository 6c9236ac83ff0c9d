package bot

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"lunabot/bot/common"
	"lunabot/bot/features/autoroles"
	"lunabot/bot/features/economy"
	"lunabot/bot/features/reactionroles"
	"lunabot/bot/features/settings"
	"lunabot/bot/features/voice"
	"lunabot/cache"
	"lunabot/events"
	"lunabot/service"

	"github.com/bwmarrin/discordgo"
)

// Config holds bot configuration
type Config struct {
	DeveloperIDs []int64
}

type Bot struct {
	config             Config
	session            *discordgo.Session
	guildCache         *cache.GuildCache
	guildConfigService service.GuildConfigService
	reactionRoles      service.ReactionRoleService
	voiceManager       service.VoiceLifecycleManager
	rolePlatform       service.RolePlatform
	eventBus           *events.Bus

	economyFeature       *economy.Feature
	settingsFeature      *settings.Feature
	autorolesFeature     *autoroles.Feature
	reactionRolesFeature *reactionroles.Feature
	voiceFeature         *voice.Feature
}

// New wires the gateway surface over an already-created session. The
// session is opened here; callers construct it first so the platform
// adapter can be handed to the services.
func New(
	config Config,
	session *discordgo.Session,
	guildCache *cache.GuildCache,
	guildConfigService service.GuildConfigService,
	economyService service.EconomyService,
	reactionRoles service.ReactionRoleService,
	voiceManager service.VoiceLifecycleManager,
	rolePlatform service.RolePlatform,
	eventBus *events.Bus,
) (*Bot, error) {
	session.Identify.Intents = discordgo.IntentsAll

	bot := &Bot{
		config:             config,
		session:            session,
		guildCache:         guildCache,
		guildConfigService: guildConfigService,
		reactionRoles:      reactionRoles,
		voiceManager:       voiceManager,
		rolePlatform:       rolePlatform,
		eventBus:           eventBus,

		economyFeature:       economy.New(economyService, config.DeveloperIDs),
		settingsFeature:      settings.New(guildConfigService),
		autorolesFeature:     autoroles.New(guildConfigService),
		reactionRolesFeature: reactionroles.New(reactionRoles),
		voiceFeature:         voice.New(voiceManager),
	}

	// Register slash command handlers
	session.AddHandler(bot.handleCommands)

	// Register gateway event handlers
	session.AddHandler(bot.handleGuildMemberAdd)
	session.AddHandler(bot.handleReactionAdd)
	session.AddHandler(bot.handleReactionRemove)
	session.AddHandler(bot.handleVoiceStateUpdate)
	session.AddHandler(bot.handleMessageCreate)

	// Keep the cache in lockstep with committed config writes
	eventBus.Subscribe(events.EventTypeGuildConfigUpdated, func(ctx context.Context, event events.Event) {
		if update, ok := event.(events.GuildConfigUpdatedEvent); ok {
			guildCache.Apply(update)
		}
	})

	// Open websocket connection
	if err := session.Open(); err != nil {
		return nil, fmt.Errorf("error opening connection: %w", err)
	}

	// Register slash commands with Discord
	if err := bot.registerCommands(); err != nil {
		session.Close()
		return nil, fmt.Errorf("error registering commands: %w", err)
	}

	return bot, nil
}

func (b *Bot) Close() error {
	return b.session.Close()
}

// handleGuildMemberAdd posts the welcome message and grants autoroles
// to the new member.
func (b *Bot) handleGuildMemberAdd(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
	ctx := context.Background()

	guildID, err := common.ParseID(m.GuildID)
	if err != nil {
		log.Errorf("Failed to parse guild ID %s: %v", m.GuildID, err)
		return
	}
	userID, err := common.ParseID(m.User.ID)
	if err != nil {
		log.Errorf("Failed to parse user ID %s: %v", m.User.ID, err)
		return
	}

	if channelID := b.guildCache.WelcomeChannel(guildID); channelID != 0 {
		b.sendWelcome(s, m, channelID)
	}

	roleIDs, err := b.guildConfigService.ListAutoroles(ctx, guildID)
	if err != nil {
		log.Errorf("Failed to list autoroles for guild %d: %v", guildID, err)
		return
	}

	for _, roleID := range roleIDs {
		if err := b.rolePlatform.AddRole(ctx, guildID, userID, roleID); err != nil {
			// A stale role is logged and skipped, the rest still apply
			log.WithFields(log.Fields{
				"guildID": guildID,
				"userID":  userID,
				"roleID":  roleID,
			}).WithError(err).Error("Failed to grant autorole")
		}
	}
}

func (b *Bot) sendWelcome(s *discordgo.Session, m *discordgo.GuildMemberAdd, channelID int64) {
	embed := &discordgo.MessageEmbed{
		Title:       "Welcome!",
		Description: fmt.Sprintf("Welcome %s!", m.User.Mention()),
	}
	if guild, err := s.State.Guild(m.GuildID); err == nil {
		embed.Title = fmt.Sprintf("Welcome to %s!", guild.Name)
	}
	if m.User.Avatar != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: m.User.AvatarURL("")}
	}

	if _, err := s.ChannelMessageSendEmbed(common.FormatID(channelID), embed); err != nil {
		log.Errorf("Failed to send welcome message to channel %d: %v", channelID, err)
	}
}

func (b *Bot) handleReactionAdd(s *discordgo.Session, m *discordgo.MessageReactionAdd) {
	b.dispatchReaction(m.MessageReaction, b.reactionRoles.HandleReactionAdd)
}

func (b *Bot) handleReactionRemove(s *discordgo.Session, m *discordgo.MessageReactionRemove) {
	b.dispatchReaction(m.MessageReaction, b.reactionRoles.HandleReactionRemove)
}

func (b *Bot) dispatchReaction(m *discordgo.MessageReaction, handle func(ctx context.Context, event service.ReactionEvent) error) {
	if m.GuildID == "" {
		return // DM reactions carry no roles
	}

	event, err := reactionEventFrom(m)
	if err != nil {
		log.Errorf("Failed to parse reaction payload: %v", err)
		return
	}

	if err := handle(context.Background(), event); err != nil {
		log.WithFields(log.Fields{
			"guildID":   event.GuildID,
			"messageID": event.MessageID,
			"emoji":     event.Emoji,
		}).WithError(err).Error("Failed to handle reaction")
	}
}

func reactionEventFrom(m *discordgo.MessageReaction) (service.ReactionEvent, error) {
	guildID, err := common.ParseID(m.GuildID)
	if err != nil {
		return service.ReactionEvent{}, err
	}
	channelID, err := common.ParseID(m.ChannelID)
	if err != nil {
		return service.ReactionEvent{}, err
	}
	messageID, err := common.ParseID(m.MessageID)
	if err != nil {
		return service.ReactionEvent{}, err
	}
	userID, err := common.ParseID(m.UserID)
	if err != nil {
		return service.ReactionEvent{}, err
	}

	return service.ReactionEvent{
		GuildID:   guildID,
		ChannelID: channelID,
		MessageID: messageID,
		UserID:    userID,
		Emoji:     m.Emoji.APIName(),
	}, nil
}

// handleVoiceStateUpdate forwards voice transitions to the lifecycle
// manager.
func (b *Bot) handleVoiceStateUpdate(s *discordgo.Session, m *discordgo.VoiceStateUpdate) {
	guildID, err := common.ParseID(m.GuildID)
	if err != nil {
		log.Errorf("Failed to parse guild ID %s: %v", m.GuildID, err)
		return
	}
	userID, err := common.ParseID(m.UserID)
	if err != nil {
		log.Errorf("Failed to parse user ID %s: %v", m.UserID, err)
		return
	}

	afterID, err := common.ParseID(m.ChannelID)
	if err != nil {
		log.Errorf("Failed to parse channel ID %s: %v", m.ChannelID, err)
		return
	}

	var beforeID int64
	if m.BeforeUpdate != nil {
		beforeID, err = common.ParseID(m.BeforeUpdate.ChannelID)
		if err != nil {
			log.Errorf("Failed to parse channel ID %s: %v", m.BeforeUpdate.ChannelID, err)
			return
		}
	}

	update := service.VoiceStateUpdate{
		GuildID:         guildID,
		UserID:          userID,
		BeforeChannelID: beforeID,
		AfterChannelID:  afterID,
		DisplayName:     common.GetDisplayName(s, m.GuildID, m.UserID),
	}

	if err := b.voiceManager.HandleVoiceStateUpdate(context.Background(), update); err != nil {
		log.WithFields(log.Fields{
			"guildID": guildID,
			"userID":  userID,
		}).WithError(err).Error("Failed to handle voice state update")
	}
}

// handleMessageCreate adds canned reactions to matching messages when
// the guild's reaction toggle is on.
func (b *Bot) handleMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return
	}

	guildID, err := common.ParseID(m.GuildID)
	if err != nil {
		return
	}
	if !b.guildCache.ReactionsEnabled(guildID) {
		return
	}

	content := strings.ToLower(m.Content)
	for _, r := range messageReactions {
		if r.matches(content) {
			if err := s.MessageReactionAdd(m.ChannelID, m.ID, r.emoji); err != nil {
				log.Errorf("Failed to add reaction %s: %v", r.emoji, err)
			}
		}
	}
}

// messageReaction pairs a content predicate with the emoji to add.
type messageReaction struct {
	emoji    string
	contains string // substring match when set
	exact    string // full-message match when set
}

func (r messageReaction) matches(content string) bool {
	if r.exact != "" {
		return content == r.exact
	}
	return strings.Contains(content, r.contains)
}

var messageReactions = []messageReaction{
	{emoji: "🇫🇷", contains: "fr"},
	{emoji: "💔", exact: "ts pmo"},
	{emoji: "🗿", contains: "🗿"},
	{emoji: "👍", exact: "ok"},
	{emoji: "😊", exact: "good boy"},
}
