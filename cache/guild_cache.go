package cache

import (
	"context"
	"fmt"
	"sync"

	"lunabot/events"
	"lunabot/models"
	"lunabot/service"

	log "github.com/sirupsen/logrus"
)

// GuildView is the read-optimized snapshot of a guild's config served
// on the event hot path.
type GuildView struct {
	GuildID           int64
	WelcomeChannelID  int64 // 0 when unset
	VoiceHubChannelID int64 // 0 when unset
	ReactionToggle    bool
}

// GuildCache holds guild config snapshots in memory. Reads never hit
// the store; writes arrive via Apply after a committed update.
type GuildCache struct {
	mu     sync.RWMutex
	guilds map[int64]GuildView
}

// NewGuildCache creates an empty guild cache
func NewGuildCache() *GuildCache {
	return &GuildCache{
		guilds: make(map[int64]GuildView),
	}
}

// Warm loads every stored guild config into the cache. Called once at
// startup before the gateway connects.
func (c *GuildCache) Warm(ctx context.Context, configs service.GuildConfigService) error {
	guildIDs, err := configs.ListGuildIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list guilds for cache warm-up: %w", err)
	}

	for _, guildID := range guildIDs {
		cfg, err := configs.GetOrDefault(ctx, guildID)
		if err != nil {
			return fmt.Errorf("failed to load config for guild %d: %w", guildID, err)
		}
		c.put(viewFromConfig(cfg))
		log.WithField("guildID", guildID).Debug("Warmed guild config cache entry")
	}

	log.WithField("guilds", len(guildIDs)).Info("Guild config cache warmed")
	return nil
}

// Get returns the cached view for a guild. Unknown guilds get the
// default view, matching what the store would lazily create.
func (c *GuildCache) Get(guildID int64) GuildView {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if view, ok := c.guilds[guildID]; ok {
		return view
	}
	return GuildView{GuildID: guildID, ReactionToggle: true}
}

// Apply overwrites a guild's cached view from a committed config update.
func (c *GuildCache) Apply(event events.GuildConfigUpdatedEvent) {
	c.put(GuildView{
		GuildID:           event.GuildID,
		WelcomeChannelID:  derefChannel(event.WelcomeChannelID),
		VoiceHubChannelID: derefChannel(event.VoiceHubChannelID),
		ReactionToggle:    event.ReactionToggle,
	})
}

// SetWelcomeChannel updates the cached welcome channel, 0 clears it.
func (c *GuildCache) SetWelcomeChannel(guildID, channelID int64) {
	c.update(guildID, func(view *GuildView) {
		view.WelcomeChannelID = channelID
	})
}

// SetVoiceHub updates the cached voice hub channel, 0 clears it.
func (c *GuildCache) SetVoiceHub(guildID, channelID int64) {
	c.update(guildID, func(view *GuildView) {
		view.VoiceHubChannelID = channelID
	})
}

// SetReactionToggle updates the cached reaction toggle.
func (c *GuildCache) SetReactionToggle(guildID int64, enabled bool) {
	c.update(guildID, func(view *GuildView) {
		view.ReactionToggle = enabled
	})
}

func (c *GuildCache) update(guildID int64, fn func(*GuildView)) {
	c.mu.Lock()
	defer c.mu.Unlock()

	view, ok := c.guilds[guildID]
	if !ok {
		view = GuildView{GuildID: guildID, ReactionToggle: true}
	}
	fn(&view)
	c.guilds[guildID] = view
}

// VoiceHub implements service.HubLookup.
func (c *GuildCache) VoiceHub(guildID int64) int64 {
	return c.Get(guildID).VoiceHubChannelID
}

// WelcomeChannel returns the configured welcome channel, 0 if unset.
func (c *GuildCache) WelcomeChannel(guildID int64) int64 {
	return c.Get(guildID).WelcomeChannelID
}

// ReactionsEnabled reports whether pattern reactions are on for a guild.
func (c *GuildCache) ReactionsEnabled(guildID int64) bool {
	return c.Get(guildID).ReactionToggle
}

func (c *GuildCache) put(view GuildView) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.guilds[view.GuildID] = view
}

func viewFromConfig(cfg *models.GuildConfig) GuildView {
	return GuildView{
		GuildID:           cfg.GuildID,
		WelcomeChannelID:  derefChannel(cfg.WelcomeChannelID),
		VoiceHubChannelID: derefChannel(cfg.VoiceHubChannelID),
		ReactionToggle:    cfg.ReactionToggle,
	}
}

func derefChannel(id *int64) int64 {
	if id == nil {
		return 0
	}
	return *id
}
