package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"lunabot/bot"
	"lunabot/bot/common"
	"lunabot/cache"
	"lunabot/config"
	"lunabot/database"
	"lunabot/events"
	"lunabot/repository"
	"lunabot/service"

	"github.com/bwmarrin/discordgo"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Println("Starting lunabot...")

	// Load configuration
	cfg := config.Get()

	// Initialize database connection
	log.Println("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Println("Database connection established successfully")

	// Initialize event bus
	eventBus := events.NewBus()

	// Initialize unit of work factory
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	// The platform adapter is built over the session before the bot
	// opens it, so the services that call Discord can be constructed
	// first.
	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return fmt.Errorf("error creating discord session: %w", err)
	}
	platform := bot.NewPlatform(session)

	// The bot's own user ID, needed to ignore its own reactions. The
	// REST call works before the gateway connection is opened.
	self, err := session.User("@me")
	if err != nil {
		return fmt.Errorf("failed to look up bot user: %w", err)
	}
	selfID, err := common.ParseID(self.ID)
	if err != nil {
		return fmt.Errorf("failed to parse bot user ID %s: %w", self.ID, err)
	}

	// Initialize services
	log.Println("Initializing services...")
	guildCache := cache.NewGuildCache()
	guildConfigService := service.NewGuildConfigService(uowFactory)
	economyService := service.NewEconomyService(uowFactory)
	reactionRoleService := service.NewReactionRoleService(uowFactory, platform, platform, selfID)
	voiceManager := service.NewVoiceLifecycleService(uowFactory, guildCache, platform)
	log.Println("Services initialized successfully")

	// Warm the per-guild config cache and the live temp channel set
	// before any gateway events can arrive.
	if err := guildCache.Warm(ctx, guildConfigService); err != nil {
		return fmt.Errorf("failed to warm guild cache: %w", err)
	}
	if err := voiceManager.WarmLiveSet(ctx); err != nil {
		return fmt.Errorf("failed to load temp channel records: %w", err)
	}

	// Initialize Discord bot
	log.Println("Initializing Discord bot...")
	botConfig := bot.Config{
		DeveloperIDs: cfg.DeveloperIDs,
	}
	discordBot, err := bot.New(botConfig, session, guildCache, guildConfigService, economyService, reactionRoleService, voiceManager, platform, eventBus)
	if err != nil {
		return fmt.Errorf("failed to initialize Discord bot: %w", err)
	}
	log.Println("Discord bot initialized successfully")

	// Clean up temp channels that outlived the previous process. Runs
	// after the gateway is open so voice state is populated.
	if cfg.SweepOrphansOnStart {
		go func() {
			time.Sleep(2 * time.Second)
			if err := voiceManager.SweepOrphans(context.Background()); err != nil {
				log.Printf("Error sweeping orphaned temp channels: %v", err)
			}
		}()
	}

	// Wait for context cancellation
	log.Printf("Bot is running in %s mode...", cfg.Environment)
	<-ctx.Done()

	// Cleanup resources
	log.Println("Shutting down bot...")

	// Close Discord bot connection
	if err := discordBot.Close(); err != nil {
		log.Printf("Error closing Discord bot: %v", err)
	}

	// Give cleanup operations time to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Close database connection
	log.Println("Closing database connection...")
	db.Close()

	select {
	case <-shutdownCtx.Done():
		log.Println("Shutdown timeout exceeded")
	case <-time.After(1 * time.Second):
		log.Println("Shutdown completed")
	}

	return nil
}
