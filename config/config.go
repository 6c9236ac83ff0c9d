package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
)

// Config holds all application configuration
type Config struct {
	// Discord configuration
	DiscordToken string

	// Database configuration
	DatabaseURL string

	// Developer IDs allowed to use privileged commands (e.g. devset)
	DeveloperIDs []int64

	// Voice configuration
	SweepOrphansOnStart bool

	// Environment
	Environment string // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
)

// Get returns the global configuration instance
func Get() *Config {
	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// load loads configuration from environment variables
func load() (*Config, error) {
	config := &Config{
		DiscordToken: os.Getenv("DISCORD_TOKEN"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		Environment:  os.Getenv("ENVIRONMENT"),

		// Orphaned temp voice channels are swept at startup unless
		// explicitly disabled.
		SweepOrphansOnStart: os.Getenv("SWEEP_ORPHANS_ON_START") != "false",
	}

	// Parse developer ID allowlist
	if devIDs := os.Getenv("DEVELOPER_IDS"); devIDs != "" {
		idStrings := strings.Split(devIDs, ",")
		for _, idStr := range idStrings {
			idStr = strings.TrimSpace(idStr)
			if idStr != "" {
				if id, err := strconv.ParseInt(idStr, 10, 64); err == nil {
					config.DeveloperIDs = append(config.DeveloperIDs, id)
				}
			}
		}
	}

	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		if config.DiscordToken == "" {
			return nil, fmt.Errorf("DISCORD_TOKEN is required")
		}
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
	}

	return config, nil
}

// IsDeveloper reports whether the given user is on the developer allowlist.
func (c *Config) IsDeveloper(userID int64) bool {
	for _, id := range c.DeveloperIDs {
		if id == userID {
			return true
		}
	}
	return false
}
