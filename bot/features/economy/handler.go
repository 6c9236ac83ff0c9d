package economy

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"lunabot/bot/common"
	"lunabot/models"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// handleClaim handles the /starbits claim subcommand
func (f *Feature) handleClaim(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	userID, err := common.ParseID(i.Member.User.ID)
	if err != nil {
		log.Errorf("Error parsing Discord ID %s: %v", i.Member.User.ID, err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	result, err := f.economyService.ClaimDaily(ctx, userID, time.Now())
	if err != nil {
		var cooldown *models.ClaimOnCooldownError
		if errors.As(err, &cooldown) {
			common.RespondWithError(s, i, fmt.Sprintf(
				"You already claimed your daily starbits. Try again %s.",
				common.FormatDiscordTimestamp(cooldown.RetryAt, "R")))
			return
		}
		log.Errorf("Error claiming daily for user %d: %v", userID, err)
		common.RespondWithError(s, i, "Unable to claim starbits. Please try again.")
		return
	}

	displayName := common.GetDisplayName(s, i.GuildID, i.Member.User.ID)

	message := fmt.Sprintf("%s claimed **%d starbits**!", displayName, result.Amount)
	if result.Boosted {
		message = fmt.Sprintf("%s claimed **%d starbits** (lucky double)!", displayName, result.Amount)
	}
	message += fmt.Sprintf(" New balance: **%s**", common.FormatBalance(result.NewBalance))

	if err := common.RespondWithContent(s, i, message, false); err != nil {
		log.Errorf("Error responding to claim command: %v", err)
	}
}

// handleGamble handles the /starbits gamble subcommand
func (f *Feature) handleGamble(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	userID, err := common.ParseID(i.Member.User.ID)
	if err != nil {
		log.Errorf("Error parsing Discord ID %s: %v", i.Member.User.ID, err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	options := i.ApplicationCommandData().Options[0].Options
	if len(options) == 0 {
		common.RespondWithError(s, i, "Amount is required")
		return
	}
	amount := options[0].IntValue()

	result, err := f.economyService.Wager(ctx, userID, amount)
	if err != nil {
		var invalid *models.InvalidAmountError
		if errors.As(err, &invalid) {
			common.RespondWithError(s, i, "Amount must be a positive number of starbits")
			return
		}
		var funds *models.InsufficientFundsError
		if errors.As(err, &funds) {
			common.RespondWithError(s, i, fmt.Sprintf(
				"You only have **%s starbits**, not enough to stake **%s**",
				common.FormatBalance(funds.Have), common.FormatBalance(funds.Need)))
			return
		}
		log.Errorf("Error processing wager for user %d: %v", userID, err)
		common.RespondWithError(s, i, "Unable to process wager. Please try again.")
		return
	}

	displayName := common.GetDisplayName(s, i.GuildID, i.Member.User.ID)
	if err := common.RespondWithContent(s, i, formatWagerOutcome(displayName, result), false); err != nil {
		log.Errorf("Error responding to gamble command: %v", err)
	}
}

func formatWagerOutcome(displayName string, result *models.WagerResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s rolled **%d**", displayName, result.Roll)

	if result.Change >= 0 {
		fmt.Fprintf(&sb, " and won **%s starbits** (%gx)!", common.FormatBalance(result.Change), result.Multiplier)
	} else {
		fmt.Fprintf(&sb, " and lost **%s starbits** (%gx).", common.FormatBalance(-result.Change), result.Multiplier)
		if result.Capped {
			sb.WriteString(" That wiped you out.")
		}
	}

	fmt.Fprintf(&sb, " New balance: **%s**", common.FormatBalance(result.NewBalance))
	return sb.String()
}

// handleBalance handles the /starbits balance subcommand
func (f *Feature) handleBalance(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	// Default to the caller, allow checking another user
	targetID := i.Member.User.ID
	options := i.ApplicationCommandData().Options[0].Options
	if len(options) > 0 && options[0].Name == "user" {
		targetID = options[0].UserValue(s).ID
	}

	userID, err := common.ParseID(targetID)
	if err != nil {
		log.Errorf("Error parsing Discord ID %s: %v", targetID, err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	balance, err := f.economyService.Balance(ctx, userID)
	if err != nil {
		log.Errorf("Error getting balance for user %d: %v", userID, err)
		common.RespondWithError(s, i, "Unable to retrieve balance. Please try again.")
		return
	}

	displayName := common.GetDisplayName(s, i.GuildID, targetID)
	if err := common.RespondWithContent(s, i, fmt.Sprintf("%s has **%s starbits**", displayName, common.FormatBalance(balance)), false); err != nil {
		log.Errorf("Error responding to balance command: %v", err)
	}
}

// handleTop handles the /starbits top subcommand
func (f *Feature) handleTop(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	entries, err := f.economyService.Leaderboard(ctx, 10)
	if err != nil {
		log.Errorf("Error getting leaderboard: %v", err)
		common.RespondWithError(s, i, "Unable to retrieve leaderboard. Please try again.")
		return
	}

	if len(entries) == 0 {
		if err := common.RespondWithContent(s, i, "Nobody has any starbits yet.", false); err != nil {
			log.Errorf("Error responding to top command: %v", err)
		}
		return
	}

	var sb strings.Builder
	for _, entry := range entries {
		fmt.Fprintf(&sb, "**%d.** %s: **%s starbits**\n",
			entry.Rank,
			common.GetDisplayName(s, i.GuildID, common.FormatID(entry.UserID)),
			common.FormatBalance(entry.Balance))
	}

	embed := &discordgo.MessageEmbed{
		Title:       "Starbits Leaderboard",
		Description: sb.String(),
		Color:       0xFFD700,
	}
	if err := common.RespondWithEmbed(s, i, embed, false); err != nil {
		log.Errorf("Error responding to top command: %v", err)
	}
}

// handleDevSet handles the /starbits devset subcommand. Restricted to
// the developer allowlist rather than guild permissions.
func (f *Feature) handleDevSet(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	callerID, err := common.ParseID(i.Member.User.ID)
	if err != nil {
		log.Errorf("Error parsing Discord ID %s: %v", i.Member.User.ID, err)
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	if !f.developerIDs[callerID] {
		common.RespondWithError(s, i, "This command is restricted to bot developers")
		return
	}

	options := i.ApplicationCommandData().Options[0].Options
	if len(options) < 2 {
		common.RespondWithError(s, i, "User and amount are required")
		return
	}

	targetID, err := common.ParseID(options[0].UserValue(s).ID)
	if err != nil {
		log.Errorf("Error parsing target ID: %v", err)
		common.RespondWithError(s, i, "Invalid user")
		return
	}
	amount := options[1].IntValue()

	if err := f.economyService.SetBalance(ctx, targetID, amount); err != nil {
		var invalid *models.InvalidAmountError
		if errors.As(err, &invalid) {
			common.RespondWithError(s, i, "Balance cannot be negative")
			return
		}
		log.Errorf("Error setting balance for user %d: %v", targetID, err)
		common.RespondWithError(s, i, "Unable to set balance. Please try again.")
		return
	}

	common.RespondWithSuccess(s, i, fmt.Sprintf("Set %s's balance to **%s starbits**",
		common.GetUserMention(targetID), common.FormatBalance(amount)), true)
}
