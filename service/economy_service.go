package service

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"lunabot/events"
	"lunabot/models"
)

const (
	// Daily claim bounds before the boost roll
	claimMin = 1
	claimMax = 10

	// Chance in percent that a claim is doubled
	claimBoostChancePct = 10

	// Cooldown between daily claims
	claimCooldown = 24 * time.Hour
)

// wagerTier is one payout band of the gamble. Tiers are checked in
// ascending order; the first tier whose max is >= the roll wins.
type wagerTier struct {
	maxRoll    int
	multiplier float64
}

// wagerTiers partitions rolls 1..100 exhaustively and disjointly.
var wagerTiers = []wagerTier{
	{maxRoll: 4, multiplier: 10},
	{maxRoll: 19, multiplier: 3},
	{maxRoll: 39, multiplier: 1.5},
	{maxRoll: 69, multiplier: -1},
	{maxRoll: 100, multiplier: -1.25},
}

// payoutMultiplier returns the net payout multiplier for a roll in [1,100].
func payoutMultiplier(roll int) float64 {
	for _, tier := range wagerTiers {
		if roll <= tier.maxRoll {
			return tier.multiplier
		}
	}
	// Unreachable for rolls in [1,100]; the last tier caps at 100.
	return wagerTiers[len(wagerTiers)-1].multiplier
}

// economyService implements the EconomyService interface
type economyService struct {
	uowFactory UnitOfWorkFactory
	rng        *rand.Rand
}

// NewEconomyService creates a new economy service
func NewEconomyService(uowFactory UnitOfWorkFactory) EconomyService {
	return NewEconomyServiceWithRand(uowFactory, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewEconomyServiceWithRand creates an economy service with a caller
// supplied random source, for deterministic tests.
func NewEconomyServiceWithRand(uowFactory UnitOfWorkFactory, rng *rand.Rand) EconomyService {
	return &economyService{
		uowFactory: uowFactory,
		rng:        rng,
	}
}

// ClaimDaily grants the cooldown-gated daily starbits. The granted
// amount is uniform in [1,10] with an independent 10% chance of being
// doubled; the cooldown always advances by 24h on success.
func (s *economyService) ClaimDaily(ctx context.Context, userID int64, now time.Time) (*models.ClaimResult, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	user, err := uow.UserConfigRepository().GetOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user config: %w", err)
	}

	if now.Before(user.NextClaimAt) {
		return nil, &models.ClaimOnCooldownError{RetryAt: user.NextClaimAt}
	}

	amount := int64(claimMin + s.rng.Intn(claimMax-claimMin+1))
	boosted := s.rng.Intn(100) < claimBoostChancePct
	if boosted {
		amount *= 2
	}

	updated, err := uow.UserConfigRepository().AddBalance(ctx, userID, amount)
	if err != nil {
		return nil, fmt.Errorf("failed to grant claim: %w", err)
	}

	nextClaimAt := now.Add(claimCooldown)
	if err := uow.UserConfigRepository().SetNextClaim(ctx, userID, nextClaimAt); err != nil {
		return nil, fmt.Errorf("failed to advance claim cooldown: %w", err)
	}

	uow.EventBus().Publish(events.BalanceChangeEvent{
		UserID:     userID,
		OldBalance: user.Balance,
		NewBalance: updated.Balance,
		Reason:     "daily_claim",
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.ClaimResult{
		Amount:      amount,
		Boosted:     boosted,
		NewBalance:  updated.Balance,
		NextClaimAt: nextClaimAt,
	}, nil
}

// Wager stakes starbits on a tiered-payout roll in [1,100]. The net
// change is amount times the tier multiplier; the deep-loss tier's
// debit is capped at the current balance so the balance never goes
// negative.
func (s *economyService) Wager(ctx context.Context, userID int64, amount int64) (*models.WagerResult, error) {
	if amount <= 0 {
		return nil, &models.InvalidAmountError{Amount: amount}
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	user, err := uow.UserConfigRepository().GetOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user config: %w", err)
	}

	if amount > user.Balance {
		return nil, &models.InsufficientFundsError{
			UserID: userID,
			Have:   user.Balance,
			Need:   amount,
		}
	}

	roll := 1 + s.rng.Intn(100)
	multiplier := payoutMultiplier(roll)
	change := int64(math.Round(float64(amount) * multiplier))

	capped := false
	if change < 0 && -change > user.Balance {
		change = -user.Balance
		capped = true
	}

	updated, err := uow.UserConfigRepository().AddBalance(ctx, userID, change)
	if err != nil {
		return nil, fmt.Errorf("failed to apply wager outcome: %w", err)
	}

	uow.EventBus().Publish(events.BalanceChangeEvent{
		UserID:     userID,
		OldBalance: user.Balance,
		NewBalance: updated.Balance,
		Reason:     "wager",
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.WagerResult{
		Roll:       roll,
		Multiplier: multiplier,
		Change:     change,
		Capped:     capped,
		NewBalance: updated.Balance,
	}, nil
}

// Balance returns the user's current starbits balance
func (s *economyService) Balance(ctx context.Context, userID int64) (int64, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserConfigRepository().GetOrCreate(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to get user config: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return user.Balance, nil
}

// SetBalance overwrites a balance (developer allowlist only; the gate
// lives at the command layer)
func (s *economyService) SetBalance(ctx context.Context, userID int64, amount int64) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserConfigRepository().GetOrCreate(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get user config: %w", err)
	}

	if err := uow.UserConfigRepository().SetBalance(ctx, userID, amount); err != nil {
		return err
	}

	uow.EventBus().Publish(events.BalanceChangeEvent{
		UserID:     userID,
		OldBalance: user.Balance,
		NewBalance: amount,
		Reason:     "devset",
	})

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Leaderboard returns the top starbits holders
func (s *economyService) Leaderboard(ctx context.Context, limit int) ([]*models.LeaderboardEntry, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	entries, err := uow.UserConfigRepository().GetTopBalances(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return entries, nil
}
