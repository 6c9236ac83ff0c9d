package models

import (
	"time"
)

// ClaimResult describes a successful daily starbits claim.
type ClaimResult struct {
	Amount      int64
	Boosted     bool
	NewBalance  int64
	NextClaimAt time.Time
}

// WagerResult describes the outcome of a starbits gamble.
type WagerResult struct {
	Roll       int
	Multiplier float64
	// Change is the net balance change actually applied. On the deep-loss
	// tier it can be capped so the balance bottoms out at zero; Capped
	// records that the nominal debit exceeded the user's funds.
	Change     int64
	Capped     bool
	NewBalance int64
}
