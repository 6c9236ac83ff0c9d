package models

import (
	"errors"
	"fmt"
	"time"
)

// ErrPlatformNotFound is wrapped into a PlatformOperationError when the
// platform reports the target entity no longer exists.
var ErrPlatformNotFound = errors.New("not found on platform")

// NotFoundError indicates a referenced guild, user, channel or binding
// was absent where presence was assumed.
type NotFoundError struct {
	Kind string
	ID   int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Kind, e.ID)
}

// InsufficientFundsError indicates a balance change would drive the
// balance negative. The attempted change is rejected, never clamped.
type InsufficientFundsError struct {
	UserID int64
	Have   int64
	Need   int64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds for user %d: have %d, need %d", e.UserID, e.Have, e.Need)
}

// InvalidAmountError indicates a non-positive wager amount.
type InvalidAmountError struct {
	Amount int64
}

func (e *InvalidAmountError) Error() string {
	return fmt.Sprintf("invalid amount: %d", e.Amount)
}

// ClaimOnCooldownError indicates a daily claim attempted before the
// cooldown expired.
type ClaimOnCooldownError struct {
	RetryAt time.Time
}

func (e *ClaimOnCooldownError) Error() string {
	return fmt.Sprintf("daily claim on cooldown until %s", e.RetryAt.Format(time.RFC3339))
}

// UnknownFieldError indicates a config upsert referenced a field the
// schema doesn't know. This is a programmer error, not user input.
type UnknownFieldError struct {
	Field string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("unknown config field: %q", e.Field)
}

// PlatformOperationError wraps a failure from the chat platform client
// (permission denied, rate limited, not found on platform).
type PlatformOperationError struct {
	Op  string
	Err error
}

func (e *PlatformOperationError) Error() string {
	return fmt.Sprintf("platform operation %s failed: %v", e.Op, e.Err)
}

func (e *PlatformOperationError) Unwrap() error {
	return e.Err
}
