package events

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeBalanceChange      EventType = "balance_change"
	EventTypeUserCreated        EventType = "user_created"
	EventTypeGuildConfigUpdated EventType = "guild_config_updated"
	EventTypeTempChannelCreated EventType = "temp_channel_created"
	EventTypeTempChannelDeleted EventType = "temp_channel_deleted"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// BalanceChangeEvent represents a starbits balance change that occurred
type BalanceChangeEvent struct {
	UserID     int64
	OldBalance int64
	NewBalance int64
	Reason     string
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
}

// UserCreatedEvent represents lazy creation of a user config row
type UserCreatedEvent struct {
	UserID int64
}

func (e UserCreatedEvent) Type() EventType {
	return EventTypeUserCreated
}

// GuildConfigUpdatedEvent carries the full updated config so cache
// subscribers can apply it without a store round-trip.
type GuildConfigUpdatedEvent struct {
	GuildID           int64
	WelcomeChannelID  *int64
	VoiceHubChannelID *int64
	ReactionToggle    bool
}

func (e GuildConfigUpdatedEvent) Type() EventType {
	return EventTypeGuildConfigUpdated
}

// TempChannelCreatedEvent represents a spawned ephemeral voice channel
type TempChannelCreatedEvent struct {
	GuildID   int64
	ChannelID int64
	OwnerID   int64
}

func (e TempChannelCreatedEvent) Type() EventType {
	return EventTypeTempChannelCreated
}

// TempChannelDeletedEvent represents a torn-down ephemeral voice channel
type TempChannelDeletedEvent struct {
	GuildID   int64
	ChannelID int64
}

func (e TempChannelDeletedEvent) Type() EventType {
	return EventTypeTempChannelDeleted
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// Emit publishes an event to all registered handlers
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	// Call handlers asynchronously to avoid blocking the emitter
	for i, handler := range handlers {
		go func(h Handler, handlerIndex int) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}

// TransactionalBus stashes events raised during a unit of work and
// flushes them to the underlying bus only after the database commit.
type TransactionalBus struct {
	real    *Bus
	pending []Event
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) {
	b.pending = append(b.pending, e)
}

// Flush is called after a successful DB commit. Events are emitted on a
// background context since the transaction context may already be done.
func (b *TransactionalBus) Flush(ctx context.Context) error {
	eventCtx := context.Background()
	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
	return nil
}

// Discard drops pending events after a rollback.
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
