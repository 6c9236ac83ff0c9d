package repository

import (
	"context"
	"fmt"

	"lunabot/database"
	"lunabot/events"
	"lunabot/service"

	"github.com/jackc/pgx/v5"
)

// unitOfWork implements the UnitOfWork interface
type unitOfWork struct {
	db               *database.DB
	tx               pgx.Tx
	ctx              context.Context
	transactionalBus *events.TransactionalBus
	guildConfigRepo  service.GuildConfigRepository
	userConfigRepo   service.UserConfigRepository
	tempChannelRepo  service.TempChannelRepository
	reactionRoleRepo service.ReactionRoleRepository
}

// NewUnitOfWorkFactory creates a new UnitOfWork factory
func NewUnitOfWorkFactory(db *database.DB, eventBus *events.Bus) service.UnitOfWorkFactory {
	return &unitOfWorkFactory{
		db:       db,
		eventBus: eventBus,
	}
}

type unitOfWorkFactory struct {
	db       *database.DB
	eventBus *events.Bus
}

func (f *unitOfWorkFactory) Create() service.UnitOfWork {
	return &unitOfWork{
		db:               f.db,
		transactionalBus: events.NewTransactionalBus(f.eventBus),
	}
}

// Begin starts a new transaction
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	tx, err := u.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u.tx = tx
	u.ctx = ctx

	u.guildConfigRepo = newGuildConfigRepositoryWithTx(tx)
	u.userConfigRepo = newUserConfigRepositoryWithTx(tx)
	u.tempChannelRepo = newTempChannelRepositoryWithTx(tx)
	u.reactionRoleRepo = newReactionRoleRepositoryWithTx(tx)

	return nil
}

// Commit commits the transaction and flushes pending events
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}

	if err := u.tx.Commit(u.ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	u.tx = nil

	if u.transactionalBus != nil {
		u.transactionalBus.Flush(u.ctx)
	}

	return nil
}

// Rollback rolls back the transaction and discards pending events
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil // Nothing to rollback
	}

	err := u.tx.Rollback(u.ctx)
	if err != nil && err != pgx.ErrTxClosed {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}

	u.tx = nil

	if u.transactionalBus != nil {
		u.transactionalBus.Discard()
	}

	return nil
}

// GuildConfigRepository returns the guild config repository for this unit of work
func (u *unitOfWork) GuildConfigRepository() service.GuildConfigRepository {
	if u.guildConfigRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.guildConfigRepo
}

// UserConfigRepository returns the user config repository for this unit of work
func (u *unitOfWork) UserConfigRepository() service.UserConfigRepository {
	if u.userConfigRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.userConfigRepo
}

// TempChannelRepository returns the temp channel repository for this unit of work
func (u *unitOfWork) TempChannelRepository() service.TempChannelRepository {
	if u.tempChannelRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.tempChannelRepo
}

// ReactionRoleRepository returns the reaction role repository for this unit of work
func (u *unitOfWork) ReactionRoleRepository() service.ReactionRoleRepository {
	if u.reactionRoleRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.reactionRoleRepo
}

// EventBus returns the transactional event bus for this unit of work
func (u *unitOfWork) EventBus() service.EventPublisher {
	if u.transactionalBus == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.transactionalBus
}
