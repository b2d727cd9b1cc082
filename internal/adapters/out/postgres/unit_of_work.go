// Package postgres provides the GORM-based implementation of the Unit of Work
// pattern. A unit of work brackets one order mutation in a database
// transaction; row locks taken inside the transaction (GetForUpdate) are held
// until Commit or Rollback, which is what serializes concurrent status
// changes to the same order.
//
// Usage:
//
//	factory := NewGormUnitOfWorkFactory(db)
//	uow := factory.Create()
//
//	if err := uow.Begin(ctx); err != nil {
//	    return err
//	}
//	defer func() {
//	    _ = uow.Rollback(ctx)
//	}()
//
//	aggregate, err := uow.OrderRepository().GetForUpdate(ctx, id)
//	if err != nil {
//	    return err
//	}
//	// ... mutate and Update ...
//
//	return uow.Commit(ctx)
package postgres

import (
	"context"

	"tableside/internal/adapters/out/postgres/orderrepo"
	"tableside/internal/core/ports"

	"gorm.io/gorm"
)

// GormUnitOfWorkFactory creates UnitOfWork instances using a shared GORM
// database connection. Each business operation gets a fresh unit of work so
// concurrent operations never share transaction state.
type GormUnitOfWorkFactory struct {
	db *gorm.DB
}

// NewGormUnitOfWorkFactory creates a factory for GORM-based unit of work
// instances. The provided database connection is shared by every instance.
func NewGormUnitOfWorkFactory(db *gorm.DB) *GormUnitOfWorkFactory {
	return &GormUnitOfWorkFactory{db: db}
}

// Create produces a new UnitOfWork ready for one business transaction.
func (f *GormUnitOfWorkFactory) Create() ports.UnitOfWork {
	return &GormUnitOfWork{db: f.db}
}

// GormUnitOfWork coordinates a single database transaction for an order
// mutation. Repositories obtained from it execute within the transaction once
// Begin has been called, so locked reads and the subsequent write share one
// transaction and one set of row locks.
type GormUnitOfWork struct {
	db *gorm.DB
	tx *gorm.DB
}

// Begin initiates a new database transaction for the unit of work.
// Subsequent repository operations execute within this transaction context.
// Calling Begin again on an instance with an open transaction is a no-op.
func (uow *GormUnitOfWork) Begin(ctx context.Context) error {
	if uow.tx != nil {
		return nil
	}

	uow.tx = uow.db.WithContext(ctx).Begin()
	if uow.tx.Error != nil {
		return uow.tx.Error
	}

	return nil
}

// Commit finalizes all changes made within the current transaction and
// releases its row locks. After commit the transaction cannot be reused.
//
// Returns error if no active transaction exists or if the commit fails.
func (uow *GormUnitOfWork) Commit(_ context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Commit().Error
	uow.tx = nil
	return err
}

// Rollback discards all changes made within the current transaction and
// releases its row locks. After rollback the transaction cannot be reused.
//
// Returns error if no active transaction exists or if the rollback fails.
func (uow *GormUnitOfWork) Rollback(_ context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Rollback().Error
	uow.tx = nil
	return err
}

// OrderRepository provides access to order persistence operations within the
// unit of work. Repository operations execute within the current transaction
// if one is active, otherwise directly on the main database connection.
func (uow *GormUnitOfWork) OrderRepository() ports.OrderRepository {
	db := uow.db
	if uow.tx != nil {
		db = uow.tx
	}
	return orderrepo.NewGormOrderRepository(db)
}
