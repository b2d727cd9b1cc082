package orderrepo

import (
	"context"
	"errors"

	"tableside/internal/core/domain/model/kernel"
	"tableside/internal/core/domain/model/order"
	"tableside/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOrderRepository implements OrderRepository using GORM.
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GORM order repository.
// Pass a transaction handle to scope operations to that transaction.
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// Add saves a new order to the database.
func (r *GormOrderRepository) Add(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	return r.db.WithContext(ctx).Create(&dto).Error
}

// Update saves an existing order to the database. All columns are written,
// including false/zero ones, so the row always mirrors the aggregate.
func (r *GormOrderRepository) Update(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).
		Model(&OrderDTO{}).
		Where("id = ?", dto.ID).
		Select("*").
		Updates(&dto)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// Get retrieves an order by ID.
func (r *GormOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	return r.get(ctx, id)
}

// GetForUpdate retrieves an order by ID with SELECT ... FOR UPDATE. The row
// lock is held until the enclosing transaction ends; a concurrent
// GetForUpdate on the same order blocks until then and observes the
// committed result. Outside a transaction this degrades to a plain read.
func (r *GormOrderRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	return r.get(ctx, id, clause.Locking{Strength: clause.LockingStrengthUpdate})
}

func (r *GormOrderRepository) get(
	ctx context.Context, id kernel.UUID, conds ...clause.Expression,
) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto OrderDTO
	tx := r.db.WithContext(ctx)
	if len(conds) > 0 {
		tx = tx.Clauses(conds...)
	}

	if err := tx.First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("order", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}
