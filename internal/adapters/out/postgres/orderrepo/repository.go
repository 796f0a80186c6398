package orderrepo

import (
	"context"
	"errors"
	"fmt"

	"ordering/internal/core/domain/model/kernel"
	"ordering/internal/core/domain/model/order"
	"ordering/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormOrderRepository implements ports.OrderRepository using GORM.
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GORM order repository.
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// Add saves a new order to the database.
func (r *GormOrderRepository) Add(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto, err := fromDomain(aggregate)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(&dto).Error
}

// Update saves an existing order to the database.
func (r *GormOrderRepository) Update(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto, err := fromDomain(aggregate)
	if err != nil {
		return err
	}

	// Save, not Updates: zero values (a cleared tracking url, an empty
	// note) must overwrite what is stored.
	result := r.db.WithContext(ctx).Model(&OrderDTO{}).Where("id = ?", dto.ID).Select("*").Updates(&dto)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("order", aggregate.ID().String())
	}
	return nil
}

// Get retrieves an order by ID.
func (r *GormOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto OrderDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("order", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// GetByPosOrderID resolves the order a POS webhook refers to.
func (r *GormOrderRepository) GetByPosOrderID(ctx context.Context, provider, externalOrderID string) (*order.Order, error) {
	var dto OrderDTO
	err := r.db.WithContext(ctx).
		First(&dto, "pos_provider = ? AND pos_order_id = ?", provider, externalOrderID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("order",
				fmt.Sprintf("pos ref %s/%s", provider, externalOrderID))
		}
		return nil, err
	}

	return toDomain(dto)
}

// GetByCourierJobID resolves the order a courier webhook refers to.
func (r *GormOrderRepository) GetByCourierJobID(ctx context.Context, provider, jobID string) (*order.Order, error) {
	var dto OrderDTO
	err := r.db.WithContext(ctx).
		First(&dto, "courier_provider = ? AND courier_job_id = ?", provider, jobID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("order",
				fmt.Sprintf("courier ref %s/%s", provider, jobID))
		}
		return nil, err
	}

	return toDomain(dto)
}

// GetAwaitingDispatch retrieves delivery orders that reached ready without a
// recorded courier job.
func (r *GormOrderRepository) GetAwaitingDispatch(ctx context.Context) ([]*order.Order, error) {
	var dtos []OrderDTO
	err := r.db.WithContext(ctx).
		Order("placed_at ASC").
		Find(&dtos, "fulfillment = ? AND status = ? AND courier_job_id = ''",
			string(order.FulfillmentDelivery), string(order.StatusReady)).Error
	if err != nil {
		return nil, err
	}

	return toDomainAll(dtos)
}

// GetActive retrieves all orders that have not reached a terminal status,
// newest first.
func (r *GormOrderRepository) GetActive(ctx context.Context) ([]*order.Order, error) {
	terminal := []string{
		string(order.StatusDelivered),
		string(order.StatusRejected),
		string(order.StatusCanceled),
		string(order.StatusFailed),
	}

	var dtos []OrderDTO
	err := r.db.WithContext(ctx).
		Order("placed_at DESC").
		Find(&dtos, "status NOT IN ?", terminal).Error
	if err != nil {
		return nil, err
	}

	return toDomainAll(dtos)
}

func toDomainAll(dtos []OrderDTO) ([]*order.Order, error) {
	orders := make([]*order.Order, 0, len(dtos))
	for _, dto := range dtos {
		o, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}
