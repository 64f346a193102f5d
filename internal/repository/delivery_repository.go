package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/d60-Lab/quickcart/internal/model"
)

type DeliveryRepository interface {
	Create(ctx context.Context, d *model.Delivery) error
	GetByID(ctx context.Context, deliveryID string) (*model.Delivery, error)
	ListByDriver(ctx context.Context, driverID string) ([]*model.Delivery, error)
	// MarkDelivered 仅当配送单属于该司机且处于 ASSIGNED 时更新
	MarkDelivered(ctx context.Context, deliveryID, driverID string, at time.Time) (bool, error)
}

type deliveryRepository struct{ db *gorm.DB }

func NewDeliveryRepository(db *gorm.DB) DeliveryRepository { return &deliveryRepository{db: db} }

func (r *deliveryRepository) Create(ctx context.Context, d *model.Delivery) error {
	return r.db.WithContext(ctx).Omit("Order").Create(d).Error
}

func (r *deliveryRepository) GetByID(ctx context.Context, deliveryID string) (*model.Delivery, error) {
	var d model.Delivery
	if err := r.db.WithContext(ctx).Where("id = ?", deliveryID).First(&d).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *deliveryRepository) ListByDriver(ctx context.Context, driverID string) ([]*model.Delivery, error) {
	var res []*model.Delivery
	err := r.db.WithContext(ctx).
		Preload("Order.User").
		Preload("Order.Items").
		Where("driver_id = ?", driverID).
		Order("assigned_at DESC").
		Find(&res).Error
	return res, err
}

func (r *deliveryRepository) MarkDelivered(ctx context.Context, deliveryID, driverID string, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Delivery{}).
		Where("id = ? AND driver_id = ? AND status = ?", deliveryID, driverID, model.DeliveryAssigned).
		Updates(map[string]any{"status": model.DeliveryDelivered, "delivered_at": at})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
