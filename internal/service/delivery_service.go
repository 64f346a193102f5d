package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/d60-Lab/quickcart/internal/model"
	"github.com/d60-Lab/quickcart/internal/repository"
	"github.com/d60-Lab/quickcart/pkg/logger"
)

// DeliveryService 司机端：接单与送达
type DeliveryService interface {
	// Available 已确认或打包中、尚未被接单的订单
	Available(ctx context.Context) ([]*model.Order, error)
	Accept(ctx context.Context, driverID, orderID string) (*model.Delivery, error)
	Complete(ctx context.Context, driverID, deliveryID string) (*model.Delivery, error)
	MyDeliveries(ctx context.Context, driverID string) ([]*model.Delivery, error)
}

type deliveryService struct {
	db *gorm.DB
}

func NewDeliveryService(db *gorm.DB) DeliveryService {
	return &deliveryService{db: db}
}

func (s *deliveryService) Available(ctx context.Context) ([]*model.Order, error) {
	return repository.NewOrderRepository(s.db).ListDispatchable(ctx)
}

func (s *deliveryService) Accept(ctx context.Context, driverID, orderID string) (*model.Delivery, error) {
	var d *model.Delivery
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		orders := repository.NewOrderRepository(tx)
		// 条件更新保证并发接单只有一个司机成功
		ok, err := orders.Transition(ctx, orderID, model.DispatchableStatuses, model.OrderStatusOutForDelivery)
		if err != nil {
			return err
		}
		if !ok {
			if _, err := orders.GetByID(ctx, orderID); errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return ErrOrderNotAvailable
		}
		order, err := orders.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}

		d = &model.Delivery{
			ID:         uuid.New().String(),
			OrderID:    orderID,
			DriverID:   driverID,
			Status:     model.DeliveryAssigned,
			AssignedAt: time.Now(),
		}
		if err := repository.NewDeliveryRepository(tx).Create(ctx, d); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrOrderNotAvailable
			}
			return err
		}
		ev := newOrderEvent(EventDeliveryAssigned, order)
		ev.DriverID = driverID
		return enqueueEvent(ctx, tx, ev)
	})
	if err != nil {
		return nil, err
	}
	logger.Info("delivery accepted", zap.String("order_id", orderID), zap.String("driver_id", driverID))
	return d, nil
}

func (s *deliveryService) Complete(ctx context.Context, driverID, deliveryID string) (*model.Delivery, error) {
	var d *model.Delivery
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		deliveries := repository.NewDeliveryRepository(tx)
		current, err := deliveries.GetByID(ctx, deliveryID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrDeliveryNotFound
			}
			return err
		}
		// 其他司机的配送单按不存在处理
		if current.DriverID != driverID {
			return ErrDeliveryNotFound
		}
		if current.Status == model.DeliveryDelivered {
			return ErrDeliveryDone
		}

		now := time.Now()
		ok, err := deliveries.MarkDelivered(ctx, deliveryID, driverID, now)
		if err != nil {
			return err
		}
		if !ok {
			return ErrDeliveryDone
		}
		orders := repository.NewOrderRepository(tx)
		if _, err := orders.Transition(ctx, current.OrderID,
			[]model.OrderStatus{model.OrderStatusOutForDelivery}, model.OrderStatusDelivered); err != nil {
			return err
		}
		order, err := orders.GetForUpdate(ctx, current.OrderID)
		if err != nil {
			return err
		}

		current.Status = model.DeliveryDelivered
		current.DeliveredAt = &now
		d = current
		ev := newOrderEvent(EventDeliveryCompleted, order)
		ev.DriverID = driverID
		return enqueueEvent(ctx, tx, ev)
	})
	if err != nil {
		return nil, err
	}
	logger.Info("delivery completed", zap.String("delivery_id", deliveryID), zap.String("driver_id", driverID))
	return d, nil
}

func (s *deliveryService) MyDeliveries(ctx context.Context, driverID string) ([]*model.Delivery, error) {
	return repository.NewDeliveryRepository(s.db).ListByDriver(ctx, driverID)
}
