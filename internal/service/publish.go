package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/d60-Lab/quickcart/internal/model"
	"github.com/d60-Lab/quickcart/internal/repository"
)

const (
	EventOrderPlaced        = "order.placed"
	EventOrderStatusChanged = "order.status_changed"
	EventOrderCancelled     = "order.cancelled"
	EventDeliveryAssigned   = "delivery.assigned"
	EventDeliveryCompleted  = "delivery.completed"
)

// OrderEvent 订单事件载荷，经 outbox 投递
type OrderEvent struct {
	EventID       string              `json:"event_id"`
	Type          string              `json:"type"`
	OrderID       string              `json:"order_id"`
	UserID        string              `json:"user_id"`
	LocationID    string              `json:"location_id"`
	Status        model.OrderStatus   `json:"status"`
	PaymentMethod model.PaymentMethod `json:"payment_method,omitempty"`
	TotalPrice    decimal.Decimal     `json:"total_price"`
	Items         []OrderEventItem    `json:"items,omitempty"`
	DriverID      string              `json:"driver_id,omitempty"`
	Timestamp     time.Time           `json:"timestamp"`
}

type OrderEventItem struct {
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

func newOrderEvent(eventType string, o *model.Order) OrderEvent {
	ev := OrderEvent{
		EventID:       uuid.New().String(),
		Type:          eventType,
		OrderID:       o.ID,
		UserID:        o.UserID,
		LocationID:    o.LocationID,
		Status:        o.Status,
		PaymentMethod: o.PaymentMethod,
		TotalPrice:    o.TotalPrice,
		Timestamp:     time.Now(),
	}
	for _, it := range o.Items {
		ev.Items = append(ev.Items, OrderEventItem{ProductID: it.ProductID, Quantity: it.Quantity, Price: it.Price})
	}
	return ev
}

// enqueueEvent 在调用方事务内写入 outbox，与业务变更一起提交或回滚
func enqueueEvent(ctx context.Context, tx *gorm.DB, ev OrderEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", ev.Type, err)
	}
	out := &model.Outbox{
		ID:          ev.EventID,
		AggregateID: ev.OrderID,
		EventType:   ev.Type,
		Payload:     string(payload),
		CreatedAt:   ev.Timestamp,
		Status:      model.OutboxPending,
	}
	return repository.NewOutboxRepository(tx).Add(ctx, out)
}
