package model

import "time"

// DeliveryStatus 配送状态
type DeliveryStatus string

const (
	DeliveryAssigned  DeliveryStatus = "ASSIGNED"
	DeliveryDelivered DeliveryStatus = "DELIVERED"
)

// Delivery 配送单，一个订单至多一条
type Delivery struct {
	ID          string         `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderID     string         `json:"orderId" gorm:"type:varchar(36);uniqueIndex;not null"`
	DriverID    string         `json:"driverId" gorm:"type:varchar(36);index;not null"`
	Status      DeliveryStatus `json:"status" gorm:"type:varchar(16);not null"`
	AssignedAt  time.Time      `json:"assignedAt"`
	DeliveredAt *time.Time     `json:"deliveredAt,omitempty"`

	Order *Order `json:"order,omitempty" gorm:"foreignKey:OrderID"`
}

func (Delivery) TableName() string { return "deliveries" }
