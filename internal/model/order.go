package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus 订单状态
type OrderStatus string

const (
	OrderStatusPending        OrderStatus = "PENDING"
	OrderStatusConfirmed      OrderStatus = "CONFIRMED"
	OrderStatusPacking        OrderStatus = "PACKING"
	OrderStatusOutForDelivery OrderStatus = "OUT_FOR_DELIVERY"
	OrderStatusDelivered      OrderStatus = "DELIVERED"
	OrderStatusCancelled      OrderStatus = "CANCELLED"
)

// AdminStatuses are the states an admin may set by hand. Once a driver
// accepts the order it leaves this set.
var AdminStatuses = []OrderStatus{OrderStatusPending, OrderStatusConfirmed, OrderStatusPacking}

// CancellableStatuses 顾客可取消的状态
var CancellableStatuses = []OrderStatus{OrderStatusPending, OrderStatusConfirmed}

// DispatchableStatuses are the states a driver may accept from.
var DispatchableStatuses = []OrderStatus{OrderStatusConfirmed, OrderStatusPacking}

func (s OrderStatus) In(set []OrderStatus) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition is allowed.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// PaymentMethod 支付方式；COD/UPI 线下结算，WALLET 走余额
type PaymentMethod string

const (
	PaymentCOD    PaymentMethod = "COD"
	PaymentUPI    PaymentMethod = "UPI"
	PaymentWallet PaymentMethod = "WALLET"
)

func (p PaymentMethod) Valid() bool {
	switch p {
	case PaymentCOD, PaymentUPI, PaymentWallet:
		return true
	}
	return false
}

// Order 订单
type Order struct {
	ID            string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID        string          `json:"userId" gorm:"type:varchar(36);index:idx_order_user_created;not null"`
	LocationID    string          `json:"locationId" gorm:"type:varchar(36);not null"`
	AddressID     string          `json:"addressId" gorm:"type:varchar(36);not null"`
	TotalPrice    decimal.Decimal `json:"totalPrice" gorm:"type:decimal(12,2);not null"`
	PaymentMethod PaymentMethod   `json:"paymentMethod" gorm:"type:varchar(16);not null"`
	Status        OrderStatus     `json:"status" gorm:"type:varchar(24);index;not null;default:PENDING"`
	CreatedAt     time.Time       `json:"createdAt" gorm:"index:idx_order_user_created"`
	UpdatedAt     time.Time       `json:"updatedAt"`

	Items    []OrderItem `json:"items,omitempty" gorm:"foreignKey:OrderID"`
	User     *User       `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Delivery *Delivery   `json:"delivery,omitempty" gorm:"foreignKey:OrderID"`
}

func (Order) TableName() string { return "orders" }

// OrderItem 订单行；Price 为下单时价格，之后不随商品改价变化
type OrderItem struct {
	ID        string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderID   string          `json:"orderId" gorm:"type:varchar(36);index;not null"`
	ProductID string          `json:"productId" gorm:"type:varchar(36);index;not null"`
	Quantity  int             `json:"quantity" gorm:"not null"`
	Price     decimal.Decimal `json:"price" gorm:"type:decimal(12,2);not null"`

	Product *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}

func (OrderItem) TableName() string { return "order_items" }

// Subtotal is price x quantity.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// ItemsTotal sums the subtotals of the order's items.
func (o *Order) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range o.Items {
		total = total.Add(it.Subtotal())
	}
	return total
}
