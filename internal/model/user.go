package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Role 用户角色
type Role string

const (
	RoleCustomer   Role = "CUSTOMER"
	RoleDriver     Role = "DRIVER"
	RoleAdmin      Role = "ADMIN"
	RoleSuperAdmin Role = "SUPER_ADMIN"
)

// IsAdmin covers both admin roles.
func (r Role) IsAdmin() bool { return r == RoleAdmin || r == RoleSuperAdmin }

// User 用户；WalletBalance 必须等于其钱包流水的带符号合计
type User struct {
	ID            string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Email         string          `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	Name          string          `json:"name" gorm:"type:varchar(128);not null"`
	Phone         string          `json:"phone" gorm:"type:varchar(32)"`
	Password      string          `json:"-" gorm:"type:varchar(255);not null"`
	Role          Role            `json:"role" gorm:"type:varchar(16);not null;default:CUSTOMER"`
	WalletBalance decimal.Decimal `json:"walletBalance" gorm:"type:decimal(12,2);not null;default:0"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

func (User) TableName() string { return "users" }

// Address 收货地址
type Address struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID    string    `json:"userId" gorm:"type:varchar(36);index;not null"`
	Street    string    `json:"street" gorm:"type:varchar(255);not null"`
	City      string    `json:"city" gorm:"type:varchar(128);not null"`
	Zip       string    `json:"zip" gorm:"type:varchar(16);not null"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Address) TableName() string { return "addresses" }
