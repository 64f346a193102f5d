package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType 流水方向
type TransactionType string

const (
	TransactionCredit TransactionType = "CREDIT"
	TransactionDebit  TransactionType = "DEBIT"
)

// WalletTransaction 钱包流水，只追加不修改。Amount 恒为正，方向由 Type 决定。
type WalletTransaction struct {
	ID          string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID      string          `json:"userId" gorm:"type:varchar(36);index:idx_wallet_user_created;not null"`
	OrderID     *string         `json:"orderId,omitempty" gorm:"type:varchar(36);index"`
	Amount      decimal.Decimal `json:"amount" gorm:"type:decimal(12,2);not null"`
	Type        TransactionType `json:"type" gorm:"type:varchar(8);not null"`
	Description string          `json:"description" gorm:"type:varchar(255)"`
	CreatedAt   time.Time       `json:"createdAt" gorm:"index:idx_wallet_user_created"`
}

func (WalletTransaction) TableName() string { return "wallet_transactions" }

// Signed returns the amount with the direction applied.
func (t WalletTransaction) Signed() decimal.Decimal {
	if t.Type == TransactionDebit {
		return t.Amount.Neg()
	}
	return t.Amount
}
