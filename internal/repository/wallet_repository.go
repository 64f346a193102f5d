package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/d60-Lab/quickcart/internal/model"
)

// WalletRepository 钱包流水仓储（只追加）
type WalletRepository interface {
	Append(ctx context.Context, tx *model.WalletTransaction) error
	ListRecent(ctx context.Context, userID string, limit int) ([]*model.WalletTransaction, error)
	// Sum 用户流水带符号合计，应与 users.wallet_balance 相等
	Sum(ctx context.Context, userID string) (decimal.Decimal, error)
}

type walletRepository struct{ db *gorm.DB }

func NewWalletRepository(db *gorm.DB) WalletRepository { return &walletRepository{db: db} }

func (r *walletRepository) Append(ctx context.Context, t *model.WalletTransaction) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *walletRepository) ListRecent(ctx context.Context, userID string, limit int) ([]*model.WalletTransaction, error) {
	var res []*model.WalletTransaction
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&res).Error
	return res, err
}

func (r *walletRepository) Sum(ctx context.Context, userID string) (decimal.Decimal, error) {
	var rows []*model.WalletTransaction
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&rows).Error; err != nil {
		return decimal.Zero, err
	}
	sum := decimal.Zero
	for _, t := range rows {
		sum = sum.Add(t.Signed())
	}
	return sum, nil
}
