package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/d60-Lab/quickcart/internal/model"
	"github.com/d60-Lab/quickcart/internal/repository"
)

const recentTransactions = 20

// WalletView 余额与最近流水
type WalletView struct {
	WalletBalance decimal.Decimal            `json:"walletBalance"`
	Transactions  []*model.WalletTransaction `json:"transactions"`
}

// WalletService 钱包服务
type WalletService interface {
	GetWallet(ctx context.Context, userID string) (*WalletView, error)
	// TopUp 充值：同一事务内增加余额并追加 CREDIT 流水
	TopUp(ctx context.Context, userID string, amount decimal.Decimal) (decimal.Decimal, error)
}

type walletService struct {
	db *gorm.DB
}

func NewWalletService(db *gorm.DB) WalletService {
	return &walletService{db: db}
}

func (s *walletService) GetWallet(ctx context.Context, userID string) (*WalletView, error) {
	user, err := repository.NewUserRepository(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	txs, err := repository.NewWalletRepository(s.db).ListRecent(ctx, userID, recentTransactions)
	if err != nil {
		return nil, err
	}
	return &WalletView{WalletBalance: user.WalletBalance, Transactions: txs}, nil
}

func (s *walletService) TopUp(ctx context.Context, userID string, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	var balance decimal.Decimal
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		balance, err = applyWallet(ctx, tx, userID, model.TransactionCredit, amount, nil, "Added money to wallet")
		return err
	})
	if err != nil {
		return decimal.Zero, err
	}
	return balance, nil
}

// applyWallet locks the user row, moves the balance and appends the ledger
// row. It must run inside tx so balance and ledger commit together.
func applyWallet(ctx context.Context, tx *gorm.DB, userID string, typ model.TransactionType,
	amount decimal.Decimal, orderID *string, desc string) (decimal.Decimal, error) {
	users := repository.NewUserRepository(tx)
	user, err := users.GetForUpdate(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, ErrUserNotFound
		}
		return decimal.Zero, fmt.Errorf("lock user: %w", err)
	}

	balance := user.WalletBalance
	switch typ {
	case model.TransactionCredit:
		balance = balance.Add(amount)
	case model.TransactionDebit:
		if balance.LessThan(amount) {
			return decimal.Zero, ErrInsufficientBalance
		}
		balance = balance.Sub(amount)
	}

	if err := users.SetBalance(ctx, userID, balance); err != nil {
		return decimal.Zero, fmt.Errorf("update balance: %w", err)
	}
	entry := &model.WalletTransaction{
		ID:          uuid.New().String(),
		UserID:      userID,
		OrderID:     orderID,
		Amount:      amount,
		Type:        typ,
		Description: desc,
		CreatedAt:   time.Now(),
	}
	if err := repository.NewWalletRepository(tx).Append(ctx, entry); err != nil {
		return decimal.Zero, fmt.Errorf("append ledger: %w", err)
	}
	return balance, nil
}
