package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/quickcart/internal/model"
)

func TestTopUp_CreditsExactAmount(t *testing.T) {
	f := newFixture(t)
	svc := NewWalletService(f.db)
	before := f.balanceOf(t, f.user.ID)

	balance, err := svc.TopUp(f.ctx, f.user.ID, dec("100"))
	require.NoError(t, err)
	assert.True(t, balance.Equal(before.Add(dec("100"))))
	assert.True(t, f.balanceOf(t, f.user.ID).Equal(before.Add(dec("100"))))

	var rows []model.WalletTransaction
	require.NoError(t, f.db.Where("user_id = ?", f.user.ID).Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, model.TransactionCredit, rows[0].Type)
	assert.True(t, rows[0].Amount.Equal(dec("100")))
	assert.Equal(t, "Added money to wallet", rows[0].Description)
	assert.Nil(t, rows[0].OrderID)
}

func TestTopUp_RejectsNonPositive(t *testing.T) {
	f := newFixture(t)
	svc := NewWalletService(f.db)

	for _, amt := range []string{"0", "-5", "-0.01"} {
		_, err := svc.TopUp(f.ctx, f.user.ID, dec(amt))
		assert.ErrorIs(t, err, ErrInvalidAmount, amt)
	}
	assert.Zero(t, f.count(t, &model.WalletTransaction{}))
	assert.True(t, f.balanceOf(t, f.user.ID).IsZero())
}

func TestTopUp_UnknownUser(t *testing.T) {
	f := newFixture(t)
	_, err := NewWalletService(f.db).TopUp(f.ctx, "nobody", dec("10"))
	require.ErrorIs(t, err, ErrUserNotFound)
	assert.Zero(t, f.count(t, &model.WalletTransaction{}))
}

func TestGetWallet_RecentTransactionsCapped(t *testing.T) {
	f := newFixture(t)
	svc := NewWalletService(f.db)
	for i := 0; i < 25; i++ {
		f.fund(t, f.user.ID, "1.50")
	}

	view, err := svc.GetWallet(f.ctx, f.user.ID)
	require.NoError(t, err)
	assert.True(t, view.WalletBalance.Equal(dec("37.50")))
	assert.Len(t, view.Transactions, recentTransactions)
	for i := 1; i < len(view.Transactions); i++ {
		assert.False(t, view.Transactions[i].CreatedAt.After(view.Transactions[i-1].CreatedAt))
	}
	assertLedgerMatchesBalance(t, f, f.user.ID)

	_, err = svc.GetWallet(f.ctx, "nobody")
	require.ErrorIs(t, err, ErrUserNotFound)
}
