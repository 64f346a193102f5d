package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/d60-Lab/quickcart/config"
	"github.com/d60-Lab/quickcart/internal/model"
	"github.com/d60-Lab/quickcart/internal/repository"
	"github.com/d60-Lab/quickcart/pkg/database"
)

const testLocation = "loc-test"

// setupTestDB 每个测试独立的 SQLite 文件库，单连接串行化写入
func setupTestDB(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := database.Open(config.DatabaseConfig{
		Driver:   "sqlite",
		DSN:      filepath.Join(t.TempDir(), "quickcart.db"),
		LogLevel: "silent",
	})
	require.NoError(t, err)
	require.NoError(t, repository.Migrate(db))
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

type fixture struct {
	db       *gorm.DB
	ctx      context.Context
	user     *model.User
	address  *model.Address
	category *model.Category
}

func newFixture(t testing.TB) *fixture {
	t.Helper()
	db := setupTestDB(t)
	f := &fixture{db: db, ctx: context.Background()}
	require.NoError(t, repository.NewLocationRepository(db).Ensure(f.ctx, &model.Location{ID: testLocation, Name: "Test Store"}))
	f.user = f.addUser(t, "alice@example.com", model.RoleCustomer)
	f.address = f.addAddress(t, f.user.ID)

	now := time.Now()
	f.category = &model.Category{ID: uuid.New().String(), Name: "Fruits", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, repository.NewCategoryRepository(db).Create(f.ctx, f.category))
	return f
}

func (f *fixture) addUser(t testing.TB, email string, role model.Role) *model.User {
	t.Helper()
	now := time.Now()
	u := &model.User{ID: uuid.New().String(), Email: email, Name: email, Password: "x", Role: role, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, repository.NewUserRepository(f.db).Create(f.ctx, u))
	return u
}

func (f *fixture) addAddress(t testing.TB, userID string) *model.Address {
	t.Helper()
	a := &model.Address{ID: uuid.New().String(), UserID: userID, Street: "1 Main St", City: "Pune", Zip: "411001", CreatedAt: time.Now()}
	require.NoError(t, repository.NewAddressRepository(f.db).Create(f.ctx, a))
	return a
}

func (f *fixture) addProduct(t testing.TB, name, price string, stock int) *model.Product {
	t.Helper()
	now := time.Now()
	p := &model.Product{
		ID:         uuid.New().String(),
		SKU:        "SKU-" + uuid.New().String()[:8],
		Name:       name,
		Price:      decimal.RequireFromString(price),
		CategoryID: f.category.ID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	require.NoError(t, repository.NewProductRepository(f.db).Create(f.ctx, p))
	require.NoError(t, repository.NewStockRepository(f.db).Set(f.ctx, p.ID, testLocation, stock))
	return p
}

func (f *fixture) fund(t testing.TB, userID, amount string) {
	t.Helper()
	_, err := NewWalletService(f.db).TopUp(f.ctx, userID, decimal.RequireFromString(amount))
	require.NoError(t, err)
}

func (f *fixture) stockOf(t testing.TB, productID string) int {
	t.Helper()
	item, err := repository.NewStockRepository(f.db).Get(f.ctx, productID, testLocation)
	require.NoError(t, err)
	return item.Quantity
}

func (f *fixture) balanceOf(t testing.TB, userID string) decimal.Decimal {
	t.Helper()
	u, err := repository.NewUserRepository(f.db).GetByID(f.ctx, userID)
	require.NoError(t, err)
	return u.WalletBalance
}

func (f *fixture) count(t testing.TB, m interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(m).Count(&n).Error)
	return n
}

func (f *fixture) setStatus(t testing.TB, orderID string, status model.OrderStatus) {
	t.Helper()
	require.NoError(t, f.db.Model(&model.Order{}).Where("id = ?", orderID).Update("status", status).Error)
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }
