package repository

import (
	"context"
	"fmt"
	"math/rand"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/d60-Lab/quickcart/config"
	"github.com/d60-Lab/quickcart/internal/model"
	"github.com/d60-Lab/quickcart/pkg/database"
)

func setupStockBenchDB(b *testing.B) *gorm.DB {
	db, err := database.Open(config.DatabaseConfig{
		Driver:   "sqlite",
		DSN:      filepath.Join(b.TempDir(), "bench.db"),
		LogLevel: "silent",
	})
	if err != nil {
		b.Fatalf("open db: %v", err)
	}
	if err := Migrate(db); err != nil {
		b.Fatalf("migrate: %v", err)
	}
	b.Cleanup(func() { _ = database.Close(db) })
	return db
}

// seedCatalog 创建 n 个商品，每个在 loc 有 stock 件库存
func seedCatalog(b *testing.B, db *gorm.DB, loc string, n, stock int) []string {
	now := time.Now()
	cat := model.Category{ID: "cat-bench", Name: "Bench", CreatedAt: now, UpdatedAt: now}
	if err := db.Create(&cat).Error; err != nil {
		b.Fatalf("seed category: %v", err)
	}
	if err := db.Create(&model.Location{ID: loc, Name: loc, CreatedAt: now}).Error; err != nil {
		b.Fatalf("seed location: %v", err)
	}
	products := make([]model.Product, n)
	items := make([]model.StockItem, n)
	ids := make([]string, n)
	for i := range products {
		ids[i] = fmt.Sprintf("p%05d", i)
		products[i] = model.Product{
			ID: ids[i], SKU: fmt.Sprintf("SKU-%05d", i), Name: fmt.Sprintf("Product %05d", i),
			Price: decimal.NewFromInt(int64(10 + i%90)), CategoryID: cat.ID, CreatedAt: now, UpdatedAt: now,
		}
		items[i] = model.StockItem{ProductID: ids[i], LocationID: loc, Quantity: stock, UpdatedAt: now}
	}
	if err := db.CreateInBatches(&products, 500).Error; err != nil {
		b.Fatalf("seed products: %v", err)
	}
	if err := db.CreateInBatches(&items, 500).Error; err != nil {
		b.Fatalf("seed stock: %v", err)
	}
	return ids
}

func BenchmarkStockDecrement(b *testing.B) {
	db := setupStockBenchDB(b)
	ids := seedCatalog(b, db, "loc-bench", 1000, 1<<30)
	repo := NewStockRepository(db)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		id := ids[rand.Intn(len(ids))]
		if _, err := repo.Decrement(ctx, id, "loc-bench", 1); err != nil {
			b.Fatalf("decrement: %v", err)
		}
	}
}

// BenchmarkCheckoutTx 一次下单事务：锁库存、条件扣减、写订单与明细
func BenchmarkCheckoutTx(b *testing.B) {
	db := setupStockBenchDB(b)
	ids := seedCatalog(b, db, "loc-bench", 200, 1<<30)
	ctx := context.Background()
	user := model.User{ID: "u-bench", Email: "bench@example.com", Name: "bench", Password: "p", CreatedAt: time.Now(), UpdatedAt: time.Now()}
	if err := db.Create(&user).Error; err != nil {
		b.Fatalf("seed user: %v", err)
	}

	seq := 0
	for _, lines := range []int{1, 5, 20} {
		b.Run(fmt.Sprintf("Lines%d", lines), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				seq++
				err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
					stock := NewStockRepository(tx)
					order := &model.Order{
						ID: fmt.Sprintf("o-%d", seq), UserID: user.ID, LocationID: "loc-bench", AddressID: "a",
						PaymentMethod: model.PaymentCOD, Status: model.OrderStatusPending, TotalPrice: decimal.Zero,
					}
					for j := 0; j < lines; j++ {
						pid := ids[(i+j)%len(ids)]
						if _, err := stock.GetForUpdate(ctx, pid, "loc-bench"); err != nil {
							return err
						}
						if ok, err := stock.Decrement(ctx, pid, "loc-bench", 1); err != nil || !ok {
							return fmt.Errorf("decrement %s: ok=%v err=%v", pid, ok, err)
						}
						order.Items = append(order.Items, model.OrderItem{
							ID: fmt.Sprintf("%s-%d", order.ID, j), ProductID: pid, Quantity: 1, Price: decimal.NewFromInt(10),
						})
					}
					return NewOrderRepository(tx).Create(ctx, order)
				})
				if err != nil {
					b.Fatalf("checkout: %v", err)
				}
			}
		})
	}
}

func BenchmarkProductList(b *testing.B) {
	db := setupStockBenchDB(b)
	seedCatalog(b, db, "loc-bench", 2000, 5)
	repo := NewProductRepository(db)
	ctx := context.Background()

	b.ResetTimer()
	b.Run("All", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, _ = repo.List(ctx, "")
		}
	})
	b.Run("Search", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, _ = repo.List(ctx, "00042")
		}
	})
	b.Run("LowStock", func(b *testing.B) {
		stock := NewStockRepository(db)
		for i := 0; i < b.N; i++ {
			_, _ = stock.ListLow(ctx, 10)
		}
	})
}
