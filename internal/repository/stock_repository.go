package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/quickcart/internal/model"
)

// StockRepository 门店库存仓储
type StockRepository interface {
	Get(ctx context.Context, productID, locationID string) (*model.StockItem, error)
	// GetForUpdate 加行锁读取库存，用于下单前的库存校验
	GetForUpdate(ctx context.Context, productID, locationID string) (*model.StockItem, error)
	// Decrement 仅当库存足够时扣减，返回是否扣减成功
	Decrement(ctx context.Context, productID, locationID string, qty int) (bool, error)
	// Increment 回补库存（取消订单）
	Increment(ctx context.Context, productID, locationID string, qty int) error
	// Set 设置库存数量，不存在则创建
	Set(ctx context.Context, productID, locationID string, qty int) error
	DeleteByProduct(ctx context.Context, productID string) error
	// ListLow 数量 <= limit 的库存，按数量升序
	ListLow(ctx context.Context, limit int) ([]*model.StockItem, error)
}

type stockRepository struct {
	db *gorm.DB
}

func NewStockRepository(db *gorm.DB) StockRepository { return &stockRepository{db: db} }

func (r *stockRepository) Get(ctx context.Context, productID, locationID string) (*model.StockItem, error) {
	var item model.StockItem
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND location_id = ?", productID, locationID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *stockRepository) GetForUpdate(ctx context.Context, productID, locationID string) (*model.StockItem, error) {
	var item model.StockItem
	err := forUpdate(r.db.WithContext(ctx)).
		Where("product_id = ? AND location_id = ?", productID, locationID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *stockRepository) Decrement(ctx context.Context, productID, locationID string, qty int) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.StockItem{}).
		Where("product_id = ? AND location_id = ? AND quantity >= ?", productID, locationID, qty).
		Updates(map[string]any{
			"quantity":   gorm.Expr("quantity - ?", qty),
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *stockRepository) Increment(ctx context.Context, productID, locationID string, qty int) error {
	item := &model.StockItem{ProductID: productID, LocationID: locationID, Quantity: qty, UpdatedAt: time.Now()}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "product_id"}, {Name: "location_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"quantity":   gorm.Expr("stock_items.quantity + ?", qty),
			"updated_at": time.Now(),
		}),
	}).Create(item).Error
}

func (r *stockRepository) Set(ctx context.Context, productID, locationID string, qty int) error {
	item := &model.StockItem{ProductID: productID, LocationID: locationID, Quantity: qty, UpdatedAt: time.Now()}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "product_id"}, {Name: "location_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"quantity", "updated_at"}),
	}).Create(item).Error
}

func (r *stockRepository) DeleteByProduct(ctx context.Context, productID string) error {
	return r.db.WithContext(ctx).Where("product_id = ?", productID).Delete(&model.StockItem{}).Error
}

func (r *stockRepository) ListLow(ctx context.Context, limit int) ([]*model.StockItem, error) {
	var items []*model.StockItem
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("quantity <= ?", limit).
		Order("quantity ASC").
		Find(&items).Error
	return items, err
}
