package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/quickcart/internal/model"
)

// ProductRepository 商品仓储
type ProductRepository interface {
	Create(ctx context.Context, p *model.Product) error
	Save(ctx context.Context, p *model.Product) error
	Delete(ctx context.Context, productID string) error
	GetByID(ctx context.Context, productID string) (*model.Product, error)
	GetBySKU(ctx context.Context, sku string) (*model.Product, error)
	// GetByIDs 批量查询，返回 id -> product
	GetByIDs(ctx context.Context, ids []string) (map[string]*model.Product, error)
	// List 商品列表（含分类与各门店库存），search 按名称模糊匹配
	List(ctx context.Context, search string) ([]*model.Product, error)
	// CountOrderItems 统计引用该商品的订单行数
	CountOrderItems(ctx context.Context, productID string) (int64, error)
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository { return &productRepository{db: db} }

func (r *productRepository) Create(ctx context.Context, p *model.Product) error {
	return r.db.WithContext(ctx).Omit("Category", "StockItems").Create(p).Error
}

func (r *productRepository) Save(ctx context.Context, p *model.Product) error {
	return r.db.WithContext(ctx).Omit("Category", "StockItems").Save(p).Error
}

func (r *productRepository) Delete(ctx context.Context, productID string) error {
	return r.db.WithContext(ctx).Where("id = ?", productID).Delete(&model.Product{}).Error
}

func (r *productRepository) GetByID(ctx context.Context, productID string) (*model.Product, error) {
	var p model.Product
	if err := r.db.WithContext(ctx).Preload("Category").Where("id = ?", productID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepository) GetBySKU(ctx context.Context, sku string) (*model.Product, error) {
	var p model.Product
	if err := r.db.WithContext(ctx).Where("sku = ?", sku).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepository) GetByIDs(ctx context.Context, ids []string) (map[string]*model.Product, error) {
	var products []*model.Product
	if len(ids) == 0 {
		return map[string]*model.Product{}, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	out := make(map[string]*model.Product, len(products))
	for _, p := range products {
		out[p.ID] = p
	}
	return out, nil
}

func (r *productRepository) List(ctx context.Context, search string) ([]*model.Product, error) {
	q := r.db.WithContext(ctx).Preload("Category").Preload("StockItems")
	if search != "" {
		q = q.Where("LOWER(name) LIKE LOWER(?)", "%"+search+"%")
	}
	var products []*model.Product
	err := q.Order("name ASC").Find(&products).Error
	return products, err
}

func (r *productRepository) CountOrderItems(ctx context.Context, productID string) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.OrderItem{}).Where("product_id = ?", productID).Count(&cnt).Error
	return cnt, err
}
