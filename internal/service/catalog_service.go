package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/d60-Lab/quickcart/internal/cache"
	"github.com/d60-Lab/quickcart/internal/model"
	"github.com/d60-Lab/quickcart/internal/repository"
)

// ProductListItem 列表项，附带各门店库存合计
type ProductListItem struct {
	model.Product
	TotalStock int `json:"totalStock"`
}

// ProductDetail 商品详情，附带履约门店库存
type ProductDetail struct {
	model.Product
	Stock int `json:"stock"`
}

// ProductInput 创建商品
type ProductInput struct {
	Name        string
	SKU         string
	Price       decimal.Decimal
	Description string
	CategoryID  string
	ImageURL    *string
	Stock       int
}

// ProductPatch 更新商品，nil 字段保持不变
type ProductPatch struct {
	Name        *string
	SKU         *string
	Price       *decimal.Decimal
	Description *string
	CategoryID  *string
	// ImageURL 非 nil 时更新，空串表示清除
	ImageURL *string
	Stock    *int
}

type CategoryInput struct {
	Name        string
	Description string
}

// CatalogService 商品与分类
type CatalogService interface {
	ListProducts(ctx context.Context, search string) ([]ProductListItem, error)
	GetProduct(ctx context.Context, productID string) (*ProductDetail, error)
	CreateProduct(ctx context.Context, in ProductInput) (*model.Product, error)
	UpdateProduct(ctx context.Context, productID string, in ProductPatch) (*model.Product, error)
	DeleteProduct(ctx context.Context, productID string) error

	ListCategories(ctx context.Context) ([]*model.Category, error)
	CreateCategory(ctx context.Context, in CategoryInput) (*model.Category, error)
	UpdateCategory(ctx context.Context, categoryID string, in CategoryInput) (*model.Category, error)
	DeleteCategory(ctx context.Context, categoryID string) error
}

type catalogService struct {
	db         *gorm.DB
	cache      *cache.ProductCache
	locationID string
}

func NewCatalogService(db *gorm.DB, productCache *cache.ProductCache, locationID string) CatalogService {
	return &catalogService{db: db, cache: productCache, locationID: locationID}
}

func (s *catalogService) ListProducts(ctx context.Context, search string) ([]ProductListItem, error) {
	search = strings.TrimSpace(search)
	var items []ProductListItem
	if s.cache.GetList(ctx, search, &items) {
		return items, nil
	}

	products, err := repository.NewProductRepository(s.db).List(ctx, search)
	if err != nil {
		return nil, err
	}
	items = make([]ProductListItem, 0, len(products))
	for _, p := range products {
		items = append(items, ProductListItem{Product: *p, TotalStock: p.TotalStock()})
	}
	s.cache.SetList(ctx, search, items)
	return items, nil
}

func (s *catalogService) GetProduct(ctx context.Context, productID string) (*ProductDetail, error) {
	var detail ProductDetail
	if s.cache.GetDetail(ctx, productID, &detail) {
		return &detail, nil
	}

	p, err := repository.NewProductRepository(s.db).GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	detail = ProductDetail{Product: *p}
	item, err := repository.NewStockRepository(s.db).Get(ctx, productID, s.locationID)
	switch {
	case err == nil:
		detail.Stock = item.Quantity
		detail.StockItems = []model.StockItem{*item}
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}
	s.cache.SetDetail(ctx, productID, detail)
	return &detail, nil
}

func (s *catalogService) CreateProduct(ctx context.Context, in ProductInput) (*model.Product, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.SKU = strings.TrimSpace(in.SKU)
	if in.Name == "" || in.SKU == "" || in.CategoryID == "" {
		return nil, ErrMissingFields
	}
	if !in.Price.IsPositive() {
		return nil, ErrInvalidPrice
	}
	if in.Stock < 0 {
		return nil, ErrInvalidStockAmount
	}

	now := time.Now()
	p := &model.Product{
		ID:          uuid.New().String(),
		SKU:         in.SKU,
		Name:        in.Name,
		Price:       in.Price,
		Description: in.Description,
		CategoryID:  in.CategoryID,
		ImageURL:    normalizeImage(in.ImageURL),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.checkCategory(ctx, tx, in.CategoryID); err != nil {
			return err
		}
		products := repository.NewProductRepository(tx)
		if err := s.checkSKUFree(ctx, products, in.SKU); err != nil {
			return err
		}
		if err := products.Create(ctx, p); err != nil {
			return translateDuplicate(err, ErrDuplicateSKU)
		}
		return repository.NewStockRepository(tx).Set(ctx, p.ID, s.locationID, in.Stock)
	})
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx)
	return p, nil
}

func (s *catalogService) UpdateProduct(ctx context.Context, productID string, in ProductPatch) (*model.Product, error) {
	var updated *model.Product
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		products := repository.NewProductRepository(tx)
		p, err := products.GetByID(ctx, productID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return err
		}
		p.Category = nil

		if in.SKU != nil && strings.TrimSpace(*in.SKU) != "" && *in.SKU != p.SKU {
			if err := s.checkSKUFree(ctx, products, *in.SKU); err != nil {
				return err
			}
			p.SKU = strings.TrimSpace(*in.SKU)
		}
		if in.Name != nil && strings.TrimSpace(*in.Name) != "" {
			p.Name = strings.TrimSpace(*in.Name)
		}
		if in.Price != nil {
			if !in.Price.IsPositive() {
				return ErrInvalidPrice
			}
			p.Price = *in.Price
		}
		if in.Description != nil && *in.Description != "" {
			p.Description = *in.Description
		}
		if in.CategoryID != nil && *in.CategoryID != "" && *in.CategoryID != p.CategoryID {
			if err := s.checkCategory(ctx, tx, *in.CategoryID); err != nil {
				return err
			}
			p.CategoryID = *in.CategoryID
		}
		if in.ImageURL != nil {
			p.ImageURL = normalizeImage(in.ImageURL)
		}
		if err := products.Save(ctx, p); err != nil {
			return translateDuplicate(err, ErrDuplicateSKU)
		}

		if in.Stock != nil {
			if *in.Stock < 0 {
				return ErrInvalidStockAmount
			}
			if err := repository.NewStockRepository(tx).Set(ctx, productID, s.locationID, *in.Stock); err != nil {
				return err
			}
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx)
	return updated, nil
}

func (s *catalogService) DeleteProduct(ctx context.Context, productID string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		products := repository.NewProductRepository(tx)
		if _, err := products.GetByID(ctx, productID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return err
		}
		cnt, err := products.CountOrderItems(ctx, productID)
		if err != nil {
			return err
		}
		if cnt > 0 {
			return ErrProductInUse
		}
		if err := repository.NewStockRepository(tx).DeleteByProduct(ctx, productID); err != nil {
			return err
		}
		return products.Delete(ctx, productID)
	})
	if err != nil {
		return err
	}
	s.cache.Invalidate(ctx)
	return nil
}

func (s *catalogService) ListCategories(ctx context.Context) ([]*model.Category, error) {
	return repository.NewCategoryRepository(s.db).List(ctx)
}

func (s *catalogService) CreateCategory(ctx context.Context, in CategoryInput) (*model.Category, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrMissingFields
	}
	now := time.Now()
	c := &model.Category{ID: uuid.New().String(), Name: name, Description: in.Description, CreatedAt: now, UpdatedAt: now}
	if err := s.checkCategoryNameFree(ctx, name, ""); err != nil {
		return nil, err
	}
	if err := repository.NewCategoryRepository(s.db).Create(ctx, c); err != nil {
		return nil, translateDuplicate(err, ErrDuplicateCategory)
	}
	return c, nil
}

func (s *catalogService) UpdateCategory(ctx context.Context, categoryID string, in CategoryInput) (*model.Category, error) {
	categories := repository.NewCategoryRepository(s.db)
	c, err := categories.GetByID(ctx, categoryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	if name := strings.TrimSpace(in.Name); name != "" && name != c.Name {
		if err := s.checkCategoryNameFree(ctx, name, categoryID); err != nil {
			return nil, err
		}
		c.Name = name
	}
	if in.Description != "" {
		c.Description = in.Description
	}
	if err := categories.Save(ctx, c); err != nil {
		return nil, translateDuplicate(err, ErrDuplicateCategory)
	}
	s.cache.Invalidate(ctx)
	return c, nil
}

func (s *catalogService) DeleteCategory(ctx context.Context, categoryID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		categories := repository.NewCategoryRepository(tx)
		if _, err := categories.GetByID(ctx, categoryID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCategoryNotFound
			}
			return err
		}
		cnt, err := categories.CountProducts(ctx, categoryID)
		if err != nil {
			return err
		}
		if cnt > 0 {
			return ErrCategoryInUse
		}
		return categories.Delete(ctx, categoryID)
	})
}

func (s *catalogService) checkCategory(ctx context.Context, tx *gorm.DB, categoryID string) error {
	if _, err := repository.NewCategoryRepository(tx).GetByID(ctx, categoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCategoryNotFound
		}
		return err
	}
	return nil
}

func (s *catalogService) checkSKUFree(ctx context.Context, products repository.ProductRepository, sku string) error {
	_, err := products.GetBySKU(ctx, sku)
	switch {
	case err == nil:
		return ErrDuplicateSKU
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil
	default:
		return err
	}
}

func (s *catalogService) checkCategoryNameFree(ctx context.Context, name, exceptID string) error {
	var cnt int64
	q := s.db.WithContext(ctx).Model(&model.Category{}).Where("name = ?", name)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&cnt).Error; err != nil {
		return err
	}
	if cnt > 0 {
		return ErrDuplicateCategory
	}
	return nil
}

func normalizeImage(url *string) *string {
	if url == nil || strings.TrimSpace(*url) == "" {
		return nil
	}
	v := strings.TrimSpace(*url)
	return &v
}

func translateDuplicate(err, target error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return target
	}
	return err
}
