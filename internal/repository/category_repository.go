package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/quickcart/internal/model"
)

// CategoryCount 分类及其商品数
type CategoryCount struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

type CategoryRepository interface {
	Create(ctx context.Context, c *model.Category) error
	Save(ctx context.Context, c *model.Category) error
	Delete(ctx context.Context, categoryID string) error
	GetByID(ctx context.Context, categoryID string) (*model.Category, error)
	List(ctx context.Context) ([]*model.Category, error)
	CountProducts(ctx context.Context, categoryID string) (int64, error)
	// ProductCounts 每个分类下的商品数（含 0）
	ProductCounts(ctx context.Context) ([]CategoryCount, error)
}

type categoryRepository struct{ db *gorm.DB }

func NewCategoryRepository(db *gorm.DB) CategoryRepository { return &categoryRepository{db: db} }

func (r *categoryRepository) Create(ctx context.Context, c *model.Category) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *categoryRepository) Save(ctx context.Context, c *model.Category) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *categoryRepository) Delete(ctx context.Context, categoryID string) error {
	return r.db.WithContext(ctx).Where("id = ?", categoryID).Delete(&model.Category{}).Error
}

func (r *categoryRepository) GetByID(ctx context.Context, categoryID string) (*model.Category, error) {
	var c model.Category
	if err := r.db.WithContext(ctx).Where("id = ?", categoryID).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *categoryRepository) List(ctx context.Context) ([]*model.Category, error) {
	var res []*model.Category
	err := r.db.WithContext(ctx).Order("name ASC").Find(&res).Error
	return res, err
}

func (r *categoryRepository) CountProducts(ctx context.Context, categoryID string) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.Product{}).Where("category_id = ?", categoryID).Count(&cnt).Error
	return cnt, err
}

func (r *categoryRepository) ProductCounts(ctx context.Context) ([]CategoryCount, error) {
	var rows []CategoryCount
	err := r.db.WithContext(ctx).
		Table("categories").
		Select("categories.name AS name, COUNT(products.id) AS count").
		Joins("LEFT JOIN products ON products.category_id = categories.id").
		Group("categories.id, categories.name").
		Order("categories.name ASC").
		Scan(&rows).Error
	return rows, err
}
