package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/quickcart/internal/model"
)

type LocationRepository interface {
	// Ensure 不存在则创建门店
	Ensure(ctx context.Context, loc *model.Location) error
	GetByID(ctx context.Context, locationID string) (*model.Location, error)
}

type locationRepository struct{ db *gorm.DB }

func NewLocationRepository(db *gorm.DB) LocationRepository { return &locationRepository{db: db} }

func (r *locationRepository) Ensure(ctx context.Context, loc *model.Location) error {
	return r.db.WithContext(ctx).Where("id = ?", loc.ID).FirstOrCreate(loc).Error
}

func (r *locationRepository) GetByID(ctx context.Context, locationID string) (*model.Location, error) {
	var l model.Location
	if err := r.db.WithContext(ctx).Where("id = ?", locationID).First(&l).Error; err != nil {
		return nil, err
	}
	return &l, nil
}
