package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/quickcart/internal/model"
)

type AddressRepository interface {
	Create(ctx context.Context, a *model.Address) error
	ListByUser(ctx context.Context, userID string) ([]*model.Address, error)
	// GetForUser 查询属于该用户的地址
	GetForUser(ctx context.Context, userID, addressID string) (*model.Address, error)
}

type addressRepository struct{ db *gorm.DB }

func NewAddressRepository(db *gorm.DB) AddressRepository { return &addressRepository{db: db} }

func (r *addressRepository) Create(ctx context.Context, a *model.Address) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *addressRepository) ListByUser(ctx context.Context, userID string) ([]*model.Address, error) {
	var res []*model.Address
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at ASC").Find(&res).Error
	return res, err
}

func (r *addressRepository) GetForUser(ctx context.Context, userID, addressID string) (*model.Address, error) {
	var a model.Address
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", addressID, userID).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}
