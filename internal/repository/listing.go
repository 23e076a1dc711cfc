package repository

import (
	"context"
	"notes-marketplace/internal/model"

	"gorm.io/gorm"
)

type ListingRepository interface {
	Create(ctx context.Context, listing *model.Listing) error
	FindByID(ctx context.Context, listingID string) (*model.Listing, error)
	List(ctx context.Context) ([]*model.Listing, error)
	Delete(ctx context.Context, listingID string) error
}

type listingRepoImpl struct {
	db *gorm.DB
}

func NewListingRepository(db *gorm.DB) ListingRepository {
	return &listingRepoImpl{
		db: db,
	}
}

func (r *listingRepoImpl) Create(ctx context.Context, listing *model.Listing) error {
	return r.db.WithContext(ctx).Create(listing).Error
}

func (r *listingRepoImpl) FindByID(ctx context.Context, listingID string) (*model.Listing, error) {
	var listing model.Listing
	err := r.db.WithContext(ctx).
		Where("id = ?", listingID).
		First(&listing).Error

	if err != nil {
		return nil, err
	}

	return &listing, nil
}

// List returns every listing, newest first.
func (r *listingRepoImpl) List(ctx context.Context) ([]*model.Listing, error) {
	var listings []*model.Listing
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&listings).
		Error

	if err != nil {
		return nil, err
	}

	return listings, nil
}

func (r *listingRepoImpl) Delete(ctx context.Context, listingID string) error {
	result := r.db.WithContext(ctx).
		Where("id = ?", listingID).
		Delete(&model.Listing{})

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
