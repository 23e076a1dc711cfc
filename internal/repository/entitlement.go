package repository

import (
	"context"
	"notes-marketplace/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EntitlementRepository interface {
	// Create inserts the entitlement unless one already exists for the same user and
	// listing. created reports whether a row was written.
	Create(ctx context.Context, entitlement *model.Entitlement) (created bool, err error)
	ListingIDs(ctx context.Context, userID string) ([]string, error)
}

type entitlementRepoImpl struct {
	db *gorm.DB
}

func NewEntitlementRepository(db *gorm.DB) EntitlementRepository {
	return &entitlementRepoImpl{
		db: db,
	}
}

func (r *entitlementRepoImpl) Create(ctx context.Context, entitlement *model.Entitlement) (bool, error) {
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "listing_id"}},
		DoNothing: true,
	}).Create(entitlement)

	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

func (r *entitlementRepoImpl) ListingIDs(ctx context.Context, userID string) ([]string, error) {
	var listingIDs []string
	err := r.db.WithContext(ctx).
		Model(&model.Entitlement{}).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Pluck("listing_id", &listingIDs).
		Error

	if err != nil {
		return nil, err
	}

	return listingIDs, nil
}
