package service

import (
	"context"
	"fmt"
	"notes-marketplace/internal/dto"
	"notes-marketplace/internal/repository"
)

type UserService interface {
	// GetLibrary lists every note with whether userID has bought it.
	GetLibrary(ctx context.Context, userID string) ([]*dto.LibraryItem, error)
}

type userServiceImpl struct {
	listingRepo     repository.ListingRepository
	entitlementRepo repository.EntitlementRepository
}

func NewUserService(
	listingRepo repository.ListingRepository,
	entitlementRepo repository.EntitlementRepository,
) UserService {
	return &userServiceImpl{
		listingRepo:     listingRepo,
		entitlementRepo: entitlementRepo,
	}
}

func (s *userServiceImpl) GetLibrary(ctx context.Context, userID string) ([]*dto.LibraryItem, error) {
	listings, err := s.listingRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list notes: %w", ErrPersistenceFailed, err)
	}

	purchasedIDs, err := s.entitlementRepo.ListingIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: load entitlements: %w", ErrPersistenceFailed, err)
	}
	purchased := make(map[string]bool, len(purchasedIDs))
	for _, id := range purchasedIDs {
		purchased[id] = true
	}

	items := make([]*dto.LibraryItem, len(listings))
	for i, listing := range listings {
		items[i] = &dto.LibraryItem{
			ID:        listing.ID,
			Title:     listing.Title,
			Price:     listing.Price,
			Purchased: purchased[listing.ID],
		}
	}
	return items, nil
}
