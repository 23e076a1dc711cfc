package service

import (
	"context"
	"errors"
	"fmt"
	"notes-marketplace/internal/client"
	"notes-marketplace/internal/metrics"
	"notes-marketplace/internal/repository"
	"slices"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type AccessStatus string

const (
	AccessLocked   AccessStatus = "locked"
	AccessUnlocked AccessStatus = "unlocked"
)

type Access struct {
	ListingID string       `json:"noteId"`
	Status    AccessStatus `json:"status"`
	URL       string       `json:"url,omitempty"`
}

func (a *Access) Unlocked() bool {
	return a != nil && a.Status == AccessUnlocked
}

type AccessService interface {
	ResolveAccess(ctx context.Context, userID, listingID string) (*Access, error)
	PurchasedListingIDs(ctx context.Context, userID string) ([]string, error)
}

type accessServiceImpl struct {
	entitlementRepo repository.EntitlementRepository
	listingRepo     repository.ListingRepository
	storage         client.ObjectStorage
	logger          *zap.Logger
}

func NewAccessService(
	entitlementRepo repository.EntitlementRepository,
	listingRepo repository.ListingRepository,
	storage client.ObjectStorage,
	logger *zap.Logger,
) AccessService {
	return &accessServiceImpl{
		entitlementRepo: entitlementRepo,
		listingRepo:     listingRepo,
		storage:         storage,
		logger:          logger,
	}
}

func (s *accessServiceImpl) PurchasedListingIDs(ctx context.Context, userID string) ([]string, error) {
	ids, err := s.entitlementRepo.ListingIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: load entitlements: %w", ErrPersistenceFailed, err)
	}
	return ids, nil
}

func (s *accessServiceImpl) ResolveAccess(ctx context.Context, userID, listingID string) (*Access, error) {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(listingID) == "" {
		return nil, fmt.Errorf("%w: userId and noteId are required", ErrValidationFailed)
	}

	purchased, err := s.PurchasedListingIDs(ctx, userID)
	if err != nil {
		metrics.AccessResolutionsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	if !slices.Contains(purchased, listingID) {
		metrics.AccessResolutionsTotal.WithLabelValues("locked").Inc()
		return &Access{ListingID: listingID, Status: AccessLocked}, nil
	}

	url, err := s.assetURL(ctx, listingID)
	if err != nil {
		metrics.AccessResolutionsTotal.WithLabelValues("unavailable").Inc()
		s.logger.Error("access.asset_unavailable",
			zap.String("user_id", userID),
			zap.String("listing_id", listingID),
			zap.Error(err))
		return nil, err
	}

	metrics.AccessResolutionsTotal.WithLabelValues("unlocked").Inc()
	return &Access{ListingID: listingID, Status: AccessUnlocked, URL: url}, nil
}

func (s *accessServiceImpl) assetURL(ctx context.Context, listingID string) (string, error) {
	listing, err := s.listingRepo.FindByID(ctx, listingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("%w: note %s no longer exists", ErrAssetUnavailable, listingID)
		}
		return "", fmt.Errorf("%w: load note %s: %w", ErrAssetUnavailable, listingID, err)
	}

	url, err := s.storage.PublicURL(listing.AssetKey)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrAssetUnavailable, err)
	}
	if url == "" {
		return "", fmt.Errorf("%w: empty url for note %s", ErrAssetUnavailable, listingID)
	}
	return url, nil
}
