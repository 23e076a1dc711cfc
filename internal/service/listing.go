package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"notes-marketplace/internal/client"
	"notes-marketplace/internal/model"
	"notes-marketplace/internal/repository"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type UploadListingInput struct {
	Title       string
	Price       decimal.Decimal
	FileName    string
	ContentType string
	Body        io.Reader
	Size        int64
}

type ListingService interface {
	Upload(ctx context.Context, in *UploadListingInput) (*model.Listing, error)
	Delete(ctx context.Context, listingID string) error
	List(ctx context.Context) ([]*model.Listing, error)
	Get(ctx context.Context, listingID string) (*model.Listing, error)
	// AssetURL is the public link for a listing's file, or "" if none can be derived.
	AssetURL(listing *model.Listing) string
}

type listingServiceImpl struct {
	listingRepo repository.ListingRepository
	storage     client.ObjectStorage
	logger      *zap.Logger
	now         func() time.Time
}

func NewListingService(
	listingRepo repository.ListingRepository,
	storage client.ObjectStorage,
	logger *zap.Logger,
) ListingService {
	return &listingServiceImpl{
		listingRepo: listingRepo,
		storage:     storage,
		logger:      logger,
		now:         time.Now,
	}
}

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// assetKey prefixes the sanitized file name with the upload time in milliseconds.
func assetKey(now time.Time, fileName string) string {
	base := filepath.Base(strings.ReplaceAll(fileName, `\`, "/"))
	base = strings.Trim(unsafeFileChars.ReplaceAllString(base, "_"), "._")
	if base == "" {
		base = "note.pdf"
	}
	return fmt.Sprintf("%d-%s", now.UnixMilli(), base)
}

func isPDF(fileName, contentType string) bool {
	if strings.EqualFold(filepath.Ext(fileName), ".pdf") {
		return true
	}
	return strings.HasPrefix(strings.ToLower(contentType), "application/pdf")
}

func (s *listingServiceImpl) Upload(ctx context.Context, in *UploadListingInput) (*model.Listing, error) {
	if in == nil || strings.TrimSpace(in.Title) == "" || in.Body == nil || in.FileName == "" {
		return nil, fmt.Errorf("%w: title, price and a PDF file are required", ErrValidationFailed)
	}
	if _, err := ToMinorUnits(in.Price); err != nil {
		return nil, err
	}
	if !isPDF(in.FileName, in.ContentType) {
		return nil, fmt.Errorf("%w: only PDF files can be listed", ErrValidationFailed)
	}

	createdAt := s.now()
	listing := &model.Listing{
		ID:        uuid.NewString(),
		Title:     strings.TrimSpace(in.Title),
		Price:     in.Price,
		AssetKey:  assetKey(createdAt, in.FileName),
		CreatedAt: createdAt,
	}

	contentType := in.ContentType
	if contentType == "" {
		contentType = "application/pdf"
	}
	if err := s.storage.Put(ctx, listing.AssetKey, contentType, in.Body, in.Size); err != nil {
		return nil, fmt.Errorf("%w: upload asset: %w", ErrPersistenceFailed, err)
	}

	if err := s.listingRepo.Create(ctx, listing); err != nil {
		// don't leave an orphaned asset behind
		if delErr := s.storage.Delete(ctx, listing.AssetKey); delErr != nil {
			s.logger.Warn("listing.orphan_asset",
				zap.String("asset_key", listing.AssetKey),
				zap.Error(delErr))
		}
		return nil, fmt.Errorf("%w: save note: %w", ErrPersistenceFailed, err)
	}

	s.logger.Info("listing.uploaded",
		zap.String("listing_id", listing.ID),
		zap.String("title", listing.Title),
		zap.String("price", listing.Price.StringFixed(2)),
		zap.String("asset_key", listing.AssetKey))

	return listing, nil
}

// Delete removes the backing asset first, then the listing row.
func (s *listingServiceImpl) Delete(ctx context.Context, listingID string) error {
	listing, err := s.Get(ctx, listingID)
	if err != nil {
		return err
	}

	if err := s.storage.Delete(ctx, listing.AssetKey); err != nil {
		return fmt.Errorf("%w: delete asset: %w", ErrPersistenceFailed, err)
	}

	if err := s.listingRepo.Delete(ctx, listingID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: note %s", ErrNotFound, listingID)
		}
		return fmt.Errorf("%w: delete note: %w", ErrPersistenceFailed, err)
	}

	s.logger.Info("listing.deleted",
		zap.String("listing_id", listingID),
		zap.String("asset_key", listing.AssetKey))
	return nil
}

func (s *listingServiceImpl) List(ctx context.Context) ([]*model.Listing, error) {
	listings, err := s.listingRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list notes: %w", ErrPersistenceFailed, err)
	}
	return listings, nil
}

func (s *listingServiceImpl) Get(ctx context.Context, listingID string) (*model.Listing, error) {
	if strings.TrimSpace(listingID) == "" {
		return nil, fmt.Errorf("%w: noteId is required", ErrValidationFailed)
	}

	listing, err := s.listingRepo.FindByID(ctx, listingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: note %s", ErrNotFound, listingID)
		}
		return nil, fmt.Errorf("%w: load note: %w", ErrPersistenceFailed, err)
	}
	return listing, nil
}

func (s *listingServiceImpl) AssetURL(listing *model.Listing) string {
	url, err := s.storage.PublicURL(listing.AssetKey)
	if err != nil {
		s.logger.Warn("listing.asset_url_failed",
			zap.String("listing_id", listing.ID),
			zap.Error(err))
		return ""
	}
	return url
}
