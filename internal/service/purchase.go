package service

import (
	"context"
	"fmt"
	"notes-marketplace/internal/metrics"
	"notes-marketplace/internal/model"
	"notes-marketplace/internal/repository"
	"strings"

	"go.uber.org/zap"
)

// PurchaseService records entitlements. It trusts that the caller has already accepted
// the provider's confirmation (see OrderService.VerifyConfirmation).
type PurchaseService interface {
	RecordPurchase(ctx context.Context, userID, listingID, paymentID string) error
}

type purchaseServiceImpl struct {
	entitlementRepo repository.EntitlementRepository
	logger          *zap.Logger
}

func NewPurchaseService(entitlementRepo repository.EntitlementRepository, logger *zap.Logger) PurchaseService {
	return &purchaseServiceImpl{
		entitlementRepo: entitlementRepo,
		logger:          logger,
	}
}

func (s *purchaseServiceImpl) RecordPurchase(ctx context.Context, userID, listingID, paymentID string) error {
	var missing []string
	if strings.TrimSpace(userID) == "" {
		missing = append(missing, "userId")
	}
	if strings.TrimSpace(listingID) == "" {
		missing = append(missing, "noteId")
	}
	if strings.TrimSpace(paymentID) == "" {
		missing = append(missing, "paymentId")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s required", ErrValidationFailed, strings.Join(missing, ", "))
	}

	created, err := s.entitlementRepo.Create(ctx, &model.Entitlement{
		UserID:    userID,
		ListingID: listingID,
		PaymentID: paymentID,
	})
	if err != nil {
		metrics.EntitlementWritesTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("%w: save entitlement: %w", ErrPersistenceFailed, err)
	}

	if !created {
		metrics.EntitlementWritesTotal.WithLabelValues("duplicate").Inc()
		s.logger.Info("purchase.already_recorded",
			zap.String("user_id", userID),
			zap.String("listing_id", listingID),
			zap.String("payment_id", paymentID))
		return nil
	}

	metrics.EntitlementWritesTotal.WithLabelValues("created").Inc()
	s.logger.Info("purchase.recorded",
		zap.String("user_id", userID),
		zap.String("listing_id", listingID),
		zap.String("payment_id", paymentID))
	return nil
}
