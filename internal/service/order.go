package service

import (
	"context"
	"fmt"
	"notes-marketplace/internal/client"
	"notes-marketplace/internal/model"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var minorUnitsPerMajor = decimal.NewFromInt(100)

type OrderService interface {
	// KeyID is the public provider key the checkout UI is opened with.
	KeyID() string
	CreateOrder(ctx context.Context, amount decimal.Decimal, listingID, userID string) (*model.OrderIntent, error)
	// VerifyConfirmation decides whether a checkout confirmation may be turned into an
	// entitlement for userID on listingID.
	VerifyConfirmation(ctx context.Context, userID, listingID string, confirmation *model.PaymentConfirmation) error
}

type orderServiceImpl struct {
	razorpayClient   client.RazorpayClient
	currency         string
	requireSignature bool
	logger           *zap.Logger
}

func NewOrderService(
	razorpayClient client.RazorpayClient,
	currency string,
	requireSignature bool,
	logger *zap.Logger,
) OrderService {
	return &orderServiceImpl{
		razorpayClient:   razorpayClient,
		currency:         currency,
		requireSignature: requireSignature,
		logger:           logger,
	}
}

// ToMinorUnits converts a major-unit amount (rupees) to the provider's minor unit (paise).
func ToMinorUnits(amount decimal.Decimal) (int64, error) {
	if !amount.IsPositive() {
		return 0, fmt.Errorf("%w: amount must be positive", ErrValidationFailed)
	}
	minor := amount.Mul(minorUnitsPerMajor)
	if !minor.IsInteger() {
		return 0, fmt.Errorf("%w: amount %s has more precision than the currency allows", ErrValidationFailed, amount.String())
	}
	if !minor.BigInt().IsInt64() {
		return 0, fmt.Errorf("%w: amount %s is too large", ErrValidationFailed, amount.String())
	}
	return minor.IntPart(), nil
}

func (s *orderServiceImpl) KeyID() string {
	return s.razorpayClient.KeyID()
}

func (s *orderServiceImpl) CreateOrder(ctx context.Context, amount decimal.Decimal, listingID, userID string) (*model.OrderIntent, error) {
	if strings.TrimSpace(listingID) == "" {
		return nil, fmt.Errorf("%w: noteId is required", ErrValidationFailed)
	}
	minor, err := ToMinorUnits(amount)
	if err != nil {
		return nil, err
	}

	notes := model.Notes{model.NoteListingID: listingID}
	if userID != "" {
		notes[model.NoteUserID] = userID
	}

	// a fresh receipt per call: a retried checkout never reuses a failed intent
	receipt := "rcpt_" + strings.ReplaceAll(uuid.NewString(), "-", "")

	order, err := s.razorpayClient.CreateOrder(ctx, &model.RazorpayOrderRequest{
		Amount:         minor,
		Currency:       s.currency,
		Receipt:        receipt,
		PaymentCapture: 1,
		Notes:          notes,
	})
	if err != nil {
		s.logger.Warn("order.create_failed",
			zap.String("listing_id", listingID),
			zap.Int64("amount", minor),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrProviderFailed, err)
	}

	s.logger.Info("order.created",
		zap.String("order_id", order.ID),
		zap.String("listing_id", listingID),
		zap.Int64("amount", order.Amount),
		zap.String("currency", order.Currency))

	return order, nil
}

func (s *orderServiceImpl) VerifyConfirmation(ctx context.Context, userID, listingID string, confirmation *model.PaymentConfirmation) error {
	if confirmation == nil || strings.TrimSpace(confirmation.PaymentID) == "" {
		return fmt.Errorf("%w: paymentId is required", ErrValidationFailed)
	}

	if s.requireSignature {
		if confirmation.OrderID == "" || confirmation.Signature == "" {
			return fmt.Errorf("%w: orderId and signature are required", ErrConfirmationRejected)
		}
		if err := s.razorpayClient.VerifyPaymentSignature(confirmation.OrderID, confirmation.PaymentID, confirmation.Signature); err != nil {
			return fmt.Errorf("%w: %w", ErrConfirmationRejected, err)
		}
	}

	if confirmation.OrderID == "" {
		return nil
	}

	order, err := s.razorpayClient.FetchOrder(ctx, confirmation.OrderID)
	if err != nil {
		return fmt.Errorf("%w: fetch order %s: %w", ErrProviderFailed, confirmation.OrderID, err)
	}
	if order.Notes[model.NoteListingID] != listingID {
		return fmt.Errorf("%w: order %s is not for note %s", ErrConfirmationRejected, confirmation.OrderID, listingID)
	}
	if owner := order.Notes[model.NoteUserID]; owner != "" && owner != userID {
		return fmt.Errorf("%w: order %s belongs to another user", ErrConfirmationRejected, confirmation.OrderID)
	}

	return nil
}
