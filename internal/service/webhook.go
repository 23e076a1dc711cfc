package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"notes-marketplace/internal/client"
	"notes-marketplace/internal/metrics"
	"notes-marketplace/internal/model"
	"notes-marketplace/internal/repository"

	"go.uber.org/zap"
)

const (
	HeaderRazorpaySignature = "X-Razorpay-Signature"
	HeaderRazorpayEventID   = "X-Razorpay-Event-Id"

	EventOrderPaid       = "order.paid"
	EventPaymentCaptured = "payment.captured"
)

// WebhookService records entitlements from server-to-server provider events, so a
// purchase is saved even when the buyer's browser never reports back.
type WebhookService interface {
	HandleWebhook(ctx context.Context, headers http.Header, body []byte) error
}

type webhookServiceImpl struct {
	razorpayClient   client.RazorpayClient
	purchaseService  PurchaseService
	webhookEventRepo repository.WebhookEventRepository
	logger           *zap.Logger
}

func NewWebhookService(
	razorpayClient client.RazorpayClient,
	purchaseService PurchaseService,
	webhookEventRepo repository.WebhookEventRepository,
	logger *zap.Logger,
) WebhookService {
	return &webhookServiceImpl{
		razorpayClient:   razorpayClient,
		purchaseService:  purchaseService,
		webhookEventRepo: webhookEventRepo,
		logger:           logger,
	}
}

func (s *webhookServiceImpl) HandleWebhook(ctx context.Context, headers http.Header, body []byte) error {
	if err := s.razorpayClient.VerifyWebhookSignature(body, headers.Get(HeaderRazorpaySignature)); err != nil {
		metrics.WebhookEventsTotal.WithLabelValues("unknown", "invalid_signature").Inc()
		s.logger.Warn("webhook.invalid_signature", zap.Error(err))
		return fmt.Errorf("%w: verify webhook signature: %w", ErrConfirmationRejected, err)
	}

	var event model.RazorpayWebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("%w: decode webhook payload: %w", ErrValidationFailed, err)
	}

	eventID := headers.Get(HeaderRazorpayEventID)
	if eventID != "" {
		seen, err := s.webhookEventRepo.Exists(ctx, eventID)
		if err != nil {
			return fmt.Errorf("%w: check webhook event: %w", ErrPersistenceFailed, err)
		}
		if seen {
			metrics.WebhookEventsTotal.WithLabelValues(event.Event, "duplicate").Inc()
			s.logger.Info("webhook.duplicate", zap.String("event_id", eventID), zap.String("event", event.Event))
			return nil
		}
	}

	var err error
	switch event.Event {
	case EventOrderPaid:
		err = s.handleOrderPaid(ctx, &event)
	case EventPaymentCaptured:
		err = s.handlePaymentCaptured(ctx, &event)
	default:
		metrics.WebhookEventsTotal.WithLabelValues(event.Event, "ignored").Inc()
		s.logger.Debug("webhook.ignored", zap.String("event", event.Event))
	}
	if err != nil {
		metrics.WebhookEventsTotal.WithLabelValues(event.Event, "error").Inc()
		return err
	}

	if eventID != "" {
		if _, err := s.webhookEventRepo.MarkProcessed(ctx, eventID, event.Event); err != nil {
			// the entitlement is already saved; a redelivery is harmless
			s.logger.Warn("webhook.mark_processed_failed", zap.String("event_id", eventID), zap.Error(err))
		}
	}
	return nil
}

func (s *webhookServiceImpl) handleOrderPaid(ctx context.Context, event *model.RazorpayWebhookEvent) error {
	if event.Payload.Order == nil || event.Payload.Payment == nil {
		return fmt.Errorf("%w: order.paid without order or payment entity", ErrValidationFailed)
	}
	order := &event.Payload.Order.Entity
	return s.recordFromOrder(ctx, event.Event, order, event.Payload.Payment.Entity.ID)
}

func (s *webhookServiceImpl) handlePaymentCaptured(ctx context.Context, event *model.RazorpayWebhookEvent) error {
	if event.Payload.Payment == nil {
		return fmt.Errorf("%w: payment.captured without payment entity", ErrValidationFailed)
	}
	payment := &event.Payload.Payment.Entity
	if payment.OrderID == "" {
		metrics.WebhookEventsTotal.WithLabelValues(event.Event, "unbound").Inc()
		s.logger.Warn("webhook.payment_without_order", zap.String("payment_id", payment.ID))
		return nil
	}

	order, err := s.razorpayClient.FetchOrder(ctx, payment.OrderID)
	if err != nil {
		return fmt.Errorf("%w: fetch order %s: %w", ErrProviderFailed, payment.OrderID, err)
	}
	return s.recordFromOrder(ctx, event.Event, order, payment.ID)
}

func (s *webhookServiceImpl) recordFromOrder(ctx context.Context, eventName string, order *model.OrderIntent, paymentID string) error {
	listingID := order.Notes[model.NoteListingID]
	userID := order.Notes[model.NoteUserID]
	if listingID == "" || userID == "" {
		metrics.WebhookEventsTotal.WithLabelValues(eventName, "unbound").Inc()
		s.logger.Warn("webhook.order_not_bound",
			zap.String("order_id", order.ID),
			zap.String("payment_id", paymentID))
		return nil
	}

	if err := s.purchaseService.RecordPurchase(ctx, userID, listingID, paymentID); err != nil {
		s.logger.Error("webhook.record_failed",
			zap.String("order_id", order.ID),
			zap.String("payment_id", paymentID),
			zap.String("user_id", userID),
			zap.String("listing_id", listingID),
			zap.Error(err))
		return err
	}

	metrics.WebhookEventsTotal.WithLabelValues(eventName, "recorded").Inc()
	return nil
}
