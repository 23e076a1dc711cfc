package checkout

import (
	"context"
	"errors"
	"fmt"
	"notes-marketplace/internal/metrics"
	"notes-marketplace/internal/model"
	"notes-marketplace/internal/service"
	"strings"

	"go.uber.org/zap"
)

// CheckoutUI opens the provider's checkout for an order and blocks until the buyer pays
// (confirmation) or gives up (an error, typically wrapping service.ErrPaymentAborted).
type CheckoutUI interface {
	Open(ctx context.Context, listing *model.Listing, intent *model.OrderIntent) (*model.PaymentConfirmation, error)
}

// Orchestrator sequences one purchase: order → provider UI → record → unlock.
// It holds no per-attempt state; concurrent attempts only meet in the store.
type Orchestrator struct {
	listings ListingFinder
	orders   service.OrderService
	recorder service.PurchaseService
	gate     service.AccessService
	logger   *zap.Logger
}

type ListingFinder interface {
	Get(ctx context.Context, listingID string) (*model.Listing, error)
}

func NewOrchestrator(
	listings ListingFinder,
	orders service.OrderService,
	recorder service.PurchaseService,
	gate service.AccessService,
	logger *zap.Logger,
) *Orchestrator {
	return &Orchestrator{
		listings: listings,
		orders:   orders,
		recorder: recorder,
		gate:     gate,
		logger:   logger,
	}
}

// Run drives an attempt from Idle to a terminal state. The returned error is the
// attempt's *Failure, if any.
func (o *Orchestrator) Run(ctx context.Context, userID, listingID string, ui CheckoutUI) (*Attempt, error) {
	attempt, err := o.Begin(ctx, userID, listingID)
	if err != nil {
		return attempt, err
	}

	confirmation, err := ui.Open(ctx, attempt.Listing, attempt.Intent)
	if err == nil && confirmation == nil {
		err = errors.New("checkout closed without a confirmation")
	}
	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
	}
	if err != nil {
		if !errors.Is(err, service.ErrPaymentAborted) {
			err = fmt.Errorf("%w: %w", service.ErrPaymentAborted, err)
		}
		return attempt, o.finish(attempt, attempt.fail(ReasonPaymentAborted, err))
	}

	// the widget may omit the order id; the attempt knows it
	if confirmation.OrderID == "" {
		confirmation.OrderID = attempt.Intent.ID
	}
	if confirmation.OrderID != attempt.Intent.ID {
		err := fmt.Errorf("%w: confirmation for order %s, expected %s",
			service.ErrConfirmationRejected, confirmation.OrderID, attempt.Intent.ID)
		return attempt, o.finish(attempt, attempt.fail(ReasonConfirmationRejected, err))
	}

	return attempt, o.complete(ctx, attempt, confirmation)
}

// Begin moves a fresh attempt through OrderRequested to AwaitingProviderUI. The order
// amount comes from the catalog, never from the caller.
func (o *Orchestrator) Begin(ctx context.Context, userID, listingID string) (*Attempt, error) {
	attempt := newAttempt(userID, listingID)
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(listingID) == "" {
		err := fmt.Errorf("%w: userId and noteId are required", service.ErrValidationFailed)
		return attempt, o.finish(attempt, attempt.fail(ReasonListingUnavailable, err))
	}

	listing, err := o.listings.Get(ctx, listingID)
	if err != nil {
		return attempt, o.finish(attempt, attempt.fail(ReasonListingUnavailable, err))
	}
	attempt.Listing = listing

	attempt.transition(StateOrderRequested)
	intent, err := o.orders.CreateOrder(ctx, listing.Price, listing.ID, userID)
	if err != nil {
		return attempt, o.finish(attempt, attempt.fail(ReasonOrderCreationFailed, err))
	}
	attempt.Intent = intent

	attempt.transition(StateAwaitingProviderUI)
	o.logger.Info("checkout.awaiting_provider",
		zap.String("user_id", userID),
		zap.String("listing_id", listingID),
		zap.String("order_id", intent.ID))
	return attempt, nil
}

// Complete resumes an attempt in AwaitingProviderUI from a confirmation delivered out
// of band (the buyer's browser).
func (o *Orchestrator) Complete(ctx context.Context, userID, listingID string, confirmation *model.PaymentConfirmation) (*Attempt, error) {
	attempt := newAttempt(userID, listingID)
	attempt.transition(StateAwaitingProviderUI)
	if confirmation == nil {
		confirmation = &model.PaymentConfirmation{}
	}
	return attempt, o.complete(ctx, attempt, confirmation)
}

// Abort ends an attempt whose checkout the buyer closed. Nothing is written.
func (o *Orchestrator) Abort(ctx context.Context, userID, listingID, orderID, reason string) *Attempt {
	attempt := newAttempt(userID, listingID)
	attempt.transition(StateAwaitingProviderUI)
	if orderID != "" {
		attempt.Intent = &model.OrderIntent{ID: orderID}
	}
	if reason == "" {
		reason = "checkout closed by user"
	}
	_ = o.finish(attempt, attempt.fail(ReasonPaymentAborted, fmt.Errorf("%w: %s", service.ErrPaymentAborted, reason)))
	return attempt
}

func (o *Orchestrator) complete(ctx context.Context, attempt *Attempt, confirmation *model.PaymentConfirmation) error {
	attempt.Confirmation = confirmation

	if err := o.orders.VerifyConfirmation(ctx, attempt.UserID, attempt.ListingID, confirmation); err != nil {
		// the widget already reported a payment; an unreachable provider is not a rejection
		if errors.Is(err, service.ErrProviderFailed) {
			return o.finish(attempt, attempt.fail(ReasonPaymentRecordedButNotSaved, err))
		}
		return o.finish(attempt, attempt.fail(ReasonConfirmationRejected, err))
	}
	attempt.transition(StateProviderSucceeded)

	if err := o.recorder.RecordPurchase(ctx, attempt.UserID, attempt.ListingID, confirmation.PaymentID); err != nil {
		return o.finish(attempt, attempt.fail(ReasonPaymentRecordedButNotSaved, err))
	}
	attempt.transition(StateEntitlementRecorded)

	access, err := o.gate.ResolveAccess(ctx, attempt.UserID, attempt.ListingID)
	if err == nil && !access.Unlocked() {
		err = fmt.Errorf("%w: entitlement recorded but note still locked", service.ErrAssetUnavailable)
	}
	if err != nil {
		return o.finish(attempt, attempt.fail(ReasonRecordedButAssetUnavailable, err))
	}
	attempt.Access = access

	attempt.transition(StateUnlocked)
	return o.finish(attempt, nil)
}

func (o *Orchestrator) finish(attempt *Attempt, err error) error {
	fields := []zap.Field{
		zap.String("user_id", attempt.UserID),
		zap.String("listing_id", attempt.ListingID),
	}
	if attempt.Intent != nil {
		fields = append(fields, zap.String("order_id", attempt.Intent.ID))
	}
	if attempt.Confirmation != nil {
		fields = append(fields, zap.String("payment_id", attempt.Confirmation.PaymentID))
	}

	if attempt.Failure == nil {
		metrics.CheckoutOutcomesTotal.WithLabelValues(string(attempt.State), "").Inc()
		o.logger.Info("checkout.unlocked", fields...)
		return nil
	}

	failure := attempt.Failure
	metrics.CheckoutOutcomesTotal.WithLabelValues(string(StateFailed), string(failure.Reason)).Inc()
	fields = append(fields,
		zap.String("reason", string(failure.Reason)),
		zap.String("failed_in", string(failure.State)),
		zap.Error(failure.Err))

	if failure.Reason.MoneyMayHaveMoved() {
		o.logger.Error("checkout.needs_reconciliation", fields...)
	} else {
		o.logger.Warn("checkout.failed", fields...)
	}
	return err
}
