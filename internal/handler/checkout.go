package handler

import (
	"errors"
	"net/http"
	"notes-marketplace/internal/checkout"
	"notes-marketplace/internal/dto"
	"notes-marketplace/internal/middleware"
	"notes-marketplace/internal/model"
	"notes-marketplace/internal/service"

	"github.com/labstack/echo/v4"
)

// CheckoutHandler drives the purchase orchestrator across the browser round trip:
// checkout opens the order, the widget runs client side, then confirm or abort.
type CheckoutHandler struct {
	orchestrator *checkout.Orchestrator
	orderService service.OrderService
}

func NewCheckoutHandler(orchestrator *checkout.Orchestrator, orderService service.OrderService) *CheckoutHandler {
	return &CheckoutHandler{
		orchestrator: orchestrator,
		orderService: orderService,
	}
}

func (h *CheckoutHandler) Checkout(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	attempt, err := h.orchestrator.Begin(ctx, middleware.PrincipalFrom(c).UserID, req.NoteID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, &dto.CheckoutResponse{
		OrderID:  attempt.Intent.ID,
		Amount:   attempt.Intent.Amount,
		Currency: attempt.Intent.Currency,
		KeyID:    h.orderService.KeyID(),
		NoteID:   attempt.Listing.ID,
		Title:    attempt.Listing.Title,
	})
}

func (h *CheckoutHandler) Confirm(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.ConfirmCheckoutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}
	if err := requireFields("noteId", req.NoteID, "paymentId", req.PaymentID); err != nil {
		return err
	}

	attempt, err := h.orchestrator.Complete(ctx, middleware.PrincipalFrom(c).UserID, req.NoteID, &model.PaymentConfirmation{
		PaymentID: req.PaymentID,
		OrderID:   req.OrderID,
		Signature: req.Signature,
	})
	if err != nil {
		return renderFailure(c, attempt, err)
	}

	return c.JSON(http.StatusOK, &dto.CheckoutStateResponse{
		State: string(attempt.State),
		URL:   attempt.Access.URL,
	})
}

func (h *CheckoutHandler) Abort(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.AbortCheckoutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}
	if err := requireFields("noteId", req.NoteID); err != nil {
		return err
	}

	attempt := h.orchestrator.Abort(ctx, middleware.PrincipalFrom(c).UserID, req.NoteID, req.OrderID, req.Reason)

	return c.JSON(http.StatusOK, &dto.CheckoutStateResponse{
		State:  string(attempt.State),
		Reason: string(attempt.Failure.Reason),
	})
}

func renderFailure(c echo.Context, attempt *checkout.Attempt, err error) error {
	var failure *checkout.Failure
	if !errors.As(err, &failure) {
		return err
	}

	status := statusFor(err)
	return c.JSON(status, &dto.CheckoutStateResponse{
		State:  string(attempt.State),
		Reason: string(failure.Reason),
		Error:  messageFor(err, status),
	})
}
