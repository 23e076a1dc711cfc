package handler

import (
	"fmt"
	"net/http"
	"notes-marketplace/internal/dto"
	"notes-marketplace/internal/middleware"
	"notes-marketplace/internal/model"
	"notes-marketplace/internal/service"
	"strings"

	"github.com/labstack/echo/v4"
)

type OrderHandler struct {
	orderService    service.OrderService
	purchaseService service.PurchaseService
}

func NewOrderHandler(orderService service.OrderService, purchaseService service.PurchaseService) *OrderHandler {
	return &OrderHandler{
		orderService:    orderService,
		purchaseService: purchaseService,
	}
}

func (h *OrderHandler) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	order, err := h.orderService.CreateOrder(ctx, req.Amount, req.NoteID, middleware.PrincipalFrom(c).UserID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) RecordPurchase(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.RecordPurchaseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	if err := requireFields(
		"userId", req.UserID,
		"noteId", req.NoteID,
		"paymentId", req.PaymentID,
	); err != nil {
		return err
	}

	principal := middleware.PrincipalFrom(c)
	if req.UserID != principal.UserID && !principal.IsAdmin() {
		return echo.NewHTTPError(http.StatusForbidden, "cannot record a purchase for another user")
	}

	if err := h.orderService.VerifyConfirmation(ctx, req.UserID, req.NoteID, &model.PaymentConfirmation{
		PaymentID: req.PaymentID,
		OrderID:   req.OrderID,
		Signature: req.Signature,
	}); err != nil {
		return err
	}

	if err := h.purchaseService.RecordPurchase(ctx, req.UserID, req.NoteID, req.PaymentID); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, &dto.RecordPurchaseResponse{Success: true})
}

// requireFields takes name, value pairs and reports every blank one.
func requireFields(pairs ...string) error {
	var missing []string
	for i := 0; i+1 < len(pairs); i += 2 {
		if strings.TrimSpace(pairs[i+1]) == "" {
			missing = append(missing, pairs[i])
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s required", service.ErrValidationFailed, strings.Join(missing, ", "))
}
