package handler

import (
	"fmt"
	"io"
	"net/http"
	"notes-marketplace/internal/service"

	"github.com/labstack/echo/v4"
)

type WebhookHandler struct {
	webhookService service.WebhookService
}

func NewWebhookHandler(webhookService service.WebhookService) *WebhookHandler {
	return &WebhookHandler{
		webhookService: webhookService,
	}
}

// Razorpay retries any non-2xx delivery, so only a processed or ignorable event gets 200.
func (h *WebhookHandler) Razorpay(c echo.Context) error {
	ctx := c.Request().Context()

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.NoContent(http.StatusBadRequest)
	}

	if err := h.webhookService.HandleWebhook(ctx, c.Request().Header, body); err != nil {
		return fmt.Errorf("handle webhook: %w", err)
	}

	return c.NoContent(http.StatusOK)
}
