package handler

import (
	"errors"
	"net/http"
	"notes-marketplace/internal/dto"
	"notes-marketplace/internal/service"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

func statusFor(err error) int {
	var httpErr *echo.HTTPError
	switch {
	case errors.As(err, &httpErr):
		return httpErr.Code
	case errors.Is(err, service.ErrValidationFailed):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrConfirmationRejected):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrPaymentAborted):
		return http.StatusConflict
	case errors.Is(err, service.ErrProviderFailed):
		return http.StatusBadGateway
	case errors.Is(err, service.ErrAssetUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func messageFor(err error, status int) string {
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		if msg, ok := httpErr.Message.(string); ok {
			return msg
		}
		return http.StatusText(httpErr.Code)
	}
	if status == http.StatusInternalServerError {
		// store details stay in the log
		if errors.Is(err, service.ErrPersistenceFailed) {
			return service.ErrPersistenceFailed.Error()
		}
		return http.StatusText(status)
	}
	return err.Error()
}

// ErrorHandler renders every error as {"error": "..."} with a status derived from the
// service error kind.
func ErrorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			logger.Error("http.request_failed",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Path()),
				zap.Int("status", status),
				zap.Error(err))
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(status)
		} else {
			writeErr = c.JSON(status, &dto.ErrorResponse{Error: messageFor(err, status)})
		}
		if writeErr != nil {
			logger.Warn("http.write_error_failed", zap.Error(writeErr))
		}
	}
}
