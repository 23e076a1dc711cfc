package handler

import (
	"net/http"
	"notes-marketplace/internal/middleware"
	"notes-marketplace/internal/service"

	"github.com/labstack/echo/v4"
)

type UserHandler struct {
	userService   service.UserService
	accessService service.AccessService
}

func NewUserHandler(userService service.UserService, accessService service.AccessService) *UserHandler {
	return &UserHandler{
		userService:   userService,
		accessService: accessService,
	}
}

func (h *UserHandler) ListNotes(c echo.Context) error {
	ctx := c.Request().Context()

	library, err := h.userService.GetLibrary(ctx, middleware.PrincipalFrom(c).UserID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, library)
}

func (h *UserHandler) NoteAccess(c echo.Context) error {
	ctx := c.Request().Context()

	access, err := h.accessService.ResolveAccess(ctx, middleware.PrincipalFrom(c).UserID, c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, access)
}
